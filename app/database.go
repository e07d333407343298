package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Engine ties together a file handle, its decoded header, the pager,
// and the loaded schema catalog — everything a query needs, opened
// once per invocation (spec.md §5: "the file is opened fresh per
// invocation").
type Engine struct {
	file   *os.File
	header *Header
	pg     *Pager
	schema *Schema
	cfg    *EngineConfig
}

// Open reads and validates path's 100-byte database header, builds a
// pager with the header's page size, then loads the schema catalog from
// page 1 through that pager. The returned ResourceManager owns the file
// handle; callers must Close it.
func Open(path string, opts ...EngineOption) (*Engine, *ResourceManager, error) {
	cfg := DefaultEngineConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Verbose {
		enableVerboseLogging()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, wrapErr(KindIO, "open", err, map[string]interface{}{"path": path})
	}
	rm := NewResourceManager()
	rm.Add(file)

	headerBuf := make([]byte, headerSize)
	if _, err := file.ReadAt(headerBuf, 0); err != nil {
		rm.Close()
		return nil, nil, wrapErr(KindIO, "open", err, map[string]interface{}{"path": path})
	}
	header, err := parseHeader(headerBuf)
	if err != nil {
		rm.Close()
		return nil, nil, wrapErr(KindHeader, "open", err, map[string]interface{}{"path": path})
	}

	pg := NewPager(file, header.PageSize())
	schema, err := loadSchema(pg)
	if err != nil {
		rm.Close()
		return nil, nil, wrapErr(KindSchema, "open", err, map[string]interface{}{"path": path})
	}

	log.WithFields(logrus.Fields{
		"path":      path,
		"page_size": header.PageSize(),
		"tables":    len(schema.Tables()),
	}).Debug("opened database")

	return &Engine{file: file, header: header, pg: pg, schema: schema, cfg: cfg}, rm, nil
}

// DBInfo returns the two values printed by the .dbinfo command: the
// page size and page 1's cell count (the number of sqlite_schema rows,
// which spec.md §6.2 defines as "number of tables").
func (e *Engine) DBInfo() (pageSize int, cellCount int, err error) {
	page, err := e.pg.LoadBTreePage(1)
	if err != nil {
		return 0, 0, wrapErr(KindPage, "dbinfo", err, nil)
	}
	return e.header.PageSize(), int(page.CellCount), nil
}

// TableNames returns user table names for .tables, names starting with
// "sqlite_" already excluded by Schema.Tables.
func (e *Engine) TableNames() []string {
	tables := e.schema.Tables()
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return names
}

// Tables returns the full schema objects for .tableslong.
func (e *Engine) Tables() []*SchemaObject {
	return e.schema.Tables()
}

// Indexes returns the full schema objects for .indexes.
func (e *Engine) Indexes() []*SchemaObject {
	return e.schema.Indexes()
}
