package main

import "strings"

// SchemaObject is one row of the sqlite_schema table (spec.md §3,
// "Schema object"). RootPage is absent (nil) for views and triggers,
// which never carry a root page.
type SchemaObject struct {
	Kind     string // "table", "index", "view", or "trigger"
	Name     string
	TblName  string
	RootPage *int
	SQL      string
}

// Column is one entry of a table's parsed column order, enriched with a
// best-effort declared type for diagnostics (SPEC_FULL.md §3, §4.6a).
type Column struct {
	Name         string
	DeclaredType string
}

// Schema is the catalog of every object described by sqlite_schema, plus
// each table's parsed column order. It is loaded once at query start and
// never refreshed (spec.md, "Lifecycle").
type Schema struct {
	objects []*SchemaObject
	columns map[string][]Column // table name -> ordered columns
}

// loadSchema reads the root page (always page 1, always a leaf table
// page for sqlite_schema) and builds the catalog.
func loadSchema(pg *Pager) (*Schema, error) {
	page, err := pg.LoadBTreePage(1)
	if err != nil {
		return nil, wrapErr(KindSchema, "load_schema", err, nil)
	}
	if page.Kind != PageLeafTable {
		return nil, newErr(KindSchema, "load_schema", "sqlite_schema root is not a leaf table page", map[string]interface{}{
			"kind": page.Kind,
		})
	}

	sch := &Schema{columns: make(map[string][]Column)}
	for i, ptr := range page.CellPointers {
		cell, err := page.readLeafTableCell(int(ptr))
		if err != nil {
			return nil, wrapErr(KindSchema, "load_schema", err, map[string]interface{}{"cell_index": i})
		}
		obj, err := schemaObjectFromRecord(cell.Record)
		if err != nil {
			return nil, wrapErr(KindSchema, "load_schema", err, map[string]interface{}{"cell_index": i})
		}
		sch.objects = append(sch.objects, obj)
	}

	for _, obj := range sch.objects {
		if obj.Kind != "table" || obj.SQL == "" {
			continue
		}
		cols, err := parseColumnOrder(obj.SQL)
		if err != nil {
			log.WithError(err).WithField("table", obj.Name).Debug("column order parse failed")
			continue
		}
		enrichDeclaredTypes(obj.SQL, cols)
		sch.columns[obj.Name] = cols
	}

	return sch, nil
}

// schemaObjectFromRecord maps the five fixed sqlite_schema columns
// (type, name, tbl_name, rootpage, sql) onto a SchemaObject (spec.md
// invariant 5).
func schemaObjectFromRecord(rec *Record) (*SchemaObject, error) {
	if len(rec.Values) < 5 {
		return nil, newErr(KindSchema, "schema_object_from_record", "expected five sqlite_schema columns", map[string]interface{}{
			"got": len(rec.Values),
		})
	}

	kind := rec.Values[0].String()
	switch kind {
	case "table", "index", "view", "trigger":
	default:
		return nil, newErr(KindSchema, "schema_object_from_record", "unrecognized schema object kind", map[string]interface{}{
			"kind": kind,
		})
	}

	obj := &SchemaObject{
		Kind:    kind,
		Name:    rec.Values[1].String(),
		TblName: rec.Values[2].String(),
		SQL:     rec.Values[4].String(),
	}
	if !rec.Values[3].IsNull() {
		if rp, ok := rec.Values[3].AsUsize(); ok {
			v := int(rp)
			obj.RootPage = &v
		}
	}
	return obj, nil
}

// parseColumnOrder extracts the ordered column list from a CREATE TABLE
// statement's SQL text.
func parseColumnOrder(sql string) ([]Column, error) {
	stmt, err := ParseSQL(sql)
	if err != nil {
		return nil, wrapErr(KindSchema, "parse_column_order", err, nil)
	}
	create, ok := stmt.(*CreateTableStmt)
	if !ok {
		return nil, newErr(KindSchema, "parse_column_order", "sql is not a CREATE TABLE statement", nil)
	}
	cols := make([]Column, len(create.Columns))
	for i, c := range create.Columns {
		cols[i] = Column{Name: c.Name}
	}
	return cols, nil
}

// Tables returns every table-kind schema object not named sqlite_*
// (spec.md §4.5).
func (s *Schema) Tables() []*SchemaObject {
	var out []*SchemaObject
	for _, obj := range s.objects {
		if obj.Kind == "table" && !hasSqlitePrefix(obj.Name) {
			out = append(out, obj)
		}
	}
	return out
}

// Indexes returns every index-kind schema object.
func (s *Schema) Indexes() []*SchemaObject {
	var out []*SchemaObject
	for _, obj := range s.objects {
		if obj.Kind == "index" {
			out = append(out, obj)
		}
	}
	return out
}

// TableByName returns the unique table whose name equals name, or an
// error if none exists.
func (s *Schema) TableByName(name string) (*SchemaObject, error) {
	for _, obj := range s.objects {
		if obj.Kind == "table" && obj.Name == name {
			return obj, nil
		}
	}
	return nil, newErr(KindSchema, "table_by_name", "no such table", map[string]interface{}{"table": name})
}

// ColumnsOf returns the parsed column order for table, or nil if it
// could not be parsed.
func (s *Schema) ColumnsOf(table string) []Column {
	return s.columns[table]
}

// IndexRootFor returns the root page of an index on table that covers
// column as one of its indexed columns, if any such index exists.
func (s *Schema) IndexRootFor(table, column string) (int, bool) {
	for _, obj := range s.objects {
		if obj.Kind != "index" || obj.TblName != table || obj.RootPage == nil {
			continue
		}
		stmt, err := ParseSQL(obj.SQL)
		if err != nil {
			continue
		}
		create, ok := stmt.(*CreateIndexStmt)
		if !ok {
			continue
		}
		for _, c := range create.Columns {
			if c == column {
				return *obj.RootPage, true
			}
		}
	}
	return 0, false
}

// rowidAliasIndex returns the column index of cols that is the table's
// INTEGER PRIMARY KEY rowid alias, detected from the CREATE TABLE text
// itself rather than assumed to be column 0 (see DESIGN.md's Open
// Question resolution).
func rowidAliasIndex(sql string, cols []Column) (int, bool) {
	stmt, err := ParseSQL(sql)
	if err != nil {
		return 0, false
	}
	create, ok := stmt.(*CreateTableStmt)
	if !ok || len(create.Columns) != len(cols) {
		return 0, false
	}
	lowered := strings.ToLower(sql)
	for i, c := range cols {
		idx := strings.Index(lowered, strings.ToLower(c.Name))
		if idx < 0 {
			continue
		}
		decl := lowered[idx:]
		if end := strings.IndexAny(decl, ",)"); end >= 0 {
			decl = decl[:end]
		}
		if strings.Contains(decl, "integer") && strings.Contains(decl, "primary") && strings.Contains(decl, "key") {
			return i, true
		}
	}
	return 0, false
}

func hasSqlitePrefix(name string) bool {
	return strings.HasPrefix(name, "sqlite_")
}
