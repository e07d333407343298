package main

import (
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Execute dispatches a parsed statement per spec.md §4.9, writing
// results to f. CREATE TABLE/INDEX at the top level are rejected.
func (e *Engine) Execute(sql string, f *Formatter) error {
	stmt, err := ParseSQL(sql)
	if err != nil {
		return wrapErr(KindParse, "execute", err, map[string]interface{}{"sql": sql})
	}

	switch s := stmt.(type) {
	case *SelectStmt:
		return e.executeSelect(s, f)
	case *CreateTableStmt, *CreateIndexStmt:
		return newErr(KindQuery, "execute", "DDL not supported", nil)
	default:
		return newErr(KindQuery, "execute", "unsupported statement shape", nil)
	}
}

func (e *Engine) executeSelect(stmt *SelectStmt, f *Formatter) error {
	table, err := e.schema.TableByName(stmt.From)
	if err != nil {
		return wrapErr(KindQuery, "execute_select", err, map[string]interface{}{"table": stmt.From})
	}
	if table.RootPage == nil {
		return newErr(KindQuery, "execute_select", "table has no root page", map[string]interface{}{"table": stmt.From})
	}

	cols := e.schema.ColumnsOf(stmt.From)
	aliasIdx, hasAlias := rowidAliasIndex(table.SQL, cols)
	trav := NewTraverser(e.pg, aliasIdx, hasAlias, e.cfg.MaxTraverseDepth)

	if len(stmt.Columns) == 1 && stmt.Columns[0].IsCount {
		rows, err := trav.ScanTable(*table.RootPage)
		if err != nil {
			return wrapErr(KindQuery, "execute_select", err, nil)
		}
		return f.WriteCount(len(rows))
	}

	projIdx := make([]int, len(stmt.Columns))
	for i, item := range stmt.Columns {
		idx, err := columnIndex(cols, item.Column)
		if err != nil {
			return wrapErr(KindQuery, "execute_select", err, map[string]interface{}{"table": stmt.From, "column": item.Column})
		}
		projIdx[i] = idx
	}

	var whereIdx = -1
	if stmt.Where != nil {
		idx, err := columnIndex(cols, stmt.Where.Column)
		if err != nil {
			return wrapErr(KindQuery, "execute_select", err, map[string]interface{}{"table": stmt.From, "column": stmt.Where.Column})
		}
		whereIdx = idx
	}

	rows, err := e.fetchRows(trav, table, stmt, whereIdx)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if whereIdx >= 0 && (whereIdx >= len(row.Values) || row.Values[whereIdx].String() != stmt.Where.Value) {
			continue
		}
		out := make([]Value, len(projIdx))
		for i, idx := range projIdx {
			if idx < len(row.Values) {
				out[i] = row.Values[idx]
			} else {
				out[i] = NullValue
			}
		}
		if err := f.WriteRow(out); err != nil {
			return wrapErr(KindIO, "execute_select", err, nil)
		}
	}
	return nil
}

// fetchRows chooses between an index-assisted lookup and a full scan,
// per spec.md §4.9 step 3.
func (e *Engine) fetchRows(trav *Traverser, table *SchemaObject, stmt *SelectStmt, whereIdx int) ([]Row, error) {
	if stmt.Where != nil {
		if idxRoot, ok := e.schema.IndexRootFor(stmt.From, stmt.Where.Column); ok {
			ids, err := trav.SearchIndex(idxRoot, stmt.Where.Value)
			if err != nil {
				return nil, wrapErr(KindQuery, "fetch_rows", err, map[string]interface{}{"table": stmt.From})
			}
			rows, err := trav.Lookup(*table.RootPage, ids)
			if err != nil {
				return nil, wrapErr(KindQuery, "fetch_rows", err, map[string]interface{}{"table": stmt.From})
			}
			return rows, nil
		}
	}
	rows, err := trav.ScanTable(*table.RootPage)
	if err != nil {
		return nil, wrapErr(KindQuery, "fetch_rows", err, map[string]interface{}{"table": stmt.From})
	}
	return rows, nil
}

// ScanCheck runs a full table scan in collect mode for the .scancheck
// diagnostic command: per-row decode failures are aggregated instead of
// aborting the scan at the first one, so rowCount and issues are both
// populated even when the table has corrupt cells.
func (e *Engine) ScanCheck(tableName string) (rowCount int, issues []error, err error) {
	table, err := e.schema.TableByName(tableName)
	if err != nil {
		return 0, nil, wrapErr(KindQuery, "scan_check", err, map[string]interface{}{"table": tableName})
	}
	if table.RootPage == nil {
		return 0, nil, newErr(KindQuery, "scan_check", "table has no root page", map[string]interface{}{"table": tableName})
	}

	cols := e.schema.ColumnsOf(tableName)
	aliasIdx, hasAlias := rowidAliasIndex(table.SQL, cols)
	trav := NewTraverser(e.pg, aliasIdx, hasAlias, e.cfg.MaxTraverseDepth).WithCollectErrors()

	rows, scanErr := trav.ScanTable(*table.RootPage)
	if scanErr != nil {
		eerr, ok := scanErr.(*EngineError)
		if !ok {
			return 0, nil, scanErr
		}
		merr, ok := eerr.Err.(*multierror.Error)
		if !ok {
			return 0, nil, scanErr
		}
		issues = merr.Errors
	}
	return len(rows), issues, nil
}

func columnIndex(cols []Column, name string) (int, error) {
	for i, c := range cols {
		if strings.EqualFold(c.Name, name) {
			return i, nil
		}
	}
	return 0, newErr(KindQuery, "column_index", "no such column", map[string]interface{}{"column": name})
}
