package main

import (
	"fmt"
	"io"
	"strings"
)

// Formatter writes command and query results to an output stream in the
// exact shapes spec.md §6.3 mandates: pipe-joined row values, a bare
// decimal count, and space-joined table-name lists.
type Formatter struct {
	out io.Writer
}

// NewFormatter wraps out for spec-mandated result output.
func NewFormatter(out io.Writer) *Formatter {
	return &Formatter{out: out}
}

// WriteRow writes one row as its values joined by "|", newline-terminated.
func (f *Formatter) WriteRow(values []Value) error {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	_, err := fmt.Fprintln(f.out, strings.Join(parts, "|"))
	return err
}

// WriteCount writes a COUNT(*) result as a bare decimal on its own line.
func (f *Formatter) WriteCount(n int) error {
	_, err := fmt.Fprintln(f.out, n)
	return err
}

// WriteTableNames writes a .tables listing: names space-joined on one line.
func (f *Formatter) WriteTableNames(names []string) error {
	_, err := fmt.Fprintln(f.out, strings.Join(names, " "))
	return err
}

// WriteTablesLong writes one ".tableslong" line per table:
// "<name>: <create sql>".
func (f *Formatter) WriteTablesLong(tables []*SchemaObject) error {
	for _, t := range tables {
		if _, err := fmt.Fprintf(f.out, "%s: %s\n", t.Name, t.SQL); err != nil {
			return err
		}
	}
	return nil
}

// WriteIndexes writes one ".indexes" entry per index:
// "<index name> on <table>:\n\t<create sql>".
func (f *Formatter) WriteIndexes(indexes []*SchemaObject) error {
	for _, idx := range indexes {
		if _, err := fmt.Fprintf(f.out, "%s on %s:\n\t%s\n", idx.Name, idx.TblName, idx.SQL); err != nil {
			return err
		}
	}
	return nil
}

// WriteScanCheck writes the ".scancheck" diagnostic result: the count
// of rows successfully decoded, the count of aggregated per-row
// failures, then one line per failure.
func (f *Formatter) WriteScanCheck(rowCount int, issues []error) error {
	if _, err := fmt.Fprintf(f.out, "rows scanned: %d\n", rowCount); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.out, "issues: %d\n", len(issues)); err != nil {
		return err
	}
	for _, issue := range issues {
		if _, err := fmt.Fprintf(f.out, "  %s\n", issue); err != nil {
			return err
		}
	}
	return nil
}

// WriteDBInfo writes the two ".dbinfo" lines.
func (f *Formatter) WriteDBInfo(pageSize, tableCount int) error {
	if _, err := fmt.Fprintf(f.out, "database page size: %d\n", pageSize); err != nil {
		return err
	}
	_, err := fmt.Fprintf(f.out, "number of tables: %d\n", tableCount)
	return err
}
