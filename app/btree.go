package main

import (
	"sort"

	"github.com/hashicorp/go-multierror"
)

// Row is a fully decoded table row: a record's values with rowid-alias
// substitution already applied, plus the row-id the cell carried.
type Row struct {
	RowID  uint64
	Values []Value
}

// Traverser descends the on-disk B-tree structure for one table or
// index, applying rowid-alias substitution for the table it was built
// for (spec.md §4.8).
type Traverser struct {
	pg       *Pager
	aliasCol int
	hasAlias bool
	collect  bool // "collect" mode aggregates per-cell errors instead of failing fast
	maxDepth int
}

// NewTraverser builds a traverser for a table whose rowid-alias column
// (if any) is aliasCol (see DESIGN.md's Open Question
// resolution: detected from the CREATE TABLE text, not assumed to be
// column 0). maxDepth bounds the recursion so a corrupt page cycle
// fails with a PageError instead of a stack overflow.
func NewTraverser(pg *Pager, aliasCol int, hasAlias bool, maxDepth int) *Traverser {
	return &Traverser{pg: pg, aliasCol: aliasCol, hasAlias: hasAlias, maxDepth: maxDepth}
}

func (t *Traverser) checkDepth(depth int, op string) error {
	if t.maxDepth > 0 && depth > t.maxDepth {
		return newErr(KindPage, op, "traversal exceeded maximum depth (corrupt page graph?)", map[string]interface{}{
			"depth": depth, "max_depth": t.maxDepth,
		})
	}
	return nil
}

// WithCollectErrors switches the traverser into "collect" mode, used by
// diagnostic commands: per-cell decode failures are aggregated via
// hashicorp/go-multierror and returned together at the end of the scan
// rather than aborting on the first one (SPEC_FULL.md's aggregated
// traversal errors component).
func (t *Traverser) WithCollectErrors() *Traverser {
	t2 := *t
	t2.collect = true
	return &t2
}

func (t *Traverser) applyAlias(rowID uint64, values []Value) []Value {
	if t.hasAlias && t.aliasCol < len(values) && values[t.aliasCol].IsNull() {
		values[t.aliasCol] = integerValue(int64(rowID))
	}
	return values
}

// ScanTable performs a full recursive-descent scan of the table B-tree
// rooted at root, emitting rows in ascending row-id order (spec.md
// §4.8.1).
func (t *Traverser) ScanTable(root int) ([]Row, error) {
	var rows []Row
	var errs *multierror.Error
	err := t.scanTableInto(root, 0, &rows, &errs)
	if err != nil {
		return nil, err
	}
	if t.collect && errs.ErrorOrNil() != nil {
		return rows, wrapErr(KindPage, "scan_table", errs.ErrorOrNil(), map[string]interface{}{"root": root})
	}
	return rows, nil
}

func (t *Traverser) scanTableInto(pageNo, depth int, rows *[]Row, errs **multierror.Error) error {
	if err := t.checkDepth(depth, "scan_table"); err != nil {
		return err
	}
	page, err := t.pg.LoadBTreePage(pageNo)
	if err != nil {
		return wrapErr(KindPage, "scan_table", err, map[string]interface{}{"page_no": pageNo})
	}

	switch page.Kind {
	case PageLeafTable:
		for i, ptr := range page.CellPointers {
			cell, err := page.readLeafTableCell(int(ptr))
			if err != nil {
				cellErr := wrapErr(KindPage, "scan_table", err, map[string]interface{}{"page_no": pageNo, "cell_index": i})
				if t.collect {
					*errs = multierror.Append(*errs, cellErr)
					continue
				}
				return cellErr
			}
			values := t.applyAlias(cell.RowID, cell.Record.Values)
			*rows = append(*rows, Row{RowID: cell.RowID, Values: values})
		}
		return nil
	case PageInteriorTable:
		for i, ptr := range page.CellPointers {
			cell, err := page.readInteriorTableCell(int(ptr))
			if err != nil {
				return wrapErr(KindPage, "scan_table", err, map[string]interface{}{"page_no": pageNo, "cell_index": i})
			}
			if err := t.scanTableInto(int(cell.LeftChild), depth+1, rows, errs); err != nil {
				return err
			}
		}
		return t.scanTableInto(int(page.RightmostChild), depth+1, rows, errs)
	default:
		return newErr(KindConsistency, "scan_table", "unexpected page kind under table scan entry point", map[string]interface{}{
			"page_no": pageNo, "kind": page.Kind,
		})
	}
}

// SearchIndex walks the index B-tree rooted at root, returning the
// row-ids of every entry whose first key column equals query as text
// (spec.md §4.8.2). The result is not re-sorted.
func (t *Traverser) SearchIndex(root int, query string) ([]uint64, error) {
	var ids []uint64
	if err := t.searchIndexInto(root, 0, query, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (t *Traverser) searchIndexInto(pageNo, depth int, query string, ids *[]uint64) error {
	if err := t.checkDepth(depth, "search_index"); err != nil {
		return err
	}
	page, err := t.pg.LoadBTreePage(pageNo)
	if err != nil {
		return wrapErr(KindPage, "search_index", err, map[string]interface{}{"page_no": pageNo})
	}

	switch page.Kind {
	case PageLeafIndex:
		for i, ptr := range page.CellPointers {
			cell, err := page.readLeafIndexCell(int(ptr))
			if err != nil {
				return wrapErr(KindPage, "search_index", err, map[string]interface{}{"page_no": pageNo, "cell_index": i})
			}
			key := cell.KeyValues()
			if len(key) == 0 {
				continue
			}
			if key[0].String() == query {
				rowID, ok := cell.RowID()
				if !ok {
					return newErr(KindConsistency, "search_index", "index leaf cell missing row-id", map[string]interface{}{"page_no": pageNo, "cell_index": i})
				}
				*ids = append(*ids, rowID)
			}
		}
		return nil
	case PageInteriorIndex:
		lastCmp := 0
		for i, ptr := range page.CellPointers {
			cell, err := page.readInteriorIndexCell(int(ptr))
			if err != nil {
				return wrapErr(KindPage, "search_index", err, map[string]interface{}{"page_no": pageNo, "cell_index": i})
			}
			key := cell.KeyValues()
			var cellKey string
			if len(key) > 0 {
				cellKey = key[0].String()
			}
			cmp := compareText(cellKey, query)
			lastCmp = cmp
			if cmp >= 0 {
				if err := t.searchIndexInto(int(cell.LeftChild), depth+1, query, ids); err != nil {
					return err
				}
			}
			if cmp == 0 {
				rowID, ok := cell.RowID()
				if !ok {
					return newErr(KindConsistency, "search_index", "index interior cell missing row-id", map[string]interface{}{"page_no": pageNo, "cell_index": i})
				}
				*ids = append(*ids, rowID)
			}
			if cmp > 0 {
				return nil
			}
		}
		if lastCmp <= 0 {
			return t.searchIndexInto(int(page.RightmostChild), depth+1, query, ids)
		}
		return nil
	default:
		return newErr(KindConsistency, "search_index", "unexpected page kind under index search entry point", map[string]interface{}{
			"page_no": pageNo, "kind": page.Kind,
		})
	}
}

func compareText(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Lookup descends the table B-tree rooted at root, emitting the row for
// each of sortedRowIDs in input order (spec.md §4.8.3). sortedRowIDs
// must already be sorted ascending, matching natural index-scan order.
func (t *Traverser) Lookup(root int, sortedRowIDs []uint64) ([]Row, error) {
	if len(sortedRowIDs) == 0 {
		return nil, nil
	}
	rows := make([]Row, 0, len(sortedRowIDs))
	if err := t.lookupInto(root, 0, sortedRowIDs, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (t *Traverser) lookupInto(pageNo, depth int, ids []uint64, rows *[]Row) error {
	if len(ids) == 0 {
		return nil
	}
	if err := t.checkDepth(depth, "lookup"); err != nil {
		return err
	}
	page, err := t.pg.LoadBTreePage(pageNo)
	if err != nil {
		return wrapErr(KindPage, "lookup", err, map[string]interface{}{"page_no": pageNo})
	}

	switch page.Kind {
	case PageInteriorTable:
		remaining := ids
		for i, ptr := range page.CellPointers {
			cell, err := page.readInteriorTableCell(int(ptr))
			if err != nil {
				return wrapErr(KindPage, "lookup", err, map[string]interface{}{"page_no": pageNo, "cell_index": i})
			}
			p := partitionPoint(remaining, cell.RowID)
			if p > 0 {
				if err := t.lookupInto(int(cell.LeftChild), depth+1, remaining[:p], rows); err != nil {
					return err
				}
			}
			remaining = remaining[p:]
		}
		if len(remaining) > 0 {
			return t.lookupInto(int(page.RightmostChild), depth+1, remaining, rows)
		}
		return nil
	case PageLeafTable:
		cellIdx := 0
		for _, id := range ids {
			found := false
			for cellIdx < len(page.CellPointers) {
				cell, err := page.readLeafTableCell(int(page.CellPointers[cellIdx]))
				if err != nil {
					return wrapErr(KindPage, "lookup", err, map[string]interface{}{"page_no": pageNo, "cell_index": cellIdx})
				}
				if cell.RowID == id {
					values := t.applyAlias(cell.RowID, cell.Record.Values)
					*rows = append(*rows, Row{RowID: cell.RowID, Values: values})
					cellIdx++
					found = true
					break
				}
				if cell.RowID > id {
					break
				}
				cellIdx++
			}
			if !found {
				return newErr(KindConsistency, "lookup", "index referenced a row-id absent from the table", map[string]interface{}{
					"page_no": pageNo, "row_id": id,
				})
			}
		}
		return nil
	default:
		return newErr(KindConsistency, "lookup", "unexpected page kind under index-assisted lookup", map[string]interface{}{
			"page_no": pageNo, "kind": page.Kind,
		})
	}
}

// partitionPoint returns the index p such that ids[:p] are all <= k and
// ids[p:] are all > k, assuming ids is sorted ascending.
func partitionPoint(ids []uint64, k uint64) int {
	return sort.Search(len(ids), func(i int) bool { return ids[i] > k })
}
