package main

import "encoding/binary"

// PageKind is the 1-byte tag at the start of every B-tree page.
type PageKind uint8

const (
	PageInteriorIndex PageKind = 0x02
	PageInteriorTable PageKind = 0x05
	PageLeafIndex     PageKind = 0x0a
	PageLeafTable     PageKind = 0x0d
)

func (k PageKind) valid() bool {
	switch k {
	case PageInteriorIndex, PageInteriorTable, PageLeafIndex, PageLeafTable:
		return true
	default:
		return false
	}
}

// IsInterior reports whether k carries child pointers rather than rows.
func (k PageKind) IsInterior() bool {
	return k == PageInteriorIndex || k == PageInteriorTable
}

// IsTable reports whether k belongs to a table B-tree.
func (k PageKind) IsTable() bool {
	return k == PageInteriorTable || k == PageLeafTable
}

// Page is a decoded B-tree page view: header fields plus the raw page
// buffer, which cell readers index into directly via cell pointers
// (pointers are offsets from the start of the page, even on page 1).
type Page struct {
	Kind                PageKind
	FirstFreeblock      uint16
	CellCount           uint16
	CellContentStart    uint16
	FragmentedFreeBytes uint8
	RightmostChild      uint32 // valid only when Kind.IsInterior()
	CellPointers        []uint16
	buf                 []byte
}

// decodePage parses a page header, the optional right-most child
// pointer, and the cell pointer array from buf. isPageOne indicates the
// caller should skip the 100-byte database header before the B-tree
// page header begins (spec.md §3, "Page").
func decodePage(buf []byte, isPageOne bool) (*Page, error) {
	headerStart := 0
	if isPageOne {
		headerStart = headerSize
	}
	if len(buf) < headerStart+8 {
		return nil, newErr(KindPage, "decode_page", "page too small for header", map[string]interface{}{
			"have_bytes": len(buf),
		})
	}

	kind := PageKind(buf[headerStart])
	if !kind.valid() {
		return nil, newErr(KindPage, "decode_page", "unknown page kind", map[string]interface{}{
			"kind": buf[headerStart],
		})
	}

	p := &Page{
		Kind:                kind,
		FirstFreeblock:      binary.BigEndian.Uint16(buf[headerStart+1 : headerStart+3]),
		CellCount:           binary.BigEndian.Uint16(buf[headerStart+3 : headerStart+5]),
		CellContentStart:    binary.BigEndian.Uint16(buf[headerStart+5 : headerStart+7]),
		FragmentedFreeBytes: buf[headerStart+7],
		buf:                 buf,
	}

	pointerStart := headerStart + 8
	if kind.IsInterior() {
		if len(buf) < headerStart+12 {
			return nil, newErr(KindPage, "decode_page", "page too small for interior header", nil)
		}
		p.RightmostChild = binary.BigEndian.Uint32(buf[headerStart+8 : headerStart+12])
		pointerStart = headerStart + 12
	}

	if pointerStart+int(p.CellCount)*2 > len(buf) {
		return nil, newErr(KindPage, "decode_page", "cell pointer array exceeds page bounds", map[string]interface{}{
			"cell_count": p.CellCount,
		})
	}

	p.CellPointers = make([]uint16, p.CellCount)
	pageSize := len(buf)
	for i := 0; i < int(p.CellCount); i++ {
		off := pointerStart + i*2
		ptr := binary.BigEndian.Uint16(buf[off : off+2])
		if ptr == 0 || int(ptr) >= pageSize {
			return nil, newErr(KindPage, "decode_page", "invalid cell pointer", map[string]interface{}{
				"index": i, "pointer": ptr, "page_size": pageSize,
			})
		}
		p.CellPointers[i] = ptr
	}

	return p, nil
}

// LeafTableCell is a row from a leaf table B-tree page.
type LeafTableCell struct {
	RowID  uint64
	Record *Record
}

// readLeafTableCell decodes a cell at offset per spec.md §4.4:
// varint payload-size (discarded beyond bounds-checking), varint
// row-id, then the record payload.
func (p *Page) readLeafTableCell(offset int) (*LeafTableCell, error) {
	buf := p.buf
	payloadSize, n1, ok := readVarint(buf, offset)
	if !ok {
		return nil, newErr(KindPage, "read_leaf_table_cell", "truncated payload size", nil)
	}
	rowID, n2, ok := readVarint(buf, offset+n1)
	if !ok {
		return nil, newErr(KindPage, "read_leaf_table_cell", "truncated row id", nil)
	}
	payloadStart := offset + n1 + n2
	payloadEnd := payloadStart + int(payloadSize)
	if payloadEnd > len(buf) {
		return nil, newErr(KindRecord, "read_leaf_table_cell", "record does not fit on page (overflow unsupported)", map[string]interface{}{
			"payload_size": payloadSize,
		})
	}
	rec, err := readRecord(buf[payloadStart:payloadEnd])
	if err != nil {
		return nil, wrapErr(KindRecord, "read_leaf_table_cell", err, map[string]interface{}{"row_id": rowID})
	}
	return &LeafTableCell{RowID: rowID, Record: rec}, nil
}

// InteriorTableCell is a separator cell from an interior table page.
type InteriorTableCell struct {
	LeftChild uint32
	RowID     uint64
}

func (p *Page) readInteriorTableCell(offset int) (*InteriorTableCell, error) {
	buf := p.buf
	if offset+4 > len(buf) {
		return nil, newErr(KindPage, "read_interior_table_cell", "truncated left child pointer", nil)
	}
	leftChild := binary.BigEndian.Uint32(buf[offset : offset+4])
	rowID, _, ok := readVarint(buf, offset+4)
	if !ok {
		return nil, newErr(KindPage, "read_interior_table_cell", "truncated row id", nil)
	}
	return &InteriorTableCell{LeftChild: leftChild, RowID: rowID}, nil
}

// LeafIndexCell is a row from a leaf index B-tree page. The record's
// last value is the row-id of the referenced table row.
type LeafIndexCell struct {
	Record *Record
}

// RowID extracts the trailing row-id column of an index record.
func (c *LeafIndexCell) RowID() (uint64, bool) {
	if len(c.Record.Values) == 0 {
		return 0, false
	}
	return c.Record.Values[len(c.Record.Values)-1].AsRowid()
}

// KeyValues returns the index record's values minus the trailing row-id.
func (c *LeafIndexCell) KeyValues() []Value {
	if len(c.Record.Values) == 0 {
		return nil
	}
	return c.Record.Values[:len(c.Record.Values)-1]
}

func (p *Page) readLeafIndexCell(offset int) (*LeafIndexCell, error) {
	buf := p.buf
	payloadSize, n1, ok := readVarint(buf, offset)
	if !ok {
		return nil, newErr(KindPage, "read_leaf_index_cell", "truncated payload size", nil)
	}
	payloadStart := offset + n1
	payloadEnd := payloadStart + int(payloadSize)
	if payloadEnd > len(buf) {
		return nil, newErr(KindRecord, "read_leaf_index_cell", "record does not fit on page (overflow unsupported)", nil)
	}
	rec, err := readRecord(buf[payloadStart:payloadEnd])
	if err != nil {
		return nil, wrapErr(KindRecord, "read_leaf_index_cell", err, nil)
	}
	return &LeafIndexCell{Record: rec}, nil
}

// InteriorIndexCell is a separator cell from an interior index page;
// its key shape matches LeafIndexCell minus the leading child pointer.
type InteriorIndexCell struct {
	LeftChild uint32
	Record    *Record
}

func (c *InteriorIndexCell) RowID() (uint64, bool) {
	if len(c.Record.Values) == 0 {
		return 0, false
	}
	return c.Record.Values[len(c.Record.Values)-1].AsRowid()
}

func (c *InteriorIndexCell) KeyValues() []Value {
	if len(c.Record.Values) == 0 {
		return nil
	}
	return c.Record.Values[:len(c.Record.Values)-1]
}

func (p *Page) readInteriorIndexCell(offset int) (*InteriorIndexCell, error) {
	buf := p.buf
	if offset+4 > len(buf) {
		return nil, newErr(KindPage, "read_interior_index_cell", "truncated left child pointer", nil)
	}
	leftChild := binary.BigEndian.Uint32(buf[offset : offset+4])
	payloadSize, n1, ok := readVarint(buf, offset+4)
	if !ok {
		return nil, newErr(KindPage, "read_interior_index_cell", "truncated payload size", nil)
	}
	payloadStart := offset + 4 + n1
	payloadEnd := payloadStart + int(payloadSize)
	if payloadEnd > len(buf) {
		return nil, newErr(KindRecord, "read_interior_index_cell", "record does not fit on page (overflow unsupported)", nil)
	}
	rec, err := readRecord(buf[payloadStart:payloadEnd])
	if err != nil {
		return nil, wrapErr(KindRecord, "read_interior_index_cell", err, nil)
	}
	return &InteriorIndexCell{LeftChild: leftChild, Record: rec}, nil
}
