package main

import "encoding/binary"

// Header is the 100-byte SQLite database file header. Only PageSize is
// consulted by the rest of the system; the remaining fields are parsed
// and retained for diagnostics (see SPEC_FULL.md §4.3a).
type Header struct {
	MagicNumber      [16]byte
	pageSizeRaw      uint16
	FileFormatWrite  uint8
	FileFormatRead   uint8
	ReservedSpace    uint8
	MaxPayloadFrac   uint8
	MinPayloadFrac   uint8
	LeafPayloadFrac  uint8
	FileChangeCount  uint32
	DatabaseSize     uint32
	FirstFreePage    uint32
	FreePageCount    uint32
	SchemaCookie     uint32
	SchemaFormat     uint32
	DefaultCacheSize uint32
	LargestRootPage  uint32
	TextEncoding     uint32
	UserVersion      uint32
	IncrVacuumMode   uint32
	ApplicationID    uint32
	VersionValidFor  uint32
	SQLiteVersion    uint32
}

const headerSize = 100

// PageSize returns the decoded page size, applying the SQLite sentinel
// where the raw value 1 means 65536 (spec.md §3 invariant 1).
func (h *Header) PageSize() int {
	if h.pageSizeRaw == 1 {
		return 65536
	}
	return int(h.pageSizeRaw)
}

// parseHeader decodes the 100-byte database header from buf, validating
// the magic number, the page-size invariant, and that buf is long enough.
func parseHeader(buf []byte) (*Header, error) {
	if len(buf) < headerSize {
		return nil, newErr(KindHeader, "parse_header", "truncated database header", map[string]interface{}{
			"have_bytes": len(buf),
		})
	}

	var h Header
	copy(h.MagicNumber[:], buf[0:16])
	expectedMagic := "SQLite format 3\x00"
	if string(h.MagicNumber[:]) != expectedMagic {
		return nil, newErr(KindHeader, "parse_header", "bad magic number", map[string]interface{}{
			"got": string(h.MagicNumber[:]),
		})
	}

	h.pageSizeRaw = binary.BigEndian.Uint16(buf[16:18])
	h.FileFormatWrite = buf[18]
	h.FileFormatRead = buf[19]
	h.ReservedSpace = buf[20]
	h.MaxPayloadFrac = buf[21]
	h.MinPayloadFrac = buf[22]
	h.LeafPayloadFrac = buf[23]
	h.FileChangeCount = binary.BigEndian.Uint32(buf[24:28])
	h.DatabaseSize = binary.BigEndian.Uint32(buf[28:32])
	h.FirstFreePage = binary.BigEndian.Uint32(buf[32:36])
	h.FreePageCount = binary.BigEndian.Uint32(buf[36:40])
	h.SchemaCookie = binary.BigEndian.Uint32(buf[40:44])
	h.SchemaFormat = binary.BigEndian.Uint32(buf[44:48])
	h.DefaultCacheSize = binary.BigEndian.Uint32(buf[48:52])
	h.LargestRootPage = binary.BigEndian.Uint32(buf[52:56])
	h.TextEncoding = binary.BigEndian.Uint32(buf[56:60])
	h.UserVersion = binary.BigEndian.Uint32(buf[60:64])
	h.IncrVacuumMode = binary.BigEndian.Uint32(buf[64:68])
	h.ApplicationID = binary.BigEndian.Uint32(buf[68:72])
	h.VersionValidFor = binary.BigEndian.Uint32(buf[92:96])
	h.SQLiteVersion = binary.BigEndian.Uint32(buf[96:100])

	size := h.PageSize()
	if size < 512 || size > 65536 || (size&(size-1)) != 0 {
		return nil, newErr(KindHeader, "parse_header", "invalid page size", map[string]interface{}{
			"page_size": size,
		})
	}

	return &h, nil
}
