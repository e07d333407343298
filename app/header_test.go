package main

import (
	"encoding/binary"
	"testing"
)

func buildHeader(pageSizeRaw uint16) []byte {
	buf := make([]byte, headerSize)
	copy(buf[0:16], []byte("SQLite format 3\x00"))
	binary.BigEndian.PutUint16(buf[16:18], pageSizeRaw)
	buf[18] = 1 // file format write
	buf[19] = 1 // file format read
	return buf
}

func TestParseHeaderPageSize(t *testing.T) {
	buf := buildHeader(4096)
	h, err := parseHeader(buf)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if h.PageSize() != 4096 {
		t.Errorf("PageSize() = %d, want 4096", h.PageSize())
	}
}

func TestParseHeaderSentinelPageSize(t *testing.T) {
	buf := buildHeader(1)
	h, err := parseHeader(buf)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if h.PageSize() != 65536 {
		t.Errorf("PageSize() with raw=1 = %d, want 65536", h.PageSize())
	}
}

func TestParseHeaderBadMagic(t *testing.T) {
	buf := buildHeader(4096)
	buf[0] = 'X'
	if _, err := parseHeader(buf); err == nil {
		t.Error("expected bad magic number to fail")
	}
}

func TestParseHeaderInvalidPageSize(t *testing.T) {
	buf := buildHeader(100) // not a power of two
	if _, err := parseHeader(buf); err == nil {
		t.Error("expected invalid page size to fail")
	}
}

func TestParseHeaderTruncated(t *testing.T) {
	if _, err := parseHeader(make([]byte, 50)); err == nil {
		t.Error("expected truncated header to fail")
	}
}
