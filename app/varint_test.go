package main

import (
	"bytes"
	"testing"
)

func TestReadVarintSingleByte(t *testing.T) {
	tests := []struct {
		in   []byte
		want uint64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7f}, 127},
	}
	for _, tt := range tests {
		got, n, ok := readVarint(tt.in, 0)
		if !ok {
			t.Fatalf("readVarint(%v): ok=false", tt.in)
		}
		if got != tt.want || n != 1 {
			t.Errorf("readVarint(%v) = (%d, %d), want (%d, 1)", tt.in, got, n, tt.want)
		}
	}
}

func TestReadVarintTwoByte(t *testing.T) {
	// 128 encodes as [0x81, 0x00]: the first byte has its high bit set
	// and low 7 bits equal to 1; the second byte ends the varint and
	// shifts that 1 left by 7 bits, giving 1<<7 = 128.
	got, n, ok := readVarint([]byte{0x81, 0x00}, 0)
	if !ok || got != 128 || n != 2 {
		t.Fatalf("readVarint([0x81,0x00]) = (%d, %d, %v), want (128, 2, true)", got, n, ok)
	}
}

func TestReadVarintNineByteForm(t *testing.T) {
	data := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	got, n, ok := readVarint(data, 0)
	if !ok || n != 9 {
		t.Fatalf("readVarint(9 0xff bytes): n=%d ok=%v", n, ok)
	}
	want := ^uint64(0)
	if got != want {
		t.Errorf("readVarint(9 0xff bytes) = %d, want %d", got, want)
	}
}

func TestReadVarintTruncated(t *testing.T) {
	if _, _, ok := readVarint([]byte{0x81}, 0); ok {
		t.Error("expected truncated varint to fail")
	}
	if _, _, ok := readVarint(nil, 0); ok {
		t.Error("expected empty input to fail")
	}
}

func TestVarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 255, 16384, 1 << 20, 1 << 40, ^uint64(0), 1 << 56, (1 << 56) - 1}
	for _, v := range values {
		enc := putVarint(v)
		got, n, ok := readVarint(enc, 0)
		if !ok {
			t.Fatalf("putVarint(%d) -> readVarint failed, enc=%v", v, enc)
		}
		if n != len(enc) {
			t.Errorf("putVarint(%d): consumed %d of %d encoded bytes", v, n, len(enc))
		}
		if got != v {
			t.Errorf("round trip of %d gave %d (encoded %v)", v, got, enc)
		}
	}
}

func TestPutVarint128(t *testing.T) {
	got := putVarint(128)
	want := []byte{0x81, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("putVarint(128) = %v, want %v", got, want)
	}
}
