package main

// Record is a decoded SQLite record payload: an ordered list of column
// values, in the order declared by the record header's serial types.
type Record struct {
	SerialTypes []uint64
	Values      []Value
}

// readRecord decodes a full record payload per spec.md §3's record
// format: a varint header-size (counting itself), followed by one
// serial-type varint per column, followed by the concatenated column
// bodies in the same order (invariant 4).
func readRecord(payload []byte) (*Record, error) {
	headerSize, n, ok := readVarint(payload, 0)
	if !ok {
		return nil, newErr(KindPage, "read_record", "truncated record header size", nil)
	}

	var serialTypes []uint64
	offset := n
	for offset < int(headerSize) {
		st, consumed, ok := readVarint(payload, offset)
		if !ok {
			return nil, newErr(KindPage, "read_record", "truncated serial type varint", map[string]interface{}{
				"offset": offset,
			})
		}
		serialTypes = append(serialTypes, st)
		offset += consumed
	}
	if offset != int(headerSize) {
		return nil, newErr(KindPage, "read_record", "record header size inconsistent with serial types", map[string]interface{}{
			"header_size": headerSize, "consumed": offset,
		})
	}

	bodySize := 0
	for _, st := range serialTypes {
		bodySize += serialTypeWidth(st)
	}
	if int(headerSize)+bodySize > len(payload) {
		return nil, newErr(KindPage, "read_record", "record body shorter than header declares", map[string]interface{}{
			"header_size": headerSize, "body_size": bodySize, "payload_len": len(payload),
		})
	}

	values := make([]Value, len(serialTypes))
	bodyOffset := int(headerSize)
	for i, st := range serialTypes {
		v, consumed, err := readValue(st, payload, bodyOffset)
		if err != nil {
			return nil, wrapErr(KindRecord, "read_record", err, map[string]interface{}{
				"column_index": i, "serial_type": st,
			})
		}
		values[i] = v
		bodyOffset += consumed
	}

	return &Record{SerialTypes: serialTypes, Values: values}, nil
}
