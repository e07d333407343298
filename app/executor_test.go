package main

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

// buildSingleTableDB assembles a 2-page database file: page 1 is the
// schema leaf (one table, "apples"), page 2 is that table's data leaf
// with rows (id, name) where id is the rowid alias.
func buildSingleTableDB(t *testing.T, pageSize int) string {
	t.Helper()

	createSQL := `CREATE TABLE apples (id INTEGER PRIMARY KEY, name TEXT)`
	schemaPayload := encodeRecordValues("table", "apples", "apples", 2, createSQL)
	page1 := buildSchemaPage(pageSize, [][]byte{schemaPayload})

	rows := [][2]interface{}{
		{uint64(1), "Fuji"},
		{uint64(2), "Gala"},
		{uint64(3), "Honeycrisp"},
	}
	page2 := make([]byte, pageSize)
	page2[0] = byte(PageLeafTable)
	cellEnd := pageSize
	var pointers []int
	for _, r := range rows {
		rowID := r[0].(uint64)
		name := r[1].(string)
		payload := encodeRecordValues(nil, name) // NULL for the rowid-alias column
		cell := append(append(append([]byte{}, putVarint(uint64(len(payload)))...), putVarint(rowID)...), payload...)
		cellEnd -= len(cell)
		copy(page2[cellEnd:], cell)
		pointers = append(pointers, cellEnd)
	}
	putU16 := func(buf []byte, off int, v uint16) {
		buf[off] = byte(v >> 8)
		buf[off+1] = byte(v)
	}
	putU16(page2, 3, uint16(len(rows)))
	putU16(page2, 5, uint16(cellEnd))
	for i, p := range pointers {
		putU16(page2, 8+i*2, uint16(p))
	}

	file := append(append([]byte{}, page1...), page2...)

	f, err := os.CreateTemp(t.TempDir(), "test-*.db")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	if _, err := f.Write(file); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f.Close()
	return f.Name()
}

func TestEngineDBInfoAndTables(t *testing.T) {
	path := buildSingleTableDB(t, 512)
	engine, rm, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rm.Close()

	pageSize, tableCount, err := engine.DBInfo()
	if err != nil {
		t.Fatalf("DBInfo: %v", err)
	}
	if pageSize != 512 || tableCount != 1 {
		t.Errorf("DBInfo = (%d, %d), want (512, 1)", pageSize, tableCount)
	}

	names := engine.TableNames()
	if len(names) != 1 || names[0] != "apples" {
		t.Errorf("TableNames = %v, want [apples]", names)
	}
}

func TestEngineExecuteSelectCount(t *testing.T) {
	path := buildSingleTableDB(t, 512)
	engine, rm, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rm.Close()

	var out bytes.Buffer
	if err := engine.Execute("SELECT COUNT(*) FROM apples", NewFormatter(&out)); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if strings.TrimSpace(out.String()) != "3" {
		t.Errorf("output = %q, want \"3\"", out.String())
	}
}

func TestEngineExecuteSelectColumnsWithRowidAlias(t *testing.T) {
	path := buildSingleTableDB(t, 512)
	engine, rm, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rm.Close()

	var out bytes.Buffer
	if err := engine.Execute("SELECT id, name FROM apples", NewFormatter(&out)); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got := strings.TrimSpace(out.String())
	want := "1|Fuji\n2|Gala\n3|Honeycrisp"
	if got != want {
		t.Errorf("output =\n%s\nwant\n%s", got, want)
	}
}

func TestEngineExecuteSelectWithWhere(t *testing.T) {
	path := buildSingleTableDB(t, 512)
	engine, rm, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rm.Close()

	var out bytes.Buffer
	if err := engine.Execute("SELECT name FROM apples WHERE name = 'Gala'", NewFormatter(&out)); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if strings.TrimSpace(out.String()) != "Gala" {
		t.Errorf("output = %q, want \"Gala\"", out.String())
	}
}

func TestEngineExecuteRejectsDDL(t *testing.T) {
	path := buildSingleTableDB(t, 512)
	engine, rm, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rm.Close()

	var out bytes.Buffer
	if err := engine.Execute("CREATE TABLE x (id INTEGER)", NewFormatter(&out)); err == nil {
		t.Error("expected DDL at executor entry to be rejected")
	}
}

func TestEngineScanCheckCleanTableReportsNoIssues(t *testing.T) {
	path := buildSingleTableDB(t, 512)
	engine, rm, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rm.Close()

	rowCount, issues, err := engine.ScanCheck("apples")
	if err != nil {
		t.Fatalf("ScanCheck: %v", err)
	}
	if rowCount != 3 {
		t.Errorf("rowCount = %d, want 3", rowCount)
	}
	if len(issues) != 0 {
		t.Errorf("issues = %v, want none", issues)
	}

	var out bytes.Buffer
	if err := NewFormatter(&out).WriteScanCheck(rowCount, issues); err != nil {
		t.Fatalf("WriteScanCheck: %v", err)
	}
	want := "rows scanned: 3\nissues: 0\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestEngineExecuteUnknownTableFails(t *testing.T) {
	path := buildSingleTableDB(t, 512)
	engine, rm, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rm.Close()

	var out bytes.Buffer
	if err := engine.Execute("SELECT id FROM oranges", NewFormatter(&out)); err == nil {
		t.Error("expected unknown table to fail")
	}
}
