package spreadsheet

import (
	"strings"
	"testing"
)

func TestReadRowsMapsHeaderToFields(t *testing.T) {
	input := "name,class,mobile,2024-07-01\nAlice,7A,111,P\nBob,7B,,L\n"

	rows, err := ReadRows(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0]["name"] != "Alice" || rows[0]["2024-07-01"] != "P" {
		t.Fatalf("row 0 = %v", rows[0])
	}
	if rows[1]["mobile"] != "" || rows[1]["2024-07-01"] != "L" {
		t.Fatalf("row 1 = %v", rows[1])
	}
}

func TestReadRowsToleratesShortRecords(t *testing.T) {
	input := "name,class,2024-07-01\nCarol,7A\n"

	rows, err := ReadRows(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if rows[0]["name"] != "Carol" {
		t.Fatalf("row = %v", rows[0])
	}
	if _, ok := rows[0]["2024-07-01"]; ok {
		t.Fatalf("missing cell materialized: %v", rows[0])
	}
}

func TestReadRowsEmptyInput(t *testing.T) {
	rows, err := ReadRows(strings.NewReader(""))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if rows != nil {
		t.Fatalf("expected no rows, got %v", rows)
	}
}
