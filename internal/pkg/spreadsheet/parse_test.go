package spreadsheet

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/yigit/placementportal/internal/pkg/apperrors"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Roll Number", "rollnumber"},
		{"roll_number", "rollnumber"},
		{"rollNumber", "rollnumber"},
		{" Roll-No. ", "rollno"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeHeader(tt.input); got != tt.expected {
			t.Errorf("NormalizeHeader(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestParse_CSV(t *testing.T) {
	input := "\ufeffName,Email,Roll Number,Department\n" +
		"Asha, asha@x.edu ,21CSE001,CSE\n" +
		",,,\n" +
		"Ravi,ravi@x.edu\n"

	table, err := Parse(strings.NewReader(input), "students.CSV")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(table.Rows))
	}

	first := table.Rows[0]
	if first.Number != 2 || first.Get("email") != "asha@x.edu" || first.Get("roll_number") != "21CSE001" {
		t.Errorf("Unexpected first row: %+v", first)
	}
	last := table.Rows[1]
	if last.Number != 4 || last.Get("department") != "" {
		t.Errorf("Unexpected padded row: %+v", last)
	}
	if err := RequireColumns(table.Header, "name", "email", "rollnumber", "department"); err != nil {
		t.Errorf("Expected header to satisfy columns, got %v", err)
	}
}

func TestParse_UnsupportedFile(t *testing.T) {
	_, err := Parse(strings.NewReader("x"), "students.pdf")
	if !errors.Is(err, apperrors.ErrUnsupportedFile) {
		t.Errorf("Expected ErrUnsupportedFile, got %v", err)
	}
}

func TestRequireColumns_NamesMissing(t *testing.T) {
	err := RequireColumns([]string{"name", "email"}, "Name", "Roll Number", "Department")
	if !errors.Is(err, apperrors.ErrMissingColumns) {
		t.Fatalf("Expected ErrMissingColumns, got %v", err)
	}
	msg := apperrors.MessageOf(err)
	if !strings.Contains(msg, "Roll Number") || !strings.Contains(msg, "Department") || strings.Contains(msg, "Name,") {
		t.Errorf("Unexpected message: %s", msg)
	}
}

func TestExport_ReadsBack(t *testing.T) {
	var buf bytes.Buffer
	err := Export(&buf, "Roster", []string{"Name", "Roll Number", "CGPA"}, [][]interface{}{
		{"Asha", "21CSE001", 8.5},
		{"Ravi", "21CSE002", 7},
	})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	table, err := Parse(&buf, "roster.xlsx")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[1].Get("Roll Number") != "21CSE002" || table.Rows[0].Get("cgpa") != "8.5" {
		t.Errorf("Unexpected rows: %+v", table.Rows)
	}
}
