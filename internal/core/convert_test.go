package core

import (
	"errors"
	"testing"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    int64
		wantErr bool
	}{
		{"digits", "100", 100, false},
		{"padded", "  42 ", 42, false},
		{"leading zeros", "007", 7, false},
		{"excel formula", `="1234"`, 1234, false},
		{"excel float", "100.0", 100, false},
		{"excel float many zeros", "100.000", 100, false},
		{"int", 5, 5, false},
		{"int64", int64(9), 9, false},
		{"integral float64", float64(12), 12, false},
		{"letters", "abc", 0, true},
		{"mixed", "12a", 0, true},
		{"negative string", "-5", 0, true},
		{"plus sign", "+5", 0, true},
		{"fraction", "10.5", 0, true},
		{"fractional float64", 10.5, 0, true},
		{"negative int", -1, 0, true},
		{"empty", "", 0, true},
		{"blank", "   ", 0, true},
		{"nil", nil, 0, true},
		{"overflow", "99999999999999999999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseID(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseID(%v) = %d, want error", tt.in, got)
				}
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("ParseID(%v) error = %v, want ErrInvalidInput", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseID(%v) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseID(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  plain  ", "plain"},
		{`="123"`, "123"},
		{"=456", "456"},
		{`"quoted"`, "quoted"},
		{"'single'", "single"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanCell(tt.in); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsEmptyRow(t *testing.T) {
	if !IsEmptyRow([]string{"", "  ", "\t"}) {
		t.Error("blank row should be empty")
	}
	if IsEmptyRow([]string{"", "x"}) {
		t.Error("row with a value should not be empty")
	}
	if !IsEmptyRow(nil) {
		t.Error("nil row should be empty")
	}
}

func TestParseColumn(t *testing.T) {
	tests := []struct {
		in      string
		want    Column
		wantErr bool
	}{
		{"Sobrenome", ColumnSurname, false},
		{"nome do(a) aluno(a)", ColumnFullName, false},
		{"name", ColumnFullName, false},
		{"RM", ColumnID, false},
		{"2", ColumnID, false},
		{"3", 0, true},
		{"email", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseColumn(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("ParseColumn(%q) error = %v, want ErrInvalidInput", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseColumn(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}
