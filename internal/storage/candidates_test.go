package storage

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/roster/internal/core"
)

func TestReadCandidates_CSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []core.CandidateRow
	}{
		{
			name:  "header with BOM",
			input: "\xEF\xBB\xBFNome,RM\nMaria Silva,100\nJoão Souza,abc\n",
			want: []core.CandidateRow{
				{Row: 2, Name: "Maria Silva", RawID: "100"},
				{Row: 3, Name: "João Souza", RawID: "abc"},
			},
		},
		{
			name:  "no header",
			input: "Maria Silva,100\n\nAna Costa,101\n",
			want: []core.CandidateRow{
				{Row: 1, Name: "Maria Silva", RawID: "100"},
				{Row: 3, Name: "Ana Costa", RawID: "101"},
			},
		},
		{
			name:  "semicolon separated, columns swapped",
			input: "RM;Nome do(a) Aluno(a)\n7;Bruno Lima\n",
			want: []core.CandidateRow{
				{Row: 2, Name: "Bruno Lima", RawID: "7"},
			},
		},
		{
			name:  "missing id cell",
			input: "Carla Dias\n",
			want: []core.CandidateRow{
				{Row: 1, Name: "Carla Dias", RawID: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadCandidates("batch.csv", strings.NewReader(tt.input), 0)
			if err != nil {
				t.Fatalf("ReadCandidates: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("row %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestReadCandidates_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetSheetRow(sheet, "A1", &[]any{"Nome", "RM"})
	f.SetSheetRow(sheet, "A2", &[]any{"Maria Silva", 100})
	f.SetSheetRow(sheet, "A4", &[]any{"Ana Costa", "101"})
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	f.Close()

	got, err := ReadCandidates("Batch.XLSX", bytes.NewReader(buf.Bytes()), 0)
	if err != nil {
		t.Fatalf("ReadCandidates: %v", err)
	}

	want := []core.CandidateRow{
		{Row: 2, Name: "Maria Silva", RawID: "100"},
		{Row: 4, Name: "Ana Costa", RawID: "101"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReadCandidates_Errors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		input    string
		maxBytes int64
		wantErr  error
	}{
		{"unsupported extension", "batch.pdf", "x", 0, ErrUnsupportedType},
		{"empty csv", "batch.csv", "\n\n", 0, ErrEmptyFile},
		{"header only", "batch.csv", "Nome,RM\n", 0, nil},
		{"too large", "batch.csv", strings.Repeat("Maria Silva,100\n", 100), 64, ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ReadCandidates(tt.file, strings.NewReader(tt.input), tt.maxBytes)
			if tt.wantErr == nil {
				if err != nil || len(rows) != 0 {
					t.Errorf("got %v, %v; want no rows and no error", rows, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
