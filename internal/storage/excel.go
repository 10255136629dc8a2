package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/roster/internal/core"
)

// SheetName is the sheet Save writes the roster to.
const SheetName = "Alunos"

// ExcelSource keeps the roster in an .xlsx workbook with the columns
// Sobrenome, Nome do(a) Aluno(a) and RM.
type ExcelSource struct {
	path string
}

// NewExcelSource returns a source for the workbook at path.
func NewExcelSource(path string) *ExcelSource {
	return &ExcelSource{path: path}
}

func (s *ExcelSource) Name() string {
	return "excel:" + s.path
}

// Path returns the workbook path.
func (s *ExcelSource) Path() string {
	return s.path
}

// Load reads the first sheet. The header may be anywhere in the leading rows
// and the columns may be in any order; a missing surname column yields
// blank surnames.
func (s *ExcelSource) Load(ctx context.Context) ([]core.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := firstSheetRows(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}

	headerIdx, l, ok := findHeader(rows)
	if !ok {
		return nil, fmt.Errorf("%s: %w", s.path, ErrHeaderNotFound)
	}

	out := make([]core.RawRow, 0, len(rows)-headerIdx-1)
	for _, row := range rows[headerIdx+1:] {
		if core.IsEmptyRow(row) {
			continue
		}
		out = append(out, l.rawRow(row))
	}
	return out, nil
}

// Save writes records to a fresh workbook and atomically replaces the file.
func (s *ExcelSource) Save(ctx context.Context, records []core.Student) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := buildWorkbook(records)
	if err != nil {
		return err
	}
	defer f.Close()

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".roster-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func buildWorkbook(records []core.Student) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	header := core.Columns()
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, rec := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{rec.Surname, rec.FullName, rec.ID}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	f.SetColWidth(SheetName, "A", "A", 20)
	f.SetColWidth(SheetName, "B", "B", 40)
	f.SetColWidth(SheetName, "C", "C", 12)
	f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return f, nil
}

// firstSheetRows returns the rows of the first sheet with raw cell values,
// so numeric RMs are not run through display formats.
func firstSheetRows(f *excelize.File) ([][]string, error) {
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrNoSheets
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}
