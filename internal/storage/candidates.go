package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/roster/internal/core"
)

// ReadCandidates parses a batch file of students to validate. The format is
// chosen by the extension of name: .xlsx (first sheet) or .csv (comma or
// semicolon separated). A header row is optional; without one the columns
// are name, RM. Row numbers are the 1-based line (or sheet row) numbers the
// operator sees in the file. Blank rows are skipped. maxBytes <= 0 means no
// size limit.
func ReadCandidates(name string, r io.Reader, maxBytes int64) ([]core.CandidateRow, error) {
	lr := newLimitReader(r, maxBytes)

	var (
		rows    [][]string
		lineNos []int
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".xlsx", ".xlsm":
		rows, lineNos, err = readXLSX(lr)
	case ".csv", ".txt":
		rows, lineNos, err = readCSV(lr)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	l := defaultCandidateLayout
	start := 0
	if h := matchHeader(rows[0]); h.complete() {
		l = h
		start = 1
	}

	out := make([]core.CandidateRow, 0, len(rows)-start)
	for i := start; i < len(rows); i++ {
		raw := l.rawRow(rows[i])
		out = append(out, core.CandidateRow{
			Row:   lineNos[i],
			Name:  raw.FullName,
			RawID: raw.ID,
		})
	}
	return out, nil
}

func readXLSX(r io.Reader) ([][]string, []int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	all, err := firstSheetRows(f)
	if err != nil {
		return nil, nil, err
	}

	var rows [][]string
	var lineNos []int
	for i, row := range all {
		if core.IsEmptyRow(row) {
			continue
		}
		rows = append(rows, row)
		lineNos = append(lineNos, i+1)
	}
	return rows, lineNos, nil
}

func readCSV(r io.Reader) ([][]string, []int, error) {
	cr := csv.NewReader(textReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	var rows [][]string
	var lineNos []int
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, ErrFileTooLarge) {
				return nil, nil, err
			}
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}
		if len(rec) == 1 && strings.Contains(rec[0], ";") {
			rec = strings.Split(rec[0], ";")
		}
		if core.IsEmptyRow(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, rec)
		lineNos = append(lineNos, line)
	}
	return rows, lineNos, nil
}
