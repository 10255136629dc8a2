package storage

import (
	"slices"

	"github.com/JonMunkholm/roster/internal/core"
	"github.com/JonMunkholm/roster/internal/normalize"
)

// headerScanRows is how many leading rows are searched for the header.
// Workbooks exported from school systems often carry a title block.
const headerScanRows = 10

// Header spellings accepted per column, compared after normalize.Normalize.
var (
	surnameHeaders = []string{"sobrenome", "surname", "last name"}
	nameHeaders    = []string{"nome do(a) aluno(a)", "nome do aluno", "nome", "aluno", "aluno(a)", "name", "full name", "full_name"}
	idHeaders      = []string{"rm", "id", "matricula", "enrollment"}
)

// layout holds the column position of each field, -1 when absent.
type layout struct {
	surname int
	name    int
	id      int
}

// defaultCandidateLayout applies to batch files without a header: name, RM.
var defaultCandidateLayout = layout{surname: -1, name: 0, id: 1}

func (l layout) complete() bool {
	return l.name >= 0 && l.id >= 0
}

// matchHeader reads row as a header. The first matching cell wins for each
// field.
func matchHeader(row []string) layout {
	l := layout{surname: -1, name: -1, id: -1}
	for i, cell := range row {
		h := normalize.Normalize(core.CleanCell(cell))
		switch {
		case l.surname < 0 && slices.Contains(surnameHeaders, h):
			l.surname = i
		case l.name < 0 && slices.Contains(nameHeaders, h):
			l.name = i
		case l.id < 0 && slices.Contains(idHeaders, h):
			l.id = i
		}
	}
	return l
}

// findHeader returns the index of the first row among the leading rows that
// names both the name and the id column.
func findHeader(rows [][]string) (int, layout, bool) {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		if l := matchHeader(rows[i]); l.complete() {
			return i, l, true
		}
	}
	return -1, layout{}, false
}

func (l layout) cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return core.CleanCell(row[col])
}

func (l layout) rawRow(row []string) core.RawRow {
	return core.RawRow{
		Surname:  l.cell(row, l.surname),
		FullName: l.cell(row, l.name),
		ID:       l.cell(row, l.id),
	}
}
