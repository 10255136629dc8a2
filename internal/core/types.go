package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Student is one roster record. ID is the enrollment number ("RM") and is
// unique across a Store.
type Student struct {
	Surname  string `json:"surname"`
	FullName string `json:"fullName"`
	ID       int64  `json:"id"`
}

// Column identifies one field of a Student. The order of the constants is
// the column order used by every tabular source.
type Column int

const (
	ColumnSurname Column = iota
	ColumnFullName
	ColumnID
)

// Header names of the roster workbook, in column order.
const (
	HeaderSurname  = "Sobrenome"
	HeaderFullName = "Nome do(a) Aluno(a)"
	HeaderID       = "RM"
)

// Columns returns the canonical header row.
func Columns() []string {
	return []string{HeaderSurname, HeaderFullName, HeaderID}
}

// String returns the workbook header of the column.
func (c Column) String() string {
	switch c {
	case ColumnSurname:
		return HeaderSurname
	case ColumnFullName:
		return HeaderFullName
	case ColumnID:
		return HeaderID
	default:
		return fmt.Sprintf("Column(%d)", int(c))
	}
}

// ParseColumn resolves a column from its header name, an English alias
// ("surname", "name", "id") or its zero-based index.
func ParseColumn(s string) (Column, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case strings.ToLower(HeaderSurname), "surname", "last_name":
		return ColumnSurname, nil
	case strings.ToLower(HeaderFullName), "name", "full_name", "fullname", "nome":
		return ColumnFullName, nil
	case strings.ToLower(HeaderID), "id":
		return ColumnID, nil
	}

	if i, err := strconv.Atoi(key); err == nil && i >= int(ColumnSurname) && i <= int(ColumnID) {
		return Column(i), nil
	}
	return 0, fmt.Errorf("%w: unknown column %q", ErrInvalidInput, s)
}

// RawRow is a roster row as read from a tabular source, before coercion.
type RawRow struct {
	Surname  string
	FullName string
	ID       string
}

// LoadStats summarizes a Load call.
type LoadStats struct {
	Loaded         int `json:"loaded"`
	DroppedInvalid int `json:"droppedInvalid"` // blank name or non-coercible id
	DroppedDupes   int `json:"droppedDuplicates"`
}

// CandidateRow is one user-entered row submitted for batch validation.
// Row is the number the operator sees (1-based) and is echoed in the report.
type CandidateRow struct {
	Row   int    `json:"row"`
	Name  string `json:"name"`
	RawID string `json:"id"`
}

// MatchResult is the outcome of a fuzzy name lookup.
type MatchResult struct {
	Similar      bool    `json:"similar"`
	ExistingName string  `json:"existingName,omitempty"`
	ExistingID   int64   `json:"existingId,omitempty"`
	Similarity   float64 `json:"similarity"`
}

// NumericError is a candidate row whose id is not an integer.
type NumericError struct {
	Row    int    `json:"row"`
	RawID  string `json:"rawId"`
	Reason string `json:"reason"`
}

// Duplicate reasons.
const (
	ReasonBatchDuplicate = "duplicate within batch"
	ReasonStoreDuplicate = "already registered"
)

// DuplicateID is a candidate row whose id collides with an earlier row of the
// same batch or with a record already in the store. ConflictingName is the
// name holding the id (the first claimant for batch duplicates).
type DuplicateID struct {
	Row             int    `json:"row"`
	ID              int64  `json:"id"`
	ConflictingName string `json:"conflictingName"`
	Reason          string `json:"reason"`
}

// SimilarityWarning flags a candidate whose name closely matches an existing
// record. It does not block the row.
type SimilarityWarning struct {
	Row          int     `json:"row"`
	NewName      string  `json:"newName"`
	NewID        int64   `json:"newId"`
	ExistingName string  `json:"existingName"`
	ExistingID   int64   `json:"existingId"`
	Similarity   float64 `json:"similarity"`
}

// AcceptedRow is a candidate that passed every blocking check.
type AcceptedRow struct {
	Row  int    `json:"row"`
	Name string `json:"name"`
	ID   int64  `json:"id"`
}

// InvalidRow is a candidate rejected for a reason other than its id.
type InvalidRow struct {
	Row    int    `json:"row"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ValidationReport is the result of validating one batch. It is built fresh
// per call and never persisted.
type ValidationReport struct {
	NumericErrors          []NumericError      `json:"numericErrors"`
	DuplicateIDs           []DuplicateID       `json:"duplicateIds"`
	NameSimilarityWarnings []SimilarityWarning `json:"nameSimilarityWarnings"`
	AcceptedRows           []AcceptedRow       `json:"acceptedRows"`
	InvalidRows            []InvalidRow        `json:"invalidRows"`
}

// Rejected returns the number of rows that were not accepted.
func (r *ValidationReport) Rejected() int {
	return len(r.NumericErrors) + len(r.DuplicateIDs) + len(r.InvalidRows)
}

// HasProblems reports whether anything in the batch needs operator attention.
func (r *ValidationReport) HasProblems() bool {
	return r.Rejected() > 0 || len(r.NameSimilarityWarnings) > 0
}
