// Package storage reads and writes the roster outside of memory.
//
// A Source is where a roster lives between runs: an Excel workbook or a
// Postgres table. Sources only move rows; coercion, deduplication and
// indexing are done by core.Store after Load.
//
// ReadCandidates parses the batch files operators upload for validation.
package storage

import (
	"context"
	"errors"

	"github.com/JonMunkholm/roster/internal/core"
)

// Source loads and saves a whole roster.
type Source interface {
	// Load returns every row in source order. Values are returned as found;
	// the store decides which rows are usable.
	Load(ctx context.Context) ([]core.RawRow, error)

	// Save replaces the stored roster with records, in order.
	Save(ctx context.Context, records []core.Student) error

	// Name identifies the source in logs.
	Name() string
}

var (
	ErrHeaderNotFound  = errors.New("header not found")
	ErrNoSheets        = errors.New("workbook has no sheets")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmptyFile       = errors.New("empty file")
	ErrFileTooLarge    = errors.New("file too large")
)
