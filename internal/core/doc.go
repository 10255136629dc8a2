// Package core provides the roster engine: an ordered store of students, a
// derived lookup index, fuzzy duplicate detection and batch validation.
//
// This package is the heart of the roster application and contains no I/O,
// logging or UI code. Storage adapters, the HTTP layer and the CLI all drive
// it through the same few types.
//
// # Components
//
//   - [Store]: the canonical, ordered list of [Student] records. The only
//     type that mutates the index.
//   - [Index]: the set of known ids plus an inverted index from normalized
//     name token to row positions. Derived from the store and rebuilt after
//     every structural change.
//   - [Detector]: finds the existing student whose name best matches a new
//     one, scoring only the candidates the index returns.
//   - [Validator]: checks a batch of [CandidateRow] values and returns a
//     [ValidationReport].
//
// # Typical flow
//
//	store := core.NewStore()
//	store.Load(rows)                       // from a workbook or database
//	v := core.NewValidator(store, core.DefaultThreshold)
//	report, err := v.Validate(candidates)  // nothing is written yet
//	for _, r := range report.AcceptedRows {
//	    store.Add(r.Name, r.ID)
//	}
//
// # Concurrency
//
// Nothing in this package locks. A Store, its Index and any Detector or
// Validator built on it must be used from one goroutine at a time; the
// service package provides that serialization for the server.
//
// # Error Handling
//
// Operations return the sentinel errors [ErrInvalidInput], [ErrNotFound],
// [ErrNotLoaded] and [ErrMalformedRow], wrapped with detail. Validation
// findings are not errors: they are collected in the report so a mixed batch
// can be reviewed in one pass. [MapError] turns any error into a
// [UserMessage] with a support code.
package core
