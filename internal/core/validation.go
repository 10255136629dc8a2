package core

// validation.go checks a batch of user-entered rows before they are added.
//
// Each row moves through these checks in order and stops at the first
// blocking one:
//  1. the id must be an integer              -> NumericErrors
//  2. the name must not be blank             -> InvalidRows
//  3. the id must not repeat within the batch -> DuplicateIDs (batch)
//  4. the id must not exist in the store     -> DuplicateIDs (store)
//  5. the name is compared against the store -> NameSimilarityWarnings
//
// Step 5 never blocks: a row that gets this far is accepted whether or not it
// raised a similarity warning. Per-row problems always land in the report;
// only a structural problem (store not loaded) fails the call.
//
// The order matters. An unparseable id cannot be compared, and checking the
// batch before the store means an id claimed twice in one batch is reported
// once, as a batch duplicate, rather than under both categories.

import (
	"fmt"
	"strings"
)

// Validator validates candidate batches against a Store.
type Validator struct {
	store     *Store
	detector  *Detector
	threshold float64
}

// NewValidator creates a validator. A threshold outside (0, 1) falls back to
// DefaultThreshold.
func NewValidator(store *Store, threshold float64) *Validator {
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultThreshold
	}
	return &Validator{
		store:     store,
		detector:  NewDetector(store),
		threshold: threshold,
	}
}

// Threshold returns the similarity threshold in use.
func (v *Validator) Threshold() float64 {
	return v.threshold
}

// Detector returns the validator's duplicate detector.
func (v *Validator) Detector() *Detector {
	return v.detector
}

// Validate runs every row of the batch through the checks above. Rows are
// processed in slice order. The store is not modified.
func (v *Validator) Validate(rows []CandidateRow) (*ValidationReport, error) {
	if !v.store.Loaded() {
		return nil, ErrNotLoaded
	}

	report := &ValidationReport{
		NumericErrors:          []NumericError{},
		DuplicateIDs:           []DuplicateID{},
		NameSimilarityWarnings: []SimilarityWarning{},
		AcceptedRows:           []AcceptedRow{},
		InvalidRows:            []InvalidRow{},
	}

	// id -> name of the first row in the batch that claimed it
	claimed := make(map[int64]string, len(rows))
	index := v.store.Index()

	for _, row := range rows {
		id, err := ParseID(row.RawID)
		if err != nil {
			report.NumericErrors = append(report.NumericErrors, NumericError{
				Row:    row.Row,
				RawID:  row.RawID,
				Reason: numericReason(row.RawID),
			})
			continue
		}

		name := strings.TrimSpace(row.Name)
		if name == "" {
			report.InvalidRows = append(report.InvalidRows, InvalidRow{
				Row:    row.Row,
				Name:   row.Name,
				Reason: "name is required",
			})
			continue
		}

		if first, dup := claimed[id]; dup {
			report.DuplicateIDs = append(report.DuplicateIDs, DuplicateID{
				Row:             row.Row,
				ID:              id,
				ConflictingName: first,
				Reason:          ReasonBatchDuplicate,
			})
			continue
		}
		claimed[id] = name

		if index.Exists(id) {
			existing, _ := v.store.GetByID(id)
			report.DuplicateIDs = append(report.DuplicateIDs, DuplicateID{
				Row:             row.Row,
				ID:              id,
				ConflictingName: existing.FullName,
				Reason:          ReasonStoreDuplicate,
			})
			continue
		}

		if match := v.detector.FindSimilar(name, v.threshold); match.Similar {
			report.NameSimilarityWarnings = append(report.NameSimilarityWarnings, SimilarityWarning{
				Row:          row.Row,
				NewName:      name,
				NewID:        id,
				ExistingName: match.ExistingName,
				ExistingID:   match.ExistingID,
				Similarity:   match.Similarity,
			})
		}

		report.AcceptedRows = append(report.AcceptedRows, AcceptedRow{
			Row:  row.Row,
			Name: name,
			ID:   id,
		})
	}

	return report, nil
}

func numericReason(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "id is required"
	}
	return fmt.Sprintf("id %q is not a whole number", raw)
}
