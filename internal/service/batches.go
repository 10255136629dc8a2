package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/roster/internal/core"
	"github.com/JonMunkholm/roster/internal/logging"
	"github.com/JonMunkholm/roster/internal/metrics"
)

// Batch is the outcome of validating a set of candidate rows. When the
// report has accepted rows, ID names the pending batch that Commit adds.
type Batch struct {
	ID        string                 `json:"id,omitempty"`
	Report    *core.ValidationReport `json:"report"`
	ExpiresAt time.Time              `json:"expiresAt,omitzero"`
}

// SkippedRow is an accepted row that could not be added at commit time,
// usually because its RM was registered after validation.
type SkippedRow struct {
	Row    int    `json:"row"`
	Name   string `json:"name"`
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// CommitResult reports what a commit added. Saved is false when the added
// rows are only in memory (autosave off or failed); they are written by the
// next successful Save.
type CommitResult struct {
	Added   []core.Student `json:"added"`
	Skipped []SkippedRow   `json:"skipped"`
	Saved   bool           `json:"saved"`
}

type pendingBatch struct {
	rows    []core.AcceptedRow
	expires time.Time
}

// batchSet holds pending batches. It is guarded by the service gate.
type batchSet struct {
	m map[string]*pendingBatch
}

func newBatchSet() *batchSet {
	return &batchSet{m: make(map[string]*pendingBatch)}
}

func (b *batchSet) len() int {
	return len(b.m)
}

func (b *batchSet) take(id string, now time.Time) (*pendingBatch, bool) {
	p, ok := b.m[id]
	if !ok {
		return nil, false
	}
	delete(b.m, id)
	if now.After(p.expires) {
		return nil, false
	}
	return p, true
}

func (b *batchSet) sweep(now time.Time) int {
	n := 0
	for id, p := range b.m {
		if now.After(p.expires) {
			delete(b.m, id)
			n++
		}
	}
	return n
}

func errBatchNotFound(id string) error {
	return fmt.Errorf("%w: batch not found: %s", core.ErrNotFound, id)
}

// Validate checks rows against the roster without changing it. Accepted
// rows are kept as a pending batch for BatchTTL.
func (s *Service) Validate(ctx context.Context, rows []core.CandidateRow) (*Batch, error) {
	var batch *Batch
	err := s.with(ctx, "validate", func() error {
		report, err := s.validator.Validate(rows)
		if err != nil {
			return err
		}
		batch = &Batch{Report: report}

		if len(report.AcceptedRows) > 0 {
			batch.ID = uuid.New().String()
			batch.ExpiresAt = s.now().Add(s.opts.BatchTTL)
			s.batches.m[batch.ID] = &pendingBatch{
				rows:    report.AcceptedRows,
				expires: batch.ExpiresAt,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r := batch.Report
	metrics.AddValidated(metrics.OutcomeAccepted, len(r.AcceptedRows))
	metrics.AddValidated(metrics.OutcomeNumericError, len(r.NumericErrors))
	metrics.AddValidated(metrics.OutcomeDuplicateID, len(r.DuplicateIDs))
	metrics.AddValidated(metrics.OutcomeInvalid, len(r.InvalidRows))
	metrics.AddValidated(metrics.OutcomeSimilarWarned, len(r.NameSimilarityWarnings))

	logging.WithFields(ctx, "batch_id", batch.ID).Info("batch validated",
		"rows", len(rows),
		"accepted", len(r.AcceptedRows),
		"numeric_errors", len(r.NumericErrors),
		"duplicate_ids", len(r.DuplicateIDs),
		"invalid", len(r.InvalidRows),
		"similarity_warnings", len(r.NameSimilarityWarnings),
	)
	return batch, nil
}

// Commit adds the accepted rows of a pending batch. Rows that conflict with
// changes made since validation are skipped and reported. The batch is
// consumed either way.
func (s *Service) Commit(ctx context.Context, batchID string) (*CommitResult, error) {
	log := logging.WithFields(ctx, "batch_id", batchID)

	res := &CommitResult{Added: []core.Student{}, Skipped: []SkippedRow{}}
	err := s.with(ctx, "commit", func() error {
		p, ok := s.batches.take(batchID, s.now())
		if !ok {
			return errBatchNotFound(batchID)
		}

		for _, row := range p.rows {
			rec, err := s.store.Add(row.Name, row.ID)
			if err != nil {
				res.Skipped = append(res.Skipped, SkippedRow{
					Row:    row.Row,
					Name:   row.Name,
					ID:     row.ID,
					Reason: err.Error(),
				})
				continue
			}
			res.Added = append(res.Added, rec)
		}

		if len(res.Added) == 0 {
			res.Saved = !s.dirty
			return nil
		}
		res.Saved = s.changed(ctx)
		return nil
	})
	if err != nil {
		log.Warn("batch commit failed", "error", err)
		return res, err
	}

	log.Info("batch committed", "added", len(res.Added), "skipped", len(res.Skipped), "saved", res.Saved)
	return res, nil
}

// Discard drops a pending batch.
func (s *Service) Discard(ctx context.Context, batchID string) error {
	return s.with(ctx, "discard", func() error {
		if _, ok := s.batches.take(batchID, s.now()); !ok {
			return errBatchNotFound(batchID)
		}
		logging.WithFields(ctx, "batch_id", batchID).Info("batch discarded")
		return nil
	})
}

// SweepBatches drops expired pending batches and returns how many.
func (s *Service) SweepBatches(ctx context.Context) (int, error) {
	var n int
	err := s.with(ctx, "sweep", func() error {
		n = s.batches.sweep(s.now())
		return nil
	})
	return n, err
}

// StartBatchSweeper drops expired batches every interval until ctx ends.
// It blocks; run it in its own goroutine.
func (s *Service) StartBatchSweeper(ctx context.Context, interval time.Duration) {
	log := logging.FromContext(ctx)
	log.Info("batch sweeper started", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("batch sweeper stopped")
			return
		case <-ticker.C:
			n, err := s.SweepBatches(ctx)
			if err != nil {
				log.Warn("batch sweep skipped", "error", err)
				continue
			}
			if n > 0 {
				log.Debug("expired batches dropped", "count", n)
			}
		}
	}
}
