// Package service is the application layer over the roster engine.
//
// A Service owns one core.Store loaded from one storage.Source. Every
// operation runs under the service Gate, so the HTTP API and background jobs
// can share it. Validated batches are parked as pending batches until an
// operator commits or discards them.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/JonMunkholm/roster/internal/core"
	"github.com/JonMunkholm/roster/internal/logging"
	"github.com/JonMunkholm/roster/internal/metrics"
	"github.com/JonMunkholm/roster/internal/storage"
)

// DefaultBatchTTL is how long a validated batch stays committable.
const DefaultBatchTTL = 30 * time.Minute

// Options tunes a Service. Zero values select the defaults.
type Options struct {
	Threshold       float64       // similarity threshold (default core.DefaultThreshold)
	BatchTTL        time.Duration // pending batch lifetime (default DefaultBatchTTL)
	GateWait        time.Duration // wait for the roster lock (default DefaultGateWait)
	Autosave        bool          // save to the source after every change
	CreateIfMissing bool          // start empty when the source file does not exist
}

// Service coordinates the store, its source and pending batches.
type Service struct {
	source    storage.Source
	store     *core.Store
	validator *core.Validator
	gate      *Gate
	opts      Options

	batches *batchSet
	dirty   bool
	now     func() time.Time
}

// New creates a service over source. Call Open before anything else.
func New(source storage.Source, opts Options) *Service {
	if opts.BatchTTL <= 0 {
		opts.BatchTTL = DefaultBatchTTL
	}

	store := core.NewStore()
	store.OnRebuild(metrics.ObserveRebuild)
	validator := core.NewValidator(store, opts.Threshold)
	opts.Threshold = validator.Threshold()

	return &Service{
		source:    source,
		store:     store,
		validator: validator,
		gate:      NewGate(opts.GateWait),
		opts:      opts,
		batches:   newBatchSet(),
		now:       time.Now,
	}
}

// Threshold returns the similarity threshold in use.
func (s *Service) Threshold() float64 {
	return s.opts.Threshold
}

// SourceName identifies the backing source.
func (s *Service) SourceName() string {
	return s.source.Name()
}

// with runs fn under the gate and records the operation.
func (s *Service) with(ctx context.Context, op string, fn func() error) error {
	if err := s.gate.Acquire(ctx); err != nil {
		metrics.ObserveOp(op, err)
		return err
	}
	defer s.gate.Release()

	err := fn()
	metrics.ObserveOp(op, err)
	return err
}

// Open loads the roster from the source.
func (s *Service) Open(ctx context.Context) (core.LoadStats, error) {
	return s.load(ctx, "open")
}

// Reload discards in-memory changes and loads the source again. Pending
// batches survive; Commit re-checks them against the reloaded roster.
func (s *Service) Reload(ctx context.Context) (core.LoadStats, error) {
	return s.load(ctx, "reload")
}

func (s *Service) load(ctx context.Context, op string) (core.LoadStats, error) {
	log := logging.WithFields(ctx, "op", op, "source", s.source.Name())

	var stats core.LoadStats
	err := s.with(ctx, op, func() error {
		rows, err := s.source.Load(ctx)
		if err != nil {
			if s.opts.CreateIfMissing && errors.Is(err, os.ErrNotExist) {
				log.Warn("roster source missing, starting empty")
				rows = nil
			} else {
				return fmt.Errorf("load %s: %w", s.source.Name(), err)
			}
		}
		stats = s.store.Load(rows)
		s.dirty = false
		return nil
	})
	if err != nil {
		log.Error("roster load failed", "error", err)
		return stats, err
	}

	log.Info("roster loaded",
		"loaded", stats.Loaded,
		"dropped_invalid", stats.DroppedInvalid,
		"dropped_duplicates", stats.DroppedDupes,
	)
	return stats, nil
}

// Save writes the roster to the source.
func (s *Service) Save(ctx context.Context) error {
	return s.with(ctx, "save", func() error {
		return s.saveLocked(ctx)
	})
}

func (s *Service) saveLocked(ctx context.Context) error {
	if !s.store.Loaded() {
		return core.ErrNotLoaded
	}
	start := s.now()
	if err := s.source.Save(ctx, s.store.All()); err != nil {
		logging.FromContext(ctx).Error("roster save failed", "source", s.source.Name(), "error", err)
		return fmt.Errorf("save %s: %w", s.source.Name(), err)
	}
	s.dirty = false
	logging.FromContext(ctx).Info("roster saved",
		"source", s.source.Name(),
		"records", s.store.Len(),
		"duration_ms", s.now().Sub(start).Milliseconds(),
	)
	return nil
}

// changed marks the roster modified and saves when autosave is on. It
// reports whether the source now holds the change. A failed autosave keeps
// the change in memory and the roster dirty for the next Save or Close; it
// never fails the mutation that already happened.
func (s *Service) changed(ctx context.Context) bool {
	s.dirty = true
	if !s.opts.Autosave {
		return false
	}
	if err := s.saveLocked(ctx); err != nil {
		metrics.ObserveOp("autosave", err)
		logging.FromContext(ctx).Warn("autosave failed, changes kept in memory", "error", err)
		return false
	}
	return true
}

// Dirty reports whether there are unsaved changes.
func (s *Service) Dirty(ctx context.Context) (bool, error) {
	var dirty bool
	err := s.with(ctx, "status", func() error {
		dirty = s.dirty
		return nil
	})
	return dirty, err
}

// List returns every student in roster order.
func (s *Service) List(ctx context.Context) ([]core.Student, error) {
	var out []core.Student
	err := s.with(ctx, "list", func() error {
		if !s.store.Loaded() {
			return core.ErrNotLoaded
		}
		out = s.store.All()
		return nil
	})
	return out, err
}

// Get returns the student with the given RM.
func (s *Service) Get(ctx context.Context, id int64) (core.Student, error) {
	var rec core.Student
	err := s.with(ctx, "get", func() error {
		var ok bool
		rec, ok = s.store.GetByID(id)
		if !ok {
			return fmt.Errorf("%w: no student with id %d", core.ErrNotFound, id)
		}
		return nil
	})
	return rec, err
}

// Search finds students by RM or name.
func (s *Service) Search(ctx context.Context, term string) ([]core.Student, error) {
	var out []core.Student
	err := s.with(ctx, "search", func() error {
		if !s.store.Loaded() {
			return core.ErrNotLoaded
		}
		out = s.store.Search(term)
		return nil
	})
	return out, err
}

// Add registers one student. A failed autosave does not fail the call; see
// Dirty.
func (s *Service) Add(ctx context.Context, name string, rawID any) (core.Student, error) {
	var rec core.Student
	err := s.with(ctx, "add", func() error {
		var err error
		if rec, err = s.store.Add(name, rawID); err != nil {
			return err
		}
		logging.FromContext(ctx).Info("student added", "rm", rec.ID, "name", rec.FullName)
		s.changed(ctx)
		return nil
	})
	return rec, err
}

// Remove deletes the students with the given RMs and returns how many were
// removed.
func (s *Service) Remove(ctx context.Context, ids []int64) (int, error) {
	var n int
	err := s.with(ctx, "remove", func() error {
		var err error
		if n, err = s.store.Remove(ids); err != nil {
			return err
		}
		logging.FromContext(ctx).Info("students removed", "requested", len(ids), "removed", n)
		s.changed(ctx)
		return nil
	})
	return n, err
}

// UpdateCell edits one field of one row.
func (s *Service) UpdateCell(ctx context.Context, row int, col core.Column, value string) error {
	return s.with(ctx, "update_cell", func() error {
		if err := s.store.UpdateCell(row, col, value); err != nil {
			return err
		}
		logging.FromContext(ctx).Info("cell updated", "row", row, "column", col.String())
		s.changed(ctx)
		return nil
	})
}

// Sort reorders the roster by col.
func (s *Service) Sort(ctx context.Context, col core.Column, desc bool) error {
	return s.with(ctx, "sort", func() error {
		if !s.store.Loaded() {
			return core.ErrNotLoaded
		}
		s.store.Sort(col, desc)
		s.changed(ctx)
		return nil
	})
}

// FindSimilar looks up the registered name closest to name. A threshold
// outside (0, 1) uses the service threshold.
func (s *Service) FindSimilar(ctx context.Context, name string, threshold float64) (core.MatchResult, error) {
	if threshold <= 0 || threshold >= 1 {
		threshold = s.opts.Threshold
	}

	var res core.MatchResult
	err := s.with(ctx, "find_similar", func() error {
		if !s.store.Loaded() {
			return core.ErrNotLoaded
		}
		res = s.validator.Detector().FindSimilar(name, threshold)
		metrics.ObserveSimilarity(res.Similar)
		return nil
	})
	return res, err
}

// Stats describes the service state.
type Stats struct {
	Source         string  `json:"source"`
	Loaded         bool    `json:"loaded"`
	Records        int     `json:"records"`
	IndexedTokens  int     `json:"indexedTokens"`
	PendingBatches int     `json:"pendingBatches"`
	Dirty          bool    `json:"dirty"`
	Threshold      float64 `json:"threshold"`
}

// Stats returns a snapshot of the service state.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.with(ctx, "stats", func() error {
		st = Stats{
			Source:         s.source.Name(),
			Loaded:         s.store.Loaded(),
			Records:        s.store.Len(),
			IndexedTokens:  s.store.Index().TokenCount(),
			PendingBatches: s.batches.len(),
			Dirty:          s.dirty,
			Threshold:      s.opts.Threshold,
		}
		return nil
	})
	return st, err
}

// Close waits for the in-flight operation and saves unsaved changes when
// autosave is on.
func (s *Service) Close(ctx context.Context) error {
	if err := s.gate.WaitIdle(ctx); err != nil {
		return err
	}
	if !s.opts.Autosave {
		return nil
	}
	return s.with(ctx, "close", func() error {
		if !s.dirty {
			return nil
		}
		return s.saveLocked(ctx)
	})
}
