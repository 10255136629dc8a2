package core

// store.go holds the canonical, ordered roster.
//
// Store exclusively owns the records. Its Index is derived data and every
// mutating method is responsible for bringing it back in sync before
// returning: Add appends incrementally, everything else rebuilds.
//
// Store performs no locking. Callers that share a Store between goroutines
// must serialize access themselves (see internal/service).

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/roster/internal/normalize"
)

// Store is the in-memory roster.
type Store struct {
	records   []Student
	index     *Index
	loaded    bool
	onRebuild func(took time.Duration, records int)
}

// NewStore creates an empty, not yet loaded store.
func NewStore() *Store {
	return &Store{index: NewIndex()}
}

// Load replaces the whole roster with rows. Ids are coerced with ParseID;
// rows with a blank name or an invalid id are dropped, as are later
// occurrences of an id already seen. A blank surname is derived from the
// name. The index is rebuilt.
func (s *Store) Load(rows []RawRow) LoadStats {
	var stats LoadStats
	records := make([]Student, 0, len(rows))
	seen := make(map[int64]struct{}, len(rows))

	for _, raw := range rows {
		name := strings.TrimSpace(raw.FullName)
		if name == "" {
			stats.DroppedInvalid++
			continue
		}
		id, err := ParseID(raw.ID)
		if err != nil {
			stats.DroppedInvalid++
			continue
		}
		if _, dup := seen[id]; dup {
			stats.DroppedDupes++
			continue
		}
		seen[id] = struct{}{}

		surname := strings.TrimSpace(raw.Surname)
		if surname == "" {
			surname = normalize.ExtractSurname(name)
		}
		records = append(records, Student{Surname: surname, FullName: name, ID: id})
	}

	s.records = records
	s.loaded = true
	s.rebuild()

	stats.Loaded = len(records)
	return stats
}

// OnRebuild registers fn to be called after every full index rebuild.
func (s *Store) OnRebuild(fn func(took time.Duration, records int)) {
	s.onRebuild = fn
}

func (s *Store) rebuild() {
	start := time.Now()
	s.index.Rebuild(s.records)
	if s.onRebuild != nil {
		s.onRebuild(time.Since(start), len(s.records))
	}
}

// Loaded reports whether Load has been called.
func (s *Store) Loaded() bool {
	return s.loaded
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Index returns the derived index. It must be treated as read-only.
func (s *Store) Index() *Index {
	return s.index
}

// All returns a copy of the records in store order.
func (s *Store) All() []Student {
	out := make([]Student, len(s.records))
	copy(out, s.records)
	return out
}

// At returns the record at row.
func (s *Store) At(row int) (Student, bool) {
	if row < 0 || row >= len(s.records) {
		return Student{}, false
	}
	return s.records[row], true
}

// GetByID returns the record with the given id.
func (s *Store) GetByID(id int64) (Student, bool) {
	if !s.index.Exists(id) {
		return Student{}, false
	}
	for _, rec := range s.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return Student{}, false
}

// Add appends a new student. The name is formatted with FormatName and the
// surname derived from it. Fails with ErrInvalidInput for a blank name, a
// non-coercible id or an id that is already registered.
func (s *Store) Add(name string, rawID any) (Student, error) {
	if !s.loaded {
		return Student{}, ErrNotLoaded
	}

	formatted := normalize.FormatName(strings.TrimSpace(name))
	if formatted == "" {
		return Student{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	id, err := ParseID(rawID)
	if err != nil {
		return Student{}, err
	}
	if existing, ok := s.GetByID(id); ok {
		return Student{}, fmt.Errorf("%w: id %d already registered to %q", ErrInvalidInput, id, existing.FullName)
	}

	rec := Student{
		Surname:  normalize.ExtractSurname(formatted),
		FullName: formatted,
		ID:       id,
	}
	s.records = append(s.records, rec)
	s.index.Append(len(s.records)-1, rec)
	return rec, nil
}

// Remove deletes every record whose id is in ids and returns how many were
// removed. Fails with ErrNotFound when nothing matched.
func (s *Store) Remove(ids []int64) (int, error) {
	if !s.loaded {
		return 0, ErrNotLoaded
	}

	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	kept := s.records[:0]
	removed := 0
	for _, rec := range s.records {
		if _, drop := set[rec.ID]; drop {
			removed++
			continue
		}
		kept = append(kept, rec)
	}

	if removed == 0 {
		return 0, fmt.Errorf("%w: no student with ids %v", ErrNotFound, ids)
	}

	// clear the tail so removed records are not retained by the backing array
	for i := len(kept); i < len(s.records); i++ {
		s.records[i] = Student{}
	}
	s.records = kept
	s.rebuild()
	return removed, nil
}

// UpdateCell edits one field in place and rebuilds the index. Editing the
// name re-derives the surname; editing the id requires a coercible id that
// no other record holds.
func (s *Store) UpdateCell(row int, col Column, value string) error {
	if !s.loaded {
		return ErrNotLoaded
	}
	if row < 0 || row >= len(s.records) {
		return fmt.Errorf("%w: row %d outside 0..%d", ErrMalformedRow, row, len(s.records)-1)
	}

	rec := &s.records[row]
	switch col {
	case ColumnSurname:
		surname := strings.TrimSpace(value)
		if surname == "" {
			return fmt.Errorf("%w: surname is required", ErrInvalidInput)
		}
		rec.Surname = surname

	case ColumnFullName:
		name := strings.TrimSpace(value)
		if name == "" {
			return fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		rec.FullName = name
		rec.Surname = normalize.ExtractSurname(name)

	case ColumnID:
		id, err := ParseID(value)
		if err != nil {
			return err
		}
		if id != rec.ID && s.index.Exists(id) {
			return fmt.Errorf("%w: id %d already registered", ErrInvalidInput, id)
		}
		rec.ID = id

	default:
		return fmt.Errorf("%w: unknown column %d", ErrInvalidInput, int(col))
	}

	s.rebuild()
	return nil
}

// Sort orders the roster by col (accent- and case-insensitive for text
// columns) and rebuilds the index. The sort is stable.
func (s *Store) Sort(col Column, desc bool) {
	keyed := make([]keyedStudent, len(s.records))
	for i, rec := range s.records {
		keyed[i] = keyedStudent{rec: rec}
		switch col {
		case ColumnSurname:
			keyed[i].key = normalize.Normalize(rec.Surname)
		case ColumnID:
		default:
			keyed[i].key = normalize.Normalize(rec.FullName)
		}
	}

	slices.SortStableFunc(keyed, func(a, b keyedStudent) int {
		if desc {
			a, b = b, a
		}
		if col == ColumnID {
			return cmp.Compare(a.rec.ID, b.rec.ID)
		}
		return strings.Compare(a.key, b.key)
	})

	for i := range keyed {
		s.records[i] = keyed[i].rec
	}
	s.rebuild()
}

// keyedStudent pairs a record with its folded sort key so each name is
// normalized once per sort.
type keyedStudent struct {
	key string
	rec Student
}

// Search finds students by enrollment number or name. A blank term returns
// everything in store order. An all-digit term matches the id exactly;
// any other term matches as an accent- and case-insensitive substring of the
// full name, and results are ordered by name.
func (s *Store) Search(term string) []Student {
	if strings.TrimSpace(term) == "" {
		return s.All()
	}

	needle := normalize.Normalize(term)
	var out []Student

	if isAllDigits(needle) {
		for _, rec := range s.records {
			if strconv.FormatInt(rec.ID, 10) == needle {
				out = append(out, rec)
			}
		}
		return out
	}

	var hits []keyedStudent
	for _, rec := range s.records {
		if folded := normalize.Normalize(rec.FullName); strings.Contains(folded, needle) {
			hits = append(hits, keyedStudent{key: folded, rec: rec})
		}
	}
	slices.SortStableFunc(hits, func(a, b keyedStudent) int {
		return strings.Compare(a.key, b.key)
	})
	for _, h := range hits {
		out = append(out, h.rec)
	}
	return out
}
