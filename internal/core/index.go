package core

// index.go maintains the lookup structures derived from a Store:
//
//   - ids: every known enrollment number, for O(1) existence checks
//   - tokens: an inverted index from normalized name token to the rows whose
//     name contains it, used to narrow fuzzy-search candidates
//
// The index is a cache of the store, never a source of truth. Postings hold
// row positions, so any structural change to the store (load, remove, sort,
// cell edit) must be followed by Rebuild. Store is the only caller that
// mutates an Index.

import (
	"fmt"
	"sort"

	"github.com/JonMunkholm/roster/internal/normalize"
)

// Posting is one entry of a token bucket: a row position in the store and the
// normalized full name found there.
type Posting struct {
	Row        int    `json:"row"`
	Normalized string `json:"normalized"`
}

// Index is the derived lookup view of a Store. The zero value is an empty,
// usable index.
type Index struct {
	ids    map[int64]struct{}
	tokens map[string][]Posting
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		ids:    make(map[int64]struct{}),
		tokens: make(map[string][]Posting),
	}
}

// Rebuild discards the current contents and indexes records from scratch.
// Row positions are the positions in records. Rebuild never fails.
func (ix *Index) Rebuild(records []Student) {
	ix.ids = make(map[int64]struct{}, len(records))
	ix.tokens = make(map[string][]Posting, len(records))

	for row, rec := range records {
		ix.Append(row, rec)
	}
}

// Append indexes one record at the given row without touching the rest.
// Only valid when row is past every row already indexed.
func (ix *Index) Append(row int, rec Student) {
	if ix.ids == nil {
		ix.ids = make(map[int64]struct{})
		ix.tokens = make(map[string][]Posting)
	}

	ix.ids[rec.ID] = struct{}{}

	normalized := normalize.Normalize(rec.FullName)
	seen := make(map[string]bool, normalize.MaxTokens)
	for _, tok := range normalize.Tokens(normalized) {
		// "ana ana silva" must not post row twice under "ana"
		if seen[tok] {
			continue
		}
		seen[tok] = true
		ix.tokens[tok] = append(ix.tokens[tok], Posting{Row: row, Normalized: normalized})
	}
}

// Exists reports whether id is present.
func (ix *Index) Exists(id int64) bool {
	_, ok := ix.ids[id]
	return ok
}

// Candidates returns the postings that share at least one qualifying token
// with name, deduplicated by row and in ascending row order. The result is
// empty (not an error) when no token of name qualifies.
func (ix *Index) Candidates(name string) []Posting {
	tokens := normalize.Tokens(name)
	if len(tokens) == 0 {
		return []Posting{}
	}

	byRow := make(map[int]Posting)
	for _, tok := range tokens {
		for _, p := range ix.tokens[tok] {
			byRow[p.Row] = p
		}
	}

	out := make([]Posting, 0, len(byRow))
	for _, p := range byRow {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Row < out[j].Row })
	return out
}

// Size returns the number of distinct ids indexed.
func (ix *Index) Size() int {
	return len(ix.ids)
}

// TokenCount returns the number of distinct tokens indexed.
func (ix *Index) TokenCount() int {
	return len(ix.tokens)
}

// IndexSnapshot is a deterministic copy of an index's contents.
type IndexSnapshot struct {
	IDs    []int64
	Tokens map[string][]Posting
}

// Snapshot returns a sorted copy of the index, suitable for comparing two
// indexes or for diagnostics.
func (ix *Index) Snapshot() IndexSnapshot {
	snap := IndexSnapshot{
		IDs:    make([]int64, 0, len(ix.ids)),
		Tokens: make(map[string][]Posting, len(ix.tokens)),
	}
	for id := range ix.ids {
		snap.IDs = append(snap.IDs, id)
	}
	sort.Slice(snap.IDs, func(i, j int) bool { return snap.IDs[i] < snap.IDs[j] })

	for tok, postings := range ix.tokens {
		cp := make([]Posting, len(postings))
		copy(cp, postings)
		snap.Tokens[tok] = cp
	}
	return snap
}

// String summarizes the index for logs.
func (ix *Index) String() string {
	return fmt.Sprintf("Index{ids: %d, tokens: %d}", len(ix.ids), len(ix.tokens))
}
