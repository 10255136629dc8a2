package core

// detector.go catches re-registration of the same person under a name
// variant ("Jon Smith" vs "John Smith").
//
// Scoring every record is O(n) per lookup. Instead the token index narrows
// the comparison to records sharing at least one qualifying name token, and
// only those are scored with Ratio. Two similar names with no token in
// common are missed; that trade is accepted for rosters of thousands.

import "github.com/JonMunkholm/roster/internal/normalize"

// DefaultThreshold is the similarity a match must exceed.
const DefaultThreshold = 0.8

// Detector finds existing records whose names resemble a new one.
type Detector struct {
	store *Store
}

// NewDetector creates a detector over store. It reads the store's current
// index on every call, so it never goes stale.
func NewDetector(store *Store) *Detector {
	return &Detector{store: store}
}

// FindSimilar returns the best candidate scoring strictly above threshold.
// Candidates are scored in ascending row order and the first maximum wins.
// An empty candidate set, or no score above threshold, yields Similar=false.
func (d *Detector) FindSimilar(name string, threshold float64) MatchResult {
	normalized := normalize.Normalize(name)
	candidates := d.store.Index().Candidates(normalized)
	if len(candidates) == 0 {
		return MatchResult{}
	}

	best := threshold
	bestRow := -1
	for _, c := range candidates {
		if score := Ratio(normalized, c.Normalized); score > best {
			best = score
			bestRow = c.Row
		}
	}

	if bestRow < 0 {
		return MatchResult{}
	}
	rec, ok := d.store.At(bestRow)
	if !ok {
		return MatchResult{}
	}
	return MatchResult{
		Similar:      true,
		ExistingName: rec.FullName,
		ExistingID:   rec.ID,
		Similarity:   best,
	}
}
