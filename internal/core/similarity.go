package core

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Ratio returns the Ratcliff/Obershelp "gestalt" similarity of a and b in
// [0, 1]: 2*M/T, where T is the total rune count and M the runes in matching
// blocks. Strings are compared rune by rune so accented letters count once.
// Two empty strings are identical (1.0). The popular-element heuristic is
// off so long inputs score the same way short ones do.
func Ratio(a, b string) float64 {
	return difflib.NewMatcherWithJunk(runeSeq(a), runeSeq(b), false, nil).Ratio()
}

// runeSeq splits s into one element per rune, the unit the matcher compares.
func runeSeq(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
