package core

import (
	"math"
	"strings"
	"testing"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1.0},
		{"abc", "", 0.0},
		{"abc", "abc", 1.0},
		{"abc", "xyz", 0.0},
		{"abcd", "bcde", 0.75},
		{"john smith", "jon smith", 18.0 / 19.0},
		{"maria silva", "mariana silva", 22.0 / 24.0},
		{"ana costa", "ana souza", 12.0 / 18.0},
		{"maria silva", "maria da silva", 22.0 / 25.0},
		{"pedro alves", "pedro alvez", 20.0 / 22.0},
		{"joao souza", "maria silva", 8.0 / 21.0},
	}

	for _, tt := range tests {
		got := Ratio(tt.a, tt.b)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRatio_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"john smith", "jon smith"},
		{"maria silva", "mariana silva"},
		{"ana", "nana"},
	}
	for _, p := range pairs {
		ab, ba := Ratio(p[0], p[1]), Ratio(p[1], p[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("Ratio not symmetric for %q/%q: %v vs %v", p[0], p[1], ab, ba)
		}
	}
}

func TestRatio_Runes(t *testing.T) {
	// multi-byte runes count once each
	if got := Ratio("ção", "ção"); got != 1.0 {
		t.Errorf("Ratio of identical accented strings = %v, want 1", got)
	}
	if got := Ratio("é", "e"); got != 0.0 {
		t.Errorf("Ratio(é, e) = %v, want 0", got)
	}
}

func TestRatio_LongInputsKeepRepeatedRunes(t *testing.T) {
	// runs of one letter would be dropped as "popular" by the 200-element
	// junk heuristic; identical long strings must still score 1
	long := strings.Repeat("a", 150) + strings.Repeat("b", 100)
	if got := Ratio(long, long); got != 1.0 {
		t.Errorf("Ratio of identical long strings = %v, want 1", got)
	}
}
