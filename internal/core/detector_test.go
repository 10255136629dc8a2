package core

import "testing"

func TestDetector_FindSimilar(t *testing.T) {
	s := NewStore()
	s.Load([]RawRow{
		{FullName: "John Smith", ID: "1"},
		{FullName: "Maria Silva", ID: "2"},
	})
	d := NewDetector(s)

	tests := []struct {
		name        string
		query       string
		wantSimilar bool
		wantID      int64
	}{
		{"spelling variant", "Jon Smith", true, 1},
		{"accent and case only", "MARÍA SILVA", true, 2},
		{"no shared token", "Totally Different Name", false, 0},
		{"shared token, low ratio", "Maria Aparecida Nogueira", false, 0},
		{"only short tokens", "Li Wu", false, 0},
		{"empty", "", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.FindSimilar(tt.query, DefaultThreshold)
			if got.Similar != tt.wantSimilar {
				t.Fatalf("FindSimilar(%q).Similar = %v, want %v (score %.3f)", tt.query, got.Similar, tt.wantSimilar, got.Similarity)
			}
			if got.ExistingID != tt.wantID {
				t.Errorf("FindSimilar(%q).ExistingID = %d, want %d", tt.query, got.ExistingID, tt.wantID)
			}
			if got.Similar && got.Similarity <= DefaultThreshold {
				t.Errorf("Similarity = %v, want > %v", got.Similarity, DefaultThreshold)
			}
		})
	}
}

func TestDetector_ExactMatchIsNotAboveOne(t *testing.T) {
	s := NewStore()
	s.Load([]RawRow{{FullName: "Ana Costa", ID: "1"}})

	got := NewDetector(s).FindSimilar("Ana Costa", DefaultThreshold)
	if !got.Similar || got.Similarity != 1.0 {
		t.Errorf("FindSimilar(identical) = %+v, want Similar with 1.0", got)
	}
}

func TestDetector_StrictThreshold(t *testing.T) {
	s := NewStore()
	// "ana costa" vs "ana souza": ratio 12/18
	s.Load([]RawRow{{FullName: "Ana Costa", ID: "1"}})
	d := NewDetector(s)

	score := Ratio("ana souza", "ana costa")
	if got := d.FindSimilar("Ana Souza", score); got.Similar {
		t.Errorf("FindSimilar at threshold == score reported a match: %+v", got)
	}
	if got := d.FindSimilar("Ana Souza", score-0.01); !got.Similar {
		t.Errorf("FindSimilar just below score found no match")
	}
}

func TestDetector_FirstMaximumWins(t *testing.T) {
	s := NewStore()
	s.Load([]RawRow{
		{FullName: "Carlos Mendes", ID: "10"},
		{FullName: "Carlos Mendes", ID: "11"},
	})

	got := NewDetector(s).FindSimilar("Carlos Mendez", DefaultThreshold)
	if !got.Similar || got.ExistingID != 10 {
		t.Errorf("FindSimilar tie = %+v, want the lower row (id 10)", got)
	}
}

func TestDetector_FollowsStoreMutations(t *testing.T) {
	s := NewStore()
	s.Load(nil)
	d := NewDetector(s)

	if got := d.FindSimilar("Jon Smith", DefaultThreshold); got.Similar {
		t.Fatalf("empty store matched: %+v", got)
	}
	if _, err := s.Add("John Smith", 5); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got := d.FindSimilar("Jon Smith", DefaultThreshold); !got.Similar || got.ExistingID != 5 {
		t.Errorf("after Add, FindSimilar = %+v, want id 5", got)
	}
}
