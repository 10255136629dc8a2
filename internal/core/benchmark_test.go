package core

import (
	"fmt"
	"strconv"
	"testing"
)

var (
	benchFirst = []string{"Maria", "João", "Ana", "Pedro", "Lucas", "Júlia", "Gabriel", "Beatriz", "Rafael", "Larissa"}
	benchLast  = []string{"Silva", "Souza", "Oliveira", "Santos", "Pereira", "Costa", "Rodrigues", "Almeida", "Nascimento", "Araújo"}
)

// benchRows builds n distinct roster rows with realistic, overlapping names.
func benchRows(n int) []RawRow {
	rows := make([]RawRow, n)
	for i := range rows {
		name := fmt.Sprintf("%s %s %s",
			benchFirst[i%len(benchFirst)],
			benchLast[(i/len(benchFirst))%len(benchLast)],
			benchLast[(i/7)%len(benchLast)],
		)
		rows[i] = RawRow{FullName: name, ID: strconv.Itoa(100000 + i)}
	}
	return rows
}

func benchStore(b *testing.B, n int) *Store {
	b.Helper()
	s := NewStore()
	s.Load(benchRows(n))
	return s
}

// ============================================================================
// Index Benchmarks
// ============================================================================

// BenchmarkIndexRebuild measures the full rebuild every structural change
// pays.
func BenchmarkIndexRebuild(b *testing.B) {
	for _, n := range []int{100, 1000, 10000} {
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			records := benchStore(b, n).All()
			ix := NewIndex()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				ix.Rebuild(records)
			}
		})
	}
}

// BenchmarkIndexCandidates measures candidate narrowing for one query.
func BenchmarkIndexCandidates(b *testing.B) {
	ix := benchStore(b, 10000).Index()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ix.Candidates("maria silva santos")
	}
}

// ============================================================================
// Similarity Benchmarks
// ============================================================================

// BenchmarkRatio measures the pairwise score on name-sized inputs.
func BenchmarkRatio(b *testing.B) {
	b.Run("Similar", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			Ratio("maria da silva santos", "maria silva santos")
		}
	})

	b.Run("Different", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			Ratio("gabriel nascimento", "ana costa")
		}
	})
}

// BenchmarkFindSimilar measures a full lookup against a large roster.
func BenchmarkFindSimilar(b *testing.B) {
	d := NewDetector(benchStore(b, 10000))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.FindSimilar("MARIA SILVA SANTOS", DefaultThreshold)
	}
}

// ============================================================================
// Validation Benchmarks
// ============================================================================

// BenchmarkValidate measures a 200-row batch against 5000 students, half of
// the batch colliding with the roster.
func BenchmarkValidate(b *testing.B) {
	v := NewValidator(benchStore(b, 5000), DefaultThreshold)

	batch := make([]CandidateRow, 200)
	for i := range batch {
		batch[i] = CandidateRow{
			Row:   i + 1,
			Name:  fmt.Sprintf("%s Novo %d", benchFirst[i%len(benchFirst)], i),
			RawID: strconv.Itoa(100000 + i*50),
		}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := v.Validate(batch); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Conversion Benchmarks
// ============================================================================

// BenchmarkParseID benchmarks id coercion of spreadsheet cells.
func BenchmarkParseID(b *testing.B) {
	cases := []any{"100", `="2024001"`, "100.0", float64(42), "abc"}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for _, c := range cases {
			ParseID(c)
		}
	}
}

// BenchmarkCleanCellParallel benchmarks parallel cell cleaning.
func BenchmarkCleanCellParallel(b *testing.B) {
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			CleanCell(`="formula value"`)
		}
	})
}
