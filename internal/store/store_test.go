package store

import (
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndList_RoundTrip(t *testing.T) {
	s := openTemp(t)

	in := Run{
		MatrixPath:    "map.tsv",
		MatrixSize:    512,
		Health:        72,
		Contiguity:    80.5,
		DecayQuality:  88.2,
		Integrity:     60,
		Compartments:  59.1,
		Exponent:      -1.12,
		Eigenvalue:    0.31,
		Misassemblies: 4,
		CreatedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	id, err := s.Record(in)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if id == 0 {
		t.Error("expected a non-zero run ID")
	}

	runs, err := s.List("map.tsv", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.Health != in.Health || got.MatrixSize != in.MatrixSize ||
		got.Exponent != in.Exponent || got.Misassemblies != in.Misassemblies {
		t.Errorf("round trip mismatch: %+v vs %+v", got, in)
	}
}

func TestRecord_FillsCreatedAt(t *testing.T) {
	s := openTemp(t)
	if _, err := s.Record(Run{MatrixPath: "map.tsv"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	runs, err := s.List("map.tsv", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if runs[0].CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be filled")
	}
}

func TestList_FiltersByPath(t *testing.T) {
	s := openTemp(t)
	for _, path := range []string{"a.tsv", "b.tsv", "a.tsv"} {
		if _, err := s.Record(Run{MatrixPath: path}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	runs, err := s.List("a.tsv", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs for a.tsv, got %d", len(runs))
	}
}

func TestList_OldestFirstAndLimit(t *testing.T) {
	s := openTemp(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := s.Record(Run{MatrixPath: "map.tsv", Health: 50 + i, CreatedAt: base.Add(time.Duration(i) * time.Hour)})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	runs, err := s.List("map.tsv", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected limit 2, got %d", len(runs))
	}
	if runs[0].Health != 50 || runs[1].Health != 51 {
		t.Errorf("expected oldest first, got %+v", runs)
	}
}
