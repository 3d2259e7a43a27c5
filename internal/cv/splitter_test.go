package cv

import (
	"errors"
	"testing"
	"time"
)

func makeSessions(n int) []time.Time {
	start := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

func TestSplit_WalkForward(t *testing.T) {
	sessions := makeSessions(600)
	p := Params{MinTrain: 504, Folds: 3, Embargo: 21}

	folds, err := Split(sessions, p)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(folds) != 3 {
		t.Fatalf("expected 3 folds, got %d", len(folds))
	}

	for k, fold := range folds {
		if len(fold.Train) == 0 || len(fold.Test) == 0 {
			t.Fatalf("fold %d has empty window", k)
		}

		// Training window always starts at the beginning
		if fold.Train[0] != 0 {
			t.Errorf("fold %d train does not start at 0", k)
		}

		// Embargo gap between train end and test start
		trainEnd := fold.Train[len(fold.Train)-1]
		testStart := fold.Test[0]
		if gap := testStart - trainEnd - 1; gap < p.Embargo {
			t.Errorf("fold %d embargo gap = %d, want >= %d", k, gap, p.Embargo)
		}

		// Every test index strictly after every train index
		if testStart <= trainEnd {
			t.Errorf("fold %d test overlaps train", k)
		}

		// Expanding window
		if k > 0 && len(fold.Train) <= len(folds[k-1].Train) {
			t.Errorf("fold %d train window did not expand", k)
		}
	}
}

func TestSplit_TestWindowsDoNotOverlap(t *testing.T) {
	folds, err := Split(makeSessions(700), Params{MinTrain: 504, Folds: 5, Embargo: 10})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	seen := map[int]bool{}
	for _, fold := range folds {
		for _, i := range fold.Test {
			if seen[i] {
				t.Fatalf("index %d appears in two test windows", i)
			}
			seen[i] = true
		}
	}
}

func TestSplit_FewerFoldsThanRequested(t *testing.T) {
	// Embargo consumes most of the tail; later folds fall off the end
	folds, err := Split(makeSessions(520), Params{MinTrain: 504, Folds: 5, Embargo: 5})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(folds) >= 5 {
		t.Fatalf("expected fewer than 5 folds, got %d", len(folds))
	}
	if len(folds) == 0 {
		t.Fatal("expected at least one fold")
	}
}

func TestSplit_NoFolds(t *testing.T) {
	_, err := Split(makeSessions(100), Params{MinTrain: 504, Folds: 5, Embargo: 21})
	if !errors.Is(err, ErrNoFolds) {
		t.Fatalf("expected ErrNoFolds, got %v", err)
	}
}

func TestSplit_InvalidParams(t *testing.T) {
	cases := []Params{
		{MinTrain: 0, Folds: 5, Embargo: 21},
		{MinTrain: 504, Folds: 0, Embargo: 21},
		{MinTrain: 504, Folds: 5, Embargo: -1},
	}
	for _, p := range cases {
		if _, err := Split(makeSessions(600), p); err == nil {
			t.Errorf("params %+v: expected error", p)
		}
	}
}

func TestSplit_UnsortedTimeline(t *testing.T) {
	sessions := makeSessions(600)
	sessions[10], sessions[11] = sessions[11], sessions[10]

	if _, err := Split(sessions, Params{MinTrain: 504, Folds: 3, Embargo: 21}); err == nil {
		t.Fatal("expected error for unsorted timeline")
	}
}

func TestSplit_DuplicateSession(t *testing.T) {
	sessions := makeSessions(600)
	sessions[20] = sessions[19]

	if _, err := Split(sessions, Params{MinTrain: 504, Folds: 3, Embargo: 21}); err == nil {
		t.Fatal("expected error for duplicate session")
	}
}

func TestSplit_TinyFoldSize(t *testing.T) {
	// (N - min_train) / folds rounds to zero; fold size floors at 1
	folds, err := Split(makeSessions(510), Params{MinTrain: 504, Folds: 10, Embargo: 0})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	for k, fold := range folds {
		if len(fold.Test) != 1 {
			t.Errorf("fold %d test size = %d, want 1", k, len(fold.Test))
		}
	}
}
