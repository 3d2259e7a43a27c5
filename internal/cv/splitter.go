// Package cv implements walk-forward cross-validation with an embargo gap.
//
// The embargo prevents slow-moving information (rolling features, smoothed
// labels) from leaking across the train/test boundary.
package cv

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoFolds is returned when the timeline and parameters cannot produce
// a single fold. A backtest with zero folds is meaningless, so this is
// fatal for the caller.
var ErrNoFolds = errors.New("cv: no folds can be produced from timeline")

// Params configures the splitter.
type Params struct {
	MinTrain int // minimum sessions before the first test fold
	Folds    int // requested number of test folds
	Embargo  int // sessions skipped between train end and test start
}

// Validate checks parameter ranges. It runs before any fold is produced.
func (p Params) Validate() error {
	if p.MinTrain < 1 {
		return fmt.Errorf("cv: min_train must be >= 1, got %d", p.MinTrain)
	}
	if p.Folds < 1 {
		return fmt.Errorf("cv: folds must be >= 1, got %d", p.Folds)
	}
	if p.Embargo < 0 {
		return fmt.Errorf("cv: embargo must be >= 0, got %d", p.Embargo)
	}
	return nil
}

// Fold is one train/test index pair over the session timeline. Train is
// the expanding window [0, trainEnd); Test is [testStart, testEnd) with
// testStart >= trainEnd + embargo.
type Fold struct {
	Train []int
	Test  []int
}

// Split yields walk-forward folds over a sorted, duplicate-free session
// timeline. The training window expands: every fold sees strictly more
// training data than the previous one. Folds whose test window would start
// past the end of the timeline are not emitted; fewer folds than requested
// is not an error, but zero folds is.
func Split(sessions []time.Time, p Params) ([]Fold, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := checkTimeline(sessions); err != nil {
		return nil, err
	}

	n := len(sessions)
	foldSize := (n - p.MinTrain) / p.Folds
	if foldSize < 1 {
		foldSize = 1
	}

	var folds []Fold
	for k := 0; k < p.Folds; k++ {
		trainEnd := p.MinTrain + k*foldSize
		testStart := trainEnd + p.Embargo
		testEnd := testStart + foldSize
		if testEnd > n {
			testEnd = n
		}

		if testStart >= n {
			break
		}

		folds = append(folds, Fold{
			Train: indexRange(0, trainEnd),
			Test:  indexRange(testStart, testEnd),
		})
	}

	if len(folds) == 0 {
		return nil, fmt.Errorf("%w: %d sessions, min_train=%d, folds=%d, embargo=%d",
			ErrNoFolds, n, p.MinTrain, p.Folds, p.Embargo)
	}

	return folds, nil
}

// checkTimeline enforces the strictly-increasing invariant the split
// guarantee depends on.
func checkTimeline(sessions []time.Time) error {
	for i := 1; i < len(sessions); i++ {
		if !sessions[i-1].Before(sessions[i]) {
			return fmt.Errorf("cv: timeline not strictly increasing at index %d", i)
		}
	}
	return nil
}

func indexRange(start, end int) []int {
	idx := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		idx = append(idx, i)
	}
	return idx
}
