// Package orchestrator drives a chosen miner over a configured list of
// series, filters and sorts its results, and feeds the survivors to a
// report sink.
package orchestrator

import (
	"fmt"
	"math"
	"sort"
	"time"

	"candleminer/internal/mineerrors"
	"candleminer/internal/miner"
	"candleminer/internal/quotes"
	"candleminer/internal/report"
)

// MinerType selects which sibling miner an invocation runs.
type MinerType int

const (
	MinerTypeCandle MinerType = iota
	MinerTypeZigzag
)

// Filters holds the report-stage predicates from configuration (spec §6).
type Filters struct {
	MinP        float64 // filter-p; disabled when <= 0
	MinMean     float64 // filter-mean; disabled when <= 0
	MinMeanP    float64 // filter-mean-p; disabled when <= 0
	MinCount    int     // filter-count; disabled when <= 0
	DropTrivial bool    // filter-trivial
}

// keep reports whether r survives every enabled filter.
func (f Filters) keep(r miner.Result) bool {
	if f.MinP > 0 && r.P < f.MinP {
		return false
	}
	if f.MinMean > 0 && math.Abs(r.Mean) < f.MinMean {
		return false
	}
	if f.MinMeanP > 0 && r.MeanP > f.MinMeanP {
		return false
	}
	if f.MinCount > 0 && r.Count < f.MinCount {
		return false
	}
	if f.DropTrivial && isTrivial(r) {
		return false
	}
	return true
}

// isTrivial reports whether r's shape is flat: a candle window in which
// every bar has open == high == low == close (bars may sit at different
// levels from one another), or a zigzag whose every price ratio equals 1.
func isTrivial(r miner.Result) bool {
	for _, e := range r.CandleShape {
		if e.Open != e.High || e.High != e.Low || e.Low != e.Close {
			return false
		}
	}
	for _, e := range r.ZigzagShape {
		if e.PriceRatio != 1 {
			return false
		}
	}
	return true
}

// Run loads no series itself — it accepts already-loaded series — builds
// the chosen miner, mines, filters, sorts, and emits to sink.
func Run(series []*quotes.Series, minerType MinerType, candleParams miner.CandleParams, zigzagParams miner.ZigzagParams, filters Filters, sink report.Sink, destination string, progress miner.ProgressFunc) error {
	var results []miner.Result

	switch minerType {
	case MinerTypeCandle:
		m, err := miner.NewCandleMiner(series, candleParams, progress)
		if err != nil {
			return err
		}
		results = m.Mine()
	case MinerTypeZigzag:
		m, err := miner.NewZigzagMiner(series, zigzagParams, progress)
		if err != nil {
			return err
		}
		results = m.Mine()
	default:
		return mineerrors.NewArgumentError("unknown miner type %d", minerType)
	}

	// Stable sort preserves emission order among equal counts.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Count > results[j].Count
	})

	var kept []miner.Result
	for _, r := range results {
		if filters.keep(r) {
			kept = append(kept, r)
		}
	}

	tickers := make([]string, len(series))
	for i, s := range series {
		tickers[i] = s.Name
	}

	var startTime, endTime time.Time
	for _, s := range series {
		if s.Len() == 0 {
			continue
		}
		first := s.At(0).Time
		last := s.At(s.Len() - 1).Time
		if startTime.IsZero() || first.Before(startTime) {
			startTime = first
		}
		if last.After(endTime) {
			endTime = last
		}
	}

	if err := sink.Start(destination, startTime, endTime, tickers); err != nil {
		return mineerrors.NewIOError(destination, err)
	}

	for i, r := range kept {
		title := fmt.Sprintf("pattern %d (count=%d)", i+1, r.Count)
		if err := sink.BeginElement(title); err != nil {
			return err
		}
		if len(r.CandleShape) > 0 {
			if err := sink.InsertFitElements(r.CandleShape); err != nil {
				return err
			}
		}
		if len(r.ZigzagShape) > 0 {
			if err := sink.InsertZigzagElements(r.ZigzagShape); err != nil {
				return err
			}
		}
		for _, line := range statLines(r) {
			if err := sink.InsertText(line); err != nil {
				return err
			}
		}
		if err := sink.EndElement(); err != nil {
			return err
		}
	}

	return sink.End()
}

func statLines(r miner.Result) []string {
	return []string{
		fmt.Sprintf("count=%d momentum=%d", r.Count, r.MomentumSign),
		fmt.Sprintf("mean=%.6f sigma=%.6f median=%.6f", r.Mean, r.Sigma, r.Median),
		fmt.Sprintf("mean_pos=%.6f mean_neg=%.6f pos=%d neg=%d", r.MeanPos, r.MeanNeg, r.PosReturns, r.NegReturns),
		fmt.Sprintf("min_return=%.6f max_return=%.6f", r.MinReturn, r.MaxReturn),
		fmt.Sprintf("min_low=%.6f max_high=%.6f", r.MinLow, r.MaxHigh),
		fmt.Sprintf("p=%.6f mean_p=%.6f", r.P, r.MeanP),
	}
}
