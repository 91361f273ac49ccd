// Package miner implements the candle and zigzag mining skeleton: sliding-
// window base enumeration, full rescan under a similarity predicate,
// forward-return accumulation, dedup via a scanned mask, and inferential
// summarisation.
package miner

import (
	"candleminer/internal/candlepattern"
	"candleminer/internal/stats"
	"candleminer/internal/zigzagpattern"
)

// Result is one mined pattern's canonical shape plus its inferential
// statistics over every matched occurrence's forward return.
type Result struct {
	CandleShape  []candlepattern.FitElement
	ZigzagShape  []zigzagpattern.Element
	MomentumSign int
	Signature    string

	Count      int
	Mean       float64
	Sigma      float64
	MeanP      float64
	MeanPos    float64
	MeanNeg    float64
	PosReturns int
	NegReturns int
	MinReturn  float64
	MaxReturn  float64
	Median     float64
	MinLow     float64
	MaxHigh    float64
	P          float64
}

// accumulator collects the raw samples gathered while rescanning for a
// single base pattern, before being summarised into a Result.
type accumulator struct {
	returns []float64
	lows    []float64
	highs   []float64
}

func (a *accumulator) record(r, low, high float64) {
	a.returns = append(a.returns, r)
	a.lows = append(a.lows, low)
	a.highs = append(a.highs, high)
}

// summarise folds the accumulator's samples into a Result, leaving the
// shape-identifying fields for the caller to fill in.
func (a *accumulator) summarise() Result {
	s := stats.Summarize(a.returns)

	minLow, maxHigh := a.lows[0], a.highs[0]
	for i := range a.lows {
		if a.lows[i] < minLow {
			minLow = a.lows[i]
		}
		if a.highs[i] > maxHigh {
			maxHigh = a.highs[i]
		}
	}

	return Result{
		Count:      len(a.returns),
		Mean:       s.Mean,
		Sigma:      s.Sigma,
		MeanP:      s.StudentsP,
		MeanPos:    s.MeanPos,
		MeanNeg:    s.MeanNeg,
		PosReturns: s.PosCount,
		NegReturns: s.NegCount,
		MinReturn:  s.Min,
		MaxReturn:  s.Max,
		Median:     s.Median,
		MinLow:     minLow,
		MaxHigh:    maxHigh,
		P:          s.SignP,
	}
}

// ScannedMask is a flat per-global-position dedup bitset, indexed by
// (series offset in concatenation order + position). It is owned by a
// single mining pass and discarded at its end.
type ScannedMask []bool

// NewScannedMask allocates a mask sized for totalPositions global
// positions, all unscanned.
func NewScannedMask(totalPositions int) ScannedMask {
	return make(ScannedMask, totalPositions)
}

// ProgressFunc is invoked as base positions are consumed; done/total let a
// caller render a percentage.
type ProgressFunc func(done, total int)
