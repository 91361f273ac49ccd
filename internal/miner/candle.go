package miner

import (
	"candleminer/internal/candlepattern"
	"candleminer/internal/mineerrors"
	"candleminer/internal/quotes"
)

// CandleParams holds the candle miner's tunables (spec §4.3, §6).
type CandleParams struct {
	PatternLength int     // L in [2,31]
	CandleTol     float64 // relative to pattern amplitude
	VolumeTol     float64 // absolute; disabled when <= 0
	Limit         float64 // percentage of series positions used as base patterns; disabled when <= 0
	ExitAfter     int     // holding horizon h >= 1
	MomentumOrder int     // lookback in bars; disabled when <= 0
	FitSignatures bool
}

// CandleMiner implements the candle-shape mining skeleton of spec §4.3.
type CandleMiner struct {
	series   []*quotes.Series
	params   CandleParams
	progress ProgressFunc
}

// NewCandleMiner validates params and constructs a miner over series.
func NewCandleMiner(series []*quotes.Series, params CandleParams, progress ProgressFunc) (*CandleMiner, error) {
	if params.PatternLength < 2 || params.PatternLength > 31 {
		return nil, mineerrors.NewInvariantError("pattern_length %d out of range [2,31]", params.PatternLength)
	}
	if params.ExitAfter < 1 {
		return nil, mineerrors.NewInvariantError("exit_after %d must be >= 1", params.ExitAfter)
	}
	return &CandleMiner{series: series, params: params, progress: progress}, nil
}

// Mine runs the full enumerate/rescan/accumulate/dedup pass and returns
// Results in base-position emission order.
func (m *CandleMiner) Mine() []Result {
	L := m.params.PatternLength
	h := m.params.ExitAfter

	total := 0
	for _, s := range m.series {
		total += s.Len()
	}
	scanned := NewScannedMask(total)

	var results []Result
	baseIdx := 0
	done := 0

	for _, base := range m.series {
		length := base.Len()
		upper := length - L - h
		for pos := 0; pos < upper; pos++ {
			if m.params.Limit > 0 && (float64(pos)/float64(length))*100 > m.params.Limit {
				break
			}
			if scanned[baseIdx+pos] {
				continue
			}

			basePattern := candlepattern.Pattern{
				Elements:     candlepattern.Normalise(base, pos, L),
				MomentumSign: candlepattern.MomentumSign(base, pos, m.params.MomentumOrder),
			}
			if m.params.FitSignatures {
				basePattern.Signature = candlepattern.Signature(base, pos, L)
			}

			acc := &accumulator{}
			tol := candlepattern.Tolerances{Candle: m.params.CandleTol, Volume: m.params.VolumeTol, Signatures: m.params.FitSignatures}

			scanIdx := 0
			for _, scanSeries := range m.series {
				scanLen := scanSeries.Len()
				scanUpper := scanLen - L - h
				for sp := 0; sp < scanUpper; sp++ {
					cand := candlepattern.Pattern{
						Elements:     candlepattern.Normalise(scanSeries, sp, L),
						MomentumSign: candlepattern.MomentumSign(scanSeries, sp, m.params.MomentumOrder),
					}
					if m.params.FitSignatures {
						cand.Signature = candlepattern.Signature(scanSeries, sp, L)
					}

					if candlepattern.Similar(basePattern, cand, tol) {
						entry := scanSeries.At(sp + L).Open
						exit := scanSeries.At(sp + L + h - 1).Close

						lowR := rangeExtreme(scanSeries, sp+L, h, entry, false)
						highR := rangeExtreme(scanSeries, sp+L, h, entry, true)
						r := (exit - entry) / entry
						acc.record(r, lowR, highR)

						scanned[scanIdx+sp] = true
					}
				}
				scanIdx += scanLen
			}

			if len(acc.returns) >= 2 {
				res := acc.summarise()
				res.CandleShape = basePattern.Elements
				res.MomentumSign = basePattern.MomentumSign
				res.Signature = basePattern.Signature
				results = append(results, res)
			}

			done++
			if m.progress != nil {
				m.progress(done, total)
			}
		}
		baseIdx += length
	}

	return results
}

// rangeExtreme computes min (high=false) or max (high=true) over
// (bar.Low-entry)/entry or (bar.High-entry)/entry across the h bars
// starting at from.
func rangeExtreme(s *quotes.Series, from, h int, entry float64, high bool) float64 {
	var best float64
	for k := 0; k < h; k++ {
		bar := s.At(from + k)
		var v float64
		if high {
			v = (bar.High - entry) / entry
		} else {
			v = (bar.Low - entry) / entry
		}
		if k == 0 || (high && v > best) || (!high && v < best) {
			best = v
		}
	}
	return best
}
