package miner

import (
	"candleminer/internal/candlepattern"
	"candleminer/internal/mineerrors"
	"candleminer/internal/quotes"
	"candleminer/internal/zigzagpattern"
)

// ZigzagParams holds the zigzag miner's tunables (spec §4.4, §6).
type ZigzagParams struct {
	Zigzags       int     // K >= 2
	Epsilon       int     // extremum half-window in bars, >= 1
	PriceTol      float64 // relative to base price amplitude
	VolumeTol     float64 // absolute; disabled when <= 0
	TimeTol       int     // absolute bar-count delta per zigzag
	Limit         float64 // percentage of series positions used as base patterns; disabled when <= 0
	ExitAfter     int     // holding horizon h >= 1
	MomentumOrder int     // lookback in bars; disabled when <= 0
}

// ZigzagMiner implements the extremum-sequence mining skeleton of spec §4.4.
type ZigzagMiner struct {
	series   []*quotes.Series
	params   ZigzagParams
	progress ProgressFunc
}

// NewZigzagMiner validates params and constructs a miner over series.
func NewZigzagMiner(series []*quotes.Series, params ZigzagParams, progress ProgressFunc) (*ZigzagMiner, error) {
	if params.Zigzags < 2 {
		return nil, mineerrors.NewInvariantError("zigzags %d must be >= 2", params.Zigzags)
	}
	if params.Epsilon < 1 {
		return nil, mineerrors.NewInvariantError("epsilon %d must be >= 1", params.Epsilon)
	}
	if params.ExitAfter < 1 {
		return nil, mineerrors.NewInvariantError("exit_after %d must be >= 1", params.ExitAfter)
	}
	return &ZigzagMiner{series: series, params: params, progress: progress}, nil
}

// Mine runs the full enumerate/rescan/accumulate/dedup pass and returns
// Results in base-position emission order.
func (m *ZigzagMiner) Mine() []Result {
	K := m.params.Zigzags
	eps := m.params.Epsilon
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
		for pos := 0; pos < length-1; pos++ {
			if m.params.Limit > 0 && (float64(pos)/float64(length))*100 > m.params.Limit {
				break
			}
			if scanned[baseIdx+pos] {
				continue
			}

			baseZZ, ok := zigzagpattern.Extract(base, pos, K, eps)
			if !ok {
				continue
			}
			baseZZ.MomentumSign = candlepattern.MomentumSign(base, pos, m.params.MomentumOrder)

			tol := zigzagpattern.Tolerances{
				Price:  zigzagpattern.PriceAmplitude(baseZZ.Elements) * m.params.PriceTol,
				Volume: m.params.VolumeTol,
				Time:   m.params.TimeTol,
			}

			acc := &accumulator{}
			scanIdx := 0
			for _, scanSeries := range m.series {
				scanLen := scanSeries.Len()
				for sp := 0; sp < scanLen-1; sp++ {
					candZZ, ok := zigzagpattern.Extract(scanSeries, sp, K, eps)
					if !ok {
						continue
					}
					candZZ.MomentumSign = candlepattern.MomentumSign(scanSeries, sp, m.params.MomentumOrder)

					if zigzagpattern.Similar(baseZZ, candZZ, tol) {
						lastPos := sp + baseZZ.Elements[K-1].TimeOffset + eps
						exitPos := lastPos + h
						if exitPos >= scanLen {
							continue
						}
						lastClose := scanSeries.At(lastPos).Close
						exitClose := scanSeries.At(exitPos).Close
						r := (exitClose - lastClose) / lastClose
						acc.record(r, 0, 0)

						scanned[scanIdx+sp] = true
					}
				}
				scanIdx += scanLen
			}

			if len(acc.returns) >= 2 {
				res := acc.summarise()
				res.ZigzagShape = baseZZ.Elements
				res.MomentumSign = baseZZ.MomentumSign
				// min_low/max_high are not maintained for zigzag results.
				res.MinLow = 0
				res.MaxHigh = 0
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
