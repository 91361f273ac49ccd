// Package zigzagpattern implements the extremum-sequence representation
// the zigzag miner matches against: extremum detection, vectorisation
// relative to the first extremum, and the similarity predicate.
package zigzagpattern

import "candleminer/internal/quotes"

// Element is one vectorised zigzag point: its bar offset, close-price ratio
// and volume ratio relative to the first extremum, and whether it is a
// local minimum (false means local maximum).
type Element struct {
	TimeOffset int
	PriceRatio float64
	VolRatio   float64
	IsMinimum  bool
}

// Pattern is an ordered zigzag vector of K >= 2 Elements. Its first element
// always carries TimeOffset=0, PriceRatio=1, VolRatio=1.
type Pattern struct {
	Elements     []Element
	MomentumSign int
}

// IsExtremum reports whether series[pos].Close strictly dominates every
// other close in the +/-epsilon neighbourhood: for a minimum, every
// neighbour's close must be > series[pos].Close; for a maximum, <. Any tie
// in the neighbourhood disqualifies pos. Positions within epsilon of either
// end of the series are never extrema.
func IsExtremum(s *quotes.Series, pos, epsilon int, minimum bool) bool {
	length := s.Len()
	if pos < epsilon || pos > length-epsilon-1 {
		return false
	}
	center := s.At(pos).Close
	for p := pos - epsilon; p <= pos+epsilon; p++ {
		if p == pos {
			continue
		}
		other := s.At(p).Close
		if minimum {
			if other <= center {
				return false
			}
		} else {
			if other >= center {
				return false
			}
		}
	}
	return true
}

// Extract scans forward from start collecting the first K extrema
// (minima or maxima, whichever the series presents first) and vectorises
// them relative to the first one found. It returns ok=false if fewer than
// K extrema are found before the series is exhausted.
func Extract(s *quotes.Series, start, k, epsilon int) (Pattern, bool) {
	length := s.Len()
	elems := make([]Element, 0, k)

	var unitPrice float64
	var unitVol float64
	var firstPos int

	for pos := start; pos < length; pos++ {
		isMin := IsExtremum(s, pos, epsilon, true)
		isMax := IsExtremum(s, pos, epsilon, false)
		if !isMin && !isMax {
			continue
		}

		bar := s.At(pos)
		if len(elems) == 0 {
			unitPrice = bar.Close
			unitVol = float64(bar.Volume)
			firstPos = pos
			elems = append(elems, Element{TimeOffset: 0, PriceRatio: 1, VolRatio: 1, IsMinimum: isMin})
		} else {
			elems = append(elems, Element{
				TimeOffset: pos - firstPos,
				PriceRatio: bar.Close / unitPrice,
				VolRatio:   float64(bar.Volume) / unitVol,
				IsMinimum:  isMin,
			})
		}
		if len(elems) == k {
			return Pattern{Elements: elems}, true
		}
	}
	return Pattern{}, false
}

// Tolerances bundles the similarity predicate's thresholds.
type Tolerances struct {
	Price  float64 // relative to the base's price amplitude, precomputed into absolute units by caller
	Volume float64 // absolute; disabled when <= 0
	Time   int     // absolute bar-count delta per zigzag
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// PriceAmplitude returns max_i(base[i].PriceRatio) - min_i(base[i].PriceRatio),
// the quantity the caller scales by price tolerance to get an absolute
// tolerance for Similar.
func PriceAmplitude(base []Element) float64 {
	max, min := base[0].PriceRatio, base[0].PriceRatio
	for _, e := range base {
		if e.PriceRatio > max {
			max = e.PriceRatio
		}
		if e.PriceRatio < min {
			min = e.PriceRatio
		}
	}
	return max - min
}

// Similar implements the zigzag similarity predicate: cand must match
// base's momentum sign and, element by element, its price/volume/time
// tolerances and minimum/maximum type.
func Similar(base, cand Pattern, tol Tolerances) bool {
	if base.MomentumSign != cand.MomentumSign {
		return false
	}
	if len(base.Elements) != len(cand.Elements) {
		return false
	}
	for i := range base.Elements {
		b, c := base.Elements[i], cand.Elements[i]
		if abs(c.PriceRatio-b.PriceRatio) > tol.Price {
			return false
		}
		if tol.Volume > 0 && abs(c.VolRatio-b.VolRatio) > tol.Volume {
			return false
		}
		if absInt(c.TimeOffset-b.TimeOffset) > tol.Time {
			return false
		}
		if c.IsMinimum != b.IsMinimum {
			return false
		}
	}
	return true
}
