// Package candlepattern implements the anchor-relative candle-shape
// representation the candle miner matches against: normalisation,
// momentum sign, ordinal signature, and the similarity predicate.
package candlepattern

import (
	"sort"
	"strconv"

	"candleminer/internal/quotes"
)

// FitElement is a single normalised bar: open/high/low/close as ratios to
// the pattern's anchor open, volume as a ratio to the anchor volume.
type FitElement struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Pattern is an ordered shape of L FitElements (L in [2,31]), the momentum
// sign at its anchor, and an optional ordinal signature.
type Pattern struct {
	Elements     []FitElement
	MomentumSign int
	Signature    string
}

// Normalise produces the L-element FitElement sequence anchored at
// series[pos], dividing every OHLC field by series[pos].Open and volume by
// series[pos].Volume. The anchor's own open is therefore always 1.
func Normalise(s *quotes.Series, pos, length int) []FitElement {
	anchor := s.At(pos)
	elems := make([]FitElement, length)
	for i := 0; i < length; i++ {
		bar := s.At(pos + i)
		elems[i] = FitElement{
			Open:   bar.Open / anchor.Open,
			High:   bar.High / anchor.Open,
			Low:    bar.Low / anchor.Open,
			Close:  bar.Close / anchor.Open,
			Volume: float64(bar.Volume) / float64(anchor.Volume),
		}
	}
	return elems
}

// MomentumSign returns 0 if m <= 0 or pos-m < 0; otherwise the sign of
// series[pos-m].Close - series[pos].Open, with ties resolving to -1.
func MomentumSign(s *quotes.Series, pos, m int) int {
	if m <= 0 || pos-m < 0 {
		return 0
	}
	delta := s.At(pos-m).Close - s.At(pos).Open
	if delta > 0 {
		return 1
	}
	return -1
}

// priceTag is one of the 4L tagged OHLC price levels used to build a
// signature.
type priceTag struct {
	price float64
	tag   string
}

// Signature produces the ordinal signature of the L-bar window starting at
// pos: the 4L (price, tag) pairs sorted by price ascending (ties broken by
// tag string ascending), concatenated in sorted order.
func Signature(s *quotes.Series, pos, length int) string {
	tags := make([]priceTag, 0, 4*length)
	for i := 0; i < length; i++ {
		bar := s.At(pos + i)
		idx := strconv.Itoa(i)
		tags = append(tags,
			priceTag{bar.Open, "O" + idx},
			priceTag{bar.High, "H" + idx},
			priceTag{bar.Low, "L" + idx},
			priceTag{bar.Close, "C" + idx},
		)
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].price != tags[j].price {
			return tags[i].price < tags[j].price
		}
		return tags[i].tag < tags[j].tag
	})

	sig := make([]byte, 0, len(tags)*3)
	for _, t := range tags {
		sig = append(sig, t.tag...)
	}
	return string(sig)
}

// Tolerances bundles the similarity predicate's thresholds.
type Tolerances struct {
	Candle     float64 // relative to pattern amplitude
	Volume     float64 // absolute; disabled when <= 0
	Signatures bool
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// amplitude returns max_i(max(a[i].High, b[i].High)) - min_i(min(a[i].Low, b[i].Low)).
func amplitude(a, b []FitElement) float64 {
	maxHigh := a[0].High
	minLow := a[0].Low
	for i := range a {
		if a[i].High > maxHigh {
			maxHigh = a[i].High
		}
		if b[i].High > maxHigh {
			maxHigh = b[i].High
		}
		if a[i].Low < minLow {
			minLow = a[i].Low
		}
		if b[i].Low < minLow {
			minLow = b[i].Low
		}
	}
	return maxHigh - minLow
}

// Similar implements the candle similarity predicate between base and
// candidate patterns, both of the same length.
func Similar(base, cand Pattern, tol Tolerances) bool {
	if base.MomentumSign != cand.MomentumSign {
		return false
	}
	if tol.Signatures && base.Signature != cand.Signature {
		return false
	}

	a, b := base.Elements, cand.Elements
	tau := amplitude(a, b) * tol.Candle

	for i := range a {
		if abs(a[i].Open-b[i].Open) > tau ||
			abs(a[i].Close-b[i].Close) > tau ||
			abs(a[i].High-b[i].High) > tau ||
			abs(a[i].Low-b[i].Low) > tau {
			return false
		}
		if (a[i].Open-a[i].Close)*(b[i].Open-b[i].Close) < 0 {
			return false
		}
		if tol.Volume > 0 && abs(a[i].Volume-b[i].Volume) > tol.Volume {
			return false
		}
	}
	return true
}
