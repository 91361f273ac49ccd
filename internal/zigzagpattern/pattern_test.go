package zigzagpattern

import (
	"testing"

	"candleminer/internal/quotes"
)

func seriesFromCloses(closes ...float64) *quotes.Series {
	s := quotes.New("test")
	for _, c := range closes {
		s.Bars = append(s.Bars, quotes.Bar{Open: c, High: c, Low: c, Close: c, Volume: 100})
	}
	return s
}

func TestIsExtremumRejectsNearEdges(t *testing.T) {
	s := seriesFromCloses(1, 2, 3, 4, 5)
	if IsExtremum(s, 0, 1, true) {
		t.Error("position within epsilon of the start should never be an extremum")
	}
	if IsExtremum(s, 4, 1, true) {
		t.Error("position within epsilon of the end should never be an extremum")
	}
}

func TestIsExtremumDetectsLocalMinimum(t *testing.T) {
	s := seriesFromCloses(5, 4, 1, 4, 5)
	if !IsExtremum(s, 2, 1, true) {
		t.Error("position 2 should be a local minimum")
	}
	if IsExtremum(s, 2, 1, false) {
		t.Error("position 2 should not register as a local maximum")
	}
}

func TestIsExtremumDetectsLocalMaximum(t *testing.T) {
	s := seriesFromCloses(1, 2, 9, 2, 1)
	if !IsExtremum(s, 2, 1, false) {
		t.Error("position 2 should be a local maximum")
	}
}

func TestIsExtremumDisqualifiedByTie(t *testing.T) {
	s := seriesFromCloses(5, 1, 1, 4, 5)
	if IsExtremum(s, 1, 1, true) {
		t.Error("a tie in the neighbourhood should disqualify the position as an extremum")
	}
}

func TestExtractVectorisesRelativeToFirstExtremum(t *testing.T) {
	// Extrema (epsilon=1) at positions 1 (min, close=1), 3 (max, close=9), 5 (min, close=2).
	s := seriesFromCloses(5, 1, 5, 9, 4, 2, 6)

	pattern, ok := Extract(s, 0, 3, 1)
	if !ok {
		t.Fatal("Extract should find 3 extrema")
	}
	if len(pattern.Elements) != 3 {
		t.Fatalf("len(Elements) = %d, want 3", len(pattern.Elements))
	}

	first := pattern.Elements[0]
	if first.TimeOffset != 0 || first.PriceRatio != 1 || first.VolRatio != 1 {
		t.Errorf("first element = %+v, want TimeOffset=0 PriceRatio=1 VolRatio=1", first)
	}

	second := pattern.Elements[1]
	if second.TimeOffset != 2 {
		t.Errorf("second TimeOffset = %d, want 2", second.TimeOffset)
	}
	if second.PriceRatio != 9.0/1.0 {
		t.Errorf("second PriceRatio = %v, want 9", second.PriceRatio)
	}
	if second.IsMinimum {
		t.Error("second element should be a maximum")
	}
}

func TestExtractReturnsFalseWhenTooFewExtrema(t *testing.T) {
	s := seriesFromCloses(1, 2, 3, 4, 5)
	if _, ok := Extract(s, 0, 5, 1); ok {
		t.Error("Extract should fail when fewer than K extrema exist")
	}
}

func TestPriceAmplitude(t *testing.T) {
	elems := []Element{
		{PriceRatio: 1},
		{PriceRatio: 1.5},
		{PriceRatio: 0.8},
	}
	if got := PriceAmplitude(elems); got != 0.7 {
		t.Errorf("PriceAmplitude = %v, want 0.7", got)
	}
}

func TestSimilarRejectsMomentumMismatch(t *testing.T) {
	base := Pattern{MomentumSign: 1, Elements: []Element{{PriceRatio: 1}, {PriceRatio: 1.2}}}
	cand := Pattern{MomentumSign: -1, Elements: []Element{{PriceRatio: 1}, {PriceRatio: 1.2}}}

	if Similar(base, cand, Tolerances{Price: 1, Time: 10}) {
		t.Error("Similar should reject patterns with mismatched momentum sign")
	}
}

func TestSimilarRejectsLengthMismatch(t *testing.T) {
	base := Pattern{Elements: []Element{{PriceRatio: 1}, {PriceRatio: 1.2}}}
	cand := Pattern{Elements: []Element{{PriceRatio: 1}}}

	if Similar(base, cand, Tolerances{Price: 1, Time: 10}) {
		t.Error("Similar should reject patterns of different lengths")
	}
}

func TestSimilarChecksPriceVolumeTimeAndType(t *testing.T) {
	base := Pattern{Elements: []Element{
		{TimeOffset: 0, PriceRatio: 1, VolRatio: 1, IsMinimum: true},
		{TimeOffset: 5, PriceRatio: 1.5, VolRatio: 1.2, IsMinimum: false},
	}}

	withinTol := Pattern{Elements: []Element{
		{TimeOffset: 0, PriceRatio: 1, VolRatio: 1, IsMinimum: true},
		{TimeOffset: 6, PriceRatio: 1.52, VolRatio: 1.25, IsMinimum: false},
	}}
	if !Similar(base, withinTol, Tolerances{Price: 0.1, Volume: 0.1, Time: 2}) {
		t.Error("Similar should accept a candidate within all tolerances")
	}

	wrongType := Pattern{Elements: []Element{
		{TimeOffset: 0, PriceRatio: 1, VolRatio: 1, IsMinimum: true},
		{TimeOffset: 6, PriceRatio: 1.52, VolRatio: 1.25, IsMinimum: true},
	}}
	if Similar(base, wrongType, Tolerances{Price: 0.1, Volume: 0.1, Time: 2}) {
		t.Error("Similar should reject a mismatched extremum type")
	}

	tooFarInTime := Pattern{Elements: []Element{
		{TimeOffset: 0, PriceRatio: 1, VolRatio: 1, IsMinimum: true},
		{TimeOffset: 20, PriceRatio: 1.52, VolRatio: 1.25, IsMinimum: false},
	}}
	if Similar(base, tooFarInTime, Tolerances{Price: 0.1, Volume: 0.1, Time: 2}) {
		t.Error("Similar should reject a candidate outside the time tolerance")
	}
}

func TestSimilarVolumeToleranceDisabledWhenNonPositive(t *testing.T) {
	base := Pattern{Elements: []Element{
		{TimeOffset: 0, PriceRatio: 1, VolRatio: 1, IsMinimum: true},
		{TimeOffset: 5, PriceRatio: 1.5, VolRatio: 1, IsMinimum: false},
	}}
	cand := Pattern{Elements: []Element{
		{TimeOffset: 0, PriceRatio: 1, VolRatio: 1, IsMinimum: true},
		{TimeOffset: 5, PriceRatio: 1.5, VolRatio: 50, IsMinimum: false},
	}}

	if !Similar(base, cand, Tolerances{Price: 0.1, Volume: 0, Time: 1}) {
		t.Error("Similar should ignore volume divergence when Volume tolerance is <= 0")
	}
}
