package stats

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %v, want 0", got)
	}
	if got := Mean([]float64{1, 2, 3}); got != 2 {
		t.Errorf("Mean([1,2,3]) = %v, want 2", got)
	}
}

func TestStdDevSmallSampleIsZero(t *testing.T) {
	if got := StdDev([]float64{1, 2}, 1.5); got != 0 {
		t.Errorf("StdDev with n<=2 = %v, want 0", got)
	}
	if got := StdDev(nil, 0); got != 0 {
		t.Errorf("StdDev(nil) = %v, want 0", got)
	}
}

func TestStdDevKnownValue(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	mean := Mean(xs)
	got := StdDev(xs, mean)
	want := 2.138089935
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("StdDev = %v, want %v", got, want)
	}
}

func TestMedianOddAndEven(t *testing.T) {
	if got := Median([]float64{1, 2, 3}); got != 2 {
		t.Errorf("Median(odd) = %v, want 2", got)
	}
	if got := Median([]float64{1, 2, 3, 4}); got != 2.5 {
		t.Errorf("Median(even) = %v, want 2.5", got)
	}
	if got := Median(nil); got != 0 {
		t.Errorf("Median(nil) = %v, want 0", got)
	}
}

func TestMedianDoesNotSort(t *testing.T) {
	xs := []float64{10, 1, 2}
	if got := Median(xs); got != 1 {
		t.Errorf("Median should take the middle element positionally, got %v", got)
	}
}

func TestBinomialSignPBalanced(t *testing.T) {
	got := BinomialSignP(5, 10)
	if got < 0.99 {
		t.Errorf("BinomialSignP(5,10) = %v, want close to 1 for a balanced split", got)
	}
}

func TestBinomialSignPExtreme(t *testing.T) {
	got := BinomialSignP(10, 10)
	if got > 0.05 {
		t.Errorf("BinomialSignP(10,10) = %v, want a small p-value for an all-positive run", got)
	}
}

func TestBinomialSignPZeroTrials(t *testing.T) {
	if got := BinomialSignP(0, 0); got != 1 {
		t.Errorf("BinomialSignP(0,0) = %v, want 1", got)
	}
}

func TestStudentsTPDegenerateCases(t *testing.T) {
	if got := StudentsTP(1, 1, 1); got != 1 {
		t.Errorf("StudentsTP with n<2 = %v, want 1", got)
	}
	if got := StudentsTP(1, 0, 10); got != 1 {
		t.Errorf("StudentsTP with sigma=0 = %v, want 1", got)
	}
	if got := StudentsTP(0, 1, 10); got != 1 {
		t.Errorf("StudentsTP with mean=0 = %v, want 1", got)
	}
}

func TestStudentsTPStrongSignalYieldsSmallAlpha(t *testing.T) {
	// A large mean relative to a tiny sigma over many observations should
	// clear even the tightest rung of the ladder.
	got := StudentsTP(10, 0.01, 100)
	if got > 1e-4 {
		t.Errorf("StudentsTP for a strong signal = %v, want a very small alpha", got)
	}
}

func TestStudentsTPWeakSignalYieldsLargeAlpha(t *testing.T) {
	got := StudentsTP(0.001, 10, 3)
	if got != 1 {
		t.Errorf("StudentsTP for a weak signal with few samples = %v, want 1 (no rung cleared)", got)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v, want zero value", s)
	}
}

func TestSummarizeBasic(t *testing.T) {
	returns := []float64{1, -1, 2, -2, 3}
	s := Summarize(returns)

	if s.PosCount != 3 || s.NegCount != 2 {
		t.Errorf("PosCount/NegCount = %d/%d, want 3/2", s.PosCount, s.NegCount)
	}
	if s.Min != -2 || s.Max != 3 {
		t.Errorf("Min/Max = %v/%v, want -2/3", s.Min, s.Max)
	}
	wantMeanPos := (1.0 + 2.0 + 3.0) / 3
	if math.Abs(s.MeanPos-wantMeanPos) > 1e-9 {
		t.Errorf("MeanPos = %v, want %v", s.MeanPos, wantMeanPos)
	}
	wantMeanNeg := (-1.0 - 2.0) / 2
	if math.Abs(s.MeanNeg-wantMeanNeg) > 1e-9 {
		t.Errorf("MeanNeg = %v, want %v", s.MeanNeg, wantMeanNeg)
	}
}

func TestSummarizeAllZeroReturnsCountAsNegative(t *testing.T) {
	s := Summarize([]float64{0, 0, 0})
	if s.MeanPos != 0 || s.MeanNeg != 0 {
		t.Errorf("MeanPos/MeanNeg for all-zero returns = %v/%v, want 0/0", s.MeanPos, s.MeanNeg)
	}
	if s.PosCount != 0 || s.NegCount != 3 {
		t.Errorf("PosCount/NegCount for all-zero returns = %d/%d, want 0/3", s.PosCount, s.NegCount)
	}
}

// TestSummarizeAlternatingFlatSeriesScenario replicates spec.md §8's literal
// end-to-end scenario 1: nine zero returns from an alternating flat series.
func TestSummarizeAlternatingFlatSeriesScenario(t *testing.T) {
	returns := make([]float64, 9)
	s := Summarize(returns)

	if s.Mean != 0 {
		t.Errorf("Mean = %v, want 0", s.Mean)
	}
	if s.Sigma != 0 {
		t.Errorf("Sigma = %v, want 0", s.Sigma)
	}
	if s.PosCount != 0 || s.NegCount != 9 {
		t.Errorf("PosCount/NegCount = %d/%d, want 0/9", s.PosCount, s.NegCount)
	}
	if s.PosCount+s.NegCount != len(returns) {
		t.Errorf("PosCount+NegCount = %d, want %d", s.PosCount+s.NegCount, len(returns))
	}
	// Zero positives out of nine: q = |0 - 4.5| / sqrt(9) = 1.5 under the
	// unscaled sign-test formula, so SignP = 1 - erf(1.5).
	if want := 1 - math.Erf(1.5); s.SignP != want {
		t.Errorf("SignP = %v, want %v", s.SignP, want)
	}
}
