package miner

import (
	"testing"

	"candleminer/internal/quotes"
)

func zigzagSeriesFromCloses(closes ...float64) *quotes.Series {
	s := quotes.New("synthetic")
	for _, c := range closes {
		s.Bars = append(s.Bars, quotes.Bar{Open: c, High: c, Low: c, Close: c, Volume: 1000})
	}
	return s
}

func TestNewZigzagMinerRejectsInvalidParams(t *testing.T) {
	if _, err := NewZigzagMiner(nil, ZigzagParams{Zigzags: 1, Epsilon: 1, ExitAfter: 1}, nil); err == nil {
		t.Error("expected an error for zigzags below 2")
	}
	if _, err := NewZigzagMiner(nil, ZigzagParams{Zigzags: 2, Epsilon: 0, ExitAfter: 1}, nil); err == nil {
		t.Error("expected an error for epsilon below 1")
	}
	if _, err := NewZigzagMiner(nil, ZigzagParams{Zigzags: 2, Epsilon: 1, ExitAfter: 0}, nil); err == nil {
		t.Error("expected an error for exit_after below 1")
	}
}

// TestZigzagMinerFindsRepeatedShape builds a close series that alternates
// min/max every bar. The same two-extremum shape (min -> max) recurs at the
// start of the series and should fold into a result with count 2.
func TestZigzagMinerFindsRepeatedShape(t *testing.T) {
	s := zigzagSeriesFromCloses(10, 1, 10, 1, 10, 1, 10, 1, 10)

	params := ZigzagParams{Zigzags: 2, Epsilon: 1, PriceTol: 1, VolumeTol: 0, TimeTol: 5, ExitAfter: 1, MomentumOrder: 0}
	m, err := NewZigzagMiner([]*quotes.Series{s}, params, nil)
	if err != nil {
		t.Fatalf("NewZigzagMiner returned error: %v", err)
	}

	results := m.Mine()

	var found *Result
	for i := range results {
		if results[i].Count == 2 {
			found = &results[i]
			break
		}
	}
	if found == nil {
		t.Fatalf("expected a result with Count=2 among %d results", len(results))
	}
	if len(found.ZigzagShape) != 2 {
		t.Errorf("ZigzagShape length = %d, want 2", len(found.ZigzagShape))
	}
}

func TestZigzagMinerReturnsEmptyWhenTooShort(t *testing.T) {
	s := zigzagSeriesFromCloses(1, 2, 3)

	params := ZigzagParams{Zigzags: 5, Epsilon: 1, PriceTol: 1, ExitAfter: 1, MomentumOrder: 0}
	m, err := NewZigzagMiner([]*quotes.Series{s}, params, nil)
	if err != nil {
		t.Fatalf("NewZigzagMiner returned error: %v", err)
	}

	if results := m.Mine(); len(results) != 0 {
		t.Errorf("Mine() on a too-short series = %d results, want 0", len(results))
	}
}
