package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"candleminer/internal/candlepattern"
	"candleminer/internal/zigzagpattern"
)

func TestTextSinkWritesHeaderAndSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	sink := NewTextSink()

	start := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	end := time.Date(2024, 1, 2, 16, 0, 0, 0, time.UTC)
	if err := sink.Start(path, start, end, []string{"AAPL", "MSFT"}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if err := sink.BeginElement("pattern 1 (count=3)"); err != nil {
		t.Fatalf("BeginElement returned error: %v", err)
	}
	if err := sink.InsertFitElements([]candlepattern.FitElement{{Open: 1, High: 1.1, Low: 0.9, Close: 1.05, Volume: 1}}); err != nil {
		t.Fatalf("InsertFitElements returned error: %v", err)
	}
	if err := sink.InsertZigzagElements([]zigzagpattern.Element{{TimeOffset: 1, PriceRatio: 1.2, VolRatio: 1, IsMinimum: true}}); err != nil {
		t.Fatalf("InsertZigzagElements returned error: %v", err)
	}
	if err := sink.InsertText("count=3 momentum=1"); err != nil {
		t.Fatalf("InsertText returned error: %v", err)
	}
	if err := sink.EndElement(); err != nil {
		t.Fatalf("EndElement returned error: %v", err)
	}
	if err := sink.End(); err != nil {
		t.Fatalf("End returned error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report file: %v", err)
	}
	contents := string(raw)

	for _, want := range []string{
		"series: AAPL, MSFT",
		"=== pattern 1 (count=3) ===",
		"bar[0]",
		"zz[0]",
		"count=3 momentum=1",
	} {
		if !strings.Contains(contents, want) {
			t.Errorf("report does not contain %q:\n%s", want, contents)
		}
	}
}

func TestTextSinkStartErrorsOnUnwritablePath(t *testing.T) {
	sink := NewTextSink()
	err := sink.Start(filepath.Join(t.TempDir(), "missing-dir", "report.txt"), time.Time{}, time.Time{}, nil)
	if err == nil {
		t.Error("expected an error when the destination directory does not exist")
	}
}
