package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"candleminer/internal/candlepattern"
)

func TestHTMLSinkWritesIndexAndChart(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink := NewHTMLSink()

	start := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	end := time.Date(2024, 1, 2, 16, 0, 0, 0, time.UTC)
	if err := sink.Start(dir, start, end, []string{"AAPL"}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if err := sink.BeginElement("pattern 1 (count=2)"); err != nil {
		t.Fatalf("BeginElement returned error: %v", err)
	}
	elements := []candlepattern.FitElement{
		{Open: 1, High: 1.1, Low: 0.9, Close: 1.05},
		{Open: 1.05, High: 1.15, Low: 1.0, Close: 1.1},
	}
	if err := sink.InsertFitElements(elements); err != nil {
		t.Fatalf("InsertFitElements returned error: %v", err)
	}
	if err := sink.InsertText("count=2 momentum=1"); err != nil {
		t.Fatalf("InsertText returned error: %v", err)
	}
	if err := sink.EndElement(); err != nil {
		t.Fatalf("EndElement returned error: %v", err)
	}
	if err := sink.End(); err != nil {
		t.Fatalf("End returned error: %v", err)
	}

	indexPath := filepath.Join(dir, "index.html")
	raw, err := os.ReadFile(indexPath)
	if err != nil {
		t.Fatalf("index.html was not written: %v", err)
	}
	html := string(raw)
	if !strings.Contains(html, "pattern 1 (count=2)") {
		t.Error("index.html should contain the element title")
	}
	if !strings.Contains(html, "pattern-1.png") {
		t.Error("index.html should reference the rendered chart")
	}
	if !strings.Contains(html, "count=2 momentum=1") {
		t.Error("index.html should contain the inserted text")
	}

	if _, err := os.Stat(filepath.Join(dir, "pattern-1.png")); err != nil {
		t.Errorf("expected a rendered chart file: %v", err)
	}
}

func TestHTMLSinkEndElementOmitsChartWhenNoneRendered(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink := NewHTMLSink()

	if err := sink.Start(dir, time.Time{}, time.Time{}, nil); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := sink.BeginElement("textual pattern"); err != nil {
		t.Fatalf("BeginElement returned error: %v", err)
	}
	if err := sink.InsertText("no chart here"); err != nil {
		t.Fatalf("InsertText returned error: %v", err)
	}
	if err := sink.EndElement(); err != nil {
		t.Fatalf("EndElement returned error: %v", err)
	}
	if err := sink.End(); err != nil {
		t.Fatalf("End returned error: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "index.html"))
	if err != nil {
		t.Fatalf("index.html was not written: %v", err)
	}
	if strings.Contains(string(raw), "<img") {
		t.Error("index.html should not render an <img> tag when no chart was produced")
	}
}
