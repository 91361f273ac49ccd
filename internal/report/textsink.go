package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"candleminer/internal/candlepattern"
	"candleminer/internal/zigzagpattern"
)

// TextSink writes a flat, newline-delimited report with "=== title ==="
// section markers. It has no chart capability — fit/zigzag elements are
// rendered as compact summary lines instead of an image.
type TextSink struct {
	w    io.WriteCloser
	path string
}

// NewTextSink constructs an unopened TextSink; Start opens the file.
func NewTextSink() *TextSink {
	return &TextSink{}
}

func (t *TextSink) Start(destination string, startTime, endTime time.Time, tickers []string) error {
	f, err := os.Create(destination)
	if err != nil {
		return err
	}
	t.w = f
	t.path = destination

	fmt.Fprintf(t.w, "mining report %s .. %s\n", startTime.Format(time.RFC3339), endTime.Format(time.RFC3339))
	fmt.Fprintf(t.w, "series: %s\n\n", strings.Join(tickers, ", "))
	return nil
}

func (t *TextSink) BeginElement(title string) error {
	fmt.Fprintf(t.w, "=== %s ===\n", title)
	return nil
}

func (t *TextSink) InsertFitElements(elements []candlepattern.FitElement) error {
	for i, e := range elements {
		fmt.Fprintf(t.w, "  bar[%d] o=%.4f h=%.4f l=%.4f c=%.4f v=%.4f\n", i, e.Open, e.High, e.Low, e.Close, e.Volume)
	}
	return nil
}

func (t *TextSink) InsertZigzagElements(elements []zigzagpattern.Element) error {
	for i, e := range elements {
		fmt.Fprintf(t.w, "  zz[%d] t=%d p=%.4f v=%.4f min=%v\n", i, e.TimeOffset, e.PriceRatio, e.VolRatio, e.IsMinimum)
	}
	return nil
}

func (t *TextSink) InsertText(line string) error {
	fmt.Fprintln(t.w, line)
	return nil
}

func (t *TextSink) EndElement() error {
	fmt.Fprintln(t.w)
	return nil
}

func (t *TextSink) End() error {
	return t.w.Close()
}
