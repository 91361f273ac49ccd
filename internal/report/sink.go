// Package report defines the output sink interface the orchestrator feeds
// mined patterns to, and two implementations: a newline-delimited text
// sink and a rasterised HTML sink.
package report

import (
	"time"

	"candleminer/internal/candlepattern"
	"candleminer/internal/zigzagpattern"
)

// Sink receives an ordered sequence of titled elements, each carrying an
// optional chart of candles/zigzag points and textual statistics lines.
type Sink interface {
	Start(destination string, startTime, endTime time.Time, tickers []string) error
	BeginElement(title string) error
	InsertFitElements(elements []candlepattern.FitElement) error
	InsertZigzagElements(elements []zigzagpattern.Element) error
	InsertText(line string) error
	EndElement() error
	End() error
}
