package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"candleminer/internal/candlepattern"
	"candleminer/internal/zigzagpattern"
)

// HTMLSink writes a directory containing an index.html and one rasterised
// PNG chart per reported pattern.
type HTMLSink struct {
	dir     string
	data    indexData
	nth     int
	title   string
	lines   []string
	chartOK bool
}

// NewHTMLSink constructs an unopened HTMLSink; Start creates the output
// directory.
func NewHTMLSink() *HTMLSink {
	return &HTMLSink{}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html><head><title>mining report</title></head><body>
<h1>{{.Start}} .. {{.End}}</h1>
<p>series: {{.Tickers}}</p>
{{range .Elements}}
<section>
<h2>{{.Title}}</h2>
{{if .Chart}}<img src="{{.Chart}}">{{end}}
<pre>{{.Text}}</pre>
</section>
{{end}}
</body></html>
`))

type indexElement struct {
	Title string
	Chart string
	Text  string
}

type indexData struct {
	Start    string
	End      string
	Tickers  string
	Elements []indexElement
}

func (h *HTMLSink) Start(destination string, startTime, endTime time.Time, tickers []string) error {
	if err := os.MkdirAll(destination, 0o755); err != nil {
		return err
	}
	h.dir = destination
	h.data = indexData{
		Start:   startTime.Format(time.RFC3339),
		End:     endTime.Format(time.RFC3339),
		Tickers: strings.Join(tickers, ", "),
	}
	return nil
}

func (h *HTMLSink) BeginElement(title string) error {
	h.title = title
	h.lines = nil
	h.chartOK = false
	h.nth++
	return nil
}

func (h *HTMLSink) InsertFitElements(elements []candlepattern.FitElement) error {
	series := make([]chart.Series, 0, 2)
	closes := make([]float64, len(elements))
	opens := make([]float64, len(elements))
	xs := make([]float64, len(elements))
	for i, e := range elements {
		xs[i] = float64(i)
		opens[i] = e.Open
		closes[i] = e.Close
	}
	series = append(series,
		chart.ContinuousSeries{Name: "open", XValues: xs, YValues: opens},
		chart.ContinuousSeries{Name: "close", XValues: xs, YValues: closes},
	)
	return h.renderChart(series)
}

func (h *HTMLSink) InsertZigzagElements(elements []zigzagpattern.Element) error {
	xs := make([]float64, len(elements))
	ys := make([]float64, len(elements))
	for i, e := range elements {
		xs[i] = float64(e.TimeOffset)
		ys[i] = e.PriceRatio
	}
	series := []chart.Series{
		chart.ContinuousSeries{Name: "price", XValues: xs, YValues: ys},
	}
	return h.renderChart(series)
}

func (h *HTMLSink) renderChart(series []chart.Series) error {
	graph := chart.Chart{Series: series}
	path := filepath.Join(h.dir, fmt.Sprintf("pattern-%d.png", h.nth))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := graph.Render(chart.PNG, f); err != nil {
		return err
	}
	h.chartOK = true
	return nil
}

func (h *HTMLSink) InsertText(line string) error {
	h.lines = append(h.lines, line)
	return nil
}

func (h *HTMLSink) EndElement() error {
	el := indexElement{
		Title: h.title,
		Text:  strings.Join(h.lines, "\n"),
	}
	if h.chartOK {
		el.Chart = fmt.Sprintf("pattern-%d.png", h.nth)
	}
	h.data.Elements = append(h.data.Elements, el)
	return nil
}

func (h *HTMLSink) End() error {
	f, err := os.Create(filepath.Join(h.dir, "index.html"))
	if err != nil {
		return err
	}
	defer f.Close()
	return indexTemplate.Execute(f, h.data)
}
