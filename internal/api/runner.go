package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"candleminer/internal/cache"
	"candleminer/internal/database"
	"candleminer/internal/miner"
	"candleminer/internal/orchestrator"
	"candleminer/internal/quotes"
	"candleminer/internal/report"
)

// RunRequest is the body of POST /api/runs. InputPaths names CSV files
// already present on the server's filesystem; the service does not accept
// uploaded bars.
type RunRequest struct {
	MinerType  string   `json:"miner_type" binding:"required,oneof=candle zigzag"`
	InputPaths []string `json:"input_paths" binding:"required,min=1"`
	ReportType string   `json:"report_type"` // "html" or "txt", defaults to "txt"

	CandleParams miner.CandleParams   `json:"candle_params"`
	ZigzagParams miner.ZigzagParams   `json:"zigzag_params"`
	Filters      orchestrator.Filters `json:"filters"`
}

// RunStatus is the JSON shape returned by GET /api/runs/:id.
type RunStatus struct {
	ID           string   `json:"id"`
	MinerType    string   `json:"miner_type"`
	Tickers      []string `json:"tickers"`
	Status       string   `json:"status"`
	ResultCount  int      `json:"result_count"`
	ErrorMessage *string  `json:"error_message,omitempty"`
	ReportPath   string   `json:"report_path,omitempty"`
}

// Runner executes mining runs in the background and records their
// lifecycle in the repository, publishing progress over the WebSocket hub.
type Runner struct {
	repo       *database.Repository
	cacheSvc   *cache.CacheService
	hub        *WSHub
	reportRoot string
}

// NewRunner builds a Runner. cacheSvc may be nil to disable result caching.
func NewRunner(repo *database.Repository, cacheSvc *cache.CacheService, hub *WSHub, reportRoot string) *Runner {
	return &Runner{repo: repo, cacheSvc: cacheSvc, hub: hub, reportRoot: reportRoot}
}

// Submit records a pending run and kicks off loading and mining in a
// background goroutine. It returns as soon as the run row exists, before
// any bars are loaded.
func (rn *Runner) Submit(ctx context.Context, req RunRequest) (*database.Run, error) {
	tickers := make([]string, len(req.InputPaths))
	for i, p := range req.InputPaths {
		tickers[i] = filepath.Base(p)
	}

	configJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run config: %w", err)
	}

	run, err := rn.repo.CreateRun(ctx, req.MinerType, tickers, configJSON)
	if err != nil {
		return nil, err
	}

	go rn.execute(run.ID, req, configJSON)

	return run, nil
}

func (rn *Runner) execute(runID uuid.UUID, req RunRequest, configJSON []byte) {
	ctx := context.Background()

	if err := rn.repo.MarkRunning(ctx, runID); err != nil {
		log.Printf("api: failed to mark run %s running: %v", runID, err)
	}
	rn.hub.Publish(runID, 0, 0, database.RunStatusRunning)

	series, err := loadSeries(req.InputPaths)
	if err != nil {
		rn.finish(ctx, runID, 0, err)
		return
	}

	minerType := orchestrator.MinerTypeCandle
	if req.MinerType == "zigzag" {
		minerType = orchestrator.MinerTypeZigzag
	}

	fingerprint := cache.Fingerprint(req.MinerType, req.InputPaths, configJSON)
	if rn.cacheSvc != nil && rn.cacheSvc.IsHealthy() {
		var cached []miner.Result
		if err := rn.cacheSvc.GetJSON(ctx, cache.RunResultKey(fingerprint), &cached); err == nil && cached != nil {
			rn.finish(ctx, runID, len(cached), nil)
			rn.hub.Publish(runID, 1, 1, database.RunStatusDone)
			return
		}
	}

	if err := os.MkdirAll(rn.reportRoot, 0o755); err != nil {
		rn.finish(ctx, runID, 0, err)
		return
	}

	var sink report.Sink
	var destination string
	if req.ReportType == "html" {
		sink = report.NewHTMLSink()
		destination = filepath.Join(rn.reportRoot, runID.String())
	} else {
		sink = report.NewTextSink()
		destination = filepath.Join(rn.reportRoot, runID.String()+".txt")
	}

	progress := func(done, total int) {
		rn.hub.Publish(runID, done, total, database.RunStatusRunning)
	}

	runErr := orchestrator.Run(series, minerType, req.CandleParams, req.ZigzagParams, req.Filters, sink, destination, progress)

	// orchestrator.Run streams results directly to the sink rather than
	// returning them, so the audit log records a run as succeeded or failed
	// without a precise match count.
	rn.finish(ctx, runID, 0, runErr)
	finalStatus := database.RunStatusDone
	if runErr != nil {
		finalStatus = database.RunStatusFailed
	}
	rn.hub.Publish(runID, 1, 1, finalStatus)
}

func (rn *Runner) finish(ctx context.Context, runID uuid.UUID, resultCount int, err error) {
	if cerr := rn.repo.CompleteRun(ctx, runID, resultCount, err); cerr != nil {
		log.Printf("api: failed to record completion of run %s: %v", runID, cerr)
	}
}

func loadSeries(paths []string) ([]*quotes.Series, error) {
	series := make([]*quotes.Series, 0, len(paths))
	for _, p := range paths {
		s, err := quotes.LoadCSV(p, "")
		if err != nil {
			return nil, err
		}
		series = append(series, s)
	}
	return series, nil
}

