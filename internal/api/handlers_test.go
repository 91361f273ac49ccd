package api

import (
	"testing"

	"github.com/google/uuid"

	"candleminer/internal/database"
)

func TestToRunStatusIncludesReportPathOnlyWhenDone(t *testing.T) {
	id := uuid.New()

	running := &database.Run{ID: id, MinerType: "candle", Status: database.RunStatusRunning}
	if got := toRunStatus(running); got.ReportPath != "" {
		t.Errorf("ReportPath = %q, want empty for a running run", got.ReportPath)
	}

	done := &database.Run{ID: id, MinerType: "candle", Status: database.RunStatusDone, ResultCount: 5}
	status := toRunStatus(done)
	want := "/api/runs/" + id.String() + "/report"
	if status.ReportPath != want {
		t.Errorf("ReportPath = %q, want %q", status.ReportPath, want)
	}
	if status.ResultCount != 5 {
		t.Errorf("ResultCount = %d, want 5", status.ResultCount)
	}
}

func TestToRunStatusCarriesErrorMessage(t *testing.T) {
	msg := "pattern_length out of range"
	run := &database.Run{ID: uuid.New(), Status: database.RunStatusFailed, ErrorMessage: &msg}

	status := toRunStatus(run)
	if status.ErrorMessage == nil || *status.ErrorMessage != msg {
		t.Errorf("ErrorMessage = %v, want pointer to %q", status.ErrorMessage, msg)
	}
}
