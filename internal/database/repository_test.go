// Tests for the mining_runs repository's pure logic. Methods that issue
// SQL (CreateRun, GetRun, ListRuns, ...) require a live Postgres pool and
// are exercised only through integration testing, not here.
package database

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNewRepositoryWrapsDB(t *testing.T) {
	db := &DB{}
	repo := NewRepository(db)

	if repo.GetDB() != db {
		t.Error("NewRepository should wrap the given DB and return it unchanged from GetDB")
	}
}

func TestRunStatusConstants(t *testing.T) {
	statuses := []string{RunStatusPending, RunStatusRunning, RunStatusDone, RunStatusFailed}
	seen := make(map[string]bool)
	for _, s := range statuses {
		if s == "" {
			t.Error("run status constant should not be empty")
		}
		if seen[s] {
			t.Errorf("run status %q is not unique", s)
		}
		seen[s] = true
	}
}

func TestRunCarriesErrorMessageOnFailure(t *testing.T) {
	run := &Run{ID: uuid.New(), Status: RunStatusRunning}

	runErr := errors.New("pattern_length out of range")
	status := RunStatusDone
	var errMsg *string
	if runErr != nil {
		status = RunStatusFailed
		msg := runErr.Error()
		errMsg = &msg
	}
	run.Status = status
	run.ErrorMessage = errMsg

	if run.Status != RunStatusFailed {
		t.Errorf("Status = %q, want %q", run.Status, RunStatusFailed)
	}
	if run.ErrorMessage == nil || *run.ErrorMessage != "pattern_length out of range" {
		t.Errorf("ErrorMessage = %v, want a pointer to the error text", run.ErrorMessage)
	}
}
