package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"candleminer/internal/database"
)

func toRunStatus(run *database.Run) *RunStatus {
	status := &RunStatus{
		ID:           run.ID.String(),
		MinerType:    run.MinerType,
		Tickers:      run.Tickers,
		Status:       run.Status,
		ResultCount:  run.ResultCount,
		ErrorMessage: run.ErrorMessage,
	}
	if run.Status == database.RunStatusDone {
		status.ReportPath = "/api/runs/" + run.ID.String() + "/report"
	}
	return status
}

func (s *Server) handleCreateRun(c *gin.Context) {
	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "VALIDATION_ERROR",
			"message": err.Error(),
		})
		return
	}

	run, err := s.runner.Submit(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "SUBMIT_FAILED",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, toRunStatus(run))
}

func (s *Server) handleGetRun(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_RUN_ID"})
		return
	}

	run, err := s.repo.GetRun(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "QUERY_FAILED", "message": err.Error()})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "NOT_FOUND"})
		return
	}

	c.JSON(http.StatusOK, toRunStatus(run))
}

func (s *Server) handleListRuns(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	offset := 0
	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}

	var list []*database.Run
	var err error

	if status := c.Query("status"); status != "" {
		list, err = s.repo.ListRunsByStatus(c.Request.Context(), status, limit)
	} else {
		list, err = s.repo.ListRuns(c.Request.Context(), limit, offset)
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "QUERY_FAILED", "message": err.Error()})
		return
	}

	runs := make([]*RunStatus, len(list))
	for i, run := range list {
		runs[i] = toRunStatus(run)
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleGetRunReport(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_RUN_ID"})
		return
	}

	run, err := s.repo.GetRun(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "QUERY_FAILED", "message": err.Error()})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "NOT_FOUND"})
		return
	}
	if run.Status != database.RunStatusDone {
		c.JSON(http.StatusConflict, gin.H{"error": "NOT_READY", "message": "run has not finished"})
		return
	}

	htmlDir := filepath.Join(s.runner.reportRoot, runID.String())
	if info, err := os.Stat(htmlDir); err == nil && info.IsDir() {
		c.File(filepath.Join(htmlDir, "index.html"))
		return
	}

	txtFile := filepath.Join(s.runner.reportRoot, runID.String()+".txt")
	if _, err := os.Stat(txtFile); err == nil {
		c.File(txtFile)
		return
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "REPORT_NOT_FOUND"})
}
