package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jaki95/eventseq/internal/job"
)

// startPreprocess godoc
// @Summary Start a preprocessing job
// @Description Streams raw_data into clean_data in the background.
// @Tags Jobs
// @Accept json
// @Produce json
// @Param request body job.PreprocessRequest false "Overrides of the configured preprocessing"
// @Success 202 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/jobs/preprocess [post]
func (s *Server) startPreprocess(c *gin.Context) {
	var req job.PreprocessRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
			return
		}
	}

	streamer, status, ctx, err := s.newPreprocessJob(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	go s.runPreprocess(ctx, status.ID, streamer)

	c.JSON(http.StatusAccepted, MessageResponse{Message: "Preprocessing started", JobID: status.ID})
}

// getJobStatus godoc
// @Summary Get job status
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} job.Status
// @Failure 404 {object} ErrorResponse
// @Router /api/jobs/{id} [get]
func (s *Server) getJobStatus(c *gin.Context) {
	jobID := c.Param("id")

	status, err := s.jobManager.GetJob(jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

// cancelJob godoc
// @Summary Cancel a job
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Failure 400 {object} ErrorResponse "Job cannot be cancelled (invalid state)"
// @Router /api/jobs/{id}/cancel [post]
func (s *Server) cancelJob(c *gin.Context) {
	jobID := c.Param("id")

	if err := s.jobManager.CancelJob(jobID); err != nil {
		switch {
		case errors.Is(err, job.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		case errors.Is(err, job.ErrInvalidState):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Job cancelled", JobID: jobID})
}

// listJobs godoc
// @Summary List all jobs
// @Tags Jobs
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of jobs per page (max 100)" default(10)
// @Success 200 {object} job.Response
// @Router /api/jobs [get]
func (s *Server) listJobs(c *gin.Context) {
	page := 1
	pageSize := job.DefaultPageSize

	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}

	if ps := c.Query("pageSize"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 && parsed <= job.MaxPageSize {
			pageSize = parsed
		}
	}

	c.JSON(http.StatusOK, s.jobManager.ListJobs(page, pageSize))
}
