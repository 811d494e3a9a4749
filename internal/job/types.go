package job

import (
	"context"
	"time"

	"github.com/jaki95/eventseq/internal/progress"
)

// Status represents the current state of a background job
type Status struct {
	ID         string           `json:"id"`
	Kind       string           `json:"kind"`
	Status     string           `json:"status"`
	Progress   float64          `json:"progress"`
	Message    string           `json:"message"`
	Error      string           `json:"error,omitempty"`
	Result     any              `json:"result,omitempty"`
	Events     []progress.Event `json:"events"`
	StartTime  time.Time        `json:"startTime"`
	EndTime    *time.Time       `json:"endTime,omitempty"`
	cancelFunc context.CancelFunc
	// detach stops recording tracker events once the job is final.
	detach func()
}

// PreprocessRequest is the body of a preprocess job request
type PreprocessRequest struct {
	// Kind is "midi" (default) or "audio".
	Kind    string `json:"kind"`
	Pack    string `json:"pack"`
	Workers int    `json:"workers"`
	Shuffle bool   `json:"shuffle"`
}

// Response is one page of jobs
type Response struct {
	Jobs       []*Status `json:"jobs"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalJobs  int       `json:"totalJobs"`
	TotalPages int       `json:"totalPages"`
}

// Constants for job status
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

// Constants for pagination
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Constants for worker limits
const (
	DefaultWorkers    = 4
	MaxAllowedWorkers = 32
)

// maxEvents bounds the progress history kept per job.
const maxEvents = 100

// ValidateWorkers falls back to the default for non-positive values and caps
// the rest.
func ValidateWorkers(n int) int {
	if n <= 0 {
		return DefaultWorkers
	}
	return min(n, MaxAllowedWorkers)
}
