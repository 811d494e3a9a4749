package job

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jaki95/eventseq/internal/progress"
)

// Manager handles job management
type Manager struct {
	mu   sync.RWMutex
	jobs map[string]*Status
}

// NewManager creates a new job manager
func NewManager() *Manager {
	return &Manager{
		jobs: make(map[string]*Status),
	}
}

// CreateJob registers a pending job. The returned context is cancelled by
// CancelJob. Events of tracker, when not nil, are recorded on the job.
func (m *Manager) CreateJob(kind string, tracker *progress.ProgressTracker) (*Status, context.Context) {
	ctx, cancel := context.WithCancel(context.Background())

	job := &Status{
		ID:         uuid.New().String(),
		Kind:       kind,
		Status:     StatusPending,
		Message:    "Job created",
		Events:     []progress.Event{},
		StartTime:  time.Now(),
		cancelFunc: cancel,
	}

	if tracker != nil {
		id := job.ID
		listener := func(e progress.Event) {
			m.record(id, e)
		}
		tracker.AddListener(listener)
		job.detach = func() { tracker.RemoveListener(listener) }
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	return snapshot(job), ctx
}

func (m *Manager) record(id string, e progress.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok || isFinal(job.Status) {
		return
	}
	if job.Status == StatusPending {
		job.Status = StatusProcessing
	}
	job.Progress = e.Progress
	job.Message = e.Message
	job.Events = append(job.Events, e)
	if len(job.Events) > maxEvents {
		job.Events = job.Events[len(job.Events)-maxEvents:]
	}
}

// GetJob returns a snapshot of a job
func (m *Manager) GetJob(jobID string) (*Status, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	return snapshot(job), nil
}

// Complete marks a job as completed with its result.
func (m *Manager) Complete(jobID string, result any) error {
	return m.finish(jobID, StatusCompleted, "Job completed", result, nil)
}

// Fail marks a job as failed.
func (m *Manager) Fail(jobID string, err error) error {
	return m.finish(jobID, StatusFailed, "Job failed", nil, err)
}

func (m *Manager) finish(jobID, status, message string, result any, jobErr error) error {
	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	if isFinal(job.Status) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInvalidState, job.Status)
	}

	job.Status = status
	job.Message = message
	job.Result = result
	if status == StatusCompleted {
		job.Progress = 100
	}
	if jobErr != nil {
		job.Error = jobErr.Error()
	}
	endTime := time.Now()
	job.EndTime = &endTime
	job.cancelFunc()
	detach := job.detach
	m.mu.Unlock()

	// Trackers notify under their own lock, so detach outside m.mu.
	if detach != nil {
		detach()
	}
	return nil
}

// CancelJob cancels a job
func (m *Manager) CancelJob(jobID string) error {
	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	if job.Status != StatusProcessing && job.Status != StatusPending {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInvalidState, job.Status)
	}

	job.cancelFunc()
	job.Status = StatusCancelled
	job.Message = "Job cancelled by user"
	endTime := time.Now()
	job.EndTime = &endTime
	detach := job.detach
	m.mu.Unlock()

	if detach != nil {
		detach()
	}
	return nil
}

// ListJobs lists jobs newest first with pagination
func (m *Manager) ListJobs(page, pageSize int) *Response {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	m.mu.RLock()
	jobs := make([]*Status, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, snapshot(job))
	}
	m.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].StartTime.Equal(jobs[j].StartTime) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].StartTime.After(jobs[j].StartTime)
	})

	totalPages := (len(jobs) + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	if start >= len(jobs) {
		return &Response{
			Jobs:       []*Status{},
			Page:       page,
			PageSize:   pageSize,
			TotalJobs:  len(jobs),
			TotalPages: totalPages,
		}
	}
	end := min(start+pageSize, len(jobs))

	return &Response{
		Jobs:       jobs[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalJobs:  len(jobs),
		TotalPages: totalPages,
	}
}

func isFinal(status string) bool {
	return status == StatusCompleted || status == StatusFailed || status == StatusCancelled
}

func snapshot(job *Status) *Status {
	cp := *job
	cp.Events = append([]progress.Event(nil), job.Events...)
	return &cp
}
