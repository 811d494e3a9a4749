package job

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaki95/eventseq/internal/progress"
)

func TestCreateJobRecordsProgress(t *testing.T) {
	m := NewManager()
	tracker := progress.NewProgressTracker()
	job, ctx := m.CreateJob("preprocess", tracker)

	_, err := uuid.Parse(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, job.Status)

	tracker.UpdateProgress(progress.StageStreaming, 40, "Streaming", nil)

	got, err := m.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, got.Status)
	assert.Equal(t, 40.0, got.Progress)
	require.Len(t, got.Events, 1)
	assert.Equal(t, progress.StageStreaming, got.Events[0].Stage)

	require.NoError(t, m.Complete(job.ID, map[string]int{"processed": 3}))
	assert.Error(t, ctx.Err())

	got, err = m.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, 100.0, got.Progress)
	assert.NotNil(t, got.EndTime)

	tracker.UpdateProgress(progress.StageStreaming, 10, "late", nil)
	got, _ = m.GetJob(job.ID)
	assert.Len(t, got.Events, 1)
}

func TestCancelJob(t *testing.T) {
	m := NewManager()
	job, ctx := m.CreateJob("preprocess", nil)

	require.NoError(t, m.CancelJob(job.ID))
	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	err := m.CancelJob(job.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	assert.ErrorIs(t, m.CancelJob("missing"), ErrNotFound)
	assert.ErrorIs(t, m.Fail(job.ID, errors.New("late")), ErrInvalidState)
}

func TestFinishedJobDetachesFromTracker(t *testing.T) {
	m := NewManager()
	tracker := progress.NewProgressTracker()
	job, _ := m.CreateJob("preprocess", tracker)

	var seen []progress.Event
	tracker.AddListener(func(e progress.Event) { seen = append(seen, e) })

	require.NoError(t, m.CancelJob(job.ID))
	tracker.UpdateProgress(progress.StageStreaming, 50, "after cancel", nil)

	got, err := m.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Empty(t, got.Events)
	require.Len(t, seen, 1)
	assert.Equal(t, "after cancel", seen[0].Message)
}

func TestFail(t *testing.T) {
	m := NewManager()
	job, _ := m.CreateJob("download", nil)

	require.NoError(t, m.Fail(job.ID, errors.New("boom")))
	got, err := m.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "boom", got.Error)
}

func TestListJobs(t *testing.T) {
	m := NewManager()
	for range 5 {
		m.CreateJob("preprocess", nil)
	}

	tests := []struct {
		name     string
		page     int
		pageSize int
		wantJobs int
		wantSize int
		wantPage int
	}{
		{name: "first page", page: 1, pageSize: 2, wantJobs: 2, wantSize: 2, wantPage: 1},
		{name: "last partial page", page: 3, pageSize: 2, wantJobs: 1, wantSize: 2, wantPage: 3},
		{name: "past the end", page: 4, pageSize: 2, wantJobs: 0, wantSize: 2, wantPage: 4},
		{name: "invalid values use defaults", page: 0, pageSize: 1000, wantJobs: 5, wantSize: DefaultPageSize, wantPage: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := m.ListJobs(tt.page, tt.pageSize)
			assert.Len(t, resp.Jobs, tt.wantJobs)
			assert.Equal(t, tt.wantSize, resp.PageSize)
			assert.Equal(t, tt.wantPage, resp.Page)
			assert.Equal(t, 5, resp.TotalJobs)
		})
	}
}
