package progress

import (
	"encoding/json"
	"reflect"
	"sync"
	"time"
)

// Stage represents the current stage of a corpus run
type Stage string

const (
	StageInitializing Stage = "initializing"
	StageLoading      Stage = "loading"
	StageStreaming    Stage = "streaming"
	StageSplitting    Stage = "splitting"
	StageComplete     Stage = "complete"
	StageError        Stage = "error"
)

// Event represents a progress event
type Event struct {
	Stage       Stage        `json:"stage"`
	Progress    float64      `json:"progress"`
	Message     string       `json:"message"`
	Data        []byte       `json:"data,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
	FileDetails *FileDetails `json:"fileDetails,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// FileDetails describes the file a streamer is working on
type FileDetails struct {
	CurrentFile    string `json:"currentFile"`
	TotalFiles     int    `json:"totalFiles"`
	ProcessedFiles int    `json:"processedFiles"`
	SkippedFiles   int    `json:"skippedFiles"`
	FailedFiles    int    `json:"failedFiles"`
}

// ProgressTracker manages progress tracking
type ProgressTracker struct {
	mu          sync.RWMutex
	stage       Stage
	progress    float64
	message     string
	fileDetails *FileDetails
	error       error
	listeners   []func(Event)
}

// NewProgressTracker creates a new ProgressTracker instance
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		stage:     StageInitializing,
		listeners: make([]func(Event), 0),
	}
}

// AddListener adds a new progress event listener
func (pt *ProgressTracker) AddListener(listener func(Event)) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.listeners = append(pt.listeners, listener)
}

// RemoveListener removes a progress event listener
func (pt *ProgressTracker) RemoveListener(listener func(Event)) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	listenerPtr := reflect.ValueOf(listener).Pointer()
	for i := range pt.listeners {
		if reflect.ValueOf(pt.listeners[i]).Pointer() == listenerPtr {
			pt.listeners = append(pt.listeners[:i], pt.listeners[i+1:]...)
			break
		}
	}
}

// UpdateProgress updates the progress and notifies all listeners
func (pt *ProgressTracker) UpdateProgress(stage Stage, progress float64, message string, data []byte) {
	pt.mu.Lock()
	pt.stage = stage
	pt.progress = progress
	pt.message = message
	pt.mu.Unlock()

	pt.notifyListeners(Event{
		Stage:     stage,
		Progress:  progress,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// UpdateFileProgress records per-file counters and derives the overall
// progress from them.
func (pt *ProgressTracker) UpdateFileProgress(details FileDetails) {
	pt.mu.Lock()
	pt.fileDetails = &details
	if details.TotalFiles > 0 {
		done := details.ProcessedFiles + details.SkippedFiles + details.FailedFiles
		pt.progress = 100 * float64(done) / float64(details.TotalFiles)
	}
	event := Event{
		Stage:       pt.stage,
		Progress:    pt.progress,
		Message:     pt.message,
		Timestamp:   time.Now(),
		FileDetails: pt.fileDetails,
	}
	pt.mu.Unlock()

	pt.notifyListeners(event)
}

// SetError sets an error state and notifies all listeners
func (pt *ProgressTracker) SetError(err error) {
	pt.mu.Lock()
	pt.stage = StageError
	pt.error = err
	pt.mu.Unlock()

	pt.notifyListeners(Event{
		Stage:     StageError,
		Progress:  pt.progress,
		Message:   err.Error(),
		Timestamp: time.Now(),
		Error:     err.Error(),
	})
}

// notifyListeners sends an event to all registered listeners
func (pt *ProgressTracker) notifyListeners(event Event) {
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	for _, listener := range pt.listeners {
		listener(event)
	}
}

// GetCurrentState returns the current progress state
func (pt *ProgressTracker) GetCurrentState() Event {
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	event := Event{
		Stage:       pt.stage,
		Progress:    pt.progress,
		Message:     pt.message,
		Timestamp:   time.Now(),
		FileDetails: pt.fileDetails,
	}
	if pt.error != nil {
		event.Error = pt.error.Error()
	}
	return event
}

// MarshalJSON implements json.Marshaler for Event
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	return json.Marshal(&struct {
		Timestamp string `json:"timestamp"`
		*Alias
	}{
		Timestamp: e.Timestamp.Format(time.RFC3339),
		Alias:     (*Alias)(&e),
	})
}

// UnmarshalJSON implements json.Unmarshaler for Event
func (e *Event) UnmarshalJSON(data []byte) error {
	type Alias Event
	aux := &struct {
		Timestamp string `json:"timestamp"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339, aux.Timestamp)
	if err != nil {
		return err
	}
	e.Timestamp = t
	return nil
}
