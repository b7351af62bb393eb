package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	ImportRunning   = "running"
	ImportDone      = "done"
	ImportError     = "error"
	ImportCancelled = "cancelled"
)

type ImportTask struct {
	ID        string        `json:"id"`
	Status    string        `json:"status"`
	Total     int           `json:"total"`
	Current   int           `json:"current"`
	Feed      string        `json:"feed,omitempty"`
	Result    *ImportResult `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// ImportTaskService tracks at most one OPML import per user. Updates for a
// task that has since been replaced are ignored.
type ImportTaskService interface {
	// Start cancels the user's running import, if any, and returns the new
	// task id with a context cancelled by Cancel.
	Start(userID int64) (string, context.Context)
	Update(userID int64, taskID string, progress ImportProgress)
	Complete(userID int64, taskID string, result ImportResult)
	Fail(userID int64, taskID string, err error)
	Get(userID int64) *ImportTask
	Cancel(userID int64) bool
}

type importTaskManager struct {
	mu      sync.RWMutex
	tasks   map[int64]*ImportTask
	cancels map[int64]context.CancelFunc
}

func NewImportTaskService() ImportTaskService {
	return &importTaskManager{
		tasks:   make(map[int64]*ImportTask),
		cancels: make(map[int64]context.CancelFunc),
	}
}

func (m *importTaskManager) Start(userID int64) (string, context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cancel := m.cancels[userID]; cancel != nil {
		cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancels[userID] = cancel

	id := uuid.New().String()
	m.tasks[userID] = &ImportTask{
		ID:        id,
		Status:    ImportRunning,
		CreatedAt: time.Now(),
	}
	return id, ctx
}

func (m *importTaskManager) Update(userID int64, taskID string, progress ImportProgress) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if task := m.running(userID, taskID); task != nil {
		task.Total = progress.Total
		task.Current = progress.Current
		task.Feed = progress.Feed
	}
}

func (m *importTaskManager) Complete(userID int64, taskID string, result ImportResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if task := m.running(userID, taskID); task != nil {
		task.Status = ImportDone
		task.Current = task.Total
		task.Result = &result
		task.Feed = ""
		m.release(userID)
	}
}

func (m *importTaskManager) Fail(userID int64, taskID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if task := m.running(userID, taskID); task != nil {
		task.Status = ImportError
		task.Error = err.Error()
		task.Feed = ""
		m.release(userID)
	}
}

// running returns the user's task when it is taskID and still running.
func (m *importTaskManager) running(userID int64, taskID string) *ImportTask {
	task := m.tasks[userID]
	if task == nil || task.ID != taskID || task.Status != ImportRunning {
		return nil
	}
	return task
}

func (m *importTaskManager) Get(userID int64) *ImportTask {
	m.mu.RLock()
	defer m.mu.RUnlock()

	current := m.tasks[userID]
	if current == nil {
		return nil
	}
	task := *current
	if current.Result != nil {
		result := *current.Result
		task.Result = &result
	}
	return &task
}

func (m *importTaskManager) Cancel(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	task := m.tasks[userID]
	if task == nil || task.Status != ImportRunning {
		return false
	}
	m.release(userID)
	task.Status = ImportCancelled
	task.Feed = ""
	return true
}

// release cancels and forgets the task context. Callers hold mu.
func (m *importTaskManager) release(userID int64) {
	if cancel := m.cancels[userID]; cancel != nil {
		cancel()
		delete(m.cancels, userID)
	}
}
