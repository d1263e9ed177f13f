package metrics

import (
	"sync"
	"sync/atomic"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered   uint64
	LoginsSucceeded   uint64
	LoginsFailed      uint64
	AuthRejected      map[string]uint64
	RateLimited       uint64
	CategoriesCreated uint64
	CategoriesUpdated uint64
	CategoriesDeleted uint64
	TasksCreated      uint64
	TasksUpdated      uint64
	TaskStatusChanges uint64
	TasksDeleted      uint64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	usersRegistered   uint64
	loginsSucceeded   uint64
	loginsFailed      uint64
	rateLimited       uint64
	categoriesCreated uint64
	categoriesUpdated uint64
	categoriesDeleted uint64
	tasksCreated      uint64
	tasksUpdated      uint64
	taskStatusChanges uint64
	tasksDeleted      uint64

	mu           sync.Mutex
	authRejected map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{authRejected: make(map[string]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	rejected := make(map[string]uint64, len(m.authRejected))
	for reason, n := range m.authRejected {
		rejected[reason] = n
	}
	m.mu.Unlock()

	return Snapshot{
		UsersRegistered:   atomic.LoadUint64(&m.usersRegistered),
		LoginsSucceeded:   atomic.LoadUint64(&m.loginsSucceeded),
		LoginsFailed:      atomic.LoadUint64(&m.loginsFailed),
		AuthRejected:      rejected,
		RateLimited:       atomic.LoadUint64(&m.rateLimited),
		CategoriesCreated: atomic.LoadUint64(&m.categoriesCreated),
		CategoriesUpdated: atomic.LoadUint64(&m.categoriesUpdated),
		CategoriesDeleted: atomic.LoadUint64(&m.categoriesDeleted),
		TasksCreated:      atomic.LoadUint64(&m.tasksCreated),
		TasksUpdated:      atomic.LoadUint64(&m.tasksUpdated),
		TaskStatusChanges: atomic.LoadUint64(&m.taskStatusChanges),
		TasksDeleted:      atomic.LoadUint64(&m.tasksDeleted),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncLogin increments the login counter for status.
func (m *InMemoryRecorder) IncLogin(status string) {
	if status == "success" {
		atomic.AddUint64(&m.loginsSucceeded, 1)
		return
	}
	atomic.AddUint64(&m.loginsFailed, 1)
}

// IncAuthRejected counts a rejected bearer token by reason.
func (m *InMemoryRecorder) IncAuthRejected(reason string) {
	m.mu.Lock()
	m.authRejected[reason]++
	m.mu.Unlock()
}

// IncRateLimited increments the rate limited counter.
func (m *InMemoryRecorder) IncRateLimited() {
	atomic.AddUint64(&m.rateLimited, 1)
}

// IncCategoryCreated increments category created counter.
func (m *InMemoryRecorder) IncCategoryCreated() {
	atomic.AddUint64(&m.categoriesCreated, 1)
}

// IncCategoryUpdated increments category updated counter.
func (m *InMemoryRecorder) IncCategoryUpdated() {
	atomic.AddUint64(&m.categoriesUpdated, 1)
}

// IncCategoryDeleted increments category deleted counter.
func (m *InMemoryRecorder) IncCategoryDeleted() {
	atomic.AddUint64(&m.categoriesDeleted, 1)
}

// IncTaskCreated increments task created counter.
func (m *InMemoryRecorder) IncTaskCreated() {
	atomic.AddUint64(&m.tasksCreated, 1)
}

// IncTaskUpdated increments task updated counter.
func (m *InMemoryRecorder) IncTaskUpdated() {
	atomic.AddUint64(&m.tasksUpdated, 1)
}

// IncTaskStatusChanged increments the status change counter.
func (m *InMemoryRecorder) IncTaskStatusChanged() {
	atomic.AddUint64(&m.taskStatusChanges, 1)
}

// IncTaskDeleted increments task deleted counter.
func (m *InMemoryRecorder) IncTaskDeleted() {
	atomic.AddUint64(&m.tasksDeleted, 1)
}
