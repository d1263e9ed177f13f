// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Account metrics
	IncUserRegistered()
	IncLogin(status string) // status: "success" or "failure"
	IncAuthRejected(reason string)
	IncRateLimited()

	// Category management metrics
	IncCategoryCreated()
	IncCategoryUpdated()
	IncCategoryDeleted()

	// Task management metrics
	IncTaskCreated()
	IncTaskUpdated()
	IncTaskStatusChanged()
	IncTaskDeleted()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
