package handler

import (
	"bufio"
	"fmt"
	"net/http"
	"sort"

	"github.com/tareasapi/tareas/internal/metrics"
)

// sample is one line of a metric family.
type sample struct {
	labels string
	value  uint64
}

// family is a counter with its HELP text and samples.
type family struct {
	name    string
	help    string
	samples []sample
}

// MetricsHandler serves the in-memory counters in the Prometheus text format.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics writes every counter family.
//
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	bw := bufio.NewWriter(w)
	for _, f := range families(h.snapshotter.Snapshot()) {
		fmt.Fprintf(bw, "# HELP %s %s\n# TYPE %s counter\n", f.name, f.help, f.name)
		for _, s := range f.samples {
			fmt.Fprintf(bw, "%s%s %d\n", f.name, s.labels, s.value)
		}
	}
	_ = bw.Flush()
}

func single(v uint64) []sample { return []sample{{value: v}} }

func families(snap metrics.Snapshot) []family {
	reasons := make([]string, 0, len(snap.AuthRejected))
	for reason := range snap.AuthRejected {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	rejected := make([]sample, 0, len(reasons))
	for _, reason := range reasons {
		rejected = append(rejected, sample{
			labels: fmt.Sprintf("{reason=%q}", reason),
			value:  snap.AuthRejected[reason],
		})
	}

	return []family{
		{"tareas_users_registered_total", "Users registered.", single(snap.UsersRegistered)},
		{"tareas_logins_total", "Login attempts by outcome.", []sample{
			{`{status="success"}`, snap.LoginsSucceeded},
			{`{status="failure"}`, snap.LoginsFailed},
		}},
		{"tareas_auth_rejected_total", "Requests rejected by bearer authentication.", rejected},
		{"tareas_rate_limited_total", "Requests rejected by the rate limiter.", single(snap.RateLimited)},
		{"tareas_categories_created_total", "Categories created.", single(snap.CategoriesCreated)},
		{"tareas_categories_updated_total", "Categories updated.", single(snap.CategoriesUpdated)},
		{"tareas_categories_deleted_total", "Categories deleted.", single(snap.CategoriesDeleted)},
		{"tareas_tasks_created_total", "Tasks created.", single(snap.TasksCreated)},
		{"tareas_tasks_updated_total", "Tasks replaced with PUT.", single(snap.TasksUpdated)},
		{"tareas_task_status_changes_total", "Task status changes.", single(snap.TaskStatusChanges)},
		{"tareas_tasks_deleted_total", "Tasks deleted.", single(snap.TasksDeleted)},
	}
}
