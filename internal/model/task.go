package model

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// ErrInvalidTaskStatus is returned by ParseTaskStatus for unknown values.
var ErrInvalidTaskStatus = errors.New("invalid task status")

// TaskStatus is the lifecycle state of a task.
// Any status may move to any other status.
type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "NOT_STARTED"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// statusLabels are the human labels exposed by the API.
var statusLabels = map[TaskStatus]string{
	TaskStatusNotStarted: "Sin Empezar",
	TaskStatusInProgress: "Empezada",
	TaskStatusDone:       "Finalizada",
}

// TaskStatuses lists every valid status in lifecycle order.
var TaskStatuses = []TaskStatus{TaskStatusNotStarted, TaskStatusInProgress, TaskStatusDone}

// ParseTaskStatus accepts either a status code (case-insensitive) or its
// label (exact match) and returns the status or ErrInvalidTaskStatus.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	trimmed := strings.TrimSpace(raw)
	for _, s := range TaskStatuses {
		if strings.EqualFold(trimmed, string(s)) || trimmed == statusLabels[s] {
			return s, nil
		}
	}
	return "", ErrInvalidTaskStatus
}

// IsValid checks if the status is one of the known values.
func (s TaskStatus) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the API label of the status.
func (s TaskStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Task is a unit of work owned by a user and filed under a category.
type Task struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	CreatedOn  time.Time  `json:"created_on"`
	TargetDate time.Time  `json:"target_date"`
	Status     TaskStatus `json:"status"`
	UserID     string     `json:"user_id"`
	CategoryID string     `json:"category_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Category is filled in by reads that join the owning category.
	Category *Category `json:"category,omitempty"`
}

// IsOwnedBy reports whether userID owns the task.
func (t *Task) IsOwnedBy(userID string) bool {
	return t.UserID == userID
}

// Today truncates t to a calendar date in UTC.
func Today(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TodayIn returns the calendar date of t as seen in loc, stored like every
// other date as UTC midnight.
func TodayIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date into a UTC midnight time.
func ParseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.UTC)
}

// SameDate reports whether a and b fall on the same calendar day in UTC.
func SameDate(a, b time.Time) bool {
	return Today(a).Equal(Today(b))
}
