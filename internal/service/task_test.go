package service

import (
	"errors"
	"testing"
	"time"

	"github.com/tareasapi/tareas/internal/model"
)

func TestCreateTask(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	category := env.category(t, alice, "Trabajo")

	task, err := env.tasks.CreateTask(env.ctx, env.store, alice, TaskInput{
		Text:       "Preparar informe",
		TargetDate: date(fixedNow),
		Status:     "Empezada",
		UserID:     alice,
		CategoryID: category.ID,
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if task.Status != model.TaskStatusInProgress {
		t.Errorf("Status = %q, want IN_PROGRESS", task.Status)
	}
	if !task.CreatedOn.Equal(model.Today(fixedNow)) {
		t.Errorf("CreatedOn = %v, want today", task.CreatedOn)
	}
	if task.UserID != alice || task.Category == nil || task.Category.ID != category.ID {
		t.Errorf("unexpected ownership %+v", task)
	}

	stored, err := env.store.GetTaskByID(env.ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTaskByID: %v", err)
	}
	if stored.Text != "Preparar informe" {
		t.Errorf("Text = %q", stored.Text)
	}
}

func TestCreateTask_DefaultsToNotStarted(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	category := env.category(t, alice, "Trabajo")

	task := env.task(t, alice, category.ID)
	if task.Status != model.TaskStatusNotStarted {
		t.Errorf("Status = %q, want NOT_STARTED", task.Status)
	}
}

func TestCreateTask_PastDateRejectedBeforeWrite(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	category := env.category(t, alice, "Trabajo")

	_, err := env.tasks.CreateTask(env.ctx, env.store, alice, TaskInput{
		Text:       "Ayer",
		TargetDate: date(fixedNow.AddDate(0, 0, -1)),
		CategoryID: category.ID,
	})
	if !errors.Is(err, ErrPastDate) {
		t.Fatalf("expected ErrPastDate, got %v", err)
	}

	tasks, err := env.store.ListTasks(env.ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("no task should be stored, found %d", len(tasks))
	}
	if env.metrics.Snapshot().TasksCreated != 0 {
		t.Error("TasksCreated should stay at 0")
	}
}

func TestCreateTask_TodayFollowsLocation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	category := env.category(t, alice, "Trabajo")

	// 02:00 UTC on the 16th is still the evening of the 15th in Bogota.
	env.tasks.now = func() time.Time { return time.Date(2026, 3, 16, 2, 0, 0, 0, time.UTC) }
	localEvening := TaskInput{Text: "Hoy", TargetDate: "2026-03-15", CategoryID: category.ID}

	if _, err := env.tasks.CreateTask(env.ctx, env.store, alice, localEvening); !errors.Is(err, ErrPastDate) {
		t.Fatalf("with UTC the 15th is past, got %v", err)
	}

	env.tasks.WithLocation(time.FixedZone("COT", -5*3600))
	task, err := env.tasks.CreateTask(env.ctx, env.store, alice, localEvening)
	if err != nil {
		t.Fatalf("CreateTask in local zone failed: %v", err)
	}
	if got := task.CreatedOn.Format(model.DateLayout); got != "2026-03-15" {
		t.Errorf("CreatedOn = %s, want the local date 2026-03-15", got)
	}
}

func TestCreateTask_CheckOrder(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	aliceCat := env.category(t, alice, "Trabajo")
	bobCat := env.category(t, bob, "Gimnasio")

	future := date(fixedNow.AddDate(0, 0, 1))
	past := date(fixedNow.AddDate(0, 0, -1))

	tests := []struct {
		name    string
		input   TaskInput
		wantErr error
	}{
		{"missing_text", TaskInput{TargetDate: future, CategoryID: aliceCat.ID}, ErrMissingField},
		{"missing_date", TaskInput{Text: "x", CategoryID: aliceCat.ID}, ErrMissingField},
		{"missing_category", TaskInput{Text: "x", TargetDate: future}, ErrMissingField},
		{"bad_date", TaskInput{Text: "x", TargetDate: "15/03/2026", CategoryID: aliceCat.ID}, ErrInvalidDate},
		{"past_date_before_owner", TaskInput{Text: "x", TargetDate: past, UserID: bob, CategoryID: "missing"}, ErrPastDate},
		{"other_owner_before_category", TaskInput{Text: "x", TargetDate: future, UserID: bob, CategoryID: "missing"}, ErrForbiddenTaskOwner},
		{"missing_category_row", TaskInput{Text: "x", TargetDate: future, CategoryID: "missing"}, ErrCategoryNotFound},
		{"foreign_category", TaskInput{Text: "x", TargetDate: future, CategoryID: bobCat.ID}, ErrForbiddenCategory},
		{"invalid_status", TaskInput{Text: "x", TargetDate: future, CategoryID: aliceCat.ID, Status: "Invalid"}, ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.tasks.CreateTask(env.ctx, env.store, alice, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGetTask_OtherUserForbiddenNotNotFound(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	task := env.task(t, alice, env.category(t, alice, "Trabajo").ID)

	_, err := env.tasks.GetTask(env.ctx, env.store, bob, task.ID)
	if !errors.Is(err, ErrForbiddenTaskRead) {
		t.Fatalf("expected ErrForbiddenTaskRead, got %v", err)
	}

	_, err = env.tasks.GetTask(env.ctx, env.store, bob, "missing")
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}

	got, err := env.tasks.GetTask(env.ctx, env.store, alice, task.ID)
	if err != nil {
		t.Fatalf("owner GetTask failed: %v", err)
	}
	if got.Category == nil {
		t.Error("category should be attached")
	}
}

func TestUpdateTask(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	work := env.category(t, alice, "Trabajo")
	home := env.category(t, alice, "Casa")
	task := env.task(t, alice, work.ID)

	input := TaskInput{
		Text:       "Limpiar",
		TargetDate: date(fixedNow.AddDate(0, 0, 10)),
		Status:     "DONE",
		CategoryID: home.ID,
	}

	if _, err := env.tasks.UpdateTask(env.ctx, env.store, alice, "missing", input); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
	if _, err := env.tasks.UpdateTask(env.ctx, env.store, bob, task.ID, input); !errors.Is(err, ErrForbiddenTaskUpdate) {
		t.Errorf("expected ErrForbiddenTaskUpdate, got %v", err)
	}

	updated, err := env.tasks.UpdateTask(env.ctx, env.store, alice, task.ID, input)
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if updated.Text != "Limpiar" || updated.Status != model.TaskStatusDone || updated.CategoryID != home.ID {
		t.Errorf("unexpected task %+v", updated)
	}

	stored, _ := env.store.GetTaskByID(env.ctx, task.ID)
	if stored.Category == nil || stored.Category.Name != "Casa" {
		t.Errorf("stored category = %+v", stored.Category)
	}
	if !stored.CreatedOn.Equal(task.CreatedOn) {
		t.Errorf("CreatedOn changed: %v -> %v", task.CreatedOn, stored.CreatedOn)
	}
}

func TestUpdateTask_Validation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	work := env.category(t, alice, "Trabajo")
	bobCat := env.category(t, bob, "Gimnasio")
	task := env.task(t, alice, work.ID)

	future := date(fixedNow.AddDate(0, 0, 5))

	tests := []struct {
		name    string
		input   TaskInput
		wantErr error
	}{
		{"missing_status", TaskInput{Text: "x", TargetDate: future, CategoryID: work.ID}, ErrMissingField},
		{"invalid_status", TaskInput{Text: "x", TargetDate: future, CategoryID: work.ID, Status: "Pausada"}, ErrInvalidStatus},
		{"past_date", TaskInput{Text: "x", TargetDate: date(fixedNow.AddDate(0, 0, -2)), CategoryID: work.ID, Status: "DONE"}, ErrPastDate},
		{"missing_category_row", TaskInput{Text: "x", TargetDate: future, CategoryID: "missing", Status: "DONE"}, ErrCategoryNotFound},
		{"foreign_category", TaskInput{Text: "x", TargetDate: future, CategoryID: bobCat.ID, Status: "DONE"}, ErrForbiddenCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.tasks.UpdateTask(env.ctx, env.store, alice, task.ID, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	stored, _ := env.store.GetTaskByID(env.ctx, task.ID)
	if stored.Text != task.Text || stored.Status != task.Status {
		t.Errorf("failed updates must not change the task: %+v", stored)
	}
}

func TestUpdateTask_UnchangedPastTargetDateAllowed(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	category := env.category(t, alice, "Trabajo")
	task := env.task(t, alice, category.ID)

	// Move the clock past the target date.
	later := fixedNow.AddDate(0, 0, 30)
	env.tasks.now = func() time.Time { return later }

	_, err := env.tasks.UpdateTask(env.ctx, env.store, alice, task.ID, TaskInput{
		Text:       "Sigue pendiente",
		TargetDate: date(task.TargetDate),
		Status:     "Empezada",
		CategoryID: category.ID,
	})
	if err != nil {
		t.Fatalf("unchanged target date should be accepted: %v", err)
	}
}

func TestPatchTaskStatus(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	task := env.task(t, alice, env.category(t, alice, "Trabajo").ID)

	_, err := env.tasks.PatchTaskStatus(env.ctx, env.store, alice, task.ID, "Invalid")
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	stored, _ := env.store.GetTaskByID(env.ctx, task.ID)
	if stored.Status != model.TaskStatusNotStarted {
		t.Fatalf("status changed to %q after invalid patch", stored.Status)
	}

	if _, err := env.tasks.PatchTaskStatus(env.ctx, env.store, bob, task.ID, "Finalizada"); !errors.Is(err, ErrForbiddenTaskUpdate) {
		t.Errorf("expected ErrForbiddenTaskUpdate, got %v", err)
	}
	if _, err := env.tasks.PatchTaskStatus(env.ctx, env.store, alice, "missing", "Finalizada"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}

	// Any status may move to any other.
	for _, raw := range []string{"Finalizada", "Sin Empezar", "in_progress", "DONE"} {
		patched, err := env.tasks.PatchTaskStatus(env.ctx, env.store, alice, task.ID, raw)
		if err != nil {
			t.Fatalf("PatchTaskStatus(%q) failed: %v", raw, err)
		}
		want, _ := model.ParseTaskStatus(raw)
		if patched.Status != want {
			t.Errorf("Status = %q, want %q", patched.Status, want)
		}
	}

	stored, _ = env.store.GetTaskByID(env.ctx, task.ID)
	if stored.Status != model.TaskStatusDone || stored.Text != task.Text {
		t.Errorf("unexpected stored task %+v", stored)
	}
}

func TestDeleteTask_SecondDeleteNotFound(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	task := env.task(t, alice, env.category(t, alice, "Trabajo").ID)

	if err := env.tasks.DeleteTask(env.ctx, env.store, bob, task.ID); !errors.Is(err, ErrForbiddenTaskDelete) {
		t.Fatalf("expected ErrForbiddenTaskDelete, got %v", err)
	}
	if err := env.tasks.DeleteTask(env.ctx, env.store, alice, task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if err := env.tasks.DeleteTask(env.ctx, env.store, alice, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("second delete: expected ErrTaskNotFound, got %v", err)
	}
	if env.metrics.Snapshot().TasksDeleted != 1 {
		t.Errorf("TasksDeleted = %d, want 1", env.metrics.Snapshot().TasksDeleted)
	}
}

func TestListTasksForUser(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	aliceCat := env.category(t, alice, "Trabajo")
	bobCat := env.category(t, bob, "Gimnasio")
	env.task(t, alice, aliceCat.ID)
	env.task(t, alice, aliceCat.ID)
	env.task(t, bob, bobCat.ID)

	tasks, err := env.tasks.ListTasksForUser(env.ctx, env.store, alice, alice)
	if err != nil {
		t.Fatalf("ListTasksForUser failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("len = %d, want 2", len(tasks))
	}
	for _, task := range tasks {
		if task.UserID != alice {
			t.Errorf("foreign task %+v", task)
		}
	}

	if _, err := env.tasks.ListTasksForUser(env.ctx, env.store, alice, bob); !errors.Is(err, ErrForbiddenUserTasks) {
		t.Errorf("other user: expected ErrForbiddenUserTasks, got %v", err)
	}
	// Identity is checked before existence.
	if _, err := env.tasks.ListTasksForUser(env.ctx, env.store, alice, "ghost"); !errors.Is(err, ErrForbiddenUserTasks) {
		t.Errorf("unknown user: expected ErrForbiddenUserTasks, got %v", err)
	}
	if _, err := env.tasks.ListTasksForUser(env.ctx, env.store, "ghost", "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("deleted caller: expected ErrUserNotFound, got %v", err)
	}
}
