package crm

import (
	"errors"
	"testing"
	"time"

	"flatcrm/internal/models"
	"flatcrm/internal/store"
	"flatcrm/internal/textdb"
)

func setupTaskService(t *testing.T, now time.Time) *TaskService {
	t.Helper()
	tasks, err := store.NewTasks(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewTasks failed: %v", err)
	}
	svc := NewTaskService(tasks)
	svc.now = fixedClock(now)
	return svc
}

func TestTaskService(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 30, 15, 500000000, time.UTC)

	t.Run("add stamps creation time in whole seconds", func(t *testing.T) {
		svc := setupTaskService(t, now)
		k, err := svc.Add(1, "Call back", "Discuss renewal", 2, "2024-03-05 10:00:00", models.TaskCall)
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if want := time.Date(2024, 3, 1, 9, 30, 15, 0, time.UTC); !k.CreatedAt.Equal(want) {
			t.Errorf("CreatedAt = %v, want %v", k.CreatedAt, want)
		}
	})

	t.Run("add rejects a date-only due date", func(t *testing.T) {
		svc := setupTaskService(t, now)
		if _, err := svc.Add(1, "Call back", "Discuss renewal", 2, "2024-03-05", models.TaskCall); err == nil {
			t.Error("Add with date-only due date succeeded, want error")
		}
	})

	t.Run("change goes through the mirror", func(t *testing.T) {
		svc := setupTaskService(t, now)
		k, err := svc.Add(1, "Call back", "Discuss renewal", 2, "2024-03-05 10:00:00", models.TaskCall)
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if err := svc.Change(k.ID, store.TaskAssignedTo, "7"); err != nil {
			t.Fatalf("Change failed: %v", err)
		}
		got, err := svc.Get(k.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.AssignedTo != 7 {
			t.Errorf("AssignedTo = %d, want 7", got.AssignedTo)
		}
	})

	t.Run("tasks for a client", func(t *testing.T) {
		svc := setupTaskService(t, now)
		if _, err := svc.Add(1, "A", "a", 2, "2024-03-05 10:00:00", models.TaskCall); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if _, err := svc.Add(2, "B", "b", 2, "2024-03-05 10:00:00", models.TaskSale); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if got := svc.TasksFor(1); len(got) != 1 || got[0].Title != "A" {
			t.Errorf("TasksFor(1) = %+v, want only A", got)
		}
		if got := svc.Tasks(); len(got) != 2 {
			t.Errorf("Tasks() returned %d, want 2", len(got))
		}
	})

	t.Run("delete", func(t *testing.T) {
		svc := setupTaskService(t, now)
		k, err := svc.Add(1, "Call back", "Discuss renewal", 2, "2024-03-05 10:00:00", models.TaskCall)
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if err := svc.Delete(k.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := svc.Get(k.ID); !errors.Is(err, textdb.ErrNotFound) {
			t.Errorf("Get after delete = %v, want ErrNotFound", err)
		}
	})
}
