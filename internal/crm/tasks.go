package crm

import (
	"time"

	"flatcrm/internal/models"
	"flatcrm/internal/store"
)

// TaskService manages tasks.
type TaskService struct {
	tasks *store.Tasks
	now   func() time.Time
}

// NewTaskService wires the task store.
func NewTaskService(tasks *store.Tasks) *TaskService {
	return &TaskService{tasks: tasks, now: time.Now}
}

// Add validates and creates a task stamped with the current time.
func (s *TaskService) Add(clientID int64, title, description string, assignedTo int64, dueDate string, status models.TaskStatus) (models.Task, error) {
	t := models.Task{
		ClientID:    clientID,
		Title:       title,
		Description: description,
		AssignedTo:  assignedTo,
		CreatedAt:   s.now().Truncate(time.Second),
		DueDate:     dueDate,
		Status:      status,
	}
	if err := t.Validate(); err != nil {
		return models.Task{}, err
	}
	return s.tasks.Create(t)
}

// Tasks returns every task, served from the in-memory mirror.
func (s *TaskService) Tasks() []models.Task {
	return s.tasks.FindAll()
}

// Get returns one task by ID.
func (s *TaskService) Get(id int64) (models.Task, error) {
	return s.tasks.FindByID(id)
}

// TasksFor returns the tasks of one client.
func (s *TaskService) TasksFor(clientID int64) []models.Task {
	return s.tasks.FindAllByClient(clientID)
}

// Change updates one field of the task. The value is parsed per field
// before anything is persisted.
func (s *TaskService) Change(id int64, field store.TaskField, value string) error {
	return s.tasks.Change(id, field, value)
}

// Delete removes the task physically from the mirror and its snapshot.
func (s *TaskService) Delete(id int64) error {
	return s.tasks.Delete(id)
}
