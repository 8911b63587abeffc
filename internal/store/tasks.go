package store

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"flatcrm/internal/models"
	"flatcrm/internal/textdb"
)

// TaskField selects one updatable field of a task.
type TaskField int

// Updatable task fields.
const (
	TaskTitle TaskField = iota + 1
	TaskDescription
	TaskAssignedTo
	TaskDueDate
	TaskStatusField
)

// taskCodec encodes tasks as
// id|clientId|title|description|assignedTo|createdAt|dueDate|status.
// The status token is matched case-insensitively on decode.
type taskCodec struct{}

func (taskCodec) Encode(t models.Task) string {
	return strings.Join([]string{
		formatID(t.ID),
		formatID(t.ClientID),
		t.Title,
		t.Description,
		formatID(t.AssignedTo),
		t.CreatedAt.Format(models.DateTimeLayout),
		t.DueDate,
		string(t.Status),
	}, textdb.Delimiter)
}

func (taskCodec) Decode(line string) (models.Task, error) {
	fields, err := splitLine(line, 8)
	if err != nil {
		return models.Task{}, err
	}
	id, err := parseID(fields[0])
	if err != nil {
		return models.Task{}, &textdb.DecodeError{Line: line, Err: err}
	}
	clientID, err := parseID(fields[1])
	if err != nil {
		return models.Task{}, &textdb.DecodeError{Line: line, Err: err}
	}
	assignedTo, err := parseID(fields[4])
	if err != nil {
		return models.Task{}, &textdb.DecodeError{Line: line, Err: err}
	}
	createdAt, err := time.Parse(models.DateTimeLayout, fields[5])
	if err != nil {
		return models.Task{}, &textdb.DecodeError{Line: line, Err: err}
	}
	status, err := models.ParseTaskStatus(fields[7])
	if err != nil {
		return models.Task{}, &textdb.DecodeError{Line: line, Err: err}
	}
	return models.Task{
		ID:          id,
		ClientID:    clientID,
		Title:       fields[2],
		Description: fields[3],
		AssignedTo:  assignedTo,
		CreatedAt:   createdAt,
		DueDate:     fields[6],
		Status:      status,
	}, nil
}

// Tasks is the cached store: a full in-memory mirror is the source of
// truth at runtime and the file is just a snapshot, unlike the other
// stores which always trust the file. Tasks are edited field by field far
// more often than the other entities, which is why the asymmetry exists.
type Tasks struct {
	table *textdb.CachedTable[models.Task]
	ids   *textdb.Allocator
}

// NewTasks creates the task store inside dir and loads the mirror.
func NewTasks(dir string, log *slog.Logger) (*Tasks, error) {
	ids, err := textdb.NewAllocator(filepath.Join(dir, tasksIDFile))
	if err != nil {
		return nil, err
	}
	table, err := textdb.NewCachedTable(filepath.Join(dir, tasksFile), taskCodec{}, log)
	if err != nil {
		return nil, err
	}
	return &Tasks{table: table, ids: ids}, nil
}

// Create allocates an ID, assigns it, inserts the task into the mirror
// and snapshots the whole mirror to the file.
func (s *Tasks) Create(t models.Task) (models.Task, error) {
	id, err := s.ids.NextID()
	if err != nil {
		return models.Task{}, err
	}
	t.ID = id
	if err := s.table.Put(t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// FindAll returns the mirrored tasks ordered by ID, without touching the
// file.
func (s *Tasks) FindAll() []models.Task {
	return s.table.All()
}

// FindByID returns the task with the given ID, or textdb.ErrNotFound.
func (s *Tasks) FindByID(id int64) (models.Task, error) {
	return s.table.Get(id)
}

// FindAllByClient returns the tasks of one client, ordered by ID.
func (s *Tasks) FindAllByClient(clientID int64) []models.Task {
	tasks := s.table.All()
	owned := tasks[:0:0]
	for _, t := range tasks {
		if t.ClientID == clientID {
			owned = append(owned, t)
		}
	}
	return owned
}

// Change updates one field of the task and snapshots. The value is parsed
// per field; a value that does not parse leaves both the mirror and the
// file unchanged.
func (s *Tasks) Change(id int64, field TaskField, value string) error {
	return s.table.Update(id, func(t models.Task) (models.Task, error) {
		switch field {
		case TaskTitle:
			t.Title = value
		case TaskDescription:
			t.Description = value
		case TaskAssignedTo:
			assignedTo, err := parseID(value)
			if err != nil {
				return t, err
			}
			t.AssignedTo = assignedTo
		case TaskDueDate:
			if _, err := time.Parse(models.DateTimeLayout, value); err != nil {
				return t, fmt.Errorf("bad due date %q: %w", value, err)
			}
			t.DueDate = value
		case TaskStatusField:
			status, err := models.ParseTaskStatus(value)
			if err != nil {
				return t, err
			}
			t.Status = status
		default:
			return t, fmt.Errorf("unknown task field %d", field)
		}
		return t, nil
	})
}

// Delete removes the task from the mirror and snapshots.
func (s *Tasks) Delete(id int64) error {
	return s.table.Delete(id)
}

// Watch keeps the mirror synchronized with external edits to the
// snapshot file until ctx is done.
func (s *Tasks) Watch(ctx context.Context) error {
	return s.table.Watch(ctx)
}
