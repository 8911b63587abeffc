package store

import (
	"log/slog"
	"path/filepath"
	"strings"

	"flatcrm/internal/models"
	"flatcrm/internal/textdb"
)

// UserField selects one updatable field of a stored user line.
type UserField int

// User line layout: id|email|password|name|lastName|role|status.
const (
	UserEmail UserField = iota + 1
	UserPassword
	UserName
	UserLastName
	UserRole
	UserStatus
)

// userCodec encodes users as id|email|password|name|lastName|role|status.
type userCodec struct{}

func (userCodec) Encode(u models.User) string {
	return strings.Join([]string{
		formatID(u.ID),
		u.Email,
		u.Password,
		u.Name,
		u.LastName,
		string(u.Role),
		string(u.Status),
	}, textdb.Delimiter)
}

func (userCodec) Decode(line string) (models.User, error) {
	fields, err := splitLine(line, 7)
	if err != nil {
		return models.User{}, err
	}
	id, err := parseID(fields[0])
	if err != nil {
		return models.User{}, &textdb.DecodeError{Line: line, Err: err}
	}
	role, err := models.ParseRole(fields[5])
	if err != nil {
		return models.User{}, &textdb.DecodeError{Line: line, Err: err}
	}
	status, err := models.ParseUserStatus(fields[6])
	if err != nil {
		return models.User{}, &textdb.DecodeError{Line: line, Err: err}
	}
	return models.User{
		ID:       id,
		Email:    fields[1],
		Password: fields[2],
		Name:     fields[3],
		LastName: fields[4],
		Role:     role,
		Status:   status,
	}, nil
}

// Users stores the system's operators. Deleting a user is a persisted
// soft delete: the status field flips to FIRED and the line stays.
type Users struct {
	table *textdb.Table[models.User]
	ids   *textdb.Allocator
}

// NewUsers creates the user store inside dir.
func NewUsers(dir string, log *slog.Logger) (*Users, error) {
	ids, err := textdb.NewAllocator(filepath.Join(dir, usersIDFile))
	if err != nil {
		return nil, err
	}
	table, err := textdb.NewTable(filepath.Join(dir, usersFile), userCodec{}, log)
	if err != nil {
		return nil, err
	}
	return &Users{table: table, ids: ids}, nil
}

// Create allocates an ID, assigns it and appends the user. The ID is
// allocated before the table lock is taken; if the append fails the ID is
// burned, never reused.
func (s *Users) Create(u models.User) (models.User, error) {
	id, err := s.ids.NextID()
	if err != nil {
		return models.User{}, err
	}
	u.ID = id
	if err := s.table.Append(u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// FindAll returns every user in file order.
func (s *Users) FindAll() ([]models.User, error) {
	return s.table.All()
}

// FindByID returns the user with the given ID, or textdb.ErrNotFound.
func (s *Users) FindByID(id int64) (models.User, error) {
	return s.table.Get(id)
}

// FindByEmail returns the first user with the given email, or
// textdb.ErrNotFound.
func (s *Users) FindByEmail(email string) (models.User, error) {
	users, err := s.table.All()
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, textdb.ErrNotFound
}

// UpdateField replaces one field of the stored user line, leaving all
// other lines untouched.
func (s *Users) UpdateField(id int64, field UserField, value string) error {
	return s.table.UpdateField(id, int(field), value)
}

// Delete soft-deletes the user by flipping its status to FIRED.
func (s *Users) Delete(id int64) error {
	return s.table.UpdateField(id, int(UserStatus), string(models.UserFired))
}
