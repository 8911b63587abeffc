package store

import (
	"log/slog"
	"path/filepath"
	"strings"

	"flatcrm/internal/models"
	"flatcrm/internal/textdb"
)

// ClientField selects one updatable field of a stored client line.
type ClientField int

// Client line layout: id|userId|name|email|phone|address|status.
const (
	ClientName ClientField = iota + 2
	ClientEmail
	ClientPhone
	ClientAddress
)

// clientCodec encodes clients as id|userId|name|email|phone|address|status.
// Anything past the seventh field is ignored on decode.
type clientCodec struct{}

func (clientCodec) Encode(c models.Client) string {
	return strings.Join([]string{
		formatID(c.ID),
		formatID(c.UserID),
		c.Name,
		c.Email,
		c.Phone,
		c.Address,
		string(c.Status),
	}, textdb.Delimiter)
}

func (clientCodec) Decode(line string) (models.Client, error) {
	fields, err := splitLine(line, 7)
	if err != nil {
		return models.Client{}, err
	}
	id, err := parseID(fields[0])
	if err != nil {
		return models.Client{}, &textdb.DecodeError{Line: line, Err: err}
	}
	userID, err := parseID(fields[1])
	if err != nil {
		return models.Client{}, &textdb.DecodeError{Line: line, Err: err}
	}
	status, err := models.ParseClientStatus(fields[6])
	if err != nil {
		return models.Client{}, &textdb.DecodeError{Line: line, Err: err}
	}
	return models.Client{
		ID:      id,
		UserID:  userID,
		Name:    fields[2],
		Email:   fields[3],
		Phone:   fields[4],
		Address: fields[5],
		Status:  status,
	}, nil
}

// Clients stores customers. Deleting a client is a persisted soft delete:
// the status field flips to DELETE and the line stays.
type Clients struct {
	table *textdb.Table[models.Client]
	ids   *textdb.Allocator
}

// NewClients creates the client store inside dir.
func NewClients(dir string, log *slog.Logger) (*Clients, error) {
	ids, err := textdb.NewAllocator(filepath.Join(dir, clientsIDFile))
	if err != nil {
		return nil, err
	}
	table, err := textdb.NewTable(filepath.Join(dir, clientsFile), clientCodec{}, log)
	if err != nil {
		return nil, err
	}
	return &Clients{table: table, ids: ids}, nil
}

// Create allocates an ID, assigns it and appends the client.
func (s *Clients) Create(c models.Client) (models.Client, error) {
	id, err := s.ids.NextID()
	if err != nil {
		return models.Client{}, err
	}
	c.ID = id
	if err := s.table.Append(c); err != nil {
		return models.Client{}, err
	}
	return c, nil
}

// FindAll returns every client in file order.
func (s *Clients) FindAll() ([]models.Client, error) {
	return s.table.All()
}

// FindByID returns the client with the given ID, or textdb.ErrNotFound.
func (s *Clients) FindByID(id int64) (models.Client, error) {
	return s.table.Get(id)
}

// FindAllByUser returns the clients owned by one user.
func (s *Clients) FindAllByUser(userID int64) ([]models.Client, error) {
	clients, err := s.table.All()
	if err != nil {
		return nil, err
	}
	owned := clients[:0:0]
	for _, c := range clients {
		if c.UserID == userID {
			owned = append(owned, c)
		}
	}
	return owned, nil
}

// Search returns the clients whose name, email or phone exactly matches
// the term.
func (s *Clients) Search(term string) ([]models.Client, error) {
	clients, err := s.table.All()
	if err != nil {
		return nil, err
	}
	matched := clients[:0:0]
	for _, c := range clients {
		if c.Name == term || c.Email == term || c.Phone == term {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

// UpdateField replaces one field of the stored client line, leaving all
// other lines untouched.
func (s *Clients) UpdateField(id int64, field ClientField, value string) error {
	return s.table.UpdateField(id, int(field), value)
}

// UpdateStatus rewrites the stored client line with the new status and
// every other field unchanged.
func (s *Clients) UpdateStatus(id int64, status models.ClientStatus) error {
	c, err := s.table.Get(id)
	if err != nil {
		return err
	}
	c.Status = status
	return s.table.UpdateRecord(c)
}

// Delete soft-deletes the client by flipping its status to DELETE.
func (s *Clients) Delete(id int64) error {
	return s.UpdateStatus(id, models.ClientDeleted)
}
