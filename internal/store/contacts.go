package store

import (
	"log/slog"
	"path/filepath"
	"strings"

	"flatcrm/internal/models"
	"flatcrm/internal/textdb"
)

// contactCodec encodes contacts as id|clientId|name|email|phone|position.
type contactCodec struct{}

func (contactCodec) Encode(c models.Contact) string {
	return strings.Join([]string{
		formatID(c.ID),
		formatID(c.ClientID),
		c.Name,
		c.Email,
		c.Phone,
		c.Position,
	}, textdb.Delimiter)
}

func (contactCodec) Decode(line string) (models.Contact, error) {
	fields, err := splitLine(line, 6)
	if err != nil {
		return models.Contact{}, err
	}
	id, err := parseID(fields[0])
	if err != nil {
		return models.Contact{}, &textdb.DecodeError{Line: line, Err: err}
	}
	clientID, err := parseID(fields[1])
	if err != nil {
		return models.Contact{}, &textdb.DecodeError{Line: line, Err: err}
	}
	return models.Contact{
		ID:       id,
		ClientID: clientID,
		Name:     fields[2],
		Email:    fields[3],
		Phone:    fields[4],
		Position: fields[5],
	}, nil
}

// Contacts stores the people reachable at each client. Contacts are
// deleted physically: the line is removed by rewrite.
type Contacts struct {
	table *textdb.Table[models.Contact]
	ids   *textdb.Allocator
}

// NewContacts creates the contact store inside dir.
func NewContacts(dir string, log *slog.Logger) (*Contacts, error) {
	ids, err := textdb.NewAllocator(filepath.Join(dir, contactsIDFile))
	if err != nil {
		return nil, err
	}
	table, err := textdb.NewTable(filepath.Join(dir, contactsFile), contactCodec{}, log)
	if err != nil {
		return nil, err
	}
	return &Contacts{table: table, ids: ids}, nil
}

// Create allocates an ID, assigns it and appends the contact.
func (s *Contacts) Create(c models.Contact) (models.Contact, error) {
	id, err := s.ids.NextID()
	if err != nil {
		return models.Contact{}, err
	}
	c.ID = id
	if err := s.table.Append(c); err != nil {
		return models.Contact{}, err
	}
	return c, nil
}

// FindAll returns every contact in file order.
func (s *Contacts) FindAll() ([]models.Contact, error) {
	return s.table.All()
}

// FindAllByClient returns the contacts of one client.
func (s *Contacts) FindAllByClient(clientID int64) ([]models.Contact, error) {
	contacts, err := s.table.All()
	if err != nil {
		return nil, err
	}
	owned := contacts[:0:0]
	for _, c := range contacts {
		if c.ClientID == clientID {
			owned = append(owned, c)
		}
	}
	return owned, nil
}

// Delete removes the contact's line, leaving the rest byte-identical.
func (s *Contacts) Delete(id int64) error {
	return s.table.Delete(id)
}

// DeleteForClient removes up to count contacts belonging to the client,
// in file order, and returns how many were removed.
func (s *Contacts) DeleteForClient(clientID int64, count int) (int, error) {
	if count < 0 {
		count = 0
	}
	return s.table.DeleteWhere(count, func(c models.Contact) bool {
		return c.ClientID == clientID
	})
}
