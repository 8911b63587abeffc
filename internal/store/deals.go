package store

import (
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"flatcrm/internal/models"
	"flatcrm/internal/textdb"
)

// dealCodec encodes deals as
// id|title|clientId|userId|amount|status|createdDate|closedDate.
// An open deal has an empty closedDate field, never a missing one.
type dealCodec struct{}

func (dealCodec) Encode(d models.Deal) string {
	closed := ""
	if !d.ClosedDate.IsZero() {
		closed = d.ClosedDate.Format(models.DateLayout)
	}
	return strings.Join([]string{
		formatID(d.ID),
		d.Title,
		formatID(d.ClientID),
		formatID(d.UserID),
		strconv.FormatFloat(d.Amount, 'f', 2, 64),
		string(d.Status),
		d.CreatedDate.Format(models.DateLayout),
		closed,
	}, textdb.Delimiter)
}

func (dealCodec) Decode(line string) (models.Deal, error) {
	fields, err := splitLine(line, 8)
	if err != nil {
		return models.Deal{}, err
	}
	id, err := parseID(fields[0])
	if err != nil {
		return models.Deal{}, &textdb.DecodeError{Line: line, Err: err}
	}
	clientID, err := parseID(fields[2])
	if err != nil {
		return models.Deal{}, &textdb.DecodeError{Line: line, Err: err}
	}
	userID, err := parseID(fields[3])
	if err != nil {
		return models.Deal{}, &textdb.DecodeError{Line: line, Err: err}
	}
	amount, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return models.Deal{}, &textdb.DecodeError{Line: line, Err: err}
	}
	status, err := models.ParseDealStatus(fields[5])
	if err != nil {
		return models.Deal{}, &textdb.DecodeError{Line: line, Err: err}
	}
	created, err := time.Parse(models.DateLayout, fields[6])
	if err != nil {
		return models.Deal{}, &textdb.DecodeError{Line: line, Err: err}
	}
	var closed time.Time
	if fields[7] != "" {
		closed, err = time.Parse(models.DateLayout, fields[7])
		if err != nil {
			return models.Deal{}, &textdb.DecodeError{Line: line, Err: err}
		}
	}
	return models.Deal{
		ID:          id,
		Title:       fields[1],
		ClientID:    clientID,
		UserID:      userID,
		Amount:      amount,
		Status:      status,
		CreatedDate: created,
		ClosedDate:  closed,
	}, nil
}

// Deals stores deals. Deals are deleted physically: the line is removed
// by rewrite.
type Deals struct {
	table *textdb.Table[models.Deal]
	ids   *textdb.Allocator
}

// NewDeals creates the deal store inside dir.
func NewDeals(dir string, log *slog.Logger) (*Deals, error) {
	ids, err := textdb.NewAllocator(filepath.Join(dir, dealsIDFile))
	if err != nil {
		return nil, err
	}
	table, err := textdb.NewTable(filepath.Join(dir, dealsFile), dealCodec{}, log)
	if err != nil {
		return nil, err
	}
	return &Deals{table: table, ids: ids}, nil
}

// Create allocates an ID, assigns it and appends the deal.
func (s *Deals) Create(d models.Deal) (models.Deal, error) {
	id, err := s.ids.NextID()
	if err != nil {
		return models.Deal{}, err
	}
	d.ID = id
	if err := s.table.Append(d); err != nil {
		return models.Deal{}, err
	}
	return d, nil
}

// FindAll returns every deal in file order.
func (s *Deals) FindAll() ([]models.Deal, error) {
	return s.table.All()
}

// FindByID returns the deal with the given ID, or textdb.ErrNotFound.
func (s *Deals) FindByID(id int64) (models.Deal, error) {
	return s.table.Get(id)
}

// FindAllByClient returns the deals of one client.
func (s *Deals) FindAllByClient(clientID int64) ([]models.Deal, error) {
	deals, err := s.table.All()
	if err != nil {
		return nil, err
	}
	owned := deals[:0:0]
	for _, d := range deals {
		if d.ClientID == clientID {
			owned = append(owned, d)
		}
	}
	return owned, nil
}

// FindAllByUser returns the deals owned by one user.
func (s *Deals) FindAllByUser(userID int64) ([]models.Deal, error) {
	deals, err := s.table.All()
	if err != nil {
		return nil, err
	}
	owned := deals[:0:0]
	for _, d := range deals {
		if d.UserID == userID {
			owned = append(owned, d)
		}
	}
	return owned, nil
}

// Update rewrites the stored deal line from the record.
func (s *Deals) Update(d models.Deal) error {
	return s.table.UpdateRecord(d)
}

// Delete removes the deal's line, leaving the rest byte-identical and in
// original order.
func (s *Deals) Delete(id int64) error {
	return s.table.Delete(id)
}
