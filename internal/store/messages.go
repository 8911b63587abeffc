package store

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"flatcrm/internal/models"
	"flatcrm/internal/textdb"
)

// messageCodec encodes messages as id|senderId|receiverId|content|sentAt.
type messageCodec struct{}

func (messageCodec) Encode(m models.Message) string {
	return strings.Join([]string{
		formatID(m.ID),
		formatID(m.SenderID),
		formatID(m.ReceiverID),
		m.Content,
		m.SentAt.Format(models.DateTimeLayout),
	}, textdb.Delimiter)
}

func (messageCodec) Decode(line string) (models.Message, error) {
	fields, err := splitLine(line, 5)
	if err != nil {
		return models.Message{}, err
	}
	id, err := parseID(fields[0])
	if err != nil {
		return models.Message{}, &textdb.DecodeError{Line: line, Err: err}
	}
	senderID, err := parseID(fields[1])
	if err != nil {
		return models.Message{}, &textdb.DecodeError{Line: line, Err: err}
	}
	receiverID, err := parseID(fields[2])
	if err != nil {
		return models.Message{}, &textdb.DecodeError{Line: line, Err: err}
	}
	sentAt, err := time.Parse(models.DateTimeLayout, fields[4])
	if err != nil {
		return models.Message{}, &textdb.DecodeError{Line: line, Err: err}
	}
	return models.Message{
		ID:         id,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    fields[3],
		SentAt:     sentAt,
	}, nil
}

// Messages stores notes between users. Messages are append-only; nothing
// ever deletes one.
type Messages struct {
	table *textdb.Table[models.Message]
	ids   *textdb.Allocator
}

// NewMessages creates the message store inside dir.
func NewMessages(dir string, log *slog.Logger) (*Messages, error) {
	ids, err := textdb.NewAllocator(filepath.Join(dir, messagesIDFile))
	if err != nil {
		return nil, err
	}
	table, err := textdb.NewTable(filepath.Join(dir, messagesFile), messageCodec{}, log)
	if err != nil {
		return nil, err
	}
	return &Messages{table: table, ids: ids}, nil
}

// Create allocates an ID, assigns it and appends the message. The
// timestamp is truncated to whole seconds by the line format.
func (s *Messages) Create(m models.Message) (models.Message, error) {
	id, err := s.ids.NextID()
	if err != nil {
		return models.Message{}, err
	}
	m.ID = id
	m.SentAt = m.SentAt.Truncate(time.Second)
	if err := s.table.Append(m); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// FindAll returns every message in file order.
func (s *Messages) FindAll() ([]models.Message, error) {
	return s.table.All()
}

// FindBetween returns the messages sent from one user to another.
func (s *Messages) FindBetween(senderID, receiverID int64) ([]models.Message, error) {
	messages, err := s.table.All()
	if err != nil {
		return nil, err
	}
	matched := messages[:0:0]
	for _, m := range messages {
		if m.SenderID == senderID && m.ReceiverID == receiverID {
			matched = append(matched, m)
		}
	}
	return matched, nil
}

// FindByUser returns the messages sent or received by one user.
func (s *Messages) FindByUser(userID int64) ([]models.Message, error) {
	messages, err := s.table.All()
	if err != nil {
		return nil, err
	}
	matched := messages[:0:0]
	for _, m := range messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			matched = append(matched, m)
		}
	}
	return matched, nil
}
