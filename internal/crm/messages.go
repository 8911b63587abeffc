package crm

import (
	"time"

	"flatcrm/internal/models"
	"flatcrm/internal/store"
)

// MessageService manages user-to-user messages.
type MessageService struct {
	messages *store.Messages
	now      func() time.Time
}

// NewMessageService wires the message store.
func NewMessageService(messages *store.Messages) *MessageService {
	return &MessageService{messages: messages, now: time.Now}
}

// Send validates and stores a message stamped with the current time.
func (s *MessageService) Send(senderID, receiverID int64, content string) (models.Message, error) {
	m := models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		SentAt:     s.now(),
	}
	if err := m.Validate(); err != nil {
		return models.Message{}, err
	}
	return s.messages.Create(m)
}

// Between returns the messages sent from one user to another.
func (s *MessageService) Between(senderID, receiverID int64) ([]models.Message, error) {
	return s.messages.FindBetween(senderID, receiverID)
}

// Inbox returns the messages sent or received by one user.
func (s *MessageService) Inbox(userID int64) ([]models.Message, error) {
	return s.messages.FindByUser(userID)
}
