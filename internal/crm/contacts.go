package crm

import (
	"flatcrm/internal/models"
	"flatcrm/internal/store"
)

// ContactService manages client contacts.
type ContactService struct {
	contacts *store.Contacts
}

// NewContactService wires the contact store.
func NewContactService(contacts *store.Contacts) *ContactService {
	return &ContactService{contacts: contacts}
}

// Add validates and creates a contact.
func (s *ContactService) Add(clientID int64, name, email, phone, position string) (models.Contact, error) {
	c := models.Contact{
		ClientID: clientID,
		Name:     name,
		Email:    email,
		Phone:    phone,
		Position: position,
	}
	if err := c.Validate(); err != nil {
		return models.Contact{}, err
	}
	return s.contacts.Create(c)
}

// ContactsFor returns the contacts of one client.
func (s *ContactService) ContactsFor(clientID int64) ([]models.Contact, error) {
	return s.contacts.FindAllByClient(clientID)
}

// Delete removes the contact physically.
func (s *ContactService) Delete(id int64) error {
	return s.contacts.Delete(id)
}

// Prune removes up to count contacts of the client and returns how many
// went away.
func (s *ContactService) Prune(clientID int64, count int) (int, error) {
	if count < 0 {
		return 0, &models.ValidationError{Field: "count", Reason: "must not be negative"}
	}
	return s.contacts.DeleteForClient(clientID, count)
}
