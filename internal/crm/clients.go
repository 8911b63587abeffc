package crm

import (
	"fmt"
	"path/filepath"

	"flatcrm/internal/docgen"
	"flatcrm/internal/models"
	"flatcrm/internal/store"
	"flatcrm/internal/worker"
)

// ClientService manages clients and renders their sales contracts.
type ClientService struct {
	clients  *store.Clients
	pool     *worker.Pool
	renderer *docgen.Renderer
	outDir   string
}

// NewClientService wires the client store with its collaborators.
// Rendered contracts are written into outDir.
func NewClientService(clients *store.Clients, pool *worker.Pool, renderer *docgen.Renderer, outDir string) *ClientService {
	return &ClientService{clients: clients, pool: pool, renderer: renderer, outDir: outDir}
}

// Save validates and creates a client, then renders its sales contract
// in the background. The create reports success regardless of how the
// rendering goes; the returned future completes when it has finished.
func (s *ClientService) Save(userID int64, name, email, phone, address string, status models.ClientStatus) (models.Client, *worker.Future, error) {
	c := models.Client{
		UserID:  userID,
		Name:    name,
		Email:   email,
		Phone:   phone,
		Address: address,
		Status:  status,
	}
	if err := c.Validate(); err != nil {
		return models.Client{}, nil, err
	}
	c, err := s.clients.Create(c)
	if err != nil {
		return models.Client{}, nil, err
	}
	f := s.pool.Submit("sales contract", func() error {
		content, err := s.renderer.Render(map[string]string{
			"name":    c.Name,
			"email":   c.Email,
			"phone":   c.Phone,
			"address": c.Address,
		})
		if err != nil {
			return err
		}
		out := filepath.Join(s.outDir, fmt.Sprintf("sales_contract_%d.txt", c.ID))
		return s.renderer.Save(content, out)
	})
	return c, f, nil
}

// Clients returns every client.
func (s *ClientService) Clients() ([]models.Client, error) {
	return s.clients.FindAll()
}

// ClientsOf returns the clients owned by one user.
func (s *ClientService) ClientsOf(userID int64) ([]models.Client, error) {
	return s.clients.FindAllByUser(userID)
}

// Get returns one client by ID.
func (s *ClientService) Get(id int64) (models.Client, error) {
	return s.clients.FindByID(id)
}

// Search returns the clients whose name, email or phone exactly matches
// the term.
func (s *ClientService) Search(term string) ([]models.Client, error) {
	if term == "" {
		return nil, &models.ValidationError{Field: "search", Reason: "must not be empty"}
	}
	return s.clients.Search(term)
}

// UpdateField validates the new value for the selected field and
// persists it.
func (s *ClientService) UpdateField(id int64, field store.ClientField, value string) error {
	var err error
	switch field {
	case store.ClientName:
		err = models.CheckNotEmpty("name", value)
	case store.ClientEmail:
		err = models.CheckEmail("email", value)
	case store.ClientPhone:
		err = models.CheckPhone("phone", value)
	case store.ClientAddress:
		err = models.CheckNotEmpty("address", value)
	default:
		err = &models.ValidationError{Field: "field", Reason: fmt.Sprintf("unknown selector %d", field)}
	}
	if err != nil {
		return err
	}
	return s.clients.UpdateField(id, field, value)
}

// UpdateStatus persists a new status for the client.
func (s *ClientService) UpdateStatus(id int64, status models.ClientStatus) error {
	if _, err := models.ParseClientStatus(string(status)); err != nil {
		return &models.ValidationError{Field: "status", Reason: err.Error()}
	}
	return s.clients.UpdateStatus(id, status)
}

// Delete soft-deletes the client: its status flips to DELETE and the
// record stays on file.
func (s *ClientService) Delete(id int64) error {
	return s.clients.Delete(id)
}
