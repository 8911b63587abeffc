package crm

import (
	"time"

	"flatcrm/internal/models"
	"flatcrm/internal/store"
)

// DealService manages deals.
type DealService struct {
	deals *store.Deals
	now   func() time.Time
}

// NewDealService wires the deal store.
func NewDealService(deals *store.Deals) *DealService {
	return &DealService{deals: deals, now: time.Now}
}

// Open validates and creates a deal in status NEW, dated today.
func (s *DealService) Open(title string, clientID, userID int64, amount float64) (models.Deal, error) {
	d := models.Deal{
		Title:       title,
		ClientID:    clientID,
		UserID:      userID,
		Amount:      amount,
		Status:      models.DealNew,
		CreatedDate: s.now(),
	}
	if err := d.Validate(); err != nil {
		return models.Deal{}, err
	}
	return s.deals.Create(d)
}

// Deals returns every deal.
func (s *DealService) Deals() ([]models.Deal, error) {
	return s.deals.FindAll()
}

// Get returns one deal by ID.
func (s *DealService) Get(id int64) (models.Deal, error) {
	return s.deals.FindByID(id)
}

// DealsOf returns the deals owned by one user.
func (s *DealService) DealsOf(userID int64) ([]models.Deal, error) {
	return s.deals.FindAllByUser(userID)
}

// DealsFor returns the deals of one client.
func (s *DealService) DealsFor(clientID int64) ([]models.Deal, error) {
	return s.deals.FindAllByClient(clientID)
}

// UpdateStatus moves the deal to a new status. A terminal status stamps
// the closed date; moving back to an open status clears it.
func (s *DealService) UpdateStatus(id int64, status models.DealStatus) error {
	if _, err := models.ParseDealStatus(string(status)); err != nil {
		return &models.ValidationError{Field: "status", Reason: err.Error()}
	}
	d, err := s.deals.FindByID(id)
	if err != nil {
		return err
	}
	d.Status = status
	if status.Terminal() {
		if d.ClosedDate.IsZero() {
			d.ClosedDate = s.now()
		}
	} else {
		d.ClosedDate = time.Time{}
	}
	return s.deals.Update(d)
}

// Delete removes the deal physically: its line disappears from the file.
func (s *DealService) Delete(id int64) error {
	return s.deals.Delete(id)
}
