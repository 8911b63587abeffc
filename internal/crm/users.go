package crm

import (
	"errors"

	"flatcrm/internal/models"
	"flatcrm/internal/notify"
	"flatcrm/internal/store"
	"flatcrm/internal/textdb"
	"flatcrm/internal/worker"
)

// UserService registers, authenticates and lists users.
type UserService struct {
	users  *store.Users
	pool   *worker.Pool
	mailer notify.Mailer
}

// NewUserService wires the user store with its collaborators.
func NewUserService(users *store.Users, pool *worker.Pool, mailer notify.Mailer) *UserService {
	return &UserService{users: users, pool: pool, mailer: mailer}
}

// SignUp validates and creates a user, then sends the confirmation mail
// in the background. The returned future completes when the mail attempt
// has finished; a failed send never undoes the stored user.
func (s *UserService) SignUp(email, password, name, lastName string, role models.Role) (models.User, *worker.Future, error) {
	u := models.User{
		Email:    email,
		Password: password,
		Name:     name,
		LastName: lastName,
		Role:     role,
		Status:   models.UserWorks,
	}
	if err := u.Validate(); err != nil {
		return models.User{}, nil, err
	}
	u, err := s.users.Create(u)
	if err != nil {
		return models.User{}, nil, err
	}
	f := s.pool.Submit("signup mail", func() error {
		return s.mailer.Send(email, "You have been registered, your temporary password: "+password)
	})
	return u, f, nil
}

// SignIn reports whether the email and password match a stored user.
// Passwords are compared in plaintext; retained behavior of the system
// being replaced.
func (s *UserService) SignIn(email, password string) (bool, error) {
	u, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, textdb.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return u.Password == password, nil
}

// Users returns every user.
func (s *UserService) Users() ([]models.User, error) {
	return s.users.FindAll()
}

// Get returns one user by ID.
func (s *UserService) Get(id int64) (models.User, error) {
	return s.users.FindByID(id)
}

// GetByEmail returns the user with the given email, or
// textdb.ErrNotFound.
func (s *UserService) GetByEmail(email string) (models.User, error) {
	return s.users.FindByEmail(email)
}

// Fire soft-deletes the user: its status flips to FIRED and the record
// stays on file.
func (s *UserService) Fire(id int64) error {
	return s.users.Delete(id)
}
