// Package models defines the CRM record types stored by the engine and
// the validation applied before any I/O happens.
package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date and timestamp layouts used across stored records.
const (
	// DateLayout formats deal dates.
	DateLayout = "2006-01-02"
	// DateTimeLayout formats task and message timestamps.
	DateTimeLayout = "2006-01-02 15:04:05"
)

var (
	emailRe    = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phoneRe    = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	dateTimeRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)
)

// ValidationError reports a bad or missing field, raised before any I/O.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Role is a user's position in the organization.
type Role string

// Known roles.
const (
	RoleAdmin       Role = "ADMIN"
	RoleManager     Role = "MANAGER"
	RoleService     Role = "SERVICE"
	RoleSupervision Role = "SUPERVISION"
)

// ParseRole parses a role token, case-sensitively.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleManager, RoleService, RoleSupervision:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// UserStatus tells whether a user still works here.
type UserStatus string

// Known user statuses.
const (
	UserWorks UserStatus = "WORKS"
	UserFired UserStatus = "FIRED"
)

// ParseUserStatus parses a user status token, case-sensitively.
func ParseUserStatus(s string) (UserStatus, error) {
	switch st := UserStatus(s); st {
	case UserWorks, UserFired:
		return st, nil
	}
	return "", fmt.Errorf("unknown user status %q", s)
}

// User is an operator of the system. Users own clients, deals, tasks and
// messages. Deleting a user marks it FIRED; the record stays on file.
type User struct {
	ID       int64
	Email    string
	Password string
	Name     string
	LastName string
	Role     Role
	Status   UserStatus
}

// RecordID implements textdb.Record.
func (u User) RecordID() int64 { return u.ID }

// Validate checks required fields. The password is stored and compared in
// plaintext; retained behavior of the system being replaced.
func (u User) Validate() error {
	if !emailRe.MatchString(u.Email) {
		return &ValidationError{Field: "email", Reason: "must be a valid address"}
	}
	if strings.TrimSpace(u.Password) == "" {
		return &ValidationError{Field: "password", Reason: "must not be empty"}
	}
	if strings.TrimSpace(u.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(u.LastName) == "" {
		return &ValidationError{Field: "lastName", Reason: "must not be empty"}
	}
	if _, err := ParseRole(string(u.Role)); err != nil {
		return &ValidationError{Field: "role", Reason: err.Error()}
	}
	if _, err := ParseUserStatus(string(u.Status)); err != nil {
		return &ValidationError{Field: "status", Reason: err.Error()}
	}
	return nil
}

// ClientStatus tells whether a client is active or soft-deleted.
type ClientStatus string

// Known client statuses.
const (
	ClientActive  ClientStatus = "ACTIVE"
	ClientDeleted ClientStatus = "DELETE"
)

// ParseClientStatus parses a client status token, case-sensitively.
func ParseClientStatus(s string) (ClientStatus, error) {
	switch st := ClientStatus(s); st {
	case ClientActive, ClientDeleted:
		return st, nil
	}
	return "", fmt.Errorf("unknown client status %q", s)
}

// Client is a customer managed by one user. Deleting a client marks it
// DELETE; the record stays on file.
type Client struct {
	ID      int64
	UserID  int64
	Name    string
	Email   string
	Phone   string
	Address string
	Status  ClientStatus
}

// RecordID implements textdb.Record.
func (c Client) RecordID() int64 { return c.ID }

// Validate checks required fields.
func (c Client) Validate() error {
	if c.UserID <= 0 {
		return &ValidationError{Field: "userId", Reason: "must be positive"}
	}
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !emailRe.MatchString(c.Email) {
		return &ValidationError{Field: "email", Reason: "must be a valid address"}
	}
	if !phoneRe.MatchString(c.Phone) {
		return &ValidationError{Field: "phone", Reason: "must be 10 to 15 digits"}
	}
	if strings.TrimSpace(c.Address) == "" {
		return &ValidationError{Field: "address", Reason: "must not be empty"}
	}
	if _, err := ParseClientStatus(string(c.Status)); err != nil {
		return &ValidationError{Field: "status", Reason: err.Error()}
	}
	return nil
}

// Contact is a person reachable at a client.
type Contact struct {
	ID       int64
	ClientID int64
	Name     string
	Email    string
	Phone    string
	Position string
}

// RecordID implements textdb.Record.
func (c Contact) RecordID() int64 { return c.ID }

// Validate checks required fields.
func (c Contact) Validate() error {
	if c.ClientID <= 0 {
		return &ValidationError{Field: "clientId", Reason: "must be positive"}
	}
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !emailRe.MatchString(c.Email) {
		return &ValidationError{Field: "email", Reason: "must be a valid address"}
	}
	if !phoneRe.MatchString(c.Phone) {
		return &ValidationError{Field: "phone", Reason: "must be 10 to 15 digits"}
	}
	if strings.TrimSpace(c.Position) == "" {
		return &ValidationError{Field: "position", Reason: "must not be empty"}
	}
	return nil
}

// DealStatus is a deal's place in its lifecycle.
type DealStatus string

// Known deal statuses.
const (
	DealNew       DealStatus = "NEW"
	DealProgress  DealStatus = "PROGRESS"
	DealCompleted DealStatus = "COMPLETED"
	DealFailed    DealStatus = "FAILED"
)

// ParseDealStatus parses a deal status token, case-sensitively.
func ParseDealStatus(s string) (DealStatus, error) {
	switch st := DealStatus(s); st {
	case DealNew, DealProgress, DealCompleted, DealFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown deal status %q", s)
}

// Terminal reports whether the status closes the deal.
func (s DealStatus) Terminal() bool {
	return s == DealCompleted || s == DealFailed
}

// Deal links a client and a user to an amount of money. ClosedDate is
// optional; a zero time means the deal is still open.
type Deal struct {
	ID          int64
	Title       string
	ClientID    int64
	UserID      int64
	Amount      float64
	Status      DealStatus
	CreatedDate time.Time
	ClosedDate  time.Time
}

// RecordID implements textdb.Record.
func (d Deal) RecordID() int64 { return d.ID }

// Validate checks required fields.
func (d Deal) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if d.ClientID <= 0 {
		return &ValidationError{Field: "clientId", Reason: "must be positive"}
	}
	if d.UserID <= 0 {
		return &ValidationError{Field: "userId", Reason: "must be positive"}
	}
	if d.Amount < 0 {
		return &ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	if _, err := ParseDealStatus(string(d.Status)); err != nil {
		return &ValidationError{Field: "status", Reason: err.Error()}
	}
	if d.CreatedDate.IsZero() {
		return &ValidationError{Field: "createdDate", Reason: "is required"}
	}
	return nil
}

// TaskStatus is the kind of work a task represents.
type TaskStatus string

// Known task statuses.
const (
	TaskCall    TaskStatus = "CALL"
	TaskMeeting TaskStatus = "MEETING"
	TaskSale    TaskStatus = "SALE"
)

// ParseTaskStatus parses a task status token, case-insensitively.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch st := TaskStatus(strings.ToUpper(s)); st {
	case TaskCall, TaskMeeting, TaskSale:
		return st, nil
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

// Task is a unit of work on a client, assigned to a user. The due date is
// kept as entered, a "yyyy-MM-dd HH:mm:ss" string.
type Task struct {
	ID          int64
	ClientID    int64
	Title       string
	Description string
	AssignedTo  int64
	CreatedAt   time.Time
	DueDate     string
	Status      TaskStatus
}

// RecordID implements textdb.Record.
func (t Task) RecordID() int64 { return t.ID }

// Validate checks required fields.
func (t Task) Validate() error {
	if t.ClientID <= 0 {
		return &ValidationError{Field: "clientId", Reason: "must be positive"}
	}
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(t.Description) == "" {
		return &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if t.AssignedTo <= 0 {
		return &ValidationError{Field: "assignedTo", Reason: "must be positive"}
	}
	if !dateTimeRe.MatchString(t.DueDate) {
		return &ValidationError{Field: "dueDate", Reason: "must look like " + DateTimeLayout}
	}
	if _, err := time.Parse(DateTimeLayout, t.DueDate); err != nil {
		return &ValidationError{Field: "dueDate", Reason: "must be a real date and time"}
	}
	if _, err := ParseTaskStatus(string(t.Status)); err != nil {
		return &ValidationError{Field: "status", Reason: err.Error()}
	}
	return nil
}

// Message is a note sent from one user to another.
type Message struct {
	ID         int64
	SenderID   int64
	ReceiverID int64
	Content    string
	SentAt     time.Time
}

// RecordID implements textdb.Record.
func (m Message) RecordID() int64 { return m.ID }

// Validate checks required fields.
func (m Message) Validate() error {
	if m.SenderID <= 0 {
		return &ValidationError{Field: "senderId", Reason: "must be positive"}
	}
	if m.ReceiverID <= 0 {
		return &ValidationError{Field: "receiverId", Reason: "must be positive"}
	}
	if strings.TrimSpace(m.Content) == "" {
		return &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	return nil
}
