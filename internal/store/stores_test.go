package store

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"flatcrm/internal/models"
	"flatcrm/internal/textdb"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func readData(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	return string(data)
}

func TestUsers(t *testing.T) {
	dir := t.TempDir()
	users, err := NewUsers(dir, testLogger())
	if err != nil {
		t.Fatalf("NewUsers failed: %v", err)
	}

	ann := models.User{
		Email: "ann@example.com", Password: "secret", Name: "Ann",
		LastName: "Lee", Role: models.RoleManager, Status: models.UserWorks,
	}
	bob := models.User{
		Email: "bob@example.com", Password: "hunter2", Name: "Bob",
		LastName: "Rae", Role: models.RoleAdmin, Status: models.UserWorks,
	}

	t.Run("create assigns sequential ids", func(t *testing.T) {
		created, err := users.Create(ann)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if created.ID != 1 {
			t.Errorf("first ID = %d, want 1", created.ID)
		}
		created, err = users.Create(bob)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if created.ID != 2 {
			t.Errorf("second ID = %d, want 2", created.ID)
		}
	})

	t.Run("find by email", func(t *testing.T) {
		got, err := users.FindByEmail("bob@example.com")
		if err != nil {
			t.Fatalf("FindByEmail failed: %v", err)
		}
		if got.Name != "Bob" {
			t.Errorf("FindByEmail().Name = %q, want %q", got.Name, "Bob")
		}
		if _, err := users.FindByEmail("nobody@example.com"); !errors.Is(err, textdb.ErrNotFound) {
			t.Errorf("FindByEmail error = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete is a persisted soft delete", func(t *testing.T) {
		if err := users.Delete(1); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		got, err := users.FindByID(1)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if got.Status != models.UserFired {
			t.Errorf("Status = %q after delete, want %q", got.Status, models.UserFired)
		}
		content := readData(t, dir, usersFile)
		if !strings.Contains(content, "1|ann@example.com|secret|Ann|Lee|MANAGER|FIRED\n") {
			t.Errorf("file does not hold the fired line: %q", content)
		}
		// The other line must be untouched.
		if !strings.Contains(content, "2|bob@example.com|hunter2|Bob|Rae|ADMIN|WORKS\n") {
			t.Errorf("soft delete disturbed the other line: %q", content)
		}
	})

	t.Run("update single field", func(t *testing.T) {
		if err := users.UpdateField(2, UserName, "Robert"); err != nil {
			t.Fatalf("UpdateField failed: %v", err)
		}
		got, err := users.FindByID(2)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if got.Name != "Robert" || got.Password != "hunter2" {
			t.Errorf("got %+v, want only the name changed", got)
		}
	})
}

func TestClients(t *testing.T) {
	dir := t.TempDir()
	clients, err := NewClients(dir, testLogger())
	if err != nil {
		t.Fatalf("NewClients failed: %v", err)
	}

	create := func(t *testing.T, userID int64, name, email, phone string) models.Client {
		t.Helper()
		c, err := clients.Create(models.Client{
			UserID: userID, Name: name, Email: email, Phone: phone,
			Address: "1 Main St", Status: models.ClientActive,
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		return c
	}
	acme := create(t, 1, "Acme", "sales@acme.com", "+12025550123")
	create(t, 1, "Globex", "info@globex.com", "+12025550124")
	create(t, 2, "Initech", "hello@initech.com", "+12025550125")

	t.Run("find all by user", func(t *testing.T) {
		owned, err := clients.FindAllByUser(1)
		if err != nil {
			t.Fatalf("FindAllByUser failed: %v", err)
		}
		if len(owned) != 2 {
			t.Errorf("FindAllByUser(1) returned %d clients, want 2", len(owned))
		}
	})

	t.Run("search matches name email or phone exactly", func(t *testing.T) {
		tests := []struct {
			term string
			want int
		}{
			{"Acme", 1},
			{"info@globex.com", 1},
			{"+12025550125", 1},
			{"acme", 0},
			{"nothing", 0},
		}
		for _, tt := range tests {
			t.Run(tt.term, func(t *testing.T) {
				found, err := clients.Search(tt.term)
				if err != nil {
					t.Fatalf("Search failed: %v", err)
				}
				if len(found) != tt.want {
					t.Errorf("Search(%q) returned %d, want %d", tt.term, len(found), tt.want)
				}
			})
		}
	})

	t.Run("delete flips status to DELETE and keeps the line", func(t *testing.T) {
		if err := clients.Delete(acme.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		got, err := clients.FindByID(acme.ID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if got.Status != models.ClientDeleted {
			t.Errorf("Status = %q after delete, want %q", got.Status, models.ClientDeleted)
		}
		all, err := clients.FindAll()
		if err != nil {
			t.Fatalf("FindAll failed: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("FindAll() returned %d clients after soft delete, want 3", len(all))
		}
	})
}

func TestContacts(t *testing.T) {
	dir := t.TempDir()
	contacts, err := NewContacts(dir, testLogger())
	if err != nil {
		t.Fatalf("NewContacts failed: %v", err)
	}

	for _, name := range []string{"Joe", "Sue", "Max"} {
		if _, err := contacts.Create(models.Contact{
			ClientID: 1, Name: name, Email: "x@y.com", Phone: "+12025550123", Position: "buyer",
		}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if _, err := contacts.Create(models.Contact{
		ClientID: 2, Name: "Eve", Email: "e@y.com", Phone: "+12025550124", Position: "cfo",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("delete for client stops at count", func(t *testing.T) {
		removed, err := contacts.DeleteForClient(1, 2)
		if err != nil {
			t.Fatalf("DeleteForClient failed: %v", err)
		}
		if removed != 2 {
			t.Errorf("removed %d contacts, want 2", removed)
		}
		left, err := contacts.FindAllByClient(1)
		if err != nil {
			t.Fatalf("FindAllByClient failed: %v", err)
		}
		if len(left) != 1 || left[0].Name != "Max" {
			t.Errorf("remaining contacts = %+v, want only Max", left)
		}
	})

	t.Run("physical delete removes the line", func(t *testing.T) {
		if err := contacts.Delete(4); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if strings.Contains(readData(t, dir, contactsFile), "Eve") {
			t.Error("deleted contact still on file")
		}
	})
}

func TestDeals(t *testing.T) {
	dir := t.TempDir()
	deals, err := NewDeals(dir, testLogger())
	if err != nil {
		t.Fatalf("NewDeals failed: %v", err)
	}

	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	first, err := deals.Create(models.Deal{
		Title: "Renewal", ClientID: 1, UserID: 1, Amount: 1500,
		Status: models.DealNew, CreatedDate: created,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := deals.Create(models.Deal{
		Title: "Upsell", ClientID: 1, UserID: 2, Amount: 300,
		Status: models.DealNew, CreatedDate: created,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("update rewrites one line", func(t *testing.T) {
		first.Status = models.DealCompleted
		first.ClosedDate = created.AddDate(0, 1, 0)
		if err := deals.Update(first); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		got, err := deals.FindByID(first.ID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if got.Status != models.DealCompleted || got.ClosedDate.IsZero() {
			t.Errorf("got %+v, want completed with a closed date", got)
		}
	})

	t.Run("delete removes the line and keeps the rest", func(t *testing.T) {
		before := readData(t, dir, dealsFile)
		if err := deals.Delete(first.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		after := readData(t, dir, dealsFile)
		if strings.Contains(after, "Renewal") {
			t.Error("deleted deal still on file")
		}
		if !strings.Contains(before, after) || !strings.Contains(after, "Upsell") {
			t.Errorf("surviving line changed: before %q, after %q", before, after)
		}
	})
}

func TestTasks(t *testing.T) {
	dir := t.TempDir()
	tasks, err := NewTasks(dir, testLogger())
	if err != nil {
		t.Fatalf("NewTasks failed: %v", err)
	}

	k, err := tasks.Create(models.Task{
		ClientID: 1, Title: "Call back", Description: "Discuss renewal",
		AssignedTo: 2, CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		DueDate: "2024-03-05 10:00:00", Status: models.TaskCall,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("change parses per field", func(t *testing.T) {
		if err := tasks.Change(k.ID, TaskStatusField, "meeting"); err != nil {
			t.Fatalf("Change failed: %v", err)
		}
		got, err := tasks.FindByID(k.ID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if got.Status != models.TaskMeeting {
			t.Errorf("Status = %q, want %q", got.Status, models.TaskMeeting)
		}
	})

	t.Run("bad value changes nothing", func(t *testing.T) {
		before := readData(t, dir, tasksFile)
		if err := tasks.Change(k.ID, TaskDueDate, "tomorrow"); err == nil {
			t.Fatal("Change with bad due date succeeded, want error")
		}
		got, err := tasks.FindByID(k.ID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if got.DueDate != "2024-03-05 10:00:00" {
			t.Errorf("DueDate = %q, want unchanged", got.DueDate)
		}
		if after := readData(t, dir, tasksFile); after != before {
			t.Errorf("file changed after failed update: %q -> %q", before, after)
		}
	})

	t.Run("mirror survives a restart", func(t *testing.T) {
		reopened, err := NewTasks(dir, testLogger())
		if err != nil {
			t.Fatalf("NewTasks failed: %v", err)
		}
		got, err := reopened.FindByID(k.ID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if got.Status != models.TaskMeeting {
			t.Errorf("reloaded Status = %q, want %q", got.Status, models.TaskMeeting)
		}
		// The restarted allocator must not reuse IDs either.
		k2, err := reopened.Create(models.Task{
			ClientID: 1, Title: "Follow up", Description: "Send notes",
			AssignedTo: 2, CreatedAt: time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC),
			DueDate: "2024-03-06 10:00:00", Status: models.TaskSale,
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if k2.ID != k.ID+1 {
			t.Errorf("ID after restart = %d, want %d", k2.ID, k.ID+1)
		}
	})

	t.Run("find all by client", func(t *testing.T) {
		if got := tasks.FindAllByClient(99); len(got) != 0 {
			t.Errorf("FindAllByClient(99) returned %d tasks, want 0", len(got))
		}
	})
}

func TestMessages(t *testing.T) {
	dir := t.TempDir()
	messages, err := NewMessages(dir, testLogger())
	if err != nil {
		t.Fatalf("NewMessages failed: %v", err)
	}

	sent := time.Date(2024, 3, 1, 9, 30, 15, 987654321, time.UTC)
	m, err := messages.Create(models.Message{SenderID: 1, ReceiverID: 2, Content: "hi", SentAt: sent})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := messages.Create(models.Message{SenderID: 2, ReceiverID: 1, Content: "hello", SentAt: sent}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := messages.Create(models.Message{SenderID: 3, ReceiverID: 4, Content: "other", SentAt: sent}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("timestamp truncated to the second", func(t *testing.T) {
		if m.SentAt.Nanosecond() != 0 {
			t.Errorf("SentAt = %v, want whole seconds", m.SentAt)
		}
	})

	t.Run("find between is directional", func(t *testing.T) {
		got, err := messages.FindBetween(1, 2)
		if err != nil {
			t.Fatalf("FindBetween failed: %v", err)
		}
		if len(got) != 1 || got[0].Content != "hi" {
			t.Errorf("FindBetween(1,2) = %+v, want only the hi message", got)
		}
	})

	t.Run("find by user covers both directions", func(t *testing.T) {
		got, err := messages.FindByUser(1)
		if err != nil {
			t.Fatalf("FindByUser failed: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("FindByUser(1) returned %d messages, want 2", len(got))
		}
	})
}
