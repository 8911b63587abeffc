package crm

import (
	"testing"
	"time"

	"flatcrm/internal/store"
)

func setupMessageService(t *testing.T, now time.Time) *MessageService {
	t.Helper()
	messages, err := store.NewMessages(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewMessages failed: %v", err)
	}
	svc := NewMessageService(messages)
	svc.now = fixedClock(now)
	return svc
}

func TestMessageService(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 30, 15, 987000000, time.UTC)

	t.Run("send stamps and truncates the time", func(t *testing.T) {
		svc := setupMessageService(t, now)
		m, err := svc.Send(1, 2, "hi")
		if err != nil {
			t.Fatalf("Send failed: %v", err)
		}
		if want := now.Truncate(time.Second); !m.SentAt.Equal(want) {
			t.Errorf("SentAt = %v, want %v", m.SentAt, want)
		}
	})

	t.Run("send rejects empty content", func(t *testing.T) {
		svc := setupMessageService(t, now)
		if _, err := svc.Send(1, 2, "  "); err == nil {
			t.Error("Send with blank content succeeded, want error")
		}
	})

	t.Run("between and inbox", func(t *testing.T) {
		svc := setupMessageService(t, now)
		if _, err := svc.Send(1, 2, "hi"); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
		if _, err := svc.Send(2, 1, "hello"); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
		if _, err := svc.Send(3, 4, "other"); err != nil {
			t.Fatalf("Send failed: %v", err)
		}

		between, err := svc.Between(1, 2)
		if err != nil {
			t.Fatalf("Between failed: %v", err)
		}
		if len(between) != 1 || between[0].Content != "hi" {
			t.Errorf("Between(1,2) = %+v, want only hi", between)
		}
		inbox, err := svc.Inbox(1)
		if err != nil {
			t.Fatalf("Inbox failed: %v", err)
		}
		if len(inbox) != 2 {
			t.Errorf("Inbox(1) returned %d messages, want 2", len(inbox))
		}
	})
}
