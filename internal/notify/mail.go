// Package notify delivers mail-style notifications. The store layer
// never depends on delivery succeeding; a failed send is logged and the
// record it follows stays written.
package notify

import (
	"fmt"
	"log/slog"
	"strings"
)

// Mailer sends a text to an address.
type Mailer interface {
	Send(address, text string) error
}

// LogMailer is the stand-in delivery used outside production: it writes
// the mail to the log instead of a wire. Addresses containing "error"
// fail on purpose so failure paths stay testable.
type LogMailer struct {
	Log *slog.Logger
}

// Send implements [Mailer].
func (m *LogMailer) Send(address, text string) error {
	if address == "" || text == "" {
		return fmt.Errorf("address and text must not be empty")
	}
	if strings.Contains(address, "error") {
		return fmt.Errorf("failed to deliver mail to %s", address)
	}
	log := m.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("mail sent", "to", address, "text", text)
	return nil
}
