// Package store provides the per-entity stores of the CRM: one backing
// file, one ID allocator and one line codec each. All stores scan the
// file on read except Tasks, which mirrors its file in memory.
package store

import (
	"fmt"
	"strconv"
	"strings"

	"flatcrm/internal/textdb"
)

// File names inside the data directory, one pair per entity type.
const (
	usersFile      = "users.txt"
	usersIDFile    = "users_id.txt"
	clientsFile    = "clients.txt"
	clientsIDFile  = "clients_id.txt"
	contactsFile   = "contacts.txt"
	contactsIDFile = "contacts_id.txt"
	dealsFile      = "deals.txt"
	dealsIDFile    = "deals_id.txt"
	tasksFile      = "tasks.txt"
	tasksIDFile    = "tasks_id.txt"
	messagesFile   = "messages.txt"
	messagesIDFile = "messages_id.txt"
)

// splitLine splits a stored line and checks the field count.
func splitLine(line string, want int) ([]string, error) {
	fields := strings.Split(line, textdb.Delimiter)
	if len(fields) < want {
		return nil, &textdb.DecodeError{Line: line, Err: fmt.Errorf("want %d fields, got %d", want, len(fields))}
	}
	return fields, nil
}

// parseID parses a primary or foreign key field.
func parseID(field string) (int64, error) {
	id, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad id %q: %w", field, err)
	}
	return id, nil
}

// formatID formats a primary or foreign key field.
func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
