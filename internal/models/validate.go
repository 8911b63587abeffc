package models

import "strings"

// Field-level checks shared by the services for single-field updates.
// Each returns a *ValidationError naming the offending field.

// CheckNotEmpty fails on empty or all-whitespace values.
func CheckNotEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Reason: "must not be empty"}
	}
	return nil
}

// CheckEmail fails on values that are not a plausible mail address.
func CheckEmail(field, value string) error {
	if !emailRe.MatchString(value) {
		return &ValidationError{Field: field, Reason: "must be a valid address"}
	}
	return nil
}

// CheckPhone fails on values that are not 10 to 15 digits with an
// optional leading plus.
func CheckPhone(field, value string) error {
	if !phoneRe.MatchString(value) {
		return &ValidationError{Field: field, Reason: "must be 10 to 15 digits"}
	}
	return nil
}
