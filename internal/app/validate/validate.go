// Package validate holds the field-level domain validation rules. Rules run
// after authorization and before any store mutation; a failure aborts the
// operation before anything is written.
package validate

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/openshelf/catalog/internal/errors"
)

const (
	// MaxUsernameLength mirrors the account username bound.
	MaxUsernameLength = 150
	// MaxEmailLength mirrors the account email bound.
	MaxEmailLength = 254
	// MinPasswordLength applies to account creation.
	MinPasswordLength = 8

	minNameLength    = 2
	minMessageLength = 10
	forbiddenChars   = `<>"'&`
)

// Errors accumulates per-field failure reasons.
type Errors struct {
	fields map[string][]string
}

// Add records one failure reason for a field.
func (e *Errors) Add(field, reason string) {
	if e.fields == nil {
		e.fields = make(map[string][]string)
	}
	e.fields[field] = append(e.fields[field], reason)
}

// Empty reports whether no failures were recorded.
func (e *Errors) Empty() bool { return len(e.fields) == 0 }

// Err returns the accumulated ValidationFailed error, or nil.
func (e *Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return errors.Validation(e.fields)
}

// Name strips surrounding whitespace and enforces the shared name rules:
// at least two characters, none of < > " ' &. Returns the normalized value
// and an empty reason on success.
func Name(raw string) (string, string) {
	name := strings.TrimSpace(raw)
	if utf8.RuneCountInString(name) < minNameLength {
		return name, fmt.Sprintf("must be at least %d characters long", minNameLength)
	}
	if strings.ContainsAny(name, forbiddenChars) {
		return name, "contains invalid characters"
	}
	return name, ""
}

// Message strips surrounding whitespace and enforces the minimum length.
func Message(raw string) (string, string) {
	msg := strings.TrimSpace(raw)
	if utf8.RuneCountInString(msg) < minMessageLength {
		return msg, fmt.Sprintf("must be at least %d characters long", minMessageLength)
	}
	return msg, ""
}

// PublicationYear rejects years after the current calendar year. The rule is
// re-evaluated on every create and update.
func PublicationYear(year int) string {
	if year > time.Now().Year() {
		return "Publication year cannot be in the future."
	}
	return ""
}

// Username enforces presence and the length bound.
func Username(raw string) (string, string) {
	username := strings.TrimSpace(raw)
	if username == "" {
		return username, "is required"
	}
	if len(username) > MaxUsernameLength {
		return username, fmt.Sprintf("must be at most %d characters long", MaxUsernameLength)
	}
	return username, ""
}

// Email enforces presence, the length bound and basic address syntax.
func Email(raw string) (string, string) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return email, "is required"
	}
	if len(email) > MaxEmailLength {
		return email, fmt.Sprintf("must be at most %d characters long", MaxEmailLength)
	}
	// ParseAddress accepts display-name forms like `Bob <bob@example.com>`;
	// only the bare address is a valid value here.
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return email, "must be a valid email address"
	}
	return email, ""
}

// Password enforces the minimum length on account creation.
func Password(raw string) string {
	if len(raw) < MinPasswordLength {
		return fmt.Sprintf("must be at least %d characters long", MinPasswordLength)
	}
	return ""
}
