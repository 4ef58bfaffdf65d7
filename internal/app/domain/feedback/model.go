// Package feedback defines contact-form messages.
package feedback

import "time"

// Message is one submitted contact-form entry.
type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
