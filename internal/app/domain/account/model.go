// Package account defines user accounts and their role profiles.
package account

import "time"

// Role values carried by a Profile.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleLibrarian Role = "Librarian"
	RoleMember    Role = "Member"
)

// ValidRole reports whether r is one of the predefined roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleLibrarian, RoleMember:
		return true
	}
	return false
}

// Account is a registered user. PasswordHash holds a bcrypt hash; the
// plaintext password is never stored and never serialized.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DateOfBirth  string    `json:"date_of_birth,omitempty"`
	ProfilePhoto string    `json:"profile_photo,omitempty"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile is the one-to-one role record created alongside every Account.
type Profile struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Public is the listing shape for account endpoints: username and email only.
type Public struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// PublicView projects an Account onto its listing shape.
func PublicView(acct Account) Public {
	return Public{ID: acct.ID, Username: acct.Username, Email: acct.Email}
}
