package model

import "time"

// Role identifiers as stored in the `role` table.  The numeric values
// are fixed by the seed data: 1 is the administrator role, 2 a regular
// customer and 3 a stylist.  Tokens carry the role name rather than
// the numeric id so that handlers and middleware can reason about
// permissions without a lookup.
const (
	RoleAdmin    uint8 = 1
	RoleCustomer uint8 = 2
	RoleStylist  uint8 = 3
)

// RoleName maps a numeric role id to its canonical name.  Unknown ids
// map to "CUSTOMER" so that a corrupt row never grants elevated access.
func RoleName(id uint8) string {
	switch id {
	case RoleAdmin:
		return "ADMIN"
	case RoleStylist:
		return "STYLIST"
	default:
		return "CUSTOMER"
	}
}

// RoleID maps a canonical role name back to its numeric id.  Unknown
// names map to the customer role.
func RoleID(name string) uint8 {
	switch name {
	case "ADMIN":
		return RoleAdmin
	case "STYLIST":
		return RoleStylist
	default:
		return RoleCustomer
	}
}

// User represents a row of the `user_account` table joined with its
// `user_profile` counterpart.  The account carries credentials and the
// role; the profile carries display information.
//
// Fields:
//  ID           – primary key identifier of the account.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  RoleID       – numeric role id (references role.id).
//  State        – whether the account is active (soft delete flag).
//  FirstName    – profile first name (empty when no profile row exists).
//  LastName     – profile last name.
//  Phone        – profile phone number.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // user_account.id_user
	Email        string    // user_account.email
	PasswordHash string    // user_account.password
	RoleID       uint8     // user_account.id_role
	State        bool      // user_account.state
	FirstName    string    // user_profile.first_name
	LastName     string    // user_profile.last_name
	Phone        string    // user_profile.phone
	CreatedAt    time.Time // user_account.created_at
}

// Role returns the canonical role name for the user.
func (u User) Role() string { return RoleName(u.RoleID) }

// IsAdmin reports whether the user holds the administrator role.
func (u User) IsAdmin() bool { return u.RoleID == RoleAdmin }

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the raw token is persisted.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
