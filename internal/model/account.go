package model

import "time"

// Account roles.  Every account is created as RoleUser; RoleAdmin unlocks the
// directory listing and the soft-delete endpoint.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account represents a row in the `users` table.  PasswordHash and
// RefreshTokenHash never leave the repository/service layers; handlers expose
// accounts only through safe projections.
//
// RefreshTokenHash holds the SHA-256 digest of the single currently valid
// refresh token.  nil means "no active session": the account has either never
// logged in or has logged out.  Issuing or rotating a refresh token overwrites
// the column, which is what invalidates the previous token even when it has
// not yet expired.
type Account struct {
	ID               uint64     // users.id
	Name             string     // users.name
	Email            string     // users.email (unique among non-deleted rows)
	PasswordHash     string     // users.password_hash (bcrypt)
	Role             string     // users.role ("user" | "admin")
	RefreshTokenHash *string    // users.refresh_token_hash (nullable)
	CreatedAt        time.Time  // users.created_at
	UpdatedAt        time.Time  // users.updated_at
	DeletedAt        *time.Time // users.deleted_at (soft-delete tombstone)
}
