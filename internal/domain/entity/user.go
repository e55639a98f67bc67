// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserStatus describes the lifecycle state of an account. Transitions are
// driven by administrative modules outside this subsystem; login and refresh
// only read and enforce the current value.
type UserStatus string

// The four account states. Only StatusActive may authenticate.
const (
	StatusPending   UserStatus = "pending"
	StatusActive    UserStatus = "active"
	StatusSuspended UserStatus = "suspended"
	StatusInactive  UserStatus = "inactive"
)

// UserType identifies the kind of account holder. It is embedded in access
// tokens so downstream authorization can branch without a store read.
type UserType string

// Known account holder kinds on the platform.
const (
	UserTypeStaff    UserType = "staff"
	UserTypeStudent  UserType = "student"
	UserTypeGuardian UserType = "guardian"
)

// User is the credential-bearing identity consumed by this subsystem.
// Email is unique per tenant and compared case-insensitively.
type User struct {
	ID                uuid.UUID  // The Global Unique Identifier for the user.
	TenantID          uuid.UUID  // The tenant (school) the account belongs to.
	Email             string     // Login identifier, stored lowercased.
	Type              UserType   // Kind of account holder, embedded in access tokens.
	PasswordHash      *string    // Argon2id hash. Nil means no password set; password login is impossible.
	Status            UserStatus // Current account state, enforced at login and refresh.
	PasswordChangedAt *time.Time // Watermark used to derive the access-token version.
	LastLoginAt       *time.Time // Timestamp of the most recent successful login.
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TokenVersion derives the access-token watermark from the password-changed
// timestamp. Tokens issued before a password change carry a smaller version.
func (u *User) TokenVersion() int64 {
	if u.PasswordChangedAt == nil {
		return 0
	}

	return u.PasswordChangedAt.Unix()
}

// Sanitized returns a copy of the user that is safe to hand back to callers:
// the credential hash is stripped.
func (u *User) Sanitized() *User {
	clone := *u
	clone.PasswordHash = nil

	return &clone
}
