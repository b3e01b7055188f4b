// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

/*
Package auth implements the identity and session security engine.

It owns the credential lifecycle (password verification, progressive lockout,
access/refresh token issuance and revocation) for both principal kinds — staff
and superadmins — and the session registry that makes logout effective before
tokens naturally expire.

# Architecture

  - Gateway: Orchestrates login, scoped login, refresh, logout, and whoami.
  - CredentialStore: Owns password verification and the lockout state machine.
  - Repositories: Postgres for credentials/tokens/grants, Redis as a
    read-through cache in front of the access-token blacklist.

# Security

Login failures return the same message whether the code or the password was
wrong, so callers cannot enumerate identities. Lockout is the only
distinguishable rejection and surfaces its expiry.
*/
package auth

import (
	"time"

	"github.com/kadrio/kadrio/internal/platform/sec"
)

// # Domain Entities

// Credential is the authentication secret of exactly one identity: exactly
// one of StaffID or SuperadminID is set, never both, never neither.
// Credentials are never hard-deleted, only soft-deleted with their identity.
type Credential struct {
	ID             string     `json:"id"`
	StaffID        *string    `json:"staff_id,omitempty"`
	SuperadminID   *string    `json:"superadmin_id,omitempty"`
	PasswordHash   string     `json:"-"` // Explicitly omitted from JSON for security.
	FailedAttempts int        `json:"failed_attempts"`
	LockedUntil    *time.Time `json:"locked_until,omitempty"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
	LastLoginIP    *string    `json:"last_login_ip,omitempty"`
	IsDeleted      bool       `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IdentityID returns the UUID of the owning identity, whichever kind it is.
func (c *Credential) IdentityID() string {
	if c.StaffID != nil {
		return *c.StaffID
	}
	if c.SuperadminID != nil {
		return *c.SuperadminID
	}
	return ""
}

// RefreshToken is one row per issued refresh token. A refresh token must be
// both cryptographically valid and present/unrevoked/unexpired here to be
// accepted — the defense against a stolen-but-logged-out token.
type RefreshToken struct {
	ID            string    `json:"id"`
	PrincipalKind string    `json:"principal_kind"`
	PrincipalID   string    `json:"principal_id"`
	Token         string    `json:"-"` // Omitted for security.
	ExpiresAt     time.Time `json:"expires_at"`
	IsRevoked     bool      `json:"is_revoked"`
	Device        string    `json:"device,omitempty"`
	IPAddress     string    `json:"ip_address,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// BlacklistedToken is an access token invalidated before natural expiry.
// ExpiresAt is copied from the token's own claim so purging is always safe.
type BlacklistedToken struct {
	ID        string    `json:"id"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Superadmin is a platform-level principal outside the staff registry. Its
// code follows the "S-YY-NNNN" scheme, allocated per joining year.
type Superadmin struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	FullName  string     `json:"full_name"`
	Email     string     `json:"email"`
	IsActive  bool       `json:"is_active"`
	IsDeleted bool       `json:"-"`
	DeletedAt *time.Time `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ServiceAccess grants a staff member a sub-role within an external service.
// At most one grant exists per (staff, service) pair.
type ServiceAccess struct {
	ID        string    `json:"id"`
	StaffID   string    `json:"staff_id"`
	Service   string    `json:"service"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	IsDeleted bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// # Principal

// Principal is the tagged union of the two identity kinds, resolved once at
// login entry and carried thereafter. It holds the denormalized display
// fields embedded into access tokens for zero-lookup authorization.
type Principal struct {
	Kind         string `json:"kind"` // PrincipalStaff or PrincipalSuperadmin
	ID           string `json:"id"`
	Code         string `json:"code"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	UnitName     string `json:"unit_name,omitempty"`
	RoleName     string `json:"role_name,omitempty"`
	IsSuperadmin bool   `json:"is_superadmin"`
	IsActive     bool   `json:"is_active"`
}

// Subject converts the principal to the token service's claim subject.
func (p *Principal) Subject() sec.Subject {
	return sec.Subject{
		ID:           p.ID,
		Code:         p.Code,
		FullName:     p.FullName,
		Email:        p.Email,
		UnitName:     p.UnitName,
		RoleName:     p.RoleName,
		IsSuperadmin: p.IsSuperadmin,
		IsActive:     p.IsActive,
	}
}

// # Results

// LoginResult is the successful outcome of a login: both tokens plus the
// denormalized identity summary.
type LoginResult struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int        `json:"expires_in"`
	Identity     *Principal `json:"identity"`
}

// RefreshResult is the successful outcome of a token refresh. Only a new
// access token is issued; the refresh token is not rotated.
type RefreshResult struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// # Field Identifiers

// Global field names for validation in the authentication domain.
const (
	FieldCode      = "code"
	FieldPassword  = "password"
	FieldFullName  = "full_name"
	FieldEmail     = "email"
	FieldService   = "service"
	FieldRole      = "role"
	FieldStaffID   = "staff_id"
	FieldSuperID   = "superadmin_id"
	FieldRefreshTk = "refresh_token"
)
