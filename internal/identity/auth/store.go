// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

package auth

import (
	"context"
	"time"
)

// # Repository Contracts

// PrincipalRepository resolves identities into tagged principals. Staff
// resolution denormalizes the primary assignment's unit and role names in a
// single query so token issuance needs no further lookups.
type PrincipalRepository interface {
	// ResolveStaffByCode resolves an active, non-deleted staff member by
	// composite code (the staff login code).
	ResolveStaffByCode(context context.Context, code string) (*Principal, error)

	// ResolveStaffByID resolves an active, non-deleted staff member by UUID.
	ResolveStaffByID(context context.Context, id string) (*Principal, error)
}

// CredentialRepository persists credentials and their lockout state.
type CredentialRepository interface {
	Create(context context.Context, credential *Credential) error

	// FindByStaffID returns the credential owned by a staff member.
	FindByStaffID(context context.Context, staffID string) (*Credential, error)

	// FindBySuperadminID returns the credential owned by a superadmin.
	FindBySuperadminID(context context.Context, superadminID string) (*Credential, error)

	// RecordFailure atomically increments the failure counter and, when the
	// threshold is freshly reached outside an active window, sets the lock.
	// It returns the post-increment state so the caller can distinguish the
	// failure that tripped the lock from an ordinary one.
	RecordFailure(context context.Context, id string) (attempts int, lockedUntil *time.Time, err error)

	// RecordSuccess resets the failure counter, clears any lock, and stamps
	// the last successful login.
	RecordSuccess(context context.Context, id string, ip string) error

	// SetPassword replaces the hash and resets counter and lock — a
	// password change is an implicit unlock.
	SetPassword(context context.Context, id string, passwordHash string) error
}

// RefreshTokenRepository is the registry of issued refresh tokens.
type RefreshTokenRepository interface {
	Record(context context.Context, token *RefreshToken) error

	// IsValid reports whether the token row exists for this principal and
	// is neither revoked nor expired.
	IsValid(context context.Context, token string, principalID string) (bool, error)

	// RevokeAll revokes every live refresh token of a principal. Logout is
	// account-wide, not session-specific.
	RevokeAll(context context.Context, principalID string) error
}

// BlacklistRepository is the registry of access tokens invalidated before
// their natural expiry.
type BlacklistRepository interface {
	Blacklist(context context.Context, token string, expiresAt time.Time, reason string) error
	IsBlacklisted(context context.Context, token string) (bool, error)

	// PurgeExpired deletes rows whose tokens have expired on their own and
	// returns how many were removed.
	PurgeExpired(context context.Context) (int64, error)
}

// SuperadminRepository persists superadmin principals.
type SuperadminRepository interface {
	Create(context context.Context, superadmin *Superadmin) error
	FindByCode(context context.Context, code string) (*Superadmin, error)
	FindByID(context context.Context, id string) (*Superadmin, error)
	List(context context.Context) ([]*Superadmin, error)
}

// ServiceAccessRepository persists per-staff service grants.
type ServiceAccessRepository interface {
	// Grant creates or rewrites the single grant for a (staff, service) pair.
	Grant(context context.Context, access *ServiceAccess) error

	// FindForStaff returns the active, non-deleted grant for a staff member
	// on one service.
	FindForStaff(context context.Context, staffID string, service string) (*ServiceAccess, error)

	// ListForStaff returns all live grants of a staff member.
	ListForStaff(context context.Context, staffID string) ([]*ServiceAccess, error)
}
