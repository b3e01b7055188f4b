// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

package auth

import (
	"context"
	"time"

	"github.com/kadrio/kadrio/internal/platform/apperr"
	"github.com/kadrio/kadrio/internal/platform/sec"
)

// # Credential Store

// CredentialStore owns password verification and the lockout state machine.
//
// State machine per credential: Unlocked ⇄ Locked. The fifth consecutive
// failure sets locked_until = now + LockoutDuration; failures while locked
// keep incrementing the counter but never extend the window. Only a fresh
// reach of the threshold after a reset starts a new window. RecordSuccess and
// SetPassword reset unconditionally.
//
// # Review Process
//
// This type is critical for security. Any change to hashing, counting, or
// lockout logic must be reviewed by the security team.
type CredentialStore struct {
	repo CredentialRepository
}

// NewCredentialStore constructs a [CredentialStore].
func NewCredentialStore(repo CredentialRepository) *CredentialStore {
	return &CredentialStore{repo: repo}
}

// ForPrincipal loads the credential owned by the given principal.
func (store *CredentialStore) ForPrincipal(context context.Context, principal *Principal) (*Credential, error) {
	if principal.Kind == PrincipalSuperadmin {
		return store.repo.FindBySuperadminID(context, principal.ID)
	}
	return store.repo.FindByStaffID(context, principal.ID)
}

// Verify compares a plaintext password against the stored hash using the
// hash function's own constant-time comparison.
func (store *CredentialStore) Verify(credential *Credential, plainTextPassword string) bool {
	return sec.CheckPasswordHash(plainTextPassword, credential.PasswordHash)
}

// IsLocked is a pure time comparison: locked iff locked_until is set and
// strictly in the future.
func (store *CredentialStore) IsLocked(credential *Credential) bool {
	return credential.LockedUntil != nil && credential.LockedUntil.After(time.Now())
}

/*
RecordFailure registers one failed login attempt.

Description: The increment and the conditional lock transition happen in a
single atomic statement in the repository, so concurrent failures cannot race
past the threshold. The returned state is post-increment: the caller uses it
to answer the failure that trips the lock with "locked" rather than
"invalid credentials".

Parameters:
  - context: context.Context
  - credentialID: string

Returns:
  - int: failed_attempts after the increment
  - *time.Time: locked_until after the transition, nil when unlocked
  - error: Database errors
*/
func (store *CredentialStore) RecordFailure(context context.Context, credentialID string) (int, *time.Time, error) {
	return store.repo.RecordFailure(context, credentialID)
}

// RecordSuccess resets failed_attempts to zero, clears any lock, and stamps
// last_login and its source IP. Callers must have confirmed not-locked and
// password-correct before reaching this.
func (store *CredentialStore) RecordSuccess(context context.Context, credentialID string, ip string) error {
	return store.repo.RecordSuccess(context, credentialID, ip)
}

// SetPassword hashes and stores a new password, resetting the failure
// counter and clearing any active lock.
func (store *CredentialStore) SetPassword(context context.Context, credentialID string, plainTextPassword string) error {
	if len(plainTextPassword) < 8 {
		return apperr.ValidationError("Password must be at least 8 characters")
	}

	hash, err := sec.HashPassword(plainTextPassword)
	if err != nil {
		return err
	}

	return store.repo.SetPassword(context, credentialID, hash)
}
