// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/kadrio/kadrio/internal/identity/sequence"
	"github.com/kadrio/kadrio/internal/platform/apperr"
	"github.com/kadrio/kadrio/internal/platform/constants"
	"github.com/kadrio/kadrio/internal/platform/sec"
	"github.com/kadrio/kadrio/internal/platform/validate"
	"github.com/kadrio/kadrio/pkg/uuidv7"
)

// # Contracts & Types

// TokenProvider defines the contract for issuing and verifying bearer tokens.
type TokenProvider interface {
	// IssueAccess creates a signed access token for the subject, additively
	// merging extraClaims into the payload.
	IssueAccess(subject sec.Subject, timeToLive time.Duration, extraClaims map[string]any) (string, error)

	// IssueRefresh creates a signed refresh token for the subject.
	IssueRefresh(subject sec.Subject, timeToLive time.Duration) (string, error)

	// Verify decodes a token and rejects it unless it is cryptographically
	// valid, unexpired, and of the expected type.
	Verify(tokenString string, expectedType string) (*sec.Claims, error)
}

// RequestMeta carries client attribution into authentication calls.
type RequestMeta struct {
	IP     string
	Device string
}

// Gateway orchestrates the authentication use cases: login, scoped login,
// refresh, logout, and whoami, plus credential administration.
//
// # Review Process
//
// This service is critical for security. Any change to the login state
// machine, lockout handling, or token issuance must be reviewed by the
// security team.
type Gateway struct {
	principals    PrincipalRepository
	credentials   *CredentialStore
	superadmins   SuperadminRepository
	serviceAccess ServiceAccessRepository
	refreshTokens RefreshTokenRepository
	blacklist     BlacklistRepository
	tokens        TokenProvider
	allocator     *sequence.Allocator
	logger        *slog.Logger
}

// NewGateway constructs a new [Gateway] with necessary dependencies.
func NewGateway(
	principals PrincipalRepository,
	credentials *CredentialStore,
	superadmins SuperadminRepository,
	serviceAccess ServiceAccessRepository,
	refreshTokens RefreshTokenRepository,
	blacklist BlacklistRepository,
	tokens TokenProvider,
	allocator *sequence.Allocator,
	logger *slog.Logger,
) *Gateway {
	return &Gateway{
		principals:    principals,
		credentials:   credentials,
		superadmins:   superadmins,
		serviceAccess: serviceAccess,
		refreshTokens: refreshTokens,
		blacklist:     blacklist,
		tokens:        tokens,
		allocator:     allocator,
		logger:        logger,
	}
}

// # Login Flow

/*
Login authenticates an identity by login code and password.

Description: The state machine per attempt is Unauthenticated →
CredentialsChecked → {Rejected(invalid_credentials) | Rejected(locked) |
Accepted}. Resolution tries staff by composite code first, then superadmin by
code. Unknown code and wrong password produce the identical rejection so
callers cannot enumerate identities; lockout is the only distinguishable
rejection and surfaces its expiry.

Parameters:
  - context: context.Context
  - code: string (composite staff code or superadmin code)
  - password: string
  - meta: RequestMeta

Returns:
  - *LoginResult: Both tokens plus the identity summary
  - error: apperr.InvalidCredentials, apperr.Locked, or storage errors
*/
func (gateway *Gateway) Login(context context.Context, code, password string, meta RequestMeta) (*LoginResult, error) {
	v := &validate.Validator{}
	if err := v.Required(FieldCode, code).Required(FieldPassword, password).Err(); err != nil {
		return nil, err
	}

	principal, err := gateway.authenticate(context, code, password, meta)
	if err != nil {
		return nil, err
	}

	return gateway.issueSession(context, principal, nil, meta)
}

/*
LoginScoped authenticates an identity for one external service.

Description: Adds a single gate after password verification: the identity
must hold an active, non-deleted grant on the target service, and — when the
caller requests a specific sub-role — the assigned sub-role must match
exactly. The two rejections are distinct (no access vs. wrong role, the
latter reporting the assigned role) because remediation differs. The granted
service and role ride as extra access-token claims.

Parameters:
  - context: context.Context
  - code: string
  - password: string
  - service: string (target service name)
  - role: string (requested sub-role; empty accepts whatever is assigned)
  - meta: RequestMeta

Returns:
  - *LoginResult
  - error: Login rejections plus NO_SERVICE_ACCESS / ROLE_MISMATCH forbids
*/
func (gateway *Gateway) LoginScoped(context context.Context, code, password, service, role string, meta RequestMeta) (*LoginResult, error) {
	v := &validate.Validator{}
	v.Required(FieldCode, code).
		Required(FieldPassword, password).
		Required(FieldService, service)
	if role != "" {
		v.OneOf(FieldRole, role, ServiceRoles...)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	principal, err := gateway.authenticate(context, code, password, meta)
	if err != nil {
		return nil, err
	}

	grant, err := gateway.serviceAccess.FindForStaff(context, principal.ID, service)
	if err != nil {
		if apperr.HasCode(err, "NOT_FOUND") {
			return nil, apperr.Forbidden("You do not have access to this service").
				WithCode("NO_SERVICE_ACCESS")
		}
		return nil, err
	}

	if role != "" && grant.Role != role {
		return nil, apperr.Forbidden("Your assigned role does not match the requested role").
			WithCode("ROLE_MISMATCH").
			WithMeta("assigned_role", grant.Role)
	}

	extras := map[string]any{
		"service": service,
		"role":    grant.Role,
	}
	return gateway.issueSession(context, principal, extras, meta)
}

// authenticate runs the shared credential check: resolve → locked? → verify
// → record. On a wrong password the failure is recorded first, and the
// attempt that freshly trips the lock is answered with "locked" rather than
// "invalid credentials".
func (gateway *Gateway) authenticate(context context.Context, code, password string, meta RequestMeta) (*Principal, error) {
	principal, err := gateway.resolvePrincipal(context, code)
	if err != nil {
		if apperr.HasCode(err, "NOT_FOUND") {
			return nil, apperr.InvalidCredentials()
		}
		return nil, err
	}
	if !principal.IsActive {
		return nil, apperr.InvalidCredentials()
	}

	credential, err := gateway.credentials.ForPrincipal(context, principal)
	if err != nil {
		if apperr.HasCode(err, "NOT_FOUND") {
			return nil, apperr.InvalidCredentials()
		}
		return nil, err
	}

	if gateway.credentials.IsLocked(credential) {
		return nil, apperr.Locked(*credential.LockedUntil)
	}

	if !gateway.credentials.Verify(credential, password) {
		attempts, lockedUntil, err := gateway.credentials.RecordFailure(context, credential.ID)
		if err != nil {
			return nil, err
		}

		gateway.logger.Warn("login failure recorded",
			"principal_id", principal.ID,
			"failed_attempts", attempts,
			"ip", meta.IP,
		)

		if lockedUntil != nil && lockedUntil.After(time.Now()) {
			return nil, apperr.Locked(*lockedUntil)
		}
		return nil, apperr.InvalidCredentials()
	}

	if err := gateway.credentials.RecordSuccess(context, credential.ID, meta.IP); err != nil {
		return nil, err
	}

	return principal, nil
}

// resolvePrincipal tries the staff registry first, then superadmins on a
// miss. The result is a tagged principal carried through the whole attempt.
func (gateway *Gateway) resolvePrincipal(context context.Context, code string) (*Principal, error) {
	principal, err := gateway.principals.ResolveStaffByCode(context, code)
	if err == nil {
		return principal, nil
	}
	if !apperr.HasCode(err, "NOT_FOUND") {
		return nil, err
	}

	superadmin, err := gateway.superadmins.FindByCode(context, strings.ToUpper(code))
	if err != nil {
		return nil, err
	}
	return superadminPrincipal(superadmin), nil
}

func superadminPrincipal(superadmin *Superadmin) *Principal {
	return &Principal{
		Kind:         PrincipalSuperadmin,
		ID:           superadmin.ID,
		Code:         superadmin.Code,
		FullName:     superadmin.FullName,
		Email:        superadmin.Email,
		IsSuperadmin: true,
		IsActive:     superadmin.IsActive,
	}
}

// issueSession mints the token pair and persists the refresh token.
func (gateway *Gateway) issueSession(context context.Context, principal *Principal, extras map[string]any, meta RequestMeta) (*LoginResult, error) {
	subject := principal.Subject()

	accessToken, err := gateway.tokens.IssueAccess(subject, AccessTokenTTL, extras)
	if err != nil {
		return nil, err
	}

	refreshToken, err := gateway.tokens.IssueRefresh(subject, RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	err = gateway.refreshTokens.Record(context, &RefreshToken{
		ID:            uuidv7.New(),
		PrincipalKind: principal.Kind,
		PrincipalID:   principal.ID,
		Token:         refreshToken,
		ExpiresAt:     time.Now().Add(RefreshTokenTTL),
		Device:        meta.Device,
		IPAddress:     meta.IP,
	})
	if err != nil {
		return nil, err
	}

	gateway.logger.Info("login succeeded",
		"principal_id", principal.ID,
		"kind", principal.Kind,
		"ip", meta.IP,
	)

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(AccessTokenTTL.Seconds()),
		Identity:     principal,
	}, nil
}

// # Session Lifecycle

/*
Refresh mints a new access token from a refresh token.

Description: Validity is dual: the token must verify cryptographically as a
refresh token AND its registry row must exist, match the principal, and be
neither revoked nor expired. The identity is re-resolved and must still be
active. All rejections collapse to the same invalid-token signal so failures
give no oracle on why the refresh was refused. The refresh token itself is
not rotated.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *RefreshResult: A new access token only
  - error: apperr.TokenInvalid or storage errors
*/
func (gateway *Gateway) Refresh(context context.Context, refreshToken string) (*RefreshResult, error) {
	claims, err := gateway.tokens.Verify(refreshToken, sec.TokenTypeRefresh)
	if err != nil {
		return nil, apperr.TokenInvalid()
	}

	valid, err := gateway.refreshTokens.IsValid(context, refreshToken, claims.Subject)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, apperr.TokenInvalid()
	}

	principal, err := gateway.resolveByClaims(context, claims)
	if err != nil || !principal.IsActive {
		return nil, apperr.TokenInvalid()
	}

	accessToken, err := gateway.tokens.IssueAccess(principal.Subject(), AccessTokenTTL, nil)
	if err != nil {
		return nil, err
	}

	return &RefreshResult{
		AccessToken: accessToken,
		ExpiresIn:   int(AccessTokenTTL.Seconds()),
	}, nil
}

/*
Logout invalidates a session account-wide.

Description: The presented access token is blacklisted with its own expiry as
TTL and reason "logout", and every refresh token of the identity is revoked —
not just the one from this device. A repeated logout with the same token is
harmless.

Parameters:
  - context: context.Context
  - accessToken: string (the raw bearer token)
  - claims: *sec.Claims (already verified by the middleware)

Returns:
  - error: Storage errors
*/
func (gateway *Gateway) Logout(context context.Context, accessToken string, claims *sec.Claims) error {
	if err := gateway.blacklist.Blacklist(context, accessToken, claims.ExpiresAt, BlacklistReasonLogout); err != nil {
		return err
	}

	if err := gateway.refreshTokens.RevokeAll(context, claims.Subject); err != nil {
		return err
	}

	gateway.logger.Info("logout completed", "principal_id", claims.Subject)
	return nil
}

// WhoAmI re-resolves the authenticated identity from the database, so the
// summary reflects current state rather than token-issuance-time state.
func (gateway *Gateway) WhoAmI(context context.Context, claims *sec.Claims) (*Principal, error) {
	principal, err := gateway.resolveByClaims(context, claims)
	if err != nil {
		return nil, apperr.TokenInvalid()
	}
	return principal, nil
}

func (gateway *Gateway) resolveByClaims(context context.Context, claims *sec.Claims) (*Principal, error) {
	if claims.IsSuperadmin {
		superadmin, err := gateway.superadmins.FindByID(context, claims.Subject)
		if err != nil {
			return nil, err
		}
		return superadminPrincipal(superadmin), nil
	}
	return gateway.principals.ResolveStaffByID(context, claims.Subject)
}

// # Credential Administration

// CreateSuperadminInput holds the data to enroll a new superadmin.
type CreateSuperadminInput struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
CreateSuperadmin enrolls a new superadmin principal with a credential.

Description: The code is allocated from the per-year superadmin sequence
("S-YY-NNNN", resetting each joining year) and the password is hashed before
either row is written.

Parameters:
  - context: context.Context
  - input: CreateSuperadminInput

Returns:
  - *Superadmin: Created principal with its allocated code
  - error: Validation or storage errors
*/
func (gateway *Gateway) CreateSuperadmin(context context.Context, input CreateSuperadminInput) (*Superadmin, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	v := &validate.Validator{}
	err := v.Required(FieldFullName, input.FullName).
		MaxLen(FieldFullName, input.FullName, 255).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8).
		Err()
	if err != nil {
		return nil, err
	}

	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	code, err := gateway.allocator.Next(context, sequence.Superadmin(time.Now().Year()%100))
	if err != nil {
		return nil, err
	}

	superadmin := &Superadmin{
		ID:       uuidv7.New(),
		Code:     code,
		FullName: input.FullName,
		Email:    input.Email,
		IsActive: true,
	}
	if err := gateway.superadmins.Create(context, superadmin); err != nil {
		return nil, err
	}

	err = gateway.credentials.repo.Create(context, &Credential{
		ID:           uuidv7.New(),
		SuperadminID: &superadmin.ID,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	gateway.logger.Info("superadmin created", "superadmin_id", superadmin.ID, "code", superadmin.Code)
	return superadmin, nil
}

// ListSuperadmins retrieves all live superadmins.
func (gateway *Gateway) ListSuperadmins(context context.Context) ([]*Superadmin, error) {
	return gateway.superadmins.List(context)
}

// GrantCredentialInput holds the data to grant a login credential. Exactly
// one of StaffID or SuperadminID must be set.
type GrantCredentialInput struct {
	StaffID      *string `json:"staff_id,omitempty"`
	SuperadminID *string `json:"superadmin_id,omitempty"`
	Password     string  `json:"password"`
}

// GrantCredential creates the credential for an identity that has none yet.
func (gateway *Gateway) GrantCredential(context context.Context, input GrantCredentialInput) error {
	v := &validate.Validator{}
	v.Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8).
		Custom(FieldStaffID, (input.StaffID == nil) == (input.SuperadminID == nil),
			"Exactly one of staff_id or superadmin_id must be set")
	if err := v.Err(); err != nil {
		return err
	}

	// The owner must exist and be live.
	if input.StaffID != nil {
		if _, err := gateway.principals.ResolveStaffByID(context, *input.StaffID); err != nil {
			return err
		}
	} else {
		if _, err := gateway.superadmins.FindByID(context, *input.SuperadminID); err != nil {
			return err
		}
	}

	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return err
	}

	return gateway.credentials.repo.Create(context, &Credential{
		ID:           uuidv7.New(),
		StaffID:      input.StaffID,
		SuperadminID: input.SuperadminID,
		PasswordHash: hash,
	})
}

// SetPasswordInput holds the data to replace an identity's password.
type SetPasswordInput struct {
	StaffID      *string `json:"staff_id,omitempty"`
	SuperadminID *string `json:"superadmin_id,omitempty"`
	Password     string  `json:"password"`
}

// SetPassword replaces an identity's password. The change is an implicit
// unlock: failure counter and lock are reset with the hash.
func (gateway *Gateway) SetPassword(context context.Context, input SetPasswordInput) error {
	v := &validate.Validator{}
	v.Custom(FieldStaffID, (input.StaffID == nil) == (input.SuperadminID == nil),
		"Exactly one of staff_id or superadmin_id must be set")
	if err := v.Err(); err != nil {
		return err
	}

	var credential *Credential
	var err error
	if input.StaffID != nil {
		credential, err = gateway.credentials.repo.FindByStaffID(context, *input.StaffID)
	} else {
		credential, err = gateway.credentials.repo.FindBySuperadminID(context, *input.SuperadminID)
	}
	if err != nil {
		return err
	}

	return gateway.credentials.SetPassword(context, credential.ID, input.Password)
}

// GrantServiceAccessInput holds the data to grant a staff member a sub-role
// within an external service.
type GrantServiceAccessInput struct {
	StaffID string `json:"staff_id"`
	Service string `json:"service"`
	Role    string `json:"role"`
}

// GrantServiceAccess creates or rewrites the single grant for a (staff,
// service) pair.
func (gateway *Gateway) GrantServiceAccess(context context.Context, input GrantServiceAccessInput) (*ServiceAccess, error) {
	input.Service = strings.ToLower(strings.TrimSpace(input.Service))

	v := &validate.Validator{}
	err := v.Required(FieldStaffID, input.StaffID).
		UUID(FieldStaffID, input.StaffID).
		Required(FieldService, input.Service).
		Required(FieldRole, input.Role).
		OneOf(FieldRole, input.Role, ServiceRoles...).
		Err()
	if err != nil {
		return nil, err
	}

	if _, err := gateway.principals.ResolveStaffByID(context, input.StaffID); err != nil {
		return nil, err
	}

	access := &ServiceAccess{
		ID:       uuidv7.New(),
		StaffID:  input.StaffID,
		Service:  input.Service,
		Role:     input.Role,
		IsActive: true,
	}
	if err := gateway.serviceAccess.Grant(context, access); err != nil {
		return nil, err
	}

	return access, nil
}

// ListServiceAccess returns every live grant the staff member holds.
func (gateway *Gateway) ListServiceAccess(context context.Context, staffID string) ([]*ServiceAccess, error) {
	if _, err := gateway.principals.ResolveStaffByID(context, staffID); err != nil {
		return nil, err
	}
	return gateway.serviceAccess.ListForStaff(context, staffID)
}

// # Blacklist Maintenance

// PurgeExpiredBlacklist removes blacklist rows whose tokens expired on their
// own and returns how many were deleted.
func (gateway *Gateway) PurgeExpiredBlacklist(context context.Context) (int64, error) {
	return gateway.blacklist.PurgeExpired(context)
}

// StartBlacklistSweeper runs the periodic purge until ctx is cancelled.
// Intended to be launched once from main as a background goroutine.
func (gateway *Gateway) StartBlacklistSweeper(ctx context.Context) {
	ticker := time.NewTicker(constants.BlacklistSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := gateway.PurgeExpiredBlacklist(ctx)
			if err != nil {
				gateway.logger.Error("blacklist sweep failed", "error", err)
				continue
			}
			if count > 0 {
				gateway.logger.Info("blacklist swept", "purged", count)
			}
		}
	}
}
