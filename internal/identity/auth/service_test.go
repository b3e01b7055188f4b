// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadrio/kadrio/internal/identity/sequence"
	"github.com/kadrio/kadrio/internal/platform/apperr"
	"github.com/kadrio/kadrio/internal/platform/sec"
	"github.com/kadrio/kadrio/pkg/pointer"
	"github.com/kadrio/kadrio/pkg/uuidv7"
)

// # In-Memory Fakes

type fakePrincipalRepository struct {
	mu    sync.Mutex
	staff map[string]*Principal // keyed by ID
}

func (f *fakePrincipalRepository) ResolveStaffByCode(_ context.Context, code string) (*Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.staff {
		if p.Code == code {
			copied := *p
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Staff member")
}

func (f *fakePrincipalRepository) ResolveStaffByID(_ context.Context, id string) (*Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.staff[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, apperr.NotFound("Staff member")
}

// fakeCredentialRepository mirrors the atomic RecordFailure semantics of the
// Postgres repository: increment always, lock only on a fresh threshold reach
// outside an active window.
type fakeCredentialRepository struct {
	mu    sync.Mutex
	creds map[string]*Credential
}

func (f *fakeCredentialRepository) Create(_ context.Context, credential *Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *credential
	f.creds[credential.ID] = &copied
	return nil
}

func (f *fakeCredentialRepository) findBy(match func(*Credential) bool) (*Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.creds {
		if match(c) {
			copied := *c
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Credential")
}

func (f *fakeCredentialRepository) FindByStaffID(_ context.Context, staffID string) (*Credential, error) {
	return f.findBy(func(c *Credential) bool { return c.StaffID != nil && *c.StaffID == staffID })
}

func (f *fakeCredentialRepository) FindBySuperadminID(_ context.Context, superadminID string) (*Credential, error) {
	return f.findBy(func(c *Credential) bool { return c.SuperadminID != nil && *c.SuperadminID == superadminID })
}

func (f *fakeCredentialRepository) RecordFailure(_ context.Context, id string) (int, *time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.creds[id]
	if !ok {
		return 0, nil, apperr.NotFound("Credential")
	}
	c.FailedAttempts++
	windowActive := c.LockedUntil != nil && c.LockedUntil.After(time.Now())
	if c.FailedAttempts == MaxFailedAttempts && !windowActive {
		until := time.Now().Add(LockoutDuration)
		c.LockedUntil = &until
	}
	var lockedUntil *time.Time
	if c.LockedUntil != nil {
		u := *c.LockedUntil
		lockedUntil = &u
	}
	return c.FailedAttempts, lockedUntil, nil
}

func (f *fakeCredentialRepository) RecordSuccess(_ context.Context, id string, ip string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.creds[id]
	if !ok {
		return apperr.NotFound("Credential")
	}
	c.FailedAttempts = 0
	c.LockedUntil = nil
	now := time.Now()
	c.LastLogin = &now
	c.LastLoginIP = &ip
	return nil
}

func (f *fakeCredentialRepository) SetPassword(_ context.Context, id string, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.creds[id]
	if !ok {
		return apperr.NotFound("Credential")
	}
	c.PasswordHash = hash
	c.FailedAttempts = 0
	c.LockedUntil = nil
	return nil
}

type fakeRefreshTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]*RefreshToken // keyed by token string
}

func (f *fakeRefreshTokenRepository) Record(_ context.Context, token *RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *token
	f.tokens[token.Token] = &copied
	return nil
}

func (f *fakeRefreshTokenRepository) IsValid(_ context.Context, token string, principalID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return false, nil
	}
	return t.PrincipalID == principalID && !t.IsRevoked && t.ExpiresAt.After(time.Now()), nil
}

func (f *fakeRefreshTokenRepository) RevokeAll(_ context.Context, principalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.PrincipalID == principalID {
			t.IsRevoked = true
		}
	}
	return nil
}

type fakeBlacklistRepository struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

func (f *fakeBlacklistRepository) Blacklist(_ context.Context, token string, expiresAt time.Time, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = expiresAt
	return nil
}

func (f *fakeBlacklistRepository) IsBlacklisted(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	expiry, ok := f.tokens[token]
	return ok && expiry.After(time.Now()), nil
}

func (f *fakeBlacklistRepository) PurgeExpired(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var purged int64
	for token, expiry := range f.tokens {
		if !expiry.After(time.Now()) {
			delete(f.tokens, token)
			purged++
		}
	}
	return purged, nil
}

type fakeSuperadminRepository struct {
	mu     sync.Mutex
	admins map[string]*Superadmin
}

func (f *fakeSuperadminRepository) Create(_ context.Context, superadmin *Superadmin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *superadmin
	f.admins[superadmin.ID] = &copied
	return nil
}

func (f *fakeSuperadminRepository) FindByCode(_ context.Context, code string) (*Superadmin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.admins {
		if s.Code == code {
			copied := *s
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Superadmin")
}

func (f *fakeSuperadminRepository) FindByID(_ context.Context, id string) (*Superadmin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.admins[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, apperr.NotFound("Superadmin")
}

func (f *fakeSuperadminRepository) List(_ context.Context) ([]*Superadmin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Superadmin
	for _, s := range f.admins {
		copied := *s
		out = append(out, &copied)
	}
	return out, nil
}

type fakeServiceAccessRepository struct {
	mu     sync.Mutex
	grants map[string]*ServiceAccess // keyed by staffID+"/"+service
}

func (f *fakeServiceAccessRepository) Grant(_ context.Context, access *ServiceAccess) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *access
	f.grants[access.StaffID+"/"+access.Service] = &copied
	return nil
}

func (f *fakeServiceAccessRepository) FindForStaff(_ context.Context, staffID string, service string) (*ServiceAccess, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.grants[staffID+"/"+service]; ok && g.IsActive && !g.IsDeleted {
		copied := *g
		return &copied, nil
	}
	return nil, apperr.NotFound("Service access")
}

func (f *fakeServiceAccessRepository) ListForStaff(_ context.Context, staffID string) ([]*ServiceAccess, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*ServiceAccess
	for _, g := range f.grants {
		if g.StaffID == staffID && !g.IsDeleted {
			copied := *g
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeSequenceStore struct {
	mu       sync.Mutex
	counters map[string]int64
}

func (f *fakeSequenceStore) Increment(_ context.Context, name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.counters[name]; !ok {
		return 0, sequence.ErrNoCounter
	}
	f.counters[name]++
	return f.counters[name], nil
}

func (f *fakeSequenceStore) InitAndIncrement(_ context.Context, name string, seed int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.counters[name]; !ok {
		f.counters[name] = seed
	}
	f.counters[name]++
	return f.counters[name], nil
}

func (f *fakeSequenceStore) LastIssued(_ context.Context, _ string, _ string) (int64, error) {
	return 0, nil
}

// # Test Harness

type gatewayHarness struct {
	gateway       *Gateway
	principals    *fakePrincipalRepository
	credentials   *fakeCredentialRepository
	refreshTokens *fakeRefreshTokenRepository
	blacklist     *fakeBlacklistRepository
	superadmins   *fakeSuperadminRepository
	serviceAccess *fakeServiceAccessRepository
	tokens        *sec.TokenService
}

func newGatewayHarness(t *testing.T) *gatewayHarness {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tokens := sec.NewTokenServiceFromKey(privateKey, "identity.test")

	h := &gatewayHarness{
		principals:    &fakePrincipalRepository{staff: make(map[string]*Principal)},
		credentials:   &fakeCredentialRepository{creds: make(map[string]*Credential)},
		refreshTokens: &fakeRefreshTokenRepository{tokens: make(map[string]*RefreshToken)},
		blacklist:     &fakeBlacklistRepository{tokens: make(map[string]time.Time)},
		superadmins:   &fakeSuperadminRepository{admins: make(map[string]*Superadmin)},
		serviceAccess: &fakeServiceAccessRepository{grants: make(map[string]*ServiceAccess)},
		tokens:        tokens,
	}

	allocator := sequence.NewAllocator(&fakeSequenceStore{counters: make(map[string]int64)})
	h.gateway = NewGateway(
		h.principals,
		NewCredentialStore(h.credentials),
		h.superadmins,
		h.serviceAccess,
		h.refreshTokens,
		h.blacklist,
		tokens,
		allocator,
		slog.New(slog.NewJSONHandler(io.Discard, nil)),
	)
	return h
}

const testPassword = "correct-horse-battery"

// seedStaff registers an active staff principal with a credential.
func (h *gatewayHarness) seedStaff(t *testing.T, code string) *Principal {
	t.Helper()

	p := &Principal{
		Kind:     PrincipalStaff,
		ID:       uuidv7.New(),
		Code:     code,
		FullName: "Amina Rahman",
		Email:    "amina@kadrio.io",
		UnitName: "Finance",
		RoleName: "Accountant",
		IsActive: true,
	}
	h.principals.mu.Lock()
	h.principals.staff[p.ID] = p
	h.principals.mu.Unlock()

	hash, err := sec.HashPassword(testPassword)
	require.NoError(t, err)
	require.NoError(t, h.credentials.Create(context.Background(), &Credential{
		ID:           uuidv7.New(),
		StaffID:      pointer.To(p.ID),
		PasswordHash: hash,
	}))
	return p
}

func (h *gatewayHarness) credentialFor(t *testing.T, p *Principal) *Credential {
	t.Helper()
	c, err := h.credentials.FindByStaffID(context.Background(), p.ID)
	require.NoError(t, err)
	return c
}

var meta = RequestMeta{IP: "10.0.0.1", Device: "test-agent"}

// # Login

func TestLoginSucceeds(t *testing.T) {
	h := newGatewayHarness(t)
	p := h.seedStaff(t, "C01-G-25-T-0001")

	result, err := h.gateway.Login(context.Background(), p.Code, testPassword, meta)
	require.NoError(t, err)

	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, 3600, result.ExpiresIn)
	assert.Equal(t, p.ID, result.Identity.ID)
	assert.Equal(t, PrincipalStaff, result.Identity.Kind)

	// Scenario: the decoded access token carries type "access" with a
	// 3600-second lifetime.
	claims, err := h.tokens.Verify(result.AccessToken, sec.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, sec.TokenTypeAccess, claims.TokenType)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt))
	assert.Equal(t, p.ID, claims.Subject)
	assert.False(t, claims.IsSuperadmin)

	// Success resets the failure counter and stamps the login.
	credential := h.credentialFor(t, p)
	assert.Zero(t, credential.FailedAttempts)
	assert.NotNil(t, credential.LastLogin)
	assert.Equal(t, "10.0.0.1", *credential.LastLoginIP)
}

func TestLoginUnknownCodeAndWrongPasswordAreIndistinguishable(t *testing.T) {
	h := newGatewayHarness(t)
	p := h.seedStaff(t, "C01-G-25-T-0001")

	_, unknownErr := h.gateway.Login(context.Background(), "C99-G-25-T-9999", testPassword, meta)
	_, wrongErr := h.gateway.Login(context.Background(), p.Code, "wrong-password", meta)

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	assert.Equal(t, apperr.As(unknownErr).Code, apperr.As(wrongErr).Code)
}

func TestLoginInactiveStaffRejected(t *testing.T) {
	h := newGatewayHarness(t)
	p := h.seedStaff(t, "C01-G-25-T-0001")
	h.principals.staff[p.ID].IsActive = false

	_, err := h.gateway.Login(context.Background(), p.Code, testPassword, meta)
	require.Error(t, err)
	assert.Equal(t, "INVALID_CREDENTIALS", apperr.As(err).Code)
}

func TestLoginSuperadminFallback(t *testing.T) {
	h := newGatewayHarness(t)

	admin, err := h.gateway.CreateSuperadmin(context.Background(), CreateSuperadminInput{
		FullName: "Root Operator",
		Email:    "root@kadrio.io",
		Password: testPassword,
	})
	require.NoError(t, err)
	assert.Regexp(t, `^S-\d{2}-0001$`, admin.Code)

	// Lowercase input still resolves: superadmin codes are uppercased.
	result, err := h.gateway.Login(context.Background(), strings.ToLower(admin.Code), testPassword, meta)
	require.NoError(t, err)
	assert.Equal(t, PrincipalSuperadmin, result.Identity.Kind)
	assert.True(t, result.Identity.IsSuperadmin)
}

// # Lockout

func TestLockoutThreshold(t *testing.T) {
	h := newGatewayHarness(t)
	p := h.seedStaff(t, "C01-G-25-T-0001")

	// Four failures: still invalid_credentials.
	for i := 0; i < MaxFailedAttempts-1; i++ {
		_, err := h.gateway.Login(context.Background(), p.Code, "wrong", meta)
		require.Error(t, err)
		assert.Equal(t, "INVALID_CREDENTIALS", apperr.As(err).Code)
	}

	// Scenario: the fifth failure trips the lock and is itself answered
	// with "locked", not "invalid credentials".
	_, err := h.gateway.Login(context.Background(), p.Code, "wrong", meta)
	require.Error(t, err)
	appErr := apperr.As(err)
	assert.Equal(t, "ACCOUNT_LOCKED", appErr.Code)
	assert.NotEmpty(t, appErr.Meta["locked_until"])

	credential := h.credentialFor(t, p)
	assert.Equal(t, MaxFailedAttempts, credential.FailedAttempts)
	require.NotNil(t, credential.LockedUntil)
	lockedUntil := *credential.LockedUntil

	// A correct password during the window is still rejected as locked and
	// does not touch the counter.
	_, err = h.gateway.Login(context.Background(), p.Code, testPassword, meta)
	require.Error(t, err)
	assert.Equal(t, "ACCOUNT_LOCKED", apperr.As(err).Code)
	assert.Equal(t, MaxFailedAttempts, h.credentialFor(t, p).FailedAttempts)

	// A sixth failure while locked would keep counting but never extend
	// the window. The gateway rejects before verification, so drive the
	// store directly the way a bypassing caller would.
	store := NewCredentialStore(h.credentials)
	attempts, newLockedUntil, err := store.RecordFailure(context.Background(), credential.ID)
	require.NoError(t, err)
	assert.Equal(t, MaxFailedAttempts+1, attempts)
	require.NotNil(t, newLockedUntil)
	assert.True(t, newLockedUntil.Equal(lockedUntil), "lock window must not extend")
}

func TestLockoutResetOnSuccessAndPasswordChange(t *testing.T) {
	h := newGatewayHarness(t)
	p := h.seedStaff(t, "C01-G-25-T-0001")
	credential := h.credentialFor(t, p)
	store := NewCredentialStore(h.credentials)

	for i := 0; i < MaxFailedAttempts; i++ {
		_, _, err := store.RecordFailure(context.Background(), credential.ID)
		require.NoError(t, err)
	}
	assert.True(t, store.IsLocked(h.credentialFor(t, p)))

	require.NoError(t, store.RecordSuccess(context.Background(), credential.ID, "10.0.0.1"))
	after := h.credentialFor(t, p)
	assert.Zero(t, after.FailedAttempts)
	assert.False(t, store.IsLocked(after))

	for i := 0; i < MaxFailedAttempts; i++ {
		_, _, err := store.RecordFailure(context.Background(), credential.ID)
		require.NoError(t, err)
	}
	assert.True(t, store.IsLocked(h.credentialFor(t, p)))

	require.NoError(t, store.SetPassword(context.Background(), credential.ID, "fresh-password-1"))
	after = h.credentialFor(t, p)
	assert.Zero(t, after.FailedAttempts)
	assert.False(t, store.IsLocked(after))
}

// # Token Types & Refresh

func TestTokenTypeIsolation(t *testing.T) {
	h := newGatewayHarness(t)
	p := h.seedStaff(t, "C01-G-25-T-0001")

	result, err := h.gateway.Login(context.Background(), p.Code, testPassword, meta)
	require.NoError(t, err)

	_, err = h.tokens.Verify(result.RefreshToken, sec.TokenTypeAccess)
	assert.Error(t, err, "refresh token must not verify as access")

	_, err = h.tokens.Verify(result.AccessToken, sec.TokenTypeRefresh)
	assert.Error(t, err, "access token must not verify as refresh")
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	h := newGatewayHarness(t)
	p := h.seedStaff(t, "C01-G-25-T-0001")

	result, err := h.gateway.Login(context.Background(), p.Code, testPassword, meta)
	require.NoError(t, err)

	refreshed, err := h.gateway.Refresh(context.Background(), result.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, 3600, refreshed.ExpiresIn)

	claims, err := h.tokens.Verify(refreshed.AccessToken, sec.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, p.ID, claims.Subject)
}

func TestRefreshDualValidity(t *testing.T) {
	h := newGatewayHarness(t)
	p := h.seedStaff(t, "C01-G-25-T-0001")

	result, err := h.gateway.Login(context.Background(), p.Code, testPassword, meta)
	require.NoError(t, err)

	// Cryptographically valid, but the registry row is revoked.
	require.NoError(t, h.refreshTokens.RevokeAll(context.Background(), p.ID))

	_, err = h.gateway.Refresh(context.Background(), result.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, "TOKEN_INVALID", apperr.As(err).Code)

	// Cryptographically valid but never recorded: same rejection.
	orphan, err := h.tokens.IssueRefresh(p.Subject(), RefreshTokenTTL)
	require.NoError(t, err)
	_, err = h.gateway.Refresh(context.Background(), orphan)
	require.Error(t, err)
	assert.Equal(t, "TOKEN_INVALID", apperr.As(err).Code)
}

func TestRefreshRejectsDeactivatedIdentity(t *testing.T) {
	h := newGatewayHarness(t)
	p := h.seedStaff(t, "C01-G-25-T-0001")

	result, err := h.gateway.Login(context.Background(), p.Code, testPassword, meta)
	require.NoError(t, err)

	h.principals.staff[p.ID].IsActive = false

	_, err = h.gateway.Refresh(context.Background(), result.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, "TOKEN_INVALID", apperr.As(err).Code)
}

// # Logout

func TestLogoutIsAccountWide(t *testing.T) {
	h := newGatewayHarness(t)
	p := h.seedStaff(t, "C01-G-25-T-0001")

	// Two sessions from different devices.
	first, err := h.gateway.Login(context.Background(), p.Code, testPassword, meta)
	require.NoError(t, err)
	second, err := h.gateway.Login(context.Background(), p.Code, testPassword, RequestMeta{IP: "10.0.0.2", Device: "other"})
	require.NoError(t, err)

	claims, err := h.tokens.Verify(first.AccessToken, sec.TokenTypeAccess)
	require.NoError(t, err)
	require.NoError(t, h.gateway.Logout(context.Background(), first.AccessToken, claims))

	// The presented access token is blacklisted with its own expiry.
	revoked, err := h.blacklist.IsBlacklisted(context.Background(), first.AccessToken)
	require.NoError(t, err)
	assert.True(t, revoked)

	// Every refresh token is revoked, including the other device's.
	_, err = h.gateway.Refresh(context.Background(), first.RefreshToken)
	assert.Error(t, err)
	_, err = h.gateway.Refresh(context.Background(), second.RefreshToken)
	assert.Error(t, err)
}

// # Scoped Login

func TestLoginScoped(t *testing.T) {
	h := newGatewayHarness(t)
	p := h.seedStaff(t, "C01-G-25-T-0001")

	_, err := h.gateway.GrantServiceAccess(context.Background(), GrantServiceAccessInput{
		StaffID: p.ID,
		Service: "helpdesk",
		Role:    RoleModerator,
	})
	require.NoError(t, err)

	t.Run("matching role succeeds with scoped claims", func(t *testing.T) {
		result, err := h.gateway.LoginScoped(context.Background(), p.Code, testPassword, "helpdesk", RoleModerator, meta)
		require.NoError(t, err)

		claims, err := h.tokens.Verify(result.AccessToken, sec.TokenTypeAccess)
		require.NoError(t, err)
		assert.Equal(t, "helpdesk", claims.Extra["service"])
		assert.Equal(t, RoleModerator, claims.Extra["role"])
	})

	t.Run("no role requested accepts assigned role", func(t *testing.T) {
		result, err := h.gateway.LoginScoped(context.Background(), p.Code, testPassword, "helpdesk", "", meta)
		require.NoError(t, err)

		claims, err := h.tokens.Verify(result.AccessToken, sec.TokenTypeAccess)
		require.NoError(t, err)
		assert.Equal(t, RoleModerator, claims.Extra["role"])
	})

	t.Run("role mismatch reports the assigned role", func(t *testing.T) {
		_, err := h.gateway.LoginScoped(context.Background(), p.Code, testPassword, "helpdesk", RoleAdmin, meta)
		require.Error(t, err)

		appErr := apperr.As(err)
		assert.Equal(t, "ROLE_MISMATCH", appErr.Code)
		assert.Equal(t, RoleModerator, appErr.Meta["assigned_role"])
	})

	t.Run("no grant at all is a distinct rejection", func(t *testing.T) {
		_, err := h.gateway.LoginScoped(context.Background(), p.Code, testPassword, "payroll", RoleAdmin, meta)
		require.Error(t, err)
		assert.Equal(t, "NO_SERVICE_ACCESS", apperr.As(err).Code)
	})

	t.Run("wrong password still counts before the gate", func(t *testing.T) {
		_, err := h.gateway.LoginScoped(context.Background(), p.Code, "wrong", "helpdesk", RoleModerator, meta)
		require.Error(t, err)
		assert.Equal(t, "INVALID_CREDENTIALS", apperr.As(err).Code)
		assert.Equal(t, 1, h.credentialFor(t, p).FailedAttempts)
	})
}

// # WhoAmI & Maintenance

func TestWhoAmIReflectsCurrentState(t *testing.T) {
	h := newGatewayHarness(t)
	p := h.seedStaff(t, "C01-G-25-T-0001")

	result, err := h.gateway.Login(context.Background(), p.Code, testPassword, meta)
	require.NoError(t, err)
	claims, err := h.tokens.Verify(result.AccessToken, sec.TokenTypeAccess)
	require.NoError(t, err)

	identity, err := h.gateway.WhoAmI(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, p.Code, identity.Code)
	assert.Equal(t, "Finance", identity.UnitName)

	// Deleting the identity invalidates whoami even with a live token.
	h.principals.mu.Lock()
	delete(h.principals.staff, p.ID)
	h.principals.mu.Unlock()

	_, err = h.gateway.WhoAmI(context.Background(), claims)
	require.Error(t, err)
	assert.Equal(t, "TOKEN_INVALID", apperr.As(err).Code)
}

func TestPurgeExpiredBlacklist(t *testing.T) {
	h := newGatewayHarness(t)

	require.NoError(t, h.blacklist.Blacklist(context.Background(), "expired", time.Now().Add(-time.Minute), BlacklistReasonLogout))
	require.NoError(t, h.blacklist.Blacklist(context.Background(), "live", time.Now().Add(time.Hour), BlacklistReasonLogout))

	purged, err := h.gateway.PurgeExpiredBlacklist(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	still, err := h.blacklist.IsBlacklisted(context.Background(), "live")
	require.NoError(t, err)
	assert.True(t, still)
}
