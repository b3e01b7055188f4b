// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

// Storage layer for the authentication domain using PostgreSQL.
//
// # Architecture
//
// Repositories here are strictly separated from domain logic. They implement
// the domain-defined interfaces (e.g. [CredentialRepository]) using the
// [pgxpool.Pool] connection manager.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kadrio/kadrio/internal/platform/apperr"
)

// # Principal Repository

// PostgresPrincipalRepository implements [PrincipalRepository] using pgx.
type PostgresPrincipalRepository struct {
	pool *pgxpool.Pool
}

// NewPrincipalRepository creates a new PostgreSQL implementation of the PrincipalRepository.
func NewPrincipalRepository(pool *pgxpool.Pool) *PostgresPrincipalRepository {
	return &PostgresPrincipalRepository{pool: pool}
}

const resolveStaffQuery = `
	SELECT s.id, s.compositecode, s.fullname, s.email,
	       COALESCE(d.name, ''), COALESCE(g.name, ''), s.isactive
	FROM identity.staff s
	LEFT JOIN identity.assignment a
	       ON a.staffid = s.id AND a.isprimary = TRUE AND a.isdeleted = FALSE
	LEFT JOIN identity.department d ON d.id = a.departmentid
	LEFT JOIN identity.designation g ON g.id = a.designationid
	WHERE %s AND s.isdeleted = FALSE`

func (repository *PostgresPrincipalRepository) resolveStaff(context context.Context, filter string, arg any) (*Principal, error) {
	query := fmt.Sprintf(resolveStaffQuery, filter)

	p := &Principal{Kind: PrincipalStaff}
	err := repository.pool.QueryRow(context, query, arg).Scan(
		&p.ID, &p.Code, &p.FullName, &p.Email, &p.UnitName, &p.RoleName, &p.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Staff member")
		}
		return nil, fmt.Errorf("postgres_principal_repo_resolve_failed: %w", err)
	}

	return p, nil
}

/*
ResolveStaffByCode resolves a staff principal by composite code.

Description: Denormalizes the primary assignment's department and designation
names in the same round-trip; these ride inside issued access tokens so
callers can authorize without further lookups.

Parameters:
  - context: context.Context
  - code: string (composite login code)

Returns:
  - *Principal: Tagged staff principal
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresPrincipalRepository) ResolveStaffByCode(context context.Context, code string) (*Principal, error) {
	return repository.resolveStaff(context, "s.compositecode = $1", code)
}

// ResolveStaffByID resolves a staff principal by UUID.
func (repository *PostgresPrincipalRepository) ResolveStaffByID(context context.Context, id string) (*Principal, error) {
	return repository.resolveStaff(context, "s.id = $1", id)
}

// # Credential Repository

// PostgresCredentialRepository implements [CredentialRepository] using pgx.
type PostgresCredentialRepository struct {
	pool *pgxpool.Pool
}

// NewCredentialRepository creates a new PostgreSQL implementation of the CredentialRepository.
func NewCredentialRepository(pool *pgxpool.Pool) *PostgresCredentialRepository {
	return &PostgresCredentialRepository{pool: pool}
}

const credentialColumns = `
	id, staffid, superadminid, passwordhash, failedattempts, lockeduntil,
	lastlogin, lastloginip, isdeleted, createdat, updatedat`

func scanCredential(row pgx.Row) (*Credential, error) {
	c := &Credential{}
	err := row.Scan(
		&c.ID, &c.StaffID, &c.SuperadminID, &c.PasswordHash, &c.FailedAttempts,
		&c.LockedUntil, &c.LastLogin, &c.LastLoginIP, &c.IsDeleted,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create persists a new credential row. The exactly-one-owner rule is also
// enforced by a table CHECK constraint.
func (repository *PostgresCredentialRepository) Create(context context.Context, credential *Credential) error {
	const query = `
		INSERT INTO auth.credential (
			id, staffid, superadminid, passwordhash, failedattempts, isdeleted,
			createdat, updatedat
		) VALUES ($1, $2, $3, $4, 0, FALSE, NOW(), NOW())`

	_, err := repository.pool.Exec(context, query,
		credential.ID,
		credential.StaffID,
		credential.SuperadminID,
		credential.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("postgres_credential_repo_create_failed: %w", err)
	}

	return nil
}

// FindByStaffID retrieves the credential owned by a staff member.
func (repository *PostgresCredentialRepository) FindByStaffID(context context.Context, staffID string) (*Credential, error) {
	query := `SELECT ` + credentialColumns + `
		FROM auth.credential WHERE staffid = $1 AND isdeleted = FALSE`

	c, err := scanCredential(repository.pool.QueryRow(context, query, staffID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Credential")
		}
		return nil, fmt.Errorf("postgres_credential_repo_find_failed: %w", err)
	}

	return c, nil
}

// FindBySuperadminID retrieves the credential owned by a superadmin.
func (repository *PostgresCredentialRepository) FindBySuperadminID(context context.Context, superadminID string) (*Credential, error) {
	query := `SELECT ` + credentialColumns + `
		FROM auth.credential WHERE superadminid = $1 AND isdeleted = FALSE`

	c, err := scanCredential(repository.pool.QueryRow(context, query, superadminID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Credential")
		}
		return nil, fmt.Errorf("postgres_credential_repo_find_failed: %w", err)
	}

	return c, nil
}

/*
RecordFailure registers one failed attempt in a single atomic statement.

Description: The increment and the lock transition happen in one UPDATE so
concurrent failures cannot race past the threshold. The lock is set only when
the counter freshly reaches the threshold outside an active window — further
failures while locked (or after the window lapsed without a reset) keep
counting but never start a new window.

Parameters:
  - context: context.Context
  - id: string (credential UUID)

Returns:
  - int: failed_attempts after the increment
  - *time.Time: locked_until after the transition
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresCredentialRepository) RecordFailure(context context.Context, id string) (int, *time.Time, error) {
	const query = `
		UPDATE auth.credential
		SET failedattempts = failedattempts + 1,
		    lockeduntil = CASE
		        WHEN failedattempts + 1 = $2 AND (lockeduntil IS NULL OR lockeduntil <= NOW())
		        THEN NOW() + make_interval(mins => $3)
		        ELSE lockeduntil
		    END,
		    updatedat = NOW()
		WHERE id = $1 AND isdeleted = FALSE
		RETURNING failedattempts, lockeduntil`

	var attempts int
	var lockedUntil *time.Time
	err := repository.pool.QueryRow(context, query,
		id, MaxFailedAttempts, int(LockoutDuration.Minutes()),
	).Scan(&attempts, &lockedUntil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil, apperr.NotFound("Credential")
		}
		return 0, nil, fmt.Errorf("postgres_credential_repo_record_failure_failed: %w", err)
	}

	return attempts, lockedUntil, nil
}

// RecordSuccess resets the failure counter, clears any lock, and stamps the
// last successful login with its source IP.
func (repository *PostgresCredentialRepository) RecordSuccess(context context.Context, id string, ip string) error {
	const query = `
		UPDATE auth.credential
		SET failedattempts = 0, lockeduntil = NULL,
		    lastlogin = NOW(), lastloginip = $2, updatedat = NOW()
		WHERE id = $1 AND isdeleted = FALSE`

	tag, err := repository.pool.Exec(context, query, id, ip)
	if err != nil {
		return fmt.Errorf("postgres_credential_repo_record_success_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Credential")
	}

	return nil
}

// SetPassword replaces the hash and resets counter and lock.
func (repository *PostgresCredentialRepository) SetPassword(context context.Context, id string, passwordHash string) error {
	const query = `
		UPDATE auth.credential
		SET passwordhash = $2, failedattempts = 0, lockeduntil = NULL, updatedat = NOW()
		WHERE id = $1 AND isdeleted = FALSE`

	tag, err := repository.pool.Exec(context, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("postgres_credential_repo_set_password_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Credential")
	}

	return nil
}

// # Refresh Token Repository

// PostgresRefreshTokenRepository implements [RefreshTokenRepository] using pgx.
type PostgresRefreshTokenRepository struct {
	pool *pgxpool.Pool
}

// NewRefreshTokenRepository creates a new PostgreSQL implementation of the RefreshTokenRepository.
func NewRefreshTokenRepository(pool *pgxpool.Pool) *PostgresRefreshTokenRepository {
	return &PostgresRefreshTokenRepository{pool: pool}
}

// Record persists an issued refresh token.
func (repository *PostgresRefreshTokenRepository) Record(context context.Context, token *RefreshToken) error {
	const query = `
		INSERT INTO auth.refreshtoken (
			id, principalkind, principalid, token, expiresat, isrevoked,
			device, ipaddress, createdat
		) VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7, NOW())`

	_, err := repository.pool.Exec(context, query,
		token.ID,
		token.PrincipalKind,
		token.PrincipalID,
		token.Token,
		token.ExpiresAt,
		token.Device,
		token.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("postgres_refresh_token_repo_record_failed: %w", err)
	}

	return nil
}

/*
IsValid reports whether a refresh token is acceptable for its principal.

Description: The row must exist for this exact principal, not be revoked, and
not be expired. Cryptographic validity is checked separately by the token
service — both checks must pass.

Parameters:
  - context: context.Context
  - token: string (raw refresh token)
  - principalID: string

Returns:
  - bool: Whether the registry accepts the token
  - error: Database errors
*/
func (repository *PostgresRefreshTokenRepository) IsValid(context context.Context, token string, principalID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM auth.refreshtoken
			WHERE token = $1 AND principalid = $2
			  AND isrevoked = FALSE AND expiresat > NOW()
		)`

	var valid bool
	if err := repository.pool.QueryRow(context, query, token, principalID).Scan(&valid); err != nil {
		return false, fmt.Errorf("postgres_refresh_token_repo_is_valid_failed: %w", err)
	}

	return valid, nil
}

// RevokeAll revokes every live refresh token of a principal.
func (repository *PostgresRefreshTokenRepository) RevokeAll(context context.Context, principalID string) error {
	const query = `
		UPDATE auth.refreshtoken
		SET isrevoked = TRUE
		WHERE principalid = $1 AND isrevoked = FALSE`

	if _, err := repository.pool.Exec(context, query, principalID); err != nil {
		return fmt.Errorf("postgres_refresh_token_repo_revoke_all_failed: %w", err)
	}

	return nil
}

// # Blacklist Repository

// PostgresBlacklistRepository implements [BlacklistRepository] using pgx.
// It is the durable tier; [RedisBlacklistCache] sits in front of it.
type PostgresBlacklistRepository struct {
	pool *pgxpool.Pool
}

// NewBlacklistRepository creates a new PostgreSQL implementation of the BlacklistRepository.
func NewBlacklistRepository(pool *pgxpool.Pool) *PostgresBlacklistRepository {
	return &PostgresBlacklistRepository{pool: pool}
}

// Blacklist records an access token as invalidated. Re-blacklisting the same
// token (a repeated logout) is a no-op.
func (repository *PostgresBlacklistRepository) Blacklist(context context.Context, token string, expiresAt time.Time, reason string) error {
	const query = `
		INSERT INTO auth.blacklistedtoken (id, token, expiresat, reason, createdat)
		VALUES (gen_random_uuid(), $1, $2, $3, NOW())
		ON CONFLICT (token) DO NOTHING`

	if _, err := repository.pool.Exec(context, query, token, expiresAt, reason); err != nil {
		return fmt.Errorf("postgres_blacklist_repo_insert_failed: %w", err)
	}

	return nil
}

// IsBlacklisted reports whether an access token was invalidated and has not
// yet naturally expired.
func (repository *PostgresBlacklistRepository) IsBlacklisted(context context.Context, token string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM auth.blacklistedtoken
			WHERE token = $1 AND expiresat > NOW()
		)`

	var revoked bool
	if err := repository.pool.QueryRow(context, query, token).Scan(&revoked); err != nil {
		return false, fmt.Errorf("postgres_blacklist_repo_lookup_failed: %w", err)
	}

	return revoked, nil
}

// PurgeExpired deletes blacklist rows whose tokens expired on their own.
// Safe at any time: expiresat is copied from the token's own claim.
func (repository *PostgresBlacklistRepository) PurgeExpired(context context.Context) (int64, error) {
	const query = `DELETE FROM auth.blacklistedtoken WHERE expiresat <= NOW()`

	tag, err := repository.pool.Exec(context, query)
	if err != nil {
		return 0, fmt.Errorf("postgres_blacklist_repo_purge_failed: %w", err)
	}

	return tag.RowsAffected(), nil
}

// # Superadmin Repository

// PostgresSuperadminRepository implements [SuperadminRepository] using pgx.
type PostgresSuperadminRepository struct {
	pool *pgxpool.Pool
}

// NewSuperadminRepository creates a new PostgreSQL implementation of the SuperadminRepository.
func NewSuperadminRepository(pool *pgxpool.Pool) *PostgresSuperadminRepository {
	return &PostgresSuperadminRepository{pool: pool}
}

const superadminColumns = `
	id, code, fullname, email, isactive, isdeleted, deletedat, createdat, updatedat`

func scanSuperadmin(row pgx.Row) (*Superadmin, error) {
	s := &Superadmin{}
	err := row.Scan(
		&s.ID, &s.Code, &s.FullName, &s.Email, &s.IsActive, &s.IsDeleted,
		&s.DeletedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create persists a new superadmin row.
func (repository *PostgresSuperadminRepository) Create(context context.Context, superadmin *Superadmin) error {
	const query = `
		INSERT INTO auth.superadmin (
			id, code, fullname, email, isactive, isdeleted, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, FALSE, NOW(), NOW())`

	_, err := repository.pool.Exec(context, query,
		superadmin.ID,
		superadmin.Code,
		superadmin.FullName,
		superadmin.Email,
		superadmin.IsActive,
	)
	if err != nil {
		return fmt.Errorf("postgres_superadmin_repo_create_failed: %w", err)
	}

	return nil
}

// FindByCode retrieves an active superadmin by their "S-YY-NNNN" code.
func (repository *PostgresSuperadminRepository) FindByCode(context context.Context, code string) (*Superadmin, error) {
	query := `SELECT ` + superadminColumns + `
		FROM auth.superadmin WHERE code = $1 AND isdeleted = FALSE`

	s, err := scanSuperadmin(repository.pool.QueryRow(context, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Superadmin")
		}
		return nil, fmt.Errorf("postgres_superadmin_repo_find_failed: %w", err)
	}

	return s, nil
}

// FindByID retrieves a superadmin by UUID.
func (repository *PostgresSuperadminRepository) FindByID(context context.Context, id string) (*Superadmin, error) {
	query := `SELECT ` + superadminColumns + `
		FROM auth.superadmin WHERE id = $1 AND isdeleted = FALSE`

	s, err := scanSuperadmin(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Superadmin")
		}
		return nil, fmt.Errorf("postgres_superadmin_repo_find_failed: %w", err)
	}

	return s, nil
}

// List retrieves all live superadmins, oldest code first.
func (repository *PostgresSuperadminRepository) List(context context.Context) ([]*Superadmin, error) {
	query := `SELECT ` + superadminColumns + `
		FROM auth.superadmin WHERE isdeleted = FALSE ORDER BY code ASC`

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_superadmin_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var superadmins []*Superadmin
	for rows.Next() {
		s, err := scanSuperadmin(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_superadmin_repo_scan_failed: %w", err)
		}
		superadmins = append(superadmins, s)
	}

	return superadmins, nil
}

// # Service Access Repository

// PostgresServiceAccessRepository implements [ServiceAccessRepository] using pgx.
type PostgresServiceAccessRepository struct {
	pool *pgxpool.Pool
}

// NewServiceAccessRepository creates a new PostgreSQL implementation of the ServiceAccessRepository.
func NewServiceAccessRepository(pool *pgxpool.Pool) *PostgresServiceAccessRepository {
	return &PostgresServiceAccessRepository{pool: pool}
}

// Grant creates or rewrites the single grant for a (staff, service) pair.
func (repository *PostgresServiceAccessRepository) Grant(context context.Context, access *ServiceAccess) error {
	const query = `
		INSERT INTO auth.serviceaccess (
			id, staffid, service, role, isactive, isdeleted, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, FALSE, NOW(), NOW())
		ON CONFLICT (staffid, service) DO UPDATE SET
			role = EXCLUDED.role,
			isactive = EXCLUDED.isactive,
			isdeleted = FALSE,
			updatedat = NOW()`

	_, err := repository.pool.Exec(context, query,
		access.ID,
		access.StaffID,
		access.Service,
		access.Role,
		access.IsActive,
	)
	if err != nil {
		return fmt.Errorf("postgres_service_access_repo_grant_failed: %w", err)
	}

	return nil
}

// FindForStaff retrieves the active, non-deleted grant of a staff member on
// one service.
func (repository *PostgresServiceAccessRepository) FindForStaff(context context.Context, staffID string, service string) (*ServiceAccess, error) {
	const query = `
		SELECT id, staffid, service, role, isactive, isdeleted, createdat, updatedat
		FROM auth.serviceaccess
		WHERE staffid = $1 AND service = $2 AND isactive = TRUE AND isdeleted = FALSE`

	a := &ServiceAccess{}
	err := repository.pool.QueryRow(context, query, staffID, service).Scan(
		&a.ID, &a.StaffID, &a.Service, &a.Role, &a.IsActive, &a.IsDeleted,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Service access")
		}
		return nil, fmt.Errorf("postgres_service_access_repo_find_failed: %w", err)
	}

	return a, nil
}

// ListForStaff retrieves all live grants of a staff member.
func (repository *PostgresServiceAccessRepository) ListForStaff(context context.Context, staffID string) ([]*ServiceAccess, error) {
	const query = `
		SELECT id, staffid, service, role, isactive, isdeleted, createdat, updatedat
		FROM auth.serviceaccess
		WHERE staffid = $1 AND isdeleted = FALSE
		ORDER BY service ASC`

	rows, err := repository.pool.Query(context, query, staffID)
	if err != nil {
		return nil, fmt.Errorf("postgres_service_access_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var grants []*ServiceAccess
	for rows.Next() {
		a := &ServiceAccess{}
		err := rows.Scan(
			&a.ID, &a.StaffID, &a.Service, &a.Role, &a.IsActive, &a.IsDeleted,
			&a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_service_access_repo_scan_failed: %w", err)
		}
		grants = append(grants, a)
	}

	return grants, nil
}
