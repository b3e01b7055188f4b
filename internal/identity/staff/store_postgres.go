// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

package staff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kadrio/kadrio/internal/platform/apperr"
	"github.com/kadrio/kadrio/pkg/pagination"
)

// # Staff Repository

// PostgresRepository implements the [Repository] interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of the Repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const staffColumns = `
	id, sequencecode, compositecode, fullname, email, phone, nationalid,
	gender, joiningdate, isactive, isdeleted, deletedat, deletedby,
	createdat, updatedat`

func scanStaff(row pgx.Row) (*Staff, error) {
	s := &Staff{}
	err := row.Scan(
		&s.ID, &s.SequenceCode, &s.CompositeCode, &s.FullName, &s.Email,
		&s.Phone, &s.NationalID, &s.Gender, &s.JoiningDate, &s.IsActive,
		&s.IsDeleted, &s.DeletedAt, &s.DeletedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

/*
Create persists a staff member with their initial primary assignment.

Description: Runs in one transaction: insert the staff row, insert the
assignment row as primary, resolve the organizational unit context, compose
the composite code, and store it. A composition failure (unresolvable unit
prefix) rolls the entire creation back.

Parameters:
  - context: context.Context
  - staff: *Staff (SequenceCode must already be allocated)
  - assignment: *Assignment (the initial primary assignment)
  - compose: ComposeFunc

Returns:
  - error: Constraint violations, composition failures, or connectivity errors
*/
func (repository *PostgresRepository) Create(context context.Context, staff *Staff, assignment *Assignment, compose ComposeFunc) error {
	tx, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_staff_repo_begin_failed: %w", err)
	}
	defer tx.Rollback(context)

	now := time.Now()
	staff.CreatedAt = now
	staff.UpdatedAt = now

	const insertStaff = `
		INSERT INTO identity.staff (
			id, sequencecode, compositecode, fullname, email, phone, nationalid,
			gender, joiningdate, isactive, isdeleted, createdat, updatedat
		) VALUES ($1, $2, '', $3, $4, $5, $6, $7, $8, $9, FALSE, $10, $11)`

	_, err = tx.Exec(context, insertStaff,
		staff.ID,
		staff.SequenceCode,
		staff.FullName,
		staff.Email,
		staff.Phone,
		staff.NationalID,
		staff.Gender,
		staff.JoiningDate,
		staff.IsActive,
		staff.CreatedAt,
		staff.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_staff_repo_create_failed: %w", err)
	}

	if err := upsertAssignment(context, tx, assignment); err != nil {
		return err
	}

	unit, err := resolveUnitContext(context, tx, assignment)
	if err != nil {
		return err
	}

	code, err := compose(unit, assignment)
	if err != nil {
		return err
	}

	const setCode = `
		UPDATE identity.staff SET compositecode = $2, updatedat = NOW() WHERE id = $1`

	if _, err := tx.Exec(context, setCode, staff.ID, code); err != nil {
		return fmt.Errorf("postgres_staff_repo_set_code_failed: %w", err)
	}
	staff.CompositeCode = code

	if err := tx.Commit(context); err != nil {
		return fmt.Errorf("postgres_staff_repo_commit_failed: %w", err)
	}

	return nil
}

// FindByID retrieves a staff member by UUID, excluding soft-deleted rows.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Staff, error) {
	query := `SELECT ` + staffColumns + `
		FROM identity.staff WHERE id = $1 AND isdeleted = FALSE`

	s, err := scanStaff(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Staff member")
		}
		return nil, fmt.Errorf("postgres_staff_repo_find_by_id_failed: %w", err)
	}

	return s, nil
}

// FindByCompositeCode retrieves a staff member by composite code, excluding
// soft-deleted rows. This is the login-code lookup path.
func (repository *PostgresRepository) FindByCompositeCode(context context.Context, code string) (*Staff, error) {
	query := `SELECT ` + staffColumns + `
		FROM identity.staff WHERE compositecode = $1 AND isdeleted = FALSE`

	s, err := scanStaff(repository.pool.QueryRow(context, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Staff member")
		}
		return nil, fmt.Errorf("postgres_staff_repo_find_by_code_failed: %w", err)
	}

	return s, nil
}

/*
List retrieves a page of staff members with an optional search filter.

Parameters:
  - context: context.Context
  - params: pagination.Params
  - search: string (matched against names, emails, and both code columns)

Returns:
  - []*Staff: The requested page, newest first
  - int: Total matching rows (for pagination metadata)
  - error: Database errors
*/
func (repository *PostgresRepository) List(context context.Context, params pagination.Params, search string) ([]*Staff, int, error) {
	where := `WHERE isdeleted = FALSE`
	args := []any{}
	if search != "" {
		where += ` AND (fullname ILIKE $1 OR email ILIKE $1 OR compositecode ILIKE $1 OR sequencecode ILIKE $1)`
		args = append(args, "%"+search+"%")
	}

	countQuery := `SELECT COUNT(*) FROM identity.staff ` + where

	var total int
	if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_staff_repo_count_failed: %w", err)
	}

	query := fmt.Sprintf(`SELECT `+staffColumns+`
		FROM identity.staff %s
		ORDER BY createdat DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset())

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_staff_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var members []*Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_staff_repo_scan_failed: %w", err)
		}
		members = append(members, s)
	}

	return members, total, nil
}

/*
SavePrimaryAssignment makes the given assignment the staff member's primary one.

Description: A single transaction enforces the at-most-one-primary invariant
under concurrent edits: the staff row is locked first, every other assignment
is demoted, the new assignment is upserted as primary, and only then is the
composite code composed from the resolved unit context and stored. The lock
serializes simultaneous saves for the same staff member; the demote step runs
unconditionally so the invariant holds even under out-of-order writes.

Parameters:
  - context: context.Context
  - assignment: *Assignment
  - compose: ComposeFunc (invoked inside the transaction)

Returns:
  - oldCode: The composite code before the save
  - newCode: The composite code after the save (equal to oldCode if unchanged)
  - err: apperr.NotFound, composition failures, or database errors
*/
func (repository *PostgresRepository) SavePrimaryAssignment(context context.Context, assignment *Assignment, compose ComposeFunc) (string, string, error) {
	tx, err := repository.pool.Begin(context)
	if err != nil {
		return "", "", fmt.Errorf("postgres_staff_repo_begin_failed: %w", err)
	}
	defer tx.Rollback(context)

	// Serialize concurrent primary-assignment saves per staff member.
	const lockStaff = `
		SELECT compositecode FROM identity.staff
		WHERE id = $1 AND isdeleted = FALSE
		FOR UPDATE`

	var oldCode string
	if err := tx.QueryRow(context, lockStaff, assignment.StaffID).Scan(&oldCode); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", apperr.NotFound("Staff member")
		}
		return "", "", fmt.Errorf("postgres_staff_repo_lock_failed: %w", err)
	}

	// Demote before composing, unconditionally.
	const demote = `
		UPDATE identity.assignment
		SET isprimary = FALSE, updatedat = NOW()
		WHERE staffid = $1 AND id <> $2 AND isprimary = TRUE`

	if _, err := tx.Exec(context, demote, assignment.StaffID, assignment.ID); err != nil {
		return "", "", fmt.Errorf("postgres_staff_repo_demote_failed: %w", err)
	}

	assignment.IsPrimary = true
	if err := upsertAssignment(context, tx, assignment); err != nil {
		return "", "", err
	}

	unit, err := resolveUnitContext(context, tx, assignment)
	if err != nil {
		return "", "", err
	}

	newCode, err := compose(unit, assignment)
	if err != nil {
		return "", "", err
	}

	if newCode != oldCode {
		const setCode = `
			UPDATE identity.staff SET compositecode = $2, updatedat = NOW() WHERE id = $1`

		if _, err := tx.Exec(context, setCode, assignment.StaffID, newCode); err != nil {
			return "", "", fmt.Errorf("postgres_staff_repo_set_code_failed: %w", err)
		}
	}

	if err := tx.Commit(context); err != nil {
		return "", "", fmt.Errorf("postgres_staff_repo_commit_failed: %w", err)
	}

	return oldCode, newCode, nil
}

// ListAssignments retrieves all live assignments of a staff member, primary first.
func (repository *PostgresRepository) ListAssignments(context context.Context, staffID string) ([]*Assignment, error) {
	const query = `
		SELECT id, staffid, departmentid, designationid, branchid, institutionid,
		       organizationid, shift, joiningdate, isprimary, isactive, isdeleted,
		       createdat, updatedat
		FROM identity.assignment
		WHERE staffid = $1 AND isdeleted = FALSE
		ORDER BY isprimary DESC, createdat ASC`

	rows, err := repository.pool.Query(context, query, staffID)
	if err != nil {
		return nil, fmt.Errorf("postgres_staff_repo_list_assignments_failed: %w", err)
	}
	defer rows.Close()

	var assignments []*Assignment
	for rows.Next() {
		a := &Assignment{}
		err := rows.Scan(
			&a.ID, &a.StaffID, &a.DepartmentID, &a.DesignationID, &a.BranchID,
			&a.InstitutionID, &a.OrganizationID, &a.Shift, &a.JoiningDate,
			&a.IsPrimary, &a.IsActive, &a.IsDeleted, &a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_staff_repo_scan_assignment_failed: %w", err)
		}
		assignments = append(assignments, a)
	}

	return assignments, nil
}

/*
SoftDelete marks a staff member and their assignments deleted.

Description: The staff row keeps existing so credentials and issued tokens
still resolve their foreign keys; deletion is attributed to the acting
principal from the request metadata.

Parameters:
  - context: context.Context
  - id: string (staff UUID)
  - meta: RequestContext

Returns:
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) SoftDelete(context context.Context, id string, meta RequestContext) error {
	tx, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_staff_repo_begin_failed: %w", err)
	}
	defer tx.Rollback(context)

	const deleteStaff = `
		UPDATE identity.staff
		SET isdeleted = TRUE, isactive = FALSE, deletedat = NOW(), deletedby = $2, updatedat = NOW()
		WHERE id = $1 AND isdeleted = FALSE`

	tag, err := tx.Exec(context, deleteStaff, id, meta.ActorID)
	if err != nil {
		return fmt.Errorf("postgres_staff_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Staff member")
	}

	const deleteAssignments = `
		UPDATE identity.assignment
		SET isdeleted = TRUE, isactive = FALSE, updatedat = NOW()
		WHERE staffid = $1 AND isdeleted = FALSE`

	if _, err := tx.Exec(context, deleteAssignments, id); err != nil {
		return fmt.Errorf("postgres_staff_repo_delete_assignments_failed: %w", err)
	}

	if err := tx.Commit(context); err != nil {
		return fmt.Errorf("postgres_staff_repo_commit_failed: %w", err)
	}

	return nil
}

// # Transaction Helpers

// upsertAssignment inserts the assignment or, when the ID already exists,
// rewrites its scope, shift, and primary flag in place.
func upsertAssignment(context context.Context, tx pgx.Tx, assignment *Assignment) error {
	const query = `
		INSERT INTO identity.assignment (
			id, staffid, departmentid, designationid, branchid, institutionid,
			organizationid, shift, joiningdate, isprimary, isactive, isdeleted,
			createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, FALSE, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			departmentid = EXCLUDED.departmentid,
			designationid = EXCLUDED.designationid,
			branchid = EXCLUDED.branchid,
			institutionid = EXCLUDED.institutionid,
			organizationid = EXCLUDED.organizationid,
			shift = EXCLUDED.shift,
			joiningdate = EXCLUDED.joiningdate,
			isprimary = EXCLUDED.isprimary,
			isactive = EXCLUDED.isactive,
			updatedat = NOW()`

	_, err := tx.Exec(context, query,
		assignment.ID,
		assignment.StaffID,
		assignment.DepartmentID,
		assignment.DesignationID,
		assignment.BranchID,
		assignment.InstitutionID,
		assignment.OrganizationID,
		assignment.Shift,
		assignment.JoiningDate,
		assignment.IsPrimary,
		assignment.IsActive,
	)
	if err != nil {
		return fmt.Errorf("postgres_staff_repo_save_assignment_failed: %w", err)
	}

	return nil
}

// resolveUnitContext collects the organizational codes an assignment can see,
// in one round-trip, for composite-code derivation.
func resolveUnitContext(context context.Context, tx pgx.Tx, assignment *Assignment) (UnitContext, error) {
	const query = `
		SELECT
			(SELECT code FROM identity.branch WHERE id = $1 AND isdeleted = FALSE),
			(SELECT code FROM identity.institution WHERE id = $2 AND isdeleted = FALSE),
			(SELECT code FROM identity.organization WHERE id = $3 AND isdeleted = FALSE),
			d.code,
			d.institutionid IS NULL AND d.branchid IS NULL,
			g.code
		FROM identity.department d, identity.designation g
		WHERE d.id = $4 AND d.isdeleted = FALSE
		  AND g.id = $5 AND g.departmentid = d.id AND g.isdeleted = FALSE`

	var unit UnitContext
	err := tx.QueryRow(context, query,
		assignment.BranchID,
		assignment.InstitutionID,
		assignment.OrganizationID,
		assignment.DepartmentID,
		assignment.DesignationID,
	).Scan(
		&unit.BranchCode,
		&unit.InstitutionCode,
		&unit.OrganizationCode,
		&unit.DepartmentCode,
		&unit.DepartmentGlobal,
		&unit.DesignationCode,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UnitContext{}, apperr.NotFound("Department or designation")
		}
		return UnitContext{}, fmt.Errorf("postgres_staff_repo_unit_context_failed: %w", err)
	}

	return unit, nil
}
