package orgunit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kadrio/kadrio/internal/platform/database/schema"
	"github.com/kadrio/kadrio/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Organizations

func (repository *PostgresRepository) CreateOrganization(context context.Context, organization *Organization) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, NOW(), NOW());
	`,
		schema.IdentityOrganization.Table,
		schema.IdentityOrganization.ID,
		schema.IdentityOrganization.Code,
		schema.IdentityOrganization.Name,
		schema.IdentityOrganization.CreatedAt,
		schema.IdentityOrganization.UpdatedAt,
	)

	_, err := repository.db.Exec(context, query, organization.ID, organization.Code, organization.Name)
	return dberr.Wrap(err, "create_organization")
}

func (repository *PostgresRepository) ListOrganizations(context context.Context) ([]*Organization, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = FALSE
		ORDER BY %s ASC;
	`,
		schema.IdentityOrganization.ID,
		schema.IdentityOrganization.Code,
		schema.IdentityOrganization.Name,
		schema.IdentityOrganization.CreatedAt,
		schema.IdentityOrganization.UpdatedAt,
		schema.IdentityOrganization.Table,
		schema.IdentityOrganization.IsDeleted,
		schema.IdentityOrganization.Code,
	)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_organizations")
	}
	defer rows.Close()

	var organizations []*Organization
	for rows.Next() {
		o := &Organization{}
		if err := rows.Scan(&o.ID, &o.Code, &o.Name, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_organization")
		}
		organizations = append(organizations, o)
	}

	return organizations, nil
}

func (repository *PostgresRepository) GetOrganizationByID(context context.Context, id string) (*Organization, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = FALSE;
	`,
		schema.IdentityOrganization.ID,
		schema.IdentityOrganization.Code,
		schema.IdentityOrganization.Name,
		schema.IdentityOrganization.CreatedAt,
		schema.IdentityOrganization.UpdatedAt,
		schema.IdentityOrganization.Table,
		schema.IdentityOrganization.ID,
		schema.IdentityOrganization.IsDeleted,
	)

	o := &Organization{}
	err := repository.db.QueryRow(context, query, id).Scan(&o.ID, &o.Code, &o.Name, &o.CreatedAt, &o.UpdatedAt)
	return o, dberr.Wrap(err, "get_organization")
}

// # Institutions

func (repository *PostgresRepository) CreateInstitution(context context.Context, institution *Institution) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NOW(), NOW());
	`,
		schema.IdentityInstitution.Table,
		schema.IdentityInstitution.ID,
		schema.IdentityInstitution.OrganizationID,
		schema.IdentityInstitution.Code,
		schema.IdentityInstitution.Name,
		schema.IdentityInstitution.CreatedAt,
		schema.IdentityInstitution.UpdatedAt,
	)

	_, err := repository.db.Exec(context, query,
		institution.ID, institution.OrganizationID, institution.Code, institution.Name)
	return dberr.Wrap(err, "create_institution")
}

func (repository *PostgresRepository) ListInstitutions(context context.Context) ([]*Institution, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = FALSE
		ORDER BY %s ASC;
	`,
		schema.IdentityInstitution.ID,
		schema.IdentityInstitution.OrganizationID,
		schema.IdentityInstitution.Code,
		schema.IdentityInstitution.Name,
		schema.IdentityInstitution.CreatedAt,
		schema.IdentityInstitution.UpdatedAt,
		schema.IdentityInstitution.Table,
		schema.IdentityInstitution.IsDeleted,
		schema.IdentityInstitution.Code,
	)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_institutions")
	}
	defer rows.Close()

	var institutions []*Institution
	for rows.Next() {
		i := &Institution{}
		if err := rows.Scan(&i.ID, &i.OrganizationID, &i.Code, &i.Name, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_institution")
		}
		institutions = append(institutions, i)
	}

	return institutions, nil
}

func (repository *PostgresRepository) GetInstitutionByID(context context.Context, id string) (*Institution, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = FALSE;
	`,
		schema.IdentityInstitution.ID,
		schema.IdentityInstitution.OrganizationID,
		schema.IdentityInstitution.Code,
		schema.IdentityInstitution.Name,
		schema.IdentityInstitution.CreatedAt,
		schema.IdentityInstitution.UpdatedAt,
		schema.IdentityInstitution.Table,
		schema.IdentityInstitution.ID,
		schema.IdentityInstitution.IsDeleted,
	)

	i := &Institution{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&i.ID, &i.OrganizationID, &i.Code, &i.Name, &i.CreatedAt, &i.UpdatedAt)
	return i, dberr.Wrap(err, "get_institution")
}

// # Branches

func (repository *PostgresRepository) CreateBranch(context context.Context, branch *Branch) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NOW(), NOW());
	`,
		schema.IdentityBranch.Table,
		schema.IdentityBranch.ID,
		schema.IdentityBranch.InstitutionID,
		schema.IdentityBranch.Code,
		schema.IdentityBranch.Name,
		schema.IdentityBranch.CreatedAt,
		schema.IdentityBranch.UpdatedAt,
	)

	_, err := repository.db.Exec(context, query, branch.ID, branch.InstitutionID, branch.Code, branch.Name)
	return dberr.Wrap(err, "create_branch")
}

func (repository *PostgresRepository) ListBranches(context context.Context) ([]*Branch, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = FALSE
		ORDER BY %s ASC;
	`,
		schema.IdentityBranch.ID,
		schema.IdentityBranch.InstitutionID,
		schema.IdentityBranch.Code,
		schema.IdentityBranch.Name,
		schema.IdentityBranch.CreatedAt,
		schema.IdentityBranch.UpdatedAt,
		schema.IdentityBranch.Table,
		schema.IdentityBranch.IsDeleted,
		schema.IdentityBranch.Code,
	)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_branches")
	}
	defer rows.Close()

	var branches []*Branch
	for rows.Next() {
		b := &Branch{}
		if err := rows.Scan(&b.ID, &b.InstitutionID, &b.Code, &b.Name, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_branch")
		}
		branches = append(branches, b)
	}

	return branches, nil
}

func (repository *PostgresRepository) GetBranchByID(context context.Context, id string) (*Branch, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = FALSE;
	`,
		schema.IdentityBranch.ID,
		schema.IdentityBranch.InstitutionID,
		schema.IdentityBranch.Code,
		schema.IdentityBranch.Name,
		schema.IdentityBranch.CreatedAt,
		schema.IdentityBranch.UpdatedAt,
		schema.IdentityBranch.Table,
		schema.IdentityBranch.ID,
		schema.IdentityBranch.IsDeleted,
	)

	b := &Branch{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&b.ID, &b.InstitutionID, &b.Code, &b.Name, &b.CreatedAt, &b.UpdatedAt)
	return b, dberr.Wrap(err, "get_branch")
}

// # Departments

func (repository *PostgresRepository) CreateDepartment(context context.Context, department *Department) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW());
	`,
		schema.IdentityDepartment.Table,
		schema.IdentityDepartment.ID,
		schema.IdentityDepartment.RegistryCode,
		schema.IdentityDepartment.Code,
		schema.IdentityDepartment.Name,
		schema.IdentityDepartment.Sector,
		schema.IdentityDepartment.InstitutionID,
		schema.IdentityDepartment.BranchID,
		schema.IdentityDepartment.CreatedAt,
		schema.IdentityDepartment.UpdatedAt,
	)

	_, err := repository.db.Exec(context, query,
		department.ID,
		department.RegistryCode,
		department.Code,
		department.Name,
		department.Sector,
		department.InstitutionID,
		department.BranchID,
	)
	return dberr.Wrap(err, "create_department")
}

func (repository *PostgresRepository) ListDepartments(context context.Context) ([]*Department, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = FALSE
		ORDER BY %s ASC;
	`,
		schema.IdentityDepartment.ID,
		schema.IdentityDepartment.RegistryCode,
		schema.IdentityDepartment.Code,
		schema.IdentityDepartment.Name,
		schema.IdentityDepartment.Sector,
		schema.IdentityDepartment.InstitutionID,
		schema.IdentityDepartment.BranchID,
		schema.IdentityDepartment.CreatedAt,
		schema.IdentityDepartment.UpdatedAt,
		schema.IdentityDepartment.Table,
		schema.IdentityDepartment.IsDeleted,
		schema.IdentityDepartment.RegistryCode,
	)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_departments")
	}
	defer rows.Close()

	var departments []*Department
	for rows.Next() {
		d := &Department{}
		err := rows.Scan(
			&d.ID, &d.RegistryCode, &d.Code, &d.Name, &d.Sector,
			&d.InstitutionID, &d.BranchID, &d.CreatedAt, &d.UpdatedAt,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_department")
		}
		departments = append(departments, d)
	}

	return departments, nil
}

func (repository *PostgresRepository) GetDepartmentByID(context context.Context, id string) (*Department, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = FALSE;
	`,
		schema.IdentityDepartment.ID,
		schema.IdentityDepartment.RegistryCode,
		schema.IdentityDepartment.Code,
		schema.IdentityDepartment.Name,
		schema.IdentityDepartment.Sector,
		schema.IdentityDepartment.InstitutionID,
		schema.IdentityDepartment.BranchID,
		schema.IdentityDepartment.CreatedAt,
		schema.IdentityDepartment.UpdatedAt,
		schema.IdentityDepartment.Table,
		schema.IdentityDepartment.ID,
		schema.IdentityDepartment.IsDeleted,
	)

	d := &Department{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&d.ID, &d.RegistryCode, &d.Code, &d.Name, &d.Sector,
		&d.InstitutionID, &d.BranchID, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, dberr.Wrap(err, "get_department")
}

// # Designations

func (repository *PostgresRepository) CreateDesignation(context context.Context, designation *Designation) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NOW(), NOW());
	`,
		schema.IdentityDesignation.Table,
		schema.IdentityDesignation.ID,
		schema.IdentityDesignation.DepartmentID,
		schema.IdentityDesignation.Code,
		schema.IdentityDesignation.Name,
		schema.IdentityDesignation.CreatedAt,
		schema.IdentityDesignation.UpdatedAt,
	)

	_, err := repository.db.Exec(context, query,
		designation.ID, designation.DepartmentID, designation.Code, designation.Name)
	return dberr.Wrap(err, "create_designation")
}

func (repository *PostgresRepository) ListDesignationsByDepartment(context context.Context, departmentID string) ([]*Designation, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = FALSE
		ORDER BY %s ASC;
	`,
		schema.IdentityDesignation.ID,
		schema.IdentityDesignation.DepartmentID,
		schema.IdentityDesignation.Code,
		schema.IdentityDesignation.Name,
		schema.IdentityDesignation.CreatedAt,
		schema.IdentityDesignation.UpdatedAt,
		schema.IdentityDesignation.Table,
		schema.IdentityDesignation.DepartmentID,
		schema.IdentityDesignation.IsDeleted,
		schema.IdentityDesignation.Name,
	)

	rows, err := repository.db.Query(context, query, departmentID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_designations")
	}
	defer rows.Close()

	var designations []*Designation
	for rows.Next() {
		d := &Designation{}
		if err := rows.Scan(&d.ID, &d.DepartmentID, &d.Code, &d.Name, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_designation")
		}
		designations = append(designations, d)
	}

	return designations, nil
}

func (repository *PostgresRepository) GetDesignationByID(context context.Context, id string) (*Designation, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = FALSE;
	`,
		schema.IdentityDesignation.ID,
		schema.IdentityDesignation.DepartmentID,
		schema.IdentityDesignation.Code,
		schema.IdentityDesignation.Name,
		schema.IdentityDesignation.CreatedAt,
		schema.IdentityDesignation.UpdatedAt,
		schema.IdentityDesignation.Table,
		schema.IdentityDesignation.ID,
		schema.IdentityDesignation.IsDeleted,
	)

	d := &Designation{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&d.ID, &d.DepartmentID, &d.Code, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	return d, dberr.Wrap(err, "get_designation")
}
