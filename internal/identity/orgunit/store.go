package orgunit

import "context"

// Repository defines the data access contract for the org-structure registry.
type Repository interface {
	CreateOrganization(context context.Context, organization *Organization) error
	ListOrganizations(context context.Context) ([]*Organization, error)
	GetOrganizationByID(context context.Context, id string) (*Organization, error)

	CreateInstitution(context context.Context, institution *Institution) error
	ListInstitutions(context context.Context) ([]*Institution, error)
	GetInstitutionByID(context context.Context, id string) (*Institution, error)

	CreateBranch(context context.Context, branch *Branch) error
	ListBranches(context context.Context) ([]*Branch, error)
	GetBranchByID(context context.Context, id string) (*Branch, error)

	CreateDepartment(context context.Context, department *Department) error
	ListDepartments(context context.Context) ([]*Department, error)
	GetDepartmentByID(context context.Context, id string) (*Department, error)

	CreateDesignation(context context.Context, designation *Designation) error
	ListDesignationsByDepartment(context context.Context, departmentID string) ([]*Designation, error)
	GetDesignationByID(context context.Context, id string) (*Designation, error)
}
