package orgunit

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kadrio/kadrio/internal/identity/sequence"
	"github.com/kadrio/kadrio/internal/platform/apperr"
	"github.com/kadrio/kadrio/internal/platform/validate"
	"github.com/kadrio/kadrio/pkg/uuidv7"
)

type Service struct {
	repo      Repository
	allocator *sequence.Allocator
	orgPrefix string
	logger    *slog.Logger
}

func NewService(repo Repository, allocator *sequence.Allocator, orgPrefix string, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		allocator: allocator,
		orgPrefix: orgPrefix,
		logger:    logger,
	}
}

type CreateOrganizationInput struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (service *Service) CreateOrganization(context context.Context, input CreateOrganizationInput) (*Organization, error) {
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	input.Name = strings.TrimSpace(input.Name)

	v := &validate.Validator{}
	err := v.Required("code", input.Code).
		Code("code", input.Code).
		MaxLen("code", input.Code, 10).
		Required("name", input.Name).
		MaxLen("name", input.Name, 255).
		Err()
	if err != nil {
		return nil, err
	}

	organization := &Organization{
		ID:   uuidv7.New(),
		Code: input.Code,
		Name: input.Name,
	}

	if err := service.repo.CreateOrganization(context, organization); err != nil {
		return nil, err
	}

	service.logger.Info("organization created", "organization_id", organization.ID, "code", organization.Code)
	return service.repo.GetOrganizationByID(context, organization.ID)
}

func (service *Service) ListOrganizations(context context.Context) ([]*Organization, error) {
	return service.repo.ListOrganizations(context)
}

func (service *Service) GetOrganization(context context.Context, id string) (*Organization, error) {
	return service.repo.GetOrganizationByID(context, id)
}

type CreateInstitutionInput struct {
	OrganizationID string `json:"organization_id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
}

func (service *Service) CreateInstitution(context context.Context, input CreateInstitutionInput) (*Institution, error) {
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	input.Name = strings.TrimSpace(input.Name)

	v := &validate.Validator{}
	err := v.Required("organization_id", input.OrganizationID).
		UUID("organization_id", input.OrganizationID).
		Required("code", input.Code).
		Code("code", input.Code).
		MaxLen("code", input.Code, 10).
		Required("name", input.Name).
		MaxLen("name", input.Name, 255).
		Err()
	if err != nil {
		return nil, err
	}

	// Parent must exist and be live.
	if _, err := service.repo.GetOrganizationByID(context, input.OrganizationID); err != nil {
		return nil, err
	}

	institution := &Institution{
		ID:             uuidv7.New(),
		OrganizationID: input.OrganizationID,
		Code:           input.Code,
		Name:           input.Name,
	}

	if err := service.repo.CreateInstitution(context, institution); err != nil {
		return nil, err
	}

	service.logger.Info("institution created", "institution_id", institution.ID, "code", institution.Code)
	return service.repo.GetInstitutionByID(context, institution.ID)
}

func (service *Service) ListInstitutions(context context.Context) ([]*Institution, error) {
	return service.repo.ListInstitutions(context)
}

func (service *Service) GetInstitution(context context.Context, id string) (*Institution, error) {
	return service.repo.GetInstitutionByID(context, id)
}

type CreateBranchInput struct {
	InstitutionID string `json:"institution_id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
}

func (service *Service) CreateBranch(context context.Context, input CreateBranchInput) (*Branch, error) {
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	input.Name = strings.TrimSpace(input.Name)

	v := &validate.Validator{}
	err := v.Required("institution_id", input.InstitutionID).
		UUID("institution_id", input.InstitutionID).
		Required("code", input.Code).
		Code("code", input.Code).
		MaxLen("code", input.Code, 10).
		Required("name", input.Name).
		MaxLen("name", input.Name, 255).
		Err()
	if err != nil {
		return nil, err
	}

	if _, err := service.repo.GetInstitutionByID(context, input.InstitutionID); err != nil {
		return nil, err
	}

	branch := &Branch{
		ID:            uuidv7.New(),
		InstitutionID: input.InstitutionID,
		Code:          input.Code,
		Name:          input.Name,
	}

	if err := service.repo.CreateBranch(context, branch); err != nil {
		return nil, err
	}

	service.logger.Info("branch created", "branch_id", branch.ID, "code", branch.Code)
	return service.repo.GetBranchByID(context, branch.ID)
}

func (service *Service) ListBranches(context context.Context) ([]*Branch, error) {
	return service.repo.ListBranches(context)
}

func (service *Service) GetBranch(context context.Context, id string) (*Branch, error) {
	return service.repo.GetBranchByID(context, id)
}

type CreateDepartmentInput struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Sector        string  `json:"sector"`
	InstitutionID *string `json:"institution_id,omitempty"`
	BranchID      *string `json:"branch_id,omitempty"`
}

func (service *Service) CreateDepartment(context context.Context, input CreateDepartmentInput) (*Department, error) {
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	input.Name = strings.TrimSpace(input.Name)
	input.Sector = strings.ToLower(strings.TrimSpace(input.Sector))

	v := &validate.Validator{}
	v.Required("code", input.Code).
		Code("code", input.Code).
		MaxLen("code", input.Code, 10).
		Required("name", input.Name).
		MaxLen("name", input.Name, 255).
		Required("sector", input.Sector).
		OneOf("sector", input.Sector, Sectors...)
	if input.InstitutionID != nil && input.BranchID != nil {
		v.Custom("branch_id", true, "A department is scoped to an institution or a branch, not both")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if input.InstitutionID != nil {
		if _, err := service.repo.GetInstitutionByID(context, *input.InstitutionID); err != nil {
			return nil, err
		}
	}
	if input.BranchID != nil {
		if _, err := service.repo.GetBranchByID(context, *input.BranchID); err != nil {
			return nil, err
		}
	}

	registryCode, err := service.allocator.Next(context, sequence.Department(service.orgPrefix))
	if err != nil {
		return nil, err
	}

	department := &Department{
		ID:            uuidv7.New(),
		RegistryCode:  registryCode,
		Code:          input.Code,
		Name:          input.Name,
		Sector:        input.Sector,
		InstitutionID: input.InstitutionID,
		BranchID:      input.BranchID,
	}

	if err := service.repo.CreateDepartment(context, department); err != nil {
		return nil, err
	}

	service.logger.Info("department created",
		"department_id", department.ID,
		"registry_code", department.RegistryCode,
		"code", department.Code,
	)
	return service.repo.GetDepartmentByID(context, department.ID)
}

func (service *Service) ListDepartments(context context.Context) ([]*Department, error) {
	return service.repo.ListDepartments(context)
}

func (service *Service) GetDepartment(context context.Context, id string) (*Department, error) {
	return service.repo.GetDepartmentByID(context, id)
}

type CreateDesignationInput struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (service *Service) CreateDesignation(context context.Context, departmentID string, input CreateDesignationInput) (*Designation, error) {
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	input.Name = strings.TrimSpace(input.Name)

	v := &validate.Validator{}
	err := v.Required("department_id", departmentID).
		UUID("department_id", departmentID).
		Required("code", input.Code).
		Code("code", input.Code).
		MaxLen("code", input.Code, 5).
		Required("name", input.Name).
		MaxLen("name", input.Name, 255).
		Err()
	if err != nil {
		return nil, err
	}

	if _, err := service.repo.GetDepartmentByID(context, departmentID); err != nil {
		return nil, err
	}

	designation := &Designation{
		ID:           uuidv7.New(),
		DepartmentID: departmentID,
		Code:         input.Code,
		Name:         input.Name,
	}

	if err := service.repo.CreateDesignation(context, designation); err != nil {
		return nil, err
	}

	service.logger.Info("designation created",
		"designation_id", designation.ID,
		"department_id", departmentID,
		"code", designation.Code,
	)
	return service.repo.GetDesignationByID(context, designation.ID)
}

func (service *Service) ListDesignations(context context.Context, departmentID string) ([]*Designation, error) {
	return service.repo.ListDesignationsByDepartment(context, departmentID)
}

// GetDesignationInDepartment loads a designation and verifies it belongs to
// the given department.
func (service *Service) GetDesignationInDepartment(context context.Context, departmentID, designationID string) (*Designation, error) {
	designation, err := service.repo.GetDesignationByID(context, designationID)
	if err != nil {
		return nil, err
	}
	if designation.DepartmentID != departmentID {
		return nil, apperr.NotFound("Designation does not belong to this department")
	}
	return designation, nil
}
