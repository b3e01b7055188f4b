// Package orgunit manages the organizational structure registry: organizations,
// institutions, branches, departments, and designations. These records are the
// inputs to staff code generation; their codes become composite-code prefixes.
package orgunit

import "time"

// Sector classifies a department's organizational function.
const (
	SectorAcademic       = "academic"
	SectorIT             = "it"
	SectorFinance        = "finance"
	SectorMedical        = "medical"
	SectorHR             = "hr"
	SectorAdministration = "administration"
	SectorProcurement    = "procurement"
	SectorOther          = "other"
)

// Sectors lists the valid department sector values.
var Sectors = []string{
	SectorAcademic, SectorIT, SectorFinance, SectorMedical,
	SectorHR, SectorAdministration, SectorProcurement, SectorOther,
}

// Organization is the top-level legal entity (e.g. code "IAK").
type Organization struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Institution is an operating body under an organization (e.g. a school system).
type Institution struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Branch is a physical site of an institution (e.g. campus "C01").
type Branch struct {
	ID            string    `json:"id"`
	InstitutionID string    `json:"institution_id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Department is a functional unit. A department without institution/branch
// scope is global (organization-wide, e.g. Finance); a scoped department
// belongs to one institution or branch.
type Department struct {
	ID            string    `json:"id"`
	RegistryCode  string    `json:"registry_code"` // allocated, e.g. "ORG-D-001"
	Code          string    `json:"code"`          // human-assigned, e.g. "FIN"
	Name          string    `json:"name"`
	Sector        string    `json:"sector"`
	InstitutionID *string   `json:"institution_id,omitempty"`
	BranchID      *string   `json:"branch_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsGlobal reports whether the department is organization-wide (unscoped).
func (d *Department) IsGlobal() bool {
	return d.InstitutionID == nil && d.BranchID == nil
}

// Designation is a position type scoped to one department. Its code appears
// in staff composite codes (e.g. "T" for Teacher).
type Designation struct {
	ID           string    `json:"id"`
	DepartmentID string    `json:"department_id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
