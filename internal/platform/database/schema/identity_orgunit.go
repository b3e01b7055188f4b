package schema

// IdentityOrganizationTable represents the 'identity.organization' table
type IdentityOrganizationTable struct {
	Table     string
	ID        string
	Code      string
	Name      string
	IsDeleted string
	DeletedAt string
	DeletedBy string
	CreatedAt string
	UpdatedAt string
}

// IdentityOrganization is the schema definition for identity.organization
var IdentityOrganization = IdentityOrganizationTable{
	Table:     "identity.organization",
	ID:        "id",
	Code:      "code",
	Name:      "name",
	IsDeleted: "isdeleted",
	DeletedAt: "deletedat",
	DeletedBy: "deletedby",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t IdentityOrganizationTable) Columns() []string {
	return []string{t.ID, t.Code, t.Name, t.CreatedAt, t.UpdatedAt}
}

// IdentityInstitutionTable represents the 'identity.institution' table
type IdentityInstitutionTable struct {
	Table          string
	ID             string
	OrganizationID string
	Code           string
	Name           string
	IsDeleted      string
	DeletedAt      string
	DeletedBy      string
	CreatedAt      string
	UpdatedAt      string
}

// IdentityInstitution is the schema definition for identity.institution
var IdentityInstitution = IdentityInstitutionTable{
	Table:          "identity.institution",
	ID:             "id",
	OrganizationID: "organizationid",
	Code:           "code",
	Name:           "name",
	IsDeleted:      "isdeleted",
	DeletedAt:      "deletedat",
	DeletedBy:      "deletedby",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
}

func (t IdentityInstitutionTable) Columns() []string {
	return []string{t.ID, t.OrganizationID, t.Code, t.Name, t.CreatedAt, t.UpdatedAt}
}

// IdentityBranchTable represents the 'identity.branch' table
type IdentityBranchTable struct {
	Table         string
	ID            string
	InstitutionID string
	Code          string
	Name          string
	IsDeleted     string
	DeletedAt     string
	DeletedBy     string
	CreatedAt     string
	UpdatedAt     string
}

// IdentityBranch is the schema definition for identity.branch
var IdentityBranch = IdentityBranchTable{
	Table:         "identity.branch",
	ID:            "id",
	InstitutionID: "institutionid",
	Code:          "code",
	Name:          "name",
	IsDeleted:     "isdeleted",
	DeletedAt:     "deletedat",
	DeletedBy:     "deletedby",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}

func (t IdentityBranchTable) Columns() []string {
	return []string{t.ID, t.InstitutionID, t.Code, t.Name, t.CreatedAt, t.UpdatedAt}
}

// IdentityDepartmentTable represents the 'identity.department' table
type IdentityDepartmentTable struct {
	Table         string
	ID            string
	RegistryCode  string
	Code          string
	Name          string
	Sector        string
	InstitutionID string
	BranchID      string
	IsDeleted     string
	DeletedAt     string
	DeletedBy     string
	CreatedAt     string
	UpdatedAt     string
}

// IdentityDepartment is the schema definition for identity.department
var IdentityDepartment = IdentityDepartmentTable{
	Table:         "identity.department",
	ID:            "id",
	RegistryCode:  "registrycode",
	Code:          "code",
	Name:          "name",
	Sector:        "sector",
	InstitutionID: "institutionid",
	BranchID:      "branchid",
	IsDeleted:     "isdeleted",
	DeletedAt:     "deletedat",
	DeletedBy:     "deletedby",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}

func (t IdentityDepartmentTable) Columns() []string {
	return []string{
		t.ID, t.RegistryCode, t.Code, t.Name, t.Sector,
		t.InstitutionID, t.BranchID, t.CreatedAt, t.UpdatedAt,
	}
}

// IdentityDesignationTable represents the 'identity.designation' table
type IdentityDesignationTable struct {
	Table        string
	ID           string
	DepartmentID string
	Code         string
	Name         string
	IsDeleted    string
	DeletedAt    string
	DeletedBy    string
	CreatedAt    string
	UpdatedAt    string
}

// IdentityDesignation is the schema definition for identity.designation
var IdentityDesignation = IdentityDesignationTable{
	Table:        "identity.designation",
	ID:           "id",
	DepartmentID: "departmentid",
	Code:         "code",
	Name:         "name",
	IsDeleted:    "isdeleted",
	DeletedAt:    "deletedat",
	DeletedBy:    "deletedby",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

func (t IdentityDesignationTable) Columns() []string {
	return []string{t.ID, t.DepartmentID, t.Code, t.Name, t.CreatedAt, t.UpdatedAt}
}
