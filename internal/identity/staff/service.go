// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

package staff

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/kadrio/kadrio/internal/identity/sequence"
	"github.com/kadrio/kadrio/internal/platform/apperr"
	"github.com/kadrio/kadrio/internal/platform/dberr"
	"github.com/kadrio/kadrio/internal/platform/validate"
	"github.com/kadrio/kadrio/pkg/pagination"
	"github.com/kadrio/kadrio/pkg/uuidv7"
)

// # Service

// Service implements staff registry use cases.
//
// # Review Process
//
// Composite-code derivation feeds the login path (staff authenticate by
// composite code). Any change to code composition or assignment handling
// must be reviewed by the platform team.
type Service struct {
	repo      Repository
	allocator *sequence.Allocator
	orgPrefix string
	notifier  Notifier
	logger    *slog.Logger
}

// NewService constructs a new staff [Service] with necessary dependencies.
// The notifier may be nil; code-change events are then only logged.
func NewService(
	repo Repository,
	allocator *sequence.Allocator,
	orgPrefix string,
	notifier Notifier,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		allocator: allocator,
		orgPrefix: orgPrefix,
		notifier:  notifier,
		logger:    logger,
	}
}

// # Creation Flow

// CreateStaffInput holds the data required to enroll a new staff member,
// including their initial primary assignment.
type CreateStaffInput struct {
	FullName       string  `json:"full_name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	NationalID     string  `json:"national_id"`
	Gender         string  `json:"gender"`
	JoiningDate    string  `json:"joining_date"`
	DepartmentID   string  `json:"department_id"`
	DesignationID  string  `json:"designation_id"`
	BranchID       *string `json:"branch_id,omitempty"`
	InstitutionID  *string `json:"institution_id,omitempty"`
	OrganizationID *string `json:"organization_id,omitempty"`
	Shift          string  `json:"shift"`
}

/*
CreateStaff validates, allocates identifiers for, and persists a new staff
member with their initial primary assignment.

Description: The organization-wide sequence code is allocated first (the
record must never be created without an identifier), then staff and assignment
are persisted in one transaction that also composes and stores the composite
code. A unique-violation race on the freshly allocated code is retried once
with a new allocation before surfacing a conflict.

Parameters:
  - context: context.Context
  - input: CreateStaffInput

Returns:
  - *Staff: Created entity with both codes populated
  - error: Validation, configuration, or storage errors
*/
func (service *Service) CreateStaff(context context.Context, input CreateStaffInput) (*Staff, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Shift == "" {
		input.Shift = ShiftGeneral
	}

	v := &validate.Validator{}
	v.Required("full_name", input.FullName).
		MaxLen("full_name", input.FullName, 255).
		Required("email", input.Email).
		Email("email", input.Email).
		Required("joining_date", input.JoiningDate).
		Required("department_id", input.DepartmentID).
		UUID("department_id", input.DepartmentID).
		Required("designation_id", input.DesignationID).
		UUID("designation_id", input.DesignationID).
		OneOf("shift", input.Shift, Shifts...)
	if err := v.Err(); err != nil {
		return nil, err
	}

	joiningDate, err := time.Parse("2006-01-02", input.JoiningDate)
	if err != nil {
		return nil, apperr.ValidationError("Invalid joining_date, expected YYYY-MM-DD")
	}

	for attempt := 0; ; attempt++ {
		sequenceCode, err := service.allocator.Next(context, sequence.Staff(service.orgPrefix))
		if err != nil {
			return nil, err
		}

		member := &Staff{
			ID:           uuidv7.New(),
			SequenceCode: sequenceCode,
			FullName:     input.FullName,
			Email:        input.Email,
			Phone:        input.Phone,
			NationalID:   input.NationalID,
			Gender:       input.Gender,
			JoiningDate:  joiningDate,
			IsActive:     true,
		}
		assignment := &Assignment{
			ID:             uuidv7.New(),
			StaffID:        member.ID,
			DepartmentID:   input.DepartmentID,
			DesignationID:  input.DesignationID,
			BranchID:       input.BranchID,
			InstitutionID:  input.InstitutionID,
			OrganizationID: input.OrganizationID,
			Shift:          input.Shift,
			JoiningDate:    joiningDate,
			IsPrimary:      true,
			IsActive:       true,
		}

		err = service.repo.Create(context, member, assignment, service.composeFor(member))
		if err == nil {
			service.logger.Info("staff created",
				"staff_id", member.ID,
				"sequence_code", member.SequenceCode,
				"composite_code", member.CompositeCode,
			)
			return member, nil
		}

		// A concurrent writer may have claimed the same identifier between
		// allocation and insert. One fresh allocation closes the window.
		if dberr.IsUniqueViolation(err) && attempt == 0 {
			continue
		}
		if dberr.IsUniqueViolation(err) {
			return nil, apperr.ConcurrencyConflict("Identifier allocation raced, try again")
		}
		return nil, err
	}
}

// # Assignment Flow

// SaveAssignmentInput holds the data for saving a primary assignment. An
// empty AssignmentID creates a new assignment; a populated one flips or
// rewrites an existing assignment.
type SaveAssignmentInput struct {
	AssignmentID   string  `json:"assignment_id"`
	DepartmentID   string  `json:"department_id"`
	DesignationID  string  `json:"designation_id"`
	BranchID       *string `json:"branch_id,omitempty"`
	InstitutionID  *string `json:"institution_id,omitempty"`
	OrganizationID *string `json:"organization_id,omitempty"`
	Shift          string  `json:"shift"`
	JoiningDate    string  `json:"joining_date"`
}

/*
SavePrimaryAssignment makes the given assignment the staff member's primary
one and regenerates the composite code.

Description: The repository serializes the save per staff member (row lock),
demotes every other assignment, persists this one as primary, and composes the
new code inside the same transaction. When the stored code changed, a
CodeChanged event is dispatched asynchronously after commit — best-effort, a
failing notifier is logged and never fails the save.

Parameters:
  - context: context.Context
  - staffID: string
  - input: SaveAssignmentInput
  - meta: RequestContext

Returns:
  - *Staff: The staff member with the (possibly regenerated) composite code
  - error: Validation, configuration, or storage errors
*/
func (service *Service) SavePrimaryAssignment(context context.Context, staffID string, input SaveAssignmentInput, meta RequestContext) (*Staff, error) {
	if input.Shift == "" {
		input.Shift = ShiftGeneral
	}

	v := &validate.Validator{}
	v.Required("staff_id", staffID).
		UUID("staff_id", staffID).
		Required("department_id", input.DepartmentID).
		UUID("department_id", input.DepartmentID).
		Required("designation_id", input.DesignationID).
		UUID("designation_id", input.DesignationID).
		OneOf("shift", input.Shift, Shifts...)
	if err := v.Err(); err != nil {
		return nil, err
	}

	member, err := service.repo.FindByID(context, staffID)
	if err != nil {
		return nil, err
	}

	joiningDate := member.JoiningDate
	if input.JoiningDate != "" {
		joiningDate, err = time.Parse("2006-01-02", input.JoiningDate)
		if err != nil {
			return nil, apperr.ValidationError("Invalid joining_date, expected YYYY-MM-DD")
		}
	}

	assignmentID := input.AssignmentID
	if assignmentID == "" {
		assignmentID = uuidv7.New()
	}

	assignment := &Assignment{
		ID:             assignmentID,
		StaffID:        staffID,
		DepartmentID:   input.DepartmentID,
		DesignationID:  input.DesignationID,
		BranchID:       input.BranchID,
		InstitutionID:  input.InstitutionID,
		OrganizationID: input.OrganizationID,
		Shift:          input.Shift,
		JoiningDate:    joiningDate,
		IsPrimary:      true,
		IsActive:       true,
	}

	oldCode, newCode, err := service.repo.SavePrimaryAssignment(context, assignment, service.composeFor(member))
	if err != nil {
		return nil, err
	}

	if newCode != oldCode {
		member.CompositeCode = newCode
		service.logger.Info("composite code regenerated",
			"staff_id", staffID,
			"old_code", oldCode,
			"new_code", newCode,
			"actor_id", meta.ActorID,
		)
		service.dispatchCodeChanged(CodeChangedEvent{
			StaffID:  member.ID,
			FullName: member.FullName,
			Email:    member.Email,
			OldCode:  oldCode,
			NewCode:  newCode,
		})
	}

	return member, nil
}

// composeFor returns a ComposeFunc bound to the staff member's own sequence
// number, so the composite code always traces back to the same person.
func (service *Service) composeFor(member *Staff) ComposeFunc {
	return func(unit UnitContext, assignment *Assignment) (string, error) {
		sequenceNumber, ok := sequence.ParseSuffix(member.SequenceCode, service.orgPrefix)
		if !ok {
			return "", apperr.ConfigurationError("Staff sequence code is malformed")
		}
		return ComposeCode(unit, assignment.Shift, assignment.JoiningDate.Year(), sequenceNumber)
	}
}

// dispatchCodeChanged delivers a code-change event without blocking the save.
func (service *Service) dispatchCodeChanged(event CodeChangedEvent) {
	if service.notifier == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := service.notifier.NotifyCodeChanged(ctx, event); err != nil {
			service.logger.Warn("code change notification failed",
				"staff_id", event.StaffID,
				"new_code", event.NewCode,
				"error", err,
			)
		}
	}()
}

// # Queries

// GetStaff retrieves one staff member by UUID.
func (service *Service) GetStaff(context context.Context, id string) (*Staff, error) {
	return service.repo.FindByID(context, id)
}

// ListStaff retrieves a page of staff members with an optional search term.
func (service *Service) ListStaff(context context.Context, params pagination.Params, search string) ([]*Staff, int, error) {
	return service.repo.List(context, params, search)
}

// ListAssignments retrieves all live assignments of a staff member.
func (service *Service) ListAssignments(context context.Context, staffID string) ([]*Assignment, error) {
	if _, err := service.repo.FindByID(context, staffID); err != nil {
		return nil, err
	}
	return service.repo.ListAssignments(context, staffID)
}

// DeleteStaff soft-deletes a staff member and their assignments.
func (service *Service) DeleteStaff(context context.Context, id string, meta RequestContext) error {
	if err := service.repo.SoftDelete(context, id, meta); err != nil {
		return err
	}
	service.logger.Info("staff deleted", "staff_id", id, "actor_id", meta.ActorID)
	return nil
}
