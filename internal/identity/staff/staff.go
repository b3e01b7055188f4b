// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

/*
Package staff implements the staff registry: the directory of people who can
hold credentials, their organizational assignments, and the durable codes that
identify them.

Every staff member carries two identifiers:

  - Sequence code: a short organization-wide identifier (e.g. "ORG-0042"),
    allocated once at creation and never changed or reused.
  - Composite code: a human-readable code derived from the current primary
    assignment (unit, shift, joining year, role, sequence number). It is
    recomputed whenever the primary assignment changes.

Architecture:

  - Service: Orchestrates creation, assignment saves, and code regeneration.
  - Repository: Postgres-backed storage with transactional primary-assignment
    swaps (demote then promote under a staff row lock).
  - Composer: Pure composite-code derivation, independent of persistence.
*/
package staff

import (
	"context"
	"time"
)

// # Shifts

// Shift values a staff assignment may carry. The shift's first letter appears
// in the composite code.
const (
	ShiftMorning = "morning"
	ShiftEvening = "evening"
	ShiftNight   = "night"
	ShiftGeneral = "general"
)

// Shifts lists the valid assignment shift values.
var Shifts = []string{ShiftMorning, ShiftEvening, ShiftNight, ShiftGeneral}

// # Entities

// Staff is a person in the directory. Staff are never hard-deleted while
// referenced by credentials or tokens; IsDeleted marks retirement.
type Staff struct {
	ID            string     `json:"id"`
	SequenceCode  string     `json:"sequence_code"`
	CompositeCode string     `json:"composite_code"`
	FullName      string     `json:"full_name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone,omitempty"`
	NationalID    string     `json:"national_id,omitempty"`
	Gender        string     `json:"gender,omitempty"`
	JoiningDate   time.Time  `json:"joining_date"`
	IsActive      bool       `json:"is_active"`
	IsDeleted     bool       `json:"-"`
	DeletedAt     *time.Time `json:"-"`
	DeletedBy     *string    `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Assignment links a staff member to a department and designation within an
// organizational scope. At most one assignment per staff member is primary;
// the primary assignment determines the composite code.
//
// Scope is expressed through the optional references: a branch-scoped
// assignment sets BranchID, an institution-scoped one sets InstitutionID, and
// OrganizationID is the fallback scope. All three may be nil only when the
// department itself is global.
type Assignment struct {
	ID             string     `json:"id"`
	StaffID        string     `json:"staff_id"`
	DepartmentID   string     `json:"department_id"`
	DesignationID  string     `json:"designation_id"`
	BranchID       *string    `json:"branch_id,omitempty"`
	InstitutionID  *string    `json:"institution_id,omitempty"`
	OrganizationID *string    `json:"organization_id,omitempty"`
	Shift          string     `json:"shift"`
	JoiningDate    time.Time  `json:"joining_date"`
	IsPrimary      bool       `json:"is_primary"`
	IsActive       bool       `json:"is_active"`
	IsDeleted      bool       `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// # Request Metadata

// RequestContext carries the acting principal and client address into
// mutating calls, so attribution never depends on ambient state.
type RequestContext struct {
	ActorID string
	IP      string
}

// # Code Change Notification

// CodeChangedEvent is emitted after a primary-assignment save changed the
// stored composite code.
type CodeChangedEvent struct {
	StaffID  string
	FullName string
	Email    string
	OldCode  string
	NewCode  string
}

// Notifier receives code-change events. Delivery is best-effort: a failing
// notifier is logged and never fails or delays the assignment save.
type Notifier interface {
	NotifyCodeChanged(context context.Context, event CodeChangedEvent) error
}
