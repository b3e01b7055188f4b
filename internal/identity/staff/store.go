// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

package staff

import (
	"context"

	"github.com/kadrio/kadrio/pkg/pagination"
)

// # Repository Contracts

// ComposeFunc derives a composite code from a resolved unit context. The
// repository invokes it inside the save transaction, after demoting other
// assignments, so a composition failure rolls the whole save back.
type ComposeFunc func(unit UnitContext, assignment *Assignment) (string, error)

// Repository defines the data access contract for staff and assignments.
type Repository interface {
	// Create persists a staff member together with their initial primary
	// assignment in one transaction, composing and storing the composite
	// code before commit. On success staff.CompositeCode is populated.
	Create(context context.Context, staff *Staff, assignment *Assignment, compose ComposeFunc) error

	// FindByID returns a staff member by UUID, excluding soft-deleted rows.
	FindByID(context context.Context, id string) (*Staff, error)

	// FindByCompositeCode returns a staff member by their composite code,
	// excluding soft-deleted rows.
	FindByCompositeCode(context context.Context, code string) (*Staff, error)

	// List returns a page of staff, optionally filtered by a search term
	// matched against name, email, and both codes.
	List(context context.Context, params pagination.Params, search string) ([]*Staff, int, error)

	// SavePrimaryAssignment upserts an assignment as the staff member's
	// primary one. In a single transaction it locks the staff row, demotes
	// every other assignment, persists this one with IsPrimary=true, then
	// invokes compose with the resolved unit context and stores the result
	// on the staff row when it differs. It returns the codes before and
	// after the save.
	SavePrimaryAssignment(context context.Context, assignment *Assignment, compose ComposeFunc) (oldCode, newCode string, err error)

	// ListAssignments returns all live assignments of a staff member.
	ListAssignments(context context.Context, staffID string) ([]*Assignment, error)

	// SoftDelete marks a staff member (and their assignments) deleted,
	// attributed to the acting principal.
	SoftDelete(context context.Context, id string, meta RequestContext) error
}
