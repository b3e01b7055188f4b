// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

package auth

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a JWT access token remains valid.
	AccessTokenTTL = 1 * time.Hour

	// RefreshTokenTTL is the duration a refresh token remains valid.
	// Long-lived (7 days) to provide a good user experience.
	RefreshTokenTTL = 7 * 24 * time.Hour

	// MaxFailedAttempts is the number of consecutive login failures that
	// trips the lockout.
	MaxFailedAttempts = 5

	// LockoutDuration is how long an account stays locked after the
	// threshold is reached. Failures during the window keep counting but
	// never extend it.
	LockoutDuration = 30 * time.Minute

	// BlacklistReasonLogout marks access tokens invalidated by logout.
	BlacklistReasonLogout = "logout"
)

// # Principal Kinds

const (
	// PrincipalStaff tags a principal resolved from the staff registry.
	PrincipalStaff = "staff"

	// PrincipalSuperadmin tags a principal resolved from the superadmin table.
	PrincipalSuperadmin = "superadmin"
)

// # Scoped Service Roles

// Sub-roles a staff member may hold within an external service. The scoped
// login variant matches the requested role against the assigned one.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleAssignee  = "assignee"
	RoleRequestor = "requestor"
)

// ServiceRoles lists the valid scoped sub-role values.
var ServiceRoles = []string{RoleAdmin, RoleModerator, RoleAssignee, RoleRequestor}
