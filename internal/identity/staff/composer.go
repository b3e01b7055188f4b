// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

package staff

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/kadrio/kadrio/internal/platform/apperr"
)

// # Composite Code Derivation

// UnitContext carries the organizational codes visible from one assignment,
// resolved by the repository in a single join.
type UnitContext struct {
	BranchCode       *string
	InstitutionCode  *string
	OrganizationCode *string
	DepartmentCode   string
	DepartmentGlobal bool
	DesignationCode  string
}

/*
ResolveUnitPrefix picks the composite code's leading segment from an
assignment's organizational scope.

Description: Resolution follows a strict priority order — branch code, then
institution code, then owning-organization code, then the department's own
code when the department is global (unscoped). An assignment with no
resolvable prefix is a configuration error: the caller must fail the save
rather than emit a malformed code.

Parameters:
  - unit: UnitContext (codes resolved from the assignment's references)

Returns:
  - string: The unit prefix
  - error: apperr.ConfigurationError when no prefix resolves
*/
func ResolveUnitPrefix(unit UnitContext) (string, error) {
	switch {
	case unit.BranchCode != nil && *unit.BranchCode != "":
		return *unit.BranchCode, nil
	case unit.InstitutionCode != nil && *unit.InstitutionCode != "":
		return *unit.InstitutionCode, nil
	case unit.OrganizationCode != nil && *unit.OrganizationCode != "":
		return *unit.OrganizationCode, nil
	case unit.DepartmentGlobal && unit.DepartmentCode != "":
		return unit.DepartmentCode, nil
	}
	return "", apperr.ConfigurationError("Assignment has no resolvable unit prefix")
}

// ShiftLetter maps a shift name to its single-letter composite code segment:
// the first letter, uppercased. The canonical "general" shift yields "G".
func ShiftLetter(shift string) string {
	for _, r := range shift {
		if unicode.IsLetter(r) {
			return strings.ToUpper(string(r))
		}
	}
	return "G"
}

/*
ComposeCode derives the composite staff code from a primary assignment.

Description: Produces `{unitPrefix}-{shiftLetter}-{yy}-{roleCode}-{seq}` where
`seq` is the numeric suffix of the staff member's own sequence code — reused,
never re-allocated, so the composite code always traces back to the same
person. Composition is deterministic: the same inputs always yield the same
string, so an unchanged primary assignment never produces a spurious code
change.

Parameters:
  - unit: UnitContext
  - shift: string (assignment shift name)
  - joiningYear: int (four-digit year; rendered as two digits)
  - sequenceNumber: int64 (suffix of the staff sequence code)

Returns:
  - string: Composite code, e.g. "C01-G-25-T-0042"
  - error: apperr.ConfigurationError when the unit prefix cannot resolve
*/
func ComposeCode(unit UnitContext, shift string, joiningYear int, sequenceNumber int64) (string, error) {
	prefix, err := ResolveUnitPrefix(unit)
	if err != nil {
		return "", err
	}
	if unit.DesignationCode == "" {
		return "", apperr.ConfigurationError("Assignment designation has no code")
	}

	return fmt.Sprintf("%s-%s-%02d-%s-%04d",
		prefix,
		ShiftLetter(shift),
		joiningYear%100,
		strings.ToUpper(unit.DesignationCode),
		sequenceNumber,
	), nil
}
