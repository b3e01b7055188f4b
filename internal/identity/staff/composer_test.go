// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

package staff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadrio/kadrio/internal/platform/apperr"
	"github.com/kadrio/kadrio/pkg/pointer"
)

func TestComposeCode(t *testing.T) {
	tests := []struct {
		name     string
		unit     UnitContext
		shift    string
		year     int
		sequence int64
		want     string
	}{
		{
			name: "branch scoped",
			unit: UnitContext{
				BranchCode:      pointer.To("C01"),
				InstitutionCode: pointer.To("AKS"),
				DesignationCode: "T",
			},
			shift:    ShiftGeneral,
			year:     2025,
			sequence: 42,
			want:     "C01-G-25-T-0042",
		},
		{
			name: "branch outranks institution and organization",
			unit: UnitContext{
				BranchCode:       pointer.To("C02"),
				InstitutionCode:  pointer.To("AKS"),
				OrganizationCode: pointer.To("IAK"),
				DesignationCode:  "P",
			},
			shift:    ShiftMorning,
			year:     2024,
			sequence: 7,
			want:     "C02-M-24-P-0007",
		},
		{
			name: "institution scoped",
			unit: UnitContext{
				InstitutionCode:  pointer.To("AKS"),
				OrganizationCode: pointer.To("IAK"),
				DesignationCode:  "C",
			},
			shift:    ShiftEvening,
			year:     2023,
			sequence: 310,
			want:     "AKS-E-23-C-0310",
		},
		{
			name: "organization fallback",
			unit: UnitContext{
				OrganizationCode: pointer.To("IAK"),
				DesignationCode:  "T",
			},
			shift:    ShiftNight,
			year:     2025,
			sequence: 1,
			want:     "IAK-N-25-T-0001",
		},
		{
			name: "global department code as prefix",
			unit: UnitContext{
				DepartmentCode:   "FIN",
				DepartmentGlobal: true,
				DesignationCode:  "ACC",
			},
			shift:    ShiftGeneral,
			year:     2026,
			sequence: 12,
			want:     "FIN-G-26-ACC-0012",
		},
		{
			name: "lowercase designation is uppercased",
			unit: UnitContext{
				BranchCode:      pointer.To("C01"),
				DesignationCode: "t",
			},
			shift:    ShiftGeneral,
			year:     2025,
			sequence: 42,
			want:     "C01-G-25-T-0042",
		},
		{
			name: "sequence width grows past padding",
			unit: UnitContext{
				BranchCode:      pointer.To("C01"),
				DesignationCode: "T",
			},
			shift:    ShiftGeneral,
			year:     2025,
			sequence: 12345,
			want:     "C01-G-25-T-12345",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ComposeCode(test.unit, test.shift, test.year, test.sequence)
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestComposeCodeIsDeterministic(t *testing.T) {
	unit := UnitContext{
		BranchCode:      pointer.To("C01"),
		DesignationCode: "T",
	}

	first, err := ComposeCode(unit, ShiftGeneral, 2025, 42)
	require.NoError(t, err)
	second, err := ComposeCode(unit, ShiftGeneral, 2025, 42)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComposeCodeUnresolvablePrefix(t *testing.T) {
	// A scoped department with no branch, institution, or organization
	// reference cannot produce a prefix.
	unit := UnitContext{
		DepartmentCode:   "SCI",
		DepartmentGlobal: false,
		DesignationCode:  "T",
	}

	_, err := ComposeCode(unit, ShiftGeneral, 2025, 42)
	require.Error(t, err)

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "CONFIGURATION_ERROR", appErr.Code)
}

func TestComposeCodeMissingDesignation(t *testing.T) {
	unit := UnitContext{
		BranchCode: pointer.To("C01"),
	}

	_, err := ComposeCode(unit, ShiftGeneral, 2025, 42)
	require.Error(t, err)
	assert.Equal(t, "CONFIGURATION_ERROR", apperr.As(err).Code)
}

func TestShiftLetter(t *testing.T) {
	tests := []struct {
		shift string
		want  string
	}{
		{ShiftMorning, "M"},
		{ShiftEvening, "E"},
		{ShiftNight, "N"},
		{ShiftGeneral, "G"},
		{"", "G"},
	}

	for _, test := range tests {
		assert.Equal(t, test.want, ShiftLetter(test.shift), "shift %q", test.shift)
	}
}
