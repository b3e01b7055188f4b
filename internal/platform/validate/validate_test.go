// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadrio/kadrio/internal/platform/apperr"
)

func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "non-empty passes", value: "hello", wantErr: false},
		{name: "empty fails", value: "", wantErr: true},
		{name: "whitespace-only fails", value: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Validator{}
			err := v.Required("field", tt.value).Err()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_Code(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "simple code", value: "AKS", wantErr: false},
		{name: "hyphenated code", value: "C06-M", wantErr: false},
		{name: "digits only", value: "01", wantErr: false},
		{name: "lowercase fails", value: "aks", wantErr: true},
		{name: "leading hyphen fails", value: "-AKS", wantErr: true},
		{name: "trailing hyphen fails", value: "AKS-", wantErr: true},
		{name: "spaces fail", value: "A KS", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Validator{}
			err := v.Code("code", tt.value).Err()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_Range(t *testing.T) {
	v := &Validator{}
	assert.NoError(t, v.Range("year", 2026, 1900, 2100).Err())

	v = &Validator{}
	assert.Error(t, v.Range("year", 1850, 1900, 2100).Err())
}

func TestValidator_OneOf(t *testing.T) {
	v := &Validator{}
	assert.NoError(t, v.OneOf("role", "admin", "admin", "moderator", "assignee", "requestor").Err())

	v = &Validator{}
	assert.Error(t, v.OneOf("role", "ghost", "admin", "moderator").Err())
}

func TestValidator_UUID(t *testing.T) {
	v := &Validator{}
	assert.NoError(t, v.UUID("id", "0191d2a3-7f40-7cc3-9f0e-1a2b3c4d5e6f").Err())

	v = &Validator{}
	assert.Error(t, v.UUID("id", "not-a-uuid").Err())
}

func TestValidator_ChainCollectsAllErrors(t *testing.T) {
	v := &Validator{}
	err := v.
		Required("email", "").
		MinLen("password", "abc", 8).
		Range("year", 1700, 1900, 2100).
		Err()

	require.Error(t, err)

	var appErr *apperr.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Len(t, appErr.Details, 3)
}

func TestValidator_EmptyChainReturnsNil(t *testing.T) {
	v := &Validator{}
	assert.NoError(t, v.Err())
	assert.False(t, v.HasErrors())
}
