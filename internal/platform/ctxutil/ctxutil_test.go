// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

package ctxutil

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kadrio/kadrio/internal/platform/sec"
)

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))

	ctx = WithRequestID(ctx, "req-123")
	assert.Equal(t, "req-123", GetRequestID(ctx))
}

func TestLogger(t *testing.T) {
	ctx := context.Background()

	// Falls back to the default logger when none is attached.
	assert.Equal(t, slog.Default(), GetLogger(ctx))

	logger := slog.Default().With(slog.String("component", "test"))
	ctx = WithLogger(ctx, logger)
	assert.Equal(t, logger, GetLogger(ctx))
}

func TestPrincipal(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetPrincipal(ctx))
	assert.Empty(t, GetAccessToken(ctx))

	claims := &sec.Claims{
		UserID:    "0191d2a3-7f40-7cc3-9f0e-1a2b3c4d5e6f",
		Code:      "KAD-0042",
		TokenType: sec.TokenTypeAccess,
	}
	ctx = WithPrincipal(ctx, claims, "raw.jwt.token")

	got := GetPrincipal(ctx)
	assert.NotNil(t, got)
	assert.Equal(t, "KAD-0042", got.Code)
	assert.Equal(t, "raw.jwt.token", GetAccessToken(ctx))
}
