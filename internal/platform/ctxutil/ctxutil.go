// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/kadrio/kadrio/internal/platform/ctxkey"
	"github.com/kadrio/kadrio/internal/platform/sec"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// WithPrincipal returns a new context carrying the verified bearer claims
// and the raw access token they were decoded from.
//
// The raw token is kept because logout must blacklist the exact string
// presented by the client, not a re-serialization of the claims.
func WithPrincipal(ctx context.Context, claims *sec.Claims, rawToken string) context.Context {
	ctx = context.WithValue(ctx, ctxkey.KeyPrincipal, claims)
	return context.WithValue(ctx, ctxkey.KeyAccessToken, rawToken)
}

// GetPrincipal retrieves the verified [*sec.Claims] from the [context.Context].
// Returns nil for anonymous requests.
func GetPrincipal(ctx context.Context) *sec.Claims {
	claims, ok := ctx.Value(ctxkey.KeyPrincipal).(*sec.Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetAccessToken retrieves the raw bearer token string from the context.
// Returns an empty string for anonymous requests.
func GetAccessToken(ctx context.Context) string {
	token, _ := ctx.Value(ctxkey.KeyAccessToken).(string)
	return token
}
