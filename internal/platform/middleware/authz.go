// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

// Package middleware provides the HTTP middleware chain for the Kadrio API server.
//
// # Architecture
//
// Middleware intercepts incoming HTTP requests to apply global policies
// before they reach the domain handlers. This includes cross-cutting concerns
// like Logging, AuthZ/AuthN, Rate Limiting, and CORS.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kadrio/kadrio/internal/platform/apperr"
	"github.com/kadrio/kadrio/internal/platform/ctxutil"
	"github.com/kadrio/kadrio/internal/platform/respond"
	"github.com/kadrio/kadrio/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify access tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the `sec` token
// service implementation, allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	Verify(tokenString string, expectedType string) (*sec.Claims, error)
}

// BlacklistChecker reports whether an access token has been revoked.
//
// The auth domain provides the production implementation (Redis read-through
// over the authoritative Postgres rows).
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, parse and verify the JWT via [TokenVerifier],
//     requiring the access token type (refresh tokens are rejected here).
//  4. Reject tokens found on the revocation blacklist.
//  5. Inject [*sec.Claims] and the raw token into the request context.
//
// # Parameters
//   - verifier: The TokenVerifier instance.
//   - blacklist: The BlacklistChecker instance.
//
// # Returns
//   - An [http.Handler] middleware.
func Authenticate(verifier TokenVerifier, blacklist BlacklistChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, apperr.TokenInvalid())
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			tokenString := parts[1]
			claims, err := verifier.Verify(tokenString, sec.TokenTypeAccess)
			if err != nil {
				respond.Error(writer, request, apperr.TokenInvalid())
				return
			}

			// ── 4. Revocation Check ───────────────────────────────────────────
			// Fails closed: a token we cannot prove valid is treated as revoked.
			revoked, err := blacklist.IsBlacklisted(request.Context(), tokenString)
			if err != nil || revoked {
				respond.Error(writer, request, apperr.TokenInvalid())
				return
			}

			// ── 5. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithPrincipal(request.Context(), claims, tokenString)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
//
// # Flow
//  1. Check if [*sec.Claims] exists in context.
//  2. If missing, abort with HTTP 401 Unauthorized.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetPrincipal(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireSuperadmin blocks requests unless the principal is a superadmin.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It automatically implies
// [RequireAuth] so you don't need to mount both.
//
// # Flow
//  1. Check if [*sec.Claims] exists in context (implies AuthN).
//  2. Check the is_superadmin claim minted at login.
//  3. If the principal is a regular staff account, abort with HTTP 403 Forbidden.
func RequireSuperadmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetPrincipal(request.Context())

		// ── 1. Authentication Check ───────────────────────────────────────
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}

		// ── 2. Authorization Check ────────────────────────────────────────
		if !claims.IsSuperadmin {
			respond.Error(writer, request, apperr.Forbidden("Superadmin access required"))
			return
		}

		next.ServeHTTP(writer, request)
	})
}
