// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kadrio/kadrio/internal/platform/apperr"
	"github.com/kadrio/kadrio/internal/platform/ctxutil"
	"github.com/kadrio/kadrio/internal/platform/sec"
	"github.com/kadrio/kadrio/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Claims extracts the authenticated principal claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.Claims {
	return ctxutil.GetPrincipal(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the principal claims.

Returns:
  - *sec.Claims: The authenticated principal claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.Claims, error) {

	// Get principal claims
	claims := ctxutil.GetPrincipal(request.Context())

	// If the caller is not authenticated, return an error
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return claims, nil
}

/*
RequiredUserID returns the account ID of the currently authenticated principal.

Returns:
  - string: Principal UUID
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredUserID(request *http.Request) (string, error) {

	// Get principal claims
	claims, err := RequiredClaims(request)

	// If the caller is not authenticated, return an error
	if err != nil {
		return "", err
	}

	return claims.UserID, nil
}

/*
AccessToken returns the raw bearer token the caller presented.

Returns the empty string if the request is not authenticated. The logout
flow uses this to blacklist the exact token string.
*/
func AccessToken(request *http.Request) string {
	return ctxutil.GetAccessToken(request.Context())
}
