// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kadrio/kadrio/internal/platform/middleware"
	requestutil "github.com/kadrio/kadrio/internal/platform/request"
	"github.com/kadrio/kadrio/internal/platform/respond"
	"github.com/kadrio/kadrio/internal/platform/validate"
)

// Handler implements the HTTP layer for authentication and credential
// administration.
type Handler struct {
	gateway *Gateway
}

// NewHandler constructs a new auth [Handler].
func NewHandler(gateway *Gateway) *Handler {
	return &Handler{gateway: gateway}
}

// Routes returns a [chi.Router] configured with the auth domain's endpoints.
// Session endpoints are public (the gateway does its own gating); the
// administration subtree requires a superadmin bearer token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Sessions
	router.Post("/login", handler.login)
	router.Post("/login/{service}", handler.loginScoped)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)
	router.Get("/me", handler.whoAmI)

	// Administration
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireSuperadmin)

		admin.Post("/superadmins", handler.createSuperadmin)
		admin.Get("/superadmins", handler.listSuperadmins)
		admin.Post("/credentials", handler.grantCredential)
		admin.Put("/credentials/password", handler.setPassword)
		admin.Post("/service-access", handler.grantServiceAccess)
		admin.Get("/service-access/{staffID}", handler.listServiceAccess)
	})

	return router
}

// requestMeta extracts the caller's network context for session attribution.
func requestMeta(request *http.Request) RequestMeta {
	return RequestMeta{
		IP:     middleware.RealIP(request),
		Device: request.UserAgent(),
	}
}

type loginRequest struct {
	Code     string `json:"code"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

/*
POST /api/v1/auth/login.

Description: Authenticates by login code (staff composite code or superadmin
code) and password, and opens a session.

Response:
  - 200: LoginResult: Token pair plus the identity snapshot
  - 401: Invalid credentials (identical for unknown code and wrong password)
  - 423: Account locked, with the unlock time
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	result, err := handler.gateway.Login(request.Context(), input.Code, input.Password, requestMeta(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
POST /api/v1/auth/login/{service}.

Description: Authenticates and additionally gates on the caller's grant for
the named service. The optional role in the body must match the granted
sub-role. The access token carries the service and role as extra claims.

Response:
  - 200: LoginResult
  - 401: Invalid credentials
  - 403: NO_SERVICE_ACCESS or ROLE_MISMATCH (with the assigned role)
  - 423: Account locked
*/
func (handler *Handler) loginScoped(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	result, err := handler.gateway.LoginScoped(
		request.Context(),
		input.Code,
		input.Password,
		requestutil.Param(request, "service"),
		input.Role,
		requestMeta(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

// POST /api/v1/auth/refresh. Mints a new access token against a valid
// refresh token; the refresh token itself is not rotated.
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	result, err := handler.gateway.Refresh(request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
POST /api/v1/auth/logout.

Description: Closes every session of the authenticated identity: the
presented access token is blacklisted for its remaining lifetime and all of
the identity's refresh tokens are revoked.

Response:
  - 204: Logged out
  - 401: Missing or invalid bearer token
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.gateway.Logout(request.Context(), requestutil.AccessToken(request), claims)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// GET /api/v1/auth/me. Resolves the bearer token's identity against current
// directory state, not the claims snapshot.
func (handler *Handler) whoAmI(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := handler.gateway.WhoAmI(request.Context(), claims)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, identity)
}

// POST /api/v1/auth/superadmins.
func (handler *Handler) createSuperadmin(writer http.ResponseWriter, request *http.Request) {
	var input CreateSuperadminInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	superadmin, err := handler.gateway.CreateSuperadmin(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, superadmin)
}

// GET /api/v1/auth/superadmins.
func (handler *Handler) listSuperadmins(writer http.ResponseWriter, request *http.Request) {
	superadmins, err := handler.gateway.ListSuperadmins(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, superadmins)
}

// POST /api/v1/auth/credentials. Grants a login credential to a staff member
// or a superadmin; exactly one owner reference must be set.
func (handler *Handler) grantCredential(writer http.ResponseWriter, request *http.Request) {
	var input GrantCredentialInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := handler.gateway.GrantCredential(request.Context(), input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusCreated, map[string]string{"status": "credential granted"})
}

// PUT /api/v1/auth/credentials/password. Replaces an identity's password and
// implicitly clears any lockout.
func (handler *Handler) setPassword(writer http.ResponseWriter, request *http.Request) {
	var input SetPasswordInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := handler.gateway.SetPassword(request.Context(), input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"status": "password updated"})
}

// POST /api/v1/auth/service-access. Creates or rewrites the single grant a
// staff member holds for an external service.
func (handler *Handler) grantServiceAccess(writer http.ResponseWriter, request *http.Request) {
	var input GrantServiceAccessInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	access, err := handler.gateway.GrantServiceAccess(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, access)
}

// GET /api/v1/auth/service-access/{staffID}.
func (handler *Handler) listServiceAccess(writer http.ResponseWriter, request *http.Request) {
	grants, err := handler.gateway.ListServiceAccess(request.Context(), requestutil.Param(request, "staffID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, grants)
}
