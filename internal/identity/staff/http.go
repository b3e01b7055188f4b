// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

package staff

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/kadrio/kadrio/internal/platform/request"
	"github.com/kadrio/kadrio/internal/platform/respond"
	"github.com/kadrio/kadrio/internal/platform/validate"
	"github.com/kadrio/kadrio/pkg/pagination"
)

// Handler implements the HTTP layer for the staff registry.
type Handler struct {
	staffService *Service
}

// NewHandler constructs a new staff [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{staffService: service}
}

// Routes returns a [chi.Router] configured with the staff domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Directory
	router.Post("/", handler.createStaff)
	router.Get("/", handler.listStaff)
	router.Get("/{id}", handler.getStaff)
	router.Delete("/{id}", handler.deleteStaff)

	// Assignments
	router.Get("/{id}/assignments", handler.listAssignments)
	router.Put("/{id}/assignments/primary", handler.savePrimaryAssignment)

	return router
}

// requestMeta extracts actor attribution from the authenticated request.
func requestMeta(request *http.Request) RequestContext {
	meta := RequestContext{IP: request.RemoteAddr}
	if claims := requestutil.Claims(request); claims != nil {
		meta.ActorID = claims.UserID
	}
	return meta
}

/*
POST /api/v1/staff.

Description: Enrolls a new staff member with their initial primary assignment.
Sequence and composite codes are allocated server-side.

Response:
  - 201: Staff: Created entity with both codes
  - 400: Validation failure
  - 500: Configuration error (unresolvable unit prefix)
*/
func (handler *Handler) createStaff(writer http.ResponseWriter, request *http.Request) {
	var input CreateStaffInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	member, err := handler.staffService.CreateStaff(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, member)
}

/*
GET /api/v1/staff?page=&limit=&q=.

Description: Retrieves a page of staff members, optionally filtered by a
search term over names, emails, and codes.
*/
func (handler *Handler) listStaff(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	search := request.URL.Query().Get("q")

	members, total, err := handler.staffService.ListStaff(request.Context(), params, search)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, members, pagination.NewMeta(params.Page, params.Limit, total))
}

// GET /api/v1/staff/{id}.
func (handler *Handler) getStaff(writer http.ResponseWriter, request *http.Request) {
	member, err := handler.staffService.GetStaff(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, member)
}

// DELETE /api/v1/staff/{id}.
func (handler *Handler) deleteStaff(writer http.ResponseWriter, request *http.Request) {
	err := handler.staffService.DeleteStaff(request.Context(), requestutil.Param(request, "id"), requestMeta(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// GET /api/v1/staff/{id}/assignments.
func (handler *Handler) listAssignments(writer http.ResponseWriter, request *http.Request) {
	assignments, err := handler.staffService.ListAssignments(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, assignments)
}

/*
PUT /api/v1/staff/{id}/assignments/primary.

Description: Saves an assignment as the staff member's primary one. Every
other assignment is demoted and the composite code is regenerated; when the
code changes, a notification is dispatched best-effort.

Response:
  - 200: Staff: Entity with the current composite code
  - 400: Validation failure
  - 404: Staff, department, or designation missing
  - 500: Configuration error (unresolvable unit prefix)
*/
func (handler *Handler) savePrimaryAssignment(writer http.ResponseWriter, request *http.Request) {
	var input SaveAssignmentInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	member, err := handler.staffService.SavePrimaryAssignment(
		request.Context(),
		requestutil.Param(request, "id"),
		input,
		requestMeta(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, member)
}
