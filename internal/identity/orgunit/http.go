package orgunit

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	requestutil "github.com/kadrio/kadrio/internal/platform/request"
	"github.com/kadrio/kadrio/internal/platform/respond"
	"github.com/kadrio/kadrio/internal/platform/validate"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/organizations", func(r chi.Router) {
		r.Post("/", handler.createOrganization)
		r.Get("/", handler.listOrganizations)
		r.Get("/{id}", handler.getOrganization)
	})
	router.Route("/institutions", func(r chi.Router) {
		r.Post("/", handler.createInstitution)
		r.Get("/", handler.listInstitutions)
		r.Get("/{id}", handler.getInstitution)
	})
	router.Route("/branches", func(r chi.Router) {
		r.Post("/", handler.createBranch)
		r.Get("/", handler.listBranches)
		r.Get("/{id}", handler.getBranch)
	})
	router.Route("/departments", func(r chi.Router) {
		r.Post("/", handler.createDepartment)
		r.Get("/", handler.listDepartments)
		r.Get("/{id}", handler.getDepartment)
		r.Post("/{id}/designations", handler.createDesignation)
		r.Get("/{id}/designations", handler.listDesignations)
	})
}

func (handler *Handler) createOrganization(writer http.ResponseWriter, request *http.Request) {
	var input CreateOrganizationInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	organization, err := handler.service.CreateOrganization(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, organization)
}

func (handler *Handler) listOrganizations(writer http.ResponseWriter, request *http.Request) {
	organizations, err := handler.service.ListOrganizations(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, organizations)
}

func (handler *Handler) getOrganization(writer http.ResponseWriter, request *http.Request) {
	organization, err := handler.service.GetOrganization(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, organization)
}

func (handler *Handler) createInstitution(writer http.ResponseWriter, request *http.Request) {
	var input CreateInstitutionInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	institution, err := handler.service.CreateInstitution(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, institution)
}

func (handler *Handler) listInstitutions(writer http.ResponseWriter, request *http.Request) {
	institutions, err := handler.service.ListInstitutions(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, institutions)
}

func (handler *Handler) getInstitution(writer http.ResponseWriter, request *http.Request) {
	institution, err := handler.service.GetInstitution(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, institution)
}

func (handler *Handler) createBranch(writer http.ResponseWriter, request *http.Request) {
	var input CreateBranchInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	branch, err := handler.service.CreateBranch(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, branch)
}

func (handler *Handler) listBranches(writer http.ResponseWriter, request *http.Request) {
	branches, err := handler.service.ListBranches(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, branches)
}

func (handler *Handler) getBranch(writer http.ResponseWriter, request *http.Request) {
	branch, err := handler.service.GetBranch(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, branch)
}

func (handler *Handler) createDepartment(writer http.ResponseWriter, request *http.Request) {
	var input CreateDepartmentInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	department, err := handler.service.CreateDepartment(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, department)
}

func (handler *Handler) listDepartments(writer http.ResponseWriter, request *http.Request) {
	departments, err := handler.service.ListDepartments(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, departments)
}

func (handler *Handler) getDepartment(writer http.ResponseWriter, request *http.Request) {
	department, err := handler.service.GetDepartment(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, department)
}

func (handler *Handler) createDesignation(writer http.ResponseWriter, request *http.Request) {
	var input CreateDesignationInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	designation, err := handler.service.CreateDesignation(request.Context(), requestutil.Param(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, designation)
}

func (handler *Handler) listDesignations(writer http.ResponseWriter, request *http.Request) {
	designations, err := handler.service.ListDesignations(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, designations)
}
