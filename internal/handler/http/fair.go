package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fairlane/careerfair/internal/service"
	"github.com/fairlane/careerfair/pkg/httputil"
	"github.com/fairlane/careerfair/pkg/middleware"
	"github.com/fairlane/careerfair/pkg/validator"
)

// FairHandler handles HTTP requests for the fair directory: student
// profiles, companies, and eligibility matches.
type FairHandler struct {
	profiles  *service.ProfileService
	companies *service.CompanyService
	matches   *service.MatchService
	logger    *slog.Logger
}

// NewFairHandler creates a new fair directory HTTP handler.
func NewFairHandler(profiles *service.ProfileService, companies *service.CompanyService, matches *service.MatchService, logger *slog.Logger) *FairHandler {
	return &FairHandler{
		profiles:  profiles,
		companies: companies,
		matches:   matches,
		logger:    logger,
	}
}

// --- Request DTOs ---

// UpsertProfileRequest is the JSON request body for replacing the caller's
// profile.
type UpsertProfileRequest struct {
	Major             string   `json:"major" validate:"max=100"`
	WorkAuthorization []string `json:"workAuthorization" validate:"dive,max=100"`
	EmploymentTypes   []string `json:"employmentTypes" validate:"dive,max=100"`
	MatchedCompanies  []string `json:"matchedCompanies" validate:"dive,max=100"`
}

// CreateCompanyRequest is the JSON request body for registering a company.
type CreateCompanyRequest struct {
	Name            string   `json:"name" validate:"required,min=1,max=100"`
	Majors          []string `json:"majors" validate:"dive,max=100"`
	SponsorVisa     bool     `json:"sponsorVisa"`
	EmploymentTypes []string `json:"employmentTypes" validate:"dive,max=100"`
	Website         string   `json:"website" validate:"omitempty,max=200"`
	Booth           string   `json:"booth" validate:"omitempty,max=20"`
}

// --- Profile handlers ---

// GetProfile handles GET /api/v1/profile.
func (h *FairHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.GetProfile(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: profile})
}

// UpsertProfile handles PUT /api/v1/profile.
func (h *FairHandler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req UpsertProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	profile, err := h.profiles.UpsertProfile(r.Context(), middleware.UserIDFromContext(r.Context()), &service.UpsertProfileInput{
		Major:             req.Major,
		WorkAuthorization: req.WorkAuthorization,
		EmploymentTypes:   req.EmploymentTypes,
		MatchedCompanies:  req.MatchedCompanies,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: profile})
}

// --- Match handlers ---

// GetMatches handles GET /api/v1/matches.
func (h *FairHandler) GetMatches(w http.ResponseWriter, r *http.Request) {
	matched, err := h.matches.Matches(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: matched})
}

// --- Company handlers ---

// ListCompanies handles GET /api/v1/companies.
func (h *FairHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.companies.ListCompanies(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: companies})
}

// GetCompany handles GET /api/v1/companies/{id}.
func (h *FairHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "company id is required"},
		})
		return
	}

	company, err := h.companies.GetCompany(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: company})
}

// CreateCompany handles POST /api/v1/companies.
func (h *FairHandler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req CreateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	company, err := h.companies.CreateCompany(r.Context(), &service.CreateCompanyInput{
		Name:            req.Name,
		Majors:          req.Majors,
		SponsorVisa:     req.SponsorVisa,
		EmploymentTypes: req.EmploymentTypes,
		Website:         req.Website,
		Booth:           req.Booth,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: company})
}
