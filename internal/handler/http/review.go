package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fairlane/careerfair/internal/domain"
	"github.com/fairlane/careerfair/internal/service"
	"github.com/fairlane/careerfair/pkg/httputil"
	"github.com/fairlane/careerfair/pkg/middleware"
	"github.com/fairlane/careerfair/pkg/validator"
)

// maxBodyBytes caps request bodies well above the largest legal review.
const maxBodyBytes = 64 << 10

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	reviews *service.ReviewService
	search  *service.SearchService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(reviews *service.ReviewService, search *service.SearchService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews: reviews,
		search:  search,
		logger:  logger,
	}
}

// ListReviewsResponse is the payload of the review listing endpoint.
type ListReviewsResponse struct {
	Reviews []domain.Review `json:"reviews"`
}

// --- Request DTOs ---

// CreateReviewRequest is the JSON request body for posting a review.
type CreateReviewRequest struct {
	CompanyName string `json:"companyName" validate:"required,min=1,max=100"`
	Comment     string `json:"comment" validate:"required,min=1,max=200"`
	Rating      int    `json:"rating" validate:"required,gte=1,lte=5"`
	Major       string `json:"major" validate:"max=16"`
}

// UpdateReviewRequest is the JSON request body for editing a review.
// Absent fields are left unchanged.
type UpdateReviewRequest struct {
	Comment *string `json:"comment" validate:"omitempty,min=1,max=200"`
	Rating  *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Major   *string `json:"major" validate:"omitempty,max=16"`
}

// --- Handlers ---

// ListReviews handles GET /api/v1/reviews. With a q parameter the results
// are ranked by relevance; without one they are newest first.
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	reviews, err := h.search.Search(r.Context(), query, limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ListReviewsResponse{Reviews: reviews}})
}

// CreateReview handles POST /api/v1/reviews.
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req CreateReviewRequest
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

	review, err := h.reviews.CreateReview(r.Context(), ownerFromContext(r), &service.CreateReviewInput{
		CompanyName: req.CompanyName,
		Comment:     req.Comment,
		Rating:      req.Rating,
		Major:       req.Major,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}

// UpdateReview handles PATCH /api/v1/reviews/{id}.
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "review id is required"},
		})
		return
	}

	var req UpdateReviewRequest
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

	review, err := h.reviews.UpdateReview(r.Context(), id, ownerFromContext(r), &service.UpdateReviewInput{
		Comment: req.Comment,
		Rating:  req.Rating,
		Major:   req.Major,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// DeleteReview handles DELETE /api/v1/reviews/{id}.
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "review id is required"},
		})
		return
	}

	if err := h.reviews.DeleteReview(r.Context(), id, ownerFromContext(r)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /api/v1/reviews/summary.
func (h *ReviewHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reviews.Summary(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: summary})
}

// Reindex handles POST /api/v1/search/reindex.
func (h *ReviewHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	count, err := h.search.Reindex(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]int{"indexed": count}})
}

// ownerFromContext resolves the review owner identity from the authenticated
// request. Ownership is keyed by the user_id claim.
func ownerFromContext(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}
