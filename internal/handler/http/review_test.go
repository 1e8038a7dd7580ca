package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairlane/careerfair/internal/domain"
	"github.com/fairlane/careerfair/internal/engine/memory"
	"github.com/fairlane/careerfair/internal/event"
	"github.com/fairlane/careerfair/internal/service"
	apperrors "github.com/fairlane/careerfair/pkg/errors"
	"github.com/fairlane/careerfair/pkg/httputil"
	pkgkafka "github.com/fairlane/careerfair/pkg/kafka"
	"github.com/fairlane/careerfair/pkg/middleware"
)

// ============================================================================
// Mock repositories
// ============================================================================

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) List(ctx context.Context, limit int) ([]domain.Review, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) ListAll(ctx context.Context) ([]domain.Review, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) Search(ctx context.Context, query string, limit int) ([]domain.Review, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) Update(ctx context.Context, id, ownerID string, update domain.ReviewUpdate) (*domain.Review, error) {
	args := m.Called(ctx, id, ownerID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) Delete(ctx context.Context, id, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

func (m *mockReviewRepository) Summary(ctx context.Context) (*domain.ReviewSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewSummary), args.Error(1)
}

// noopCache satisfies service.SummaryCache without a Redis instance.
type noopCache struct{}

func (noopCache) Get(ctx context.Context) (*domain.ReviewSummary, error) {
	return nil, apperrors.NotFound("summary", "reviews:summary")
}
func (noopCache) Set(ctx context.Context, summary *domain.ReviewSummary) error { return nil }
func (noopCache) Invalidate(ctx context.Context) error                         { return nil }

// ============================================================================
// Test helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testEventProducer() *event.Producer {
	logger := testLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	return event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
}

// stubValidator accepts any bearer token and identifies the caller as user-1.
func stubValidator(role string) middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		return &middleware.Claims{UserID: "user-1", Email: "user-1@iastate.edu", Role: role}, nil
	}
}

func testReviewHandler(repo *mockReviewRepository) *ReviewHandler {
	logger := testLogger()
	reviews := service.NewReviewService(repo, noopCache{}, testEventProducer(), logger)
	search := service.NewSearchService(memory.New(), repo, logger)
	return NewReviewHandler(reviews, search, logger)
}

// setupReviewRouter creates a chi router matching the production route layout.
func setupReviewRouter(handler *ReviewHandler, role string) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/reviews", handler.ListReviews)
		r.Get("/reviews/summary", handler.Summary)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(stubValidator(role)))
			r.Post("/reviews", handler.CreateReview)
			r.Patch("/reviews/{id}", handler.UpdateReview)
			r.Delete("/reviews/{id}", handler.DeleteReview)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("admin"))
				r.Post("/search/reindex", handler.Reindex)
			})
		})
	})
	return r
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

func authedRequest(method, target string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("Authorization", "Bearer test-token")
	req.Header.Set("Content-Type", "application/json")
	return req
}

func sampleReview() *domain.Review {
	return &domain.Review{
		ID:          "550e8400-e29b-41d4-a716-446655440001",
		OwnerID:     "user-1",
		CompanyName: "John Deere",
		CompanyNorm: "john deere",
		Comment:     "great conversation at the booth",
		Rating:      5,
		Major:       "CprE",
		CreatedAt:   time.Now().UTC(),
	}
}

// ============================================================================
// POST /api/v1/reviews
// ============================================================================

func TestCreateReview_Success(t *testing.T) {
	repo := new(mockReviewRepository)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Review")).Return(nil)

	router := setupReviewRouter(testReviewHandler(repo), "student")

	body, _ := json.Marshal(CreateReviewRequest{
		CompanyName: "John Deere",
		Comment:     "great conversation at the booth",
		Rating:      5,
		Major:       "CprE",
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/reviews", body))

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Data)

	data := resp.Data.(map[string]any)
	assert.NotEmpty(t, data["_id"])
	assert.Equal(t, "John Deere", data["companyName"])
	// Owner identity never appears on the wire.
	_, hasOwner := data["ownerId"]
	assert.False(t, hasOwner)
	repo.AssertExpectations(t)
}

func TestCreateReview_Unauthorized(t *testing.T) {
	repo := new(mockReviewRepository)
	router := setupReviewRouter(testReviewHandler(repo), "student")

	body, _ := json.Marshal(CreateReviewRequest{CompanyName: "John Deere", Comment: "ok", Rating: 4})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", bytes.NewReader(body))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	repo.AssertNotCalled(t, "Create")
}

func TestCreateReview_ValidationError(t *testing.T) {
	repo := new(mockReviewRepository)
	router := setupReviewRouter(testReviewHandler(repo), "student")

	body, _ := json.Marshal(CreateReviewRequest{CompanyName: "John Deere", Comment: "ok", Rating: 9})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/reviews", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "Rating")
}

func TestCreateReview_InvalidJSON(t *testing.T) {
	repo := new(mockReviewRepository)
	router := setupReviewRouter(testReviewHandler(repo), "student")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/reviews", []byte("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReview_DuplicateCompany(t *testing.T) {
	repo := new(mockReviewRepository)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Review")).
		Return(apperrors.AlreadyExists("review", "company", "John Deere"))

	router := setupReviewRouter(testReviewHandler(repo), "student")

	body, _ := json.Marshal(CreateReviewRequest{CompanyName: "John Deere", Comment: "again", Rating: 3})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/reviews", body))

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "ALREADY_EXISTS", resp.Error.Code)
}

// ============================================================================
// GET /api/v1/reviews
// ============================================================================

func TestListReviews_Recent(t *testing.T) {
	repo := new(mockReviewRepository)
	repo.On("List", mock.Anything, 100).Return([]domain.Review{*sampleReview()}, nil)

	router := setupReviewRouter(testReviewHandler(repo), "student")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reviews", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Len(t, data["reviews"], 1)
	repo.AssertExpectations(t)
}

func TestListReviews_QueryUsesEngine(t *testing.T) {
	repo := new(mockReviewRepository)
	handler := testReviewHandler(repo)
	router := setupReviewRouter(handler, "student")

	// Engine is empty; a query must not touch the repository list path.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reviews?q=deere&limit=10", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertNotCalled(t, "List")
	repo.AssertNotCalled(t, "Search")
}

// ============================================================================
// PATCH /api/v1/reviews/{id}
// ============================================================================

func TestUpdateReview_Success(t *testing.T) {
	updated := sampleReview()
	updated.Comment = "edited"

	repo := new(mockReviewRepository)
	repo.On("Update", mock.Anything, updated.ID, "user-1", mock.AnythingOfType("domain.ReviewUpdate")).
		Return(updated, nil)

	router := setupReviewRouter(testReviewHandler(repo), "student")

	body, _ := json.Marshal(map[string]any{"comment": "edited"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPatch, "/api/v1/reviews/"+updated.ID, body))

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestUpdateReview_NotOwnedReadsAsNotFound(t *testing.T) {
	repo := new(mockReviewRepository)
	repo.On("Update", mock.Anything, "r-1", "user-1", mock.AnythingOfType("domain.ReviewUpdate")).
		Return(nil, apperrors.NotFound("review", "r-1"))

	router := setupReviewRouter(testReviewHandler(repo), "student")

	body, _ := json.Marshal(map[string]any{"rating": 2})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPatch, "/api/v1/reviews/r-1", body))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestUpdateReview_EmptyBody(t *testing.T) {
	repo := new(mockReviewRepository)
	router := setupReviewRouter(testReviewHandler(repo), "student")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPatch, "/api/v1/reviews/r-1", []byte(`{}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "Update")
}

// ============================================================================
// DELETE /api/v1/reviews/{id}
// ============================================================================

func TestDeleteReview_Success(t *testing.T) {
	repo := new(mockReviewRepository)
	repo.On("Delete", mock.Anything, "r-1", "user-1").Return(nil)

	router := setupReviewRouter(testReviewHandler(repo), "student")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodDelete, "/api/v1/reviews/r-1", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	repo.AssertExpectations(t)
}

func TestDeleteReview_NotFound(t *testing.T) {
	repo := new(mockReviewRepository)
	repo.On("Delete", mock.Anything, "r-1", "user-1").Return(apperrors.NotFound("review", "r-1"))

	router := setupReviewRouter(testReviewHandler(repo), "student")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodDelete, "/api/v1/reviews/r-1", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================================================
// GET /api/v1/reviews/summary
// ============================================================================

func TestSummary_Success(t *testing.T) {
	summary := &domain.ReviewSummary{
		Companies: []domain.CompanySummary{{CompanyName: "John Deere", AvgRating: 4.5, Count: 2}},
		Majors:    []domain.MajorSummary{{Major: "CprE", AvgRating: 4.5, Count: 2}},
	}

	repo := new(mockReviewRepository)
	repo.On("Summary", mock.Anything).Return(summary, nil)

	router := setupReviewRouter(testReviewHandler(repo), "student")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reviews/summary", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Len(t, data["companies"], 1)
	assert.Len(t, data["majors"], 1)
}

// ============================================================================
// POST /api/v1/search/reindex
// ============================================================================

func TestReindex_RequiresAdmin(t *testing.T) {
	repo := new(mockReviewRepository)
	router := setupReviewRouter(testReviewHandler(repo), "student")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/search/reindex", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	repo.AssertNotCalled(t, "ListAll")
}

func TestReindex_Admin(t *testing.T) {
	repo := new(mockReviewRepository)
	repo.On("ListAll", mock.Anything).Return([]domain.Review{*sampleReview()}, nil)

	router := setupReviewRouter(testReviewHandler(repo), "admin")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/search/reindex", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(1), data["indexed"])
}
