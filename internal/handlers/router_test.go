package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/graduate-tracer/survey-service/internal/cache"
	"github.com/graduate-tracer/survey-service/internal/events"
	"github.com/graduate-tracer/survey-service/internal/metrics"
	"github.com/graduate-tracer/survey-service/internal/middleware"
	"github.com/graduate-tracer/survey-service/internal/models"
	"github.com/graduate-tracer/survey-service/internal/repositories/postgres"
	"github.com/graduate-tracer/survey-service/internal/services"
	"github.com/graduate-tracer/survey-service/internal/utils"
	"github.com/graduate-tracer/survey-service/internal/validator"
	"github.com/graduate-tracer/survey-service/pkg"
)

type testServer struct {
	router    *gin.Engine
	publisher *events.MockEventPublisher
}

func newTestServer(t *testing.T, limiter *middleware.RateLimiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, pkg.AutoMigrate(db))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := events.NewMockEventPublisher(slogger)
	collector := metrics.NewCollector()

	manager := services.NewServiceManager(services.Dependencies{
		Surveys:     postgres.NewSurveyPostgreSQL(db),
		Responses:   postgres.NewResponsePostgreSQL(db),
		Employment:  postgres.NewEmploymentPostgreSQL(db),
		Cache:       cache.NewRedisCache(client, cache.Options{Prefix: "test:"}, slogger),
		Publisher:   publisher,
		Metrics:     collector,
		Logger:      slogger,
		Validator:   validator.New(),
		SurveyCache: time.Minute,
	})

	hm := NewHandlerManager(manager, utils.NewSlogLogger(slogger), RouterOptions{
		Metrics: collector,
		Limiter: limiter,
	})
	return &testServer{router: hm.NewRouter(), publisher: publisher}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(UserIDHeader, "admin-1")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func createTracerSurvey(t *testing.T, s *testServer) uint {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/surveys", map[string]interface{}{
		"title":      "Graduate Tracer 2026",
		"start_date": "2026-01-01T00:00:00Z",
		"end_date":   "2099-01-01T00:00:00Z",
		"questions": []map[string]interface{}{
			{"text": "Full name", "type": "text", "required": true},
			{"text": "Employed?", "type": "radio", "options": []string{"Yes", "No"}, "required": true},
			{"text": "Skills", "type": "checkbox", "options": []string{"Go", "SQL", "Excel"}},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Survey](t, w)
	assert.Equal(t, models.SurveyDraft, created.Status)
	assert.Equal(t, "admin-1", created.CreatedBy)
	return created.ID
}

func TestRouter_HealthAndRequestID(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(utils.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(utils.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(utils.RequestIDHeader))
}

func TestRouter_SurveyLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	id := createTracerSurvey(t, s)
	base := fmt.Sprintf("/api/v1/surveys/%d", id)

	// builder: add then remove a question
	w := s.do(t, http.MethodPost, base+"/questions", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	added := decode[services.BuilderResult](t, w)
	assert.Len(t, added.Survey.Questions, 4)
	assert.NotEmpty(t, added.Issues)

	w = s.do(t, http.MethodDelete, base+"/questions/3", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[services.BuilderResult](t, w).Survey.Questions, 3)

	w = s.do(t, http.MethodPut, base+"/questions/1/options", SetOptionsRequest{Text: "Yes\nNo\n"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"question 1 has 1 blank option(s)"}, decode[services.BuilderResult](t, w).Warnings)
	w = s.do(t, http.MethodPut, base+"/questions/1/options", SetOptionsRequest{Text: "Yes\nNo"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodDelete, base+"/questions/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// submissions are blocked until publish
	answers := map[string]interface{}{"answers": map[string]interface{}{"0": "Ada", "1": "Yes", "2": []string{"SQL", "Go"}}}
	w = s.do(t, http.MethodPost, base+"/responses", answers)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, base+"/publish", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.SurveyActive, decode[models.Survey](t, w).Status)

	w = s.do(t, http.MethodPost, base+"/questions", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, base+"/form", nil)
	require.Equal(t, http.StatusOK, w.Code)
	form := decode[services.FormResponse](t, w)
	assert.True(t, form.Open)
	assert.Len(t, form.Controls, 3)

	// invalid answers report every problem
	w = s.do(t, http.MethodPost, base+"/responses/validate", map[string]interface{}{
		"answers": map[string]interface{}{"1": "Maybe"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	problem := decode[ErrorResponse](t, w)
	assert.Equal(t, "validation_failed", problem.Code)
	assert.Len(t, problem.Details, 2)

	w = s.do(t, http.MethodPost, base+"/responses", answers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	stored := decode[models.SurveyResponse](t, w)
	assert.Equal(t, "Go,SQL", stored.Answers[2].Answer)
	assert.Len(t, s.publisher.EventsOfType(events.EventResponseSubmitted), 1)

	w = s.do(t, http.MethodGet, base+"/responses", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[services.ResponseListResponse](t, w).Total)

	w = s.do(t, http.MethodGet, base+"/analytics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[map[string]interface{}](t, w)
	assert.EqualValues(t, 1, report["total"])
	assert.EqualValues(t, 1, report["completion_rate"])

	w = s.do(t, http.MethodPost, base+"/close", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, base+"/responses", answers)
	require.Equal(t, http.StatusConflict, w.Code)
	blocked := decode[ErrorResponse](t, w)
	assert.Equal(t, "survey_not_open", blocked.Code)
	require.NotNil(t, blocked.Retryable)
	assert.False(t, *blocked.Retryable)

	w = s.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRouter_CreateSurveyRejectsInvalidSchema(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/surveys", map[string]interface{}{
		"title":      "Broken",
		"start_date": "2026-06-01T00:00:00Z",
		"end_date":   "2026-01-01T00:00:00Z",
		"questions": []map[string]interface{}{
			{"text": "Pick", "type": "radio"},
		},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "invalid_schema", decode[ErrorResponse](t, w).Code)

	w = s.do(t, http.MethodGet, "/api/v1/surveys/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Export(t *testing.T) {
	s := newTestServer(t, nil)
	id := createTracerSurvey(t, s)
	base := fmt.Sprintf("/api/v1/surveys/%d", id)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, base+"/publish", nil).Code)
	w := s.do(t, http.MethodPost, base+"/responses", map[string]interface{}{
		"answers": map[string]interface{}{"0": "Ada", "1": "No"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, base+"/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	assert.True(t, strings.HasPrefix(w.Body.String(), "Response ID,Respondent,Submitted At,Full name"))

	w = s.do(t, http.MethodGet, base+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, exportContentTypes["xlsx"], w.Header().Get("Content-Type"))

	w = s.do(t, http.MethodGet, base+"/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_Employment(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/api/v1/employment/form?employment_status=Unemployed+-+Looking+for+work", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[services.EmploymentFormResponse](t, w).Fields, 5)

	w = s.do(t, http.MethodPost, "/api/v1/employment/profiles/validate", map[string]interface{}{
		"answers": map[string]interface{}{"employment_status": "Employed"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/employment/profiles/grad-1", map[string]interface{}{
		"answers": map[string]interface{}{
			"employment_status": "Unemployed - Looking for work",
			"company_name":      "Old Corp",
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/employment/profiles/grad-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	record := decode[models.EmploymentRecord](t, w)
	assert.Equal(t, "Unemployed - Looking for work", record.EmploymentStatus)
	assert.Equal(t, "", record.Answers[1].Answer)

	w = s.do(t, http.MethodGet, "/api/v1/employment/profiles/nobody", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_SubmissionRateLimit(t *testing.T) {
	s := newTestServer(t, middleware.NewRateLimiter(0.001, 1))

	body := map[string]interface{}{"answers": map[string]interface{}{"employment_status": "Pursuing further studies"}}
	w := s.do(t, http.MethodPost, "/api/v1/employment/profiles/grad-1", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/employment/profiles/grad-1", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// reads are not limited
	w = s.do(t, http.MethodGet, "/api/v1/employment/profiles/grad-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_Metrics(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodGet, "/health", nil)

	w := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "survey_service_http_requests_total")
}
