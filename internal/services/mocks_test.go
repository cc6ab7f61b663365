package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/graduate-tracer/survey-service/internal/cache"
	"github.com/graduate-tracer/survey-service/internal/events"
	"github.com/graduate-tracer/survey-service/internal/metrics"
	"github.com/graduate-tracer/survey-service/internal/models"
	"github.com/graduate-tracer/survey-service/internal/repositories"
	"github.com/graduate-tracer/survey-service/internal/validator"
)

// MockSurveyRepository is a mock implementation of SurveyRepository
type MockSurveyRepository struct {
	mock.Mock
}

func (m *MockSurveyRepository) Create(ctx context.Context, tx *gorm.DB, survey *models.Survey) error {
	args := m.Called(ctx, tx, survey)
	return args.Error(0)
}

func (m *MockSurveyRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Survey, error) {
	args := m.Called(ctx, tx, id)
	if s, ok := args.Get(0).(*models.Survey); ok && s != nil {
		clone := s.Clone()
		return &clone, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSurveyRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.SurveyFilters) ([]*models.Survey, int64, error) {
	args := m.Called(ctx, tx, filters)
	return args.Get(0).([]*models.Survey), args.Get(1).(int64), args.Error(2)
}

func (m *MockSurveyRepository) Update(ctx context.Context, tx *gorm.DB, survey *models.Survey) error {
	args := m.Called(ctx, tx, survey)
	return args.Error(0)
}

func (m *MockSurveyRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, from, to models.SurveyStatus) (bool, error) {
	args := m.Called(ctx, tx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockSurveyRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockSurveyRepository) GetExpired(ctx context.Context, tx *gorm.DB, now time.Time) ([]*models.Survey, error) {
	args := m.Called(ctx, tx, now)
	return args.Get(0).([]*models.Survey), args.Error(1)
}

// MockResponseRepository is a mock implementation of ResponseRepository
type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) Create(ctx context.Context, tx *gorm.DB, response *models.SurveyResponse) error {
	args := m.Called(ctx, tx, response)
	return args.Error(0)
}

func (m *MockResponseRepository) ListBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint, filters repositories.ResponseFilters) ([]*models.SurveyResponse, int64, error) {
	args := m.Called(ctx, tx, surveyID, filters)
	return args.Get(0).([]*models.SurveyResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockResponseRepository) CountBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) (int64, error) {
	args := m.Called(ctx, tx, surveyID)
	return args.Get(0).(int64), args.Error(1)
}

// MockEmploymentRepository is a mock implementation of EmploymentRepository
type MockEmploymentRepository struct {
	mock.Mock
}

func (m *MockEmploymentRepository) Create(ctx context.Context, tx *gorm.DB, record *models.EmploymentRecord) error {
	args := m.Called(ctx, tx, record)
	return args.Error(0)
}

func (m *MockEmploymentRepository) GetLatest(ctx context.Context, tx *gorm.DB, graduateID string) (*models.EmploymentRecord, error) {
	args := m.Called(ctx, tx, graduateID)
	if r, ok := args.Get(0).(*models.EmploymentRecord); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEmploymentRepository) ListByGraduate(ctx context.Context, tx *gorm.DB, graduateID string) ([]*models.EmploymentRecord, error) {
	args := m.Called(ctx, tx, graduateID)
	return args.Get(0).([]*models.EmploymentRecord), args.Error(1)
}

// ===== FIXTURES =====

type fixture struct {
	surveyRepo     *MockSurveyRepository
	responseRepo   *MockResponseRepository
	employmentRepo *MockEmploymentRepository
	publisher      *events.MockEventPublisher
	metrics        *metrics.Collector
	redis          *miniredis.Miniredis
	logger         *slog.Logger
	validator      *validator.Validator

	surveys   SurveyService
	responses ResponseService
	analytics AnalyticsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		surveyRepo:     &MockSurveyRepository{},
		responseRepo:   &MockResponseRepository{},
		employmentRepo: &MockEmploymentRepository{},
		publisher:      events.NewMockEventPublisher(logger),
		metrics:        metrics.NewCollector(),
		redis:          mr,
		logger:         logger,
		validator:      validator.New(),
	}

	cacheService := cache.NewRedisCache(client, cache.Options{Prefix: "test:"}, logger)
	f.surveys = NewSurveyService(f.surveyRepo, f.responseRepo, cacheService, f.publisher, f.metrics, logger, f.validator, time.Minute)
	f.responses = NewResponseService(f.surveys, f.responseRepo, f.publisher, f.metrics, logger, f.validator)
	f.analytics = NewAnalyticsService(f.surveys, f.responseRepo, f.metrics, logger)

	t.Cleanup(func() {
		f.surveyRepo.AssertExpectations(t)
		f.responseRepo.AssertExpectations(t)
		f.employmentRepo.AssertExpectations(t)
	})
	return f
}

func tracerSurvey(id uint, status models.SurveyStatus) *models.Survey {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &models.Survey{
		ID:        id,
		Title:     "Graduate Tracer 2026",
		Status:    status,
		StartDate: start,
		EndDate:   start.AddDate(0, 6, 0),
		Version:   1,
		Questions: []models.Question{
			{Text: "Full name", Type: models.QuestionText, Required: true},
			{Text: "Employed?", Type: models.QuestionRadio, Options: datatypes.JSONSlice[string]{"Yes", "No"}, Required: true},
			{Text: "Skills", Type: models.QuestionCheckbox, Options: datatypes.JSONSlice[string]{"Go", "SQL", "Excel"}},
		},
	}
}
