package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/graduate-tracer/survey-service/internal/cache"
	apperrors "github.com/graduate-tracer/survey-service/internal/errors"
	"github.com/graduate-tracer/survey-service/internal/events"
	"github.com/graduate-tracer/survey-service/internal/metrics"
	"github.com/graduate-tracer/survey-service/internal/models"
	"github.com/graduate-tracer/survey-service/internal/repositories"
	"github.com/graduate-tracer/survey-service/internal/survey"
	"github.com/graduate-tracer/survey-service/internal/validator"
	"gorm.io/gorm"
)

// SurveyService manages survey definitions and their lifecycle
type SurveyService interface {
	// Core CRUD
	Create(ctx context.Context, req *CreateSurveyRequest, creatorID string) (*models.Survey, error)
	GetByID(ctx context.Context, id uint) (*models.Survey, error)
	// GetCurrent reads the stored survey without consulting the cache
	GetCurrent(ctx context.Context, id uint) (*models.Survey, error)
	List(ctx context.Context, filters repositories.SurveyFilters) (*SurveyListResponse, error)
	Update(ctx context.Context, id uint, req *UpdateSurveyRequest) (*models.Survey, error)
	Delete(ctx context.Context, id uint) error

	// Builder operations on draft surveys
	AddQuestion(ctx context.Context, id uint) (*BuilderResult, error)
	RemoveQuestion(ctx context.Context, id uint, index int) (*BuilderResult, error)
	UpdateQuestion(ctx context.Context, id uint, index int, req *UpdateQuestionRequest) (*BuilderResult, error)
	SetOptions(ctx context.Context, id uint, index int, text string) (*BuilderResult, error)

	// Lifecycle
	Publish(ctx context.Context, id uint) (*models.Survey, error)
	Close(ctx context.Context, id uint) (*models.Survey, error)
	CloseExpired(ctx context.Context, now time.Time) (int, error)
}

// ===== REQUEST/RESPONSE TYPES =====

type CreateSurveyRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	StartDate   time.Time         `json:"start_date"`
	EndDate     time.Time         `json:"end_date"`
	Questions   []models.Question `json:"questions"`
}

type UpdateSurveyRequest struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	StartDate   *time.Time         `json:"start_date"`
	EndDate     *time.Time         `json:"end_date"`
	Questions   *[]models.Question `json:"questions"`
}

type UpdateQuestionRequest struct {
	Text     *string              `json:"text"`
	Type     *models.QuestionType `json:"type"`
	Required *bool                `json:"required"`
	Options  *[]string            `json:"options"`
}

type SurveyListResponse struct {
	Surveys []*models.Survey `json:"surveys"`
	Total   int64            `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// BuilderResult is the stored draft after a builder operation. Issues lists
// schema problems that will block publishing; Warnings flags likely authoring
// slips such as blank options.
type BuilderResult struct {
	Survey   *models.Survey   `json:"survey"`
	Issues   ValidationErrors `json:"issues,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
}

type surveyService struct {
	surveys   repositories.SurveyRepository
	responses repositories.ResponseRepository
	cache     cache.CacheService
	publisher events.EventPublisher
	metrics   *metrics.Collector
	logger    *slog.Logger
	validator *validator.Validator
	cacheTTL  time.Duration
}

func NewSurveyService(
	surveys repositories.SurveyRepository,
	responses repositories.ResponseRepository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	collector *metrics.Collector,
	logger *slog.Logger,
	validator *validator.Validator,
	cacheTTL time.Duration,
) SurveyService {
	return &surveyService{
		surveys:   surveys,
		responses: responses,
		cache:     cacheService,
		publisher: publisher,
		metrics:   collector,
		logger:    logger,
		validator: validator,
		cacheTTL:  cacheTTL,
	}
}

// ===== CORE CRUD =====

func (s *surveyService) Create(ctx context.Context, req *CreateSurveyRequest, creatorID string) (*models.Survey, error) {
	s.logger.Info("Creating survey", "title", req.Title, "creator_id", creatorID)

	newSurvey := &models.Survey{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.SurveyDraft,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedBy:   creatorID,
		Version:     1,
		Questions:   req.Questions,
	}

	if err := s.validator.ValidateSurvey(newSurvey); err != nil {
		return nil, err
	}

	if err := s.surveys.Create(ctx, nil, newSurvey); err != nil {
		s.logger.Error("Failed to create survey", "error", err)
		return nil, fmt.Errorf("failed to create survey: %w", err)
	}

	s.logger.Info("Survey created", "survey_id", newSurvey.ID, "questions", len(newSurvey.Questions))
	return newSurvey, nil
}

// GetByID serves the schema from cache when possible
func (s *surveyService) GetByID(ctx context.Context, id uint) (*models.Survey, error) {
	var cached models.Survey
	err := s.cache.Get(ctx, surveyCacheKey(id), &cached)
	switch {
	case err == nil:
		s.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return &cached, nil
	case errors.Is(err, cache.ErrCacheMiss):
		s.metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		s.metrics.CacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("Survey cache lookup failed", "survey_id", id, "error", err)
	}

	found, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, surveyCacheKey(id), found, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to cache survey", "survey_id", id, "error", err)
	}
	return found, nil
}

// GetCurrent is used where a stale status would be wrong, such as accepting a
// submission: a cache refill racing a Close can hold an active copy until its TTL.
func (s *surveyService) GetCurrent(ctx context.Context, id uint) (*models.Survey, error) {
	return s.load(ctx, id)
}

func (s *surveyService) List(ctx context.Context, filters repositories.SurveyFilters) (*SurveyListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	surveys, total, err := s.surveys.List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list surveys: %w", err)
	}

	return &SurveyListResponse{
		Surveys: surveys,
		Total:   total,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
	}, nil
}

func (s *surveyService) Update(ctx context.Context, id uint, req *UpdateSurveyRequest) (*models.Survey, error) {
	current, err := s.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		current.Title = *req.Title
	}
	if req.Description != nil {
		current.Description = *req.Description
	}
	if req.StartDate != nil {
		current.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		current.EndDate = *req.EndDate
	}
	if req.Questions != nil {
		current.Questions = *req.Questions
	}

	if err := s.validator.ValidateSurvey(current); err != nil {
		return nil, err
	}

	if err := s.store(ctx, current); err != nil {
		return nil, err
	}

	s.logger.Info("Survey updated", "survey_id", id, "version", current.Version)
	return current, nil
}

func (s *surveyService) Delete(ctx context.Context, id uint) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	count, err := s.responses.CountBySurvey(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to count responses: %w", err)
	}
	if count > 0 {
		return ErrSurveyNotDeletable
	}

	if err := s.surveys.Delete(ctx, nil, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSurveyNotFound
		}
		return fmt.Errorf("failed to delete survey: %w", err)
	}
	s.invalidate(ctx, id)

	s.logger.Info("Survey deleted", "survey_id", id)
	return nil
}

// ===== BUILDER OPERATIONS =====

func (s *surveyService) AddQuestion(ctx context.Context, id uint) (*BuilderResult, error) {
	return s.edit(ctx, id, func(b *survey.Builder) error {
		b.AddQuestion()
		return nil
	})
}

func (s *surveyService) RemoveQuestion(ctx context.Context, id uint, index int) (*BuilderResult, error) {
	return s.edit(ctx, id, func(b *survey.Builder) error {
		return b.RemoveQuestion(index)
	})
}

func (s *surveyService) UpdateQuestion(ctx context.Context, id uint, index int, req *UpdateQuestionRequest) (*BuilderResult, error) {
	return s.edit(ctx, id, func(b *survey.Builder) error {
		if req.Text != nil {
			if err := b.UpdateQuestion(index, survey.FieldText, *req.Text); err != nil {
				return err
			}
		}
		if req.Type != nil {
			if err := b.UpdateQuestion(index, survey.FieldType, *req.Type); err != nil {
				return err
			}
		}
		if req.Required != nil {
			if err := b.UpdateQuestion(index, survey.FieldRequired, *req.Required); err != nil {
				return err
			}
		}
		if req.Options != nil {
			if err := b.UpdateQuestion(index, survey.FieldOptions, *req.Options); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *surveyService) SetOptions(ctx context.Context, id uint, index int, text string) (*BuilderResult, error) {
	return s.edit(ctx, id, func(b *survey.Builder) error {
		return b.SetOptions(index, text)
	})
}

// edit applies a builder operation to a draft and stores the working copy
// without blocking on schema problems; those are reported back instead.
func (s *surveyService) edit(ctx context.Context, id uint, apply func(b *survey.Builder) error) (*BuilderResult, error) {
	current, err := s.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}

	builder := survey.NewBuilder(*current)
	if err := apply(builder); err != nil {
		var indexErr *survey.IndexError
		if errors.As(err, &indexErr) {
			return nil, NewValidationError("index", indexErr.Error(), indexErr.Index)
		}
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	edited := builder.Survey()
	if err := s.store(ctx, &edited); err != nil {
		return nil, err
	}

	result := &BuilderResult{Survey: &edited}
	var schemaErr *apperrors.SchemaError
	if err := s.validator.ValidateSurvey(&edited); errors.As(err, &schemaErr) {
		result.Issues = schemaErr.Errors
	}
	for i := range edited.Questions {
		if blanks := s.validator.Question().BlankOptions(&edited.Questions[i]); len(blanks) > 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("question %d has %d blank option(s)", i, len(blanks)))
		}
	}
	return result, nil
}

// ===== LIFECYCLE =====

func (s *surveyService) Publish(ctx context.Context, id uint) (*models.Survey, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != models.SurveyDraft {
		return nil, fmt.Errorf("%w: cannot publish a %s survey", ErrInvalidStatusTransition, current.Status)
	}
	if err := s.validator.ValidatePublishable(current); err != nil {
		return nil, err
	}

	if err := s.transition(ctx, current, models.SurveyDraft, models.SurveyActive); err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewSurveyPublishedEvent(events.SurveyPublishedEvent{
		SurveyID:      current.ID,
		Title:         current.Title,
		QuestionCount: len(current.Questions),
		StartDate:     current.StartDate,
		EndDate:       current.EndDate,
		CreatedBy:     current.CreatedBy,
	}))
	return current, nil
}

func (s *surveyService) Close(ctx context.Context, id uint) (*models.Survey, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != models.SurveyActive {
		return nil, fmt.Errorf("%w: cannot close a %s survey", ErrInvalidStatusTransition, current.Status)
	}

	if err := s.transition(ctx, current, models.SurveyActive, models.SurveyClosed); err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewSurveyClosedEvent(events.SurveyClosedEvent{
		SurveyID: current.ID,
		Title:    current.Title,
		ClosedAt: time.Now().UTC(),
	}))
	return current, nil
}

// CloseExpired closes every active survey whose end date has passed
func (s *surveyService) CloseExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.surveys.GetExpired(ctx, nil, now)
	if err != nil {
		return 0, fmt.Errorf("failed to find expired surveys: %w", err)
	}

	closed := 0
	for _, candidate := range expired {
		if err := s.transition(ctx, candidate, models.SurveyActive, models.SurveyClosed); err != nil {
			if errors.Is(err, ErrInvalidStatusTransition) {
				continue
			}
			return closed, err
		}
		closed++
		s.publish(ctx, events.NewSurveyClosedEvent(events.SurveyClosedEvent{
			SurveyID:  candidate.ID,
			Title:     candidate.Title,
			ClosedAt:  now,
			Automatic: true,
		}))
	}

	if closed > 0 {
		s.logger.Info("Closed expired surveys", "count", closed)
	}
	return closed, nil
}

// ===== HELPERS =====

func (s *surveyService) load(ctx context.Context, id uint) (*models.Survey, error) {
	found, err := s.surveys.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	return found, nil
}

func (s *surveyService) loadDraft(ctx context.Context, id uint) (*models.Survey, error) {
	found, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if found.Status != models.SurveyDraft {
		return nil, ErrSurveyNotEditable
	}
	return found, nil
}

func (s *surveyService) store(ctx context.Context, changed *models.Survey) error {
	if err := s.surveys.Update(ctx, nil, changed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSurveyNotFound
		}
		return fmt.Errorf("failed to update survey: %w", err)
	}
	s.invalidate(ctx, changed.ID)
	return nil
}

func (s *surveyService) transition(ctx context.Context, target *models.Survey, from, to models.SurveyStatus) error {
	ok, err := s.surveys.UpdateStatus(ctx, nil, target.ID, from, to)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: survey %d is no longer %s", ErrInvalidStatusTransition, target.ID, from)
	}
	target.Status = to
	s.invalidate(ctx, target.ID)
	s.metrics.SurveyTransitions.WithLabelValues(string(to)).Inc()
	s.logger.Info("Survey status changed", "survey_id", target.ID, "from", from, "to", to)
	return nil
}

func (s *surveyService) invalidate(ctx context.Context, id uint) {
	if err := s.cache.Delete(ctx, surveyCacheKey(id)); err != nil {
		s.logger.Warn("Failed to invalidate survey cache", "survey_id", id, "error", err)
	}
}

// publish logs publisher failures without failing the caller
func (s *surveyService) publish(ctx context.Context, event *events.Event) {
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", event.Type, "error", err)
	}
}

func surveyCacheKey(id uint) string {
	return fmt.Sprintf("survey:%d", id)
}
