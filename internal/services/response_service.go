package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/graduate-tracer/survey-service/internal/errors"
	"github.com/graduate-tracer/survey-service/internal/events"
	"github.com/graduate-tracer/survey-service/internal/metrics"
	"github.com/graduate-tracer/survey-service/internal/models"
	"github.com/graduate-tracer/survey-service/internal/repositories"
	"github.com/graduate-tracer/survey-service/internal/survey"
	"github.com/graduate-tracer/survey-service/internal/validator"
	"gorm.io/datatypes"
)

// ResponseService validates, normalizes and stores survey responses
type ResponseService interface {
	Form(ctx context.Context, surveyID uint) (*FormResponse, error)
	Validate(ctx context.Context, surveyID uint, answers models.AnswerMap) error
	Submit(ctx context.Context, surveyID uint, req *SubmitResponseRequest) (*models.SurveyResponse, error)
	ListBySurvey(ctx context.Context, surveyID uint, filters repositories.ResponseFilters) (*ResponseListResponse, error)
}

type SubmitResponseRequest struct {
	RespondentID string           `json:"respondent_id"`
	Answers      models.AnswerMap `json:"answers"`
}

type FormResponse struct {
	SurveyID    uint             `json:"survey_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Status      string           `json:"status"`
	Open        bool             `json:"open"`
	Controls    []survey.Control `json:"controls"`
}

type ResponseListResponse struct {
	Responses []*models.SurveyResponse `json:"responses"`
	Total     int64                    `json:"total"`
	Limit     int                      `json:"limit"`
	Offset    int                      `json:"offset"`
}

type responseService struct {
	surveys   SurveyService
	responses repositories.ResponseRepository
	publisher events.EventPublisher
	metrics   *metrics.Collector
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewResponseService(
	surveys SurveyService,
	responses repositories.ResponseRepository,
	publisher events.EventPublisher,
	collector *metrics.Collector,
	logger *slog.Logger,
	validator *validator.Validator,
) ResponseService {
	return &responseService{
		surveys:   surveys,
		responses: responses,
		publisher: publisher,
		metrics:   collector,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// Form renders every question of the survey as an input control
func (s *responseService) Form(ctx context.Context, surveyID uint) (*FormResponse, error) {
	target, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	controls, err := survey.Render(target, models.AllActive(len(target.Questions)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to render survey %d: %w", surveyID, err)
	}

	return &FormResponse{
		SurveyID:    target.ID,
		Title:       target.Title,
		Description: target.Description,
		Status:      string(target.Status),
		Open:        target.IsOpen(),
		Controls:    controls,
	}, nil
}

// Validate checks answers without storing anything
func (s *responseService) Validate(ctx context.Context, surveyID uint, answers models.AnswerMap) error {
	target, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return err
	}
	return s.validate(target, answers)
}

func (s *responseService) Submit(ctx context.Context, surveyID uint, req *SubmitResponseRequest) (*models.SurveyResponse, error) {
	target, err := s.surveys.GetCurrent(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	if err := s.validate(target, req.Answers); err != nil {
		s.recordRejection("survey", err)
		s.logger.Info("Response rejected", "survey_id", surveyID, "reason", err.Error())
		return nil, err
	}

	normalized := survey.Normalize(target, req.Answers)
	response := &models.SurveyResponse{
		SurveyID:      target.ID,
		SurveyVersion: target.Version,
		RespondentID:  req.RespondentID,
		Answers:       datatypes.JSONSlice[models.ResponseAnswer](normalized.Answers),
		SubmittedAt:   s.now().UTC(),
	}

	if err := s.responses.Create(ctx, nil, response); err != nil {
		s.logger.Error("Failed to store response", "survey_id", surveyID, "error", err)
		return nil, fmt.Errorf("failed to store response: %w", err)
	}

	s.metrics.ResponsesSubmitted.WithLabelValues("survey").Inc()
	s.logger.Info("Response submitted", "survey_id", surveyID, "response_id", response.ID)

	event := events.NewResponseSubmittedEvent(events.ResponseSubmittedEvent{
		ResponseID:    response.ID,
		SurveyID:      response.SurveyID,
		SurveyVersion: response.SurveyVersion,
		RespondentID:  response.RespondentID,
		AnswerCount:   len(response.Answers),
		SubmittedAt:   response.SubmittedAt,
	})
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", event.Type, "error", err)
	}

	return response, nil
}

func (s *responseService) ListBySurvey(ctx context.Context, surveyID uint, filters repositories.ResponseFilters) (*ResponseListResponse, error) {
	if _, err := s.surveys.GetByID(ctx, surveyID); err != nil {
		return nil, err
	}
	if filters.Limit <= 0 || filters.Limit > 500 {
		filters.Limit = 50
	}

	responses, total, err := s.responses.ListBySurvey(ctx, nil, surveyID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}

	return &ResponseListResponse{
		Responses: responses,
		Total:     total,
		Limit:     filters.Limit,
		Offset:    filters.Offset,
	}, nil
}

// validate runs the engine rules with every question active and rejects
// answers keyed outside the question list
func (s *responseService) validate(target *models.Survey, answers models.AnswerMap) error {
	err := s.validator.Response().Validate(target, answers, models.AllActive(len(target.Questions)))
	if IsBlocked(err) {
		return err
	}

	var problems ValidationErrors
	if err != nil && !errors.As(err, &problems) {
		return err
	}
	problems = append(problems, unknownAnswerKeys(target, answers)...)
	if len(problems) > 0 {
		return problems
	}
	return nil
}

func (s *responseService) recordRejection(kind string, err error) {
	reason := "invalid"
	if IsBlocked(err) {
		reason = "not_open"
	}
	s.metrics.ValidationFailures.WithLabelValues(kind, reason).Inc()
}

func unknownAnswerKeys(target *models.Survey, answers models.AnswerMap) ValidationErrors {
	var problems ValidationErrors
	for index := range answers {
		if index < 0 || index >= len(target.Questions) {
			problems = append(problems, *apperrors.NewValidationErrorWithRule(
				"answers", fmt.Sprintf("survey has no question %d", index), "index", index))
		}
	}
	return problems
}
