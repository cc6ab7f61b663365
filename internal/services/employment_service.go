package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/graduate-tracer/survey-service/internal/employment"
	"github.com/graduate-tracer/survey-service/internal/events"
	"github.com/graduate-tracer/survey-service/internal/metrics"
	"github.com/graduate-tracer/survey-service/internal/models"
	"github.com/graduate-tracer/survey-service/internal/repositories"
	"github.com/graduate-tracer/survey-service/internal/survey"
	"github.com/graduate-tracer/survey-service/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EmploymentService handles the fixed graduate employment profile form
type EmploymentService interface {
	Form(ctx context.Context, status string) (*EmploymentFormResponse, error)
	Validate(ctx context.Context, answers map[string]models.AnswerValue) error
	Submit(ctx context.Context, graduateID string, answers map[string]models.AnswerValue) (*models.EmploymentRecord, error)
	Latest(ctx context.Context, graduateID string) (*models.EmploymentRecord, error)
}

type EmploymentFormResponse struct {
	EmploymentStatus string              `json:"employment_status"`
	Fields           []EmploymentControl `json:"fields"`
}

// EmploymentControl is a rendered control labelled with its field key
type EmploymentControl struct {
	Key     string             `json:"key"`
	Section employment.Section `json:"section"`
	survey.Control
}

type employmentService struct {
	form      *employment.Form
	records   repositories.EmploymentRepository
	publisher events.EventPublisher
	metrics   *metrics.Collector
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewEmploymentService(
	form *employment.Form,
	records repositories.EmploymentRepository,
	publisher events.EventPublisher,
	collector *metrics.Collector,
	logger *slog.Logger,
	validator *validator.Validator,
) EmploymentService {
	return &employmentService{
		form:      form,
		records:   records,
		publisher: publisher,
		metrics:   collector,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// Form renders the fields active for status
func (s *employmentService) Form(ctx context.Context, status string) (*EmploymentFormResponse, error) {
	keyed := map[string]models.AnswerValue{}
	if status != "" {
		keyed[employment.StatusKey] = models.TextAnswer(status)
	}

	session, err := s.session(keyed)
	if err != nil {
		return nil, err
	}
	controls, err := session.Controls()
	if err != nil {
		return nil, fmt.Errorf("failed to render employment form: %w", err)
	}

	fields := s.form.Fields()
	out := &EmploymentFormResponse{EmploymentStatus: status, Fields: make([]EmploymentControl, len(controls))}
	for i, c := range controls {
		out.Fields[i] = EmploymentControl{Key: fields[c.Index].Key, Section: fields[c.Index].Section, Control: c}
	}
	return out, nil
}

func (s *employmentService) Validate(ctx context.Context, answers map[string]models.AnswerValue) error {
	session, err := s.session(answers)
	if err != nil {
		return err
	}
	return session.Validate(s.validator.Response())
}

func (s *employmentService) Submit(ctx context.Context, graduateID string, answers map[string]models.AnswerValue) (*models.EmploymentRecord, error) {
	if graduateID == "" {
		return nil, NewValidationError("graduate_id", "is required", graduateID)
	}

	session, err := s.session(answers)
	if err != nil {
		return nil, err
	}
	if err := session.Validate(s.validator.Response()); err != nil {
		s.metrics.ValidationFailures.WithLabelValues("employment", "invalid").Inc()
		return nil, err
	}

	normalized := session.Submission()
	record := &models.EmploymentRecord{
		GraduateID:       graduateID,
		EmploymentStatus: session.Status(),
		Answers:          datatypes.JSONSlice[models.ResponseAnswer](normalized.Answers),
		SubmittedAt:      s.now().UTC(),
	}
	if err := s.records.Create(ctx, nil, record); err != nil {
		s.logger.Error("Failed to store employment record", "graduate_id", graduateID, "error", err)
		return nil, fmt.Errorf("failed to store employment record: %w", err)
	}

	s.metrics.ResponsesSubmitted.WithLabelValues("employment").Inc()
	s.logger.Info("Employment profile submitted",
		"graduate_id", graduateID,
		"record_id", record.ID,
		"employment_status", record.EmploymentStatus)

	event := events.NewEmploymentSubmittedEvent(events.EmploymentSubmittedEvent{
		RecordID:         record.ID,
		GraduateID:       record.GraduateID,
		EmploymentStatus: record.EmploymentStatus,
		SubmittedAt:      record.SubmittedAt,
	})
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", event.Type, "error", err)
	}

	return record, nil
}

func (s *employmentService) Latest(ctx context.Context, graduateID string) (*models.EmploymentRecord, error) {
	record, err := s.records.GetLatest(ctx, nil, graduateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmploymentRecordNotFound
		}
		return nil, fmt.Errorf("failed to get employment record: %w", err)
	}
	return record, nil
}

func (s *employmentService) session(answers map[string]models.AnswerValue) (*employment.Session, error) {
	session, err := employment.NewSession(s.form, answers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return session, nil
}
