package services

import (
	"log/slog"
	"time"

	"github.com/graduate-tracer/survey-service/internal/cache"
	"github.com/graduate-tracer/survey-service/internal/employment"
	"github.com/graduate-tracer/survey-service/internal/events"
	"github.com/graduate-tracer/survey-service/internal/metrics"
	"github.com/graduate-tracer/survey-service/internal/repositories"
	"github.com/graduate-tracer/survey-service/internal/validator"
)

// ServiceManager groups the services the transport layer depends on
type ServiceManager interface {
	Survey() SurveyService
	Response() ResponseService
	Analytics() AnalyticsService
	Employment() EmploymentService
}

// Dependencies are the collaborators shared by every service
type Dependencies struct {
	Surveys     repositories.SurveyRepository
	Responses   repositories.ResponseRepository
	Employment  repositories.EmploymentRepository
	Cache       cache.CacheService
	Publisher   events.EventPublisher
	Metrics     *metrics.Collector
	Logger      *slog.Logger
	Validator   *validator.Validator
	Form        *employment.Form
	SurveyCache time.Duration
}

type serviceManager struct {
	survey     SurveyService
	response   ResponseService
	analytics  AnalyticsService
	employment EmploymentService
}

func NewServiceManager(deps Dependencies) ServiceManager {
	form := deps.Form
	if form == nil {
		form = employment.DefaultForm()
	}

	surveyService := NewSurveyService(
		deps.Surveys,
		deps.Responses,
		deps.Cache,
		deps.Publisher,
		deps.Metrics,
		deps.Logger.With("service", "survey"),
		deps.Validator,
		deps.SurveyCache,
	)

	return &serviceManager{
		survey:     surveyService,
		response:   NewResponseService(surveyService, deps.Responses, deps.Publisher, deps.Metrics, deps.Logger.With("service", "response"), deps.Validator),
		analytics:  NewAnalyticsService(surveyService, deps.Responses, deps.Metrics, deps.Logger.With("service", "analytics")),
		employment: NewEmploymentService(form, deps.Employment, deps.Publisher, deps.Metrics, deps.Logger.With("service", "employment"), deps.Validator),
	}
}

func (m *serviceManager) Survey() SurveyService {
	return m.survey
}

func (m *serviceManager) Response() ResponseService {
	return m.response
}

func (m *serviceManager) Analytics() AnalyticsService {
	return m.analytics
}

func (m *serviceManager) Employment() EmploymentService {
	return m.employment
}
