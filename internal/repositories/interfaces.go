package repositories

import (
	"context"
	"time"

	"github.com/graduate-tracer/survey-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type SurveyFilters struct {
	Status    *models.SurveyStatus `json:"status"`
	CreatedBy *string              `json:"created_by"`
	Search    string               `json:"search"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	SortBy    string               `json:"sort_by"`    // "created_at", "title", "end_date"
	SortOrder string               `json:"sort_order"` // "asc", "desc"
}

type ResponseFilters struct {
	SurveyVersion *int       `json:"survey_version"`
	DateFrom      *time.Time `json:"date_from"`
	DateTo        *time.Time `json:"date_to"`
	Limit         int        `json:"limit"`
	Offset        int        `json:"offset"`
}

// ===== REPOSITORIES =====
// Every method takes an optional transaction; nil runs on the repository's own connection.

type SurveyRepository interface {
	Create(ctx context.Context, tx *gorm.DB, survey *models.Survey) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Survey, error)
	List(ctx context.Context, tx *gorm.DB, filters SurveyFilters) ([]*models.Survey, int64, error)
	// Update stores every survey field and replaces the question list, bumping Version.
	Update(ctx context.Context, tx *gorm.DB, survey *models.Survey) error
	// UpdateStatus moves a survey from one status to another. It reports false
	// when the survey was not in the expected status.
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, from, to models.SurveyStatus) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	// GetExpired lists active surveys whose end date is before now.
	GetExpired(ctx context.Context, tx *gorm.DB, now time.Time) ([]*models.Survey, error)
}

type ResponseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, response *models.SurveyResponse) error
	ListBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint, filters ResponseFilters) ([]*models.SurveyResponse, int64, error)
	CountBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) (int64, error)
}

type EmploymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, record *models.EmploymentRecord) error
	GetLatest(ctx context.Context, tx *gorm.DB, graduateID string) (*models.EmploymentRecord, error)
	ListByGraduate(ctx context.Context, tx *gorm.DB, graduateID string) ([]*models.EmploymentRecord, error)
}
