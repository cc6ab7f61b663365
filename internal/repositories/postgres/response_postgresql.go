package postgres

import (
	"context"
	"fmt"

	"github.com/graduate-tracer/survey-service/internal/models"
	"github.com/graduate-tracer/survey-service/internal/repositories"
	"gorm.io/gorm"
)

type ResponsePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewResponsePostgreSQL(db *gorm.DB) repositories.ResponseRepository {
	return &ResponsePostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (r *ResponsePostgreSQL) Create(ctx context.Context, tx *gorm.DB, response *models.SurveyResponse) error {
	if err := r.helpers.getDB(tx).WithContext(ctx).Create(response).Error; err != nil {
		return fmt.Errorf("failed to store response: %w", err)
	}
	return nil
}

// ListBySurvey returns responses oldest first
func (r *ResponsePostgreSQL) ListBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint, filters repositories.ResponseFilters) ([]*models.SurveyResponse, int64, error) {
	query := r.helpers.getDB(tx).WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Where("survey_id = ?", surveyID)

	if filters.SurveyVersion != nil {
		query = query.Where("survey_version = ?", *filters.SurveyVersion)
	}
	if filters.DateFrom != nil {
		query = query.Where("submitted_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("submitted_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("submitted_at ASC").Order("id ASC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var responses []*models.SurveyResponse
	if err := query.Find(&responses).Error; err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

func (r *ResponsePostgreSQL) CountBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) (int64, error) {
	var count int64
	err := r.helpers.getDB(tx).WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Where("survey_id = ?", surveyID).
		Count(&count).Error
	return count, err
}
