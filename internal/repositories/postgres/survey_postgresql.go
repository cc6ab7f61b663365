package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/graduate-tracer/survey-service/internal/models"
	"github.com/graduate-tracer/survey-service/internal/repositories"
	"gorm.io/gorm"
)

var surveySortColumns = []string{"created_at", "updated_at", "title", "start_date", "end_date"}

type SurveyPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewSurveyPostgreSQL(db *gorm.DB) repositories.SurveyRepository {
	return &SurveyPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Create stores a survey with its questions
func (s *SurveyPostgreSQL) Create(ctx context.Context, tx *gorm.DB, survey *models.Survey) error {
	positionQuestions(survey)
	if survey.Version == 0 {
		survey.Version = 1
	}
	if err := s.helpers.getDB(tx).WithContext(ctx).Create(survey).Error; err != nil {
		return fmt.Errorf("failed to create survey: %w", err)
	}
	return nil
}

// GetByID retrieves a survey with its questions in order
func (s *SurveyPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Survey, error) {
	var survey models.Survey
	err := s.helpers.getDB(tx).WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&survey, id).Error
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

// List retrieves surveys with filters and pagination. Questions are not loaded.
func (s *SurveyPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.SurveyFilters) ([]*models.Survey, int64, error) {
	query := s.helpers.getDB(tx).WithContext(ctx).Model(&models.Survey{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = s.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, surveySortColumns, filters.Limit, filters.Offset)

	var surveys []*models.Survey
	if err := query.Find(&surveys).Error; err != nil {
		return nil, 0, err
	}
	return surveys, total, nil
}

// Update saves survey fields and replaces its questions in one transaction
func (s *SurveyPostgreSQL) Update(ctx context.Context, tx *gorm.DB, survey *models.Survey) error {
	return s.helpers.getDB(tx).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Survey
		if err := tx.Select("id", "version").First(&current, survey.ID).Error; err != nil {
			return err
		}

		survey.Version = current.Version + 1
		if err := tx.Model(survey).Omit("Questions", "CreatedAt").Select("*").Updates(survey).Error; err != nil {
			return fmt.Errorf("failed to update survey: %w", err)
		}

		if err := tx.Where("survey_id = ?", survey.ID).Delete(&models.Question{}).Error; err != nil {
			return fmt.Errorf("failed to clear survey questions: %w", err)
		}

		positionQuestions(survey)
		for i := range survey.Questions {
			survey.Questions[i].ID = 0
		}
		if len(survey.Questions) > 0 {
			if err := tx.Create(&survey.Questions).Error; err != nil {
				return fmt.Errorf("failed to store survey questions: %w", err)
			}
		}
		return nil
	})
}

// UpdateStatus performs a conditional status transition
func (s *SurveyPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, from, to models.SurveyStatus) (bool, error) {
	result := s.helpers.getDB(tx).WithContext(ctx).
		Model(&models.Survey{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update survey status: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// Delete soft-deletes a survey
func (s *SurveyPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := s.helpers.getDB(tx).WithContext(ctx).Delete(&models.Survey{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetExpired lists active surveys past their end date
func (s *SurveyPostgreSQL) GetExpired(ctx context.Context, tx *gorm.DB, now time.Time) ([]*models.Survey, error) {
	var surveys []*models.Survey
	err := s.helpers.getDB(tx).WithContext(ctx).
		Where("status = ? AND end_date < ?", models.SurveyActive, now).
		Order("end_date ASC").
		Find(&surveys).Error
	return surveys, err
}

func positionQuestions(survey *models.Survey) {
	for i := range survey.Questions {
		survey.Questions[i].Position = i
		survey.Questions[i].SurveyID = survey.ID
	}
}
