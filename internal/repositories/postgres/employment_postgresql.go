package postgres

import (
	"context"
	"fmt"

	"github.com/graduate-tracer/survey-service/internal/models"
	"github.com/graduate-tracer/survey-service/internal/repositories"
	"gorm.io/gorm"
)

type EmploymentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewEmploymentPostgreSQL(db *gorm.DB) repositories.EmploymentRepository {
	return &EmploymentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (e *EmploymentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, record *models.EmploymentRecord) error {
	if err := e.helpers.getDB(tx).WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to store employment record: %w", err)
	}
	return nil
}

// GetLatest returns the graduate's most recent submission
func (e *EmploymentPostgreSQL) GetLatest(ctx context.Context, tx *gorm.DB, graduateID string) (*models.EmploymentRecord, error) {
	var record models.EmploymentRecord
	err := e.helpers.getDB(tx).WithContext(ctx).
		Where("graduate_id = ?", graduateID).
		Order("submitted_at DESC").
		Order("id DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByGraduate returns the graduate's submissions newest first
func (e *EmploymentPostgreSQL) ListByGraduate(ctx context.Context, tx *gorm.DB, graduateID string) ([]*models.EmploymentRecord, error) {
	var records []*models.EmploymentRecord
	err := e.helpers.getDB(tx).WithContext(ctx).
		Where("graduate_id = ?", graduateID).
		Order("submitted_at DESC").
		Order("id DESC").
		Find(&records).Error
	return records, err
}
