package models

import (
	"time"

	"gorm.io/datatypes"
)

// EmploymentRecord is a graduate's submitted employment profile.
type EmploymentRecord struct {
	ID               uint                                `json:"id" gorm:"primaryKey"`
	GraduateID       string                              `json:"graduate_id" gorm:"not null;size:255;index"`
	EmploymentStatus string                              `json:"employment_status" gorm:"size:100;index"`
	Answers          datatypes.JSONSlice[ResponseAnswer] `json:"answers"`
	SubmittedAt      time.Time                           `json:"submitted_at" gorm:"index"`
}

func (EmploymentRecord) TableName() string {
	return "employment_records"
}
