package models

import (
	"time"

	"gorm.io/gorm"
)

type SurveyStatus string

const (
	SurveyDraft  SurveyStatus = "draft"
	SurveyActive SurveyStatus = "active"
	SurveyClosed SurveyStatus = "closed"
)

type Survey struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Title       string       `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description string       `json:"description" gorm:"type:text" validate:"max=2000"`
	Status      SurveyStatus `json:"status" gorm:"default:draft;index;size:20" validate:"required,survey_status"`
	StartDate   time.Time    `json:"start_date" gorm:"not null" validate:"required"`
	EndDate     time.Time    `json:"end_date" gorm:"not null;index" validate:"required"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Incremented on every stored schema change
	Version int `json:"version" gorm:"default:1"`

	// Order is significant: a question's position is its key in answer maps and stored responses.
	Questions []Question `json:"questions" gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" validate:"dive"`
}

func (Survey) TableName() string {
	return "surveys"
}

// IsOpen reports whether the survey currently accepts responses.
func (s *Survey) IsOpen() bool {
	return s.Status == SurveyActive
}

// Clone returns a deep copy, so builder edits never alias the caller's questions.
func (s Survey) Clone() Survey {
	out := s
	out.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		out.Questions[i] = q.Clone()
	}
	return out
}
