package models

import (
	"time"

	"gorm.io/datatypes"
)

// ResponseAnswer is one {question, answer} pair of a normalized response.
type ResponseAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// NormalizedResponse is the transport shape of a completed response. Answers
// are aligned one-to-one with the survey's questions in schema order.
type NormalizedResponse struct {
	SurveyID uint             `json:"survey_id"`
	Answers  []ResponseAnswer `json:"answers"`
}

// SurveyResponse is a stored NormalizedResponse.
type SurveyResponse struct {
	ID            uint                                `json:"id" gorm:"primaryKey"`
	SurveyID      uint                                `json:"survey_id" gorm:"not null;index"`
	SurveyVersion int                                 `json:"survey_version"`
	RespondentID  string                              `json:"respondent_id" gorm:"size:255;index"`
	Answers       datatypes.JSONSlice[ResponseAnswer] `json:"answers"`
	SubmittedAt   time.Time                           `json:"submitted_at" gorm:"index"`
}

func (SurveyResponse) TableName() string {
	return "survey_responses"
}

// Normalized returns the wire form of the stored record.
func (r *SurveyResponse) Normalized() NormalizedResponse {
	answers := make([]ResponseAnswer, len(r.Answers))
	copy(answers, r.Answers)
	return NormalizedResponse{SurveyID: r.SurveyID, Answers: answers}
}
