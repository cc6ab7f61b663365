package models

import (
	"gorm.io/datatypes"
)

type QuestionType string

const (
	QuestionText     QuestionType = "text"
	QuestionTextarea QuestionType = "textarea"
	QuestionRadio    QuestionType = "radio"
	QuestionCheckbox QuestionType = "checkbox"
	QuestionSelect   QuestionType = "select"
)

// QuestionTypes lists every supported type in declaration order.
var QuestionTypes = []QuestionType{
	QuestionText,
	QuestionTextarea,
	QuestionRadio,
	QuestionCheckbox,
	QuestionSelect,
}

// IsValid reports whether t is one of the supported question types.
func (t QuestionType) IsValid() bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsChoice reports whether answers to t are picked from the question's options.
func (t QuestionType) IsChoice() bool {
	return t == QuestionRadio || t == QuestionCheckbox || t == QuestionSelect
}

type Question struct {
	ID       uint                        `json:"-" gorm:"primaryKey"`
	SurveyID uint                        `json:"-" gorm:"not null;index"`
	Position int                         `json:"-" gorm:"not null"`
	Text     string                      `json:"text" gorm:"type:text;not null" validate:"required"`
	Type     QuestionType                `json:"type" gorm:"size:20;not null" validate:"required,question_type"`
	Options  datatypes.JSONSlice[string] `json:"options,omitempty"`
	Required bool                        `json:"required"`
}

func (Question) TableName() string {
	return "survey_questions"
}

// Clone copies the question including its options slice.
func (q Question) Clone() Question {
	out := q
	if q.Options != nil {
		out.Options = append(datatypes.JSONSlice[string]{}, q.Options...)
	}
	return out
}
