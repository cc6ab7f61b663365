package validator

import (
	"fmt"
	"strings"

	apperrors "github.com/graduate-tracer/survey-service/internal/errors"
	"github.com/graduate-tracer/survey-service/internal/models"
)

// ChoiceSeparator joins checkbox selections in normalized responses.
const ChoiceSeparator = ","

// QuestionValidator handles question-specific validation
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates a complete question at the given position
func (v *QuestionValidator) ValidateQuestion(index int, question *models.Question) ValidationErrors {
	var errs ValidationErrors
	if question.Text == "" {
		errs = append(errs, *apperrors.NewQuestionError(index, "question text is required", "required"))
	}
	return append(errs, v.ValidateContent(index, question)...)
}

// ValidateContent validates type-dependent content (the options list)
func (v *QuestionValidator) ValidateContent(index int, question *models.Question) ValidationErrors {
	switch question.Type {
	case models.QuestionText, models.QuestionTextarea:
		return v.validateFreeTextContent(index, question)
	case models.QuestionRadio, models.QuestionSelect:
		return v.validateChoiceContent(index, question)
	case models.QuestionCheckbox:
		return v.validateCheckboxContent(index, question)
	default:
		return ValidationErrors{*apperrors.NewQuestionError(index,
			fmt.Sprintf("unsupported question type: %s", question.Type), "question_type")}
	}
}

// BlankOptions returns the positions of empty options. Radio and select
// questions may keep them, so callers surface them as warnings.
func (v *QuestionValidator) BlankOptions(question *models.Question) []int {
	var blanks []int
	for i, option := range question.Options {
		if strings.TrimSpace(option) == "" {
			blanks = append(blanks, i)
		}
	}
	return blanks
}

// Private validation methods for each question type

func (v *QuestionValidator) validateFreeTextContent(index int, question *models.Question) ValidationErrors {
	if len(question.Options) > 0 {
		return ValidationErrors{*apperrors.NewQuestionError(index,
			fmt.Sprintf("%s questions must not carry options", question.Type), "options")}
	}
	return nil
}

func (v *QuestionValidator) validateChoiceContent(index int, question *models.Question) ValidationErrors {
	if len(question.Options) == 0 {
		return ValidationErrors{*apperrors.NewQuestionError(index, "must have at least 1 option", "options")}
	}

	var errs ValidationErrors
	seen := make(map[string]bool, len(question.Options))
	for _, option := range question.Options {
		if strings.TrimSpace(option) == "" {
			continue
		}
		if seen[option] {
			errs = append(errs, *apperrors.NewQuestionError(index,
				fmt.Sprintf("option %q is listed more than once", option), "options"))
		}
		seen[option] = true
	}
	return errs
}

// Checkbox selections are stored joined, so an option must be non-blank and
// free of the separator for the stored string to split back into the same set.
func (v *QuestionValidator) validateCheckboxContent(index int, question *models.Question) ValidationErrors {
	errs := v.validateChoiceContent(index, question)
	for _, option := range question.Options {
		switch {
		case strings.TrimSpace(option) == "":
			errs = append(errs, *apperrors.NewQuestionError(index,
				"checkbox options must not be blank", "options"))
		case strings.Contains(option, ChoiceSeparator):
			errs = append(errs, *apperrors.NewQuestionError(index,
				fmt.Sprintf("option %q must not contain %q", option, ChoiceSeparator), "options"))
		}
	}
	return errs
}
