package validator

import (
	"fmt"

	apperrors "github.com/graduate-tracer/survey-service/internal/errors"
	"github.com/graduate-tracer/survey-service/internal/models"
)

// ResponseValidator gates submission of an answer map against a survey.
type ResponseValidator struct{}

func NewResponseValidator() *ResponseValidator {
	return &ResponseValidator{}
}

// IsRequired reports the effective required flag of the question at index:
// inactive questions are never required, whatever the schema says.
func IsRequired(survey *models.Survey, index int, active models.ActiveSet) bool {
	if index < 0 || index >= len(survey.Questions) {
		return false
	}
	return active.Has(index) && survey.Questions[index].Required
}

// Validate checks answers for every active question. It returns a
// *SubmissionBlockedError when the survey is not open, the complete
// ValidationErrors list when any rule fails, or nil. Callers that report one
// problem at a time use ValidationErrors.First.
func (v *ResponseValidator) Validate(survey *models.Survey, answers models.AnswerMap, active models.ActiveSet) error {
	if !survey.IsOpen() {
		return &apperrors.SubmissionBlockedError{SurveyID: survey.ID, Status: string(survey.Status)}
	}

	var errs ValidationErrors
	for _, index := range active.Indices() {
		if index < 0 || index >= len(survey.Questions) {
			continue
		}
		question := &survey.Questions[index]
		value, answered := answers[index]

		if IsRequired(survey, index, active) && (!answered || value.IsEmpty()) {
			errs = append(errs, *apperrors.NewQuestionError(index,
				fmt.Sprintf("%q is required", question.Text), "required"))
			continue
		}
		if answered {
			errs = append(errs, v.validateValue(index, question, value)...)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *ResponseValidator) validateValue(index int, question *models.Question, value models.AnswerValue) ValidationErrors {
	switch question.Type {
	case models.QuestionText, models.QuestionTextarea:
		if value.IsSet() {
			return v.shapeError(index, question, "expects a text answer")
		}
		return nil
	case models.QuestionRadio, models.QuestionSelect:
		if value.IsSet() {
			return v.shapeError(index, question, "expects a single choice")
		}
		if value.Text() != "" && !hasOption(question, value.Text()) {
			return v.optionError(index, question, value.Text())
		}
		return nil
	case models.QuestionCheckbox:
		if !value.IsSet() {
			return v.shapeError(index, question, "expects a list of choices")
		}
		var errs ValidationErrors
		for _, choice := range value.Choices() {
			if !hasOption(question, choice) {
				errs = append(errs, v.optionError(index, question, choice)...)
			}
		}
		return errs
	default:
		return ValidationErrors{*apperrors.NewQuestionError(index,
			fmt.Sprintf("unsupported question type: %s", question.Type), "question_type")}
	}
}

func (v *ResponseValidator) shapeError(index int, question *models.Question, message string) ValidationErrors {
	return ValidationErrors{*apperrors.NewQuestionError(index,
		fmt.Sprintf("%q %s", question.Text, message), "answer_shape")}
}

func (v *ResponseValidator) optionError(index int, question *models.Question, choice string) ValidationErrors {
	return ValidationErrors{*apperrors.NewQuestionError(index,
		fmt.Sprintf("%q is not an option of %q", choice, question.Text), "option")}
}

func hasOption(question *models.Question, candidate string) bool {
	for _, option := range question.Options {
		if option == candidate {
			return true
		}
	}
	return false
}
