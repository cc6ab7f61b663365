package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/graduate-tracer/survey-service/internal/errors"
	"github.com/graduate-tracer/survey-service/internal/models"
)

// Validator is the main validator instance that combines all validation types
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
	responseValidator *ResponseValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
		responseValidator: NewResponseValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// ValidateSurvey checks a survey definition against every schema invariant and
// returns a *SchemaError listing all problems, or nil.
func (v *Validator) ValidateSurvey(survey *models.Survey) error {
	var problems ValidationErrors

	if err := v.ValidateStruct(survey); err != nil {
		converted := apperrors.ToValidationErrors(err)
		if len(converted) == 0 {
			return err
		}
		problems = append(problems, converted...)
	}

	if !survey.StartDate.IsZero() && !survey.EndDate.IsZero() && survey.EndDate.Before(survey.StartDate) {
		problems = append(problems, *apperrors.NewValidationErrorWithRule(
			"end_date", "must not be before start_date", "date_range", survey.EndDate))
	}

	for i := range survey.Questions {
		problems = append(problems, v.questionValidator.ValidateContent(i, &survey.Questions[i])...)
	}

	if len(problems) > 0 {
		return &apperrors.SchemaError{Errors: problems}
	}
	return nil
}

// ValidatePublishable runs ValidateSurvey and additionally requires at least
// one question, since an empty survey cannot collect anything.
func (v *Validator) ValidatePublishable(survey *models.Survey) error {
	err := v.ValidateSurvey(survey)
	if len(survey.Questions) > 0 {
		return err
	}

	empty := *apperrors.NewValidationErrorWithRule("questions", "must have at least 1 question", "min", 0)
	if schemaErr, ok := err.(*apperrors.SchemaError); ok {
		schemaErr.Errors = append(schemaErr.Errors, empty)
		return schemaErr
	}
	if err != nil {
		return err
	}
	return &apperrors.SchemaError{Errors: ValidationErrors{empty}}
}

// Question returns the question validator
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

// Response returns the answer validator
func (v *Validator) Response() *ResponseValidator {
	return v.responseValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("survey_status", validateSurveyStatus)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	return models.QuestionType(fl.Field().String()).IsValid()
}

func validateSurveyStatus(fl validator.FieldLevel) bool {
	validStatuses := []models.SurveyStatus{
		models.SurveyDraft,
		models.SurveyActive,
		models.SurveyClosed,
	}

	value := fl.Field().String()
	for _, validStatus := range validStatuses {
		if string(validStatus) == value {
			return true
		}
	}
	return false
}
