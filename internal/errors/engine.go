package errors

import (
	"errors"
	"fmt"
)

// ErrSubmissionBlocked is matched by every SubmissionBlockedError.
var ErrSubmissionBlocked = errors.New("survey not open")

// SchemaError reports a survey definition that violates the schema invariants.
// It is raised at authoring time and never repaired silently.
type SchemaError struct {
	Errors ValidationErrors `json:"errors"`
}

func (e *SchemaError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("invalid survey schema: %s %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("invalid survey schema: %d problems", len(e.Errors))
}

func (e *SchemaError) Unwrap() error {
	return e.Errors
}

// SubmissionBlockedError is returned when answers are validated or submitted
// against a survey that is not active. It is not retryable.
type SubmissionBlockedError struct {
	SurveyID uint   `json:"survey_id"`
	Status   string `json:"status"`
}

func (e *SubmissionBlockedError) Error() string {
	return fmt.Sprintf("survey %d is not open for responses (status %s)", e.SurveyID, e.Status)
}

func (e *SubmissionBlockedError) Is(target error) bool {
	return target == ErrSubmissionBlocked
}

// AggregationInconsistencyError flags a stored response whose answer count no
// longer matches the survey's question count.
type AggregationInconsistencyError struct {
	ResponseIndex int  `json:"response_index"`
	SurveyID      uint `json:"survey_id"`
	Expected      int  `json:"expected"`
	Got           int  `json:"got"`
}

func (e *AggregationInconsistencyError) Error() string {
	return fmt.Sprintf("response %d for survey %d has %d answers, schema has %d questions",
		e.ResponseIndex, e.SurveyID, e.Got, e.Expected)
}
