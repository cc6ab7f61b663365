package survey

import (
	"strings"

	apperrors "github.com/graduate-tracer/survey-service/internal/errors"
	"github.com/graduate-tracer/survey-service/internal/models"
	"github.com/graduate-tracer/survey-service/internal/validator"
)

// JoinChoices encodes checkbox selections. Options never contain the separator,
// so SplitChoices recovers exactly the joined list.
func JoinChoices(choices []string) string {
	return strings.Join(choices, validator.ChoiceSeparator)
}

// SplitChoices decodes a JoinChoices string. The empty string means no selection.
func SplitChoices(answer string) []string {
	if answer == "" {
		return nil
	}
	return strings.Split(answer, validator.ChoiceSeparator)
}

// QuestionSummary is the answer distribution of one question.
type QuestionSummary struct {
	QuestionText string         `json:"question_text"`
	Type         string         `json:"type"`
	AnswerCounts map[string]int `json:"answer_counts"`
	Answered     int            `json:"answered"`
}

// Report is the aggregate of a set of normalized responses.
//
// Completion only considers the schema-level required flag: conditional
// activation is not stored with a response and cannot be reconstructed, so a
// required question hidden at response time still counts as unanswered.
type Report struct {
	SurveyID        uint                                      `json:"survey_id"`
	Total           int                                       `json:"total"`
	Completed       int                                       `json:"completed"`
	CompletionRate  float64                                   `json:"completion_rate"`
	PerQuestion     []QuestionSummary                         `json:"per_question"`
	Skipped         int                                       `json:"skipped"`
	Inconsistencies []apperrors.AggregationInconsistencyError `json:"inconsistencies,omitempty"`
}

// Aggregate summarises responses. Records whose answer count differs from the
// question count are left out of every statistic and reported in Skipped and
// Inconsistencies. Total still counts every record received.
func Aggregate(s *models.Survey, responses []models.NormalizedResponse) Report {
	report := newReport(s, len(responses))

	consistent := 0
	for i, r := range responses {
		if len(r.Answers) != len(s.Questions) {
			report.Skipped++
			report.Inconsistencies = append(report.Inconsistencies, inconsistency(s, i, r))
			continue
		}
		consistent++
		report.add(s, r)
	}

	if consistent > 0 {
		report.CompletionRate = float64(report.Completed) / float64(consistent)
	}
	return report
}

// AggregateStrict is Aggregate but fails on the first drifted record.
func AggregateStrict(s *models.Survey, responses []models.NormalizedResponse) (Report, error) {
	for i, r := range responses {
		if len(r.Answers) != len(s.Questions) {
			err := inconsistency(s, i, r)
			return Report{}, &err
		}
	}
	return Aggregate(s, responses), nil
}

// IsComplete reports whether every schema-required question has an answer.
func IsComplete(s *models.Survey, r models.NormalizedResponse) bool {
	for i, q := range s.Questions {
		if q.Required && (i >= len(r.Answers) || r.Answers[i].Answer == "") {
			return false
		}
	}
	return true
}

func newReport(s *models.Survey, total int) Report {
	report := Report{
		SurveyID:    s.ID,
		Total:       total,
		PerQuestion: make([]QuestionSummary, len(s.Questions)),
	}
	for i, q := range s.Questions {
		report.PerQuestion[i] = QuestionSummary{
			QuestionText: q.Text,
			Type:         string(q.Type),
			AnswerCounts: map[string]int{},
		}
	}
	return report
}

func (r *Report) add(s *models.Survey, resp models.NormalizedResponse) {
	if IsComplete(s, resp) {
		r.Completed++
	}
	for i, q := range s.Questions {
		answer := resp.Answers[i].Answer
		if answer == "" {
			continue
		}
		summary := &r.PerQuestion[i]
		summary.Answered++
		if q.Type == models.QuestionCheckbox {
			for _, choice := range SplitChoices(answer) {
				summary.AnswerCounts[choice]++
			}
			continue
		}
		summary.AnswerCounts[answer]++
	}
}

func inconsistency(s *models.Survey, index int, r models.NormalizedResponse) apperrors.AggregationInconsistencyError {
	return apperrors.AggregationInconsistencyError{
		ResponseIndex: index,
		SurveyID:      s.ID,
		Expected:      len(s.Questions),
		Got:           len(r.Answers),
	}
}
