package survey

import (
	"github.com/graduate-tracer/survey-service/internal/models"
)

// Normalize flattens answers into one {question, answer} pair per question in
// schema order. Inactive and unanswered questions produce an empty answer.
// Checkbox selections are joined in the question's option order.
func Normalize(s *models.Survey, answers models.AnswerMap) models.NormalizedResponse {
	out := models.NormalizedResponse{
		SurveyID: s.ID,
		Answers:  make([]models.ResponseAnswer, len(s.Questions)),
	}
	for i, q := range s.Questions {
		out.Answers[i] = models.ResponseAnswer{
			Question: q.Text,
			Answer:   normalizeValue(&q, answers[i]),
		}
	}
	return out
}

func normalizeValue(q *models.Question, value models.AnswerValue) string {
	if q.Type != models.QuestionCheckbox {
		return value.Text()
	}
	selected := make([]string, 0, value.Len())
	for _, option := range q.Options {
		if value.Has(option) {
			selected = append(selected, option)
		}
	}
	return JoinChoices(selected)
}
