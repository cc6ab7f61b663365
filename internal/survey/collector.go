package survey

import (
	"fmt"

	"github.com/graduate-tracer/survey-service/internal/models"
)

// Collector records one respondent's input into an AnswerMap. It is owned by a
// single session and is not safe for concurrent use.
type Collector struct {
	survey  *models.Survey
	answers models.AnswerMap
}

// NewCollector starts a session over s, optionally resuming from answers.
func NewCollector(s *models.Survey, answers models.AnswerMap) *Collector {
	if answers == nil {
		answers = models.AnswerMap{}
	} else {
		answers = answers.Clone()
	}
	return &Collector{survey: s, answers: answers}
}

// SetText overwrites the answer of a text or textarea question.
func (c *Collector) SetText(index int, text string) error {
	if _, err := c.question(index, models.QuestionText, models.QuestionTextarea); err != nil {
		return err
	}
	c.answers[index] = models.TextAnswer(text)
	return nil
}

// Choose selects a radio option. Radios cannot be deselected.
func (c *Collector) Choose(index int, option string) error {
	q, err := c.question(index, models.QuestionRadio)
	if err != nil {
		return err
	}
	if !hasOption(q, option) {
		return fmt.Errorf("%q is not an option of question %d", option, index)
	}
	c.answers[index] = models.TextAnswer(option)
	return nil
}

// Toggle checks or unchecks a checkbox option.
func (c *Collector) Toggle(index int, option string, checked bool) error {
	q, err := c.question(index, models.QuestionCheckbox)
	if err != nil {
		return err
	}
	if !hasOption(q, option) {
		return fmt.Errorf("%q is not an option of question %d", option, index)
	}

	current, ok := c.answers[index]
	if !ok || !current.IsSet() {
		current = models.ChoiceSet()
	}
	if checked {
		c.answers[index] = current.With(option)
	} else {
		c.answers[index] = current.Without(option)
	}
	return nil
}

// Select picks a dropdown value. NoSelection removes the answer.
func (c *Collector) Select(index int, option string) error {
	q, err := c.question(index, models.QuestionSelect)
	if err != nil {
		return err
	}
	if option == NoSelection {
		delete(c.answers, index)
		return nil
	}
	if !hasOption(q, option) {
		return fmt.Errorf("%q is not an option of question %d", option, index)
	}
	c.answers[index] = models.TextAnswer(option)
	return nil
}

// Answers returns a copy of the collected answers.
func (c *Collector) Answers() models.AnswerMap {
	return c.answers.Clone()
}

func (c *Collector) question(index int, allowed ...models.QuestionType) (*models.Question, error) {
	if index < 0 || index >= len(c.survey.Questions) {
		return nil, &IndexError{Index: index, Len: len(c.survey.Questions)}
	}
	q := &c.survey.Questions[index]
	for _, t := range allowed {
		if q.Type == t {
			return q, nil
		}
	}
	return nil, fmt.Errorf("question %d is %s, not %v", index, q.Type, allowed)
}

func hasOption(q *models.Question, option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}
