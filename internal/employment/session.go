package employment

import (
	"fmt"

	"github.com/graduate-tracer/survey-service/internal/models"
	"github.com/graduate-tracer/survey-service/internal/survey"
	"github.com/graduate-tracer/survey-service/internal/validator"
)

// Session is one graduate's in-progress employment profile.
//
// Values of fields hidden by a status change stay in the session, so switching
// back restores them. They are never validated while hidden and are blanked in
// Submission.
type Session struct {
	form      *Form
	resolver  *Resolver
	schema    *models.Survey
	collector *survey.Collector
	active    models.ActiveSet
}

// NewSession starts a session, optionally resuming from keyed answers.
func NewSession(form *Form, keyed map[string]models.AnswerValue) (*Session, error) {
	answers, err := form.Positional(keyed)
	if err != nil {
		return nil, err
	}
	schema := form.Survey()
	s := &Session{
		form:      form,
		resolver:  NewResolver(form),
		schema:    schema,
		collector: survey.NewCollector(schema, answers),
	}
	s.resolve()
	return s, nil
}

// SetStatus changes the governing answer and re-evaluates the active sections.
func (s *Session) SetStatus(status string) error {
	_, i, _ := s.form.Field(StatusKey)
	if err := s.collector.Select(i, status); err != nil {
		return err
	}
	s.resolve()
	return nil
}

// Status returns the current employment status.
func (s *Session) Status() string {
	return s.resolver.Status(s.collector.Answers())
}

// SetText answers a text or textarea field.
func (s *Session) SetText(key, text string) error {
	i, err := s.position(key)
	if err != nil {
		return err
	}
	return s.collector.SetText(i, text)
}

// Choose answers a radio field.
func (s *Session) Choose(key, option string) error {
	i, err := s.position(key)
	if err != nil {
		return err
	}
	return s.collector.Choose(i, option)
}

// Toggle checks or unchecks an option of a checkbox field.
func (s *Session) Toggle(key, option string, checked bool) error {
	i, err := s.position(key)
	if err != nil {
		return err
	}
	return s.collector.Toggle(i, option, checked)
}

// Select answers a dropdown field. Selecting the status goes through SetStatus.
func (s *Session) Select(key, option string) error {
	if key == StatusKey {
		return s.SetStatus(option)
	}
	i, err := s.position(key)
	if err != nil {
		return err
	}
	return s.collector.Select(i, option)
}

// Active returns the currently active positions.
func (s *Session) Active() models.ActiveSet {
	out := make(models.ActiveSet, len(s.active))
	for i := range s.active {
		out[i] = struct{}{}
	}
	return out
}

// IsActive reports whether the field with key is currently shown.
func (s *Session) IsActive(key string) bool {
	_, i, ok := s.form.Field(key)
	return ok && s.active.Has(i)
}

// Answers returns every collected value by key, hidden fields included.
func (s *Session) Answers() map[string]models.AnswerValue {
	return s.form.Keyed(s.collector.Answers())
}

// Controls renders the active fields.
func (s *Session) Controls() ([]survey.Control, error) {
	return survey.Render(s.schema, s.active, s.collector.Answers())
}

// Validate checks the active fields only.
func (s *Session) Validate(v *validator.ResponseValidator) error {
	return v.Validate(s.schema, s.collector.Answers(), s.active)
}

// Submission normalizes the session with hidden fields blanked.
func (s *Session) Submission() models.NormalizedResponse {
	visible := models.AnswerMap{}
	for i, value := range s.collector.Answers() {
		if s.active.Has(i) {
			visible[i] = value
		}
	}
	return survey.Normalize(s.schema, visible)
}

func (s *Session) resolve() {
	s.active = s.resolver.Active(s.collector.Answers())
}

func (s *Session) position(key string) (int, error) {
	_, i, ok := s.form.Field(key)
	if !ok {
		return -1, fmt.Errorf("unknown employment field %q", key)
	}
	return i, nil
}
