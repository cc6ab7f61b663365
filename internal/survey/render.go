package survey

import (
	"fmt"

	"github.com/graduate-tracer/survey-service/internal/models"
	"github.com/graduate-tracer/survey-service/internal/validator"
)

// ControlKind is the input widget a question is rendered as.
type ControlKind string

const (
	ControlSingleLine    ControlKind = "single_line"
	ControlMultiLine     ControlKind = "multi_line"
	ControlRadioGroup    ControlKind = "radio_group"
	ControlCheckboxGroup ControlKind = "checkbox_group"
	ControlDropdown      ControlKind = "dropdown"
)

// NoSelection is the dropdown placeholder value. Choosing it clears the answer.
const NoSelection = ""

// Control describes one rendered input. Required is the effective flag for the
// current active set, not the schema flag.
type Control struct {
	Index       int                 `json:"index"`
	Kind        ControlKind         `json:"kind"`
	Label       string              `json:"label"`
	Options     []string            `json:"options,omitempty"`
	Required    bool                `json:"required"`
	Placeholder *string             `json:"placeholder,omitempty"`
	Value       *models.AnswerValue `json:"value,omitempty"`
}

// ControlKindFor maps a question type to its widget.
func ControlKindFor(t models.QuestionType) (ControlKind, error) {
	switch t {
	case models.QuestionText:
		return ControlSingleLine, nil
	case models.QuestionTextarea:
		return ControlMultiLine, nil
	case models.QuestionRadio:
		return ControlRadioGroup, nil
	case models.QuestionCheckbox:
		return ControlCheckboxGroup, nil
	case models.QuestionSelect:
		return ControlDropdown, nil
	default:
		return "", fmt.Errorf("unsupported question type: %s", t)
	}
}

// Render returns one control per active question in schema order, prefilled
// from answers when present.
func Render(s *models.Survey, active models.ActiveSet, answers models.AnswerMap) ([]Control, error) {
	controls := make([]Control, 0, len(active))
	for i, q := range s.Questions {
		if !active.Has(i) {
			continue
		}
		kind, err := ControlKindFor(q.Type)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}

		c := Control{
			Index:    i,
			Kind:     kind,
			Label:    q.Text,
			Required: validator.IsRequired(s, i, active),
		}
		if q.Type.IsChoice() {
			c.Options = append([]string(nil), q.Options...)
		}
		if kind == ControlDropdown {
			placeholder := NoSelection
			c.Placeholder = &placeholder
		}
		if v, ok := answers[i]; ok {
			value := v
			c.Value = &value
		}
		controls = append(controls, c)
	}
	return controls, nil
}
