package survey

import (
	"fmt"
	"strings"

	"github.com/graduate-tracer/survey-service/internal/models"
	"gorm.io/datatypes"
)

// Question fields editable through UpdateQuestion.
const (
	FieldText     = "text"
	FieldType     = "type"
	FieldRequired = "required"
	FieldOptions  = "options"
)

// Builder edits a private copy of a survey's question list. Positions are
// renumbered after every structural change, so any AnswerMap collected against
// an earlier shape of the survey must be discarded by the caller.
type Builder struct {
	survey models.Survey
}

// NewBuilder starts editing a deep copy of s.
func NewBuilder(s models.Survey) *Builder {
	return &Builder{survey: s.Clone()}
}

// Survey returns a deep copy of the working survey.
func (b *Builder) Survey() models.Survey {
	return b.survey.Clone()
}

// Len returns the number of questions.
func (b *Builder) Len() int {
	return len(b.survey.Questions)
}

// AddQuestion appends a blank optional text question and returns its index.
func (b *Builder) AddQuestion() int {
	b.survey.Questions = append(b.survey.Questions, models.Question{
		SurveyID: b.survey.ID,
		Type:     models.QuestionText,
	})
	b.reindex()
	return len(b.survey.Questions) - 1
}

// RemoveQuestion deletes the question at index and shifts the rest down.
func (b *Builder) RemoveQuestion(index int) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	b.survey.Questions = append(b.survey.Questions[:index], b.survey.Questions[index+1:]...)
	b.reindex()
	return nil
}

// UpdateQuestion sets one field of the question at index. Changing the type
// leaves options untouched; schema validation reports leftovers.
func (b *Builder) UpdateQuestion(index int, field string, value any) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	q := &b.survey.Questions[index]

	switch field {
	case FieldText:
		text, ok := value.(string)
		if !ok {
			return fieldTypeError(field, "a string", value)
		}
		q.Text = text
	case FieldType:
		switch t := value.(type) {
		case models.QuestionType:
			q.Type = t
		case string:
			q.Type = models.QuestionType(t)
		default:
			return fieldTypeError(field, "a question type", value)
		}
	case FieldRequired:
		required, ok := value.(bool)
		if !ok {
			return fieldTypeError(field, "a boolean", value)
		}
		q.Required = required
	case FieldOptions:
		switch o := value.(type) {
		case []string:
			q.Options = append(datatypes.JSONSlice[string]{}, o...)
		case string:
			q.Options = ParseOptions(o)
		case nil:
			q.Options = nil
		default:
			return fieldTypeError(field, "a list of strings", value)
		}
	default:
		return fmt.Errorf("unknown question field %q", field)
	}
	return nil
}

// SetOptions replaces the options of the question at index with one option per
// line of text. Blank lines become empty options.
func (b *Builder) SetOptions(index int, text string) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	b.survey.Questions[index].Options = ParseOptions(text)
	return nil
}

// ParseOptions splits newline separated text into options, keeping blank lines.
func ParseOptions(text string) datatypes.JSONSlice[string] {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return datatypes.JSONSlice[string](strings.Split(text, "\n"))
}

func (b *Builder) reindex() {
	for i := range b.survey.Questions {
		b.survey.Questions[i].Position = i
	}
}

func (b *Builder) checkIndex(index int) error {
	if index < 0 || index >= len(b.survey.Questions) {
		return &IndexError{Index: index, Len: len(b.survey.Questions)}
	}
	return nil
}

// IndexError reports a question position outside the survey.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("question index %d out of range [0,%d)", e.Index, e.Len)
}

func fieldTypeError(field, want string, got any) error {
	return fmt.Errorf("question field %q expects %s, got %T", field, want, got)
}
