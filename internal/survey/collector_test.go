package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/graduate-tracer/survey-service/internal/models"
)

func mixedSurvey() *models.Survey {
	return &models.Survey{
		ID:     3,
		Status: models.SurveyActive,
		Questions: []models.Question{
			{Text: "Name", Type: models.QuestionText, Required: true},
			{Text: "About you", Type: models.QuestionTextarea},
			{Text: "Employed?", Type: models.QuestionRadio, Options: datatypes.JSONSlice[string]{"Yes", "No"}},
			{Text: "Skills", Type: models.QuestionCheckbox, Options: datatypes.JSONSlice[string]{"Go", "SQL", "Excel"}},
			{Text: "Region", Type: models.QuestionSelect, Options: datatypes.JSONSlice[string]{"North", "South"}, Required: true},
		},
	}
}

func TestCollector_Session(t *testing.T) {
	c := NewCollector(mixedSurvey(), nil)

	require.NoError(t, c.SetText(0, "Ada"))
	require.NoError(t, c.SetText(0, "Ada L."))
	require.NoError(t, c.Choose(2, "Yes"))
	require.NoError(t, c.Choose(2, "No"))
	require.NoError(t, c.Toggle(3, "SQL", true))
	require.NoError(t, c.Toggle(3, "Go", true))
	require.NoError(t, c.Toggle(3, "SQL", false))
	require.NoError(t, c.Select(4, "South"))

	answers := c.Answers()
	assert.Equal(t, "Ada L.", answers[0].Text())
	_, touched := answers[1]
	assert.False(t, touched, "untouched questions have no key")
	assert.Equal(t, "No", answers[2].Text())
	assert.Equal(t, []string{"Go"}, answers[3].Choices())
	assert.Equal(t, "South", answers[4].Text())

	require.NoError(t, c.Select(4, NoSelection))
	_, selected := c.Answers()[4]
	assert.False(t, selected)
}

func TestCollector_RejectsMismatches(t *testing.T) {
	c := NewCollector(mixedSurvey(), nil)

	assert.Error(t, c.SetText(2, "Yes"), "radio is not free text")
	assert.Error(t, c.Choose(2, "Maybe"))
	assert.Error(t, c.Toggle(3, "Rust", true))
	assert.Error(t, c.Select(0, "North"))
	assert.Error(t, c.SetText(9, "x"))
	assert.Empty(t, c.Answers())
}

func TestCollector_AnswersAreCopies(t *testing.T) {
	seed := models.AnswerMap{0: models.TextAnswer("seed")}
	c := NewCollector(mixedSurvey(), seed)

	require.NoError(t, c.SetText(0, "changed"))
	snapshot := c.Answers()
	snapshot[1] = models.TextAnswer("sneaky")

	assert.Equal(t, "seed", seed[0].Text())
	_, leaked := c.Answers()[1]
	assert.False(t, leaked)
}

func TestRender_DispatchesByType(t *testing.T) {
	s := mixedSurvey()
	answers := models.AnswerMap{3: models.ChoiceSet("Excel")}

	controls, err := Render(s, models.AllActive(len(s.Questions)), answers)
	require.NoError(t, err)
	require.Len(t, controls, 5)

	kinds := make([]ControlKind, len(controls))
	for i, c := range controls {
		kinds[i] = c.Kind
	}
	assert.Equal(t, []ControlKind{ControlSingleLine, ControlMultiLine, ControlRadioGroup, ControlCheckboxGroup, ControlDropdown}, kinds)

	assert.Nil(t, controls[0].Options)
	assert.True(t, controls[0].Required)
	assert.Equal(t, []string{"Go", "SQL", "Excel"}, controls[3].Options)
	require.NotNil(t, controls[3].Value)
	assert.True(t, controls[3].Value.Has("Excel"))
	require.NotNil(t, controls[4].Placeholder)
	assert.Equal(t, NoSelection, *controls[4].Placeholder)
	assert.Nil(t, controls[4].Value)
}

func TestRender_SkipsInactiveQuestions(t *testing.T) {
	s := mixedSurvey()

	controls, err := Render(s, models.ActiveIndices(1, 4), nil)
	require.NoError(t, err)

	require.Len(t, controls, 2)
	assert.Equal(t, 1, controls[0].Index)
	assert.Equal(t, 4, controls[1].Index)
}

func TestRender_UnsupportedType(t *testing.T) {
	s := &models.Survey{Questions: []models.Question{{Text: "Rate", Type: "slider"}}}

	_, err := Render(s, models.AllActive(1), nil)

	assert.ErrorContains(t, err, "unsupported question type")
}
