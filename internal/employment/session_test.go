package employment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graduate-tracer/survey-service/internal/models"
	"github.com/graduate-tracer/survey-service/internal/validator"
)

func answerFor(t *testing.T, resp models.NormalizedResponse, form *Form, key string) string {
	t.Helper()
	_, i, ok := form.Field(key)
	require.True(t, ok)
	return resp.Answers[i].Answer
}

func TestDefaultForm_IsAValidSchema(t *testing.T) {
	schema := DefaultForm().Survey()
	qv := validator.NewQuestionValidator()

	for i := range schema.Questions {
		assert.Empty(t, qv.ValidateQuestion(i, &schema.Questions[i]), schema.Questions[i].Text)
	}
	assert.True(t, schema.IsOpen())
}

func TestNewForm_RejectsDuplicateKeys(t *testing.T) {
	_, err := NewForm("x", []Field{
		{Key: StatusKey, Label: "Status", Type: models.QuestionText},
		{Key: StatusKey, Label: "Again", Type: models.QuestionText},
	})
	assert.Error(t, err)

	_, err = NewForm("x", []Field{{Key: "name", Label: "Name", Type: models.QuestionText}})
	assert.Error(t, err)
}

func TestResolver_ActiveSections(t *testing.T) {
	form := DefaultForm()
	resolver := NewResolver(form)

	for _, status := range Statuses {
		active := resolver.ActiveFor(status)
		for _, field := range form.Fields() {
			_, i, _ := form.Field(field.Key)
			want := true
			if field.Section == SectionJobDetails || field.Section == SectionSatisfaction {
				want = status == StatusEmployed || status == StatusSelfEmployed
			}
			assert.Equal(t, want, active.Has(i), "%s / %s", status, field.Key)
		}
	}
}

func TestSession_UnemployedSkipsJobDetails(t *testing.T) {
	form := DefaultForm()
	session, err := NewSession(form, nil)
	require.NoError(t, err)

	require.NoError(t, session.SetStatus(StatusUnemployedLooking))

	assert.False(t, session.IsActive("company_name"))
	assert.NoError(t, session.Validate(validator.NewResponseValidator()))
}

func TestSession_EmployedRequiresJobDetails(t *testing.T) {
	form := DefaultForm()
	session, err := NewSession(form, nil)
	require.NoError(t, err)

	require.NoError(t, session.SetStatus(StatusEmployed))
	err = session.Validate(validator.NewResponseValidator())

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	_, companyIndex, _ := form.Field("company_name")
	require.NotNil(t, verrs.First().Index)
	assert.Equal(t, companyIndex, *verrs.First().Index)
	assert.Contains(t, verrs.First().Message, "Company name")
}

func TestSession_StatusRequired(t *testing.T) {
	session, err := NewSession(DefaultForm(), nil)
	require.NoError(t, err)

	err = session.Validate(validator.NewResponseValidator())

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 1)
	assert.Equal(t, 0, *verrs[0].Index)
}

func TestSession_HiddenValuesRetainedButBlankedOnSubmit(t *testing.T) {
	form := DefaultForm()
	session, err := NewSession(form, nil)
	require.NoError(t, err)

	require.NoError(t, session.SetStatus(StatusEmployed))
	require.NoError(t, session.SetText("company_name", "Acme"))
	require.NoError(t, session.Toggle("skills", "Teamwork", true))

	require.NoError(t, session.SetStatus(StatusFurtherStudies))
	assert.Equal(t, "Acme", session.Answers()["company_name"].Text(), "hidden value stays in memory")

	submission := session.Submission()
	require.Len(t, submission.Answers, len(form.Fields()))
	assert.Equal(t, "", answerFor(t, submission, form, "company_name"))
	assert.Equal(t, "Teamwork", answerFor(t, submission, form, "skills"))
	assert.Equal(t, StatusFurtherStudies, answerFor(t, submission, form, StatusKey))

	require.NoError(t, session.SetStatus(StatusEmployed))
	assert.Equal(t, "Acme", answerFor(t, session.Submission(), form, "company_name"))
}

func TestSession_ControlsFollowStatus(t *testing.T) {
	form := DefaultForm()
	session, err := NewSession(form, map[string]models.AnswerValue{
		StatusKey: models.TextAnswer(StatusSelfEmployed),
	})
	require.NoError(t, err)

	employed, err := session.Controls()
	require.NoError(t, err)
	assert.Len(t, employed, len(form.Fields()))

	require.NoError(t, session.Select(StatusKey, StatusUnemployedNotLooking))
	unemployed, err := session.Controls()
	require.NoError(t, err)
	for _, c := range unemployed {
		assert.NotEqual(t, "Company name", c.Label)
	}
	assert.Len(t, unemployed, 5)
}

func TestSession_UnknownField(t *testing.T) {
	session, err := NewSession(DefaultForm(), nil)
	require.NoError(t, err)

	assert.Error(t, session.SetText("nickname", "x"))

	_, err = NewSession(DefaultForm(), map[string]models.AnswerValue{"nickname": models.TextAnswer("x")})
	assert.Error(t, err)
}
