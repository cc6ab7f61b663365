package employment

import (
	"fmt"

	"github.com/graduate-tracer/survey-service/internal/models"
	"gorm.io/datatypes"
)

// StatusKey is the governing field of the employment form.
const StatusKey = "employment_status"

// Employment status values.
const (
	StatusEmployed             = "Employed"
	StatusSelfEmployed         = "Self-employed"
	StatusUnemployedLooking    = "Unemployed - Looking for work"
	StatusUnemployedNotLooking = "Unemployed - Not looking for work"
	StatusFurtherStudies       = "Pursuing further studies"
)

var Statuses = []string{
	StatusEmployed,
	StatusSelfEmployed,
	StatusUnemployedLooking,
	StatusUnemployedNotLooking,
	StatusFurtherStudies,
}

// Section groups fields that are shown or hidden together.
type Section string

const (
	SectionStatus           Section = "employment"
	SectionJobDetails       Section = "job_details"
	SectionSatisfaction     Section = "satisfaction"
	SectionSkills           Section = "skills"
	SectionCareerGoals      Section = "career_goals"
	SectionFurtherEducation Section = "further_education"
	SectionComments         Section = "comments"
)

// Field is one input of the employment form.
type Field struct {
	Key      string              `json:"key"`
	Label    string              `json:"label"`
	Type     models.QuestionType `json:"type"`
	Options  []string            `json:"options,omitempty"`
	Required bool                `json:"required"`
	Section  Section             `json:"section"`
}

// Form is a fixed, ordered field set. Field order is the position used in
// answer maps and stored records.
type Form struct {
	fields []Field
	index  map[string]int
	survey models.Survey
}

// NewForm builds a form over fields. Keys must be unique.
func NewForm(title string, fields []Field) (*Form, error) {
	f := &Form{
		fields: append([]Field(nil), fields...),
		index:  make(map[string]int, len(fields)),
		survey: models.Survey{Title: title, Status: models.SurveyActive},
	}
	for i, field := range f.fields {
		if _, dup := f.index[field.Key]; dup {
			return nil, fmt.Errorf("duplicate employment field %q", field.Key)
		}
		f.index[field.Key] = i
		f.survey.Questions = append(f.survey.Questions, models.Question{
			Position: i,
			Text:     field.Label,
			Type:     field.Type,
			Options:  datatypes.JSONSlice[string](append([]string(nil), field.Options...)),
			Required: field.Required,
		})
	}
	if _, ok := f.index[StatusKey]; !ok {
		return nil, fmt.Errorf("employment form has no %q field", StatusKey)
	}
	return f, nil
}

// DefaultForm returns the graduate employment profile form.
func DefaultForm() *Form {
	f, err := NewForm("Graduate Employment Profile", defaultFields)
	if err != nil {
		panic(err)
	}
	return f
}

// Fields returns the form's fields in order.
func (f *Form) Fields() []Field {
	return append([]Field(nil), f.fields...)
}

// Field returns the field with key and its position.
func (f *Form) Field(key string) (Field, int, bool) {
	i, ok := f.index[key]
	if !ok {
		return Field{}, -1, false
	}
	return f.fields[i], i, true
}

// Survey returns the form as an always-open survey so the generic validator,
// renderer and normalizer apply to it.
func (f *Form) Survey() *models.Survey {
	s := f.survey.Clone()
	return &s
}

// Positional converts answers keyed by field key into an AnswerMap.
func (f *Form) Positional(keyed map[string]models.AnswerValue) (models.AnswerMap, error) {
	answers := make(models.AnswerMap, len(keyed))
	for key, value := range keyed {
		i, ok := f.index[key]
		if !ok {
			return nil, fmt.Errorf("unknown employment field %q", key)
		}
		answers[i] = value
	}
	return answers, nil
}

// Keyed converts an AnswerMap back to field keys. Out-of-range positions are dropped.
func (f *Form) Keyed(answers models.AnswerMap) map[string]models.AnswerValue {
	keyed := make(map[string]models.AnswerValue, len(answers))
	for i, value := range answers {
		if i >= 0 && i < len(f.fields) {
			keyed[f.fields[i].Key] = value
		}
	}
	return keyed
}

var defaultFields = []Field{
	{Key: StatusKey, Label: "What is your current employment status?", Type: models.QuestionSelect, Options: Statuses, Required: true, Section: SectionStatus},

	{Key: "company_name", Label: "Company name", Type: models.QuestionText, Required: true, Section: SectionJobDetails},
	{Key: "job_title", Label: "Job title", Type: models.QuestionText, Required: true, Section: SectionJobDetails},
	{Key: "industry", Label: "Industry", Type: models.QuestionSelect, Required: true, Section: SectionJobDetails, Options: []string{
		"Information Technology", "Finance and Banking", "Education", "Healthcare", "Manufacturing",
		"Government", "Retail", "Hospitality", "Other",
	}},
	{Key: "job_type", Label: "Job type", Type: models.QuestionRadio, Required: true, Section: SectionJobDetails, Options: []string{
		"Full-time", "Part-time", "Contract", "Freelance", "Internship",
	}},
	{Key: "start_date", Label: "Start date", Type: models.QuestionText, Required: true, Section: SectionJobDetails},
	{Key: "salary_range", Label: "Monthly salary range", Type: models.QuestionSelect, Section: SectionJobDetails, Options: []string{
		"Below 10000", "10000 - 20000", "20001 - 30000", "30001 - 50000", "Above 50000", "Prefer not to say",
	}},
	{Key: "work_location", Label: "Work location", Type: models.QuestionRadio, Section: SectionJobDetails, Options: []string{
		"On-site", "Remote", "Hybrid", "Abroad",
	}},
	{Key: "job_relevance", Label: "How relevant is your job to your degree?", Type: models.QuestionRadio, Required: true, Section: SectionJobDetails, Options: []string{
		"Highly relevant", "Somewhat relevant", "Not relevant",
	}},
	{Key: "job_search_duration", Label: "How long did it take to find this job?", Type: models.QuestionSelect, Section: SectionJobDetails, Options: []string{
		"Less than 1 month", "1 - 3 months", "4 - 6 months", "7 - 12 months", "More than 1 year",
	}},
	{Key: "job_search_method", Label: "How did you find this job?", Type: models.QuestionCheckbox, Section: SectionJobDetails, Options: []string{
		"Online job portal", "Referral", "Campus recruitment", "Walk-in application", "Social media", "Other",
	}},

	{Key: "job_satisfaction", Label: "How satisfied are you with your current job?", Type: models.QuestionRadio, Required: true, Section: SectionSatisfaction, Options: []string{
		"Very satisfied", "Satisfied", "Neutral", "Dissatisfied", "Very dissatisfied",
	}},

	{Key: "skills", Label: "Which skills from your degree do you use most?", Type: models.QuestionCheckbox, Section: SectionSkills, Options: []string{
		"Communication", "Problem solving", "Teamwork", "Technical skills", "Leadership", "Critical thinking",
	}},
	{Key: "career_goals", Label: "Career goals", Type: models.QuestionTextarea, Section: SectionCareerGoals},
	{Key: "further_education", Label: "Further education plans", Type: models.QuestionSelect, Section: SectionFurtherEducation, Options: []string{
		"None", "Master's degree", "Doctorate", "Professional certification", "Other",
	}},
	{Key: "comments", Label: "Additional comments", Type: models.QuestionTextarea, Section: SectionComments},
}
