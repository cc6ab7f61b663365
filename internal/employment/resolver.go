package employment

import (
	"github.com/graduate-tracer/survey-service/internal/models"
)

// SectionActive reports whether fields of section are shown for status. Job
// details and satisfaction apply only to working graduates.
func SectionActive(section Section, status string) bool {
	switch section {
	case SectionJobDetails, SectionSatisfaction:
		return IsWorking(status)
	default:
		return true
	}
}

// IsWorking reports whether status unlocks the job sections.
func IsWorking(status string) bool {
	return status == StatusEmployed || status == StatusSelfEmployed
}

// Resolver computes the active field positions of a form.
type Resolver struct {
	form *Form
}

func NewResolver(form *Form) *Resolver {
	return &Resolver{form: form}
}

// ActiveFor returns the active positions for a given employment status.
func (r *Resolver) ActiveFor(status string) models.ActiveSet {
	active := models.ActiveSet{}
	for i, field := range r.form.fields {
		if SectionActive(field.Section, status) {
			active[i] = struct{}{}
		}
	}
	return active
}

// Active reads the employment status out of answers and resolves from it.
func (r *Resolver) Active(answers models.AnswerMap) models.ActiveSet {
	return r.ActiveFor(r.Status(answers))
}

// Status returns the current employment status, or "" when unanswered.
func (r *Resolver) Status(answers models.AnswerMap) string {
	_, i, _ := r.form.Field(StatusKey)
	return answers[i].Text()
}
