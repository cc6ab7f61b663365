package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	eventSource  = "survey-service"
	eventVersion = "1.0"
)

// EventType identifies a domain event
type EventType string

const (
	// Survey lifecycle events
	EventSurveyPublished EventType = "survey.published"
	EventSurveyClosed    EventType = "survey.closed"

	// Response events
	EventResponseSubmitted   EventType = "response.submitted"
	EventEmploymentSubmitted EventType = "employment.submitted"
)

// Event is the envelope for every published event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Survey event payloads

type SurveyPublishedEvent struct {
	SurveyID      uint      `json:"survey_id"`
	Title         string    `json:"title"`
	QuestionCount int       `json:"question_count"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	CreatedBy     string    `json:"created_by"`
}

type SurveyClosedEvent struct {
	SurveyID  uint      `json:"survey_id"`
	Title     string    `json:"title"`
	ClosedAt  time.Time `json:"closed_at"`
	Automatic bool      `json:"automatic"`
}

// Response event payloads

type ResponseSubmittedEvent struct {
	ResponseID    uint      `json:"response_id"`
	SurveyID      uint      `json:"survey_id"`
	SurveyVersion int       `json:"survey_version"`
	RespondentID  string    `json:"respondent_id,omitempty"`
	AnswerCount   int       `json:"answer_count"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

type EmploymentSubmittedEvent struct {
	RecordID         uint      `json:"record_id"`
	GraduateID       string    `json:"graduate_id"`
	EmploymentStatus string    `json:"employment_status"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

// Event factory functions

func NewSurveyPublishedEvent(payload SurveyPublishedEvent) *Event {
	return newEvent(EventSurveyPublished, payload)
}

func NewSurveyClosedEvent(payload SurveyClosedEvent) *Event {
	return newEvent(EventSurveyClosed, payload)
}

func NewResponseSubmittedEvent(payload ResponseSubmittedEvent) *Event {
	return newEvent(EventResponseSubmitted, payload)
}

func NewEmploymentSubmittedEvent(payload EmploymentSubmittedEvent) *Event {
	return newEvent(EventEmploymentSubmitted, payload)
}

func newEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

// GenerateEventID returns a new random event ID
func GenerateEventID() string {
	return uuid.NewString()
}
