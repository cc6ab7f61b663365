package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/graduate-tracer/survey-service/internal/models"
	"github.com/graduate-tracer/survey-service/internal/repositories"
)

func storedResponse(id uint, answers ...string) *models.SurveyResponse {
	questions := []string{"Full name", "Employed?", "Skills"}
	pairs := make(datatypes.JSONSlice[models.ResponseAnswer], len(answers))
	for i, a := range answers {
		pairs[i] = models.ResponseAnswer{Question: questions[i], Answer: a}
	}
	return &models.SurveyResponse{
		ID:           id,
		SurveyID:     1,
		RespondentID: "grad-" + string(rune('a'+id)),
		Answers:      pairs,
		SubmittedAt:  time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

func setupAnalytics(t *testing.T, responses ...*models.SurveyResponse) *fixture {
	t.Helper()
	f := newFixture(t)
	f.surveyRepo.On("GetByID", mock.Anything, mock.Anything, uint(1)).
		Return(tracerSurvey(1, models.SurveyClosed), nil).Once()
	f.responseRepo.On("ListBySurvey", mock.Anything, mock.Anything, uint(1), repositories.ResponseFilters{}).
		Return(responses, int64(len(responses)), nil)
	return f
}

func TestAnalyticsService_Aggregate(t *testing.T) {
	f := setupAnalytics(t,
		storedResponse(1, "Ada", "Yes", "Go,SQL"),
		storedResponse(2, "Grace", "No", "SQL"),
		storedResponse(3, "", "Yes", ""),
		// stored before a question was added
		storedResponse(4, "Linus", "Yes"),
	)

	report, err := f.analytics.Aggregate(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.Completed)
	assert.InDelta(t, 2.0/3.0, report.CompletionRate, 1e-9)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Inconsistencies, 1)
	assert.Equal(t, 3, report.Inconsistencies[0].ResponseIndex)

	assert.Equal(t, map[string]int{"Yes": 2, "No": 1}, report.PerQuestion[1].AnswerCounts)
	assert.Equal(t, map[string]int{"Go": 1, "SQL": 2}, report.PerQuestion[2].AnswerCounts)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AggregationSkipped))
}

func TestAnalyticsService_ExportXLSX(t *testing.T) {
	f := setupAnalytics(t,
		storedResponse(1, "Ada", "Yes", "Go,SQL"),
		storedResponse(2, "Grace", "No", "SQL"),
	)

	data, err := f.analytics.Export(context.Background(), 1, ExportFormatXLSX)
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{"Responses", "Summary"}, book.GetSheetList())

	rows, err := book.GetRows("Responses")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Response ID", "Respondent", "Submitted At", "Full name", "Employed?", "Skills"}, rows[0])
	assert.Equal(t, "Ada", rows[1][3])
	assert.Equal(t, "Go,SQL", rows[1][5])

	summary, err := book.GetRows("Summary")
	require.NoError(t, err)
	assert.NotEmpty(t, summary)
}

func TestAnalyticsService_ExportCSV(t *testing.T) {
	f := setupAnalytics(t,
		storedResponse(1, "Ada", "Yes", "Go,SQL"),
		storedResponse(2, "Linus"),
	)

	data, err := f.analytics.Export(context.Background(), 1, ExportFormatCSV)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Full name", records[0][3])
	assert.Equal(t, "Go,SQL", records[1][5])
	// drifted record is padded, not dropped
	assert.Equal(t, []string{"Linus", "", ""}, records[2][3:])
}

func TestAnalyticsService_Export_UnsupportedFormat(t *testing.T) {
	f := newFixture(t)

	_, err := f.analytics.Export(context.Background(), 1, "pdf")
	assert.ErrorIs(t, err, ErrUnsupportedExportFormat)
	assert.True(t, IsValidation(err))
}
