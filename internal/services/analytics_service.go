package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/graduate-tracer/survey-service/internal/metrics"
	"github.com/graduate-tracer/survey-service/internal/models"
	"github.com/graduate-tracer/survey-service/internal/repositories"
	"github.com/graduate-tracer/survey-service/internal/survey"
	"github.com/xuri/excelize/v2"
)

// Export formats
const (
	ExportFormatXLSX = "xlsx"
	ExportFormatCSV  = "csv"
)

// AnalyticsService aggregates stored responses and exports them
type AnalyticsService interface {
	Aggregate(ctx context.Context, surveyID uint) (*survey.Report, error)
	Export(ctx context.Context, surveyID uint, format string) ([]byte, error)
	ExportXLSX(ctx context.Context, surveyID uint) ([]byte, error)
	ExportCSV(ctx context.Context, surveyID uint) ([]byte, error)
}

type analyticsService struct {
	surveys   SurveyService
	responses repositories.ResponseRepository
	metrics   *metrics.Collector
	logger    *slog.Logger
}

func NewAnalyticsService(
	surveys SurveyService,
	responses repositories.ResponseRepository,
	collector *metrics.Collector,
	logger *slog.Logger,
) AnalyticsService {
	return &analyticsService{
		surveys:   surveys,
		responses: responses,
		metrics:   collector,
		logger:    logger,
	}
}

func (s *analyticsService) Aggregate(ctx context.Context, surveyID uint) (*survey.Report, error) {
	target, stored, err := s.load(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	normalized := make([]models.NormalizedResponse, len(stored))
	for i, r := range stored {
		normalized[i] = r.Normalized()
	}

	report := survey.Aggregate(target, normalized)
	if report.Skipped > 0 {
		s.metrics.AggregationSkipped.Add(float64(report.Skipped))
		s.logger.Warn("Skipped responses that no longer match the survey",
			"survey_id", surveyID,
			"skipped", report.Skipped,
			"total", report.Total)
	}
	return &report, nil
}

func (s *analyticsService) Export(ctx context.Context, surveyID uint, format string) ([]byte, error) {
	switch format {
	case ExportFormatXLSX, "":
		return s.ExportXLSX(ctx, surveyID)
	case ExportFormatCSV:
		return s.ExportCSV(ctx, surveyID)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExportFormat, format)
	}
}

// ExportXLSX writes a Responses sheet (one row per response, one column per
// question) and a Summary sheet with the aggregated answer counts
func (s *analyticsService) ExportXLSX(ctx context.Context, surveyID uint) ([]byte, error) {
	target, stored, err := s.load(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	responsesSheet := "Responses"
	if err := f.SetSheetName("Sheet1", responsesSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	rows := append([][]string{exportHeader(target)}, exportRows(target, stored)...)
	for rowIndex, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, rowIndex+1)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row))
		for i, v := range row {
			values[i] = v
		}
		if err := f.SetSheetRow(responsesSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write Excel row: %w", err)
		}
	}

	normalized := make([]models.NormalizedResponse, len(stored))
	for i, r := range stored {
		normalized[i] = r.Normalized()
	}
	report := survey.Aggregate(target, normalized)
	if err := writeSummarySheet(f, &report); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportCSV writes the Responses table as CSV
func (s *analyticsService) ExportCSV(ctx context.Context, surveyID uint) ([]byte, error) {
	target, stored, err := s.load(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportHeader(target)); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range exportRows(target, stored) {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *analyticsService) load(ctx context.Context, surveyID uint) (*models.Survey, []*models.SurveyResponse, error) {
	target, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, nil, err
	}

	stored, _, err := s.responses.ListBySurvey(ctx, nil, surveyID, repositories.ResponseFilters{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load responses: %w", err)
	}
	return target, stored, nil
}

func exportHeader(target *models.Survey) []string {
	header := []string{"Response ID", "Respondent", "Submitted At"}
	for _, q := range target.Questions {
		header = append(header, q.Text)
	}
	return header
}

// exportRows writes answers by position; drifted records keep whatever answers they have
func exportRows(target *models.Survey, stored []*models.SurveyResponse) [][]string {
	rows := make([][]string, 0, len(stored))
	for _, r := range stored {
		row := []string{
			fmt.Sprintf("%d", r.ID),
			r.RespondentID,
			r.SubmittedAt.Format(time.RFC3339),
		}
		for i := range target.Questions {
			answer := ""
			if i < len(r.Answers) {
				answer = r.Answers[i].Answer
			}
			row = append(row, answer)
		}
		rows = append(rows, row)
	}
	return rows
}

func writeSummarySheet(f *excelize.File, report *survey.Report) error {
	sheet := "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Total responses", report.Total},
		{"Completion rate", report.CompletionRate},
		{"Skipped (schema mismatch)", report.Skipped},
		{},
		{"Question", "Answer", "Count"},
	}
	for _, q := range report.PerQuestion {
		answers := make([]string, 0, len(q.AnswerCounts))
		for answer := range q.AnswerCounts {
			answers = append(answers, answer)
		}
		sort.Strings(answers)
		for _, answer := range answers {
			rows = append(rows, []interface{}{q.QuestionText, answer, q.AnswerCounts[answer]})
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write Excel row: %w", err)
		}
	}
	return nil
}
