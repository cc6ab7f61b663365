package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/graduate-tracer/survey-service/internal/models"
	"github.com/graduate-tracer/survey-service/internal/repositories"
	"github.com/graduate-tracer/survey-service/pkg"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, pkg.AutoMigrate(db))
	return db
}

func sampleSurvey(title string, end time.Time) *models.Survey {
	return &models.Survey{
		Title:     title,
		Status:    models.SurveyDraft,
		StartDate: end.AddDate(0, -1, 0),
		EndDate:   end,
		CreatedBy: "admin-1",
		Questions: []models.Question{
			{Text: "Name", Type: models.QuestionText, Required: true},
			{Text: "Skills", Type: models.QuestionCheckbox, Options: datatypes.JSONSlice[string]{"Go", "SQL"}},
		},
	}
}

func TestSurveyPostgreSQL_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewSurveyPostgreSQL(newTestDB(t))

	survey := sampleSurvey("Tracer 2026", time.Now().AddDate(0, 1, 0))
	require.NoError(t, repo.Create(ctx, nil, survey))
	require.NotZero(t, survey.ID)

	got, err := repo.GetByID(ctx, nil, survey.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tracer 2026", got.Title)
	assert.Equal(t, 1, got.Version)
	require.Len(t, got.Questions, 2)
	assert.Equal(t, "Name", got.Questions[0].Text)
	assert.Equal(t, 1, got.Questions[1].Position)
	assert.Equal(t, datatypes.JSONSlice[string]{"Go", "SQL"}, got.Questions[1].Options)

	_, err = repo.GetByID(ctx, nil, survey.ID+100)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestSurveyPostgreSQL_UpdateReplacesQuestions(t *testing.T) {
	ctx := context.Background()
	repo := NewSurveyPostgreSQL(newTestDB(t))

	survey := sampleSurvey("Tracer", time.Now().AddDate(0, 1, 0))
	require.NoError(t, repo.Create(ctx, nil, survey))

	survey.Title = "Tracer (revised)"
	survey.Questions = []models.Question{
		{Text: "Region", Type: models.QuestionSelect, Options: datatypes.JSONSlice[string]{"North"}},
		survey.Questions[0],
	}
	require.NoError(t, repo.Update(ctx, nil, survey))

	got, err := repo.GetByID(ctx, nil, survey.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tracer (revised)", got.Title)
	assert.Equal(t, 2, got.Version)
	require.Len(t, got.Questions, 2)
	assert.Equal(t, "Region", got.Questions[0].Text)
	assert.Equal(t, "Name", got.Questions[1].Text)
}

func TestSurveyPostgreSQL_UpdateStatusIsConditional(t *testing.T) {
	ctx := context.Background()
	repo := NewSurveyPostgreSQL(newTestDB(t))

	survey := sampleSurvey("Tracer", time.Now().AddDate(0, 1, 0))
	require.NoError(t, repo.Create(ctx, nil, survey))

	ok, err := repo.UpdateStatus(ctx, nil, survey.ID, models.SurveyActive, models.SurveyClosed)
	require.NoError(t, err)
	assert.False(t, ok, "survey is still a draft")

	ok, err = repo.UpdateStatus(ctx, nil, survey.ID, models.SurveyDraft, models.SurveyActive)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, nil, survey.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SurveyActive, got.Status)
}

func TestSurveyPostgreSQL_ListAndExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewSurveyPostgreSQL(newTestDB(t))
	now := time.Now()

	past := sampleSurvey("Old tracer", now.AddDate(0, 0, -1))
	current := sampleSurvey("Current tracer", now.AddDate(0, 0, 10))
	draft := sampleSurvey("Draft pulse", now.AddDate(0, 0, -1))
	for _, s := range []*models.Survey{past, current, draft} {
		require.NoError(t, repo.Create(ctx, nil, s))
	}
	for _, s := range []*models.Survey{past, current} {
		_, err := repo.UpdateStatus(ctx, nil, s.ID, models.SurveyDraft, models.SurveyActive)
		require.NoError(t, err)
	}

	expired, err := repo.GetExpired(ctx, nil, now)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, past.ID, expired[0].ID)

	active := models.SurveyActive
	list, total, err := repo.List(ctx, nil, repositories.SurveyFilters{Status: &active, SortBy: "title", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "Current tracer", list[0].Title)

	list, total, err = repo.List(ctx, nil, repositories.SurveyFilters{Search: "tracer", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 1)
}

func TestSurveyPostgreSQL_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewSurveyPostgreSQL(newTestDB(t))

	survey := sampleSurvey("Tracer", time.Now())
	require.NoError(t, repo.Create(ctx, nil, survey))

	require.NoError(t, repo.Delete(ctx, nil, survey.ID))
	_, err := repo.GetByID(ctx, nil, survey.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.True(t, errors.Is(repo.Delete(ctx, nil, survey.ID), gorm.ErrRecordNotFound))
}

func TestResponsePostgreSQL(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewResponsePostgreSQL(db)
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	for i, answer := range []string{"Ada", "Grace", "Linus"} {
		require.NoError(t, repo.Create(ctx, nil, &models.SurveyResponse{
			SurveyID:      1,
			SurveyVersion: 1 + i/2,
			Answers:       datatypes.JSONSlice[models.ResponseAnswer]{{Question: "Name", Answer: answer}},
			SubmittedAt:   base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, repo.Create(ctx, nil, &models.SurveyResponse{SurveyID: 2, SubmittedAt: base}))

	responses, total, err := repo.ListBySurvey(ctx, nil, 1, repositories.ResponseFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, responses, 3)
	assert.Equal(t, "Ada", responses[0].Answers[0].Answer)

	version := 2
	responses, total, err = repo.ListBySurvey(ctx, nil, 1, repositories.ResponseFilters{SurveyVersion: &version})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Linus", responses[0].Answers[0].Answer)

	count, err := repo.CountBySurvey(ctx, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestResponsePostgreSQL_CreateInTransaction(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewResponsePostgreSQL(db)

	err := db.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, repo.Create(ctx, tx, &models.SurveyResponse{SurveyID: 5, SubmittedAt: time.Now()}))
		return errors.New("rollback")
	})
	require.Error(t, err)

	count, err := repo.CountBySurvey(ctx, nil, 5)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestEmploymentPostgreSQL(t *testing.T) {
	ctx := context.Background()
	repo := NewEmploymentPostgreSQL(newTestDB(t))
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, nil, &models.EmploymentRecord{GraduateID: "g-1", EmploymentStatus: "Unemployed - Looking for work", SubmittedAt: base}))
	require.NoError(t, repo.Create(ctx, nil, &models.EmploymentRecord{GraduateID: "g-1", EmploymentStatus: "Employed", SubmittedAt: base.AddDate(0, 2, 0)}))
	require.NoError(t, repo.Create(ctx, nil, &models.EmploymentRecord{GraduateID: "g-2", EmploymentStatus: "Self-employed", SubmittedAt: base}))

	latest, err := repo.GetLatest(ctx, nil, "g-1")
	require.NoError(t, err)
	assert.Equal(t, "Employed", latest.EmploymentStatus)

	history, err := repo.ListByGraduate(ctx, nil, "g-1")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	_, err = repo.GetLatest(ctx, nil, "nobody")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
