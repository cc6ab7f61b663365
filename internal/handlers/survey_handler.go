package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/graduate-tracer/survey-service/internal/models"
	"github.com/graduate-tracer/survey-service/internal/repositories"
	"github.com/graduate-tracer/survey-service/internal/services"
	"github.com/graduate-tracer/survey-service/internal/utils"
)

// UserIDHeader is set by the gateway after it authenticates the caller
const UserIDHeader = "X-User-ID"

type SurveyHandler struct {
	BaseHandler
	surveyService services.SurveyService
}

func NewSurveyHandler(surveyService services.SurveyService, logger utils.Logger) *SurveyHandler {
	return &SurveyHandler{
		BaseHandler:   NewBaseHandler(logger),
		surveyService: surveyService,
	}
}

// SetOptionsRequest carries the raw options textarea, one option per line
type SetOptionsRequest struct {
	Text string `json:"text"`
}

// CreateSurvey creates a new draft survey
// @Summary Create survey
// @Tags surveys
// @Accept json
// @Produce json
// @Param survey body services.CreateSurveyRequest true "Survey data"
// @Success 201 {object} models.Survey
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /surveys [post]
func (h *SurveyHandler) CreateSurvey(c *gin.Context) {
	var req services.CreateSurveyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating survey", "title", req.Title)

	created, err := h.surveyService.Create(c.Request.Context(), &req, c.GetHeader(UserIDHeader))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetSurvey retrieves a survey by ID
// @Summary Get survey
// @Tags surveys
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} models.Survey
// @Failure 404 {object} ErrorResponse
// @Router /surveys/{id} [get]
func (h *SurveyHandler) GetSurvey(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	found, err := h.surveyService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

// ListSurveys lists surveys with filters
// @Summary List surveys
// @Tags surveys
// @Produce json
// @Param status query string false "draft, active or closed"
// @Param search query string false "Title search"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} services.SurveyListResponse
// @Router /surveys [get]
func (h *SurveyHandler) ListSurveys(c *gin.Context) {
	filters := h.parseSurveyFilters(c)
	result, err := h.surveyService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateSurvey replaces fields of a draft survey
// @Summary Update survey
// @Tags surveys
// @Accept json
// @Produce json
// @Param id path uint true "Survey ID"
// @Param survey body services.UpdateSurveyRequest true "Fields to change"
// @Success 200 {object} models.Survey
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /surveys/{id} [put]
func (h *SurveyHandler) UpdateSurvey(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateSurveyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating survey", "survey_id", id)

	updated, err := h.surveyService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteSurvey deletes a survey that has no responses
// @Summary Delete survey
// @Tags surveys
// @Param id path uint true "Survey ID"
// @Success 200 {object} SuccessResponse
// @Failure 409 {object} ErrorResponse
// @Router /surveys/{id} [delete]
func (h *SurveyHandler) DeleteSurvey(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting survey", "survey_id", id)

	if err := h.surveyService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Survey deleted successfully", nil)
}

// ===== BUILDER =====

// AddQuestion appends an empty text question to a draft
// @Summary Add question
// @Tags builder
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} services.BuilderResult
// @Router /surveys/{id}/questions [post]
func (h *SurveyHandler) AddQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	result, err := h.surveyService.AddQuestion(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RemoveQuestion removes the question at index; later questions shift down
// @Summary Remove question
// @Tags builder
// @Produce json
// @Param id path uint true "Survey ID"
// @Param index path int true "Question position"
// @Success 200 {object} services.BuilderResult
// @Router /surveys/{id}/questions/{index} [delete]
func (h *SurveyHandler) RemoveQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	index := h.parseIndexParam(c, "index")
	if index < 0 {
		return
	}

	result, err := h.surveyService.RemoveQuestion(c.Request.Context(), id, index)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateQuestion changes fields of the question at index
// @Summary Update question
// @Tags builder
// @Accept json
// @Produce json
// @Param id path uint true "Survey ID"
// @Param index path int true "Question position"
// @Param question body services.UpdateQuestionRequest true "Fields to change"
// @Success 200 {object} services.BuilderResult
// @Router /surveys/{id}/questions/{index} [patch]
func (h *SurveyHandler) UpdateQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	index := h.parseIndexParam(c, "index")
	if index < 0 {
		return
	}

	var req services.UpdateQuestionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.surveyService.UpdateQuestion(c.Request.Context(), id, index, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SetOptions replaces the options of the question at index from newline separated text
// @Summary Set question options
// @Tags builder
// @Accept json
// @Produce json
// @Param id path uint true "Survey ID"
// @Param index path int true "Question position"
// @Param options body SetOptionsRequest true "Options text"
// @Success 200 {object} services.BuilderResult
// @Router /surveys/{id}/questions/{index}/options [put]
func (h *SurveyHandler) SetOptions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	index := h.parseIndexParam(c, "index")
	if index < 0 {
		return
	}

	var req SetOptionsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.surveyService.SetOptions(c.Request.Context(), id, index, req.Text)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ===== LIFECYCLE =====

// PublishSurvey opens a draft for responses
// @Summary Publish survey
// @Tags surveys
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} models.Survey
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /surveys/{id}/publish [post]
func (h *SurveyHandler) PublishSurvey(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Publishing survey", "survey_id", id)

	published, err := h.surveyService.Publish(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, published)
}

// CloseSurvey stops accepting responses
// @Summary Close survey
// @Tags surveys
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} models.Survey
// @Failure 409 {object} ErrorResponse
// @Router /surveys/{id}/close [post]
func (h *SurveyHandler) CloseSurvey(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Closing survey", "survey_id", id)

	closed, err := h.surveyService.Close(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, closed)
}

func (h *SurveyHandler) parseSurveyFilters(c *gin.Context) repositories.SurveyFilters {
	page := parseIntQuery(c, "page", 1)
	size := parseIntQuery(c, "size", 20)
	if page < 1 {
		page = 1
	}

	filters := repositories.SurveyFilters{
		Search:    c.Query("search"),
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if status := c.Query("status"); status != "" {
		surveyStatus := models.SurveyStatus(status)
		filters.Status = &surveyStatus
	}
	if createdBy := c.Query("created_by"); createdBy != "" {
		filters.CreatedBy = &createdBy
	}

	return filters
}
