package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/graduate-tracer/survey-service/internal/models"
	"github.com/graduate-tracer/survey-service/internal/repositories"
	"github.com/graduate-tracer/survey-service/internal/services"
	"github.com/graduate-tracer/survey-service/internal/utils"
)

type ResponseHandler struct {
	BaseHandler
	responseService services.ResponseService
}

func NewResponseHandler(responseService services.ResponseService, logger utils.Logger) *ResponseHandler {
	return &ResponseHandler{
		BaseHandler:     NewBaseHandler(logger),
		responseService: responseService,
	}
}

// ValidateAnswersRequest is the body of a validation preview
type ValidateAnswersRequest struct {
	Answers models.AnswerMap `json:"answers"`
}

// ValidationResult is returned when a preview passes
type ValidationResult struct {
	Valid bool `json:"valid"`
}

// GetForm renders the survey as input controls
// @Summary Get survey form
// @Tags responses
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} services.FormResponse
// @Failure 404 {object} ErrorResponse
// @Router /surveys/{id}/form [get]
func (h *ResponseHandler) GetForm(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	form, err := h.responseService.Form(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, form)
}

// ValidateAnswers checks answers without storing them
// @Summary Validate answers
// @Tags responses
// @Accept json
// @Produce json
// @Param id path uint true "Survey ID"
// @Param answers body ValidateAnswersRequest true "Answers keyed by question position"
// @Success 200 {object} ValidationResult
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /surveys/{id}/responses/validate [post]
func (h *ResponseHandler) ValidateAnswers(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req ValidateAnswersRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.responseService.Validate(c.Request.Context(), id, req.Answers); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ValidationResult{Valid: true})
}

// SubmitResponse validates, normalizes and stores a response
// @Summary Submit response
// @Tags responses
// @Accept json
// @Produce json
// @Param id path uint true "Survey ID"
// @Param response body services.SubmitResponseRequest true "Answers keyed by question position"
// @Success 201 {object} models.SurveyResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /surveys/{id}/responses [post]
func (h *ResponseHandler) SubmitResponse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SubmitResponseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.RespondentID == "" {
		req.RespondentID = c.GetHeader(UserIDHeader)
	}

	h.LogRequest(c, "Submitting response", "survey_id", id, "answers", len(req.Answers))

	stored, err := h.responseService.Submit(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, stored)
}

// ListResponses lists stored responses of a survey
// @Summary List responses
// @Tags responses
// @Produce json
// @Param id path uint true "Survey ID"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Param from query string false "RFC3339 lower bound on submitted_at"
// @Param to query string false "RFC3339 upper bound on submitted_at"
// @Success 200 {object} services.ResponseListResponse
// @Router /surveys/{id}/responses [get]
func (h *ResponseHandler) ListResponses(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	filters, ok := h.parseResponseFilters(c)
	if !ok {
		return
	}

	result, err := h.responseService.ListBySurvey(c.Request.Context(), id, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ResponseHandler) parseResponseFilters(c *gin.Context) (repositories.ResponseFilters, bool) {
	page := parseIntQuery(c, "page", 1)
	size := parseIntQuery(c, "size", 50)
	if page < 1 {
		page = 1
	}

	filters := repositories.ResponseFilters{
		Limit:  size,
		Offset: (page - 1) * size,
	}

	if version := parseIntQuery(c, "survey_version", 0); version > 0 {
		filters.SurveyVersion = &version
	}

	for key, target := range map[string]**time.Time{"from": &filters.DateFrom, "to": &filters.DateTo} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid "+key+" date", nil, "expected RFC3339")
			return filters, false
		}
		*target = &parsed
	}

	return filters, true
}
