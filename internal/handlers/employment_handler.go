package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/graduate-tracer/survey-service/internal/employment"
	"github.com/graduate-tracer/survey-service/internal/models"
	"github.com/graduate-tracer/survey-service/internal/services"
	"github.com/graduate-tracer/survey-service/internal/utils"
)

type EmploymentHandler struct {
	BaseHandler
	employmentService services.EmploymentService
}

func NewEmploymentHandler(employmentService services.EmploymentService, logger utils.Logger) *EmploymentHandler {
	return &EmploymentHandler{
		BaseHandler:       NewBaseHandler(logger),
		employmentService: employmentService,
	}
}

// EmploymentAnswersRequest carries answers keyed by field key
type EmploymentAnswersRequest struct {
	Answers map[string]models.AnswerValue `json:"answers"`
}

// GetForm renders the employment fields active for a status
// @Summary Employment form
// @Tags employment
// @Produce json
// @Param employment_status query string false "Current employment status"
// @Success 200 {object} services.EmploymentFormResponse
// @Router /employment/form [get]
func (h *EmploymentHandler) GetForm(c *gin.Context) {
	form, err := h.employmentService.Form(c.Request.Context(), c.Query(employment.StatusKey))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, form)
}

// ValidateProfile checks employment answers without storing them
// @Summary Validate employment profile
// @Tags employment
// @Accept json
// @Produce json
// @Param profile body EmploymentAnswersRequest true "Answers keyed by field"
// @Success 200 {object} ValidationResult
// @Failure 422 {object} ErrorResponse
// @Router /employment/profiles/validate [post]
func (h *EmploymentHandler) ValidateProfile(c *gin.Context) {
	var req EmploymentAnswersRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.employmentService.Validate(c.Request.Context(), req.Answers); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ValidationResult{Valid: true})
}

// SubmitProfile stores a graduate's employment profile
// @Summary Submit employment profile
// @Tags employment
// @Accept json
// @Produce json
// @Param graduate_id path string true "Graduate ID"
// @Param profile body EmploymentAnswersRequest true "Answers keyed by field"
// @Success 201 {object} models.EmploymentRecord
// @Failure 422 {object} ErrorResponse
// @Router /employment/profiles/{graduate_id} [post]
func (h *EmploymentHandler) SubmitProfile(c *gin.Context) {
	graduateID := ParseStringIDParam(c, "graduate_id")
	if graduateID == "" {
		return
	}

	var req EmploymentAnswersRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting employment profile", "graduate_id", graduateID)

	record, err := h.employmentService.Submit(c.Request.Context(), graduateID, req.Answers)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// GetProfile returns a graduate's latest employment profile
// @Summary Latest employment profile
// @Tags employment
// @Produce json
// @Param graduate_id path string true "Graduate ID"
// @Success 200 {object} models.EmploymentRecord
// @Failure 404 {object} ErrorResponse
// @Router /employment/profiles/{graduate_id} [get]
func (h *EmploymentHandler) GetProfile(c *gin.Context) {
	graduateID := ParseStringIDParam(c, "graduate_id")
	if graduateID == "" {
		return
	}

	record, err := h.employmentService.Latest(c.Request.Context(), graduateID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}
