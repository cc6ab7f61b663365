package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/graduate-tracer/survey-service/internal/services"
	"github.com/graduate-tracer/survey-service/internal/utils"
)

type AnalyticsHandler struct {
	BaseHandler
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService, logger utils.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      NewBaseHandler(logger),
		analyticsService: analyticsService,
	}
}

var exportContentTypes = map[string]string{
	services.ExportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	services.ExportFormatCSV:  "text/csv",
}

// GetAnalytics returns the aggregated report of a survey
// @Summary Survey analytics
// @Tags analytics
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} survey.Report
// @Failure 404 {object} ErrorResponse
// @Router /surveys/{id}/analytics [get]
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	report, err := h.analyticsService.Aggregate(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportResponses downloads the responses as xlsx (default) or csv
// @Summary Export responses
// @Tags analytics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce text/csv
// @Param id path uint true "Survey ID"
// @Param format query string false "xlsx or csv"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Router /surveys/{id}/export [get]
func (h *AnalyticsHandler) ExportResponses(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	format := c.DefaultQuery("format", services.ExportFormatXLSX)
	h.LogRequest(c, "Exporting responses", "survey_id", id, "format", format)

	data, err := h.analyticsService.Export(c.Request.Context(), id, format)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("survey_%d_responses.%s", id, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, exportContentTypes[format], data)
}
