package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/graduate-tracer/survey-service/internal/errors"
	"github.com/graduate-tracer/survey-service/internal/services"
	"github.com/graduate-tracer/survey-service/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Code      string      `json:"code,omitempty"`
	Retryable *bool       `json:"retryable,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler with logging capability
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// requestLogger already carries request_id, method and path when the
// ContextLogger middleware ran
func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	return utils.GetLoggerFromContext(c, h.logger.With(
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	))
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{"remote_addr", c.ClientIP()}, additionalFields...)
	h.requestLogger(c).Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.requestLogger(c).LogError(err, message, additionalFields...)
}

// LogWarn logs warning messages with context
func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	h.requestLogger(c).Warn(message, additionalFields...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
	}

	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if err != nil {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode)
	}

	c.JSON(statusCode, errorResp)
}

// RespondWithSuccess sends a consistent success response
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// handleServiceError maps service errors to HTTP responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var blocked *apperrors.SubmissionBlockedError
	if errors.As(err, &blocked) {
		retryable := false
		c.JSON(http.StatusConflict, ErrorResponse{
			Message:   "Survey is not open for responses",
			Code:      "survey_not_open",
			Details:   blocked,
			Retryable: &retryable,
		})
		return
	}

	// checked before ValidationErrors since a SchemaError unwraps to one
	var schemaErr *apperrors.SchemaError
	if errors.As(err, &schemaErr) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Invalid survey schema",
			Code:    "invalid_schema",
			Details: schemaErr.Errors,
		})
		return
	}

	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		message := "Validation failed"
		if first := validationErrors.First(); first != nil {
			message = first.Message
		}
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: message,
			Code:    "validation_failed",
			Details: validationErrors,
		})
		return
	}

	var validationError *services.ValidationError
	if errors.As(err, &validationError) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Code:    "validation_failed",
			Details: services.ValidationErrors{*validationError},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrSurveyNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Survey not found",
		})
	case errors.Is(err, services.ErrEmploymentRecordNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Employment record not found",
		})
	case errors.Is(err, services.ErrSurveyNotEditable):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Survey can only be edited while in draft",
		})
	case errors.Is(err, services.ErrSurveyNotDeletable):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Survey cannot be deleted - has existing responses",
		})
	case errors.Is(err, services.ErrInvalidStatusTransition):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Invalid survey status transition",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrUnsupportedExportFormat):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported export format",
			Details: err.Error(),
		})
	// Generic errors
	case errors.Is(err, services.ErrValidationFailed), errors.Is(err, services.ErrBadRequest):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Bad request",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Resource not found",
		})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Resource conflict",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}

// ===== PARAM HELPERS =====

func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID must be a positive integer",
		})
		return 0
	}
	return uint(id)
}

// parseIndexParam returns -1 after responding when the question index is malformed
func (h *BaseHandler) parseIndexParam(c *gin.Context, param string) int {
	index, err := strconv.Atoi(c.Param(param))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "index must be a non-negative integer",
		})
		return -1
	}
	return index
}

func (h *BaseHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return false
	}
	return true
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return value
}

// ParseStringIDParam returns the trimmed path parameter, responding 400 when it is empty
func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}
