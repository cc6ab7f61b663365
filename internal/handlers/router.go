package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/graduate-tracer/survey-service/internal/metrics"
	"github.com/graduate-tracer/survey-service/internal/middleware"
	"github.com/graduate-tracer/survey-service/internal/services"
	"github.com/graduate-tracer/survey-service/internal/utils"
)

type HandlerManager struct {
	surveyHandler     *SurveyHandler
	responseHandler   *ResponseHandler
	analyticsHandler  *AnalyticsHandler
	employmentHandler *EmploymentHandler

	logger      utils.Logger
	metrics     *metrics.Collector
	limiter     *middleware.RateLimiter
	corsOrigins []string
}

// RouterOptions carries the cross-cutting middleware dependencies
type RouterOptions struct {
	Metrics *metrics.Collector
	// Limiter guards submission routes; nil disables rate limiting
	Limiter     *middleware.RateLimiter
	CORSOrigins []string
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	opts RouterOptions,
) *HandlerManager {
	return &HandlerManager{
		surveyHandler:     NewSurveyHandler(serviceManager.Survey(), logger),
		responseHandler:   NewResponseHandler(serviceManager.Response(), logger),
		analyticsHandler:  NewAnalyticsHandler(serviceManager.Analytics(), logger),
		employmentHandler: NewEmploymentHandler(serviceManager.Employment(), logger),
		logger:            logger,
		metrics:           opts.Metrics,
		limiter:           opts.Limiter,
		corsOrigins:       opts.CORSOrigins,
	}
}

// NewRouter builds a gin engine with the service middleware stack and every route
func (hm *HandlerManager) NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		utils.ContextLogger(hm.logger),
		utils.LoggerMiddleware(hm.logger),
		cors.New(hm.corsConfig()),
	)
	if hm.metrics != nil {
		router.Use(hm.metrics.Middleware())
	}

	hm.SetupRoutes(router)
	return router
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)
	if hm.metrics != nil {
		router.GET("/metrics", gin.WrapH(hm.metrics.Handler()))
	}

	submit := []gin.HandlerFunc{}
	if hm.limiter != nil {
		submit = append(submit, hm.limiter.Middleware())
	}

	v1 := router.Group("/api/v1")
	{
		surveys := v1.Group("/surveys")
		{
			surveys.POST("", hm.surveyHandler.CreateSurvey)
			surveys.GET("", hm.surveyHandler.ListSurveys)
			surveys.GET("/:id", hm.surveyHandler.GetSurvey)
			surveys.PUT("/:id", hm.surveyHandler.UpdateSurvey)
			surveys.DELETE("/:id", hm.surveyHandler.DeleteSurvey)

			// Builder
			surveys.POST("/:id/questions", hm.surveyHandler.AddQuestion)
			surveys.DELETE("/:id/questions/:index", hm.surveyHandler.RemoveQuestion)
			surveys.PATCH("/:id/questions/:index", hm.surveyHandler.UpdateQuestion)
			surveys.PUT("/:id/questions/:index/options", hm.surveyHandler.SetOptions)

			// Lifecycle
			surveys.POST("/:id/publish", hm.surveyHandler.PublishSurvey)
			surveys.POST("/:id/close", hm.surveyHandler.CloseSurvey)

			// Responses
			surveys.GET("/:id/form", hm.responseHandler.GetForm)
			surveys.POST("/:id/responses/validate", hm.responseHandler.ValidateAnswers)
			surveys.POST("/:id/responses", append(submit, hm.responseHandler.SubmitResponse)...)
			surveys.GET("/:id/responses", hm.responseHandler.ListResponses)

			// Analytics
			surveys.GET("/:id/analytics", hm.analyticsHandler.GetAnalytics)
			surveys.GET("/:id/export", hm.analyticsHandler.ExportResponses)
		}

		employmentRoutes := v1.Group("/employment")
		{
			employmentRoutes.GET("/form", hm.employmentHandler.GetForm)
			employmentRoutes.POST("/profiles/validate", hm.employmentHandler.ValidateProfile)
			employmentRoutes.POST("/profiles/:graduate_id", append(submit, hm.employmentHandler.SubmitProfile)...)
			employmentRoutes.GET("/profiles/:graduate_id", hm.employmentHandler.GetProfile)
		}
	}
}

func (hm *HandlerManager) corsConfig() cors.Config {
	config := cors.DefaultConfig()
	if len(hm.corsOrigins) == 0 || (len(hm.corsOrigins) == 1 && hm.corsOrigins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = hm.corsOrigins
	}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", utils.RequestIDHeader, UserIDHeader}
	config.ExposeHeaders = []string{utils.RequestIDHeader, "Content-Disposition"}
	config.MaxAge = 12 * time.Hour
	return config
}

// HealthCheck reports liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "survey-service",
	})
}
