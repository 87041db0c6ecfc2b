// internal/api/router.go

// Package api exposes the assessment service over HTTP with gin.
package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"assessment-service/internal/auth"
	apperrors "assessment-service/internal/common/errors"
	"assessment-service/internal/common/logger"
	"assessment-service/internal/common/metrics"
	"assessment-service/internal/common/observability"
	"assessment-service/internal/search"
	"assessment-service/internal/service"
)

// Server bundles the HTTP dependencies.
type Server struct {
	companies   *service.CompanyService
	assessments *service.AssessmentService
	search      *search.Service
	auth        *auth.Service
	obs         *observability.Observability
	log         logger.Logger
}

// ServerOption configures optional server dependencies.
type ServerOption func(*Server)

// WithObservability attaches OpenTelemetry request instrumentation.
func WithObservability(obs *observability.Observability) ServerOption {
	return func(s *Server) { s.obs = obs }
}

func NewServer(companies *service.CompanyService, assessments *service.AssessmentService, searchSvc *search.Service, authSvc *auth.Service, log logger.Logger, opts ...ServerOption) *Server {
	s := &Server{
		companies:   companies,
		assessments: assessments,
		search:      searchSvc,
		auth:        authSvc,
		log:         log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestMetrics())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	v1.POST("/auth/register", s.handleRegister)
	v1.POST("/auth/login", s.handleLogin)

	secured := v1.Group("")
	secured.Use(s.requireAuth())

	secured.POST("/companies", s.handleCreateCompany)
	secured.GET("/companies", s.handleListCompanies)
	secured.GET("/companies/:id", s.handleGetCompany)
	secured.PUT("/companies/:id", s.handleUpdateCompany)
	secured.DELETE("/companies/:id", s.handleDeleteCompany)
	secured.GET("/companies/:id/assessments", s.handleListCompanyAssessments)

	secured.POST("/assessments", s.handleCreateAssessment)
	secured.GET("/assessments", s.handleListAssessments)
	secured.GET("/assessments/:id", s.handleGetAssessment)
	secured.PUT("/assessments/:id", s.handleRenameAssessment)
	secured.DELETE("/assessments/:id", s.handleDeleteAssessment)

	secured.PUT("/assessments/:id/responses/:groupId", s.handleSaveResponses)
	secured.PUT("/assessments/:id/categories/:groupId/status", s.handleSaveCategoryStatus)
	secured.GET("/assessments/:id/steps", s.handleGetCompletedSteps)
	secured.POST("/assessments/:id/complete", s.handleComplete)
	secured.GET("/assessments/:id/review", s.handleReview)

	secured.GET("/statistics", s.handleStatistics)
	if s.search != nil {
		secured.GET("/search", s.handleSearch)
	}

	return r
}

// requestMetrics records request counts per route template and status.
func (s *Server) requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequests.WithLabelValues(route, status).Inc()
		if s.obs != nil {
			s.obs.RecordRequest(c.Request.Context(), route, status)
			s.obs.RecordRequestDuration(c.Request.Context(), route, time.Since(start))
		}

		if c.Writer.Status() >= 500 {
			s.log.Error("request failed", map[string]interface{}{
				"route":    route,
				"status":   status,
				"duration": time.Since(start).String(),
			})
		}
	}
}

// requireAuth validates the bearer token and stores the claims on the
// context.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortWithError(c, apperrors.NewUnauthorizedError("missing bearer token"))
			return
		}
		claims, err := s.auth.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set("claims", claims)
		c.Next()
	}
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperrors.HTTPStatus(err), apperrors.ToHTTPBody(err))
}

func writeError(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatus(err), apperrors.ToHTTPBody(err))
}
