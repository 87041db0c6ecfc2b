// internal/api/handlers.go
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "assessment-service/internal/common/errors"
	"assessment-service/internal/models"
	"assessment-service/internal/search"
	"assessment-service/internal/service"
)

// --- auth ---

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.NewValidationFailedError(err.Error()))
		return
	}
	u, err := s.auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": u.ID, "email": u.Email})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.NewValidationFailedError(err.Error()))
		return
	}
	token, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// --- companies ---

func (s *Server) handleCreateCompany(c *gin.Context) {
	var req service.CreateCompanyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.NewValidationFailedError(err.Error()))
		return
	}
	company, err := s.companies.CreateCompany(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, company)
}

func (s *Server) handleListCompanies(c *gin.Context) {
	companies, err := s.companies.ListCompanies(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, companies)
}

func (s *Server) handleGetCompany(c *gin.Context) {
	company, err := s.companies.GetCompany(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (s *Server) handleUpdateCompany(c *gin.Context) {
	var req service.CreateCompanyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.NewValidationFailedError(err.Error()))
		return
	}
	company, err := s.companies.UpdateCompany(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (s *Server) handleDeleteCompany(c *gin.Context) {
	if err := s.companies.DeleteCompany(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListCompanyAssessments(c *gin.Context) {
	assessments, err := s.assessments.ListAssessmentsByCompany(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessments)
}

// --- assessments ---

func (s *Server) handleCreateAssessment(c *gin.Context) {
	var req service.CreateAssessmentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.NewValidationFailedError(err.Error()))
		return
	}
	a, err := s.assessments.CreateAssessment(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (s *Server) handleListAssessments(c *gin.Context) {
	assessments, err := s.assessments.ListAssessments(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessments)
}

func (s *Server) handleGetAssessment(c *gin.Context) {
	a, err := s.assessments.GetAssessment(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) handleRenameAssessment(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.NewValidationFailedError(err.Error()))
		return
	}
	a, err := s.assessments.RenameAssessment(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) handleDeleteAssessment(c *gin.Context) {
	if err := s.assessments.DeleteAssessment(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- responses and completion ---

type saveResponsesRequest struct {
	Responses   models.GroupResponses `json:"responses" binding:"required"`
	CurrentStep int                   `json:"currentStep"`
}

func (s *Server) handleSaveResponses(c *gin.Context) {
	var req saveResponsesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.NewValidationFailedError(err.Error()))
		return
	}
	a, err := s.assessments.UpdateCategoryResponses(
		c.Request.Context(), c.Param("id"), c.Param("groupId"), req.Responses, req.CurrentStep,
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

type categoryStatusRequest struct {
	Status models.CategoryStatus `json:"status" binding:"required"`
}

func (s *Server) handleSaveCategoryStatus(c *gin.Context) {
	var req categoryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.NewValidationFailedError(err.Error()))
		return
	}
	switch req.Status {
	case models.CategoryNotStarted, models.CategoryPartial, models.CategoryCompleted:
	default:
		writeError(c, apperrors.NewValidationFailedError("status must be not_started, partial or completed"))
		return
	}
	if err := s.assessments.UpdateCategoryStatus(c.Request.Context(), c.Param("id"), c.Param("groupId"), req.Status); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleGetCompletedSteps(c *gin.Context) {
	steps, err := s.assessments.GetCompletedSteps(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"completedSteps": steps})
}

func (s *Server) handleComplete(c *gin.Context) {
	a, err := s.assessments.CompleteAssessment(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) handleReview(c *gin.Context) {
	review, err := s.assessments.GetAssessmentForReview(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// --- statistics and search ---

func (s *Server) handleStatistics(c *gin.Context) {
	stats, err := s.assessments.GetAssessmentStatistics(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleSearch(c *gin.Context) {
	q := search.Query{
		Text:      c.Query("q"),
		CompanyID: c.Query("companyId"),
		Type:      models.AssessmentType(c.Query("type")),
		Status:    models.AssessmentStatus(c.Query("status")),
	}
	hits, err := s.search.SearchAssessments(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": hits})
}
