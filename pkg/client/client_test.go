// pkg/client/client_test.go
package client

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assessment-service/internal/api"
	"assessment-service/internal/auth"
	"assessment-service/internal/autosave"
	apperrors "assessment-service/internal/common/errors"
	"assessment-service/internal/common/logger"
	"assessment-service/internal/models"
	"assessment-service/internal/service"
	"assessment-service/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *service.AssessmentService, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	log := logger.NewTestLogger(t)
	assessments := service.NewAssessmentService(st, log)
	srv := api.NewServer(
		service.NewCompanyService(st, log),
		assessments,
		nil,
		auth.NewService(st, "test-secret", time.Hour),
		log,
	)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	company, err := service.NewCompanyService(st, log).CreateCompany(context.Background(), service.CreateCompanyInput{Name: "Acme"})
	require.NoError(t, err)
	return ts, assessments, company.ID
}

func authedClient(t *testing.T, ts *httptest.Server) *Client {
	t.Helper()
	c := New(ts.URL)
	err := c.call(context.Background(), "POST", "/api/v1/auth/register", map[string]string{
		"email": "dev@example.com", "password": "long-enough-pw",
	}, nil)
	require.NoError(t, err)
	require.NoError(t, c.Login(context.Background(), "dev@example.com", "long-enough-pw"))
	return c
}

func TestClientRoundTrip(t *testing.T) {
	ts, assessments, companyID := newTestServer(t)
	c := authedClient(t, ts)
	ctx := context.Background()

	created, err := assessments.CreateAssessment(ctx, service.CreateAssessmentInput{
		CompanyID: companyID, Name: "Q3 Review", Type: models.TypeExploratory,
	})
	require.NoError(t, err)

	a, err := c.GetAssessment(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, a.ID)
	assert.Equal(t, 3, a.TotalSteps)

	saved, err := c.SaveResponses(ctx, autosave.SaveRequest{
		AssessmentID: created.ID,
		GroupID:      "step-1",
		Responses: models.GroupResponses{
			"industry":       models.StringAnswer("retail"),
			"employee-count": models.NumberAnswer(120),
		},
		CurrentStep: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, saved.Status)
	assert.Equal(t, models.StringAnswer("retail"), saved.Responses["step-1"]["industry"])

	steps, err := c.GetCompletedSteps(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, steps)
}

func TestClientErrorCodesSurviveTheWire(t *testing.T) {
	ts, _, _ := newTestServer(t)
	c := authedClient(t, ts)
	ctx := context.Background()

	_, err := c.GetAssessment(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeAssessmentNotFound, apperrors.CodeOf(err))

	_, err = c.CompleteAssessment(ctx, "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestClientUnauthorized(t *testing.T) {
	ts, assessments, companyID := newTestServer(t)
	ctx := context.Background()

	created, err := assessments.CreateAssessment(ctx, service.CreateAssessmentInput{
		CompanyID: companyID, Name: "Q3 Review", Type: models.TypeExploratory,
	})
	require.NoError(t, err)

	c := New(ts.URL)
	_, err = c.GetAssessment(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.CodeOf(err))
}

func TestClientCompleteGate(t *testing.T) {
	ts, assessments, companyID := newTestServer(t)
	c := authedClient(t, ts)
	ctx := context.Background()

	created, err := assessments.CreateAssessment(ctx, service.CreateAssessmentInput{
		CompanyID: companyID, Name: "Q3 Review", Type: models.TypeExploratory,
	})
	require.NoError(t, err)

	_, err = c.CompleteAssessment(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeIncompleteRequired, apperrors.CodeOf(err))
}
