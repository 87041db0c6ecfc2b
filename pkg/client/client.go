// pkg/client/client.go

// Package client is the Go client for the assessment service HTTP API. It
// implements the session backend interface, so a questionnaire session can
// run against a remote server exactly as it runs in-process.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"assessment-service/internal/autosave"
	apperrors "assessment-service/internal/common/errors"
	"assessment-service/internal/models"
)

// Client talks to the assessment service API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login obtains a token and stores it on the client.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var out struct {
		Token string `json:"token"`
	}
	err := c.call(ctx, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": email, "password": password,
	}, &out)
	if err != nil {
		return err
	}
	c.token = out.Token
	return nil
}

// GetAssessment fetches an assessment by id.
func (c *Client) GetAssessment(ctx context.Context, id string) (*models.Assessment, error) {
	var a models.Assessment
	if err := c.call(ctx, http.MethodGet, "/api/v1/assessments/"+id, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetCompletedSteps fetches the completed step numbers.
func (c *Client) GetCompletedSteps(ctx context.Context, id string) ([]int, error) {
	var out struct {
		CompletedSteps []int `json:"completedSteps"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/assessments/"+id+"/steps", nil, &out); err != nil {
		return nil, err
	}
	return out.CompletedSteps, nil
}

// SaveResponses pushes one group's full response map.
func (c *Client) SaveResponses(ctx context.Context, req autosave.SaveRequest) (*models.Assessment, error) {
	body := map[string]interface{}{
		"responses":   req.Responses,
		"currentStep": req.CurrentStep,
	}
	path := fmt.Sprintf("/api/v1/assessments/%s/responses/%s", req.AssessmentID, req.GroupID)
	var a models.Assessment
	if err := c.call(ctx, http.MethodPut, path, body, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// CompleteAssessment performs the terminal transition.
func (c *Client) CompleteAssessment(ctx context.Context, id string) (*models.Assessment, error) {
	var a models.Assessment
	if err := c.call(ctx, http.MethodPost, "/api/v1/assessments/"+id+"/complete", nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetReview fetches the review read model as raw JSON for display layers.
func (c *Client) GetReview(ctx context.Context, id string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.call(ctx, http.MethodGet, "/api/v1/assessments/"+id+"/review", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return decodeError(res)
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// decodeError rebuilds the server's structured error so callers can match on
// error codes across the wire.
func decodeError(res *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
	var body apperrors.HTTPBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Code != "" {
		return &apperrors.StandardError{
			Code:      body.Code,
			Message:   body.Message,
			Details:   body.Details,
			Retryable: res.StatusCode >= 500,
			Timestamp: time.Now().UTC(),
		}
	}
	return fmt.Errorf("request failed with status %d: %s", res.StatusCode, strings.TrimSpace(string(raw)))
}
