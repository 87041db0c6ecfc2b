// internal/autosave/client.go
package autosave

import (
	"context"
	"sync"
	"time"

	"assessment-service/internal/common/logger"
	"assessment-service/internal/common/metrics"
	"assessment-service/internal/models"
)

// Status is the externally visible save state of the client.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusSaving  Status = "saving"
	StatusSaved   Status = "saved"
	StatusError   Status = "error"
)

// SaveRequest is the payload sent to the remote store. Responses always carry
// the full response map for the group, never a delta.
type SaveRequest struct {
	AssessmentID string                `json:"assessmentId"`
	GroupID      string                `json:"groupId"`
	Responses    models.GroupResponses `json:"responses"`
	CurrentStep  int                   `json:"currentStep"`
	Completion   *models.CategoryStatus `json:"completionStatus,omitempty"`
}

// Saver performs the remote save call.
type Saver interface {
	SaveResponses(ctx context.Context, req SaveRequest) (*models.Assessment, error)
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(ctx context.Context, req SaveRequest) (*models.Assessment, error)

func (f SaverFunc) SaveResponses(ctx context.Context, req SaveRequest) (*models.Assessment, error) {
	return f(ctx, req)
}

// Result reports the outcome of a flush. Err is set only when Status is
// StatusError; the client never panics or propagates errors any other way.
type Result struct {
	Status   Status
	Attempts int
	SavedAt  time.Time
	Err      error
}

// Config controls debounce and retry behaviour. The retry bound differs
// between call sites of the original product, so it is configuration here
// rather than a constant.
type Config struct {
	Debounce   time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultConfig returns the production defaults: 30s quiet period, three
// retries (four attempts total) spaced one second apart.
func DefaultConfig() Config {
	return Config{
		Debounce:   30 * time.Second,
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

func (c *Config) applyDefaults() {
	if c.Debounce <= 0 {
		c.Debounce = 30 * time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
}

// Client debounces and serializes saves for a single assessment.
//
// Guarantees:
//   - only the latest pending payload is ever sent (newer ScheduleSave calls
//     supersede a not-yet-fired one, they are not queued)
//   - at most one save is in flight at a time; a payload scheduled while a
//     save is in flight is sent immediately after it resolves
//   - failures resolve to a Result with StatusError after MaxRetries+1
//     attempts and are reported through the error callback, never panics
type Client struct {
	cfg          Config
	saver        Saver
	assessmentID string
	log          logger.Logger

	onSaved func(*models.Assessment)
	onError func(error)

	// saveMu serializes flushes; mu guards the fields below.
	saveMu sync.Mutex
	mu     sync.Mutex

	timer     *time.Timer
	pending   *SaveRequest
	status    Status
	lastSaved time.Time
	dirty     bool
	closed    bool
}

// Option configures a Client.
type Option func(*Client)

// WithOnSaved registers a callback invoked after every successful save.
func WithOnSaved(fn func(*models.Assessment)) Option {
	return func(c *Client) { c.onSaved = fn }
}

// WithOnError registers a callback invoked after retries are exhausted.
func WithOnError(fn func(error)) Option {
	return func(c *Client) { c.onError = fn }
}

// NewClient builds a client bound to one assessment.
func NewClient(assessmentID string, saver Saver, cfg Config, log logger.Logger, opts ...Option) *Client {
	cfg.applyDefaults()
	c := &Client{
		cfg:          cfg,
		saver:        saver,
		assessmentID: assessmentID,
		log:          log.WithFields(map[string]interface{}{"assessmentId": assessmentID}),
		status:       StatusIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ScheduleSave records the payload and arms the debounce timer. A later call
// for the same assessment replaces the pending payload and restarts the quiet
// period.
func (c *Client) ScheduleSave(groupID string, responses models.GroupResponses, step int) {
	c.ScheduleSaveWithStatus(groupID, responses, step, nil)
}

// ScheduleSaveWithStatus is ScheduleSave with the group's computed completion
// status attached to the payload.
func (c *Client) ScheduleSaveWithStatus(groupID string, responses models.GroupResponses, step int, status *models.CategoryStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.pending = &SaveRequest{
		AssessmentID: c.assessmentID,
		GroupID:      groupID,
		Responses:    cloneGroup(responses),
		CurrentStep:  step,
		Completion:   status,
	}
	c.dirty = true
	if c.status != StatusSaving {
		c.status = StatusPending
	}
	metrics.AutosavePending.WithLabelValues(c.assessmentID).Set(1)

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.cfg.Debounce, func() {
		res := c.flush(context.Background())
		if res.Err != nil {
			c.log.Warn("debounced save failed", map[string]interface{}{
				"attempts": res.Attempts,
				"error":    res.Err.Error(),
			})
		}
	})
}

// SaveNow cancels any pending timer and performs an immediate save. When
// nothing is pending it is a no-op that reports the current state, so calling
// it twice in a row costs exactly one network call.
func (c *Client) SaveNow(ctx context.Context) Result {
	return c.flush(ctx)
}

// Status returns the current save status.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// LastSavedAt returns the time of the most recent successful save.
func (c *Client) LastSavedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSaved
}

// HasUnsavedChanges reports whether an edit has happened since the last
// successful save.
func (c *Client) HasUnsavedChanges() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// Close cancels the pending timer and drops any unsent payload. Results of a
// save already in flight are discarded. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.pending = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	metrics.AutosavePending.WithLabelValues(c.assessmentID).Set(0)
}

// flush drains pending payloads. Payloads scheduled while a save is in flight
// are picked up by the next loop iteration, which keeps saves strictly
// serialized without ever dropping one.
func (c *Client) flush(ctx context.Context) Result {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	var last *Result
	for {
		c.mu.Lock()
		if c.timer != nil {
			c.timer.Stop()
			c.timer = nil
		}
		req := c.pending
		c.pending = nil
		if req == nil || c.closed {
			status := c.status
			savedAt := c.lastSaved
			c.mu.Unlock()
			if last != nil {
				return *last
			}
			return Result{Status: status, SavedAt: savedAt}
		}
		c.status = StatusSaving
		c.mu.Unlock()

		res := c.attempt(ctx, req)
		last = &res
	}
}

func (c *Client) attempt(ctx context.Context, req *SaveRequest) Result {
	start := time.Now()
	var lastErr error
	attempts := 0

	for i := 0; i <= c.cfg.MaxRetries; i++ {
		attempts++
		assessment, err := c.saver.SaveResponses(ctx, *req)
		if err == nil {
			now := time.Now()
			c.mu.Lock()
			c.status = StatusSaved
			c.lastSaved = now
			if c.pending == nil {
				// A newer edit scheduled during the flight keeps dirty set.
				c.dirty = false
				metrics.AutosavePending.WithLabelValues(c.assessmentID).Set(0)
			}
			closed := c.closed
			c.mu.Unlock()

			metrics.ResponseSaves.WithLabelValues("success").Inc()
			metrics.SaveDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())
			if c.onSaved != nil && !closed {
				c.onSaved(assessment)
			}
			return Result{Status: StatusSaved, Attempts: attempts, SavedAt: now}
		}

		lastErr = err
		metrics.SaveRetries.WithLabelValues(c.assessmentID).Inc()
		if i < c.cfg.MaxRetries {
			c.log.Warn("save attempt failed, retrying", map[string]interface{}{
				"groupId": req.GroupID,
				"attempt": attempts,
				"error":   err.Error(),
			})
			select {
			case <-time.After(c.cfg.RetryDelay):
			case <-ctx.Done():
				lastErr = ctx.Err()
				i = c.cfg.MaxRetries // stop retrying
			}
		}
	}

	c.mu.Lock()
	c.status = StatusError
	closed := c.closed
	c.mu.Unlock()

	metrics.ResponseSaves.WithLabelValues("error").Inc()
	metrics.SaveDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
	c.log.Error("save failed after retries", map[string]interface{}{
		"groupId":  req.GroupID,
		"attempts": attempts,
		"error":    lastErr.Error(),
	})
	if c.onError != nil && !closed {
		c.onError(lastErr)
	}
	return Result{Status: StatusError, Attempts: attempts, Err: lastErr}
}

func cloneGroup(in models.GroupResponses) models.GroupResponses {
	out := make(models.GroupResponses, len(in))
	for k, v := range in {
		if v.Kind == models.AnswerStringList {
			v.List = append([]string(nil), v.List...)
		}
		out[k] = v
	}
	return out
}
