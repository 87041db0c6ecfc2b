// internal/notify/notify_test.go
package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assessment-service/internal/common/logger"
	"assessment-service/internal/models"
)

type fakeEmail struct {
	sent []*ses.SendEmailInput
	err  error
}

func (f *fakeEmail) SendEmail(_ context.Context, in *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, in)
	return &ses.SendEmailOutput{}, nil
}

type fakeSMS struct {
	published []*sns.PublishInput
	err       error
}

func (f *fakeSMS) Publish(_ context.Context, in *sns.PublishInput) (*sns.PublishOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.published = append(f.published, in)
	return &sns.PublishOutput{}, nil
}

func completedAssessment() (*models.Company, *models.Assessment) {
	done := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	return &models.Company{ID: "c-1", Name: "Acme"},
		&models.Assessment{
			ID:          "a-1",
			Name:        "Q3 Review",
			Type:        models.TypeExploratory,
			Status:      models.StatusCompleted,
			CompletedAt: &done,
		}
}

func TestNotifyCompletedBothChannels(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	svc := NewService(Config{
		EmailEnabled: true,
		SMSEnabled:   true,
		FromAddress:  "noreply@example.com",
		ToAddresses:  []string{"ops@example.com"},
		SMSTopicARN:  "arn:aws:sns:eu-west-1:1234:completions",
	}, email, sms, logger.NewTestLogger(t))

	company, a := completedAssessment()
	require.NoError(t, svc.NotifyCompleted(context.Background(), company, a))
	require.Len(t, email.sent, 1)
	require.Len(t, sms.published, 1)
	assert.Contains(t, *email.sent[0].Message.Subject.Data, "Q3 Review")
	assert.Contains(t, *sms.published[0].Message, "Acme")
}

func TestNotifyCompletedDisabledChannelsSkipped(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	svc := NewService(Config{}, email, sms, logger.NewTestLogger(t))

	company, a := completedAssessment()
	require.NoError(t, svc.NotifyCompleted(context.Background(), company, a))
	assert.Empty(t, email.sent)
	assert.Empty(t, sms.published)
}

func TestNotifyCompletedEmailFailureStillSendsSMS(t *testing.T) {
	email := &fakeEmail{err: errors.New("ses throttled")}
	sms := &fakeSMS{}
	svc := NewService(Config{EmailEnabled: true, SMSEnabled: true}, email, sms, logger.NewNoOpLogger())

	company, a := completedAssessment()
	err := svc.NotifyCompleted(context.Background(), company, a)
	require.Error(t, err)
	assert.Len(t, sms.published, 1, "sms channel is independent of the email failure")
}
