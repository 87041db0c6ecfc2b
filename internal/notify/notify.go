// internal/notify/notify.go

// Package notify sends completion notifications over SES email and SNS SMS.
// Both channels are best-effort and independently toggled by configuration.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	apperrors "assessment-service/internal/common/errors"
	"assessment-service/internal/common/logger"
	"assessment-service/internal/models"
)

// EmailSender is satisfied by the SES client wrapper.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// SMSPublisher is satisfied by the SNS client wrapper.
type SMSPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// Config selects channels and destinations.
type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromAddress  string
	ToAddresses  []string
	SMSTopicARN  string
}

// Service fans a completion event out to the enabled channels.
type Service struct {
	cfg   Config
	email EmailSender
	sms   SMSPublisher
	log   logger.Logger
}

func NewService(cfg Config, email EmailSender, sms SMSPublisher, log logger.Logger) *Service {
	return &Service{cfg: cfg, email: email, sms: sms, log: log}
}

// NotifyCompleted announces a completed assessment. Each channel fails
// independently; the first failure is returned after all channels ran.
func (s *Service) NotifyCompleted(ctx context.Context, company *models.Company, a *models.Assessment) error {
	var firstErr error

	if s.cfg.EmailEnabled && s.email != nil {
		if err := s.sendEmail(ctx, company, a); err != nil {
			s.log.WithError(err).Warn("completion email failed", map[string]interface{}{
				"assessmentId": a.ID,
			})
			firstErr = err
		}
	}
	if s.cfg.SMSEnabled && s.sms != nil {
		if err := s.sendSMS(ctx, company, a); err != nil {
			s.log.WithError(err).Warn("completion sms failed", map[string]interface{}{
				"assessmentId": a.ID,
			})
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *Service) sendEmail(ctx context.Context, company *models.Company, a *models.Assessment) error {
	subject := fmt.Sprintf("Assessment completed: %s", a.Name)
	body := fmt.Sprintf(
		"The %s assessment %q for %s was completed at %s.",
		a.Type, a.Name, company.Name, a.CompletedAt.UTC().Format("2006-01-02 15:04 UTC"),
	)

	input := &ses.SendEmailInput{
		Source: aws.String(s.cfg.FromAddress),
		Destination: &sestypes.Destination{
			ToAddresses: s.cfg.ToAddresses,
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	}
	if _, err := s.email.SendEmail(ctx, input); err != nil {
		return apperrors.NewNotificationSendFailedError(err)
	}
	return nil
}

func (s *Service) sendSMS(ctx context.Context, company *models.Company, a *models.Assessment) error {
	message := fmt.Sprintf("Assessment %q for %s completed.", a.Name, company.Name)
	input := &sns.PublishInput{
		TopicArn: aws.String(s.cfg.SMSTopicARN),
		Message:  aws.String(message),
	}
	if _, err := s.sms.Publish(ctx, input); err != nil {
		return apperrors.NewNotificationSendFailedError(err)
	}
	return nil
}
