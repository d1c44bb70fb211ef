package email

import (
	"context"
	"fmt"
	"net/smtp"

	"atlas-backend/internal/config"
	"atlas-backend/pkg/logger"
)

type VerificationEmailData struct {
	Email      string
	VerifyLink string
	ExpiresIn  string
}

type EmailService interface {
	SendVerificationEmail(ctx context.Context, data VerificationEmailData) error
}

type smtpEmailService struct {
	smtpAddr string
	smtpFrom string
}

func NewSMTPEmailService(cfg config.SMTPConfig) EmailService {
	return &smtpEmailService{
		smtpAddr: cfg.Host + ":" + cfg.Port,
		smtpFrom: cfg.From,
	}
}

func (s *smtpEmailService) SendVerificationEmail(ctx context.Context, data VerificationEmailData) error {
	subject := "Verify your Atlas account"
	body := fmt.Sprintf(`Hi,

Please follow this link to verify your account:
%s

The link is valid for %s.

If you did not sign up for Atlas, you can ignore this email.`, data.VerifyLink, data.ExpiresIn)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.smtpFrom, data.Email, subject, body))

	if err := smtp.SendMail(s.smtpAddr, nil, s.smtpFrom, []string{data.Email}, msg); err != nil {
		logger.Error("failed to send verification email", err)
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
