package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"atlas-backend/internal/infrastructure/email"
)

// EmailVerifyHandler delivers verification mails. Malformed payloads are
// dropped; transport failures are retried by asynq.
func EmailVerifyHandler(emailSvc email.EmailService, baseURL string) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p VerifyEmailPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return asynq.SkipRetry
		}

		data := email.VerificationEmailData{
			Email:      p.Email,
			VerifyLink: fmt.Sprintf("%s/api/auth/verify-email?token=%s", baseURL, p.Token),
			ExpiresIn:  "7 days",
		}
		return emailSvc.SendVerificationEmail(ctx, data)
	}
}
