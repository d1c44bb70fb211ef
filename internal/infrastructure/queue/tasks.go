package queue

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const TypeEmailVerify = "email:verify"

// VerifyEmailPayload is carried by email:verify tasks.
type VerifyEmailPayload struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// NewEmailVerifyTask builds the task enqueued after signup.
func NewEmailVerifyTask(email, token string) (*asynq.Task, error) {
	payload, err := json.Marshal(VerifyEmailPayload{Email: email, Token: token})
	if err != nil {
		return nil, fmt.Errorf("marshal verify payload: %w", err)
	}
	return asynq.NewTask(TypeEmailVerify, payload, asynq.MaxRetry(5)), nil
}

// Enqueuer is the producer side used by the auth service. Kept as an
// interface so services can be tested without Redis.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

func NewClient(redisAddr, redisPassword string, redisDB int) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
}
