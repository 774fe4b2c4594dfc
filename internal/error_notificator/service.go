package error_notificator

import (
	"context"
	"log"
)

type Service struct {
	infra Notificator
}

func NewService(infra Notificator) *Service {
	return &Service{infra: infra}
}

// New выбирает телеграм, если заданы токен и чат, иначе лог.
func New(token string, adminChatID int64) *Service {
	if token == "" || adminChatID == 0 {
		return NewService(LogInfra{})
	}
	tg, err := NewTelegramInfra(token, adminChatID)
	if err != nil {
		log.Printf("[error_notificator] %v, falling back to log", err)
		return NewService(LogInfra{})
	}
	return NewService(tg)
}

func (s *Service) Notify(ctx context.Context, stage string, err error, details string) error {
	return s.infra.Notify(ctx, stage, err, details)
}
