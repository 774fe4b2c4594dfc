package error_notificator

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramInfra struct {
	bot         Sender
	adminChatID int64
}

func NewTelegramInfra(token string, adminChatID int64) (*TelegramInfra, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &TelegramInfra{bot: bot, adminChatID: adminChatID}, nil
}

func (i *TelegramInfra) Notify(ctx context.Context, stage string, err error, details string) error {
	text := fmt.Sprintf(
		"❗ pdf2png: ошибка на шаге %s\n\nОшибка: %v\n\nДетали: %s",
		stage,
		err,
		details,
	)

	msg := tgbotapi.NewMessage(i.adminChatID, text)

	_, sendErr := i.bot.Send(msg)
	if sendErr != nil {
		log.Printf("[error_notificator] send fail: %v", sendErr)
		return sendErr
	}

	return nil
}

// LogInfra — когда телеграм не настроен, ошибки просто пишутся в лог.
type LogInfra struct{}

func (LogInfra) Notify(_ context.Context, stage string, err error, details string) error {
	log.Printf("[error_notificator] stage=%s err=%v details=%s", stage, err, details)
	return nil
}
