package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// MessengerAdapter реализует MessengerPort поверх Telegram Bot API.
// Сообщения уходят в топики супергруппы: тред выбирает вызывающая
// сторона по правилам рынка.
type MessengerAdapter struct {
	bot *bot.Bot
}

// NewMessengerAdapter создает новый экземпляр адаптера.
func NewMessengerAdapter(token string) (*MessengerAdapter, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram messenger: token cannot be empty")
	}
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("telegram messenger: create bot: %w", err)
	}
	return &MessengerAdapter{bot: b}, nil
}

// Send доставляет одно HTML-сообщение. threadID == 0 означает
// общий канал без топика.
func (a *MessengerAdapter) Send(ctx context.Context, chatID string, threadID int, html string) error {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      html,
		ParseMode: models.ParseModeHTML,
	}
	if threadID != 0 {
		params.MessageThreadID = threadID
	}

	if _, err := a.bot.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("telegram messenger: send to chat %s thread %d: %w", chatID, threadID, err)
	}
	return nil
}
