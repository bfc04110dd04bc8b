package port

import "context"

// MessengerPort - доставка одного сообщения в канал/тред.
// Fire-and-forget: сбой доставки не ретраится этим конвейером.
type MessengerPort interface {
	Send(ctx context.Context, chatID string, threadID int, html string) error
}
