package bot

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"QuoteDesk/internal/model"
	"QuoteDesk/internal/notifier"
)

// Sender delivers a message to a chat.
type Sender interface {
	SendWithRetry(ctx context.Context, chatID int64, text string, maxRetries int) error
}

// Forward sends every result on stream to the chat that issued it until
// the stream closes or ctx is done. Results whose owner is not a chat ID
// go to fallbackChat, or are dropped when it is zero.
func Forward(ctx context.Context, stream <-chan model.QueryResult, sender Sender, fallbackChat int64) {
	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-stream:
			if !ok {
				return
			}
			chatID, err := strconv.ParseInt(res.Query.Owner, 10, 64)
			if err != nil {
				chatID = fallbackChat
			}
			if chatID == 0 {
				zap.S().Debugf("no chat for result %s (owner %s)", res.Query.ID, res.Query.Owner)
				continue
			}
			if err := sender.SendWithRetry(ctx, chatID, notifier.FormatQueryResult(res), 3); err != nil {
				zap.S().Errorf("send result %s: %v", res.Query.ID, err)
			}
		}
	}
}
