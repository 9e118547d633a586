package channels

import (
	"context"
	"time"
)

// ChatMessage is one message observed on the chat channel.
type ChatMessage struct {
	MessageID int64
	Date      time.Time
	Text      string
}

// ChatSource yields chat messages newer than a given moment, oldest first.
type ChatSource interface {
	MessagesSince(ctx context.Context, since time.Time) ([]ChatMessage, error)
}
