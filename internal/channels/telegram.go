package channels

import (
	"context"
	"sort"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// TelegramSource reads the vacancy digest channel through the bot API
// update feed. Only messages from the configured chat are kept.
type TelegramSource struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramSource(token string, chatID int64) (*TelegramSource, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to telegram")
	}
	log.Infof("Telegram source authorized as %s", bot.Self.UserName)
	return &TelegramSource{bot: bot, chatID: chatID}, nil
}

func (s *TelegramSource) MessagesSince(ctx context.Context, since time.Time) ([]ChatMessage, error) {

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 1
	updateConfig.AllowedUpdates = []string{"message", "channel_post"}

	updates, err := s.bot.GetUpdates(updateConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get telegram updates")
	}

	var messages []ChatMessage
	for _, update := range updates {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		message := update.Message
		if message == nil {
			message = update.ChannelPost
		}
		if message == nil || message.Chat == nil || message.Chat.ID != s.chatID {
			continue
		}
		date := time.Unix(int64(message.Date), 0)
		if !date.After(since) {
			continue
		}
		messages = append(messages, ChatMessage{
			MessageID: int64(message.MessageID),
			Date:      date,
			Text:      message.Text,
		})
	}

	sort.Slice(messages, func(i, j int) bool { return messages[i].Date.Before(messages[j].Date) })
	return messages, nil
}
