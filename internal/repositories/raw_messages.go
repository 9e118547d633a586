package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/entities"
)

type RawMessages struct {
	db *gorm.DB
}

func NewRawMessagesRepository(db *gorm.DB) *RawMessages {
	return &RawMessages{db: db}
}

// LastDate returns the date of the newest stored message on a channel, so
// incremental fetches can resume where the previous run stopped. The zero
// time means the channel has no messages yet.
func (repo *RawMessages) LastDate(ctx context.Context, channel entities.Channel) (time.Time, error) {

	var message entities.RawMessage
	err := repo.db.WithContext(ctx).
		Where("channel_id = ?", int(channel)).
		Order("date DESC").
		First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return message.Date, nil
}
