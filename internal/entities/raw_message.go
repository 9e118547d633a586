package entities

import "time"

// RawMessage is one observed channel message. Exactly one of MessageID
// (telegram) or EmailUID (mailbox) is set; each is unique within its channel.
// Re-observing the same native id updates body and kind in place.
type RawMessage struct {
	ID        uint      `gorm:"primaryKey"`
	Date      time.Time `gorm:"index"`
	MessageID *int64    `gorm:"uniqueIndex"`
	EmailUID  *int64    `gorm:"uniqueIndex"`
	Text      string    `gorm:"type:text"`
	HTML      string    `gorm:"type:text"`
	ParseNote string

	ChannelID int `gorm:"index"`
	KindID    int `gorm:"index"`

	Vacancies []Vacancy  `gorm:"constraint:OnDelete:CASCADE"`
	Statistic *Statistic `gorm:"constraint:OnDelete:CASCADE"`
	Service   *Service   `gorm:"constraint:OnDelete:CASCADE"`
}

func (RawMessage) TableName() string { return "raw_messages" }
