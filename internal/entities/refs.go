package entities

// Channel identifies where a message was observed.
type Channel int

const (
	ChannelWeb   Channel = 1
	ChannelEmail Channel = 2
	ChannelChat  Channel = 3
)

func (c Channel) Name() string {
	switch c {
	case ChannelWeb:
		return "web"
	case ChannelEmail:
		return "email"
	case ChannelChat:
		return "telegram"
	}
	return "unknown"
}

// Kind classifies a raw message by its content.
type Kind int

const (
	KindChatVacancy   Kind = 1
	KindChatStatistic Kind = 2
	KindChatService   Kind = 3
	KindChatUnknown   Kind = 4
	KindMailVacancy   Kind = 5
	KindMailUnknown   Kind = 6
)

func (k Kind) Name() string {
	switch k {
	case KindChatVacancy:
		return "tg_vacancy"
	case KindChatStatistic:
		return "tg_statistic"
	case KindChatService:
		return "tg_service"
	case KindChatUnknown:
		return "tg_unknown"
	case KindMailVacancy:
		return "email_vacancy"
	case KindMailUnknown:
		return "email_unknown"
	}
	return "unknown"
}

// KindByConfigName maps a catalog kind name back to its Kind; unrecognized
// names classify as tg_unknown.
func KindByConfigName(name string) Kind {
	for _, k := range []Kind{KindChatVacancy, KindChatStatistic, KindChatService,
		KindChatUnknown, KindMailVacancy, KindMailUnknown} {
		if k.Name() == name {
			return k
		}
	}
	return KindChatUnknown
}

// ChannelRef and KindRef are small lookup tables seeded idempotently at
// startup so joins against stored names stay possible for reporting.
type ChannelRef struct {
	ID   int    `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

type KindRef struct {
	ID   int    `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

func (ChannelRef) TableName() string { return "channels" }
func (KindRef) TableName() string    { return "kinds" }

func AllChannels() []Channel {
	return []Channel{ChannelWeb, ChannelEmail, ChannelChat}
}

func AllKinds() []Kind {
	return []Kind{KindChatVacancy, KindChatStatistic, KindChatService,
		KindChatUnknown, KindMailVacancy, KindMailUnknown}
}
