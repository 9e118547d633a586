package entities

// Vacancy is one vacancy slot extracted from a RawMessage. SlotHash is a
// content hash of (channel, native id, ordinal position within the message),
// so re-running ingestion maps each slot back onto the same row even when
// extraction quality changes between runs.
type Vacancy struct {
	ID       uint   `gorm:"primaryKey"`
	SlotHash string `gorm:"uniqueIndex;size:32;not null"`

	// Per-stage parse shortfall summaries, stored for quality monitoring.
	MessageParseNote string
	WebParseNote     string

	RawMessageID uint `gorm:"index"`

	DetailPages []DetailPage     `gorm:"constraint:OnDelete:CASCADE"`
	Attributes  []AttributeValue `gorm:"many2many:vacancy_attribute_values"`
}

func (Vacancy) TableName() string { return "vacancies" }
