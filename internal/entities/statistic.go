package entities

// Statistic holds the numeric digest extracted from a chat statistics
// message, one-to-one with its RawMessage.
type Statistic struct {
	ID                  uint `gorm:"primaryKey"`
	VacanciesIn30d      *int `gorm:"column:vacancies_in_30d"`
	CandidatesOnline    *int
	MinSalary           *int
	MaxSalary           *int
	ResponsesPerVacancy *int
	VacanciesPerWeek    *int
	CandidatesPerWeek   *int
	ParseNote           string
	RawMessageID        uint `gorm:"uniqueIndex"`
}

func (Statistic) TableName() string { return "statistic" }

// Service records a short control message, one-to-one with its RawMessage.
type Service struct {
	ID           uint   `gorm:"primaryKey"`
	Text         string `gorm:"type:text"`
	RawMessageID uint   `gorm:"uniqueIndex"`
}

func (Service) TableName() string { return "service" }
