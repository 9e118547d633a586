package entities

import "time"

// DetailPage caches the job board's full page for one vacancy URL. Several
// pages may point at one Vacancy (the same vacancy can be announced under
// more than one tracked link).
type DetailPage struct {
	ID         uint   `gorm:"primaryKey"`
	URL        string `gorm:"uniqueIndex;not null"`
	HTML       *string
	StatusCode *int
	LastCheck  *time.Time
	ParsedAt   *time.Time
	Attempts   int `gorm:"default:0"`

	VacancyID *uint `gorm:"index"`
}

func (DetailPage) TableName() string { return "vacancy_web" }
