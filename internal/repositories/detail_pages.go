package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/entities"
)

type DetailPages struct {
	db *gorm.DB
}

func NewDetailPagesRepository(db *gorm.DB) *DetailPages {
	return &DetailPages{db: db}
}

// Pending returns pages that still need a fetch: never fetched, or whose
// last fetch ended in a non-terminal status. 200 is cached, 404 is terminal.
func (repo *DetailPages) Pending(ctx context.Context) ([]entities.DetailPage, error) {

	var pages []entities.DetailPage
	err := repo.db.WithContext(ctx).
		Where("html IS NULL OR status_code IS NULL OR status_code NOT IN (200, 404)").
		Find(&pages).Error
	return pages, err
}

// RecordFetch stores one fetch outcome.
func (repo *DetailPages) RecordFetch(ctx context.Context, url string, body string, statusCode int) error {

	now := time.Now()
	return repo.db.WithContext(ctx).Model(&entities.DetailPage{}).
		Where("url = ?", url).
		Updates(map[string]any{
			"html":        body,
			"status_code": statusCode,
			"last_check":  now,
			"parsed_at":   nil,
			"attempts":    gorm.Expr("attempts + 1"),
		}).Error
}

// EligibleForParse returns the cached pages whose content should go through
// extraction: fetched cleanly and either never parsed, refetched since the
// last parse, or originating from a message on or after the horizon date.
// Results come back in source message date order.
func (repo *DetailPages) EligibleForParse(ctx context.Context, horizon time.Time) ([]entities.DetailPage, error) {

	var pages []entities.DetailPage
	err := repo.db.WithContext(ctx).
		Joins("JOIN vacancies ON vacancies.id = vacancy_web.vacancy_id").
		Joins("JOIN raw_messages ON raw_messages.id = vacancies.raw_message_id").
		Where("vacancy_web.status_code = 200").
		Where("vacancy_web.parsed_at IS NULL OR vacancy_web.parsed_at < vacancy_web.last_check"+
			" OR raw_messages.date >= ?", horizon).
		Order("raw_messages.date").
		Find(&pages).Error
	return pages, err
}

// MarkParsed stamps a page after its content went through extraction.
func (repo *DetailPages) MarkParsed(ctx context.Context, id uint) error {
	now := time.Now()
	return repo.db.WithContext(ctx).Model(&entities.DetailPage{}).
		Where("id = ?", id).
		Update("parsed_at", now).Error
}

// GetByURL returns the page row for a canonical URL, or nil when unknown.
func (repo *DetailPages) GetByURL(ctx context.Context, url string) (*entities.DetailPage, error) {

	var page entities.DetailPage
	err := repo.db.WithContext(ctx).Where("url = ?", url).First(&page).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}
