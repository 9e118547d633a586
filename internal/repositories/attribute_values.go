package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/entities"
)

// AttributeValues interns (attribute, value) pairs: a literal value is
// stored once and shared by every vacancy that produced it.
type AttributeValues struct {
	db *gorm.DB
}

func NewAttributeValuesRepository(db *gorm.DB) *AttributeValues {
	return &AttributeValues{db: db}
}

// Intern returns the id of the row holding the pair, creating it on first
// sight. ChannelID records where the value was first observed.
func (repo *AttributeValues) Intern(attributeID entities.AttributeID, value string,
	channel entities.Channel) (uint, error) {

	record, _, err := Upsert[entities.AttributeValue](repo.db,
		map[string]any{"attribute_id": int(attributeID), "value": value},
		map[string]any{"channel_id": int(channel)})
	if err != nil {
		return 0, fmt.Errorf("failed to intern attribute value: %w", err)
	}
	return record.ID, nil
}

// LinkToVacancy attaches an interned value to a vacancy, skipping links
// that already exist so re-ingestion stays idempotent.
func (repo *AttributeValues) LinkToVacancy(vacancyID, valueID uint) error {

	var count int64
	err := repo.db.Table("vacancy_attribute_values").
		Where("vacancy_id = ? AND attribute_value_id = ?", vacancyID, valueID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return repo.db.Exec(
		"INSERT INTO vacancy_attribute_values (vacancy_id, attribute_value_id) VALUES (?, ?)",
		vacancyID, valueID).Error
}
