package repositories

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/entities"
)

// Upsert finds a row by filter and applies update to it, or creates a row
// from the merged filter and update maps. The bool reports whether a new
// row was created.
func Upsert[T any](db *gorm.DB, filter map[string]any, update map[string]any) (*T, bool, error) {

	var record T
	err := db.Where(filter).First(&record).Error
	if err == nil {
		if len(update) > 0 {
			if err = db.Model(&record).Updates(update).Error; err != nil {
				return nil, false, err
			}
		}
		return &record, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	values := make(map[string]any, len(filter)+len(update))
	for column, value := range filter {
		values[column] = value
	}
	for column, value := range update {
		values[column] = value
	}
	if err = db.Model(new(T)).Create(values).Error; err != nil {
		return nil, false, err
	}
	if err = db.Where(filter).First(&record).Error; err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

// SlotHash derives the stable identity key of one vacancy slot: a hash over
// the channel, the message's native id and the vacancy's ordinal position
// within that message. It never depends on extracted values, so the same
// slot maps to the same row across runs.
func SlotHash(channel entities.Channel, nativeID int64, slot int) string {
	payload, _ := json.Marshal([]any{int(channel), nativeID, slot})
	sum := md5.Sum(payload)
	return hex.EncodeToString(sum[:])
}
