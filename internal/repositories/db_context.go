package repositories

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/entities"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(connectionString string) (*DbContext, error) {
	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}

	if err = db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DbContext{DB: db}, nil
}

func (c *DbContext) Migrate() error {

	for _, model := range []any{
		&entities.ChannelRef{}, &entities.KindRef{}, &entities.AttributeName{},
		&entities.RawMessage{}, &entities.Vacancy{}, &entities.AttributeValue{},
		&entities.DetailPage{}, &entities.Statistic{}, &entities.Service{},
	} {
		if err := c.DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	if err := c.populateReferenceData(); err != nil {
		return fmt.Errorf("failed to populate reference data: %w", err)
	}

	return nil
}

// populateReferenceData seeds the channel, kind and attribute name lookup
// tables. Seeding is idempotent so migration can run on every start.
func (c *DbContext) populateReferenceData() error {

	for _, channel := range entities.AllChannels() {
		ref := entities.ChannelRef{ID: int(channel), Name: channel.Name()}
		if err := c.DB.Where(entities.ChannelRef{ID: ref.ID}).
			FirstOrCreate(&ref).Error; err != nil {
			return err
		}
	}

	for _, kind := range entities.AllKinds() {
		ref := entities.KindRef{ID: int(kind), Name: kind.Name()}
		if err := c.DB.Where(entities.KindRef{ID: ref.ID}).
			FirstOrCreate(&ref).Error; err != nil {
			return err
		}
	}

	for _, id := range entities.AllAttributeIDs() {
		attr := entities.AttributeName{ID: int(id), Name: id.Name(), ValueType: id.ValueType()}
		if err := c.DB.Where(entities.AttributeName{ID: attr.ID}).
			FirstOrCreate(&attr).Error; err != nil {
			return err
		}
	}

	return nil
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
