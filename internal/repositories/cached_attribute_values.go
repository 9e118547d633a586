package repositories

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/entities"
)

type attributeValueRepository interface {
	Intern(attributeID entities.AttributeID, value string, channel entities.Channel) (uint, error)
	LinkToVacancy(vacancyID, valueID uint) error
}

// CachedAttributeValues avoids re-querying the interning table for values
// that repeat across a digest, such as subscriptions and locations.
type CachedAttributeValues struct {
	repo  attributeValueRepository
	cache *gocache.Cache
}

func NewCachedAttributeValues(repo attributeValueRepository) *CachedAttributeValues {
	return &CachedAttributeValues{repo: repo, cache: gocache.New(10*time.Minute, 20*time.Minute)}
}

func (c CachedAttributeValues) Intern(attributeID entities.AttributeID, value string,
	channel entities.Channel) (uint, error) {

	key := fmt.Sprintf("%d\x00%s", attributeID, value)
	if cached, found := c.cache.Get(key); found {
		return cached.(uint), nil
	}

	id, err := c.repo.Intern(attributeID, value, channel)
	if id != 0 {
		c.cache.Set(key, id, gocache.DefaultExpiration)
	}

	return id, err
}

func (c CachedAttributeValues) LinkToVacancy(vacancyID, valueID uint) error {
	return c.repo.LinkToVacancy(vacancyID, valueID)
}
