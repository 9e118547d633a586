package entities

// AttributeID enumerates the closed catalog of vacancy attribute names.
type AttributeID int

const (
	AttrPosition           AttributeID = 1
	AttrLocation           AttributeID = 2
	AttrExperience         AttributeID = 3
	AttrMainTech           AttributeID = 4
	AttrTechStack          AttributeID = 5
	AttrLingvo             AttributeID = 6
	AttrSalaryFrom         AttributeID = 7
	AttrSalaryTo           AttributeID = 8
	AttrJobDescPreview     AttributeID = 9
	AttrCompany            AttributeID = 10
	AttrCompanyType        AttributeID = 11
	AttrDomain             AttributeID = 12
	AttrOffices            AttributeID = 13
	AttrEmployment         AttributeID = 14
	AttrCandidateLocations AttributeID = 15
	AttrSubscription       AttributeID = 16
	AttrURL                AttributeID = 17
	AttrJobDesc            AttributeID = 18
	AttrNotes              AttributeID = 19
)

var attributeNames = map[AttributeID]struct {
	name      string
	valueType string
}{
	AttrPosition:           {"position", "string"},
	AttrLocation:           {"location", "string"},
	AttrExperience:         {"experience", "float"},
	AttrMainTech:           {"main_tech", "string"},
	AttrTechStack:          {"tech_stack", "string"},
	AttrLingvo:             {"lingvo", "string"},
	AttrSalaryFrom:         {"salary_from", "integer"},
	AttrSalaryTo:           {"salary_to", "integer"},
	AttrJobDescPreview:     {"job_desc_prev", "string"},
	AttrCompany:            {"company", "string"},
	AttrCompanyType:        {"company_type", "string"},
	AttrDomain:             {"domain", "string"},
	AttrOffices:            {"offices", "string"},
	AttrEmployment:         {"employment", "string"},
	AttrCandidateLocations: {"candidate_locations", "string"},
	AttrSubscription:       {"subscription", "string"},
	AttrURL:                {"url", "string"},
	AttrJobDesc:            {"job_desc", "string"},
	AttrNotes:              {"notes", "string"},
}

func (a AttributeID) Name() string {
	if meta, ok := attributeNames[a]; ok {
		return meta.name
	}
	return "unknown"
}

func (a AttributeID) ValueType() string {
	if meta, ok := attributeNames[a]; ok {
		return meta.valueType
	}
	return "string"
}

// AllAttributeIDs returns the catalog in id order, for seeding.
func AllAttributeIDs() []AttributeID {
	ids := make([]AttributeID, 0, len(attributeNames))
	for id := AttrPosition; id <= AttrNotes; id++ {
		ids = append(ids, id)
	}
	return ids
}

// AttributeName is static reference data seeded once at migration.
type AttributeName struct {
	ID        int    `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;not null"`
	ValueType string `gorm:"not null"`
}

func (AttributeName) TableName() string { return "vacancy_attrs" }

// AttributeValue is one observed (attribute, literal value) pair. Identical
// pairs are interned: a single row is shared by every vacancy that produced
// the same value, via the vacancy_attribute_values link table.
type AttributeValue struct {
	ID          uint   `gorm:"primaryKey"`
	AttributeID int    `gorm:"uniqueIndex:idx_attr_value;not null"`
	Value       string `gorm:"uniqueIndex:idx_attr_value;type:text;not null"`
	ChannelID   int    `gorm:"index"`

	Vacancies []Vacancy `gorm:"many2many:vacancy_attribute_values"`
}

func (AttributeValue) TableName() string { return "vacancy_data" }
