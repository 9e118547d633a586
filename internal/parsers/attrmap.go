package parsers

import (
	"fmt"
	"strings"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/entities"
)

// AttributeMap is the result of extracting one vacancy block: attribute
// values keyed by the closed attribute catalog, plus a diagnostic naming
// the expected fields that stayed empty.
type AttributeMap struct {
	Values     map[entities.AttributeID]string
	Diagnostic string
}

func NewAttributeMap() AttributeMap {
	return AttributeMap{Values: map[entities.AttributeID]string{}}
}

// Set stores a value, ignoring empties so absent fields stay absent.
func (m AttributeMap) Set(id entities.AttributeID, value string) {
	if value != "" {
		m.Values[id] = value
	}
}

func (m AttributeMap) Get(id entities.AttributeID) string {
	return m.Values[id]
}

// buildDiagnostic reports which of the expected fields stayed empty, as
// "k of n fields missing: names". Salary fields only count as expected
// when the source text carries a currency marker. An empty string means
// a clean extraction.
func buildDiagnostic(m AttributeMap, expected []entities.AttributeID, salaryText string) string {
	var counted []entities.AttributeID
	for _, id := range expected {
		if (id == entities.AttrSalaryFrom || id == entities.AttrSalaryTo) &&
			!strings.Contains(salaryText, "$") {
			continue
		}
		counted = append(counted, id)
	}

	var missing []string
	for _, id := range counted {
		if m.Get(id) == "" {
			missing = append(missing, id.Name())
		}
	}
	if len(missing) == 0 {
		return ""
	}
	return fmt.Sprintf("%d of %d fields missing: %s",
		len(missing), len(counted), strings.Join(missing, ", "))
}
