package parsers

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/catalog"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/entities"
)

const ukrainianProductBadge = "Український продукт"

// MailVacancyParserV0 extracts vacancy blocks from mailbox digests in the
// historical markup layout, used until the cutover date.
type MailVacancyParserV0 struct {
	cat          *catalog.Catalog
	expectedAttr []entities.AttributeID
}

func NewMailVacancyParserV0(cat *catalog.Catalog) *MailVacancyParserV0 {
	return &MailVacancyParserV0{
		cat: cat,
		expectedAttr: []entities.AttributeID{
			entities.AttrPosition, entities.AttrURL,
			entities.AttrCompany, entities.AttrSalaryFrom,
			entities.AttrSalaryTo, entities.AttrExperience,
			entities.AttrJobDescPreview,
		},
	}
}

func (p *MailVacancyParserV0) Parse(html string) []AttributeMap {

	var results []AttributeMap
	if html == "" {
		return results
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return results
	}

	sels := p.cat.MailV0

	// Older digests vary in which element separates vacancies, so the
	// splitters form a fallback chain.
	var parts *goquery.Selection
	for _, splitter := range sels.Splitters {
		if parts == nil || parts.Length() == 0 {
			parts = splitter.FindAll(doc.Selection)
		}
	}

	parts.Each(func(_ int, part *goquery.Selection) {
		attrs := NewAttributeMap()

		if positionURL := sels.PositionURL.FindFirst(part); positionURL.Length() > 0 {
			attrs.Set(entities.AttrPosition, strings.TrimSpace(positionURL.Text()))
			if href, ok := positionURL.Attr("href"); ok {
				attrs.Set(entities.AttrURL, DecodeTrackedURL(href))
			}
		}

		if company := strings.TrimSpace(sels.Company.FindFirst(part).Text()); company != "" {
			attrs.Set(entities.AttrCompany, RemoveRepl(company, p.cat.MailRepls.PosComp))
		}

		salaryText := ""
		locExpSalary := sels.LocationExperienceSalary.FindFirst(part)
		if tagText := strings.TrimSpace(locExpSalary.Text()); tagText != "" {
			salaryText = strings.TrimSpace(sels.Salary.FindFirst(locExpSalary).Text())
			if salaryText != "" {
				salaryFrom, salaryTo := ParseSalary(p.cat, salaryText)
				attrs.Set(entities.AttrSalaryFrom, salaryFrom)
				attrs.Set(entities.AttrSalaryTo, salaryTo)
				tagText = strings.TrimSpace(strings.ReplaceAll(tagText, salaryText, ""))
			}

			var fields []string
			for _, field := range strings.Split(tagText, "·") {
				if field = strings.TrimSpace(field); field != "" {
					fields = append(fields, field)
				}
			}
			experienceText := ""
			if len(fields) >= 1 {
				experienceText = fields[0]
			}
			if len(fields) >= 2 {
				experienceText = fields[1]
				attrs.Set(entities.AttrLocation, fields[0])
			}
			if strings.Contains(experienceText, ukrainianProductBadge) && len(fields) >= 1 {
				experienceText = fields[0]
				delete(attrs.Values, entities.AttrLocation)
			}
			if f, ok := StrToNumeric(RemoveRepl(experienceText, p.cat.WebRepls.Experience)); ok && f != 0 {
				attrs.Set(entities.AttrExperience, NumericString(f))
			}
		}

		if preview := strings.TrimSpace(sels.DescPreview.FindFirst(part).Text()); preview != "" {
			attrs.Set(entities.AttrJobDescPreview, RemoveRepl(preview, p.cat.MailRepls.DescPreview))
		}

		attrs.Diagnostic = buildDiagnostic(attrs, p.expectedAttr, salaryText)
		results = append(results, attrs)
	})
	return results
}
