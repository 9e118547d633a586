package parsers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/catalog"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/entities"
)

// MailVacancyParserV1 extracts vacancy blocks from mailbox digests in the
// current markup layout, used after the cutover date.
type MailVacancyParserV1 struct {
	cat          *catalog.Catalog
	experienceRe *regexp.Regexp
	expectedAttr []entities.AttributeID
}

func NewMailVacancyParserV1(cat *catalog.Catalog) *MailVacancyParserV1 {
	return &MailVacancyParserV1{
		cat: cat,
		experienceRe: regexp.MustCompile(
			fmt.Sprintf(`%s? ?(%s)`, cat.Patterns.Numeric, strings.Join(cat.WebRepls.Experience.Remove, "|"))),
		expectedAttr: []entities.AttributeID{
			entities.AttrPosition, entities.AttrURL,
			entities.AttrSalaryFrom, entities.AttrSalaryTo,
			entities.AttrExperience, entities.AttrEmployment,
			entities.AttrCandidateLocations, entities.AttrJobDescPreview,
			entities.AttrSubscription,
		},
	}
}

func (p *MailVacancyParserV1) Parse(html string) []AttributeMap {

	var results []AttributeMap
	if html == "" {
		return results
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return results
	}

	sels := p.cat.MailV1
	repls := p.cat.WebRepls

	sels.Splitter.FindAll(doc.Selection).Each(func(_ int, part *goquery.Selection) {
		attrs := NewAttributeMap()

		if positionURL := part.Find(sels.PositionURL).First(); positionURL.Length() > 0 {
			attrs.Set(entities.AttrPosition, strings.TrimSpace(positionURL.Text()))
			if href, ok := positionURL.Attr("href"); ok {
				attrs.Set(entities.AttrURL, DecodeTrackedURL(href))
			}
		}

		salaryText := strings.TrimSpace(part.Find(sels.Salary).First().Text())
		if salaryText != "" {
			salaryFrom, salaryTo := ParseSalary(p.cat, salaryText)
			attrs.Set(entities.AttrSalaryFrom, salaryFrom)
			attrs.Set(entities.AttrSalaryTo, salaryTo)
		}

		if companyDiv := sels.CompanyDiv.FindFirst(part); companyDiv.Length() > 0 {
			attrs.Set(entities.AttrCompany,
				strings.TrimSpace(sels.CompanySpan.FindFirst(companyDiv).Text()))
		}

		if details := sels.Details.FindFirst(part); details.Length() > 0 {
			var fields []string
			for _, field := range strings.Split(details.Text(), "·") {
				fields = append(fields, strings.TrimSpace(field))
			}
			if len(fields) > 0 && fields[0] != "" {
				if m := p.experienceRe.FindStringSubmatch(fields[0]); m != nil {
					if m[1] != "" {
						if f, ok := StrToNumeric(RemoveRepl(m[1], repls.Experience)); ok {
							attrs.Set(entities.AttrExperience, NumericString(f))
						}
					} else if m[2] != "" {
						attrs.Set(entities.AttrExperience, "0")
					}
				}
			}
			if len(fields) > 1 && fields[1] != "" {
				attrs.Set(entities.AttrLingvo, RemoveRepl(fields[1], repls.Lingvo))
			}
			if len(fields) > 2 && fields[2] != "" {
				attrs.Set(entities.AttrEmployment, RemoveRepl(fields[2], repls.Employment))
			}
			if len(fields) > 3 && fields[3] != "" {
				attrs.Set(entities.AttrCandidateLocations, RemoveRepl(fields[3], repls.CandidateLocations))
			}
		}

		if preview := strings.TrimSpace(sels.DescPreview.FindFirst(part).Text()); preview != "" {
			attrs.Set(entities.AttrJobDescPreview, RemoveRepl(preview, p.cat.MailRepls.DescPreview))
		}

		if subscription := strings.TrimSpace(sels.Subscription.FindFirst(part).Text()); subscription != "" {
			attrs.Set(entities.AttrSubscription, RemoveRepl(subscription, p.cat.MailRepls.Subscription))
		}

		attrs.Diagnostic = buildDiagnostic(attrs, p.expectedAttr, salaryText)
		results = append(results, attrs)
	})
	return results
}
