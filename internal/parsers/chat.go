package parsers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/catalog"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/entities"
)

const blockBoundary = "Possible_Vacancy_Splitter"

var markupRe = regexp.MustCompile("[*_`]+")

// ChatVacancyParser extracts vacancy blocks from the plain text of a chat
// digest message. One message usually carries several vacancies separated
// by blank lines.
type ChatVacancyParser struct {
	cat          *catalog.Catalog
	splitterRe   *regexp.Regexp
	posCompRe    *regexp.Regexp
	locExpRe     *regexp.Regexp
	subscriptRe  *regexp.Regexp
	expectedAttr []entities.AttributeID
}

func NewChatVacancyParser(cat *catalog.Catalog) *ChatVacancyParser {
	signs := cat.ChatVacancy
	return &ChatVacancyParser{
		cat: cat,
		splitterRe: regexp.MustCompile(
			fmt.Sprintf(`((?:%s).*?)(%s)`, strings.Join(signs.Splitter, "|"), blockBoundary)),
		posCompRe: regexp.MustCompile(strings.Join(signs.PositionCompany, "|")),
		locExpRe: regexp.MustCompile(
			fmt.Sprintf(`(.+), %s? ?(%s)`, cat.Patterns.Numeric, strings.Join(signs.LocationExperience, "|"))),
		subscriptRe: regexp.MustCompile(strings.Join(signs.Subscription, "|")),
		expectedAttr: []entities.AttributeID{
			entities.AttrPosition, entities.AttrJobDescPreview,
			entities.AttrLocation, entities.AttrExperience,
			entities.AttrSalaryFrom, entities.AttrSalaryTo,
			entities.AttrCompany, entities.AttrURL,
			entities.AttrSubscription,
		},
	}
}

// SplitVacancies cuts the digest into per-vacancy blocks. Blank lines end
// a block only right after a subscription label line; blank lines inside a
// vacancy body collapse to single line breaks.
func (p *ChatVacancyParser) SplitVacancies(text string) []string {
	text = strings.ReplaceAll(text, "\n\n", blockBoundary)
	text = p.splitterRe.ReplaceAllString(text, "$1\n\n")
	text = strings.ReplaceAll(text, blockBoundary, "\n")
	return strings.Split(text, "\n\n")
}

func (p *ChatVacancyParser) Parse(text string) []AttributeMap {

	var results []AttributeMap
	if text == "" {
		return results
	}

	for _, part := range p.SplitVacancies(text) {
		part = strings.TrimSpace(strings.ReplaceAll(part, "\n\n", "\n"))

		attrs := NewAttributeMap()
		lines := strings.Split(part, "\n")

		cleanLine := func(i int) string {
			if i >= len(lines) {
				return ""
			}
			return strings.ReplaceAll(markupRe.ReplaceAllString(lines[i], ""), "  ", " ")
		}
		line1 := cleanLine(0)
		line2 := cleanLine(1)
		lineLast := strings.ReplaceAll(markupRe.ReplaceAllString(lines[len(lines)-1], ""), "  ", " ")

		if len(lines) > 4 {
			attrs.Set(entities.AttrJobDescPreview, strings.Join(lines[2:len(lines)-2], "\n"))
		}

		posComp := p.posCompRe.Split(line1, -1)
		attrs.Set(entities.AttrPosition, posComp[0])
		if len(posComp) > 1 {
			attrs.Set(entities.AttrCompany, posComp[1])
		}

		if m := p.locExpRe.FindStringSubmatch(line2); m != nil {
			attrs.Set(entities.AttrLocation, m[1])
			if m[2] != "" {
				if f, ok := StrToNumeric(m[2]); ok {
					attrs.Set(entities.AttrExperience, NumericString(f))
				}
			} else if m[3] != "" {
				attrs.Set(entities.AttrExperience, "0")
			}
		}

		salaryFrom, salaryTo := ParseSalary(p.cat, line2)
		attrs.Set(entities.AttrSalaryFrom, salaryFrom)
		attrs.Set(entities.AttrSalaryTo, salaryTo)

		attrs.Set(entities.AttrURL, p.cat.URLRe.FindString(part))

		if subscription := p.subscriptRe.ReplaceAllString(lineLast, ""); subscription != "" {
			attrs.Set(entities.AttrSubscription, strings.Trim(subscription, "\"' *_`"))
		}

		// A residual double line break marks a block that may hold two
		// vacancies glued together.
		diagnostic := buildDiagnostic(attrs, p.expectedAttr, part)
		if strings.Contains(part, "\n\n") {
			if diagnostic != "" {
				diagnostic += ", separate"
			} else {
				diagnostic = "separate"
			}
		}
		attrs.Diagnostic = diagnostic
		results = append(results, attrs)
	}
	return results
}
