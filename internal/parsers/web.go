package parsers

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
	"golang.org/x/net/html"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/catalog"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/entities"
)

// WebVacancyParser extracts the full attribute set from a job board detail
// page: headline, description, tech stack tables, language requirements
// and the three-block job card.
type WebVacancyParser struct {
	cat          *catalog.Catalog
	lingvoKeys   map[string]bool
	expectedAttr []entities.AttributeID
}

func NewWebVacancyParser(cat *catalog.Catalog) *WebVacancyParser {
	lingvoKeys := map[string]bool{}
	for _, key := range cat.WebRepls.Lingvo.CanonicalKeys() {
		lingvoKeys[key] = true
	}
	return &WebVacancyParser{
		cat:        cat,
		lingvoKeys: lingvoKeys,
		expectedAttr: []entities.AttributeID{
			entities.AttrPosition, entities.AttrCompany,
			entities.AttrJobDesc, entities.AttrURL,
			entities.AttrSalaryFrom, entities.AttrSalaryTo,
			entities.AttrExperience, entities.AttrCandidateLocations,
			entities.AttrLingvo, entities.AttrEmployment,
			entities.AttrDomain, entities.AttrCompanyType,
			entities.AttrMainTech, entities.AttrTechStack,
		},
	}
}

// parseTwoColTable turns a two-column table into a name to value map.
func parseTwoColTable(table *goquery.Selection) map[string]string {
	result := map[string]string{}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() == 2 {
			result[strings.TrimSpace(cols.Eq(0).Text())] = strings.TrimSpace(cols.Eq(1).Text())
		}
	})
	return result
}

// nextTable finds the first table element after sel in document order,
// not just among its siblings.
func nextTable(sel *goquery.Selection) *goquery.Selection {
	if sel.Length() == 0 {
		return sel
	}
	for node := followingNode(sel.Get(0)); node != nil; node = followingNode(node) {
		if node.Type == html.ElementNode && node.Data == "table" {
			return goquery.NewDocumentFromNode(node).Selection
		}
	}
	return sel.Slice(0, 0)
}

// followingNode walks to the next node in document order.
func followingNode(node *html.Node) *html.Node {
	if node.FirstChild != nil {
		return node.FirstChild
	}
	for node != nil {
		if node.NextSibling != nil {
			return node.NextSibling
		}
		node = node.Parent
	}
	return nil
}

func headingContaining(doc *goquery.Document, substrings ...string) *goquery.Selection {
	return doc.Find("h2").FilterFunction(func(_ int, h *goquery.Selection) bool {
		text := strings.ToLower(h.Text())
		for _, sub := range substrings {
			if strings.Contains(text, sub) {
				return true
			}
		}
		return false
	}).First()
}

func (p *WebVacancyParser) Parse(pageHTML string) AttributeMap {

	attrs := NewAttributeMap()
	if pageHTML == "" {
		return attrs
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return attrs
	}

	sels := p.cat.Web
	repls := p.cat.WebRepls
	var notes []string

	if position := doc.Find(sels.Position).First(); position.Length() > 0 {
		position.Find("span").Remove()
		attrs.Set(entities.AttrPosition, HTMLToText(strings.TrimSpace(position.Text())))
	}

	if company := doc.Find(sels.Company).First(); company.Length() > 0 {
		attrs.Set(entities.AttrCompany, HTMLToText(strings.TrimSpace(company.Text())))
	}

	if jobDesc := sels.JobDesc.FindFirst(doc.Selection); jobDesc.Length() > 0 {
		if outer, err := goquery.OuterHtml(jobDesc); err == nil {
			attrs.Set(entities.AttrJobDesc, HTMLToText(outer))
		}
	}

	if urlTag := sels.URL.FindFirst(doc.Selection); urlTag.Length() > 0 {
		if href, ok := urlTag.Attr("href"); ok {
			attrs.Set(entities.AttrURL, strings.SplitN(href, "-", 2)[0])
		}
	}

	techStack := map[string]string{}
	if heading := headingContaining(doc, "skills", "досвід"); heading.Length() > 0 {
		for tech, skill := range parseTwoColTable(nextTable(heading)) {
			techStack[tech] = skill
		}
	}
	if moreTech := sels.MoreTechStack.FindFirst(doc.Selection); moreTech.Length() > 0 {
		for tech, skill := range parseTwoColTable(nextTable(moreTech)) {
			techStack[tech] = skill
		}
	}
	if secondTech := doc.Find(sels.SecondTechStack).First(); secondTech.Length() > 0 {
		for _, tech := range strings.Split(strings.TrimSpace(secondTech.Text()), ", ") {
			if _, exists := techStack[tech]; !exists && tech != "" {
				techStack[tech] = ""
			}
		}
	}
	// Language rows sometimes leak into the skills tables.
	delete(techStack, "English")
	delete(techStack, "Ukrainian")
	delete(techStack, "Russian")
	for _, tech := range sortedKeys(techStack) {
		if skill := techStack[tech]; skill != "" {
			notes = append(notes, RemoveRepl(tech+": "+skill, repls.Notes))
		}
	}

	var lingvoList []string
	lingvoTable := map[string]string{}
	if heading := headingContaining(doc, "language", "мовами"); heading.Length() > 0 {
		lingvoTable = parseTwoColTable(nextTable(heading))
	}
	if len(lingvoTable) > 0 {
		lingvo := map[string]string{}
		for language, skill := range lingvoTable {
			lingvo[language] = skill
		}
		for _, language := range []string{"English", "Англійська"} {
			if skill, ok := lingvo[language]; ok && skill != "" {
				lingvoList = append(lingvoList, RemoveRepl(skill, repls.Lingvo))
				delete(lingvo, language)
			}
		}
		for _, language := range sortedKeys(lingvo) {
			notes = append(notes, RemoveRepl(language+": "+lingvo[language], repls.Notes))
		}
	}

	var employment []string
	salaryText := ""
	lingvoInCard := ""
	if jobCard := doc.Find(sels.JobCard).First(); jobCard.Length() > 0 {
		uls := jobCard.ChildrenFiltered("ul")
		if uls.Length() == 3 {

			// Block 1: vacancy requirements.
			var requirements []string
			uls.Eq(0).Find("li").Each(func(index int, li *goquery.Selection) {
				if info := li.Find("strong").First(); info.Length() > 0 {
					text := HTMLToText(strings.TrimSpace(info.Text()))
					if text != "" && !lo.Contains(requirements, text) {
						requirements = append(requirements, text)
					}
				}
				if index == 0 || index == 3 {
					if note := li.Find("small").First(); note.Length() > 0 {
						notes = append(notes, strings.TrimSpace(note.Text()))
					}
				}
			})

			if len(requirements) >= 2 && strings.Contains(requirements[1], "$") {
				salaryText = requirements[1]
				salaryFrom, salaryTo := ParseSalary(p.cat, salaryText)
				attrs.Set(entities.AttrSalaryFrom, salaryFrom)
				attrs.Set(entities.AttrSalaryTo, salaryTo)
				requirements = append(requirements[:1], requirements[2:]...)
			}

			for index, requirement := range requirements {
				switch index {
				case 0: // experience
					if m := p.cat.NumericRe.FindString(RemoveRepl(requirement, repls.Experience)); m != "" {
						if f, ok := StrToNumeric(m); ok {
							attrs.Set(entities.AttrExperience, NumericString(f))
						}
					}
				case 1: // work format
					employment = append(employment, RemoveRepl(requirement, repls.Employment))
				case 2:
					attrs.Set(entities.AttrCandidateLocations, RemoveRepl(requirement, repls.CandidateLocations))
				case 3: // language, when it canonicalizes; otherwise a note
					lingvoInCard = RemoveRepl(requirement, repls.Lingvo)
					if p.lingvoKeys[lingvoInCard] {
						lingvoList = append(lingvoList, lingvoInCard)
					} else {
						notes = append(notes, lingvoInCard)
						lingvoInCard = ""
					}
				default:
					notes = append(notes, requirement)
				}
			}

			// Block 2: skill requirements.
			block2 := uls.Eq(1)
			if mainTech := block2.Find(sels.MainTech).First(); mainTech.Length() > 0 {
				attrs.Set(entities.AttrMainTech, HTMLToText(strings.TrimSpace(mainTech.Text())))
			}
			if table := block2.Find("table").First(); table.Length() > 0 {
				for tech, skill := range parseTwoColTable(table) {
					techStack[tech] = skill
				}
			}

			// Block 3: company profile.
			uls.Eq(2).Find("li").Each(func(index int, li *goquery.Selection) {
				text := HTMLToText(strings.TrimSpace(li.Text()))
				switch index {
				case 0:
					employment = append(employment, RemoveRepl(text, repls.Employment))
				case 1:
					attrs.Set(entities.AttrDomain, RemoveRepl(text, repls.Domain))
				case 2:
					attrs.Set(entities.AttrCompanyType, RemoveRepl(text, repls.CompanyType))
				case 3:
					for _, sign := range repls.Offices.Remove {
						if strings.Contains(text, sign) {
							attrs.Set(entities.AttrOffices, RemoveRepl(text, repls.Offices))
							text = ""
						}
					}
					if text != "" {
						notes = append(notes, text)
					}
				default:
					notes = append(notes, text)
				}
			})
		}
	}

	if len(techStack) > 0 {
		attrs.Set(entities.AttrTechStack, strings.Join(sortedKeys(techStack), ", "))
	}
	if len(lingvoList) > 0 {
		attrs.Set(entities.AttrLingvo, strings.Join(sortedUnique(lingvoList), ", "))
	}
	if len(employment) > 0 {
		attrs.Set(entities.AttrEmployment, strings.Join(employment, ", "))
	}
	if len(notes) > 0 {
		attrs.Set(entities.AttrNotes, strings.Join(sortedUnique(notes), "\n"))
	}

	expected := p.expectedAttr
	if len(lingvoTable) == 0 && lingvoInCard == "" {
		expected = make([]entities.AttributeID, 0, len(p.expectedAttr))
		for _, id := range p.expectedAttr {
			if id != entities.AttrLingvo {
				expected = append(expected, id)
			}
		}
	}
	attrs.Diagnostic = buildDiagnostic(attrs, expected, salaryText)
	return attrs
}

func sortedKeys(m map[string]string) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

func sortedUnique(list []string) []string {
	unique := lo.Uniq(list)
	sort.Strings(unique)
	return unique
}
