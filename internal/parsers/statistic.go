package parsers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/catalog"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/entities"
)

// StatisticParser extracts the labeled market counters from a chat
// statistics message.
type StatisticParser struct {
	vacanciesIn30dRe      *regexp.Regexp
	candidatesOnlineRe    *regexp.Regexp
	responsesPerVacancyRe *regexp.Regexp
	vacanciesPerWeekRe    *regexp.Regexp
	candidatesPerWeekRe   *regexp.Regexp
	salaryRangeRe         *regexp.Regexp
}

func NewStatisticParser(cat *catalog.Catalog) *StatisticParser {
	signs := cat.ChatStatistic
	numericAfter := func(labels []string) *regexp.Regexp {
		return regexp.MustCompile(
			fmt.Sprintf(`(?:(%s):? +)%s`, strings.Join(labels, "|"), cat.Patterns.Numeric))
	}
	return &StatisticParser{
		vacanciesIn30dRe:      numericAfter(signs.VacanciesIn30d),
		candidatesOnlineRe:    numericAfter(signs.CandidatesOnline),
		responsesPerVacancyRe: numericAfter(signs.ResponsesPerVacancy),
		vacanciesPerWeekRe:    numericAfter(signs.VacanciesPerWeek),
		candidatesPerWeekRe:   numericAfter(signs.CandidatesPerWeek),
		salaryRangeRe: regexp.MustCompile(
			fmt.Sprintf(`(?:(%s):? +)%s`, strings.Join(signs.Salary, "|"), cat.Patterns.SalaryRange)),
	}
}

func numericValue(re *regexp.Regexp, text string) *int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	f, ok := StrToNumeric(m[len(m)-1])
	if !ok {
		return nil
	}
	v := int(f)
	return &v
}

func (p *StatisticParser) Parse(text string) entities.Statistic {

	stat := entities.Statistic{}
	if text == "" {
		return stat
	}

	stat.VacanciesIn30d = numericValue(p.vacanciesIn30dRe, text)
	stat.CandidatesOnline = numericValue(p.candidatesOnlineRe, text)
	stat.ResponsesPerVacancy = numericValue(p.responsesPerVacancyRe, text)
	stat.VacanciesPerWeek = numericValue(p.vacanciesPerWeekRe, text)
	stat.CandidatesPerWeek = numericValue(p.candidatesPerWeekRe, text)

	if m := p.salaryRangeRe.FindStringSubmatch(text); len(m) >= 3 {
		if f, ok := StrToNumeric(m[len(m)-2]); ok {
			v := int(f)
			stat.MinSalary = &v
		}
		if f, ok := StrToNumeric(m[len(m)-1]); ok {
			v := int(f)
			stat.MaxSalary = &v
		}
	}

	fields := []struct {
		name  string
		value *int
	}{
		{"vacancies_in_30d", stat.VacanciesIn30d},
		{"candidates_online", stat.CandidatesOnline},
		{"responses_per_vacancy", stat.ResponsesPerVacancy},
		{"vacancies_per_week", stat.VacanciesPerWeek},
		{"candidates_per_week", stat.CandidatesPerWeek},
	}
	var missing []string
	for _, field := range fields {
		if field.value == nil {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		stat.ParseNote = fmt.Sprintf("%d of %d fields missing: %s",
			len(missing), len(fields), strings.Join(missing, ", "))
	}
	return stat
}
