package catalog

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Repls describes value canonicalization: repl maps a canonical label to the
// raw spellings it replaces, remove lists fragments stripped from the text.
type Repls struct {
	Repl   []map[string][]string `mapstructure:"repl"`
	Remove []string              `mapstructure:"remove"`
}

// CanonicalKeys returns every canonical label declared across the repl maps.
func (r Repls) CanonicalKeys() []string {
	var keys []string
	for _, m := range r.Repl {
		for k := range m {
			keys = append(keys, k)
		}
	}
	return keys
}

// KindSigns binds one message kind to its body signatures. Catalog order is
// significant: when several kinds match, the last one declared wins.
type KindSigns struct {
	Kind     string   `mapstructure:"kind" validate:"required"`
	Patterns []string `mapstructure:"patterns" validate:"min=1"`

	re *regexp.Regexp
}

func (k KindSigns) Matches(text string) bool {
	return k.re.MatchString(text)
}

type ChatVacancySigns struct {
	PositionCompany    []string `mapstructure:"position_company" validate:"min=1"`
	LocationExperience []string `mapstructure:"location_experience" validate:"min=1"`
	Subscription       []string `mapstructure:"subscription" validate:"min=1"`
	Splitter           []string `mapstructure:"splitter" validate:"min=1"`
}

type ChatStatisticSigns struct {
	VacanciesIn30d      []string `mapstructure:"vacancies_in_30d" validate:"min=1"`
	CandidatesOnline    []string `mapstructure:"candidates_online" validate:"min=1"`
	Salary              []string `mapstructure:"salary" validate:"min=1"`
	ResponsesPerVacancy []string `mapstructure:"responses_per_vacancy" validate:"min=1"`
	VacanciesPerWeek    []string `mapstructure:"vacancies_per_week" validate:"min=1"`
	CandidatesPerWeek   []string `mapstructure:"candidates_per_week" validate:"min=1"`
}

// MailVacancyV0 names the markup locations of the historical mailbox layout
// used until the cutover date.
type MailVacancyV0 struct {
	Splitters                []Selector `mapstructure:"splitters" validate:"min=1,dive"`
	PositionURL              Selector   `mapstructure:"position_url"`
	Company                  Selector   `mapstructure:"company"`
	LocationExperienceSalary Selector   `mapstructure:"location_experience_salary"`
	Salary                   Selector   `mapstructure:"salary"`
	DescPreview              Selector   `mapstructure:"desc_preview"`
}

// MailVacancyV1 names the markup locations of the current mailbox layout.
// Where the layout exposes stable CSS classes, plain CSS selectors are used.
type MailVacancyV1 struct {
	Splitter     Selector `mapstructure:"splitter"`
	PositionURL  string   `mapstructure:"position_url" validate:"required"`
	Salary       string   `mapstructure:"salary" validate:"required"`
	CompanyDiv   Selector `mapstructure:"company_div"`
	CompanySpan  Selector `mapstructure:"company_span"`
	Details      Selector `mapstructure:"details"`
	DescPreview  Selector `mapstructure:"desc_preview"`
	Subscription Selector `mapstructure:"subscription"`
}

type MailRepls struct {
	PosComp      Repls `mapstructure:"pos_comp"`
	DescPreview  Repls `mapstructure:"desc_preview"`
	Subscription Repls `mapstructure:"subscription"`
}

type WebSelectors struct {
	Position        string   `mapstructure:"position" validate:"required"`
	Company         string   `mapstructure:"company" validate:"required"`
	JobDesc         Selector `mapstructure:"job_desc"`
	URL             Selector `mapstructure:"url"`
	MainTech        string   `mapstructure:"main_tech" validate:"required"`
	MoreTechStack   Selector `mapstructure:"more_tech_stack"`
	SecondTechStack string   `mapstructure:"second_tech_stack" validate:"required"`
	JobCard         string   `mapstructure:"job_card" validate:"required"`
}

type WebRepls struct {
	Experience         Repls `mapstructure:"experience"`
	Lingvo             Repls `mapstructure:"lingvo"`
	Employment         Repls `mapstructure:"employment"`
	Domain             Repls `mapstructure:"domain"`
	CompanyType        Repls `mapstructure:"company_type"`
	Offices            Repls `mapstructure:"offices"`
	CandidateLocations Repls `mapstructure:"candidate_locations"`
	Notes              Repls `mapstructure:"notes"`
}

// Patterns holds the raw regular expressions; the salary patterns may embed
// a {numeric} placeholder that is substituted at load time.
type Patterns struct {
	URL         string `mapstructure:"url" validate:"required"`
	Numeric     string `mapstructure:"numeric" validate:"required"`
	Salary      string `mapstructure:"salary" validate:"required"`
	SalaryRange string `mapstructure:"salary_range" validate:"required"`
}

// Catalog is the immutable signature catalog, loaded and validated once at
// startup and passed explicitly to every component that parses messages.
type Catalog struct {
	ChatKinds         []KindSigns        `mapstructure:"chat_kinds" validate:"min=1,dive"`
	MailVacancySigns  []Selector         `mapstructure:"mail_vacancy_signs" validate:"min=1,dive"`
	ChatVacancy       ChatVacancySigns   `mapstructure:"chat_vacancy"`
	ChatStatistic     ChatStatisticSigns `mapstructure:"chat_statistic"`
	MailV0            MailVacancyV0      `mapstructure:"mail_vacancy_v0"`
	MailV1            MailVacancyV1      `mapstructure:"mail_vacancy_v1"`
	MailCutover       time.Time          `mapstructure:"-"`
	MailCutoverString string             `mapstructure:"mail_cutover" validate:"required"`
	MailRepls         MailRepls          `mapstructure:"mail_repls"`
	Web               WebSelectors       `mapstructure:"web"`
	WebRepls          WebRepls           `mapstructure:"web_repls"`
	Patterns          Patterns           `mapstructure:"patterns"`

	URLRe            *regexp.Regexp
	NumericRe        *regexp.Regexp
	salaryEndRe      *regexp.Regexp
	salaryRangeEndRe *regexp.Regexp
}

// Load reads, validates and compiles the catalog. Any schema violation or
// malformed pattern is an error: the process must refuse to start rather
// than run with an incomplete catalog.
func Load(file string) (*Catalog, error) {

	v := viper.New()
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "read signature catalog")
	}

	var cat Catalog
	if err := v.Unmarshal(&cat); err != nil {
		return nil, errors.Wrap(err, "decode signature catalog")
	}

	if err := validator.New().Struct(&cat); err != nil {
		return nil, errors.Wrap(err, "validate signature catalog")
	}

	if err := cat.compile(); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Catalog) compile() error {

	cutover, err := time.Parse(time.RFC3339, c.MailCutoverString)
	if err != nil {
		return fmt.Errorf("invalid mail_cutover %q: %w", c.MailCutoverString, err)
	}
	c.MailCutover = cutover

	for i := range c.ChatKinds {
		re, err := regexp.Compile(strings.Join(c.ChatKinds[i].Patterns, "|"))
		if err != nil {
			return fmt.Errorf("invalid signatures for kind %q: %w", c.ChatKinds[i].Kind, err)
		}
		c.ChatKinds[i].re = re
	}

	c.Patterns.Salary = strings.ReplaceAll(c.Patterns.Salary, "{numeric}", c.Patterns.Numeric)
	c.Patterns.SalaryRange = strings.ReplaceAll(c.Patterns.SalaryRange, "{numeric}", c.Patterns.Numeric)

	compiled := []struct {
		name    string
		pattern string
		dst     **regexp.Regexp
	}{
		{"url", c.Patterns.URL, &c.URLRe},
		{"numeric", c.Patterns.Numeric, &c.NumericRe},
		{"salary", c.Patterns.Salary + `\z`, &c.salaryEndRe},
		{"salary_range", c.Patterns.SalaryRange + `\z`, &c.salaryRangeEndRe},
	}
	for _, p := range compiled {
		re, err := regexp.Compile(p.pattern)
		if err != nil {
			return fmt.Errorf("invalid %s pattern: %w", p.name, err)
		}
		*p.dst = re
	}
	return nil
}

// SalaryEndRe matches a single salary value anchored at the end of a string.
func (c *Catalog) SalaryEndRe() *regexp.Regexp { return c.salaryEndRe }

// SalaryRangeEndRe matches a salary range anchored at the end of a string.
func (c *Catalog) SalaryRangeEndRe() *regexp.Regexp { return c.salaryRangeEndRe }
