package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/entities"
)

const webVacancyPage = `<html>
<head><link rel="canonical" href="https://board.example/jobs/123-senior-go-dev"/></head>
<body>
<h1>Senior Go Dev <span>at Acme</span></h1>
<div class="job-details--title"><a href="/companies/acme">Acme</a></div>
<div class="job-post__description"><p>Build things</p><p>Ship things</p></div>

<h2>Skills and experience</h2>
<table>
	<tr><td>Go</td><td>5 years</td></tr>
	<tr><td>Docker</td><td>3 years</td></tr>
	<tr><td>English</td><td>Intermediate</td></tr>
</table>

<h2>Language requirements</h2>
<table>
	<tr><td>English</td><td>Англійська: Intermediate</td></tr>
	<tr><td>Polish</td><td>Basic</td></tr>
</table>

<div class="job-additional-skills"></div>
<table>
	<tr><td>Terraform</td><td>1 year</td></tr>
</table>

<div class="job-post__tech-stack">Go, Kubernetes</div>

<div class="job-additional-info--body">
	<ul>
		<li><strong>3 роки досвіду</strong><small>Relocation help</small></li>
		<li><strong>$3000-4000</strong></li>
		<li><strong>Тільки віддалено</strong></li>
		<li><strong>Україна, Польща</strong></li>
		<li><strong>Англійська: Intermediate</strong></li>
	</ul>
	<ul>
		<li><h2>Go</h2></li>
		<li><table><tr><td>gRPC</td><td>2 years</td></tr></table></li>
	</ul>
	<ul>
		<li>Гібридна робота</li>
		<li>Домен: Fintech</li>
		<li>Продукт</li>
		<li>Офіси: Київ, Варшава</li>
	</ul>
</div>
</body></html>`

func TestWebVacancyParse(t *testing.T) {

	parser := NewWebVacancyParser(testCatalog(t))
	attrs := parser.Parse(webVacancyPage)

	assert.Equal(t, "Senior Go Dev", attrs.Get(entities.AttrPosition))
	assert.Equal(t, "Acme", attrs.Get(entities.AttrCompany))
	assert.Equal(t, "Build things\nShip things", attrs.Get(entities.AttrJobDesc))
	assert.Equal(t, "https://board.example/jobs/123", attrs.Get(entities.AttrURL))

	assert.Equal(t, "3", attrs.Get(entities.AttrExperience))
	assert.Equal(t, "3000", attrs.Get(entities.AttrSalaryFrom))
	assert.Equal(t, "4000", attrs.Get(entities.AttrSalaryTo))
	assert.Equal(t, "Україна, Польща", attrs.Get(entities.AttrCandidateLocations))
	assert.Equal(t, "Remote, Hybrid", attrs.Get(entities.AttrEmployment))

	assert.Equal(t, "Go", attrs.Get(entities.AttrMainTech))
	assert.Equal(t, "Docker, Go, Kubernetes, Terraform, gRPC",
		attrs.Get(entities.AttrTechStack), "language rows leave the stack")
	assert.Equal(t, "Intermediate", attrs.Get(entities.AttrLingvo))

	assert.Equal(t, "Fintech", attrs.Get(entities.AttrDomain))
	assert.Equal(t, "Product", attrs.Get(entities.AttrCompanyType))
	assert.Equal(t, "Київ, Варшава", attrs.Get(entities.AttrOffices))

	notes := attrs.Get(entities.AttrNotes)
	assert.Contains(t, notes, "Go: 5 years")
	assert.Contains(t, notes, "Polish: Basic")
	assert.Contains(t, notes, "Relocation help")

	assert.Empty(t, attrs.Diagnostic)
}

func TestWebVacancyParse_minimalPage(t *testing.T) {

	page := `<html>
<head><link rel="canonical" href="https://board.example/jobs/124-go-dev"/></head>
<body><h1>Go Dev</h1></body></html>`

	parser := NewWebVacancyParser(testCatalog(t))
	attrs := parser.Parse(page)

	assert.Equal(t, "Go Dev", attrs.Get(entities.AttrPosition))
	assert.Equal(t, "https://board.example/jobs/124", attrs.Get(entities.AttrURL))
	// Without a currency marker or language section, neither the salary nor
	// the language level count as expected fields.
	assert.Equal(t, "9 of 11 fields missing: company, job_desc, experience,"+
		" candidate_locations, employment, domain, company_type, main_tech, tech_stack",
		attrs.Diagnostic)
}

func TestWebVacancyParse_emptyPage(t *testing.T) {

	parser := NewWebVacancyParser(testCatalog(t))
	attrs := parser.Parse("")
	assert.Empty(t, attrs.Values)
}
