package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/catalog"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/channels"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/entities"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/repositories"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	cat, err := catalog.Load("../../configs/catalog.yaml")
	require.NoError(t, err)
	return cat
}

func newTestDb(t *testing.T) *repositories.DbContext {
	dbContext, err := repositories.NewDbContext(":memory:")
	require.NoError(t, err)
	require.NoError(t, dbContext.Migrate())
	t.Cleanup(func() { _ = dbContext.Close() })
	return dbContext
}

func newTestIngest(t *testing.T, dbContext *repositories.DbContext) *Ingest {
	attrValues := repositories.NewCachedAttributeValues(
		repositories.NewAttributeValuesRepository(dbContext.DB))
	rawMessages := repositories.NewRawMessagesRepository(dbContext.DB)
	return NewIngest(dbContext.DB, testCatalog(t), attrValues, rawMessages,
		time.Time{}, NewRunCounter())
}

type fakeChatSource struct {
	messages []channels.ChatMessage
}

func (f fakeChatSource) MessagesSince(_ context.Context, _ time.Time) ([]channels.ChatMessage, error) {
	return f.messages, nil
}

type fakeMailSource struct {
	messages []channels.MailMessage
}

func (f fakeMailSource) MessagesSince(_ context.Context, _ time.Time) ([]channels.MailMessage, error) {
	return f.messages, nil
}

const testChatVacancy = "Senior Go Dev — Acme\n" +
	"Kyiv, 3 years, $3000-4000\n" +
	"Build things\n" +
	"https://board.example/jobs/123\n" +
	"Subscription: Backend"

const testChatStatistic = "вакансій за 30 днів: 1234\n" +
	"кандидатів онлайн: 5678\n" +
	"медіанна зарплата: $1500-3500\n" +
	"відгуків на вакансію: 12\n" +
	"вакансій за тиждень: 345\n" +
	"кандидатів за тиждень: 678"

func chatTestMessages() []channels.ChatMessage {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []channels.ChatMessage{
		{MessageID: 1, Date: base, Text: testChatVacancy},
		{MessageID: 2, Date: base.Add(time.Minute), Text: testChatStatistic},
		{MessageID: 3, Date: base.Add(2 * time.Minute), Text: "/start"},
	}
}

func TestIngestRunChat(t *testing.T) {

	dbContext := newTestDb(t)
	ingest := newTestIngest(t, dbContext)

	err := ingest.RunChat(context.Background(), fakeChatSource{messages: chatTestMessages()})
	require.NoError(t, err)

	var rawCount int64
	require.NoError(t, dbContext.DB.Model(&entities.RawMessage{}).Count(&rawCount).Error)
	assert.Equal(t, int64(3), rawCount)

	var vacancy entities.Vacancy
	hash := repositories.SlotHash(entities.ChannelChat, 1, 0)
	require.NoError(t, dbContext.DB.Where("slot_hash = ?", hash).First(&vacancy).Error)
	assert.Empty(t, vacancy.MessageParseNote)

	var page entities.DetailPage
	require.NoError(t, dbContext.DB.Where("url = ?", "https://board.example/jobs/123").
		First(&page).Error)
	require.NotNil(t, page.VacancyID)
	assert.Equal(t, vacancy.ID, *page.VacancyID)

	var linked int64
	require.NoError(t, dbContext.DB.Table("vacancy_attribute_values").
		Where("vacancy_id = ?", vacancy.ID).Count(&linked).Error)
	assert.Equal(t, int64(8), linked, "every attribute except the URL is linked")

	var stat entities.Statistic
	require.NoError(t, dbContext.DB.First(&stat).Error)
	require.NotNil(t, stat.VacanciesIn30d)
	assert.Equal(t, 1234, *stat.VacanciesIn30d)

	var service entities.Service
	require.NoError(t, dbContext.DB.First(&service).Error)
	assert.Equal(t, "/start", service.Text)

	assert.Equal(t, 3, ingest.counter.Get("TG_RAW added"))
	assert.Equal(t, 1, ingest.counter.Get("TG_VACANCY added"))
	assert.Equal(t, 1, ingest.counter.Get("TG_URL added"))
}

func TestIngestRunChat_idempotent(t *testing.T) {

	dbContext := newTestDb(t)
	ingest := newTestIngest(t, dbContext)
	source := fakeChatSource{messages: chatTestMessages()}

	require.NoError(t, ingest.RunChat(context.Background(), source))
	require.NoError(t, ingest.RunChat(context.Background(), source))

	var rawCount, vacancyCount, linked int64
	require.NoError(t, dbContext.DB.Model(&entities.RawMessage{}).Count(&rawCount).Error)
	require.NoError(t, dbContext.DB.Model(&entities.Vacancy{}).Count(&vacancyCount).Error)
	require.NoError(t, dbContext.DB.Table("vacancy_attribute_values").Count(&linked).Error)

	assert.Equal(t, int64(3), rawCount)
	assert.Equal(t, int64(1), vacancyCount)
	assert.Equal(t, int64(8), linked)
	assert.Equal(t, 3, ingest.counter.Get("TG_RAW updated"))
	assert.Equal(t, 1, ingest.counter.Get("TG_VACANCY updated"))
}

const testMailDigest = `<html><body><div class="job-item">
	<a class="job-item__title-link" href="https://board.example/jobs/223">Senior Go Dev</a>
	<div class="job-item__company"><span class="company-name">Acme</span></div>
	<span class="job-item__salary">$3000-4000</span>
	<div class="job-item__details">3 роки досвіду · Англійська: Intermediate · Тільки віддалено · Україна</div>
	<div class="job-item__description">Build things Read more</div>
	<div class="subscription-name">Subscription: Backend</div>
</div></body></html>`

func TestIngestRunMail(t *testing.T) {

	dbContext := newTestDb(t)
	ingest := newTestIngest(t, dbContext)

	source := fakeMailSource{messages: []channels.MailMessage{{
		UID:  42,
		Date: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
		HTML: testMailDigest,
	}}}
	require.NoError(t, ingest.RunMail(context.Background(), source))

	var raw entities.RawMessage
	require.NoError(t, dbContext.DB.First(&raw).Error)
	assert.Equal(t, int(entities.KindMailVacancy), raw.KindID)

	var vacancy entities.Vacancy
	hash := repositories.SlotHash(entities.ChannelEmail, 42, 0)
	require.NoError(t, dbContext.DB.Where("slot_hash = ?", hash).First(&vacancy).Error)
	assert.Empty(t, vacancy.MessageParseNote)

	var page entities.DetailPage
	require.NoError(t, dbContext.DB.Where("url = ?", "https://board.example/jobs/223").
		First(&page).Error)
	assert.Nil(t, page.HTML)
}

func TestIngestRunMail_reobservedURLGetsRefetched(t *testing.T) {

	dbContext := newTestDb(t)
	ingest := newTestIngest(t, dbContext)

	source := fakeMailSource{messages: []channels.MailMessage{{
		UID:  42,
		Date: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
		HTML: testMailDigest,
	}}}
	require.NoError(t, ingest.RunMail(context.Background(), source))

	// Simulate a completed fetch, then re-announce the same URL.
	body, status := "<html>cached</html>", 200
	require.NoError(t, dbContext.DB.Model(&entities.DetailPage{}).
		Where("url = ?", "https://board.example/jobs/223").
		Updates(map[string]any{"html": body, "status_code": status}).Error)

	require.NoError(t, ingest.RunMail(context.Background(), source))

	var page entities.DetailPage
	require.NoError(t, dbContext.DB.Where("url = ?", "https://board.example/jobs/223").
		First(&page).Error)
	assert.Nil(t, page.HTML, "a re-announced page is fetched again")
	assert.Nil(t, page.StatusCode)
}

func TestIngestRunMail_versionCutover(t *testing.T) {

	dbContext := newTestDb(t)
	ingest := newTestIngest(t, dbContext)

	// Old-layout digest dated before the markup cutover.
	oldDigest := `<html><body><table style="border-top:1px solid #e3e3e3"><tr><td>
		<a style="font-size:16px;font-weight:600" href="https://board.example/jobs/124">Go Dev</a>
	</td></tr></table></body></html>`

	source := fakeMailSource{messages: []channels.MailMessage{{
		UID:  7,
		Date: time.Date(2024, 12, 1, 8, 0, 0, 0, time.UTC),
		HTML: oldDigest,
	}}}
	require.NoError(t, ingest.RunMail(context.Background(), source))

	var vacancy entities.Vacancy
	hash := repositories.SlotHash(entities.ChannelEmail, 7, 0)
	require.NoError(t, dbContext.DB.Where("slot_hash = ?", hash).First(&vacancy).Error)

	var page entities.DetailPage
	require.NoError(t, dbContext.DB.Where("url = ?", "https://board.example/jobs/124").
		First(&page).Error)
	require.NotNil(t, page.VacancyID)
	assert.Equal(t, vacancy.ID, *page.VacancyID)
}
