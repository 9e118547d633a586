package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/entities"
)

func TestDetectChatKind(t *testing.T) {

	cat := testCatalog(t)

	cases := []struct {
		name string
		text string
		want entities.Kind
	}{
		{"vacancy", chatVacancyMessage, entities.KindChatVacancy},
		{"statistic", chatStatisticMessage, entities.KindChatStatistic},
		{"service", "Новини сервісу: оновлення розсилки", entities.KindChatService},
		{"short command", "/start", entities.KindChatService},
		{"unknown", "a plain chat message without any signature", entities.KindChatUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, DetectChatKind(cat, c.text))
		})
	}
}

func TestDetectChatKind_lastMatchWins(t *testing.T) {

	cat := testCatalog(t)

	// A statistics digest that also carries a subscription footer matches
	// both kinds; the one declared later in the catalog wins.
	text := chatStatisticMessage + "\nSubscription: Market"
	assert.Equal(t, entities.KindChatStatistic, DetectChatKind(cat, text))
}

func TestDetectMailKind(t *testing.T) {

	cat := testCatalog(t)

	vacancy := `<html><body><a href="https://board.example/jobs/123">Go Dev</a></body></html>`
	assert.Equal(t, entities.KindMailVacancy, DetectMailKind(cat, vacancy))

	newsletter := `<html><body><p>Monthly news</p></body></html>`
	assert.Equal(t, entities.KindMailUnknown, DetectMailKind(cat, newsletter))
}
