package parsers

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/catalog"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/entities"
)

// DetectChatKind classifies a chat message by its body signatures. Kinds
// are checked in catalog order and the last match wins. Very short
// single-token messages with no signature are bot commands, so they
// classify as service.
func DetectChatKind(cat *catalog.Catalog, text string) entities.Kind {
	result := entities.KindChatUnknown
	for _, kind := range cat.ChatKinds {
		if kind.Matches(text) {
			result = entities.KindByConfigName(kind.Kind)
		}
	}
	if result == entities.KindChatUnknown &&
		len([]rune(text)) < 10 && !strings.Contains(text, " ") {
		result = entities.KindChatService
	}
	return result
}

// DetectMailKind classifies a mail message by the presence of vacancy
// markup signatures in its HTML body.
func DetectMailKind(cat *catalog.Catalog, html string) entities.Kind {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return entities.KindMailUnknown
	}
	for _, sign := range cat.MailVacancySigns {
		if sign.FindAll(doc.Selection).Length() > 0 {
			return entities.KindMailVacancy
		}
	}
	return entities.KindMailUnknown
}
