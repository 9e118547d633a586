package services

import (
	"context"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/catalog"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/channels"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/entities"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/logger"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/metrics"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/parsers"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/repositories"
)

type attributeInterner interface {
	Intern(attributeID entities.AttributeID, value string, channel entities.Channel) (uint, error)
	LinkToVacancy(vacancyID, valueID uint) error
}

type lastDateProvider interface {
	LastDate(ctx context.Context, channel entities.Channel) (time.Time, error)
}

// Ingest runs the message pipeline for the chat and mailbox channels:
// store the raw message, classify it, extract vacancy blocks and fan their
// attributes and detail page URLs out into the store.
type Ingest struct {
	db         *gorm.DB
	cat        *catalog.Catalog
	attrValues attributeInterner
	rawDates   lastDateProvider

	chatParser   *parsers.ChatVacancyParser
	statParser   *parsers.StatisticParser
	mailParserV0 *parsers.MailVacancyParserV0
	mailParserV1 *parsers.MailVacancyParserV1

	startDate time.Time
	counter   *RunCounter
}

func NewIngest(db *gorm.DB, cat *catalog.Catalog, attrValues attributeInterner,
	rawDates lastDateProvider, startDate time.Time, counter *RunCounter) *Ingest {
	return &Ingest{
		db:           db,
		cat:          cat,
		attrValues:   attrValues,
		rawDates:     rawDates,
		chatParser:   parsers.NewChatVacancyParser(cat),
		statParser:   parsers.NewStatisticParser(cat),
		mailParserV0: parsers.NewMailVacancyParserV0(cat),
		mailParserV1: parsers.NewMailVacancyParserV1(cat),
		startDate:    startDate,
		counter:      counter,
	}
}

// vacancyOutcome carries what must happen outside the per-message
// transaction: attribute interning and detail page bookkeeping.
type vacancyOutcome struct {
	vacancyID uint
	attrs     parsers.AttributeMap
	channel   entities.Channel
	url       string
	reobserve bool
}

// RunChat ingests chat messages newer than the stored horizon.
func (s *Ingest) RunChat(ctx context.Context, source channels.ChatSource) error {

	since, err := s.rawDates.LastDate(ctx, entities.ChannelChat)
	if err != nil {
		return err
	}
	if since.Before(s.startDate) {
		since = s.startDate
	}
	log.Infof("retrieving chat messages since %v", since.Format("02-Jan-2006"))

	messages, err := source.MessagesSince(ctx, since)
	if err != nil {
		return err
	}
	s.counter.AddN("TELEGRAM received", len(messages))

	for _, message := range messages {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = s.ingestChatMessage(ctx, message); err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to ingest chat message %d: %v", message.MessageID, err)
			metrics.RawMessagesCounter.WithLabelValues("telegram", "failed").Inc()
		}
	}
	return nil
}

func (s *Ingest) ingestChatMessage(ctx context.Context, message channels.ChatMessage) error {

	kind := parsers.DetectChatKind(s.cat, message.Text)

	var outcomes []vacancyOutcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		raw, added, err := repositories.Upsert[entities.RawMessage](tx,
			map[string]any{"message_id": message.MessageID},
			map[string]any{
				"date":       message.Date,
				"text":       message.Text,
				"channel_id": int(entities.ChannelChat),
				"kind_id":    int(kind),
			})
		if err != nil {
			return err
		}
		s.countOutcome("TG_RAW", added)
		metrics.RawMessagesCounter.WithLabelValues("telegram", outcomeLabel(added)).Inc()

		switch kind {
		case entities.KindChatVacancy:
			blocks := s.chatParser.Parse(raw.Text)
			outcomes, err = s.storeVacancies(tx, raw, blocks, entities.ChannelChat,
				message.MessageID, "TG", false)
			return err

		case entities.KindChatStatistic:
			stat := s.statParser.Parse(raw.Text)
			_, added, err = repositories.Upsert[entities.Statistic](tx,
				map[string]any{"raw_message_id": raw.ID},
				map[string]any{
					"vacancies_in_30d":      stat.VacanciesIn30d,
					"candidates_online":     stat.CandidatesOnline,
					"min_salary":            stat.MinSalary,
					"max_salary":            stat.MaxSalary,
					"responses_per_vacancy": stat.ResponsesPerVacancy,
					"vacancies_per_week":    stat.VacanciesPerWeek,
					"candidates_per_week":   stat.CandidatesPerWeek,
					"parse_note":            stat.ParseNote,
				})
			if err == nil {
				s.countOutcome(strings.ToUpper(kind.Name()), added)
			}
			return err

		case entities.KindChatService:
			_, added, err = repositories.Upsert[entities.Service](tx,
				map[string]any{"raw_message_id": raw.ID},
				map[string]any{"text": raw.Text})
			if err == nil {
				s.countOutcome(strings.ToUpper(kind.Name()), added)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.applyOutcomes(ctx, outcomes)
}

// RunMail ingests mailbox messages newer than the stored horizon.
func (s *Ingest) RunMail(ctx context.Context, source channels.MailSource) error {

	since, err := s.rawDates.LastDate(ctx, entities.ChannelEmail)
	if err != nil {
		return err
	}
	if since.Before(s.startDate) {
		since = s.startDate
	}
	log.Infof("retrieving mail messages since %v", since.Format("02-Jan-2006"))

	messages, err := source.MessagesSince(ctx, since)
	if err != nil {
		return err
	}
	s.counter.AddN("EMAIL received", len(messages))

	for _, message := range messages {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = s.ingestMailMessage(ctx, message); err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to ingest mail message %d: %v", message.UID, err)
			metrics.RawMessagesCounter.WithLabelValues("email", "failed").Inc()
		}
	}
	return nil
}

func (s *Ingest) ingestMailMessage(ctx context.Context, message channels.MailMessage) error {

	kind := parsers.DetectMailKind(s.cat, message.HTML)

	var outcomes []vacancyOutcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		raw, added, err := repositories.Upsert[entities.RawMessage](tx,
			map[string]any{"email_uid": message.UID},
			map[string]any{
				"date":       message.Date,
				"text":       message.Text,
				"html":       message.HTML,
				"channel_id": int(entities.ChannelEmail),
				"kind_id":    int(kind),
			})
		if err != nil {
			return err
		}
		s.countOutcome("EMAIL_RAW", added)
		metrics.RawMessagesCounter.WithLabelValues("email", outcomeLabel(added)).Inc()

		if kind != entities.KindMailVacancy {
			return nil
		}

		// The board changed its digest markup once; the message date
		// decides which layout the body carries.
		var blocks []parsers.AttributeMap
		if !raw.Date.After(s.cat.MailCutover) {
			blocks = s.mailParserV0.Parse(raw.HTML)
		} else {
			blocks = s.mailParserV1.Parse(raw.HTML)
		}
		outcomes, err = s.storeVacancies(tx, raw, blocks, entities.ChannelEmail,
			message.UID, "EMAIL", true)
		return err
	})
	if err != nil {
		return err
	}

	return s.applyOutcomes(ctx, outcomes)
}

// storeVacancies upserts one Vacancy row per extracted block, keyed by its
// slot hash, and collects the work that runs after the transaction commits.
func (s *Ingest) storeVacancies(tx *gorm.DB, raw *entities.RawMessage,
	blocks []parsers.AttributeMap, channel entities.Channel, nativeID int64,
	prefix string, reobserveURLs bool) ([]vacancyOutcome, error) {

	var outcomes []vacancyOutcome
	for slot, attrs := range blocks {

		hash := repositories.SlotHash(channel, nativeID, slot)
		vacancy, added, err := repositories.Upsert[entities.Vacancy](tx,
			map[string]any{"slot_hash": hash},
			map[string]any{
				"raw_message_id":     raw.ID,
				"message_parse_note": attrs.Diagnostic,
			})
		if err != nil {
			return nil, err
		}
		s.countOutcome(strings.ToUpper(prefix+"_VACANCY"), added)
		metrics.VacanciesCounter.WithLabelValues(channel.Name(), outcomeLabel(added)).Inc()
		if attrs.Diagnostic != "" {
			s.counter.Add(prefix + "_ERR")
			metrics.ParsingErrorsCounter.WithLabelValues(channel.Name()).Inc()
		}

		outcomes = append(outcomes, vacancyOutcome{
			vacancyID: vacancy.ID,
			attrs:     attrs,
			channel:   channel,
			url:       attrs.Get(entities.AttrURL),
			reobserve: reobserveURLs,
		})
	}
	return outcomes, nil
}

// applyOutcomes interns attribute values and registers detail page URLs for
// the vacancies stored by a committed message transaction.
func (s *Ingest) applyOutcomes(ctx context.Context, outcomes []vacancyOutcome) error {

	for _, outcome := range outcomes {
		if err := ctx.Err(); err != nil {
			return err
		}

		if outcome.url != "" {
			if err := s.registerDetailPage(ctx, outcome); err != nil {
				return err
			}
		}

		ids := make([]entities.AttributeID, 0, len(outcome.attrs.Values))
		for id := range outcome.attrs.Values {
			if id != entities.AttrURL {
				ids = append(ids, id)
			}
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for _, id := range ids {
			valueID, err := s.attrValues.Intern(id, outcome.attrs.Values[id], outcome.channel)
			if err != nil {
				return err
			}
			if err = s.attrValues.LinkToVacancy(outcome.vacancyID, valueID); err != nil {
				return err
			}
		}
	}
	return nil
}

// registerDetailPage upserts the page row for a vacancy URL. When a mailbox
// message re-announces a known URL the cached body is dropped, so the next
// fetch pass revisits the page.
func (s *Ingest) registerDetailPage(ctx context.Context, outcome vacancyOutcome) error {

	prefix := "TG_URL"
	if outcome.channel == entities.ChannelEmail {
		prefix = "EMAIL_URL"
	}

	page, added, err := repositories.Upsert[entities.DetailPage](s.db.WithContext(ctx),
		map[string]any{"url": outcome.url},
		map[string]any{"vacancy_id": outcome.vacancyID})
	if err != nil {
		return err
	}
	s.countOutcome(prefix, added)

	if !added && outcome.reobserve {
		return s.db.WithContext(ctx).Model(&entities.DetailPage{}).
			Where("id = ?", page.ID).
			Updates(map[string]any{"html": nil, "status_code": nil}).Error
	}
	return nil
}

func (s *Ingest) countOutcome(prefix string, added bool) {
	s.counter.Add(prefix + " " + outcomeLabel(added))
}

func outcomeLabel(added bool) string {
	if added {
		return "added"
	}
	return "updated"
}
