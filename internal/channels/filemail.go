package channels

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// FileMailbox reads a directory of .eml files dropped by a mail retrieval
// job. The numeric file name is the message UID, which keeps ingestion
// idempotent across runs.
type FileMailbox struct {
	dir string
}

func NewFileMailbox(dir string) *FileMailbox {
	return &FileMailbox{dir: dir}
}

func (m *FileMailbox) MessagesSince(ctx context.Context, since time.Time) ([]MailMessage, error) {

	files, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read mailbox directory")
	}

	var messages []MailMessage
	for _, file := range files {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".eml") {
			continue
		}
		uid, err := strconv.ParseInt(strings.TrimSuffix(file.Name(), ".eml"), 10, 64)
		if err != nil {
			log.Warnf("skipping mailbox file with non-numeric name: %s", file.Name())
			continue
		}

		raw, err := os.Open(filepath.Join(m.dir, file.Name()))
		if err != nil {
			return nil, errors.Wrap(err, "failed to open mailbox file")
		}
		message, err := DecodeEnvelope(uid, raw)
		_ = raw.Close()
		if err != nil {
			log.WithField("uid", uid).Warnf("failed to decode mail message: %v", err)
			continue
		}
		if !message.Date.After(since) {
			continue
		}
		messages = append(messages, message)
	}

	sort.Slice(messages, func(i, j int) bool { return messages[i].Date.Before(messages[j].Date) })
	return messages, nil
}
