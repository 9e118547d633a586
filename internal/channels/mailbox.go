package channels

import (
	"context"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// MailMessage is one decoded mailbox message.
type MailMessage struct {
	UID     int64
	Date    time.Time
	From    string
	Subject string
	Text    string
	HTML    string
}

// MailSource yields mailbox messages newer than a given moment, oldest first.
type MailSource interface {
	MessagesSince(ctx context.Context, since time.Time) ([]MailMessage, error)
}

// DecodeEnvelope parses a raw RFC 822 message: headers, date, and the
// text/plain and text/html bodies, walking multipart containers and
// undoing transfer encodings.
func DecodeEnvelope(uid int64, raw io.Reader) (MailMessage, error) {

	parsed, err := mail.ReadMessage(raw)
	if err != nil {
		return MailMessage{}, errors.Wrap(err, "failed to read mail envelope")
	}

	message := MailMessage{UID: uid}
	if date, err := parsed.Header.Date(); err == nil {
		message.Date = date
	}
	decoder := mime.WordDecoder{}
	if from, err := decoder.DecodeHeader(parsed.Header.Get("From")); err == nil {
		message.From = from
	}
	if subject, err := decoder.DecodeHeader(parsed.Header.Get("Subject")); err == nil {
		message.Subject = subject
	}

	contentType := parsed.Header.Get("Content-Type")
	encoding := parsed.Header.Get("Content-Transfer-Encoding")
	if err = decodeBody(&message, contentType, encoding, parsed.Body); err != nil {
		return message, err
	}
	return message, nil
}

func decodeBody(message *MailMessage, contentType, encoding string, body io.Reader) error {

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return errors.New("multipart body without boundary")
		}
		reader := multipart.NewReader(body, boundary)
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return errors.Wrap(err, "failed to read multipart body")
			}
			partType := part.Header.Get("Content-Type")
			partEncoding := part.Header.Get("Content-Transfer-Encoding")
			if err = decodeBody(message, partType, partEncoding, part); err != nil {
				return err
			}
		}
	}

	content, err := decodeTransfer(body, encoding)
	if err != nil {
		return err
	}
	switch mediaType {
	case "text/html":
		message.HTML = content
	case "text/plain":
		message.Text = content
	}
	return nil
}

func decodeTransfer(body io.Reader, encoding string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		body = quotedprintable.NewReader(body)
	case "base64":
		body = base64.NewDecoder(base64.StdEncoding, body)
	}
	content, err := io.ReadAll(body)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode mail body")
	}
	return string(content), nil
}
