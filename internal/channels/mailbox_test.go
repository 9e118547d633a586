package channels

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const multipartMail = "From: Job Board <digest@board.example>\r\n" +
	"To: reader@example.com\r\n" +
	"Subject: New vacancies\r\n" +
	"Date: Mon, 03 Feb 2025 10:00:00 +0200\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/alternative; boundary=\"sep\"\r\n" +
	"\r\n" +
	"--sep\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Plain digest body\r\n" +
	"--sep\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"Content-Transfer-Encoding: quoted-printable\r\n" +
	"\r\n" +
	"<div class=3D\"job-item\">vacancy</div>\r\n" +
	"--sep--\r\n"

func Test_DecodeEnvelope_MultipartBodies(t *testing.T) {
	message, err := DecodeEnvelope(17, strings.NewReader(multipartMail))
	require.NoError(t, err)

	assert.Equal(t, int64(17), message.UID)
	assert.Equal(t, "New vacancies", message.Subject)
	assert.Contains(t, message.From, "digest@board.example")
	assert.Equal(t, 2025, message.Date.Year())
	assert.Contains(t, message.Text, "Plain digest body")
	assert.Contains(t, message.HTML, `<div class="job-item">vacancy</div>`)
}

func Test_DecodeEnvelope_SinglePartHTML(t *testing.T) {
	raw := "From: digest@board.example\r\n" +
		"Subject: Vacancy\r\n" +
		"Date: Tue, 04 Feb 2025 09:00:00 +0200\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<p>body</p>\r\n"

	message, err := DecodeEnvelope(3, strings.NewReader(raw))
	require.NoError(t, err)
	assert.Contains(t, message.HTML, "<p>body</p>")
	assert.Empty(t, message.Text)
}

func Test_FileMailbox_ReadsUIDsAndFiltersByDate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "21.eml"), []byte(multipartMail), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	mailbox := NewFileMailbox(dir)

	messages, err := mailbox.MessagesSince(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, int64(21), messages[0].UID)

	messages, err = mailbox.MessagesSince(context.Background(), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, messages)
}
