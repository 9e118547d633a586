package parsers

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trackedLink(t *testing.T, destination string) string {

	payload, err := json.Marshal(map[string]string{"url": destination})
	require.NoError(t, err)
	envelope, err := json.Marshal(map[string]string{"p": string(payload)})
	require.NoError(t, err)

	data := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(envelope)
	return "https://mail.example/track?p=" + url.QueryEscape(data)
}

func TestDecodeTrackedURL(t *testing.T) {

	link := trackedLink(t, "https://board.example/jobs/123-source=email")
	assert.Equal(t, "https://board.example/jobs/123", DecodeTrackedURL(link),
		"tracking suffix after the first dash is dropped")
}

func TestDecodeTrackedURL_failSoft(t *testing.T) {

	cases := []string{
		"https://board.example/jobs/123",
		"https://mail.example/track?p=%%%not-base64",
		"https://mail.example/track?p=" + base64.URLEncoding.EncodeToString([]byte("not json")),
		"",
	}
	for _, link := range cases {
		assert.Equal(t, link, DecodeTrackedURL(link))
	}
}
