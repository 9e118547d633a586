package parsers

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
)

type trackEnvelope struct {
	P string `json:"p"`
}

type trackPayload struct {
	URL string `json:"url"`
}

// DecodeTrackedURL unwraps a mailing-service redirect link: the real
// destination sits in a base64 "p" query parameter holding a JSON envelope
// with an inner JSON payload. Tracking suffixes after the first dash are
// dropped. On any decode problem the input comes back unchanged.
func DecodeTrackedURL(trackedURL string) string {

	parsed, err := url.Parse(trackedURL)
	if err != nil {
		return trackedURL
	}
	base64Data := parsed.Query().Get("p")
	if base64Data == "" {
		return trackedURL
	}

	if missing := len(base64Data) % 4; missing != 0 {
		base64Data += strings.Repeat("=", 4-missing)
	}
	decoded, err := base64.URLEncoding.DecodeString(base64Data)
	if err != nil {
		if decoded, err = base64.StdEncoding.DecodeString(base64Data); err != nil {
			log.Debugf("unable to retrieve URL from %.100s: %v", trackedURL, err)
			return trackedURL
		}
	}

	var envelope trackEnvelope
	if err := json.Unmarshal(decoded, &envelope); err != nil || envelope.P == "" {
		return trackedURL
	}
	var payload trackPayload
	if err := json.Unmarshal([]byte(envelope.P), &payload); err != nil || payload.URL == "" {
		return trackedURL
	}

	real := strings.ReplaceAll(payload.URL, `\/`, "/")
	return strings.SplitN(real, "-", 2)[0]
}
