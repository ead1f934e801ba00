package youtube

import (
	"fmt"

	"github.com/pkg/errors"
)

// Failures reported by the client. They are wrapped with the video ID and any
// upstream reason, so compare with errors.Is.
var (
	ErrTranscriptsDisabled = errors.New("subtitles are disabled for this video")
	ErrNoTranscriptFound   = errors.New("no transcript found for the requested languages")
	ErrVideoUnavailable    = errors.New("the video is no longer available")
	ErrInvalidVideoID      = errors.New("a URL was passed where a video ID was expected")
	ErrVideoUnplayable     = errors.New("the video is unplayable")
	ErrAgeRestricted       = errors.New("the video is age restricted and requires authentication")
	ErrRequestBlocked      = errors.New("YouTube is blocking requests from this IP")
	ErrPoTokenRequired     = errors.New("the caption track requires a PO token")
	ErrConsentCookie       = errors.New("failed to automatically give consent to saving cookies")
	ErrDataUnparsable      = errors.New("the data required to fetch the transcript is not parsable")
)

// HTTPError is returned when YouTube answers with an unexpected status code.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}
