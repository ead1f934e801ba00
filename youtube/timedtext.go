package youtube

import (
	"encoding/xml"
	"html"
	"regexp"
	"strconv"

	"github.com/nijaru/yt-transcript/models"
	"github.com/pkg/errors"
)

type timedText struct {
	Lines []timedTextLine `xml:"text"`
}

type timedTextLine struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

var htmlTagRe = regexp.MustCompile(`(?i)<[^>]*>`)

// parseTimedText converts a timedtext XML document into segments. Lines
// without text are skipped; entities are unescaped and markup removed.
func parseTimedText(data []byte) ([]models.Segment, error) {
	var tt timedText
	if err := xml.Unmarshal(data, &tt); err != nil {
		return nil, errors.Wrap(err, "parse timedtext XML")
	}

	segments := make([]models.Segment, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		if line.Text == "" {
			continue
		}

		start, err := strconv.ParseFloat(line.Start, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parse start %q", line.Start)
		}

		var dur float64
		if line.Dur != "" {
			if dur, err = strconv.ParseFloat(line.Dur, 64); err != nil {
				return nil, errors.Wrapf(err, "parse dur %q", line.Dur)
			}
		}

		segments = append(segments, models.Segment{
			Text:     htmlTagRe.ReplaceAllString(html.UnescapeString(line.Text), ""),
			Start:    start,
			Duration: dur,
		})
	}
	return segments, nil
}
