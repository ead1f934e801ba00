package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nijaru/yt-transcript/errors"
)

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/embed/([^&\n?#]+)`),
	regexp.MustCompile(`^([a-zA-Z0-9_-]{11})$`),
}

// ExtractVideoID returns the video identifier found in a watch, short or embed
// URL, or the input itself when it is a bare 11-character ID. It returns ""
// when nothing matches.
func ExtractVideoID(input string) string {
	for _, pattern := range videoIDPatterns {
		if m := pattern.FindStringSubmatch(input); len(m) == 2 {
			return m[1]
		}
	}
	return ""
}

var validate = validator.New()

// ValidateRequest checks struct tags on a decoded request body.
func ValidateRequest(v any) error {
	const op = "validation.ValidateRequest"

	if err := validate.Struct(v); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			return errors.InvalidInput(op, err, formatValidationErrors(fieldErrs))
		}
		return errors.InvalidInput(op, err, "invalid request body")
	}
	return nil
}

func formatValidationErrors(fieldErrs validator.ValidationErrors) string {
	for _, fe := range fieldErrs {
		if fe.Tag() == "required_without" {
			return "video_id or url is required"
		}
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed on the '%s' tag", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
