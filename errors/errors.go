package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies a failure independently of the transport that reports it.
type Kind int

const (
	KindUpstream Kind = iota
	KindInvalidInput
	KindTranscriptsDisabled
	KindNotFound
	KindEmptyTranscript
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindTranscriptsDisabled:
		return "transcripts_disabled"
	case KindNotFound:
		return "not_found"
	case KindEmptyTranscript:
		return "empty_transcript"
	default:
		return "upstream_unexpected"
	}
}

type AppError struct {
	Kind    Kind   `json:"-"`
	Message string `json:"error"`
	Op      string `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func InvalidInput(op string, err error, message string) *AppError {
	return &AppError{Kind: KindInvalidInput, Message: message, Op: op, Err: err}
}

func TranscriptsDisabled(op string, err error, message string) *AppError {
	return &AppError{Kind: KindTranscriptsDisabled, Message: message, Op: op, Err: err}
}

func NotFound(op string, err error, message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message, Op: op, Err: err}
}

func EmptyTranscript(op string, err error, message string) *AppError {
	return &AppError{Kind: KindEmptyTranscript, Message: message, Op: op, Err: err}
}

func Upstream(op string, err error, message string) *AppError {
	return &AppError{Kind: KindUpstream, Message: message, Op: op, Err: err}
}

// KindOf reports the kind of the first AppError in err's chain.
// Errors that carry no AppError are treated as unexpected upstream failures.
func KindOf(err error) Kind {
	var appErr *AppError
	if pkgerrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUpstream
}

// MessageOf returns the client-facing message for err.
func MessageOf(err error) string {
	var appErr *AppError
	if pkgerrors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
