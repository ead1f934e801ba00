package errors

import (
	"fmt"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessage(t *testing.T) {
	err := NotFound("op", nil, "not found")
	assert.Equal(t, "not found", err.Error())

	wrapped := Upstream("op", fmt.Errorf("boom"), "unexpected error")
	assert.Equal(t, "unexpected error: boom", wrapped.Error())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"invalid input", InvalidInput("op", nil, "bad"), KindInvalidInput},
		{"disabled", TranscriptsDisabled("op", nil, "off"), KindTranscriptsDisabled},
		{"not found", NotFound("op", nil, "missing"), KindNotFound},
		{"empty", EmptyTranscript("op", nil, "empty"), KindEmptyTranscript},
		{"wrapped", pkgerrors.Wrap(NotFound("op", nil, "missing"), "context"), KindNotFound},
		{"plain error", fmt.Errorf("standard error"), KindUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "bad", MessageOf(InvalidInput("op", fmt.Errorf("x"), "bad")))
	assert.Equal(t, "internal server error", MessageOf(fmt.Errorf("raw")))
}
