package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrMalformedInput", ErrMalformedInput},
		{"ErrCollectionNotFound", ErrCollectionNotFound},
		{"ErrPromptNotFound", ErrPromptNotFound},
		{"ErrUnexpectedResponseFormat", ErrUnexpectedResponseFormat},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrCompletionUnavailable", ErrCompletionUnavailable},
		{"ErrStale", ErrStale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrNotFound_Wrapped(t *testing.T) {
	err := fmt.Errorf("collection %q: %w", "reports", ErrNotFound)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrAlreadyExists))
}

func TestTransportError_WithStatus(t *testing.T) {
	err := &TransportError{Op: "upsert", StatusCode: 500, Body: "boom"}

	assert.Equal(t, "upsert: status 500: boom", err.Error())
}

func TestTransportError_WithCause(t *testing.T) {
	cause := errors.New("connection refused")
	var err error = fmt.Errorf("wrap: %w", &TransportError{Op: "heartbeat", Err: cause})

	var te *TransportError
	assert.True(t, errors.As(err, &te))
	assert.Equal(t, 0, te.StatusCode)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")
}
