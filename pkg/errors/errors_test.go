package errors

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrorTypeConfig, "ledger csv path is required")
	assert.Equal(t, "config error: ledger csv path is required", err.Error())

	wrapped := Wrap(ErrorTypeStore, "open ledger store", os.ErrPermission)
	assert.Equal(t, "store error: open ledger store: permission denied", wrapped.Error())
}

func TestUnwrap(t *testing.T) {
	cause := os.ErrNotExist
	err := Wrap(ErrorTypeStore, "open ledger store", cause)

	assert.True(t, errors.Is(err, os.ErrNotExist))

	var typed *Error
	require.True(t, errors.As(fmt.Errorf("ingest: %w", err), &typed))
	assert.Equal(t, ErrorTypeStore, typed.Type)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrorTypeStore))
	assert.False(t, IsRetryable(ErrorTypeDecode))
	assert.False(t, IsRetryable(ErrorTypeConfig))
	assert.False(t, IsRetryable(ErrorTypeUnknown))
}
