package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_MatchesSentinel(t *testing.T) {
	err := NewValidationError("title is required")

	assert.True(t, errors.Is(err, ErrorValidation))
	assert.False(t, errors.Is(err, ErrorNotFound))
	assert.Equal(t, "title is required", err.Error())
}

func TestUserMessage(t *testing.T) {
	wrapped := fmt.Errorf("write entry: %w", NewValidationError("text is required"))

	msg, ok := UserMessage(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "text is required", msg)

	_, ok = UserMessage(ErrorNotFound)
	assert.False(t, ok)

	_, ok = UserMessage(nil)
	assert.False(t, ok)
}
