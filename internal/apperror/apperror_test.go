package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TABLE-DRIVEN TESTS:
// Each case names the error under test and the sentinel it should (or
// should not) unwrap to.
func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("listing", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("title", "title is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("form", "submission already in progress"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("sign in first"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "Misconfigured wraps ErrConfiguration",
			err:       Misconfigured("no provider"),
			target:    ErrConfiguration,
			wantMatch: true,
		},
		{
			name:      "wrapped twice still matches",
			err:       fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", NotFound("listing", "x"))),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("listing", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("dialog", "abc123"),
			wantMessage: "dialog not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("price", "price must not be negative"),
			wantMessage: "price must not be negative",
		},
		{
			name:        "Conflict message includes resource",
			err:         Conflict("form", "locked"),
			wantMessage: "form conflict: locked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("listing", "abc123")
	if err.Unwrap() != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), ErrNotFound)
	}
}

func TestValidationErrors(t *testing.T) {
	var v ValidationErrors
	assert.NoError(t, v.OrNil(), "empty collection must be a nil error")

	v.Add("title", "title is required")
	v.Add("price", "price is required")
	v.Add("title", "second title message")

	err := v.OrNil()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "title is required; price is required; second title message", err.Error())

	fields := v.Fields()
	assert.Len(t, fields, 2)
	assert.Equal(t, "title is required", fields["title"], "first message per field wins")

	var got ValidationErrors
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &got))
	assert.Len(t, got, 3)
}
