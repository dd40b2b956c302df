package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeCompose, "group %q has no variants", "Желаю")

	if err.Code != ErrCodeCompose {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeCompose)
	}

	if err.Message != `group "Желаю" has no variants` {
		t.Errorf("Message = %v, want %v", err.Message, `group "Желаю" has no variants`)
	}

	expected := `COMPOSE_ERROR: group "Желаю" has no variants`
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeCacheUnavailable, cause, "get %s", "abc")

	if err.Code != ErrCodeCacheUnavailable {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeCacheUnavailable)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeLayout, "test"),
			code:     ErrCodeLayout,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeLayout, "test"),
			code:     ErrCodeUpload,
			expected: false,
		},
		{
			name:     "outer code wins",
			err:      Wrap(ErrCodeUpload, New(ErrCodeNetwork, "inner"), "outer"),
			code:     ErrCodeUpload,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("render: %w", New(ErrCodeLayout, "too long")),
			code:     ErrCodeLayout,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeInvalidTemplate, "test"), ErrCodeInvalidTemplate},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Error type", New(ErrCodeInvalidInput, "friendly message"), "friendly message"},
		{"plain error", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestWrapKeep(t *testing.T) {
	coded := New(ErrCodeLayout, "no size fits")
	if got := WrapKeep(ErrCodeInternal, coded, "render").Code; got != ErrCodeLayout {
		t.Errorf("WrapKeep(coded) code = %v, want %v", got, ErrCodeLayout)
	}

	plain := errors.New("disk full")
	if got := WrapKeep(ErrCodeInternal, plain, "encode").Code; got != ErrCodeInternal {
		t.Errorf("WrapKeep(plain) code = %v, want %v", got, ErrCodeInternal)
	}
}
