package errors

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidReference, "row %d is not valid", 7)

	if err.Code != ErrCodeInvalidReference {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidReference)
	}

	if err.Message != "row 7 is not valid" {
		t.Errorf("Message = %v, want %v", err.Message, "row 7 is not valid")
	}

	expected := "INVALID_REFERENCE: row 7 is not valid"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeConfiguration, cause, "load config")

	if err.Code != ErrCodeConfiguration {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeConfiguration)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "CONFIGURATION: load config: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
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
			err:      New(ErrCodeSchemaMismatch, "test"),
			code:     ErrCodeSchemaMismatch,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeSchemaMismatch, "test"),
			code:     ErrCodeUnsupported,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeConfiguration, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeConfiguration,
			expected: true,
		},
		{
			name:     "inner code of wrapped error",
			err:      Wrap(ErrCodeSchemaMismatch, New(ErrCodeTypeMismatch, "inner"), "outer"),
			code:     ErrCodeTypeMismatch,
			expected: true,
		},
		{
			name:     "joined errors",
			err:      errors.Join(New(ErrCodeUnsupported, "a"), fmt.Errorf("ctx: %w", New(ErrCodeReentrant, "b"))),
			code:     ErrCodeReentrant,
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
		{
			name:     "Error type",
			err:      New(ErrCodeMalformedTree, "test"),
			expected: ErrCodeMalformedTree,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
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
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []Code
	}{
		{"nil", nil, nil},
		{"plain", errors.New("plain"), nil},
		{"single", New(ErrCodeNotFound, "x"), []Code{ErrCodeNotFound}},
		{
			name: "wrapped",
			err:  Wrap(ErrCodeSchemaMismatch, New(ErrCodeTypeMismatch, "inner"), "outer"),
			want: []Code{ErrCodeSchemaMismatch, ErrCodeTypeMismatch},
		},
		{
			name: "joined with duplicates",
			err: errors.Join(
				New(ErrCodeSchemaMismatch, "row 1"),
				New(ErrCodeInvalidReference, "row 2"),
				New(ErrCodeSchemaMismatch, "row 3"),
			),
			want: []Code{ErrCodeSchemaMismatch, ErrCodeInvalidReference},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Codes(tt.err); !slices.Equal(got, tt.want) {
				t.Errorf("Codes() = %v, want %v", got, tt.want)
			}
		})
	}
}
