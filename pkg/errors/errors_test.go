package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	cause := errors.New("unexpected EOF")
	tests := []struct {
		err  error
		want string
	}{
		{New(ErrCodeInvalidInput, "keep is %d", -1), "INVALID_INPUT: keep is -1"},
		{Wrap(ErrCodeInvalidRecord, cause, "decode %s", "Foo-1.0.plist"), "INVALID_RECORD: decode Foo-1.0.plist: unexpected EOF"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("permission denied")
	err := Wrap(ErrCodeInvalidPath, cause, "read pkgsinfo")
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	if UserMessage(err) != "read pkgsinfo" {
		t.Errorf("UserMessage = %q", UserMessage(err))
	}
}

func TestCodeLookup(t *testing.T) {
	inner := New(ErrCodeInvalidInput, "inner")
	tests := []struct {
		name string
		err  error
		code Code
	}{
		{"direct", inner, ErrCodeInvalidInput},
		{"outermost wins", Wrap(ErrCodeInternal, inner, "outer"), ErrCodeInternal},
		{"through fmt", fmt.Errorf("context: %w", inner), ErrCodeInvalidInput},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(err, %q) = false", tt.code)
			}
		})
	}
	if Is(nil, "") {
		t.Error(`Is(nil, "") = true`)
	}
}

func TestClassOf(t *testing.T) {
	tests := []struct {
		err  error
		want Class
	}{
		{New(ErrCodeInvalidConfig, "x"), ClassInvalid},
		{New(ErrCodeInvalidFormat, "x"), ClassInvalid},
		{New(ErrCodeRepoNotFound, "x"), ClassNotFound},
		{New(ErrCodeRunNotFound, "x"), ClassNotFound},
		{New(ErrCodeInternal, "x"), ClassInternal},
		{New(Code("SOMETHING_ELSE"), "x"), ClassInternal},
		{errors.New("plain"), ClassInternal},
	}
	for _, tt := range tests {
		if got := ClassOf(tt.err); got != tt.want {
			t.Errorf("ClassOf(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
	if !IsNotFound(fmt.Errorf("get: %w", New(ErrCodeVersionNotFound, "Foo-9"))) {
		t.Error("IsNotFound on wrapped VERSION_NOT_FOUND = false")
	}
}

func TestUserMessagePlainError(t *testing.T) {
	if got := UserMessage(errors.New("boom")); got != "boom" {
		t.Errorf("UserMessage = %q", got)
	}
}
