package errors

import (
	"errors"
	"testing"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		msg      string
		expected string
	}{
		{
			name:     "wrap nil error",
			err:      nil,
			msg:      "additional context",
			expected: "",
		},
		{
			name:     "wrap standard error",
			err:      errors.New("original error"),
			msg:      "additional context",
			expected: "additional context: original error",
		},
		{
			name:     "wrap sentinel",
			err:      ErrDownloadFailed,
			msg:      "package foo",
			expected: "package foo: download failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Wrap(tt.err, tt.msg)
			if tt.err == nil {
				if result != nil {
					t.Errorf("Expected nil, got %v", result)
				}
				return
			}
			if result.Error() != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result.Error())
			}
			if !errors.Is(result, tt.err) {
				t.Errorf("Expected wrapped error to match %v", tt.err)
			}
		})
	}
}

func TestWrapf(t *testing.T) {
	err := Wrapf(ErrChecksumMismatch, "file %s (%d bytes)", "/tmp/foo.rpm", 42)
	if err == nil {
		t.Fatal("Expected non-nil error")
	}
	expected := "file /tmp/foo.rpm (42 bytes): checksum mismatch"
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Error("Expected wrapped error to match ErrChecksumMismatch")
	}
	if Wrapf(nil, "ignored %d", 1) != nil {
		t.Error("Expected nil when wrapping nil")
	}
}
