package main

import (
	"syscall"
	"testing"
)

func TestReplSignalsIncludeInterrupt(t *testing.T) {
	// Ctrl+C inside liner is a raw-mode keypress, so an externally
	// delivered SIGINT must be trapped alongside SIGTERM.
	for _, want := range []syscall.Signal{syscall.SIGINT, syscall.SIGTERM} {
		found := false
		for _, sig := range replSignals {
			if sig == want {
				found = true
			}
		}
		if !found {
			t.Errorf("replSignals missing %v", want)
		}
	}
}

func TestLooksIncomplete(t *testing.T) {
	tests := []struct {
		msg      string
		expected bool
	}{
		{"expected '}', found end of file", true},
		{"expected ';', found end of file", true},
		{"expected expression, found '}'", false},
		{"unexpected character '!'", false},
	}

	for _, tt := range tests {
		if got := looksIncomplete(tt.msg); got != tt.expected {
			t.Errorf("looksIncomplete(%q): got %v, want %v", tt.msg, got, tt.expected)
		}
	}
}
