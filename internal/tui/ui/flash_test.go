package ui

import (
	"testing"
	"time"
)

func TestFlashExpires(t *testing.T) {
	var f Flash
	f.Set("saved", 30*time.Millisecond)
	if got := f.Get(); got != "saved" {
		t.Fatalf("Get = %q, want saved", got)
	}

	time.Sleep(50 * time.Millisecond)
	if got := f.Get(); got != "" {
		t.Fatalf("Get = %q after expiry, want empty", got)
	}
}

func TestFlashZeroValueIsEmpty(t *testing.T) {
	var f Flash
	if got := f.Get(); got != "" {
		t.Fatalf("Get = %q, want empty", got)
	}
}

func TestFlashSetReplaces(t *testing.T) {
	var f Flash
	f.Set("first", time.Minute)
	f.Set("second", time.Minute)
	if got := f.Get(); got != "second" {
		t.Fatalf("Get = %q, want second", got)
	}
}
