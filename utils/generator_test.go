package utils

import (
	"strings"
	"testing"
)

func TestNewReferenceFormat(t *testing.T) {
	ref := NewReference("rcpt")
	if !strings.HasPrefix(ref, "rcpt_") {
		t.Fatalf("expected rcpt_ prefix, got %q", ref)
	}
	if len(ref) != len("rcpt_")+referenceSuffixLength {
		t.Fatalf("unexpected reference length: %q", ref)
	}
}

func TestNewReferenceUniqueInTightLoop(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		ref := NewReference("rcpt")
		if seen[ref] {
			t.Fatalf("duplicate reference generated: %q", ref)
		}
		seen[ref] = true
	}
}
