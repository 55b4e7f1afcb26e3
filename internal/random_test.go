package internal

import (
	"testing"
)

func TestNewChallengeCodeRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := NewChallengeCode()
		if err != nil {
			t.Fatalf("NewChallengeCode failed: %v", err)
		}
		if code < 1000 || code > 9999 {
			t.Fatalf("code out of range: %d", code)
		}
	}
}

func TestNewChallengeCodeCoversBoundaries(t *testing.T) {
	// With 1000 draws over a 9000-value range we only sanity-check spread,
	// not exact distribution.
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		code, err := NewChallengeCode()
		if err != nil {
			t.Fatalf("NewChallengeCode failed: %v", err)
		}
		seen[code] = true
	}
	if len(seen) < 100 {
		t.Fatalf("suspiciously low code diversity: %d distinct values", len(seen))
	}
}
