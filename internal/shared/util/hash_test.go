package util

import "testing"

func TestHashUserKeyStable(t *testing.T) {
	a := HashUserKey("user-1")
	b := HashUserKey("user-1")
	if a != b {
		t.Fatalf("expected stable hash, got %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}

func TestHashUserKeyDistinct(t *testing.T) {
	if HashUserKey("user-1") == HashUserKey("user-2") {
		t.Fatal("expected different users to hash differently")
	}
}
