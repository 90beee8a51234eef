package consensus

import "testing"

func TestAddU64Overflow(t *testing.T) {
	if _, ok := addU64(^uint64(0), 1); ok {
		t.Fatalf("expected overflow to be detected")
	}
	v, ok := addU64(1, 2)
	if !ok || v != 3 {
		t.Fatalf("addU64(1,2) = %d, %v", v, ok)
	}
}

func TestSubU64Checked(t *testing.T) {
	if _, ok := subU64Checked(1, 2); ok {
		t.Fatalf("expected underflow to be detected")
	}
	v, ok := subU64Checked(5, 2)
	if !ok || v != 3 {
		t.Fatalf("subU64Checked(5,2) = %d, %v", v, ok)
	}
}
