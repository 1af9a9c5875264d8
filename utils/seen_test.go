package utils

import "testing"

func TestKeyIsStable(t *testing.T) {
	a := Key("G2", "2024-03-10", "body text")
	b := Key("G2", "2024-03-10", "body text")
	if a != b {
		t.Errorf("identical inputs produced different keys: %q vs %q", a, b)
	}
	if len(a) != 40 {
		t.Errorf("key length = %d; want 40 hex chars", len(a))
	}

	c := Key("TrustRadius", "2024-03-10", "body text")
	if a == c {
		t.Error("different sources must not collide")
	}
}

func TestSeenSetAdd(t *testing.T) {
	s := NewSeenSet()
	key := Key("G2", "2024-03-10", "body")

	if !s.Add(key) {
		t.Error("first Add should report a new key")
	}
	if s.Add(key) {
		t.Error("second Add should report a duplicate")
	}
	if !s.Contains(key) {
		t.Error("Contains should see the added key")
	}
	if s.Size() != 1 {
		t.Errorf("Size = %d; want 1", s.Size())
	}
}
