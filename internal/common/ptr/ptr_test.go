package ptr

import "testing"

func TestDeref(t *testing.T) {
	if got := Deref[int](nil, 7); got != 7 {
		t.Fatalf("expected fallback 7, got %d", got)
	}
	if got := Deref(Int(3), 7); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if got := *To("x"); got != "x" {
		t.Fatalf("expected x, got %s", got)
	}
}

func TestEqualInt(t *testing.T) {
	if !EqualInt(nil, nil) {
		t.Fatal("nil == nil")
	}
	if EqualInt(nil, Int(0)) {
		t.Fatal("nil != 0")
	}
	if !EqualInt(Int(5), Int(5)) {
		t.Fatal("5 == 5")
	}
	if EqualInt(Int(5), Int(6)) {
		t.Fatal("5 != 6")
	}
}
