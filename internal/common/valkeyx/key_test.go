package valkeyx

import "testing"

func TestBuildKey(t *testing.T) {
	if got := BuildKey("spycard:profile_lock", " alice "); got != "spycard:profile_lock:alice" {
		t.Fatalf("unexpected key: %s", got)
	}
}
