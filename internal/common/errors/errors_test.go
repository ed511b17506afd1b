package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestLockError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  LockError
		want string
	}{
		{"default", LockError{}, "failed to acquire lock"},
		{"with key", LockError{Key: "alice"}, "failed to acquire lock key=alice"},
		{"custom", LockError{Key: "m1", Description: "already processing"}, "already processing key=m1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestIsInfrastructure(t *testing.T) {
	base := errors.New("boom")

	if !IsInfrastructure(fmt.Errorf("wrap: %w", RedisError{Operation: "get", Err: base})) {
		t.Error("expected wrapped RedisError to be infrastructure")
	}
	if !IsInfrastructure(DatabaseError{Operation: "update", Err: base}) {
		t.Error("expected DatabaseError to be infrastructure")
	}
	if IsInfrastructure(LockError{Key: "x"}) {
		t.Error("LockError must not be infrastructure")
	}
	if IsInfrastructure(nil) {
		t.Error("nil must not be infrastructure")
	}

	dbErr := DatabaseError{Operation: "update", Err: base}
	if !errors.Is(dbErr, base) {
		t.Error("DatabaseError must unwrap to its cause")
	}
}
