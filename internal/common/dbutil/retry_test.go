package dbutil

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/park285/spycard-go/internal/common/testhelper"
)

func TestOpenWithRetry_SucceedsAfterFailures(t *testing.T) {
	want := testhelper.NewTestDB(t)

	calls := 0
	openFn := func(context.Context) (*gorm.DB, *sql.DB, error) {
		calls++
		if calls < 3 {
			return nil, nil, errors.New("connection refused")
		}
		sqlDB, err := want.DB()
		return want, sqlDB, err
	}

	cfg := RetryConfig{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	db, _, err := OpenWithRetry(context.Background(), openFn, cfg, testhelper.DiscardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db != want {
		t.Fatal("expected db from successful attempt")
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestOpenWithRetry_GivesUp(t *testing.T) {
	calls := 0
	openFn := func(context.Context) (*gorm.DB, *sql.DB, error) {
		calls++
		return nil, nil, errors.New("connection refused")
	}

	cfg := RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
	if _, _, err := OpenWithRetry(context.Background(), openFn, cfg, nil); err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestOpenWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	openFn := func(context.Context) (*gorm.DB, *sql.DB, error) {
		return nil, nil, errors.New("connection refused")
	}

	cfg := RetryConfig{MaxAttempts: 5, BaseDelay: time.Second, MaxDelay: time.Second}
	_, _, err := OpenWithRetry(ctx, openFn, cfg, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
