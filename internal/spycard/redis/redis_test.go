package redis

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	cerrors "github.com/park285/spycard-go/internal/common/errors"
	"github.com/park285/spycard-go/internal/common/testhelper"
	"github.com/park285/spycard-go/internal/spycard/model"
)

func TestProfileLock_RunsBlockAndReleases(t *testing.T) {
	client, mr := testhelper.NewMiniValkey(t)
	lock := NewProfileLock(client, testhelper.DiscardLogger(), 5*time.Second, 100*time.Millisecond)

	called := false
	err := lock.WithLock(context.Background(), "alice", func(ctx context.Context) error {
		called = true
		if !mr.Exists(profileLockKey("alice")) {
			t.Error("lock key must exist while block runs")
		}
		return nil
	})
	if err != nil || !called {
		t.Fatalf("WithLock failed: called=%v err=%v", called, err)
	}
	if mr.Exists(profileLockKey("alice")) {
		t.Fatal("lock key must be released after block")
	}
}

func TestProfileLock_BusyReturnsLockError(t *testing.T) {
	client, mr := testhelper.NewMiniValkey(t)
	lock := NewProfileLock(client, testhelper.DiscardLogger(), 5*time.Second, 80*time.Millisecond)

	if err := mr.Set(profileLockKey("bob"), "someone-else"); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	err := lock.WithLock(context.Background(), "bob", func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	var lockErr cerrors.LockError
	if !errors.As(err, &lockErr) || lockErr.Key != "bob" {
		t.Fatalf("expected LockError for bob, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatal("block must not run without the lock")
	}
	if got, _ := mr.Get(profileLockKey("bob")); got != "someone-else" {
		t.Fatalf("foreign lock must not be released, got %q", got)
	}
}

func TestProfileLock_PropagatesBlockError(t *testing.T) {
	client, _ := testhelper.NewMiniValkey(t)
	lock := NewProfileLock(client, testhelper.DiscardLogger(), time.Second, 50*time.Millisecond)

	want := errors.New("boom")
	if err := lock.WithLock(context.Background(), "carol", func(ctx context.Context) error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected block error, got %v", err)
	}
}

func TestMissionProcessingLock(t *testing.T) {
	client, mr := testhelper.NewMiniValkey(t)
	lock := NewMissionProcessingLock(client, testhelper.DiscardLogger(), time.Minute)

	err := lock.Run(context.Background(), "m1", func(ctx context.Context) error {
		if !mr.Exists(missionCompleteKey("m1")) {
			t.Error("processing key must exist during run")
		}
		return lock.Run(ctx, "m1", func(context.Context) error { return nil })
	})

	var lockErr cerrors.LockError
	if !errors.As(err, &lockErr) {
		t.Fatalf("nested run must fail with LockError, got %v", err)
	}
	if mr.Exists(missionCompleteKey("m1")) {
		t.Fatal("processing key must be cleared after run")
	}
}

func TestReportCache(t *testing.T) {
	client, mr := testhelper.NewMiniValkey(t)
	cache := NewReportCache(client, testhelper.DiscardLogger(), time.Minute)
	ctx := context.Background()

	got, err := cache.Get(ctx, 7)
	if err != nil || got != nil {
		t.Fatalf("expected miss, got %+v err=%v", got, err)
	}

	report := model.NewAbilityReport(model.ReportSourceHistory)
	report.PlayerID = 7
	report.TotalGames = 3
	report.Abilities[model.AbilityStrategy] = model.AbilityStat{Score: 55, GameCount: 3, AverageScore: 55.3}
	if err := cache.Set(ctx, 7, report); err != nil {
		t.Fatal(err)
	}

	got, err = cache.Get(ctx, 7)
	if err != nil || got == nil {
		t.Fatalf("expected hit, got err=%v", err)
	}
	if got.TotalGames != 3 || got.Abilities[model.AbilityStrategy].AverageScore != 55.3 {
		t.Fatalf("unexpected cached report: %+v", got)
	}

	mr.FastForward(2 * time.Minute)
	if got, _ := cache.Get(ctx, 7); got != nil {
		t.Fatal("expected expiry after ttl")
	}

	_ = cache.Set(ctx, 7, report)
	if err := cache.Invalidate(ctx, 7); err != nil {
		t.Fatal(err)
	}
	if got, _ := cache.Get(ctx, 7); got != nil {
		t.Fatal("expected miss after invalidate")
	}
}

func TestReportCache_Disabled(t *testing.T) {
	client, _ := testhelper.NewMiniValkey(t)
	cache := NewReportCache(client, nil, 0)
	ctx := context.Background()

	if err := cache.Set(ctx, 1, model.NewAbilityReport(model.ReportSourceHistory)); err != nil {
		t.Fatal(err)
	}
	if got, err := cache.Get(ctx, 1); err != nil || got != nil {
		t.Fatalf("disabled cache must always miss, got %+v err=%v", got, err)
	}
}
