package processinglock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	cerrors "github.com/park285/spycard-go/internal/common/errors"
	"github.com/park285/spycard-go/internal/common/testhelper"
)

func newTestService(t *testing.T, ttl time.Duration) (*Service, *miniredis.Miniredis) {
	t.Helper()

	client, mr := testhelper.NewMiniValkey(t)
	svc := New(client, testhelper.DiscardLogger(), func(id string) string {
		return "processing:" + id
	}, ttl)
	return svc, mr
}

func TestService_Start_IsMutualExclusion(t *testing.T) {
	svc, _ := newTestService(t, 10*time.Second)
	ctx := context.Background()
	id := "mission-1"

	if err := svc.Start(ctx, id); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := svc.Start(ctx, id); !errors.Is(err, ErrAlreadyProcessing) {
		t.Fatalf("expected ErrAlreadyProcessing, got: %v", err)
	}

	ok, err := svc.IsProcessing(ctx, id)
	if err != nil {
		t.Fatalf("is processing failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected processing true")
	}

	if err := svc.Finish(ctx, id); err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	ok, err = svc.IsProcessing(ctx, id)
	if err != nil {
		t.Fatalf("is processing failed: %v", err)
	}
	if ok {
		t.Fatalf("expected processing false")
	}

	if err := svc.Start(ctx, id); err != nil {
		t.Fatalf("start after finish failed: %v", err)
	}
}

func TestService_Start_TTLExpires(t *testing.T) {
	svc, mr := newTestService(t, 2*time.Second)
	ctx := context.Background()
	id := "mission-1"

	if err := svc.Start(ctx, id); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	mr.FastForward(3 * time.Second)

	ok, err := svc.IsProcessing(ctx, id)
	if err != nil {
		t.Fatalf("is processing failed: %v", err)
	}
	if ok {
		t.Fatalf("expected processing false after ttl")
	}
}

func TestService_Run(t *testing.T) {
	svc, mr := newTestService(t, 10*time.Second)
	ctx := context.Background()

	called := false
	err := svc.Run(ctx, "m1", func(ctx context.Context) error {
		called = true
		if !mr.Exists("processing:m1") {
			t.Fatal("expected lock key while running")
		}
		err := svc.Run(ctx, "m1", func(context.Context) error {
			t.Fatal("nested run must not execute")
			return nil
		})
		var lockErr cerrors.LockError
		if !errors.As(err, &lockErr) {
			t.Fatalf("expected LockError, got %v", err)
		}
		if lockErr.Key != "processing:m1" {
			t.Fatalf("unexpected lock key: %s", lockErr.Key)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !called {
		t.Fatal("expected fn to be called")
	}
	if mr.Exists("processing:m1") {
		t.Fatal("expected lock released after run")
	}

	sentinel := errors.New("boom")
	if err := svc.Run(ctx, "m1", func(context.Context) error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if mr.Exists("processing:m1") {
		t.Fatal("expected lock released after failing run")
	}
}
