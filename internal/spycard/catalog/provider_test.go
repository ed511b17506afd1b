package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/park285/spycard-go/internal/common/testhelper"
	"github.com/park285/spycard-go/internal/spycard/assets"
	serrors "github.com/park285/spycard-go/internal/spycard/errors"
	"github.com/park285/spycard-go/internal/spycard/model"
)

func TestProvider_RefreshAfterTTL(t *testing.T) {
	calls := 0
	current := assets.DefaultCatalogYAML
	load := func(context.Context) ([]byte, error) {
		calls++
		return current, nil
	}

	p := NewProvider(load, time.Minute, testhelper.DiscardLogger())
	now := time.Unix(1_700_000_000, 0)
	p.now = func() time.Time { return now }

	ctx := context.Background()
	if _, err := p.GamesForMission(ctx, "operation-nightfall"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.GamesForMission(ctx, "operation-daybreak"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single load within ttl, got %d", calls)
	}

	current = []byte("games:\n  solo:\n    abilities: {strategy: 40}\nmissions:\n  - id: solo-mission\n    games: {strategy: solo}\n")
	now = now.Add(2 * time.Minute)

	games, err := p.GamesForMission(ctx, "solo-mission")
	if err != nil {
		t.Fatalf("expected refreshed catalog, got %v", err)
	}
	if games[model.AbilityStrategy] != "solo" {
		t.Fatalf("unexpected games: %v", games)
	}
	if calls != 2 {
		t.Fatalf("expected reload after ttl, got %d", calls)
	}
}

func TestProvider_KeepsStaleSnapshotOnFailure(t *testing.T) {
	fail := false
	load := func(context.Context) ([]byte, error) {
		if fail {
			return nil, errors.New("disk gone")
		}
		return assets.DefaultCatalogYAML, nil
	}

	p := NewProvider(load, time.Minute, testhelper.DiscardLogger())
	now := time.Unix(1_700_000_000, 0)
	p.now = func() time.Time { return now }

	ctx := context.Background()
	if _, err := p.Snapshot(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fail = true
	now = now.Add(2 * time.Minute)
	if _, err := p.GamesForMission(ctx, "operation-nightfall"); err != nil {
		t.Fatalf("expected stale snapshot, got %v", err)
	}
}

func TestProvider_Errors(t *testing.T) {
	ctx := context.Background()

	broken := NewProvider(func(context.Context) ([]byte, error) {
		return nil, errors.New("no such file")
	}, time.Minute, testhelper.DiscardLogger())
	var upstream serrors.UpstreamError
	if _, err := broken.Snapshot(ctx); !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}

	p := NewProvider(StaticLoader(assets.DefaultCatalogYAML), 0, testhelper.DiscardLogger())
	var notFound serrors.NotFoundError
	if _, err := p.GamesForMission(ctx, "missing"); !errors.As(err, &notFound) || notFound.Resource != "mission" {
		t.Fatalf("expected mission NotFoundError, got %v", err)
	}
	if _, err := p.AbilityWeightRatios(ctx, "missing"); !errors.As(err, &notFound) || notFound.Resource != "game" {
		t.Fatalf("expected game NotFoundError, got %v", err)
	}

	ratios, err := p.AbilityWeightRatios(ctx, "tactical-debrief")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ratios) != 6 {
		t.Fatalf("expected six ratios for judged game, got %v", ratios)
	}
}

func TestProvider_RunRefresher(t *testing.T) {
	var calls atomic.Int32
	load := func(context.Context) ([]byte, error) {
		calls.Add(1)
		return assets.DefaultCatalogYAML, nil
	}
	p := NewProvider(load, time.Millisecond, testhelper.DiscardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.RunRefresher(ctx, 5*time.Millisecond) }()

	time.Sleep(60 * time.Millisecond)
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("refresher must stop cleanly: %v", err)
	}
	if calls.Load() < 2 {
		t.Fatalf("expected periodic reloads, got %d", calls.Load())
	}

	if err := p.RunRefresher(context.Background(), 0); err != nil {
		t.Fatalf("disabled refresher must return nil: %v", err)
	}
}
