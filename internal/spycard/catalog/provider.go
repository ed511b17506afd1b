package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	serrors "github.com/park285/spycard-go/internal/spycard/errors"
	"github.com/park285/spycard-go/internal/spycard/model"
)

const refreshSingleflightKey = "catalog_refresh"

// LoadFunc: 카탈로그 원본 바이트를 읽는 함수
type LoadFunc func(ctx context.Context) ([]byte, error)

// FileLoader: 파일 경로에서 카탈로그를 읽는다.
func FileLoader(path string) LoadFunc {
	return func(context.Context) ([]byte, error) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog file failed: %w", err)
		}
		return raw, nil
	}
}

// StaticLoader: 고정 바이트(임베드된 기본 카탈로그 등)를 돌려준다.
func StaticLoader(raw []byte) LoadFunc {
	return func(context.Context) ([]byte, error) {
		return raw, nil
	}
}

// Provider: TTL 이 지나면 카탈로그 스냅샷을 다시 읽는 조회 서비스.
// 다시 읽기에 실패하면 직전 스냅샷을 계속 쓴다.
type Provider struct {
	load   LoadFunc
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu          sync.RWMutex
	sf          singleflight.Group
	snapshot    *Catalog
	cachedUntil time.Time
}

// NewProvider: Provider 를 생성한다. ttl 이 0 이하면 처음 읽은 스냅샷을 계속 쓴다.
func NewProvider(load LoadFunc, ttl time.Duration, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		load:   load,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Snapshot: 현재 유효한 카탈로그 스냅샷을 반환한다.
func (p *Provider) Snapshot(ctx context.Context) (*Catalog, error) {
	p.mu.RLock()
	snapshot := p.snapshot
	cachedUntil := p.cachedUntil
	p.mu.RUnlock()

	if snapshot != nil && (p.ttl <= 0 || p.now().Before(cachedUntil)) {
		return snapshot, nil
	}

	value, err, _ := p.sf.Do(refreshSingleflightKey, func() (any, error) {
		p.mu.RLock()
		snapshot := p.snapshot
		cachedUntil := p.cachedUntil
		p.mu.RUnlock()
		if snapshot != nil && (p.ttl <= 0 || p.now().Before(cachedUntil)) {
			return snapshot, nil
		}

		fresh, loadErr := p.loadCatalog(ctx)
		if loadErr != nil {
			if snapshot != nil {
				p.logger.Warn("catalog_refresh_failed_using_stale", "err", loadErr)
				p.mu.Lock()
				p.cachedUntil = p.now().Add(p.ttl)
				p.mu.Unlock()
				return snapshot, nil
			}
			return nil, loadErr
		}

		p.mu.Lock()
		p.snapshot = fresh
		p.cachedUntil = p.now().Add(p.ttl)
		p.mu.Unlock()
		p.logger.Info("catalog_loaded", "missions", len(fresh.missions), "games", len(fresh.games))
		return fresh, nil
	})
	if err != nil {
		p.logger.Error("catalog_load_failed", "err", err)
		return nil, serrors.UpstreamError{Operation: "catalog_load", Err: err}
	}
	c, ok := value.(*Catalog)
	if !ok || c == nil {
		return nil, serrors.UpstreamError{Operation: "catalog_load", Err: fmt.Errorf("unexpected snapshot type %T", value)}
	}
	return c, nil
}

// RunRefresher: interval 마다 스냅샷을 갱신해 요청 경로에서 다시 읽는 일을 줄인다.
// interval 이 0 이하면 바로 반환하고, ctx 가 끝나면 nil 을 반환한다.
func (p *Provider) RunRefresher(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := p.Snapshot(ctx); err != nil {
				p.logger.Warn("catalog_refresh_tick_failed", "err", err)
			}
		}
	}
}

func (p *Provider) loadCatalog(ctx context.Context) (*Catalog, error) {
	raw, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Mission: 미션 정의를 조회한다. 없으면 NotFoundError.
func (p *Provider) Mission(ctx context.Context, missionID string) (Mission, error) {
	c, err := p.Snapshot(ctx)
	if err != nil {
		return Mission{}, err
	}
	m, ok := c.Mission(missionID)
	if !ok {
		return Mission{}, serrors.NotFoundError{Resource: "mission", ID: strings.TrimSpace(missionID)}
	}
	return m, nil
}

// GamesForMission: 미션의 능력치 → 게임 참조 맵. 미션이 없으면 NotFoundError.
func (p *Provider) GamesForMission(ctx context.Context, missionID string) (map[model.Ability]string, error) {
	m, err := p.Mission(ctx, missionID)
	if err != nil {
		return nil, err
	}
	return m.Games, nil
}

// Game: 게임 정의를 조회한다. 없으면 NotFoundError.
func (p *Provider) Game(ctx context.Context, ref string) (Game, error) {
	c, err := p.Snapshot(ctx)
	if err != nil {
		return Game{}, err
	}
	g, ok := c.Game(ref)
	if !ok {
		return Game{}, serrors.NotFoundError{Resource: "game", ID: strings.TrimSpace(ref)}
	}
	return g, nil
}

// AbilityWeightRatios: 게임의 능력치별 비중. 게임이 없으면 NotFoundError.
func (p *Provider) AbilityWeightRatios(ctx context.Context, ref string) (map[model.Ability]float64, error) {
	g, err := p.Game(ctx, ref)
	if err != nil {
		return nil, err
	}
	return g.Ratios(), nil
}
