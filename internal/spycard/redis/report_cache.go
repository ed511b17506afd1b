package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valkey-io/valkey-go"

	"github.com/park285/spycard-go/internal/common/valkeyx"
	"github.com/park285/spycard-go/internal/spycard/model"
)

// ReportCache: 기록 기반 능력치 리포트를 플레이어 단위로 캐시한다. ttl 이 0 이하면 비활성이다.
type ReportCache struct {
	client valkey.Client
	logger *slog.Logger
	ttl    time.Duration
}

// NewReportCache: 새로운 ReportCache 인스턴스를 생성합니다.
func NewReportCache(client valkey.Client, logger *slog.Logger, ttl time.Duration) *ReportCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportCache{client: client, logger: logger, ttl: ttl}
}

func (c *ReportCache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get: 캐시된 리포트를 조회합니다. (없으면 nil 반환)
func (c *ReportCache) Get(ctx context.Context, playerID uint64) (*model.AbilityReport, error) {
	if !c.enabled() {
		return nil, nil
	}
	cmd := c.client.B().Get().Key(abilityReportKey(playerID)).Build()
	raw, err := c.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkeyx.IsNil(err) {
			return nil, nil
		}
		return nil, valkeyx.WrapRedisError("report_cache_get", err)
	}

	var report model.AbilityReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		c.logger.Warn("report_cache_decode_failed", "player_id", playerID, "err", err)
		return nil, nil
	}
	return &report, nil
}

// Set: 리포트를 TTL 과 함께 저장합니다.
func (c *ReportCache) Set(ctx context.Context, playerID uint64, report model.AbilityReport) error {
	if !c.enabled() {
		return nil
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report failed: %w", err)
	}
	cmd := c.client.B().Set().Key(abilityReportKey(playerID)).Value(string(payload)).Ex(c.ttl).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return valkeyx.WrapRedisError("report_cache_set", err)
	}
	return nil
}

// Invalidate: 플레이어의 결과나 미션 기록이 바뀌었을 때 캐시를 지운다.
func (c *ReportCache) Invalidate(ctx context.Context, playerID uint64) error {
	if !c.enabled() {
		return nil
	}
	cmd := c.client.B().Del().Key(abilityReportKey(playerID)).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return valkeyx.WrapRedisError("report_cache_delete", err)
	}
	return nil
}
