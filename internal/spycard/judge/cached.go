package judge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/park285/spycard-go/internal/common/cache"
)

// CachedAnalyzer: 같은 경기 데이터에 대한 판정 호출을 합치고 결과를 잠시 보관한다.
// 동시에 들어온 동일 요청은 singleflight 로 한 번만 호출한다. 실패 결과는 캐시하지 않는다.
type CachedAnalyzer struct {
	next   Analyzer
	cache  *cache.TTLLRUCache[map[string]any]
	group  singleflight.Group
	logger *slog.Logger
}

// NewCachedAnalyzer: 새로운 CachedAnalyzer 인스턴스를 생성합니다.
// maxEntries 나 ttl 이 0 이하면 호출 합치기만 하고 보관하지 않는다.
func NewCachedAnalyzer(next Analyzer, maxEntries int, ttl time.Duration, logger *slog.Logger) *CachedAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedAnalyzer{
		next:   next,
		cache:  cache.NewTTLLRUCache[map[string]any](maxEntries, ttl),
		logger: logger,
	}
}

// Analyze: 캐시를 먼저 보고, 없으면 하위 Analyzer 를 호출한다.
func (c *CachedAnalyzer) Analyze(ctx context.Context, req Request) (map[string]any, error) {
	key := requestKey(req)
	if cached, ok := c.cache.Get(key); ok {
		c.logger.Debug("judge_cache_hit", "mission_id", req.MissionID, "game_ref", req.GameRef)
		return cloneScores(cached), nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		result, err := c.next.Analyze(ctx, req)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, cloneScores(result))
		return result, nil
	})
	if err != nil {
		return nil, fmt.Errorf("judge analyze: %w", err)
	}
	if shared {
		c.logger.Debug("judge_call_shared", "mission_id", req.MissionID, "game_ref", req.GameRef)
	}
	return cloneScores(v.(map[string]any)), nil
}

func requestKey(req Request) string {
	h := sha256.New()
	for _, part := range []string{req.MissionID, req.GameRef, req.MissionContext, string(req.Payload)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func cloneScores(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
