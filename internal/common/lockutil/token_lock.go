// Package lockutil 는 토큰 기반 Valkey 분산 락 헬퍼를 제공한다.
// 획득은 SET NX PX, 해제는 토큰이 일치할 때만 DEL 하는 Lua 스크립트로 수행한다.
package lockutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	cerrors "github.com/park285/spycard-go/internal/common/errors"
	"github.com/park285/spycard-go/internal/common/valkeyx"
)

const releaseScriptSource = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

var releaseScript = valkey.NewLuaScript(releaseScriptSource)

// NewToken: 락 소유자 식별을 위한 임의 토큰을 생성합니다.
func NewToken() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("rand read failed: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}

// TryAcquire: 토큰 락 획득을 한 번 시도합니다. (SET NX PX)
// 다른 소유자가 락을 잡고 있으면 false, nil 을 반환합니다.
func TryAcquire(ctx context.Context, client valkey.Client, lockKey string, token string, ttl time.Duration) (bool, error) {
	lockKey = strings.TrimSpace(lockKey)
	if lockKey == "" {
		return false, fmt.Errorf("lock key is empty")
	}
	if ttl <= 0 {
		return false, fmt.Errorf("invalid lock ttl: %s", ttl)
	}

	cmd := client.B().Set().Key(lockKey).Value(token).Nx().Px(ttl).Build()
	if err := client.Do(ctx, cmd).Error(); err != nil {
		if valkeyx.IsNil(err) {
			return false, nil
		}
		return false, cerrors.RedisError{Operation: "lock_acquire", Err: err}
	}
	return true, nil
}

// Release: 토큰이 일치할 때만 락을 해제합니다. 이미 만료되어 다른 소유자가 잡은 락은 건드리지 않습니다.
// 실제로 해제했으면 true 를 반환합니다.
func Release(ctx context.Context, client valkey.Client, lockKey string, token string) (bool, error) {
	lockKey = strings.TrimSpace(lockKey)
	if lockKey == "" {
		return false, fmt.Errorf("lock key is empty")
	}

	deleted, err := releaseScript.Exec(ctx, client, []string{lockKey}, []string{token}).AsInt64()
	if err != nil {
		return false, cerrors.RedisError{Operation: "lock_release", Err: err}
	}
	return deleted == 1, nil
}
