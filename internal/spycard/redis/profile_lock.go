package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/valkey-io/valkey-go"

	cerrors "github.com/park285/spycard-go/internal/common/errors"
	"github.com/park285/spycard-go/internal/common/lockutil"
)

const (
	lockRetryInitialDelay = 20 * time.Millisecond
	lockRetryMaxDelay     = 250 * time.Millisecond
	lockReleaseTimeout    = 3 * time.Second
)

var errLockBusy = errors.New("profile lock busy")

// ProfileLock: 사용자별 프로필 쓰기를 직렬화하는 토큰 락
type ProfileLock struct {
	client  valkey.Client
	logger  *slog.Logger
	ttl     time.Duration
	maxWait time.Duration
}

// NewProfileLock: 새로운 ProfileLock 인스턴스를 생성합니다.
// ttl 은 락 만료 시간, maxWait 는 획득 재시도에 쓸 최대 대기 시간이다.
func NewProfileLock(client valkey.Client, logger *slog.Logger, ttl time.Duration, maxWait time.Duration) *ProfileLock {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileLock{
		client:  client,
		logger:  logger,
		ttl:     ttl,
		maxWait: maxWait,
	}
}

// WithLock: 사용자 락을 잡은 상태에서 block 을 실행한다.
// maxWait 안에 락을 얻지 못하면 LockError 를 반환한다.
func (l *ProfileLock) WithLock(ctx context.Context, username string, block func(ctx context.Context) error) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username is empty")
	}

	token, err := lockutil.NewToken()
	if err != nil {
		return fmt.Errorf("generate lock token failed: %w", err)
	}
	key := profileLockKey(username)

	if err := l.acquireWithRetry(ctx, key, token); err != nil {
		if errors.Is(err, errLockBusy) {
			return cerrors.LockError{Key: username, Description: "profile lock busy"}
		}
		return err
	}
	defer l.release(ctx, key, token, username)

	l.logger.Debug("profile_lock_acquired", "username", username)
	return block(ctx)
}

// acquireWithRetry 락 획득을 exponential backoff로 재시도.
// Valkey 호출 자체가 실패하면 즉시 중단한다.
func (l *ProfileLock) acquireWithRetry(ctx context.Context, key string, token string) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = lockRetryInitialDelay
	b.MaxInterval = lockRetryMaxDelay
	b.MaxElapsedTime = l.maxWait

	attempt := 0
	operation := func() error {
		attempt++
		acquired, err := lockutil.TryAcquire(ctx, l.client, key, token, l.ttl)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !acquired {
			return errLockBusy
		}
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("profile lock wait cancelled: %w", ctx.Err())
		}
		return err
	}
	if attempt > 1 {
		l.logger.Debug("profile_lock_acquired_after_retry", "key", key, "attempt", attempt)
	}
	return nil
}

func (l *ProfileLock) release(ctx context.Context, key string, token string, username string) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lockReleaseTimeout)
	defer cancel()

	released, err := lockutil.Release(releaseCtx, l.client, key, token)
	if err != nil {
		l.logger.Warn("profile_lock_release_failed", "username", username, "err", err)
		return
	}
	if !released {
		l.logger.Warn("profile_lock_expired_before_release", "username", username)
	}
}
