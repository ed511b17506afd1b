// Package processinglock 는 Valkey SET NX 기반의 "처리 중" 플래그를 제공한다.
// 같은 대상(미션 등)에 대한 중복 처리 요청을 거절하는 용도이며, 소유자 토큰은 두지 않는다.
package processinglock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"

	cerrors "github.com/park285/spycard-go/internal/common/errors"
	"github.com/park285/spycard-go/internal/common/valkeyx"
)

// KeyFunc: 대상 식별자를 Valkey 키로 변환합니다.
type KeyFunc func(id string) string

// ErrAlreadyProcessing: 이미 해당 대상에 대한 처리가 진행 중일 때 반환되는 에러
var ErrAlreadyProcessing = errors.New("already processing")

// Service: Valkey를 사용하여 동시 처리를 제어하는 락 서비스
type Service struct {
	client  valkey.Client
	logger  *slog.Logger
	keyFunc KeyFunc
	ttl     time.Duration
}

// New: 새로운 Service 인스턴스를 생성합니다.
func New(client valkey.Client, logger *slog.Logger, keyFunc KeyFunc, ttl time.Duration) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:  client,
		logger:  logger,
		keyFunc: keyFunc,
		ttl:     ttl,
	}
}

// Start: 처리 락을 획득합니다. (SET NX EX)
// 이미 락이 존재하면 ErrAlreadyProcessing 을 반환합니다.
func (s *Service) Start(ctx context.Context, id string) error {
	key := s.keyFunc(id)
	cmd := s.client.B().Set().Key(key).Value("1").Nx().Ex(s.ttl).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		if valkeyx.IsNil(err) {
			return ErrAlreadyProcessing
		}
		return fmt.Errorf("set processing lock failed: %w", err)
	}
	s.logger.Debug("processing_started", "id", id)
	return nil
}

// Finish: 처리 락을 해제합니다.
func (s *Service) Finish(ctx context.Context, id string) error {
	key := s.keyFunc(id)
	cmd := s.client.B().Del().Key(key).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("delete processing lock failed: %w", err)
	}
	s.logger.Debug("processing_finished", "id", id)
	return nil
}

// IsProcessing: 현재 처리가 진행 중인지(락이 존재하는지) 확인합니다.
func (s *Service) IsProcessing(ctx context.Context, id string) (bool, error) {
	key := s.keyFunc(id)
	cmd := s.client.B().Exists().Key(key).Build()
	n, err := s.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return false, fmt.Errorf("check processing lock exists failed: %w", err)
	}
	return n > 0, nil
}

// Run: 락을 잡은 상태로 fn 을 실행하고 끝나면 해제합니다.
// 이미 처리 중이면 fn 을 실행하지 않고 LockError 를 반환합니다.
// 해제는 요청 컨텍스트 취소와 무관하게 수행한다.
func (s *Service) Run(ctx context.Context, id string, fn func(ctx context.Context) error) error {
	if err := WrapStartProcessingError(s.keyFunc(id), s.Start(ctx, id)); err != nil {
		return err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
		defer cancel()
		if err := s.Finish(releaseCtx, id); err != nil {
			s.logger.Warn("processing_finish_failed", "id", id, "err", err)
		}
	}()
	return fn(ctx)
}

func WrapStartProcessingError(key string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAlreadyProcessing) {
		return cerrors.LockError{Key: key, Description: "already processing"}
	}
	return cerrors.RedisError{Operation: "processing_start", Err: err}
}

func WrapIsProcessingError(err error) error {
	if err == nil {
		return nil
	}
	return cerrors.RedisError{Operation: "processing_exists", Err: err}
}
