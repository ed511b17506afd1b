package redis

import (
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/park285/spycard-go/internal/common/processinglock"
)

// NewMissionProcessingLock: 미션 완료 중복 실행을 막는 처리 락을 생성합니다.
func NewMissionProcessingLock(client valkey.Client, logger *slog.Logger, ttl time.Duration) *processinglock.Service {
	return processinglock.New(client, logger, missionCompleteKey, ttl)
}
