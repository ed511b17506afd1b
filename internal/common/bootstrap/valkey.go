package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	commonconfig "github.com/park285/spycard-go/internal/common/config"
	"github.com/park285/spycard-go/internal/common/di"
	"github.com/park285/spycard-go/internal/common/valkeyx"
)

// ToValkeyDataConfig: 데이터 저장소(락, 리포트 캐시) 연결용 Valkey 설정을 생성합니다.
// 락 키는 매 요청마다 상태가 바뀌므로 클라이언트 사이드 캐싱을 끕니다.
func ToValkeyDataConfig(cfg commonconfig.RedisConfig) valkeyx.Config {
	return valkeyx.Config{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DisableCache: true,
	}
}

// NewAndPingDataValkeyClient: Valkey 클라이언트를 생성하고 PING 으로 연결을 확인합니다.
// 연결 실패 시 생성된 리소스를 정리하고 에러를 반환합니다.
func NewAndPingDataValkeyClient(
	ctx context.Context,
	cfg commonconfig.RedisConfig,
	logger *slog.Logger,
) (di.DataValkeyClient, func(), error) {
	client, err := valkeyx.NewClient(ToValkeyDataConfig(cfg))
	if err != nil {
		return di.DataValkeyClient{}, nil, fmt.Errorf("create valkey client failed: %w", err)
	}

	closeFn := func() {
		client.Close()
		logger.Debug("valkey_client_closed")
	}

	if pingErr := valkeyx.Ping(ctx, client); pingErr != nil {
		closeFn()
		return di.DataValkeyClient{}, nil, fmt.Errorf("valkey ping failed: %w", pingErr)
	}

	return di.DataValkeyClient{Client: client}, closeFn, nil
}
