package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	commonconfig "github.com/park285/spycard-go/internal/common/config"
)

// ConfigLoader: 설정을 로드하는 함수 타입
type ConfigLoader[C any] func() (*C, error)

// LogSettings: 설정에서 추출한 로깅 관련 값입니다.
type LogSettings struct {
	Log        commonconfig.LogConfig
	EnableOTel bool // trace_id/span_id 로그 상관관계 활성화
}

// LogSettingsGetter: 설정에서 로깅 설정을 추출하는 함수 타입
type LogSettingsGetter[C any] func(*C) LogSettings

// AppInitializer: 애플리케이션 초기화 함수 타입 (ServerApp과 정리 함수 반환)
type AppInitializer[C any] func(context.Context, *C, *slog.Logger) (*ServerApp, func(), error)

// RunEntrypoint: 서비스 프로세스의 공통 시작점.
// .env 로드, 설정 로드, 로거 설정, 앱 초기화 및 실행을 담당합니다.
func RunEntrypoint[C any](
	ctx context.Context,
	logger *slog.Logger,
	logFileName string,
	loadConfig ConfigLoader[C],
	getLogSettings LogSettingsGetter[C],
	initialize AppInitializer[C],
) (*slog.Logger, error) {
	if err := commonconfig.LoadDotenvIfPresent(); err != nil {
		return logger, fmt.Errorf("load dotenv failed: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return logger, fmt.Errorf("load config failed: %w", err)
	}

	var settings LogSettings
	if getLogSettings != nil {
		settings = getLogSettings(cfg)
	}

	if strings.TrimSpace(settings.Log.Dir) != "" {
		fileLogger, logErr := EnableFileLoggingWithOTel(settings.Log, logFileName, settings.EnableOTel)
		if logErr != nil {
			return logger, fmt.Errorf("enable file logging failed: %w", logErr)
		}
		if fileLogger != nil {
			logger = fileLogger
		}
	} else if settings.EnableOTel {
		logger = slog.New(NewOTelHandler(logger.Handler()))
		slog.SetDefault(logger)
	}

	serverApp, cleanup, err := initialize(ctx, cfg, logger)
	if err != nil {
		return logger, fmt.Errorf("initialize app failed: %w", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	if err := serverApp.Run(ctx); err != nil {
		return logger, fmt.Errorf("run app failed: %w", err)
	}
	return logger, nil
}
