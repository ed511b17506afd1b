// Package config 는 Spy Card 서비스 설정을 환경 변수에서 읽어온다.
package config

import (
	"fmt"
	"strings"
	"time"

	commonconfig "github.com/park285/spycard-go/internal/common/config"
	"github.com/park285/spycard-go/internal/spycard/model"
	"github.com/park285/spycard-go/internal/spycard/scoring"
)

// ServerConfig: HTTP 서버 설정 alias
type ServerConfig = commonconfig.ServerConfig

// ServerTuningConfig: 서버 튜닝 설정 (Timeouts, Limits 등) alias
type ServerTuningConfig = commonconfig.ServerTuningConfig

// RedisConfig: Valkey 연결 설정 (락, 리포트 캐시) alias
type RedisConfig = commonconfig.RedisConfig

// LogConfig: 로깅 설정 alias
type LogConfig = commonconfig.LogConfig

// DatabaseConfig: 관계형 저장소 설정.
// Schema 는 시작 시 한 번 정해지는 단일 네임스페이스이며 gorm 테이블 접두사로 적용된다.
type DatabaseConfig struct {
	Driver     string // postgres | sqlite
	Host       string
	Port       int
	SocketPath string // UDS 경로 (비어있으면 TCP 사용)
	Name       string
	User       string
	Password   string
	SSLMode    string
	Schema     string
	SQLitePath string
}

// CatalogConfig: 미션/게임 카탈로그 설정
type CatalogConfig struct {
	Path       string // 비어있으면 임베드된 기본 카탈로그
	RefreshTTL time.Duration
}

// JudgeConfig: AI 판정(Gemini) 설정
type JudgeConfig struct {
	APIKey          string
	Model           string
	Timeout         time.Duration
	Temperature     float64
	CacheTTL        time.Duration
	CacheMaxEntries int
}

// Enabled 는 API 키가 있어 판정기를 만들 수 있는지 확인한다.
func (c JudgeConfig) Enabled() bool { return strings.TrimSpace(c.APIKey) != "" }

// LockConfig: 프로필 락/미션 처리 락 설정
type LockConfig struct {
	ProfileLockTTL       time.Duration
	ProfileLockMaxWait   time.Duration
	ProfileUpdateRetries int
	ProcessingTTL        time.Duration
}

// ReportConfig: 능력치 리포트 캐시 설정
type ReportConfig struct {
	CacheTTL time.Duration
}

// HTTPConfig: API 요청 제한
type HTTPConfig struct {
	MaxBodyBytes int64
}

// Config: 전체 애플리케이션 설정 구조체
type Config struct {
	Server       ServerConfig
	ServerTuning ServerTuningConfig
	Redis        RedisConfig
	Database     DatabaseConfig
	Log          LogConfig
	Telemetry    commonconfig.TelemetryConfig
	Scoring      scoring.Config
	Catalog      CatalogConfig
	Judge        JudgeConfig
	Locks        LockConfig
	Report       ReportConfig
	HTTP         HTTPConfig
}

// LoadFromEnv: 환경 변수로부터 전체 애플리케이션 설정을 로드합니다.
func LoadFromEnv() (*Config, error) {
	server, err := commonconfig.ReadServerConfigFromEnv(DefaultServerPort)
	if err != nil {
		return nil, fmt.Errorf("read server config failed: %w", err)
	}
	serverTuning, err := commonconfig.ReadServerTuningConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("read server tuning config failed: %w", err)
	}
	redisCfg, err := readRedisConfig()
	if err != nil {
		return nil, err
	}
	database, err := readDatabaseConfig()
	if err != nil {
		return nil, err
	}
	log, err := commonconfig.ReadLogConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("read log config failed: %w", err)
	}
	telemetry, err := commonconfig.ReadTelemetryConfigFromEnv(ServiceName)
	if err != nil {
		return nil, fmt.Errorf("read telemetry config: %w", err)
	}
	scoringCfg, err := readScoringConfig()
	if err != nil {
		return nil, err
	}
	catalog, err := readCatalogConfig()
	if err != nil {
		return nil, err
	}
	judge, err := readJudgeConfig()
	if err != nil {
		return nil, err
	}
	locks, err := readLockConfig()
	if err != nil {
		return nil, err
	}
	report, err := readReportConfig()
	if err != nil {
		return nil, err
	}
	httpCfg, err := readHTTPConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:       server,
		ServerTuning: serverTuning,
		Redis:        redisCfg,
		Database:     database,
		Log:          log,
		Telemetry:    telemetry,
		Scoring:      scoringCfg,
		Catalog:      catalog,
		Judge:        judge,
		Locks:        locks,
		Report:       report,
		HTTP:         httpCfg,
	}, nil
}

func readRedisConfig() (RedisConfig, error) {
	cfg, err := commonconfig.ReadRedisConfigFromEnv(
		[]string{"SPYCARD_REDIS_HOST", "CACHE_HOST", "REDIS_HOST"},
		[]string{"SPYCARD_REDIS_PORT", "CACHE_PORT", "REDIS_PORT"},
		[]string{"SPYCARD_REDIS_PASSWORD", "CACHE_PASSWORD", "REDIS_PASSWORD"},
		[]string{"SPYCARD_REDIS_SOCKET_PATH", "CACHE_SOCKET_PATH", "REDIS_SOCKET_PATH"},
		"localhost",
		6379,
		"",
	)
	if err != nil {
		return RedisConfig{}, fmt.Errorf("read redis config failed: %w", err)
	}
	return cfg, nil
}

func readDatabaseConfig() (DatabaseConfig, error) {
	driver := strings.ToLower(commonconfig.StringFromEnv("DB_DRIVER", DBDriverPostgres))
	if driver != DBDriverPostgres && driver != DBDriverSQLite {
		return DatabaseConfig{}, fmt.Errorf("invalid DB_DRIVER: %q", driver)
	}

	port, err := commonconfig.IntFromEnv("DB_PORT", 5432)
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("read DB_PORT failed: %w", err)
	}

	schema := strings.TrimSpace(commonconfig.StringFromEnvFirstNonEmpty([]string{"SPYCARD_DB_SCHEMA", "DB_SCHEMA"}, ""))
	if strings.ContainsAny(schema, ". \"") {
		return DatabaseConfig{}, fmt.Errorf("invalid DB_SCHEMA: %q", schema)
	}

	return DatabaseConfig{
		Driver:     driver,
		Host:       commonconfig.StringFromEnv("DB_HOST", "localhost"),
		Port:       port,
		SocketPath: commonconfig.StringFromEnv("DB_SOCKET_PATH", ""),
		Name:       commonconfig.StringFromEnv("DB_NAME", "spycard"),
		User:       commonconfig.StringFromEnv("DB_USER", "spycard_app"),
		Password:   commonconfig.StringFromEnv("DB_PASSWORD", ""),
		SSLMode:    commonconfig.StringFromEnv("DB_SSLMODE", "disable"),
		Schema:     schema,
		SQLitePath: commonconfig.StringFromEnv("DB_SQLITE_PATH", "spycard.db"),
	}, nil
}

func readScoringConfig() (scoring.Config, error) {
	cfg := scoring.DefaultConfig()

	for _, d := range []model.Difficulty{model.DifficultyEasy, model.DifficultyNormal, model.DifficultyHard} {
		m := cfg.Multipliers[d]
		prefix := "SCORING_" + strings.ToUpper(string(d))

		win, err := commonconfig.Float64FromEnv(prefix+"_WIN_MULTIPLIER", m.Win)
		if err != nil {
			return scoring.Config{}, fmt.Errorf("read %s_WIN_MULTIPLIER failed: %w", prefix, err)
		}
		loss, err := commonconfig.Float64FromEnv(prefix+"_LOSS_MULTIPLIER", m.Loss)
		if err != nil {
			return scoring.Config{}, fmt.Errorf("read %s_LOSS_MULTIPLIER failed: %w", prefix, err)
		}
		cfg.Multipliers[d] = scoring.Multiplier{Win: win, Loss: loss}
	}

	minScore, err := commonconfig.IntFromEnv("SCORING_SCORE_MIN", cfg.ScoreMin)
	if err != nil {
		return scoring.Config{}, fmt.Errorf("read SCORING_SCORE_MIN failed: %w", err)
	}
	maxScore, err := commonconfig.IntFromEnv("SCORING_SCORE_MAX", cfg.ScoreMax)
	if err != nil {
		return scoring.Config{}, fmt.Errorf("read SCORING_SCORE_MAX failed: %w", err)
	}
	cfg.ScoreMin = minScore
	cfg.ScoreMax = maxScore

	if err := cfg.Validate(); err != nil {
		return scoring.Config{}, fmt.Errorf("invalid scoring config: %w", err)
	}
	return cfg, nil
}

func readCatalogConfig() (CatalogConfig, error) {
	ttl, err := commonconfig.DurationSecondsFromEnv("CATALOG_REFRESH_SECONDS", 300)
	if err != nil {
		return CatalogConfig{}, fmt.Errorf("read CATALOG_REFRESH_SECONDS failed: %w", err)
	}
	return CatalogConfig{
		Path:       commonconfig.StringFromEnvFirstNonEmpty([]string{"SPYCARD_CATALOG_PATH", "CATALOG_PATH"}, ""),
		RefreshTTL: ttl,
	}, nil
}

func readJudgeConfig() (JudgeConfig, error) {
	timeout, err := commonconfig.DurationSecondsFromEnv("JUDGE_TIMEOUT_SECONDS", commonconfig.AITimeoutSeconds)
	if err != nil {
		return JudgeConfig{}, fmt.Errorf("read JUDGE_TIMEOUT_SECONDS failed: %w", err)
	}
	temperature, err := commonconfig.Float64FromEnv("JUDGE_TEMPERATURE", 0.2)
	if err != nil {
		return JudgeConfig{}, fmt.Errorf("read JUDGE_TEMPERATURE failed: %w", err)
	}
	if temperature < 0 || temperature > 2 {
		return JudgeConfig{}, fmt.Errorf("invalid JUDGE_TEMPERATURE: %v", temperature)
	}
	cacheTTL, err := commonconfig.DurationSecondsFromEnv("JUDGE_CACHE_TTL_SECONDS", 600)
	if err != nil {
		return JudgeConfig{}, fmt.Errorf("read JUDGE_CACHE_TTL_SECONDS failed: %w", err)
	}
	cacheSize, err := commonconfig.IntFromEnv("JUDGE_CACHE_MAX_ENTRIES", 512)
	if err != nil {
		return JudgeConfig{}, fmt.Errorf("read JUDGE_CACHE_MAX_ENTRIES failed: %w", err)
	}

	return JudgeConfig{
		APIKey:          commonconfig.StringFromEnvFirstNonEmpty([]string{"JUDGE_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"}, ""),
		Model:           commonconfig.StringFromEnv("JUDGE_MODEL", DefaultJudgeModel),
		Timeout:         timeout,
		Temperature:     temperature,
		CacheTTL:        cacheTTL,
		CacheMaxEntries: cacheSize,
	}, nil
}

func readLockConfig() (LockConfig, error) {
	lockTTL, err := commonconfig.DurationMillisFromEnv("PROFILE_LOCK_TTL_MS", 5000)
	if err != nil {
		return LockConfig{}, fmt.Errorf("read PROFILE_LOCK_TTL_MS failed: %w", err)
	}
	maxWait, err := commonconfig.DurationMillisFromEnv("PROFILE_LOCK_MAX_WAIT_MS", 3000)
	if err != nil {
		return LockConfig{}, fmt.Errorf("read PROFILE_LOCK_MAX_WAIT_MS failed: %w", err)
	}
	retries, err := commonconfig.IntFromEnv("PROFILE_UPDATE_RETRIES", 3)
	if err != nil {
		return LockConfig{}, fmt.Errorf("read PROFILE_UPDATE_RETRIES failed: %w", err)
	}
	if retries <= 0 {
		return LockConfig{}, fmt.Errorf("invalid PROFILE_UPDATE_RETRIES: %d", retries)
	}
	processingTTL, err := commonconfig.DurationSecondsFromEnv("MISSION_COMPLETE_LOCK_TTL_SECONDS", 60)
	if err != nil {
		return LockConfig{}, fmt.Errorf("read MISSION_COMPLETE_LOCK_TTL_SECONDS failed: %w", err)
	}
	if lockTTL <= 0 || processingTTL <= 0 {
		return LockConfig{}, fmt.Errorf("lock ttl must be positive")
	}

	return LockConfig{
		ProfileLockTTL:       lockTTL,
		ProfileLockMaxWait:   maxWait,
		ProfileUpdateRetries: retries,
		ProcessingTTL:        processingTTL,
	}, nil
}

func readReportConfig() (ReportConfig, error) {
	ttl, err := commonconfig.DurationSecondsFromEnv("REPORT_CACHE_TTL_SECONDS", 300)
	if err != nil {
		return ReportConfig{}, fmt.Errorf("read REPORT_CACHE_TTL_SECONDS failed: %w", err)
	}
	return ReportConfig{CacheTTL: ttl}, nil
}

func readHTTPConfig() (HTTPConfig, error) {
	maxBody, err := commonconfig.Int64FromEnv("HTTP_MAX_BODY_BYTES", 256*1024)
	if err != nil {
		return HTTPConfig{}, fmt.Errorf("read HTTP_MAX_BODY_BYTES failed: %w", err)
	}
	if maxBody <= 0 {
		return HTTPConfig{}, fmt.Errorf("invalid HTTP_MAX_BODY_BYTES: %d", maxBody)
	}
	return HTTPConfig{MaxBodyBytes: maxBody}, nil
}
