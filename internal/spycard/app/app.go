package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/park285/spycard-go/internal/common/bootstrap"
	commonconfig "github.com/park285/spycard-go/internal/common/config"
	"github.com/park285/spycard-go/internal/common/dbutil"
	"github.com/park285/spycard-go/internal/common/di"
	"github.com/park285/spycard-go/internal/common/health"
	"github.com/park285/spycard-go/internal/common/httpclient"
	"github.com/park285/spycard-go/internal/common/httpserver"
	"github.com/park285/spycard-go/internal/common/messageprovider"
	"github.com/park285/spycard-go/internal/common/processinglock"
	"github.com/park285/spycard-go/internal/common/telemetry"
	"github.com/park285/spycard-go/internal/common/valkeyx"
	sassets "github.com/park285/spycard-go/internal/spycard/assets"
	"github.com/park285/spycard-go/internal/spycard/catalog"
	sconfig "github.com/park285/spycard-go/internal/spycard/config"
	shttpapi "github.com/park285/spycard-go/internal/spycard/httpapi"
	"github.com/park285/spycard-go/internal/spycard/judge"
	smessages "github.com/park285/spycard-go/internal/spycard/messages"
	qredis "github.com/park285/spycard-go/internal/spycard/redis"
	srepo "github.com/park285/spycard-go/internal/spycard/repository"
	"github.com/park285/spycard-go/internal/spycard/scoring"
	ssvc "github.com/park285/spycard-go/internal/spycard/service"
)

type spyCardStores struct {
	profileLock    *qredis.ProfileLock
	processingLock *processinglock.Service
	reportCache    *qredis.ReportCache
}

func newSpyCardStores(cfg *sconfig.Config, client di.DataValkeyClient, logger *slog.Logger) *spyCardStores {
	return &spyCardStores{
		profileLock:    qredis.NewProfileLock(client.Client, logger, cfg.Locks.ProfileLockTTL, cfg.Locks.ProfileLockMaxWait),
		processingLock: qredis.NewMissionProcessingLock(client.Client, logger, cfg.Locks.ProcessingTTL),
		reportCache:    qredis.NewReportCache(client.Client, logger, cfg.Report.CacheTTL),
	}
}

type spyCardServices struct {
	players    *ssvc.PlayerService
	profiles   *ssvc.ProfileService
	aggregator *ssvc.MissionScoreAggregator
	games      *ssvc.GameScoringService
	reports    *ssvc.ReportService
}

func newSpyCardServices(
	cfg *sconfig.Config,
	repo *srepo.Repository,
	catalogProvider *catalog.Provider,
	formula *scoring.Formula,
	analyzer judge.Analyzer,
	stores *spyCardStores,
	metrics *ssvc.Metrics,
	logger *slog.Logger,
) *spyCardServices {
	profiles := ssvc.NewProfileService(repo, stores.profileLock, metrics, cfg.Locks.ProfileUpdateRetries, logger)
	return &spyCardServices{
		players:    ssvc.NewPlayerService(repo, catalogProvider, logger),
		profiles:   profiles,
		aggregator: ssvc.NewMissionScoreAggregator(repo, profiles, stores.processingLock, stores.reportCache, metrics, logger),
		games:      ssvc.NewGameScoringService(repo, catalogProvider, formula, analyzer, stores.reportCache, metrics, logger),
		reports:    ssvc.NewReportService(repo, catalogProvider, stores.reportCache, logger),
	}
}

func newSpyCardTelemetry(ctx context.Context, cfg *sconfig.Config, logger *slog.Logger) (*telemetry.Provider, func(), error) {
	provider, err := telemetry.NewProvider(ctx, cfg.Telemetry)
	if err != nil {
		return nil, nil, fmt.Errorf("init telemetry failed: %w", err)
	}
	if provider.IsEnabled() {
		logger.Info("telemetry_enabled", "endpoint", cfg.Telemetry.OTLPEndpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := provider.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("telemetry_shutdown_failed", "err", shutdownErr)
		}
	}
	return provider, cleanup, nil
}

func newSpyCardDataRedis(
	ctx context.Context,
	cfg *sconfig.Config,
	logger *slog.Logger,
) (di.DataValkeyClient, func(), error) {
	client, closeFn, err := bootstrap.NewAndPingDataValkeyClient(ctx, cfg.Redis, logger)
	if err != nil {
		return di.DataValkeyClient{}, nil, fmt.Errorf("init valkey failed: %w", err)
	}
	return client, closeFn, nil
}

func newSpyCardMessageProvider() (*messageprovider.Provider, error) {
	provider, err := messageprovider.NewFromYAMLAtPath(sassets.MessagesYAML, smessages.RootKey)
	if err != nil {
		return nil, fmt.Errorf("load messages failed: %w", err)
	}
	if err := provider.Require(smessages.All()...); err != nil {
		return nil, fmt.Errorf("load messages failed: %w", err)
	}
	return provider, nil
}

func newSpyCardDB(
	ctx context.Context,
	cfg *sconfig.Config,
	logger *slog.Logger,
) (*gorm.DB, func(), error) {
	db, sqlDB, err := dbutil.OpenWithRetry(ctx, func(ctx context.Context) (*gorm.DB, *sql.DB, error) {
		return openDatabase(ctx, cfg.Database)
	}, dbutil.DefaultRetryConfig(), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open database failed: %w", err)
	}

	logger.Info("database_opened", "driver", cfg.Database.Driver, "schema", cfg.Database.Schema)
	closeFn := func() {
		if closeErr := sqlDB.Close(); closeErr != nil {
			logger.Warn("database_close_failed", "err", closeErr)
		}
	}
	return db, closeFn, nil
}

func newSpyCardRepository(ctx context.Context, db *gorm.DB) (*srepo.Repository, error) {
	repo := srepo.New(db)
	if err := repo.AutoMigrate(ctx); err != nil {
		return nil, fmt.Errorf("auto migrate failed: %w", err)
	}
	return repo, nil
}

func newSpyCardCatalog(ctx context.Context, cfg *sconfig.Config, logger *slog.Logger) (*catalog.Provider, error) {
	load := catalog.StaticLoader(sassets.DefaultCatalogYAML)
	if strings.TrimSpace(cfg.Catalog.Path) != "" {
		load = catalog.FileLoader(cfg.Catalog.Path)
	}
	provider := catalog.NewProvider(load, cfg.Catalog.RefreshTTL, logger)
	if _, err := provider.Snapshot(ctx); err != nil {
		return nil, fmt.Errorf("load catalog failed: %w", err)
	}
	return provider, nil
}

func newSpyCardFormula(cfg *sconfig.Config) (*scoring.Formula, error) {
	formula, err := scoring.NewFormula(cfg.Scoring)
	if err != nil {
		return nil, fmt.Errorf("create score formula failed: %w", err)
	}
	return formula, nil
}

// newSpyCardJudge: API 키가 없으면 nil 판정기를 돌려준다. judged 게임 채점만 실패하고 나머지는 그대로 동작한다.
func newSpyCardJudge(
	ctx context.Context,
	cfg *sconfig.Config,
	msgProvider *messageprovider.Provider,
	logger *slog.Logger,
) (judge.Analyzer, error) {
	if !cfg.Judge.Enabled() {
		logger.Warn("judge_disabled", "reason", "missing api key")
		return nil, nil
	}

	httpClient := httpclient.New(httpclient.Config{
		Timeout:        cfg.Judge.Timeout,
		ConnectTimeout: commonconfig.HTTPConnectTimeoutSeconds * time.Second,
		Traced:         cfg.Telemetry.Enabled,
	})
	gemini, err := judge.NewGeminiAnalyzer(ctx, cfg.Judge, httpClient, msgProvider, logger)
	if err != nil {
		if errors.Is(err, judge.ErrMissingAPIKey) {
			return nil, nil
		}
		return nil, fmt.Errorf("create judge failed: %w", err)
	}
	return judge.NewCachedAnalyzer(gemini, cfg.Judge.CacheMaxEntries, cfg.Judge.CacheTTL, logger), nil
}

func newSpyCardMetricsRegistry() di.MetricsRegistry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return di.MetricsRegistry{Registry: registry}
}

func newSpyCardServiceMetrics(registry di.MetricsRegistry) *ssvc.Metrics {
	return ssvc.NewMetrics(registry.Registry)
}

func newSpyCardHTTPMux(
	cfg *sconfig.Config,
	services *spyCardServices,
	catalogProvider *catalog.Provider,
	repo *srepo.Repository,
	dataValkey di.DataValkeyClient,
	registry di.MetricsRegistry,
	msgProvider *messageprovider.Provider,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()
	shttpapi.Register(mux, shttpapi.Deps{
		Players:    services.players,
		Aggregator: services.aggregator,
		Games:      services.games,
		Profiles:   services.profiles,
		Reports:    services.reports,
		Catalog:    catalogProvider,
		Messages:   msgProvider,
		Registry:   registry.Registry,
		HealthChecks: map[string]health.CheckFunc{
			"database": repo.Ping,
			"valkey": func(ctx context.Context) error {
				return valkeyx.Ping(ctx, dataValkey.Client)
			},
		},
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		Logger:       logger,
	})
	return mux
}

func newSpyCardHTTPServer(cfg *sconfig.Config, mux *http.ServeMux) *http.Server {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	opts := httpserver.ServerOptions{
		UseH2C:            true,
		ReadHeaderTimeout: cfg.ServerTuning.ReadHeaderTimeout,
		IdleTimeout:       cfg.ServerTuning.IdleTimeout,
		MaxHeaderBytes:    cfg.ServerTuning.MaxHeaderBytes,
	}
	if cfg.Telemetry.Enabled {
		opts.TraceOperation = sconfig.ServiceName
	}
	return httpserver.NewServer(addr, mux, opts)
}

// newSpyCardServerApp: tracer 는 서버보다 먼저 초기화되어야 하므로 인자로만 받는다.
func newSpyCardServerApp(
	cfg *sconfig.Config,
	logger *slog.Logger,
	server *http.Server,
	catalogProvider *catalog.Provider,
	_ *telemetry.Provider,
) *bootstrap.ServerApp {
	return bootstrap.NewServerApp(
		sconfig.ServiceName,
		logger,
		server,
		10*time.Second,
		bootstrap.BackgroundTask{
			Name:        "catalog_refresher",
			ErrorLogKey: "catalog_refresher_failed",
			Run: func(ctx context.Context) error {
				return catalogProvider.RunRefresher(ctx, cfg.Catalog.RefreshTTL)
			},
		},
	)
}

// openDatabase 는 드라이버에 맞게 gorm 연결을 열고 ping 한다.
// postgres 에서 Schema 가 있으면 스키마를 만들고 테이블 접두사로 건다.
func openDatabase(ctx context.Context, cfg sconfig.DatabaseConfig) (*gorm.DB, *sql.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case sconfig.DBDriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	case sconfig.DBDriverPostgres, "":
		host := cfg.Host
		if strings.TrimSpace(cfg.SocketPath) != "" {
			host = cfg.SocketPath
		}
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.Name,
			cfg.SSLMode,
		)
		dialector = postgres.Open(dsn)
		if cfg.Schema != "" {
			gormCfg.NamingStrategy = schema.NamingStrategy{TablePrefix: cfg.Schema + "."}
		}
	default:
		return nil, nil, fmt.Errorf("unsupported db driver: %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("gorm open failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("get sql db failed: %w", err)
	}
	if cfg.Driver == sconfig.DBDriverSQLite {
		// sqlite 는 단일 writer 라 커넥션을 하나로 묶는다.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(commonconfig.DBMaxOpenConns)
		sqlDB.SetMaxIdleConns(commonconfig.DBMaxIdleConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, commonconfig.DBPingTimeoutSeconds*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("db ping failed: %w", err)
	}

	if cfg.Driver != sconfig.DBDriverSQLite && cfg.Schema != "" {
		if err := db.WithContext(ctx).Exec(`CREATE SCHEMA IF NOT EXISTS "` + cfg.Schema + `"`).Error; err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("create schema failed: %w", err)
		}
	}

	return db, sqlDB, nil
}
