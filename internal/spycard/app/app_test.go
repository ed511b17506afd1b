//go:build !wireinject

package app

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/park285/spycard-go/internal/common/testhelper"
	sconfig "github.com/park285/spycard-go/internal/spycard/config"
	smessages "github.com/park285/spycard-go/internal/spycard/messages"
	"github.com/park285/spycard-go/internal/spycard/scoring"
)

func TestOpenDatabase_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := sconfig.DatabaseConfig{
		Driver:     sconfig.DBDriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "spycard.db"),
	}

	db, sqlDB, err := openDatabase(ctx, cfg)
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo, err := newSpyCardRepository(ctx, db)
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestOpenDatabase_UnsupportedDriver(t *testing.T) {
	_, _, err := openDatabase(context.Background(), sconfig.DatabaseConfig{Driver: "mysql"})
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestNewSpyCardJudge_DisabledWithoutKey(t *testing.T) {
	cfg := &sconfig.Config{}
	analyzer, err := newSpyCardJudge(context.Background(), cfg, nil, testhelper.DiscardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analyzer != nil {
		t.Fatalf("expected nil analyzer, got %T", analyzer)
	}
}

func TestNewSpyCardCatalog_Embedded(t *testing.T) {
	provider, err := newSpyCardCatalog(context.Background(), &sconfig.Config{}, testhelper.DiscardLogger())
	if err != nil {
		t.Fatalf("load embedded catalog failed: %v", err)
	}
	if _, err := provider.Game(context.Background(), "code-breaker"); err != nil {
		t.Fatalf("embedded catalog must contain code-breaker: %v", err)
	}
}

func TestNewSpyCardFormula_InvalidConfig(t *testing.T) {
	cfg := &sconfig.Config{Scoring: scoring.DefaultConfig()}
	cfg.Scoring.ScoreMin = 100
	cfg.Scoring.ScoreMax = 0
	if _, err := newSpyCardFormula(cfg); err == nil {
		t.Fatal("expected error when min > max")
	}
}

func TestNewSpyCardHTTPServer(t *testing.T) {
	cfg := &sconfig.Config{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 40270
	cfg.Telemetry.Enabled = true

	server := newSpyCardHTTPServer(cfg, http.NewServeMux())
	if server.Addr != "127.0.0.1:40270" {
		t.Fatalf("unexpected addr: %s", server.Addr)
	}
	if server.Handler == nil {
		t.Fatal("handler must be set")
	}
}

func TestNewSpyCardMetrics(t *testing.T) {
	registry := newSpyCardMetricsRegistry()
	metrics := newSpyCardServiceMetrics(registry)
	metrics.MissionsCompleted.Inc()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "spycard_missions_completed_total" {
			found = true
		}
	}
	if !found {
		t.Fatal("service metrics must be registered on the registry")
	}
}

func TestNewSpyCardCatalog_MissingFile(t *testing.T) {
	cfg := &sconfig.Config{}
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "absent.yml")
	if _, err := newSpyCardCatalog(context.Background(), cfg, testhelper.DiscardLogger()); err == nil {
		t.Fatal("expected error for missing catalog file")
	}
}

func TestNewSpyCardMessageProvider_RequiresAllKeys(t *testing.T) {
	provider, err := newSpyCardMessageProvider()
	if err != nil {
		t.Fatalf("embedded messages must define every key: %v", err)
	}
	if _, ok := provider.Lookup(smessages.ReportNoScores); !ok {
		t.Fatal("report.no_scores must resolve")
	}
}
