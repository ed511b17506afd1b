// Package httpapi 는 Spy Card 점수 엔진의 HTTP 라우트를 등록한다.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/park285/spycard-go/internal/common/health"
	"github.com/park285/spycard-go/internal/common/messageprovider"
	"github.com/park285/spycard-go/internal/spycard/catalog"
	smessages "github.com/park285/spycard-go/internal/spycard/messages"
	"github.com/park285/spycard-go/internal/spycard/service"
)

const defaultMaxBodyBytes = 1 << 20

// Deps: 핸들러 의존성
type Deps struct {
	Players      *service.PlayerService
	Aggregator   *service.MissionScoreAggregator
	Games        *service.GameScoringService
	Profiles     *service.ProfileService
	Reports      *service.ReportService
	Catalog      *catalog.Provider
	Messages     *messageprovider.Provider
	Registry     *prometheus.Registry
	HealthChecks map[string]health.CheckFunc
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// Register HTTP API 라우트 등록.
func Register(mux *http.ServeMux, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = defaultMaxBodyBytes
	}

	// GET /health - 헬스체크 (DB, Valkey 포함)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		handleHealth(w, r, deps)
	})

	// GET /metrics - Prometheus
	if deps.Registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{Registry: deps.Registry}))
	}

	// 플레이어 / 미션 참가 기록
	mux.HandleFunc("POST /api/spycard/players", func(w http.ResponseWriter, r *http.Request) {
		handleRegisterPlayer(w, r, deps)
	})
	mux.HandleFunc("POST /api/spycard/missions/{missionId}/players/{playerId}", func(w http.ResponseWriter, r *http.Request) {
		handleJoinMission(w, r, deps)
	})
	mux.HandleFunc("GET /api/spycard/missions/{missionId}/players/{playerId}", func(w http.ResponseWriter, r *http.Request) {
		handleGetMissionPlayer(w, r, deps)
	})
	mux.HandleFunc("PUT /api/spycard/missions/{missionId}/players/{playerId}/overall", func(w http.ResponseWriter, r *http.Request) {
		handleUpdateOverall(w, r, deps)
	})
	mux.HandleFunc("PATCH /api/spycard/missions/{missionId}/players/{playerId}/abilities", func(w http.ResponseWriter, r *http.Request) {
		handleUpdateAbilities(w, r, deps)
	})
	mux.HandleFunc("POST /api/spycard/missions/{missionId}/players/{playerId}/games/{gameRef}", func(w http.ResponseWriter, r *http.Request) {
		handleScoreGame(w, r, deps)
	})
	mux.HandleFunc("POST /api/spycard/missions/{missionId}/complete", func(w http.ResponseWriter, r *http.Request) {
		handleCompleteMission(w, r, deps)
	})

	// 프로필 / 리포트
	mux.HandleFunc("POST /api/spycard/profiles/{username}/recalculate", func(w http.ResponseWriter, r *http.Request) {
		handleRecalculate(w, r, deps)
	})
	mux.HandleFunc("GET /api/spycard/profiles/{username}", func(w http.ResponseWriter, r *http.Request) {
		handleGetProfile(w, r, deps)
	})
	mux.HandleFunc("GET /api/spycard/profiles/{username}/abilities", func(w http.ResponseWriter, r *http.Request) {
		handleProfileAbilities(w, r, deps)
	})
	mux.HandleFunc("GET /api/spycard/players/{playerId}/abilities", func(w http.ResponseWriter, r *http.Request) {
		handlePlayerAbilities(w, r, deps)
	})

	// 카탈로그
	mux.HandleFunc("GET /api/spycard/catalog/missions/{missionId}", func(w http.ResponseWriter, r *http.Request) {
		handleCatalogMission(w, r, deps)
	})

	deps.Logger.Info("spycard_http_api_registered")
}

func handleHealth(w http.ResponseWriter, r *http.Request, deps Deps) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := health.Check(ctx, deps.HealthChecks)
	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, resp, deps.Logger)
}

// pathPlayerID: {playerId} 경로 값을 파싱한다. 실패하면 400 을 쓰고 false 를 반환한다.
func pathPlayerID(w http.ResponseWriter, r *http.Request, deps Deps) (uint64, bool) {
	raw := strings.TrimSpace(r.PathValue("playerId"))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondFieldError(w, http.StatusBadRequest, errorCodeInvalidPath,
			deps.Messages.Get(smessages.ErrorInvalidPath, messageprovider.P("name", "playerId")), "playerId", deps.Logger)
		return 0, false
	}
	return id, true
}

// pathValue: 비어 있지 않은 경로 값을 반환한다. 비어 있으면 400 을 쓰고 false 를 반환한다.
func pathValue(w http.ResponseWriter, r *http.Request, deps Deps, name string) (string, bool) {
	v := strings.TrimSpace(r.PathValue(name))
	if v == "" {
		respondFieldError(w, http.StatusBadRequest, errorCodeInvalidPath,
			deps.Messages.Get(smessages.ErrorInvalidPath, messageprovider.P("name", name)), name, deps.Logger)
		return "", false
	}
	return v, true
}
