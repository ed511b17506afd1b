package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/park285/spycard-go/internal/common/health"
	commonhttputil "github.com/park285/spycard-go/internal/common/httputil"
	"github.com/park285/spycard-go/internal/common/messageprovider"
	"github.com/park285/spycard-go/internal/common/testhelper"
	"github.com/park285/spycard-go/internal/spycard/assets"
	"github.com/park285/spycard-go/internal/spycard/catalog"
	smessages "github.com/park285/spycard-go/internal/spycard/messages"
	"github.com/park285/spycard-go/internal/spycard/model"
	qredis "github.com/park285/spycard-go/internal/spycard/redis"
	"github.com/park285/spycard-go/internal/spycard/repository"
	"github.com/park285/spycard-go/internal/spycard/scoring"
	"github.com/park285/spycard-go/internal/spycard/service"
)

type testServer struct {
	mux        *http.ServeMux
	processing interface {
		Start(ctx context.Context, id string) error
	}
}

func newTestServer(t *testing.T, checks map[string]health.CheckFunc) *testServer {
	t.Helper()
	ctx := context.Background()
	logger := testhelper.DiscardLogger()

	repo := repository.New(testhelper.NewTestDB(t))
	if err := repo.AutoMigrate(ctx); err != nil {
		t.Fatal(err)
	}
	client, _ := testhelper.NewMiniValkey(t)
	formula, err := scoring.NewFormula(scoring.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	msgs, err := messageprovider.NewFromYAMLAtPath(assets.MessagesYAML, smessages.RootKey)
	if err != nil {
		t.Fatal(err)
	}
	catalogProvider := catalog.NewProvider(catalog.StaticLoader(assets.DefaultCatalogYAML), 0, logger)

	registry := prometheus.NewRegistry()
	metrics := service.NewMetrics(registry)
	processing := qredis.NewMissionProcessingLock(client, logger, time.Minute)
	reportCache := qredis.NewReportCache(client, logger, time.Minute)
	profiles := service.NewProfileService(repo, qredis.NewProfileLock(client, logger, 5*time.Second, 50*time.Millisecond), metrics, 3, logger)

	mux := http.NewServeMux()
	Register(mux, Deps{
		Players:      service.NewPlayerService(repo, catalogProvider, logger),
		Aggregator:   service.NewMissionScoreAggregator(repo, profiles, processing, reportCache, metrics, logger),
		Games:        service.NewGameScoringService(repo, catalogProvider, formula, nil, reportCache, metrics, logger),
		Profiles:     profiles,
		Reports:      service.NewReportService(repo, catalogProvider, reportCache, logger),
		Catalog:      catalogProvider,
		Messages:     msgs,
		Registry:     registry,
		HealthChecks: checks,
		MaxBodyBytes: 4096,
		Logger:       logger,
	})
	return &testServer{mux: mux, processing: processing}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response failed: %v body=%s", err, rr.Body.String())
	}
	return out
}

func (s *testServer) registerAndJoin(t *testing.T, username, missionID string) uint64 {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/api/spycard/players", `{"username":"`+username+`"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("register failed: %d %s", rr.Code, rr.Body.String())
	}
	player := decode[PlayerResponse](t, rr)

	rr = s.do(t, http.MethodPost, "/api/spycard/missions/"+missionID+"/players/"+itoa(player.ID), "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("join failed: %d %s", rr.Code, rr.Body.String())
	}
	return player.ID
}

func itoa(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func TestMissionFlow(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.registerAndJoin(t, "alice", "operation-nightfall")
	base := "/api/spycard/missions/operation-nightfall/players/" + itoa(id)

	rr := s.do(t, http.MethodPatch, base+"/abilities", `{"abilities":{"strategy":12.9,"teamwork_communication":null}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("patch failed: %d %s", rr.Code, rr.Body.String())
	}
	rec := decode[MissionPlayerResponse](t, rr)
	if rec.Abilities["strategy"] == nil || *rec.Abilities["strategy"] != 12 {
		t.Fatalf("expected strategy 12, got %v", rec.Abilities["strategy"])
	}
	if v, ok := rec.Abilities["aim_mechanical_skill"]; !ok || v != nil {
		t.Fatal("missing abilities must be present as null")
	}

	rr = s.do(t, http.MethodPut, base+"/overall", `{"score":40}`)
	rec = decode[MissionPlayerResponse](t, rr)
	if rr.Code != http.StatusOK || rec.State != "playing" || rec.DisplayState != "completed" {
		t.Fatalf("unexpected overall update: %d %+v", rr.Code, rec)
	}

	rr = s.do(t, http.MethodPost, "/api/spycard/missions/operation-nightfall/complete",
		`{"players":[{"playerId":`+itoa(id)+`,"overall":50,"abilities":{"strategy":20}},{"playerId":777,"overall":1}]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("complete failed: %d %s", rr.Code, rr.Body.String())
	}
	done := decode[CompleteMissionResponse](t, rr)
	if len(done.Completed) != 1 || done.Completed[0].State != "completed" {
		t.Fatalf("unexpected completed list: %+v", done.Completed)
	}
	if len(done.Failed) != 1 || done.Failed[0].PlayerID != 777 || done.Failed[0].Reason != service.FailureReasonNotFound {
		t.Fatalf("unexpected failed list: %+v", done.Failed)
	}

	// 처음 완료는 0 에서 출발. D(1.8): overall 50 → 90, strategy 20 → 36
	rr = s.do(t, http.MethodGet, "/api/spycard/profiles/alice", "")
	profile := decode[ProfileResponse](t, rr)
	if rr.Code != http.StatusOK || profile.OverallTotal != 90 || profile.OverallRank != "S" {
		t.Fatalf("unexpected profile: %d %+v", rr.Code, profile)
	}
	if profile.AbilityTotals["strategy"] != 36 {
		t.Fatalf("expected strategy total 36, got %d", profile.AbilityTotals["strategy"])
	}

	rr = s.do(t, http.MethodPost, "/api/spycard/profiles/alice/recalculate", "")
	recalc := decode[RecalculationResponse](t, rr)
	if rr.Code != http.StatusOK || recalc.NoScores || recalc.MissionCount != 1 {
		t.Fatalf("unexpected recalculation: %d %+v", rr.Code, recalc)
	}

	rr = s.do(t, http.MethodGet, "/api/spycard/profiles/alice/abilities", "")
	report := decode[model.AbilityReport](t, rr)
	if rr.Code != http.StatusOK || report.Source != model.ReportSourceSpyCard {
		t.Fatalf("unexpected spy card report: %d %+v", rr.Code, report)
	}

	rr = s.do(t, http.MethodGet, "/api/spycard/players/"+itoa(id)+"/abilities", "")
	history := decode[model.AbilityReport](t, rr)
	if rr.Code != http.StatusOK || history.Source != model.ReportSourceHistory || history.TotalGames != 0 {
		t.Fatalf("unexpected history report: %d %+v", rr.Code, history)
	}
}

func TestScoreGame(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.registerAndJoin(t, "bob", "operation-daybreak")
	base := "/api/spycard/missions/operation-daybreak/players/" + itoa(id) + "/games/"

	rr := s.do(t, http.MethodPost, base+"code-breaker", `{"baseScore":40,"difficulty":"easy","isWin":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("score failed: %d %s", rr.Code, rr.Body.String())
	}
	// 40 × 1.0 × 1.8 × 0.85 = 61.2
	scored := decode[GameScoreResponse](t, rr)
	if scored.Rank != "D" || scored.Abilities["strategy"] != 61 {
		t.Fatalf("unexpected score response: %+v", scored)
	}

	// 판정기가 없으면 judged 게임은 502
	rr = s.do(t, http.MethodPost, base+"tactical-debrief", `{"baseScore":0,"judgePayload":{"log":[]}}`)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 without judge, got %d %s", rr.Code, rr.Body.String())
	}
	errResp := decode[commonhttputil.ErrorResponse](t, rr)
	if errResp.Error != errorCodeUpstream {
		t.Fatalf("unexpected error code: %+v", errResp)
	}
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.registerAndJoin(t, "carol", "operation-nightfall")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
		field  string
	}{
		{"unknown mission player", http.MethodGet, "/api/spycard/missions/operation-nightfall/players/999", "", http.StatusNotFound, errorCodeNotFound, ""},
		{"bad player id", http.MethodGet, "/api/spycard/missions/operation-nightfall/players/abc", "", http.StatusBadRequest, errorCodeInvalidPath, "playerId"},
		{"unknown ability", http.MethodPatch, "/api/spycard/missions/operation-nightfall/players/" + itoa(id) + "/abilities", `{"abilities":{"luck":1}}`, http.StatusBadRequest, errorCodeValidation, "luck"},
		{"overall out of range", http.MethodPut, "/api/spycard/missions/operation-nightfall/players/" + itoa(id) + "/overall", `{"score":1e20}`, http.StatusBadRequest, errorCodeValidation, "score"},
		{"unknown field", http.MethodPut, "/api/spycard/missions/operation-nightfall/players/" + itoa(id) + "/overall", `{"points":1}`, http.StatusBadRequest, errorCodeInvalidRequest, ""},
		{"body too large", http.MethodPost, "/api/spycard/players", `{"username":"` + strings.Repeat("x", 5000) + `"}`, http.StatusRequestEntityTooLarge, errorCodeBodyTooLarge, ""},
		{"empty username", http.MethodPost, "/api/spycard/players", `{"username":"  "}`, http.StatusBadRequest, errorCodeValidation, "username"},
		{"unknown mission join", http.MethodPost, "/api/spycard/missions/nope/players/" + itoa(id), "", http.StatusNotFound, errorCodeNotFound, ""},
		{"unknown profile", http.MethodGet, "/api/spycard/profiles/ghost", "", http.StatusNotFound, errorCodeNotFound, ""},
		{"unknown catalog mission", http.MethodGet, "/api/spycard/catalog/missions/nope", "", http.StatusNotFound, errorCodeNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(t, tt.method, tt.path, tt.body)
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d %s", tt.status, rr.Code, rr.Body.String())
			}
			resp := decode[commonhttputil.ErrorResponse](t, rr)
			if resp.Error != tt.code || resp.Field != tt.field {
				t.Fatalf("unexpected error body: %+v", resp)
			}
			if resp.Message == "" {
				t.Fatal("message must not be empty")
			}
		})
	}
}

func TestCompleteMission_Conflict(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.registerAndJoin(t, "dan", "operation-nightfall")

	if err := s.processing.Start(context.Background(), "operation-nightfall"); err != nil {
		t.Fatal(err)
	}
	rr := s.do(t, http.MethodPost, "/api/spycard/missions/operation-nightfall/complete", `{"players":[{"playerId":`+itoa(id)+`}]}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d %s", rr.Code, rr.Body.String())
	}
	if resp := decode[commonhttputil.ErrorResponse](t, rr); resp.Error != errorCodeLocked {
		t.Fatalf("unexpected error body: %+v", resp)
	}
}

func TestRecalculate_NoScores(t *testing.T) {
	s := newTestServer(t, nil)

	rr := s.do(t, http.MethodPost, "/api/spycard/profiles/nobody/recalculate", "")
	resp := decode[RecalculationResponse](t, rr)
	if rr.Code != http.StatusOK || !resp.NoScores || resp.Message == "" {
		t.Fatalf("unexpected response: %d %+v", rr.Code, resp)
	}
}

func TestCatalogMission(t *testing.T) {
	s := newTestServer(t, nil)

	rr := s.do(t, http.MethodGet, "/api/spycard/catalog/missions/operation-daybreak", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	resp := decode[CatalogMissionResponse](t, rr)
	if resp.ID != "operation-daybreak" || len(resp.Games) != 3 {
		t.Fatalf("unexpected catalog response: %+v", resp)
	}
	for _, g := range resp.Games {
		if g.Ref == "tactical-debrief" && (!g.Judged || g.Ability != "game_sense_awareness" || g.Ratios["strategy"] != 1) {
			t.Fatalf("unexpected judged game entry: %+v", g)
		}
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, map[string]health.CheckFunc{
		"db":     func(ctx context.Context) error { return nil },
		"valkey": func(ctx context.Context) error { return errors.New("down") },
	})

	rr := s.do(t, http.MethodGet, "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when a component is down, got %d", rr.Code)
	}
	resp := decode[health.Response](t, rr)
	if resp.Status != "degraded" || resp.Components["db"] != "up" || resp.Components["valkey"] != "down" {
		t.Fatalf("unexpected health: %+v", resp)
	}

	rr = s.do(t, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "spycard_") {
		t.Fatalf("metrics must expose spycard collectors: %d", rr.Code)
	}
}
