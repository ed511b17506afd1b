package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/park285/spycard-go/internal/common/telemetry"
	"github.com/park285/spycard-go/internal/spycard/catalog"
	serrors "github.com/park285/spycard-go/internal/spycard/errors"
	"github.com/park285/spycard-go/internal/spycard/judge"
	"github.com/park285/spycard-go/internal/spycard/model"
	qredis "github.com/park285/spycard-go/internal/spycard/redis"
	"github.com/park285/spycard-go/internal/spycard/repository"
	"github.com/park285/spycard-go/internal/spycard/scoring"
)

// GameResultInput: 게임 한 판의 결과 입력
type GameResultInput struct {
	MissionID    string
	PlayerID     uint64
	GameRef      string
	BaseScore    float64
	Difficulty   model.Difficulty
	IsWin        bool
	JudgePayload json.RawMessage // judged 게임에서만 쓴다
}

// GameScoreResult: 계산된 능력치 점수와 갱신된 미션 기록
type GameScoreResult struct {
	GameRef   string
	Judged    bool
	Rank      model.SkillRank
	Abilities model.AbilityScores
	Record    model.MissionPlayerRecord
}

// GameScoringService: 게임 결과를 공식으로 능력치 점수로 바꾸고 기록한다.
type GameScoringService struct {
	repo        *repository.Repository
	catalog     *catalog.Provider
	formula     *scoring.Formula
	analyzer    judge.Analyzer
	reportCache *qredis.ReportCache
	metrics     *Metrics
	logger      *slog.Logger
	now         func() time.Time
}

// NewGameScoringService: 새로운 GameScoringService 인스턴스를 생성합니다.
// analyzer 가 nil 이면 judged 게임 요청은 UpstreamError 로 실패한다.
func NewGameScoringService(
	repo *repository.Repository,
	catalogProvider *catalog.Provider,
	formula *scoring.Formula,
	analyzer judge.Analyzer,
	reportCache *qredis.ReportCache,
	metrics *Metrics,
	logger *slog.Logger,
) *GameScoringService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &GameScoringService{
		repo:        repo,
		catalog:     catalogProvider,
		formula:     formula,
		analyzer:    analyzer,
		reportCache: reportCache,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// ScoreGameResult: 카탈로그 비중, 현재 프로필 등급, (judged 게임이면) AI 판정 점수로 능력치 점수를 계산한다.
// game_results 에 기록하고 미션 기록 능력치에 임시로 합산한다. 프로필에는 반영하지 않는다.
// 판정 응답 검증에 실패하면 아무것도 쓰지 않는다.
func (s *GameScoringService) ScoreGameResult(ctx context.Context, in GameResultInput) (GameScoreResult, error) {
	in.MissionID = strings.TrimSpace(in.MissionID)
	in.GameRef = strings.TrimSpace(in.GameRef)
	baseScore, err := scoring.FloorScore("baseScore", &in.BaseScore)
	if err != nil {
		return GameScoreResult{}, err
	}
	difficulty, ok := model.ParseDifficulty(string(in.Difficulty))
	if !ok {
		return GameScoreResult{}, serrors.ValidationError{Field: "difficulty", Reason: fmt.Sprintf("unknown difficulty %q", in.Difficulty)}
	}
	in.Difficulty = difficulty

	rec, err := s.repo.GetMissionPlayer(ctx, in.MissionID, in.PlayerID)
	if err != nil {
		return GameScoreResult{}, err
	}
	if rec == nil {
		return GameScoreResult{}, missionPlayerNotFound(in.MissionID, in.PlayerID)
	}
	if rec.State == model.MissionStateCompleted {
		return GameScoreResult{}, missionCompleted()
	}

	mission, err := s.catalog.Mission(ctx, in.MissionID)
	if err != nil {
		return GameScoreResult{}, err
	}
	game, err := s.catalog.Game(ctx, in.GameRef)
	if err != nil {
		return GameScoreResult{}, err
	}

	rank := model.LowestRank
	profile, err := s.repo.GetProfile(ctx, rec.Username)
	if err != nil {
		return GameScoreResult{}, err
	}
	if profile != nil {
		rank = profile.OverallRank
	}

	ratios := game.Ratios()
	var computed model.AbilityScores
	if game.Judged {
		judged, err := s.judge(ctx, mission, game, in)
		if err != nil {
			return GameScoreResult{}, err
		}
		computed = s.formula.ComputeJudgedScores(judged, in.Difficulty, rank, ratios, in.IsWin)
	} else {
		computed = s.formula.ComputeAbilityScores(in.BaseScore, in.Difficulty, rank, ratios, in.IsWin)
	}

	updated, err := s.repo.RecordGameResult(ctx, repository.GameResultParams{
		MissionID:  in.MissionID,
		PlayerID:   in.PlayerID,
		GameRef:    game.Ref,
		BaseScore:  *baseScore,
		Difficulty: in.Difficulty,
		IsWin:      in.IsWin,
		Judged:     game.Judged,
		Abilities:  computed,
		Merge:      s.mergeInto(computed),
		Now:        s.now(),
	})
	if errors.Is(err, repository.ErrMissionPlayerCompleted) {
		return GameScoreResult{}, missionCompleted()
	}
	if err != nil {
		return GameScoreResult{}, err
	}
	if updated == nil {
		return GameScoreResult{}, missionPlayerNotFound(in.MissionID, in.PlayerID)
	}

	if err := s.reportCache.Invalidate(ctx, in.PlayerID); err != nil {
		s.logger.Warn("report_cache_invalidate_failed", "player_id", in.PlayerID, "err", err)
	}
	s.logger.Info("game_scored",
		"mission_id", in.MissionID,
		"player_id", in.PlayerID,
		"game_ref", game.Ref,
		"judged", game.Judged,
		"rank", rank.String(),
	)
	return GameScoreResult{
		GameRef:   game.Ref,
		Judged:    game.Judged,
		Rank:      rank,
		Abilities: computed,
		Record:    *updated,
	}, nil
}

func (s *GameScoringService) judge(
	ctx context.Context,
	mission catalog.Mission,
	game catalog.Game,
	in GameResultInput,
) (map[model.Ability]float64, error) {
	if s.analyzer == nil {
		s.metrics.JudgeRequests.WithLabelValues(resultError).Inc()
		return nil, serrors.UpstreamError{Operation: "judge_unavailable", Err: judge.ErrMissingAPIKey}
	}
	if len(strings.TrimSpace(string(in.JudgePayload))) == 0 {
		return nil, serrors.ValidationError{Field: "judgePayload", Reason: "required for judged game"}
	}

	ctx, span := telemetry.Tracer(tracerName).Start(ctx, "spycard.judge_analyze", trace.WithAttributes(
		attribute.String("mission.id", mission.ID),
		attribute.String("game.ref", game.Ref),
	))
	defer span.End()

	raw, err := s.analyzer.Analyze(ctx, judge.Request{
		MissionID:      mission.ID,
		GameRef:        game.Ref,
		MissionContext: fmt.Sprintf("%s / %s", mission.Title, game.Name),
		Payload:        in.JudgePayload,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "judge analyze failed")
		s.metrics.JudgeRequests.WithLabelValues(resultError).Inc()
		return nil, err
	}

	scores, err := judge.ValidateScores(raw)
	if err != nil {
		s.metrics.JudgeRequests.WithLabelValues(resultInvalid).Inc()
		s.logger.Warn("judge_response_rejected",
			"mission_id", mission.ID,
			"game_ref", game.Ref,
			"err", err,
		)
		return nil, err
	}
	s.metrics.JudgeRequests.WithLabelValues(resultOK).Inc()
	return scores, nil
}

func missionCompleted() error {
	return serrors.ValidationError{Field: "missionId", Reason: "mission already completed"}
}

// mergeInto 기존 능력치 값에 이번 게임 점수를 더하고 점수 범위로 자른다.
func (s *GameScoringService) mergeInto(computed model.AbilityScores) repository.AbilityMergeFunc {
	return func(current model.AbilityScores) map[model.Ability]*int {
		merged := make(map[model.Ability]*int, len(computed))
		for a, v := range computed {
			prev, _ := current.Get(a)
			total := s.formula.Clamp(prev + v)
			merged[a] = &total
		}
		return merged
	}
}
