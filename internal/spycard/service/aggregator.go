package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/park285/spycard-go/internal/common/processinglock"
	"github.com/park285/spycard-go/internal/common/telemetry"
	serrors "github.com/park285/spycard-go/internal/spycard/errors"
	"github.com/park285/spycard-go/internal/spycard/model"
	qredis "github.com/park285/spycard-go/internal/spycard/redis"
	"github.com/park285/spycard-go/internal/spycard/repository"
	"github.com/park285/spycard-go/internal/spycard/scoring"
)

const tracerName = "spycard/service"

// 미션 완료에서 건너뛴 플레이어의 사유
const (
	FailureReasonNotFound    = "not_found"
	FailureReasonPersistence = "persistence_failed"
)

// FailedPlayer: 미션 완료 중 저장에 실패해 건너뛴 플레이어
type FailedPlayer struct {
	PlayerID uint64
	Reason   string
}

// CompletionResult: CompleteMission 결과. Completed 는 저장에 성공한 기록만 담는다.
type CompletionResult struct {
	MissionID string
	Completed []model.MissionPlayerRecord
	Failed    []FailedPlayer
}

// MissionScoreAggregator: 미션 참가 기록 점수를 갱신하고, 미션 완료 시 변화량을 Spy Card 프로필로 전파한다.
type MissionScoreAggregator struct {
	repo        *repository.Repository
	profiles    *ProfileService
	processing  *processinglock.Service
	reportCache *qredis.ReportCache
	metrics     *Metrics
	logger      *slog.Logger
	now         func() time.Time
}

// NewMissionScoreAggregator: 새로운 MissionScoreAggregator 인스턴스를 생성합니다.
func NewMissionScoreAggregator(
	repo *repository.Repository,
	profiles *ProfileService,
	processing *processinglock.Service,
	reportCache *qredis.ReportCache,
	metrics *Metrics,
	logger *slog.Logger,
) *MissionScoreAggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &MissionScoreAggregator{
		repo:        repo,
		profiles:    profiles,
		processing:  processing,
		reportCache: reportCache,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// UpdateOverallScore: 종합 점수만 내림해서 저장한다. 능력치와 상태는 건드리지 않고 프로필에도 반영하지 않는다.
func (s *MissionScoreAggregator) UpdateOverallScore(
	ctx context.Context,
	missionID string,
	playerID uint64,
	score *float64,
) (model.MissionPlayerRecord, error) {
	missionID = strings.TrimSpace(missionID)
	overall, err := scoring.FloorScore("score", score)
	if err != nil {
		return model.MissionPlayerRecord{}, err
	}
	ok, err := s.repo.UpdateMissionOverall(ctx, missionID, playerID, overall, s.now())
	if err != nil {
		return model.MissionPlayerRecord{}, err
	}
	if !ok {
		return model.MissionPlayerRecord{}, missionPlayerNotFound(missionID, playerID)
	}
	s.invalidateReport(ctx, playerID)
	return s.reload(ctx, missionID, playerID)
}

// UpdateAbilityScores: 전달된 능력치만 내림해서 저장한다. nil 값은 NULL 로 지운다. 프로필에는 반영하지 않는다.
func (s *MissionScoreAggregator) UpdateAbilityScores(
	ctx context.Context,
	missionID string,
	playerID uint64,
	partial map[model.Ability]*float64,
) (model.MissionPlayerRecord, error) {
	missionID = strings.TrimSpace(missionID)
	if err := validateAbilityKeys(partial); err != nil {
		return model.MissionPlayerRecord{}, err
	}
	if len(partial) == 0 {
		return s.reload(ctx, missionID, playerID)
	}

	floored, err := scoring.FloorAbilityScores(partial)
	if err != nil {
		return model.MissionPlayerRecord{}, err
	}
	ok, err := s.repo.UpdateMissionAbilities(ctx, missionID, playerID, floored, s.now())
	if err != nil {
		return model.MissionPlayerRecord{}, err
	}
	if !ok {
		return model.MissionPlayerRecord{}, missionPlayerNotFound(missionID, playerID)
	}
	s.invalidateReport(ctx, playerID)
	return s.reload(ctx, missionID, playerID)
}

// CompleteMission: 목록 순서대로 플레이어 기록을 completed 로 확정하고 변화량을 프로필로 전파한다.
// 변화량은 직전 완료 때 전파된 기준값에서 계산하며, 처음 완료되는 기록은 0 에서 출발한다.
// 같은 미션의 동시 호출은 처리 락으로 거절한다. 저장에 실패한 플레이어는 건너뛰고 Failed 에 담는다.
// 프로필 전파 실패는 로그만 남긴다.
func (s *MissionScoreAggregator) CompleteMission(
	ctx context.Context,
	missionID string,
	scores []model.PlayerScore,
) (CompletionResult, error) {
	missionID = strings.TrimSpace(missionID)
	if missionID == "" {
		return CompletionResult{}, serrors.ValidationError{Field: "missionId", Reason: "empty"}
	}
	floored := make([]flooredScore, 0, len(scores))
	for _, score := range scores {
		if err := validateAbilityKeys(score.Abilities); err != nil {
			return CompletionResult{}, err
		}
		fs, err := floorPlayerScore(score)
		if err != nil {
			return CompletionResult{}, err
		}
		floored = append(floored, fs)
	}

	ctx, span := telemetry.Tracer(tracerName).Start(ctx, "spycard.complete_mission", trace.WithAttributes(
		attribute.String("mission.id", missionID),
		attribute.Int("mission.players", len(scores)),
	))
	defer span.End()

	start := time.Now()
	result := CompletionResult{
		MissionID: missionID,
		Completed: make([]model.MissionPlayerRecord, 0, len(scores)),
	}
	err := s.processing.Run(ctx, missionID, func(ctx context.Context) error {
		for _, score := range floored {
			rec, err := s.completePlayer(ctx, missionID, score)
			if err != nil {
				reason := FailureReasonPersistence
				var notFound serrors.NotFoundError
				if errors.As(err, &notFound) {
					reason = FailureReasonNotFound
				}
				s.metrics.MissionPlayersFailed.Inc()
				s.logger.Warn("mission_player_complete_failed",
					"mission_id", missionID,
					"player_id", score.PlayerID,
					"reason", reason,
					"err", err,
				)
				result.Failed = append(result.Failed, FailedPlayer{PlayerID: score.PlayerID, Reason: reason})
				continue
			}
			result.Completed = append(result.Completed, rec)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "complete mission failed")
		return CompletionResult{}, err
	}
	span.SetAttributes(attribute.Int("mission.failed", len(result.Failed)))

	s.metrics.MissionsCompleted.Inc()
	s.metrics.CompleteMissionSeconds.Observe(time.Since(start).Seconds())
	s.logger.Info("mission_completed",
		"mission_id", missionID,
		"completed", len(result.Completed),
		"failed", len(result.Failed),
	)
	return result, nil
}

// flooredScore: 정수로 내린 플레이어 점수 입력
type flooredScore struct {
	PlayerID  uint64
	Overall   *int
	Abilities map[model.Ability]*int
}

func floorPlayerScore(score model.PlayerScore) (flooredScore, error) {
	overall, err := scoring.FloorScore("overall", score.Overall)
	if err != nil {
		return flooredScore{}, err
	}
	abilities, err := scoring.FloorAbilityScores(score.Abilities)
	if err != nil {
		return flooredScore{}, err
	}
	return flooredScore{PlayerID: score.PlayerID, Overall: overall, Abilities: abilities}, nil
}

func (s *MissionScoreAggregator) completePlayer(
	ctx context.Context,
	missionID string,
	score flooredScore,
) (model.MissionPlayerRecord, error) {
	completion, err := s.repo.CompleteMissionPlayer(ctx, repository.MissionCompletionParams{
		MissionID: missionID,
		PlayerID:  score.PlayerID,
		Overall:   score.Overall,
		Abilities: score.Abilities,
		Now:       s.now(),
	})
	if err != nil {
		return model.MissionPlayerRecord{}, err
	}
	if completion == nil {
		return model.MissionPlayerRecord{}, missionPlayerNotFound(missionID, score.PlayerID)
	}

	s.propagate(ctx, completion.Previous, completion.Updated)
	s.invalidateReport(ctx, score.PlayerID)
	return completion.Updated, nil
}

// propagate 이전 완료 기준값과 이번 완료 기준값의 차이를 프로필에 반영한다.
// 처음 완료되는 기록은 기준값이 비어 있어 게임 채점이나 부분 갱신으로 쌓인 값이 모두 전파된다.
// 실패해도 호출자에게 에러를 돌려주지 않는다.
func (s *MissionScoreAggregator) propagate(ctx context.Context, prev, updated model.MissionPlayerRecord) {
	change := ScoreChange{
		Overall:   ScorePair{Old: prev.Committed.Overall, New: updated.Committed.Overall},
		Abilities: make(map[model.Ability]ScorePair, len(model.Abilities)),
	}
	for _, a := range model.Abilities {
		change.Abilities[a] = ScorePair{
			Old: prev.Committed.Abilities.Ptr(a),
			New: updated.Committed.Abilities.Ptr(a),
		}
	}

	if _, err := s.profiles.ApplyChange(ctx, updated.Username, change); err != nil {
		s.metrics.PropagationFailures.Inc()
		s.logger.Error("profile_propagation_failed",
			"mission_id", updated.MissionID,
			"player_id", updated.PlayerID,
			"username", updated.Username,
			"err", err,
		)
	}
}

// RecalculateProfileFromHistory: completed 기록 전체로 프로필 총점을 다시 계산해 덮어쓴다.
// 기록이 없으면 프로필을 건드리지 않고 NoScores 결과를 반환한다.
func (s *MissionScoreAggregator) RecalculateProfileFromHistory(ctx context.Context, username string) (model.RecalculationResult, error) {
	username = model.NormalizeUsername(username)
	if username == "" {
		return model.RecalculationResult{}, serrors.ValidationError{Field: "username", Reason: "empty"}
	}
	noScores := model.RecalculationResult{Username: username, NoScores: true}

	player, err := s.repo.GetPlayerByUsername(ctx, username)
	if err != nil {
		return model.RecalculationResult{}, err
	}
	if player == nil {
		s.metrics.Recalculations.WithLabelValues(resultNoScores).Inc()
		return noScores, nil
	}

	records, err := s.repo.ListCompletedMissionPlayers(ctx, player.ID)
	if err != nil {
		return model.RecalculationResult{}, err
	}
	if len(records) == 0 {
		s.metrics.Recalculations.WithLabelValues(resultNoScores).Inc()
		return noScores, nil
	}

	profile, err := s.profiles.Overwrite(ctx, username, func(current model.SpyCardProfile) model.SpyCardProfile {
		return recalculateFromHistory(current, records)
	})
	if err != nil {
		s.metrics.Recalculations.WithLabelValues(resultError).Inc()
		return model.RecalculationResult{}, err
	}

	s.metrics.Recalculations.WithLabelValues(resultUpdated).Inc()
	s.invalidateReport(ctx, player.ID)
	s.logger.Info("profile_recalculated",
		"username", username,
		"missions", len(records),
		"overall_total", profile.OverallTotal,
		"overall_rank", profile.OverallRank.String(),
	)
	return model.RecalculationResult{
		Username:      username,
		TotalScore:    profile.OverallTotal,
		OverallRank:   profile.OverallRank,
		MissionCount:  len(records),
		AbilityTotals: profile.AbilityTotals.Clone(),
	}, nil
}

// recalculateFromHistory 기록마다 round(score × 배율) 을 더한 총점으로 프로필을 만든다.
// 배율의 기준 등급은 저장된 등급에서 출발해, 그 배율로 계산한 총점의 등급과 같아질 때까지 옮겨간다.
// 등급이 순환하면 순환 안에서 가장 높은 등급을 기준으로 삼는다. 같은 기록으로 다시 실행해도 결과가 같다.
func recalculateFromHistory(current model.SpyCardProfile, records []model.MissionPlayerRecord) model.SpyCardProfile {
	basis := settleRankBasis(current.OverallRank, records)
	totals, overall := sumHistory(records, model.ModifierForRank(basis))

	next := current
	next.AbilityTotals = totals
	next.OverallTotal = overall
	next.OverallRank = model.RankForTotal(overall)
	return next
}

func settleRankBasis(start model.SkillRank, records []model.MissionPlayerRecord) model.SkillRank {
	if !start.Valid() {
		start = model.LowestRank
	}

	visited := make([]model.SkillRank, 0, 5)
	basis := start
	for {
		_, overall := sumHistory(records, model.ModifierForRank(basis))
		derived := model.RankForTotal(overall)
		if derived == basis {
			return basis
		}
		visited = append(visited, basis)
		for i, seen := range visited {
			if seen != derived {
				continue
			}
			best := visited[i]
			for _, r := range visited[i:] {
				if r.BetterThan(best) {
					best = r
				}
			}
			return best
		}
		basis = derived
	}
}

func sumHistory(records []model.MissionPlayerRecord, modifier float64) (model.AbilityScores, int) {
	totals := model.NewSpyCardProfile("").AbilityTotals
	overall := 0
	for _, rec := range records {
		if rec.Overall != nil {
			overall += scoring.Contribution(*rec.Overall, modifier)
		}
		for _, a := range model.Abilities {
			if v, ok := rec.Abilities.Get(a); ok {
				totals[a] += scoring.Contribution(v, modifier)
			}
		}
	}
	return totals, overall
}

func (s *MissionScoreAggregator) reload(ctx context.Context, missionID string, playerID uint64) (model.MissionPlayerRecord, error) {
	rec, err := s.repo.GetMissionPlayer(ctx, missionID, playerID)
	if err != nil {
		return model.MissionPlayerRecord{}, err
	}
	if rec == nil {
		return model.MissionPlayerRecord{}, missionPlayerNotFound(missionID, playerID)
	}
	return *rec, nil
}

func (s *MissionScoreAggregator) invalidateReport(ctx context.Context, playerID uint64) {
	if err := s.reportCache.Invalidate(ctx, playerID); err != nil {
		s.logger.Warn("report_cache_invalidate_failed", "player_id", playerID, "err", err)
	}
}

func validateAbilityKeys[V any](values map[model.Ability]V) error {
	for a := range values {
		if !a.Valid() {
			return serrors.ValidationError{Field: string(a), Reason: "unknown ability"}
		}
	}
	return nil
}

func missionPlayerNotFound(missionID string, playerID uint64) error {
	return serrors.NotFoundError{
		Resource: "mission_player",
		ID:       missionID + "/" + strconv.FormatUint(playerID, 10),
	}
}
