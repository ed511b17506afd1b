package service

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/park285/spycard-go/internal/spycard/catalog"
	serrors "github.com/park285/spycard-go/internal/spycard/errors"
	"github.com/park285/spycard-go/internal/spycard/model"
	qredis "github.com/park285/spycard-go/internal/spycard/redis"
	"github.com/park285/spycard-go/internal/spycard/repository"
	"github.com/park285/spycard-go/internal/spycard/scoring"
)

const (
	reportScoreMin = 0
	reportScoreMax = 100
)

// ReportService: 능력치 리포트. 기록 재계산 경로와 프로필 조회 경로가 같은 응답 형태를 쓴다.
type ReportService struct {
	repo    *repository.Repository
	catalog *catalog.Provider
	cache   *qredis.ReportCache
	logger  *slog.Logger
}

// NewReportService: 새로운 ReportService 인스턴스를 생성합니다.
func NewReportService(
	repo *repository.Repository,
	catalogProvider *catalog.Provider,
	cache *qredis.ReportCache,
	logger *slog.Logger,
) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{repo: repo, catalog: catalogProvider, cache: cache, logger: logger}
}

// CalculateAbilityScores: completed 미션의 게임 결과 원점수를 능력치별로 모아 평균을 낸다.
// 게임 → 능력치는 미션 매핑을 먼저 보고 없으면 전역 카탈로그를 쓴다. 게임이 없는 능력치는 모두 0 이다.
func (s *ReportService) CalculateAbilityScores(ctx context.Context, playerID uint64) (model.AbilityReport, error) {
	player, err := s.repo.GetPlayer(ctx, playerID)
	if err != nil {
		return model.AbilityReport{}, err
	}
	if player == nil {
		return model.AbilityReport{}, serrors.NotFoundError{Resource: "player", ID: strconv.FormatUint(playerID, 10)}
	}

	if cached, err := s.cache.Get(ctx, playerID); err != nil {
		s.logger.Warn("report_cache_get_failed", "player_id", playerID, "err", err)
	} else if cached != nil {
		return *cached, nil
	}

	results, err := s.repo.ListCompletedGameResults(ctx, playerID)
	if err != nil {
		return model.AbilityReport{}, err
	}
	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return model.AbilityReport{}, err
	}

	buckets := make(map[model.Ability][]int, len(model.Abilities))
	for _, r := range results {
		ability, ok := snapshot.AbilityForGame(r.MissionID, r.GameRef)
		if !ok {
			s.logger.Debug("report_game_unmapped", "player_id", playerID, "mission_id", r.MissionID, "game_ref", r.GameRef)
			continue
		}
		buckets[ability] = append(buckets[ability], r.BaseScore)
	}

	report := buildHistoryReport(buckets)
	report.PlayerID = player.ID
	report.Username = player.Username

	if err := s.cache.Set(ctx, playerID, report); err != nil {
		s.logger.Warn("report_cache_set_failed", "player_id", playerID, "err", err)
	}
	return report, nil
}

// GetAbilityScoresFromSpyCard: 저장된 프로필 총점으로 같은 형태의 리포트를 만든다.
// 프로필 총점은 게임 수 개념이 없으므로 GameCount 는 0, AverageScore 는 총점 그대로다.
func (s *ReportService) GetAbilityScoresFromSpyCard(ctx context.Context, username string) (model.AbilityReport, error) {
	username = model.NormalizeUsername(username)
	if username == "" {
		return model.AbilityReport{}, serrors.ValidationError{Field: "username", Reason: "empty"}
	}
	profile, err := s.repo.GetProfile(ctx, username)
	if err != nil {
		return model.AbilityReport{}, err
	}
	if profile == nil {
		return model.AbilityReport{}, serrors.NotFoundError{Resource: "profile", ID: username}
	}
	return buildSpyCardReport(*profile), nil
}

func buildHistoryReport(buckets map[model.Ability][]int) model.AbilityReport {
	report := model.NewAbilityReport(model.ReportSourceHistory)

	var (
		averageSum float64
		withGames  int
	)
	for _, a := range model.Abilities {
		scores := buckets[a]
		if len(scores) == 0 {
			continue
		}
		sum := 0
		for _, v := range scores {
			sum += v
		}
		avg := float64(sum) / float64(len(scores))
		report.Abilities[a] = model.AbilityStat{
			Score:        scoring.ClampInt(scoring.Round(avg), reportScoreMin, reportScoreMax),
			GameCount:    len(scores),
			AverageScore: avg,
		}
		report.TotalGames += len(scores)
		averageSum += avg
		withGames++
	}
	if withGames > 0 {
		report.OverallAverage = averageSum / float64(withGames)
	}
	return report
}

func buildSpyCardReport(profile model.SpyCardProfile) model.AbilityReport {
	report := model.NewAbilityReport(model.ReportSourceSpyCard)
	report.Username = profile.Username

	var sum float64
	for _, a := range model.Abilities {
		total := profile.AbilityTotals[a]
		report.Abilities[a] = model.AbilityStat{
			Score:        scoring.ClampInt(total, reportScoreMin, reportScoreMax),
			AverageScore: float64(total),
		}
		sum += float64(total)
	}
	report.OverallAverage = sum / float64(len(model.Abilities))

	overallTotal := profile.OverallTotal
	report.OverallTotal = &overallTotal
	report.OverallRank = profile.OverallRank.String()
	return report
}
