package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	serrors "github.com/park285/spycard-go/internal/spycard/errors"
	"github.com/park285/spycard-go/internal/spycard/model"
	qredis "github.com/park285/spycard-go/internal/spycard/redis"
	"github.com/park285/spycard-go/internal/spycard/repository"
	"github.com/park285/spycard-go/internal/spycard/scoring"
)

// ScorePair: 한 필드의 이전 값과 새 값. nil 은 0 으로 계산한다.
type ScorePair struct {
	Old *int
	New *int
}

// ScoreChange: 프로필에 반영할 미션 기록 변화량
type ScoreChange struct {
	Overall   ScorePair
	Abilities map[model.Ability]ScorePair
}

// profileMutation 현재 프로필을 받아 기록할 프로필과 기록 여부를 돌려준다.
type profileMutation func(current model.SpyCardProfile) (model.SpyCardProfile, bool)

// ProfileService: Spy Card 프로필 조회와 직렬화된 갱신을 담당한다.
// 쓰기는 사용자 락 안에서 version 조건부 UPDATE 로 수행하고, 경합에 지면 다시 읽어 재시도한다.
type ProfileService struct {
	repo    *repository.Repository
	lock    *qredis.ProfileLock
	metrics *Metrics
	retries int
	logger  *slog.Logger
	now     func() time.Time
}

// NewProfileService: 새로운 ProfileService 인스턴스를 생성합니다.
func NewProfileService(
	repo *repository.Repository,
	lock *qredis.ProfileLock,
	metrics *Metrics,
	retries int,
	logger *slog.Logger,
) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if retries <= 0 {
		retries = 1
	}
	return &ProfileService{
		repo:    repo,
		lock:    lock,
		metrics: metrics,
		retries: retries,
		logger:  logger,
		now:     time.Now,
	}
}

// GetProfile: 저장된 프로필을 조회한다. 없으면 NotFoundError.
func (s *ProfileService) GetProfile(ctx context.Context, username string) (model.SpyCardProfile, error) {
	username = model.NormalizeUsername(username)
	if username == "" {
		return model.SpyCardProfile{}, serrors.ValidationError{Field: "username", Reason: "empty"}
	}
	profile, err := s.repo.GetProfile(ctx, username)
	if err != nil {
		return model.SpyCardProfile{}, err
	}
	if profile == nil {
		return model.SpyCardProfile{}, serrors.NotFoundError{Resource: "profile", ID: username}
	}
	return *profile, nil
}

// ApplyChange: 변화량에 현재 등급 배율을 곱해 누적 총점에 더하고, 종합 총점으로 등급을 다시 정한다.
// 모든 변화량이 0 이면 아무것도 쓰지 않고 false 를 반환한다. 프로필이 없으면 0 / D 로 만든 뒤 반영한다.
func (s *ProfileService) ApplyChange(ctx context.Context, username string, change ScoreChange) (bool, error) {
	_, written, err := s.mutate(ctx, username, func(current model.SpyCardProfile) (model.SpyCardProfile, bool) {
		return applyScoreChange(current, change)
	})
	return written, err
}

// Overwrite: 현재 프로필을 기준으로 계산한 값으로 프로필 전체를 덮어쓴다.
func (s *ProfileService) Overwrite(
	ctx context.Context,
	username string,
	compute func(current model.SpyCardProfile) model.SpyCardProfile,
) (model.SpyCardProfile, error) {
	profile, _, err := s.mutate(ctx, username, func(current model.SpyCardProfile) (model.SpyCardProfile, bool) {
		next := compute(current)
		next.Username = current.Username
		next.Version = current.Version
		return next, true
	})
	return profile, err
}

func (s *ProfileService) mutate(ctx context.Context, username string, fn profileMutation) (model.SpyCardProfile, bool, error) {
	username = model.NormalizeUsername(username)
	if username == "" {
		return model.SpyCardProfile{}, false, serrors.ValidationError{Field: "username", Reason: "empty"}
	}

	var (
		result  model.SpyCardProfile
		written bool
	)
	err := s.lock.WithLock(ctx, username, func(ctx context.Context) error {
		for attempt := 1; attempt <= s.retries; attempt++ {
			stored, err := s.repo.GetProfile(ctx, username)
			if err != nil {
				return err
			}

			current := model.NewSpyCardProfile(username)
			if stored != nil {
				current = *stored
			}
			next, write := fn(current)
			if !write {
				result = current
				return nil
			}

			if stored == nil {
				created, _, err := s.repo.GetOrCreateProfile(ctx, username)
				if err != nil {
					return err
				}
				next, write = fn(created)
				if !write {
					result = created
					return nil
				}
			}

			ok, err := s.repo.UpdateProfileVersioned(ctx, next, s.now())
			if err != nil {
				return err
			}
			if ok {
				next.Version++
				result = next
				written = true
				return nil
			}

			s.metrics.ProfileVersionConflict.Inc()
			s.logger.Warn("profile_version_conflict", "username", username, "attempt", attempt)
		}
		return fmt.Errorf("profile update conflict after %d attempts username=%s", s.retries, username)
	})
	if err != nil {
		return model.SpyCardProfile{}, false, err
	}

	if written {
		s.logger.Debug("profile_updated",
			"username", username,
			"overall_total", result.OverallTotal,
			"overall_rank", result.OverallRank.String(),
		)
	}
	return result, written, nil
}

// applyScoreChange 한 필드씩 round((new - old) × 현재 등급 배율) 을 더한다.
// 배율은 갱신 전 등급에서 한 번만 정하고, 등급은 종합 총점으로만 다시 계산한다.
func applyScoreChange(current model.SpyCardProfile, change ScoreChange) (model.SpyCardProfile, bool) {
	modifier := model.ModifierForRank(current.OverallRank)

	next := current
	next.AbilityTotals = current.AbilityTotals.Clone()
	changed := false

	if d := scoring.Delta(change.Overall.New, change.Overall.Old, modifier); d != 0 {
		next.OverallTotal += d
		changed = true
	}
	for _, a := range model.Abilities {
		pair, ok := change.Abilities[a]
		if !ok {
			continue
		}
		if d := scoring.Delta(pair.New, pair.Old, modifier); d != 0 {
			next.AbilityTotals[a] += d
			changed = true
		}
	}
	if !changed {
		return current, false
	}

	next.OverallRank = model.RankForTotal(next.OverallTotal)
	return next, true
}
