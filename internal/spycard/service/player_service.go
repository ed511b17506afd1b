package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/park285/spycard-go/internal/spycard/catalog"
	serrors "github.com/park285/spycard-go/internal/spycard/errors"
	"github.com/park285/spycard-go/internal/spycard/model"
	"github.com/park285/spycard-go/internal/spycard/repository"
)

// PlayerService: 플레이어 등록과 미션 참가 기록 생성/조회
type PlayerService struct {
	repo    *repository.Repository
	catalog *catalog.Provider
	logger  *slog.Logger
}

// NewPlayerService: 새로운 PlayerService 인스턴스를 생성합니다.
func NewPlayerService(repo *repository.Repository, catalogProvider *catalog.Provider, logger *slog.Logger) *PlayerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlayerService{repo: repo, catalog: catalogProvider, logger: logger}
}

// RegisterPlayer: NFC 정규화한 사용자명으로 플레이어를 등록한다. 이미 있으면 기존 플레이어를 반환한다.
func (s *PlayerService) RegisterPlayer(ctx context.Context, username string) (model.Player, error) {
	username = model.NormalizeUsername(username)
	if username == "" {
		return model.Player{}, serrors.ValidationError{Field: "username", Reason: "empty"}
	}
	player, err := s.repo.UpsertPlayer(ctx, username)
	if err != nil {
		return model.Player{}, err
	}
	s.logger.Debug("player_registered", "player_id", player.ID, "username", player.Username)
	return player, nil
}

// JoinMission: 카탈로그에 있는 미션에 대해 playing 기록을 만든다. 이미 참가했으면 기존 기록을 반환한다.
func (s *PlayerService) JoinMission(ctx context.Context, missionID string, playerID uint64) (model.MissionPlayerRecord, bool, error) {
	missionID = strings.TrimSpace(missionID)
	if _, err := s.catalog.Mission(ctx, missionID); err != nil {
		return model.MissionPlayerRecord{}, false, err
	}

	player, err := s.repo.GetPlayer(ctx, playerID)
	if err != nil {
		return model.MissionPlayerRecord{}, false, err
	}
	if player == nil {
		return model.MissionPlayerRecord{}, false, serrors.NotFoundError{Resource: "player", ID: strconv.FormatUint(playerID, 10)}
	}

	rec, created, err := s.repo.CreateMissionPlayer(ctx, missionID, *player)
	if err != nil {
		return model.MissionPlayerRecord{}, false, err
	}
	if created {
		s.logger.Info("mission_joined", "mission_id", missionID, "player_id", playerID)
	}
	return rec, created, nil
}

// GetMissionPlayer: 미션 참가 기록을 조회한다. 없으면 NotFoundError.
func (s *PlayerService) GetMissionPlayer(ctx context.Context, missionID string, playerID uint64) (model.MissionPlayerRecord, error) {
	missionID = strings.TrimSpace(missionID)
	rec, err := s.repo.GetMissionPlayer(ctx, missionID, playerID)
	if err != nil {
		return model.MissionPlayerRecord{}, err
	}
	if rec == nil {
		return model.MissionPlayerRecord{}, missionPlayerNotFound(missionID, playerID)
	}
	return *rec, nil
}
