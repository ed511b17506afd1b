package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/park285/spycard-go/internal/spycard/model"
)

// ErrMissionPlayerCompleted: completed 상태인 미션 기록에 게임 결과를 더하려 할 때 반환된다.
var ErrMissionPlayerCompleted = errors.New("mission player already completed")

// AbilityMergeFunc: 현재 미션 기록의 능력치를 받아 새로 기록할 능력치 컬럼 값을 돌려준다.
type AbilityMergeFunc func(current model.AbilityScores) map[model.Ability]*int

// GameResultParams: 게임 결과 기록 파라미터 구조체
type GameResultParams struct {
	MissionID  string
	PlayerID   uint64
	GameRef    string
	BaseScore  int
	Difficulty model.Difficulty
	IsWin      bool
	Judged     bool
	Abilities  model.AbilityScores
	Merge      AbilityMergeFunc // nil 이면 미션 기록을 건드리지 않는다
	Now        time.Time
}

// RecordGameResult: game_results 행을 추가하고, Merge 가 있으면 미션 기록 능력치를 같은 트랜잭션에서 갱신한다.
// 미션 기록이 없으면 아무것도 쓰지 않고 nil 을 반환한다.
// 잠근 기록이 이미 completed 면 ErrMissionPlayerCompleted 를 반환한다.
func (r *Repository) RecordGameResult(ctx context.Context, p GameResultParams) (*model.MissionPlayerRecord, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}

	abilitiesJSON, err := json.Marshal(p.Abilities)
	if err != nil {
		return nil, fmt.Errorf("marshal game abilities failed: %w", err)
	}

	tx := r.db.WithContext(ctx).Begin()
	if err := tx.Error; err != nil {
		return nil, dbError("game_result_begin", err)
	}

	var current MissionPlayerRow
	err = lockForUpdate(tx).
		Where("mission_id = ? AND player_id = ?", p.MissionID, p.PlayerID).
		Take(&current).Error
	if isNotFound(err) {
		tx.Rollback()
		return nil, nil
	}
	if err != nil {
		tx.Rollback()
		return nil, dbError("game_result_read_mission_player", err)
	}
	if current.State == string(model.MissionStateCompleted) {
		tx.Rollback()
		return nil, ErrMissionPlayerCompleted
	}

	row := GameResultRow{
		MissionID:     p.MissionID,
		PlayerID:      p.PlayerID,
		GameRef:       p.GameRef,
		BaseScore:     p.BaseScore,
		Difficulty:    string(p.Difficulty),
		IsWin:         p.IsWin,
		Judged:        p.Judged,
		AbilitiesJSON: string(abilitiesJSON),
		CreatedAt:     p.Now,
	}
	if err := tx.Create(&row).Error; err != nil {
		tx.Rollback()
		return nil, dbError("game_result_insert", err)
	}

	if p.Merge != nil {
		merged := p.Merge(current.toModel().Abilities)
		if len(merged) > 0 {
			updates := abilityAssignments(merged)
			updates["updated_at"] = p.Now
			if err := tx.Model(&MissionPlayerRow{}).
				Where("id = ?", current.ID).
				Updates(updates).Error; err != nil {
				tx.Rollback()
				return nil, dbError("game_result_merge_abilities", err)
			}
		}
	}

	var updated MissionPlayerRow
	if err := tx.Where("id = ?", current.ID).Take(&updated).Error; err != nil {
		tx.Rollback()
		return nil, dbError("game_result_reload_mission_player", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, dbError("game_result_commit", err)
	}

	rec := updated.toModel()
	return &rec, nil
}

// ListCompletedGameResults: completed 상태인 미션에 속한 플레이어의 게임 결과를 기록 순으로 조회한다.
func (r *Repository) ListCompletedGameResults(ctx context.Context, playerID uint64) ([]model.GameResult, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}

	completedMissions := r.db.WithContext(ctx).
		Model(&MissionPlayerRow{}).
		Select("mission_id").
		Where("player_id = ? AND state = ?", playerID, string(model.MissionStateCompleted))

	var rows []GameResultRow
	if err := r.db.WithContext(ctx).
		Where("player_id = ? AND mission_id IN (?)", playerID, completedMissions).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, dbError("game_result_list_completed", err)
	}

	out := make([]model.GameResult, 0, len(rows))
	for i := range rows {
		res, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (r *GameResultRow) toModel() (model.GameResult, error) {
	abilities := make(model.AbilityScores)
	if r.AbilitiesJSON != "" {
		if err := json.Unmarshal([]byte(r.AbilitiesJSON), &abilities); err != nil {
			return model.GameResult{}, fmt.Errorf("unmarshal game abilities failed id=%d: %w", r.ID, err)
		}
	}
	return model.GameResult{
		ID:         r.ID,
		MissionID:  r.MissionID,
		PlayerID:   r.PlayerID,
		GameRef:    r.GameRef,
		BaseScore:  r.BaseScore,
		Difficulty: model.Difficulty(r.Difficulty),
		IsWin:      r.IsWin,
		Judged:     r.Judged,
		Abilities:  abilities,
		CreatedAt:  r.CreatedAt,
	}, nil
}

// lockForUpdate PostgreSQL 에서만 SELECT ... FOR UPDATE 를 건다.
// SQLite 는 트랜잭션 자체가 쓰기 직렬화를 보장한다.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector != nil && tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
