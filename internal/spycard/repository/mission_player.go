package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/park285/spycard-go/internal/spycard/model"
)

// MissionCompletionParams: 미션 완료 기록 파라미터 구조체
type MissionCompletionParams struct {
	MissionID string
	PlayerID  uint64
	Overall   *int                   // nil 이면 저장된 값을 유지한다
	Abilities map[model.Ability]*int // 키가 있는 능력치만 갱신, nil 값은 NULL
	Now       time.Time
}

// CreateMissionPlayer: 플레이어의 미션 참가 기록을 playing 상태로 만든다.
// 이미 있으면 기존 기록을 그대로 반환하고 created 는 false 다.
func (r *Repository) CreateMissionPlayer(
	ctx context.Context,
	missionID string,
	player model.Player,
) (model.MissionPlayerRecord, bool, error) {
	if err := r.ensureDB(); err != nil {
		return model.MissionPlayerRecord{}, false, err
	}

	row := MissionPlayerRow{
		MissionID: missionID,
		PlayerID:  player.ID,
		Username:  player.Username,
		State:     string(model.MissionStatePlaying),
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "mission_id"},
			{Name: "player_id"},
		},
		DoNothing: true,
	}).Create(&row)
	if res.Error != nil {
		return model.MissionPlayerRecord{}, false, dbError("mission_player_create", res.Error)
	}

	stored, err := r.GetMissionPlayer(ctx, missionID, player.ID)
	if err != nil {
		return model.MissionPlayerRecord{}, false, err
	}
	if stored == nil {
		return model.MissionPlayerRecord{}, false, dbError("mission_player_create", gorm.ErrRecordNotFound)
	}
	return *stored, res.RowsAffected > 0, nil
}

// GetMissionPlayer: 미션 참가 기록을 조회한다. 없으면 nil 을 반환한다.
func (r *Repository) GetMissionPlayer(ctx context.Context, missionID string, playerID uint64) (*model.MissionPlayerRecord, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var row MissionPlayerRow
	err := r.db.WithContext(ctx).
		Where("mission_id = ? AND player_id = ?", missionID, playerID).
		Take(&row).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, dbError("mission_player_get", err)
	}
	rec := row.toModel()
	return &rec, nil
}

// UpdateMissionOverall: 종합 점수 컬럼만 갱신한다. 기록이 없으면 false 를 반환한다.
func (r *Repository) UpdateMissionOverall(
	ctx context.Context,
	missionID string,
	playerID uint64,
	overall *int,
	now time.Time,
) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	res := r.missionPlayerScope(ctx, missionID, playerID).Updates(map[string]any{
		"overall":    nullableInt(overall),
		"updated_at": now,
	})
	if res.Error != nil {
		return false, dbError("mission_player_update_overall", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// UpdateMissionAbilities: 전달된 능력치 컬럼만 갱신한다. nil 값은 NULL 로 지운다.
// 기록이 없으면 false 를 반환한다.
func (r *Repository) UpdateMissionAbilities(
	ctx context.Context,
	missionID string,
	playerID uint64,
	abilities map[model.Ability]*int,
	now time.Time,
) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	updates := abilityAssignments(abilities)
	updates["updated_at"] = now

	res := r.missionPlayerScope(ctx, missionID, playerID).Updates(updates)
	if res.Error != nil {
		return false, dbError("mission_player_update_abilities", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MissionCompletion: 완료 처리 직전과 직후의 미션 기록
type MissionCompletion struct {
	Previous model.MissionPlayerRecord
	Updated  model.MissionPlayerRecord
}

// CompleteMissionPlayer: 한 트랜잭션에서 기록을 잠그고 종합 점수, 능력치, completed 상태를 기록한다.
// 기록 후의 점수는 committed_* 기준값으로도 남겨 다음 완료의 변화량 기준이 된다.
// 기록이 없으면 아무것도 쓰지 않고 nil 을 반환한다.
func (r *Repository) CompleteMissionPlayer(ctx context.Context, p MissionCompletionParams) (*MissionCompletion, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}

	tx := r.db.WithContext(ctx).Begin()
	if err := tx.Error; err != nil {
		return nil, dbError("mission_player_complete_begin", err)
	}

	var current MissionPlayerRow
	err := lockForUpdate(tx).
		Where("mission_id = ? AND player_id = ?", p.MissionID, p.PlayerID).
		Take(&current).Error
	if isNotFound(err) {
		tx.Rollback()
		return nil, nil
	}
	if err != nil {
		tx.Rollback()
		return nil, dbError("mission_player_complete_read", err)
	}

	next := current
	for a, v := range p.Abilities {
		field := next.abilityField(a)
		if field == nil {
			continue
		}
		*field = copyInt(v)
	}
	if p.Overall != nil {
		next.Overall = copyInt(p.Overall)
	}
	for _, a := range model.Abilities {
		*next.committedField(a) = copyInt(*next.abilityField(a))
	}
	next.CommittedOverall = copyInt(next.Overall)
	next.State = string(model.MissionStateCompleted)
	next.UpdatedAt = p.Now

	if err := tx.Model(&MissionPlayerRow{}).
		Where("id = ?", current.ID).
		Updates(completionAssignments(&next)).Error; err != nil {
		tx.Rollback()
		return nil, dbError("mission_player_complete", err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, dbError("mission_player_complete_commit", err)
	}

	return &MissionCompletion{
		Previous: current.toModel(),
		Updated:  next.toModel(),
	}, nil
}

// ListCompletedMissionPlayers: 플레이어의 completed 기록을 생성 순으로 조회한다.
func (r *Repository) ListCompletedMissionPlayers(ctx context.Context, playerID uint64) ([]model.MissionPlayerRecord, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var rows []MissionPlayerRow
	if err := r.db.WithContext(ctx).
		Where("player_id = ? AND state = ?", playerID, string(model.MissionStateCompleted)).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, dbError("mission_player_list_completed", err)
	}

	out := make([]model.MissionPlayerRecord, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, nil
}

func (r *Repository) missionPlayerScope(ctx context.Context, missionID string, playerID uint64) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&MissionPlayerRow{}).
		Where("mission_id = ? AND player_id = ?", missionID, playerID)
}

// completionAssignments 는 NULL 을 포함해 점수 컬럼 전체를 명시적으로 쓴다.
func completionAssignments(row *MissionPlayerRow) map[string]any {
	updates := make(map[string]any, 2*len(model.Abilities)+4)
	for _, a := range model.Abilities {
		updates[string(a)] = nullableInt(*row.abilityField(a))
		updates["committed_"+string(a)] = nullableInt(*row.committedField(a))
	}
	updates["overall"] = nullableInt(row.Overall)
	updates["committed_overall"] = nullableInt(row.CommittedOverall)
	updates["state"] = row.State
	updates["updated_at"] = row.UpdatedAt
	return updates
}

func abilityAssignments(abilities map[model.Ability]*int) map[string]any {
	updates := make(map[string]any, len(abilities)+3)
	for a, v := range abilities {
		if !a.Valid() {
			continue
		}
		updates[string(a)] = nullableInt(v)
	}
	return updates
}
