package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/park285/spycard-go/internal/spycard/model"
)

// UpsertPlayer: 사용자명으로 플레이어를 등록한다. 이미 있으면 기존 행을 반환한다.
// username 은 호출자가 정규화해서 넘긴다.
func (r *Repository) UpsertPlayer(ctx context.Context, username string) (model.Player, error) {
	if err := r.ensureDB(); err != nil {
		return model.Player{}, err
	}
	if username == "" {
		return model.Player{}, fmt.Errorf("username is empty")
	}

	row := PlayerRow{Username: username}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoNothing: true,
	}).Create(&row).Error; err != nil {
		return model.Player{}, dbError("player_upsert", err)
	}

	var stored PlayerRow
	if err := r.db.WithContext(ctx).Where("username = ?", username).Take(&stored).Error; err != nil {
		return model.Player{}, dbError("player_get", err)
	}
	return stored.toModel(), nil
}

// GetPlayer: id 로 플레이어를 조회한다. 없으면 nil 을 반환한다.
func (r *Repository) GetPlayer(ctx context.Context, playerID uint64) (*model.Player, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var row PlayerRow
	err := r.db.WithContext(ctx).Where("id = ?", playerID).Take(&row).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, dbError("player_get", err)
	}
	p := row.toModel()
	return &p, nil
}

// GetPlayerByUsername: 사용자명으로 플레이어를 조회한다. 없으면 nil 을 반환한다.
func (r *Repository) GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var row PlayerRow
	err := r.db.WithContext(ctx).Where("username = ?", username).Take(&row).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, dbError("player_get_by_username", err)
	}
	p := row.toModel()
	return &p, nil
}

func (r *PlayerRow) toModel() model.Player {
	return model.Player{ID: r.ID, Username: r.Username, CreatedAt: r.CreatedAt}
}
