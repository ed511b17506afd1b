package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/park285/spycard-go/internal/spycard/model"
)

// GetProfile: Spy Card 프로필을 조회한다. 없으면 nil 을 반환한다.
func (r *Repository) GetProfile(ctx context.Context, username string) (*model.SpyCardProfile, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var row SpyCardProfileRow
	err := r.db.WithContext(ctx).Where("username = ?", username).Take(&row).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, dbError("profile_get", err)
	}
	p := row.toModel()
	return &p, nil
}

// GetOrCreateProfile: 프로필을 조회하고, 없으면 총점 0 / D 등급으로 만든다.
func (r *Repository) GetOrCreateProfile(ctx context.Context, username string) (model.SpyCardProfile, bool, error) {
	if err := r.ensureDB(); err != nil {
		return model.SpyCardProfile{}, false, err
	}

	row := SpyCardProfileRow{
		Username:    username,
		OverallRank: int(model.LowestRank),
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoNothing: true,
	}).Create(&row)
	if res.Error != nil {
		return model.SpyCardProfile{}, false, dbError("profile_create", res.Error)
	}

	stored, err := r.GetProfile(ctx, username)
	if err != nil {
		return model.SpyCardProfile{}, false, err
	}
	if stored == nil {
		return model.SpyCardProfile{}, false, dbError("profile_create", gorm.ErrRecordNotFound)
	}
	return *stored, res.RowsAffected > 0, nil
}

// UpdateProfileVersioned: 여섯 능력치 총점, 종합 총점, 등급을 한 번의 UPDATE 로 덮어쓴다.
// p.Version 이 저장된 version 과 다르면 아무것도 쓰지 않고 false 를 반환한다.
func (r *Repository) UpdateProfileVersioned(ctx context.Context, p model.SpyCardProfile, now time.Time) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}

	updates := make(map[string]any, len(model.Abilities)+4)
	for _, a := range model.Abilities {
		updates[string(a)] = p.AbilityTotals[a]
	}
	updates["overall_total"] = p.OverallTotal
	updates["overall_rank"] = int(p.OverallRank)
	updates["version"] = gorm.Expr("version + 1")
	updates["updated_at"] = now

	res := r.db.WithContext(ctx).
		Model(&SpyCardProfileRow{}).
		Where("username = ? AND version = ?", p.Username, p.Version).
		Updates(updates)
	if res.Error != nil {
		return false, dbError("profile_update", res.Error)
	}
	return res.RowsAffected == 1, nil
}
