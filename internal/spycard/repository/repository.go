// Package repository 는 Spy Card 점수 데이터를 gorm 으로 저장한다.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	cerrors "github.com/park285/spycard-go/internal/common/errors"
)

// Repository: DB 접근을 위한 GORM 기반 리포지토리
// 메서드들은 도메인별 파일로 분리됨:
//   - player.go: 플레이어 등록
//   - mission_player.go: 미션 참가 기록 부분 갱신/완료
//   - profile.go: Spy Card 프로필 생성/버전 갱신
//   - game_result.go: 게임 결과 기록과 조회
type Repository struct {
	db *gorm.DB
}

// New: 새로운 Repository 인스턴스를 생성한다.
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AutoMigrate: 자동으로 DB 테이블 스키마를 마이그레이션한다.
func (r *Repository) AutoMigrate(ctx context.Context) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	if err := r.db.WithContext(ctx).AutoMigrate(
		&PlayerRow{},
		&MissionPlayerRow{},
		&SpyCardProfileRow{},
		&GameResultRow{},
	); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

// Ping: 헬스 체크용 DB 연결 확인
func (r *Repository) Ping(ctx context.Context) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db failed: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping failed: %w", err)
	}
	return nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	return nil
}

func dbError(operation string, err error) error {
	return cerrors.DatabaseError{Operation: operation, Err: err}
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
