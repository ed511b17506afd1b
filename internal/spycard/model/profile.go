package model

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// SpyCardProfile: 사용자별 누적 능력치 프로필
type SpyCardProfile struct {
	Username      string
	AbilityTotals AbilityScores // 여섯 능력치 모두 채워진다
	OverallTotal  int
	OverallRank   SkillRank
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewSpyCardProfile: 총점 0, 최하위 등급의 빈 프로필을 만든다.
func NewSpyCardProfile(username string) SpyCardProfile {
	totals := make(AbilityScores, len(Abilities))
	for _, a := range Abilities {
		totals[a] = 0
	}
	return SpyCardProfile{
		Username:      username,
		AbilityTotals: totals,
		OverallRank:   LowestRank,
	}
}

// NormalizeUsername: 사용자명을 NFC 정규화하고 앞뒤 공백을 제거한다.
func NormalizeUsername(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}

// Player: 플레이어 등록 정보
type Player struct {
	ID        uint64
	Username  string
	CreatedAt time.Time
}
