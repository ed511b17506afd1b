// Package redis 는 Spy Card 의 Valkey 키, 프로필 락, 미션 처리 락, 리포트 캐시를 정의한다.
package redis

import (
	"strconv"

	"github.com/park285/spycard-go/internal/common/valkeyx"
	"github.com/park285/spycard-go/internal/spycard/config"
)

// profileLockKey 는 사용자별 프로필 쓰기 락 키를 생성한다.
// 형식: spycard:profile_lock:{username}
func profileLockKey(username string) string {
	return valkeyx.BuildKey(config.RedisKeyProfileLock, username)
}

// missionCompleteKey 는 미션 완료 처리 중 플래그 키를 생성한다.
// 형식: spycard:mission_complete:{missionID}
func missionCompleteKey(missionID string) string {
	return valkeyx.BuildKey(config.RedisKeyMissionComplete, missionID)
}

// abilityReportKey 는 플레이어별 능력치 리포트 캐시 키를 생성한다.
// 형식: spycard:ability_report:{playerID}
func abilityReportKey(playerID uint64) string {
	return valkeyx.BuildKey(config.RedisKeyAbilityReport, strconv.FormatUint(playerID, 10))
}
