package model

import "time"

// MissionState: 미션 참가 기록의 수명 주기 상태.
// completed 로의 전이는 미션 완료 처리만 수행한다.
type MissionState string

// MissionStatePlaying 등: 상태 상수
const (
	MissionStatePlaying   MissionState = "playing"
	MissionStateCompleted MissionState = "completed"
)

// MissionPlayerRecord: (미션, 플레이어) 당 하나인 점수 기록
type MissionPlayerRecord struct {
	MissionID string
	PlayerID  uint64
	Username  string
	Abilities AbilityScores // 키 없음 = NULL
	Overall   *int
	State     MissionState
	Committed CommittedScores
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CommittedScores: 마지막 미션 완료 때 프로필로 전파된 기준값.
// 완료된 적이 없으면 비어 있고, 다음 완료의 변화량은 이 값에서 계산한다.
type CommittedScores struct {
	Abilities AbilityScores
	Overall   *int
}

// DisplayState: 화면 표시용 상태 힌트. 종합 점수가 있으면 completed 로 보여준다.
// 저장된 State 가 권위 있는 값이며, 이 값으로 State 를 바꾸지 않는다.
func (r MissionPlayerRecord) DisplayState() MissionState {
	if r.Overall != nil {
		return MissionStateCompleted
	}
	return r.State
}

// PlayerScore: 미션 완료 시 플레이어 한 명에게 적용할 점수 입력.
// Overall 이 nil 이면 저장된 종합 점수를 유지하고, Abilities 에 없는 능력치는 건드리지 않는다.
type PlayerScore struct {
	PlayerID  uint64
	Overall   *float64
	Abilities map[Ability]*float64
}
