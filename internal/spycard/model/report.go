package model

// ReportSource: 능력치 리포트의 출처
type ReportSource string

// ReportSourceHistory 등: 리포트 출처 상수
const (
	ReportSourceHistory ReportSource = "history"
	ReportSourceSpyCard ReportSource = "spy_card"
)

// AbilityStat: 능력치 하나의 집계 결과. 게임이 없으면 모든 값이 0 이다.
// Score 는 0..100 으로 클램프된 표시용 값이고, AverageScore 는 클램프하지 않은 실제 평균이다.
type AbilityStat struct {
	Score        int     `json:"score"`
	GameCount    int     `json:"gameCount"`
	AverageScore float64 `json:"averageScore"`
}

// AbilityReport: 두 집계 경로(기록 재계산, 프로필 조회)가 공유하는 응답 형태
type AbilityReport struct {
	Source         ReportSource            `json:"source"`
	PlayerID       uint64                  `json:"playerId,omitempty"`
	Username       string                  `json:"username,omitempty"`
	Abilities      map[Ability]AbilityStat `json:"abilities"`
	OverallAverage float64                 `json:"overallAverage"`
	TotalGames     int                     `json:"totalGames"`
	OverallRank    string                  `json:"overallRank,omitempty"`
	OverallTotal   *int                    `json:"overallTotal,omitempty"`
}

// NewAbilityReport: 여섯 능력치가 모두 0 으로 채워진 리포트를 만든다.
func NewAbilityReport(source ReportSource) AbilityReport {
	abilities := make(map[Ability]AbilityStat, len(Abilities))
	for _, a := range Abilities {
		abilities[a] = AbilityStat{}
	}
	return AbilityReport{Source: source, Abilities: abilities}
}

// RecalculationResult: 기록 기반 재계산 결과
type RecalculationResult struct {
	Username      string
	NoScores      bool
	TotalScore    int
	OverallRank   SkillRank
	MissionCount  int
	AbilityTotals AbilityScores
}
