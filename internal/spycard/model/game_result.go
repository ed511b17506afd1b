package model

import "time"

// GameResult: 게임 한 판의 기록. BaseScore 는 원점수, Abilities 는 공식을 거친 능력치 점수다.
type GameResult struct {
	ID         uint64
	MissionID  string
	PlayerID   uint64
	GameRef    string
	BaseScore  int
	Difficulty Difficulty
	IsWin      bool
	Judged     bool
	Abilities  AbilityScores
	CreatedAt  time.Time
}
