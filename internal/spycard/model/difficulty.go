package model

import "strings"

// Difficulty: 게임 난이도
type Difficulty string

// DifficultyEasy 등: 난이도 상수
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty: 문자열을 Difficulty 로 변환한다. 빈 문자열은 normal 로 본다.
func ParseDifficulty(raw string) (Difficulty, bool) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(raw))) {
	case DifficultyEasy:
		return DifficultyEasy, true
	case DifficultyNormal, "":
		return DifficultyNormal, true
	case DifficultyHard:
		return DifficultyHard, true
	default:
		return "", false
	}
}
