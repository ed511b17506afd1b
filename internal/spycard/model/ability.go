// Package model 은 Spy Card 점수 엔진의 도메인 타입(능력치, 랭크, 미션 참가 기록, 프로필, 리포트)을 정의한다.
package model

import "strings"

// Ability: 플레이어를 평가하는 여섯 가지 고정 능력치 축
type Ability string

// AbilityMentalFortitude 등: 능력치 상수. 문자열 값은 JSON 키, YAML 키, 컬럼 이름 접두사로 그대로 쓰인다.
const (
	AbilityMentalFortitude Ability = "mental_fortitude_composure"
	AbilityAdaptability    Ability = "adaptability_decision_making"
	AbilityAimMechanical   Ability = "aim_mechanical_skill"
	AbilityGameSense       Ability = "game_sense_awareness"
	AbilityTeamwork        Ability = "teamwork_communication"
	AbilityStrategy        Ability = "strategy"
)

// Abilities: 여섯 능력치의 고정 순서. 응답과 로그는 항상 이 순서를 따른다.
var Abilities = [...]Ability{
	AbilityMentalFortitude,
	AbilityAdaptability,
	AbilityAimMechanical,
	AbilityGameSense,
	AbilityTeamwork,
	AbilityStrategy,
}

// ParseAbility: 문자열을 Ability 로 변환한다. 대소문자와 하이픈 표기를 허용한다.
func ParseAbility(raw string) (Ability, bool) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_")
	for _, a := range Abilities {
		if string(a) == normalized {
			return a, true
		}
	}
	return "", false
}

// Valid 는 a 가 여섯 능력치 중 하나인지 확인한다.
func (a Ability) Valid() bool {
	for _, known := range Abilities {
		if a == known {
			return true
		}
	}
	return false
}

// AbilityScores: 능력치별 정수 점수. 키가 없으면 값이 없음(NULL)을 뜻한다.
type AbilityScores map[Ability]int

// Clone 은 독립된 복사본을 반환한다.
func (s AbilityScores) Clone() AbilityScores {
	out := make(AbilityScores, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Get 은 값과 존재 여부를 반환한다.
func (s AbilityScores) Get(a Ability) (int, bool) {
	v, ok := s[a]
	return v, ok
}

// Ptr 는 값이 있으면 복사본의 포인터를, 없으면 nil 을 반환한다.
func (s AbilityScores) Ptr(a Ability) *int {
	v, ok := s[a]
	if !ok {
		return nil
	}
	return &v
}
