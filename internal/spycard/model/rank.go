package model

import (
	"fmt"
	"strings"
)

// SkillRank: 5단계 서열 등급. 숫자가 작을수록 높은 등급이다. (S=1 ... D=5)
type SkillRank int

// RankS 등: 등급 상수
const (
	RankS SkillRank = iota + 1
	RankA
	RankB
	RankC
	RankD
)

// LowestRank: 최하위 등급. 신규 프로필의 기본값이다.
const LowestRank = RankD

type rankThreshold struct {
	rank     SkillRank
	minTotal int
	modifier float64
}

// rankTable: 높은 등급부터 내림차순으로 정렬된 단일 임계값 표.
// D 는 하한이 없으며 표에서 어떤 임계값도 만족하지 못한 경우의 기본값이다.
var rankTable = [...]rankThreshold{
	{rank: RankS, minTotal: 80, modifier: 1.0},
	{rank: RankA, minTotal: 60, modifier: 1.2},
	{rank: RankB, minTotal: 40, modifier: 1.4},
	{rank: RankC, minTotal: 20, modifier: 1.6},
}

const lowestRankModifier = 1.8

// RankForTotal: 누적 총점을 등급으로 변환한다. 음수를 포함한 모든 값에 대해 유효한 등급을 반환한다.
func RankForTotal(total int) SkillRank {
	for _, t := range rankTable {
		if total >= t.minTotal {
			return t.rank
		}
	}
	return LowestRank
}

// ModifierForRank: 등급별 점수 배율. 등급이 높을수록 배율이 작다.
// 범위 밖의 값은 최하위 등급으로 취급한다.
func ModifierForRank(rank SkillRank) float64 {
	for _, t := range rankTable {
		if t.rank == rank {
			return t.modifier
		}
	}
	return lowestRankModifier
}

// Valid 는 r 이 S..D 범위인지 확인한다.
func (r SkillRank) Valid() bool { return r >= RankS && r <= RankD }

// BetterThan 은 r 이 other 보다 높은 등급인지 확인한다.
func (r SkillRank) BetterThan(other SkillRank) bool { return r < other }

func (r SkillRank) String() string {
	switch r {
	case RankS:
		return "S"
	case RankA:
		return "A"
	case RankB:
		return "B"
	case RankC:
		return "C"
	case RankD:
		return "D"
	default:
		return fmt.Sprintf("SkillRank(%d)", int(r))
	}
}

// ParseRank: "S".."D" 문자열을 SkillRank 로 변환한다.
func ParseRank(raw string) (SkillRank, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "S":
		return RankS, true
	case "A":
		return RankA, true
	case "B":
		return RankB, true
	case "C":
		return RankC, true
	case "D":
		return RankD, true
	default:
		return 0, false
	}
}
