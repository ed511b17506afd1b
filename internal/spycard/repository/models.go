package repository

import (
	"time"

	"github.com/park285/spycard-go/internal/spycard/model"
)

// PlayerRow: 플레이어 등록 정보
type PlayerRow struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Username  string    `gorm:"column:username;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (PlayerRow) TableName() string { return "players" }

// MissionPlayerRow: (미션, 플레이어) 점수 기록
// 복합 유니크 인덱스: idx_mission_players_mission_player (mission_id, player_id)
type MissionPlayerRow struct {
	ID                         uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	MissionID                  string    `gorm:"column:mission_id;not null;uniqueIndex:idx_mission_players_mission_player,priority:1"`
	PlayerID                   uint64    `gorm:"column:player_id;not null;uniqueIndex:idx_mission_players_mission_player,priority:2;index"`
	Username                   string    `gorm:"column:username;not null;default:''"`
	MentalFortitudeComposure   *int      `gorm:"column:mental_fortitude_composure"`
	AdaptabilityDecisionMaking *int      `gorm:"column:adaptability_decision_making"`
	AimMechanicalSkill         *int      `gorm:"column:aim_mechanical_skill"`
	GameSenseAwareness         *int      `gorm:"column:game_sense_awareness"`
	TeamworkCommunication      *int      `gorm:"column:teamwork_communication"`
	Strategy                   *int      `gorm:"column:strategy"`
	Overall                    *int      `gorm:"column:overall"`
	State                      string    `gorm:"column:state;not null;default:'playing';index"`
	CommittedMental            *int      `gorm:"column:committed_mental_fortitude_composure"`
	CommittedAdaptability      *int      `gorm:"column:committed_adaptability_decision_making"`
	CommittedAim               *int      `gorm:"column:committed_aim_mechanical_skill"`
	CommittedGameSense         *int      `gorm:"column:committed_game_sense_awareness"`
	CommittedTeamwork          *int      `gorm:"column:committed_teamwork_communication"`
	CommittedStrategy          *int      `gorm:"column:committed_strategy"`
	CommittedOverall           *int      `gorm:"column:committed_overall"`
	CreatedAt                  time.Time `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt                  time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (MissionPlayerRow) TableName() string { return "mission_players" }

func (r *MissionPlayerRow) abilityField(a model.Ability) **int {
	switch a {
	case model.AbilityMentalFortitude:
		return &r.MentalFortitudeComposure
	case model.AbilityAdaptability:
		return &r.AdaptabilityDecisionMaking
	case model.AbilityAimMechanical:
		return &r.AimMechanicalSkill
	case model.AbilityGameSense:
		return &r.GameSenseAwareness
	case model.AbilityTeamwork:
		return &r.TeamworkCommunication
	case model.AbilityStrategy:
		return &r.Strategy
	default:
		return nil
	}
}

// committedField 는 마지막 완료 때 전파된 능력치 기준값 컬럼을 가리킨다.
func (r *MissionPlayerRow) committedField(a model.Ability) **int {
	switch a {
	case model.AbilityMentalFortitude:
		return &r.CommittedMental
	case model.AbilityAdaptability:
		return &r.CommittedAdaptability
	case model.AbilityAimMechanical:
		return &r.CommittedAim
	case model.AbilityGameSense:
		return &r.CommittedGameSense
	case model.AbilityTeamwork:
		return &r.CommittedTeamwork
	case model.AbilityStrategy:
		return &r.CommittedStrategy
	default:
		return nil
	}
}

func (r *MissionPlayerRow) toModel() model.MissionPlayerRecord {
	abilities := make(model.AbilityScores, len(model.Abilities))
	committed := make(model.AbilityScores, len(model.Abilities))
	for _, a := range model.Abilities {
		if v := *r.abilityField(a); v != nil {
			abilities[a] = *v
		}
		if v := *r.committedField(a); v != nil {
			committed[a] = *v
		}
	}
	return model.MissionPlayerRecord{
		MissionID: r.MissionID,
		PlayerID:  r.PlayerID,
		Username:  r.Username,
		Abilities: abilities,
		Overall:   copyInt(r.Overall),
		State:     model.MissionState(r.State),
		Committed: model.CommittedScores{
			Abilities: committed,
			Overall:   copyInt(r.CommittedOverall),
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// SpyCardProfileRow: 사용자별 누적 프로필. version 으로 낙관적 동시성 제어를 한다.
type SpyCardProfileRow struct {
	ID                         uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Username                   string    `gorm:"column:username;not null;uniqueIndex"`
	MentalFortitudeComposure   int       `gorm:"column:mental_fortitude_composure;not null;default:0"`
	AdaptabilityDecisionMaking int       `gorm:"column:adaptability_decision_making;not null;default:0"`
	AimMechanicalSkill         int       `gorm:"column:aim_mechanical_skill;not null;default:0"`
	GameSenseAwareness         int       `gorm:"column:game_sense_awareness;not null;default:0"`
	TeamworkCommunication      int       `gorm:"column:teamwork_communication;not null;default:0"`
	Strategy                   int       `gorm:"column:strategy;not null;default:0"`
	OverallTotal               int       `gorm:"column:overall_total;not null;default:0"`
	OverallRank                int       `gorm:"column:overall_rank;not null;default:5"`
	Version                    int64     `gorm:"column:version;not null;default:0"`
	CreatedAt                  time.Time `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt                  time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (SpyCardProfileRow) TableName() string { return "spy_card_profiles" }

func (r *SpyCardProfileRow) abilityField(a model.Ability) *int {
	switch a {
	case model.AbilityMentalFortitude:
		return &r.MentalFortitudeComposure
	case model.AbilityAdaptability:
		return &r.AdaptabilityDecisionMaking
	case model.AbilityAimMechanical:
		return &r.AimMechanicalSkill
	case model.AbilityGameSense:
		return &r.GameSenseAwareness
	case model.AbilityTeamwork:
		return &r.TeamworkCommunication
	case model.AbilityStrategy:
		return &r.Strategy
	default:
		return nil
	}
}

func (r *SpyCardProfileRow) toModel() model.SpyCardProfile {
	totals := make(model.AbilityScores, len(model.Abilities))
	for _, a := range model.Abilities {
		totals[a] = *r.abilityField(a)
	}
	rank := model.SkillRank(r.OverallRank)
	if !rank.Valid() {
		rank = model.LowestRank
	}
	return model.SpyCardProfile{
		Username:      r.Username,
		AbilityTotals: totals,
		OverallTotal:  r.OverallTotal,
		OverallRank:   rank,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// GameResultRow: 게임 한 판의 원점수와 계산된 능력치 점수
// 복합 인덱스: idx_game_results_player_mission (player_id, mission_id)
type GameResultRow struct {
	ID            uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	MissionID     string    `gorm:"column:mission_id;not null;index:idx_game_results_player_mission,priority:2"`
	PlayerID      uint64    `gorm:"column:player_id;not null;index:idx_game_results_player_mission,priority:1"`
	GameRef       string    `gorm:"column:game_ref;not null"`
	BaseScore     int       `gorm:"column:base_score;not null"`
	Difficulty    string    `gorm:"column:difficulty;not null"`
	IsWin         bool      `gorm:"column:is_win;not null"`
	Judged        bool      `gorm:"column:judged;not null;default:false"`
	AbilitiesJSON string    `gorm:"column:abilities_json;not null;default:'{}'"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (GameResultRow) TableName() string { return "game_results" }
