package httpapi

import (
	"time"

	json "github.com/goccy/go-json"

	"github.com/park285/spycard-go/internal/spycard/catalog"
	serrors "github.com/park285/spycard-go/internal/spycard/errors"
	"github.com/park285/spycard-go/internal/spycard/model"
	"github.com/park285/spycard-go/internal/spycard/service"
)

type (
	// RegisterPlayerRequest: 플레이어 등록 요청 DTO
	RegisterPlayerRequest struct {
		Username string `json:"username"`
	}

	// PlayerResponse: 플레이어 응답 DTO
	PlayerResponse struct {
		ID        uint64    `json:"id"`
		Username  string    `json:"username"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// UpdateOverallRequest: 종합 점수 갱신 요청 DTO. null 이면 점수를 지운다.
	UpdateOverallRequest struct {
		Score *float64 `json:"score"`
	}

	// UpdateAbilitiesRequest: 능력치 부분 갱신 요청 DTO. 값이 null 인 키는 NULL 로 지운다.
	UpdateAbilitiesRequest struct {
		Abilities map[string]*float64 `json:"abilities"`
	}

	// ScoreGameRequest: 게임 결과 채점 요청 DTO
	ScoreGameRequest struct {
		BaseScore    float64         `json:"baseScore"`
		Difficulty   string          `json:"difficulty"`
		IsWin        bool            `json:"isWin"`
		JudgePayload json.RawMessage `json:"judgePayload,omitempty"`
	}

	// PlayerScoreRequest: 미션 완료 요청의 플레이어 한 명분 점수
	PlayerScoreRequest struct {
		PlayerID  uint64              `json:"playerId"`
		Overall   *float64            `json:"overall"`
		Abilities map[string]*float64 `json:"abilities,omitempty"`
	}

	// CompleteMissionRequest: 미션 완료 요청 DTO
	CompleteMissionRequest struct {
		Players []PlayerScoreRequest `json:"players"`
	}
)

// MissionPlayerResponse: 미션 참가 기록 응답 DTO. 능력치는 여섯 키를 모두 싣고 NULL 은 null 로 보낸다.
type MissionPlayerResponse struct {
	MissionID    string          `json:"missionId"`
	PlayerID     uint64          `json:"playerId"`
	Username     string          `json:"username"`
	Abilities    map[string]*int `json:"abilities"`
	Overall      *int            `json:"overall"`
	State        string          `json:"state"`
	DisplayState string          `json:"displayState"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// GameScoreResponse: 게임 채점 결과 응답 DTO
type GameScoreResponse struct {
	GameRef   string                `json:"gameRef"`
	Judged    bool                  `json:"judged"`
	Rank      string                `json:"rank"`
	Abilities map[string]int        `json:"abilities"`
	Record    MissionPlayerResponse `json:"record"`
}

// FailedPlayerResponse: 미션 완료에서 건너뛴 플레이어
type FailedPlayerResponse struct {
	PlayerID uint64 `json:"playerId"`
	Reason   string `json:"reason"`
}

// CompleteMissionResponse: 미션 완료 결과 응답 DTO
type CompleteMissionResponse struct {
	MissionID string                  `json:"missionId"`
	Completed []MissionPlayerResponse `json:"completed"`
	Failed    []FailedPlayerResponse  `json:"failed"`
}

// ProfileResponse: Spy Card 프로필 응답 DTO
type ProfileResponse struct {
	Username      string         `json:"username"`
	AbilityTotals map[string]int `json:"abilityTotals"`
	OverallTotal  int            `json:"overallTotal"`
	OverallRank   string         `json:"overallRank"`
	Version       int64          `json:"version"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// RecalculationResponse: 기록 기반 재계산 결과 응답 DTO
type RecalculationResponse struct {
	Username      string         `json:"username"`
	NoScores      bool           `json:"noScores"`
	Message       string         `json:"message,omitempty"`
	TotalScore    int            `json:"totalScore"`
	OverallRank   string         `json:"overallRank,omitempty"`
	MissionCount  int            `json:"missionCount"`
	AbilityTotals map[string]int `json:"abilityTotals,omitempty"`
}

// CatalogGameResponse: 미션에 매핑된 게임 하나
type CatalogGameResponse struct {
	Ability string             `json:"ability"`
	Ref     string             `json:"ref"`
	Name    string             `json:"name"`
	Judged  bool               `json:"judged"`
	Ratios  map[string]float64 `json:"ratios"`
}

// CatalogMissionResponse: 카탈로그 미션 조회 응답 DTO
type CatalogMissionResponse struct {
	ID    string                `json:"id"`
	Title string                `json:"title"`
	Games []CatalogGameResponse `json:"games"`
}

func toPlayerResponse(p model.Player) PlayerResponse {
	return PlayerResponse{ID: p.ID, Username: p.Username, CreatedAt: p.CreatedAt}
}

func toMissionPlayerResponse(rec model.MissionPlayerRecord) MissionPlayerResponse {
	abilities := make(map[string]*int, len(model.Abilities))
	for _, a := range model.Abilities {
		if v, ok := rec.Abilities.Get(a); ok {
			abilities[string(a)] = &v
			continue
		}
		abilities[string(a)] = nil
	}
	return MissionPlayerResponse{
		MissionID:    rec.MissionID,
		PlayerID:     rec.PlayerID,
		Username:     rec.Username,
		Abilities:    abilities,
		Overall:      rec.Overall,
		State:        string(rec.State),
		DisplayState: string(rec.DisplayState()),
		UpdatedAt:    rec.UpdatedAt,
	}
}

func toMissionPlayerResponses(records []model.MissionPlayerRecord) []MissionPlayerResponse {
	out := make([]MissionPlayerResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toMissionPlayerResponse(rec))
	}
	return out
}

func abilityScoresToMap(scores model.AbilityScores) map[string]int {
	out := make(map[string]int, len(scores))
	for a, v := range scores {
		out[string(a)] = v
	}
	return out
}

func toProfileResponse(p model.SpyCardProfile) ProfileResponse {
	return ProfileResponse{
		Username:      p.Username,
		AbilityTotals: abilityScoresToMap(p.AbilityTotals),
		OverallTotal:  p.OverallTotal,
		OverallRank:   p.OverallRank.String(),
		Version:       p.Version,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toCompleteMissionResponse(result service.CompletionResult) CompleteMissionResponse {
	failed := make([]FailedPlayerResponse, 0, len(result.Failed))
	for _, f := range result.Failed {
		failed = append(failed, FailedPlayerResponse{PlayerID: f.PlayerID, Reason: f.Reason})
	}
	return CompleteMissionResponse{
		MissionID: result.MissionID,
		Completed: toMissionPlayerResponses(result.Completed),
		Failed:    failed,
	}
}

func toCatalogMissionResponse(m catalog.Mission, games map[model.Ability]catalog.Game) CatalogMissionResponse {
	resp := CatalogMissionResponse{ID: m.ID, Title: m.Title, Games: make([]CatalogGameResponse, 0, len(m.Games))}
	for _, a := range model.Abilities {
		ref, ok := m.Games[a]
		if !ok {
			continue
		}
		g := games[a]
		ratios := make(map[string]float64, len(g.Scores))
		for ability, ratio := range g.Ratios() {
			ratios[string(ability)] = ratio
		}
		resp.Games = append(resp.Games, CatalogGameResponse{
			Ability: string(a),
			Ref:     ref,
			Name:    g.Name,
			Judged:  g.Judged,
			Ratios:  ratios,
		})
	}
	return resp
}

// parseAbilityMap: 요청 JSON 의 능력치 키를 Ability 로 바꾼다. 알 수 없는 키는 ValidationError.
func parseAbilityMap(raw map[string]*float64) (map[model.Ability]*float64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[model.Ability]*float64, len(raw))
	for key, v := range raw {
		a, ok := model.ParseAbility(key)
		if !ok {
			return nil, serrors.ValidationError{Field: key, Reason: "unknown ability"}
		}
		out[a] = v
	}
	return out, nil
}
