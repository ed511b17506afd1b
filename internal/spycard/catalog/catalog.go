// Package catalog 은 미션/게임 카탈로그(게임 → 능력치 비중, 미션 → 능력치별 게임)를 읽고 조회한다.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/park285/spycard-go/internal/spycard/model"
)

// Game: 카탈로그의 게임 정의
type Game struct {
	Ref    string
	Name   string
	Judged bool
	// Scores 는 능력치별 0..100 점수다. 비중은 Scores / 100.
	Scores map[model.Ability]int
}

// Ratios: 능력치별 비중(0..1). 점수가 0 인 능력치는 포함하지 않는다.
func (g Game) Ratios() map[model.Ability]float64 {
	out := make(map[model.Ability]float64, len(g.Scores))
	for a, score := range g.Scores {
		if score <= 0 {
			continue
		}
		out[a] = float64(score) / 100
	}
	return out
}

// Mission: 능력치별 게임 참조를 갖는 미션. 1~6개의 능력치만 채워질 수 있다.
type Mission struct {
	ID    string
	Title string
	Games map[model.Ability]string
}

// Catalog: 파싱과 검증이 끝난 불변 스냅샷
type Catalog struct {
	games    map[string]Game
	missions map[string]Mission
	// globalAbility 는 미션 매핑이 없는 게임을 위한 전역 게임 → 능력치 조회표다.
	globalAbility map[string]model.Ability
}

type gameDoc struct {
	Name      string         `yaml:"name"`
	Judged    bool           `yaml:"judged"`
	Abilities map[string]int `yaml:"abilities"`
}

type missionDoc struct {
	ID    string            `yaml:"id"`
	Title string            `yaml:"title"`
	Games map[string]string `yaml:"games"`

	// 구형 6필드 형식
	MentalFortitudeGame string `yaml:"mental_fortitude_composure_game"`
	AdaptabilityGame    string `yaml:"adaptability_decision_making_game"`
	AimMechanicalGame   string `yaml:"aim_mechanical_skill_game"`
	GameSenseGame       string `yaml:"game_sense_awareness_game"`
	TeamworkGame        string `yaml:"teamwork_communication_game"`
	StrategyGame        string `yaml:"strategy_game"`
}

type catalogDoc struct {
	Games    map[string]gameDoc `yaml:"games"`
	Missions []missionDoc       `yaml:"missions"`
}

func (d missionDoc) legacyGames() map[model.Ability]string {
	return map[model.Ability]string{
		model.AbilityMentalFortitude: d.MentalFortitudeGame,
		model.AbilityAdaptability:    d.AdaptabilityGame,
		model.AbilityAimMechanical:   d.AimMechanicalGame,
		model.AbilityGameSense:       d.GameSenseGame,
		model.AbilityTeamwork:        d.TeamworkGame,
		model.AbilityStrategy:        d.StrategyGame,
	}
}

// Parse: YAML 카탈로그를 파싱하고 참조 무결성을 검증한다.
func Parse(raw []byte) (*Catalog, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal catalog yaml failed: %w", err)
	}

	c := &Catalog{
		games:         make(map[string]Game, len(doc.Games)),
		missions:      make(map[string]Mission, len(doc.Missions)),
		globalAbility: make(map[string]model.Ability),
	}

	for ref, gd := range doc.Games {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			return nil, fmt.Errorf("game ref is empty")
		}
		scores := make(map[model.Ability]int, len(gd.Abilities))
		for rawAbility, score := range gd.Abilities {
			a, ok := model.ParseAbility(rawAbility)
			if !ok {
				return nil, fmt.Errorf("game %q: unknown ability %q", ref, rawAbility)
			}
			if score < 0 || score > 100 {
				return nil, fmt.Errorf("game %q: ability %s score out of range: %d", ref, a, score)
			}
			scores[a] = score
		}
		c.games[ref] = Game{Ref: ref, Name: gd.Name, Judged: gd.Judged, Scores: scores}
	}

	for _, md := range doc.Missions {
		id := strings.TrimSpace(md.ID)
		if id == "" {
			return nil, fmt.Errorf("mission id is empty")
		}
		if _, dup := c.missions[id]; dup {
			return nil, fmt.Errorf("duplicate mission id %q", id)
		}

		games := make(map[model.Ability]string, len(model.Abilities))
		for rawAbility, ref := range md.Games {
			a, ok := model.ParseAbility(rawAbility)
			if !ok {
				return nil, fmt.Errorf("mission %q: unknown ability %q", id, rawAbility)
			}
			games[a] = strings.TrimSpace(ref)
		}
		for a, ref := range md.legacyGames() {
			ref = strings.TrimSpace(ref)
			if ref == "" {
				continue
			}
			if existing, ok := games[a]; ok && existing != ref {
				return nil, fmt.Errorf("mission %q: conflicting game for %s (%q vs %q)", id, a, existing, ref)
			}
			games[a] = ref
		}
		if len(games) == 0 {
			return nil, fmt.Errorf("mission %q has no games", id)
		}
		for a, ref := range games {
			if _, ok := c.games[ref]; !ok {
				return nil, fmt.Errorf("mission %q: ability %s references unknown game %q", id, a, ref)
			}
		}
		c.missions[id] = Mission{ID: id, Title: md.Title, Games: games}
	}

	c.buildGlobalAbility()
	return c, nil
}

// buildGlobalAbility: 미션 ID 오름차순, 능력치 고정 순서로 처음 나온 매핑을 쓴다.
// 어느 미션에도 묶이지 않은 게임은 점수가 가장 높은 능력치로 분류한다.
func (c *Catalog) buildGlobalAbility() {
	ids := make([]string, 0, len(c.missions))
	for id := range c.missions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		m := c.missions[id]
		for _, a := range model.Abilities {
			ref, ok := m.Games[a]
			if !ok {
				continue
			}
			if _, seen := c.globalAbility[ref]; !seen {
				c.globalAbility[ref] = a
			}
		}
	}

	for ref, g := range c.games {
		if _, ok := c.globalAbility[ref]; ok {
			continue
		}
		best, bestScore := model.Ability(""), 0
		for _, a := range model.Abilities {
			if g.Scores[a] > bestScore {
				best, bestScore = a, g.Scores[a]
			}
		}
		if best != "" {
			c.globalAbility[ref] = best
		}
	}
}

// Mission: 미션 정의를 조회한다.
func (c *Catalog) Mission(missionID string) (Mission, bool) {
	m, ok := c.missions[strings.TrimSpace(missionID)]
	if !ok {
		return Mission{}, false
	}
	return cloneMission(m), true
}

// GamesForMission: 미션의 능력치 → 게임 참조 맵
func (c *Catalog) GamesForMission(missionID string) (map[model.Ability]string, bool) {
	m, ok := c.Mission(missionID)
	if !ok {
		return nil, false
	}
	return m.Games, true
}

// Game: 게임 정의를 조회한다.
func (c *Catalog) Game(ref string) (Game, bool) {
	g, ok := c.games[strings.TrimSpace(ref)]
	if !ok {
		return Game{}, false
	}
	scores := make(map[model.Ability]int, len(g.Scores))
	for a, v := range g.Scores {
		scores[a] = v
	}
	g.Scores = scores
	return g, true
}

// AbilityWeightRatios: 게임의 능력치별 비중(0..1)
func (c *Catalog) AbilityWeightRatios(ref string) (map[model.Ability]float64, bool) {
	g, ok := c.games[strings.TrimSpace(ref)]
	if !ok {
		return nil, false
	}
	return g.Ratios(), true
}

// AbilityForGame: 게임이 속한 능력치. 미션 매핑을 먼저 보고, 없으면 전역 조회표를 쓴다.
func (c *Catalog) AbilityForGame(missionID, ref string) (model.Ability, bool) {
	ref = strings.TrimSpace(ref)
	if m, ok := c.missions[strings.TrimSpace(missionID)]; ok {
		for _, a := range model.Abilities {
			if m.Games[a] == ref {
				return a, true
			}
		}
	}
	a, ok := c.globalAbility[ref]
	return a, ok
}

// MissionIDs: 정렬된 미션 ID 목록
func (c *Catalog) MissionIDs() []string {
	ids := make([]string, 0, len(c.missions))
	for id := range c.missions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func cloneMission(m Mission) Mission {
	games := make(map[model.Ability]string, len(m.Games))
	for a, ref := range m.Games {
		games[a] = ref
	}
	m.Games = games
	return m
}
