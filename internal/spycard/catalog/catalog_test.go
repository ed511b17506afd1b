package catalog

import (
	"testing"

	"github.com/park285/spycard-go/internal/spycard/assets"
	"github.com/park285/spycard-go/internal/spycard/model"
)

func TestParse_DefaultCatalog(t *testing.T) {
	c, err := Parse(assets.DefaultCatalogYAML)
	if err != nil {
		t.Fatalf("parse default catalog failed: %v", err)
	}

	games, ok := c.GamesForMission("operation-nightfall")
	if !ok {
		t.Fatal("expected operation-nightfall")
	}
	if len(games) != 6 {
		t.Fatalf("expected 6 games, got %d", len(games))
	}

	partial, ok := c.GamesForMission("operation-daybreak")
	if !ok || len(partial) != 3 {
		t.Fatalf("expected sparse mission with 3 games, got %v", partial)
	}
	if _, has := partial[model.AbilityAimMechanical]; has {
		t.Fatal("sparse mission must not report unmapped abilities")
	}
}

func TestParse_LegacyShapeMergedIntoMap(t *testing.T) {
	c, err := Parse(assets.DefaultCatalogYAML)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	legacy, ok := c.GamesForMission("legacy-blackout")
	if !ok {
		t.Fatal("expected legacy mission")
	}
	if legacy[model.AbilityStrategy] != "code-breaker" || legacy[model.AbilityMentalFortitude] != "pressure-vault" {
		t.Fatalf("unexpected legacy mapping: %v", legacy)
	}
	if len(legacy) != 6 {
		t.Fatalf("expected 6 legacy games, got %d", len(legacy))
	}
}

func TestCatalog_AbilityWeightRatios(t *testing.T) {
	c, err := Parse(assets.DefaultCatalogYAML)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	ratios, ok := c.AbilityWeightRatios("reflex-range")
	if !ok {
		t.Fatal("expected reflex-range")
	}
	if ratios[model.AbilityAimMechanical] != 0.9 || ratios[model.AbilityMentalFortitude] != 0.3 {
		t.Fatalf("unexpected ratios: %v", ratios)
	}
	if _, has := ratios[model.AbilityStrategy]; has {
		t.Fatal("unscored ability must be absent")
	}
	if _, ok := c.AbilityWeightRatios("missing"); ok {
		t.Fatal("unknown game must not resolve")
	}
}

func TestCatalog_AbilityForGame(t *testing.T) {
	raw := []byte(`
games:
  g1:
    abilities: {strategy: 50}
  g2:
    abilities: {teamwork_communication: 70, strategy: 20}
  orphan:
    abilities: {aim_mechanical_skill: 10, game_sense_awareness: 60}
missions:
  - id: a
    games: {strategy: g1, teamwork_communication: g2}
  - id: b
    games: {game_sense_awareness: g1}
`)
	c, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if a, ok := c.AbilityForGame("b", "g1"); !ok || a != model.AbilityGameSense {
		t.Fatalf("mission mapping must win, got %q", a)
	}
	if a, ok := c.AbilityForGame("unknown", "g1"); !ok || a != model.AbilityStrategy {
		t.Fatalf("global mapping must use first mission by id, got %q", a)
	}
	if a, ok := c.AbilityForGame("", "orphan"); !ok || a != model.AbilityGameSense {
		t.Fatalf("unmapped game must fall back to highest score, got %q", a)
	}
	if _, ok := c.AbilityForGame("", "nope"); ok {
		t.Fatal("unknown game must not resolve")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown ability":   "games:\n  g:\n    abilities: {luck: 10}\n",
		"score range":       "games:\n  g:\n    abilities: {strategy: 120}\n",
		"unknown game ref":  "games:\n  g:\n    abilities: {strategy: 10}\nmissions:\n  - id: m\n    games: {strategy: nope}\n",
		"duplicate mission": "games:\n  g:\n    abilities: {strategy: 10}\nmissions:\n  - id: m\n    games: {strategy: g}\n  - id: m\n    games: {strategy: g}\n",
		"empty mission":     "games:\n  g:\n    abilities: {strategy: 10}\nmissions:\n  - id: m\n",
		"legacy conflict":   "games:\n  g:\n    abilities: {strategy: 10}\n  h:\n    abilities: {strategy: 10}\nmissions:\n  - id: m\n    games: {strategy: g}\n    strategy_game: h\n",
		"invalid yaml":      "games: [",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(raw)); err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	c, err := Parse(assets.DefaultCatalogYAML)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	games, _ := c.GamesForMission("operation-nightfall")
	games[model.AbilityStrategy] = "mutated"

	again, _ := c.GamesForMission("operation-nightfall")
	if again[model.AbilityStrategy] != "code-breaker" {
		t.Fatal("callers must not be able to mutate the snapshot")
	}
}
