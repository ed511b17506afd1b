package model

import (
	"testing"

	"github.com/park285/spycard-go/internal/common/ptr"
)

func TestRankForTotal(t *testing.T) {
	tests := []struct {
		total int
		want  SkillRank
	}{
		{total: 100, want: RankS},
		{total: 80, want: RankS},
		{total: 79, want: RankA},
		{total: 60, want: RankA},
		{total: 59, want: RankB},
		{total: 40, want: RankB},
		{total: 56, want: RankB},
		{total: 20, want: RankC},
		{total: 19, want: RankD},
		{total: 0, want: RankD},
		{total: -5, want: RankD},
	}
	for _, tt := range tests {
		if got := RankForTotal(tt.total); got != tt.want {
			t.Errorf("RankForTotal(%d) = %s, want %s", tt.total, got, tt.want)
		}
	}
}

func TestRankForTotal_Monotonic(t *testing.T) {
	prev := RankForTotal(-200)
	for total := -199; total <= 200; total++ {
		got := RankForTotal(total)
		if prev.BetterThan(got) {
			t.Fatalf("rank got worse as total increased: total=%d prev=%s got=%s", total, prev, got)
		}
		prev = got
	}
}

func TestModifierForRank(t *testing.T) {
	want := map[SkillRank]float64{RankS: 1.0, RankA: 1.2, RankB: 1.4, RankC: 1.6, RankD: 1.8}
	for rank, modifier := range want {
		if got := ModifierForRank(rank); got != modifier {
			t.Errorf("ModifierForRank(%s) = %v, want %v", rank, got, modifier)
		}
	}
	if got := ModifierForRank(SkillRank(0)); got != 1.8 {
		t.Errorf("out of range rank must use lowest modifier, got %v", got)
	}
}

func TestParseRank(t *testing.T) {
	for _, raw := range []string{"S", "a", " b ", "C", "d"} {
		r, ok := ParseRank(raw)
		if !ok || !r.Valid() {
			t.Errorf("ParseRank(%q) failed", raw)
		}
	}
	if _, ok := ParseRank("E"); ok {
		t.Error("E is not a rank")
	}
	if RankB.String() != "B" {
		t.Errorf("unexpected string: %s", RankB.String())
	}
}

func TestParseAbility(t *testing.T) {
	a, ok := ParseAbility(" Game-Sense_Awareness ")
	if !ok || a != AbilityGameSense {
		t.Fatalf("expected game_sense_awareness, got %q ok=%v", a, ok)
	}
	if _, ok := ParseAbility("luck"); ok {
		t.Fatal("luck is not an ability")
	}
	if !AbilityStrategy.Valid() || Ability("Strategy").Valid() {
		t.Fatal("Valid must match the canonical spelling only")
	}
}

func TestParseDifficulty(t *testing.T) {
	if d, ok := ParseDifficulty(""); !ok || d != DifficultyNormal {
		t.Fatalf("empty difficulty must default to normal, got %q", d)
	}
	if d, ok := ParseDifficulty("HARD"); !ok || d != DifficultyHard {
		t.Fatalf("expected hard, got %q", d)
	}
	if _, ok := ParseDifficulty("nightmare"); ok {
		t.Fatal("nightmare is not a difficulty")
	}
}

func TestMissionPlayerRecord_DisplayState(t *testing.T) {
	playing := MissionPlayerRecord{State: MissionStatePlaying}
	if playing.DisplayState() != MissionStatePlaying {
		t.Fatal("expected playing without overall score")
	}

	scored := MissionPlayerRecord{State: MissionStatePlaying, Overall: ptr.Int(10)}
	if scored.DisplayState() != MissionStateCompleted {
		t.Fatal("overall score must force the display hint to completed")
	}
	if scored.State != MissionStatePlaying {
		t.Fatal("display hint must not change the stored state")
	}
}

func TestNewSpyCardProfile(t *testing.T) {
	p := NewSpyCardProfile("alice")
	if p.OverallRank != RankD || p.OverallTotal != 0 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if len(p.AbilityTotals) != len(Abilities) {
		t.Fatalf("expected all abilities, got %d", len(p.AbilityTotals))
	}
}

func TestNormalizeUsername(t *testing.T) {
	decomposed := "\u1100\u1161"
	if got := NormalizeUsername("  " + decomposed + " "); got != "\uac00" {
		t.Fatalf("expected NFC form, got %q", got)
	}
}

func TestNewAbilityReport(t *testing.T) {
	r := NewAbilityReport(ReportSourceHistory)
	for _, a := range Abilities {
		stat, ok := r.Abilities[a]
		if !ok || stat != (AbilityStat{}) {
			t.Fatalf("expected zero stat for %s", a)
		}
	}
}
