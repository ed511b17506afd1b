// Package scoring 은 게임 결과를 능력치 점수로 바꾸는 순수 계산식과 프로필 델타 계산을 담당한다.
package scoring

import (
	"fmt"
	"math"

	"github.com/park285/spycard-go/internal/spycard/model"
)

// Multiplier: 난이도별 승/패 배율
type Multiplier struct {
	Win  float64
	Loss float64
}

// Config: 계산식 상수. 환경 변수로 덮어쓸 수 있다.
type Config struct {
	Multipliers map[model.Difficulty]Multiplier
	ScoreMin    int
	ScoreMax    int
}

// DefaultConfig: 기본 배율 표와 점수 범위 [-100, 100]
func DefaultConfig() Config {
	return Config{
		Multipliers: map[model.Difficulty]Multiplier{
			model.DifficultyEasy:   {Win: 1.0, Loss: 0.5},
			model.DifficultyNormal: {Win: 1.2, Loss: 0.6},
			model.DifficultyHard:   {Win: 1.5, Loss: 0.7},
		},
		ScoreMin: -100,
		ScoreMax: 100,
	}
}

// Validate 는 배율 표가 세 난이도를 모두 포함하고 범위가 올바른지 확인한다.
func (c Config) Validate() error {
	if c.ScoreMin >= c.ScoreMax {
		return fmt.Errorf("invalid score bounds: min=%d max=%d", c.ScoreMin, c.ScoreMax)
	}
	for _, d := range []model.Difficulty{model.DifficultyEasy, model.DifficultyNormal, model.DifficultyHard} {
		m, ok := c.Multipliers[d]
		if !ok {
			return fmt.Errorf("missing multiplier for difficulty %q", d)
		}
		if m.Win < 0 || m.Loss < 0 {
			return fmt.Errorf("negative multiplier for difficulty %q", d)
		}
	}
	return nil
}

// Formula: 능력치 점수 계산식. 상태가 없고 동시에 써도 안전하다.
type Formula struct {
	cfg Config
}

// NewFormula: 설정을 검증하고 Formula 를 생성한다.
func NewFormula(cfg Config) (*Formula, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	copied := make(map[model.Difficulty]Multiplier, len(cfg.Multipliers))
	for k, v := range cfg.Multipliers {
		copied[k] = v
	}
	cfg.Multipliers = copied
	return &Formula{cfg: cfg}, nil
}

// DifficultyMultiplier: 난이도와 승패에 따른 배율. 알 수 없는 난이도는 normal 로 본다.
func (f *Formula) DifficultyMultiplier(difficulty model.Difficulty, isWin bool) float64 {
	m, ok := f.cfg.Multipliers[difficulty]
	if !ok {
		m = f.cfg.Multipliers[model.DifficultyNormal]
	}
	if isWin {
		return m.Win
	}
	return m.Loss
}

// ComputeAbilityScore: round(base × 난이도 배율 × 등급 배율 × 비중) 을 [ScoreMin, ScoreMax] 로 클램프한다.
// 클램프는 정수 변환 전에 float64 로 하므로 범위를 크게 벗어난 값도 가까운 경계가 된다. NaN 은 0 으로 본다.
func (f *Formula) ComputeAbilityScore(
	baseScore float64,
	difficulty model.Difficulty,
	rank model.SkillRank,
	ratio float64,
	isWin bool,
) int {
	raw := baseScore * f.DifficultyMultiplier(difficulty, isWin) * model.ModifierForRank(rank) * ratio
	if math.IsNaN(raw) {
		raw = 0
	}
	raw = math.Max(float64(f.cfg.ScoreMin), math.Min(float64(f.cfg.ScoreMax), raw))
	return f.Clamp(Round(raw))
}

// ComputeAbilityScores: 비중이 0 보다 큰 능력치만 계산한다. 비중이 0 인 능력치는 결과에 키가 없다.
func (f *Formula) ComputeAbilityScores(
	baseScore float64,
	difficulty model.Difficulty,
	rank model.SkillRank,
	ratios map[model.Ability]float64,
	isWin bool,
) model.AbilityScores {
	out := make(model.AbilityScores, len(ratios))
	for _, a := range model.Abilities {
		ratio := ratios[a]
		if ratio <= 0 {
			continue
		}
		out[a] = f.ComputeAbilityScore(baseScore, difficulty, rank, ratio, isWin)
	}
	return out
}

// ComputeJudgedScores: AI 판정 게임용. 능력치마다 판정 점수를 base 로 삼아 같은 계산식을 적용한다.
func (f *Formula) ComputeJudgedScores(
	judged map[model.Ability]float64,
	difficulty model.Difficulty,
	rank model.SkillRank,
	ratios map[model.Ability]float64,
	isWin bool,
) model.AbilityScores {
	out := make(model.AbilityScores, len(ratios))
	for _, a := range model.Abilities {
		ratio := ratios[a]
		if ratio <= 0 {
			continue
		}
		base, ok := judged[a]
		if !ok {
			continue
		}
		out[a] = f.ComputeAbilityScore(base, difficulty, rank, ratio, isWin)
	}
	return out
}

// Clamp 는 v 를 [ScoreMin, ScoreMax] 로 자른다.
func (f *Formula) Clamp(v int) int {
	return ClampInt(v, f.cfg.ScoreMin, f.cfg.ScoreMax)
}

// Bounds 는 설정된 점수 범위를 반환한다.
func (f *Formula) Bounds() (int, int) {
	return f.cfg.ScoreMin, f.cfg.ScoreMax
}

// Round: 0.5 는 0 에서 먼 쪽으로 반올림한다.
// int 범위를 넘는 값은 경계로 포화시키고 NaN 은 0 을 돌려준다.
func Round(v float64) int {
	r := math.Round(v)
	switch {
	case math.IsNaN(r):
		return 0
	case r >= float64(math.MaxInt):
		return math.MaxInt
	case r <= float64(math.MinInt):
		return math.MinInt
	}
	return int(r)
}

// ClampInt 는 v 를 [lo, hi] 로 자른다.
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
