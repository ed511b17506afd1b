package scoring

import (
	"math"

	serrors "github.com/park285/spycard-go/internal/spycard/errors"
	"github.com/park285/spycard-go/internal/spycard/model"
)

// MaxInputMagnitude: 호출자가 보낼 수 있는 점수의 절댓값 상한
const MaxInputMagnitude = 1_000_000_000

// Delta: round((new - old) × modifier). nil 은 0 으로 본다.
func Delta(newValue, oldValue *int, modifier float64) int {
	return Round(float64(valueOrZero(newValue)-valueOrZero(oldValue)) * modifier)
}

// Contribution: 재계산 경로에서 기록 하나가 총점에 더하는 값. round(score × modifier)
func Contribution(score int, modifier float64) int {
	return Round(float64(score) * modifier)
}

// FloorScore: 호출자가 보낸 점수를 정수로 내림한다. (음의 무한대 방향)
// nil 은 nil 그대로 둔다. NaN, ±Inf, 절댓값이 MaxInputMagnitude 를 넘는 값은 field 를 담은 ValidationError.
func FloorScore(field string, v *float64) (*int, error) {
	if v == nil {
		return nil, nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil, serrors.ValidationError{Field: field, Reason: "not a finite number"}
	}
	if math.Abs(*v) > MaxInputMagnitude {
		return nil, serrors.ValidationError{Field: field, Reason: "score out of range"}
	}
	floored := int(math.Floor(*v))
	return &floored, nil
}

// FloorAbilityScores: 부분 능력치 입력을 정수로 내린다. 값이 nil 인 키는 유지되어 NULL 로 기록된다.
// 알 수 없는 키는 버린다.
func FloorAbilityScores(in map[model.Ability]*float64) (map[model.Ability]*int, error) {
	out := make(map[model.Ability]*int, len(in))
	for _, a := range model.Abilities {
		v, ok := in[a]
		if !ok {
			continue
		}
		floored, err := FloorScore(string(a), v)
		if err != nil {
			return nil, err
		}
		out[a] = floored
	}
	return out, nil
}

func valueOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
