// Package judge 는 AI 판정 게임의 여섯 능력치 원점수를 외부 모델에서 받아 검증한다.
package judge

import (
	"context"
	"fmt"
	"math"

	json "github.com/goccy/go-json"

	serrors "github.com/park285/spycard-go/internal/spycard/errors"
	"github.com/park285/spycard-go/internal/spycard/model"
)

// 판정 점수 허용 범위
const (
	MinScore = -100
	MaxScore = 100
)

// Request: 판정 요청. Payload 는 게임 클라이언트가 보낸 경기 데이터 원문이다.
type Request struct {
	MissionID      string
	GameRef        string
	MissionContext string
	Payload        json.RawMessage
}

// Analyzer: 경기 데이터를 받아 능력치 키별 원점수 객체를 돌려주는 협력자.
// 반환값은 검증 전 형태이며 ValidateScores 로 확인해야 한다.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (map[string]any, error)
}

// ValidateScores: 여섯 키가 모두 있고, 숫자이며, [-100, 100] 안인지 확인한다.
// 첫 번째 위반 필드를 담은 ValidationError 를 반환한다. 알 수 없는 키는 무시한다.
func ValidateScores(raw map[string]any) (map[model.Ability]float64, error) {
	if raw == nil {
		return nil, serrors.ValidationError{Reason: "judge response is empty"}
	}

	out := make(map[model.Ability]float64, len(model.Abilities))
	for _, a := range model.Abilities {
		field := string(a)
		value, ok := raw[field]
		if !ok || value == nil {
			return nil, serrors.ValidationError{Field: field, Reason: "missing"}
		}
		score, ok := toFloat(value)
		if !ok {
			return nil, serrors.ValidationError{Field: field, Reason: fmt.Sprintf("not a number: %v", value)}
		}
		if math.IsNaN(score) || score < MinScore || score > MaxScore {
			return nil, serrors.ValidationError{Field: field, Reason: fmt.Sprintf("out of range [%d, %d]: %v", MinScore, MaxScore, score)}
		}
		out[a] = score
	}
	return out, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		// 문자열로 감싼 숫자도 거절한다.
		return 0, false
	}
}
