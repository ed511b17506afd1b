// Package messageprovider 는 점 표기 키와 {param} 템플릿을 지원하는 YAML 메시지 저장소다.
package messageprovider

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider: YAML 트리에서 메시지를 조회합니다.
type Provider struct {
	root map[string]any
}

// NewFromYAML: YAML 문서 전체를 루트로 하는 Provider 를 생성합니다.
func NewFromYAML(yamlContent string) (*Provider, error) {
	var raw any
	if err := yaml.Unmarshal([]byte(yamlContent), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal yaml failed: %w", err)
	}

	if raw == nil {
		return &Provider{root: make(map[string]any)}, nil
	}

	root, ok := normalizeYAMLValue(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected yaml root type: %T", raw)
	}

	return &Provider{root: root}, nil
}

// NewFromYAMLAtPath: rootKey 아래 서브트리만 루트로 쓰는 Provider 를 생성합니다.
func NewFromYAMLAtPath(yamlContent string, rootKey string) (*Provider, error) {
	provider, err := NewFromYAML(yamlContent)
	if err != nil {
		return nil, err
	}

	rootKey = strings.TrimSpace(rootKey)
	if rootKey == "" {
		return provider, nil
	}

	value, ok := resolveDottedKey(provider.root, rootKey)
	if !ok {
		return nil, fmt.Errorf("yaml root key not found: %q", rootKey)
	}

	sub, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("yaml root key must be an object: %q (got %T)", rootKey, value)
	}

	return &Provider{root: sub}, nil
}

// Key: 점 표기 메시지 키. 서비스별 messages 패키지가 상수로 정의한다.
type Key string

// Get: key 의 템플릿에 params 를 치환해 반환합니다. 키가 없으면 key 자체를 반환합니다.
func (p *Provider) Get(key Key, params ...Param) string {
	if p == nil || strings.TrimSpace(string(key)) == "" {
		return string(key)
	}

	value, ok := resolveDottedKey(p.root, string(key))
	if !ok {
		return string(key)
	}

	template, ok := value.(string)
	if !ok {
		return fmt.Sprint(value)
	}
	return render(template, params)
}

// Lookup: key 가 문자열 템플릿이면 치환 결과와 true, 아니면 빈 문자열과 false.
func (p *Provider) Lookup(key Key, params ...Param) (string, bool) {
	if p == nil {
		return "", false
	}
	value, ok := resolveDottedKey(p.root, string(key))
	if !ok {
		return "", false
	}
	template, ok := value.(string)
	if !ok {
		return "", false
	}
	return render(template, params), true
}

// Has: key 가 문자열 템플릿으로 정의되어 있는지 확인합니다.
func (p *Provider) Has(key Key) bool {
	_, ok := p.Lookup(key)
	return ok
}

// Require 는 keys 가 모두 문자열 템플릿으로 정의되어 있는지 확인한다.
// 빠진 키를 모두 모아 하나의 에러로 돌려준다.
func (p *Provider) Require(keys ...Key) error {
	var missing []string
	for _, key := range keys {
		if !p.Has(key) {
			missing = append(missing, string(key))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing message keys: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Param: 템플릿 치환 인자
type Param struct {
	Key   string
	Value any
}

// P 는 Param 생성 단축 함수다.
func P(key string, value any) Param {
	return Param{Key: key, Value: value}
}

func render(template string, params []Param) string {
	if len(params) == 0 {
		return template
	}
	pairs := make([]string, 0, len(params)*2)
	for _, param := range params {
		pairs = append(pairs, "{"+param.Key+"}", fmt.Sprint(param.Value))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func resolveDottedKey(root map[string]any, key string) (any, bool) {
	parts := strings.Split(key, ".")
	var current any = root

	for _, part := range parts {
		nextMap, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := nextMap[part]
		if !ok {
			return nil, false
		}
		current = next
	}

	return current, true
}

func normalizeYAMLValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, vv := range typed {
			out[k] = normalizeYAMLValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, vv := range typed {
			out[fmt.Sprint(k)] = normalizeYAMLValue(vv)
		}
		return out
	case []any:
		out := make([]any, 0, len(typed))
		for _, vv := range typed {
			out = append(out, normalizeYAMLValue(vv))
		}
		return out
	default:
		return v
	}
}
