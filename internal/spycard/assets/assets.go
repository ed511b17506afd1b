// Package assets 는 바이너리에 포함되는 기본 카탈로그와 메시지 YAML 을 제공한다.
package assets

import _ "embed" // 에셋 임베드용

// DefaultCatalogYAML 는 CATALOG_PATH 가 비어 있을 때 쓰는 기본 미션/게임 카탈로그다.
//
//go:embed catalog/default-catalog.yml
var DefaultCatalogYAML []byte

// MessagesYAML 는 HTTP 에러 메시지와 AI 판정 프롬프트 YAML 이다.
//
//go:embed messages/spycard-messages.yml
var MessagesYAML string
