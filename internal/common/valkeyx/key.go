// Package valkeyx 는 Valkey 클라이언트 공통 유틸리티(연결, 키 생성, nil 판별)를 제공한다.
package valkeyx

import (
	"fmt"
	"strings"
)

// BuildKey 는 prefix와 id를 결합하여 키를 생성한다.
// 형식: {prefix}:{id}
func BuildKey(prefix, id string) string {
	return fmt.Sprintf("%s:%s", prefix, strings.TrimSpace(id))
}
