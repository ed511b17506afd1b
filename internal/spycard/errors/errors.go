// Package errors: Spy Card 점수 엔진에 특화된 에러 타입들을 정의한다.
// 공통 에러 타입(RedisError, LockError 등)은 common/errors 패키지를 직접 사용한다.
package errors

import "fmt"

// NotFoundError: 전제 조건으로 필요한 리소스(미션 참가 기록, 프로필, 플레이어, 미션)가 없을 때 발생하는 에러
type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found id=%s", e.Resource, e.ID)
}

// ValidationError: 외부에서 들어온 점수 데이터의 형태나 범위가 잘못되었을 때 발생하는 에러
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed field=%s: %s", e.Field, e.Reason)
}

// UpstreamError: 카탈로그, 저장소, AI 판정 등 협력자 호출 자체가 실패했을 때 발생하는 에러.
// Error() 는 세부 원인을 노출하지 않으며, 원인은 Unwrap 으로만 꺼낼 수 있다.
type UpstreamError struct {
	Operation string
	Err       error
}

func (e UpstreamError) Error() string {
	return fmt.Sprintf("upstream failure operation=%s", e.Operation)
}

func (e UpstreamError) Unwrap() error { return e.Err }
