// Package errors: 서비스 전체에서 공용으로 사용되는 인프라스트럭처 에러 타입들을 정의한다.
// 도메인 에러(NotFound, Validation 등)는 각 도메인 패키지의 errors 에 둔다.
package errors

import (
	"errors"
	"fmt"
)

// RedisError: Redis/Valkey 작업을 수행하는 도중 발생한 에러
type RedisError struct {
	Operation string
	Err       error
}

func (e RedisError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("redis error operation=%s", e.Operation)
	}
	return fmt.Sprintf("redis error operation=%s: %v", e.Operation, e.Err)
}

func (e RedisError) Unwrap() error { return e.Err }

// DatabaseError: 데이터베이스(PostgreSQL 등) 작업을 수행하는 도중 발생한 에러
type DatabaseError struct {
	Operation string
	Err       error
}

func (e DatabaseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("db error operation=%s", e.Operation)
	}
	return fmt.Sprintf("db error operation=%s: %v", e.Operation, e.Err)
}

func (e DatabaseError) Unwrap() error { return e.Err }

// LockError: 분산 락 획득 실패, 중복 처리 감지 등 락 관련 에러
type LockError struct {
	Key         string // 락 대상 식별자 (username, mission id 등)
	Description string
}

func (e LockError) Error() string {
	msg := e.Description
	if msg == "" {
		msg = "failed to acquire lock"
	}
	if e.Key != "" {
		msg = fmt.Sprintf("%s key=%s", msg, e.Key)
	}
	return msg
}

// IsInfrastructure: Redis/DB 계층에서 발생한 에러인지 확인한다.
// HTTP 계층에서 5xx 로 분류하고 상세 내용은 로그에만 남기는 용도.
func IsInfrastructure(err error) bool {
	if err == nil {
		return false
	}
	var redisErr RedisError
	var dbErr DatabaseError
	return errors.As(err, &redisErr) || errors.As(err, &dbErr)
}
