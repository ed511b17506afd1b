// Package messages 는 spycard-messages.yml 의 메시지 키 상수를 정의한다.
package messages

import "github.com/park285/spycard-go/internal/common/messageprovider"

// RootKey: YAML 안의 spycard 메시지 루트
const RootKey = "spycard"

// ErrorInvalidRequest 등: HTTP 에러 응답 메시지 키
const (
	ErrorInvalidRequest messageprovider.Key = "error.invalid_request"
	ErrorInvalidPath    messageprovider.Key = "error.invalid_path"
	ErrorNotFound       messageprovider.Key = "error.not_found"
	ErrorValidation     messageprovider.Key = "error.validation"
	ErrorLock           messageprovider.Key = "error.lock"
	ErrorUpstream       messageprovider.Key = "error.upstream"
	ErrorInternal       messageprovider.Key = "error.internal"
)

// ReportNoScores: 재계산 대상이 없을 때의 안내 메시지 키
const ReportNoScores messageprovider.Key = "report.no_scores"

// JudgeSystem 등: AI 판정 프롬프트 키
const (
	JudgeSystem    messageprovider.Key = "judge.system"
	JudgeUser      messageprovider.Key = "judge.user"
	JudgeNoContext messageprovider.Key = "judge.no_context"
)

// All 은 서비스가 기동 시 반드시 있어야 하는 메시지 키 목록이다.
func All() []messageprovider.Key {
	return []messageprovider.Key{
		ErrorInvalidRequest,
		ErrorInvalidPath,
		ErrorNotFound,
		ErrorValidation,
		ErrorLock,
		ErrorUpstream,
		ErrorInternal,
		ReportNoScores,
		JudgeSystem,
		JudgeUser,
		JudgeNoContext,
	}
}
