package config

// ServiceName 은 로그 파일, OTel 리소스, 헬스 응답에 쓰는 서비스 이름이다.
const ServiceName = "spycard"

// DefaultServerPort 는 HTTP 기본 포트다.
const DefaultServerPort = 40270

// RedisKeyPrefix 는 Valkey 키 상수 목록이다.
const (
	RedisKeyPrefix          = "spycard"
	RedisKeyProfileLock     = RedisKeyPrefix + ":profile_lock"
	RedisKeyMissionComplete = RedisKeyPrefix + ":mission_complete"
	RedisKeyAbilityReport   = RedisKeyPrefix + ":ability_report"
)

// DB 드라이버 이름
const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

// DefaultJudgeModel 은 AI 판정 기본 모델이다.
const DefaultJudgeModel = "gemini-2.5-flash"
