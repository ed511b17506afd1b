package config

// 외부 호출 공통 상수.
const (
	// AITimeoutSeconds: AI 응답 대기 타임아웃(초)
	AITimeoutSeconds = 60
	// HTTPConnectTimeoutSeconds: 외부 HTTP 연결 타임아웃(초)
	HTTPConnectTimeoutSeconds = 10
)

// DB 연결 공통 상수.
const (
	// DBPingTimeoutSeconds: 시작 시 DB ping 타임아웃(초)
	DBPingTimeoutSeconds = 5
	// DBMaxOpenConns: 커넥션 풀 최대 연결 수
	DBMaxOpenConns = 20
	// DBMaxIdleConns: 커넥션 풀 최대 유휴 연결 수
	DBMaxIdleConns = 5
)
