// Package di 는 Wire 의존성 그래프에서 같은 타입이 중복 제공되지 않도록 구분하는 wrapper 타입을 둔다.
package di

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/valkey-io/valkey-go"
)

// DataValkeyClient 는 락/캐시용 Valkey 클라이언트 DI wrapper 타입이다.
type DataValkeyClient struct{ valkey.Client }

// MetricsRegistry 는 서비스 전용 Prometheus 레지스트리 DI wrapper 타입이다.
// 기본 전역 레지스트리와 섞이지 않도록 분리한다.
type MetricsRegistry struct{ *prometheus.Registry }
