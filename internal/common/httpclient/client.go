// Package httpclient 는 외부 API 호출용 http.Client 를 구성한다.
package httpclient

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/http2"
)

// Config: 외부 호출 클라이언트 설정
type Config struct {
	Timeout        time.Duration
	ConnectTimeout time.Duration
	// HTTP2Enabled 는 평문 h2c 업스트림(사이드카 프록시 등)용이다.
	HTTP2Enabled bool
	// Traced 가 true 면 otelhttp transport 로 감싸 outbound span 을 남긴다.
	Traced bool
}

// New: 설정에 맞는 http.Client 를 생성합니다.
func New(cfg Config) *http.Client {
	dialer := &net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	var transport http.RoundTripper
	if cfg.HTTP2Enabled {
		transport = &http2.Transport{
			AllowHTTP: true,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return dialer.DialContext(ctx, network, addr)
			},
		}
	} else {
		transport = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   20,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
	}

	if cfg.Traced {
		transport = otelhttp.NewTransport(transport)
	}

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}
}
