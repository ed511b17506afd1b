// Package httpserver 는 http.Server 생성과 graceful shutdown 을 담당한다.
package httpserver

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// ServerOptions: http.Server 생성 옵션
type ServerOptions struct {
	UseH2C            bool
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	// TraceOperation 이 비어있지 않으면 otelhttp 핸들러로 감싸 요청마다 server span 을 만든다.
	TraceOperation string
}

// NewServer: 옵션을 적용한 http.Server 를 생성합니다.
func NewServer(addr string, handler http.Handler, opts ServerOptions) *http.Server {
	if handler == nil {
		handler = http.NewServeMux()
	}

	finalHandler := handler
	if opts.TraceOperation != "" {
		finalHandler = otelhttp.NewHandler(finalHandler, opts.TraceOperation)
	}
	if opts.UseH2C {
		finalHandler = h2c.NewHandler(finalHandler, &http2.Server{})
	}

	readHeaderTimeout := opts.ReadHeaderTimeout
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = 5 * time.Second
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           finalHandler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	if opts.IdleTimeout > 0 {
		server.IdleTimeout = opts.IdleTimeout
	}
	if opts.MaxHeaderBytes > 0 {
		server.MaxHeaderBytes = opts.MaxHeaderBytes
	}

	return server
}
