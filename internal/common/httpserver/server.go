package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Serve: 주소를 먼저 바인딩한 뒤 ctx 가 끝날 때까지 요청을 받고, 끝나면 shutdownTimeout 안에 정리합니다.
// 포트 충돌 같은 바인딩 실패는 고루틴을 띄우기 전에 바로 반환된다.
func Serve(ctx context.Context, server *http.Server, shutdownTimeout time.Duration) error {
	addr := server.Addr
	if addr == "" {
		addr = ":http"
	}
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("http server listen failed addr=%s: %w", addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return normalizeServeError(err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return normalizeServeError(<-errCh)
}

func normalizeServeError(err error) error {
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("http server stopped with error: %w", err)
}
