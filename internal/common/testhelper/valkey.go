// Package testhelper 는 테스트 공용 헬퍼(miniredis, in-memory sqlite, 로거)를 제공한다.
package testhelper

import (
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/valkey-io/valkey-go"
)

// NewMiniValkey: miniredis 인스턴스와 연결된 valkey 클라이언트를 생성합니다. 정리는 t.Cleanup 으로 등록됩니다.
func NewMiniValkey(t *testing.T) (valkey.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{mr.Addr()},
		DisableCache:      true,
		ForceSingleClient: true,
	})
	if err != nil {
		t.Fatalf("valkey client create failed: %v", err)
	}
	t.Cleanup(client.Close)
	return client, mr
}

// DiscardLogger: 출력을 버리는 로거를 반환합니다.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
