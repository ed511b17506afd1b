package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNew_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	for _, traced := range []bool{false, true} {
		client := New(Config{Timeout: 2 * time.Second, ConnectTimeout: time.Second, Traced: traced})
		if client.Timeout != 2*time.Second {
			t.Fatalf("unexpected timeout: %s", client.Timeout)
		}
		resp, err := client.Get(srv.URL)
		if err != nil {
			t.Fatalf("traced=%v: request failed: %v", traced, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("traced=%v: unexpected status %d", traced, resp.StatusCode)
		}
	}
}
