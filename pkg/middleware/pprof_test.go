package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func allowlistProbe(t *testing.T, cidrs []string, remoteAddr string) int {
	t.Helper()
	mw := IPAllowlist(cidrs, discardLogger())
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.RemoteAddr = remoteAddr
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestIPAllowlist(t *testing.T) {
	tests := []struct {
		name   string
		cidrs  []string
		remote string
		status int
	}{
		{"loopback allowed", []string{"127.0.0.0/8"}, "127.0.0.1:4000", http.StatusOK},
		{"outside range denied", []string{"10.0.0.0/8"}, "192.168.1.1:4000", http.StatusForbidden},
		{"second CIDR matches", []string{"10.0.0.0/8", "192.168.0.0/16"}, "192.168.1.1:4000", http.StatusOK},
		{"empty allowlist denies everything", nil, "127.0.0.1:4000", http.StatusForbidden},
		{"ipv6 loopback", []string{"::1/128"}, "[::1]:4000", http.StatusOK},
		{"addr without port", []string{"127.0.0.0/8"}, "127.0.0.1", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, allowlistProbe(t, tt.cidrs, tt.remote))
		})
	}
}

func TestIPAllowlist_InvalidCIDRSkipped(t *testing.T) {
	status := allowlistProbe(t, []string{"bogus", "127.0.0.0/8"}, "127.0.0.1:4000")
	assert.Equal(t, http.StatusOK, status)
}

func TestRegisterPprof(t *testing.T) {
	r := chi.NewRouter()
	RegisterPprof(r, []string{"127.0.0.0/8"}, discardLogger())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.RemoteAddr = "127.0.0.1:4000"
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pprof")

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.RemoteAddr = "8.8.8.8:4000"
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
