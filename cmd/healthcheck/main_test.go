package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddr(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty uses default", raw: "", want: defaultAddr},
		{name: "malformed uses default", raw: "not-an-addr", want: defaultAddr},
		{name: "bind all ipv4", raw: "0.0.0.0:9000", want: "127.0.0.1:9000"},
		{name: "empty host", raw: ":9000", want: "127.0.0.1:9000"},
		{name: "bind all ipv6", raw: "[::]:9000", want: "[::1]:9000"},
		{name: "explicit host kept", raw: "10.0.0.5:5173", want: "10.0.0.5:5173"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeAddr(tt.raw))
		})
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "healthy", status: http.StatusOK, body: `{"status":"ok","time":"2026-01-01T00:00:00Z"}`},
		{name: "server error", status: http.StatusInternalServerError, body: `{"status":"ok"}`, wantErr: "unexpected status 500"},
		{name: "not ok", status: http.StatusOK, body: `{"status":"degraded"}`, wantErr: `server reports status "degraded"`},
		{name: "not json", status: http.StatusOK, body: `<html>login</html>`, wantErr: "decoding health response"},
		{name: "empty body", status: http.StatusOK, body: ``, wantErr: "decoding health response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/health", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := check(context.Background(), srv.Client(), srv.URL+"/api/v1/health")

			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCheck_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/api/v1/health"
	srv.Close()

	err := check(context.Background(), &http.Client{}, url)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requesting")
}
