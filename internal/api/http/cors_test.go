package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveOrigin(t *testing.T) {
	localOnly := []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	mixed := []string{"https://admin.stall.ph", "http://localhost:5173"}

	tests := []struct {
		name    string
		origin  string
		allowed []string
		want    string
	}{
		{"any origin echoes request", "http://foo.test", nil, "http://foo.test"},
		{"any origin without header", "", nil, "*"},
		{"listed origin", "http://127.0.0.1:5173", localOnly, "http://127.0.0.1:5173"},
		{"https origin with localhost-only list", "https://stall.example.com", localOnly, "https://stall.example.com"},
		{"vercel over http with localhost-only list", "http://stall.vercel.app", localOnly, "http://stall.vercel.app"},
		{"plain http origin falls back", "http://evil.test", localOnly, "http://localhost:5173"},
		{"production origin with mixed list falls back", "https://other.vercel.app", mixed, "https://admin.stall.ph"},
		{"missing origin falls back to first entry", "", mixed, "https://admin.stall.ph"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveOrigin(tc.origin, tc.allowed))
		})
	}
}
