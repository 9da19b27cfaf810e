package uriparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-proxylab/cacheproxy/internal/proxyerr"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		wantHost string
		wantPort string
		wantPath string
	}{
		{"full url", "http://example.com:8080/a/b", "example.com", "8080", "/a/b"},
		{"no scheme", "example.com/a", "example.com", DefaultPort, "/a"},
		{"no path", "http://example.com", "example.com", DefaultPort, DefaultPath},
		{"no path with scheme slashes", "//example.com", "example.com", DefaultPort, DefaultPath},
		{"port no path", "http://example.com:9000", "example.com", "9000", DefaultPath},
		{"root path", "http://example.com/", "example.com", DefaultPort, "/"},
		{"ip host", "http://127.0.0.1:18080/x", "127.0.0.1", "18080", "/x"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			target, err := Parse(tt.raw)
			require.NoError(t, err)
			require.Equal(t, tt.wantHost, target.Host)
			require.Equal(t, tt.wantPort, target.Port)
			require.Equal(t, tt.wantPath, target.Path)
		})
	}
}

func TestParseEmptyHostIsMalformed(t *testing.T) {
	t.Parallel()
	_, err := Parse("http:///path-only")
	require.ErrorIs(t, err, proxyerr.ErrMalformedRequest)
}

func TestParseOversizedComponentIsMalformed(t *testing.T) {
	t.Parallel()
	longHost := strings.Repeat("a", MaxComponentLength+1)
	_, err := Parse("http://" + longHost + "/x")
	require.ErrorIs(t, err, proxyerr.ErrMalformedRequest)
}

func TestOriginPrelude(t *testing.T) {
	t.Parallel()
	target, err := Parse("http://example.com:8080/a/b")
	require.NoError(t, err)
	require.Equal(t, "GET /a/b HTTP/1.0\r\nHost: example.com\r\n", target.OriginPrelude())
}

func TestAddr(t *testing.T) {
	t.Parallel()
	target, err := Parse("http://example.com:8080/a")
	require.NoError(t, err)
	require.Equal(t, "example.com:8080", target.Addr())
}
