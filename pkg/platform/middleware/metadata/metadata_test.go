package metadata

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unibuild/pkg/requestcontext"
)

func TestClientIP(t *testing.T) {
	trusted, err := ParsePrefixes([]string{"10.0.0.0/8", "192.0.2.7"})
	require.NoError(t, err)
	behindProxy := NewResolver(trusted)
	direct := NewResolver(nil)

	tests := []struct {
		name     string
		resolver *Resolver
		headers  map[string]string
		remote   string
		want     string
	}{
		{name: "untrusted peer ignores forwarded for", resolver: direct, headers: map[string]string{"X-Forwarded-For": "1.2.3.4"}, remote: "203.0.113.9:4000", want: "203.0.113.9"},
		{name: "untrusted peer ignores real ip", resolver: behindProxy, headers: map[string]string{"X-Real-IP": "5.6.7.8"}, remote: "203.0.113.9:4000", want: "203.0.113.9"},
		{name: "trusted peer forwards client", resolver: behindProxy, headers: map[string]string{"X-Forwarded-For": "1.2.3.4"}, remote: "10.0.0.2:80", want: "1.2.3.4"},
		{name: "rightmost untrusted hop wins", resolver: behindProxy, headers: map[string]string{"X-Forwarded-For": "6.6.6.6, 1.2.3.4, 10.0.0.1"}, remote: "10.0.0.2:80", want: "1.2.3.4"},
		{name: "single trusted host", resolver: behindProxy, headers: map[string]string{"X-Forwarded-For": "1.2.3.4"}, remote: "192.0.2.7:80", want: "1.2.3.4"},
		{name: "trusted peer real ip", resolver: behindProxy, headers: map[string]string{"X-Real-IP": " 5.6.7.8 "}, remote: "10.0.0.2:80", want: "5.6.7.8"},
		{name: "garbage forwarded for falls back to peer", resolver: behindProxy, headers: map[string]string{"X-Forwarded-For": "not-an-ip"}, remote: "10.0.0.2:80", want: "10.0.0.2"},
		{name: "ipv4 remote addr", resolver: direct, remote: "192.168.1.9:5555", want: "192.168.1.9"},
		{name: "ipv6 remote addr", resolver: direct, remote: "[::1]:5555", want: "::1"},
		{name: "missing remote addr", resolver: direct, want: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, tt.resolver.ClientIP(req))
		})
	}
}

func TestClientIPFromRequestUsesPeer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:4000"
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientIPFromRequest(req))
}

func TestClientMetadataStoresAddressAndAgent(t *testing.T) {
	trusted, err := ParsePrefixes([]string{"127.0.0.1"})
	require.NoError(t, err)

	var gotIP, gotUA string
	h := NewResolver(trusted).ClientMetadata(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotIP = requestcontext.ClientIP(r.Context())
		gotUA = requestcontext.UserAgent(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:9999"
	req.Header.Set("X-Forwarded-For", "198.51.100.4")
	req.Header.Set("User-Agent", "curl/8.0")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "198.51.100.4", gotIP)
	assert.Equal(t, "curl/8.0", gotUA)
}

func TestParsePrefixes(t *testing.T) {
	got, err := ParsePrefixes([]string{"10.1.2.3/8", "::1", "192.0.2.1"})
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("::1/128"),
		netip.MustParsePrefix("192.0.2.1/32"),
	}, got)

	_, err = ParsePrefixes([]string{"10.0.0.0/99"})
	assert.Error(t, err)
	_, err = ParsePrefixes([]string{"proxy.internal"})
	assert.Error(t, err)
}
