package metadata

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"unibuild/pkg/requestcontext"
)

// Resolver decides which address a request came from. Forwarding headers are
// only believed when the direct peer is one of the trusted proxies.
type Resolver struct {
	trusted []netip.Prefix
}

// NewResolver returns a Resolver that honours X-Forwarded-For and X-Real-IP
// from peers inside trusted. With no trusted prefixes the peer address is
// always used.
func NewResolver(trusted []netip.Prefix) *Resolver {
	return &Resolver{trusted: trusted}
}

// ClientMetadata extracts client IP address and User-Agent from the request
// and adds them to the context for use by handlers and services.
// This middleware should be applied early in the chain.
func (res *Resolver) ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := res.ClientIP(r)
		userAgent := r.Header.Get("User-Agent")

		ctx := requestcontext.WithClientMetadata(r.Context(), ip, userAgent)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientMetadata is the middleware of a resolver that trusts no proxy.
func ClientMetadata(next http.Handler) http.Handler {
	return NewResolver(nil).ClientMetadata(next)
}

// ClientIPFromRequest returns the peer address of r, ignoring forwarding headers.
func ClientIPFromRequest(r *http.Request) string {
	return NewResolver(nil).ClientIP(r)
}

// ClientIP returns the client address of r. Behind trusted proxies the
// X-Forwarded-For chain is walked from the right and the first hop that is
// not itself a trusted proxy wins.
func (res *Resolver) ClientIP(r *http.Request) string {
	peer := remoteHost(r.RemoteAddr)
	if peer == "" {
		return "unknown"
	}
	if !res.isTrusted(peer) {
		return peer
	}

	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if _, err := netip.ParseAddr(hop); err != nil {
				break
			}
			if !res.isTrusted(hop) {
				return hop
			}
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if _, err := netip.ParseAddr(xri); err == nil {
			return xri
		}
	}
	return peer
}

func (res *Resolver) isTrusted(ip string) bool {
	if res == nil || len(res.trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range res.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// remoteHost strips the port from RemoteAddr, "ip:port" or "[::1]:port".
func remoteHost(addr string) string {
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return strings.Trim(addr, "[]")
}

// ParsePrefixes reads CIDRs or bare addresses; a bare address becomes a
// single-host prefix.
func ParsePrefixes(values []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(values))
	for _, v := range values {
		if strings.Contains(v, "/") {
			p, err := netip.ParsePrefix(v)
			if err != nil {
				return nil, err
			}
			out = append(out, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(v)
		if err != nil {
			return nil, err
		}
		a = a.Unmap()
		out = append(out, netip.PrefixFrom(a, a.BitLen()))
	}
	return out, nil
}
