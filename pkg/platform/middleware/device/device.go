// Package device identifies the browser across requests. The device cookie is an
// opaque, random handle that addresses the browser's namespace in durable
// session storage; it carries no identity or role data.
package device

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"unibuild/pkg/requestcontext"
)

// DefaultCookieName is the name of the device cookie.
const DefaultCookieName = "unibuild_device"

// Config controls the device cookie attributes.
type Config struct {
	CookieName string
	Secure     bool
	MaxAge     time.Duration
}

// Middleware ensures every request carries a device ID. A missing or malformed
// cookie is replaced with a freshly generated ID, which is set on the response.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 365 * 24 * time.Hour
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deviceID := ""
			if c, err := r.Cookie(cfg.CookieName); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil && parsed != uuid.Nil {
					deviceID = parsed.String()
				}
			}
			if deviceID == "" {
				deviceID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    deviceID,
					Path:     "/",
					MaxAge:   int(cfg.MaxAge.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := requestcontext.WithDeviceID(r.Context(), deviceID)
			ctx = requestcontext.WithDeviceLabel(ctx, Label(r.Header.Get("User-Agent")))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Label renders a short human readable description such as "Firefox on Linux".
func Label(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "Unknown Device"
	}
	ua := useragent.New(userAgent)

	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}

	platform := ua.Platform()
	if platform == "" || platform == "X11" {
		if fields := strings.Fields(ua.OS()); len(fields) > 0 {
			platform = fields[0]
		}
	}
	if platform == "" {
		platform = "Unknown OS"
	}

	return strings.TrimSpace(browser + " on " + platform)
}
