package middleware

import (
	"net/http"

	"github.com/unrolled/secure"

	"shg-service/configs"
)

// SecurityMiddleware sets the standard security response headers
func SecurityMiddleware(cfg configs.SecurityConfig) func(http.Handler) http.Handler {
	s := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'",
		SSLRedirect:           cfg.SSLRedirect,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
	})
	return s.Handler
}
