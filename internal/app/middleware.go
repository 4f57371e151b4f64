package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/societyhub/societyhub/internal/observability"
	"github.com/societyhub/societyhub/internal/shared"
)

// MiddlewareConfig aggregates dependencies shared by the middleware stack.
type MiddlewareConfig struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics
}

// MiddlewareStack installs the SocietyHub middleware chain.
func MiddlewareStack(cfg MiddlewareConfig) []func(http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'",
		SSLRedirect:           cfg.Config.IsProduction(),
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
	})

	timeout := 30 * time.Second
	if cfg.Config != nil && cfg.Config.AppRequestTimeout > 0 {
		timeout = cfg.Config.AppRequestTimeout
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.RealIP,
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Timeout(timeout),
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := secureMiddleware.Process(w, r); err != nil {
					cfg.Logger.Warn("secure headers blocked request", slog.Any("error", err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				next.ServeHTTP(w, r)
			})
		},
		middleware.Compress(5),
	}
	if cfg.Config != nil && cfg.Config.RateLimitPerMinute > 0 {
		middlewares = append(middlewares, httprate.Limit(cfg.Config.RateLimitPerMinute, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
	}
	middlewares = append(middlewares, shared.ActorMiddleware)
	if cfg.Metrics != nil {
		middlewares = append(middlewares, cfg.Metrics.Middleware)
	}
	return middlewares
}
