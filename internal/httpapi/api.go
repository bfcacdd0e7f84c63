// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/oops"

	"github.com/rolegate/rolegate/internal/access"
	"github.com/rolegate/rolegate/internal/auth"
)

// Authenticator is the subset of auth.Service the API depends on.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*auth.Session, error)
	Register(ctx context.Context, req auth.RegisterRequest) (*auth.Session, error)
	Identify(ctx context.Context, token string) (auth.Identity, error)
}

// Recorder receives outcome counts. *observability.Metrics implements it.
type Recorder interface {
	RecordLogin(outcome string)
	RecordRegistration(outcome string)
	RecordAuthorization(resource, decision string)
}

type noopRecorder struct{}

func (noopRecorder) RecordLogin(string)                 {}
func (noopRecorder) RecordRegistration(string)          {}
func (noopRecorder) RecordAuthorization(string, string) {}

// bodyLimit caps request bodies; credentials never need more.
const bodyLimit = "64K"

// Options configures an API.
type Options struct {
	Auth    Authenticator
	Gate    *access.Gate
	Metrics Recorder
	Logger  *slog.Logger
	// AllowOrigins lists CORS origins. Empty allows any origin.
	AllowOrigins []string
}

// API wires the HTTP routes to the authentication service.
type API struct {
	auth    Authenticator
	gate    *access.Gate
	metrics Recorder
	logger  *slog.Logger
	echo    *echo.Echo
}

// New builds the API and its router. Auth is required; a nil Gate means
// access.NewDefaultGate, nil Metrics records nothing and a nil Logger means
// slog.Default().
func New(opts Options) (*API, error) {
	if opts.Auth == nil {
		return nil, oops.Code("HTTPAPI_INVALID_CONFIG").Errorf("authenticator is required")
	}
	a := &API{
		auth:    opts.Auth,
		gate:    opts.Gate,
		metrics: opts.Metrics,
		logger:  opts.Logger,
	}
	if a.gate == nil {
		a.gate = access.NewDefaultGate()
	}
	if a.metrics == nil {
		a.metrics = noopRecorder{}
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	a.echo = a.router(opts.AllowOrigins)
	return a, nil
}

// Handler returns the HTTP handler serving every route.
func (a *API) Handler() http.Handler {
	return a.echo
}

func (a *API) router(allowOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = a.handleError

	corsConfig := middleware.DefaultCORSConfig
	if len(allowOrigins) > 0 {
		corsConfig.AllowOrigins = allowOrigins
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			a.logger.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(corsConfig))
	e.Use(middleware.BodyLimit(bodyLimit))

	e.GET("/healthz", a.health)

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/login", a.login)
	authGroup.POST("/register", a.register)
	authGroup.GET("/me", a.me, a.authenticate)

	api.GET("/resources", a.resources("Public resources", "resource1", "resource2"),
		a.authenticate, a.requireResource("resources"))
	api.GET("/resources/edit", a.resources("Edit resources", "edit1", "edit2"),
		a.authenticate, a.requireResource("resources:edit"))
	api.GET("/admin", a.resources("Admin resources", "admin1", "admin2"),
		a.authenticate, a.requireResource("admin"))

	return e
}
