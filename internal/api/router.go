package api

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/sosalert/sos-service/docs"
	"github.com/sosalert/sos-service/internal/api/handler"
	"github.com/sosalert/sos-service/internal/api/middleware"
	"github.com/sosalert/sos-service/internal/core/ports"
)

const metricsSubsystem = "sos"

// SessionManager issues, reads and ends cookie sessions.
type SessionManager interface {
	handler.Sessions
	middleware.SessionReader
}

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Accounts ports.AccountService
	Alerts   ports.AlertService
	Sessions SessionManager
	Health   []handler.HealthCheck

	// FlashStore holds one-shot page messages, see handler.NewFlashStore.
	FlashStore sessions.Store

	// Templates must contain templates/*.html; Static is served under /static.
	Templates fs.FS
	Static    fs.FS

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) (*echo.Echo, error) {
	if deps.FlashStore == nil {
		return nil, errors.New("router: flash store is required")
	}
	renderer, err := handler.NewRenderer(deps.Templates)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Renderer = renderer
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  metricsSubsystem,
		Registerer: deps.Registerer,
	}))
	e.Use(session.Middleware(deps.FlashStore))
	e.Use(middleware.LoadSession(deps.Sessions))

	// --- Handlers ---
	pages := handler.NewPageHandler(deps.Accounts, deps.Sessions, deps.Logger)
	alerts := handler.NewAlertHandler(deps.Accounts, deps.Alerts)
	health := handler.NewHealthHandler(deps.Health...)

	// --- Pages ---
	e.GET("/", pages.Home)
	e.GET("/register", pages.RegisterForm)
	e.POST("/register", pages.Register)
	e.GET("/login", pages.LoginForm)
	e.POST("/login", pages.Login)
	e.GET("/dashboard", pages.Dashboard, middleware.RequirePageSession("/login"))
	e.GET("/logout", pages.Logout)
	if deps.Static != nil {
		e.StaticFS("/static", deps.Static)
	}

	// --- API ---
	e.POST("/sos", alerts.SendSOS, middleware.RequireSession())

	// --- Operations (no auth required) ---
	e.GET("/health", health.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", health.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: deps.Gatherer,
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
