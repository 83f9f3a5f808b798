package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/parcelwatch/parcel-tracker/internal/api/handler"
	"github.com/parcelwatch/parcel-tracker/internal/api/middleware"
	"github.com/parcelwatch/parcel-tracker/internal/core/ports"
	"github.com/parcelwatch/parcel-tracker/internal/infrastructure/availability"
)

// Deps carries everything the router needs wired in.
type Deps struct {
	Tracker   ports.TrackerService
	Auth      ports.AuthService
	Checker   *availability.Checker
	Mongo     *mongo.Database
	Redis     *redis.Client
	JWTSecret string
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("parceltrack"))

	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Auth ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	e.POST("/auth/token", authHandler.Token)

	// --- Parcel API (operator token required) ---
	parcelHandler := handler.NewParcelHandler(deps.Tracker)
	v1 := e.Group("/v1", middleware.Auth(deps.JWTSecret))

	v1.POST("/parcels", parcelHandler.Track)
	v1.GET("/parcels", parcelHandler.List)
	v1.GET("/parcels/:tracking_id", parcelHandler.Get)
	v1.DELETE("/parcels/:tracking_id", parcelHandler.Remove)
	v1.POST("/parcels/refresh", parcelHandler.RefreshAll) // bulk-update trigger
	v1.POST("/parcels/:tracking_id/refresh", parcelHandler.RefreshOne)

	statusHandler := handler.NewUpstreamStatusHandler(deps.Checker)
	v1.GET("/status", statusHandler.Status)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
