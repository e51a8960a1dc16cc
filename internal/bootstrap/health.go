package bootstrap

import (
	"github.com/eleven-am/voice-recognizer/internal/engine"
	"github.com/eleven-am/voice-recognizer/internal/gateway"
	"github.com/eleven-am/voice-recognizer/internal/health"
	"github.com/eleven-am/voice-recognizer/internal/recognizer"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const version = "1.0.0"

func ProvideHealthHandler(
	db *gorm.DB,
	redis *redis.Client,
	eng engine.Engine,
	profile recognizer.Profile,
	sessions *gateway.SessionManager,
) *health.Handler {
	return health.NewHandler(db, redis, eng, profile, sessions, version)
}

func RegisterHealthRoutes(e *echo.Echo, h *health.Handler) {
	e.Use(h.Middleware())
	h.RegisterRoutes(e)
}

var HealthModule = fx.Options(
	fx.Provide(ProvideHealthHandler),
	fx.Invoke(RegisterHealthRoutes),
)
