package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/resto-dashboard/internal/config"
	"github.com/noah-isme/resto-dashboard/internal/middleware"
	"github.com/noah-isme/resto-dashboard/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Service       string    `json:"service"`
	Environment   string    `json:"environment"`
	Backend       string    `json:"backend"`
	SessionActive bool      `json:"session_active"`
}

// HealthCheck returns a handler that reports application health information.
func HealthCheck(cfg config.Config, sessions middleware.SessionChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Backend:     cfg.BackendURL,
		}
		if sessions != nil {
			payload.SessionActive = sessions.Authenticated()
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
