package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/resto-dashboard/internal/dto"
	"github.com/noah-isme/resto-dashboard/internal/service"
	"github.com/noah-isme/resto-dashboard/internal/utils"
)

const (
	dashboardPath = "/dashboard"
	loginPath     = "/login"
)

// AuthHandler serves login, registration and logout.
type AuthHandler struct {
	service service.AuthService
	limiter fiber.Handler
	logger  zerolog.Logger
}

// NewAuthHandler constructs the auth handler. limiter, when set, guards the credential routes.
func NewAuthHandler(svc service.AuthService, limiter fiber.Handler, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: svc,
		limiter: limiter,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires the auth routes.
func (h *AuthHandler) Register(router fiber.Router) {
	guard := h.limiter
	if guard == nil {
		guard = func(c *fiber.Ctx) error { return c.Next() }
	}

	router.Get(loginPath, h.LoginPage)
	router.Post(loginPath, guard, h.Login)
	router.Post("/register", guard, h.Signup)
	router.Post("/logout", h.Logout)
}

// LoginPage reports the current session; a signed-in operator is pointed at the dashboard.
func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	resp := h.service.Current()
	if resp.Authenticated {
		resp.Redirect = dashboardPath
	}
	return utils.SendSuccess(c, "login", resp)
}

// Login exchanges credentials for a session.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.service.Login(c.UserContext(), req)
	if err != nil {
		return h.authFailure(c, err)
	}
	resp.Redirect = dashboardPath
	return utils.SendSuccess(c, "signed in", resp)
}

// Signup creates an account and signs in with it.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.service.Register(c.UserContext(), req)
	if err != nil {
		return h.authFailure(c, err)
	}
	resp.Redirect = dashboardPath
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account created", resp)
}

// Logout ends the session. It succeeds when no session exists.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.service.Logout(c.UserContext()); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to clear session")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to sign out")
	}
	resp := h.service.Current()
	resp.Redirect = loginPath
	return utils.SendSuccess(c, "signed out", resp)
}

func (h *AuthHandler) authFailure(c *fiber.Ctx, err error) error {
	if isValidationError(err) {
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "invalid credentials payload", validationDetails(err))
	}

	var authErr *service.AuthError
	if errors.As(err, &authErr) {
		return utils.SendError(c, fiber.StatusUnauthorized, authErr.Message)
	}

	requestLogger(h.logger, c).Error().Err(err).Msg("sign in failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "failed to sign in")
}
