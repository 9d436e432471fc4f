package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/resto-dashboard/internal/dto"
	"github.com/noah-isme/resto-dashboard/internal/filters"
	"github.com/noah-isme/resto-dashboard/internal/middleware"
	"github.com/noah-isme/resto-dashboard/internal/service"
	"github.com/noah-isme/resto-dashboard/internal/utils"
	"github.com/noah-isme/resto-dashboard/pkg/restoapi"
)

// DashboardHandler exposes the dashboard views.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler constructs the dashboard handler.
func NewDashboardHandler(svc service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: svc,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register wires the dashboard routes under an already gated router.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/", h.Dashboard)
	router.Get("/filters", h.Filters)
	router.Put("/filters", h.UpdateFilters)
	router.Delete("/filters/hours", h.ClearHours)
	router.Get("/overview", h.Overview)
	router.Get("/restaurants", h.Restaurants)
	router.Put("/restaurants/:id/select", h.SelectRestaurant)
	router.Get("/trends", h.Trends)
	router.Get("/top", h.TopRestaurants)
	router.Get("/orders", h.Orders)
	router.Put("/orders/page/:page", h.SetOrdersPage)
}

// Dashboard mounts the dashboard if needed and returns every view.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	resp, err := h.service.Snapshot(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "dashboard retrieved", resp)
}

func (h *DashboardHandler) Filters(c *fiber.Ctx) error {
	state, err := h.service.Filters(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "filters retrieved", dto.FiltersResponse{Filters: state, Changed: []string{}})
}

// UpdateFilters applies the present filter groups and refreshes the dependent views.
func (h *DashboardHandler) UpdateFilters(c *fiber.Ctx) error {
	var req dto.FiltersUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.service.UpdateFilters(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "filters updated", resp)
}

func (h *DashboardHandler) ClearHours(c *fiber.Ctx) error {
	resp, err := h.service.ClearHours(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "hour range cleared", resp)
}

func (h *DashboardHandler) Overview(c *fiber.Ctx) error {
	snap, err := h.service.Overview(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "overview retrieved", snap)
}

func (h *DashboardHandler) Restaurants(c *fiber.Ctx) error {
	var query dto.RestaurantListQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query")
	}

	resp, err := h.service.Restaurants(c.UserContext(), query.Search, query.Sort)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "restaurants retrieved", resp)
}

func (h *DashboardHandler) SelectRestaurant(c *fiber.Ctx) error {
	id, err := parseParamInt(c, "id")
	if err != nil || id <= 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid restaurant id")
	}

	resp, err := h.service.SelectRestaurant(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "restaurant selected", resp)
}

func (h *DashboardHandler) Trends(c *fiber.Ctx) error {
	resp, err := h.service.Trends(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "trends retrieved", resp)
}

func (h *DashboardHandler) TopRestaurants(c *fiber.Ctx) error {
	snap, err := h.service.TopRestaurants(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SendSuccess(c, "top restaurants retrieved", snap)
}

func (h *DashboardHandler) Orders(c *fiber.Ctx) error {
	resp, err := h.service.Orders(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.OK(c, resp.View, "orders retrieved", resp.Pagination)
}

// SetOrdersPage moves the orders table; filters are unchanged.
func (h *DashboardHandler) SetOrdersPage(c *fiber.Ctx) error {
	page, err := parseParamInt(c, "page")
	if err != nil || page < 1 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}

	resp, err := h.service.SetOrdersPage(c.UserContext(), int(page))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.OK(c, resp.View, "orders page loaded", resp.Pagination)
}

func (h *DashboardHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, restoapi.ErrUnauthorized):
		return middleware.RedirectToLogin(c, loginPath)
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "invalid filters", filters.FieldErrors(err))
	case errors.Is(err, service.ErrInvalidPage), errors.Is(err, service.ErrInvalidID):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return utils.SendError(c, fiber.StatusGatewayTimeout, "analytics backend timed out")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("dashboard request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}
}
