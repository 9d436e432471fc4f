package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/resto-dashboard/internal/dto"
	"github.com/noah-isme/resto-dashboard/internal/filters"
	"github.com/noah-isme/resto-dashboard/internal/models"
	"github.com/noah-isme/resto-dashboard/internal/view"
)

type stubAuthService struct {
	loginReq    dto.LoginRequest
	registerReq dto.RegisterRequest
	current     dto.SessionResponse
	err         error
	logoutCalls int
}

func (s *stubAuthService) Login(_ context.Context, req dto.LoginRequest) (dto.SessionResponse, error) {
	s.loginReq = req
	if s.err != nil {
		return dto.SessionResponse{}, s.err
	}
	s.current = dto.SessionResponse{Authenticated: true, User: &models.User{ID: 1, Name: "Arsh"}, Initial: "A"}
	return s.current, nil
}

func (s *stubAuthService) Register(_ context.Context, req dto.RegisterRequest) (dto.SessionResponse, error) {
	s.registerReq = req
	if s.err != nil {
		return dto.SessionResponse{}, s.err
	}
	s.current = dto.SessionResponse{Authenticated: true, User: &models.User{ID: 2, Name: req.Name}, Initial: "N"}
	return s.current, nil
}

func (s *stubAuthService) Logout(context.Context) error {
	s.logoutCalls++
	s.current = dto.SessionResponse{Initial: "U"}
	return nil
}

func (s *stubAuthService) Current() dto.SessionResponse {
	return s.current
}

type stubDashboardService struct {
	err error

	search     string
	sort       string
	page       int
	selectedID int64
	filtersReq dto.FiltersUpdateRequest
	state      filters.State
	orders     dto.OrdersResponse
}

func (s *stubDashboardService) Mount(context.Context) error { return s.err }
func (s *stubDashboardService) Unmount() {}
func (s *stubDashboardService) Close() {}

func (s *stubDashboardService) Snapshot(context.Context) (dto.DashboardResponse, error) {
	if s.err != nil {
		return dto.DashboardResponse{}, s.err
	}
	return dto.DashboardResponse{Filters: s.state}, nil
}

func (s *stubDashboardService) Filters(context.Context) (filters.State, error) {
	return s.state, s.err
}

func (s *stubDashboardService) UpdateFilters(_ context.Context, req dto.FiltersUpdateRequest) (dto.FiltersResponse, error) {
	s.filtersReq = req
	if s.err != nil {
		return dto.FiltersResponse{}, s.err
	}
	req.Apply(&s.state)
	return dto.FiltersResponse{Filters: s.state, Changed: []string{"date_range"}}, nil
}

func (s *stubDashboardService) ClearHours(context.Context) (dto.FiltersResponse, error) {
	if s.err != nil {
		return dto.FiltersResponse{}, s.err
	}
	s.state.HourRange = filters.HourRange{}
	return dto.FiltersResponse{Filters: s.state, Changed: []string{"hour_range"}}, nil
}

func (s *stubDashboardService) Overview(context.Context) (view.Snapshot[models.Overview], error) {
	if s.err != nil {
		return view.Snapshot[models.Overview]{}, s.err
	}
	return view.Snapshot[models.Overview]{Name: "overview", Status: view.StatusSuccess, Data: models.Overview{TotalOrders: 40}}, nil
}

func (s *stubDashboardService) Restaurants(_ context.Context, search, sort string) (dto.RestaurantListResponse, error) {
	s.search, s.sort = search, sort
	if s.err != nil {
		return dto.RestaurantListResponse{}, s.err
	}
	return dto.RestaurantListResponse{Status: view.StatusSuccess, Items: []models.Restaurant{{ID: 1, Name: "Sushi Bay"}}, Total: 2, Search: search, Sort: sort}, nil
}

func (s *stubDashboardService) TopRestaurants(context.Context) (view.Snapshot[[]models.TopRestaurant], error) {
	return view.Snapshot[[]models.TopRestaurant]{Name: "top", Status: view.StatusEmpty, Data: []models.TopRestaurant{}}, s.err
}

func (s *stubDashboardService) Orders(context.Context) (dto.OrdersResponse, error) {
	return s.orders, s.err
}

func (s *stubDashboardService) SetOrdersPage(_ context.Context, page int) (dto.OrdersResponse, error) {
	s.page = page
	if s.err != nil {
		return dto.OrdersResponse{}, s.err
	}
	s.orders.Pagination = dto.NewPaginationView(models.Pagination{CurrentPage: page, LastPage: 3, Total: 25})
	return s.orders, nil
}

func (s *stubDashboardService) SelectRestaurant(_ context.Context, id int64) (dto.TrendsResponse, error) {
	s.selectedID = id
	if s.err != nil {
		return dto.TrendsResponse{}, s.err
	}
	return dto.TrendsResponse{SelectedRestaurantID: id}, nil
}

func (s *stubDashboardService) Trends(context.Context) (dto.TrendsResponse, error) {
	return dto.TrendsResponse{SelectedRestaurantID: s.selectedID}, s.err
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Meta    json.RawMessage   `json:"meta"`
	Details map[string]string `json:"details"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload envelope
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload
}
