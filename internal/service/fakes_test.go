package service

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/resto-dashboard/internal/models"
	"github.com/noah-isme/resto-dashboard/internal/session"
	"github.com/noah-isme/resto-dashboard/pkg/restoapi"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// fakeBackend records calls and mimics the 401 hook of the real client.
type fakeBackend struct {
	mu sync.Mutex

	calls  map[string]int
	params map[string][]url.Values

	restaurants []models.Restaurant
	top         []models.TopRestaurant
	overview    models.Overview
	orders      models.OrdersPage
	pages       map[string]models.OrdersPage
	trends      models.Trends
	restaurant  models.Restaurant
	authResult  restoapi.AuthResult

	errs  map[string]error
	holds map[string]heldCall

	overviewFor    func(params url.Values) models.Overview
	onUnauthorized func(ctx context.Context)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls:  map[string]int{},
		params: map[string][]url.Values{},
		restaurants: []models.Restaurant{
			{ID: 1, Name: "Tandoori Treats", Location: "Bangalore", Cuisine: "North Indian"},
			{ID: 2, Name: "Sushi Bay", Location: "Mumbai", Cuisine: "Japanese"},
		},
		top: []models.TopRestaurant{
			{Restaurant: models.Restaurant{ID: 2, Name: "Sushi Bay"}, TotalRevenue: 1200, TotalOrders: 12},
		},
		overview: models.Overview{TotalRevenue: 5000, TotalOrders: 40, AvgOrderValue: 125, ActiveRestaurants: 2},
		orders: models.OrdersPage{
			Orders:     []models.Order{{ID: 10, RestaurantID: 1, OrderAmount: 250}},
			Pagination: models.Pagination{CurrentPage: 1, LastPage: 3, Total: 25},
		},
		trends: models.Trends{
			Trends: []models.TrendPoint{
				{Date: "2024-06-01", DailyOrders: 2, DailyRevenue: 200, AvgOrderValue: 100},
			},
			PeakHours: models.PeakHours{"12": {Hour: 12, OrderCount: 2}},
		},
		restaurant: models.Restaurant{ID: 99, Name: "Hidden Gem"},
		authResult: restoapi.AuthResult{Token: "1|token", User: &models.User{ID: 1, Name: "Arsh", Email: "arsh@gmail.com"}},
		errs:       map[string]error{},
		holds:      map[string]heldCall{},
	}
}

type heldCall struct {
	reached chan struct{}
	gate    chan struct{}
}

// holdNext blocks the next call to name until release is called.
func (f *fakeBackend) holdNext(name string) (reached <-chan struct{}, release func()) {
	h := heldCall{reached: make(chan struct{}), gate: make(chan struct{})}
	f.mu.Lock()
	f.holds[name] = h
	f.mu.Unlock()
	var once sync.Once
	return h.reached, func() { once.Do(func() { close(h.gate) }) }
}

func (f *fakeBackend) record(ctx context.Context, name string, params url.Values) error {
	f.mu.Lock()
	f.calls[name]++
	f.params[name] = append(f.params[name], params)
	err := f.errs[name]
	hook := f.onUnauthorized
	h, held := f.holds[name]
	delete(f.holds, name)
	f.mu.Unlock()

	if held {
		close(h.reached)
		select {
		case <-h.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if restoapi.StatusCode(err) == http.StatusUnauthorized && hook != nil {
		hook(ctx)
	}
	return err
}

func (f *fakeBackend) setErr(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[name] = err
}

func (f *fakeBackend) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) lastParams(name string) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.params[name]
	if len(list) == 0 {
		return nil
	}
	return list[len(list)-1]
}

func (f *fakeBackend) Login(ctx context.Context, creds restoapi.Credentials) (restoapi.AuthResult, error) {
	if err := f.record(ctx, "login", url.Values{"email": {creds.Email}}); err != nil {
		return restoapi.AuthResult{}, err
	}
	return f.authResult, nil
}

func (f *fakeBackend) Register(ctx context.Context, reg restoapi.Registration) (restoapi.AuthResult, error) {
	if err := f.record(ctx, "register", url.Values{"name": {reg.Name}, "email": {reg.Email}}); err != nil {
		return restoapi.AuthResult{}, err
	}
	return f.authResult, nil
}

func (f *fakeBackend) Restaurants(ctx context.Context) ([]models.Restaurant, error) {
	if err := f.record(ctx, "restaurants", nil); err != nil {
		return []models.Restaurant{}, err
	}
	return f.restaurants, nil
}

func (f *fakeBackend) Restaurant(ctx context.Context, id int64) (models.Restaurant, error) {
	if err := f.record(ctx, "restaurant", nil); err != nil {
		return models.Restaurant{}, err
	}
	r := f.restaurant
	r.ID = id
	return r, nil
}

func (f *fakeBackend) Orders(ctx context.Context, params url.Values) (models.OrdersPage, error) {
	if err := f.record(ctx, "orders", params); err != nil {
		return models.OrdersPage{}, err
	}
	if page, ok := f.pages[params.Get("page")]; ok {
		return page, nil
	}
	return f.orders, nil
}

func (f *fakeBackend) Trends(ctx context.Context, _ int64, params url.Values) (models.Trends, error) {
	if err := f.record(ctx, "trends", params); err != nil {
		return models.Trends{}, err
	}
	return f.trends, nil
}

func (f *fakeBackend) TopRestaurants(ctx context.Context, params url.Values) ([]models.TopRestaurant, error) {
	if err := f.record(ctx, "top", params); err != nil {
		return []models.TopRestaurant{}, err
	}
	return f.top, nil
}

func (f *fakeBackend) Overview(ctx context.Context, params url.Values) (models.Overview, error) {
	if err := f.record(ctx, "overview", params); err != nil {
		return models.Overview{}, err
	}
	if f.overviewFor != nil {
		return f.overviewFor(params), nil
	}
	return f.overview, nil
}

func newSignedInManager(t *testing.T, backend *fakeBackend) session.Manager {
	t.Helper()
	mgr := session.NewManager(session.NewMemoryStorage(""), testLogger())
	require.NoError(t, mgr.Login(context.Background(), "1|token", &models.User{ID: 1, Name: "Arsh"}))
	backend.onUnauthorized = func(ctx context.Context) { _ = mgr.Logout(ctx) }
	return mgr
}

func unauthorizedErr() error {
	return &restoapi.APIError{Method: http.MethodGet, Path: "/x", Status: http.StatusUnauthorized, Message: "Unauthenticated."}
}
