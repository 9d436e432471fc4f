package performance_test

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/resto-dashboard/internal/handler"
	"github.com/noah-isme/resto-dashboard/internal/models"
	"github.com/noah-isme/resto-dashboard/internal/service"
	"github.com/noah-isme/resto-dashboard/internal/session"
)

// memoryAnalytics answers every analytics call from fixed in-memory data.
type memoryAnalytics struct {
	restaurants []models.Restaurant
	trends      models.Trends
}

func newMemoryAnalytics() memoryAnalytics {
	restaurants := make([]models.Restaurant, 0, 200)
	for i := 1; i <= 200; i++ {
		restaurants = append(restaurants, models.Restaurant{ID: int64(i), Name: fmt.Sprintf("Restaurant %03d", i), Location: "Pune", Cuisine: "Cafe"})
	}
	points := make([]models.TrendPoint, 0, 90)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 90; i++ {
		points = append(points, models.TrendPoint{
			Date:          start.AddDate(0, 0, i).Format("2006-01-02"),
			DailyOrders:   int64(10 + i%7),
			DailyRevenue:  models.Number(1000 + i*13),
			AvgOrderValue: models.Number(100 + i%5),
		})
	}
	peaks := models.PeakHours{}
	for h := 0; h < 24; h++ {
		peaks[fmt.Sprint(h)] = models.PeakHourBucket{Hour: h, OrderCount: int64(h * 3)}
	}
	return memoryAnalytics{restaurants: restaurants, trends: models.Trends{Trends: points, PeakHours: peaks}}
}

func (m memoryAnalytics) Restaurants(context.Context) ([]models.Restaurant, error) {
	return m.restaurants, nil
}

func (m memoryAnalytics) Restaurant(_ context.Context, id int64) (models.Restaurant, error) {
	return m.restaurants[id-1], nil
}

func (m memoryAnalytics) Orders(context.Context, url.Values) (models.OrdersPage, error) {
	return models.OrdersPage{
		Orders:     []models.Order{{ID: 1, RestaurantID: 1, OrderAmount: 320}},
		Pagination: models.Pagination{CurrentPage: 1, LastPage: 20, Total: 200},
	}, nil
}

func (m memoryAnalytics) Trends(context.Context, int64, url.Values) (models.Trends, error) {
	return m.trends, nil
}

func (m memoryAnalytics) TopRestaurants(context.Context, url.Values) ([]models.TopRestaurant, error) {
	return []models.TopRestaurant{{Restaurant: m.restaurants[0], TotalRevenue: 9000, TotalOrders: 90}}, nil
}

func (m memoryAnalytics) Overview(context.Context, url.Values) (models.Overview, error) {
	return models.Overview{TotalRevenue: 90000, TotalOrders: 900, AvgOrderValue: 100, ActiveRestaurants: 200}, nil
}

func setupDashboardPerformanceApp(t *testing.T) *fiber.App {
	t.Helper()

	sessions := session.NewManager(session.NewMemoryStorage(""), zerolog.Nop())
	require.NoError(t, sessions.Login(context.Background(), "1|perf", &models.User{ID: 1, Name: "Perf"}))

	svc := service.NewDashboardService(newMemoryAnalytics(), sessions, validator.New(validator.WithRequiredStructEnabled()), service.DashboardOptions{ValidateFilters: true}, zerolog.Nop())
	t.Cleanup(svc.Close)

	app := fiber.New()
	handler.NewDashboardHandler(svc, zerolog.Nop()).Register(app.Group("/dashboard"))

	req := httptest.NewRequest(http.MethodPut, "/dashboard/restaurants/5/select", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	return app
}

func TestFilterChangeP95LatencyBelow250ms(t *testing.T) {
	app := setupDashboardPerformanceApp(t)

	runs := 40
	durations := make([]time.Duration, 0, runs)

	for i := 0; i < runs; i++ {
		body := fmt.Sprintf(`{"date_range":{"start":"2024-03-%02d","end":"2024-05-29"},"hour_range":{"start":"%02d:00","end":"23:00"}}`, 1+i%28, i%23)
		req := httptest.NewRequest(http.MethodPut, "/dashboard/filters", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		start := time.Now()
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		durations = append(durations, time.Since(start))
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	index := int(math.Ceil(0.95*float64(len(durations)))) - 1
	if index < 0 {
		index = 0
	}
	p95 := durations[index]

	require.LessOrEqual(t, p95, 250*time.Millisecond)
}
