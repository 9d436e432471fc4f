package service

import (
	"context"
	"net/url"

	"github.com/noah-isme/resto-dashboard/internal/models"
	"github.com/noah-isme/resto-dashboard/pkg/restoapi"
)

// AuthBackend is the part of the REST backend used to sign in.
type AuthBackend interface {
	Login(ctx context.Context, creds restoapi.Credentials) (restoapi.AuthResult, error)
	Register(ctx context.Context, reg restoapi.Registration) (restoapi.AuthResult, error)
}

// AnalyticsBackend is the part of the REST backend the dashboard reads from.
type AnalyticsBackend interface {
	Restaurants(ctx context.Context) ([]models.Restaurant, error)
	Restaurant(ctx context.Context, id int64) (models.Restaurant, error)
	Orders(ctx context.Context, params url.Values) (models.OrdersPage, error)
	Trends(ctx context.Context, restaurantID int64, params url.Values) (models.Trends, error)
	TopRestaurants(ctx context.Context, params url.Values) ([]models.TopRestaurant, error)
	Overview(ctx context.Context, params url.Values) (models.Overview, error)
}

var (
	_ AuthBackend      = (*restoapi.Client)(nil)
	_ AnalyticsBackend = (*restoapi.Client)(nil)
)
