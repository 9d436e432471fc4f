package restoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/noah-isme/resto-dashboard/internal/models"
)

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the register request body.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by login and register.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type ordersEnvelope struct {
	Data        []models.Order `json:"data"`
	CurrentPage int            `json:"current_page"`
	LastPage    int            `json:"last_page"`
	Total       int            `json:"total"`
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResult, error) {
	return c.authenticate(ctx, "login", "/login", creds)
}

// Register creates an account and returns its token.
func (c *Client) Register(ctx context.Context, reg Registration) (AuthResult, error) {
	return c.authenticate(ctx, "register", "/register", reg)
}

func (c *Client) authenticate(ctx context.Context, endpoint, path string, payload any) (AuthResult, error) {
	body, err := c.do(ctx, endpoint, http.MethodPost, path, nil, payload)
	if err != nil {
		return AuthResult{}, err
	}

	var result AuthResult
	if err := decodeObject(body, &result); err != nil {
		return AuthResult{}, err
	}
	if result.Token == "" {
		return AuthResult{}, fmt.Errorf("%w: %s response carries no token", ErrUnexpectedShape, endpoint)
	}
	return result, nil
}

// Restaurants lists every restaurant.
func (c *Client) Restaurants(ctx context.Context) ([]models.Restaurant, error) {
	body, err := c.do(ctx, "restaurants", http.MethodGet, "/restaurants", nil, nil)
	if err != nil {
		return []models.Restaurant{}, err
	}
	return decodeList[models.Restaurant](body)
}

// Restaurant fetches one restaurant.
func (c *Client) Restaurant(ctx context.Context, id int64) (models.Restaurant, error) {
	body, err := c.do(ctx, "restaurant", http.MethodGet, fmt.Sprintf("/restaurants/%d", id), nil, nil)
	if err != nil {
		return models.Restaurant{}, err
	}
	var restaurant models.Restaurant
	if err := decodeObject(body, &restaurant); err != nil {
		return models.Restaurant{}, err
	}
	return restaurant, nil
}

// Orders fetches one page of filtered orders.
func (c *Client) Orders(ctx context.Context, params url.Values) (models.OrdersPage, error) {
	body, err := c.do(ctx, "orders", http.MethodGet, "/analytics/orders", params, nil)
	if err != nil {
		return models.OrdersPage{}, err
	}

	var envelope ordersEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return models.OrdersPage{}, fmt.Errorf("decode orders: %w", err)
	}
	orders := envelope.Data
	if orders == nil {
		orders = []models.Order{}
	}
	return models.OrdersPage{
		Orders: orders,
		Pagination: models.Pagination{
			CurrentPage: envelope.CurrentPage,
			LastPage:    envelope.LastPage,
			Total:       envelope.Total,
		},
	}, nil
}

// Trends fetches daily trends and peak hours for a restaurant.
func (c *Client) Trends(ctx context.Context, restaurantID int64, params url.Values) (models.Trends, error) {
	body, err := c.do(ctx, "trends", http.MethodGet, fmt.Sprintf("/restaurants/%d/trends", restaurantID), params, nil)
	if err != nil {
		return models.Trends{}, err
	}
	var trends models.Trends
	if err := decodeObject(body, &trends); err != nil {
		return models.Trends{}, err
	}
	return trends, nil
}

// TopRestaurants ranks restaurants by revenue.
func (c *Client) TopRestaurants(ctx context.Context, params url.Values) ([]models.TopRestaurant, error) {
	body, err := c.do(ctx, "top_restaurants", http.MethodGet, "/analytics/top-restaurants", params, nil)
	if err != nil {
		return []models.TopRestaurant{}, err
	}
	return decodeList[models.TopRestaurant](body)
}

// Overview fetches the dashboard summary for a date range.
func (c *Client) Overview(ctx context.Context, params url.Values) (models.Overview, error) {
	body, err := c.do(ctx, "overview", http.MethodGet, "/dashboard/overview", params, nil)
	if err != nil {
		return models.Overview{}, err
	}
	var overview models.Overview
	if err := decodeObject(body, &overview); err != nil {
		return models.Overview{}, err
	}
	return overview, nil
}
