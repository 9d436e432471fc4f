package dto

import (
	"github.com/noah-isme/resto-dashboard/internal/charts"
	"github.com/noah-isme/resto-dashboard/internal/filters"
	"github.com/noah-isme/resto-dashboard/internal/models"
	"github.com/noah-isme/resto-dashboard/internal/view"
)

// FiltersUpdateRequest replaces the groups that are present and keeps the rest.
type FiltersUpdateRequest struct {
	DateRange   *filters.DateRange   `json:"date_range"`
	AmountRange *filters.AmountRange `json:"amount_range"`
	HourRange   *filters.HourRange   `json:"hour_range"`
}

// Apply merges the request into state.
func (r FiltersUpdateRequest) Apply(state *filters.State) {
	if r.DateRange != nil {
		state.DateRange = *r.DateRange
	}
	if r.AmountRange != nil {
		state.AmountRange = *r.AmountRange
	}
	if r.HourRange != nil {
		state.HourRange = *r.HourRange
	}
}

// FiltersResponse is the current filter selection.
type FiltersResponse struct {
	Filters filters.State `json:"filters"`
	Changed []string      `json:"changed"`
}

// PaginationView adds the control flags the orders table needs.
type PaginationView struct {
	models.Pagination
	HasPrevious  bool `json:"has_previous"`
	HasNext      bool `json:"has_next"`
	ShowControls bool `json:"show_controls"`
}

// NewPaginationView derives the control flags from server counters.
func NewPaginationView(p models.Pagination) PaginationView {
	return PaginationView{
		Pagination:   p,
		HasPrevious:  p.CurrentPage > 1,
		HasNext:      p.CurrentPage < p.LastPage,
		ShowControls: p.LastPage > 1,
	}
}

// OrdersResponse is the orders table state.
type OrdersResponse struct {
	View       view.Snapshot[models.OrdersPage] `json:"view"`
	Pagination PaginationView                   `json:"pagination"`
}

// RestaurantListQuery is the local search and sort applied to the restaurant list.
type RestaurantListQuery struct {
	Search string `query:"search"`
	Sort   string `query:"sort"`
}

// RestaurantListResponse is the filtered restaurant list.
type RestaurantListResponse struct {
	Status view.Status         `json:"status"`
	Items  []models.Restaurant `json:"items"`
	Total  int                 `json:"total"`
	Search string              `json:"search"`
	Sort   string              `json:"sort"`
}

// TrendsPayload is what the trends view holds for the selected restaurant.
type TrendsPayload struct {
	Restaurant models.Restaurant `json:"restaurant"`
	Trends     models.Trends     `json:"trends"`
	Charts     charts.Dashboard  `json:"charts"`
}

// TrendsResponse is the trends panel state.
type TrendsResponse struct {
	SelectedRestaurantID int64                          `json:"selected_restaurant_id"`
	View                 *view.Snapshot[*TrendsPayload] `json:"view,omitempty"`
}

// DashboardResponse is the whole dashboard.
type DashboardResponse struct {
	Session     SessionResponse                       `json:"session"`
	Filters     filters.State                         `json:"filters"`
	Overview    view.Snapshot[models.Overview]        `json:"overview"`
	Restaurants view.Snapshot[[]models.Restaurant]    `json:"restaurants"`
	Top         view.Snapshot[[]models.TopRestaurant] `json:"top_restaurants"`
	Orders      OrdersResponse                        `json:"orders"`
	Trends      TrendsResponse                        `json:"trends"`
}
