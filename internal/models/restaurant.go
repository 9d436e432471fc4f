package models

// Restaurant is a server-owned restaurant record.
type Restaurant struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Cuisine  string `json:"cuisine"`
}

// TopRestaurant is a restaurant ranked by revenue for a date range.
type TopRestaurant struct {
	Restaurant
	TotalRevenue Number `json:"total_revenue"`
	TotalOrders  int64  `json:"total_orders"`
}

// Order is a single order row of the paginated orders listing.
type Order struct {
	ID           int64       `json:"id"`
	RestaurantID int64       `json:"restaurant_id"`
	OrderAmount  Number      `json:"order_amount"`
	OrderTime    string      `json:"order_time"`
	Restaurant   *Restaurant `json:"restaurant,omitempty"`
}

// Pagination carries the server's page counters.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	Total       int `json:"total"`
}

// OrdersPage is one page of orders together with its counters.
type OrdersPage struct {
	Orders     []Order    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Overview holds the dashboard-wide summary for a date range.
type Overview struct {
	TotalRevenue      Number `json:"total_revenue"`
	TotalOrders       int64  `json:"total_orders"`
	AvgOrderValue     Number `json:"avg_order_value"`
	ActiveRestaurants int64  `json:"active_restaurants"`
}
