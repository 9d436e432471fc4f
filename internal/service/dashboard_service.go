package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/resto-dashboard/internal/charts"
	"github.com/noah-isme/resto-dashboard/internal/dto"
	"github.com/noah-isme/resto-dashboard/internal/filters"
	"github.com/noah-isme/resto-dashboard/internal/models"
	"github.com/noah-isme/resto-dashboard/internal/session"
	"github.com/noah-isme/resto-dashboard/internal/view"
	"github.com/noah-isme/resto-dashboard/pkg/restoapi"
)

const (
	ViewOverview    = "overview"
	ViewRestaurants = "restaurants"
	ViewTop         = "top_restaurants"
	ViewOrders      = "orders"
	ViewTrends      = "trends"
)

var (
	// ErrSessionRequired is returned when the dashboard is used without a session
	// or the session ended while serving the call.
	ErrSessionRequired = fmt.Errorf("dashboard: session required: %w", restoapi.ErrUnauthorized)
	ErrInvalidPage     = errors.New("dashboard: page must be at least 1")
	ErrInvalidID       = errors.New("dashboard: restaurant id must be positive")
)

// DashboardOptions tunes the dashboard.
type DashboardOptions struct {
	RangeDays       int
	OrdersPerPage   int
	TopLimit        int
	ValidateFilters bool
	Now             func() time.Time
	Observer        view.RefreshObserver
}

func (o DashboardOptions) withDefaults() DashboardOptions {
	if o.RangeDays <= 0 {
		o.RangeDays = 7
	}
	if o.OrdersPerPage <= 0 {
		o.OrdersPerPage = 10
	}
	if o.TopLimit <= 0 {
		o.TopLimit = 3
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// DashboardService composes the dashboard views around one filter store.
type DashboardService interface {
	Mount(ctx context.Context) error
	Unmount()
	Snapshot(ctx context.Context) (dto.DashboardResponse, error)
	Filters(ctx context.Context) (filters.State, error)
	UpdateFilters(ctx context.Context, req dto.FiltersUpdateRequest) (dto.FiltersResponse, error)
	ClearHours(ctx context.Context) (dto.FiltersResponse, error)
	Overview(ctx context.Context) (view.Snapshot[models.Overview], error)
	Restaurants(ctx context.Context, search, sort string) (dto.RestaurantListResponse, error)
	TopRestaurants(ctx context.Context) (view.Snapshot[[]models.TopRestaurant], error)
	Orders(ctx context.Context) (dto.OrdersResponse, error)
	SetOrdersPage(ctx context.Context, page int) (dto.OrdersResponse, error)
	SelectRestaurant(ctx context.Context, id int64) (dto.TrendsResponse, error)
	Trends(ctx context.Context) (dto.TrendsResponse, error)
	Close()
}

type dashboardService struct {
	analytics AnalyticsBackend
	sessions  session.Manager
	validator *validator.Validate
	opts      DashboardOptions
	logger    zerolog.Logger
	group     *view.Group

	unsubscribeSession func()

	mu      sync.Mutex
	mounted *mountedDashboard
}

type mountedDashboard struct {
	ctx    context.Context
	cancel context.CancelFunc
	store  *filters.Store
	unbind []func()

	overview    *view.View[models.Overview]
	restaurants *view.View[[]models.Restaurant]
	top         *view.View[[]models.TopRestaurant]
	orders      *view.View[models.OrdersPage]
	trends      *view.View[*dto.TrendsPayload]

	stateMu  sync.Mutex
	page     int
	selected models.Restaurant
}

// NewDashboardService constructs the dashboard. It unmounts itself whenever the session changes.
func NewDashboardService(analytics AnalyticsBackend, sessions session.Manager, validator *validator.Validate, opts DashboardOptions, logger zerolog.Logger) DashboardService {
	s := &dashboardService{
		analytics: analytics,
		sessions:  sessions,
		validator: validator,
		opts:      opts.withDefaults(),
		logger:    logger.With().Str("component", "dashboard_service").Logger(),
	}
	s.group = &view.Group{OnPanic: func(err error) {
		s.logger.Error().Err(err).Msg("background refresh panicked")
	}}
	s.unsubscribeSession = sessions.Subscribe(func(session.Session) {
		s.Unmount()
	})
	return s
}

func (s *dashboardService) Mount(ctx context.Context) error {
	_, err := s.ensure(ctx)
	return err
}

func (s *dashboardService) ensure(ctx context.Context) (*mountedDashboard, error) {
	if !s.sessions.Authenticated() {
		return nil, ErrSessionRequired
	}

	s.mu.Lock()
	if s.mounted != nil {
		m := s.mounted
		s.mu.Unlock()
		return m, nil
	}
	m := s.build()

	tracer := otel.Tracer("github.com/noah-isme/resto-dashboard/internal/service/dashboard")
	ctx, span := tracer.Start(ctx, "dashboard.mount")
	defer span.End()

	fetchCtx, release := m.scoped(ctx)
	defer release()

	// Initial refreshes take their sequence numbers before m is published, so
	// a filter change on the new dashboard always supersedes them.
	state := m.store.Get()
	var wg sync.WaitGroup
	initial := view.RunnerFunc(func(fn func()) {
		wg.Add(1)
		s.group.Go(func() {
			defer wg.Done()
			fn()
		})
	})
	m.restaurants.Dispatch(fetchCtx, state, initial)
	m.overview.Dispatch(fetchCtx, state, initial)
	m.top.Dispatch(fetchCtx, state, initial)
	m.orders.Dispatch(fetchCtx, state, initial)
	s.mounted = m
	s.mu.Unlock()
	wg.Wait()

	if !s.sessions.Authenticated() {
		span.SetStatus(codes.Error, "session_lost")
		return nil, ErrSessionRequired
	}
	s.logger.Info().Str("start_date", state.DateRange.Start).Str("end_date", state.DateRange.End).Msg("dashboard mounted")
	return m, nil
}

func (s *dashboardService) build() *mountedDashboard {
	ctx, cancel := context.WithCancel(context.Background())
	m := &mountedDashboard{
		ctx:    ctx,
		cancel: cancel,
		store:  filters.NewStore(filters.Default(s.opts.Now(), s.opts.RangeDays)),
		page:   1,
	}

	m.overview = view.New(ViewOverview, func(ctx context.Context, state filters.State) (models.Overview, error) {
		return s.analytics.Overview(ctx, filters.OverviewParams(state))
	}, s.logger, view.WithRetainOnError[models.Overview](), view.WithObserver[models.Overview](s.opts.Observer))

	m.restaurants = view.New(ViewRestaurants, func(ctx context.Context, _ filters.State) ([]models.Restaurant, error) {
		return s.analytics.Restaurants(ctx)
	}, s.logger,
		view.WithDefault([]models.Restaurant{}),
		view.WithEmpty(func(items []models.Restaurant) bool { return len(items) == 0 }),
		view.WithObserver[[]models.Restaurant](s.opts.Observer))

	m.top = view.New(ViewTop, func(ctx context.Context, state filters.State) ([]models.TopRestaurant, error) {
		return s.analytics.TopRestaurants(ctx, filters.TopParams(state, s.opts.TopLimit))
	}, s.logger,
		view.WithDefault([]models.TopRestaurant{}),
		view.WithEmpty(func(items []models.TopRestaurant) bool { return len(items) == 0 }),
		view.WithObserver[[]models.TopRestaurant](s.opts.Observer))

	m.orders = view.New(ViewOrders, func(ctx context.Context, state filters.State) (models.OrdersPage, error) {
		return s.analytics.Orders(ctx, filters.OrderParams(state, m.currentPage(), s.opts.OrdersPerPage))
	}, s.logger,
		view.WithDefault(models.OrdersPage{Orders: []models.Order{}}),
		view.WithEmpty(func(page models.OrdersPage) bool { return len(page.Orders) == 0 }),
		view.WithObserver[models.OrdersPage](s.opts.Observer))

	m.trends = view.New(ViewTrends, func(ctx context.Context, state filters.State) (*dto.TrendsPayload, error) {
		return s.fetchTrends(ctx, m, state)
	}, s.logger,
		view.WithErrorStatus[*dto.TrendsPayload](),
		view.WithEmpty(func(p *dto.TrendsPayload) bool { return p == nil || p.Trends.Empty() }),
		view.WithObserver[*dto.TrendsPayload](s.opts.Observer))

	background := func() context.Context { return m.ctx }
	m.unbind = append(m.unbind,
		view.Bind(m.overview, m.store, filters.FieldDateRange, background, s.group),
		view.Bind(m.top, m.store, filters.FieldDateRange, background, s.group),
		m.store.Subscribe(filters.FieldsAll, func(state filters.State) {
			m.setPage(1)
			m.orders.Dispatch(m.ctx, state, s.group)
		}),
		m.store.Subscribe(filters.FieldsAll, func(state filters.State) {
			if m.selectedID() != 0 {
				m.trends.Dispatch(m.ctx, state, s.group)
			}
		}),
	)
	return m
}

func (s *dashboardService) fetchTrends(ctx context.Context, m *mountedDashboard, state filters.State) (*dto.TrendsPayload, error) {
	restaurant := m.selectedRestaurant()
	if restaurant.ID == 0 {
		return nil, nil
	}

	trends, err := s.analytics.Trends(ctx, restaurant.ID, filters.TrendParams(state))
	if err != nil {
		return nil, err
	}
	return &dto.TrendsPayload{
		Restaurant: restaurant,
		Trends:     trends,
		Charts:     charts.Build(trends),
	}, nil
}

// resolveRestaurant looks id up in the loaded list, then asks the backend once.
// Only a session failure is returned; otherwise the bare id is kept.
func (s *dashboardService) resolveRestaurant(ctx context.Context, m *mountedDashboard, id int64) (models.Restaurant, error) {
	for _, restaurant := range m.restaurants.Snapshot().Data {
		if restaurant.ID == id {
			return restaurant, nil
		}
	}

	restaurant, err := s.analytics.Restaurant(ctx, id)
	if err != nil {
		if err := s.sessionErr(err); err != nil {
			return models.Restaurant{}, err
		}
		s.logger.Warn().Err(err).Int64("restaurant_id", id).Msg("restaurant details unavailable")
		return models.Restaurant{ID: id}, nil
	}
	restaurant.ID = id
	return restaurant, nil
}

func (s *dashboardService) Unmount() {
	s.mu.Lock()
	m := s.mounted
	s.mounted = nil
	s.mu.Unlock()

	if m == nil {
		return
	}
	m.cancel()
	for _, unbind := range m.unbind {
		unbind()
	}
	s.logger.Info().Msg("dashboard unmounted")
}

func (s *dashboardService) Close() {
	if s.unsubscribeSession != nil {
		s.unsubscribeSession()
	}
	s.Unmount()
	s.group.Wait()
}

func (s *dashboardService) Snapshot(ctx context.Context) (dto.DashboardResponse, error) {
	m, err := s.ensure(ctx)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	return dto.DashboardResponse{
		Session:     NewSessionResponse(s.sessions.Current()),
		Filters:     m.store.Get(),
		Overview:    m.overview.Snapshot(),
		Restaurants: m.restaurants.Snapshot(),
		Top:         m.top.Snapshot(),
		Orders:      ordersResponse(m.orders.Snapshot()),
		Trends:      m.trendsResponse(),
	}, nil
}

func (s *dashboardService) Filters(ctx context.Context) (filters.State, error) {
	m, err := s.ensure(ctx)
	if err != nil {
		return filters.State{}, err
	}
	return m.store.Get(), nil
}

func (s *dashboardService) UpdateFilters(ctx context.Context, req dto.FiltersUpdateRequest) (dto.FiltersResponse, error) {
	m, err := s.ensure(ctx)
	if err != nil {
		return dto.FiltersResponse{}, err
	}

	next := m.store.Get()
	req.Apply(&next)
	if s.opts.ValidateFilters {
		if err := filters.Validate(s.validator, next); err != nil {
			return dto.FiltersResponse{}, err
		}
	}
	return s.commit(ctx, m, func() filters.Fields { return m.store.Set(next) })
}

func (s *dashboardService) ClearHours(ctx context.Context) (dto.FiltersResponse, error) {
	m, err := s.ensure(ctx)
	if err != nil {
		return dto.FiltersResponse{}, err
	}
	return s.commit(ctx, m, m.store.ClearHours)
}

// commit applies a filter write and waits, bounded by ctx, for the refreshes it triggered.
func (s *dashboardService) commit(ctx context.Context, m *mountedDashboard, write func() filters.Fields) (dto.FiltersResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/resto-dashboard/internal/service/dashboard")
	ctx, span := tracer.Start(ctx, "dashboard.filters_changed")
	defer span.End()

	changed := write()
	span.SetAttributes(attribute.StringSlice("filters.changed", changed.Names()))
	if changed != filters.FieldsNone {
		s.logger.Debug().Strs("changed", changed.Names()).Msg("filters changed")
		_ = s.group.WaitContext(ctx)
	}
	if !s.sessions.Authenticated() {
		return dto.FiltersResponse{}, ErrSessionRequired
	}
	return dto.FiltersResponse{Filters: m.store.Get(), Changed: changed.Names()}, nil
}

func (s *dashboardService) Overview(ctx context.Context) (view.Snapshot[models.Overview], error) {
	m, err := s.ensure(ctx)
	if err != nil {
		return view.Snapshot[models.Overview]{}, err
	}
	return m.overview.Snapshot(), nil
}

func (s *dashboardService) Restaurants(ctx context.Context, search, sort string) (dto.RestaurantListResponse, error) {
	m, err := s.ensure(ctx)
	if err != nil {
		return dto.RestaurantListResponse{}, err
	}
	snap := m.restaurants.Snapshot()
	items := QueryRestaurants(snap.Data, search, sort)
	return dto.RestaurantListResponse{
		Status: snap.Status,
		Items:  items,
		Total:  len(items),
		Search: search,
		Sort:   sort,
	}, nil
}

func (s *dashboardService) TopRestaurants(ctx context.Context) (view.Snapshot[[]models.TopRestaurant], error) {
	m, err := s.ensure(ctx)
	if err != nil {
		return view.Snapshot[[]models.TopRestaurant]{}, err
	}
	return m.top.Snapshot(), nil
}

func (s *dashboardService) Orders(ctx context.Context) (dto.OrdersResponse, error) {
	m, err := s.ensure(ctx)
	if err != nil {
		return dto.OrdersResponse{}, err
	}
	return ordersResponse(m.orders.Snapshot()), nil
}

func (s *dashboardService) SetOrdersPage(ctx context.Context, page int) (dto.OrdersResponse, error) {
	if page < 1 {
		return dto.OrdersResponse{}, ErrInvalidPage
	}
	m, err := s.ensure(ctx)
	if err != nil {
		return dto.OrdersResponse{}, err
	}

	m.setPage(page)
	fetchCtx, release := m.scoped(ctx)
	defer release()
	snap, err := m.orders.Refresh(fetchCtx, m.store.Get())
	if err := s.sessionErr(err); err != nil {
		return dto.OrdersResponse{}, err
	}
	return ordersResponse(snap), nil
}

func (s *dashboardService) SelectRestaurant(ctx context.Context, id int64) (dto.TrendsResponse, error) {
	if id <= 0 {
		return dto.TrendsResponse{}, ErrInvalidID
	}
	m, err := s.ensure(ctx)
	if err != nil {
		return dto.TrendsResponse{}, err
	}

	fetchCtx, release := m.scoped(ctx)
	defer release()

	restaurant, err := s.resolveRestaurant(fetchCtx, m, id)
	if err != nil {
		return dto.TrendsResponse{}, err
	}
	m.setSelected(restaurant)
	_, err = m.trends.Refresh(fetchCtx, m.store.Get())
	if err := s.sessionErr(err); err != nil {
		return dto.TrendsResponse{}, err
	}
	return m.trendsResponse(), nil
}

func (s *dashboardService) Trends(ctx context.Context) (dto.TrendsResponse, error) {
	m, err := s.ensure(ctx)
	if err != nil {
		return dto.TrendsResponse{}, err
	}
	return m.trendsResponse(), nil
}

// sessionErr keeps only the failures that end the session; the rest are shown by the view.
func (s *dashboardService) sessionErr(err error) error {
	if errors.Is(err, restoapi.ErrUnauthorized) || !s.sessions.Authenticated() {
		return ErrSessionRequired
	}
	return nil
}

func ordersResponse(snap view.Snapshot[models.OrdersPage]) dto.OrdersResponse {
	return dto.OrdersResponse{
		View:       snap,
		Pagination: dto.NewPaginationView(snap.Data.Pagination),
	}
}

// scoped derives a context that keeps parent's values, outlives the request, and
// ends when the dashboard is unmounted.
func (m *mountedDashboard) scoped(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	stop := context.AfterFunc(m.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (m *mountedDashboard) currentPage() int {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.page
}

func (m *mountedDashboard) setPage(page int) {
	m.stateMu.Lock()
	m.page = page
	m.stateMu.Unlock()
}

func (m *mountedDashboard) selectedRestaurant() models.Restaurant {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.selected
}

func (m *mountedDashboard) selectedID() int64 {
	return m.selectedRestaurant().ID
}

func (m *mountedDashboard) setSelected(restaurant models.Restaurant) {
	m.stateMu.Lock()
	m.selected = restaurant
	m.stateMu.Unlock()
}

func (m *mountedDashboard) trendsResponse() dto.TrendsResponse {
	resp := dto.TrendsResponse{SelectedRestaurantID: m.selectedID()}
	if resp.SelectedRestaurantID != 0 {
		snap := m.trends.Snapshot()
		resp.View = &snap
	}
	return resp
}
