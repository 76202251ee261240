package hr

import (
	"context"
	"strings"
	"time"

	"staffdesk.io/internal/errs"
	"staffdesk.io/internal/ids"
	"staffdesk.io/internal/obs"
	"staffdesk.io/internal/stream"
)

// Service implements the HR operations on top of a Store.
type Service struct {
	store  Store
	loc    *time.Location
	now    func() time.Time
	cache  StatsCache
	events Publisher
	newID  func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLocation sets the location used to compute calendar days.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides the time source.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithStatsCache enables caching of aggregate responses.
func WithStatsCache(c StatsCache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithPublisher forwards domain events to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// NewService wires a Service over store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		loc:   time.Local,
		now:   time.Now,
		cache: noCache{},
		newID: ids.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store exposes the underlying store.
func (s *Service) Store() Store { return s.store }

// Location returns the server location used for calendar days.
func (s *Service) Location() *time.Location { return s.loc }

// Ping checks the backing store.
func (s *Service) Ping(ctx context.Context) error { return s.store.Ping(ctx) }

func (s *Service) publish(kind string, payload any) {
	if s.events == nil {
		return
	}
	s.events.Publish(stream.Event{Type: kind, Payload: payload, Timestamp: s.now().UTC()})
}

// Stats cache keys.
const (
	statsEmployees   = "stats:employees"
	statsDepartments = "stats:departments"
	statsLeaves      = "stats:leaves"
	statsProjects    = "stats:projects"
	statsTasks       = "stats:tasks"
	statsDashboard   = "stats:dashboard"
)

func statsAttendanceKey(day string) string { return "stats:attendance:" + day }

// cached serves key from the stats cache, computing and storing it on a miss.
// Cache errors are logged and otherwise ignored.
func cached[T any](ctx context.Context, s *Service, key string, compute func() (T, error)) (T, error) {
	var out T
	hit, err := s.cache.Get(ctx, key, &out)
	if err != nil {
		obs.Warn("stats_cache_get_failed", map[string]any{"key": key, "error": err.Error()})
	}
	if hit && err == nil {
		return out, nil
	}
	out, err = compute()
	if err != nil {
		return out, err
	}
	if err := s.cache.Set(ctx, key, out); err != nil {
		obs.Warn("stats_cache_set_failed", map[string]any{"key": key, "error": err.Error()})
	}
	return out, nil
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		obs.Warn("stats_cache_invalidate_failed", map[string]any{"keys": keys, "error": err.Error()})
	}
}

type noCache struct{}

func (noCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (noCache) Set(context.Context, string, any) error         { return nil }
func (noCache) Invalidate(context.Context, ...string) error    { return nil }

// NormalizeEmail lower-cases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func required(field string, v *string) (string, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", errs.Validation(field, field+" is required")
	}
	return strings.TrimSpace(*v), nil
}

func str(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func setStr(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

const dayLayout = "2006-01-02"

// parseDate accepts YYYY-MM-DD (interpreted in the server location) or RFC 3339.
func (s *Service) parseDate(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.ParseInLocation(dayLayout, v, s.loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Time{}, errs.Validation(field, "invalid "+field)
}

func (s *Service) optDate(field string, v *string) (*time.Time, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	t, err := s.parseDate(field, *v)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

// stamp returns a fresh id and the current UTC time.
func (s *Service) stamp() (string, time.Time) {
	return s.newID(), s.now().UTC()
}

// ensureEmployee checks that id references an existing employee.
func (s *Service) ensureEmployee(ctx context.Context, id string) error {
	if _, err := s.store.Employees().Get(ctx, id); err != nil {
		if errs.Is(err, errs.KindNotFound) {
			return errs.NotFound("Employee not found")
		}
		return err
	}
	return nil
}

// countBy tallies items by key.
func countBy[T any](items []T, key func(T) string) map[string]int {
	out := make(map[string]int)
	for _, it := range items {
		out[key(it)]++
	}
	return out
}

// StatusCount is a generic count-by-status response.
type StatusCount struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

func statusCount[T any](items []T, set []string, status func(T) string) StatusCount {
	by := countBy(items, status)
	for _, st := range set {
		if _, ok := by[st]; !ok {
			by[st] = 0
		}
	}
	return StatusCount{Total: len(items), ByStatus: by}
}
