package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"staffdesk.io/internal/audit"
	"staffdesk.io/internal/auth"
	"staffdesk.io/internal/errs"
	"staffdesk.io/internal/hr"
	"staffdesk.io/internal/obs"
	"staffdesk.io/internal/stream"
)

const serviceName = "staffdesk-api"

// Readiness reports whether the service dependencies are reachable.
type Readiness interface {
	Check(ctx context.Context) error
}

// ReadyFunc adapts a function to Readiness.
type ReadyFunc func(ctx context.Context) error

func (f ReadyFunc) Check(ctx context.Context) error {
	if f == nil {
		return nil
	}
	return f(ctx)
}

// Options tunes the HTTP surface.
type Options struct {
	Version      string
	CORSOrigins  []string
	MaxBodyBytes int64
	RateBurst    int
	RatePerSec   int
	CookieSecure bool
	// TrustProxy honors X-Forwarded-For when resolving client addresses.
	TrustProxy bool
}

func (o *Options) sanitize() {
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 1 << 20
	}
	if o.RateBurst < 1 {
		o.RateBurst = 20
	}
	if o.RatePerSec < 1 {
		o.RatePerSec = 10
	}
}

// API is the HTTP layer over hr.Service.
type API struct {
	mux    *http.ServeMux
	svc    *hr.Service
	tokens *auth.Tokens
	stream *stream.Stream
	ready  Readiness
	opts   Options
}

// New wires every route. feed may be nil, which disables the event stream.
func New(svc *hr.Service, tokens *auth.Tokens, feed *stream.Stream, opts Options) *API {
	opts.sanitize()
	a := &API{
		mux:    http.NewServeMux(),
		svc:    svc,
		tokens: tokens,
		stream: feed,
		ready:  ReadyFunc(svc.Ping),
		opts:   opts,
	}
	a.routes()
	return a
}

func (a *API) routes() {
	a.mux.HandleFunc("GET /healthz", a.Healthz)
	a.mux.HandleFunc("GET /readyz", a.Ready)
	a.mux.Handle("GET /metrics", obs.Handler())
	a.mux.HandleFunc("GET /api/info", a.Info)

	a.authRoutes()
	a.employeeRoutes()
	a.departmentRoutes()
	a.attendanceRoutes()
	a.leaveRoutes()
	a.payrollRoutes()
	a.projectRoutes()
	a.taskRoutes()
	a.reviewRoutes()
	a.adminRoutes()
}

// Handler returns the router wrapped in the middleware chain.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = obs.Instrument(h)
	h = MaxBodyBytes(h, a.opts.MaxBodyBytes)
	h = CORS(a.opts.CORSOrigins)(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = ClientIP(a.opts.TrustProxy)(h)
	return RequestID(h)
}

// authed wraps h so it only runs for a verified caller.
func (a *API) authed(h http.HandlerFunc) http.Handler {
	return a.withAuth(h)
}

// gated wraps h so it only runs for a verified caller holding role.
func (a *API) gated(role string, h http.HandlerFunc) http.Handler {
	return a.withAuth(RequireRole(role)(h))
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": serviceName,
		"version": a.opts.Version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.ready.Check(r.Context()); err != nil {
		obs.SetReady(false)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":     serviceName,
		"time":     time.Now().UTC().Format(time.RFC3339),
		"version":  a.opts.Version,
		"timezone": a.svc.Location().String(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{"message": msg}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

// writeError converts err to its status and {"message"} body. Unexpected
// failures also carry the underlying error text in "error".
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := errs.KindOf(err)
	code := errs.HTTPStatus(kind)
	payload := map[string]any{"message": errs.Message(err)}
	var e *errs.Error
	if errors.As(err, &e) && e.Field != "" {
		payload["field"] = e.Field
	}
	if kind == errs.KindUnexpected {
		payload["error"] = err.Error()
		obs.Error("request_failed", map[string]any{
			"request_id": RequestIDFromContext(r.Context()),
			"path":       r.URL.Path,
			"error":      err.Error(),
		})
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errs.Validation("body", "request body is required")
		case errors.As(err, &tooLarge):
			return errs.Validation("body", "request body too large")
		default:
			return errs.Wrap(err, errs.KindValidation, "invalid JSON body")
		}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errs.Validation("body", "unexpected data after JSON body")
	}
	return nil
}

// audit records an audit event and logs when that fails.
func (a *API) audit(ctx context.Context, event string, fields map[string]any) {
	if err := audit.LogEvent(ctx, event, fields); err != nil {
		obs.Warn("audit_failed", map[string]any{"event": event, "error": err.Error()})
	}
}
