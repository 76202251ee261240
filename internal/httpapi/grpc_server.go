package httpapi

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"staffdesk.io/internal/obs"
)

// GRPCServiceName is the service name reported alongside the overall ("") status.
const GRPCServiceName = "staffdesk.v1.API"

// GRPCHealth serves grpc.health.v1 backed by a readiness check. Check
// re-evaluates readiness on every call; Watch observers see the status set
// by Refresh or Run.
type GRPCHealth struct {
	*health.Server
	readiness Readiness
	timeout   time.Duration
}

// NewGRPCHealth creates the health service. The initial status is NOT_SERVING
// until the first refresh.
func NewGRPCHealth(r Readiness) *GRPCHealth {
	if r == nil {
		r = ReadyFunc(nil)
	}
	h := &GRPCHealth{Server: health.NewServer(), readiness: r, timeout: 2 * time.Second}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Register attaches the health service to srv.
func (h *GRPCHealth) Register(srv *grpc.Server) {
	healthpb.RegisterHealthServer(srv, h)
}

// Check refreshes readiness before answering.
func (h *GRPCHealth) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	h.Refresh(ctx)
	return h.Server.Check(ctx, req)
}

// Refresh runs the readiness check once and publishes the result.
func (h *GRPCHealth) Refresh(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	if err := h.readiness.Check(ctx); err != nil {
		obs.SetReady(false)
		h.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return false
	}
	obs.SetReady(true)
	h.set(healthpb.HealthCheckResponse_SERVING)
	return true
}

// Run refreshes every interval until ctx is done, then marks the service
// as shutting down.
func (h *GRPCHealth) Run(ctx context.Context, interval time.Duration) {
	h.Refresh(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.Shutdown()
			return
		case <-ticker.C:
			h.Refresh(ctx)
		}
	}
}

func (h *GRPCHealth) set(st healthpb.HealthCheckResponse_ServingStatus) {
	h.SetServingStatus("", st)
	h.SetServingStatus(GRPCServiceName, st)
}
