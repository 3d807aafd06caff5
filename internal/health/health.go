// Package health reports database reachability over the standard gRPC
// health protocol and to the HTTP /healthz probe.
package health

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Service is the name reported alongside the overall ("") status.
const Service = "pregnancyplanner.v1.API"

type Pinger interface {
	Ping(ctx context.Context) error
}

type Checker struct {
	srv      *health.Server
	db       Pinger
	interval time.Duration
	timeout  time.Duration
	log      *zap.Logger
}

func New(db Pinger, interval time.Duration, log *zap.Logger) *Checker {
	c := &Checker{
		srv:      health.NewServer(),
		db:       db,
		interval: interval,
		timeout:  2 * time.Second,
		log:      log,
	}
	c.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return c
}

func (c *Checker) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, c.srv)
}

// Check pings the database once and updates the reported status.
func (c *Checker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.db.Ping(ctx); err != nil {
		c.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return err
	}
	c.set(healthpb.HealthCheckResponse_SERVING)
	return nil
}

// Run checks on every interval until ctx is done.
func (c *Checker) Run(ctx context.Context) {
	t := time.NewTicker(c.interval)
	defer t.Stop()
	for {
		if err := c.Check(ctx); err != nil && ctx.Err() == nil {
			c.log.Warn("health check failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// Shutdown reports NOT_SERVING permanently; later checks are ignored.
func (c *Checker) Shutdown() {
	c.srv.Shutdown()
}

func (c *Checker) Status(ctx context.Context) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := c.srv.Check(ctx, &healthpb.HealthCheckRequest{Service: Service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

func (c *Checker) set(st healthpb.HealthCheckResponse_ServingStatus) {
	c.srv.SetServingStatus("", st)
	c.srv.SetServingStatus(Service, st)
}
