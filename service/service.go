// Package service runs the orchestrator's HTTP side servers: health checks
// and the prometheus scrape endpoint.
package service

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/ethereum/go-ethereum/log"

	"github.com/charles37/tock/metrics"
)

const (
	HealthzHost = "0.0.0.0"
	HealthzPort = "8080"

	MetricsHost = "0.0.0.0"
	MetricsPort = "7300"
)

// sideServer is the lifecycle the two side servers share.
type sideServer interface {
	Start(ctx context.Context, addr string) error
	Shutdown() error
}

type Service struct {
	Healthz *HealthzServer
	Metrics *MetricsServer
}

func New() *Service {
	return &Service{
		Healthz: &HealthzServer{},
		Metrics: &MetricsServer{},
	}
}

// Start launches both servers in the background. Failures are logged and
// counted but never abort a test run; the side servers are observability,
// not part of the suite.
func (s *Service) Start(ctx context.Context) {
	log.Info("service starting")
	go serve(ctx, "healthz", s.Healthz, net.JoinHostPort(HealthzHost, HealthzPort))
	go serve(ctx, "metrics", s.Metrics, net.JoinHostPort(MetricsHost, MetricsPort))
	log.Info("service started")
}

func serve(ctx context.Context, name string, server sideServer, addr string) {
	log.Info("starting side server", "server", name, "addr", addr)
	if err := server.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("side server failed", "server", name, "err", err)
		metrics.RecordErrorDetails("error starting "+name+" server", err)
	}
}

func (s *Service) Shutdown() {
	log.Info("service shutting down")
	if err := s.Healthz.Shutdown(); err != nil {
		log.Warn("healthz shutdown", "err", err)
	}
	if err := s.Metrics.Shutdown(); err != nil {
		log.Warn("metrics shutdown", "err", err)
	}
	log.Info("service stopped")
}
