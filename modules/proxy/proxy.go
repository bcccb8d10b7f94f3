package proxy

import (
	"context"
	"log/slog"
	"net"
	"strconv"

	"github.com/grafana/dskit/services"
	"github.com/pkg/errors"

	"github.com/zachfi/radioproxy/pkg/station"
)

// Proxy serves the station endpoints in front of the radio backend. It holds
// no per-request state; the registry is read-only.
type Proxy struct {
	services.Service
	cfg      *Config
	logger   *slog.Logger
	registry *station.Registry
	backend  *Backend
}

var module = "proxy"

// New loads the station registry and returns a Proxy ready to register its
// routes.
func New(cfg Config, logger slog.Logger) (*Proxy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid proxy config")
	}

	registry, err := station.LoadFile(cfg.StationsFile, cfg.StationsHost, cfg.StationsPort)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load stations")
	}

	return newWithRegistry(cfg, registry, logger), nil
}

func newWithRegistry(cfg Config, registry *station.Registry, logger slog.Logger) *Proxy {
	p := &Proxy{
		cfg:      &cfg,
		logger:   logger.With("module", module),
		registry: registry,
		backend:  NewBackend(&cfg),
	}

	p.Service = services.NewBasicService(p.starting, p.running, p.stopping)

	return p
}

func (p *Proxy) starting(_ context.Context) error {
	p.logger.Info("serving stations",
		"stations", p.registry.Keys(),
		"backend", net.JoinHostPort(p.cfg.StationsHost, strconv.Itoa(p.cfg.StationsPort)),
	)
	return nil
}

func (p *Proxy) running(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (p *Proxy) stopping(_ error) error {
	p.logger.Info("stopping")
	p.backend.CloseIdleConnections()
	return nil
}
