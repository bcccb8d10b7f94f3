package app

import (
	"context"
	"log/slog"
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/grafana/dskit/modules"
	"github.com/grafana/dskit/server"
	"github.com/grafana/dskit/services"
	"github.com/grafana/dskit/signals"
	"github.com/pkg/errors"
)

const metricsNamespace = "radioproxy"

// App wires the dskit server and the proxy module together.
type App struct {
	cfg       Config
	logger    slog.Logger
	kitLogger kitlog.Logger // for dskit components

	Server *server.Server

	ModuleManager *modules.Manager
	serviceMap    map[string]services.Service
}

// New creates and returns a new App.
func New(cfg Config, logger slog.Logger) (*App, error) {
	a := &App{
		cfg:       cfg,
		logger:    logger,
		kitLogger: kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr)),
	}

	if a.cfg.Target == "" {
		a.cfg.Target = All
	}

	if err := a.setupModuleManager(); err != nil {
		return nil, errors.Wrap(err, "failed to setup module manager")
	}

	return a, nil
}

// Run starts every module of the configured target and blocks until they
// have stopped. Cancelling ctx or receiving SIGINT/SIGTERM stops them.
func (a *App) Run(ctx context.Context) error {
	sm, err := a.start(ctx)
	if err != nil {
		return err
	}

	handler := signals.NewHandler(a.kitLogger)
	go func() {
		handler.Loop()
		sm.StopAsync()
	}()

	stop := context.AfterFunc(ctx, handler.Stop)
	defer func() {
		// Release the signal loop if ctx never fired.
		if stop() {
			handler.Stop()
		}
	}()

	if err := sm.AwaitStopped(context.Background()); err != nil {
		return errors.Wrap(err, "failed waiting for services to stop")
	}

	for _, s := range sm.ServicesByState()[services.Failed] {
		if cause := s.FailureCase(); !errors.Is(cause, modules.ErrStopProcess) {
			return errors.Wrapf(cause, "module %s failed", a.moduleName(s))
		}
	}

	return nil
}

// start initialises the services of the target and starts them in the
// background.
func (a *App) start(ctx context.Context) (*services.Manager, error) {
	serviceMap, err := a.ModuleManager.InitModuleServices(a.cfg.Target)
	if err != nil {
		return nil, errors.Wrap(err, "failed to init module services")
	}
	a.serviceMap = serviceMap

	servs := make([]services.Service, 0, len(serviceMap))
	for _, s := range serviceMap {
		servs = append(servs, s)
	}

	sm, err := services.NewManager(servs...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create service manager")
	}

	healthy := func() {
		if a.Server != nil {
			a.logger.Info("started", "target", a.cfg.Target, "http", a.Server.HTTPListenAddr().String())
			return
		}
		a.logger.Info("started", "target", a.cfg.Target)
	}
	stopped := func() { a.logger.Info("stopped", "target", a.cfg.Target) }
	serviceFailed := func(s services.Service) {
		// one failed module takes the whole process down
		sm.StopAsync()

		if errors.Is(s.FailureCase(), modules.ErrStopProcess) {
			a.logger.Info("module requested stop", "module", a.moduleName(s))
			return
		}
		a.logger.Error("module failed", "module", a.moduleName(s), "err", s.FailureCase())
	}
	sm.AddListener(services.NewManagerListener(healthy, stopped, serviceFailed))

	if err := sm.StartAsync(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to start service manager")
	}

	return sm, nil
}

func (a *App) moduleName(s services.Service) string {
	for m, svc := range a.serviceMap {
		if svc == s {
			return m
		}
	}
	return "unknown"
}
