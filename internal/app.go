package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nltrack/internal/controllers"
	"nltrack/internal/providers"
	"nltrack/internal/statistic/interfaces"
	"nltrack/internal/structures"
)

type App struct {
	WebServer *http.Server
	conf      *structures.Config
	logger    providers.Logger
	scheduler interfaces.SchedulerInterface
}

func NewApp(healthController *controllers.HealthController, scheduler interfaces.SchedulerInterface, conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface) *App {
	// tracking and stats routes are instrumented, /health and /metrics are not
	instrumentedAPI := providers.MetricsMiddleware(metrics, router)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/", instrumentedAPI)

	return &App{
		WebServer: &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		conf:      conf,
		logger:    logger,
		scheduler: scheduler,
	}
}

// Run serves until SIGINT/SIGTERM or a listener error, then shuts down gracefully.
func (app *App) Run() error {
	app.logger.Infof(providers.TypeApp, "Starting %s", app.conf.AppName)
	app.scheduler.Init()

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Infof(providers.TypeApp, "Listening HTTP clients on %s", app.WebServer.Addr)
		if err := app.WebServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case <-stop:
		app.logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		runErr = fmt.Errorf("server error: %w", err)
	}

	app.scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.WebServer.Shutdown(ctx); err != nil && runErr == nil {
		runErr = err
	}

	app.logger.Infof(providers.TypeApp, "gracefully stopped")
	return runErr
}
