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

	"tuner/internal/controllers"
	"tuner/internal/library/interfaces"
	"tuner/internal/providers"
	"tuner/internal/structures"
)

type App struct {
	WebServer *http.Server
}

// buildHandler assembles the HTTP surface: the API routes behind the
// metrics middleware, health and metrics outside it so probes do not
// pollute the request counters.
func buildHandler(router providers.RouterProviderInterface, healthController *controllers.HealthController, metrics providers.MetricsProviderInterface, conf *structures.Config) http.Handler {
	apiMux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		apiMux.Handle(route.Url, route.Handler)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/", providers.MetricsMiddleware(metrics, apiMux))
	return mux
}

// NewApp restores the library, starts the save scheduler and serves until
// a shutdown signal. A failed restore aborts startup: serving an empty
// library would let the next periodic save overwrite a snapshot that may
// still be recoverable.
func NewApp(apiController *controllers.ApiController, healthController *controllers.HealthController, scheduler interfaces.SchedulerInterface, conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface) (*App, error) {
	logger.Infof(providers.TypeApp, "Starting %s", conf.AppName)

	if err := scheduler.Restore(); err != nil {
		return nil, fmt.Errorf("library restore: %w", err)
	}

	app := &App{
		WebServer: &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      buildHandler(router, healthController, metrics, conf),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	scheduler.Init()

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof(providers.TypeApp, "Listening HTTP clients on %s:%d", conf.WebServer.Host, conf.WebServer.Port)
		if err := app.WebServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		return nil, fmt.Errorf("server error: %w", err)
	}

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.WebServer.Shutdown(ctx); err != nil {
		return nil, err
	}
	// final save so events since the last scheduled run are not lost
	if err := scheduler.Persist(); err != nil {
		return nil, err
	}
	logger.Infof(providers.TypeApp, "gracefully stopped")
	return app, nil
}
