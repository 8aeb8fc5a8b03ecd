package main

import (
	"context"
	"flag"
	"net/http"

	"github.com/mapsnap/mapsnap/internal/api"
	"github.com/mapsnap/mapsnap/internal/cmd"
	"github.com/mapsnap/mapsnap/internal/health"
	"github.com/mapsnap/mapsnap/internal/logger"
	"github.com/mapsnap/mapsnap/internal/metrics"
	"github.com/mapsnap/mapsnap/internal/staticmap"
	"github.com/mapsnap/mapsnap/internal/tracing"

	"github.com/jamiealquiza/envy"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"tailscale.com/tsnet"
)

// Commandline flags
var (
	// Global
	listen        = flag.String("listen", ":8080", "listen address")
	metricsListen = flag.String("metrics-listen", ":8081", "metrics listen address")
	loglevel      = zap.LevelFlag("log-level", zap.InfoLevel, "log level (default \"info\") (debug, info, warn, error, dpanic, panic, fatal)")

	// Upstream
	upstreamURL     = flag.String("upstream-url", staticmap.Endpoint, "static map API endpoint to proxy")
	upstreamTimeout = flag.Duration("upstream-timeout", staticmap.DefaultTimeout, "time to wait for an upstream fetch before giving up")

	// Healthcheck
	healthCheckLocation = flag.String("health-check-location", "0,0", "location to request from the upstream to check upstream health")

	// Tailscale
	tailscaleHostname = flag.String("tailscale-hostname", "", "serve the metrics endpoints on a tailscale node with this hostname instead of the metrics listen address")
)

func main() {
	// Parse environment variables
	envy.Parse("MAPSNAP")

	// Parse commandline flags
	flag.Parse()

	// Initialize the logger
	log := logger.New(*loglevel)
	defer log.Sync()

	// Set GOMAXPROCS
	maxprocs.Set(maxprocs.Logger(log.Infof))

	// Set up context for shutting down
	shutdownCtx, shutdown := context.WithCancel(context.Background())
	defer shutdown()

	// Initialize the tracer
	tracerCtx, tracerCancel := context.WithCancel(context.Background())
	defer tracerCancel()

	tracer, err := tracing.New(tracerCtx, log, "mapsnap-server")
	if err != nil {
		log.Fatalf("error initializing tracing: %s", err)
	}
	defer tracer.Shutdown(context.Background())

	// Initialize the upstream client
	upstream := &staticmap.Client{
		BaseURL: *upstreamURL,
		HTTPClient: &http.Client{
			Timeout:   *upstreamTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport, otelhttp.WithTracerProvider(tracer)),
		},
	}

	// Initialize and start the health checker
	checkerCtx, checkerCancel := context.WithCancel(context.Background())
	defer checkerCancel()

	probe, err := staticmap.New(*healthCheckLocation)
	if err != nil {
		log.Fatalf("error initializing the health check probe: %s", err)
	}
	probe.Size("100x100")

	checker := &health.Checker{
		Ctx:      checkerCtx,
		Upstream: upstream,
		Probe:    probe,
		Log:      log,
	}
	go checker.Run()

	// Start the metrics and debug server
	metricsCtx, metricsCancel := context.WithCancel(context.Background())
	defer metricsCancel()

	if *tailscaleHostname != "" {
		ts := &tsnet.Server{
			Hostname: *tailscaleHostname,
		}
		defer ts.Close()

		listener, err := ts.Listen("tcp", ":80")
		if err != nil {
			log.Fatalf("error listening on the tailnet: %s", err)
		}

		go metrics.ServeListener(metricsCtx, log, checker, listener)
	} else {
		go metrics.Serve(metricsCtx, log, checker, *metricsListen)
	}

	// Start and listen on http
	api := &api.API{
		Upstream:       upstream,
		HealthChecker:  checker,
		Log:            log,
		Tracer:         tracer,
		HandlerTimeout: cmd.HandlerTimeout,
	}
	server := &http.Server{
		Addr:         *listen,
		Handler:      api.Router(),
		ReadTimeout:  cmd.ReadTimeout,
		WriteTimeout: cmd.WriteTimeout,
		ErrorLog:     logger.NewHTTPErrorLog(log),
	}

	go func() {
		if err := server.ListenAndServe(); err != nil {
			log.Infof("shutting down the http server: %s", err)
			shutdown()
		}
	}()

	log.Infof("http server listening on %s", *listen)

	// Wait for shutdown or error
	err = cmd.WaitForInterrupt(shutdownCtx)
	log.Infof("shutting down: %s", err)

	// Shut down http server
	serverCtx, serverCancel := context.WithTimeout(context.Background(), cmd.WriteTimeout)
	defer serverCancel()
	if err := server.Shutdown(serverCtx); err != nil {
		log.Warnf("error shutting down: %s", err)
	}
}
