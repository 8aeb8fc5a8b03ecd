// Package metrics serves the metrics and debug endpoints
package metrics

import (
	"context"
	"net"
	"net/http"
	"net/http/pprof"

	"github.com/mapsnap/mapsnap/internal/handler"
	"github.com/mapsnap/mapsnap/internal/health"
	"github.com/mapsnap/mapsnap/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/version"
)

func init() {
	prometheus.MustRegister(version.NewCollector("mapsnap"))
}

// Serve starts an http server for metrics and healthchecks on the given address
func Serve(ctx context.Context, log *logger.Logger, healthChecker *health.Checker, listenAddress string) {
	listener, err := net.Listen("tcp", listenAddress)
	if err != nil {
		log.Errorf("error listening on %s: %s", listenAddress, err)
		return
	}

	ServeListener(ctx, log, healthChecker, listener)
}

// ServeListener starts an http server for metrics and healthchecks on the given listener
func ServeListener(ctx context.Context, log *logger.Logger, healthChecker *health.Checker, listener net.Listener) {
	router := http.NewServeMux()
	router.Handle("/metrics", promhttp.Handler())
	router.Handle("/health", handler.Health(healthChecker))

	router.HandleFunc("/debug/pprof/", pprof.Index)
	router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	router.HandleFunc("/debug/pprof/profile", pprof.Profile)
	router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	router.HandleFunc("/debug/pprof/trace", pprof.Trace)

	server := &http.Server{
		Handler:  router,
		ErrorLog: logger.NewHTTPErrorLog(log),
	}

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Infof("shutting down the metrics http server: %s", err)
		}
	}()

	log.Infof("metrics http server listening on %s", listener.Addr())

	<-ctx.Done()

	if err := server.Close(); err != nil {
		log.Warnf("error shutting down metrics http server: %s", err)
	}
}
