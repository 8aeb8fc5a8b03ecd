// Package api provides the static map proxy http api
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/sync/singleflight"

	"github.com/mapsnap/mapsnap/internal/handler"
	"github.com/mapsnap/mapsnap/internal/health"
	"github.com/mapsnap/mapsnap/internal/logger"
	"github.com/mapsnap/mapsnap/internal/staticmap"
	"github.com/mapsnap/mapsnap/internal/tracing"
)

// API is a http api
type API struct {
	Upstream       *staticmap.Client
	HealthChecker  *health.Checker
	Log            *logger.Logger
	Tracer         *tracing.Tracer
	HandlerTimeout time.Duration

	// Collapses identical in-flight upstream fetches into one request
	lookupGroup singleflight.Group
}

// Utility methods for logging
func (a *API) logError(r *http.Request, message string, err error) {
	a.Log.Errorw(message, handler.LogFields(r, "error", err)...)
}

// Router returns a http router
func (a *API) Router() http.Handler {
	router := mux.NewRouter()

	router.NotFoundHandler = handler.Handler(a.notFoundHandler)

	// Redirect trailing slashes
	router.StrictSlash(true)

	// Healthcheck
	router.Handle("/health", handler.Health(a.HealthChecker)).Methods("GET")

	// Map image route
	router.Handle("/map", handler.Handler(a.mapHandler)).Methods("GET")

	// Canonical upstream URL route
	router.Handle("/url", handler.Handler(a.urlHandler)).Methods("GET")

	// Query parameters, passed through to the upstream API:
	// ?center={coordinates or address} - required
	// ?zoom={level} - zoom level
	// ?size={WxH} - image dimensions
	// ?format={png|png32|gif|jpg|jpg-baseline} - image format
	// ?maptype={roadmap|satellite|terrain|hybrid} - map type
	// ?language={code} - label language
	// ?region={code} - region code for borders
	// ?markers={definition} - repeatable marker definitions
	// ?path={definition} - path definition
	// ?visible={locations} - locations that must stay visible
	// ?style={rule} - repeatable style rules
	// ?sensor={true|false} - location sensor reporting

	routeMatcher := &handler.MuxRouteMatcher{Router: router}
	corsHandler := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet},
	})

	// Set up handlers for adding a request id, handling panics, request logging,
	// metrics, tracing, CORS, and handler execution timeout
	var h http.Handler = http.TimeoutHandler(router, a.HandlerTimeout, "Something went wrong. Timed out.")
	h = corsHandler.Handler(h)
	h = handler.Tracer(a.Tracer, h, routeMatcher)
	h = handler.Metrics(h, routeMatcher)
	return handler.AddRequestID(handler.Recovery(a.Log, handler.Logger(a.Log, h)))
}

// Handle not found errors
var notFoundError = &handler.Error{
	Message: "page not found",
	Code:    http.StatusNotFound,
}

func (a *API) notFoundHandler(w http.ResponseWriter, r *http.Request) *handler.Error {
	return notFoundError
}
