package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"calcform/internal/backend"
	"calcform/internal/client"
	"calcform/internal/handlers"
	"calcform/internal/observability"
	"calcform/internal/web"
)

// newBaseRouter carries the middleware and operational endpoints both
// binaries share.
func newBaseRouter() chi.Router {

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)
	r.Use(observability.PrometheusMiddleware)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	return r
}

// NewRouter serves the calculation form for the sessions in sessions.
func NewRouter(sessions *web.Sessions) http.Handler {

	r := newBaseRouter()

	web.NewHandler(sessions).RegisterRoutes(r)

	return r
}

// NewBackendHandler serves the arithmetic service over HTTP/1.1 and cleartext
// HTTP/2, answering CORS preflights from the given browser origins.
func NewBackendHandler(origins []string) http.Handler {

	r := newBaseRouter()

	backend.RegisterRoutes(r)

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Content-Type",
			client.ProtocolVersionHeader,
			"Connect-Timeout-Ms",
			"traceparent",
			"tracestate",
		},
		ExposedHeaders:   []string{client.ErrorCodeHeader, "X-Request-ID"},
		AllowCredentials: true,
	})

	return h2c.NewHandler(c.Handler(r), &http2.Server{})
}
