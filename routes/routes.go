package routes

import (
	"net/http"

	"blog-api/controllers"
	"blog-api/middlewares"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Service is what the HTTP layer needs from the post service.
type Service interface {
	controllers.PostService
	controllers.Pinger
}

type Options struct {
	Service Service
	Log     logrus.FieldLogger
	Metrics *middlewares.Metrics
	Cors    *middlewares.CorsConfig
	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter *middlewares.RateLimiter
}

// SetupRoutes sets up the application routes and middlewares.
func SetupRoutes(opts Options) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middlewares.RespondError(w, http.StatusNotFound, "Cannot "+r.Method+" "+r.URL.Path)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middlewares.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Route-level middlewares see the matched route template.
	router.Use(opts.Metrics.Instrument)

	middlewares.SetResponseLogger(opts.Log)
	controllers.SetupRootRoute(router, opts.Service, opts.Log)
	postHandler := &controllers.PostHandler{Service: opts.Service, Log: opts.Log}
	postHandler.SetupPostRoutes(router)
	router.Handle("/metrics", opts.Metrics.Handler()).Methods(http.MethodGet)

	// Outer middlewares run for every request, including CORS preflights
	// that match no route.
	var handler http.Handler = router
	if opts.RateLimiter != nil {
		handler = opts.RateLimiter.Limit(handler)
	}
	handler = middlewares.CorsMiddleware(opts.Cors)(handler)
	handler = middlewares.LoggingMiddleware(opts.Log)(handler)
	return handler
}
