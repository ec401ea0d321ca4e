package controllers

import (
	"context"
	"net/http"
	"time"

	"blog-api/middlewares"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// rootHandler answers the root path so load balancers have something to hit.
func rootHandler(w http.ResponseWriter, _ *http.Request) {
	middlewares.RespondJSON(w, map[string]string{"message": "Blog API is running"}, http.StatusOK)
}

// SetupRootRoute registers / and /healthz.
func SetupRootRoute(router *mux.Router, store Pinger, log logrus.FieldLogger) {
	router.HandleFunc("/", rootHandler).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			log.WithError(err).Warn("health check failed")
			middlewares.RespondError(w, http.StatusServiceUnavailable, "Store unavailable")
			return
		}
		middlewares.RespondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	}).Methods(http.MethodGet)
}
