package web

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/net/websocket"
)

// Handler builds the gateway routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(secureHeadersMiddleware, s.accessLogMiddleware)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)

	limiter := newLoginLimiter(30*time.Minute, 10)
	apiRouter.Handle("/auth/login", limiter.middleware(http.HandlerFunc(s.loginHandler))).Methods(http.MethodPost)

	authed := apiRouter.NewRoute().Subrouter()
	authed.Use(authMiddleware)
	authed.HandleFunc("/auth/logout", s.logoutHandler).Methods(http.MethodPost)
	authed.HandleFunc("/auth/me", s.meHandler).Methods(http.MethodGet)
	authed.HandleFunc("/tasks", s.tasksHandler).Methods(http.MethodGet)
	authed.HandleFunc("/tasks/{id}", s.taskHandler).Methods(http.MethodGet)
	authed.HandleFunc("/tasks/{id}/logs", s.taskLogsHandler).Methods(http.MethodGet)
	authed.HandleFunc("/tasks/{id}/results", s.resultsHandler).Methods(http.MethodGet)
	authed.HandleFunc("/tasks/{id}/results/stats", s.resultStatsHandler).Methods(http.MethodGet)
	authed.HandleFunc("/tasks/{id}/{action}", s.taskActionHandler).Methods(http.MethodPost)
	authed.HandleFunc("/vulnerabilities", s.vulnsHandler).Methods(http.MethodGet)
	authed.HandleFunc("/nodes", s.nodesHandler).Methods(http.MethodGet)
	authed.HandleFunc("/dashboard/stats", s.dashboardHandler).Methods(http.MethodGet)
	authed.HandleFunc("/queue", s.queueHandler).Methods(http.MethodGet)

	r.Handle("/ws", authMiddleware(websocket.Handler(s.relay)))

	return r
}
