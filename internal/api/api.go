// Package api exposes the group coordination engine over HTTP: JSON
// endpoints for commands and queries, WebSocket endpoints for event streams.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/tabshare/tabshare/internal/auth"
	"github.com/tabshare/tabshare/internal/middleware"
	"github.com/tabshare/tabshare/internal/pubsub"
	"github.com/tabshare/tabshare/internal/service"
)

type API struct {
	router   *mux.Router
	groups   *service.GroupService
	txns     *service.TransactionService
	auths    *service.AuthService
	jwt      *auth.JWTManager
	pub      *pubsub.Publisher
	upgrader websocket.Upgrader
}

func New(groups *service.GroupService, txns *service.TransactionService, auths *service.AuthService, jwtManager *auth.JWTManager, pub *pubsub.Publisher) *API {
	a := &API{
		router: mux.NewRouter(),
		groups: groups,
		txns:   txns,
		auths:  auths,
		jwt:    jwtManager,
		pub:    pub,
		upgrader: websocket.Upgrader{
			// Origin is enforced by the CORS layer on the REST surface;
			// stream access is gated by the token check instead.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	a.setupRoutes()
	return a
}

func (a *API) setupRoutes() {
	a.router.Use(middleware.RequestLogger)

	// Public endpoints
	a.router.HandleFunc("/healthz", a.handleHealth).Methods("GET")
	a.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	a.router.HandleFunc("/api/auth/register", a.handleRegister).Methods("POST")
	a.router.HandleFunc("/api/auth/login", a.handleLogin).Methods("POST")

	// Protected endpoints
	protected := a.router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.RequireAuth(a.jwt, writeError))

	protected.HandleFunc("/groups", a.handleCreateGroup).Methods("POST")
	protected.HandleFunc("/groups/{id}", a.handleGetGroup).Methods("GET")
	protected.HandleFunc("/groups/{id}/status", a.handleUpdateGroupStatus).Methods("PATCH")
	protected.HandleFunc("/groups/{id}/members", a.handleListMembers).Methods("GET")
	protected.HandleFunc("/groups/{id}/join", a.handleJoinGroup).Methods("POST")
	protected.HandleFunc("/groups/{id}/members/{userID}/status", a.handleUpdateMemberStatus).Methods("POST")
	protected.HandleFunc("/groups/{id}/card", a.handleIssueCard).Methods("POST")
	protected.HandleFunc("/groups/{id}/stream", a.handleGroupStream).Methods("GET")
	protected.HandleFunc("/groups/{id}/members/stream", a.handleMemberStream).Methods("GET")
	protected.HandleFunc("/share/{code}", a.handleGetGroupByShareCode).Methods("GET")
	protected.HandleFunc("/transactions", a.handleCreateTransaction).Methods("POST")
	protected.HandleFunc("/transactions/{id}", a.handleGetTransaction).Methods("GET")
	protected.HandleFunc("/transactions/{id}/status", a.handleUpdateTransactionStatus).Methods("PATCH")
}

// Handler returns the fully wrapped HTTP handler, CORS included.
func (a *API) Handler() http.Handler {
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}
	return cors.New(corsOptions).Handler(a.router)
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
