package http

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/egannguyen/go-commerce-api/internal/metrics"
	"github.com/egannguyen/go-commerce-api/internal/service"
)

// Services are the use cases reachable over HTTP.
type Services struct {
	Orders   *service.OrderService
	Clients  *service.ClientService
	Products *service.ProductService
	Users    *service.UserService
	Auth     *service.AuthService
}

// Handler handles HTTP requests for the application.
type Handler struct {
	svc     Services
	metrics *metrics.Metrics
	logger  log.FieldLogger
	limiter *RateLimiter
}

func NewHandler(svc Services, m *metrics.Metrics, limiter *RateLimiter, logger log.FieldLogger) *Handler {
	return &Handler{svc: svc, metrics: m, limiter: limiter, logger: logger}
}

// Router builds the route table. Everything except health, metrics, login
// and registration requires a bearer token.
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	r.Use(h.logRequests, h.instrument, h.recoverPanics)

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", h.metrics.Handler()).Methods(http.MethodGet)
	r.Handle("/login", h.limiter.Handler(http.HandlerFunc(h.login))).Methods(http.MethodPost)
	r.HandleFunc("/users", h.register).Methods(http.MethodPost)

	api := r.NewRoute().Subrouter()
	api.Use(h.authenticate)

	api.HandleFunc("/logout", h.logout).Methods(http.MethodPost)
	api.HandleFunc("/users/profile", h.updateProfile).Methods(http.MethodPut)

	api.HandleFunc("/clients", h.listClients).Methods(http.MethodGet)
	api.HandleFunc("/clients", h.createClient).Methods(http.MethodPost)
	api.HandleFunc("/clients/stats", h.clientStats).Methods(http.MethodGet)
	api.HandleFunc("/clients/{id}", h.getClient).Methods(http.MethodGet)
	api.HandleFunc("/clients/{id}", h.updateClient).Methods(http.MethodPut)
	api.HandleFunc("/clients/{id}", h.deleteClient).Methods(http.MethodDelete)

	api.HandleFunc("/products", h.listProducts).Methods(http.MethodGet)
	api.HandleFunc("/products", h.createProduct).Methods(http.MethodPost)
	api.HandleFunc("/products/{id}", h.getProduct).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.updateProduct).Methods(http.MethodPatch)
	api.HandleFunc("/products/{id}", h.deleteProduct).Methods(http.MethodDelete)

	api.HandleFunc("/orders", h.placeOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}", h.getOrder).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}/cancel", h.cancelOrder).Methods(http.MethodPut)
	api.HandleFunc("/orders/{id}/history", h.orderHistory).Methods(http.MethodGet)

	return EnableCORS(r)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// EnableCORS lets browser frontends call the API.
func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
