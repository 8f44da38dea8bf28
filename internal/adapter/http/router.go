package http

import (
	"net/http"

	"github.com/YelzhanWeb/floreria/internal/adapter/logger"
	"github.com/YelzhanWeb/floreria/internal/metrics"
	"github.com/YelzhanWeb/floreria/internal/tracing"
)

// NewRouter wires the order desk endpoints behind the common middlewares.
func NewRouter(orders *OrderHandler, customers *CustomerHandler, inventory *InventoryHandler, m *metrics.Metrics, logger logger.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /login", customers.Login)

	mux.HandleFunc("GET /orders/{id}", orders.GetOrder)
	mux.HandleFunc("POST /orders/{id}/status", orders.ChangeStatus)
	mux.HandleFunc("GET /orders/{id}/history", orders.History)

	mux.HandleFunc("GET /catalog", customers.Catalog)
	mux.HandleFunc("GET /favorites", customers.Favorites)
	mux.HandleFunc("POST /favorites", customers.AddFavorite)
	mux.HandleFunc("POST /cart", customers.AddToCart)
	mux.HandleFunc("POST /requests/{id}/reserve", customers.Reserve)
	mux.HandleFunc("DELETE /requests/{id}", customers.Cancel)
	mux.HandleFunc("GET /reservations", customers.Reservations)

	mux.HandleFunc("POST /inventory/{kind}", inventory.CreateProduct)

	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	var handler http.Handler = mux
	handler = LoggingMiddleware(logger, m)(handler)
	handler = RecoveryMiddleware(logger)(handler)
	handler = RequestIDMiddleware(handler)
	return tracing.WrapHandler(handler, "order-desk")
}
