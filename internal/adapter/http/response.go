package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/YelzhanWeb/floreria/internal/adapter/logger"
	"github.com/YelzhanWeb/floreria/internal/domain"
	"github.com/YelzhanWeb/floreria/internal/session"
)

type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
	// Code is the status the shop API answered with, 0 when it was unreachable
	// or its body could not be read.
	Code *int `json:"upstream_code,omitempty"`
}

type OrderResponse struct {
	ID              int             `json:"id"`
	BouquetID       int             `json:"bouquet_id,omitempty"`
	CustomerName    string          `json:"customer_name"`
	CustomerAddress string          `json:"customer_address"`
	CustomerPhone   string          `json:"customer_phone"`
	Price           decimal.Decimal `json:"price"`
	RequestDate     string          `json:"request_date"`
	Status          string          `json:"status"`
	StatusID        int             `json:"status_id"`
	DeliveryManID   *int            `json:"delivery_man_id,omitempty"`
}

type TransitionOption struct {
	Status   string `json:"status"`
	StatusID int    `json:"status_id"`
}

func toOrderResponse(o domain.Order) OrderResponse {
	return OrderResponse{
		ID:              o.ID,
		BouquetID:       o.BouquetID,
		CustomerName:    o.CustomerName,
		CustomerAddress: o.CustomerAddress,
		CustomerPhone:   o.CustomerPhone,
		Price:           o.Price,
		RequestDate:     o.RequestDate,
		Status:          o.Status.String(),
		StatusID:        o.Status.ID(),
		DeliveryManID:   o.DeliveryManID,
	}
}

func toTransitionOptions(statuses []domain.Status) []TransitionOption {
	opts := make([]TransitionOption, 0, len(statuses))
	for _, s := range statuses {
		opts = append(opts, TransitionOption{Status: s.String(), StatusID: s.ID()})
	}
	return opts
}

func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	resp := ErrorResponse{Error: message}

	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		resp.Reason = trErr.Reason()
	}
	var repoErr *domain.RepositoryError
	if errors.As(err, &repoErr) {
		code := repoErr.Code
		resp.Code = &code
		resp.Error = repoErr.Message
	}

	respondJSON(w, statusCode, resp)
}

// statusFor maps a service error to the HTTP status the desk answers with.
func statusFor(err error) int {
	var repoErr *domain.RepositoryError
	switch {
	case errors.Is(err, session.ErrMissingToken), errors.Is(err, session.ErrMalformed):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAlreadyTerminal), errors.Is(err, domain.ErrTransitionInFlight), errors.Is(err, domain.ErrNotInCart):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.As(err, &repoErr):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrInvalidStatus), errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// requireSession answers 401 when the request carries no usable bearer token.
func requireSession(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	sess, err := session.FromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error(), nil)
		return session.Session{}, false
	}
	return sess, true
}

func fail(logger logger.Logger, w http.ResponseWriter, r *http.Request, action string, err error) {
	status := statusFor(err)
	details := map[string]interface{}{"path": r.URL.Path, "status": status}
	if status >= http.StatusInternalServerError {
		logger.Error(action, "Request failed", RequestID(r.Context()), details, err)
	} else {
		logger.Debug(action, err.Error(), RequestID(r.Context()), details)
	}
	respondError(w, status, err.Error(), err)
}
