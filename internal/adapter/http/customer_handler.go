package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/YelzhanWeb/floreria/internal/adapter/logger"
	"github.com/YelzhanWeb/floreria/internal/domain"
	"github.com/YelzhanWeb/floreria/internal/interfaces"
	"github.com/YelzhanWeb/floreria/internal/session"
)

// CustomerHandler serves login and the customer flows that sit outside the lifecycle.
type CustomerHandler struct {
	auth         interfaces.AuthService
	reservations interfaces.ReservationService
	logger       logger.Logger
}

func NewCustomerHandler(auth interfaces.AuthService, reservations interfaces.ReservationService, logger logger.Logger) *CustomerHandler {
	return &CustomerHandler{
		auth:         auth,
		reservations: reservations,
		logger:       logger,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token   string `json:"token"`
	Role    string `json:"role"`
	RoleID  int    `json:"role_id"`
	Landing string `json:"landing"`
}

type BouquetResponse struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Price        string `json:"price"`
	ImageURL     string `json:"image_url,omitempty"`
	IsPrecreated bool   `json:"is_precreated"`
}

type FavoriteRequest struct {
	BouquetID int `json:"bouquet_id"`
}

type CartRequest struct {
	BouquetID int `json:"bouquet_id"`
	Quantity  int `json:"quantity"`
}

type ReserveRequest struct {
	RequestDate string `json:"request_date"`
}

func (r ReserveRequest) date() (time.Time, error) {
	v := strings.TrimSpace(r.RequestDate)
	if v == "" {
		return time.Time{}, errors.New("request_date is required")
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil && !t.IsZero() {
			return t, nil
		}
	}
	return time.Time{}, errors.New("request_date must be an RFC3339 timestamp or a YYYY-MM-DD date")
}

func toBouquetResponse(b domain.Bouquet) BouquetResponse {
	return BouquetResponse{
		ID:           b.ID,
		Name:         b.Name,
		Description:  b.Description,
		Price:        b.Price.StringFixed(2),
		ImageURL:     b.ImageURL,
		IsPrecreated: b.IsPrecreated,
	}
}

func (h *CustomerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required", nil)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		status := statusFor(err)
		var repoErr *domain.RepositoryError
		switch {
		case errors.As(err, &repoErr) && repoErr.Code >= 400 && repoErr.Code < 500:
			status = http.StatusUnauthorized
		case status == http.StatusInternalServerError:
			status = http.StatusBadGateway
		}
		h.logger.Error("login_failed", "Login failed", RequestID(r.Context()), nil, err)
		respondError(w, status, err.Error(), err)
		return
	}

	h.logger.Info("login_succeeded", "User logged in", RequestID(r.Context()), map[string]interface{}{
		"role": res.Session.Role.String(),
	})
	respondJSON(w, http.StatusOK, LoginResponse{
		Token:   res.Session.Token,
		Role:    res.Session.Role.String(),
		RoleID:  int(res.Session.Role),
		Landing: res.Landing,
	})
}

func (h *CustomerHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromRequest(r)
	if err != nil {
		sess = session.Anonymous()
	}

	bouquets, err := h.reservations.Catalog(r.Context(), sess)
	if err != nil {
		fail(h.logger, w, r, "catalog_failed", err)
		return
	}

	resp := make([]BouquetResponse, 0, len(bouquets))
	for _, b := range bouquets {
		resp = append(resp, toBouquetResponse(b))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *CustomerHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	favorites, err := h.reservations.Favorites(r.Context(), sess)
	if err != nil {
		fail(h.logger, w, r, "favorites_failed", err)
		return
	}

	resp := make([]map[string]interface{}, 0, len(favorites))
	for _, f := range favorites {
		item := map[string]interface{}{"id": f.ID, "bouquet_id": f.BouquetID}
		if f.Bouquet != nil {
			item["bouquet"] = toBouquetResponse(*f.Bouquet)
		}
		resp = append(resp, item)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *CustomerHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req FavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BouquetID <= 0 {
		respondError(w, http.StatusBadRequest, "bouquet_id is required", nil)
		return
	}

	if err := h.reservations.AddFavorite(r.Context(), sess, req.BouquetID); err != nil {
		fail(h.logger, w, r, "add_favorite_failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CustomerHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req CartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.BouquetID <= 0 || req.Quantity < 1 {
		respondError(w, http.StatusBadRequest, "bouquet_id and a positive quantity are required", nil)
		return
	}

	order, err := h.reservations.AddToCart(r.Context(), sess, req.BouquetID, req.Quantity)
	if err != nil {
		fail(h.logger, w, r, "add_to_cart_failed", err)
		return
	}
	respondJSON(w, http.StatusCreated, toOrderResponse(*order))
}

// Reserve takes {"request_date": "..."} as RFC3339 or a plain YYYY-MM-DD date.
func (h *CustomerHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	date, err := req.date()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	h.requestAction(w, r, "reserve_failed", func(ctx context.Context, sess session.Session, requestID int) error {
		return h.reservations.Reserve(ctx, sess, requestID, date)
	})
}

func (h *CustomerHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.requestAction(w, r, "cancel_failed", h.reservations.Cancel)
}

func (h *CustomerHandler) Reservations(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	orders, err := h.reservations.Reservations(r.Context(), sess)
	if err != nil {
		fail(h.logger, w, r, "reservations_failed", err)
		return
	}

	resp := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *CustomerHandler) requestAction(w http.ResponseWriter, r *http.Request, action string,
	fn func(ctx context.Context, sess session.Session, requestID int) error) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid request id", nil)
		return
	}

	if err := fn(r.Context(), sess, id); err != nil {
		fail(h.logger, w, r, action, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
