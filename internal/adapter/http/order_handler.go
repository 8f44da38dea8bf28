package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/YelzhanWeb/floreria/internal/adapter/logger"
	"github.com/YelzhanWeb/floreria/internal/domain"
	"github.com/YelzhanWeb/floreria/internal/interfaces"
)

type OrderHandler struct {
	lifecycle interfaces.LifecycleService
	tracking  interfaces.TrackingService
	logger    logger.Logger
}

func NewOrderHandler(lifecycle interfaces.LifecycleService, tracking interfaces.TrackingService, logger logger.Logger) *OrderHandler {
	return &OrderHandler{
		lifecycle: lifecycle,
		tracking:  tracking,
		logger:    logger,
	}
}

// StatusChangeRequest names the target either by label or by id.
type StatusChangeRequest struct {
	Status   string `json:"status"`
	StatusID int    `json:"status_id"`
	Confirm  bool   `json:"confirm"`
}

type OrderView struct {
	Order                OrderResponse      `json:"order"`
	AvailableTransitions []TransitionOption `json:"available_transitions"`
}

type StatusChangeResponse struct {
	OrderView
	Applied              bool   `json:"applied"`
	ConfirmationRequired bool   `json:"confirmation_required,omitempty"`
	Prompt               string `json:"prompt,omitempty"`
}

type HistoryEntry struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Role      string `json:"role"`
	ChangedBy string `json:"changed_by"`
	ChangedAt string `json:"changed_at"`
}

func (r StatusChangeRequest) target() (domain.Status, error) {
	if r.StatusID != 0 {
		return domain.StatusFromID(r.StatusID)
	}
	if strings.TrimSpace(r.Status) == "" {
		return 0, fmt.Errorf("status or status_id is required")
	}
	return domain.ParseStatus(r.Status)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid order id", nil)
		return
	}

	view, err := h.tracking.GetOrder(r.Context(), sess, id)
	if err != nil {
		fail(h.logger, w, r, "order_lookup_failed", err)
		return
	}

	respondJSON(w, http.StatusOK, OrderView{
		Order:                toOrderResponse(view.Order),
		AvailableTransitions: toTransitionOptions(view.AvailableTransitions),
	})
}

// ChangeStatus applies a transition. Without "confirm": true nothing is sent to
// the shop API and the answer carries the confirmation prompt instead.
func (h *OrderHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid order id", nil)
		return
	}

	var req StatusChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	target, err := req.target()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	view, err := h.tracking.GetOrder(r.Context(), sess, id)
	if err != nil {
		fail(h.logger, w, r, "order_lookup_failed", err)
		return
	}

	result, err := h.lifecycle.RequestTransition(r.Context(), sess, view.Order, target, interfaces.Answer(req.Confirm))
	if err != nil {
		fail(h.logger, w, r, "status_change_failed", err)
		return
	}

	resp := StatusChangeResponse{
		OrderView: OrderView{
			Order:                toOrderResponse(result.Order),
			AvailableTransitions: toTransitionOptions(h.lifecycle.AvailableTransitions(result.Order.Status, sess.Role)),
		},
		Applied: result.Applied,
	}
	if !result.Applied {
		resp.ConfirmationRequired = true
		resp.Prompt = result.Prompt
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid order id", nil)
		return
	}

	history, err := h.tracking.GetOrderHistory(r.Context(), id)
	if err != nil {
		fail(h.logger, w, r, "history_lookup_failed", err)
		return
	}

	resp := make([]HistoryEntry, len(history))
	for i, log := range history {
		resp[i] = HistoryEntry{
			From:      log.FromStatus.String(),
			To:        log.ToStatus.String(),
			Role:      log.Role.String(),
			ChangedBy: log.ChangedBy,
			ChangedAt: log.ChangedAt.UTC().Format(time.RFC3339),
		}
	}
	respondJSON(w, http.StatusOK, resp)
}
