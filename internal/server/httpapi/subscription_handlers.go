package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/soundhub/internal/server/services"
)

const (
	defaultSubscriptionLimit = 10
	defaultActivityLimit     = 50
	maxPageLimit             = 100
)

func (h *Handler) plans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.subs.Plans(r.Context())
	if err != nil {
		h.writeError(w, r, err, "")
		return
	}

	out := make([]planJSON, 0, len(plans))
	for _, p := range plans {
		out = append(out, toPlan(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": out})
}

func (h *Handler) purchase(w http.ResponseWriter, r *http.Request) {
	var in services.PurchaseInput
	if !decodeOrFail(w, r, &in) {
		return
	}

	sub, user, err := h.subs.Purchase(r.Context(), caller(r).UserID, in)
	if err != nil {
		h.writeError(w, r, err, "User not found")
		return
	}
	h.refreshed(w, r, http.StatusCreated, map[string]any{
		"message":      "Subscription purchased successfully",
		"subscription": toSubscription(sub),
	}, user)
}

func (h *Handler) currentSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subs.Current(r.Context(), caller(r).UserID)
	if err != nil {
		h.writeError(w, r, err, "No active subscription found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscription": toSubscription(sub)})
}

// pagination parses limit and offset query parameters.
func pagination(r *http.Request, defaultLimit int) (limit, offset int, msg string) {
	limit, offset = defaultLimit, 0
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxPageLimit {
			return 0, 0, "Limit must be between 1 and 100"
		}
		limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, "Offset must be non-negative"
		}
		offset = n
	}
	return limit, offset, ""
}

func (h *Handler) subscriptionHistory(w http.ResponseWriter, r *http.Request) {
	limit, offset, msg := pagination(r, defaultSubscriptionLimit)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
		return
	}

	subs, err := h.subs.History(r.Context(), caller(r).UserID)
	if err != nil {
		h.writeError(w, r, err, "")
		return
	}

	page := make([]*subscriptionJSON, 0, limit)
	for i := offset; i < len(subs) && len(page) < limit; i++ {
		page = append(page, toSubscription(subs[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"subscriptions": page,
		"pagination":    map[string]int{"limit": limit, "offset": offset, "count": len(page)},
	})
}

func (h *Handler) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	user, err := h.subs.Cancel(r.Context(), caller(r).UserID)
	if err != nil {
		h.writeError(w, r, err, "User not found")
		return
	}
	h.refreshed(w, r, http.StatusOK, map[string]any{"message": "Subscription cancelled successfully"}, user)
}

func (h *Handler) subscriptionStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.subs.Status(r.Context(), caller(r).UserID)
	if err != nil {
		h.writeError(w, r, err, "User not found")
		return
	}

	body := map[string]any{
		"is_active":    st.Active,
		"subscription": toSubscription(st.Subscription),
	}
	if st.Status != "" {
		body["status"] = string(st.Status)
	}
	if st.User == nil {
		writeJSON(w, http.StatusOK, body)
		return
	}
	body["message"] = "Subscription expired"
	h.refreshed(w, r, http.StatusOK, body, st.User)
}
