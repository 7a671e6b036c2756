package api

import (
	"net/http"
	"strconv"
)

// GetBalanceHandler handles GET /user/{userID}/balance
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid userID in path")
		return
	}

	bal, err := h.ledger.GetBalance(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"userId":              bal.UserID,
		"coins":               bal.Coins,
		"gems":                bal.Gems,
		"lifetimeCoinsEarned": bal.LifetimeCoinsEarned,
		"lifetimeGemsEarned":  bal.LifetimeGemsEarned,
	})
}

// LedgerHistoryHandler handles GET /user/{userID}/ledger
func (h *HandlerProvider) LedgerHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid userID in path")
		return
	}

	limit := parseLimit(r)

	history, err := h.ledger.History(r.Context(), userID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]map[string]any, 0, len(history))
	for _, e := range history {
		items = append(items, map[string]any{
			"id":           e.ID,
			"currency":     e.Currency,
			"amount":       e.Amount,
			"balanceAfter": e.BalanceAfter,
			"kind":         e.Kind,
			"source":       e.Source,
			"createdAt":    e.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": items})
}

type convertRequest struct {
	Gems int64 `json:"gems"`
}

// ConvertGemsHandler handles POST /user/{userID}/convert
func (h *HandlerProvider) ConvertGemsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid userID in path")
		return
	}

	var req convertRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	bal, err := h.ledger.ConvertGems(r.Context(), userID, req.Gems)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"coins": bal.Coins,
		"gems":  bal.Gems,
	})
}

func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}

	return limit
}
