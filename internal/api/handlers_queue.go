package api

import (
	"net/http"

	"github.com/versebattle/engine/internal/repos/battles"
)

type queueRequest struct {
	BattleType string `json:"battleType"`
	BetCoins   int64  `json:"betCoins"`
	BetGems    int64  `json:"betGems"`
}

// JoinQueueHandler handles POST /user/{userID}/queue/join
func (h *HandlerProvider) JoinQueueHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid userID in path")
		return
	}

	var req queueRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.matchmaking.JoinQueue(r.Context(), userID, battles.Type(req.BattleType), req.BetCoins, req.BetGems)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if result.Waiting {
		writeJSON(w, http.StatusOK, map[string]any{"status": "waiting"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "matched",
		"battleId": result.BattleID,
	})
}

// LeaveQueueHandler handles POST /user/{userID}/queue/leave
func (h *HandlerProvider) LeaveQueueHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid userID in path")
		return
	}

	var req queueRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	removed, err := h.matchmaking.LeaveQueue(r.Context(), userID, battles.Type(req.BattleType), req.BetCoins, req.BetGems)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"removed": removed})
}
