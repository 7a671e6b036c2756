package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/repos/battles"
)

type friendlyRequest struct {
	FriendID uuid.UUID `json:"friendId"`
}

// CreateFriendlyHandler handles POST /user/{userID}/battles/friendly
func (h *HandlerProvider) CreateFriendlyHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid userID in path")
		return
	}

	var req friendlyRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if req.FriendID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "friendId required")
		return
	}

	created, err := h.battles.CreateFriendly(r.Context(), userID, req.FriendID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"battleId": created.ID})
}

// BattleDetailHandler handles GET /battles/{battleID}
func (h *HandlerProvider) BattleDetailHandler(w http.ResponseWriter, r *http.Request) {
	battleID, err := parseUUIDParam(r, "battleID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid battleID in path")
		return
	}

	detail, err := h.battles.Detail(r.Context(), battleID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	rounds := make([]map[string]any, 0, len(detail.Rounds))
	for _, round := range detail.Rounds {
		rounds = append(rounds, map[string]any{
			"roundNumber":  round.RoundNumber,
			"player1Verse": round.Player1Verse,
			"player2Verse": round.Player2Verse,
			"player1Votes": round.Player1Votes,
			"player2Votes": round.Player2Votes,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"battle": renderBattle(detail.Battle),
		"rounds": rounds,
	})
}

// StartBattleHandler handles POST /battles/{battleID}/start
func (h *HandlerProvider) StartBattleHandler(w http.ResponseWriter, r *http.Request) {
	battleID, err := parseUUIDParam(r, "battleID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid battleID in path")
		return
	}

	started, err := h.battles.Start(r.Context(), battleID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"started": started})
}

type verseRequest struct {
	Round int    `json:"round"`
	Verse string `json:"verse"`
}

// SubmitVerseHandler handles POST /user/{userID}/battles/{battleID}/verse
func (h *HandlerProvider) SubmitVerseHandler(w http.ResponseWriter, r *http.Request) {
	userID, battleID, ok := parseUserBattleParams(w, r)
	if !ok {
		return
	}

	var req verseRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	err = h.battles.SubmitVerse(r.Context(), battleID, userID, req.Round, req.Verse)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"round": req.Round})
}

type voteRequest struct {
	Round    int       `json:"round"`
	VotedFor uuid.UUID `json:"votedFor"`
}

// VoteRoundHandler handles POST /user/{userID}/battles/{battleID}/vote
func (h *HandlerProvider) VoteRoundHandler(w http.ResponseWriter, r *http.Request) {
	userID, battleID, ok := parseUserBattleParams(w, r)
	if !ok {
		return
	}

	var req voteRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if req.Round < 1 || req.VotedFor == uuid.Nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "round and votedFor required")
		return
	}

	err = h.battles.VoteRound(r.Context(), battleID, userID, req.VotedFor, req.Round)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"round": req.Round})
}

// FinalizeBattleHandler handles POST /battles/{battleID}/finalize
func (h *HandlerProvider) FinalizeBattleHandler(w http.ResponseWriter, r *http.Request) {
	battleID, err := parseUUIDParam(r, "battleID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid battleID in path")
		return
	}

	settled, err := h.battles.Finalize(r.Context(), battleID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, renderBattle(settled))
}

func renderBattle(b *battles.Battle) map[string]any {
	return map[string]any{
		"id":           b.ID,
		"player1Id":    b.Player1ID,
		"player2Id":    b.Player2ID,
		"type":         b.Type,
		"status":       b.Status,
		"betCoins":     b.BetCoins,
		"betGems":      b.BetGems,
		"player1Score": b.Player1Score,
		"player2Score": b.Player2Score,
		"winnerId":     b.WinnerID,
		"loserId":      b.LoserID,
	}
}

func parseUserBattleParams(w http.ResponseWriter, r *http.Request) (userID, battleID uuid.UUID, ok bool) {
	userID, err := parseUUIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid userID in path")
		return uuid.Nil, uuid.Nil, false
	}

	battleID, err = parseUUIDParam(r, "battleID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid battleID in path")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, battleID, true
}
