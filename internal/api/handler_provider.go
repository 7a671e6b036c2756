package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/repos/banners"
	"github.com/versebattle/engine/internal/repos/battles"
	"github.com/versebattle/engine/internal/repos/pity"
	"github.com/versebattle/engine/internal/repos/queue"
	"github.com/versebattle/engine/internal/repos/sparkshop"
	"github.com/versebattle/engine/internal/repos/wallets"
	"github.com/versebattle/engine/internal/services/battle"
	"github.com/versebattle/engine/internal/services/gacha"
	"github.com/versebattle/engine/internal/services/ledger"
	"github.com/versebattle/engine/internal/services/matchmaking"
)

// HandlerProvider wraps the engine services and exposes HTTP handlers.
type HandlerProvider struct {
	ledger      *ledger.Service
	gacha       *gacha.Service
	matchmaking *matchmaking.Service
	battles     *battle.Service
}

// NewHandler returns a new handler provider.
func NewHandler(ledgerSvc *ledger.Service, gachaSvc *gacha.Service, matchSvc *matchmaking.Service, battleSvc *battle.Service) *HandlerProvider {
	return &HandlerProvider{
		ledger:      ledgerSvc,
		gacha:       gachaSvc,
		matchmaking: matchSvc,
		battles:     battleSvc,
	}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)

		http.Error(w, `{"error":{"kind":"internal","message":"json encode failure"}}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"kind": kind, "message": msg},
	})
}

// writeDomainError maps a service error onto the error taxonomy. Anything it
// does not recognize becomes a 500 without leaking internals.
func writeDomainError(w http.ResponseWriter, err error) {
	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.kind, m.err.Error())
			return
		}
	}

	slog.Error("unhandled service error", "error", err)
	writeError(w, http.StatusInternalServerError, "internal", "internal error")
}

var domainErrors = []struct {
	err    error
	status int
	kind   string
}{
	{wallets.ErrInsufficientFunds, http.StatusBadRequest, "insufficient_funds"},
	{wallets.ErrUnknownCurrency, http.StatusBadRequest, "unknown_currency"},
	{wallets.ErrWalletNotFound, http.StatusNotFound, "wallet_not_found"},
	{ledger.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{banners.ErrBannerNotFound, http.StatusNotFound, "banner_not_found"},
	{gacha.ErrBannerInactive, http.StatusBadRequest, "banner_inactive"},
	{gacha.ErrPoolEmpty, http.StatusBadRequest, "gacha_pool_empty"},
	{pity.ErrInsufficientSparks, http.StatusBadRequest, "insufficient_sparks"},
	{sparkshop.ErrItemUnavailable, http.StatusBadRequest, "item_unavailable"},
	{sparkshop.ErrExchangeLimit, http.StatusBadRequest, "exchange_limit_reached"},
	{queue.ErrAlreadyInQueue, http.StatusBadRequest, "already_in_queue"},
	{matchmaking.ErrInvalidBattleType, http.StatusBadRequest, "invalid_battle_type"},
	{battles.ErrBattleNotFound, http.StatusNotFound, "battle_not_found"},
	{battles.ErrDuplicateVote, http.StatusBadRequest, "duplicate_vote"},
	{battles.ErrInvalidState, http.StatusBadRequest, "invalid_battle_state"},
	{battle.ErrNotParticipant, http.StatusBadRequest, "not_participant"},
	{battle.ErrFriendshipRequired, http.StatusBadRequest, "friendship_required"},
	{battle.ErrInvalidVerse, http.StatusBadRequest, "invalid_verse"},
	{battle.ErrInvalidVoteTarget, http.StatusBadRequest, "invalid_vote_target"},
	{battle.ErrSelfBattle, http.StatusBadRequest, "self_battle"},
}

// parseUUIDParam reads a UUID path parameter from chi routes like
// /user/{userID}/balance.
func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("missing %s", name)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", name, err)
	}

	return id, nil
}

// decodeBody decodes a JSON request body into dst with a 1MB cap and unknown
// fields rejected.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty body")
		}

		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
