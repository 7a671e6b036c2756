package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/versebattle/engine/internal/services/battle"
	"github.com/versebattle/engine/internal/services/gacha"
	"github.com/versebattle/engine/internal/services/ledger"
	"github.com/versebattle/engine/internal/services/matchmaking"
)

// NewServer creates and returns a configured *http.Server for the engine API.
func NewServer(port uint16, ledgerSvc *ledger.Service, gachaSvc *gacha.Service, matchSvc *matchmaking.Service, battleSvc *battle.Service) *http.Server {
	mux := NewRouter(ledgerSvc, gachaSvc, matchSvc, battleSvc)

	addr := fmt.Sprintf(":%d", port)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
