package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/versebattle/engine/internal/services/battle"
	"github.com/versebattle/engine/internal/services/gacha"
	"github.com/versebattle/engine/internal/services/ledger"
	"github.com/versebattle/engine/internal/services/matchmaking"
)

// NewRouter constructs the chi router with all API endpoints registered.
func NewRouter(ledgerSvc *ledger.Service, gachaSvc *gacha.Service, matchSvc *matchmaking.Service, battleSvc *battle.Service) http.Handler {
	h := NewHandler(ledgerSvc, gachaSvc, matchSvc, battleSvc)
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/banners", h.ListBannersHandler)
	r.Get("/banners/{bannerID}/shop", h.SparkShopHandler)

	r.Get("/user/{userID}/balance", h.GetBalanceHandler)
	r.Get("/user/{userID}/ledger", h.LedgerHistoryHandler)
	r.Post("/user/{userID}/convert", h.ConvertGemsHandler)

	r.Get("/user/{userID}/banners/{bannerID}/pity", h.PityStatusHandler)
	r.Get("/user/{userID}/pulls", h.PullHistoryHandler)
	r.Post("/user/{userID}/banners/{bannerID}/pull", h.PullSingleHandler)
	r.Post("/user/{userID}/banners/{bannerID}/pull10", h.PullMultiHandler)
	r.Post("/user/{userID}/banners/{bannerID}/spark-exchange", h.SparkExchangeHandler)

	r.Post("/user/{userID}/queue/join", h.JoinQueueHandler)
	r.Post("/user/{userID}/queue/leave", h.LeaveQueueHandler)

	r.Post("/user/{userID}/battles/friendly", h.CreateFriendlyHandler)
	r.Get("/battles/{battleID}", h.BattleDetailHandler)
	r.Post("/battles/{battleID}/start", h.StartBattleHandler)
	r.Post("/user/{userID}/battles/{battleID}/verse", h.SubmitVerseHandler)
	r.Post("/user/{userID}/battles/{battleID}/vote", h.VoteRoundHandler)
	r.Post("/battles/{battleID}/finalize", h.FinalizeBattleHandler)

	return r
}
