package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/versebattle/engine/internal/services/gacha"
)

// ListBannersHandler handles GET /banners
func (h *HandlerProvider) ListBannersHandler(w http.ResponseWriter, r *http.Request) {
	active, err := h.gacha.ListActiveBanners(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]map[string]any, 0, len(active))
	for _, b := range active {
		items = append(items, map[string]any{
			"id":                   b.ID,
			"name":                 b.Name,
			"costGems":             b.CostGems,
			"pityThreshold":        b.PityThreshold,
			"rateUpMultiplier":     b.RateUpMultiplier,
			"multiPullDiscountPct": b.MultiPullDiscountPct,
			"featuredCosmeticIds":  b.FeaturedCosmeticIDs,
			"startsAt":             b.StartsAt,
			"endsAt":               b.EndsAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"banners": items})
}

// SparkShopHandler handles GET /banners/{bannerID}/shop
func (h *HandlerProvider) SparkShopHandler(w http.ResponseWriter, r *http.Request) {
	bannerID, err := parseUUIDParam(r, "bannerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid bannerID in path")
		return
	}

	shop, err := h.gacha.SparkShop(r.Context(), bannerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]map[string]any, 0, len(shop))
	for _, it := range shop {
		items = append(items, map[string]any{
			"cosmeticId":     it.CosmeticID,
			"sparkCost":      it.SparkCost,
			"maxExchanges":   it.MaxExchanges,
			"timesExchanged": it.TimesExchanged,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// PityStatusHandler handles GET /user/{userID}/banners/{bannerID}/pity
func (h *HandlerProvider) PityStatusHandler(w http.ResponseWriter, r *http.Request) {
	userID, bannerID, ok := parseUserBannerParams(w, r)
	if !ok {
		return
	}

	tracker, err := h.gacha.PityStatus(r.Context(), userID, bannerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pullsSinceLastLegendary": tracker.PullsSinceLastLegendary,
		"pullsSinceLastEpic":      tracker.PullsSinceLastEpic,
		"totalPulls":              tracker.TotalPulls,
		"sparkTokens":             tracker.SparkTokens,
	})
}

// PullHistoryHandler handles GET /user/{userID}/pulls
func (h *HandlerProvider) PullHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid userID in path")
		return
	}

	history, err := h.gacha.PullHistory(r.Context(), userID, parseLimit(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]map[string]any, 0, len(history))
	for _, p := range history {
		items = append(items, map[string]any{
			"id":         p.ID,
			"bannerId":   p.BannerID,
			"cosmeticId": p.CosmeticID,
			"rarity":     p.Rarity,
			"wasPity":    p.WasPity,
			"wasRateUp":  p.WasRateUp,
			"pullType":   p.PullType,
			"gemsSpent":  p.GemsSpent,
			"createdAt":  p.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"pulls": items})
}

// PullSingleHandler handles POST /user/{userID}/banners/{bannerID}/pull
func (h *HandlerProvider) PullSingleHandler(w http.ResponseWriter, r *http.Request) {
	userID, bannerID, ok := parseUserBannerParams(w, r)
	if !ok {
		return
	}

	result, err := h.gacha.PullSingle(r.Context(), userID, bannerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, renderPull(result))
}

// PullMultiHandler handles POST /user/{userID}/banners/{bannerID}/pull10
func (h *HandlerProvider) PullMultiHandler(w http.ResponseWriter, r *http.Request) {
	userID, bannerID, ok := parseUserBannerParams(w, r)
	if !ok {
		return
	}

	results, err := h.gacha.PullMulti(r.Context(), userID, bannerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]map[string]any, 0, len(results))
	for i := range results {
		items = append(items, renderPull(&results[i]))
	}

	writeJSON(w, http.StatusOK, map[string]any{"pulls": items})
}

type sparkExchangeRequest struct {
	CosmeticID uuid.UUID `json:"cosmeticId"`
}

// SparkExchangeHandler handles POST /user/{userID}/banners/{bannerID}/spark-exchange
func (h *HandlerProvider) SparkExchangeHandler(w http.ResponseWriter, r *http.Request) {
	userID, bannerID, ok := parseUserBannerParams(w, r)
	if !ok {
		return
	}

	var req sparkExchangeRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if req.CosmeticID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "cosmeticId required")
		return
	}

	err = h.gacha.SparkExchange(r.Context(), userID, bannerID, req.CosmeticID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"cosmeticId": req.CosmeticID})
}

func renderPull(p *gacha.PullResult) map[string]any {
	return map[string]any{
		"cosmeticId":     p.Cosmetic.ID,
		"name":           p.Cosmetic.Name,
		"rarity":         p.Cosmetic.Rarity,
		"wasPity":        p.WasPity,
		"wasRateUp":      p.WasRateUp,
		"duplicate":      p.Duplicate,
		"duplicateCoins": p.DuplicateCoins,
	}
}

func parseUserBannerParams(w http.ResponseWriter, r *http.Request) (userID, bannerID uuid.UUID, ok bool) {
	userID, err := parseUUIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid userID in path")
		return uuid.Nil, uuid.Nil, false
	}

	bannerID, err = parseUUIDParam(r, "bannerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid bannerID in path")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, bannerID, true
}
