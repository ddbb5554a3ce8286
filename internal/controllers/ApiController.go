package controllers

import (
	"net/http"

	json "github.com/goccy/go-json"

	"nltrack/internal/providers"
	"nltrack/internal/services"
)

type ApiController struct {
	logger      providers.Logger
	aggregation services.AggregationServiceInterface
	cache       providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, aggregation services.AggregationServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:      logger,
		aggregation: aggregation,
		cache:       cache,
	}
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "Error computing %s: %s", cacheKey, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) GetArticleStats(w http.ResponseWriter, r *http.Request) {
	nwl := r.URL.Query().Get("nwl")
	if nwl == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ac.serveFromCacheOrCompute(w, "stats:"+nwl, func() (any, error) {
		return ac.aggregation.GetArticleStatsWithFallback(r.Context(), nwl)
	})
}
