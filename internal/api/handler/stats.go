package handler

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/vfg2006/adtech-analytics-api/internal/cache"
	"github.com/vfg2006/adtech-analytics-api/internal/domain"
	"github.com/vfg2006/adtech-analytics-api/internal/usecases/aggregating"
	"github.com/vfg2006/adtech-analytics-api/pkg/apiErrors"
	"github.com/vfg2006/adtech-analytics-api/pkg/log"
	"github.com/vfg2006/adtech-analytics-api/pkg/utils"
)

// GetStats retorna as estatísticas agregadas de campanha para os filtros
// opcionais start_date, end_date e channel
func GetStats(service aggregating.Aggregator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		startDate, err := utils.ParseDate(r.URL.Query().Get("start_date"))
		if err != nil {
			logger.WithFields(log.Fields{
				"start_date": r.URL.Query().Get("start_date"),
				"error":      err.Error(),
			}).Warn("stats: parâmetro start_date inválido")

			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		endDate, err := utils.ParseDate(r.URL.Query().Get("end_date"))
		if err != nil {
			logger.WithFields(log.Fields{
				"end_date": r.URL.Query().Get("end_date"),
				"error":    err.Error(),
			}).Warn("stats: parâmetro end_date inválido")

			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		filters := &domain.StatsFilters{
			DateFrom: startDate,
			DateTo:   endDate,
		}

		if channel := r.URL.Query().Get("channel"); channel != "" {
			filters.Channel = &channel
		}

		result, err := service.Query(r.Context(), filters)
		if err != nil {
			if errors.Is(err, aggregating.ErrStorageUnavailable) {
				logger.WithError(err).Error("stats: armazenamento indisponível")
				apiErrors.WriteError(w, apiErrors.ErrStorageUnavailable, "Armazenamento indisponível", nil)
				return
			}

			logger.WithError(err).Error("stats: erro ao consultar estatísticas")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao consultar estatísticas", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			logger.WithError(err).Error("stats: erro ao codificar resposta")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
		}
	})
}

// GetCacheStats expõe o estado atual do cache de estatísticas para
// diagnóstico
func GetCacheStats(statsCache *cache.StatsCache) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if statsCache == nil {
			json.NewEncoder(w).Encode(map[string]any{"enabled": false})
			return
		}

		json.NewEncoder(w).Encode(statsCache.Stats())
	})
}
