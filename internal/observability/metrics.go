package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Contadores expostos em /metrics
var (
	IngestAcceptedRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adtech_ingest_accepted_rows_total",
		Help: "Total de linhas aceitas na ingestão",
	})

	IngestRejectedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adtech_ingest_rejected_rows_total",
		Help: "Total de linhas rejeitadas na ingestão, por motivo",
	}, []string{"reason"})

	IngestBatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adtech_ingest_batches_total",
		Help: "Total de lotes de ingestão persistidos",
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adtech_stats_cache_hits_total",
		Help: "Total de acertos do cache de estatísticas",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adtech_stats_cache_misses_total",
		Help: "Total de falhas do cache de estatísticas",
	})

	CacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adtech_stats_cache_invalidations_total",
		Help: "Total de invalidações completas do cache de estatísticas",
	})
)

// Handler expõe as métricas no formato Prometheus
func Handler() http.Handler {
	return promhttp.Handler()
}
