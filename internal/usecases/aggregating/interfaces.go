package aggregating

import (
	"context"

	"github.com/vfg2006/adtech-analytics-api/internal/domain"
)

// Aggregator é o contrato do serviço de agregação de campanhas
type Aggregator interface {
	// Ingest normaliza, deriva métricas e persiste as linhas aceitas em um
	// único lote atômico, invalidando o cache de consultas em seguida.
	// Rejeições de validação não falham o lote; falha de armazenamento sim.
	Ingest(ctx context.Context, rows []domain.RawRow) (*domain.IngestReport, error)

	// Query retorna as estatísticas agregadas para os filtros, usando o
	// cache quando possível
	Query(ctx context.Context, filters *domain.StatsFilters) (*domain.AggregateResult, error)
}
