package aggregating

import (
	"context"
	"fmt"

	"github.com/vfg2006/adtech-analytics-api/infrastructure/repository"
	"github.com/vfg2006/adtech-analytics-api/internal/cache"
	"github.com/vfg2006/adtech-analytics-api/internal/config"
	"github.com/vfg2006/adtech-analytics-api/internal/domain"
	"github.com/vfg2006/adtech-analytics-api/internal/observability"
	"github.com/vfg2006/adtech-analytics-api/internal/usecases/normalizing"
	"github.com/vfg2006/adtech-analytics-api/pkg/log"
	"github.com/vfg2006/adtech-analytics-api/pkg/utils"
)

// Service orquestra normalização, derivação de métricas, persistência e
// invalidação de cache
type Service struct {
	cfg        *config.Config
	recordRepo repository.CampaignRecordRepository
	statsCache *cache.StatsCache
}

// NewService cria uma nova instância do serviço de agregação, sem cache
func NewService(
	cfg *config.Config,
	recordRepo repository.CampaignRecordRepository,
) Aggregator {
	return &Service{
		cfg:        cfg,
		recordRepo: recordRepo,
	}
}

// WithCache habilita o cache de consultas agregadas. O serviço é o dono do
// ciclo de vida do cache: ele decide quando invalidar.
func (s *Service) WithCache(statsCache *cache.StatsCache) *Service {
	s.statsCache = statsCache
	return s
}

// Ingest processa um lote de linhas brutas: normaliza, deriva métricas,
// persiste os registros aceitos em uma transação única e invalida o cache.
//
// O relatório retornado lista cada rejeição com índice e motivo; rejeições
// nunca abortam o lote. Uma falha de armazenamento, por outro lado, é fatal
// e nada do lote é persistido.
func (s *Service) Ingest(ctx context.Context, rows []domain.RawRow) (*domain.IngestReport, error) {
	logger := log.ForContext(ctx)

	batchID, err := utils.GenerateID()
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar ID do lote: %w", err)
	}

	records, rejected := normalizing.Normalize(rows)

	warnings := s.computeMetrics(rows, records, rejected)

	report := &domain.IngestReport{
		BatchID:       batchID,
		AcceptedCount: len(records),
		Rejected:      rejected,
		Warnings:      warnings,
		Quality:       domain.BuildQualityReport(records),
	}

	for _, rejection := range rejected {
		observability.IngestRejectedRows.WithLabelValues(string(rejection.Reason)).Inc()
	}

	if len(records) == 0 {
		logger.WithFields(log.Fields{
			"batch_id": batchID,
			"rejected": len(rejected),
		}).Warn("Lote sem linhas válidas, nada a persistir")
		return report, nil
	}

	if err := s.recordRepo.SaveBatch(ctx, records); err != nil {
		logger.WithError(err).WithField("batch_id", batchID).Error("Erro ao persistir lote de registros")
		return nil, NewStorageError("ingest", err)
	}

	observability.IngestAcceptedRows.Add(float64(len(records)))
	observability.IngestBatches.Inc()

	// Qualquer registro novo pode afetar qualquer agregado: invalidação total
	if s.statsCache != nil {
		s.statsCache.InvalidateAll()
	}

	logger.WithFields(log.Fields{
		"batch_id": batchID,
		"accepted": len(records),
		"rejected": len(rejected),
		"warnings": len(warnings),
	}).Info("Lote de campanha ingerido com sucesso")

	return report, nil
}

// computeMetrics deriva CTR e taxa de conversão de cada registro aceito e
// coleta os avisos de qualidade, preservando o índice original das linhas
func (s *Service) computeMetrics(
	rows []domain.RawRow,
	records []*domain.CampaignRecord,
	rejected []domain.RejectedRow,
) []domain.RowWarning {
	rejectedIndexes := make(map[int]bool, len(rejected))
	for _, rejection := range rejected {
		rejectedIndexes[rejection.Index] = true
	}

	originalIndexes := make([]int, 0, len(records))
	for index := range rows {
		if !rejectedIndexes[index] {
			originalIndexes = append(originalIndexes, index)
		}
	}

	warnings := make([]domain.RowWarning, 0)
	for position, record := range records {
		domain.ComputeRecordMetrics(record)

		// Clicks acima de impressions não bloqueia a ingestão, mas é um
		// sinal de métrica possivelmente mal reportada
		if record.Impressions != nil && record.Clicks > *record.Impressions {
			warnings = append(warnings, domain.RowWarning{
				Index:   originalIndexes[position],
				Message: "clicks maior que impressions, possível erro de reporte",
			})
		}
	}

	return warnings
}

// Query retorna as estatísticas agregadas para os filtros informados.
// Com o cache habilitado, consultas idênticas dentro do TTL compartilham o
// mesmo resultado; sem cache (ou em caso de falha interna dele), o serviço
// computa diretamente do repositório.
func (s *Service) Query(ctx context.Context, filters *domain.StatsFilters) (*domain.AggregateResult, error) {
	logger := log.ForContext(ctx)

	compute := func() (*domain.AggregateResult, error) {
		records, err := s.recordRepo.GetByFilters(ctx, filters)
		if err != nil {
			logger.WithError(err).Error("Erro ao buscar registros de campanha")
			return nil, NewStorageError("query", err)
		}

		// Taxas agregadas sempre recalculadas a partir das somas
		return domain.AggregateRecords(records), nil
	}

	// Sem cache configurado, computar diretamente; o cache nunca é fonte de
	// erro para a consulta
	if s.statsCache == nil {
		return compute()
	}

	return s.statsCache.GetOrCompute(filters.Signature(), compute)
}
