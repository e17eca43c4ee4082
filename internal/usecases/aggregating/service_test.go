package aggregating

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/adtech-analytics-api/infrastructure/repository/mocks"
	"github.com/vfg2006/adtech-analytics-api/internal/cache"
	"github.com/vfg2006/adtech-analytics-api/internal/config"
	"github.com/vfg2006/adtech-analytics-api/internal/domain"
	"github.com/vfg2006/adtech-analytics-api/pkg/log"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	log.SetupTestLogger()
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{}
}

func validRows() []domain.RawRow {
	return []domain.RawRow{
		{
			"date":        "2024-01-01",
			"channel":     "Google",
			"campaign":    "Summer Sale",
			"impressions": "45230",
			"clicks":      "892",
			"conversions": "23",
			"cost":        "1250.75",
		},
	}
}

func TestService_Ingest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recordRepo := mocks.NewMockCampaignRecordRepository(ctrl)
	service := NewService(testConfig(), recordRepo)

	recordRepo.EXPECT().
		SaveBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, records []*domain.CampaignRecord) error {
			require.Len(t, records, 1)

			// As métricas derivadas já chegam prontas na persistência
			require.NotNil(t, records[0].CTR)
			assert.Equal(t, 1.97, *records[0].CTR)
			require.NotNil(t, records[0].ConversionRate)
			assert.Equal(t, 2.58, *records[0].ConversionRate)
			return nil
		})

	report, err := service.Ingest(context.Background(), validRows())

	require.NoError(t, err)
	assert.NotEmpty(t, report.BatchID)
	assert.Equal(t, 1, report.AcceptedCount)
	assert.Empty(t, report.Rejected)
	assert.Empty(t, report.Warnings)

	require.NotNil(t, report.Quality)
	assert.Equal(t, 1, report.Quality.TotalRows)
	assert.Equal(t, []string{"Google"}, report.Quality.Channels)
}

func TestService_Ingest_RejectionsDoNotAbortBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recordRepo := mocks.NewMockCampaignRecordRepository(ctrl)
	service := NewService(testConfig(), recordRepo)

	rows := []domain.RawRow{
		{"date": "2024-01-01", "channel": "Google", "impressions": "45230", "clicks": "892", "conversions": "23"},
		{"date": "2024-01-01", "channel": "Google", "clicks": "-5", "conversions": "1"},
	}

	recordRepo.EXPECT().
		SaveBatch(gomock.Any(), gomock.Len(1)).
		Return(nil)

	report, err := service.Ingest(context.Background(), rows)

	require.NoError(t, err)
	assert.Equal(t, 1, report.AcceptedCount)
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, 1, report.Rejected[0].Index)
	assert.Equal(t, domain.ReasonNegativeValue, report.Rejected[0].Reason)
}

func TestService_Ingest_WarnsWhenClicksExceedImpressions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recordRepo := mocks.NewMockCampaignRecordRepository(ctrl)
	service := NewService(testConfig(), recordRepo)

	rows := []domain.RawRow{
		{"date": "2024-01-01", "channel": "Meta", "clicks": "x", "conversions": "1"}, // rejeitada
		{"date": "2024-01-01", "channel": "Google", "impressions": "100", "clicks": "250", "conversions": "10"},
	}

	recordRepo.EXPECT().
		SaveBatch(gomock.Any(), gomock.Any()).
		Return(nil)

	report, err := service.Ingest(context.Background(), rows)

	require.NoError(t, err)
	assert.Equal(t, 1, report.AcceptedCount)

	// O aviso aponta para o índice original da linha, descontando a rejeitada
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, 1, report.Warnings[0].Index)
}

func TestService_Ingest_EmptyBatchSkipsPersistence(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recordRepo := mocks.NewMockCampaignRecordRepository(ctrl)
	service := NewService(testConfig(), recordRepo)

	rows := []domain.RawRow{
		{"channel": "Google", "clicks": "10", "conversions": "1"}, // sem date
	}

	// Nenhuma chamada ao repositório é esperada
	report, err := service.Ingest(context.Background(), rows)

	require.NoError(t, err)
	assert.Equal(t, 0, report.AcceptedCount)
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, domain.ReasonMissingField, report.Rejected[0].Reason)
}

func TestService_Ingest_StorageFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recordRepo := mocks.NewMockCampaignRecordRepository(ctrl)
	service := NewService(testConfig(), recordRepo)

	recordRepo.EXPECT().
		SaveBatch(gomock.Any(), gomock.Any()).
		Return(errors.New("connection refused"))

	report, err := service.Ingest(context.Background(), validRows())

	assert.Nil(t, report)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "ingest", storageErr.Op)
}

func TestService_Query_WithoutCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recordRepo := mocks.NewMockCampaignRecordRepository(ctrl)
	service := NewService(testConfig(), recordRepo)

	impressions := int64(45230)
	records := []*domain.CampaignRecord{
		{Channel: "Google", Impressions: &impressions, Clicks: 892, Conversions: 23},
	}

	filters := &domain.StatsFilters{}

	// Sem cache, cada consulta vai direto ao repositório
	recordRepo.EXPECT().
		GetByFilters(gomock.Any(), filters).
		Return(records, nil).
		Times(2)

	for i := 0; i < 2; i++ {
		result, err := service.Query(context.Background(), filters)

		require.NoError(t, err)
		assert.Equal(t, int64(892), result.TotalClicks)
		require.NotNil(t, result.OverallCTR)
		assert.Equal(t, 1.97, *result.OverallCTR)
		require.NotNil(t, result.OverallConversionRate)
		assert.Equal(t, 2.58, *result.OverallConversionRate)
	}
}

func TestService_Query_CachedWithinTTL(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recordRepo := mocks.NewMockCampaignRecordRepository(ctrl)
	service := NewService(testConfig(), recordRepo).(*Service).
		WithCache(cache.New(time.Minute))

	recordRepo.EXPECT().
		GetByFilters(gomock.Any(), gomock.Any()).
		Return([]*domain.CampaignRecord{{Channel: "Google", Clicks: 10, Conversions: 1}}, nil).
		Times(1)

	first, err := service.Query(context.Background(), &domain.StatsFilters{})
	require.NoError(t, err)

	second, err := service.Query(context.Background(), &domain.StatsFilters{})
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestService_Query_EquivalentFiltersShareCacheEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recordRepo := mocks.NewMockCampaignRecordRepository(ctrl)
	service := NewService(testConfig(), recordRepo).(*Service).
		WithCache(cache.New(time.Minute))

	// O repositório compara o canal sem distinção de maiúsculas, então as duas
	// grafias selecionam as mesmas linhas e podem compartilhar a entrada de cache
	recordRepo.EXPECT().
		GetByFilters(gomock.Any(), gomock.Any()).
		Return([]*domain.CampaignRecord{{Channel: "Google", Clicks: 892, Conversions: 23}}, nil).
		Times(1)

	google := "Google"
	googleUpper := "GOOGLE"

	first, err := service.Query(context.Background(), &domain.StatsFilters{Channel: &google})
	require.NoError(t, err)

	second, err := service.Query(context.Background(), &domain.StatsFilters{Channel: &googleUpper})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int64(892), second.TotalClicks)
}

func TestService_WriteThenReadCoherence(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recordRepo := mocks.NewMockCampaignRecordRepository(ctrl)
	service := NewService(testConfig(), recordRepo).(*Service).
		WithCache(cache.New(time.Minute))

	filters := &domain.StatsFilters{}

	gomock.InOrder(
		recordRepo.EXPECT().
			GetByFilters(gomock.Any(), filters).
			Return([]*domain.CampaignRecord{{Channel: "Google", Clicks: 100, Conversions: 10}}, nil),
		recordRepo.EXPECT().
			SaveBatch(gomock.Any(), gomock.Any()).
			Return(nil),
		recordRepo.EXPECT().
			GetByFilters(gomock.Any(), filters).
			Return([]*domain.CampaignRecord{
				{Channel: "Google", Clicks: 100, Conversions: 10},
				{Channel: "Google", Clicks: 892, Conversions: 23},
			}, nil),
	)

	before, err := service.Query(context.Background(), filters)
	require.NoError(t, err)
	assert.Equal(t, int64(100), before.TotalClicks)

	_, err = service.Ingest(context.Background(), validRows())
	require.NoError(t, err)

	// A escrita invalida o cache: a próxima leitura já reflete o novo lote
	after, err := service.Query(context.Background(), filters)
	require.NoError(t, err)
	assert.Equal(t, int64(992), after.TotalClicks)
}

func TestService_Query_StorageFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recordRepo := mocks.NewMockCampaignRecordRepository(ctrl)
	service := NewService(testConfig(), recordRepo)

	recordRepo.EXPECT().
		GetByFilters(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused"))

	result, err := service.Query(context.Background(), &domain.StatsFilters{})

	assert.Nil(t, result)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "query", storageErr.Op)
}

func TestService_Query_StorageFailureIsNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recordRepo := mocks.NewMockCampaignRecordRepository(ctrl)
	service := NewService(testConfig(), recordRepo).(*Service).
		WithCache(cache.New(time.Minute))

	gomock.InOrder(
		recordRepo.EXPECT().
			GetByFilters(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("connection refused")),
		recordRepo.EXPECT().
			GetByFilters(gomock.Any(), gomock.Any()).
			Return([]*domain.CampaignRecord{}, nil),
	)

	_, err := service.Query(context.Background(), &domain.StatsFilters{})
	require.ErrorIs(t, err, ErrStorageUnavailable)

	// A falha não fica no cache: a consulta seguinte tenta o repositório de novo
	result, err := service.Query(context.Background(), &domain.StatsFilters{})
	require.NoError(t, err)
	assert.NotNil(t, result)
}
