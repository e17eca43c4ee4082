package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/adtech-analytics-api/internal/domain"
)

func TestBuildFilteredSelect_NoFilters(t *testing.T) {
	query, args, err := buildFilteredSelect(nil).ToSql()

	require.NoError(t, err)
	assert.NotContains(t, query, "WHERE")
	assert.Empty(t, args)
}

func TestBuildFilteredSelect_ChannelMatchesCaseInsensitively(t *testing.T) {
	channel := " Google "

	query, args, err := buildFilteredSelect(&domain.StatsFilters{Channel: &channel}).ToSql()

	require.NoError(t, err)
	assert.Contains(t, query, "LOWER(cr.channel) = $1")
	require.Len(t, args, 1)
	assert.Equal(t, "google", args[0])
}

func TestBuildFilteredSelect_FiltersWithSameSignatureProduceSameQuery(t *testing.T) {
	// Filtros que compartilham a mesma chave de cache precisam selecionar as
	// mesmas linhas, senão o cache serviria o resultado de outro filtro
	lower := "google"
	upper := "GOOGLE"

	a := &domain.StatsFilters{Channel: &lower}
	b := &domain.StatsFilters{Channel: &upper}
	require.Equal(t, a.Signature(), b.Signature())

	queryA, argsA, err := buildFilteredSelect(a).ToSql()
	require.NoError(t, err)

	queryB, argsB, err := buildFilteredSelect(b).ToSql()
	require.NoError(t, err)

	assert.Equal(t, queryA, queryB)
	assert.Equal(t, argsA, argsB)
}

func TestBuildFilteredSelect_DateRange(t *testing.T) {
	dateFrom := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dateTo := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	query, args, err := buildFilteredSelect(&domain.StatsFilters{
		DateFrom: &dateFrom,
		DateTo:   &dateTo,
	}).ToSql()

	require.NoError(t, err)
	assert.Contains(t, query, "cr.date >= $1")
	assert.Contains(t, query, "cr.date <= $2")
	assert.Equal(t, []interface{}{"2024-01-01", "2024-01-31"}, args)
}
