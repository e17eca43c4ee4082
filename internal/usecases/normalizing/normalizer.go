package normalizing

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adtech-analytics-api/internal/domain"
)

// Colunas reconhecidas no upload. Colunas fora desta lista são ignoradas.
const (
	ColumnDate        = "date"
	ColumnCampaign    = "campaign"
	ColumnChannel     = "channel"
	ColumnImpressions = "impressions"
	ColumnClicks      = "clicks"
	ColumnCost        = "cost"
	ColumnConversions = "conversions"
)

// Formatos de data aceitos para a coluna date
var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// Normalize valida e converte linhas brutas em registros de campanha.
//
// Campos obrigatórios: date, channel, clicks e conversions. Uma linha com
// campo obrigatório ausente, tipo inválido ou valor negativo é rejeitada com
// o índice original (base 0) e o motivo; a falha de uma linha nunca aborta o
// restante do lote. Linhas duplicadas não são deduplicadas — cada uma vira um
// registro independente e a agregação soma entre duplicatas.
func Normalize(rows []domain.RawRow) ([]*domain.CampaignRecord, []domain.RejectedRow) {
	valid := make([]*domain.CampaignRecord, 0, len(rows))
	rejected := make([]domain.RejectedRow, 0)

	for index, row := range rows {
		record, reason, ok := normalizeRow(row)
		if !ok {
			rejected = append(rejected, domain.RejectedRow{Index: index, Reason: reason})
			continue
		}

		valid = append(valid, record)
	}

	logrus.WithFields(logrus.Fields{
		"total_rows": len(rows),
		"accepted":   len(valid),
		"rejected":   len(rejected),
	}).Info("Normalização de linhas concluída")

	return valid, rejected
}

// normalizeRow converte uma única linha. Retorna o motivo de rejeição quando
// a linha é inválida.
func normalizeRow(row domain.RawRow) (*domain.CampaignRecord, domain.ReasonCode, bool) {
	record := &domain.CampaignRecord{}

	// date e channel são obrigatórios
	rawDate := field(row, ColumnDate)
	if rawDate == "" {
		return nil, domain.ReasonMissingField, false
	}

	date, ok := parseDate(rawDate)
	if !ok {
		return nil, domain.ReasonInvalidType, false
	}
	record.Date = date

	channel := field(row, ColumnChannel)
	if channel == "" {
		return nil, domain.ReasonMissingField, false
	}
	record.Channel = channel

	// clicks e conversions são contagens obrigatórias e não-negativas
	clicks, reason, ok := parseRequiredCount(row, ColumnClicks)
	if !ok {
		return nil, reason, false
	}
	record.Clicks = clicks

	conversions, reason, ok := parseRequiredCount(row, ColumnConversions)
	if !ok {
		return nil, reason, false
	}
	record.Conversions = conversions

	// impressions, campaign e cost são opcionais: ausentes viram nulos, mas
	// quando presentes precisam ser válidos
	if raw := field(row, ColumnImpressions); raw != "" {
		impressions, reason, ok := parseCount(raw)
		if !ok {
			return nil, reason, false
		}
		record.Impressions = &impressions
	}

	if raw := field(row, ColumnCampaign); raw != "" {
		campaign := raw
		record.Campaign = &campaign
	}

	if raw := field(row, ColumnCost); raw != "" {
		cost, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(cost) || math.IsInf(cost, 0) {
			return nil, domain.ReasonInvalidType, false
		}
		if cost < 0 {
			return nil, domain.ReasonNegativeValue, false
		}
		record.Cost = &cost
	}

	return record, "", true
}

func field(row domain.RawRow, column string) string {
	return strings.TrimSpace(row[column])
}

func parseRequiredCount(row domain.RawRow, column string) (int64, domain.ReasonCode, bool) {
	raw := field(row, column)
	if raw == "" {
		return 0, domain.ReasonMissingField, false
	}
	return parseCount(raw)
}

// parseCount interpreta uma contagem não-negativa. Valores fracionários com
// parte inteira exata ("892.0") são aceitos, espelhando a coerção numérica
// da origem dos arquivos.
func parseCount(raw string) (int64, domain.ReasonCode, bool) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, domain.ReasonInvalidType, false
	}

	if value < 0 {
		return 0, domain.ReasonNegativeValue, false
	}

	if value != math.Trunc(value) {
		return 0, domain.ReasonInvalidType, false
	}

	return int64(value), "", true
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, raw); err == nil {
			// Apenas a data importa para agregação
			return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
