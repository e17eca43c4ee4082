package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ReasonCode identifica o motivo de rejeição de uma linha durante a normalização
type ReasonCode string

const (
	ReasonMissingField  ReasonCode = "MissingField"
	ReasonInvalidType   ReasonCode = "InvalidType"
	ReasonNegativeValue ReasonCode = "NegativeValue"
)

// RawRow é uma linha bruta do upload, indexada pelo nome da coluna.
// Colunas desconhecidas são ignoradas pela normalização.
type RawRow map[string]string

// CampaignRecord representa um registro de campanha validado e normalizado.
// Após a normalização, Date, Channel, Clicks e Conversions estão sempre
// presentes e bem tipados; os demais campos são opcionais.
type CampaignRecord struct {
	ID             int64     `json:"id,omitempty"`
	Date           time.Time `json:"date"`
	Channel        string    `json:"channel"`
	Campaign       *string   `json:"campaign,omitempty"`
	Impressions    *int64    `json:"impressions,omitempty"`
	Clicks         int64     `json:"clicks"`
	Conversions    int64     `json:"conversions"`
	Cost           *float64  `json:"cost,omitempty"`
	CTR            *float64  `json:"ctr"`
	ConversionRate *float64  `json:"conversion_rate"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

// RejectedRow registra uma linha rejeitada com o índice original (base 0)
type RejectedRow struct {
	Index  int        `json:"index"`
	Reason ReasonCode `json:"reason"`
}

// RowWarning sinaliza um problema de qualidade que não bloqueia a ingestão,
// como clicks maior que impressions (métrica logicamente inconsistente)
type RowWarning struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// IngestReport é o resultado completo de uma ingestão: o que foi aceito,
// o que foi rejeitado linha a linha e os avisos de qualidade
type IngestReport struct {
	BatchID       string             `json:"batch_id"`
	AcceptedCount int                `json:"accepted_count"`
	Rejected      []RejectedRow      `json:"rejected"`
	Warnings      []RowWarning       `json:"warnings,omitempty"`
	Quality       *DataQualityReport `json:"quality,omitempty"`
}

// DataQualityReport resume a qualidade dos registros aceitos em um lote
type DataQualityReport struct {
	TotalRows     int      `json:"total_rows"`
	DuplicateRows int      `json:"duplicate_rows"`
	Channels      []string `json:"channels"`
	DateStart     *string  `json:"date_start"`
	DateEnd       *string  `json:"date_end"`
}

// StatsFilters são os filtros aceitos pela consulta de estatísticas.
// Campos nulos significam "sem limite".
type StatsFilters struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Channel  *string
}

// Signature gera a assinatura canônica dos filtros, usada como chave de cache.
// Filtros semanticamente idênticos produzem a mesma assinatura: as chaves são
// ordenadas lexicograficamente e o intervalo de datas é normalizado para
// limites de dia [início, fim).
func (f *StatsFilters) Signature() string {
	parts := make([]string, 0, 3)

	if f != nil {
		if f.Channel != nil && *f.Channel != "" {
			parts = append(parts, fmt.Sprintf("channel=%s", strings.ToLower(strings.TrimSpace(*f.Channel))))
		}
		if f.DateFrom != nil {
			parts = append(parts, fmt.Sprintf("date_from=%s", dayFloor(*f.DateFrom).Format(time.DateOnly)))
		}
		if f.DateTo != nil {
			// limite exclusivo: o dia seguinte à data final informada
			parts = append(parts, fmt.Sprintf("date_to=%s", dayFloor(*f.DateTo).AddDate(0, 0, 1).Format(time.DateOnly)))
		}
	}

	if len(parts) == 0 {
		return "all"
	}

	sort.Strings(parts)
	return strings.Join(parts, "|")
}

func dayFloor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ChannelAggregate é o sub-agregado de um canal específico
type ChannelAggregate struct {
	TotalImpressions      int64    `json:"total_impressions"`
	TotalClicks           int64    `json:"total_clicks"`
	TotalConversions      int64    `json:"total_conversions"`
	TotalCost             float64  `json:"total_cost"`
	OverallCTR            *float64 `json:"overall_ctr"`
	OverallConversionRate *float64 `json:"overall_conversion_rate"`
	RecordCount           int      `json:"record_count"`
}

// AggregateResult é a resposta da consulta de estatísticas: totais gerais,
// taxas recalculadas a partir das somas e a quebra por canal
type AggregateResult struct {
	TotalImpressions      int64                        `json:"total_impressions"`
	TotalClicks           int64                        `json:"total_clicks"`
	TotalConversions      int64                        `json:"total_conversions"`
	TotalCost             float64                      `json:"total_cost"`
	OverallCTR            *float64                     `json:"overall_ctr"`
	OverallConversionRate *float64                     `json:"overall_conversion_rate"`
	RecordCount           int                          `json:"record_count"`
	ByChannel             map[string]*ChannelAggregate `json:"by_channel"`
}
