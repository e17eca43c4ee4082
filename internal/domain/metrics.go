package domain

import (
	"sort"
	"time"

	"github.com/vfg2006/adtech-analytics-api/pkg/utils"
)

// ComputeRecordMetrics deriva CTR e taxa de conversão de um registro.
// É uma função pura e idempotente: recalcular sobre o mesmo registro produz
// os mesmos valores.
//
// CTR é nulo quando impressions está ausente ou é zero; a taxa de conversão é
// nula quando clicks é zero. Clicks maior que impressions não é corrigido nem
// rejeitado aqui — o sinal de qualidade fica a cargo do chamador.
func ComputeRecordMetrics(record *CampaignRecord) *CampaignRecord {
	if record == nil {
		return nil
	}

	record.CTR = nil
	if record.Impressions != nil && *record.Impressions > 0 {
		ctr := utils.RoundWithTwoDecimalPlace(float64(record.Clicks) / float64(*record.Impressions) * 100)
		record.CTR = &ctr
	}

	record.ConversionRate = nil
	if record.Clicks > 0 {
		rate := utils.RoundWithTwoDecimalPlace(float64(record.Conversions) / float64(record.Clicks) * 100)
		record.ConversionRate = &rate
	}

	return record
}

// AggregateRecords soma os registros e recalcula as taxas a partir dos totais.
// As taxas agregadas nunca são a média das taxas por linha — isso distorceria
// canais com poucas amostras.
func AggregateRecords(records []*CampaignRecord) *AggregateResult {
	result := &AggregateResult{
		ByChannel: make(map[string]*ChannelAggregate),
	}

	for _, record := range records {
		if record == nil {
			continue
		}

		channel, ok := result.ByChannel[record.Channel]
		if !ok {
			channel = &ChannelAggregate{}
			result.ByChannel[record.Channel] = channel
		}

		if record.Impressions != nil {
			result.TotalImpressions += *record.Impressions
			channel.TotalImpressions += *record.Impressions
		}
		if record.Cost != nil {
			result.TotalCost += *record.Cost
			channel.TotalCost += *record.Cost
		}

		result.TotalClicks += record.Clicks
		result.TotalConversions += record.Conversions
		result.RecordCount++

		channel.TotalClicks += record.Clicks
		channel.TotalConversions += record.Conversions
		channel.RecordCount++
	}

	result.TotalCost = utils.RoundWithTwoDecimalPlace(result.TotalCost)
	result.OverallCTR = rateOf(result.TotalClicks, result.TotalImpressions)
	result.OverallConversionRate = rateOf(result.TotalConversions, result.TotalClicks)

	for _, channel := range result.ByChannel {
		channel.TotalCost = utils.RoundWithTwoDecimalPlace(channel.TotalCost)
		channel.OverallCTR = rateOf(channel.TotalClicks, channel.TotalImpressions)
		channel.OverallConversionRate = rateOf(channel.TotalConversions, channel.TotalClicks)
	}

	return result
}

// rateOf calcula numerador/denominador como percentual, ou nulo se o
// denominador for zero
func rateOf(numerator, denominator int64) *float64 {
	if denominator <= 0 {
		return nil
	}
	rate := utils.RoundWithTwoDecimalPlace(float64(numerator) / float64(denominator) * 100)
	return &rate
}

// BuildQualityReport resume a qualidade dos registros aceitos de um lote:
// total, duplicatas (mesma data+canal+campanha), canais e intervalo de datas
func BuildQualityReport(records []*CampaignRecord) *DataQualityReport {
	report := &DataQualityReport{
		TotalRows: len(records),
		Channels:  []string{},
	}

	seen := make(map[string]bool)
	channels := make(map[string]bool)
	var minDate, maxDate time.Time

	for _, record := range records {
		campaign := ""
		if record.Campaign != nil {
			campaign = *record.Campaign
		}

		key := record.Date.Format(time.DateOnly) + "|" + record.Channel + "|" + campaign
		if seen[key] {
			report.DuplicateRows++
		}
		seen[key] = true
		channels[record.Channel] = true

		if minDate.IsZero() || record.Date.Before(minDate) {
			minDate = record.Date
		}
		if maxDate.IsZero() || record.Date.After(maxDate) {
			maxDate = record.Date
		}
	}

	for channel := range channels {
		report.Channels = append(report.Channels, channel)
	}
	sort.Strings(report.Channels)

	if !minDate.IsZero() {
		start := minDate.Format(time.DateOnly)
		end := maxDate.Format(time.DateOnly)
		report.DateStart = &start
		report.DateEnd = &end
	}

	return report
}
