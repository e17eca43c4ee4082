package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/adtech-analytics-api/infrastructure/database/postgres"
	"github.com/vfg2006/adtech-analytics-api/internal/domain"
)

const (
	campaignRecordsTable = "campaign_records cr"

	campaignRecordColumns = "cr.id, cr.date, cr.channel, cr.campaign, cr.impressions, cr.clicks, cr.conversions, cr.cost, cr.ctr, cr.conversion_rate, cr.created_at"
)

// CampaignRecordRepository é o contrato de armazenamento dos registros de
// campanha. Registros nunca são alterados no lugar: correções entram como
// novas linhas.
type CampaignRecordRepository interface {
	// SaveBatch persiste todos os registros em uma única transação:
	// ou todos entram, ou nenhum entra
	SaveBatch(ctx context.Context, records []*domain.CampaignRecord) error

	// GetByFilters retorna os registros que satisfazem os filtros; filtros
	// nulos significam "sem limite"
	GetByFilters(ctx context.Context, filters *domain.StatsFilters) ([]*domain.CampaignRecord, error)
}

type campaignRecordRepository struct {
	conn *postgres.Connection
}

func NewCampaignRecordRepository(conn *postgres.Connection) CampaignRecordRepository {
	return &campaignRecordRepository{
		conn: conn,
	}
}

func (r *campaignRecordRepository) SaveBatch(ctx context.Context, records []*domain.CampaignRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		builder := squirrel.StatementBuilder.
			Insert("campaign_records").
			Columns("date", "channel", "campaign", "impressions", "clicks", "conversions", "cost", "ctr", "conversion_rate")

		for _, record := range records {
			builder = builder.Values(
				record.Date.Format("2006-01-02"),
				record.Channel,
				record.Campaign,
				record.Impressions,
				record.Clicks,
				record.Conversions,
				record.Cost,
				record.CTR,
				record.ConversionRate,
			)
		}

		query, args, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
		if err != nil {
			return fmt.Errorf("erro ao construir a query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if pqErr, ok := err.(*pq.Error); ok {
				return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
			}
			return fmt.Errorf("erro ao executar a query: %w", err)
		}

		return nil
	})
}

func (r *campaignRecordRepository) GetByFilters(ctx context.Context, filters *domain.StatsFilters) ([]*domain.CampaignRecord, error) {
	query, args, err := buildFilteredSelect(filters).ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	records := make([]*domain.CampaignRecord, 0)
	for rows.Next() {
		record, err := r.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear registro de campanha: %w", err)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return records, nil
}

// buildFilteredSelect monta a consulta de registros para os filtros. O canal
// é comparado sem distinção de maiúsculas, a mesma equivalência usada pela
// assinatura de cache dos filtros: filtros que compartilham chave de cache
// precisam retornar as mesmas linhas aqui.
func buildFilteredSelect(filters *domain.StatsFilters) squirrel.SelectBuilder {
	builder := squirrel.
		Select(campaignRecordColumns).
		From(campaignRecordsTable).
		OrderBy("cr.date ASC, cr.id ASC").
		PlaceholderFormat(squirrel.Dollar)

	if filters != nil {
		if filters.DateFrom != nil {
			builder = builder.Where(squirrel.GtOrEq{"cr.date": filters.DateFrom.Format("2006-01-02")})
		}
		if filters.DateTo != nil {
			builder = builder.Where(squirrel.LtOrEq{"cr.date": filters.DateTo.Format("2006-01-02")})
		}
		if filters.Channel != nil && *filters.Channel != "" {
			channel := strings.ToLower(strings.TrimSpace(*filters.Channel))
			builder = builder.Where(squirrel.Expr("LOWER(cr.channel) = ?", channel))
		}
	}

	return builder
}

func (r *campaignRecordRepository) scanRecord(rows *sql.Rows) (*domain.CampaignRecord, error) {
	record := &domain.CampaignRecord{}

	var (
		campaign       sql.NullString
		impressions    sql.NullInt64
		cost           sql.NullFloat64
		ctr            sql.NullFloat64
		conversionRate sql.NullFloat64
		date           time.Time
	)

	err := rows.Scan(
		&record.ID,
		&date,
		&record.Channel,
		&campaign,
		&impressions,
		&record.Clicks,
		&record.Conversions,
		&cost,
		&ctr,
		&conversionRate,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	if campaign.Valid {
		record.Campaign = &campaign.String
	}
	if impressions.Valid {
		record.Impressions = &impressions.Int64
	}
	if cost.Valid {
		record.Cost = &cost.Float64
	}
	if ctr.Valid {
		record.CTR = &ctr.Float64
	}
	if conversionRate.Valid {
		record.ConversionRate = &conversionRate.Float64
	}

	return record, nil
}
