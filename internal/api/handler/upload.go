package handler

import (
	"encoding/csv"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/vfg2006/adtech-analytics-api/internal/config"
	"github.com/vfg2006/adtech-analytics-api/internal/domain"
	"github.com/vfg2006/adtech-analytics-api/internal/usecases/aggregating"
	"github.com/vfg2006/adtech-analytics-api/pkg/apiErrors"
	"github.com/vfg2006/adtech-analytics-api/pkg/log"
)

// UploadData recebe um arquivo CSV de campanha via multipart, normaliza e
// persiste as linhas válidas e retorna o relatório completo da ingestão
func UploadData(service aggregating.Aggregator, cfg *config.Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		maxBytes := int64(cfg.Upload.MaxFileSizeMB) << 20
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

		file, header, err := r.FormFile("file")
		if err != nil {
			logger.WithError(err).Warn("upload: arquivo ausente ou inválido na requisição")
			apiErrors.WriteError(w, apiErrors.ErrInvalidUploadFile, "Arquivo de upload ausente ou inválido", nil)
			return
		}
		defer file.Close()

		if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
			logger.WithField("filename", header.Filename).Warn("upload: extensão de arquivo não suportada")
			apiErrors.WriteError(w, apiErrors.ErrInvalidUploadFile, "Apenas arquivos CSV são aceitos", nil)
			return
		}

		rows, err := parseCSV(file)
		if err != nil {
			logger.WithError(err).Warn("upload: falha ao interpretar o CSV")
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Não foi possível interpretar o arquivo CSV", nil)
			return
		}

		report, err := service.Ingest(r.Context(), rows)
		if err != nil {
			if errors.Is(err, aggregating.ErrStorageUnavailable) {
				logger.WithError(err).Error("upload: armazenamento indisponível")
				apiErrors.WriteError(w, apiErrors.ErrStorageUnavailable, "Armazenamento indisponível, nada foi persistido", nil)
				return
			}

			logger.WithError(err).Error("upload: erro inesperado na ingestão")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao processar o upload", nil)
			return
		}

		logger.WithFields(log.Fields{
			"batch_id": report.BatchID,
			"accepted": report.AcceptedCount,
			"rejected": len(report.Rejected),
		}).Info("upload: arquivo processado")

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			logger.WithError(err).Error("upload: erro ao codificar resposta")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
		}
	})
}

// parseCSV converte o arquivo em linhas brutas indexadas pelo cabeçalho.
// Colunas desconhecidas seguem no mapa e são ignoradas pela normalização.
func parseCSV(reader io.Reader) ([]domain.RawRow, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "cabeçalho ausente")
	}

	columns := make([]string, len(header))
	for i, column := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(column))
	}

	rows := make([]domain.RawRow, 0)
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		row := make(domain.RawRow, len(columns))
		for i, column := range columns {
			if i < len(record) {
				row[column] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
