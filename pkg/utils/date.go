package utils

import (
	"fmt"
	"strings"
	"time"
)

// ParseDate interpreta um parâmetro de data opcional no formato YYYY-MM-DD.
// Retorna nil quando a string é vazia.
func ParseDate(dateStr string) (*time.Time, error) {
	if strings.TrimSpace(dateStr) == "" {
		return nil, nil
	}

	date, err := time.Parse(time.DateOnly, strings.TrimSpace(dateStr))
	if err != nil {
		return nil, fmt.Errorf("data inválida %q: esperado formato YYYY-MM-DD", dateStr)
	}

	return &date, nil
}
