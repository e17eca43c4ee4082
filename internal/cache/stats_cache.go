package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adtech-analytics-api/internal/domain"
	"github.com/vfg2006/adtech-analytics-api/internal/observability"
)

// ComputeFunc produz o resultado agregado de uma consulta quando o cache não
// pode atendê-la
type ComputeFunc func() (*domain.AggregateResult, error)

// entry é uma entrada do cache. O canal ready é fechado quando a computação
// termina; gen registra a geração do cache no início da computação, para que
// uma invalidação concorrente impeça o armazenamento do resultado antigo.
type entry struct {
	gen       uint64
	createdAt time.Time
	ready     chan struct{}
	value     *domain.AggregateResult
	err       error
}

// StatsCache memoiza resultados de consultas agregadas por assinatura de
// filtros, com TTL aplicado de forma preguiçosa na leitura e invalidação
// completa a cada escrita bem-sucedida.
//
// Consultas concorrentes com a mesma assinatura compartilham uma única
// computação. O cache nunca retorna erro próprio: erros de computação são
// propagados sem serem armazenados.
type StatsCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*entry
	gen     uint64
}

// New cria um cache de estatísticas com o TTL informado
func New(ttl time.Duration) *StatsCache {
	return &StatsCache{
		ttl:     ttl,
		entries: make(map[string]*entry),
	}
}

// GetOrCompute retorna o valor cacheado para a assinatura, se ainda válido,
// ou executa compute e armazena o resultado.
func (c *StatsCache) GetOrCompute(signature string, compute ComputeFunc) (*domain.AggregateResult, error) {
	c.mu.Lock()

	if existing, ok := c.entries[signature]; ok {
		select {
		case <-existing.ready:
			if existing.err == nil && time.Since(existing.createdAt) < c.ttl {
				c.mu.Unlock()

				observability.CacheHits.Inc()
				logrus.WithField("signature", signature).Debug("Cache hit")
				return existing.value, nil
			}

			// Entrada expirada: remover e recomputar abaixo
			delete(c.entries, signature)

		default:
			// Computação em andamento para a mesma assinatura: aguardar e
			// compartilhar o resultado em vez de computar em paralelo
			c.mu.Unlock()

			<-existing.ready
			return existing.value, existing.err
		}
	}

	pending := &entry{gen: c.gen, ready: make(chan struct{})}
	c.entries[signature] = pending
	c.mu.Unlock()

	observability.CacheMisses.Inc()
	logrus.WithField("signature", signature).Debug("Cache miss, computando resultado")

	value, err := compute()

	c.mu.Lock()
	pending.value = value
	pending.err = err
	pending.createdAt = time.Now()
	close(pending.ready)

	// Erros nunca ficam no cache. Se uma invalidação ocorreu durante a
	// computação, o resultado antigo também não pode repovoar o cache.
	if err != nil || pending.gen != c.gen {
		if c.entries[signature] == pending {
			delete(c.entries, signature)
		}
	}
	c.mu.Unlock()

	return value, err
}

// InvalidateAll limpa o cache inteiro. Chamado após toda escrita
// bem-sucedida: um único registro novo pode afetar qualquer agregado.
func (c *StatsCache) InvalidateAll() {
	c.mu.Lock()
	c.gen++
	c.entries = make(map[string]*entry)
	c.mu.Unlock()

	observability.CacheInvalidations.Inc()
	logrus.Debug("Cache de estatísticas invalidado")
}

// Sweep remove entradas expiradas e retorna quantas foram removidas.
// A expiração preguiçosa na leitura já garante a correção; a varredura só
// libera memória de assinaturas que deixaram de ser consultadas.
func (c *StatsCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for signature, existing := range c.entries {
		select {
		case <-existing.ready:
			if time.Since(existing.createdAt) >= c.ttl {
				delete(c.entries, signature)
				removed++
			}
		default:
			// computação em andamento, nunca expira aqui
		}
	}

	return removed
}

// Stats resume o estado atual do cache
type Stats struct {
	TotalEntries int      `json:"total_entries"`
	Keys         []string `json:"cache_keys"`
	TTLSeconds   int      `json:"ttl_seconds"`
}

// Stats lista as assinaturas atualmente armazenadas
func (c *StatsCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for signature := range c.entries {
		keys = append(keys, signature)
	}
	sort.Strings(keys)

	return Stats{
		TotalEntries: len(keys),
		Keys:         keys,
		TTLSeconds:   int(c.ttl.Seconds()),
	}
}
