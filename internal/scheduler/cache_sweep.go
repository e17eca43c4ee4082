package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adtech-analytics-api/internal/cache"
	"github.com/vfg2006/adtech-analytics-api/internal/config"
)

// CacheSweepConfig representa a configuração do agendador de varredura do cache
type CacheSweepConfig struct {
	CronSchedule string
	Enabled      bool
}

// CacheSweepService agenda a remoção periódica de entradas expiradas do
// cache de estatísticas. A expiração preguiçosa na leitura já garante a
// correção; a varredura apenas devolve memória de assinaturas abandonadas.
type CacheSweepService struct {
	scheduler  *gocron.Scheduler
	config     CacheSweepConfig
	statsCache *cache.StatsCache

	mu          sync.Mutex
	lastSweepAt time.Time
	lastRemoved int
}

// NewCacheSweepService cria uma nova instância do serviço de varredura do cache
func NewCacheSweepService(statsCache *cache.StatsCache, appConfig *config.Config) *CacheSweepService {
	sweepConfig := CacheSweepConfig{
		CronSchedule: appConfig.CacheSweep.CronSchedule,
		Enabled:      appConfig.CacheSweep.Enabled,
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule": sweepConfig.CronSchedule,
		"enabled":       sweepConfig.Enabled,
	}).Info("Configuração do agendador de varredura do cache carregada")

	return &CacheSweepService{
		scheduler:  gocron.NewScheduler(time.Local),
		config:     sweepConfig,
		statsCache: statsCache,
	}
}

// Start inicia o agendador
func (s *CacheSweepService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("Varredura do cache desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de varredura do cache")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.sweep()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar varredura do cache: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de varredura do cache")
		s.scheduler.Stop()
	}()

	return nil
}

// sweep executa uma varredura e registra o resultado
func (s *CacheSweepService) sweep() {
	removed := s.statsCache.Sweep()

	s.mu.Lock()
	s.lastSweepAt = time.Now()
	s.lastRemoved = removed
	s.mu.Unlock()

	if removed > 0 {
		logrus.WithField("removed", removed).Debug("Entradas expiradas removidas do cache")
	}
}

// LastSweep retorna quando ocorreu a última varredura e quantas entradas
// foram removidas
func (s *CacheSweepService) LastSweep() (time.Time, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSweepAt, s.lastRemoved
}
