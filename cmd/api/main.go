package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adtech-analytics-api/infrastructure/database/postgres"
	"github.com/vfg2006/adtech-analytics-api/infrastructure/repository"
	"github.com/vfg2006/adtech-analytics-api/internal/api"
	"github.com/vfg2006/adtech-analytics-api/internal/cache"
	"github.com/vfg2006/adtech-analytics-api/internal/config"
	"github.com/vfg2006/adtech-analytics-api/internal/scheduler"
	"github.com/vfg2006/adtech-analytics-api/internal/usecases/aggregating"
	"github.com/vfg2006/adtech-analytics-api/internal/usecases/authenticating"
)

func main() {
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	recordRepo := repository.NewCampaignRecordRepository(pgConn)
	userRepo := repository.NewUserRepository(pgConn)

	authenticator := authenticating.NewService(userRepo, cfg)

	// O cache pertence ao serviço de agregação: uma instância por processo,
	// injetada explicitamente, nunca um singleton escondido
	var statsCache *cache.StatsCache
	if cfg.StatsCache.Enabled {
		statsCache = cache.New(time.Duration(cfg.StatsCache.TTLSeconds) * time.Second)
	}

	aggregationService := aggregating.NewService(cfg, recordRepo)
	if statsCache != nil {
		aggregationService = aggregationService.(*aggregating.Service).WithCache(statsCache)

		cacheSweepService := scheduler.NewCacheSweepService(statsCache, cfg)
		if err := cacheSweepService.Start(ctx); err != nil {
			logrus.WithError(err).Error("Erro ao iniciar o agendador de varredura do cache")
		}
	}

	server, err := api.New(
		cfg,
		aggregationService,
		authenticator,
		statsCache,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	if err := conn.Ping(ctx); err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
