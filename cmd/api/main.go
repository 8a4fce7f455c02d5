package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/integrator/meta"
	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/integrator/meta/metaclient"
	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/notifier/telegram"
	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/repository"
	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/storage"
	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/storage/bolt"
	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/storage/memory"
	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/storage/postgres"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/api"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/cache"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/config"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/scheduler"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/usecases/alerting"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/usecases/insighting"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/usecases/reporting"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/usecases/syncing"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kv, blobs, closeStorage := openStorage(ctx, cfg)
	defer closeStorage()

	projectRepo := repository.NewProjectRepository(blobs)
	tokenRepo := repository.NewTokenRepository(cfg, kv)
	leadRepo := repository.NewLeadRepository(blobs)
	alertStateRepo := repository.NewAlertStateRepository(kv)
	syncStateRepo := repository.NewSyncStateRepository(kv)
	reportScheduleRepo := repository.NewReportScheduleRepository(kv)

	cacheStore := cache.NewStore(kv)

	metaClient := metaclient.NewClient(cfg)
	metaIntegrator := meta.New(cfg, metaClient)

	notifier, err := telegram.NewNotifier(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao inicializar o notificador do Telegram")
	}

	insightService := insighting.NewService(cfg, metaIntegrator, projectRepo, tokenRepo, cacheStore)
	syncService := syncing.NewService(insightService, metaIntegrator, leadRepo, syncStateRepo, cacheStore)
	alertService := alerting.NewService(cfg, insightService, projectRepo, tokenRepo, leadRepo, alertStateRepo, notifier)
	reportService := reporting.NewService(cfg, insightService, projectRepo, reportScheduleRepo, notifier)

	// Inicializa os agendadores
	portalSyncService := scheduler.NewPortalSyncService(projectRepo, syncService, cfg)
	alertSyncService := scheduler.NewAlertSyncService(alertService, cfg)
	autoReportService := scheduler.NewAutoReportService(reportService, cfg)

	// Inicia os agendadores em background
	if err := portalSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de sincronização do portal")
	} else {
		logrus.Info("Agendador de sincronização do portal iniciado com sucesso")
	}

	if err := alertSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de alertas")
	} else {
		logrus.Info("Agendador de alertas iniciado com sucesso")
	}

	if err := autoReportService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de relatórios automáticos")
	} else {
		logrus.Info("Agendador de relatórios automáticos iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		insightService,
		syncService,
		portalSyncService,
		alertSyncService,
		autoReportService,
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
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// openStorage abre o driver de armazenamento configurado e retorna as duas
// visões usadas pelos repositórios, além da função de encerramento
func openStorage(ctx context.Context, cfg *config.Config) (storage.KVStore, storage.BlobStore, func()) {
	switch cfg.Storage.Driver {
	case "postgres":
		conn, err := postgres.NewConnection(ctx, cfg.Storage)
		if err != nil {
			logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
		}

		if err := conn.Ping(ctx); err != nil {
			logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
		}

		if err := conn.EnsureSchema(ctx); err != nil {
			logrus.WithError(err).Fatal("Erro ao preparar o esquema do banco de dados")
		}

		logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
		return postgres.NewKVStore(conn), postgres.NewBlobStore(conn), func() { conn.Close() }

	case "bolt":
		store, err := bolt.Open(cfg.Storage.BoltPath)
		if err != nil {
			logrus.WithError(err).Fatal("Erro ao abrir o arquivo do Bolt")
		}

		logrus.WithField("path", cfg.Storage.BoltPath).Info("Armazenamento Bolt aberto com sucesso")
		return store.KV(), store.Blob(), func() { store.Close() }

	case "memory":
		logrus.Warn("Armazenamento em memória habilitado, os dados não sobrevivem a reinícios")
		return memory.NewKVStore(), memory.NewBlobStore(), func() {}

	default:
		logrus.Fatalf("Driver de armazenamento desconhecido: %s", cfg.Storage.Driver)
		return nil, nil, nil
	}
}
