package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/buyclientuz-pixel/targetbot-sub000/internal/config"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/usecases/syncing"
)

// PortalSyncConfig representa a configuração do agendador de sincronização do portal
type PortalSyncConfig struct {
	CronSchedule string
	AllowPartial bool
	SyncEnabled  bool
}

type projectLister interface {
	ListProjects() ([]*domain.Project, error)
}

// PortalSyncService gerencia o agendamento e execução da sincronização do portal
type PortalSyncService struct {
	scheduler           *gocron.Scheduler
	config              PortalSyncConfig
	projects            projectLister
	syncer              syncing.Syncer
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
}

// NewPortalSyncService cria uma nova instância do serviço de sincronização do portal
func NewPortalSyncService(
	projects projectLister,
	syncer syncing.Syncer,
	appConfig *config.Config,
) *PortalSyncService {
	syncConfig := PortalSyncConfig{
		CronSchedule: appConfig.PortalSync.CronSchedule,
		AllowPartial: appConfig.PortalSync.AllowPartial,
		SyncEnabled:  appConfig.PortalSync.Enabled,
	}

	scheduler := gocron.NewScheduler(time.UTC)

	logrus.WithFields(logrus.Fields{
		"cron_schedule": syncConfig.CronSchedule,
		"allow_partial": syncConfig.AllowPartial,
		"sync_enabled":  syncConfig.SyncEnabled,
	}).Info("Configuração do agendador de sincronização do portal carregada")

	return &PortalSyncService{
		scheduler: scheduler,
		config:    syncConfig,
		projects:  projects,
		syncer:    syncer,
	}
}

// Start inicia o agendador
func (s *PortalSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Sincronização do portal desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de sincronização do portal")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.syncAllProjects()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização do portal: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de sincronização do portal")
		s.scheduler.Stop()
	}()

	return nil
}

// syncAllProjects sincroniza todos os projetos ativos com o portal habilitado
func (s *PortalSyncService) syncAllProjects() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização do portal já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.syncMutex.Unlock()

	startTime := time.Now()
	s.lastSyncStartedAt = startTime

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	logrus.Info("Iniciando sincronização do portal para todos os projetos")

	projects, err := s.projects.ListProjects()
	if err != nil {
		logrus.WithError(err).Error("Erro ao buscar lista de projetos para sincronização do portal")
		return
	}

	synced := 0
	failed := 0

	// Os projetos são processados em sequência para não estourar o limite
	// de requisições da plataforma de anúncios
	for _, project := range projects {
		if !project.Active || !project.PortalEnabled {
			continue
		}

		result, err := s.syncer.SyncPortal(project.ID, syncing.Options{
			AllowPartial: s.config.AllowPartial,
		})
		if err != nil {
			failed++
			logrus.WithError(err).WithField("project_id", project.ID).
				Error("Erro ao sincronizar o projeto com o portal")
			continue
		}

		if result.OK {
			synced++
		} else {
			failed++
		}
	}

	duration := time.Since(startTime)
	logrus.WithFields(logrus.Fields{
		"duration": duration.String(),
		"synced":   synced,
		"failed":   failed,
	}).Info("Sincronização do portal concluída")

	s.lastSyncCompletedAt = time.Now()
}

// TriggerManualSync inicia manualmente uma sincronização do portal
func (s *PortalSyncService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização do portal já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando sincronização manual do portal")
	go s.syncAllProjects()
}

// GetStatus retorna o status atual do agendador
func (s *PortalSyncService) GetStatus() map[string]any {
	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_allow_partial":     s.config.AllowPartial,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
	}
}
