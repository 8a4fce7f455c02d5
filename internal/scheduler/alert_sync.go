package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/buyclientuz-pixel/targetbot-sub000/internal/config"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/usecases/alerting"
)

// AlertSyncConfig representa a configuração do agendador de alertas
type AlertSyncConfig struct {
	CronSchedule string
	SyncEnabled  bool
}

// AlertSyncService gerencia o agendamento e execução da rodada de alertas
type AlertSyncService struct {
	scheduler          *gocron.Scheduler
	config             AlertSyncConfig
	alerter            alerting.Alerter
	runActive          bool
	runMutex           sync.Mutex
	lastRunStartedAt   time.Time
	lastRunCompletedAt time.Time
}

// NewAlertSyncService cria uma nova instância do serviço de alertas
func NewAlertSyncService(alerter alerting.Alerter, appConfig *config.Config) *AlertSyncService {
	alertConfig := AlertSyncConfig{
		CronSchedule: appConfig.AlertSync.CronSchedule,
		SyncEnabled:  appConfig.AlertSync.Enabled,
	}

	scheduler := gocron.NewScheduler(time.UTC)

	logrus.WithFields(logrus.Fields{
		"cron_schedule": alertConfig.CronSchedule,
		"sync_enabled":  alertConfig.SyncEnabled,
	}).Info("Configuração do agendador de alertas carregada")

	return &AlertSyncService{
		scheduler: scheduler,
		config:    alertConfig,
		alerter:   alerter,
	}
}

// Start inicia o agendador
func (s *AlertSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Rodada de alertas desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de alertas")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.runAlerts()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar a rodada de alertas: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de alertas")
		s.scheduler.Stop()
	}()

	return nil
}

func (s *AlertSyncService) runAlerts() {
	s.runMutex.Lock()
	if s.runActive {
		s.runMutex.Unlock()
		logrus.Info("Rodada de alertas já em andamento, ignorando")
		return
	}
	s.runActive = true
	s.runMutex.Unlock()

	startTime := time.Now()
	s.lastRunStartedAt = startTime

	defer func() {
		s.runMutex.Lock()
		s.runActive = false
		s.runMutex.Unlock()
	}()

	logrus.Info("Iniciando rodada de alertas")

	if err := s.alerter.RunAlerts(startTime.UTC()); err != nil {
		logrus.WithError(err).Error("Erro na rodada de alertas")
		return
	}

	logrus.WithField("duration", time.Since(startTime).String()).Info("Rodada de alertas concluída")

	s.lastRunCompletedAt = time.Now()
}

// TriggerManualSync inicia manualmente uma rodada de alertas
func (s *AlertSyncService) TriggerManualSync() {
	s.runMutex.Lock()
	if s.runActive {
		s.runMutex.Unlock()
		logrus.Info("Rodada de alertas já em andamento, ignorando solicitação manual")
		return
	}
	s.runMutex.Unlock()

	logrus.Info("Iniciando rodada manual de alertas")
	go s.runAlerts()
}

// GetStatus retorna o status atual do agendador
func (s *AlertSyncService) GetStatus() map[string]any {
	return map[string]any{
		"sync_enabled":          s.config.SyncEnabled,
		"sync_cron":             s.config.CronSchedule,
		"last_run_started_at":   s.lastRunStartedAt,
		"last_run_completed_at": s.lastRunCompletedAt,
	}
}
