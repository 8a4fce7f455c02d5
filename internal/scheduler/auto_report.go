package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/buyclientuz-pixel/targetbot-sub000/internal/config"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/usecases/reporting"
)

// AutoReportConfig representa a configuração do agendador de relatórios automáticos
type AutoReportConfig struct {
	CronSchedule     string
	ToleranceMinutes int
	SyncEnabled      bool
}

// AutoReportService gerencia o agendamento e o disparo dos relatórios automáticos
type AutoReportService struct {
	scheduler          *gocron.Scheduler
	config             AutoReportConfig
	reporter           reporting.Reporter
	runActive          bool
	runMutex           sync.Mutex
	lastRunStartedAt   time.Time
	lastRunCompletedAt time.Time
}

// NewAutoReportService cria uma nova instância do serviço de relatórios automáticos
func NewAutoReportService(reporter reporting.Reporter, appConfig *config.Config) *AutoReportService {
	reportConfig := AutoReportConfig{
		CronSchedule:     appConfig.AutoReport.CronSchedule,
		ToleranceMinutes: appConfig.AutoReport.ToleranceMinutes,
		SyncEnabled:      appConfig.AutoReport.Enabled,
	}

	scheduler := gocron.NewScheduler(time.UTC)

	logrus.WithFields(logrus.Fields{
		"cron_schedule":     reportConfig.CronSchedule,
		"tolerance_minutes": reportConfig.ToleranceMinutes,
		"sync_enabled":      reportConfig.SyncEnabled,
	}).Info("Configuração do agendador de relatórios automáticos carregada")

	return &AutoReportService{
		scheduler: scheduler,
		config:    reportConfig,
		reporter:  reporter,
	}
}

// Start inicia o agendador. O cron roda em intervalo menor que a janela de
// tolerância dos horários, então nenhum disparo devido é perdido.
func (s *AutoReportService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Relatórios automáticos desabilitados por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de relatórios automáticos")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.runReports()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar os relatórios automáticos: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de relatórios automáticos")
		s.scheduler.Stop()
	}()

	return nil
}

func (s *AutoReportService) runReports() {
	s.runMutex.Lock()
	if s.runActive {
		s.runMutex.Unlock()
		logrus.Info("Disparo de relatórios já em andamento, ignorando")
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

	logrus.Info("Verificando horários de relatório devidos")

	if err := s.reporter.RunAutoReports(startTime.UTC()); err != nil {
		logrus.WithError(err).Error("Erro no disparo dos relatórios automáticos")
		return
	}

	logrus.WithField("duration", time.Since(startTime).String()).Info("Verificação de relatórios concluída")

	s.lastRunCompletedAt = time.Now()
}

// TriggerManualSync dispara manualmente a verificação de relatórios
func (s *AutoReportService) TriggerManualSync() {
	s.runMutex.Lock()
	if s.runActive {
		s.runMutex.Unlock()
		logrus.Info("Disparo de relatórios já em andamento, ignorando solicitação manual")
		return
	}
	s.runMutex.Unlock()

	logrus.Info("Disparo manual dos relatórios automáticos")
	go s.runReports()
}

// GetStatus retorna o status atual do agendador
func (s *AutoReportService) GetStatus() map[string]any {
	return map[string]any{
		"sync_enabled":          s.config.SyncEnabled,
		"sync_cron":             s.config.CronSchedule,
		"tolerance_minutes":     s.config.ToleranceMinutes,
		"last_run_started_at":   s.lastRunStartedAt,
		"last_run_completed_at": s.lastRunCompletedAt,
	}
}
