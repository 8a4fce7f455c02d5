// Package reporting monta e envia os relatórios automáticos dos projetos.
// Cada projeto define horários "HH:MM" em UTC; um disparo só acontece
// dentro da janela de tolerância do horário e no máximo uma vez por dia
// por horário.
package reporting

import (
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	metadomain "github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/integrator/meta/domain"
	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/notifier/telegram"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/config"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/usecases/insighting"
)

const defaultToleranceMinutes = 5

// Nas segundas-feiras o relatório vira o composto, com a recapitulação
// desde o início da conta além dos quatro períodos base.
const compositeWeekday = time.Monday

const topCampaignLimit = 3

type Service struct {
	cfg       *config.Config
	insights  summaryLoader
	projects  projectLister
	schedules scheduleStore
	notifier  telegram.Notifier
	nowFn     func() time.Time
}

func NewService(
	cfg *config.Config,
	insights summaryLoader,
	projects projectLister,
	schedules scheduleStore,
	notif telegram.Notifier,
) *Service {
	return &Service{
		cfg:       cfg,
		insights:  insights,
		projects:  projects,
		schedules: schedules,
		notifier:  notif,
		nowFn:     time.Now,
	}
}

// RunAutoReports percorre os projetos com relatório habilitado e dispara
// os horários devidos. A falha de um projeto nunca aborta os demais.
func (s *Service) RunAutoReports(now time.Time) error {
	projects, err := s.projects.ListProjects()
	if err != nil {
		return errors.Wrap(err, "erro ao listar os projetos para relatórios")
	}

	for _, project := range projects {
		if !project.Active || !project.Reports.Enabled || len(project.Reports.Slots) == 0 {
			continue
		}

		if err := s.runProject(project, now); err != nil {
			logrus.WithError(err).WithField("project_id", project.ID).
				Error("Erro ao processar os relatórios do projeto")
		}
	}

	return nil
}

func (s *Service) runProject(project *domain.Project, now time.Time) error {
	state, err := s.schedules.Get(project.ID)
	if err != nil {
		return errors.Wrap(err, "erro ao carregar o estado de agendamento")
	}

	if state == nil {
		state = &domain.ReportScheduleState{ProjectID: project.ID}
	}
	if state.Slots == nil {
		state.Slots = make(map[string]time.Time)
	}

	tolerance := time.Duration(s.cfg.AutoReport.ToleranceMinutes) * time.Minute
	if tolerance <= 0 {
		tolerance = defaultToleranceMinutes * time.Minute
	}

	dispatched := false

	for _, slot := range project.Reports.Slots {
		instant, err := slotInstant(slot, now)
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"project_id": project.ID,
				"slot":       slot,
			}).Warn("Horário de relatório inválido, ignorando")
			continue
		}

		if now.Before(instant) || !now.Before(instant.Add(tolerance)) {
			continue
		}

		// Idempotência por dia: se o último disparo do horário já é
		// deste instante em diante, o relatório de hoje já saiu.
		if lastRun, ok := state.Slots[slot]; ok && !lastRun.Before(instant) {
			continue
		}

		if err := s.sendReport(project, now); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"project_id": project.ID,
				"slot":       slot,
			}).Error("Erro ao enviar o relatório automático")
			continue
		}

		state.Slots[slot] = now
		state.LastRunAt = now
		dispatched = true

		logrus.WithFields(logrus.Fields{
			"project_id": project.ID,
			"slot":       slot,
		}).Info("Relatório automático enviado")
	}

	if dispatched {
		if err := s.schedules.Save(state); err != nil {
			return errors.Wrap(err, "erro ao gravar o estado de agendamento")
		}
	}

	return nil
}

// slotInstant resolve o horário "HH:MM" sobre a data atual em UTC
func slotInstant(slot string, now time.Time) (time.Time, error) {
	parsed, err := time.Parse("15:04", slot)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "horário inválido: %s", slot)
	}

	return time.Date(now.Year(), now.Month(), now.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, time.UTC), nil
}

func (s *Service) sendReport(project *domain.Project, now time.Time) error {
	composite := now.UTC().Weekday() == compositeWeekday

	periods := []string{domain.PeriodToday, domain.PeriodYesterday, domain.PeriodWeek, domain.PeriodMonth}
	if composite {
		periods = append(periods, domain.PeriodMax)
	}

	summaries := make(map[string]*domain.SummaryMetrics)
	for _, period := range periods {
		summary, err := s.insights.LoadSummary(project.ID, period)
		if err != nil {
			return errors.Wrapf(err, "erro ao carregar o resumo do período %s", period)
		}
		summaries[period] = summary
	}

	rows, err := s.insights.LoadCampaignInsights(project.ID, domain.PeriodWeek)
	if err != nil {
		logrus.WithError(err).WithField("project_id", project.ID).
			Warn("Erro ao carregar insights de campanha, seção de campanhas omitida")
		rows = nil
	}

	goal := resolveGoal(project, rows)

	// As campanhas são ordenadas pelo valor medido da meta escolhida
	topCampaigns := insighting.MapGoalResults(rows, goal)
	sort.SliceStable(topCampaigns, func(i, j int) bool {
		return topCampaigns[i].Results > topCampaigns[j].Results
	})
	if len(topCampaigns) > topCampaignLimit {
		topCampaigns = topCampaigns[:topCampaignLimit]
	}

	text := renderReport(project, &reportData{
		Summaries:    summaries,
		Goal:         goal,
		TopCampaigns: topCampaigns,
		Composite:    composite,
	})

	return s.notifier.Send(telegram.RouteChat, project, text)
}

// resolveGoal decide a meta principal do relatório: a categoria de
// objetivo com o maior total não nulo nas campanhas da semana; sem
// nenhum total, vale o KPI configurado do projeto.
func resolveGoal(project *domain.Project, rows []metadomain.InsightRow) domain.KPIType {
	totals := insighting.SumGoalCategories(rows)

	var best domain.KPIType
	bestTotal := 0
	for kpi, total := range totals {
		if total > bestTotal || (total == bestTotal && total > 0 && kpi < best) {
			best = kpi
			bestTotal = total
		}
	}

	if bestTotal == 0 {
		return project.KPI.Type
	}

	return best
}
