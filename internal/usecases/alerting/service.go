// Package alerting avalia as condições de alerta de cada projeto e decide,
// via máquina de estados de deduplicação, se a notificação deve ser enviada
// ou suprimida. O estado só é atualizado após o envio confirmado.
package alerting

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/notifier/telegram"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/config"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
	"github.com/buyclientuz-pixel/targetbot-sub000/pkg/utils"
)

const dueSoonDays = 3

type Service struct {
	cfg      *config.Config
	insights campaignLoader
	projects projectLister
	tokens   tokenGetter
	leads    leadLister
	states   alertStateStore
	notifier telegram.Notifier
	nowFn    func() time.Time
}

func NewService(
	cfg *config.Config,
	insights campaignLoader,
	projects projectLister,
	tokens tokenGetter,
	leads leadLister,
	states alertStateStore,
	notif telegram.Notifier,
) *Service {
	return &Service{
		cfg:      cfg,
		insights: insights,
		projects: projects,
		tokens:   tokens,
		leads:    leads,
		states:   states,
		notifier: notif,
		nowFn:    time.Now,
	}
}

// RunAlerts percorre os projetos ativos em sequência e avalia todas as
// condições de alerta. A falha de um projeto é registrada e nunca aborta
// os demais.
func (s *Service) RunAlerts(now time.Time) error {
	projects, err := s.projects.ListProjects()
	if err != nil {
		return errors.Wrap(err, "erro ao listar os projetos para alertas")
	}

	for _, project := range projects {
		if !project.Active || !project.Alerts.Enabled {
			continue
		}

		if err := s.evaluateProject(project, now); err != nil {
			logrus.WithError(err).WithField("project_id", project.ID).
				Error("Erro ao avaliar os alertas do projeto")
		}

		if s.cfg.AlertSync.RequestDelaySeconds > 0 {
			time.Sleep(time.Duration(s.cfg.AlertSync.RequestDelaySeconds) * time.Second)
		}
	}

	return nil
}

func (s *Service) evaluateProject(project *domain.Project, now time.Time) error {
	s.checkBilling(project, now)
	s.checkToken(project, now)
	s.checkCampaigns(project, now)
	s.checkLeads(project, now)

	return nil
}

// checkBilling compara a data de vencimento do projeto com a data atual.
// Vencida → alerta de atraso para o administrador; vencendo em até três
// dias → aviso no chat do projeto.
func (s *Service) checkBilling(project *domain.Project, now time.Time) {
	if project.Billing.DueDate == "" {
		return
	}

	dueDate, err := time.ParseInLocation("2006-01-02", project.Billing.DueDate, time.UTC)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"project_id": project.ID,
			"due_date":   project.Billing.DueDate,
		}).Warn("Data de vencimento inválida, alerta de cobrança ignorado")
		return
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if today.After(dueDate) {
		daysLate := int(today.Sub(dueDate).Hours() / 24)
		text := fmt.Sprintf(
			"⚠️ <b>%s</b>\nPagamento vencido há %d dia(s).\nVencimento: %s\nValor: %s",
			project.Name, daysLate, utils.FormatDateBR(dueDate), utils.FormatMoney(project.Billing.Amount),
		)
		s.dispatch(project, AlertBillingOverdue, BillingEventKey("overdue", project.Billing.DueDate), telegram.RouteAdmin, text, now)
		return
	}

	daysLeft := int(dueDate.Sub(today).Hours() / 24)
	if daysLeft <= dueSoonDays {
		text := fmt.Sprintf(
			"📅 <b>%s</b>\nPagamento vence em %d dia(s).\nVencimento: %s\nValor: %s",
			project.Name, daysLeft, utils.FormatDateBR(dueDate), utils.FormatMoney(project.Billing.Amount),
		)
		s.dispatch(project, AlertBillingDue, BillingEventKey("due", project.Billing.DueDate), telegram.RouteChat, text, now)
	}
}

// checkToken avisa o administrador quando o token de acesso do projeto já
// expirou ou expira dentro do prazo configurado.
func (s *Service) checkToken(project *domain.Project, now time.Time) {
	token, err := s.tokens.GetToken(project.TokenIdentity)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return
		}
		logrus.WithError(err).WithField("project_id", project.ID).
			Warn("Erro ao carregar o token para o alerta de expiração")
		return
	}

	if token.ExpiresAt.IsZero() {
		return
	}

	if token.ExpiresAt.Before(now) {
		text := fmt.Sprintf(
			"🔴 <b>%s</b>\nToken de acesso expirado em %s. A sincronização está interrompida.",
			project.Name, utils.FormatDateBR(token.ExpiresAt),
		)
		s.dispatch(project, AlertTokenExpired, TokenEventKey(token.Identity, 0, false), telegram.RouteAdmin, text, now)
		return
	}

	daysLeft := int(token.ExpiresAt.Sub(now).Hours() / 24)
	if daysLeft <= s.cfg.AlertSync.TokenExpiringInDays {
		text := fmt.Sprintf(
			"🟡 <b>%s</b>\nToken de acesso expira em %d dia(s) (%s). Renove antes do prazo.",
			project.Name, daysLeft, utils.FormatDateBR(token.ExpiresAt),
		)
		s.dispatch(project, AlertTokenExpiring, TokenEventKey(token.Identity, daysLeft, true), telegram.RouteAdmin, text, now)
	}
}

// checkCampaigns avalia duas condições sobre o estado das campanhas:
// orçamento diário abaixo do CPA alvo e campanhas pausadas. A chave de
// evento é o conjunto ordenado de campanhas afetadas, então qualquer
// mudança no conjunto re-dispara o alerta.
func (s *Service) checkCampaigns(project *domain.Project, now time.Time) {
	statuses, err := s.insights.LoadCampaignStatuses(project.ID)
	if err != nil {
		logrus.WithError(err).WithField("project_id", project.ID).
			Warn("Erro ao carregar o status das campanhas para os alertas")
		return
	}

	var belowBudget []string
	var belowNames []string
	var paused []string
	var pausedNames []string

	for _, campaign := range statuses {
		if isPausedStatus(campaign.EffectiveStatus) {
			paused = append(paused, campaign.ID)
			pausedNames = append(pausedNames, campaign.Name)
			continue
		}

		if project.KPI.TargetCPA > 0 && campaign.DailyBudget > 0 && campaign.DailyBudget < project.KPI.TargetCPA {
			belowBudget = append(belowBudget, campaign.ID)
			belowNames = append(belowNames, campaign.Name)
		}
	}

	if len(belowBudget) > 0 {
		text := fmt.Sprintf(
			"💸 <b>%s</b>\nOrçamento diário abaixo do CPA alvo (%s) em %d campanha(s):\n%s",
			project.Name, utils.FormatMoney(project.KPI.TargetCPA), len(belowBudget), bulletList(belowNames),
		)
		s.dispatch(project, AlertBudgetBelowKPI, CampaignSetEventKey(belowBudget), telegram.RouteAdmin, text, now)
	}

	if len(paused) > 0 {
		text := fmt.Sprintf(
			"⏸ <b>%s</b>\n%d campanha(s) pausada(s):\n%s",
			project.Name, len(paused), bulletList(pausedNames),
		)
		s.dispatch(project, AlertCampaignsPaused, CampaignSetEventKey(paused), telegram.RouteAdmin, text, now)
	}
}

// checkLeads avisa o chat do projeto quando existem leads sem resposta há
// mais tempo que o limite configurado. A chave de evento é o lead parado
// mais antigo.
func (s *Service) checkLeads(project *domain.Project, now time.Time) {
	staleAfter := time.Duration(s.cfg.AlertSync.LeadStaleAfterMin) * time.Minute
	if project.Alerts.LeadStaleAfterMin > 0 {
		staleAfter = time.Duration(project.Alerts.LeadStaleAfterMin) * time.Minute
	}

	if staleAfter <= 0 {
		return
	}

	leads, err := s.leads.ListLeads(project.ID)
	if err != nil {
		logrus.WithError(err).WithField("project_id", project.ID).
			Warn("Erro ao listar os leads para o alerta de resposta")
		return
	}

	var stale []domain.Lead
	for _, lead := range leads {
		if !lead.Answered && now.Sub(lead.CreatedAt) > staleAfter {
			stale = append(stale, lead)
		}
	}

	if len(stale) == 0 {
		return
	}

	oldest := stale[0]
	for _, lead := range stale[1:] {
		if lead.CreatedAt.Before(oldest.CreatedAt) {
			oldest = lead
		}
	}

	text := fmt.Sprintf(
		"📞 <b>%s</b>\n%d lead(s) aguardando resposta há mais de %d minuto(s).\nMais antigo: %s (%s)",
		project.Name, len(stale), int(staleAfter.Minutes()), oldest.Name, utils.FormatDateTimeBR(oldest.CreatedAt),
	)

	window := time.Duration(s.cfg.AlertSync.LeadWindowMinutes) * time.Minute
	s.dispatchWithWindow(project, AlertLeadUnanswered, oldest.ID, window, telegram.RouteChat, text, now)
}

func (s *Service) dispatch(project *domain.Project, alertType, eventKey string, route telegram.Route, text string, now time.Time) {
	s.dispatchWithWindow(project, alertType, eventKey, windowByType[alertType], route, text, now)
}

// dispatchWithWindow consulta o estado de deduplicação, envia a mensagem
// quando devida e só então grava o novo estado. A falha no envio mantém o
// estado anterior, para a próxima rodada tentar de novo.
func (s *Service) dispatchWithWindow(project *domain.Project, alertType, eventKey string, window time.Duration, route telegram.Route, text string, now time.Time) {
	state, err := s.states.Get(project.ID, alertType)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"project_id": project.ID,
			"alert_type": alertType,
		}).Warn("Erro ao carregar o estado de deduplicação do alerta")
		return
	}

	if !IsDue(state, eventKey, window, now) {
		logrus.WithFields(logrus.Fields{
			"project_id": project.ID,
			"alert_type": alertType,
			"event_key":  eventKey,
		}).Debug("Alerta suprimido pela janela de deduplicação")
		return
	}

	if err := s.notifier.Send(route, project, text); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"project_id": project.ID,
			"alert_type": alertType,
		}).Error("Erro ao enviar o alerta")
		return
	}

	newState := &domain.AlertState{
		ProjectID:    project.ID,
		Type:         alertType,
		LastSentAt:   now,
		LastEventKey: eventKey,
		UpdatedAt:    now,
	}

	if err := s.states.Save(newState); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"project_id": project.ID,
			"alert_type": alertType,
		}).Warn("Erro ao gravar o estado de deduplicação do alerta")
	}

	logrus.WithFields(logrus.Fields{
		"project_id": project.ID,
		"alert_type": alertType,
		"event_key":  eventKey,
	}).Info("Alerta enviado")
}

func bulletList(names []string) string {
	text := ""
	for _, name := range names {
		text += fmt.Sprintf("• %s\n", name)
	}
	return text
}
