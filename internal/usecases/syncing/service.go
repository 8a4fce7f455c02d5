// Package syncing implementa o orquestrador de sincronização do portal:
// um plano fixo de períodos mais a tarefa de leads, com políticas de falha
// estrita ou parcial, registrando o resultado de cada execução.
package syncing

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/repository"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/cache"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/usecases/insighting"
)

// DefaultPlan é o plano padrão de períodos. "today" vem deliberadamente
// por último para que o número mais sensível ao tempo seja o mais fresco
// em relação ao fim da execução.
var DefaultPlan = []string{
	domain.PeriodYesterday,
	domain.PeriodWeek,
	domain.PeriodMonth,
	domain.PeriodAll,
	domain.PeriodToday,
}

// Options configura uma sincronização de portal
type Options struct {
	// Periods substitui o plano padrão quando não vazio
	Periods []string
	// AllowPartial faz todas as tarefas rodarem mesmo após falhas; no
	// modo estrito a primeira falha aborta as tarefas de período restantes
	AllowPartial bool
}

// Syncer é a interface exposta para handlers e agendadores
type Syncer interface {
	SyncPortal(projectID string, opts Options) (*domain.PortalSyncResult, error)
}

// summaryLoader é o recorte do serviço de insights usado pelo plano
type summaryLoader interface {
	ResolveBinding(projectID string) (*domain.Project, *domain.AccessToken, error)
	LoadSummary(projectID, periodKey string) (*domain.SummaryMetrics, error)
}

type Service struct {
	insights   summaryLoader
	meta       insighting.AdsPlatform
	leads      repository.LeadRepository
	states     repository.SyncStateRepository
	cacheStore *cache.Store
	nowFn      func() time.Time
}

func NewService(
	insights summaryLoader,
	meta insighting.AdsPlatform,
	leads repository.LeadRepository,
	states repository.SyncStateRepository,
	cacheStore *cache.Store,
) *Service {
	return &Service{
		insights:   insights,
		meta:       meta,
		leads:      leads,
		states:     states,
		cacheStore: cacheStore,
		nowFn:      time.Now,
	}
}

// SyncPortal executa o plano de sincronização de um projeto. Falha de
// pré-condição (portal não provisionado, conta ou token ausentes) retorna
// imediatamente, sem nenhum estado parcial registrado.
func (s *Service) SyncPortal(projectID string, opts Options) (*domain.PortalSyncResult, error) {
	project, token, err := s.insights.ResolveBinding(projectID)
	if err != nil {
		return nil, err
	}

	if !project.PortalEnabled {
		return nil, domain.NewConfigError("projeto %s sem portal provisionado", projectID)
	}

	periods := opts.Periods
	if len(periods) == 0 {
		periods = DefaultPlan
	}

	logrus.WithFields(logrus.Fields{
		"project_id":    projectID,
		"periods":       periods,
		"allow_partial": opts.AllowPartial,
	}).Info("Iniciando sincronização de portal")

	results := make([]domain.SyncTaskResult, 0, len(periods)+1)
	aborted := false

	for _, periodKey := range periods {
		// Modo estrito: a primeira falha aborta as tarefas de período restantes
		if aborted {
			break
		}

		_, err := s.insights.LoadSummary(projectID, periodKey)
		result := domain.SyncTaskResult{Task: periodKey, OK: err == nil}
		if err != nil {
			result.Error = err.Error()
			if !opts.AllowPartial {
				aborted = true
			}

			logrus.WithError(err).WithFields(logrus.Fields{
				"project_id": projectID,
				"period":     periodKey,
			}).Warn("Tarefa de período falhou na sincronização de portal")
		}

		results = append(results, result)
	}

	// A tarefa de leads sempre roda, independente das tarefas de período
	leadsErr := s.syncLeads(project, token)
	leadsResult := domain.SyncTaskResult{Task: domain.SyncTaskLeads, OK: leadsErr == nil}
	if leadsErr != nil {
		leadsResult.Error = leadsErr.Error()
		logrus.WithError(leadsErr).WithField("project_id", projectID).Warn("Tarefa de leads falhou na sincronização de portal")
	}
	results = append(results, leadsResult)

	s.recordState(projectID, periods, results)

	ok := false
	for _, result := range results {
		if result.OK {
			ok = true
			break
		}
	}

	logrus.WithFields(logrus.Fields{
		"project_id": projectID,
		"ok":         ok,
		"tasks":      len(results),
	}).Info("Sincronização de portal concluída")

	return &domain.PortalSyncResult{OK: ok, Results: results}, nil
}

// syncLeads busca os leads dos formulários vinculados e persiste no
// armazém de documentos. A busca fica atrás do portão de frescor longo
// porque a consulta é pesada e muda pouco.
func (s *Service) syncLeads(project *domain.Project, token *domain.AccessToken) error {
	if len(project.LeadFormIDs) == 0 {
		logrus.WithField("project_id", project.ID).Debug("Projeto sem formulários de leads vinculados")
		return nil
	}

	now := s.nowFn()

	entry, fresh, err := cache.Get[[]domain.Lead](s.cacheStore, project.ID, cache.ScopeLeadForms, now)
	if err != nil {
		logrus.WithError(err).WithField("project_id", project.ID).Warn("Erro ao ler cache de leads")
	}

	if entry != nil && fresh {
		return s.leads.SaveLeads(project.ID, entry.Payload)
	}

	allLeads := make([]domain.Lead, 0)
	var lastErr error

	for _, formID := range project.LeadFormIDs {
		rows, err := s.meta.FetchLeads(formID, token.AccessToken, time.Time{})
		if err != nil {
			// Um formulário com falha não impede a coleta dos demais
			logrus.WithError(err).WithFields(logrus.Fields{
				"project_id": project.ID,
				"form_id":    formID,
			}).Warn("Erro ao buscar leads do formulário")
			lastErr = err
			continue
		}

		allLeads = append(allLeads, insighting.MapLeads(rows, formID)...)
	}

	if len(allLeads) == 0 && lastErr != nil {
		return lastErr
	}

	// Um conjunto parcial não entra no cache de frescor longo; assim a
	// próxima execução volta a consultar os formulários que falharam
	if lastErr == nil {
		period := domain.ResolvePeriod(domain.PeriodToday, now)
		putErr := cache.Put(s.cacheStore, &cache.Entry[[]domain.Lead]{
			ProjectID:  project.ID,
			Scope:      cache.ScopeLeadForms,
			FetchedAt:  now,
			TTLSeconds: cache.TTLLeadForms,
			Period:     period.CachePeriod(),
			Payload:    allLeads,
		})
		if putErr != nil {
			logrus.WithError(putErr).WithField("project_id", project.ID).Warn("Erro ao gravar cache de leads")
		}
	}

	return s.leads.SaveLeads(project.ID, allLeads)
}

// recordState sobrescreve o estado da sincronização: lastRunAt sempre,
// lastSuccessAt se ao menos uma tarefa teve sucesso, lastErrorAt e a
// mensagem se ao menos uma falhou
func (s *Service) recordState(projectID string, periods []string, results []domain.SyncTaskResult) {
	now := s.nowFn()

	state := &domain.PortalSyncState{
		ProjectID:  projectID,
		PeriodKeys: periods,
		LastRunAt:  now,
	}

	for _, result := range results {
		if result.OK {
			if state.LastSuccessAt == nil {
				successAt := now
				state.LastSuccessAt = &successAt
			}
		} else {
			errorAt := now
			state.LastErrorAt = &errorAt
			state.LastErrorMessage = result.Error
		}
	}

	if err := s.states.Save(state); err != nil {
		// Falha de escrita de estado só custa uma re-execução redundante
		logrus.WithError(err).WithField("project_id", projectID).Warn("Erro ao gravar estado da sincronização")
	}
}
