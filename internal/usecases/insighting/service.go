package insighting

import (
	"time"

	"github.com/sirupsen/logrus"

	metadomain "github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/integrator/meta/domain"
	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/repository"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/cache"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/config"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
)

// Service compõe as métricas de resumo de um projeto a partir de buscas
// cruas independentemente cacheadas: o período solicitado, "hoje" e o
// total de vida útil. A composição em três vias existe para o produto
// mostrar "hoje" e "total" ao lado de qualquer período solicitado sem
// duplicar chamadas à plataforma.
type Service struct {
	cfg        *config.Config
	meta       AdsPlatform
	projects   repository.ProjectRepository
	tokens     repository.TokenRepository
	cacheStore *cache.Store
	nowFn      func() time.Time
}

func NewService(
	cfg *config.Config,
	meta AdsPlatform,
	projects repository.ProjectRepository,
	tokens repository.TokenRepository,
	cacheStore *cache.Store,
) *Service {
	return &Service{
		cfg:        cfg,
		meta:       meta,
		projects:   projects,
		tokens:     tokens,
		cacheStore: cacheStore,
		nowFn:      time.Now,
	}
}

// ResolveBinding valida os vínculos de configuração do projeto: conta de
// anúncios e token de acesso. Falhas aqui são erros de configuração,
// nunca re-tentados automaticamente.
func (s *Service) ResolveBinding(projectID string) (*domain.Project, *domain.AccessToken, error) {
	project, err := s.projects.GetProject(projectID)
	if err != nil {
		return nil, nil, err
	}

	if project == nil {
		return nil, nil, domain.NewConfigError("projeto não encontrado: %s", projectID)
	}

	if project.AdAccountID == "" {
		return nil, nil, domain.NewConfigError("projeto %s sem conta de anúncios vinculada", projectID)
	}

	token, err := s.tokens.GetToken(project.TokenIdentity)
	if err != nil {
		if err == domain.ErrTokenNotFound {
			return nil, nil, domain.NewConfigError("projeto %s sem token de acesso resolvível", projectID)
		}
		return nil, nil, err
	}

	return project, token, nil
}

// fetchInsightsCached busca as linhas cruas de insights de um período com
// portão de frescor. Em falha da plataforma, uma entrada vencida ainda é
// servida (stale-but-available); sem nada em cache, o erro propaga.
func (s *Service) fetchInsightsCached(
	project *domain.Project,
	token *domain.AccessToken,
	periodKey string,
	level string,
	scope string,
) ([]metadomain.InsightRow, error) {
	now := s.nowFn()

	entry, fresh, err := cache.Get[[]metadomain.InsightRow](s.cacheStore, project.ID, scope, now)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"project_id": project.ID,
			"scope":      scope,
		}).Warn("Erro ao ler cache de insights, buscando da plataforma")
	}

	if entry != nil && fresh {
		return entry.Payload, nil
	}

	period := domain.ResolvePeriod(periodKey, now)

	rows, err := s.meta.FetchInsights(project.AdAccountID, token.AccessToken, period, level)
	if err != nil {
		if entry != nil {
			logrus.WithFields(logrus.Fields{
				"project_id": project.ID,
				"scope":      scope,
				"fetched_at": entry.FetchedAt,
			}).Warn("Plataforma indisponível, servindo dados vencidos do cache")
			return entry.Payload, nil
		}
		return nil, err
	}

	putErr := cache.Put(s.cacheStore, &cache.Entry[[]metadomain.InsightRow]{
		ProjectID:  project.ID,
		Scope:      scope,
		FetchedAt:  now,
		TTLSeconds: cache.TTLInsights,
		Period:     period.CachePeriod(),
		Payload:    rows,
	})
	if putErr != nil {
		// Falha de escrita só custa uma re-busca idempotente no próximo acesso
		logrus.WithError(putErr).WithField("scope", scope).Warn("Erro ao gravar cache de insights")
	}

	return rows, nil
}

// LoadSummary monta as métricas de resumo de (projeto, período)
func (s *Service) LoadSummary(projectID, periodKey string) (*domain.SummaryMetrics, error) {
	project, token, err := s.ResolveBinding(projectID)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()

	summaryScope := cache.ScopeSummary(periodKey)
	if entry, fresh, _ := cache.Get[domain.SummaryMetrics](s.cacheStore, project.ID, summaryScope, now); entry != nil && fresh {
		return &entry.Payload, nil
	}

	requestedRows, err := s.fetchInsightsCached(project, token, periodKey, metadomain.LevelAccount, cache.ScopeInsights(periodKey))
	if err != nil {
		return nil, err
	}

	// Reaproveita a busca do período quando ele já é "hoje" ou o total
	todayRows := requestedRows
	if periodKey != domain.PeriodToday {
		todayRows, err = s.fetchInsightsCached(project, token, domain.PeriodToday, metadomain.LevelAccount, cache.ScopeInsights(domain.PeriodToday))
		if err != nil {
			return nil, err
		}
	}

	maxRows := requestedRows
	if periodKey != domain.PeriodMax && periodKey != domain.PeriodAll {
		maxRows, err = s.fetchInsightsCached(project, token, domain.PeriodMax, metadomain.LevelAccount, cache.ScopeInsights(domain.PeriodMax))
		if err != nil {
			return nil, err
		}
	}

	requested := sumInsightRows(requestedRows)
	today := sumInsightRows(todayRows)
	lifetime := sumInsightRows(maxRows)

	summary := &domain.SummaryMetrics{
		Spend:       requested.Spend,
		Impressions: requested.Impressions,
		Clicks:      requested.Clicks,
		Leads:       requested.Leads,
		Messages:    requested.Messages,
		CPA:         derivedCPA(requested.Spend, requested.Leads),
		LeadsToday:  today.Leads,
		CPAToday:    derivedCPA(today.Spend, today.Leads),
		SpendToday:  today.Spend,
		LeadsTotal:  lifetime.Leads,
	}

	period := domain.ResolvePeriod(periodKey, now)
	putErr := cache.Put(s.cacheStore, &cache.Entry[domain.SummaryMetrics]{
		ProjectID:  project.ID,
		Scope:      summaryScope,
		FetchedAt:  now,
		TTLSeconds: cache.TTLInsights,
		Period:     period.CachePeriod(),
		Payload:    *summary,
	})
	if putErr != nil {
		logrus.WithError(putErr).WithField("project_id", project.ID).Warn("Erro ao gravar cache de resumo")
	}

	return summary, nil
}

// LoadCampaignInsights busca as linhas cruas com recorte por campanha
func (s *Service) LoadCampaignInsights(projectID, periodKey string) ([]metadomain.InsightRow, error) {
	project, token, err := s.ResolveBinding(projectID)
	if err != nil {
		return nil, err
	}

	return s.fetchInsightsCached(project, token, periodKey, metadomain.LevelCampaign, cache.ScopeCampaigns(periodKey))
}

// LoadCampaignRows retorna as métricas por campanha do período
func (s *Service) LoadCampaignRows(projectID, periodKey string) ([]domain.CampaignRow, error) {
	rows, err := s.LoadCampaignInsights(projectID, periodKey)
	if err != nil {
		return nil, err
	}

	return MapCampaignRows(rows), nil
}

// LoadCampaignStatuses retorna o estado de ciclo de vida das campanhas do
// projeto, com TTL mais longo por ser uma consulta pesada e estável
func (s *Service) LoadCampaignStatuses(projectID string) ([]domain.CampaignStatus, error) {
	project, token, err := s.ResolveBinding(projectID)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()

	entry, fresh, err := cache.Get[[]metadomain.Campaign](s.cacheStore, project.ID, cache.ScopeCampaignStatus, now)
	if err != nil {
		logrus.WithError(err).WithField("project_id", project.ID).Warn("Erro ao ler cache de status de campanhas")
	}

	if entry != nil && fresh {
		return MapCampaignStatuses(entry.Payload), nil
	}

	campaigns, err := s.meta.FetchCampaignList(project.AdAccountID, token.AccessToken)
	if err != nil {
		if entry != nil {
			logrus.WithField("project_id", project.ID).Warn("Plataforma indisponível, servindo status vencidos do cache")
			return MapCampaignStatuses(entry.Payload), nil
		}
		return nil, err
	}

	period := domain.ResolvePeriod(domain.PeriodToday, now)
	putErr := cache.Put(s.cacheStore, &cache.Entry[[]metadomain.Campaign]{
		ProjectID:  project.ID,
		Scope:      cache.ScopeCampaignStatus,
		FetchedAt:  now,
		TTLSeconds: cache.TTLCampaignStatus,
		Period:     period.CachePeriod(),
		Payload:    campaigns,
	})
	if putErr != nil {
		logrus.WithError(putErr).WithField("project_id", project.ID).Warn("Erro ao gravar cache de status de campanhas")
	}

	return MapCampaignStatuses(campaigns), nil
}
