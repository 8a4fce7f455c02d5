package insighting

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	metadomain "github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/integrator/meta/domain"
	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/storage/memory"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/cache"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/config"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
)

type fakePlatform struct {
	insightCalls  int
	campaignCalls int
	rowsByPeriod  map[string][]metadomain.InsightRow
	campaigns     []metadomain.Campaign
	err           error
}

func (f *fakePlatform) FetchInsights(accountID, token string, period domain.PeriodRange, level string) ([]metadomain.InsightRow, error) {
	f.insightCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rowsByPeriod[period.Period], nil
}

func (f *fakePlatform) FetchCampaignList(accountID, token string) ([]metadomain.Campaign, error) {
	f.campaignCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.campaigns, nil
}

func (f *fakePlatform) FetchLeads(formID, token string, since time.Time) ([]metadomain.LeadRow, error) {
	return nil, nil
}

type fakeProjects struct {
	projects map[string]*domain.Project
}

func (f *fakeProjects) GetProject(id string) (*domain.Project, error) {
	return f.projects[id], nil
}

func (f *fakeProjects) ListProjects() ([]*domain.Project, error) {
	list := make([]*domain.Project, 0, len(f.projects))
	for _, p := range f.projects {
		list = append(list, p)
	}
	return list, nil
}

func (f *fakeProjects) SaveProject(project *domain.Project) error {
	f.projects[project.ID] = project
	return nil
}

type fakeTokens struct {
	tokens map[string]*domain.AccessToken
}

func (f *fakeTokens) GetToken(identity string) (*domain.AccessToken, error) {
	token, ok := f.tokens[identity]
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	return token, nil
}

func boundProject() *domain.Project {
	return &domain.Project{
		ID:            "proj-1",
		Name:          "Projeto Um",
		AdAccountID:   "act_123",
		TokenIdentity: "principal",
		Active:        true,
		PortalEnabled: true,
	}
}

func newTestService(platform *fakePlatform) (*Service, time.Time) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	service := NewService(
		&config.Config{},
		platform,
		&fakeProjects{projects: map[string]*domain.Project{"proj-1": boundProject()}},
		&fakeTokens{tokens: map[string]*domain.AccessToken{"principal": {Identity: "principal", AccessToken: "tok"}}},
		cache.NewStore(memory.NewKVStore()),
	)
	service.nowFn = func() time.Time { return now }

	return service, now
}

func leadRows(periodFrom, spend string, leadCount string) map[string][]metadomain.InsightRow {
	return map[string][]metadomain.InsightRow{
		periodFrom: {
			{
				Spend:   spend,
				Actions: []metadomain.Action{{ActionType: metadomain.ActionLead, Value: leadCount}},
			},
		},
	}
}

func TestResolveBinding(t *testing.T) {
	tests := []struct {
		name      string
		project   *domain.Project
		wantError string
	}{
		{
			name:      "Projeto inexistente é erro de configuração",
			project:   nil,
			wantError: "projeto não encontrado",
		},
		{
			name: "Projeto sem conta de anúncios é erro de configuração",
			project: &domain.Project{
				ID:            "proj-1",
				TokenIdentity: "principal",
			},
			wantError: "sem conta de anúncios",
		},
		{
			name: "Projeto sem token resolvível é erro de configuração",
			project: &domain.Project{
				ID:            "proj-1",
				AdAccountID:   "act_123",
				TokenIdentity: "inexistente",
			},
			wantError: "sem token de acesso",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projects := map[string]*domain.Project{}
			if tt.project != nil {
				projects[tt.project.ID] = tt.project
			}

			service := NewService(
				&config.Config{},
				&fakePlatform{},
				&fakeProjects{projects: projects},
				&fakeTokens{tokens: map[string]*domain.AccessToken{"principal": {Identity: "principal", AccessToken: "tok"}}},
				cache.NewStore(memory.NewKVStore()),
			)

			_, _, err := service.ResolveBinding("proj-1")

			require.Error(t, err)
			assert.True(t, domain.IsConfigError(err))
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}

func TestLoadSummaryComposicaoEmTresVias(t *testing.T) {
	platform := &fakePlatform{
		rowsByPeriod: map[string][]metadomain.InsightRow{
			// Semana: de 9 a 15 de junho
			"2025-06-09": {
				{Spend: "70.00", Impressions: "700", Clicks: "35", Actions: []metadomain.Action{
					{ActionType: metadomain.ActionLead, Value: "7"},
					{ActionType: metadomain.ActionMessage, Value: "3"},
				}},
			},
			// Hoje
			"2025-06-15": {
				{Spend: "10.00", Actions: []metadomain.Action{
					{ActionType: metadomain.ActionLead, Value: "1"},
				}},
			},
			// Total de vida útil
			"1970-01-01": {
				{Spend: "500.00", Actions: []metadomain.Action{
					{ActionType: metadomain.ActionLead, Value: "50"},
				}},
			},
		},
	}

	service, _ := newTestService(platform)

	summary, err := service.LoadSummary("proj-1", domain.PeriodWeek)

	require.NoError(t, err)
	assert.Equal(t, 3, platform.insightCalls)

	assert.Equal(t, 70.0, summary.Spend)
	assert.Equal(t, 700, summary.Impressions)
	assert.Equal(t, 35, summary.Clicks)
	assert.Equal(t, 7, summary.Leads)
	assert.Equal(t, 3, summary.Messages)
	require.NotNil(t, summary.CPA)
	assert.Equal(t, 10.0, *summary.CPA)

	assert.Equal(t, 1, summary.LeadsToday)
	assert.Equal(t, 10.0, summary.SpendToday)
	require.NotNil(t, summary.CPAToday)
	assert.Equal(t, 10.0, *summary.CPAToday)

	assert.Equal(t, 50, summary.LeadsTotal)
}

func TestLoadSummaryReaproveitaBuscaDeHoje(t *testing.T) {
	platform := &fakePlatform{
		rowsByPeriod: map[string][]metadomain.InsightRow{
			"2025-06-15": {
				{Spend: "10.00", Actions: []metadomain.Action{
					{ActionType: metadomain.ActionLead, Value: "2"},
				}},
			},
			"1970-01-01": {
				{Spend: "100.00", Actions: []metadomain.Action{
					{ActionType: metadomain.ActionLead, Value: "20"},
				}},
			},
		},
	}

	service, _ := newTestService(platform)

	summary, err := service.LoadSummary("proj-1", domain.PeriodToday)

	require.NoError(t, err)
	// Período solicitado já é "hoje": só a busca do solicitado e a do total
	assert.Equal(t, 2, platform.insightCalls)
	assert.Equal(t, summary.Leads, summary.LeadsToday)
	assert.Equal(t, summary.Spend, summary.SpendToday)
}

func TestLoadSummaryCacheEvitaChamadas(t *testing.T) {
	platform := &fakePlatform{
		rowsByPeriod: leadRows("2025-06-15", "10.00", "1"),
	}

	service, _ := newTestService(platform)
	platform.rowsByPeriod["1970-01-01"] = platform.rowsByPeriod["2025-06-15"]

	_, err := service.LoadSummary("proj-1", domain.PeriodToday)
	require.NoError(t, err)

	callsAfterFirst := platform.insightCalls

	// Segunda leitura dentro do TTL sai inteira do cache de resumo
	_, err = service.LoadSummary("proj-1", domain.PeriodToday)
	require.NoError(t, err)

	assert.Equal(t, callsAfterFirst, platform.insightCalls)
}

func TestLoadSummaryServeVencidoQuandoPlataformaFalha(t *testing.T) {
	platform := &fakePlatform{
		rowsByPeriod: leadRows("2025-06-15", "10.00", "1"),
	}
	platform.rowsByPeriod["1970-01-01"] = platform.rowsByPeriod["2025-06-15"]

	service, now := newTestService(platform)

	first, err := service.LoadSummary("proj-1", domain.PeriodToday)
	require.NoError(t, err)

	// Passado o TTL, a plataforma cai; o cache vencido ainda serve
	service.nowFn = func() time.Time { return now.Add(5 * time.Minute) }
	platform.err = &domain.UpstreamError{Status: 503, Body: "indisponível"}

	second, err := service.LoadSummary("proj-1", domain.PeriodToday)

	require.NoError(t, err)
	assert.Equal(t, first.Leads, second.Leads)
	assert.Equal(t, first.Spend, second.Spend)
}

func TestLoadSummaryPropagaFalhaSemCache(t *testing.T) {
	platform := &fakePlatform{
		err: &domain.UpstreamError{Status: 500, Body: "erro interno"},
	}

	service, _ := newTestService(platform)

	_, err := service.LoadSummary("proj-1", domain.PeriodToday)

	require.Error(t, err)
	assert.True(t, domain.IsUpstreamError(err))
}

func TestLoadCampaignStatuses(t *testing.T) {
	platform := &fakePlatform{
		campaigns: []metadomain.Campaign{
			{ID: "c1", Name: "Campanha A", EffectiveStatus: "ACTIVE", DailyBudget: "5000"},
		},
	}

	service, now := newTestService(platform)

	first, err := service.LoadCampaignStatuses("proj-1")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 50.0, first[0].DailyBudget)
	assert.Equal(t, 1, platform.campaignCalls)

	// Dentro do TTL de cinco minutos, nenhuma nova chamada
	service.nowFn = func() time.Time { return now.Add(4 * time.Minute) }
	_, err = service.LoadCampaignStatuses("proj-1")
	require.NoError(t, err)
	assert.Equal(t, 1, platform.campaignCalls)

	// Vencido o TTL, nova busca na plataforma
	service.nowFn = func() time.Time { return now.Add(6 * time.Minute) }
	_, err = service.LoadCampaignStatuses("proj-1")
	require.NoError(t, err)
	assert.Equal(t, 2, platform.campaignCalls)
}

func TestLoadCampaignStatusesServeVencidoQuandoPlataformaFalha(t *testing.T) {
	platform := &fakePlatform{
		campaigns: []metadomain.Campaign{{ID: "c1", Name: "Campanha A"}},
	}

	service, now := newTestService(platform)

	_, err := service.LoadCampaignStatuses("proj-1")
	require.NoError(t, err)

	service.nowFn = func() time.Time { return now.Add(10 * time.Minute) }
	platform.err = errors.New("timeout")

	statuses, err := service.LoadCampaignStatuses("proj-1")

	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "c1", statuses[0].ID)
}
