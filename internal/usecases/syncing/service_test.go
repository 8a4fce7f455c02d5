package syncing

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	metadomain "github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/integrator/meta/domain"
	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/storage/memory"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/cache"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
)

type fakeLoader struct {
	project      *domain.Project
	failPeriods  map[string]error
	loadedOrder  []string
	bindingError error
}

func (f *fakeLoader) ResolveBinding(projectID string) (*domain.Project, *domain.AccessToken, error) {
	if f.bindingError != nil {
		return nil, nil, f.bindingError
	}
	return f.project, &domain.AccessToken{Identity: "principal", AccessToken: "tok"}, nil
}

func (f *fakeLoader) LoadSummary(projectID, periodKey string) (*domain.SummaryMetrics, error) {
	f.loadedOrder = append(f.loadedOrder, periodKey)
	if err := f.failPeriods[periodKey]; err != nil {
		return nil, err
	}
	return &domain.SummaryMetrics{}, nil
}

type fakeLeadPlatform struct {
	leadRows   map[string][]metadomain.LeadRow
	errByForm  map[string]error
	err        error
	fetchCalls int
}

func (f *fakeLeadPlatform) FetchInsights(accountID, token string, period domain.PeriodRange, level string) ([]metadomain.InsightRow, error) {
	return nil, nil
}

func (f *fakeLeadPlatform) FetchCampaignList(accountID, token string) ([]metadomain.Campaign, error) {
	return nil, nil
}

func (f *fakeLeadPlatform) FetchLeads(formID, token string, since time.Time) ([]metadomain.LeadRow, error) {
	f.fetchCalls++
	if f.err != nil {
		return nil, f.err
	}
	if err := f.errByForm[formID]; err != nil {
		return nil, err
	}
	return f.leadRows[formID], nil
}

type fakeLeadRepo struct {
	saved map[string][]domain.Lead
}

func (f *fakeLeadRepo) SaveLeads(projectID string, leads []domain.Lead) error {
	if f.saved == nil {
		f.saved = make(map[string][]domain.Lead)
	}
	f.saved[projectID] = leads
	return nil
}

func (f *fakeLeadRepo) ListLeads(projectID string) ([]domain.Lead, error) {
	return f.saved[projectID], nil
}

func (f *fakeLeadRepo) MarkAnswered(projectID, leadID string) error {
	return nil
}

type fakeStateRepo struct {
	state *domain.PortalSyncState
}

func (f *fakeStateRepo) Get(projectID string) (*domain.PortalSyncState, error) {
	return f.state, nil
}

func (f *fakeStateRepo) Save(state *domain.PortalSyncState) error {
	f.state = state
	return nil
}

func portalProject() *domain.Project {
	return &domain.Project{
		ID:            "proj-1",
		Name:          "Projeto Um",
		AdAccountID:   "act_123",
		TokenIdentity: "principal",
		Active:        true,
		PortalEnabled: true,
	}
}

func newSyncService(loader *fakeLoader, platform *fakeLeadPlatform, leadRepo *fakeLeadRepo, stateRepo *fakeStateRepo) *Service {
	service := NewService(loader, platform, leadRepo, stateRepo, cache.NewStore(memory.NewKVStore()))
	service.nowFn = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return service
}

func TestSyncPortalPlanoCompleto(t *testing.T) {
	loader := &fakeLoader{project: portalProject()}
	stateRepo := &fakeStateRepo{}

	service := newSyncService(loader, &fakeLeadPlatform{}, &fakeLeadRepo{}, stateRepo)

	result, err := service.SyncPortal("proj-1", Options{})

	require.NoError(t, err)
	assert.True(t, result.OK)

	// Cinco períodos mais a tarefa de leads, com "today" por último
	require.Len(t, result.Results, 6)
	assert.Equal(t, []string{"yesterday", "week", "month", "all", "today"}, loader.loadedOrder)
	assert.Equal(t, domain.SyncTaskLeads, result.Results[5].Task)

	for _, taskResult := range result.Results {
		assert.True(t, taskResult.OK, "tarefa %s deveria ter sucesso", taskResult.Task)
	}

	require.NotNil(t, stateRepo.state)
	assert.NotNil(t, stateRepo.state.LastSuccessAt)
	assert.Nil(t, stateRepo.state.LastErrorAt)
}

func TestSyncPortalParcialContinuaAposFalhas(t *testing.T) {
	loader := &fakeLoader{
		project: portalProject(),
		failPeriods: map[string]error{
			domain.PeriodWeek:  errors.New("falha na semana"),
			domain.PeriodMonth: errors.New("falha no mês"),
		},
	}
	stateRepo := &fakeStateRepo{}

	service := newSyncService(loader, &fakeLeadPlatform{}, &fakeLeadRepo{}, stateRepo)

	result, err := service.SyncPortal("proj-1", Options{AllowPartial: true})

	require.NoError(t, err)
	assert.True(t, result.OK)
	require.Len(t, result.Results, 6)

	failed := 0
	for _, taskResult := range result.Results {
		if !taskResult.OK {
			failed++
			assert.NotEmpty(t, taskResult.Error)
		}
	}
	assert.Equal(t, 2, failed)

	require.NotNil(t, stateRepo.state)
	assert.NotNil(t, stateRepo.state.LastSuccessAt)
	assert.NotNil(t, stateRepo.state.LastErrorAt)
	assert.NotEmpty(t, stateRepo.state.LastErrorMessage)
}

func TestSyncPortalEstritoAbortaPeriodosRestantes(t *testing.T) {
	loader := &fakeLoader{
		project: portalProject(),
		failPeriods: map[string]error{
			domain.PeriodYesterday: errors.New("falha em ontem"),
		},
	}
	stateRepo := &fakeStateRepo{}

	service := newSyncService(loader, &fakeLeadPlatform{}, &fakeLeadRepo{}, stateRepo)

	result, err := service.SyncPortal("proj-1", Options{AllowPartial: false})

	require.NoError(t, err)

	// A primeira falha aborta os períodos restantes, mas leads sempre roda
	require.Len(t, result.Results, 2)
	assert.Equal(t, domain.PeriodYesterday, result.Results[0].Task)
	assert.False(t, result.Results[0].OK)
	assert.Equal(t, domain.SyncTaskLeads, result.Results[1].Task)
	assert.True(t, result.Results[1].OK)

	// Leads teve sucesso, então a execução conta como parcialmente bem-sucedida
	assert.True(t, result.OK)
}

func TestSyncPortalSemPortalProvisionado(t *testing.T) {
	project := portalProject()
	project.PortalEnabled = false

	loader := &fakeLoader{project: project}
	stateRepo := &fakeStateRepo{}

	service := newSyncService(loader, &fakeLeadPlatform{}, &fakeLeadRepo{}, stateRepo)

	_, err := service.SyncPortal("proj-1", Options{})

	require.Error(t, err)
	assert.True(t, domain.IsConfigError(err))

	// Falha de pré-condição não registra nenhum estado parcial
	assert.Nil(t, stateRepo.state)
}

func TestSyncPortalPlanoCustomizado(t *testing.T) {
	loader := &fakeLoader{project: portalProject()}

	service := newSyncService(loader, &fakeLeadPlatform{}, &fakeLeadRepo{}, &fakeStateRepo{})

	result, err := service.SyncPortal("proj-1", Options{Periods: []string{domain.PeriodToday}})

	require.NoError(t, err)
	require.Len(t, result.Results, 2)
	assert.Equal(t, []string{"today"}, loader.loadedOrder)
}

func TestSyncLeadsColetaFormularios(t *testing.T) {
	project := portalProject()
	project.LeadFormIDs = []string{"form-1", "form-2"}

	loader := &fakeLoader{project: project}
	platform := &fakeLeadPlatform{
		leadRows: map[string][]metadomain.LeadRow{
			"form-1": {{ID: "lead-1", CreatedTime: "2025-06-14T10:00:00+0000"}},
			"form-2": {{ID: "lead-2", CreatedTime: "2025-06-14T11:00:00+0000"}},
		},
	}
	leadRepo := &fakeLeadRepo{}

	service := newSyncService(loader, platform, leadRepo, &fakeStateRepo{})

	result, err := service.SyncPortal("proj-1", Options{Periods: []string{domain.PeriodToday}})

	require.NoError(t, err)
	assert.True(t, result.OK)

	saved := leadRepo.saved["proj-1"]
	require.Len(t, saved, 2)
	assert.Equal(t, "lead-1", saved[0].ID)
	assert.Equal(t, "form-1", saved[0].FormID)
	assert.Equal(t, "lead-2", saved[1].ID)
}

func TestSyncLeadsColetaParcialNaoEntraNoCache(t *testing.T) {
	project := portalProject()
	project.LeadFormIDs = []string{"form-1", "form-2"}

	loader := &fakeLoader{project: project}
	platform := &fakeLeadPlatform{
		leadRows: map[string][]metadomain.LeadRow{
			"form-1": {{ID: "lead-1", CreatedTime: "2025-06-14T10:00:00+0000"}},
			"form-2": {{ID: "lead-2", CreatedTime: "2025-06-14T11:00:00+0000"}},
		},
		errByForm: map[string]error{
			"form-2": errors.New("falha no formulário"),
		},
	}
	leadRepo := &fakeLeadRepo{}

	service := newSyncService(loader, platform, leadRepo, &fakeStateRepo{})

	// Primeira execução: só o form-1 responde
	_, err := service.SyncPortal("proj-1", Options{Periods: []string{domain.PeriodToday}})
	require.NoError(t, err)
	require.Len(t, leadRepo.saved["proj-1"], 1)
	assert.Equal(t, 2, platform.fetchCalls)

	// O conjunto parcial não pode ficar preso atrás do frescor longo: com
	// o formulário recuperado, a execução seguinte busca os dois de novo
	platform.errByForm = nil

	_, err = service.SyncPortal("proj-1", Options{Periods: []string{domain.PeriodToday}})
	require.NoError(t, err)
	require.Len(t, leadRepo.saved["proj-1"], 2)
	assert.Equal(t, 4, platform.fetchCalls)

	// A coleta completa entra no cache e a terceira execução o reaproveita
	_, err = service.SyncPortal("proj-1", Options{Periods: []string{domain.PeriodToday}})
	require.NoError(t, err)
	require.Len(t, leadRepo.saved["proj-1"], 2)
	assert.Equal(t, 4, platform.fetchCalls)
}
