package reporting

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	metadomain "github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/integrator/meta/domain"
	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/notifier/telegram"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/config"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
)

type fakeInsights struct {
	summaries map[string]*domain.SummaryMetrics
	insights  []metadomain.InsightRow
}

func (f *fakeInsights) LoadSummary(projectID, periodKey string) (*domain.SummaryMetrics, error) {
	if summary, ok := f.summaries[periodKey]; ok {
		return summary, nil
	}
	return &domain.SummaryMetrics{}, nil
}

func (f *fakeInsights) LoadCampaignInsights(projectID, periodKey string) ([]metadomain.InsightRow, error) {
	return f.insights, nil
}

type fakeProjects struct {
	projects []*domain.Project
}

func (f *fakeProjects) ListProjects() ([]*domain.Project, error) {
	return f.projects, nil
}

type fakeSchedules struct {
	states map[string]*domain.ReportScheduleState
}

func (f *fakeSchedules) Get(projectID string) (*domain.ReportScheduleState, error) {
	return f.states[projectID], nil
}

func (f *fakeSchedules) Save(state *domain.ReportScheduleState) error {
	if f.states == nil {
		f.states = make(map[string]*domain.ReportScheduleState)
	}
	f.states[state.ProjectID] = state
	return nil
}

type fakeReportNotifier struct {
	sent []string
}

func (f *fakeReportNotifier) Send(route telegram.Route, project *domain.Project, text string) error {
	f.sent = append(f.sent, text)
	return nil
}

func reportConfig() *config.Config {
	cfg := &config.Config{}
	cfg.AutoReport.ToleranceMinutes = 5
	return cfg
}

func reportProject(slots ...string) *domain.Project {
	return &domain.Project{
		ID:      "proj-1",
		Name:    "Projeto Um",
		ChatID:  100,
		Active:  true,
		Reports: domain.ReportSettings{Enabled: true, Slots: slots},
	}
}

func newReportService(insights *fakeInsights, projects *fakeProjects, schedules *fakeSchedules, notifier *fakeReportNotifier) *Service {
	return NewService(reportConfig(), insights, projects, schedules, notifier)
}

func TestRunAutoReportsJanelaDeTolerancia(t *testing.T) {
	// Terça-feira, sem seção composta
	slotDay := time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		now      time.Time
		wantSent int
	}{
		{
			name:     "Antes do horário não dispara",
			now:      slotDay.Add(9*time.Hour + 59*time.Minute),
			wantSent: 0,
		},
		{
			name:     "No horário exato dispara",
			now:      slotDay.Add(10 * time.Hour),
			wantSent: 1,
		},
		{
			name:     "Dentro da tolerância dispara",
			now:      slotDay.Add(10*time.Hour + 4*time.Minute),
			wantSent: 1,
		},
		{
			name:     "Na fronteira da tolerância não dispara",
			now:      slotDay.Add(10*time.Hour + 5*time.Minute),
			wantSent: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &fakeReportNotifier{}
			service := newReportService(&fakeInsights{}, &fakeProjects{projects: []*domain.Project{reportProject("10:00")}}, &fakeSchedules{}, notifier)

			err := service.RunAutoReports(tt.now)

			require.NoError(t, err)
			assert.Len(t, notifier.sent, tt.wantSent)
		})
	}
}

func TestRunAutoReportsIdempotentePorDia(t *testing.T) {
	slotDay := time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC)

	notifier := &fakeReportNotifier{}
	schedules := &fakeSchedules{}
	service := newReportService(&fakeInsights{}, &fakeProjects{projects: []*domain.Project{reportProject("10:00")}}, schedules, notifier)

	// Primeiro disparo dentro da janela
	err := service.RunAutoReports(slotDay.Add(10*time.Hour + 1*time.Minute))
	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)

	state := schedules.states["proj-1"]
	require.NotNil(t, state)
	assert.Contains(t, state.Slots, "10:00")

	// Mesma janela, mesmo dia: suprimido
	err = service.RunAutoReports(slotDay.Add(10*time.Hour + 3*time.Minute))
	require.NoError(t, err)
	assert.Len(t, notifier.sent, 1)

	// No dia seguinte o mesmo horário dispara de novo
	err = service.RunAutoReports(slotDay.AddDate(0, 0, 1).Add(10*time.Hour + 2*time.Minute))
	require.NoError(t, err)
	assert.Len(t, notifier.sent, 2)
}

func TestRunAutoReportsMultiplosHorarios(t *testing.T) {
	slotDay := time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC)

	notifier := &fakeReportNotifier{}
	service := newReportService(&fakeInsights{}, &fakeProjects{projects: []*domain.Project{reportProject("10:00", "18:00")}}, &fakeSchedules{}, notifier)

	// Só o horário da manhã está na janela
	err := service.RunAutoReports(slotDay.Add(10*time.Hour + 2*time.Minute))
	require.NoError(t, err)
	assert.Len(t, notifier.sent, 1)

	err = service.RunAutoReports(slotDay.Add(18*time.Hour + 2*time.Minute))
	require.NoError(t, err)
	assert.Len(t, notifier.sent, 2)
}

func TestRunAutoReportsResolucaoDaMeta(t *testing.T) {
	slotDay := time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC)

	project := reportProject("10:00")
	project.KPI = domain.KPISettings{Type: domain.KPIMessage}

	// Leads somam mais que mensagens; a meta observada vence o KPI configurado
	insights := &fakeInsights{
		insights: []metadomain.InsightRow{
			{
				Objective: "OUTCOME_LEADS",
				Actions:   []metadomain.Action{{ActionType: metadomain.ActionLead, Value: "5"}},
			},
			{
				Objective: "MESSAGES",
				Actions:   []metadomain.Action{{ActionType: metadomain.ActionMessage, Value: "2"}},
			},
		},
	}

	notifier := &fakeReportNotifier{}
	service := newReportService(insights, &fakeProjects{projects: []*domain.Project{project}}, &fakeSchedules{}, notifier)

	err := service.RunAutoReports(slotDay.Add(10 * time.Hour))

	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0], "Meta principal: Leads")
}

func TestRunAutoReportsMetaCaiNoKPISemTotais(t *testing.T) {
	slotDay := time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC)

	project := reportProject("10:00")
	project.KPI = domain.KPISettings{Type: domain.KPIMessage}

	notifier := &fakeReportNotifier{}
	service := newReportService(&fakeInsights{}, &fakeProjects{projects: []*domain.Project{project}}, &fakeSchedules{}, notifier)

	err := service.RunAutoReports(slotDay.Add(10 * time.Hour))

	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0], "Meta principal: Mensagens")
}

func TestRunAutoReportsComparacaoBaseIncluiMes(t *testing.T) {
	// Terça-feira: mesmo fora do composto, o mês faz parte da comparação
	slotDay := time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC)

	insights := &fakeInsights{
		summaries: map[string]*domain.SummaryMetrics{
			domain.PeriodMonth: {Spend: 900, Leads: 90},
		},
	}

	notifier := &fakeReportNotifier{}
	service := newReportService(insights, &fakeProjects{projects: []*domain.Project{reportProject("10:00")}}, &fakeSchedules{}, notifier)

	err := service.RunAutoReports(slotDay.Add(10 * time.Hour))

	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0], "Últimos 30 dias")
	assert.NotContains(t, notifier.sent[0], "Desde o início")
}

func TestRunAutoReportsRelatorioCompostoNaSegunda(t *testing.T) {
	// 16 de junho de 2025 é segunda-feira
	monday := time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC)

	insights := &fakeInsights{
		summaries: map[string]*domain.SummaryMetrics{
			domain.PeriodMonth: {Spend: 900, Leads: 90},
			domain.PeriodMax:   {Spend: 12000, Leads: 1300},
		},
	}

	notifier := &fakeReportNotifier{}
	service := newReportService(insights, &fakeProjects{projects: []*domain.Project{reportProject("10:00")}}, &fakeSchedules{}, notifier)

	err := service.RunAutoReports(monday)

	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0], "Últimos 30 dias")
	assert.Contains(t, notifier.sent[0], "Desde o início")

	// Na terça o mesmo relatório mantém o mês mas não a recapitulação
	notifier.sent = nil
	err = service.RunAutoReports(monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0], "Últimos 30 dias")
	assert.NotContains(t, notifier.sent[0], "Desde o início")
}

func leadCampaignRow(id, name, spend string, leads int) metadomain.InsightRow {
	return metadomain.InsightRow{
		CampaignID:   id,
		CampaignName: name,
		Objective:    "OUTCOME_LEADS",
		Spend:        spend,
		Actions:      []metadomain.Action{{ActionType: metadomain.ActionLead, Value: strconv.Itoa(leads)}},
	}
}

func TestRunAutoReportsTendenciaETopCampanhas(t *testing.T) {
	slotDay := time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC)

	cpa := 10.0
	insights := &fakeInsights{
		summaries: map[string]*domain.SummaryMetrics{
			domain.PeriodToday:     {Spend: 50, Leads: 5, CPA: &cpa},
			domain.PeriodYesterday: {Spend: 30, Leads: 3},
		},
		insights: []metadomain.InsightRow{
			leadCampaignRow("c1", "Campanha A", "20", 2),
			leadCampaignRow("c2", "Campanha B", "60", 8),
			leadCampaignRow("c3", "Campanha C", "40", 5),
			leadCampaignRow("c4", "Campanha D", "5", 1),
		},
	}

	notifier := &fakeReportNotifier{}
	service := newReportService(insights, &fakeProjects{projects: []*domain.Project{reportProject("10:00")}}, &fakeSchedules{}, notifier)

	err := service.RunAutoReports(slotDay.Add(10 * time.Hour))

	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)

	text := notifier.sent[0]
	assert.Contains(t, text, "Em alta: 5 resultado(s) hoje contra 3 ontem")

	// Só as três melhores campanhas aparecem, ordenadas por resultados
	assert.Contains(t, text, "1. Campanha B: 8 resultado(s)")
	assert.Contains(t, text, "2. Campanha C: 5 resultado(s)")
	assert.Contains(t, text, "3. Campanha A: 2 resultado(s)")
	assert.NotContains(t, text, "Campanha D")
}

func TestRunAutoReportsRankingSegueAMeta(t *testing.T) {
	slotDay := time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC)

	// A meta resolve para mensagens; a campanha com um lead não pode
	// superar a campanha com cinquenta conversas
	insights := &fakeInsights{
		insights: []metadomain.InsightRow{
			{
				CampaignID:   "c-leads",
				CampaignName: "Campanha Leads",
				Objective:    "OUTCOME_LEADS",
				Spend:        "10",
				Actions:      []metadomain.Action{{ActionType: metadomain.ActionLead, Value: "1"}},
			},
			{
				CampaignID:   "c-msgs",
				CampaignName: "Campanha Mensagens",
				Objective:    "MESSAGES",
				Spend:        "80",
				Actions:      []metadomain.Action{{ActionType: metadomain.ActionMessage, Value: "50"}},
			},
		},
	}

	notifier := &fakeReportNotifier{}
	service := newReportService(insights, &fakeProjects{projects: []*domain.Project{reportProject("10:00")}}, &fakeSchedules{}, notifier)

	err := service.RunAutoReports(slotDay.Add(10 * time.Hour))

	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)

	text := notifier.sent[0]
	assert.Contains(t, text, "Meta principal: Mensagens")
	assert.Contains(t, text, "1. Campanha Mensagens: 50 resultado(s)")
	assert.Contains(t, text, "2. Campanha Leads: 0 resultado(s)")
}

func TestRunAutoReportsIgnoraProjetosDesabilitados(t *testing.T) {
	slotDay := time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC)

	inactive := reportProject("10:00")
	inactive.Active = false

	disabled := reportProject("10:00")
	disabled.ID = "proj-2"
	disabled.Reports.Enabled = false

	noSlots := reportProject()
	noSlots.ID = "proj-3"

	notifier := &fakeReportNotifier{}
	service := newReportService(&fakeInsights{}, &fakeProjects{projects: []*domain.Project{inactive, disabled, noSlots}}, &fakeSchedules{}, notifier)

	err := service.RunAutoReports(slotDay.Add(10 * time.Hour))

	require.NoError(t, err)
	assert.Empty(t, notifier.sent)
}
