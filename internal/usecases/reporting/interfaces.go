package reporting

import (
	"time"

	metadomain "github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/integrator/meta/domain"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
)

type summaryLoader interface {
	LoadSummary(projectID, periodKey string) (*domain.SummaryMetrics, error)
	LoadCampaignInsights(projectID, periodKey string) ([]metadomain.InsightRow, error)
}

type projectLister interface {
	ListProjects() ([]*domain.Project, error)
}

type scheduleStore interface {
	Get(projectID string) (*domain.ReportScheduleState, error)
	Save(state *domain.ReportScheduleState) error
}

// Reporter dispara os relatórios automáticos com horário devido.
type Reporter interface {
	RunAutoReports(now time.Time) error
}
