package insighting

import (
	"time"

	metadomain "github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/integrator/meta/domain"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
)

// AdsPlatform é a fachada da plataforma de anúncios consumida pelo serviço
type AdsPlatform interface {
	FetchInsights(accountID, token string, period domain.PeriodRange, level string) ([]metadomain.InsightRow, error)
	FetchCampaignList(accountID, token string) ([]metadomain.Campaign, error)
	FetchLeads(formID, token string, since time.Time) ([]metadomain.LeadRow, error)
}

// Insighter é a interface exposta para os demais casos de uso e handlers
type Insighter interface {
	LoadSummary(projectID, periodKey string) (*domain.SummaryMetrics, error)
	LoadCampaignRows(projectID, periodKey string) ([]domain.CampaignRow, error)
	LoadCampaignStatuses(projectID string) ([]domain.CampaignStatus, error)
	LoadCampaignInsights(projectID, periodKey string) ([]metadomain.InsightRow, error)
}
