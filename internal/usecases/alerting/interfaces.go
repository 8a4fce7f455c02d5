package alerting

import (
	"time"

	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
)

type campaignLoader interface {
	LoadCampaignStatuses(projectID string) ([]domain.CampaignStatus, error)
}

type projectLister interface {
	ListProjects() ([]*domain.Project, error)
}

type tokenGetter interface {
	GetToken(identity string) (*domain.AccessToken, error)
}

type leadLister interface {
	ListLeads(projectID string) ([]domain.Lead, error)
}

type alertStateStore interface {
	Get(projectID, alertType string) (*domain.AlertState, error)
	Save(state *domain.AlertState) error
}

// Alerter dispara a avaliação de alertas de todos os projetos ativos.
type Alerter interface {
	RunAlerts(now time.Time) error
}
