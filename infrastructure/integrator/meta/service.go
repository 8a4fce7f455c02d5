package meta

import (
	"time"

	"github.com/sirupsen/logrus"

	metadomain "github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/integrator/meta/domain"
	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/integrator/meta/metaclient"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/config"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
)

// MetaIntegrator é a fachada da plataforma de anúncios consumida pelos
// casos de uso. A paginação já chega resolvida pelo client.
type MetaIntegrator struct {
	cfg    *config.Config
	Client metaclient.Client
}

func New(cfg *config.Config, client metaclient.Client) *MetaIntegrator {
	return &MetaIntegrator{
		cfg:    cfg,
		Client: client,
	}
}

func (s *MetaIntegrator) FetchInsights(accountID, token string, period domain.PeriodRange, level string) ([]metadomain.InsightRow, error) {
	rows, err := s.Client.FetchInsights(accountID, token, period, level)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"period":     period.Period,
			"level":      level,
			"error":      err.Error(),
		}).Error("insights: falha ao obter insights da plataforma")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"period":     period.Period,
		"rows":       len(rows),
	}).Debug("insights: linhas de insights obtidas da plataforma")

	return rows, nil
}

func (s *MetaIntegrator) FetchCampaignList(accountID, token string) ([]metadomain.Campaign, error) {
	campaigns, err := s.Client.FetchCampaignList(accountID, token)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"error":      err.Error(),
		}).Error("campaigns: falha ao obter listagem de campanhas da plataforma")
		return nil, err
	}

	return campaigns, nil
}

func (s *MetaIntegrator) FetchLeads(formID, token string, since time.Time) ([]metadomain.LeadRow, error) {
	leads, err := s.Client.FetchLeads(formID, token, since)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"form_id": formID,
			"error":   err.Error(),
		}).Error("leads: falha ao obter leads da plataforma")
		return nil, err
	}

	return leads, nil
}
