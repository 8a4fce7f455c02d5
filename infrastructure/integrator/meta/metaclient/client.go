package metaclient

import (
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	metadomain "github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/integrator/meta/domain"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/config"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
)

type Client interface {
	FetchInsights(accountID, token string, period domain.PeriodRange, level string) ([]metadomain.InsightRow, error)
	FetchCampaignList(accountID, token string) ([]metadomain.Campaign, error)
	FetchLeads(formID, token string, since time.Time) ([]metadomain.LeadRow, error)
}

type MetaClient struct {
	Cfg  *config.Config
	HTTP *http.Client
}

func NewClient(cfg *config.Config) Client {
	return &MetaClient{
		Cfg: cfg,
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// get executa uma requisição GET e devolve o corpo, convertendo respostas
// não-2xx em domain.UpstreamError
func (c *MetaClient) get(url string) ([]byte, error) {
	resp, err := c.HTTP.Get(url)
	if err != nil {
		logrus.WithError(err).Error("Erro ao fazer a requisição")
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logrus.WithError(err).Error("Erro ao ler o corpo da resposta")
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp metadomain.ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			if errResp.IsTokenExpired() {
				logrus.WithField("fbtrace_id", errResp.Error.FBTraceID).Warn("Token de acesso expirado na plataforma")
			}
			return nil, &domain.UpstreamError{Status: resp.StatusCode, Body: errResp.Error.Message}
		}
		return nil, &domain.UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
