package metaclient

import (
	"fmt"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	metadomain "github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/integrator/meta/domain"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type responseInsights struct {
	Data   []metadomain.InsightRow `json:"data"`
	Paging metadomain.Paging       `json:"paging"`
}

// FetchInsights busca as linhas de insights de uma conta para o período,
// no nível solicitado (account ou campaign), resolvendo a paginação
// internamente.
func (c *MetaClient) FetchInsights(accountID, token string, period domain.PeriodRange, level string) ([]metadomain.InsightRow, error) {
	params := url.Values{}
	params.Add("fields", "account_id,account_name,campaign_id,campaign_name,objective,spend,impressions,clicks,actions")
	params.Add("level", level)
	params.Add("time_range", fmt.Sprintf(
		`{"since":"%s","until":"%s"}`,
		period.From.Format(time.DateOnly),
		period.To.Format(time.DateOnly),
	))
	params.Add("access_token", token)

	requestURL := fmt.Sprintf("%s/act_%s/insights?%s", c.Cfg.Meta.URL, accountID, params.Encode())

	rows := make([]metadomain.InsightRow, 0)

	for requestURL != "" {
		body, err := c.get(requestURL)
		if err != nil {
			return nil, err
		}

		var response responseInsights
		if err := json.Unmarshal(body, &response); err != nil {
			logrus.WithError(err).Error("Erro ao decodificar JSON de insights")
			return nil, err
		}

		rows = append(rows, response.Data...)
		requestURL = response.Paging.Next
	}

	return rows, nil
}
