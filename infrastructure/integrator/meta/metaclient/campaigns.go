package metaclient

import (
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"

	metadomain "github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/integrator/meta/domain"
)

type responseCampaigns struct {
	Data   []metadomain.Campaign `json:"data"`
	Paging metadomain.Paging     `json:"paging"`
}

// FetchCampaignList busca a listagem de campanhas de uma conta, com status
// efetivo e orçamentos, resolvendo a paginação internamente
func (c *MetaClient) FetchCampaignList(accountID, token string) ([]metadomain.Campaign, error) {
	params := url.Values{}
	params.Add("fields", "id,name,status,effective_status,objective,daily_budget,budget_remaining,updated_time")
	params.Add("access_token", token)

	requestURL := fmt.Sprintf("%s/act_%s/campaigns?%s", c.Cfg.Meta.URL, accountID, params.Encode())

	campaigns := make([]metadomain.Campaign, 0)

	for requestURL != "" {
		body, err := c.get(requestURL)
		if err != nil {
			return nil, err
		}

		var response responseCampaigns
		if err := json.Unmarshal(body, &response); err != nil {
			logrus.WithError(err).Error("Erro ao decodificar JSON de campanhas")
			return nil, err
		}

		campaigns = append(campaigns, response.Data...)
		requestURL = response.Paging.Next
	}

	return campaigns, nil
}
