package metaclient

import (
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	metadomain "github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/integrator/meta/domain"
)

type responseLeads struct {
	Data   []metadomain.LeadRow `json:"data"`
	Paging metadomain.Paging    `json:"paging"`
}

// FetchLeads busca os leads de um formulário criados a partir de `since`,
// resolvendo a paginação internamente
func (c *MetaClient) FetchLeads(formID, token string, since time.Time) ([]metadomain.LeadRow, error) {
	params := url.Values{}
	params.Add("fields", "id,created_time,field_data")
	if !since.IsZero() {
		params.Add("filtering", fmt.Sprintf(
			`[{"field":"time_created","operator":"GREATER_THAN","value":%d}]`,
			since.Unix(),
		))
	}
	params.Add("access_token", token)

	requestURL := fmt.Sprintf("%s/%s/leads?%s", c.Cfg.Meta.URL, formID, params.Encode())

	leads := make([]metadomain.LeadRow, 0)

	for requestURL != "" {
		body, err := c.get(requestURL)
		if err != nil {
			return nil, err
		}

		var response responseLeads
		if err := json.Unmarshal(body, &response); err != nil {
			logrus.WithError(err).Error("Erro ao decodificar JSON de leads")
			return nil, err
		}

		leads = append(leads, response.Data...)
		requestURL = response.Paging.Next
	}

	return leads, nil
}
