package metadomain

import (
	"strconv"

	"github.com/sirupsen/logrus"
)

// Action é um par (tipo de ação, valor) retornado pela plataforma
type Action struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

// InsightRow é uma linha crua de insights, no nível de conta ou de campanha
type InsightRow struct {
	AccountID    string   `json:"account_id"`
	AccountName  string   `json:"account_name"`
	CampaignID   string   `json:"campaign_id"`
	CampaignName string   `json:"campaign_name"`
	Objective    string   `json:"objective"`
	Spend        string   `json:"spend"`
	Impressions  string   `json:"impressions"`
	Clicks       string   `json:"clicks"`
	Actions      []Action `json:"actions"`
	DateStart    string   `json:"date_start"`
	DateStop     string   `json:"date_stop"`
}

// ActionValue retorna o valor inteiro de um tipo de ação, ou zero quando a
// ação não aparece na linha ou o valor não é numérico
func (r *InsightRow) ActionValue(actionType string) int {
	for i := range r.Actions {
		action := r.Actions[i]
		if action.ActionType != actionType {
			continue
		}

		value, err := strconv.Atoi(action.Value)
		if err != nil {
			logrus.WithError(err).WithField("action_type", actionType).Error("Erro ao converter valor da ação")
			return 0
		}

		return value
	}

	return 0
}

// Tipos de ação da plataforma usados pelas categorias de objetivo
const (
	ActionLead     = "lead"
	ActionMessage  = "onsite_conversion.messaging_conversation_started_7d"
	ActionClick    = "link_click"
	ActionView     = "video_view"
	ActionPurchase = "offsite_conversion.fb_pixel_purchase"
)

// Níveis de agregação aceitos pela consulta de insights
const (
	LevelAccount  = "account"
	LevelCampaign = "campaign"
)
