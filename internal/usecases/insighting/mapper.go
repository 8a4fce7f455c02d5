package insighting

import (
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	metadomain "github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/integrator/meta/domain"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
	"github.com/buyclientuz-pixel/targetbot-sub000/pkg/utils"
)

// Valores padrão para linhas com identificadores ausentes ou inválidos.
// Uma linha malformada nunca aborta o lote inteiro.
const (
	placeholderID   = "unknown"
	placeholderName = "Untitled"
)

// actionTypeByKPI mapeia a categoria de objetivo para o tipo de ação medido
var actionTypeByKPI = map[domain.KPIType]string{
	domain.KPILead:     metadomain.ActionLead,
	domain.KPIMessage:  metadomain.ActionMessage,
	domain.KPIClick:    metadomain.ActionClick,
	domain.KPIView:     metadomain.ActionView,
	domain.KPIPurchase: metadomain.ActionPurchase,
}

// objectiveToKPI mapeia o "objective" da campanha para a categoria de meta
var objectiveToKPI = map[string]domain.KPIType{
	"LEAD_GENERATION":    domain.KPILead,
	"OUTCOME_LEADS":      domain.KPILead,
	"MESSAGES":           domain.KPIMessage,
	"OUTCOME_ENGAGEMENT": domain.KPIMessage,
	"LINK_CLICKS":        domain.KPIClick,
	"OUTCOME_TRAFFIC":    domain.KPIClick,
	"VIDEO_VIEWS":        domain.KPIView,
	"OUTCOME_AWARENESS":  domain.KPIView,
	"PURCHASE":           domain.KPIPurchase,
	"OUTCOME_SALES":      domain.KPIPurchase,
	"CONVERSIONS":        domain.KPIPurchase,
}

func parseIntField(value string) int {
	if value == "" {
		return 0
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		logrus.WithField("value", value).Debug("Campo inteiro inválido, usando zero")
		return 0
	}

	return parsed
}

func parseFloatField(value string) float64 {
	if value == "" {
		return 0
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logrus.WithField("value", value).Debug("Campo decimal inválido, usando zero")
		return 0
	}

	return parsed
}

// parseMinorUnits converte um valor inteiro em unidade menor (centavos)
// para decimal
func parseMinorUnits(value string) float64 {
	cents := parseIntField(value)
	return utils.RoundWithTwoDecimalPlace(float64(cents) / 100)
}

// derivedCPA calcula spend/resultados, ou nil quando não há resultados
func derivedCPA(spend float64, results int) *float64 {
	if results <= 0 {
		return nil
	}

	cpa := utils.RoundWithTwoDecimalPlace(spend / float64(results))
	return &cpa
}

// insightTotals agrega um conjunto de linhas cruas de insights
type insightTotals struct {
	Spend       float64
	Impressions int
	Clicks      int
	Leads       int
	Messages    int
}

func sumInsightRows(rows []metadomain.InsightRow) insightTotals {
	var totals insightTotals

	for i := range rows {
		row := &rows[i]
		totals.Spend += parseFloatField(row.Spend)
		totals.Impressions += parseIntField(row.Impressions)
		totals.Clicks += parseIntField(row.Clicks)
		totals.Leads += row.ActionValue(metadomain.ActionLead)
		totals.Messages += row.ActionValue(metadomain.ActionMessage)
	}

	totals.Spend = utils.RoundWithTwoDecimalPlace(totals.Spend)
	return totals
}

// MapCampaignRows transforma linhas cruas com recorte por campanha em
// métricas por campanha, com CPA derivado
func MapCampaignRows(rows []metadomain.InsightRow) []domain.CampaignRow {
	campaignRows := make([]domain.CampaignRow, 0, len(rows))

	for i := range rows {
		row := &rows[i]

		id := row.CampaignID
		if id == "" {
			id = placeholderID
		}

		name := row.CampaignName
		if name == "" {
			name = placeholderName
		}

		spend := utils.RoundWithTwoDecimalPlace(parseFloatField(row.Spend))
		leads := row.ActionValue(metadomain.ActionLead)

		campaignRows = append(campaignRows, domain.CampaignRow{
			ID:          id,
			Name:        name,
			Spend:       spend,
			Impressions: parseIntField(row.Impressions),
			Clicks:      parseIntField(row.Clicks),
			Leads:       leads,
			CPA:         derivedCPA(spend, leads),
		})
	}

	return campaignRows
}

// MapCampaignStatuses transforma a listagem crua de campanhas em estados
// de ciclo de vida, convertendo orçamentos de centavos para decimal
func MapCampaignStatuses(campaigns []metadomain.Campaign) []domain.CampaignStatus {
	statuses := make([]domain.CampaignStatus, 0, len(campaigns))

	for i := range campaigns {
		campaign := &campaigns[i]

		id := campaign.ID
		if id == "" {
			id = placeholderID
		}

		name := campaign.Name
		if name == "" {
			name = placeholderName
		}

		status := domain.CampaignStatus{
			ID:              id,
			Name:            name,
			Status:          campaign.Status,
			EffectiveStatus: campaign.EffectiveStatus,
			DailyBudget:     parseMinorUnits(campaign.DailyBudget),
			BudgetRemaining: parseMinorUnits(campaign.BudgetRemaining),
		}

		if campaign.UpdatedTime != "" {
			if updatedTime, err := parsePlatformTime(campaign.UpdatedTime); err == nil {
				status.UpdatedTime = updatedTime
			} else {
				logrus.WithFields(logrus.Fields{
					"campaign_id":  id,
					"updated_time": campaign.UpdatedTime,
				}).Debug("Timestamp de campanha inválido, ignorando")
			}
		}

		statuses = append(statuses, status)
	}

	return statuses
}

// parsePlatformTime aceita os formatos de timestamp usados pela plataforma
func parsePlatformTime(value string) (time.Time, error) {
	layouts := []string{
		"2006-01-02T15:04:05-0700",
		time.RFC3339,
	}

	var lastErr error
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed.UTC(), nil
		}
		lastErr = err
	}

	return time.Time{}, lastErr
}

// MapLeads transforma linhas cruas de leads no tipo canônico. Linhas que
// não puderem ser interpretadas são descartadas individualmente.
func MapLeads(rows []metadomain.LeadRow, formID string) []domain.Lead {
	leads := make([]domain.Lead, 0, len(rows))

	for i := range rows {
		row := &rows[i]

		if row.ID == "" {
			logrus.WithField("form_id", formID).Debug("Lead sem identificador descartado")
			continue
		}

		lead := domain.Lead{
			ID:     row.ID,
			Name:   placeholderName,
			FormID: formID,
		}

		if createdAt, err := parsePlatformTime(row.CreatedTime); err == nil {
			lead.CreatedAt = createdAt
		}

		for _, field := range row.FieldData {
			if len(field.Values) == 0 {
				continue
			}
			switch field.Name {
			case "full_name", "name":
				lead.Name = field.Values[0]
			case "phone_number", "phone":
				lead.Phone = field.Values[0]
			}
		}

		leads = append(leads, lead)
	}

	return leads
}

// SumGoalCategories soma, por categoria de meta, o valor medido nas linhas
// de insights com recorte por campanha
func SumGoalCategories(rows []metadomain.InsightRow) map[domain.KPIType]int {
	totals := make(map[domain.KPIType]int)

	for i := range rows {
		row := &rows[i]

		kpi, ok := objectiveToKPI[row.Objective]
		if !ok {
			logrus.WithField("objective", row.Objective).Debug("Objetivo de campanha não mapeado")
			continue
		}

		totals[kpi] += row.ActionValue(actionTypeByKPI[kpi])
	}

	return totals
}

// MeasuredValue retorna o valor medido de uma categoria em uma linha
func MeasuredValue(row *metadomain.InsightRow, kpi domain.KPIType) int {
	actionType, ok := actionTypeByKPI[kpi]
	if !ok {
		return 0
	}
	return row.ActionValue(actionType)
}

// GoalResult é o desempenho de uma campanha medido por uma categoria de meta
type GoalResult struct {
	ID      string
	Name    string
	Results int
	Spend   float64
	CPA     *float64
}

// MapGoalResults transforma linhas com recorte por campanha em resultados
// medidos pela categoria de meta informada, com CPA derivado sobre o valor
// medido
func MapGoalResults(rows []metadomain.InsightRow, kpi domain.KPIType) []GoalResult {
	results := make([]GoalResult, 0, len(rows))

	for i := range rows {
		row := &rows[i]

		id := row.CampaignID
		if id == "" {
			id = placeholderID
		}

		name := row.CampaignName
		if name == "" {
			name = placeholderName
		}

		spend := utils.RoundWithTwoDecimalPlace(parseFloatField(row.Spend))
		measured := MeasuredValue(row, kpi)

		results = append(results, GoalResult{
			ID:      id,
			Name:    name,
			Results: measured,
			Spend:   spend,
			CPA:     derivedCPA(spend, measured),
		})
	}

	return results
}
