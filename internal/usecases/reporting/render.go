package reporting

import (
	"fmt"
	"strings"

	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/usecases/insighting"
	"github.com/buyclientuz-pixel/targetbot-sub000/pkg/utils"
)

// kpiLabels traduz a categoria de meta para o rótulo exibido no relatório
var kpiLabels = map[domain.KPIType]string{
	domain.KPILead:     "Leads",
	domain.KPIMessage:  "Mensagens",
	domain.KPIClick:    "Cliques",
	domain.KPIView:     "Visualizações",
	domain.KPIPurchase: "Compras",
}

var periodLabels = map[string]string{
	domain.PeriodToday:     "Hoje",
	domain.PeriodYesterday: "Ontem",
	domain.PeriodWeek:      "Últimos 7 dias",
	domain.PeriodMonth:     "Últimos 30 dias",
	domain.PeriodMax:       "Desde o início",
}

// basePeriods é a comparação fixa de todo relatório: hoje, ontem, semana
// e mês. O relatório composto das segundas acrescenta períodos a partir
// dessa base.
var basePeriods = []string{
	domain.PeriodToday,
	domain.PeriodYesterday,
	domain.PeriodWeek,
	domain.PeriodMonth,
}

type reportData struct {
	Summaries    map[string]*domain.SummaryMetrics
	Goal         domain.KPIType
	TopCampaigns []insighting.GoalResult
	Composite    bool
}

// renderReport monta o texto HTML do relatório automático. A seção desde
// o início da conta só aparece no relatório composto das segundas-feiras.
func renderReport(project *domain.Project, data *reportData) string {
	var b strings.Builder

	goalLabel := kpiLabels[data.Goal]
	if goalLabel == "" {
		goalLabel = "Resultados"
	}

	fmt.Fprintf(&b, "📊 <b>%s</b>\nMeta principal: %s\n", project.Name, goalLabel)

	for _, period := range basePeriods {
		summary := data.Summaries[period]
		if summary == nil {
			continue
		}

		fmt.Fprintf(&b, "\n<b>%s</b>\n", periodLabels[period])
		writeSummaryLines(&b, summary, data.Goal)
	}

	if trend := renderTrend(data.Summaries[domain.PeriodToday], data.Summaries[domain.PeriodYesterday], data.Goal); trend != "" {
		fmt.Fprintf(&b, "\n%s\n", trend)
	}

	if len(data.TopCampaigns) > 0 {
		fmt.Fprintf(&b, "\n<b>Melhores campanhas</b>\n")
		for i, campaign := range data.TopCampaigns {
			fmt.Fprintf(&b, "%d. %s: %d resultado(s), gasto %s\n",
				i+1, campaign.Name, campaign.Results, utils.FormatMoney(campaign.Spend))
		}
	}

	if data.Composite {
		if summary := data.Summaries[domain.PeriodMax]; summary != nil {
			fmt.Fprintf(&b, "\n<b>%s</b>\n", periodLabels[domain.PeriodMax])
			writeSummaryLines(&b, summary, data.Goal)
		}
	}

	return b.String()
}

func writeSummaryLines(b *strings.Builder, summary *domain.SummaryMetrics, goal domain.KPIType) {
	results := summary.Leads
	if goal == domain.KPIMessage {
		results = summary.Messages
	}

	fmt.Fprintf(b, "Gasto: %s\n", utils.FormatMoney(summary.Spend))
	fmt.Fprintf(b, "Resultados: %d\n", results)

	if summary.CPA != nil {
		fmt.Fprintf(b, "CPA: %s\n", utils.FormatMoney(*summary.CPA))
	}

	fmt.Fprintf(b, "Impressões: %d | Cliques: %d\n", summary.Impressions, summary.Clicks)
}

// renderTrend compara os resultados de hoje com os de ontem
func renderTrend(today, yesterday *domain.SummaryMetrics, goal domain.KPIType) string {
	if today == nil || yesterday == nil {
		return ""
	}

	current := today.Leads
	previous := yesterday.Leads
	if goal == domain.KPIMessage {
		current = today.Messages
		previous = yesterday.Messages
	}

	switch {
	case current > previous:
		return fmt.Sprintf("📈 Em alta: %d resultado(s) hoje contra %d ontem", current, previous)
	case current < previous:
		return fmt.Sprintf("📉 Em queda: %d resultado(s) hoje contra %d ontem", current, previous)
	default:
		return fmt.Sprintf("➡️ Estável: %d resultado(s) hoje, igual a ontem", current)
	}
}
