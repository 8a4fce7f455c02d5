package alerting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
)

// Tipos de alerta emitidos pelo sistema
const (
	AlertBillingDue      = "billing-due"
	AlertBillingOverdue  = "billing-overdue"
	AlertTokenExpiring   = "token-expiring"
	AlertTokenExpired    = "token-expired"
	AlertBudgetBelowKPI  = "budget-below-kpi"
	AlertCampaignsPaused = "campaigns-paused"
	AlertLeadUnanswered  = "lead-unanswered"
)

// Janelas de supressão por tipo de alerta. A janela do alerta de lead é
// configurável e resolvida no serviço.
var windowByType = map[string]time.Duration{
	AlertBillingDue:      24 * time.Hour,
	AlertBillingOverdue:  12 * time.Hour,
	AlertTokenExpiring:   6 * time.Hour,
	AlertTokenExpired:    6 * time.Hour,
	AlertBudgetBelowKPI:  6 * time.Hour,
	AlertCampaignsPaused: 6 * time.Hour,
}

// IsDue aplica a máquina de estados de deduplicação: sem estado anterior,
// chave de evento diferente, ou janela de supressão vencida → devido;
// caso contrário → suprimido.
func IsDue(state *domain.AlertState, eventKey string, window time.Duration, now time.Time) bool {
	if state == nil {
		return true
	}

	if state.LastEventKey != eventKey {
		return true
	}

	return now.Sub(state.LastSentAt) > window
}

// BillingEventKey constrói a chave de evento de cobrança a partir da data
// de vencimento. A mesma data só re-dispara após a janela vencer.
func BillingEventKey(kind, dueDate string) string {
	return fmt.Sprintf("%s:%s", kind, dueDate)
}

// TokenEventKey constrói a chave do alerta de token. Para "expiring", o
// balde de dias restantes entra na chave para o aviso re-disparar uma vez
// por dia conforme o prazo se aproxima, e não exatamente uma vez.
func TokenEventKey(identity string, daysLeft int, expiring bool) string {
	if expiring {
		return fmt.Sprintf("%s:d%d", identity, daysLeft)
	}
	return identity
}

// CampaignSetEventKey constrói a chave a partir do conjunto ordenado de
// campanhas afetadas. Qualquer mudança no conjunto re-dispara o alerta
// mesmo dentro da janela de supressão.
func CampaignSetEventKey(campaignIDs []string) string {
	ids := append([]string(nil), campaignIDs...)
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

// isPausedStatus decide se um status efetivo conta como "pausado".
// ARCHIVED e DELETED ficam de fora; INACTIVE e qualquer *_PAUSED contam.
func isPausedStatus(effectiveStatus string) bool {
	switch effectiveStatus {
	case "ARCHIVED", "DELETED", "":
		return false
	case "INACTIVE", "PAUSED":
		return true
	}

	return strings.HasSuffix(effectiveStatus, "_PAUSED")
}
