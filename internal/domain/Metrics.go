package domain

import "time"

// SummaryMetrics agrega as métricas de um projeto para o período solicitado,
// acompanhadas das visões "hoje" e "total" exibidas lado a lado no portal.
// CPA e CPAToday são derivadas e ficam nulas quando o denominador é zero.
type SummaryMetrics struct {
	Spend       float64  `json:"spend"`
	Impressions int      `json:"impressions"`
	Clicks      int      `json:"clicks"`
	Leads       int      `json:"leads"`
	Messages    int      `json:"messages"`
	CPA         *float64 `json:"cpa,omitempty"`
	LeadsToday  int      `json:"leadsToday"`
	CPAToday    *float64 `json:"cpaToday,omitempty"`
	SpendToday  float64  `json:"spendToday"`
	LeadsTotal  int      `json:"leadsTotal"`
}

// CampaignRow representa as métricas de uma campanha individual no período
type CampaignRow struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Spend       float64  `json:"spend"`
	Impressions int      `json:"impressions"`
	Clicks      int      `json:"clicks"`
	Leads       int      `json:"leads"`
	CPA         *float64 `json:"cpa,omitempty"`
}

// CampaignStatus representa o estado de ciclo de vida de uma campanha.
// Os valores de orçamento já estão convertidos de centavos para decimal.
type CampaignStatus struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Status          string    `json:"status"`
	EffectiveStatus string    `json:"effectiveStatus"`
	DailyBudget     float64   `json:"dailyBudget"`
	BudgetRemaining float64   `json:"budgetRemaining"`
	UpdatedTime     time.Time `json:"updatedTime"`
}

// Lead representa um lead capturado via formulário da plataforma de anúncios
type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	FormID    string    `json:"formId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Answered  bool      `json:"answered"`
}
