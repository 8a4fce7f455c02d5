package metadomain

// Campaign é o registro cru de uma campanha na listagem da plataforma.
// Valores de orçamento chegam como inteiros em unidade menor (centavos),
// em formato string.
type Campaign struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	EffectiveStatus string `json:"effective_status"`
	Objective       string `json:"objective"`
	DailyBudget     string `json:"daily_budget"`
	BudgetRemaining string `json:"budget_remaining"`
	UpdatedTime     string `json:"updated_time"`
}

// LeadField é um campo preenchido do formulário de lead
type LeadField struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// LeadRow é o registro cru de um lead capturado
type LeadRow struct {
	ID          string      `json:"id"`
	CreatedTime string      `json:"created_time"`
	FieldData   []LeadField `json:"field_data"`
}

type Cursors struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

type Paging struct {
	Cursors Cursors `json:"cursors"`
	Next    string  `json:"next"`
}
