package domain

import "time"

// Nomes das tarefas do plano de sincronização de portal
const (
	SyncTaskLeads = "leads"
)

// PortalSyncState registra o resultado da última sincronização de portal
// de um projeto. É sobrescrito por inteiro a cada execução.
type PortalSyncState struct {
	ProjectID        string     `json:"projectId"`
	PeriodKeys       []string   `json:"periodKeys"`
	LastRunAt        time.Time  `json:"lastRunAt"`
	LastSuccessAt    *time.Time `json:"lastSuccessAt,omitempty"`
	LastErrorAt      *time.Time `json:"lastErrorAt,omitempty"`
	LastErrorMessage string     `json:"lastErrorMessage,omitempty"`
}

// SyncTaskResult é o resultado individual de uma tarefa do plano
type SyncTaskResult struct {
	Task  string `json:"task"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// PortalSyncResult é o resultado consolidado de uma sincronização.
// OK é verdadeiro se ao menos uma tarefa teve sucesso.
type PortalSyncResult struct {
	OK      bool             `json:"ok"`
	Results []SyncTaskResult `json:"results"`
}

// AlertState guarda o estado de deduplicação de um tipo de alerta por
// projeto. Só é alterado em uma decisão de envio bem-sucedida.
type AlertState struct {
	ProjectID    string    `json:"projectId"`
	Type         string    `json:"type"`
	LastSentAt   time.Time `json:"lastSentAt"`
	LastEventKey string    `json:"lastEventKey"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ReportScheduleState registra, por projeto, o último disparo de cada
// horário configurado de relatório automático.
type ReportScheduleState struct {
	ProjectID string               `json:"projectId"`
	LastRunAt time.Time            `json:"lastRunAt"`
	Slots     map[string]time.Time `json:"slots,omitempty"`
}
