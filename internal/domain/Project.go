package domain

import "time"

// KPIType é a categoria de métrica principal configurada para um projeto
type KPIType string

const (
	KPILead     KPIType = "LEAD"
	KPIMessage  KPIType = "MESSAGE"
	KPIClick    KPIType = "CLICK"
	KPIView     KPIType = "VIEW"
	KPIPurchase KPIType = "PURCHASE"
)

// Project é o registro canônico e imutável de um projeto de cliente.
// As configurações são substituídas por inteiro a cada atualização
// (copy-on-write), nunca alteradas em campos isolados.
type Project struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	ChatID        int64           `json:"chatId"`
	AdAccountID   string          `json:"adAccountId"`
	TokenIdentity string          `json:"tokenIdentity"`
	LeadFormIDs   []string        `json:"leadFormIds,omitempty"`
	PortalEnabled bool            `json:"portalEnabled"`
	Active        bool            `json:"active"`
	Billing       BillingSettings `json:"billing"`
	KPI           KPISettings     `json:"kpi"`
	Reports       ReportSettings  `json:"reports"`
	Alerts        AlertSettings   `json:"alerts"`
}

type BillingSettings struct {
	DueDate string  `json:"dueDate,omitempty"` // date-only (YYYY-MM-DD)
	Amount  float64 `json:"amount,omitempty"`
}

type KPISettings struct {
	Type      KPIType `json:"type,omitempty"`
	TargetCPA float64 `json:"targetCpa,omitempty"`
}

type ReportSettings struct {
	Enabled bool     `json:"enabled"`
	Slots   []string `json:"slots,omitempty"` // horários "HH:MM" (UTC)
}

type AlertSettings struct {
	Enabled           bool `json:"enabled"`
	LeadStaleAfterMin int  `json:"leadStaleAfterMin,omitempty"`
}

// AccessToken é o resultado canônico da consulta de token de acesso
type AccessToken struct {
	Identity    string    `json:"identity"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
