package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/usecases/insighting"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/usecases/syncing"
	"github.com/buyclientuz-pixel/targetbot-sub000/pkg/apiErrors"
)

// GetProjectSummary retorna o resumo de métricas do projeto no período
func GetProjectSummary(service insighting.Insighter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetProjectSummary")

		projectID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if projectID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Identificador do projeto não informado", nil)
			return
		}

		period := r.URL.Query().Get("period")
		if period == "" {
			period = domain.PeriodToday
		}

		summary, err := service.LoadSummary(projectID, period)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(summary)
	})
}

// GetProjectCampaigns retorna as métricas por campanha do projeto no período
func GetProjectCampaigns(service insighting.Insighter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetProjectCampaigns")

		projectID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if projectID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Identificador do projeto não informado", nil)
			return
		}

		period := r.URL.Query().Get("period")
		if period == "" {
			period = domain.PeriodToday
		}

		rows, err := service.LoadCampaignRows(projectID, period)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rows)
	})
}

// GetProjectCampaignStatus retorna o estado de ciclo de vida das campanhas
func GetProjectCampaignStatus(service insighting.Insighter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetProjectCampaignStatus")

		projectID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if projectID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Identificador do projeto não informado", nil)
			return
		}

		statuses, err := service.LoadCampaignStatuses(projectID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(statuses)
	})
}

type syncRequest struct {
	Periods      []string `json:"periods,omitempty"`
	AllowPartial bool     `json:"allowPartial,omitempty"`
}

// SyncProject executa a sincronização do portal para um projeto
func SyncProject(service syncing.Syncer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - SyncProject")

		projectID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if projectID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Identificador do projeto não informado", nil)
			return
		}

		var req syncRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Corpo da requisição inválido", nil)
				return
			}
		}

		result, err := service.SyncPortal(projectID, syncing.Options{
			Periods:      req.Periods,
			AllowPartial: req.AllowPartial,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	})
}

// writeDomainError traduz os erros de domínio para os códigos da API
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsConfigError(err):
		apiErrors.WriteError(w, apiErrors.ErrProjectNotBound, err.Error(), nil)
	case domain.IsUpstreamError(err):
		apiErrors.WriteError(w, apiErrors.ErrUpstreamPlatform, "Erro na plataforma de anúncios", err.Error())
	default:
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, err.Error(), nil)
	}
}
