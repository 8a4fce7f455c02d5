package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/buyclientuz-pixel/targetbot-sub000/internal/scheduler"
	"github.com/buyclientuz-pixel/targetbot-sub000/pkg/apiErrors"
)

// CronJobType define o tipo de cron job que será executada
const (
	CronJobTypePortal  = "portal"
	CronJobTypeAlerts  = "alerts"
	CronJobTypeReports = "reports"
	CronJobTypeAll     = "all"
)

// CronJobServices contém os serviços de cron disponíveis para execução manual
type CronJobServices struct {
	PortalSyncService *scheduler.PortalSyncService
	AlertSyncService  *scheduler.AlertSyncService
	AutoReportService *scheduler.AutoReportService
}

// RunCronJob executa manualmente uma cron job específica
func RunCronJob(services CronJobServices) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RunCronJob")

		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tipo de cron job não especificado", nil)
			return
		}

		switch cronType {
		case CronJobTypePortal:
			if services.PortalSyncService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de sincronização do portal não disponível", nil)
				return
			}
			services.PortalSyncService.TriggerManualSync()

		case CronJobTypeAlerts:
			if services.AlertSyncService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de alertas não disponível", nil)
				return
			}
			services.AlertSyncService.TriggerManualSync()

		case CronJobTypeReports:
			if services.AutoReportService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de relatórios automáticos não disponível", nil)
				return
			}
			services.AutoReportService.TriggerManualSync()

		case CronJobTypeAll:
			if services.PortalSyncService != nil {
				services.PortalSyncService.TriggerManualSync()
			}
			if services.AlertSyncService != nil {
				services.AlertSyncService.TriggerManualSync()
			}
			if services.AutoReportService != nil {
				services.AutoReportService.TriggerManualSync()
			}

		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de cron job inválido. Valores aceitos: portal, alerts, reports, all", nil)
			return
		}

		response := map[string]any{
			"message": "Cron job iniciada com sucesso",
			"type":    cronType,
		}
		json.NewEncoder(w).Encode(response)
	})
}

// GetCronStatus retorna o status das cron jobs
func GetCronStatus(services CronJobServices) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetCronStatus")

		status := map[string]any{
			"portal":  services.PortalSyncService.GetStatus(),
			"alerts":  services.AlertSyncService.GetStatus(),
			"reports": services.AutoReportService.GetStatus(),
		}

		json.NewEncoder(w).Encode(status)
	})
}
