package handler

import (
	"net/http"

	"github.com/buyclientuz-pixel/targetbot-sub000/internal/api/handler/router"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/usecases/insighting"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/usecases/syncing"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Projects(insightService insighting.Insighter, syncService syncing.Syncer) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/projects/:id/summary",
			Method:  http.MethodGet,
			Handler: GetProjectSummary(insightService),
		},
		{
			Path:    "/v1/projects/:id/campaigns",
			Method:  http.MethodGet,
			Handler: GetProjectCampaigns(insightService),
		},
		{
			Path:    "/v1/projects/:id/campaigns/status",
			Method:  http.MethodGet,
			Handler: GetProjectCampaignStatus(insightService),
		},
		{
			Path:    "/v1/projects/:id/sync",
			Method:  http.MethodPost,
			Handler: SyncProject(syncService),
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/cron/:type/run",
			Method:  http.MethodPost,
			Handler: RunCronJob(services),
		},
		{
			Path:    "/v1/cron/status",
			Method:  http.MethodGet,
			Handler: GetCronStatus(services),
		},
	}
}
