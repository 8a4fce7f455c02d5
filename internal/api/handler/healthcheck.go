package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

var startedAt = time.Now()

// HealthcheckHandler responde a sonda de liveness com o tempo de atividade
func HealthcheckHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		err := json.NewEncoder(w).Encode(map[string]any{
			"status":     "ok",
			"time":       time.Now().UTC().Format(time.RFC3339),
			"uptime_sec": int64(time.Since(startedAt).Seconds()),
		})
		if err != nil {
			logrus.WithError(err).Warn("Erro ao responder o healthcheck")
		}
	})
}
