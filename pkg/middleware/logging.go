package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/buyclientuz-pixel/targetbot-sub000/pkg/log"
)

// slowThreshold devolve o limite de lentidão por classe de rota: as
// rotas de sincronização e de cron conversam com a plataforma de
// anúncios e toleram respostas bem mais demoradas.
func slowThreshold(path string) time.Duration {
	if strings.HasSuffix(path, "/sync") || strings.HasPrefix(path, "/v1/cron/") {
		return 10 * time.Second
	}
	return 500 * time.Millisecond
}

// LoggingMiddleware registra cada requisição HTTP com o ID de correlação.
// Em desenvolvimento o logger global filtra os campos por conta própria.
func LoggingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, correlationID := log.WithCorrelationID(r.Context())
			r = r.WithContext(ctx)

			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(recorder, r)

			elapsed := time.Since(start)

			fields := log.Fields{
				"correlation_id": correlationID,
				"method":         r.Method,
				"path":           r.URL.Path,
				"status_code":    recorder.status,
				"duration_ms":    elapsed.Milliseconds(),
			}
			if !log.IsDevelopment() {
				fields["remote_addr"] = r.RemoteAddr
				fields["query"] = r.URL.RawQuery
				fields["user_agent"] = r.UserAgent()
			}

			logger := log.L.WithFields(fields)
			switch {
			case recorder.status >= http.StatusInternalServerError:
				logger.Error("Requisição finalizada com erro")
			case recorder.status >= http.StatusBadRequest:
				logger.Warn("Requisição finalizada com aviso")
			default:
				logger.Info("Requisição finalizada")
			}

			if elapsed > slowThreshold(r.URL.Path) {
				logger.Warnf("Requisição lenta: %s", elapsed)
			}
		})
	}
}

// statusRecorder captura o status code escrito pelo handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LogPanicMiddleware intercepta pânicos não tratados, registra a pilha e
// responde 500
func LogPanicMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.L.WithFields(log.Fields{
						"correlation_id": log.GetCorrelationID(r.Context()),
						"method":         r.Method,
						"path":           r.URL.Path,
						"error":          fmt.Sprintf("%v", rec),
					}).Error("Pânico não tratado na aplicação")
					log.L.Error(string(debug.Stack()))

					http.Error(w, "Erro interno no servidor", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
