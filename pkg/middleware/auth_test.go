package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authProtected(secret string) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return AuthMiddleware(secret)(next)
}

func TestAuthMiddleware(t *testing.T) {
	secret := "segredo-de-teste"

	t.Run("Token emitido com o segredo da aplicação passa", func(t *testing.T) {
		token, err := GenerateAdminToken(secret, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/v1/cron/status", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		authProtected(secret).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("Token assinado com outro segredo é recusado", func(t *testing.T) {
		token, err := GenerateAdminToken("outro-segredo", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/v1/cron/status", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		authProtected(secret).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Token vencido é recusado", func(t *testing.T) {
		token, err := GenerateAdminToken(secret, -time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/v1/cron/status", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		authProtected(secret).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Sem cabeçalho Authorization é recusado", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/cron/status", nil)
		rec := httptest.NewRecorder()

		authProtected(secret).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Cabeçalho sem o prefixo Bearer é recusado", func(t *testing.T) {
		token, err := GenerateAdminToken(secret, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/v1/cron/status", nil)
		req.Header.Set("Authorization", token)
		rec := httptest.NewRecorder()

		authProtected(secret).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Healthcheck dispensa token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
		rec := httptest.NewRecorder()

		authProtected(secret).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
