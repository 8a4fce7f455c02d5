package domain

import (
	"errors"
	"fmt"
)

// ConfigError indica configuração ausente ou inválida de um projeto
// (conta de anúncios não vinculada, token ausente, portal não provisionado).
// Nunca deve ser re-tentado automaticamente.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("erro de configuração: %s", e.Reason)
}

func NewConfigError(format string, args ...any) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// UpstreamError indica falha transitória da plataforma de anúncios
// (resposta não-2xx). Nunca é cacheado; o chamador decide re-tentar.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("erro da plataforma de anúncios: status %d: %s", e.Status, e.Body)
}

func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// ErrTokenNotFound indica que não há token de acesso para a identidade
var ErrTokenNotFound = errors.New("token de acesso não encontrado")
