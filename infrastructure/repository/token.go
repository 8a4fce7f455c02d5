package repository

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/storage"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/config"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
)

type TokenRepository interface {
	GetToken(identity string) (*domain.AccessToken, error)
}

type tokenRepository struct {
	cfg *config.Config
	kv  storage.KVStore
}

func NewTokenRepository(cfg *config.Config, kv storage.KVStore) TokenRepository {
	return &tokenRepository{cfg: cfg, kv: kv}
}

// rawToken aceita os apelidos históricos dos documentos de token
type rawToken struct {
	AccessToken      string `json:"accessToken"`
	AccessTokenSnake string `json:"access_token"`
	TokenLegacy      string `json:"token"`
	ExpiresAt        string `json:"expiresAt"`
	ExpiresAtSnake   string `json:"expires_at"`
}

// GetToken resolve o token de acesso de uma identidade. Identidade vazia,
// ou sem documento próprio, cai no token global configurado; sem nenhum
// dos dois, retorna domain.ErrTokenNotFound.
func (repo *tokenRepository) GetToken(identity string) (*domain.AccessToken, error) {
	if identity != "" {
		raw, found, err := repo.kv.Get(fmt.Sprintf("token:%s", identity))
		if err != nil {
			return nil, errors.Wrap(err, "erro ao buscar token")
		}

		if found {
			var doc rawToken
			if err := json.Unmarshal(raw, &doc); err != nil {
				return nil, errors.Wrapf(err, "erro ao decodificar token %s", identity)
			}

			token := &domain.AccessToken{
				Identity:    identity,
				AccessToken: firstString(doc.AccessToken, doc.AccessTokenSnake, doc.TokenLegacy),
			}

			if rawExpires := firstString(doc.ExpiresAt, doc.ExpiresAtSnake); rawExpires != "" {
				if expiresAt, err := time.Parse(time.RFC3339, rawExpires); err == nil {
					token.ExpiresAt = expiresAt
				}
			}

			if token.AccessToken != "" {
				return token, nil
			}
		}
	}

	if repo.cfg.Meta.AccessToken != "" {
		return &domain.AccessToken{
			Identity:    identity,
			AccessToken: repo.cfg.Meta.AccessToken,
		}, nil
	}

	return nil, domain.ErrTokenNotFound
}
