// Package cache implementa o cache com portão de frescor sobre o armazém
// chave-valor. Cada entrada é particionada por (projeto, escopo) e carrega
// seu próprio TTL; a escrita é last-writer-wins, sem token de versão.
package cache

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/storage"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TTLs padrão por classe de tarefa, em segundos
const (
	TTLInsights       = 60   // métricas de insights/resumo/campanhas
	TTLCampaignStatus = 300  // lista de campanhas, mais pesada e estável
	TTLLeadForms      = 1800 // metadados de formulários de leads
)

// storeTTLSeconds limita a vida da chave no nível do armazém. O portão de
// frescor decide a validade muito antes disso; o armazém só poda lixo.
const storeTTLSeconds = 24 * 60 * 60

// Escopos de cache por tipo de tarefa
func ScopeInsights(periodKey string) string  { return "insights:" + periodKey }
func ScopeSummary(periodKey string) string   { return "summary:" + periodKey }
func ScopeCampaigns(periodKey string) string { return "campaigns:" + periodKey }

const (
	ScopeCampaignStatus = "campaign-status"
	ScopeLeadForms      = "lead-forms"
)

// Entry é uma entrada de cache tipada por carga útil
type Entry[T any] struct {
	ProjectID  string             `json:"projectId"`
	Scope      string             `json:"scope"`
	FetchedAt  time.Time          `json:"fetchedAt"`
	TTLSeconds int                `json:"ttlSeconds"`
	Period     domain.CachePeriod `json:"period"`
	Payload    T                  `json:"payload"`
}

// IsFresh aplica o predicado de frescor: now < fetchedAt + ttl·1000, em
// milissegundos, com desigualdade estrita na fronteira.
func IsFresh[T any](e *Entry[T], now time.Time) bool {
	return now.UnixMilli() < e.FetchedAt.UnixMilli()+int64(e.TTLSeconds)*1000
}

// Key deriva deterministicamente a chave de armazenamento de (projeto, escopo)
func Key(projectID, scope string) string {
	return fmt.Sprintf("cache:%s:%s", projectID, scope)
}

// Store é o acesso ao cache sobre um KVStore
type Store struct {
	kv storage.KVStore
}

func NewStore(kv storage.KVStore) *Store {
	return &Store{kv: kv}
}

// Get lê a entrada de (projeto, escopo). O segundo retorno indica se a
// entrada está fresca; uma entrada vencida ainda é retornada para que o
// chamador possa servi-la como "stale-but-available" quando a atualização
// falhar.
func Get[T any](s *Store, projectID, scope string, now time.Time) (*Entry[T], bool, error) {
	raw, found, err := s.kv.Get(Key(projectID, scope))
	if err != nil {
		return nil, false, errors.Wrap(err, "erro ao ler entrada do cache")
	}

	if !found {
		return nil, false, nil
	}

	var entry Entry[T]
	if err := json.Unmarshal(raw, &entry); err != nil {
		// Entrada corrompida é tratada como ausente
		return nil, false, nil
	}

	return &entry, IsFresh(&entry, now), nil
}

// Put grava (ou sobrescreve) a entrada de cache
func Put[T any](s *Store, entry *Entry[T]) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "erro ao codificar entrada do cache")
	}

	err = s.kv.Put(Key(entry.ProjectID, entry.Scope), raw, &storage.PutOptions{TTLSeconds: storeTTLSeconds})
	if err != nil {
		return errors.Wrap(err, "erro ao gravar entrada do cache")
	}

	return nil
}
