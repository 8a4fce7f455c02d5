package repository

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/storage"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
)

// AlertStateRepository guarda o estado de deduplicação por (projeto, tipo)
type AlertStateRepository interface {
	Get(projectID, alertType string) (*domain.AlertState, error)
	Save(state *domain.AlertState) error
}

// SyncStateRepository guarda o estado da última sincronização de portal
type SyncStateRepository interface {
	Get(projectID string) (*domain.PortalSyncState, error)
	Save(state *domain.PortalSyncState) error
}

// ReportScheduleRepository guarda os últimos disparos de relatório por slot
type ReportScheduleRepository interface {
	Get(projectID string) (*domain.ReportScheduleState, error)
	Save(state *domain.ReportScheduleState) error
}

func alertStateKey(projectID, alertType string) string {
	return fmt.Sprintf("alert-state:%s:%s", projectID, alertType)
}

func syncStateKey(projectID string) string {
	return fmt.Sprintf("portal-sync:%s", projectID)
}

func reportScheduleKey(projectID string) string {
	return fmt.Sprintf("report-schedule:%s", projectID)
}

// getJSON lê e decodifica um documento do armazém chave-valor; chave
// ausente retorna destino nulo sem erro
func getJSON[T any](kv storage.KVStore, key string) (*T, error) {
	raw, found, err := kv.Get(key)
	if err != nil {
		return nil, errors.Wrapf(err, "erro ao ler %s", key)
	}

	if !found {
		return nil, nil
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, errors.Wrapf(err, "erro ao decodificar %s", key)
	}

	return &value, nil
}

func putJSON(kv storage.KVStore, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "erro ao codificar %s", key)
	}

	if err := kv.Put(key, raw, nil); err != nil {
		return errors.Wrapf(err, "erro ao gravar %s", key)
	}

	return nil
}

type alertStateRepository struct {
	kv storage.KVStore
}

func NewAlertStateRepository(kv storage.KVStore) AlertStateRepository {
	return &alertStateRepository{kv: kv}
}

func (r *alertStateRepository) Get(projectID, alertType string) (*domain.AlertState, error) {
	return getJSON[domain.AlertState](r.kv, alertStateKey(projectID, alertType))
}

func (r *alertStateRepository) Save(state *domain.AlertState) error {
	return putJSON(r.kv, alertStateKey(state.ProjectID, state.Type), state)
}

type syncStateRepository struct {
	kv storage.KVStore
}

func NewSyncStateRepository(kv storage.KVStore) SyncStateRepository {
	return &syncStateRepository{kv: kv}
}

func (r *syncStateRepository) Get(projectID string) (*domain.PortalSyncState, error) {
	return getJSON[domain.PortalSyncState](r.kv, syncStateKey(projectID))
}

func (r *syncStateRepository) Save(state *domain.PortalSyncState) error {
	return putJSON(r.kv, syncStateKey(state.ProjectID), state)
}

type reportScheduleRepository struct {
	kv storage.KVStore
}

func NewReportScheduleRepository(kv storage.KVStore) ReportScheduleRepository {
	return &reportScheduleRepository{kv: kv}
}

func (r *reportScheduleRepository) Get(projectID string) (*domain.ReportScheduleState, error) {
	return getJSON[domain.ReportScheduleState](r.kv, reportScheduleKey(projectID))
}

func (r *reportScheduleRepository) Save(state *domain.ReportScheduleState) error {
	return putJSON(r.kv, reportScheduleKey(state.ProjectID), state)
}
