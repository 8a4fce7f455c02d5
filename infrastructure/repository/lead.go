package repository

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/storage"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
)

// LeadRepository persiste os leads sincronizados de um projeto como
// documentos individuais no armazém de blobs
type LeadRepository interface {
	SaveLeads(projectID string, leads []domain.Lead) error
	ListLeads(projectID string) ([]domain.Lead, error)
	MarkAnswered(projectID, leadID string) error
}

type leadRepository struct {
	blobs storage.BlobStore
}

func NewLeadRepository(blobs storage.BlobStore) LeadRepository {
	return &leadRepository{blobs: blobs}
}

func leadsCollection(projectID string) string {
	return "leads:" + projectID
}

func (r *leadRepository) SaveLeads(projectID string, leads []domain.Lead) error {
	for i := range leads {
		lead := leads[i]

		// Não sobrescrever o estado de atendimento de um lead já gravado
		existing, err := r.getLead(projectID, lead.ID)
		if err == nil && existing != nil && existing.Answered {
			lead.Answered = true
		}

		doc, err := json.Marshal(lead)
		if err != nil {
			return errors.Wrapf(err, "erro ao codificar lead %s", lead.ID)
		}

		if err := r.blobs.Put(leadsCollection(projectID), lead.ID, doc); err != nil {
			return errors.Wrapf(err, "erro ao gravar lead %s", lead.ID)
		}
	}

	return nil
}

func (r *leadRepository) getLead(projectID, leadID string) (*domain.Lead, error) {
	doc, found, err := r.blobs.Get(leadsCollection(projectID), leadID)
	if err != nil || !found {
		return nil, err
	}

	var lead domain.Lead
	if err := json.Unmarshal(doc, &lead); err != nil {
		return nil, err
	}

	return &lead, nil
}

func (r *leadRepository) ListLeads(projectID string) ([]domain.Lead, error) {
	ids, err := r.blobs.List(leadsCollection(projectID))
	if err != nil {
		return nil, errors.Wrap(err, "erro ao listar leads")
	}

	leads := make([]domain.Lead, 0, len(ids))
	for _, id := range ids {
		lead, err := r.getLead(projectID, id)
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"project_id": projectID,
				"lead_id":    id,
			}).Warn("Lead ignorado por erro de leitura")
			continue
		}
		if lead != nil {
			leads = append(leads, *lead)
		}
	}

	sort.Slice(leads, func(i, j int) bool {
		return leads[i].CreatedAt.Before(leads[j].CreatedAt)
	})

	return leads, nil
}

func (r *leadRepository) MarkAnswered(projectID, leadID string) error {
	lead, err := r.getLead(projectID, leadID)
	if err != nil {
		return errors.Wrapf(err, "erro ao buscar lead %s", leadID)
	}

	if lead == nil {
		return nil
	}

	lead.Answered = true

	doc, err := json.Marshal(lead)
	if err != nil {
		return errors.Wrapf(err, "erro ao codificar lead %s", leadID)
	}

	return r.blobs.Put(leadsCollection(projectID), leadID, doc)
}
