package repository

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/storage"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const projectsCollection = "projects"

type ProjectRepository interface {
	GetProject(id string) (*domain.Project, error)
	ListProjects() ([]*domain.Project, error)
	SaveProject(project *domain.Project) error
}

type projectRepository struct {
	blobs storage.BlobStore
}

func NewProjectRepository(blobs storage.BlobStore) ProjectRepository {
	return &projectRepository{blobs: blobs}
}

// rawProject aceita os apelidos históricos de campos presentes nos
// documentos gravados por versões antigas do sistema (snake_case,
// camelCase e nomes legados). A normalização acontece aqui, na borda do
// armazenamento; o restante do sistema só vê o tipo canônico.
type rawProject struct {
	ID     string `json:"id"`
	IDAlt  string `json:"project_id"`
	Name   string `json:"name"`
	Title  string `json:"title"`
	ChatID int64  `json:"chatId"`
	Chat   int64  `json:"chat_id"`

	AdAccountID    string `json:"adAccountId"`
	AdAccountSnake string `json:"ad_account_id"`
	AccountLegacy  string `json:"account"`

	TokenIdentity      string `json:"tokenIdentity"`
	TokenIdentitySnake string `json:"token_identity"`

	LeadFormIDs      []string `json:"leadFormIds"`
	LeadFormIDsSnake []string `json:"lead_form_ids"`
	FormsLegacy      []string `json:"forms"`

	PortalEnabled bool  `json:"portalEnabled"`
	PortalSnake   bool  `json:"portal_enabled"`
	Portal        bool  `json:"portal"`
	Active        *bool `json:"active"`

	Billing struct {
		DueDate      string  `json:"dueDate"`
		DueDateSnake string  `json:"due_date"`
		Amount       float64 `json:"amount"`
	} `json:"billing"`

	KPI struct {
		Type           string  `json:"type"`
		TypeLegacy     string  `json:"kpi_type"`
		TargetCPA      float64 `json:"targetCpa"`
		TargetCPASnake float64 `json:"target_cpa"`
	} `json:"kpi"`

	Reports struct {
		Enabled bool     `json:"enabled"`
		Slots   []string `json:"slots"`
		Times   []string `json:"times"` // nome legado de slots
	} `json:"reports"`

	Alerts struct {
		Enabled           bool `json:"enabled"`
		LeadStaleAfterMin int  `json:"leadStaleAfterMin"`
		LeadStaleSnake    int  `json:"lead_stale_after_min"`
	} `json:"alerts"`
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstSlice(values ...[]string) []string {
	for _, v := range values {
		if len(v) > 0 {
			return v
		}
	}
	return nil
}

func firstInt64(values ...int64) int64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstFloat(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstInt(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

// normalize converte o documento cru para o tipo canônico imutável
func (r *rawProject) normalize(id string) *domain.Project {
	project := &domain.Project{
		ID:            firstString(r.ID, r.IDAlt, id),
		Name:          firstString(r.Name, r.Title),
		ChatID:        firstInt64(r.ChatID, r.Chat),
		AdAccountID:   firstString(r.AdAccountID, r.AdAccountSnake, r.AccountLegacy),
		TokenIdentity: firstString(r.TokenIdentity, r.TokenIdentitySnake),
		LeadFormIDs:   firstSlice(r.LeadFormIDs, r.LeadFormIDsSnake, r.FormsLegacy),
		PortalEnabled: r.PortalEnabled || r.PortalSnake || r.Portal,
		Active:        true,
		Billing: domain.BillingSettings{
			DueDate: firstString(r.Billing.DueDate, r.Billing.DueDateSnake),
			Amount:  r.Billing.Amount,
		},
		KPI: domain.KPISettings{
			Type:      domain.KPIType(firstString(r.KPI.Type, r.KPI.TypeLegacy)),
			TargetCPA: firstFloat(r.KPI.TargetCPA, r.KPI.TargetCPASnake),
		},
		Reports: domain.ReportSettings{
			Enabled: r.Reports.Enabled,
			Slots:   r.Reports.Slots,
		},
		Alerts: domain.AlertSettings{
			Enabled:           r.Alerts.Enabled,
			LeadStaleAfterMin: firstInt(r.Alerts.LeadStaleAfterMin, r.Alerts.LeadStaleSnake),
		},
	}

	if len(project.Reports.Slots) == 0 {
		project.Reports.Slots = r.Reports.Times
	}

	if r.Active != nil {
		project.Active = *r.Active
	}

	return project
}

func (repo *projectRepository) GetProject(id string) (*domain.Project, error) {
	doc, found, err := repo.blobs.Get(projectsCollection, id)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao buscar projeto")
	}

	if !found {
		return nil, nil
	}

	var raw rawProject
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, errors.Wrapf(err, "erro ao decodificar projeto %s", id)
	}

	return raw.normalize(id), nil
}

func (repo *projectRepository) ListProjects() ([]*domain.Project, error) {
	ids, err := repo.blobs.List(projectsCollection)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao listar projetos")
	}

	projects := make([]*domain.Project, 0, len(ids))
	for _, id := range ids {
		project, err := repo.GetProject(id)
		if err != nil {
			// Um documento malformado não derruba a listagem inteira
			logrus.WithError(err).WithField("project_id", id).Warn("Projeto ignorado por erro de leitura")
			continue
		}
		if project != nil {
			projects = append(projects, project)
		}
	}

	return projects, nil
}

// SaveProject grava o projeto por inteiro (copy-on-write), já na forma
// canônica. Atualizações parciais de configuração não existem.
func (repo *projectRepository) SaveProject(project *domain.Project) error {
	doc, err := json.Marshal(project)
	if err != nil {
		return errors.Wrap(err, "erro ao codificar projeto")
	}

	if err := repo.blobs.Put(projectsCollection, project.ID, doc); err != nil {
		return errors.Wrap(err, "erro ao gravar projeto")
	}

	return nil
}
