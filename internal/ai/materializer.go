package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"server/internal/domain"
	"server/internal/infra"
)

// Materializer turns a completed job's draft payload into a persisted
// protocol document. Every downstream failure is wrapped as a
// materialization error; nothing is persisted half-way except the dedicated
// template, whose creation precedes the protocol write by design.
type Materializer struct {
	jobs      domain.JobRepository
	protocols domain.ProtocolStore
	templates domain.TemplateStore
	images    domain.ImageProvisioner
	logger    infra.Logger

	// Collapses concurrent first-time creation of the shared default
	// template within this process. Cross-process races still allow
	// duplicate defaults; last write wins and no dedup is enforced.
	defaultFlight singleflight.Group
}

// NewMaterializer wires the materializer's collaborators.
func NewMaterializer(jobs domain.JobRepository, protocols domain.ProtocolStore, templates domain.TemplateStore, images domain.ImageProvisioner, logger infra.Logger) *Materializer {
	return &Materializer{
		jobs:      jobs,
		protocols: protocols,
		templates: templates,
		images:    images,
		logger:    logger,
	}
}

// Materialize re-reads the job, validates it belongs to the practitioner and
// finished successfully, then persists the resulting protocol. Returns the
// new protocol id. Foreign jobs read as not found.
func (m *Materializer) Materialize(ctx context.Context, jobID, practitionerID string) (string, error) {
	if strings.TrimSpace(jobID) == "" || strings.TrimSpace(practitionerID) == "" {
		return "", fmt.Errorf("job id and practitioner id are required: %w", domain.ErrInvalidInput)
	}
	job, err := m.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("job %s: %w", jobID, domain.ErrNotFound)
		}
		return "", fmt.Errorf("read job %s: %w", jobID, err)
	}
	if job.PractitionerID != practitionerID {
		return "", fmt.Errorf("job %s: %w", jobID, domain.ErrNotFound)
	}
	if job.Status != domain.JobStatusCompleted {
		return "", fmt.Errorf("job %s status %s: %w", jobID, job.Status, domain.ErrJobNotFinished)
	}
	draft, err := domain.DecodeProtocolDraft(job.ResultJSON)
	if err != nil {
		return "", fmt.Errorf("materialize protocol: %w", err)
	}
	return m.MaterializeDraft(ctx, draft, practitionerID)
}

// MaterializeDraft persists a protocol from an already-decoded draft. Also
// the path for manual (non-AI) protocol creation.
func (m *Materializer) MaterializeDraft(ctx context.Context, draft *domain.ProtocolDraft, practitionerID string) (string, error) {
	if draft == nil || strings.TrimSpace(practitionerID) == "" {
		return "", fmt.Errorf("draft and practitioner id are required: %w", domain.ErrInvalidInput)
	}

	templateID, err := m.resolveTemplate(ctx, draft)
	if err != nil {
		return "", fmt.Errorf("materialize protocol: %w", err)
	}

	image, err := m.images.DefaultImage(ctx)
	if err != nil {
		return "", fmt.Errorf("materialize protocol: acquire preview image: %w", err)
	}

	protocol := &domain.Protocol{
		Title:            draft.Title,
		ShortDescription: draft.ShortDescription,
		About:            normalizeAbout(draft.About),
		FAQ:              normalizeFAQ(draft.FAQ),
		Sources:          normalizeSources(draft.Sources),
		Biomarkers:       normalizeBiomarkers(draft.Biomarkers),
		Status:           domain.ProtocolStatusDraft,
		PractitionerID:   practitionerID,
		TemplateID:       templateID,
		PreviewImage:     image,
	}

	id, err := m.protocols.CreateProtocol(ctx, protocol)
	if err != nil {
		return "", fmt.Errorf("materialize protocol: %w", err)
	}
	m.logger.Info().Str("protocol_id", id).Str("template_id", templateID).Msg("ai: protocol materialized")
	return id, nil
}

// resolveTemplate creates a dedicated template when the draft carries steps,
// otherwise attaches the shared default. A failed custom-template create
// degrades to the default path instead of aborting the whole
// materialization.
func (m *Materializer) resolveTemplate(ctx context.Context, draft *domain.ProtocolDraft) (string, error) {
	if len(draft.HowItWorks) > 0 {
		id, err := m.createCustomTemplate(ctx, draft)
		if err == nil {
			return id, nil
		}
		m.logger.Warn().Err(err).Str("title", draft.Title).Msg("ai: custom template failed, falling back to default")
	}
	return m.defaultTemplateID(ctx)
}

func (m *Materializer) createCustomTemplate(ctx context.Context, draft *domain.ProtocolDraft) (string, error) {
	steps := make([]domain.TemplateStep, 0, len(draft.HowItWorks))
	for i, step := range draft.HowItWorks {
		steps = append(steps, domain.TemplateStep{
			Key:         uuid.NewString(),
			Title:       step.Title,
			Subtitle:    step.Subtitle,
			Description: step.Description,
			Order:       i + 1,
		})
	}
	return m.templates.CreateTemplate(ctx, &domain.HowItWorksTemplate{
		Title:       "Template - " + draft.Title,
		Description: fmt.Sprintf("Template personalizado criado automaticamente para o protocolo %q", draft.Title),
		IsDefault:   false,
		Steps:       steps,
	})
}

// defaultTemplateID is a get-or-create behind singleflight so concurrent
// materializations within this process create at most one default template.
func (m *Materializer) defaultTemplateID(ctx context.Context) (string, error) {
	id, err, _ := m.defaultFlight.Do("default-template", func() (any, error) {
		existing, err := m.templates.DefaultTemplate(ctx)
		if err == nil {
			return existing.ID, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return "", err
		}
		created, err := m.templates.CreateTemplate(ctx, defaultTemplate())
		if err != nil {
			return "", fmt.Errorf("create default template: %w", err)
		}
		m.logger.Info().Str("template_id", created).Msg("ai: default template seeded")
		return created, nil
	})
	if err != nil {
		return "", err
	}
	return id.(string), nil
}

func normalizeFAQ(entries []domain.DraftFAQ) []domain.FAQ {
	out := make([]domain.FAQ, 0, len(entries))
	for _, entry := range entries {
		if entry.Question == "" || entry.Answer == "" {
			continue
		}
		out = append(out, domain.FAQ{
			Key:      uuid.NewString(),
			Question: entry.Question,
			Answer:   entry.Answer,
		})
	}
	return out
}

func normalizeSources(entries []domain.DraftSource) []domain.Source {
	out := make([]domain.Source, 0, len(entries))
	for _, entry := range entries {
		out = append(out, domain.Source{
			Key:         uuid.NewString(),
			Title:       entry.Title,
			Description: entry.Description,
			Link:        entry.Link,
		})
	}
	return out
}

func normalizeBiomarkers(entries []domain.DraftBiomarker) []domain.Biomarker {
	out := make([]domain.Biomarker, 0, len(entries))
	for _, entry := range entries {
		out = append(out, domain.Biomarker{
			Key:          uuid.NewString(),
			Name:         entry.Name,
			ExternalCode: entry.ExternalCode,
			Observation:  entry.Observation,
		})
	}
	return out
}

func normalizeAbout(blocks []domain.Block) []domain.Block {
	out := make([]domain.Block, 0, len(blocks))
	for _, block := range blocks {
		block.Key = uuid.NewString()
		out = append(out, block)
	}
	return out
}

// defaultTemplate is the shared five-step patient journey attached to
// protocols whose generation carried no custom steps.
func defaultTemplate() *domain.HowItWorksTemplate {
	return &domain.HowItWorksTemplate{
		Title:       "Modelo Padrão",
		Description: "Modelo padrão para o processo \"Como funciona\" dos protocolos",
		IsDefault:   true,
		Steps: []domain.TemplateStep{
			{
				Key:         uuid.NewString(),
				Title:       "Personalização do Atendimento",
				Subtitle:    "Questionário de saúde logo após a compra.",
				Description: "Logo após a aprovação da compra, será iniciado um questionário de saúde específico deste atendimento para personalizá-lo para você.",
				Order:       1,
			},
			{
				Key:         uuid.NewString(),
				Title:       "Solicitação de Exames",
				Subtitle:    "Solicitação de Exames é gerada.",
				Description: "O questionário é avaliado e é gerada uma solicitação de exames que permite que você realize as coletas em algum laboratório da sua preferência.",
				Order:       2,
			},
			{
				Key:         uuid.NewString(),
				Title:       "Resultado de Exames",
				Subtitle:    "Envio do resultado dos exames.",
				Description: "Ao receber o resultado dos exames do laboratório ou clínica, estes devem ser compartilhados para estruturação do seu plano de ação.",
				Order:       3,
			},
			{
				Key:         uuid.NewString(),
				Title:       "Relatório Médico Personalizado",
				Subtitle:    "Disponibilização do Relatório Médico.",
				Description: "Usando como base todos os dados coletados, é feita uma avaliação personalizada, gerado um Relatório Médico e digitalmente disponibilizado.",
				Order:       4,
			},
			{
				Key:         uuid.NewString(),
				Title:       "Consulta (depende do formato contratado)",
				Subtitle:    "Agendamento e realização da Consulta Médica.",
				Description: "A consulta médica (se contratada) parte da estrutura apresentada no Relatório Médico e é uma oportunidade para discussão e detalhamento do plano de ação.",
				Order:       5,
			},
		},
	}
}
