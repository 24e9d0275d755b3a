package ai

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

func testLogger() zerolog.Logger { return zerolog.Nop() }

// memJobs is an in-memory JobRepository. completeAfterReads, when positive,
// flips a pending job to completed with completeResult once that many reads
// have happened, which lets poller tests observe a transition.
type memJobs struct {
	mu sync.Mutex

	jobs    map[string]*domain.Job
	claimed map[string]bool
	reads   int

	createErr          error
	getErr             error
	completeAfterReads int
	completeResult     []byte
}

func newMemJobs() *memJobs {
	return &memJobs{jobs: make(map[string]*domain.Job), claimed: make(map[string]bool)}
}

func (m *memJobs) Create(_ context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memJobs) GetByID(_ context.Context, jobID string) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.getErr != nil {
		return nil, m.getErr
	}
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if m.completeAfterReads > 0 && m.reads >= m.completeAfterReads && job.Status == domain.JobStatusPending {
		job.Status = domain.JobStatusCompleted
		job.ResultJSON = m.completeResult
	}
	cp := *job
	return &cp, nil
}

func (m *memJobs) UpdateStatus(_ context.Context, jobID string, status domain.JobStatus, errMsg *string, resultJSON []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok || job.Status != domain.JobStatusPending {
		return fmt.Errorf("job %s has no pending row to finish: %w", jobID, domain.ErrNotFound)
	}
	job.Status = status
	if errMsg != nil {
		job.ErrorMessage = *errMsg
	}
	job.ResultJSON = resultJSON
	return nil
}

func (m *memJobs) ClaimPending(_ context.Context) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.jobs))
	for id := range m.jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		job := m.jobs[id]
		if job.Status == domain.JobStatusPending && !m.claimed[id] {
			m.claimed[id] = true
			cp := *job
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memJobs) readCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

func (m *memJobs) put(job domain.Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = &job
}

func (m *memJobs) get(jobID string) (domain.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return domain.Job{}, false
	}
	return *job, true
}

type stubTrigger struct {
	mu       sync.Mutex
	calls    []string
	err      error
	notified chan string
}

func newStubTrigger() *stubTrigger {
	return &stubTrigger{notified: make(chan string, 4)}
}

func (s *stubTrigger) Notify(_ context.Context, jobID string) error {
	s.mu.Lock()
	s.calls = append(s.calls, jobID)
	err := s.err
	s.mu.Unlock()
	select {
	case s.notified <- jobID:
	default:
	}
	return err
}

type stubProtocolStore struct {
	mu      sync.Mutex
	created []*domain.Protocol
	err     error
}

func (s *stubProtocolStore) CreateProtocol(_ context.Context, protocol *domain.Protocol) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	cp := *protocol
	cp.ID = fmt.Sprintf("protocol-%d", len(s.created)+1)
	s.created = append(s.created, &cp)
	return cp.ID, nil
}

func (s *stubProtocolStore) ProtocolByID(_ context.Context, id string) (*domain.Protocol, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.created {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubProtocolStore) ProtocolsByPractitioner(_ context.Context, practitionerID string) ([]domain.Protocol, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Protocol
	for _, p := range s.created {
		if p.PractitionerID == practitionerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *stubProtocolStore) UpdateProtocolStatus(_ context.Context, id string, status domain.ProtocolStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.created {
		if p.ID == id {
			p.Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *stubProtocolStore) last() *domain.Protocol {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.created) == 0 {
		return nil
	}
	return s.created[len(s.created)-1]
}

type stubTemplateStore struct {
	mu        sync.Mutex
	templates []*domain.HowItWorksTemplate
	creates   int
	// failCustom rejects non-default template creation so fallback paths can
	// be exercised.
	failCustom bool
}

func (s *stubTemplateStore) CreateTemplate(_ context.Context, template *domain.HowItWorksTemplate) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCustom && !template.IsDefault {
		return "", fmt.Errorf("content store rejected template")
	}
	s.creates++
	cp := *template
	cp.ID = fmt.Sprintf("template-%d", s.creates)
	s.templates = append(s.templates, &cp)
	return cp.ID, nil
}

func (s *stubTemplateStore) DefaultTemplate(_ context.Context) (*domain.HowItWorksTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tpl := range s.templates {
		if tpl.IsDefault {
			cp := *tpl
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubTemplateStore) createCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates
}

func (s *stubTemplateStore) last() *domain.HowItWorksTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.templates) == 0 {
		return nil
	}
	return s.templates[len(s.templates)-1]
}

type stubImages struct {
	err error
}

func (s *stubImages) DefaultImage(_ context.Context) (domain.ImageRef, error) {
	if s.err != nil {
		return domain.ImageRef{}, s.err
	}
	return domain.ImageRef{AssetID: "image-default", Alt: "Imagem padrão do protocolo"}, nil
}
