package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"server/internal/ai"
	"server/internal/domain"
	"server/internal/http/handlers"
	"server/internal/infra"
	"server/internal/middleware"
)

const testSecret = "test-secret"

type fakeJobs struct {
	mu sync.Mutex

	jobs  map[string]*domain.Job
	reads int
	// completeAfterReads flips pending jobs to completed once that many
	// reads happened, letting the one-shot generate endpoint finish.
	completeAfterReads int
	completeResult     []byte
}

func newFakeJobs() *fakeJobs { return &fakeJobs{jobs: make(map[string]*domain.Job)} }

func (f *fakeJobs) Create(_ context.Context, job *domain.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *job
	f.jobs[job.ID] = &cp
	return nil
}

func (f *fakeJobs) GetByID(_ context.Context, jobID string) (*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if f.completeAfterReads > 0 && f.reads >= f.completeAfterReads && job.Status == domain.JobStatusPending {
		job.Status = domain.JobStatusCompleted
		job.ResultJSON = f.completeResult
	}
	cp := *job
	return &cp, nil
}

func (f *fakeJobs) UpdateStatus(_ context.Context, jobID string, status domain.JobStatus, errMsg *string, resultJSON []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok || job.Status != domain.JobStatusPending {
		return domain.ErrNotFound
	}
	job.Status = status
	if errMsg != nil {
		job.ErrorMessage = *errMsg
	}
	job.ResultJSON = resultJSON
	return nil
}

func (f *fakeJobs) ClaimPending(_ context.Context) (*domain.Job, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeJobs) put(job domain.Job) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[job.ID] = &job
}

type fakeContent struct {
	mu            sync.Mutex
	protocols     map[string]*domain.Protocol
	templates     map[string]*domain.HowItWorksTemplate
	practitioners map[string]*domain.Practitioner
	seq           int
}

func newFakeContent() *fakeContent {
	return &fakeContent{
		protocols:     make(map[string]*domain.Protocol),
		templates:     make(map[string]*domain.HowItWorksTemplate),
		practitioners: make(map[string]*domain.Practitioner),
	}
}

func (f *fakeContent) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeContent) CreateProtocol(_ context.Context, protocol *domain.Protocol) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *protocol
	cp.ID = f.nextID("protocol")
	f.protocols[cp.ID] = &cp
	return cp.ID, nil
}

func (f *fakeContent) ProtocolByID(_ context.Context, id string) (*domain.Protocol, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.protocols[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeContent) ProtocolsByPractitioner(_ context.Context, practitionerID string) ([]domain.Protocol, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Protocol
	for _, p := range f.protocols {
		if p.PractitionerID == practitionerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeContent) UpdateProtocolStatus(_ context.Context, id string, status domain.ProtocolStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.protocols[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	return nil
}

func (f *fakeContent) CreateTemplate(_ context.Context, template *domain.HowItWorksTemplate) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *template
	cp.ID = f.nextID("template")
	f.templates[cp.ID] = &cp
	return cp.ID, nil
}

func (f *fakeContent) DefaultTemplate(_ context.Context) (*domain.HowItWorksTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tpl := range f.templates {
		if tpl.IsDefault {
			cp := *tpl
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeContent) CreatePractitioner(_ context.Context, practitioner *domain.Practitioner) (*domain.Practitioner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *practitioner
	cp.ID = f.nextID("pract")
	f.practitioners[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeContent) PractitionerByID(_ context.Context, id string) (*domain.Practitioner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.practitioners[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeContent) PractitionerByLoginUserID(_ context.Context, loginUserID string) (*domain.Practitioner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.practitioners {
		if p.LoginUserID == loginUserID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeContent) UpdatePractitioner(_ context.Context, id string, fields domain.PractitionerUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.practitioners[id]
	if !ok {
		return domain.ErrNotFound
	}
	if fields.Name != nil {
		p.Name = *fields.Name
	}
	if fields.Email != nil {
		p.Email = *fields.Email
	}
	return nil
}

func (f *fakeContent) UpdatePractitionerPhone(_ context.Context, id, phoneNumber string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.practitioners[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.PhoneNumber = phoneNumber
	p.IsPhoneVerified = false
	return nil
}

func (f *fakeContent) DefaultImage(_ context.Context) (domain.ImageRef, error) {
	return domain.ImageRef{AssetID: "image-default", Alt: "Imagem padrão do protocolo"}, nil
}

type fakeOrders struct {
	items []domain.LineItem
}

func (f *fakeOrders) ListLineItemsByProductIDs(_ context.Context, productIDs []int64) ([]domain.LineItem, error) {
	wanted := make(map[int64]struct{}, len(productIDs))
	for _, id := range productIDs {
		wanted[id] = struct{}{}
	}
	var out []domain.LineItem
	for _, item := range f.items {
		if _, ok := wanted[item.ProductID]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeOrders) ListOrderItems(_ context.Context, orderID int64) ([]domain.LineItem, error) {
	var out []domain.LineItem
	for _, item := range f.items {
		if item.Order.ID == orderID {
			out = append(out, item)
		}
	}
	return out, nil
}

type testEnv struct {
	router  http.Handler
	cfg     *infra.Config
	jobs    *fakeJobs
	content *fakeContent
	orders  *fakeOrders
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.Nop()
	jobs := newFakeJobs()
	content := newFakeContent()
	orders := &fakeOrders{}

	cfg := &infra.Config{
		JWTSecret:       testSecret,
		DefaultLocale:   "pt",
		RateLimitPerMin: 10000,
	}
	app := &handlers.App{
		Config:        cfg,
		Logger:        logger,
		Validate:      validator.New(),
		Jobs:          jobs,
		Orders:        orders,
		Protocols:     content,
		Templates:     content,
		Practitioners: content,
		Dispatcher:    ai.NewDispatcher(jobs, nil, logger),
		Poller:        ai.NewPoller(jobs, time.Millisecond, 100, logger),
		Materializer:  ai.NewMaterializer(jobs, content, content, content, logger),
	}
	return &testEnv{router: NewRouter(app, nil), cfg: cfg, jobs: jobs, content: content, orders: orders}
}

func (e *testEnv) seedPractitioner(t *testing.T, loginUserID string) *domain.Practitioner {
	t.Helper()
	p, err := e.content.CreatePractitioner(context.Background(), &domain.Practitioner{
		LoginUserID: loginUserID,
		Name:        "Dra. Ana Souza",
	})
	if err != nil {
		t.Fatalf("seed practitioner: %v", err)
	}
	return p
}

func signToken(t *testing.T, subject string) string {
	t.Helper()
	token, err := middleware.SignJWT(testSecret, middleware.Claims{
		Name: "Dra. Ana Souza",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	// auth middleware rejections are plain text, not the JSON envelope
	fields := make(map[string]json.RawMessage)
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &fields); err != nil {
			fields = nil
		}
	}
	return rec, fields
}

func dataField[T any](t *testing.T, fields map[string]json.RawMessage) T {
	t.Helper()
	var out T
	raw, ok := fields["data"]
	if !ok {
		t.Fatalf("response has no data field: %v", fields)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode data field: %v", err)
	}
	return out
}

func TestHealthIsOpen(t *testing.T) {
	env := newTestEnv(t)
	rec, fields := env.do(t, http.MethodGet, "/v1/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", rec.Code)
	}
	if string(fields["success"]) != "true" {
		t.Fatalf("healthz success = %s, want true", fields["success"])
	}
}

func TestAuthIsRequired(t *testing.T) {
	env := newTestEnv(t)
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/v1/me"},
		{http.MethodGet, "/v1/protocols"},
		{http.MethodPost, "/v1/ai/jobs"},
		{http.MethodGet, "/v1/orders"},
	}
	for _, p := range paths {
		rec, _ := env.do(t, p.method, p.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s without token status = %d, want 401", p.method, p.path, rec.Code)
		}
	}

	rec, _ := env.do(t, http.MethodGet, "/v1/me", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token status = %d, want 401", rec.Code)
	}
}

func TestMeResolvesPractitioner(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedPractitioner(t, "login-1")

	rec, fields := env.do(t, http.MethodGet, "/v1/me", signToken(t, "login-1"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d, want 200", rec.Code)
	}
	got := dataField[domain.Practitioner](t, fields)
	if got.ID != p.ID {
		t.Fatalf("me returned practitioner %q, want %q", got.ID, p.ID)
	}
}

func TestMeWithoutPractitionerDocument(t *testing.T) {
	env := newTestEnv(t)
	rec, _ := env.do(t, http.MethodGet, "/v1/me", signToken(t, "login-unknown"), nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me status = %d, want 401 when no practitioner document exists", rec.Code)
	}
}

func TestJobLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedPractitioner(t, "login-1")
	token := signToken(t, "login-1")

	rec, fields := env.do(t, http.MethodPost, "/v1/ai/jobs", token, map[string]string{"prompt": "protocolo de sono"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("create job status = %d, want 202", rec.Code)
	}
	created := dataField[map[string]string](t, fields)
	jobID := created["job_id"]
	if jobID == "" {
		t.Fatal("create job returned no job_id")
	}

	rec, fields = env.do(t, http.MethodGet, "/v1/ai/jobs/"+jobID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("job status status = %d, want 200", rec.Code)
	}
	status := dataField[map[string]json.RawMessage](t, fields)
	if string(status["status"]) != `"pending"` {
		t.Fatalf("job status = %s, want pending", status["status"])
	}

	if err := env.jobs.UpdateStatus(context.Background(), jobID, domain.JobStatusCompleted, nil, []byte(`{"title":"Protocolo de Sono"}`)); err != nil {
		t.Fatalf("complete job: %v", err)
	}

	rec, fields = env.do(t, http.MethodPost, "/v1/ai/jobs/"+jobID+"/protocol", token, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("materialize status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	materialized := dataField[map[string]string](t, fields)
	protocolID := materialized["protocol_id"]

	rec, fields = env.do(t, http.MethodGet, "/v1/protocols/"+protocolID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get protocol status = %d, want 200", rec.Code)
	}
	protocol := dataField[domain.Protocol](t, fields)
	if protocol.PractitionerID != p.ID {
		t.Fatalf("materialized protocol owner = %q, want %q", protocol.PractitionerID, p.ID)
	}
	if protocol.Status != domain.ProtocolStatusDraft {
		t.Fatalf("materialized protocol status = %s, want draft", protocol.Status)
	}
}

func TestMaterializePendingJobConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.seedPractitioner(t, "login-1")
	env.jobs.put(domain.Job{ID: "job-1", PractitionerID: "pract-1", Prompt: "p", Status: domain.JobStatusPending})

	rec, _ := env.do(t, http.MethodPost, "/v1/ai/jobs/job-1/protocol", signToken(t, "login-1"), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("materialize pending job status = %d, want 409", rec.Code)
	}
}

func TestJobStatusHiddenFromOtherPractitioners(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedPractitioner(t, "login-owner")
	env.seedPractitioner(t, "login-other")
	env.jobs.put(domain.Job{ID: "job-1", PractitionerID: owner.ID, Prompt: "p", Status: domain.JobStatusPending})

	rec, _ := env.do(t, http.MethodGet, "/v1/ai/jobs/job-1", signToken(t, "login-other"), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign job status = %d, want 404", rec.Code)
	}
}

func TestGenerateRunsWholePipeline(t *testing.T) {
	env := newTestEnv(t)
	env.seedPractitioner(t, "login-1")
	env.jobs.completeAfterReads = 2
	env.jobs.completeResult = []byte(`{"title":"Protocolo de Longevidade"}`)

	rec, fields := env.do(t, http.MethodPost, "/v1/ai/generate", signToken(t, "login-1"), map[string]string{"prompt": "protocolo de longevidade"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	out := dataField[map[string]string](t, fields)
	if out["protocol_id"] == "" {
		t.Fatal("generate returned no protocol_id")
	}
}

func TestGenerateFailedJobIsBadGateway(t *testing.T) {
	env := newTestEnv(t)
	env.seedPractitioner(t, "login-1")

	go func() {
		deadline := time.After(5 * time.Second)
		for {
			env.jobs.mu.Lock()
			for _, job := range env.jobs.jobs {
				if job.Status == domain.JobStatusPending {
					job.Status = domain.JobStatusFailed
					job.ErrorMessage = "rate limited"
					env.jobs.mu.Unlock()
					return
				}
			}
			env.jobs.mu.Unlock()
			select {
			case <-deadline:
				return
			case <-time.After(time.Millisecond):
			}
		}
	}()

	rec, _ := env.do(t, http.MethodPost, "/v1/ai/generate", signToken(t, "login-1"), map[string]string{"prompt": "protocolo que falha"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("generate with failed job status = %d, want 502: %s", rec.Code, rec.Body.String())
	}
}

func TestGenerateAnswersWithinWriteTimeout(t *testing.T) {
	env := newTestEnv(t)
	env.seedPractitioner(t, "login-1")
	// Poll cap is 100ms in this env; a 20ms write budget must cut the run
	// short and answer while the connection is still writable. The job is
	// never completed, so without the budget the handler would sit on the
	// full poll.
	env.cfg.HTTPWriteTimeout = time.Second + 20*time.Millisecond

	start := time.Now()
	rec, _ := env.do(t, http.MethodPost, "/v1/ai/generate", signToken(t, "login-1"), map[string]string{"prompt": "protocolo demorado"})
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("generate past write budget status = %d, want 504: %s", rec.Code, rec.Body.String())
	}
	if elapsed := time.Since(start); elapsed > 80*time.Millisecond {
		t.Fatalf("handler answered after %v, past the write budget", elapsed)
	}
}

func TestProtocolLifecycleEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.seedPractitioner(t, "login-1")
	token := signToken(t, "login-1")

	rec, fields := env.do(t, http.MethodPost, "/v1/protocols", token, map[string]any{
		"title":             "Protocolo Manual",
		"short_description": "Criado sem IA.",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create protocol status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	created := dataField[map[string]string](t, fields)
	protocolID := created["protocol_id"]

	rec, fields = env.do(t, http.MethodGet, "/v1/protocols", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list protocols status = %d, want 200", rec.Code)
	}
	list := dataField[map[string][]domain.Protocol](t, fields)
	if len(list["items"]) != 1 {
		t.Fatalf("list returned %d protocols, want 1", len(list["items"]))
	}

	rec, _ = env.do(t, http.MethodPatch, "/v1/protocols/"+protocolID+"/status", token, map[string]string{"status": "published"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	rec, _ = env.do(t, http.MethodPatch, "/v1/protocols/"+protocolID+"/status", token, map[string]string{"status": "launched"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown status status = %d, want 400", rec.Code)
	}

	rec, _ = env.do(t, http.MethodPost, "/v1/protocols/"+protocolID+"/archive", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("archive status = %d, want 200", rec.Code)
	}
	stored, err := env.content.ProtocolByID(context.Background(), protocolID)
	if err != nil {
		t.Fatalf("read protocol: %v", err)
	}
	if stored.Status != domain.ProtocolStatusArchived {
		t.Fatalf("protocol status = %s, want archived", stored.Status)
	}
}

func TestProtocolsHiddenFromOtherPractitioners(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedPractitioner(t, "login-owner")
	env.seedPractitioner(t, "login-other")
	id, err := env.content.CreateProtocol(context.Background(), &domain.Protocol{
		Title:          "Protocolo Alheio",
		PractitionerID: owner.ID,
		Status:         domain.ProtocolStatusDraft,
	})
	if err != nil {
		t.Fatalf("seed protocol: %v", err)
	}

	rec, _ := env.do(t, http.MethodGet, "/v1/protocols/"+id, signToken(t, "login-other"), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign protocol status = %d, want 404", rec.Code)
	}
}

func TestListOrdersFiltersByLinkedProducts(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedPractitioner(t, "login-1")
	if _, err := env.content.CreateProtocol(context.Background(), &domain.Protocol{
		Title:            "Protocolo Vendido",
		PractitionerID:   p.ID,
		Status:           domain.ProtocolStatusPublished,
		ShopifyProductID: 777,
	}); err != nil {
		t.Fatalf("seed protocol: %v", err)
	}
	env.orders.items = []domain.LineItem{
		{ID: 1, ProductID: 777, Title: "Protocolo Vendido", Quantity: 1, Order: domain.Order{ID: 10}},
		{ID: 2, ProductID: 888, Title: "Outro Produto", Quantity: 1, Order: domain.Order{ID: 11}},
	}

	rec, fields := env.do(t, http.MethodGet, "/v1/orders", signToken(t, "login-1"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list orders status = %d, want 200", rec.Code)
	}
	list := dataField[map[string][]domain.LineItem](t, fields)
	if len(list["items"]) != 1 || list["items"][0].ProductID != 777 {
		t.Fatalf("list orders items = %+v, want only linked product", list["items"])
	}

	rec, fields = env.do(t, http.MethodGet, "/v1/orders/10/items", signToken(t, "login-1"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("order items status = %d, want 200", rec.Code)
	}
	list = dataField[map[string][]domain.LineItem](t, fields)
	if len(list["items"]) != 1 || list["items"][0].ID != 1 {
		t.Fatalf("order items = %+v, want line item 1", list["items"])
	}
}

func TestPractitionerEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, "login-new")

	rec, fields := env.do(t, http.MethodPost, "/v1/practitioners", token, map[string]string{"name": "Dr. João Lima"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create practitioner status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	created := dataField[domain.Practitioner](t, fields)
	if created.LoginUserID != "login-new" {
		t.Fatalf("created practitioner login = %q, want login-new", created.LoginUserID)
	}

	// creating again returns the existing document
	rec, fields = env.do(t, http.MethodPost, "/v1/practitioners", token, map[string]string{"name": "Dr. João Lima"})
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat create status = %d, want 200", rec.Code)
	}
	again := dataField[domain.Practitioner](t, fields)
	if again.ID != created.ID {
		t.Fatalf("repeat create returned %q, want existing %q", again.ID, created.ID)
	}

	rec, _ = env.do(t, http.MethodPatch, "/v1/practitioners/"+created.ID+"/phone", token, map[string]string{"phone_number": "+5511999990000"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update phone status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	stored, err := env.content.PractitionerByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("read practitioner: %v", err)
	}
	if stored.PhoneNumber != "+5511999990000" || stored.IsPhoneVerified {
		t.Fatalf("phone update result = %+v, want new number and verification reset", stored)
	}

	// patching someone else's document is a 404
	rec, _ = env.do(t, http.MethodPatch, "/v1/practitioners/pract-999/phone", token, map[string]string{"phone_number": "+5511999990000"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign phone update status = %d, want 404", rec.Code)
	}
}
