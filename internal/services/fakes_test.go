package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"alfredoptarigan/resume-tailor/internal/models"
	"alfredoptarigan/resume-tailor/internal/repositories"
)

// stubGateway answers by system prompt and records every call.
type stubGateway struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func newStubGateway() *stubGateway {
	return &stubGateway{
		responses: map[string]string{},
		errs:      map[string]error{},
	}
}

func (g *stubGateway) on(system, response string) *stubGateway {
	g.responses[system] = response
	return g
}

func (g *stubGateway) fail(system string, err error) *stubGateway {
	g.errs[system] = err
	return g
}

func (g *stubGateway) Complete(_ context.Context, system, _ string, _ CompletionOptions) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, system)
	if err, ok := g.errs[system]; ok {
		return "", err
	}
	if resp, ok := g.responses[system]; ok {
		return resp, nil
	}
	return "", fmt.Errorf("%w: no stub for %q", ErrProviderError, system)
}

func (g *stubGateway) Provider() string {
	return "stub"
}

func (g *stubGateway) callCount(system string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := 0
	for _, c := range g.calls {
		if c == system {
			n++
		}
	}
	return n
}

// unavailableGateway behaves like a gateway without a credential.
type unavailableGateway struct{}

func (unavailableGateway) Complete(context.Context, string, string, CompletionOptions) (string, error) {
	return "", ErrProviderUnavailable
}

func (unavailableGateway) Provider() string {
	return "none"
}

type memResumeRepo struct {
	mu      sync.Mutex
	resumes map[uuid.UUID]*models.Resume
}

func newMemResumeRepo() *memResumeRepo {
	return &memResumeRepo{resumes: map[uuid.UUID]*models.Resume{}}
}

func (r *memResumeRepo) Create(resume *models.Resume) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *resume
	r.resumes[resume.ID] = &cp
	return nil
}

func (r *memResumeRepo) FindByID(id uuid.UUID) (*models.Resume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	resume, ok := r.resumes[id]
	if !ok {
		return nil, fmt.Errorf("resume %s: %w", id, repositories.ErrNotFound)
	}
	cp := *resume
	return &cp, nil
}

func (r *memResumeRepo) Update(id uuid.UUID, data *repositories.ResumeUpdateData) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	resume, ok := r.resumes[id]
	if !ok {
		return fmt.Errorf("resume %s: %w", id, repositories.ErrNotFound)
	}

	if data.OptimizedResumeHTML != nil {
		resume.OptimizedResumeHTML = data.OptimizedResumeHTML
	}
	if data.OptimizedCoverLetterHTML != nil {
		resume.OptimizedCoverLetterHTML = data.OptimizedCoverLetterHTML
	}
	if data.ATSScore != nil {
		resume.ATSScore = data.ATSScore
	}
	if data.JDText != nil {
		resume.JDText = data.JDText
	}
	if data.PaymentStatus != nil {
		resume.PaymentStatus = *data.PaymentStatus
	}
	if data.DownloadToken != nil {
		resume.DownloadToken = *data.DownloadToken
	}
	if data.ATSMatchedKeywords != nil {
		resume.ATSMatchedKeywords = mustJSON(data.ATSMatchedKeywords)
	}
	if data.ATSMissingKeywords != nil {
		resume.ATSMissingKeywords = mustJSON(data.ATSMissingKeywords)
	}
	return nil
}

type memCVRepo struct {
	mu  sync.Mutex
	cvs map[string]*models.CV
}

func newMemCVRepo() *memCVRepo {
	return &memCVRepo{cvs: map[string]*models.CV{}}
}

func (r *memCVRepo) FindLatestBySession(sessionID string) (*models.CV, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cv, ok := r.cvs[sessionID]
	if !ok {
		return nil, fmt.Errorf("cv for session: %w", repositories.ErrNotFound)
	}
	cp := *cv
	return &cp, nil
}

func (r *memCVRepo) SaveLatest(sessionID, title, rawText string, structured datatypes.JSON) (*models.CV, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cv, ok := r.cvs[sessionID]
	if !ok {
		cv = &models.CV{ID: uuid.New(), SessionID: sessionID}
		r.cvs[sessionID] = cv
	}
	cv.Title = title
	cv.RawText = rawText
	cv.StructuredData = structured

	cp := *cv
	return &cp, nil
}

type memJobRepo struct {
	mu       sync.Mutex
	postings []models.JobPosting
}

func (r *memJobRepo) Create(posting *models.JobPosting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.postings = append(r.postings, *posting)
	return nil
}

type memAppRepo struct {
	mu   sync.Mutex
	apps map[uuid.UUID]*models.Application
}

func newMemAppRepo() *memAppRepo {
	return &memAppRepo{apps: map[uuid.UUID]*models.Application{}}
}

func (r *memAppRepo) Create(app *models.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *app
	r.apps[app.ID] = &cp
	return nil
}

func (r *memAppRepo) FindByID(id uuid.UUID) (*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[id]
	if !ok {
		return nil, fmt.Errorf("application %s: %w", id, repositories.ErrNotFound)
	}
	cp := *app
	return &cp, nil
}

func (r *memAppRepo) ListBySession(sessionID string, limit int) ([]models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Application
	for _, app := range r.apps {
		if app.SessionID == sessionID {
			out = append(out, *app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memAppRepo) UpdateStatus(id uuid.UUID, status models.ApplicationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[id]
	if !ok {
		return fmt.Errorf("application %s: %w", id, repositories.ErrNotFound)
	}
	app.Status = status
	return nil
}

type memPurchaseRepo struct {
	mu        sync.Mutex
	purchases map[string]models.Purchase
}

func newMemPurchaseRepo() *memPurchaseRepo {
	return &memPurchaseRepo{purchases: map[string]models.Purchase{}}
}

func (r *memPurchaseRepo) Create(purchase *models.Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.purchases[purchase.PaymentIntentID]; !ok {
		r.purchases[purchase.PaymentIntentID] = *purchase
	}
	return nil
}

func (r *memPurchaseRepo) Exists(applicationID uuid.UUID, purchaseType string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.purchases {
		if p.ApplicationID == applicationID && p.Type == purchaseType {
			return true, nil
		}
	}
	return false, nil
}

// fakeRenderer returns the HTML it was given as the "PDF".
type fakeRenderer struct {
	rendered []string
}

func (r *fakeRenderer) RenderPDF(_ context.Context, html string) ([]byte, error) {
	r.rendered = append(r.rendered, html)
	return []byte("%PDF-" + html), nil
}

func mustJSON(v []string) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return datatypes.JSON(data)
}
