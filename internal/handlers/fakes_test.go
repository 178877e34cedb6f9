package handlers

import (
	"context"

	"github.com/google/uuid"

	"alfredoptarigan/resume-tailor/internal/models"
	"alfredoptarigan/resume-tailor/internal/services"
)

type fakeResumes struct {
	services.ResumeService
	err      error
	parsedID uuid.UUID
	gotMime  string
	gotName  string
	gotToken string
}

func (f *fakeResumes) ParseCV(_ context.Context, _ []byte, mimeType, filename string) (*models.Resume, *services.StrictParsedResume, error) {
	f.gotMime, f.gotName = mimeType, filename
	if f.err != nil {
		return nil, nil, f.err
	}
	return &models.Resume{ID: f.parsedID}, &services.StrictParsedResume{}, nil
}

func (f *fakeResumes) JDMatch(context.Context, models.JDMatchRequest) (*services.JDMatchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.JDMatchResult{MatchedKeywords: []string{"Python"}, MissingKeywords: []string{}, RewrittenBullets: []string{}}, nil
}

func (f *fakeResumes) Download(_ context.Context, id uuid.UUID, token string) (*models.Resume, error) {
	f.gotToken = token
	if f.err != nil {
		return nil, f.err
	}
	return &models.Resume{ID: id}, nil
}

type fakeCVs struct {
	services.CVService
	gotSession string
	gotTitle   string
}

func (f *fakeCVs) SaveCV(sessionID string, req models.SaveCVRequest) (*models.CV, error) {
	f.gotSession = sessionID
	return &models.CV{ID: uuid.New(), SessionID: sessionID, Title: req.Title, RawText: req.RawText}, nil
}

func (f *fakeCVs) UploadCV(sessionID, title string, _ []byte, _, _ string) (*models.CV, []services.ResumeSection, error) {
	f.gotSession, f.gotTitle = sessionID, title
	return &models.CV{ID: uuid.New(), SessionID: sessionID, Title: title},
		[]services.ResumeSection{{Title: "Experience", Bullets: []string{"Built APIs"}}}, nil
}

type fakeApps struct {
	services.ApplicationService
	events     []services.ProgressEvent
	err        error
	pdf        []byte
	gotSession string
}

func (f *fakeApps) Generate(_ context.Context, sessionID string, req models.GenerateApplicationRequest, _ services.ProgressFunc) (*services.GenerationOutcome, error) {
	f.gotSession = sessionID
	if f.err != nil {
		return nil, f.err
	}
	posting := &models.JobPosting{ID: uuid.New(), Title: req.Title, Company: req.Company}
	return &services.GenerationOutcome{
		Application: &models.Application{ID: uuid.New(), SessionID: sessionID, JobPostingID: posting.ID, ATSScore: 70},
		JobPosting:  posting,
		Result:      &services.GenerationResult{ATSScore: 70},
	}, nil
}

func (f *fakeApps) GenerateStream(_ context.Context, sessionID string, _ models.GenerateApplicationRequest) <-chan services.ProgressEvent {
	f.gotSession = sessionID
	ch := make(chan services.ProgressEvent, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	close(ch)
	return ch
}

func (f *fakeApps) List(sessionID string) ([]models.Application, error) {
	f.gotSession = sessionID
	return []models.Application{}, nil
}

func (f *fakeApps) Get(sessionID string, id uuid.UUID) (*models.ApplicationView, error) {
	f.gotSession = sessionID
	if f.err != nil {
		return nil, f.err
	}
	return &models.ApplicationView{Application: &models.Application{ID: id, SessionID: sessionID}}, nil
}

func (f *fakeApps) UpdateStatus(sessionID string, id uuid.UUID, status models.ApplicationStatus) (*models.Application, error) {
	f.gotSession = sessionID
	if f.err != nil {
		return nil, f.err
	}
	return &models.Application{ID: id, SessionID: sessionID, Status: status}, nil
}

func (f *fakeApps) RenderPDF(context.Context, string, uuid.UUID) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pdf, nil
}

type fakeRenderer struct {
	got string
}

func (f *fakeRenderer) RenderPDF(_ context.Context, html string) ([]byte, error) {
	f.got = html
	return []byte("%PDF-1.4"), nil
}

type fakePayments struct {
	services.PaymentService
	err          error
	gotSignature string
}

func (f *fakePayments) HandleWebhook(_ context.Context, _ []byte, signature string) error {
	f.gotSignature = signature
	return f.err
}
