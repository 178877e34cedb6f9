package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-tailor/internal/models"
)

const (
	jobInsightsJSON = `{
		"cleanedDescription": "Build Go services for payments.",
		"roleTitle": "Backend Engineer",
		"mustHaveSkills": ["Go", "Postgres"],
		"keywords": ["Go", "payments"]
	}`
	tailoredCVJSON = `{"structuredCv": {
		"fullName": "Jane Doe",
		"headline": "Backend Engineer",
		"summary": "Go engineer focused on payments.",
		"contact": {"email": "jane@example.com"},
		"skillsByCategory": [{"category": "Languages", "skills": ["Go", "SQL"]}],
		"experiences": [{"roleTitle": "Engineer", "company": "Acme", "bullets": ["Built payment APIs"]}],
		"education": [{"institution": "State University", "degree": "BSc"}]
	}}`
	atsScoreJSON = `{"beforeScore": 48, "afterScore": 81, "whatImproved": ["Added payments keywords"], "remainingGaps": ["Kubernetes"]}`
)

type applicationFixture struct {
	cvs       *memCVRepo
	jobs      *memJobRepo
	apps      *memAppRepo
	purchases *memPurchaseRepo
	renderer  *fakeRenderer
	service   ApplicationService
}

func newApplicationFixture(gateway LLMGateway) *applicationFixture {
	f := &applicationFixture{
		cvs:       newMemCVRepo(),
		jobs:      &memJobRepo{},
		apps:      newMemAppRepo(),
		purchases: newMemPurchaseRepo(),
		renderer:  &fakeRenderer{},
	}
	payments := newTestPayments(newMemResumeRepo(), f.purchases)
	f.service = NewApplicationService(f.cvs, f.jobs, f.apps, payments, gateway, MustNewResponseValidator(), f.renderer, nil)
	return f
}

func (f *applicationFixture) unlock(id uuid.UUID) {
	_ = f.purchases.Create(&models.Purchase{ID: uuid.New(), ApplicationID: id, Type: models.PurchaseTypeCV, PaymentIntentID: "pi_" + id.String()})
}

func generateRequest() models.GenerateApplicationRequest {
	return models.GenerateApplicationRequest{
		Title:       "Backend Engineer",
		Company:     "Acme Payments",
		Description: "  We need a backend engineer to build Go services for payments.  ",
		Tone:        models.ToneProfessional,
		CVText:      "EXPERIENCE\nBuilt payment APIs at Acme\nEDUCATION\nBSc State University",
	}
}

func steps(events []ProgressEvent) []Stage {
	out := make([]Stage, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Step)
	}
	return out
}

func drain(ch <-chan ProgressEvent) []ProgressEvent {
	var events []ProgressEvent
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func feedbackOf(t *testing.T, app *models.Application) ATSFeedback {
	t.Helper()

	var fb ATSFeedback
	require.NoError(t, json.Unmarshal(app.ATSFeedback, &fb))
	return fb
}

func TestGenerateHappyPath(t *testing.T) {
	gw := newStubGateway().
		on(SystemJobAnalyst, jobInsightsJSON).
		on(SystemCVWriter, tailoredCVJSON).
		on(SystemATSScorer, atsScoreJSON)
	f := newApplicationFixture(gw)

	events, emit := collector()
	outcome, err := f.service.Generate(t.Context(), "sess-1", generateRequest(), emit)
	require.NoError(t, err)

	assert.Equal(t, []Stage{StageReceived, StageProcessingJD, StageGenerating, StageSaving, StageDone}, steps(*events))
	assert.Equal(t, outcome.Application.ID.String(), (*events)[4].ApplicationID)

	res := outcome.Result
	assert.False(t, res.Placeholder)
	assert.Equal(t, "Jane Doe", res.StructuredCV.FullName)
	assert.Equal(t, 81, res.ATSScore)
	assert.Contains(t, res.CVHTML, "Built payment APIs")
	assert.Contains(t, res.PreviewHTML, "filter:blur(8px)")
	assert.Equal(t, []string{"Kubernetes"}, res.ATSFeedback.Improvements)
	assert.Equal(t, 48, *res.ATSFeedback.BeforeScore)

	app := outcome.Application
	assert.Equal(t, models.ApplicationStatusDraft, app.Status)
	assert.Equal(t, "sess-1", app.SessionID)
	assert.Equal(t, outcome.JobPosting.ID, app.JobPostingID)
	assert.Equal(t, "Build Go services for payments.", outcome.JobPosting.CleanedDescription)
	assert.Nil(t, outcome.JobPosting.Location)

	cv, err := f.cvs.FindLatestBySession("sess-1")
	require.NoError(t, err)
	assert.Equal(t, defaultCVTitle, cv.Title)
	assert.Equal(t, cv.ID, app.CVID)

	for _, system := range []string{SystemJobAnalyst, SystemCVWriter, SystemATSScorer} {
		assert.Equal(t, 1, gw.callCount(system), system)
	}
}

func TestGenerateWithoutCredential(t *testing.T) {
	f := newApplicationFixture(unavailableGateway{})

	outcome, err := f.service.Generate(t.Context(), "sess-1", generateRequest(), nil)
	require.NoError(t, err)

	res := outcome.Result
	assert.True(t, res.Placeholder)
	assert.Equal(t, 70, res.ATSScore)
	assert.Equal(t, placeholderPreviewHTML, res.PreviewHTML)
	assert.Equal(t, "Your Name", res.StructuredCV.FullName)
	assert.Equal(t, noCredentialSummary, res.StructuredCV.Summary)
	assert.NotContains(t, res.StructuredCV.Summary, "OPENAI_API_KEY")
	assert.Equal(t, 60, *res.ATSFeedback.BeforeScore)
	assert.Equal(t, 70, *res.ATSFeedback.AfterScore)

	// the raw description is kept, trimmed
	assert.Equal(t, "We need a backend engineer to build Go services for payments.", outcome.JobPosting.CleanedDescription)

	fb := feedbackOf(t, outcome.Application)
	assert.Equal(t, []string{"Placeholder strengths"}, fb.Strengths)
}

func TestGenerateStreamWhenScoringFails(t *testing.T) {
	gw := newStubGateway().
		on(SystemJobAnalyst, jobInsightsJSON).
		on(SystemCVWriter, tailoredCVJSON).
		fail(SystemATSScorer, ErrProviderError)
	f := newApplicationFixture(gw)

	events := drain(f.service.GenerateStream(t.Context(), "sess-1", generateRequest()))

	require.Equal(t, []Stage{StageReceived, StageProcessingJD, StageGenerating, StageSaving, StageDone}, steps(events))

	appID, err := uuid.Parse(events[4].ApplicationID)
	require.NoError(t, err)
	app, err := f.apps.FindByID(appID)
	require.NoError(t, err)

	assert.Equal(t, 0, app.ATSScore)
	fb := feedbackOf(t, app)
	require.NotNil(t, fb.BeforeScore)
	require.NotNil(t, fb.AfterScore)
	assert.Equal(t, 0, *fb.BeforeScore)
	assert.Equal(t, 0, *fb.AfterScore)
	assert.Empty(t, fb.WhatImproved)
}

func TestGenerateInvalidCVUsesFailurePlaceholder(t *testing.T) {
	gw := newStubGateway().
		on(SystemJobAnalyst, `not json at all`).
		on(SystemCVWriter, `{"structuredCv": {"fullName": "Jane"}}`)
	f := newApplicationFixture(gw)

	outcome, err := f.service.Generate(t.Context(), "sess-1", generateRequest(), nil)
	require.NoError(t, err)

	assert.True(t, outcome.Result.Placeholder)
	assert.Equal(t, 0, outcome.Result.ATSScore)
	assert.Equal(t, failedPreviewHTML, outcome.Result.PreviewHTML)
	assert.Equal(t, invalidOutputSummary, outcome.Result.StructuredCV.Summary)
	assert.Equal(t, ATSFeedback{}, outcome.Result.ATSFeedback)
	assert.Equal(t, 0, gw.callCount(SystemATSScorer))
}

func TestGenerateProviderErrorIsTerminal(t *testing.T) {
	gw := newStubGateway().
		on(SystemJobAnalyst, jobInsightsJSON).
		fail(SystemCVWriter, fmt.Errorf("%w: rpc error: code = Unavailable desc = upstream reset", ErrProviderError))
	f := newApplicationFixture(gw)

	events := drain(f.service.GenerateStream(t.Context(), "sess-1", generateRequest()))

	require.Equal(t, []Stage{StageReceived, StageProcessingJD, StageGenerating, StageError}, steps(events))
	assert.Equal(t, ErrProviderError.Error(), events[3].Message)
	assert.NotContains(t, events[3].Message, "rpc error")
	assert.Empty(t, f.apps.apps)
}

func TestGenerateStreamCancelledBeforeStart(t *testing.T) {
	gw := newStubGateway().
		on(SystemJobAnalyst, jobInsightsJSON).
		on(SystemCVWriter, tailoredCVJSON)
	f := newApplicationFixture(gw)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	events := drain(f.service.GenerateStream(ctx, "sess-1", generateRequest()))

	// at most the error marker makes it out before the consumer is gone
	for _, ev := range events {
		assert.Equal(t, StageError, ev.Step)
	}
	assert.Empty(t, f.apps.apps)
	assert.Equal(t, 0, gw.callCount(SystemJobAnalyst))
}

func TestGetWithholdsUntilUnlocked(t *testing.T) {
	f := newApplicationFixture(unavailableGateway{})
	outcome, err := f.service.Generate(t.Context(), "sess-1", generateRequest(), nil)
	require.NoError(t, err)
	id := outcome.Application.ID

	view, err := f.service.Get("sess-1", id)
	require.NoError(t, err)
	assert.False(t, view.Unlocked)
	assert.Empty(t, view.Application.GeneratedCVHTML)
	assert.Nil(t, view.Application.StructuredCV)
	assert.NotEmpty(t, view.Application.PreviewHTML)

	f.unlock(id)

	view, err = f.service.Get("sess-1", id)
	require.NoError(t, err)
	assert.True(t, view.Unlocked)
	assert.NotEmpty(t, view.Application.GeneratedCVHTML)

	_, err = f.service.Get("sess-2", id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListWithholdsDocuments(t *testing.T) {
	f := newApplicationFixture(unavailableGateway{})
	_, err := f.service.Generate(t.Context(), "sess-1", generateRequest(), nil)
	require.NoError(t, err)
	_, err = f.service.Generate(t.Context(), "sess-2", generateRequest(), nil)
	require.NoError(t, err)

	apps, err := f.service.List("sess-1")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Empty(t, apps[0].GeneratedCVHTML)
	assert.Nil(t, apps[0].StructuredCV)
}

func TestUpdateStatus(t *testing.T) {
	f := newApplicationFixture(unavailableGateway{})
	outcome, err := f.service.Generate(t.Context(), "sess-1", generateRequest(), nil)
	require.NoError(t, err)
	id := outcome.Application.ID

	app, err := f.service.UpdateStatus("sess-1", id, models.ApplicationStatusInterview)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusInterview, app.Status)

	_, err = f.service.UpdateStatus("sess-2", id, models.ApplicationStatusOffer)
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := f.apps.FindByID(id)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusInterview, stored.Status)
}

func TestRenderPDFRequiresPurchase(t *testing.T) {
	f := newApplicationFixture(unavailableGateway{})
	outcome, err := f.service.Generate(t.Context(), "sess-1", generateRequest(), nil)
	require.NoError(t, err)
	id := outcome.Application.ID

	_, err = f.service.RenderPDF(t.Context(), "sess-1", id)
	assert.ErrorIs(t, err, ErrPaymentRequired)
	assert.Empty(t, f.renderer.rendered)

	f.unlock(id)

	pdf, err := f.service.RenderPDF(t.Context(), "sess-1", id)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-"+outcome.Result.CVHTML, string(pdf))

	_, err = f.service.RenderPDF(t.Context(), "sess-1", uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
