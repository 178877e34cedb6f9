package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-tailor/internal/models"
)

const parsedResumeJSON = `{
	"summary": "Backend engineer",
	"skills": ["Python", "Go"],
	"jobs": [{"title": "Engineer", "company": "Acme", "start_date": "2020", "end_date": null, "bullets": ["Built APIs"]}],
	"education": ["BSc Computer Science"]
}`

type resumeFixture struct {
	gateway  *stubGateway
	resumes  *memResumeRepo
	payments PaymentService
	service  ResumeService
}

func newResumeFixture(gateway LLMGateway) *resumeFixture {
	resumes := newMemResumeRepo()
	payments := newTestPayments(resumes, newMemPurchaseRepo())
	f := &resumeFixture{
		resumes:  resumes,
		payments: payments,
		service:  NewResumeService(resumes, NewTextExtractor(), gateway, MustNewResponseValidator(), payments, nil),
	}
	if sg, ok := gateway.(*stubGateway); ok {
		f.gateway = sg
	}
	return f
}

// seed stores a parsed resume as ParseCV would have.
func (f *resumeFixture) seed(t *testing.T) uuid.UUID {
	t.Helper()

	id := uuid.New()
	token, err := f.payments.IssueDownloadToken(id)
	require.NoError(t, err)
	require.NoError(t, f.resumes.Create(&models.Resume{
		ID:            id,
		CVRawText:     "Backend engineer",
		CVParsedJSON:  []byte(parsedResumeJSON),
		DownloadToken: token,
		PaymentStatus: models.PaymentStatusInit,
	}))
	return id
}

func TestParseCV(t *testing.T) {
	f := newResumeFixture(newStubGateway().on(SystemJSONOnly, parsedResumeJSON))
	doc := buildDOCX(t, `<w:p><w:r><w:t>EXPERIENCE</w:t></w:r></w:p><w:p><w:r><w:t>Built APIs at Acme</w:t></w:r></w:p>`)

	resume, parsed, err := f.service.ParseCV(t.Context(), doc, MimeOctetStream, "cv.docx")

	require.NoError(t, err)
	assert.Equal(t, "EXPERIENCE\nBuilt APIs at Acme", resume.CVRawText)
	assert.Equal(t, models.PaymentStatusInit, resume.PaymentStatus)
	assert.NotEmpty(t, resume.DownloadToken)
	require.Len(t, parsed.Jobs, 1)
	assert.Equal(t, []string{"Python", "Go"}, parsed.Skills)

	stored, err := f.resumes.FindByID(resume.ID)
	require.NoError(t, err)
	assert.JSONEq(t, parsedResumeJSON, string(stored.CVParsedJSON))
	assert.Equal(t, 1, f.gateway.callCount(SystemJSONOnly))
}

func TestParseCVUnsupportedFormat(t *testing.T) {
	f := newResumeFixture(newStubGateway())

	_, _, err := f.service.ParseCV(t.Context(), []byte("plain text"), "text/plain", "cv.txt")

	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, 0, f.gateway.callCount(SystemJSONOnly))
	assert.Empty(t, f.resumes.resumes)
}

func TestParseCVInvalidModelOutput(t *testing.T) {
	f := newResumeFixture(newStubGateway().on(SystemJSONOnly, `{"skills": ["Go"]}`))
	doc := buildDOCX(t, `<w:p><w:r><w:t>Go developer</w:t></w:r></w:p>`)

	_, _, err := f.service.ParseCV(t.Context(), doc, MimeDOCX, "cv.docx")

	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Empty(t, f.resumes.resumes)
}

func TestJDMatch(t *testing.T) {
	f := newResumeFixture(newStubGateway().on(SystemJSONOnly, `{
		"matched_keywords": ["Python"],
		"missing_keywords": ["Kubernetes"],
		"rewritten_bullets": ["Built Python APIs serving 1M requests"],
		"improved_summary": "Python backend engineer"
	}`))
	id := f.seed(t)

	res, err := f.service.JDMatch(t.Context(), models.JDMatchRequest{ResumeID: id.String(), JDText: "Python, Kubernetes"})

	require.NoError(t, err)
	assert.Contains(t, res.MatchedKeywords, "Python")
	assert.Equal(t, []string{"Kubernetes"}, res.MissingKeywords)

	stored, err := f.resumes.FindByID(id)
	require.NoError(t, err)
	require.NotNil(t, stored.JDText)
	assert.Equal(t, "Python, Kubernetes", *stored.JDText)
	assert.JSONEq(t, `["Python"]`, string(stored.ATSMatchedKeywords))
}

func TestATSRewritePersistsResult(t *testing.T) {
	f := newResumeFixture(newStubGateway().on(SystemJSONOnly, `{"optimized_html": "<h1>Jane</h1>", "keywords_used": ["Go"], "ats_score": 88}`))
	id := f.seed(t)

	res, err := f.service.ATSRewrite(t.Context(), models.ATSRewriteRequest{ResumeID: id.String()})

	require.NoError(t, err)
	assert.Equal(t, 88, res.ATSScore)

	stored, err := f.resumes.FindByID(id)
	require.NoError(t, err)
	require.NotNil(t, stored.ATSScore)
	assert.Equal(t, 88, *stored.ATSScore)
	require.NotNil(t, stored.OptimizedResumeHTML)
	assert.Equal(t, "<h1>Jane</h1>", *stored.OptimizedResumeHTML)
}

func TestCoverLetterProviderError(t *testing.T) {
	f := newResumeFixture(newStubGateway().fail(SystemJSONOnly, ErrProviderError))
	id := f.seed(t)

	_, err := f.service.CoverLetter(t.Context(), models.CoverLetterRequest{ResumeID: id.String()})

	assert.ErrorIs(t, err, ErrProviderError)
	stored, err := f.resumes.FindByID(id)
	require.NoError(t, err)
	assert.Nil(t, stored.OptimizedCoverLetterHTML)
}

func TestResumeNotFound(t *testing.T) {
	f := newResumeFixture(newStubGateway())

	_, err := f.service.JDMatch(t.Context(), models.JDMatchRequest{ResumeID: uuid.NewString(), JDText: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.service.ATSRewrite(t.Context(), models.ATSRewriteRequest{ResumeID: "not-a-uuid"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.service.Download(t.Context(), uuid.New(), "token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDownloadRequiresPaymentAndToken(t *testing.T) {
	f := newResumeFixture(newStubGateway())
	id := f.seed(t)

	stored, err := f.resumes.FindByID(id)
	require.NoError(t, err)

	_, err = f.service.Download(t.Context(), id, stored.DownloadToken)
	assert.ErrorIs(t, err, ErrPaymentRequired)

	stored.PaymentStatus = models.PaymentStatusPaid
	require.NoError(t, f.resumes.Create(stored))

	_, err = f.service.Download(t.Context(), id, "wrong")
	assert.ErrorIs(t, err, ErrInvalidToken)

	resume, err := f.service.Download(t.Context(), id, stored.DownloadToken)
	require.NoError(t, err)
	assert.Equal(t, id, resume.ID)
}

func TestDownloadWithCheckoutToken(t *testing.T) {
	f := newResumeFixture(newStubGateway())
	id := f.seed(t)

	const checkoutToken = "3c1e9d2a-7b44-4f0e-9a51-checkout"
	header, payload := signedEvent(t, checkoutCompleted(
		fmt.Sprintf(`{"resume_id": %q, "download_token": %q}`, id, checkoutToken),
	))
	require.NoError(t, f.payments.HandleWebhook(t.Context(), payload, header))

	resume, err := f.service.Download(t.Context(), id, checkoutToken)
	require.NoError(t, err)
	assert.Equal(t, id, resume.ID)

	_, err = f.service.Download(t.Context(), id, "3c1e9d2a-7b44-4f0e-9a51-other")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = f.service.Download(t.Context(), id, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
