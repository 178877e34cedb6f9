package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"alfredoptarigan/resume-tailor/internal/logger"
	"alfredoptarigan/resume-tailor/internal/models"
	"alfredoptarigan/resume-tailor/internal/repositories"
)

const (
	defaultCVTitle         = "CV"
	applicationListLimit   = 20
	emptyProfileJSON       = "{}"
	jobInsightsTemperature = 0.4

	noCredentialATSScore    = 70
	noCredentialBeforeScore = 60
	noCredentialAfterScore  = 70

	// Only reachable when the credential disappears between the CV call and scoring.
	scoringFallbackBefore = 60
	scoringFallbackAfter  = 75
)

// GenerationOutcome is what a finished full generation persisted.
type GenerationOutcome struct {
	Application *models.Application
	JobPosting  *models.JobPosting
	Result      *GenerationResult
}

type ApplicationService interface {
	// Generate runs the full tailoring flow and reports progress through emit.
	Generate(ctx context.Context, sessionID string, req models.GenerateApplicationRequest, emit ProgressFunc) (*GenerationOutcome, error)
	// GenerateStream runs Generate on its own goroutine. The channel is closed
	// after the terminal event, or early when ctx is cancelled.
	GenerateStream(ctx context.Context, sessionID string, req models.GenerateApplicationRequest) <-chan ProgressEvent
	List(sessionID string) ([]models.Application, error)
	Get(sessionID string, id uuid.UUID) (*models.ApplicationView, error)
	UpdateStatus(sessionID string, id uuid.UUID, status models.ApplicationStatus) (*models.Application, error)
	RenderPDF(ctx context.Context, sessionID string, id uuid.UUID) ([]byte, error)
}

type applicationService struct {
	cvRepo    repositories.CVRepository
	jobRepo   repositories.JobPostingRepository
	appRepo   repositories.ApplicationRepository
	payments  PaymentService
	gateway   LLMGateway
	validator *ResponseValidator
	renderer  DocumentRenderer
	prompts   *PromptBuilder
	log       *zap.Logger
}

func NewApplicationService(
	cvRepo repositories.CVRepository,
	jobRepo repositories.JobPostingRepository,
	appRepo repositories.ApplicationRepository,
	payments PaymentService,
	gateway LLMGateway,
	validator *ResponseValidator,
	renderer DocumentRenderer,
	log *zap.Logger,
) ApplicationService {
	return &applicationService{
		cvRepo:    cvRepo,
		jobRepo:   jobRepo,
		appRepo:   appRepo,
		payments:  payments,
		gateway:   gateway,
		validator: validator,
		renderer:  renderer,
		prompts:   NewPromptBuilder(),
		log:       logger.OrNop(log),
	}
}

// jobContext is the job as handed to the CV writer prompt.
type jobContext struct {
	Title                 string          `json:"title"`
	Company               string          `json:"company"`
	CleanedDescription    string          `json:"cleanedDescription"`
	ExtractedKeywords     []string        `json:"extractedKeywords"`
	ExtractedRequirements jobRequirements `json:"extractedRequirements"`
	CompanyTone           string          `json:"companyTone,omitempty"`
}

type jobRequirements struct {
	MustHaveSkills   []string `json:"mustHaveSkills"`
	NiceToHaveSkills []string `json:"niceToHaveSkills"`
	Responsibilities []string `json:"responsibilities"`
	RoleTitle        string   `json:"roleTitle,omitempty"`
	Seniority        string   `json:"seniority,omitempty"`
	Summary          string   `json:"summary,omitempty"`
}

func (s *applicationService) Generate(ctx context.Context, sessionID string, req models.GenerateApplicationRequest, emit ProgressFunc) (*GenerationOutcome, error) {
	log := s.log.With(
		zap.String(logger.FieldUseCase, useCaseFullGeneration),
		zap.String("session_id", sessionID),
	)
	progress := newProgressTracker(emit)

	if err := step(ctx, progress, StageReceived); err != nil {
		return nil, failRequest(log, progress, err)
	}

	cv, err := s.saveCV(sessionID, req)
	if err != nil {
		return nil, failRequest(log, progress, err)
	}

	if err := step(ctx, progress, StageProcessingJD); err != nil {
		return nil, failRequest(log, progress, err)
	}

	insights, err := s.jobInsights(ctx, log, req.Company, req.Description)
	if err != nil {
		return nil, failRequest(log, progress, err)
	}

	posting, err := s.savePosting(sessionID, req, insights)
	if err != nil {
		return nil, failRequest(log, progress, err)
	}

	if err := step(ctx, progress, StageGenerating); err != nil {
		return nil, failRequest(log, progress, err)
	}

	result, err := s.tailor(ctx, log, cv, posting, insights, req.Tone)
	if err != nil {
		return nil, failRequest(log, progress, err)
	}

	if err := step(ctx, progress, StageSaving); err != nil {
		return nil, failRequest(log, progress, err)
	}

	app, err := s.saveApplication(sessionID, cv, posting, req.Tone, result)
	if err != nil {
		return nil, failRequest(log, progress, err)
	}

	_ = progress.done(app.ID.String())

	log.Info("✅ application generated",
		zap.String("application_id", app.ID.String()),
		zap.Int("ats_score", result.ATSScore),
		zap.Bool("placeholder", result.Placeholder),
	)

	return &GenerationOutcome{Application: app, JobPosting: posting, Result: result}, nil
}

func (s *applicationService) GenerateStream(ctx context.Context, sessionID string, req models.GenerateApplicationRequest) <-chan ProgressEvent {
	events := make(chan ProgressEvent)

	go func() {
		defer close(events)

		emit := func(ev ProgressEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		_, _ = s.Generate(ctx, sessionID, req, emit)
	}()

	return events
}

// step stops the flow once the caller is gone, then records the next marker.
func step(ctx context.Context, progress *progressTracker, stage Stage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := progress.advance(stage); err != nil {
		if errors.Is(err, errProgressCancelled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (s *applicationService) saveCV(sessionID string, req models.GenerateApplicationRequest) (*models.CV, error) {
	title := strings.TrimSpace(req.CVTitle)
	if title == "" {
		title = defaultCVTitle
	}

	text := NormalizeText(req.CVText)
	structured, err := structuredData(text)
	if err != nil {
		return nil, err
	}

	return s.cvRepo.SaveLatest(sessionID, title, text, structured)
}

// jobInsights makes the single job-analysis call. A missing credential or an
// unusable answer falls back to the trimmed description.
func (s *applicationService) jobInsights(ctx context.Context, log *zap.Logger, company, description string) (*JobInsights, error) {
	fallback := &JobInsights{CleanedDescription: strings.TrimSpace(description)}

	raw, err := s.gateway.Complete(ctx, SystemJobAnalyst, s.prompts.BuildJobInsightsPrompt(company, description), CompletionOptions{
		Temperature: Float32(jobInsightsTemperature),
		JSONMode:    true,
	})
	switch {
	case errors.Is(err, ErrProviderUnavailable):
		log.Warn("⚠️ no model credential, using raw job description")
		return fallback, nil
	case err != nil:
		return nil, err
	}

	insights, err := s.validator.JobInsights(raw)
	if err != nil {
		logFallback(log.With(zap.String(logger.FieldUseCase, useCaseJobInsights)), err)
		return fallback, nil
	}

	if strings.TrimSpace(insights.CleanedDescription) == "" {
		insights.CleanedDescription = fallback.CleanedDescription
	}

	return insights, nil
}

func (s *applicationService) savePosting(sessionID string, req models.GenerateApplicationRequest, insights *JobInsights) (*models.JobPosting, error) {
	insightsJSON, err := json.Marshal(insights)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job insights: %w", err)
	}

	posting := &models.JobPosting{
		ID:                 uuid.New(),
		SessionID:          sessionID,
		Title:              req.Title,
		Company:            req.Company,
		Location:           optional(req.Location),
		SourceURL:          optional(req.SourceURL),
		RawDescription:     req.Description,
		CleanedDescription: insights.CleanedDescription,
		Insights:           datatypes.JSON(insightsJSON),
	}
	if err := s.jobRepo.Create(posting); err != nil {
		return nil, err
	}

	return posting, nil
}

// tailor produces the generation result. Placeholders stand in for a missing
// credential or an invalid CV; provider errors are terminal.
func (s *applicationService) tailor(ctx context.Context, log *zap.Logger, cv *models.CV, posting *models.JobPosting, insights *JobInsights, tone models.Tone) (*GenerationResult, error) {
	jobJSON, err := json.Marshal(jobContext{
		Title:              posting.Title,
		Company:            posting.Company,
		CleanedDescription: posting.CleanedDescription,
		ExtractedKeywords:  orEmpty(insights.Keywords),
		ExtractedRequirements: jobRequirements{
			MustHaveSkills:   orEmpty(insights.MustHaveSkills),
			NiceToHaveSkills: orEmpty(insights.NiceToHaveSkills),
			Responsibilities: orEmpty(insights.Responsibilities),
			RoleTitle:        insights.RoleTitle,
			Seniority:        insights.Seniority,
			Summary:          insights.Summary,
		},
		CompanyTone: insights.CompanyTone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode job context: %w", err)
	}

	structured := "null"
	if len(cv.StructuredData) > 0 {
		structured = string(cv.StructuredData)
	}

	prompt := s.prompts.BuildTailoredCVPrompt(emptyProfileJSON, cv.RawText, structured, string(jobJSON), string(tone))
	raw, err := s.gateway.Complete(ctx, SystemCVWriter, prompt, CompletionOptions{
		Temperature: Float32(0),
		JSONMode:    true,
	})
	switch {
	case errors.Is(err, ErrProviderUnavailable):
		log.Warn("⚠️ no model credential, using placeholder CV")
		return noCredentialResult()
	case err != nil:
		return nil, err
	}

	tailored, err := s.validator.StructuredCV(raw)
	if err != nil {
		logFallback(log, err)
		return invalidOutputResult()
	}

	cvHTML, err := RenderCVHTML(*tailored)
	if err != nil {
		return nil, err
	}

	jdText := posting.CleanedDescription
	if jdText == "" {
		jdText = posting.Title
	}

	before, after := 0, 0
	feedback := ATSFeedback{}
	if scores := s.score(ctx, log, cv.RawText, HTMLToText(cvHTML), jdText); scores != nil {
		before, after = scores.BeforeScore, scores.AfterScore
		feedback.WhatImproved = scores.WhatImproved
		feedback.Strengths = scores.WhatImproved
		feedback.Improvements = scores.RemainingGaps
	}
	feedback.BeforeScore = &before
	feedback.AfterScore = &after

	return &GenerationResult{
		StructuredCV: *tailored,
		CVHTML:       cvHTML,
		PreviewHTML:  BlurredPreview(cvHTML),
		ATSScore:     after,
		ATSFeedback:  feedback,
	}, nil
}

// score makes the before/after comparison call. Any failure yields nil.
func (s *applicationService) score(ctx context.Context, log *zap.Logger, originalCV, improvedCV, jdText string) *ATSScoreResult {
	log = log.With(zap.String(logger.FieldUseCase, useCaseATSScore))

	raw, err := s.gateway.Complete(ctx, SystemATSScorer, s.prompts.BuildATSScorePrompt(originalCV, improvedCV, jdText), CompletionOptions{
		Temperature: Float32(0),
		JSONMode:    true,
	})
	switch {
	case errors.Is(err, ErrProviderUnavailable):
		return &ATSScoreResult{
			BeforeScore:   scoringFallbackBefore,
			AfterScore:    scoringFallbackAfter,
			WhatImproved:  []string{"Placeholder improvements"},
			RemainingGaps: []string{"Placeholder gaps"},
		}
	case err != nil:
		log.Warn("⚠️ ATS scoring failed", zap.Error(err))
		return nil
	}

	scores, err := s.validator.ATSScore(raw)
	if err != nil {
		logFallback(log, err)
		return nil
	}

	return scores
}

func (s *applicationService) saveApplication(sessionID string, cv *models.CV, posting *models.JobPosting, tone models.Tone, result *GenerationResult) (*models.Application, error) {
	structuredJSON, err := json.Marshal(result.StructuredCV)
	if err != nil {
		return nil, fmt.Errorf("failed to encode structured cv: %w", err)
	}

	feedbackJSON, err := json.Marshal(result.ATSFeedback)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ats feedback: %w", err)
	}

	app := &models.Application{
		ID:              uuid.New(),
		SessionID:       sessionID,
		CVID:            cv.ID,
		JobPostingID:    posting.ID,
		Status:          models.ApplicationStatusDraft,
		Tone:            tone,
		GeneratedCVHTML: result.CVHTML,
		PreviewHTML:     result.PreviewHTML,
		StructuredCV:    datatypes.JSON(structuredJSON),
		ATSScore:        result.ATSScore,
		ATSFeedback:     datatypes.JSON(feedbackJSON),
	}
	if err := s.appRepo.Create(app); err != nil {
		return nil, err
	}
	app.JobPosting = *posting

	return app, nil
}

// List returns the session's newest applications. Generated documents are only
// served through Get.
func (s *applicationService) List(sessionID string) ([]models.Application, error) {
	apps, err := s.appRepo.ListBySession(sessionID, applicationListLimit)
	if err != nil {
		return nil, err
	}

	for i := range apps {
		withhold(&apps[i])
	}

	return apps, nil
}

func (s *applicationService) Get(sessionID string, id uuid.UUID) (*models.ApplicationView, error) {
	app, err := s.owned(sessionID, id)
	if err != nil {
		return nil, err
	}

	unlocked, err := s.payments.ApplicationUnlocked(id)
	if err != nil {
		return nil, err
	}
	if !unlocked {
		withhold(app)
	}

	return &models.ApplicationView{Application: app, Unlocked: unlocked}, nil
}

func (s *applicationService) UpdateStatus(sessionID string, id uuid.UUID, status models.ApplicationStatus) (*models.Application, error) {
	app, err := s.owned(sessionID, id)
	if err != nil {
		return nil, err
	}

	if err := s.appRepo.UpdateStatus(id, status); err != nil {
		return nil, mapRepoErr(err)
	}
	app.Status = status

	s.log.Info("✅ application status updated",
		zap.String("application_id", id.String()),
		zap.String("status", string(status)),
	)

	return app, nil
}

func (s *applicationService) RenderPDF(ctx context.Context, sessionID string, id uuid.UUID) ([]byte, error) {
	app, err := s.owned(sessionID, id)
	if err != nil {
		return nil, err
	}

	unlocked, err := s.payments.ApplicationUnlocked(id)
	if err != nil {
		return nil, err
	}
	if !unlocked {
		return nil, ErrPaymentRequired
	}

	if app.GeneratedCVHTML == "" {
		return nil, fmt.Errorf("%w: application %s has no generated cv", ErrNotFound, id)
	}

	return s.renderer.RenderPDF(ctx, app.GeneratedCVHTML)
}

// owned hides applications belonging to other sessions behind ErrNotFound.
func (s *applicationService) owned(sessionID string, id uuid.UUID) (*models.Application, error) {
	app, err := s.appRepo.FindByID(id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if app.SessionID != sessionID {
		return nil, fmt.Errorf("%w: application %s", ErrNotFound, id)
	}
	return app, nil
}

func withhold(app *models.Application) {
	app.GeneratedCVHTML = ""
	app.StructuredCV = nil
}

func noCredentialResult() (*GenerationResult, error) {
	cv := placeholderCV(noCredentialSummary)
	cvHTML, err := RenderCVHTML(cv)
	if err != nil {
		return nil, err
	}

	before, after := noCredentialBeforeScore, noCredentialAfterScore
	return &GenerationResult{
		StructuredCV: cv,
		CVHTML:       cvHTML,
		PreviewHTML:  placeholderPreviewHTML,
		ATSScore:     noCredentialATSScore,
		ATSFeedback: ATSFeedback{
			Strengths:    []string{"Placeholder strengths"},
			Improvements: []string{"Placeholder improvements"},
			BeforeScore:  &before,
			AfterScore:   &after,
			WhatImproved: []string{"Placeholder improvement"},
		},
		Placeholder: true,
	}, nil
}

func invalidOutputResult() (*GenerationResult, error) {
	cv := placeholderCV(invalidOutputSummary)
	cvHTML, err := RenderCVHTML(cv)
	if err != nil {
		return nil, err
	}

	return &GenerationResult{
		StructuredCV: cv,
		CVHTML:       cvHTML,
		PreviewHTML:  failedPreviewHTML,
		ATSScore:     0,
		ATSFeedback:  ATSFeedback{},
		Placeholder:  true,
	}, nil
}

const (
	noCredentialSummary  = "Add a model API key to generate a tailored CV. This is placeholder content."
	invalidOutputSummary = "The tailored CV could not be generated. This is placeholder content."
)

func placeholderCV(summary string) StructuredCV {
	return StructuredCV{
		FullName: "Your Name",
		Headline: "Role Title",
		Contact:  CVContact{Email: "email@example.com"},
		Summary:  summary,
		SkillsByCategory: []SkillCategory{
			{Category: "Skills", Skills: []string{"Skill A", "Skill B"}},
		},
		Experiences: []CVExperience{
			{RoleTitle: "Recent Role", Company: "Company", Bullets: []string{"Achievement bullet here"}},
		},
		Projects:       []CVProject{},
		Education:      []CVEducation{{Institution: "University", Degree: "Degree"}},
		Certifications: []string{},
		Interests:      []string{},
	}
}

// logFallback records an unusable model answer that was replaced by a fallback.
func logFallback(log *zap.Logger, err error) {
	fields := []zap.Field{zap.Error(err)}
	if raw, ok := RawPayload(err); ok {
		fields = append(fields, logger.RawPayload(raw))
	}
	log.Warn("⚠️ model output rejected, using fallback", fields...)
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
