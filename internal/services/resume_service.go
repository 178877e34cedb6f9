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
	defaultIndustry        = "General"
	defaultRewriteRole     = "Generalist"
	defaultCoverLetterRole = "General"
	defaultJobDescription  = "General role"
	defaultCoverLetterTone = "professional"
	useCaseParseCV         = "parse_cv"
	useCaseATSRewrite      = "ats_rewrite"
	useCaseJDMatch         = "jd_match"
	useCaseCoverLetter     = "cover_letter"
	useCaseFullGeneration  = "full_generation"
	useCaseJobInsights     = "job_insights"
	useCaseATSScore        = "ats_score"
)

type ResumeService interface {
	ParseCV(ctx context.Context, data []byte, mimeType, filename string) (*models.Resume, *StrictParsedResume, error)
	ATSRewrite(ctx context.Context, req models.ATSRewriteRequest) (*ATSRewriteResult, error)
	JDMatch(ctx context.Context, req models.JDMatchRequest) (*JDMatchResult, error)
	CoverLetter(ctx context.Context, req models.CoverLetterRequest) (*CoverLetterResult, error)
	// Download releases a resume only after payment and with its download token.
	Download(ctx context.Context, id uuid.UUID, token string) (*models.Resume, error)
}

type resumeService struct {
	resumeRepo repositories.ResumeRepository
	extractor  TextExtractor
	gateway    LLMGateway
	validator  *ResponseValidator
	payments   PaymentService
	prompts    *PromptBuilder
	log        *zap.Logger
}

func NewResumeService(
	resumeRepo repositories.ResumeRepository,
	extractor TextExtractor,
	gateway LLMGateway,
	validator *ResponseValidator,
	payments PaymentService,
	log *zap.Logger,
) ResumeService {
	return &resumeService{
		resumeRepo: resumeRepo,
		extractor:  extractor,
		gateway:    gateway,
		validator:  validator,
		payments:   payments,
		prompts:    NewPromptBuilder(),
		log:        logger.OrNop(log),
	}
}

func (s *resumeService) ParseCV(ctx context.Context, data []byte, mimeType, filename string) (*models.Resume, *StrictParsedResume, error) {
	log := s.log.With(zap.String(logger.FieldUseCase, useCaseParseCV))
	progress := newProgressTracker(logProgress(log))

	_ = progress.advance(StageReceived)
	_ = progress.advance(StageExtracting)

	mt := ResolveMimeType(mimeType, filename, data)
	text, err := s.extractor.Extract(data, mt)
	if err != nil {
		return nil, nil, failRequest(log, progress, err)
	}

	_ = progress.advance(StageGenerating)

	log.Debug("📝 parse prompt", zap.Int("cv_chars", len(text)))
	parsed, err := ParseResumeText(ctx, s.gateway, s.validator, text)
	if err != nil {
		return nil, nil, failRequest(log, progress, err)
	}

	_ = progress.advance(StageSaving)

	parsedJSON, err := json.Marshal(parsed)
	if err != nil {
		return nil, nil, failRequest(log, progress, fmt.Errorf("failed to encode parsed resume: %w", err))
	}

	id := uuid.New()
	token, err := s.payments.IssueDownloadToken(id)
	if err != nil {
		return nil, nil, failRequest(log, progress, err)
	}

	resume := &models.Resume{
		ID:            id,
		CVRawText:     text,
		CVParsedJSON:  datatypes.JSON(parsedJSON),
		DownloadToken: token,
		PaymentStatus: models.PaymentStatusInit,
	}
	if err := s.resumeRepo.Create(resume); err != nil {
		return nil, nil, failRequest(log, progress, err)
	}

	_ = progress.done(id.String())
	log.Info("✅ resume parsed", zap.String("resume_id", id.String()), zap.Int("jobs", len(parsed.Jobs)))

	return resume, parsed, nil
}

func (s *resumeService) ATSRewrite(ctx context.Context, req models.ATSRewriteRequest) (*ATSRewriteResult, error) {
	log := s.log.With(zap.String(logger.FieldUseCase, useCaseATSRewrite), zap.String("resume_id", req.ResumeID))
	progress := newProgressTracker(logProgress(log))
	_ = progress.advance(StageReceived)

	id, cvJSON, err := s.loadParsed(req.ResumeID)
	if err != nil {
		return nil, failRequest(log, progress, err)
	}

	_ = progress.advance(StageGenerating)

	prompt := s.prompts.BuildATSRewritePrompt(cvJSON, orDefault(req.Industry, defaultIndustry), orDefault(req.Role, defaultRewriteRole))
	raw, err := s.gateway.Complete(ctx, SystemJSONOnly, prompt, CompletionOptions{JSONMode: true})
	if err != nil {
		return nil, failRequest(log, progress, err)
	}

	result, err := s.validator.ATSRewrite(raw)
	if err != nil {
		return nil, failRequest(log, progress, err)
	}

	_ = progress.advance(StageSaving)

	if err := s.resumeRepo.Update(id, &repositories.ResumeUpdateData{
		OptimizedResumeHTML: &result.OptimizedHTML,
		ATSScore:            &result.ATSScore,
		ATSMatchedKeywords:  result.KeywordsUsed,
		ATSMissingKeywords:  result.MissingKeywords,
	}); err != nil {
		return nil, failRequest(log, progress, mapRepoErr(err))
	}

	_ = progress.done(id.String())

	return result, nil
}

func (s *resumeService) JDMatch(ctx context.Context, req models.JDMatchRequest) (*JDMatchResult, error) {
	log := s.log.With(zap.String(logger.FieldUseCase, useCaseJDMatch), zap.String("resume_id", req.ResumeID))
	progress := newProgressTracker(logProgress(log))
	_ = progress.advance(StageReceived)

	id, cvJSON, err := s.loadParsed(req.ResumeID)
	if err != nil {
		return nil, failRequest(log, progress, err)
	}

	_ = progress.advance(StageGenerating)

	raw, err := s.gateway.Complete(ctx, SystemJSONOnly, s.prompts.BuildJDMatchPrompt(cvJSON, req.JDText), CompletionOptions{JSONMode: true})
	if err != nil {
		return nil, failRequest(log, progress, err)
	}

	result, err := s.validator.JDMatch(raw)
	if err != nil {
		return nil, failRequest(log, progress, err)
	}

	_ = progress.advance(StageSaving)

	jdText := req.JDText
	if err := s.resumeRepo.Update(id, &repositories.ResumeUpdateData{
		ATSMatchedKeywords: result.MatchedKeywords,
		ATSMissingKeywords: result.MissingKeywords,
		JDText:             &jdText,
	}); err != nil {
		return nil, failRequest(log, progress, mapRepoErr(err))
	}

	_ = progress.done(id.String())

	return result, nil
}

func (s *resumeService) CoverLetter(ctx context.Context, req models.CoverLetterRequest) (*CoverLetterResult, error) {
	log := s.log.With(zap.String(logger.FieldUseCase, useCaseCoverLetter), zap.String("resume_id", req.ResumeID))
	progress := newProgressTracker(logProgress(log))
	_ = progress.advance(StageReceived)

	id, cvJSON, err := s.loadParsed(req.ResumeID)
	if err != nil {
		return nil, failRequest(log, progress, err)
	}

	_ = progress.advance(StageGenerating)

	prompt := s.prompts.BuildCoverLetterPrompt(
		cvJSON,
		orDefault(req.Industry, defaultIndustry),
		orDefault(req.Role, defaultCoverLetterRole),
		orDefault(req.JDText, defaultJobDescription),
		orDefault(req.Tone, defaultCoverLetterTone),
	)
	raw, err := s.gateway.Complete(ctx, SystemJSONOnly, prompt, CompletionOptions{JSONMode: true})
	if err != nil {
		return nil, failRequest(log, progress, err)
	}

	result, err := s.validator.CoverLetter(raw)
	if err != nil {
		return nil, failRequest(log, progress, err)
	}

	_ = progress.advance(StageSaving)

	if err := s.resumeRepo.Update(id, &repositories.ResumeUpdateData{
		OptimizedCoverLetterHTML: &result.CoverLetterHTML,
	}); err != nil {
		return nil, failRequest(log, progress, mapRepoErr(err))
	}

	_ = progress.done(id.String())

	return result, nil
}

func (s *resumeService) Download(ctx context.Context, id uuid.UUID, token string) (*models.Resume, error) {
	resume, err := s.resumeRepo.FindByID(id)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	if !resume.IsPaid() {
		return nil, ErrPaymentRequired
	}

	if token == "" || !constantTimeEqual(token, resume.DownloadToken) {
		return nil, ErrInvalidToken
	}
	if IsIssuedDownloadToken(resume.DownloadToken) {
		if err := s.payments.VerifyDownloadToken(token, id); err != nil {
			return nil, err
		}
	}

	return resume, nil
}

// ParseResumeText makes the single extraction call for already-extracted text
// and validates the answer.
func ParseResumeText(ctx context.Context, gateway LLMGateway, validator *ResponseValidator, text string) (*StrictParsedResume, error) {
	raw, err := gateway.Complete(ctx, SystemJSONOnly, NewPromptBuilder().BuildParseCVPrompt(text), CompletionOptions{JSONMode: true})
	if err != nil {
		return nil, err
	}
	return validator.ParsedResume(raw)
}

// loadParsed fetches a resume and re-validates its stored extraction before it
// is fed back into a prompt.
func (s *resumeService) loadParsed(rawID string) (uuid.UUID, string, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("%w: resume %q", ErrNotFound, rawID)
	}

	resume, err := s.resumeRepo.FindByID(id)
	if err != nil {
		return uuid.Nil, "", mapRepoErr(err)
	}

	if len(resume.CVParsedJSON) == 0 {
		return uuid.Nil, "", fmt.Errorf("%w: resume %s has no parsed data", ErrNotFound, id)
	}

	parsed, err := s.validator.ParsedResume(string(resume.CVParsedJSON))
	if err != nil {
		return uuid.Nil, "", err
	}

	cvJSON, err := json.Marshal(parsed)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("failed to encode parsed resume: %w", err)
	}

	return id, string(cvJSON), nil
}

// failRequest emits the error marker and logs the terminal error, with the raw
// model payload when one is attached.
func failRequest(log *zap.Logger, progress *progressTracker, err error) error {
	progress.fail(UserMessage(err))
	logTerminal(log, err)
	return err
}

func logTerminal(log *zap.Logger, err error) {
	fields := []zap.Field{zap.Error(err)}
	if raw, ok := RawPayload(err); ok {
		fields = append(fields, logger.RawPayload(raw))
	}
	log.Error("❌ request failed", fields...)
}

func logProgress(log *zap.Logger) ProgressFunc {
	return func(ev ProgressEvent) bool {
		log.Debug("🔄 progress", zap.String("step", string(ev.Step)))
		return true
	}
}

func mapRepoErr(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
