package services

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"alfredoptarigan/resume-tailor/internal/logger"
	"alfredoptarigan/resume-tailor/internal/models"
	"alfredoptarigan/resume-tailor/internal/repositories"
)

type CVService interface {
	// SaveCV replaces the session's latest CV with the pasted text.
	SaveCV(sessionID string, req models.SaveCVRequest) (*models.CV, error)
	// UploadCV extracts and structures an uploaded document, then saves it as
	// the session's latest CV.
	UploadCV(sessionID, title string, data []byte, mimeType, filename string) (*models.CV, []ResumeSection, error)
}

type cvService struct {
	cvRepo    repositories.CVRepository
	extractor TextExtractor
	log       *zap.Logger
}

func NewCVService(cvRepo repositories.CVRepository, extractor TextExtractor, log *zap.Logger) CVService {
	return &cvService{
		cvRepo:    cvRepo,
		extractor: extractor,
		log:       logger.OrNop(log),
	}
}

func (s *cvService) SaveCV(sessionID string, req models.SaveCVRequest) (*models.CV, error) {
	var structured datatypes.JSON
	if len(req.StructuredData) > 0 && string(req.StructuredData) != "null" {
		if !json.Valid(req.StructuredData) {
			return nil, fmt.Errorf("%w: structuredData", ErrMalformedJSON)
		}
		structured = datatypes.JSON(req.StructuredData)
	}

	cv, err := s.cvRepo.SaveLatest(sessionID, strings.TrimSpace(req.Title), req.RawText, structured)
	if err != nil {
		return nil, err
	}

	s.log.Info("✅ cv saved", zap.String("cv_id", cv.ID.String()), zap.String("session_id", sessionID))
	return cv, nil
}

func (s *cvService) UploadCV(sessionID, title string, data []byte, mimeType, filename string) (*models.CV, []ResumeSection, error) {
	text, err := s.extractor.Extract(data, ResolveMimeType(mimeType, filename, data))
	if err != nil {
		return nil, nil, err
	}

	structured, err := structuredData(text)
	if err != nil {
		return nil, nil, err
	}
	sections := StructureResume(text)

	title = strings.TrimSpace(title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	if title == "" || title == "." {
		title = defaultCVTitle
	}

	cv, err := s.cvRepo.SaveLatest(sessionID, title, text, structured)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("✅ cv uploaded",
		zap.String("cv_id", cv.ID.String()),
		zap.Int("sections", len(sections)),
		zap.Int("chars", len(text)),
	)

	return cv, sections, nil
}

// structuredData derives the stored section breakdown for pasted CV text.
func structuredData(text string) (datatypes.JSON, error) {
	data, err := json.Marshal(StructuredResume{Sections: StructureResume(text), RawText: text})
	if err != nil {
		return nil, fmt.Errorf("failed to encode structured cv: %w", err)
	}
	return datatypes.JSON(data), nil
}
