package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/resume-tailor/internal/logger"
)

// IngestResult is the outcome for one résumé file.
type IngestResult struct {
	Path     string
	ResumeID string
	Jobs     int
	Err      error
}

// IngestWorker parses résumé files from disk into stored resumes.
type IngestWorker interface {
	Run(ctx context.Context, paths []string) []IngestResult
}

type ingestWorker struct {
	resumes     ResumeService
	concurrency int
	log         *zap.Logger
}

func NewIngestWorker(resumes ResumeService, concurrency int, log *zap.Logger) IngestWorker {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &ingestWorker{
		resumes:     resumes,
		concurrency: concurrency,
		log:         logger.OrNop(log),
	}
}

// Run processes every path with at most concurrency files in flight. A failed
// file does not stop the others; results keep the input order.
func (w *ingestWorker) Run(ctx context.Context, paths []string) []IngestResult {
	w.log.Info("🚀 Starting ingestion", zap.Int("files", len(paths)), zap.Int("concurrency", w.concurrency))

	results := make([]IngestResult, len(paths))
	var mu sync.Mutex
	succeeded := 0

	g := new(errgroup.Group)
	g.SetLimit(w.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			res := w.process(ctx, path)
			results[i] = res

			if res.Err != nil {
				w.log.Error("❌ ingest failed", zap.String("path", path), zap.Error(res.Err))
				return nil
			}

			mu.Lock()
			succeeded++
			mu.Unlock()
			w.log.Info("✅ ingested", zap.String("path", path), zap.String("resume_id", res.ResumeID))
			return nil
		})
	}
	_ = g.Wait()

	w.log.Info("📋 Ingestion finished", zap.Int("succeeded", succeeded), zap.Int("failed", len(paths)-succeeded))

	return results
}

func (w *ingestWorker) process(ctx context.Context, path string) IngestResult {
	res := IngestResult{Path: path}

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("failed to read %s: %w", path, err)
		return res
	}

	resume, parsed, err := w.resumes.ParseCV(ctx, data, "", filepath.Base(path))
	if err != nil {
		res.Err = err
		return res
	}

	res.ResumeID = resume.ID.String()
	res.Jobs = len(parsed.Jobs)
	return res
}
