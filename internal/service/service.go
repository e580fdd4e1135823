// Package service resolves a Nota to its PDF and extracts the decision.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jmylchreest/notadecision/internal/files"
	"github.com/jmylchreest/notadecision/internal/logger"
	"github.com/jmylchreest/notadecision/internal/pdftext"
	"github.com/jmylchreest/notadecision/pkg/decision"
)

// FileLookup finds the PDF file behind a Nota.
type FileLookup interface {
	NotaFile(ctx context.Context, notaID string) (string, error)
	FileByID(ctx context.Context, fileID string) (*files.File, error)
}

// Options configures a Service.
type Options struct {
	ShareRoot   string
	MaxFileSize int64
	Decoder     pdftext.Decoder // defaults to pdftext.PDFDecoder
}

// Service ties document lookup, text extraction and the decision pipeline
// together. It is safe for concurrent use.
type Service struct {
	files    FileLookup
	pipeline *decision.Pipeline
	opts     Options
}

// New creates a service.
func New(lookup FileLookup, pipeline *decision.Pipeline, opts Options) *Service {
	if opts.Decoder == nil {
		opts.Decoder = pdftext.PDFDecoder{}
	}
	return &Service{
		files:    lookup,
		pipeline: pipeline,
		opts:     opts,
	}
}

// Decision returns the decision section of the Nota. Lookup misses wrap
// files.ErrNotFound and unreadable documents wrap pdftext.ErrDecode.
// Cleaning failures never surface; they show up as Result.Fallback.
func (s *Service) Decision(ctx context.Context, notaID string) (*decision.Result, error) {
	start := time.Now()
	log := logger.With("nota", notaID)

	fileID, err := s.files.NotaFile(ctx, notaID)
	if err != nil {
		return nil, err
	}
	file, err := s.files.FileByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.DataSource == "" {
		return nil, fmt.Errorf("data source of file %s: %w", fileID, files.ErrNotFound)
	}

	path, err := files.LocalPath(s.opts.ShareRoot, file.DataSource)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pdftext.ErrDecode, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, err := pdftext.ReadFile(s.opts.Decoder, path, s.opts.MaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("file %s: %w", fileID, err)
	}

	result := s.pipeline.Extract(text)
	log.Info("decision extracted",
		"file", fileID,
		"anchored", result.Anchored,
		"fallback", result.Fallback,
		"paragraphs", result.Stats.DecisionParagraphs,
		"duration", time.Since(start))
	return result, nil
}
