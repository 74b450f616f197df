// Package extractor turns exam PDFs into question records.
//
// The pipeline is sequential: page text is concatenated and split on question
// markers, embedded images are attached by page position, and an OCR pass over
// rendered pages supplements or extends the records. Association is positional
// only; nothing inspects the content to match images or OCR text to questions.
package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"question_extractor/internal/config"
	"question_extractor/internal/model"
	"question_extractor/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// Stages reported through ProgressFunc.
const (
	StageText     = "text"
	StageSegment  = "segment"
	StageImages   = "images"
	StageOCR      = "ocr"
	StageComplete = "complete"
)

type Options struct {
	TextEngine   string
	OCREnabled   bool
	OCRLanguages []string
	RenderDPI    float64
	PreviewRunes int
}

// OptionsFromConfig maps the extraction section of the configuration.
func OptionsFromConfig(cfg config.ExtractionConfig) Options {
	return Options{
		TextEngine:   cfg.TextEngine,
		OCREnabled:   cfg.OCREnabled,
		OCRLanguages: cfg.OCRLanguages,
		RenderDPI:    cfg.RenderDPI,
		PreviewRunes: cfg.PreviewRunes,
	}
}

// ProgressFunc receives the current stage, the 1-based page being processed
// (0 when the stage is not per page), the page count and the number of records so far.
type ProgressFunc func(stage string, page, totalPages, questions int)

type Result struct {
	Questions []model.Question
	Pages     int
	Images    int
	OCRPages  int
}

type Extractor struct {
	loader Loader
	ocr    OCREngine
	saver  ImageSaver

	mu   sync.RWMutex
	opts Options
}

// New builds an extractor. ocr may be nil, which disables the OCR pass.
func New(loader Loader, ocr OCREngine, saver ImageSaver, opts Options) *Extractor {
	return &Extractor{loader: loader, ocr: ocr, saver: saver, opts: opts}
}

// SetOptions replaces the options used by subsequent extractions.
func (e *Extractor) SetOptions(opts Options) {
	e.mu.Lock()
	e.opts = opts
	e.mu.Unlock()
}

func (e *Extractor) Options() Options {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.opts
}

// Extract runs the whole pipeline on the PDF at path. Any failure aborts the
// extraction; no partial result is returned.
func (e *Extractor) Extract(ctx context.Context, path, prefix string, progress ProgressFunc) (*Result, error) {
	opts := e.Options()
	if progress == nil {
		progress = func(string, int, int, int) {}
	}

	doc, err := e.loader.Open(path, opts.TextEngine)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	pages := doc.NumPages()
	res := &Result{Pages: pages}

	text, err := e.readText(ctx, doc, pages, progress)
	if err != nil {
		return nil, err
	}

	progress(StageSegment, 0, pages, 0)
	bodies := Segment(text)
	questions := make([]model.Question, 0, len(bodies))
	for i, body := range bodies {
		questions = append(questions, model.NewQuestion(model.QuestionID(prefix, i+1), model.PlaceholderSubject, body, opts.PreviewRunes))
	}

	if len(questions) > 0 {
		progress(StageImages, 0, pages, len(questions))
		spanCtx, span := tracing.StartSpan(ctx, StageImages)
		images, err := doc.Images(spanCtx)
		if err != nil {
			span.End()
			return nil, err
		}
		res.Images, err = AssociateImages(spanCtx, questions, images, prefix, e.saver)
		span.SetAttributes(attribute.Int("images", res.Images))
		span.End()
		if err != nil {
			return nil, err
		}
	}

	if opts.OCREnabled && e.ocr != nil {
		questions, res.OCRPages, err = e.runOCR(ctx, doc, pages, prefix, opts, questions, progress)
		if err != nil {
			return nil, err
		}
	}

	res.Questions = questions
	progress(StageComplete, 0, pages, len(questions))
	return res, nil
}

func (e *Extractor) readText(ctx context.Context, doc Document, pages int, progress ProgressFunc) (string, error) {
	ctx, span := tracing.StartSpan(ctx, StageText, attribute.Int("pages", pages))
	defer span.End()

	texts := make([]string, 0, pages)
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		progress(StageText, i+1, pages, 0)
		t, err := doc.PageText(i)
		if err != nil {
			return "", err
		}
		texts = append(texts, t)
	}
	return strings.Join(texts, "\n"), nil
}

func (e *Extractor) runOCR(ctx context.Context, doc Document, pages int, prefix string, opts Options, questions []model.Question, progress ProgressFunc) ([]model.Question, int, error) {
	ctx, span := tracing.StartSpan(ctx, StageOCR, attribute.String("engine", e.ocr.Name()))
	defer span.End()

	processed := 0
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, processed, err
		}
		progress(StageOCR, i+1, pages, len(questions))

		img, err := doc.RenderPage(i, opts.RenderDPI)
		if err != nil {
			return nil, processed, err
		}
		text, err := e.ocr.Recognize(ctx, OCRInput{
			PageIndex: i,
			Image:     img,
			DPI:       int(opts.RenderDPI),
			Languages: opts.OCRLanguages,
		})
		if err != nil {
			return nil, processed, fmt.Errorf("ocr page %d: %w", i+1, err)
		}
		processed++
		questions, _ = SupplementOCR(questions, i, text, prefix, opts.PreviewRunes)
	}
	span.SetAttributes(attribute.Int("questions", len(questions)))
	return questions, processed, nil
}

var unsafePrefixChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// ExamPrefix derives the question id prefix from an upload filename:
// the extension is dropped, unsafe characters collapse to "_" and the result is uppercased.
func ExamPrefix(filename string) string {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.Trim(unsafePrefixChars.ReplaceAllString(stem, "_"), "_")
	if stem == "" {
		return "EXAM"
	}
	return strings.ToUpper(stem)
}
