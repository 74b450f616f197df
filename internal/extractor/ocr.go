package extractor

import (
	"context"
	"fmt"
	"strings"

	"question_extractor/internal/model"

	"github.com/otiai10/gosseract/v2"
)

// OCRSeparator precedes recognized text appended to an existing statement.
const OCRSeparator = "\n\n[OCR]\n"

// OCRInput is one rendered page submitted for recognition.
type OCRInput struct {
	// PageIndex is the zero-based page the image was rendered from.
	PageIndex int
	// Image is PNG encoded.
	Image     []byte
	DPI       int
	Languages []string
}

// OCREngine recognizes the text of a single image.
type OCREngine interface {
	Name() string
	Recognize(ctx context.Context, in OCRInput) (string, error)
}

// TesseractEngine runs tesseract through gosseract, one client per page.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
}

func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{clientFactory: gosseract.NewClient}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

func (e *TesseractEngine) Recognize(ctx context.Context, in OCRInput) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(in.Image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(in.DPI)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize page %d: %w", in.PageIndex+1, err)
	}
	return strings.TrimSpace(text), nil
}

// SupplementOCR merges the text recognized on page into the questions.
//
// When page is within range the text is appended to that question's statement.
// Otherwise an overflow question with subject OCR is added, numbered after the
// last question. Blank text leaves the questions untouched.
func SupplementOCR(questions []model.Question, page int, text, prefix string, previewRunes int) ([]model.Question, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return questions, false
	}

	if page < len(questions) {
		questions[page].Statement += OCRSeparator + text
		return questions, true
	}

	overflow := model.NewQuestion(model.QuestionID(prefix, len(questions)+1), model.OCRSubject, text, previewRunes)
	return append(questions, overflow), true
}
