package extractor

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	fitz "github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const (
	TextEngineFitz       = "fitz"
	TextEngineLedongthuc = "ledongthuc"
)

func init() {
	// pdfcpu would otherwise create a config directory under the user's home.
	api.DisableConfigDir()
}

// EmbeddedImage is a raster image stored inside a page's resources.
type EmbeddedImage struct {
	// Page is the zero-based page index.
	Page int
	// Index is the 1-based position of the image on its page.
	Index int
	// Ext is the file extension matching the image stream, including the dot.
	Ext  string
	Data []byte
}

// Document gives page-level access to an opened PDF.
type Document interface {
	NumPages() int
	PageText(page int) (string, error)
	// RenderPage rasterizes a page to PNG at the given resolution.
	RenderPage(page int, dpi float64) ([]byte, error)
	Images(ctx context.Context) ([]EmbeddedImage, error)
	Close() error
}

// Loader opens PDF files for extraction.
type Loader interface {
	Open(path string, textEngine string) (Document, error)
}

// PDFLoader opens documents with MuPDF (go-fitz) for page count and rendering,
// pdfcpu for embedded images and either MuPDF or ledongthuc/pdf for text.
type PDFLoader struct{}

func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

func (l *PDFLoader) Open(path string, textEngine string) (Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}

	d := &pdfDocument{path: path, fitz: doc}

	switch textEngine {
	case "", TextEngineFitz:
	case TextEngineLedongthuc:
		f, r, err := pdf.Open(path)
		if err != nil {
			doc.Close()
			return nil, fmt.Errorf("open pdf text layer %s: %w", path, err)
		}
		d.textFile = f
		d.textReader = r
	default:
		doc.Close()
		return nil, fmt.Errorf("unknown text engine %q", textEngine)
	}

	return d, nil
}

type pdfDocument struct {
	path       string
	fitz       *fitz.Document
	textFile   *os.File
	textReader *pdf.Reader
}

func (d *pdfDocument) NumPages() int {
	return d.fitz.NumPage()
}

func (d *pdfDocument) PageText(page int) (string, error) {
	if d.textReader == nil {
		text, err := d.fitz.Text(page)
		if err != nil {
			return "", fmt.Errorf("page %d text: %w", page+1, err)
		}
		return text, nil
	}

	p := d.textReader.Page(page + 1)
	if p.V.IsNull() {
		return "", nil
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("page %d text: %w", page+1, err)
	}
	return text, nil
}

func (d *pdfDocument) RenderPage(page int, dpi float64) ([]byte, error) {
	data, err := d.fitz.ImagePNG(page, dpi)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page+1, err)
	}
	return data, nil
}

func (d *pdfDocument) Images(ctx context.Context) ([]EmbeddedImage, error) {
	return extractEmbeddedImages(ctx, d.path)
}

func (d *pdfDocument) Close() error {
	var firstErr error
	if d.textFile != nil {
		firstErr = d.textFile.Close()
	}
	if err := d.fitz.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

type rawImage struct {
	EmbeddedImage
	objNr int
	name  string
}

// extractEmbeddedImages returns every image XObject placed on each page, ordered
// by page, object number and resource name. The context is validated but not
// optimized: optimization merges byte-identical images, which would drop
// repeated figures from a page.
func extractEmbeddedImages(ctx context.Context, path string) ([]EmbeddedImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.Optimize = false
	pdfCtx, err := api.ReadAndValidate(f, conf)
	if err != nil {
		return nil, fmt.Errorf("extract images: %w", err)
	}
	if err := pdfCtx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("extract images: %w", err)
	}

	var raws []rawImage
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, _, attrs, err := pdfCtx.PageDict(pageNr, false)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageNr, err)
		}
		if attrs == nil || attrs.Resources == nil {
			continue
		}
		pageRaws, err := collectImages(pdfCtx, attrs.Resources, pageNr, map[int]bool{})
		if err != nil {
			return nil, fmt.Errorf("page %d images: %w", pageNr, err)
		}
		raws = append(raws, pageRaws...)
	}

	sort.SliceStable(raws, func(i, j int) bool {
		if raws[i].Page != raws[j].Page {
			return raws[i].Page < raws[j].Page
		}
		if raws[i].objNr != raws[j].objNr {
			return raws[i].objNr < raws[j].objNr
		}
		return raws[i].name < raws[j].name
	})

	images := make([]EmbeddedImage, 0, len(raws))
	page, index := -1, 0
	for _, r := range raws {
		if r.Page != page {
			page, index = r.Page, 0
		}
		index++
		img := r.EmbeddedImage
		img.Index = index
		images = append(images, img)
	}
	return images, nil
}

// collectImages reads the image XObjects of a resource dictionary, descending
// into form XObjects. forms guards against cyclic form references.
func collectImages(pdfCtx *model.Context, resources types.Dict, pageNr int, forms map[int]bool) ([]rawImage, error) {
	obj, found := resources.Find("XObject")
	if !found {
		return nil, nil
	}
	xobjects, err := pdfCtx.DereferenceDict(obj)
	if err != nil || xobjects == nil {
		return nil, err
	}

	var raws []rawImage
	for name, o := range xobjects {
		ref, ok := o.(types.IndirectRef)
		if !ok {
			continue
		}
		objNr := ref.ObjectNumber.Value()
		sd, _, err := pdfCtx.DereferenceStreamDict(ref)
		if err != nil {
			return nil, err
		}
		if sd == nil || sd.Subtype() == nil {
			continue
		}

		switch *sd.Subtype() {
		case "Image":
			img, err := pdfcpu.ExtractImage(pdfCtx, sd, false, name, objNr, false)
			if err != nil {
				return nil, fmt.Errorf("image %s: %w", name, err)
			}
			// unsupported filters yield no reader
			if img == nil || img.Reader == nil {
				continue
			}
			data, err := io.ReadAll(img)
			if err != nil {
				return nil, fmt.Errorf("read image %s: %w", name, err)
			}
			raws = append(raws, rawImage{
				EmbeddedImage: EmbeddedImage{
					Page: pageNr - 1,
					Ext:  imageExt(img.FileType),
					Data: data,
				},
				objNr: objNr,
				name:  name,
			})
		case "Form":
			if forms[objNr] {
				continue
			}
			forms[objNr] = true
			formRes, found := sd.Find("Resources")
			if !found {
				continue
			}
			d, err := pdfCtx.DereferenceDict(formRes)
			if err != nil {
				return nil, err
			}
			nested, err := collectImages(pdfCtx, d, pageNr, forms)
			if err != nil {
				return nil, err
			}
			raws = append(raws, nested...)
		}
	}
	return raws, nil
}

func imageExt(fileType string) string {
	ft := strings.ToLower(strings.TrimPrefix(fileType, "."))
	switch ft {
	case "":
		return ".bin"
	case "jpeg":
		return ".jpg"
	case "tiff":
		return ".tif"
	}
	return "." + ft
}
