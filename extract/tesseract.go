package extract

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/docflow/docflow/errors"
)

// Extraction phases reported through ProgressFunc. Percentages are coarse
// markers so a polling client never watches progress sit at 0 for the
// whole run.
const (
	phaseOCRStart    = 20
	phaseOCRDone     = 60
	phaseEntitiesRun = 90
	phaseFinalize    = 95
)

// TesseractEngine runs the tesseract binary as a subprocess and then
// applies the entity pass over its output.
type TesseractEngine struct {
	binary    string // Path to tesseract; empty means look it up on PATH
	languages string // -l argument, e.g. "rus+eng"
	logger    *zap.SugaredLogger
}

// NewTesseractEngine creates an engine backed by a local tesseract install.
func NewTesseractEngine(binary, languages string, logger *zap.SugaredLogger) *TesseractEngine {
	if binary == "" {
		binary = "tesseract"
	}
	if languages == "" {
		languages = "rus+eng"
	}
	return &TesseractEngine{
		binary:    binary,
		languages: languages,
		logger:    logger,
	}
}

// supportedExtensions are the formats tesseract accepts directly.
var supportedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
	".pdf":  true,
}

// Extract runs OCR over the document and extracts contract fields.
// The subprocess is started with exec.CommandContext, so cancelling ctx
// kills an in-flight OCR run.
func (e *TesseractEngine) Extract(ctx context.Context, doc Document, progress ProgressFunc) (*Result, error) {
	if progress == nil {
		progress = func(int, string) {}
	}

	if _, err := os.Stat(doc.Path); err != nil {
		return nil, errors.Wrapf(err, "document file missing: %s", doc.Path)
	}

	ext := strings.ToLower(filepath.Ext(doc.Name))
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(doc.Path))
	}
	if !supportedExtensions[ext] {
		return nil, errors.NewInvalidRequestError("unsupported document format: %q", ext)
	}

	progress(phaseOCRStart, "running OCR")
	e.logger.Infow("Starting OCR", "file", doc.Name, "languages", e.languages)

	text, err := e.runTesseract(ctx, doc.Path)
	if err != nil {
		return nil, err
	}

	progress(phaseOCRDone, "OCR finished, extracting fields")
	e.logger.Infow("OCR finished", "file", doc.Name, "text_length", len(text))

	progress(phaseEntitiesRun, "extracting contract fields")
	fields := ExtractFields(text)

	progress(phaseFinalize, "assembling result")
	return &Result{
		RawText: text,
		Fields:  fields,
	}, nil
}

// runTesseract invokes `tesseract <input> stdout -l <langs>` and returns
// the recognized text.
func (e *TesseractEngine) runTesseract(ctx context.Context, inputPath string) (string, error) {
	cmd := exec.CommandContext(ctx, e.binary, inputPath, "stdout", "-l", e.languages)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", errors.Wrap(ctx.Err(), "OCR interrupted")
		}
		err = errors.Wrap(err, "tesseract failed")
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = errors.WithDetail(err, msg)
		}
		err = errors.WithHint(err, "install tesseract-ocr with the Russian language pack")
		return "", err
	}

	return stdout.String(), nil
}
