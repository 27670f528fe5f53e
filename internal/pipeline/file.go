package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/rs/zerolog"

	"github.com/valpere/transly/internal"
	"github.com/valpere/transly/internal/api"
	"github.com/valpere/transly/internal/quota"
)

// MaxFileSize is the largest document the backend accepts.
const MaxFileSize = 50 << 20

var (
	ErrUnsupportedFile = errors.New("file type not allowed")
	ErrFileTooLarge    = errors.New("file exceeds the 50 MB limit")
)

// AllowedExtensions lists the document types the backend can translate.
var AllowedExtensions = []string{".txt", ".pdf", ".docx", ".pptx", ".xlsx"}

// FileClient uploads a document for translation.
type FileClient interface {
	TranslateFile(ctx context.Context, up api.FileUpload, w io.Writer, onProgress func(int)) (int64, error)
}

type FileResult struct {
	OutputPath          string `json:"outputPath"`
	Bytes               int64  `json:"bytes"`
	EstimatedCharacters int    `json:"estimatedCharacters"`
}

type FileTranslator struct {
	client FileClient
	quota  quota.Source
	log    zerolog.Logger
}

func NewFileTranslator(client FileClient, q quota.Source, log zerolog.Logger) *FileTranslator {
	return &FileTranslator{client: client, quota: q, log: log}
}

// Translate uploads inputPath and writes the translated document to
// outputPath. The output file is only replaced once the whole document has
// been received.
func (f *FileTranslator) Translate(ctx context.Context, inputPath, outputPath, sourceLang, targetLang string, onProgress internal.ProgressFunc) (*FileResult, error) {
	if err := CheckFileType(inputPath); err != nil {
		return nil, err
	}
	if err := validateLanguages(sourceLang, targetLang); err != nil {
		return nil, err
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat input file: %w", err)
	}
	if info.Size() > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	estimate := quota.EstimateFileCharacters(inputPath, info.Size())
	if err := quota.Check(ctx, f.quota, estimate); err != nil {
		return nil, err
	}

	prog := newProgress(onProgress)
	var out bytes.Buffer
	n, err := f.client.TranslateFile(ctx, api.FileUpload{
		Name:       filepath.Base(inputPath),
		Content:    in,
		SourceLang: sourceLang,
		TargetLang: targetLang,
	}, &out, prog.report)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := atomic.WriteFile(outputPath, &out); err != nil {
		return nil, fmt.Errorf("failed to write output file: %w", err)
	}

	f.log.Debug().
		Str("input", inputPath).
		Str("output", outputPath).
		Int64("bytes", n).
		Msg("Document translated")

	prog.done()
	return &FileResult{OutputPath: outputPath, Bytes: n, EstimatedCharacters: estimate}, nil
}

// CheckFileType rejects files whose extension the backend does not accept.
func CheckFileType(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Base(name))
}
