// FILE: internal/service/export_service.go
package service

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"docgen-be/internal/pkg/logger"
	"docgen-be/internal/pkg/serverutils"
	"docgen-be/pkg/retry"
)

// format -> (pandoc output flag value, content type)
var exportFormats = map[string]struct {
	pandocFormat string
	contentType  string
	extension    string
}{
	"pdf":   {"pdf", "application/pdf", ".pdf"},
	"docx":  {"docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", ".docx"},
	"latex": {"latex", "application/x-latex", ".tex"},
}

type ExportResult struct {
	Data        []byte
	ContentType string
	Filename    string
}

type IExportService interface {
	Export(ctx context.Context, content, format, filename string) (*ExportResult, error)
}

// exportService shells out to pandoc. Conversion is external on purpose: the
// markdown-to-pdf toolchain is too heavy to embed and the binary is optional
// at deploy time.
type exportService struct {
	pandocPath  string
	retryPolicy retry.Policy
	log         logger.ILogger
}

func NewExportService(retryPolicy retry.Policy, log logger.ILogger) IExportService {
	path, err := exec.LookPath("pandoc")
	if err != nil {
		path = ""
	}
	return &exportService{
		pandocPath:  path,
		retryPolicy: retryPolicy,
		log:         log,
	}
}

func (s *exportService) Export(ctx context.Context, content, format, filename string) (*ExportResult, error) {
	// Markdown is the storage format, no conversion needed.
	if format == "" || format == "md" {
		if filename == "" {
			filename = "document"
		}
		return &ExportResult{
			Data:        []byte(content),
			ContentType: "text/markdown",
			Filename:    sanitizeFilename(filename) + ".md",
		}, nil
	}

	spec, ok := exportFormats[format]
	if !ok {
		return nil, serverutils.NewBadRequestError(fmt.Sprintf("unsupported export format: %s", format))
	}
	if s.pandocPath == "" {
		return nil, serverutils.NewNotImplementedError("document export requires pandoc, which is not installed on this server")
	}

	if filename == "" {
		filename = "document"
	}
	filename = sanitizeFilename(filename) + spec.extension

	data, err := retry.Do(ctx, s.retryPolicy, func() ([]byte, error) {
		return s.convert(ctx, content, spec.pandocFormat)
	})
	if err != nil {
		s.log.Error("export", "Pandoc conversion failed", map[string]interface{}{
			"format": format,
			"error":  err.Error(),
		})
		return nil, serverutils.NewInternalError(fmt.Sprintf("export to %s failed", format), err)
	}

	return &ExportResult{
		Data:        data,
		ContentType: spec.contentType,
		Filename:    filename,
	}, nil
}

func (s *exportService) convert(ctx context.Context, content, pandocFormat string) ([]byte, error) {
	outFile, err := os.CreateTemp("", "docgen-export-*."+pandocFormat)
	if err != nil {
		return nil, err
	}
	outPath := outFile.Name()
	outFile.Close()
	defer os.Remove(outPath)

	cmd := exec.CommandContext(ctx, s.pandocPath,
		"--from", "markdown",
		"--to", pandocFormat,
		"--output", outPath,
	)
	cmd.Stdin = strings.NewReader(content)

	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pandoc: %v: %s", err, strings.TrimSpace(string(output)))
	}

	return os.ReadFile(outPath)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if cleaned == "" {
		return "document"
	}
	return cleaned
}
