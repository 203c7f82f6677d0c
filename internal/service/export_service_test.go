// FILE: internal/service/export_service_test.go
package service

import (
	"context"
	"strings"
	"testing"

	"docgen-be/internal/pkg/logger"
	"docgen-be/internal/pkg/serverutils"
	"docgen-be/pkg/retry"
)

func newTestExportService(pandocPath string) *exportService {
	return &exportService{
		pandocPath:  pandocPath,
		retryPolicy: retry.Policy{MaxAttempts: 1},
		log:         logger.NopLogger{},
	}
}

func TestExportMarkdownReturnsContentDirectly(t *testing.T) {
	s := newTestExportService("")

	res, err := s.Export(context.Background(), "# Doc\n\nbody", "md", "My Report")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(res.Data) != "# Doc\n\nbody" {
		t.Errorf("markdown export must not transform content, got %q", res.Data)
	}
	if res.ContentType != "text/markdown" {
		t.Errorf("content type = %q", res.ContentType)
	}
	if res.Filename != "My_Report.md" {
		t.Errorf("filename = %q", res.Filename)
	}
}

func TestExportUnknownFormatIsBadRequest(t *testing.T) {
	s := newTestExportService("")

	_, err := s.Export(context.Background(), "content", "rtf", "doc")
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := err.(*serverutils.AppError)
	if !ok || appErr.Status != 400 {
		t.Errorf("expected 400 AppError, got %v", err)
	}
}

func TestExportWithoutPandocIsNotImplemented(t *testing.T) {
	s := newTestExportService("")

	_, err := s.Export(context.Background(), "content", "pdf", "doc")
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := err.(*serverutils.AppError)
	if !ok || appErr.Status != 501 {
		t.Errorf("expected 501 AppError, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Report.md", "My_Report"},
		{"../../etc/passwd", "passwd"},
		{"résumé", "r_sum_"},
		{"", "document"},
	}
	for _, tc := range tests {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExportFormatsCoverSpecSet(t *testing.T) {
	for _, format := range []string{"pdf", "docx", "latex"} {
		if _, ok := exportFormats[format]; !ok {
			t.Errorf("missing converter entry for %q", format)
		}
	}
	if strings.Contains(exportFormats["latex"].extension, "latex") {
		t.Error("latex output should use the .tex extension")
	}
}
