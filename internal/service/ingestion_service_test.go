// FILE: internal/service/ingestion_service_test.go
package service

import (
	"strings"
	"testing"
)

func TestDetectDocTypeFilenameWins(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		want     string
	}{
		{"srs filename", "project_srs_v2.md", "a business plan with market analysis", "SRS"},
		{"sow filename", "statement of work.txt", "", "SOW"},
		{"proposal filename", "Q3-proposal.pdf", "", "Proposal"},
		{"content srs", "notes.md", "This software requirements specification covers the system.", "SRS"},
		{"content technical", "doc.md", "The architecture and implementation details follow.", "Technical"},
		{"no signal", "doc.md", "Nothing recognizable here.", "General"},
		{"empty", "", "", "General"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectDocType(tc.filename, tc.content)
			if got != tc.want {
				t.Errorf("DetectDocType(%q, ...) = %q, want %q", tc.filename, got, tc.want)
			}
		})
	}
}

func TestDetectDocTypeContentPicksMostHits(t *testing.T) {
	content := "proposal proposal budget approach business"
	if got := DetectDocType("doc.md", content); got != "Proposal" {
		t.Errorf("expected Proposal for majority keywords, got %q", got)
	}
}

func TestExtractTextPlainFile(t *testing.T) {
	content, err := ExtractText("notes.md", []byte("# Heading\n\nBody text."))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "# Heading\n\nBody text." {
		t.Errorf("content changed: %q", content)
	}
}

func TestExtractTextRejectsBinary(t *testing.T) {
	if _, err := ExtractText("blob.txt", []byte{0xff, 0xfe, 0x00, 0x80}); err == nil {
		t.Fatal("expected error for invalid UTF-8")
	}
}

func TestExtractTextRejectsMalformedPdf(t *testing.T) {
	if _, err := ExtractText("doc.pdf", []byte("not a pdf")); err == nil {
		t.Fatal("expected error for malformed pdf")
	}
}

func TestBuildStyleMetadata(t *testing.T) {
	content := "# Title\n\nSome body here.\n\n## Section\n\nMore words."
	meta := BuildStyleMetadata(content)

	if meta["heading_count"] != 2 {
		t.Errorf("heading_count = %v, want 2", meta["heading_count"])
	}
	if meta["word_count"] != 9 {
		t.Errorf("word_count = %v, want 9", meta["word_count"])
	}
}

func TestFirstHeading(t *testing.T) {
	if got := firstHeading("intro text\n## Scope of Work\nbody"); got != "Scope of Work" {
		t.Errorf("firstHeading = %q", got)
	}
	if got := firstHeading("no headings at all"); got != "Untitled Document" {
		t.Errorf("expected fallback title, got %q", got)
	}
}

func TestExtractSummarySkipsHeadingsAndCaps(t *testing.T) {
	content := "# Title\n\n" + strings.Repeat("z", 400) + "\n\nsecond paragraph"
	summary := extractSummary(content)

	if len([]rune(summary)) != 280 {
		t.Errorf("summary length = %d, want 280", len([]rune(summary)))
	}
	if strings.HasPrefix(summary, "#") {
		t.Error("summary must not be a heading")
	}
}

func TestExtractSummaryEmptyForHeadingOnlyDoc(t *testing.T) {
	if got := extractSummary("# Only\n\n## Headings"); got != "" {
		t.Errorf("expected empty summary, got %q", got)
	}
}
