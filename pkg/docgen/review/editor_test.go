package review

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docgen-be/internal/pkg/logger"
	"docgen-be/pkg/docgen"
	"docgen-be/pkg/llm"
)

type scriptedProvider struct {
	responses []string
	err       error
	calls     int
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	if len(p.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	resp := p.responses[0]
	p.responses = p.responses[1:]
	return resp, nil
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return p.Generate(ctx, "", options...)
}

func TestPostProcess(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "collapses runs of blank lines to two",
			input: "line one\n\n\n\n\nline two",
			want:  "line one\n\n\nline two",
		},
		{
			name:  "inserts blank lines around headers",
			input: "intro text\n## Section\nbody text",
			want:  "intro text\n\n## Section\n\nbody text",
		},
		{
			name:  "normalizes sentence spacing",
			input: "First sentence.Second sentence.",
			want:  "First sentence. Second sentence.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PostProcess(tt.input)
			if got != tt.want {
				t.Errorf("PostProcess(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDiffClassification(t *testing.T) {
	tests := []struct {
		name        string
		original    string
		improved    string
		wantSummary string
	}{
		{
			name:        "revised when lines change",
			original:    "alpha\nbeta",
			improved:    "alpha\ngamma",
			wantSummary: "Content was revised with both removals and additions.",
		},
		{
			name:        "streamlined when lines removed",
			original:    "alpha\nbeta",
			improved:    "alpha",
			wantSummary: "Content was streamlined with some text removed.",
		},
		{
			name:        "enhanced when lines added",
			original:    "alpha",
			improved:    "alpha\nbeta",
			wantSummary: "Content was enhanced with additional information.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := DiffContents(tt.original, tt.improved)
			if len(details.Summary) != 1 || details.Summary[0] != tt.wantSummary {
				t.Errorf("Summary = %v, want [%q]", details.Summary, tt.wantSummary)
			}
		})
	}
}

func TestDiffCappedAt100Lines(t *testing.T) {
	var original, improved strings.Builder
	for i := 0; i < 120; i++ {
		original.WriteString("old line\n")
		improved.WriteString("new line\n")
	}

	details := DiffContents(original.String(), improved.String())

	if len(details.UnifiedDiff) > 100 {
		t.Errorf("UnifiedDiff has %d lines, want at most 100", len(details.UnifiedDiff))
	}
}

func TestReviewTotalFailureReturnsOriginal(t *testing.T) {
	provider := &scriptedProvider{err: &llm.ModelError{Provider: "test", Err: errors.New("down")}}
	editor := NewEditor(provider, logger.NewNop())

	content := "# Draft\n\nOriginal text."
	result := editor.Review(context.Background(), content, "SRS", nil, nil, ReviewFormatting)

	if result.Status != docgen.StatusError {
		t.Errorf("Status = %q, want %q", result.Status, docgen.StatusError)
	}
	if result.ImprovedContent != content {
		t.Errorf("ImprovedContent = %q, want the original back", result.ImprovedContent)
	}
	if len(result.ChangesMade) != 0 {
		t.Errorf("ChangesMade = %v, want empty", result.ChangesMade)
	}
}

func TestReviewBothRunsTwoPasses(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"# Draft\n\nFormatted text.",
		"# Draft\n\nFormatted text with feedback applied.",
	}}
	editor := NewEditor(provider, logger.NewNop())

	result := editor.Review(context.Background(), "# Draft\n\nOriginal.", "SRS", nil, []string{"add detail"}, ReviewBoth)

	if result.Status != docgen.StatusSuccess {
		t.Fatalf("Status = %q, want success (reason: %s)", result.Status, result.Reason)
	}
	if provider.calls != 2 {
		t.Errorf("provider calls = %d, want 2", provider.calls)
	}
	if len(result.ChangesMade) != 2 {
		t.Errorf("ChangesMade = %v, want two entries", result.ChangesMade)
	}
	if !strings.Contains(result.ImprovedContent, "feedback applied") {
		t.Errorf("ImprovedContent = %q, want the second pass output", result.ImprovedContent)
	}
}

func TestReviewSkipsFeedbackPassWithoutFeedback(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"# Draft\n\nFormatted."}}
	editor := NewEditor(provider, logger.NewNop())

	result := editor.Review(context.Background(), "# Draft\n\nOriginal.", "SRS", nil, nil, ReviewBoth)

	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1 (no feedback items)", provider.calls)
	}
	if result.Status != docgen.StatusSuccess {
		t.Errorf("Status = %q, want success", result.Status)
	}
}
