package stub

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"docgen-be/pkg/llm"
)

// StubProvider is a deterministic, offline completion backend. It produces
// structurally well-formed documents (headers, a requirements section, a
// conclusion) from the same prompt markers the real providers receive, so the
// rest of the pipeline can run without any API key.
type StubProvider struct{}

var _ llm.LLMProvider = &StubProvider{}

func NewStubProvider() *StubProvider {
	return &StubProvider{}
}

var (
	docTypeRe     = regexp.MustCompile(`Document Type: (.*)`)
	summaryRe     = regexp.MustCompile(`Project Summary: (.*)`)
	reqLineRe     = regexp.MustCompile(`(?m)^- (.*)$`)
	reviewBlockRe = regexp.MustCompile(`(?s)Content to review:\n(.*?)(?:\n\nStyle Profile:|\n\nFeedback to address:|$)`)
)

func (s *StubProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if len(history) == 0 {
		return "", &llm.ModelError{Provider: "stub", Err: fmt.Errorf("empty history")}
	}
	// Concatenate user turns so continuation requests see the full exchange
	var prompt strings.Builder
	for _, msg := range history {
		prompt.WriteString(msg.Content)
		prompt.WriteString("\n")
	}
	return s.complete(prompt.String()), nil
}

func (s *StubProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.complete(prompt), nil
}

func (s *StubProvider) complete(prompt string) string {
	// Review prompts echo the content back with mechanical cleanup
	if m := reviewBlockRe.FindStringSubmatch(prompt); m != nil {
		return tidy(m[1])
	}
	return s.document(prompt)
}

func (s *StubProvider) document(prompt string) string {
	docType := "Document"
	if m := docTypeRe.FindStringSubmatch(prompt); m != nil && strings.TrimSpace(m[1]) != "" {
		docType = strings.TrimSpace(m[1])
	}
	summary := "Project"
	if m := summaryRe.FindStringSubmatch(prompt); m != nil && strings.TrimSpace(m[1]) != "" {
		summary = strings.TrimSpace(m[1])
	}

	var reqs []string
	for _, m := range reqLineRe.FindAllStringSubmatch(prompt, -1) {
		if line := strings.TrimSpace(m[1]); line != "" {
			reqs = append(reqs, "- "+line)
		}
	}
	if len(reqs) == 0 {
		reqs = []string{"- Core functionality"}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s\n\n", docType, summary)
	fmt.Fprintf(&b, "## Introduction\nThis outlines the %s for %s.\n\n", strings.ToLower(docType), strings.ToLower(summary))
	fmt.Fprintf(&b, "## Requirements\n%s\n\n", strings.Join(reqs, "\n"))
	b.WriteString("## Specifications\nThe system shall satisfy every requirement listed above.\n\n")
	b.WriteString("## Conclusion\nComprehensive framework covering the stated scope.")
	return b.String()
}

func tidy(content string) string {
	content = strings.TrimSpace(content)
	content = regexp.MustCompile(`\n{3,}`).ReplaceAllString(content, "\n\n")
	content = regexp.MustCompile(`([.!?])\s*([A-Z])`).ReplaceAllString(content, "$1 $2")
	return content
}
