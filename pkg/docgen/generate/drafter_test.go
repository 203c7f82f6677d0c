package generate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docgen-be/internal/pkg/logger"
	"docgen-be/pkg/docgen"
	"docgen-be/pkg/llm"
	"docgen-be/pkg/llm/stub"
)

type failingProvider struct{}

func (failingProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return "", &llm.ModelError{Provider: "test", Err: errors.New("quota exceeded")}
}

func (failingProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", &llm.ModelError{Provider: "test", Err: errors.New("quota exceeded")}
}

type truncatingProvider struct {
	chatCalls int
}

func (p *truncatingProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return "# SRS: Partial\n\n## Introduction\nCut off mid-", nil
}

func (p *truncatingProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	p.chatCalls++
	return "## Conclusion\nThe rest of the document.", nil
}

func TestGenerateFallbackIsDeterministic(t *testing.T) {
	drafter := NewDrafter(failingProvider{}, logger.NewNop())

	first := drafter.Generate(context.Background(), "SRS", "Inventory system", "- track stock\n- barcode scanning", nil, nil)
	second := drafter.Generate(context.Background(), "SRS", "Inventory system", "- track stock\n- barcode scanning", nil, nil)

	if first.Status != docgen.StatusDegraded {
		t.Errorf("Status = %q, want %q", first.Status, docgen.StatusDegraded)
	}
	if !first.UsedFallback {
		t.Error("UsedFallback = false, want true")
	}
	if first.Content != second.Content {
		t.Error("fallback content differs between identical calls")
	}
	for _, want := range []string{"# SRS Document: Inventory system", "## Overview", "## Requirements", "- track stock", "## Conclusion"} {
		if !strings.Contains(first.Content, want) {
			t.Errorf("fallback content missing %q", want)
		}
	}
}

func TestGenerateRejectsMissingInput(t *testing.T) {
	drafter := NewDrafter(stub.NewStubProvider(), logger.NewNop())

	result := drafter.Generate(context.Background(), "SRS", "   ", "", nil, nil)

	if result.Status != docgen.StatusError {
		t.Errorf("Status = %q, want %q", result.Status, docgen.StatusError)
	}
	if !strings.Contains(result.Content, "No input provided") {
		t.Errorf("Content = %q, want an explicit error body", result.Content)
	}
}

func TestGenerateContinuesTruncatedOutput(t *testing.T) {
	provider := &truncatingProvider{}
	drafter := NewDrafter(provider, logger.NewNop())

	result := drafter.Generate(context.Background(), "SRS", "Inventory system", "- track stock", nil, nil)

	if result.Status != docgen.StatusSuccess {
		t.Fatalf("Status = %q, want success", result.Status)
	}
	if provider.chatCalls != 1 {
		t.Errorf("continuation calls = %d, want 1", provider.chatCalls)
	}
	if !strings.Contains(result.Content, "Cut off mid-") || !strings.Contains(result.Content, "## Conclusion") {
		t.Errorf("Content = %q, want partial draft plus continuation", result.Content)
	}
}

func TestGenerateEndToEndWithStub(t *testing.T) {
	drafter := NewDrafter(stub.NewStubProvider(), logger.NewNop())

	result := drafter.Generate(context.Background(), "SRS", "Inventory system", "- track stock\n- barcode scanning", nil, nil)

	if result.Status != docgen.StatusSuccess {
		t.Fatalf("Status = %q, want success (reason: %s)", result.Status, result.Reason)
	}
	if !strings.Contains(result.Content, "Requirements") {
		t.Error("generated document missing Requirements header")
	}
	if !strings.Contains(result.Content, "Conclusion") {
		t.Error("generated document missing Conclusion header")
	}
	if result.WordCount <= 0 {
		t.Errorf("WordCount = %d, want > 0", result.WordCount)
	}
}

func TestGenerateTruncatesContextChunks(t *testing.T) {
	_ = NewDrafter(stub.NewStubProvider(), logger.NewNop())

	long := strings.Repeat("x", 2000)
	chunks := []docgen.ScoredChunk{
		{Content: long, Score: 0.9},
		{Content: long, Score: 0.8},
		{Content: long, Score: 0.7},
		{Content: long, Score: 0.6},
	}
	prompt := buildPrompt("SRS", "Inventory system", "- track stock", chunks, nil)

	if got := strings.Count(prompt, "Example "); got != 3 {
		t.Errorf("prompt contains %d context examples, want 3", got)
	}
	if strings.Contains(prompt, strings.Repeat("x", 501)) {
		t.Error("prompt contains an untruncated chunk")
	}
}
