// FILE: pkg/docgen/generate/drafter.go
// PURPOSE: Draft generation with truncation continuation and deterministic fallback

package generate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"docgen-be/internal/entity"
	"docgen-be/internal/pkg/logger"
	"docgen-be/pkg/docgen"
	"docgen-be/pkg/llm"
)

const (
	maxContextChunks = 3
	maxChunkChars    = 500
	// a draft without this marker is treated as cut off mid-generation
	completionMarker = "Conclusion"
)

type Result struct {
	Status       docgen.Status `json:"status"`
	Reason       string        `json:"reason,omitempty"`
	Content      string        `json:"content"`
	WordCount    int           `json:"word_count"`
	UsedFallback bool          `json:"used_fallback"`
}

type Drafter struct {
	provider llm.LLMProvider
	log      logger.ILogger
}

func NewDrafter(provider llm.LLMProvider, log logger.ILogger) *Drafter {
	return &Drafter{provider: provider, log: log}
}

// Generate produces a draft from the structured inputs. Model failures always
// resolve to the deterministic template; the only error outcome is missing
// input, and even that arrives as a result body rather than a Go error.
func (d *Drafter) Generate(ctx context.Context, docType, summary, requirements string, contextChunks []docgen.ScoredChunk, profile *entity.StyleProfile) Result {
	summary = strings.TrimSpace(summary)
	requirements = strings.TrimSpace(requirements)

	if summary == "" && requirements == "" {
		body := "# Error\n\nNo input provided for document generation"
		return Result{
			Status:    docgen.StatusError,
			Reason:    "missing summary and requirements",
			Content:   body,
			WordCount: wordCount(body),
		}
	}

	prompt := buildPrompt(docType, summary, requirements, contextChunks, profile)

	content, err := d.provider.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(content) == "" {
		if err != nil {
			d.log.Warn("generation", "Completion call failed, using template fallback", map[string]interface{}{"error": err.Error()})
		}
		fallback := FallbackDocument(docType, summary, requirements)
		return Result{
			Status:       docgen.StatusDegraded,
			Reason:       "completion unavailable",
			Content:      fallback,
			WordCount:    wordCount(fallback),
			UsedFallback: true,
		}
	}

	if !strings.Contains(content, completionMarker) {
		continued, contErr := d.continueGeneration(ctx, prompt, content)
		if contErr != nil {
			d.log.Warn("generation", "Continuation call failed, keeping partial draft", map[string]interface{}{"error": contErr.Error()})
		} else if strings.TrimSpace(continued) != "" {
			content = content + "\n\n" + continued
		}
	}

	return Result{
		Status:    docgen.StatusSuccess,
		Content:   content,
		WordCount: wordCount(content),
	}
}

// continueGeneration issues an explicit multi-turn follow-up instead of
// concatenating prompt strings, so any chat-capable backend can serve it.
func (d *Drafter) continueGeneration(ctx context.Context, prompt, partial string) (string, error) {
	messages := []llm.Message{
		{Role: "user", Content: prompt},
		{Role: "assistant", Content: partial},
		{Role: "user", Content: "Continue from where you left off to complete the full document, ensuring all sections are present including Conclusion."},
	}
	return d.provider.Chat(ctx, messages)
}

func buildPrompt(docType, summary, requirements string, contextChunks []docgen.ScoredChunk, profile *entity.StyleProfile) string {
	if summary == "" {
		summary = "Not provided"
	}
	if requirements == "" {
		requirements = "Not specified"
	}

	var sb strings.Builder
	sb.WriteString("You are an expert in creating ")
	sb.WriteString(docType)
	sb.WriteString(" documents. Generate a comprehensive document based on the following information:\n\n")
	sb.WriteString("Document Type: " + docType + "\n")
	sb.WriteString("Project Summary: " + summary + "\n")
	sb.WriteString("Requirements: " + requirements + "\n")
	sb.WriteString("Style Profile: " + formatStyleProfile(profile) + "\n")
	sb.WriteString("Context Examples: " + formatContext(contextChunks) + "\n\n")
	sb.WriteString("Ensure the document follows professional standards with proper sections, formatting, and technical accuracy. ")
	sb.WriteString("Use markdown formatting with appropriate headers, lists, and code blocks where necessary.")
	return sb.String()
}

func formatContext(chunks []docgen.ScoredChunk) string {
	if len(chunks) == 0 {
		return "No relevant examples found."
	}

	formatted := make([]string, 0, maxContextChunks)
	for i, chunk := range chunks {
		if i >= maxContextChunks {
			break
		}
		content := strings.TrimSpace(chunk.Content)
		if content == "" {
			continue
		}
		runes := []rune(content)
		if len(runes) > maxChunkChars {
			content = string(runes[:maxChunkChars]) + "..."
		}
		formatted = append(formatted, fmt.Sprintf("Example %d:\n%s", i+1, content))
	}

	if len(formatted) == 0 {
		return "No relevant examples found."
	}
	return strings.Join(formatted, "\n\n")
}

func formatStyleProfile(profile *entity.StyleProfile) string {
	if profile == nil {
		return "Writing Style: Professional; Structure: Standard; Formatting: Markdown"
	}

	tone := profile.Tone
	if tone == "" {
		tone = "professional"
	}
	parts := []string{
		"Writing Style: " + tone,
		"Heading Style: " + profile.HeadingStyle,
		"Formatting: Markdown",
	}
	if len(profile.Terminology) > 0 {
		terms := make([]string, 0, len(profile.Terminology))
		for term := range profile.Terminology {
			terms = append(terms, term)
		}
		// Keep order deterministic for prompt reproducibility.
		sort.Strings(terms)
		parts = append(parts, "Preferred Terminology: "+strings.Join(terms, ", "))
	}
	return strings.Join(parts, "; ")
}

// FallbackDocument builds the deterministic template used when the completion
// backend fails. Same inputs produce byte-identical output.
func FallbackDocument(docType, summary, requirements string) string {
	title := docType + " Document"
	if summary != "" {
		title += ": " + summary
	}

	var sb strings.Builder
	sb.WriteString("# " + title + "\n\n")

	sb.WriteString("## Overview\n")
	if summary != "" {
		sb.WriteString(summary + "\n\n")
	} else {
		sb.WriteString("This document outlines the requirements and specifications.\n\n")
	}

	sb.WriteString("## Requirements\n")
	if requirements != "" {
		for _, line := range strings.Split(requirements, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "*") {
				sb.WriteString("- " + line + "\n")
			} else {
				sb.WriteString(line + "\n")
			}
		}
	} else {
		sb.WriteString("- Core functionality requirements to be defined\n")
		sb.WriteString("- Performance requirements to be specified\n")
		sb.WriteString("- Security requirements to be outlined\n")
	}

	sb.WriteString("\n## Conclusion\n")
	sb.WriteString("This document serves as the foundation for the project requirements and will be updated as needed.\n")

	return sb.String()
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
