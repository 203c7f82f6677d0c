// FILE: pkg/docgen/review/editor.go
// PURPOSE: LLM-assisted rewrite with deterministic post-processing and diffing

package review

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"docgen-be/internal/entity"
	"docgen-be/internal/pkg/logger"
	"docgen-be/pkg/docgen"
	"docgen-be/pkg/llm"
)

type ReviewType string

const (
	ReviewFormatting ReviewType = "formatting"
	ReviewFeedback   ReviewType = "feedback"
	ReviewBoth       ReviewType = "both"
)

const maxDiffLines = 100

var sentenceSpacingRe = regexp.MustCompile(`([.!?])\s*([A-Z])`)

type DiffDetails struct {
	Removed     []string `json:"removed"`
	Added       []string `json:"added"`
	Summary     []string `json:"summary"`
	UnifiedDiff []string `json:"unified_diff"`
}

type Result struct {
	Status            docgen.Status `json:"status"`
	Reason            string        `json:"reason,omitempty"`
	ImprovedContent   string        `json:"improved_content"`
	ChangesMade       []string      `json:"changes_made"`
	DiffDetails       DiffDetails   `json:"diff_details"`
	OriginalWordCount int           `json:"original_word_count"`
	FinalWordCount    int           `json:"final_word_count"`
}

type Editor struct {
	provider llm.LLMProvider
	log      logger.ILogger
}

func NewEditor(provider llm.LLMProvider, log logger.ILogger) *Editor {
	return &Editor{provider: provider, log: log}
}

// Review runs up to two rewrite passes (formatting, then feedback) and always
// finishes with deterministic post-processing. A total completion failure
// returns the original content with Status error rather than a Go error.
func (e *Editor) Review(ctx context.Context, content, docType string, profile *entity.StyleProfile, feedback []string, reviewType ReviewType) Result {
	improved := content
	changesMade := []string{}
	callsFailed := 0
	callsAttempted := 0

	if reviewType == ReviewFormatting || reviewType == ReviewBoth {
		callsAttempted++
		rewritten, err := e.provider.Generate(ctx, formattingPrompt(improved, profile), llm.WithTemperature(0.1))
		if err != nil || strings.TrimSpace(rewritten) == "" {
			callsFailed++
			if err != nil {
				e.log.Warn("review", "Formatting pass failed", map[string]interface{}{"error": err.Error()})
			}
		} else {
			improved = rewritten
			changesMade = append(changesMade, "Applied formatting improvements")
		}
	}

	if len(feedback) > 0 && (reviewType == ReviewFeedback || reviewType == ReviewBoth) {
		callsAttempted++
		rewritten, err := e.provider.Generate(ctx, feedbackPrompt(improved, feedback), llm.WithTemperature(0.1))
		if err != nil || strings.TrimSpace(rewritten) == "" {
			callsFailed++
			if err != nil {
				e.log.Warn("review", "Feedback pass failed", map[string]interface{}{"error": err.Error()})
			}
		} else {
			improved = rewritten
			changesMade = append(changesMade, fmt.Sprintf("Addressed %d feedback items", len(feedback)))
		}
	}

	if callsAttempted > 0 && callsFailed == callsAttempted {
		return Result{
			Status:            docgen.StatusError,
			Reason:            "all rewrite calls failed",
			ImprovedContent:   content,
			ChangesMade:       []string{},
			OriginalWordCount: wordCount(content),
			FinalWordCount:    wordCount(content),
		}
	}

	final := PostProcess(improved)

	status := docgen.StatusSuccess
	reason := ""
	if callsFailed > 0 {
		status = docgen.StatusDegraded
		reason = "a rewrite pass failed"
	}

	return Result{
		Status:            status,
		Reason:            reason,
		ImprovedContent:   final,
		ChangesMade:       changesMade,
		DiffDetails:       DiffContents(content, final),
		OriginalWordCount: wordCount(content),
		FinalWordCount:    wordCount(final),
	}
}

func formattingPrompt(content string, profile *entity.StyleProfile) string {
	var sb strings.Builder
	sb.WriteString("You are an expert editor specializing in technical document formatting and style. ")
	sb.WriteString("Review and improve the following document content:\n\n")
	sb.WriteString("Content to review:\n" + content + "\n\n")
	sb.WriteString("Style Profile:\n" + styleDescription(profile) + "\n\n")
	sb.WriteString("Please ensure:\n")
	sb.WriteString("1. Proper Markdown formatting with consistent headers\n")
	sb.WriteString("2. Correct section numbering\n")
	sb.WriteString("3. Well-aligned tables\n")
	sb.WriteString("4. Standardized code blocks\n")
	sb.WriteString("5. Professional tone and clarity\n\n")
	sb.WriteString("Return ONLY the improved content in proper Markdown format.")
	return sb.String()
}

func feedbackPrompt(content string, feedback []string) string {
	bullets := make([]string, len(feedback))
	for i, item := range feedback {
		bullets[i] = "- " + item
	}

	var sb strings.Builder
	sb.WriteString("You are an expert editor addressing specific feedback on a document. ")
	sb.WriteString("Review and improve the following content based on the feedback provided:\n\n")
	sb.WriteString("Content to review:\n" + content + "\n\n")
	sb.WriteString("Feedback to address:\n" + strings.Join(bullets, "\n") + "\n\n")
	sb.WriteString("Please address all feedback points while maintaining document quality and formatting.\n")
	sb.WriteString("Return ONLY the improved content in proper Markdown format.")
	return sb.String()
}

func styleDescription(profile *entity.StyleProfile) string {
	if profile == nil {
		return "Professional technical writing style with clear structure"
	}

	parts := []string{}
	if profile.Tone != "" {
		parts = append(parts, "Primary tone: "+profile.Tone)
	}
	if profile.HeadingStyle != "" {
		parts = append(parts, "Heading style: "+profile.HeadingStyle)
	}
	if len(parts) == 0 {
		return "Professional technical writing style"
	}
	return strings.Join(parts, "; ")
}

// PostProcess reconciles whitespace and punctuation deterministically:
// headers get surrounding blank lines, runs of blank lines collapse to two,
// and sentence boundaries get exactly one space.
func PostProcess(content string) string {
	lines := strings.Split(content, "\n")
	processed := make([]string, 0, len(lines))

	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			if len(processed) > 0 && strings.TrimSpace(processed[len(processed)-1]) != "" {
				processed = append(processed, "")
			}
			processed = append(processed, line)
			if i < len(lines)-1 && strings.TrimSpace(lines[i+1]) != "" {
				processed = append(processed, "")
			}
		} else {
			processed = append(processed, line)
		}
	}

	final := make([]string, 0, len(processed))
	blankCount := 0
	for _, line := range processed {
		if strings.TrimSpace(line) == "" {
			blankCount++
			if blankCount <= 2 {
				final = append(final, line)
			}
		} else {
			blankCount = 0
			final = append(final, line)
		}
	}

	result := strings.Join(final, "\n")
	result = sentenceSpacingRe.ReplaceAllString(result, "$1 $2")
	return strings.TrimSpace(result)
}

// DiffContents computes a line-level diff, classifying the change as revised
// (both), streamlined (removals only), or enhanced (additions only). The
// unified diff is capped at 100 lines.
func DiffContents(original, improved string) DiffDetails {
	originalLines := strings.Split(original, "\n")
	improvedLines := strings.Split(improved, "\n")

	removed, added := lineDelta(originalLines, improvedLines)

	summary := []string{}
	switch {
	case len(removed) > 0 && len(added) > 0:
		summary = append(summary, "Content was revised with both removals and additions.")
	case len(removed) > 0:
		summary = append(summary, "Content was streamlined with some text removed.")
	case len(added) > 0:
		summary = append(summary, "Content was enhanced with additional information.")
	}

	unified := make([]string, 0, len(removed)+len(added))
	for _, line := range removed {
		unified = append(unified, "-"+line)
	}
	for _, line := range added {
		unified = append(unified, "+"+line)
	}
	if len(unified) > maxDiffLines {
		unified = unified[:maxDiffLines]
	}

	return DiffDetails{
		Removed:     removed,
		Added:       added,
		Summary:     summary,
		UnifiedDiff: unified,
	}
}

// lineDelta reports lines present on only one side. Multiset semantics: a
// line repeated twice originally and once after counts one removal.
func lineDelta(original, improved []string) (removed, added []string) {
	originalCounts := map[string]int{}
	for _, line := range original {
		originalCounts[line]++
	}
	improvedCounts := map[string]int{}
	for _, line := range improved {
		improvedCounts[line]++
	}

	removed = []string{}
	for _, line := range original {
		if improvedCounts[line] > 0 {
			improvedCounts[line]--
		} else {
			removed = append(removed, line)
		}
	}

	added = []string{}
	for _, line := range improved {
		if originalCounts[line] > 0 {
			originalCounts[line]--
		} else {
			added = append(added, line)
		}
	}
	return removed, added
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
