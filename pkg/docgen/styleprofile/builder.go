// FILE: pkg/docgen/styleprofile/builder.go
// PURPOSE: Learns tone, terminology, and structure from the approved corpus

package styleprofile

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"docgen-be/internal/entity"
	"docgen-be/internal/pkg/logger"
	"docgen-be/internal/repository/contract"
	"docgen-be/internal/repository/specification"
	"docgen-be/pkg/cache"
	"docgen-be/pkg/docgen"
)

var professionalKeywords = []string{
	"requirements", "specifications", "implementation", "deliverables",
	"stakeholders", "objectives", "methodology", "framework",
}

var technicalKeywords = []string{
	"system", "architecture", "database", "api", "interface",
	"algorithm", "protocol", "configuration", "deployment",
}

var formalKeywords = []string{
	"shall", "must", "should", "will", "hereby", "therefore",
	"furthermore", "consequently", "accordingly",
}

var relevantTerms = []string{
	"requirements", "specifications", "implementation", "system",
	"architecture", "design", "development", "testing", "deployment",
	"database", "interface", "api", "security", "performance",
	"functionality", "feature", "module", "component", "service",
}

var (
	wordRe    = regexp.MustCompile(`\b[a-zA-Z]{4,}\b`)
	headingRe = regexp.MustCompile(`(?m)^(#+)\s+(.+)$`)
)

const (
	termsPerDocument = 15
	termsPerProfile  = 10
)

type Result struct {
	Status        docgen.Status        `json:"status"`
	Reason        string               `json:"reason,omitempty"`
	Profile       *entity.StyleProfile `json:"profile"`
	DocumentCount int                  `json:"document_count"`
	CacheHit      bool                 `json:"cache_hit"`
}

// Builder aggregates tone/terminology/structure signals across approved
// documents, weighted by feedback score. Profiles are cached per
// (doc_types, min_feedback_score) so repeated workflow runs inside the
// freshness window skip the corpus query.
type Builder struct {
	docs     contract.DocumentRepository
	profiles contract.StyleProfileRepository
	cache    *cache.TTLCache
	ttl      time.Duration
	log      logger.ILogger
}

func NewBuilder(docs contract.DocumentRepository, profiles contract.StyleProfileRepository, ttlCache *cache.TTLCache, ttl time.Duration, log logger.ILogger) *Builder {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Builder{
		docs:     docs,
		profiles: profiles,
		cache:    ttlCache,
		ttl:      ttl,
		log:      log,
	}
}

func CacheKey(docTypes []string, minFeedbackScore int) string {
	sorted := make([]string, len(docTypes))
	copy(sorted, docTypes)
	sort.Strings(sorted)
	return strings.Join(sorted, ",") + "|" + strconv.Itoa(minFeedbackScore)
}

func (b *Builder) Build(ctx context.Context, docTypes []string, minFeedbackScore int) Result {
	key := CacheKey(docTypes, minFeedbackScore)

	value, hit, err := b.cache.GetOrCompute(key, b.ttl, func() (interface{}, error) {
		return b.compute(ctx, docTypes, minFeedbackScore)
	})
	if err != nil {
		// Corpus unreachable: hand back the default profile instead of failing
		// the whole workflow.
		b.log.Warn("style_profile", "Profile build failed, using default", map[string]interface{}{"error": err.Error()})
		profile := DefaultProfile()
		return Result{Status: docgen.StatusDegraded, Reason: "corpus query failed", Profile: profile, DocumentCount: 0}
	}

	computed := value.(*computedProfile)

	status := docgen.StatusSuccess
	reason := ""
	if computed.persistFailed {
		status = docgen.StatusDegraded
		reason = "profile persistence failed"
	}
	return Result{
		Status:        status,
		Reason:        reason,
		Profile:       computed.profile,
		DocumentCount: computed.profile.DocumentCount,
		CacheHit:      hit,
	}
}

type computedProfile struct {
	profile       *entity.StyleProfile
	persistFailed bool
}

func (b *Builder) compute(ctx context.Context, docTypes []string, minFeedbackScore int) (*computedProfile, error) {
	specs := []specification.Specification{specification.ApprovedOnly{}}
	if len(docTypes) > 0 {
		specs = append(specs, specification.ByDocTypes{DocTypes: docTypes})
	}
	if minFeedbackScore > 0 {
		specs = append(specs, specification.MinFeedbackScore{Score: minFeedbackScore})
	}

	documents, err := b.docs.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	key := CacheKey(docTypes, minFeedbackScore)

	if len(documents) == 0 {
		profile := DefaultProfile()
		profile.CacheKey = key
		profile.DocTypes = docTypes
		profile.MinFeedbackScore = minFeedbackScore
		return &computedProfile{profile: profile}, nil
	}

	toneAnalysis := map[string]float64{}
	terminology := map[string]float64{}
	headingPatterns := map[string]float64{}
	totalWeight := 0.0

	for _, doc := range documents {
		weight := float64(doc.FeedbackScore) / 5.0
		totalWeight += weight

		for tone, score := range analyzeTone(doc.Content) {
			toneAnalysis[tone] += score * weight
		}
		for term, count := range extractTerminology(doc.Content) {
			terminology[term] += float64(count) * weight
		}
		for level, count := range headingHistogram(doc.Content) {
			headingPatterns[level] += float64(count) * weight
		}
	}

	if totalWeight > 0 {
		for tone := range toneAnalysis {
			toneAnalysis[tone] /= totalWeight
		}
	}

	profile := &entity.StyleProfile{
		CacheKey:         key,
		DocTypes:         docTypes,
		MinFeedbackScore: minFeedbackScore,
		Tone:             dominantKey(toneAnalysis, "professional"),
		ToneAnalysis:     toneAnalysis,
		Terminology:      topTerms(terminology, termsPerProfile),
		HeadingStyle:     headingStyle(headingPatterns),
		DocumentCount:    len(documents),
		IsDefault:        false,
		CreatedAt:        time.Now().UTC(),
	}

	persistFailed := false
	if err := b.profiles.Create(ctx, profile); err != nil {
		b.log.Warn("style_profile", "Failed to persist profile record", map[string]interface{}{"error": err.Error()})
		persistFailed = true
	}

	return &computedProfile{profile: profile, persistFailed: persistFailed}, nil
}

// DefaultProfile is returned when the corpus has no matching documents.
func DefaultProfile() *entity.StyleProfile {
	return &entity.StyleProfile{
		Tone: "professional",
		ToneAnalysis: map[string]float64{
			"professional": 0.5,
			"technical":    0.5,
			"formal":       0.5,
		},
		Terminology:   map[string]float64{},
		HeadingStyle:  "atx",
		DocumentCount: 0,
		IsDefault:     true,
		CreatedAt:     time.Now().UTC(),
	}
}

// analyzeTone scores three fixed lexical categories by keyword density,
// each clamped to min(hits / words * 1000, 1.0).
func analyzeTone(content string) map[string]float64 {
	neutral := map[string]float64{"professional": 0.5, "technical": 0.5, "formal": 0.5}
	if content == "" {
		return neutral
	}

	lower := strings.ToLower(content)
	totalWords := len(strings.Fields(content))
	if totalWords == 0 {
		return neutral
	}

	return map[string]float64{
		"professional": densityScore(lower, professionalKeywords, totalWords),
		"technical":    densityScore(lower, technicalKeywords, totalWords),
		"formal":       densityScore(lower, formalKeywords, totalWords),
	}
}

func densityScore(lower string, keywords []string, totalWords int) float64 {
	hits := 0
	for _, kw := range keywords {
		hits += strings.Count(lower, kw)
	}
	score := float64(hits) / float64(totalWords) * 1000
	if score > 1.0 {
		return 1.0
	}
	return score
}

func extractTerminology(content string) map[string]int {
	if content == "" {
		return map[string]int{}
	}

	words := wordRe.FindAllString(strings.ToLower(content), -1)
	counts := map[string]int{}
	for _, w := range words {
		counts[w]++
	}

	termCounts := map[string]int{}
	for _, term := range relevantTerms {
		if c := counts[term]; c > 0 {
			termCounts[term] = c
		}
	}

	if len(termCounts) <= termsPerDocument {
		return termCounts
	}
	top := topTerms(toFloat(termCounts), termsPerDocument)
	trimmed := map[string]int{}
	for term := range top {
		trimmed[term] = termCounts[term]
	}
	return trimmed
}

func headingHistogram(content string) map[string]int {
	patterns := map[string]int{}
	for _, match := range headingRe.FindAllStringSubmatch(content, -1) {
		patterns["level_"+strconv.Itoa(len(match[1]))]++
	}
	return patterns
}

func headingStyle(patterns map[string]float64) string {
	dominant := dominantKey(patterns, "level_1")
	if strings.Contains(dominant, "level_1") {
		return "atx"
	}
	return "setext"
}

func dominantKey(m map[string]float64, fallback string) string {
	best := fallback
	bestScore := -1.0
	// Iterate keys in sorted order so ties resolve deterministically.
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if m[k] > bestScore {
			best = k
			bestScore = m[k]
		}
	}
	return best
}

func topTerms(terms map[string]float64, n int) map[string]float64 {
	type termWeight struct {
		term   string
		weight float64
	}
	ranked := make([]termWeight, 0, len(terms))
	for term, weight := range terms {
		ranked = append(ranked, termWeight{term, weight})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].weight != ranked[j].weight {
			return ranked[i].weight > ranked[j].weight
		}
		return ranked[i].term < ranked[j].term
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	top := make(map[string]float64, len(ranked))
	for _, tw := range ranked {
		top[tw.term] = tw.weight
	}
	return top
}

func toFloat(m map[string]int) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = float64(v)
	}
	return out
}
