package entity

import (
	"time"

	"github.com/google/uuid"
)

// StyleProfile is the aggregated writing-style descriptor learned from a
// weighted slice of the approved corpus. ToneAnalysis maps tone category
// (professional, technical, formal) to a normalized 0..1 weight; Terminology
// maps term to its weighted frequency.
type StyleProfile struct {
	Id               uuid.UUID
	CacheKey         string
	DocTypes         []string
	MinFeedbackScore int
	Tone             string
	ToneAnalysis     map[string]float64
	Terminology      map[string]float64
	HeadingStyle     string
	DocumentCount    int
	IsDefault        bool
	CreatedAt        time.Time
}
