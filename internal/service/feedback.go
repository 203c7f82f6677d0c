// FILE: internal/service/feedback.go
package service

// clampFeedbackScore forces a raw score into the configured bounds. Callers
// pass out-of-range values through unchanged semantics: too high becomes the
// maximum, too low the minimum.
func clampFeedbackScore(score, min, max int) int {
	if score < min {
		return min
	}
	if score > max {
		return max
	}
	return score
}

// feedbackBounds normalizes configured bounds, falling back to the 1..5 scale
// when unset.
func feedbackBounds(min, max int) (int, int) {
	if min <= 0 {
		min = 1
	}
	if max <= 0 {
		max = 5
	}
	return min, max
}
