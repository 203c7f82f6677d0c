package utils

// SplitText splits a long string into chunks of at most 'chunkSize'
// characters with an 'overlap' to preserve context at boundaries. Each chunk
// is cut at the last paragraph break, newline, or sentence end inside the
// window when one exists, so retrieval units stay readable.
func SplitText(text string, chunkSize int, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	var chunks []string
	runes := []rune(text)
	totalLen := len(runes)

	for start := 0; start < totalLen; {
		end := start + chunkSize
		if end >= totalLen {
			chunks = append(chunks, string(runes[start:totalLen]))
			break
		}

		cut := boundaryBefore(runes, start, end)
		chunks = append(chunks, string(runes[start:cut]))

		next := cut - overlap
		if next <= start {
			next = start + step
		}
		start = next
	}

	return chunks
}

var chunkSeparators = [][]rune{
	[]rune("\n\n"),
	[]rune("\n"),
	[]rune(". "),
}

// boundaryBefore finds the best split point in (start, end], preferring a
// paragraph break, then a newline, then a sentence end. Splits in the first
// half of the window are rejected to avoid degenerate tiny chunks.
func boundaryBefore(runes []rune, start, end int) int {
	minCut := start + (end-start)/2

	for _, sep := range chunkSeparators {
		for i := end - len(sep); i > minCut; i-- {
			if matchAt(runes, i, sep) {
				return i + len(sep)
			}
		}
	}
	return end
}

func matchAt(runes []rune, pos int, sep []rune) bool {
	for j, r := range sep {
		if runes[pos+j] != r {
			return false
		}
	}
	return true
}
