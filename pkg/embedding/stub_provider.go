package embedding

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
)

const stubDimension = 64

// StubProvider produces deterministic embeddings without any network call.
// Vectors are token-hash based, so texts sharing words land near each other,
// which is enough for offline operation and tests.
type StubProvider struct{}

func NewStubProvider() EmbeddingProvider {
	return &StubProvider{}
}

func (p *StubProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	vec := make([]float32, stubDimension)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		sum := sha256.Sum256([]byte(token))
		idx := binary.BigEndian.Uint32(sum[:4]) % stubDimension
		sign := float32(1)
		if sum[4]%2 == 1 {
			sign = -1
		}
		vec[idx] += sign
	}

	// Normalize so cosine similarity behaves like the real providers
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: vec},
	}, nil
}
