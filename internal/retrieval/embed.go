package retrieval

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// embeddingDim is the feature-hash vector width. Collisions are tolerable
// at this corpus size; retrieval quality is not a goal of the placeholder
// embedder, only deterministic cosine ranking.
const embeddingDim = 256

// embed maps text to an L2-normalized bag-of-words vector via feature
// hashing. Deterministic: the same text always yields the same vector.
func embed(text string) []float32 {
	vec := make([]float32, embeddingDim)
	for _, tok := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[h.Sum32()%embeddingDim]++
	}
	normalize(vec)
	return vec
}

// tokenize lowercases and splits on non-alphanumeric runs, dropping
// single-character tokens.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	toks := fields[:0]
	for _, f := range fields {
		if len(f) > 1 {
			toks = append(toks, f)
		}
	}
	return toks
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}

// cosine returns the cosine similarity of two L2-normalized vectors.
func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}
