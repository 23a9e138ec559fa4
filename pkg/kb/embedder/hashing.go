package embedder

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

const HashingDimension = 384

var tokenRX = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// Hashing is a stateless bag-of-words embedder: tokens are hashed into a
// fixed number of signed buckets, weighted by sublinear term frequency and
// L2-normalized. It needs no model download and no corpus fitting.
type Hashing struct {
	dim       int
	stopwords map[string]struct{}
}

func NewHashing(dim int) *Hashing {
	if dim <= 0 {
		dim = HashingDimension
	}
	return &Hashing{dim: dim, stopwords: defaultStopwords()}
}

func (h *Hashing) Name() string   { return fmt.Sprintf("hashing-%d", h.dim) }
func (h *Hashing) Dimension() int { return h.dim }

func (h *Hashing) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.embed(t)
	}
	return out, nil
}

func (h *Hashing) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.embed(text), nil
}

func (h *Hashing) tokenize(text string) []string {
	raw := tokenRX.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, tok := range raw {
		if _, stop := h.stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func (h *Hashing) embed(text string) []float32 {
	tf := make(map[string]int)
	for _, tok := range h.tokenize(text) {
		tf[tok]++
	}

	vec := make([]float64, h.dim)
	for tok, n := range tf {
		f := fnv.New64a()
		_, _ = f.Write([]byte(tok))
		sum := f.Sum64()
		idx := int(sum % uint64(h.dim))
		sign := 1.0
		if sum&(1<<63) != 0 {
			sign = -1.0
		}
		vec[idx] += sign * (1 + math.Log(float64(n)))
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	out := make([]float32, h.dim)
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"what", "which", "who", "whom", "does", "do", "did", "my", "your", "our", "i", "we", "you",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
