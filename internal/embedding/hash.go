package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"strings"
)

// HashDims is the output width of the hash provider.
const HashDims = 256

// HashProvider is a deterministic reference embedder. It hashes character
// trigrams and whitespace-delimited words into fixed vector positions, so the
// same text always maps to the same unit vector and texts sharing n-grams land
// closer together than unrelated ones. It does not model meaning; it exists to
// exercise the pipeline without an external model.
type HashProvider struct {
	dims int
}

// NewHashProvider returns a hash provider with the default dimensionality.
func NewHashProvider() *HashProvider {
	return &HashProvider{dims: HashDims}
}

// Init is a no-op; the provider has no external resources.
func (p *HashProvider) Init(ctx context.Context) error { return nil }

// Close is a no-op.
func (p *HashProvider) Close() error { return nil }

// ModelName identifies the provider in stored records.
func (p *HashProvider) ModelName() string { return "hash-trigram-v1" }

// Dims returns the vector width.
func (p *HashProvider) Dims() int { return p.dims }

// Embed maps text to a deterministic unit vector.
func (p *HashProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	vec := make([]float32, p.dims)

	runes := []rune(text)
	for i := 0; i+3 <= len(runes); i++ {
		p.addFeature(vec, string(runes[i:i+3]), 1.0)
	}
	for _, word := range strings.Fields(text) {
		p.addFeature(vec, "w:"+word, 1.0)
	}

	// Small whole-text perturbation so near-identical inputs still differ.
	p.addFeature(vec, "g:"+text, 0.25)

	Normalize(vec)
	return vec, nil
}

// EmbedBatch embeds each text in order.
func (p *HashProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := p.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// addFeature hashes the feature into a bucket with a signed magnitude.
func (p *HashProvider) addFeature(vec []float32, feature string, weight float32) {
	sum := sha256.Sum256([]byte(feature))
	idx := int(binary.BigEndian.Uint32(sum[:4]) % uint32(p.dims))
	if sum[4]&1 == 1 {
		vec[idx] -= weight
	} else {
		vec[idx] += weight
	}
}
