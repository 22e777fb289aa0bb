package embeddings

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
)

// Provider is a process-wide handle around an Embedder with lazy, one-time
// initialization. Constructing the underlying model client can be expensive,
// so the first caller pays for it and concurrent callers block on the same
// initialization; a failure is sticky and reported to every caller as a
// configuration error.
//
// Provider also fixes the embedding contract the rest of the pipeline
// relies on: vectors are L2-normalized (so cosine distance stays in [0,1]
// for natural-language text), and empty or whitespace-only input yields a
// nil vector rather than a zero vector so downstream code can tell "nothing
// to embed" apart from "embedded to near-zero".
type Provider struct {
	once    sync.Once
	newFunc func() (Embedder, error)

	embedder Embedder
	initErr  error
}

// NewProvider creates a Provider that will construct its Embedder on first
// use via newFunc.
func NewProvider(newFunc func() (Embedder, error)) *Provider {
	return &Provider{newFunc: newFunc}
}

func (p *Provider) init() {
	p.once.Do(func() {
		emb, err := p.newFunc()
		if err != nil {
			p.initErr = fmt.Errorf("initializing embedder: %w", err)
			return
		}
		p.embedder = emb
	})
}

// Embedder returns the underlying embedder, initializing it if needed.
func (p *Provider) Embedder() (Embedder, error) {
	p.init()
	return p.embedder, p.initErr
}

// Dimensions reports the embedder's output dimensionality.
func (p *Provider) Dimensions() (int, error) {
	emb, err := p.Embedder()
	if err != nil {
		return 0, err
	}
	return emb.Dimensions(), nil
}

// Name reports the underlying model identifier, initializing the embedder
// if needed. A failed initialization reports "uninitialized". Going through
// Embedder keeps the read safe against a concurrent first use.
func (p *Provider) Name() string {
	emb, err := p.Embedder()
	if err != nil {
		return "uninitialized"
	}
	return emb.Name()
}

// Embed generates a normalized embedding for a single text. Empty or
// whitespace-only input returns (nil, nil).
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	emb, err := p.Embedder()
	if err != nil {
		return nil, err
	}

	vecs, err := emb.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedder %s returned no vectors", emb.Name())
	}
	return normalize(vecs[0]), nil
}

// EmbedBatch generates normalized embeddings for many texts in one call,
// amortizing the model invocation overhead. Fully-empty entries are
// filtered out; output order follows input order for the surviving texts.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	valid := make([]string, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		return nil, nil
	}

	emb, err := p.Embedder()
	if err != nil {
		return nil, err
	}

	vecs, err := emb.Embed(ctx, valid)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(valid) {
		return nil, fmt.Errorf("embedder %s returned %d vectors for %d texts", emb.Name(), len(vecs), len(valid))
	}

	for i := range vecs {
		vecs[i] = normalize(vecs[i])
	}
	return vecs, nil
}

// normalize scales a vector to unit length. Zero vectors pass through.
func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}
