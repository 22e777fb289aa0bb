package embeddings

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
)

// stubEmbedder returns constant-magnitude vectors and counts calls.
type stubEmbedder struct {
	dims  int
	calls int32
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	atomic.AddInt32(&s.calls, 1)
	out := make([][]float32, len(texts))
	for i := range texts {
		vec := make([]float32, s.dims)
		for j := range vec {
			vec[j] = 2.0
		}
		out[i] = vec
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int { return s.dims }
func (s *stubEmbedder) Name() string    { return "stub" }

func TestProvider_LazySingleInit(t *testing.T) {
	var constructed int32
	stub := &stubEmbedder{dims: 8}
	p := NewProvider(func() (Embedder, error) {
		atomic.AddInt32(&constructed, 1)
		return stub, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Embed(context.Background(), "SELECT 1"); err != nil {
				t.Errorf("Embed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&constructed); got != 1 {
		t.Errorf("embedder constructed %d times, want 1", got)
	}
}

func TestProvider_StickyInitFailure(t *testing.T) {
	var constructed int32
	p := NewProvider(func() (Embedder, error) {
		atomic.AddInt32(&constructed, 1)
		return nil, errors.New("model load failed")
	})

	for i := 0; i < 3; i++ {
		if _, err := p.Embed(context.Background(), "SELECT 1"); err == nil {
			t.Fatal("expected initialization error")
		}
	}
	if got := atomic.LoadInt32(&constructed); got != 1 {
		t.Errorf("failed constructor retried %d times, want 1", got)
	}
}

func TestProvider_NameConcurrentWithFirstUse(t *testing.T) {
	stub := &stubEmbedder{dims: 8}
	p := NewProvider(func() (Embedder, error) { return stub, nil })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Embed(context.Background(), "SELECT 1"); err != nil {
				t.Errorf("Embed: %v", err)
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			if name := p.Name(); name != "stub" {
				t.Errorf("Name() = %q, want %q", name, "stub")
			}
		}()
	}
	wg.Wait()
}

func TestProvider_NameAfterInitFailure(t *testing.T) {
	p := NewProvider(func() (Embedder, error) {
		return nil, errors.New("model load failed")
	})
	if name := p.Name(); name != "uninitialized" {
		t.Errorf("Name() = %q, want %q", name, "uninitialized")
	}
}

func TestProvider_EmptyInput(t *testing.T) {
	stub := &stubEmbedder{dims: 8}
	p := NewProvider(func() (Embedder, error) { return stub, nil })

	for _, text := range []string{"", "   ", "\n\t"} {
		vec, err := p.Embed(context.Background(), text)
		if err != nil {
			t.Fatalf("Embed(%q): %v", text, err)
		}
		if vec != nil {
			t.Errorf("Embed(%q) = %v, want nil", text, vec)
		}
	}
	if atomic.LoadInt32(&stub.calls) != 0 {
		t.Error("empty input should not reach the embedder")
	}
}

func TestProvider_Normalization(t *testing.T) {
	stub := &stubEmbedder{dims: 4}
	p := NewProvider(func() (Embedder, error) { return stub, nil })

	vec, err := p.Embed(context.Background(), "SELECT 1")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1.0) > 1e-5 {
		t.Errorf("vector not unit length: |v|^2 = %v", sum)
	}
}

func TestProvider_BatchFiltersEmpties(t *testing.T) {
	stub := &stubEmbedder{dims: 4}
	p := NewProvider(func() (Embedder, error) { return stub, nil })

	vecs, err := p.EmbedBatch(context.Background(), []string{"SELECT 1", "", "SELECT 2", "  "})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vecs) != 2 {
		t.Errorf("got %d vectors, want 2 (empties filtered)", len(vecs))
	}

	// All-empty batch returns nothing without touching the embedder.
	before := atomic.LoadInt32(&stub.calls)
	vecs, err = p.EmbedBatch(context.Background(), []string{"", "  "})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if vecs != nil {
		t.Errorf("all-empty batch = %v, want nil", vecs)
	}
	if atomic.LoadInt32(&stub.calls) != before {
		t.Error("all-empty batch should not reach the embedder")
	}
}
