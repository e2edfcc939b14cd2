package embedding

import (
	"context"
	"math"
	"testing"
)

func TestHashProvider_Deterministic(t *testing.T) {
	ctx := context.Background()
	p := NewHashProvider()

	a, err := p.Embed(ctx, "the user prefers tabs over spaces")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	b, _ := p.Embed(ctx, "the user prefers tabs over spaces")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at %d: %f vs %f", i, a[i], b[i])
		}
	}

	c, _ := p.Embed(ctx, "a completely different sentence")
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical vectors")
	}
}

func TestHashProvider_UnitLength(t *testing.T) {
	ctx := context.Background()
	p := NewHashProvider()

	for _, text := range []string{"hello world", "x y z", "deploys happen on fridays"} {
		v, err := p.Embed(ctx, text)
		if err != nil {
			t.Fatalf("embed %q: %v", text, err)
		}
		if len(v) != p.Dims() {
			t.Fatalf("dims %d, want %d", len(v), p.Dims())
		}
		var norm float64
		for _, x := range v {
			norm += float64(x) * float64(x)
		}
		if math.Abs(math.Sqrt(norm)-1) > 0.001 {
			t.Errorf("‖embed(%q)‖ = %f, want 1", text, math.Sqrt(norm))
		}
	}
}

func TestHashProvider_SimilarityOrdering(t *testing.T) {
	ctx := context.Background()
	p := NewHashProvider()

	query, _ := p.Embed(ctx, "machine learning algorithms")
	near, _ := p.Embed(ctx, "machine learning models")
	far, _ := p.Embed(ctx, "banana chocolate smoothie")

	simNear, err := CosineSimilarity(query, near)
	if err != nil {
		t.Fatal(err)
	}
	simFar, err := CosineSimilarity(query, far)
	if err != nil {
		t.Fatal(err)
	}
	if simNear <= simFar {
		t.Errorf("expected related text closer: near=%f far=%f", simNear, simFar)
	}
}

func TestHashProvider_EmbedBatch(t *testing.T) {
	ctx := context.Background()
	p := NewHashProvider()

	texts := []string{"one", "two", "three"}
	vecs, err := p.EmbedBatch(ctx, texts)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vecs))
	}
	single, _ := p.Embed(ctx, "two")
	for i := range single {
		if vecs[1][i] != single[i] {
			t.Fatal("batch vector differs from single embed")
		}
	}
}
