package embedding

import (
	"errors"
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
		delta    float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1.0, 0.001},
		{"orthogonal", []float32{1, 0, 0}, []float32{0, 1, 0}, 0.0, 0.001},
		{"opposite", []float32{1, 0, 0}, []float32{-1, 0, 0}, -1.0, 0.001},
		{"similar", []float32{0.707, 0.707, 0}, []float32{1, 0, 0}, 0.707, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			if err != nil {
				t.Fatalf("CosineSimilarity: %v", err)
			}
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("CosineSimilarity(%v, %v) = %f, want %f (±%f)", tt.a, tt.b, got, tt.expected, tt.delta)
			}
		})
	}
}

func TestCosineSimilarity_DimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0})
	if err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	Normalize(v)
	if math.Abs(float64(v[0])-0.6) > 0.001 || math.Abs(float64(v[1])-0.8) > 0.001 {
		t.Errorf("Normalize(3,4) = %v, want (0.6, 0.8)", v)
	}

	zero := []float32{0, 0, 0}
	Normalize(zero)
	for i, x := range zero {
		if x != 0 {
			t.Errorf("zero vector changed at %d: %f", i, x)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	vecs := [][]float32{
		{0.1, -0.2, 0.3, 1.5, -1000.25},
		{0},
		{math.MaxFloat32, -math.MaxFloat32},
	}
	for _, v := range vecs {
		got, err := DecodeVector(EncodeVector(v))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(got) != len(v) {
			t.Fatalf("length %d, want %d", len(got), len(v))
		}
		for i := range v {
			if math.Abs(float64(got[i]-v[i])) > 1e-5 {
				t.Errorf("element %d: %f != %f", i, got[i], v[i])
			}
		}
	}

	empty, err := DecodeVector(nil)
	if err != nil || empty != nil {
		t.Errorf("DecodeVector(nil) = %v, %v; want nil, nil", empty, err)
	}
}

func TestDecodeVector_BadLength(t *testing.T) {
	if _, err := DecodeVector([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for non-multiple-of-4 input")
	}
}
