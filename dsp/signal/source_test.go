package signal

import (
	"math"
	"testing"
)

func TestHarmonicSource_Clean(t *testing.T) {
	src := HarmonicSource{FundamentalHz: 1000, SampleRate: 8000}
	x, err := src.Generate(16)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	want := math.Sin(math.Pi/4) + 0.5*math.Cos(math.Pi/2) - 0.25*math.Cos(3*math.Pi/4)
	if math.Abs(x[0]-want) > 1e-12 {
		t.Fatalf("x[0] = %v, want %v", x[0], want)
	}
}

func TestHarmonicSource_NoiseIsSeeded(t *testing.T) {
	src := HarmonicSource{FundamentalHz: 1000, SampleRate: 8000, Noise: true, SNRdB: 10, Seed: 9}
	a, err := src.Generate(128)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	b, _ := src.Generate(128)
	clean, _ := HarmonicSource{FundamentalHz: 1000, SampleRate: 8000}.Generate(128)

	differs := false
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("seeded noise not reproducible at %d", i)
		}
		if a[i] != clean[i] {
			differs = true
		}
	}
	if !differs {
		t.Fatal("noise was not added")
	}
}

func TestHarmonicSource_InvalidRate(t *testing.T) {
	if _, err := (HarmonicSource{FundamentalHz: 10}).Generate(8); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestRecorded(t *testing.T) {
	r := Recorded{1, 2, 3}
	x, err := r.Generate(2)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	x[0] = 99
	if r[0] != 1 {
		t.Fatal("Generate must copy")
	}
	if _, err := r.Generate(4); err == nil {
		t.Fatal("expected error for short buffer")
	}
	if _, err := r.Generate(0); err == nil {
		t.Fatal("expected error for zero samples")
	}
}
