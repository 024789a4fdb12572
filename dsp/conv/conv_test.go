package conv

import (
	"errors"
	"math"
	"testing"
)

func TestDirect(t *testing.T) {
	tests := []struct {
		name     string
		a        []float64
		b        []float64
		expected []float64
	}{
		{
			name:     "boxcar 3",
			a:        []float64{1, 2, 3},
			b:        []float64{1, 1, 1},
			expected: []float64{1, 3, 6, 5, 3},
		},
		{
			name:     "impulse",
			a:        []float64{1, 2, 3, 4, 5},
			b:        []float64{1},
			expected: []float64{1, 2, 3, 4, 5},
		},
		{
			name:     "delayed impulse",
			a:        []float64{1, 2, 3, 4, 5},
			b:        []float64{0, 0, 1},
			expected: []float64{0, 0, 1, 2, 3, 4, 5},
		},
		{
			name:     "symmetric",
			a:        []float64{1, 2, 1},
			b:        []float64{1, 2, 1},
			expected: []float64{1, 4, 6, 4, 1},
		},
		{
			name:     "boxcar 5 uses vector path",
			a:        []float64{1, 0, 0, 0, 0, 2},
			b:        []float64{1, 1, 1, 1, 1},
			expected: []float64{1, 1, 1, 1, 1, 2, 2, 2, 2, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Direct(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(result) != len(tt.expected) {
				t.Fatalf("length mismatch: got %d, expected %d", len(result), len(tt.expected))
			}

			for i := range result {
				if math.Abs(result[i]-tt.expected[i]) > 1e-10 {
					t.Errorf("result[%d] = %v, expected %v", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestDirectErrors(t *testing.T) {
	_, err := Direct([]float64{}, []float64{1, 2})
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}

	_, err = Direct([]float64{1, 2}, []float64{})
	if !errors.Is(err, ErrEmptyKernel) {
		t.Errorf("expected ErrEmptyKernel, got %v", err)
	}
}

func TestOverlapAddMatchesDirect(t *testing.T) {
	signal := make([]float64, 1000)
	for i := range signal {
		signal[i] = 100 * math.Exp(-0.5*math.Pow(float64(i-500)/20, 2))
	}

	kernel := make([]float64, 81)
	for i := range kernel {
		kernel[i] = 1.0 / 81
	}

	directResult, err := Direct(signal, kernel)
	if err != nil {
		t.Fatalf("direct convolution failed: %v", err)
	}

	oaResult, err := OverlapAddConvolve(signal, kernel)
	if err != nil {
		t.Fatalf("overlap-add convolution failed: %v", err)
	}

	if len(directResult) != len(oaResult) {
		t.Fatalf("length mismatch: direct=%d, overlap-add=%d", len(directResult), len(oaResult))
	}

	for i := range directResult {
		if math.Abs(directResult[i]-oaResult[i]) > 1e-8 {
			t.Fatalf("mismatch at %d: direct=%v, overlap-add=%v", i, directResult[i], oaResult[i])
		}
	}
}

func TestConvolveAutoSelection(t *testing.T) {
	signal := make([]float64, 1000)
	for i := range signal {
		signal[i] = float64(i % 10)
	}

	shortKernel := []float64{1, 2, 1}

	result1, err := Convolve(signal, shortKernel)
	if err != nil {
		t.Fatalf("convolution failed: %v", err)
	}

	directResult, _ := Direct(signal, shortKernel)

	for i := range result1 {
		if math.Abs(result1[i]-directResult[i]) > 1e-10 {
			t.Fatalf("short kernel mismatch at %d", i)
		}
	}

	longKernel := make([]float64, 100)
	for i := range longKernel {
		longKernel[i] = math.Exp(-float64(i) / 20)
	}

	result2, err := Convolve(signal, longKernel)
	if err != nil {
		t.Fatalf("convolution failed: %v", err)
	}

	directResult2, _ := Direct(signal, longKernel)

	maxDiff := 0.0
	for i := range result2 {
		maxDiff = math.Max(maxDiff, math.Abs(result2[i]-directResult2[i]))
	}

	if maxDiff > 1e-8 {
		t.Errorf("long kernel max difference %v exceeds tolerance", maxDiff)
	}
}

func TestConvolveMode(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{1, 2, 3}

	full, _ := ConvolveMode(a, b, ModeFull)
	if len(full) != len(a)+len(b)-1 {
		t.Errorf("full mode length: got %d, expected %d", len(full), len(a)+len(b)-1)
	}

	// full = [1 4 10 16 22 22 15]
	valid, _ := ConvolveMode(a, b, ModeValid)
	if len(valid) != len(a)-len(b)+1 {
		t.Errorf("valid mode length: got %d, expected %d", len(valid), len(a)-len(b)+1)
	}
	if valid[0] != 10 || valid[2] != 22 {
		t.Errorf("valid mode values: got %v", valid)
	}

	swapped, _ := ConvolveMode(b, a, ModeValid)
	if len(swapped) != len(valid) || swapped[1] != valid[1] {
		t.Errorf("valid mode with longer kernel: got %v, want %v", swapped, valid)
	}
}

func TestOverlapAddProcessTo(t *testing.T) {
	kernel := []float64{0.5, 0.5}
	oa, err := NewOverlapAdd(kernel, 8)
	if err != nil {
		t.Fatalf("NewOverlapAdd failed: %v", err)
	}
	if oa.BlockSize() != 8 {
		t.Fatalf("BlockSize = %d, want 8", oa.BlockSize())
	}
	if oa.FFTSize() != 16 {
		t.Fatalf("FFTSize = %d, want 16", oa.FFTSize())
	}

	input := []float64{2, 4, 6, 8, 10, 12, 14, 16, 18, 20}

	err = oa.ProcessTo(make([]float64, 3), input)
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}

	out := make([]float64, len(input)+1)
	if err := oa.ProcessTo(out, input); err != nil {
		t.Fatalf("ProcessTo failed: %v", err)
	}

	want, _ := Direct(input, kernel)
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-9 {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestNextPowerOf2(t *testing.T) {
	for _, tc := range []struct{ in, want int }{{0, 1}, {1, 1}, {3, 4}, {64, 64}, {65, 128}} {
		if got := nextPowerOf2(tc.in); got != tc.want {
			t.Errorf("nextPowerOf2(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
