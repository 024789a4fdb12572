package conv

import "testing"

func BenchmarkDirect(b *testing.B) {
	signal := makeTestSignal(4096)
	kernel := makeTestKernel(15)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Direct(signal, kernel)
	}
}

func BenchmarkOverlapAdd(b *testing.B) {
	signal := makeTestSignal(4096)
	kernel := makeTestKernel(255)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = OverlapAddConvolve(signal, kernel)
	}
}

func makeTestSignal(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = float64((i*7919)%101) + 10
	}
	return s
}

func makeTestKernel(n int) []float64 {
	k := make([]float64, n)
	for i := range k {
		k[i] = 1 / float64(n)
	}
	return k
}
