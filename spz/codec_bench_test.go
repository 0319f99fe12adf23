package spz

import (
	"fmt"
	"io"
	"slices"
	"testing"

	"github.com/arloliu/gsplat/internal/testutil"
)

func BenchmarkFromSlice(b *testing.B) {
	gs := testutil.Gaussians(50_000, 1)

	for _, n := range []int{1, 4} {
		b.Run(fmt.Sprintf("parallelism%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				_, _ = FromSlice(gs, WithParallelism(n))
			}
		})
	}
}

func BenchmarkWrite(b *testing.B) {
	g, _ := FromSlice(testutil.Gaussians(50_000, 1))

	b.SetBytes(int64(g.bodySize()))
	b.ReportAllocs()
	for b.Loop() {
		_ = g.Write(io.Discard)
	}
}

func BenchmarkDecode(b *testing.B) {
	g, _ := FromSlice(testutil.Gaussians(50_000, 1))
	data, _ := g.Encode()

	b.SetBytes(int64(g.bodySize()))
	b.ReportAllocs()
	for b.Loop() {
		_, _ = Decode(data)
	}
}

func BenchmarkAll(b *testing.B) {
	g, _ := FromSlice(testutil.Gaussians(50_000, 1))

	b.ReportAllocs()
	for b.Loop() {
		_ = slices.Collect(g.All())
	}
}
