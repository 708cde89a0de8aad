package layout

import (
	"math"
	"testing"
)

// TestPtPxRoundTrip 验证 pt↔px 换算的往返精度（允许极小的浮点误差）。
func TestPtPxRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 15, 25, 72, 96, 1000}
	for _, pt := range samples {
		px := ToPx(pt)
		back := ToPt(px)
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→px→pt 往返误差过大: in=%gpt px=%g back=%g diff=%g", pt, px, back, diff)
		}
	}
	// 72pt = 1in = 25.4 canvas units
	if got := ToPx(72); math.Abs(got-25.4) > 1e-9 {
		t.Fatalf("72pt 转 px 期望 25.4，实际 %g", got)
	}
}

func TestCeilPx(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{-3, 0},
		{0, 0},
		{0.2, 1},
		{10, 10},
		{10.0000000001, 10},
		{10.01, 11},
	}
	for _, c := range cases {
		if got := CeilPx(c.in); got != c.want {
			t.Fatalf("CeilPx(%g) = %d, want %d", c.in, got, c.want)
		}
	}
}
