package layout

import "testing"

func TestClamp(t *testing.T) {
	cases := []struct {
		name         string
		x, width     int
		maxX, left   int
		mode         OverflowMode
		wantX        int
		wantOverflow bool
	}{
		{"fits", 100, 200, 670, 50, SnapLeft, 100, false},
		{"exact fit stays", 470, 200, 670, 50, SnapLeft, 470, false},
		{"one past snaps left", 471, 200, 670, 50, SnapLeft, 50, false},
		{"one past right aligns", 471, 200, 670, 50, RightAlign, 470, false},
		{"snap left still too wide", 300, 700, 670, 50, SnapLeft, 50, true},
		{"right align floors at zero", 300, 700, 670, 50, RightAlign, 0, true},
		{"snap left fits only from margin", 400, 600, 670, 50, SnapLeft, 50, false},
		{"right align negative maxX", 10, 20, -5, 0, RightAlign, 0, true},
		{"negative input", -20, 10, 670, 50, SnapLeft, 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			gotX, gotOverflow := Clamp(c.x, c.width, c.maxX, c.left, c.mode)
			if gotX != c.wantX || gotOverflow != c.wantOverflow {
				t.Fatalf("Clamp(%d,%d,%d,%d,%s) = (%d,%v), want (%d,%v)",
					c.x, c.width, c.maxX, c.left, c.mode, gotX, gotOverflow, c.wantX, c.wantOverflow)
			}
			if gotX < 0 {
				t.Fatalf("Clamp 返回负坐标 %d", gotX)
			}
		})
	}
}

func TestParseOverflowMode(t *testing.T) {
	for in, want := range map[string]OverflowMode{
		"":            SnapLeft,
		"snap-left":   SnapLeft,
		"Right-Align": RightAlign,
		"clamp":       RightAlign,
	} {
		got, err := ParseOverflowMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseOverflowMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseOverflowMode("center"); err == nil {
		t.Fatalf("未知策略应报错")
	}
}
