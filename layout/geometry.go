package layout

import (
	"fmt"
	"math/rand/v2"
)

// IntRange 是闭区间 [Min, Max]。
type IntRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Pick 在闭区间内均匀取值。
func (r IntRange) Pick(rng *rand.Rand) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.IntN(r.Max-r.Min+1)
}

func (r IntRange) String() string { return fmt.Sprintf("%d..%d", r.Min, r.Max) }

// Ranges 汇总每张图片的几何取值范围。
type Ranges struct {
	Width        IntRange `json:"width"`
	Height       IntRange `json:"height"`
	Lines        IntRange `json:"lines"`
	WordsPerLine IntRange `json:"wordsPerLine"`
	FontSize     IntRange `json:"fontSize"`
}

// DefaultRanges 返回默认取值范围。
func DefaultRanges() Ranges {
	return Ranges{
		Width:        IntRange{Min: 800, Max: 1200},
		Height:       IntRange{Min: 600, Max: 900},
		Lines:        IntRange{Min: 5, Max: 30},
		WordsPerLine: IntRange{Min: 1, Max: 5},
		FontSize:     IntRange{Min: 15, Max: 25},
	}
}

// Validate 拒绝空区间以及违反 PageSpec 下限的区间。
func (g Ranges) Validate() error {
	checks := []struct {
		name  string
		r     IntRange
		lower int
	}{
		{"width", g.Width, 1},
		{"height", g.Height, 1},
		{"lines", g.Lines, 0},
		{"words", g.WordsPerLine, 1},
		{"font-size", g.FontSize, 1},
	}
	for _, c := range checks {
		if c.r.Min > c.r.Max {
			return fmt.Errorf("layout: %s 区间为空: %s", c.name, c.r)
		}
		if c.r.Min < c.lower {
			return fmt.Errorf("layout: %s 下限必须 >= %d，实际 %s", c.name, c.lower, c.r)
		}
	}
	return nil
}

// Choose 按固定顺序抽取宽、高、行数、每行最大词数与字号。
func (g Ranges) Choose(rng *rand.Rand, ruled bool) PageSpec {
	return PageSpec{
		Width:           g.Width.Pick(rng),
		Height:          g.Height.Pick(rng),
		LineCount:       g.Lines.Pick(rng),
		MaxWordsPerLine: g.WordsPerLine.Pick(rng),
		FontSize:        g.FontSize.Pick(rng),
		Ruled:           ruled,
	}
}
