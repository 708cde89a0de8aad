package layout

import (
	"fmt"
	"strings"
)

// OverflowMode 决定横向越界文本的重新定位方式。
type OverflowMode int

const (
	// SnapLeft 将越界片段移到左边距处，保证横坐标非负。
	SnapLeft OverflowMode = iota
	// RightAlign 将越界片段右对齐到 maxTextX，结果下限为 0。
	RightAlign
)

func (m OverflowMode) String() string {
	switch m {
	case RightAlign:
		return "right-align"
	default:
		return "snap-left"
	}
}

// ParseOverflowMode 解析 snap-left / right-align。
func ParseOverflowMode(s string) (OverflowMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "snap-left", "left", "snap":
		return SnapLeft, nil
	case "right-align", "right", "clamp":
		return RightAlign, nil
	default:
		return SnapLeft, fmt.Errorf("未知的越界策略 %q（可选 snap-left / right-align）", s)
	}
}

// Margin 以像素为单位。
type Margin struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// Inset 描述横线两端距页面左右边缘的距离。
type Inset struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// Policy 汇总布局常量：边距、行距、横线、最小起始横坐标、越界策略与颜色。
type Policy struct {
	Margin      Margin       `json:"margin"`
	MinTextX    int          `json:"minTextX"`
	LineSpacing int          `json:"lineSpacing"`
	RuleInset   Inset        `json:"ruleInset"`
	RuleWidth   float64      `json:"ruleWidth"`
	Overflow    OverflowMode `json:"overflow"`
	TextColor   Color        `json:"textColor"`
	RuleColor   Color        `json:"ruleColor"`
}

// DefaultPolicy 返回带左右/下边距的默认策略。
func DefaultPolicy() Policy {
	return Policy{
		Margin:      Margin{Top: 100, Right: 80, Bottom: 50, Left: 50},
		MinTextX:    100,
		LineSpacing: 15,
		RuleInset:   Inset{Left: 50, Right: 80},
		RuleWidth:   1,
		Overflow:    SnapLeft,
		TextColor:   Color{R: 50, G: 50, B: 50},
		RuleColor:   Color{R: 128, G: 128, B: 128},
	}
}

// Validate 检查策略中的常量是否可用。
func (p Policy) Validate() error {
	m := p.Margin
	if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
		return fmt.Errorf("layout: 边距不能为负: %+v", m)
	}
	if p.LineSpacing <= 0 {
		return fmt.Errorf("layout: 行距必须为正，实际 %d", p.LineSpacing)
	}
	if p.MinTextX < 0 {
		return fmt.Errorf("layout: 最小起始横坐标不能为负，实际 %d", p.MinTextX)
	}
	if p.RuleInset.Left < 0 || p.RuleInset.Right < 0 {
		return fmt.Errorf("layout: 横线缩进不能为负: %+v", p.RuleInset)
	}
	return nil
}

// maxTextX 与 maxTextY：页面尺寸减去两侧边距。
func (p Policy) maxTextX(width int) int  { return width - p.Margin.Right - p.Margin.Left }
func (p Policy) maxTextY(height int) int { return height - p.Margin.Top - p.Margin.Bottom }
