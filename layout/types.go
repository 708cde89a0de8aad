package layout

// 该文件定义页面布局结果，供布局计算、渲染、标签序列化与调试 JSON 共用。
// 所有坐标单位均为像素，原点在左上角。

// PageSpec 描述单张图片的几何参数，由 Ranges.Choose 生成后不再修改。
type PageSpec struct {
	Width           int  `json:"width"`
	Height          int  `json:"height"`
	LineCount       int  `json:"lineCount"`
	MaxWordsPerLine int  `json:"maxWordsPerLine"`
	FontSize        int  `json:"fontSize"`
	Ruled           bool `json:"ruled"`
}

// Result 保存一页的布局结果：按生成顺序排列的文本片段与横线。
type Result struct {
	Page       PageSpec     `json:"page"`
	Font       FontResource `json:"font"`
	Background string       `json:"background"`
	Fragments  []Fragment   `json:"fragments"`
	Rules      []Rule       `json:"rules,omitempty"`
	TextColor  Color        `json:"textColor"`
	RuleColor  Color        `json:"ruleColor"`
	RuleWidth  float64      `json:"ruleWidth"`
	Overflows  int          `json:"overflows"`
	Clipped    int          `json:"clipped"`
}

// Fragment 是一段连续绘制的文本及其包围盒。
type Fragment struct {
	Text     string `json:"text"`
	Box      Box    `json:"box"`
	Line     int    `json:"line"`
	Overflow bool   `json:"overflow,omitempty"` // 宽度超过可用区域，钳制后仍越界
	Clipped  bool   `json:"clipped,omitempty"`  // 下边缘越过页面底部
}

// Box 采用 (X0,Y0) 左上角、(X1,Y1) 右下角的约定。
type Box struct {
	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
}

// Valid 报告包围盒是否非退化（X0<X1 且 Y0<Y1）。
func (b Box) Valid() bool { return b.X0 < b.X1 && b.Y0 < b.Y1 }

// Within 报告包围盒是否完全落在 [0,width]×[0,height] 内。
func (b Box) Within(width, height int) bool {
	return b.X0 >= 0 && b.Y0 >= 0 && b.X1 <= width && b.Y1 <= height
}

// Rule 表示一条横线（模拟笔记本格线）。
type Rule struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// FontResource 描述字体资源，src 可以是文件路径或 embed:<name> 形式的内置字体。
type FontResource struct {
	Name string `json:"name"`
	Src  string `json:"src"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Extent 是文本从绘制原点起的紧致包围范围：右边缘与下边缘（相对字体上升部顶端）。
type Extent struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}
