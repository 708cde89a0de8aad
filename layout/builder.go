package layout

import (
	"fmt"
	"strings"
)

// Build 根据页面参数生成一页的文本片段与横线布局。
// 有横线（ruled）时按固定行距排布并在超出下边界前提前结束；
// 无横线时按字号排布，不提前结束；越过页面底部的片段标记为 Clipped 并计数。
func Build(spec PageSpec, opts BuildOptions) (*Result, error) {
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	if opts.Rand == nil {
		return nil, fmt.Errorf("layout: 缺少随机源")
	}
	if err := validateSpec(spec); err != nil {
		return nil, err
	}
	if err := opts.Policy.Validate(); err != nil {
		return nil, err
	}
	opts.Vocabulary = DistinctWords(opts.Vocabulary)
	if err := CheckVocabulary(opts.Vocabulary, spec.MaxWordsPerLine); err != nil {
		return nil, err
	}

	ctx := &pageContext{
		spec:   spec,
		opts:   opts,
		policy: opts.Policy,
		maxX:   opts.Policy.maxTextX(spec.Width),
		maxY:   opts.Policy.maxTextY(spec.Height),
		result: &Result{
			Page:       spec,
			Font:       opts.Font,
			Background: opts.Background,
			Fragments:  make([]Fragment, 0, spec.LineCount),
			TextColor:  opts.Policy.TextColor,
			RuleColor:  opts.Policy.RuleColor,
			RuleWidth:  opts.Policy.RuleWidth,
		},
	}

	var err error
	if spec.Ruled {
		err = ctx.layoutRuled()
	} else {
		err = ctx.layoutUnruled()
	}
	if err != nil {
		return nil, err
	}
	return ctx.result, nil
}

func validateSpec(spec PageSpec) error {
	switch {
	case spec.Width <= 0 || spec.Height <= 0:
		return fmt.Errorf("layout: 页面尺寸必须为正: %dx%d", spec.Width, spec.Height)
	case spec.LineCount < 0:
		return fmt.Errorf("layout: 行数不能为负: %d", spec.LineCount)
	case spec.MaxWordsPerLine < 1:
		return fmt.Errorf("layout: 每行最大词数必须 >= 1: %d", spec.MaxWordsPerLine)
	case spec.FontSize <= 0:
		return fmt.Errorf("layout: 字号必须为正: %d", spec.FontSize)
	}
	return nil
}

// pageContext 持有单页布局过程中的状态，仅由一次 Build 调用使用。
type pageContext struct {
	spec   PageSpec
	opts   BuildOptions
	policy Policy
	maxX   int
	maxY   int
	result *Result
}

func (c *pageContext) layoutRuled() error {
	spacing := c.policy.LineSpacing
	for i := 0; i < c.spec.LineCount; i++ {
		textY := i*spacing + c.policy.Margin.Top
		if textY+spacing > c.maxY {
			// 剩余的行直接丢弃，不视为错误
			break
		}
		text := c.sampleLine()
		lineY := textY + spacing
		c.result.Rules = append(c.result.Rules, Rule{
			X1: c.policy.RuleInset.Left,
			Y1: lineY,
			X2: c.spec.Width - c.policy.RuleInset.Right,
			Y2: lineY,
		})
		if err := c.place(i, text, textY); err != nil {
			return err
		}
	}
	return nil
}

func (c *pageContext) layoutUnruled() error {
	for i := 0; i < c.spec.LineCount; i++ {
		textY := i*c.spec.FontSize + c.policy.Margin.Top
		text := c.sampleLine()
		if err := c.place(i, text, textY); err != nil {
			return err
		}
	}
	return nil
}

// place 选取起始横坐标、测量文本、执行边界钳制并记录片段。
func (c *pageContext) place(line int, text string, textY int) error {
	textX := c.pickX()
	ext, err := c.opts.Typesetter.Measure(text, c.opts.Font, float64(c.spec.FontSize))
	if err != nil {
		return fmt.Errorf("测量第 %d 行文本失败: %w", line, err)
	}
	// 退化的测量结果至少占 1 像素，保证包围盒非退化
	if ext.Width < 1 {
		ext.Width = 1
	}
	if ext.Height < 1 {
		ext.Height = 1
	}

	textX, overflow := Clamp(textX, ext.Width, c.maxX, c.policy.Margin.Left, c.policy.Overflow)
	box := Box{X0: textX, Y0: textY, X1: textX + ext.Width, Y1: textY + ext.Height}
	// 未越界的片段横向一定在页面内，落在页面外只可能是纵向越过底部
	clipped := !overflow && !box.Within(c.spec.Width, c.spec.Height)
	if overflow {
		c.result.Overflows++
	}
	if clipped {
		c.result.Clipped++
	}
	c.result.Fragments = append(c.result.Fragments, Fragment{
		Text:     text,
		Box:      box,
		Line:     line,
		Overflow: overflow,
		Clipped:  clipped,
	})
	return nil
}

// pickX 在 [MinTextX, min(W/2, maxTextX)] 内均匀取值；上界小于下界时取上界。
func (c *pageContext) pickX() int {
	lo := c.policy.MinTextX
	hi := min(c.spec.Width/2, c.maxX)
	if hi < lo {
		return hi
	}
	return lo + c.opts.Rand.IntN(hi-lo+1)
}

// sampleLine 不放回地抽取 [1, MaxWordsPerLine] 个词并以单个空格连接。
func (c *pageContext) sampleLine() string {
	vocab := c.opts.Vocabulary
	count := 1 + c.opts.Rand.IntN(c.spec.MaxWordsPerLine)
	perm := c.opts.Rand.Perm(len(vocab))
	words := make([]string, count)
	for i := range words {
		words[i] = vocab[perm[i]]
	}
	return strings.Join(words, " ")
}
