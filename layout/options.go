package layout

import "math/rand/v2"

// BuildOptions 配置布局阶段所需的依赖：排版后端、策略、词表与随机源。
type BuildOptions struct {
	Typesetter Typesetter
	Policy     Policy
	Vocabulary []string
	Font       FontResource
	Background string
	// Rand 必须显式注入且按页播种，保证同一种子下结果可复现。
	Rand *rand.Rand
}

// Typesetter 负责测量文本在给定字体与字号（像素）下渲染后的紧致包围范围。
type Typesetter interface {
	Measure(text string, font FontResource, sizePx float64) (Extent, error)
}
