package renderer

import "github.com/nepomucenoc/synthetic-images-generator/layout"

// Renderer 将单页布局结果输出为最终图像文件的字节（例如 PNG）。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Backend 同时负责测量与绘制，保证标签中的包围盒与实际绘制的字形一致。
type Backend interface {
	Renderer
	layout.Typesetter
}
