package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"golang.org/x/image/draw"

	"github.com/nepomucenoc/synthetic-images-generator/fonts"
	"github.com/nepomucenoc/synthetic-images-generator/layout"
	"github.com/nepomucenoc/synthetic-images-generator/renderer"
)

// 页面以像素布局，画布单位为毫米；按每毫米 1 个像素栅格化，使 1 个画布单位恰好对应 1 个像素。
var pixelResolution = canvas.DPMM(1.0)

// Renderer draws page layouts via github.com/tdewolff/canvas and encodes them as PNG.
// A Renderer caches font families and is meant to be owned by a single worker.
type Renderer struct {
	baseDir string

	// injected resources
	fontBlobs  map[string][]byte // by unique name
	onFallback func(font layout.FontResource, err error)

	fontMu         sync.Mutex
	fontFamilies   map[string]*canvas.FontFamily
	fallbackFamily *canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ renderer.Backend  = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	// Fonts are accessible via built-in:<name>.
	Fonts map[string][]byte
	// OnFallback is called when a font cannot be loaded and the built-in
	// fallback face is used instead. Nil means fall back silently.
	OnFallback func(font layout.FontResource, err error)
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		fontBlobs:    map[string][]byte{},
		onFallback:   opts.OnFallback,
		fontFamilies: map[string]*canvas.FontFamily{},
	}
	for name, data := range opts.Fonts {
		if name == "" || len(data) == 0 {
			continue
		}
		r.fontBlobs[name] = data
	}
	return r
}

// Measure 实现 layout.Typesetter：返回从绘制原点起的右边缘与下边缘（相对上升部顶端）。
// 宽度取字形轮廓的紧致右边界，而不是前进宽度。
func (r *Renderer) Measure(text string, font layout.FontResource, sizePx float64) (layout.Extent, error) {
	face, err := r.fontFace(font, sizePx, layout.Color{})
	if err != nil {
		return layout.Extent{}, err
	}
	line := canvas.NewTextLine(face, text, canvas.Left)
	bounds := line.OutlineBounds()
	ascent := face.Metrics().Ascent

	right := bounds.X1
	bottom := ascent - bounds.Y0
	if bounds.X1-bounds.X0 <= 0 {
		// 没有可见字形（例如纯空白），退回到前进宽度与行高
		right = face.TextWidth(text)
		bottom = ascent + face.Metrics().Descent
	}
	return layout.Extent{Width: layout.CeilPx(right), Height: layout.CeilPx(bottom)}, nil
}

// Render renders the page into PNG bytes: background resized onto a white
// page, then rules and text rasterized on top.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	w, h := result.Page.Width, result.Page.Height
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("页面尺寸无效: %dx%d", w, h)
	}

	page := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(page, page.Bounds(), image.White, image.Point{}, draw.Src)
	if result.Background != "" {
		bg, err := r.loadImage(result.Background)
		if err != nil {
			return nil, err
		}
		draw.BiLinear.Scale(page, page.Bounds(), bg, bg.Bounds(), draw.Over, nil)
	}

	c := canvas.New(float64(w), float64(h))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点
	r.drawRules(ctx, result.Rules, result.RuleColor, result.RuleWidth)
	if err := r.drawFragments(ctx, result); err != nil {
		return nil, err
	}
	overlay := rasterizer.Draw(c, pixelResolution, canvas.DefaultColorSpace)
	draw.Draw(page, page.Bounds(), overlay, image.Point{}, draw.Over)

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, page); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawFragments(ctx *canvas.Context, result *layout.Result) error {
	if len(result.Fragments) == 0 {
		return nil
	}
	face, err := r.fontFace(result.Font, float64(result.Page.FontSize), result.TextColor)
	if err != nil {
		return err
	}
	// 基线位置：以片段顶部加上字体上升部（Ascent）
	ascent := face.Metrics().Ascent
	for _, fr := range result.Fragments {
		line := canvas.NewTextLine(face, fr.Text, canvas.Left)
		ctx.DrawText(float64(fr.Box.X0), float64(fr.Box.Y0)+ascent, line)
	}
	return nil
}

// drawRules 绘制横线（像素单位）。线宽为奇数像素时偏移半个像素，使线条落在整像素行上。
func (r *Renderer) drawRules(ctx *canvas.Context, rules []layout.Rule, col layout.Color, width float64) {
	if width <= 0 {
		width = 1
	}
	ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	ctx.SetStrokeColor(colorFromLayout(col))
	ctx.SetStrokeWidth(width)
	offset := 0.0
	if int(width)%2 == 1 {
		offset = 0.5
	}
	for _, ln := range rules {
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(float64(ln.X2-ln.X1), float64(ln.Y2-ln.Y1))
		ctx.DrawPath(float64(ln.X1), float64(ln.Y1)+offset, p)
	}
}

func (r *Renderer) loadImage(src string) (image.Image, error) {
	path := r.resolvePath(src)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("读取背景图片 %s 失败: %w", src, err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("解码背景图片 %s 失败: %w", src, err)
	}
	return img, nil
}

func (r *Renderer) resolvePath(path string) string {
	if r.baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.baseDir, path)
}

// fontFace 以像素字号创建字体面；字体系统使用 pt，这里做一次 px→pt。
func (r *Renderer) fontFace(font layout.FontResource, sizePx float64, col layout.Color) (*canvas.FontFace, error) {
	if sizePx <= 0 {
		return nil, fmt.Errorf("字号必须为正: %g", sizePx)
	}
	family, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(layout.ToPt(sizePx), colorFromLayout(col), canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.fontFamilies[key]; ok {
		return family, nil
	}

	name := font.Name
	if name == "" {
		name = "Body"
	}
	family := canvas.NewFontFamily(name)
	if err := r.loadFontIntoFamily(family, font); err != nil {
		fallback, fbErr := r.fallback()
		if fbErr != nil {
			return nil, err
		}
		if r.onFallback != nil {
			r.onFallback(font, err)
		}
		r.fontFamilies[key] = fallback
		return fallback, nil
	}
	r.fontFamilies[key] = family
	return family, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, font layout.FontResource) error {
	data, err := r.loadFontBytes(font)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, canvas.FontRegular)
}

func (r *Renderer) loadFontBytes(font layout.FontResource) ([]byte, error) {
	if font.Src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", font.Name)
	}
	src := font.Src
	if strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:") {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
		return nil, fmt.Errorf("找不到内置字体资源 built-in:%s", name)
	}
	if strings.HasPrefix(src, "embed:") {
		return fonts.Load(src)
	}
	data, err := os.ReadFile(r.resolvePath(src))
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}

// fallback 必须在持有 fontMu 时调用。
func (r *Renderer) fallback() (*canvas.FontFamily, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, nil
	}
	data, err := fonts.Load(fonts.DefaultName)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("synth-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	r.fallbackFamily = family
	return family, nil
}

func fontCacheKey(font layout.FontResource) string {
	return font.Name + "|" + font.Src
}

func colorFromLayout(c layout.Color) color.Color {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}
