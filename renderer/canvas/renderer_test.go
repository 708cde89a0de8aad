package canvasrenderer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/nepomucenoc/synthetic-images-generator/fonts"
	"github.com/nepomucenoc/synthetic-images-generator/layout"
)

var bodyFont = layout.FontResource{Name: "Body", Src: "embed:goregular"}

func TestMeasurePositiveExtent(t *testing.T) {
	r := NewRenderer(".")
	ext, err := r.Measure("Produtos", bodyFont, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext.Width <= 0 || ext.Height <= 0 {
		t.Fatalf("expected positive extent, got %+v", ext)
	}
	// 20px 字号下的高度不应超过两倍字号
	if ext.Height > 40 {
		t.Fatalf("height out of range for 20px font: %d", ext.Height)
	}
}

func TestMeasureLongerTextIsWider(t *testing.T) {
	r := NewRenderer(".")
	short, err := r.Measure("aqui", bodyFont, 18)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	long, err := r.Measure("aqui para teste", bodyFont, 18)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if long.Width <= short.Width {
		t.Fatalf("expected longer text to be wider: short=%d long=%d", short.Width, long.Width)
	}
	bigger, err := r.Measure("aqui", bodyFont, 36)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bigger.Width <= short.Width {
		t.Fatalf("expected larger font to be wider: 18px=%d 36px=%d", short.Width, bigger.Width)
	}
}

func TestMeasureDescenderIsTaller(t *testing.T) {
	r := NewRenderer(".")
	flat, err := r.Measure("aaa", bodyFont, 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	deep, err := r.Measure("ggg", bodyFont, 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deep.Height <= flat.Height {
		t.Fatalf("descenders should extend the box: aaa=%d ggg=%d", flat.Height, deep.Height)
	}
}

func TestBrokenFontFallsBack(t *testing.T) {
	var fallbacks int
	r := NewRendererWithOptions(Options{
		BaseDir:    t.TempDir(),
		OnFallback: func(layout.FontResource, error) { fallbacks++ },
	})
	broken := layout.FontResource{Name: "missing", Src: "missing.ttf"}
	ext, err := r.Measure("teste", broken, 20)
	if err != nil {
		t.Fatalf("expected fallback face, got error: %v", err)
	}
	if ext.Width <= 0 {
		t.Fatalf("fallback face should measure text, got %+v", ext)
	}
	// 第二次命中缓存，不再回调
	if _, err := r.Measure("teste", broken, 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fallbacks != 1 {
		t.Fatalf("expected exactly one fallback notification, got %d", fallbacks)
	}
}

func TestBuiltInFontBlobMatchesEmbed(t *testing.T) {
	data, err := fonts.Load("gomono")
	if err != nil {
		t.Fatalf("load gomono: %v", err)
	}
	r := NewRendererWithOptions(Options{Fonts: map[string][]byte{"mono": data}})
	injected, err := r.Measure("Produtos", layout.FontResource{Name: "Mono", Src: "built-in:mono"}, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	embedded, err := r.Measure("Produtos", layout.FontResource{Name: "Mono", Src: "embed:gomono"}, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if injected != embedded {
		t.Fatalf("same font bytes should measure the same: %+v vs %+v", injected, embedded)
	}
	if _, err := r.Measure("x", layout.FontResource{Name: "Nope", Src: "built-in:nope"}, 20); err != nil {
		t.Fatalf("unknown built-in font should fall back, got %v", err)
	}
}

func writeBackground(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 220, B: 240, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "bg.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create background: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode background: %v", err)
	}
	return path
}

func TestRenderProducesPageSizedPNG(t *testing.T) {
	r := NewRenderer(".")
	res := &layout.Result{
		Page:       layout.PageSpec{Width: 320, Height: 240, FontSize: 20, Ruled: true},
		Font:       bodyFont,
		Background: writeBackground(t, 64, 48),
		Fragments: []layout.Fragment{
			{Text: "Produtos", Box: layout.Box{X0: 40, Y0: 30, X1: 130, Y1: 50}},
		},
		Rules:     []layout.Rule{{X1: 10, Y1: 60, X2: 300, Y2: 60}},
		TextColor: layout.Color{R: 50, G: 50, B: 50},
		RuleColor: layout.Color{R: 128, G: 128, B: 128},
		RuleWidth: 1,
	}
	data, err := r.Render(res)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Fatalf("expected 320x240, got %dx%d", b.Dx(), b.Dy())
	}
	// 背景被拉伸覆盖整页
	if cr, cg, cb, _ := img.At(310, 230).RGBA(); cr>>8 != 200 || cg>>8 != 220 || cb>>8 != 240 {
		t.Fatalf("background not scaled to page: got (%d,%d,%d)", cr>>8, cg>>8, cb>>8)
	}
	// 文本区域内应有比背景更暗的像素
	if !hasDarkPixel(img, image.Rect(40, 30, 130, 50)) {
		t.Fatalf("expected glyph pixels inside the fragment box")
	}
}

func TestRenderWithoutBackgroundIsWhite(t *testing.T) {
	r := NewRenderer(".")
	res := &layout.Result{Page: layout.PageSpec{Width: 50, Height: 40, FontSize: 15}, Font: bodyFont}
	data, err := r.Render(res)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if cr, cg, cb, _ := img.At(25, 20).RGBA(); cr>>8 != 255 || cg>>8 != 255 || cb>>8 != 255 {
		t.Fatalf("expected white page, got (%d,%d,%d)", cr>>8, cg>>8, cb>>8)
	}
}

func TestRenderMissingBackground(t *testing.T) {
	r := NewRenderer(t.TempDir())
	res := &layout.Result{Page: layout.PageSpec{Width: 50, Height: 40, FontSize: 15}, Font: bodyFont, Background: "nope.png"}
	if _, err := r.Render(res); err == nil {
		t.Fatalf("expected error for missing background")
	}
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
}

func hasDarkPixel(img image.Image, rect image.Rectangle) bool {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			if r>>8 < 150 {
				return true
			}
		}
	}
	return false
}
