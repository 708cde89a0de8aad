package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/nepomucenoc/synthetic-images-generator/binding"
	"github.com/nepomucenoc/synthetic-images-generator/dsl"
	"github.com/nepomucenoc/synthetic-images-generator/labels"
	"github.com/nepomucenoc/synthetic-images-generator/layout"
)

// DefaultProfile is used when no profile is configured.
const DefaultProfile = "extended"

// Profile bundles everything that varies between dataset flavours: layout
// constants, geometry ranges, label format, file naming and vocabulary.
type Profile struct {
	Name       string
	Layout     layout.Policy
	Ranges     layout.Ranges
	Labels     labels.Mode
	Names      string
	Vocabulary []string
}

// Known name template keys.
var templateKeys = map[string]bool{"n": true, "bg": true, "font": true, "split": true, "index": true}

var simpleVocabulary = []string{
	"Produtos", "a serem", "expostos", "aqui", "para", "teste", "uhuhsdsdgbsgdfgysgf",
}

var extendedVocabulary = []string{
	"Produtos", "a serem", "expostos", "aqui", "para", "teste",
	"Arroz", "Feijão", "Açúcar", "Café", "Leite", "Óleo de soja",
	"Farinha de trigo", "Macarrão", "Sal refinado", "Manteiga",
	"Preço", "R$ 4,99", "R$ 12,50", "Oferta", "Promoção", "Validade",
	"Lote 0231", "Peso líquido", "500 g", "1 kg", "2 L", "Unidade",
	"Leve 3 pague 2", "Código 7891000", "Corredor 5", "Hortifruti",
}

var builtinProfiles = map[string]func() *Profile{
	"simple": func() *Profile {
		p := layout.DefaultPolicy()
		p.Margin = layout.Margin{Top: 100, Right: 80}
		p.Overflow = layout.RightAlign
		return &Profile{
			Name:       "simple",
			Layout:     p,
			Ranges:     layout.DefaultRanges(),
			Labels:     labels.Raw,
			Names:      "imagem_sintetica_${n}",
			Vocabulary: append([]string(nil), simpleVocabulary...),
		}
	},
	"extended": func() *Profile {
		return &Profile{
			Name:       "extended",
			Layout:     layout.DefaultPolicy(),
			Ranges:     layout.DefaultRanges(),
			Labels:     labels.Normalized,
			Names:      "${n}_${bg}_${font}",
			Vocabulary: append([]string(nil), extendedVocabulary...),
		}
	},
}

// BuiltinProfiles lists the built-in profile names.
func BuiltinProfiles() []string {
	names := make([]string, 0, len(builtinProfiles))
	for name := range builtinProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuiltinProfile returns a fresh copy of a built-in profile.
func BuiltinProfile(name string) (*Profile, error) {
	build, ok := builtinProfiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q (built-in: %s)", name, strings.Join(BuiltinProfiles(), ", "))
	}
	return build(), nil
}

// LoadProfile resolves a built-in name or parses a profile file.
func LoadProfile(nameOrPath string) (*Profile, error) {
	if nameOrPath == "" {
		nameOrPath = DefaultProfile
	}
	if _, ok := builtinProfiles[nameOrPath]; ok {
		return BuiltinProfile(nameOrPath)
	}
	doc, err := dsl.ParseFile(nameOrPath)
	if err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", nameOrPath, err)
	}
	return CompileProfile(doc)
}

// Validate fails fast on settings that would break every page.
func (p *Profile) Validate() error {
	if err := p.Layout.Validate(); err != nil {
		return err
	}
	if err := p.Ranges.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(p.Names) == "" {
		return errors.New("profile: empty name template")
	}
	unique := false
	for _, key := range binding.Placeholders(p.Names) {
		if !templateKeys[key] {
			return fmt.Errorf("profile: unknown name template key %q", key)
		}
		unique = unique || key == "n" || key == "index"
	}
	if !unique {
		return fmt.Errorf("profile: name template %q must reference ${n} or ${index}", p.Names)
	}
	return layout.CheckVocabulary(p.Vocabulary, p.Ranges.WordsPerLine.Max)
}

// LoadVocabulary reads one entry per line, skipping blank lines and lines
// starting with '#'.
func LoadVocabulary(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var words []string
	seen := map[string]bool{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || seen[line] {
			continue
		}
		seen[line] = true
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("vocabulary file %s is empty", path)
	}
	return words, nil
}

// CompileProfile applies a parsed profile document on top of the built-in it
// extends (DefaultProfile when it extends nothing).
func CompileProfile(doc *dsl.Profile) (*Profile, error) {
	parent := doc.Parent()
	if parent == "" {
		parent = DefaultProfile
	}
	p, err := BuiltinProfile(parent)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.Pos, err)
	}
	p.Name = doc.Name
	if words := doc.Words(); len(words) > 0 {
		p.Vocabulary = words
	}
	for _, block := range doc.Blocks() {
		apply, ok := blockAppliers[block.Name]
		if !ok {
			return nil, fmt.Errorf("%s: unknown block %q", block.Pos, block.Name)
		}
		for _, s := range block.Settings {
			if err := apply(p, s); err != nil {
				return nil, fmt.Errorf("%s: %s.%s: %w", s.Pos, block.Name, s.Key, err)
			}
		}
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.Name, err)
	}
	return p, nil
}

var errUnknownSetting = errors.New("unknown setting")

var blockAppliers = map[string]func(*Profile, *dsl.Setting) error{
	"page":    applyPage,
	"margins": applyMargins,
	"ruling":  applyRuling,
	"text":    applyText,
	"policy":  applyPolicy,
}

func applyPage(p *Profile, s *dsl.Setting) error {
	var target *layout.IntRange
	switch s.Key {
	case "width":
		target = &p.Ranges.Width
	case "height":
		target = &p.Ranges.Height
	case "lines":
		target = &p.Ranges.Lines
	case "words":
		target = &p.Ranges.WordsPerLine
	case "font-size":
		target = &p.Ranges.FontSize
	default:
		return errUnknownSetting
	}
	r, err := intRange(s.Value)
	if err != nil {
		return err
	}
	*target = r
	return nil
}

func applyMargins(p *Profile, s *dsl.Setting) error {
	var target *int
	switch s.Key {
	case "top":
		target = &p.Layout.Margin.Top
	case "right":
		target = &p.Layout.Margin.Right
	case "bottom":
		target = &p.Layout.Margin.Bottom
	case "left":
		target = &p.Layout.Margin.Left
	default:
		return errUnknownSetting
	}
	v, err := intValue(s.Value)
	if err != nil {
		return err
	}
	*target = v
	return nil
}

func applyRuling(p *Profile, s *dsl.Setting) error {
	switch s.Key {
	case "spacing":
		v, err := intValue(s.Value)
		if err != nil {
			return err
		}
		p.Layout.LineSpacing = v
	case "inset":
		nums, err := ints(s.Value)
		if err != nil {
			return err
		}
		switch len(nums) {
		case 1:
			p.Layout.RuleInset = layout.Inset{Left: nums[0], Right: nums[0]}
		case 2:
			p.Layout.RuleInset = layout.Inset{Left: nums[0], Right: nums[1]}
		default:
			return fmt.Errorf("expected 1 or 2 numbers, got %d", len(nums))
		}
	case "width":
		v, err := floatValue(s.Value)
		if err != nil {
			return err
		}
		p.Layout.RuleWidth = v
	case "color":
		c, err := colorValue(s.Value)
		if err != nil {
			return err
		}
		p.Layout.RuleColor = c
	default:
		return errUnknownSetting
	}
	return nil
}

func applyText(p *Profile, s *dsl.Setting) error {
	switch s.Key {
	case "min-x":
		v, err := intValue(s.Value)
		if err != nil {
			return err
		}
		p.Layout.MinTextX = v
	case "color":
		c, err := colorValue(s.Value)
		if err != nil {
			return err
		}
		p.Layout.TextColor = c
	default:
		return errUnknownSetting
	}
	return nil
}

func applyPolicy(p *Profile, s *dsl.Setting) error {
	text, ok := s.Value.Text()
	if !ok {
		return errors.New("expected a word or string")
	}
	switch s.Key {
	case "overflow":
		mode, err := layout.ParseOverflowMode(text)
		if err != nil {
			return err
		}
		p.Layout.Overflow = mode
	case "labels":
		mode, err := labels.ParseMode(text)
		if err != nil {
			return err
		}
		p.Labels = mode
	case "names":
		p.Names = text
	default:
		return errUnknownSetting
	}
	return nil
}

func intRange(v *dsl.Value) (layout.IntRange, error) {
	if v == nil || len(v.Numbers) != 1 {
		return layout.IntRange{}, errors.New("expected a number or a min..max range")
	}
	lo, hi := v.Numbers[0].Bounds()
	minV, err := wholeNumber(lo)
	if err != nil {
		return layout.IntRange{}, err
	}
	maxV, err := wholeNumber(hi)
	if err != nil {
		return layout.IntRange{}, err
	}
	return layout.IntRange{Min: minV, Max: maxV}, nil
}

func intValue(v *dsl.Value) (int, error) {
	nums, err := ints(v)
	if err != nil {
		return 0, err
	}
	if len(nums) != 1 {
		return 0, fmt.Errorf("expected one number, got %d", len(nums))
	}
	return nums[0], nil
}

func ints(v *dsl.Value) ([]int, error) {
	if v == nil || len(v.Numbers) == 0 {
		return nil, errors.New("expected a number")
	}
	out := make([]int, 0, len(v.Numbers))
	for _, n := range v.Numbers {
		if n.IsRange() {
			return nil, errors.New("range not allowed here")
		}
		i, err := wholeNumber(n.From)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, nil
}

func floatValue(v *dsl.Value) (float64, error) {
	if v == nil || len(v.Numbers) != 1 || v.Numbers[0].IsRange() {
		return 0, errors.New("expected one number")
	}
	return v.Numbers[0].From, nil
}

func wholeNumber(f float64) (int, error) {
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("expected a whole number, got %g", f)
	}
	return int(f), nil
}

func colorValue(v *dsl.Value) (layout.Color, error) {
	if v == nil || v.Color == nil {
		return layout.Color{}, errors.New("expected a #rrggbb color")
	}
	return parseHexColor(*v.Color)
}

func parseHexColor(s string) (layout.Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return layout.Color{}, fmt.Errorf("invalid color %q", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return layout.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return layout.Color{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
}
