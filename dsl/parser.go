package dsl

import (
	"io"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	profileLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#[0-9A-Fa-f]{6}\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Range", Pattern: `\.\.`},
		{Name: "Number", Pattern: `\d+(?:\.\d+)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[{}:;,]`},
	})

	profileParser = participle.MustBuild[Profile](
		participle.Lexer(profileLexer),
		participle.Elide("Whitespace", "LineComment", "HashComment"),
		participle.Unquote("String"),
	)
)

// Profile is the root AST node of a layout profile file.
type Profile struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"'profile' @Ident"`
	Sections []*Section     `parser:"'{' @@* '}'"`
}

// Section is one top-level entry inside a profile.
type Section struct {
	Pos        lexer.Position `parser:"" json:"-"`
	Extends    *string        `parser:"  'extends' @Ident"`
	Vocabulary *Vocabulary    `parser:"| @@"`
	Block      *Block         `parser:"| @@"`
}

// Vocabulary lists candidate words or phrases.
type Vocabulary struct {
	Words []string `parser:"'vocabulary' '{' ( @String ','? )* '}'"`
}

// Block is a named group of settings (page, margins, ruling, text, policy).
type Block struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"@Ident"`
	Settings []*Setting     `parser:"'{' ( @@ ';'? )* '}'"`
}

// Setting uses colon syntax (key: value).
type Setting struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident ':'"`
	Value *Value         `parser:"@@"`
}

// Value is one or more numbers/ranges, a string, a color or a bare word.
type Value struct {
	Numbers []*Scalar `parser:"  @@+"`
	String  *string   `parser:"| @String"`
	Color   *string   `parser:"| @Color"`
	Ident   *string   `parser:"| @Ident"`
}

// Scalar is a number or an inclusive range written as `min..max`.
type Scalar struct {
	From float64  `parser:"@Number"`
	To   *float64 `parser:"( Range @Number )?"`
}

// IsRange reports whether the scalar was written as a range.
func (s *Scalar) IsRange() bool { return s != nil && s.To != nil }

// Bounds returns the range bounds; a plain number yields (n, n).
func (s *Scalar) Bounds() (float64, float64) {
	if s.To == nil {
		return s.From, s.From
	}
	return s.From, *s.To
}

// Text returns the value as written for string-like values.
func (v *Value) Text() (string, bool) {
	switch {
	case v == nil:
		return "", false
	case v.String != nil:
		return *v.String, true
	case v.Ident != nil:
		return *v.Ident, true
	case v.Color != nil:
		return *v.Color, true
	}
	return "", false
}

// Blocks returns the named blocks in file order.
func (p *Profile) Blocks() []*Block {
	var out []*Block
	for _, s := range p.Sections {
		if s.Block != nil {
			out = append(out, s.Block)
		}
	}
	return out
}

// Parent returns the profile named by the last `extends` entry, if any.
func (p *Profile) Parent() string {
	parent := ""
	for _, s := range p.Sections {
		if s.Extends != nil {
			parent = *s.Extends
		}
	}
	return parent
}

// Words returns the vocabulary entries of all vocabulary sections in order,
// keeping only the first occurrence of a repeated entry.
func (p *Profile) Words() []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range p.Sections {
		if s.Vocabulary == nil {
			continue
		}
		for _, w := range s.Vocabulary.Words {
			if seen[w] {
				continue
			}
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

// Parse parses profile content from an io.Reader.
func Parse(r io.Reader) (*Profile, error) {
	return profileParser.Parse("", r)
}

// ParseString parses profile content from a string.
func ParseString(input string) (*Profile, error) {
	return profileParser.ParseString("", input)
}

// ParseFile parses the profile file at path.
func ParseFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return profileParser.ParseBytes(path, data)
}
