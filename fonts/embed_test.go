package fonts

import "testing"

func TestLoadBuiltin(t *testing.T) {
	for _, name := range []string{"goregular", "embed:goregular", "embed:GoMono.ttf", "gobold"} {
		data, err := Load(name)
		if err != nil {
			t.Fatalf("Load(%q) error: %v", name, err)
		}
		if len(data) == 0 {
			t.Fatalf("Load(%q) returned empty font", name)
		}
	}
	if _, err := Load("embed:Inter-Regular.ttf"); err == nil {
		t.Fatalf("unknown font should fail")
	}
	if got := len(Names()); got != 4 {
		t.Fatalf("expected 4 builtin fonts, got %d", got)
	}
}
