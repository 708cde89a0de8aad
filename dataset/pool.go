package dataset

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Accepted file extensions per resource kind.
var (
	FontExts       = []string{".ttf", ".otf"}
	BackgroundExts = []string{".png", ".jpg", ".jpeg"}
)

// Pool is a read-only list of resource files shared by all workers.
type Pool struct {
	Kind  string
	Dir   string
	Files []string
}

// Scan lists regular files in dir (non-recursive) whose extension is in exts,
// sorted by name so that picks are reproducible across file systems.
func Scan(kind, dir string, exts []string) (*Pool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s dir: %w", kind, err)
	}
	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		allowed[strings.ToLower(ext)] = true
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if allowed[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, &EmptyPoolError{Kind: kind, Dir: dir}
	}
	sort.Strings(files)
	return &Pool{Kind: kind, Dir: dir, Files: files}, nil
}

// ScanFonts scans dir for .ttf and .otf files.
func ScanFonts(dir string) (*Pool, error) { return Scan("font", dir, FontExts) }

// ScanBackgrounds scans dir for .png, .jpg and .jpeg files.
func ScanBackgrounds(dir string) (*Pool, error) { return Scan("background", dir, BackgroundExts) }

// Pick selects one file uniformly.
func (p *Pool) Pick(rng *rand.Rand) string {
	return p.Files[rng.IntN(len(p.Files))]
}

func (p *Pool) Len() int { return len(p.Files) }
