// Package labels serializes fragment bounding boxes into detector label files.
//
// A label file holds one record per fragment, in generation order, with fields
// separated by ", ". Raw mode writes the four pixel coordinates. Normalized
// mode prefixes the class id and divides every coordinate by the page width.
package labels

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nepomucenoc/synthetic-images-generator/layout"
)

// ClassText is the only class emitted.
const ClassText = 0

// Mode selects how boxes are written.
type Mode int

const (
	Raw Mode = iota
	Normalized
)

func (m Mode) String() string {
	if m == Normalized {
		return "normalized"
	}
	return "raw"
}

// ParseMode accepts "raw" and "normalized".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "raw", "pixels", "":
		return Raw, nil
	case "normalized", "normalised", "yolo":
		return Normalized, nil
	}
	return Raw, fmt.Errorf("unknown label mode %q", s)
}

// Record is the serialized form of one fragment.
type Record struct {
	Class int
	X0    float64
	Y0    float64
	X1    float64
	Y1    float64
}

// Records converts a page layout into label records. In normalized mode all
// four coordinates are divided by the page width, including the vertical ones.
func Records(res *layout.Result, mode Mode) []Record {
	if res == nil {
		return nil
	}
	out := make([]Record, 0, len(res.Fragments))
	scale := 1.0
	if mode == Normalized && res.Page.Width > 0 {
		scale = float64(res.Page.Width)
	}
	for _, fr := range res.Fragments {
		out = append(out, Record{
			Class: ClassText,
			X0:    float64(fr.Box.X0) / scale,
			Y0:    float64(fr.Box.Y0) / scale,
			X1:    float64(fr.Box.X1) / scale,
			Y1:    float64(fr.Box.Y1) / scale,
		})
	}
	return out
}

// InUnitRange reports whether every coordinate lies in [0,1].
func (r Record) InUnitRange() bool {
	for _, v := range []float64{r.X0, r.Y0, r.X1, r.Y1} {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// Encode writes records one per line, newline terminated, no header.
func Encode(w io.Writer, recs []Record, mode Mode) error {
	bw := bufio.NewWriter(w)
	for _, r := range recs {
		if _, err := bw.WriteString(formatRecord(r, mode)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Marshal returns the encoded label file contents.
func Marshal(recs []Record, mode Mode) []byte {
	var buf bytes.Buffer
	// bytes.Buffer writes do not fail
	_ = Encode(&buf, recs, mode)
	return buf.Bytes()
}

func formatRecord(r Record, mode Mode) string {
	if mode == Normalized {
		return strings.Join([]string{
			strconv.Itoa(r.Class),
			formatFloat(r.X0), formatFloat(r.Y0), formatFloat(r.X1), formatFloat(r.Y1),
		}, ", ")
	}
	return fmt.Sprintf("%d, %d, %d, %d", int(r.X0), int(r.Y0), int(r.X1), int(r.Y1))
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

// WriteFile writes the label file at path.
func WriteFile(path string, recs []Record, mode Mode) error {
	return os.WriteFile(path, Marshal(recs, mode), 0o644)
}

// Decode parses a label file written in the given mode.
func Decode(r io.Reader, mode Mode) ([]Record, error) {
	var out []Record
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		rec, err := parseRecord(line, mode)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		out = append(out, rec)
	}
	return out, sc.Err()
}

// ReadFile parses the label file at path.
func ReadFile(path string, mode Mode) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, mode)
}

func parseRecord(line string, mode Mode) (Record, error) {
	fields := strings.Split(line, ",")
	want := 4
	if mode == Normalized {
		want = 5
	}
	if len(fields) != want {
		return Record{}, fmt.Errorf("expected %d fields, got %d", want, len(fields))
	}
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Record{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		vals[i] = v
	}
	if mode == Normalized {
		return Record{Class: int(vals[0]), X0: vals[1], Y0: vals[2], X1: vals[3], Y1: vals[4]}, nil
	}
	return Record{Class: ClassText, X0: vals[0], Y0: vals[1], X1: vals[2], Y1: vals[3]}, nil
}
