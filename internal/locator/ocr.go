package locator

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/mj1618/desktop-agent/internal/model"
	"github.com/mj1618/desktop-agent/internal/platform"
)

// Engine extracts words and their bounding boxes from an encoded image.
type Engine interface {
	Words(ctx context.Context, img []byte) ([]model.Word, error)
}

// Tesseract runs the tesseract CLI and parses its TSV output.
type Tesseract struct {
	Binary   string
	Language string
	Runner   platform.Runner
}

// NewTesseract returns an engine that invokes binary with the given language.
func NewTesseract(binary, language string, runner platform.Runner) *Tesseract {
	if binary == "" {
		binary = "tesseract"
	}
	if language == "" {
		language = "eng"
	}
	return &Tesseract{Binary: binary, Language: language, Runner: runner}
}

func (t *Tesseract) Words(ctx context.Context, img []byte) ([]model.Word, error) {
	out, err := t.Runner.Run(ctx, img, t.Binary, "stdin", "stdout", "-l", t.Language, "tsv")
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w", err)
	}
	return ParseTSV(bytes.NewReader(out))
}

// tesseract TSV level for a single word.
const wordLevel = "5"

// ParseTSV reads tesseract's TSV output and returns the non-empty words.
// Fields are split on tabs only; tesseract does not quote text.
func ParseTSV(r io.Reader) ([]model.Word, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !sc.Scan() {
		return nil, sc.Err()
	}
	col := make(map[string]int)
	for i, name := range strings.Split(sc.Text(), "\t") {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range []string{"level", "left", "top", "width", "height", "conf", "text"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("tsv missing column %q", name)
		}
	}

	var words []model.Word
	for sc.Scan() {
		rec := strings.Split(strings.TrimRight(sc.Text(), "\r"), "\t")
		if len(rec) <= col["text"] || rec[col["level"]] != wordLevel {
			continue
		}
		text := strings.TrimSpace(rec[col["text"]])
		if text == "" {
			continue
		}
		w := model.Word{Text: text}
		w.Left, _ = strconv.Atoi(rec[col["left"]])
		w.Top, _ = strconv.Atoi(rec[col["top"]])
		w.Width, _ = strconv.Atoi(rec[col["width"]])
		w.Height, _ = strconv.Atoi(rec[col["height"]])
		w.Confidence, _ = strconv.ParseFloat(rec[col["conf"]], 64)
		words = append(words, w)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read tsv: %w", err)
	}
	return words, nil
}

// FindAnchor returns the first word of the first run of consecutive words
// matching anchor, compared case-insensitively with surrounding punctuation
// ignored.
func FindAnchor(words []model.Word, anchor []string) (model.Word, bool) {
	if len(anchor) == 0 {
		return model.Word{}, false
	}
	want := make([]string, len(anchor))
	for i, a := range anchor {
		want[i] = normalizeToken(a)
	}
	for i := 0; i+len(want) <= len(words); i++ {
		match := true
		for j, tok := range want {
			if normalizeToken(words[i+j].Text) != tok {
				match = false
				break
			}
		}
		if match {
			return words[i], true
		}
	}
	return model.Word{}, false
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	}))
}
