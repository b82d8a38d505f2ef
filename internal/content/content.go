// internal/content/content.go
//
// Game content for the companion: the riddle sequence and the memory-card
// symbol pool.
//
// Responsibilities:
//   - Load riddles and symbols from optional files or fall back to the embedded
//     defaults in the assets package.
//   - Normalize riddle answers to their canonical form (trimmed, lowercase).
//   - Validate the pool: at least one riddle, at least two distinct symbols.
//
// File formats:
//   riddles: one riddle per line, "question | answer | hint" ('#' comments).
//   symbols: one face per line; duplicates are collapsed.
//
// Defaults are parsed once (sync.Once) and shared read-only.
package content

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/robalobadob/companion/assets"
)

// Riddle is one question in the fixed riddle sequence.
type Riddle struct {
	Question string `json:"question"`
	Answer   string `json:"-"` // canonical: trimmed + lowercase
	Hint     string `json:"hint"`
}

// Library is the loaded, validated content set.
type Library struct {
	Riddles []Riddle
	Symbols []string
}

var (
	defaultOnce sync.Once
	defaultLib  *Library
	defaultErr  error
)

// Default returns the embedded content, parsed once.
func Default() (*Library, error) {
	defaultOnce.Do(func() {
		rl, err := assets.RiddleLines()
		if err != nil {
			defaultErr = err
			return
		}
		sl, err := assets.SymbolLines()
		if err != nil {
			defaultErr = err
			return
		}
		defaultLib, defaultErr = build(rl, sl)
	})
	return defaultLib, defaultErr
}

// Load builds a Library from the given files. An empty path selects the
// embedded default for that list.
func Load(riddlesPath, symbolsPath string) (*Library, error) {
	def, err := Default()
	if err != nil {
		return nil, err
	}
	if riddlesPath == "" && symbolsPath == "" {
		return def, nil
	}

	lib := &Library{Riddles: def.Riddles, Symbols: def.Symbols}
	if riddlesPath != "" {
		lines, err := readFile(riddlesPath)
		if err != nil {
			return nil, fmt.Errorf("read riddles: %w", err)
		}
		if lib.Riddles, err = parseRiddles(lines); err != nil {
			return nil, err
		}
	}
	if symbolsPath != "" {
		lines, err := readFile(symbolsPath)
		if err != nil {
			return nil, fmt.Errorf("read symbols: %w", err)
		}
		if lib.Symbols, err = parseSymbols(lines); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

// Canonical normalizes an answer for comparison.
func Canonical(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func build(riddleLines, symbolLines []string) (*Library, error) {
	r, err := parseRiddles(riddleLines)
	if err != nil {
		return nil, err
	}
	s, err := parseSymbols(symbolLines)
	if err != nil {
		return nil, err
	}
	return &Library{Riddles: r, Symbols: s}, nil
}

func parseRiddles(lines []string) ([]Riddle, error) {
	var out []Riddle
	for i, line := range lines {
		parts := strings.Split(line, "|")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("riddle line %d: want \"question | answer | hint\"", i+1)
		}
		r := Riddle{
			Question: strings.TrimSpace(parts[0]),
			Answer:   Canonical(parts[1]),
		}
		if len(parts) == 3 {
			r.Hint = strings.TrimSpace(parts[2])
		}
		if r.Question == "" || r.Answer == "" {
			return nil, fmt.Errorf("riddle line %d: empty question or answer", i+1)
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, errors.New("content: riddle list is empty")
	}
	return out, nil
}

func parseSymbols(lines []string) ([]string, error) {
	seen := make(map[string]struct{}, len(lines))
	var out []string
	for _, s := range lines {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) < 2 {
		return nil, errors.New("content: need at least two distinct symbols")
	}
	return out, nil
}

// readFile loads non-empty, non-comment lines from path.
func readFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}
