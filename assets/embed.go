// Package assets embeds the default companion content (riddles, memory-card
// symbols) and the SQL migrations for the results ledger.
package assets

import (
	"bufio"
	"embed"
	"io/fs"
	"strings"
)

//go:embed riddles.txt symbols.txt sql/*.sql
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
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

// RiddleLines returns the raw "question | answer | hint" lines.
func RiddleLines() ([]string, error) {
	return readLines("riddles.txt")
}

// SymbolLines returns one memory-card face per entry.
func SymbolLines() ([]string, error) {
	return readLines("symbols.txt")
}

// Migrations exposes the embedded sql/ directory.
func Migrations() (fs.FS, error) {
	return fs.Sub(FS, "sql")
}
