package content

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_EmbeddedContent(t *testing.T) {
	lib, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(lib.Riddles) != 4 {
		t.Fatalf("riddles = %d, want 4", len(lib.Riddles))
	}
	if lib.Riddles[0].Answer != "dogcow" {
		t.Fatalf("first answer = %q, want %q", lib.Riddles[0].Answer, "dogcow")
	}
	if lib.Riddles[3].Answer != "susan kare" {
		t.Fatalf("last answer = %q, want %q", lib.Riddles[3].Answer, "susan kare")
	}
	if len(lib.Symbols) != 8 {
		t.Fatalf("symbols = %d, want 8", len(lib.Symbols))
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	rp := filepath.Join(dir, "riddles.txt")
	sp := filepath.Join(dir, "symbols.txt")
	if err := os.WriteFile(rp, []byte("# c\nWhat is up? |  SKY  | look\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(sp, []byte("a\nb\na\nc\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	lib, err := Load(rp, sp)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(lib.Riddles) != 1 || lib.Riddles[0].Answer != "sky" || lib.Riddles[0].Hint != "look" {
		t.Fatalf("riddles = %+v", lib.Riddles)
	}
	if len(lib.Symbols) != 3 {
		t.Fatalf("symbols = %v, want 3 distinct", lib.Symbols)
	}
}

func TestLoad_RejectsBadContent(t *testing.T) {
	dir := t.TempDir()
	rp := filepath.Join(dir, "riddles.txt")
	if err := os.WriteFile(rp, []byte("no separator here\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(rp, ""); err == nil {
		t.Fatal("expected error for malformed riddle line")
	}

	sp := filepath.Join(dir, "symbols.txt")
	if err := os.WriteFile(sp, []byte("x\nx\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load("", sp); err == nil {
		t.Fatal("expected error for a single distinct symbol")
	}
}

func TestCanonical(t *testing.T) {
	if got := Canonical(" DogCow "); got != "dogcow" {
		t.Fatalf("Canonical = %q, want %q", got, "dogcow")
	}
}
