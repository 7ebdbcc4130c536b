package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteChapterFile writes a markdown chapter file with roughly the
// requested number of words and returns its path.
func WriteChapterFile(t testing.TB, dir, name string, words int) string {
	t.Helper()

	if words <= 0 {
		words = 1
	}
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(name)
	b.WriteString("\n\n")
	for i := 0; i < words; i++ {
		b.WriteString("word ")
		if i%12 == 11 {
			b.WriteString("sentence ends here.\n")
		}
	}
	b.WriteString("\n")

	path := filepath.Join(dir, name+".md")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
