package vault

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/render"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/section"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/stats"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.md"), "x")
	writeFile(t, filepath.Join(dir, "sub", "a.markdown"), "x")
	writeFile(t, filepath.Join(dir, "notes.txt"), "x")
	writeFile(t, filepath.Join(dir, ".obsidian", "hidden.md"), "x")
	explicit := filepath.Join(dir, "notes.txt")

	got, err := Collect([]string{dir, explicit, filepath.Join(dir, "b.md")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		filepath.Join(dir, "b.md"),
		filepath.Join(dir, "notes.txt"),
		filepath.Join(dir, "sub", "a.markdown"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_MissingPath(t *testing.T) {
	if _, err := Collect([]string{filepath.Join(t.TempDir(), "nope")}); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "one.md"), "# Title\nfoo bar\n## Sub\nbaz\n")
	writeFile(t, filepath.Join(dir, "two.md"), "## 你好\n你好世界\n")
	for i := range 10 {
		writeFile(t, filepath.Join(dir, "many", string(rune('a'+i))+".md"), "## H\nword\n")
	}

	st := stats.New(0)
	reports, err := Scan(context.Background(), []string{dir}, Options{
		Ranks:   section.Ranks{false, true, true, false},
		Workers: 3,
		Stats:   st,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 12 {
		t.Fatalf("expected 12 reports, got %d", len(reports))
	}
	for i := 1; i < len(reports); i++ {
		if reports[i-1].Path >= reports[i].Path {
			t.Fatalf("reports not sorted: %s before %s", reports[i-1].Path, reports[i].Path)
		}
	}

	one := reports[10]
	if filepath.Base(one.Path) != "one.md" {
		t.Fatalf("expected one.md at index 10, got %s", one.Path)
	}
	want := []section.Annotation{
		{Anchor: 7, Rank: 1, Line: 0, Words: 5, Chars: 19},
		{Anchor: 22, Rank: 2, Line: 2, Words: 1, Chars: 4},
	}
	if diff := cmp.Diff(want, one.Annotations); diff != "" {
		t.Fatalf("annotations mismatch (-want +got):\n%s", diff)
	}
	if one.Words != 7 || one.Chars != 27 {
		t.Errorf("expected totals 7/27, got %d/%d", one.Words, one.Chars)
	}

	two := reports[11]
	if len(two.Annotations) != 1 || two.Annotations[0].Words != 4 {
		t.Errorf("expected one 4-word CJK section, got %+v", two.Annotations)
	}
	if st.Snapshot().Scans != 12 {
		t.Errorf("expected 12 recorded scans, got %d", st.Snapshot().Scans)
	}
}

func TestScan_ReadError(t *testing.T) {
	if _, err := scanFile(filepath.Join(t.TempDir(), "gone.md"), Options{}); err == nil {
		t.Fatal("expected read error")
	}
}

func TestScan_NoFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "readme.txt"), "x")
	if _, err := Scan(context.Background(), []string{dir}, Options{}); !errors.Is(err, ErrNoFiles) {
		t.Fatalf("expected ErrNoFiles, got %v", err)
	}
}

func TestScan_Canceled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), "## A\na\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Scan(ctx, []string{dir}, Options{Ranks: section.AllRanks}); err == nil {
		t.Fatal("expected context error")
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	writeFile(t, path, "# Title\nfoo bar\n## Sub\nbaz\n")

	reports, err := Scan(context.Background(), []string{path}, Options{Ranks: section.AllRanks})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, reports, render.Default(), render.Metrics{Words: true}); err != nil {
		t.Fatal(err)
	}
	want := path + " (7 words)\n" +
		"  1: # Title (5 words)\n" +
		"  3: ## Sub (1 words)\n"
	if buf.String() != want {
		t.Errorf("expected:\n%q\ngot:\n%q", want, buf.String())
	}
}

func TestWrite_Outline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	writeFile(t, path, "# Title\nfoo bar\n## Sub\nbaz\n")

	reports, err := Scan(context.Background(), []string{path}, Options{Ranks: section.AllRanks, Outline: true})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, reports, render.Default(), render.Metrics{}); err != nil {
		t.Fatal(err)
	}
	want := path + "\n# Title\n  ## Sub\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}
