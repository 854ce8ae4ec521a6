package section

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/document"
)

func ranks(levels ...Rank) Ranks {
	var r Ranks
	for _, l := range levels {
		r[l] = true
	}
	return r
}

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		want Rank
	}{
		{"# Title", 1},
		{"## Sub", 2},
		{"### Deep", 3},
		{"#### Too deep", 0},
		{"#NoSpace", 0},
		{"##", 0},
		{" # indented", 0},
		{"plain", 0},
		{"", 0},
		{"# ", 1},
	}
	for _, tt := range tests {
		if got := Classify(tt.line); got != tt.want {
			t.Errorf("Classify(%q): expected %d, got %d", tt.line, tt.want, got)
		}
	}
}

func TestScan_TitleAndSub(t *testing.T) {
	doc := document.New("# Title\nfoo bar\n## Sub\nbaz\n")

	got := Scan(doc, ranks(1, 2))

	// The H2 never closes the H1, so the H1 runs to the end of the document.
	want := []Annotation{
		{Anchor: 7, Rank: 1, Line: 0, Words: 5, Chars: 19},
		{Anchor: 22, Rank: 2, Line: 2, Words: 1, Chars: 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("annotations mismatch (-want +got):\n%s", diff)
	}
}

func TestScan_DefaultRanksOnlyH2(t *testing.T) {
	doc := document.New("# Title\nfoo bar\n## Sub\nbaz\n")

	got := Scan(doc, ranks(2))

	want := []Annotation{{Anchor: 22, Rank: 2, Line: 2, Words: 1, Chars: 4}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("annotations mismatch (-want +got):\n%s", diff)
	}
}

func TestScan_CloseCascade(t *testing.T) {
	doc := document.New("# A\na\n## B\nb\n### C\nc\n## D\nd\n# E\ne")

	got := Scan(doc, AllRanks)

	want := []Annotation{
		{Anchor: 3, Rank: 1, Line: 0, Words: 10, Chars: 24}, // closed by "# E"
		{Anchor: 10, Rank: 2, Line: 2, Words: 4, Chars: 10}, // closed by "## D", includes "### C"
		{Anchor: 18, Rank: 3, Line: 4, Words: 1, Chars: 2},  // closed by "## D"
		{Anchor: 25, Rank: 2, Line: 6, Words: 1, Chars: 2},  // closed by "# E"
		{Anchor: 31, Rank: 1, Line: 8, Words: 1, Chars: 1},  // closed at document end
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("annotations mismatch (-want +got):\n%s", diff)
	}
}

func TestScan_H3ClosesOnlyH3(t *testing.T) {
	doc := document.New("## A\nx\n### B\ny\n### C\nz")

	got := Scan(doc, ranks(2, 3))

	if len(got) != 3 {
		t.Fatalf("expected 3 annotations, got %d", len(got))
	}
	// The H2 spans both H3 sections.
	if got[0].Rank != 2 || got[0].Words != 7 {
		t.Errorf("expected H2 with 7 words, got %+v", got[0])
	}
	if got[1].Rank != 3 || got[1].Words != 1 {
		t.Errorf("expected first H3 with 1 word, got %+v", got[1])
	}
}

func TestScan_DisabledRankNeverEmits(t *testing.T) {
	doc := document.New("# T\none\n## S\ntwo three\n")

	got := Scan(doc, ranks(2))

	want := []Annotation{{Anchor: 12, Rank: 2, Line: 2, Words: 2, Chars: 10}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("annotations mismatch (-want +got):\n%s", diff)
	}
}

func TestScan_DisabledHeaderStillClosesDeeperSections(t *testing.T) {
	doc := document.New("### a\nx\n## b\ny\n")

	got := Scan(doc, ranks(3))

	want := []Annotation{{Anchor: 5, Rank: 3, Line: 0, Words: 1, Chars: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("annotations mismatch (-want +got):\n%s", diff)
	}
}

func TestScan_EmptySections(t *testing.T) {
	doc := document.New("## A\n## B")

	got := Scan(doc, ranks(2))

	want := []Annotation{
		{Anchor: 4, Rank: 2, Line: 0},
		{Anchor: 9, Rank: 2, Line: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("annotations mismatch (-want +got):\n%s", diff)
	}
}

func TestScan_CRLF(t *testing.T) {
	doc := document.New("## A\r\nfoo\r\n")

	got := Scan(doc, ranks(2))

	want := []Annotation{{Anchor: 4, Rank: 2, Line: 0, Words: 1, Chars: 5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("annotations mismatch (-want +got):\n%s", diff)
	}
}

func TestScan_NoHeaders(t *testing.T) {
	inputs := []string{
		"",
		"just text\nmore text\n",
		"#nospace\n#### too deep\n  ## indented\n",
	}
	for _, in := range inputs {
		for _, r := range []Ranks{AllRanks, ranks(2), {}} {
			if got := Scan(document.New(in), r); len(got) != 0 {
				t.Errorf("input %q ranks %v: expected no annotations, got %v", in, r, got)
			}
		}
	}
}

func TestScan_NoRanksEnabled(t *testing.T) {
	doc := document.New("# A\ntext\n## B\nmore\n")
	if got := Scan(doc, Ranks{}); len(got) != 0 {
		t.Fatalf("expected no annotations, got %v", got)
	}
}

func TestScan_Idempotent(t *testing.T) {
	doc := document.New("# A\none two\n## B\n三四\n### C\nfive\n")
	first := Scan(doc, AllRanks)
	second := Scan(doc, AllRanks)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated scan differs (-first +second):\n%s", diff)
	}
}

func TestScan_AnchorsSorted(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	prefixes := []string{"# ", "## ", "### ", "#### ", "", "text ", "#"}

	for n := 0; n < 200; n++ {
		var b strings.Builder
		lines := rng.IntN(40)
		for i := 0; i < lines; i++ {
			b.WriteString(prefixes[rng.IntN(len(prefixes))])
			b.WriteString(strings.Repeat("w ", rng.IntN(5)))
			b.WriteByte('\n')
		}
		var r Ranks
		for l := Rank(1); l <= MaxRank; l++ {
			r[l] = rng.IntN(2) == 0
		}

		got := Scan(document.New(b.String()), r)
		for i := 1; i < len(got); i++ {
			if got[i].Anchor < got[i-1].Anchor {
				t.Fatalf("doc %d: anchors out of order at %d: %v", n, i, got)
			}
		}
		for _, a := range got {
			if !r.Enabled(a.Rank) {
				t.Fatalf("doc %d: annotation for disabled rank %d", n, a.Rank)
			}
		}
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   \n\t ", 0},
		{"hello world", 2},
		{"a b", 2},
		{"a  b", 2},
		{"a\n\n\tb", 2},
		{"你好世界", 4},
		{"hello 你好 world", 4},
		{"foo你bar", 3},
		{"日本語abc", 4},
		{"こんにちは", 1},
		{"## Sub", 2},
		{"end.", 1},
		{"\ufeffword", 1},
		{"a\u0085b", 2},
		{"a\u00a0b", 2},
	}
	for _, tt := range tests {
		if got := CountWords(tt.text); got != tt.want {
			t.Errorf("CountWords(%q): expected %d, got %d", tt.text, tt.want, got)
		}
	}
}

func TestCountChars(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"ab cd", 5},
		{"你好", 2},
		{"a\nb", 3},
		{"😀", 1},
	}
	for _, tt := range tests {
		if got := CountChars(tt.text); got != tt.want {
			t.Errorf("CountChars(%q): expected %d, got %d", tt.text, tt.want, got)
		}
	}
}
