package recall

import (
	"reflect"
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Deep Learning", []string{"deep", "learning"}},
		{"a,b;c/d|e", []string{"a", "b", "c", "d", "e"}},
		{"  spaced   out  ", []string{"spaced", "out"}},
		{"中文，检索；测试", []string{"中文", "检索", "测试"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := tokenize(tt.in)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("tokenize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBuildTermsDropsShortAndDuplicates(t *testing.T) {
	got := buildTerms("a deep Deep learning", []string{"Graph Nets", "deep", "x"})
	want := []string{"deep", "learning", "graph nets"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("buildTerms() = %v, want %v", got, want)
	}
}

func TestBuildTermsKeepsCJKPairs(t *testing.T) {
	got := buildTerms("深度 学习", nil)
	want := []string{"深度", "学习"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("buildTerms() = %v, want %v", got, want)
	}
}

func TestSnippetCentersMatch(t *testing.T) {
	text := strings.Repeat("x", 100) + " target " + strings.Repeat("y", 100)
	got := snippet(text, "target")
	if !strings.Contains(got, "target") {
		t.Fatalf("snippet = %q, missing term", got)
	}
	if len([]rune(got)) > 2*snippetRadius+len("target")+2 {
		t.Errorf("snippet too long: %d runes", len([]rune(got)))
	}
}

func TestSnippetCollapsesWhitespace(t *testing.T) {
	got := snippet("before\n\n  match \t after", "match")
	if got != "before match after" {
		t.Errorf("snippet = %q", got)
	}
}

func TestSnippetCaseInsensitive(t *testing.T) {
	if got := snippet("The TARGET here", "target"); !strings.Contains(got, "TARGET") {
		t.Errorf("snippet = %q, want original casing preserved", got)
	}
}

func TestSnippetNoMatch(t *testing.T) {
	if got := snippet("abc", "zzz"); got != "" {
		t.Errorf("snippet = %q, want empty", got)
	}
}
