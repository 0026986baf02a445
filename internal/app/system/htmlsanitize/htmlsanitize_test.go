package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/dexterhub/internal/app/system/htmlsanitize"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace", "   \n\t", ""},
		{"plain", "missed 3 sessions", "missed 3 sessions"},
		{"trims", "  missed 3 sessions  ", "missed 3 sessions"},
		{"strips tags", "<b>late</b> again", "late again"},
		{"drops script", "ok<script>alert('x')</script>", "ok"},
		{"keeps ampersand", "Q&A session", "Q&A session"},
		{"keeps comparison", "scored 3 < 5 > 1", "scored 3 < 5 > 1"},
		{"decodes entities", "Tom &amp; Jerry &quot;rocks&quot;", `Tom & Jerry "rocks"`},
		{"encoded tags", "&lt;b&gt;late&lt;/b&gt; again", "late again"},
		{"encoded script", "&lt;script&gt;alert(1)&lt;/script&gt;", ""},
		{"encoded img", "&lt;img src=x onerror=alert(1)&gt;", ""},
		{"double encoded script", "&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;", ""},
		{"numeric encoded tag", "hi &#60;img src=x onerror=alert(1)&#62;", "hi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.PlainText(tt.in); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPlainText_NoMarkupSurvives(t *testing.T) {
	inputs := []string{
		"&lt;script&gt;alert(1)&lt;/script&gt;",
		"&lt;img src=x onerror=alert(1)&gt;",
		"&#x3C;svg onload=alert(1)&#x3E;",
		"<<script>script>alert(1)<</script>/script>",
		"&amp;amp;lt;iframe src=x&amp;amp;gt;",
	}
	for _, in := range inputs {
		got := htmlsanitize.PlainText(in)
		for i := 0; i+1 < len(got); i++ {
			c := got[i+1]
			if got[i] == '<' && (c == '/' || c == '!' || c == '?' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')) {
				t.Errorf("PlainText(%q) = %q still contains a tag opener", in, got)
				break
			}
		}
	}
}

func TestRich_KeepsFormatting(t *testing.T) {
	in := "<p><strong>Bold</strong> and <em>italic</em></p>"
	if got := htmlsanitize.Rich(in); got != in {
		t.Errorf("expected formatting preserved, got %q", got)
	}
}

func TestRich_RemovesDangerousContent(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		forbidden string
	}{
		{"script", "<p>Hi</p><script>alert(1)</script>", "<script"},
		{"onclick", `<a href="https://example.com" onclick="x()">a</a>`, "onclick"},
		{"javascript href", `<a href="javascript:alert(1)">a</a>`, "javascript:"},
		{"iframe", `<iframe src="https://evil.example"></iframe>`, "<iframe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := htmlsanitize.Rich(tt.in)
			if strings.Contains(got, tt.forbidden) {
				t.Errorf("Rich(%q) = %q still contains %q", tt.in, got, tt.forbidden)
			}
		})
	}
}
