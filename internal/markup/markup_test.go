package markup

import (
	"strings"
	"testing"
)

func TestSplitMath(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		want     []Segment
		balanced bool
	}{
		{
			name:     "plain text only",
			in:       "no math here",
			want:     []Segment{{Text: "no math here"}},
			balanced: true,
		},
		{
			name: "inline math",
			in:   "let $x^2$ grow",
			want: []Segment{
				{Text: "let "},
				{Text: "$x^2$", Math: true},
				{Text: " grow"},
			},
			balanced: true,
		},
		{
			name: "display math",
			in:   "$$\\sum_{i=1}^n i$$",
			want: []Segment{
				{Text: "$$\\sum_{i=1}^n i$$", Math: true},
			},
			balanced: true,
		},
		{
			name:     "escaped dollar stays plain",
			in:       `costs \$5`,
			want:     []Segment{{Text: `costs \$5`}},
			balanced: true,
		},
		{
			name: "unclosed delimiter keeps tail as plain text",
			in:   "a $x b",
			want: []Segment{
				{Text: "a $x b"},
			},
			balanced: false,
		},
		{
			name: "adjacent spans",
			in:   "$a$$b$",
			want: []Segment{
				{Text: "$a$", Math: true},
				{Text: "$b$", Math: true},
			},
			balanced: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, balanced := SplitMath(tt.in)
			if balanced != tt.balanced {
				t.Errorf("balanced = %v, want %v", balanced, tt.balanced)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("segments = %#v, want %#v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("segment %d = %#v, want %#v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMathSpans(t *testing.T) {
	spans := MathSpans("a $x$ b $$y$$ c")
	if len(spans) != 2 || spans[0] != "$x$" || spans[1] != "$$y$$" {
		t.Errorf("MathSpans = %#v", spans)
	}
}

func TestApplyMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bold", "a **b** c", "a <strong>b</strong> c"},
		{"italic", "a *b* c", "a <em>b</em> c"},
		{"horizontal rule", "above\n***\nbelow", "above\n<hr>\nbelow"},
		{"bold wrapped in italic", "***b***", "<em><strong>b</strong></em>"},
		{"asterisks inside math untouched", "$a * b * c$", "$a * b * c$"},
		{"mixed", "*x* and $f^*(y)*g$", "<em>x</em> and $f^*(y)*g$"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyMarkdown(tt.in); got != tt.want {
				t.Errorf("ApplyMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestApplyMarkdownIdempotent(t *testing.T) {
	in := "*em* **strong** and $x*y*z$\n***\nend"
	once := ApplyMarkdown(in)
	twice := ApplyMarkdown(once)
	if once != twice {
		t.Errorf("not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
}

func TestExtractMathSource(t *testing.T) {
	fragment := `<p>Let <span class="katex"><span class="katex-mathml"><math>` +
		`<semantics><mrow><msup><mi>x</mi><mn>2</mn></msup></mrow>` +
		`<annotation encoding="application/x-tex">x^2</annotation>` +
		`</semantics></math></span><span class="katex-html">x2</span></span> be a square.</p>`

	got, err := ExtractMathSource(fragment)
	if err != nil {
		t.Fatalf("ExtractMathSource: %v", err)
	}
	if !strings.Contains(got, "$x^2$") {
		t.Errorf("expected $x^2$ in output, got %q", got)
	}
	if strings.Contains(got, "katex") {
		t.Errorf("rendered span should be gone, got %q", got)
	}
}

func TestExtractMathSourceEscapesHTML(t *testing.T) {
	fragment := `<span class="katex"><annotation encoding="application/x-tex">a &lt; b</annotation></span>`
	got, err := ExtractMathSource(fragment)
	if err != nil {
		t.Fatalf("ExtractMathSource: %v", err)
	}
	if !strings.Contains(got, "$a &lt; b$") {
		t.Errorf("expected escaped TeX, got %q", got)
	}
}

func TestExtractMathSourceWithoutAnnotation(t *testing.T) {
	fragment := `<span class="katex">already rendered</span>`
	got, err := ExtractMathSource(fragment)
	if err != nil {
		t.Fatalf("ExtractMathSource: %v", err)
	}
	if !strings.Contains(got, "katex") {
		t.Errorf("span without annotation should survive, got %q", got)
	}
}

func TestHasRawDollars(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"raw delimiter", "<p>value $x$</p>", true},
		{"clean text", "<p>no math</p>", false},
		{"dollars inside rendered span ignored", `<p><span class="katex">$ignored$</span> ok</p>`, false},
		{"dollar inside script ignored", `<script>let a = "$x$";</script><p>ok</p>`, false},
		{"escaped dollar ignored", `<p>costs \$5</p>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasRawDollars(tt.in); got != tt.want {
				t.Errorf("HasRawDollars(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRepairStrayDollars(t *testing.T) {
	t.Run("entity closer restored", func(t *testing.T) {
		in := "a $x&#36; b"
		got, repaired := RepairStrayDollars(in)
		if !repaired {
			t.Fatal("expected a repair")
		}
		if got != "a $x$ b" {
			t.Errorf("got %q", got)
		}
	})
	t.Run("balanced input untouched", func(t *testing.T) {
		in := "a $x$ b"
		got, repaired := RepairStrayDollars(in)
		if repaired || got != in {
			t.Errorf("got %q, repaired=%v", got, repaired)
		}
	})
	t.Run("unrepairable input untouched", func(t *testing.T) {
		in := "a $x b"
		got, repaired := RepairStrayDollars(in)
		if repaired || got != in {
			t.Errorf("got %q, repaired=%v", got, repaired)
		}
	})
}

func TestNormalize(t *testing.T) {
	t.Run("extracts math and applies emphasis", func(t *testing.T) {
		raw := `<p>*bold claim* <span class="katex">` +
			`<annotation encoding="application/x-tex">n+1</annotation></span></p>`
		res, err := Normalize(raw)
		if err != nil {
			t.Fatalf("Normalize: %v", err)
		}
		if res.Unbalanced {
			t.Error("unexpected unbalanced flag")
		}
		if !strings.Contains(res.HTML, "<em>bold claim</em>") {
			t.Errorf("emphasis missing: %q", res.HTML)
		}
		if !strings.Contains(res.HTML, "$n+1$") {
			t.Errorf("math source missing: %q", res.HTML)
		}
	})
	t.Run("unbalanced input skips emphasis pass", func(t *testing.T) {
		raw := "<p>*text* with $broken</p>"
		res, err := Normalize(raw)
		if err != nil {
			t.Fatalf("Normalize: %v", err)
		}
		if !res.Unbalanced {
			t.Error("expected unbalanced flag")
		}
		if strings.Contains(res.HTML, "<em>") {
			t.Errorf("emphasis must not run on unbalanced content: %q", res.HTML)
		}
	})
}
