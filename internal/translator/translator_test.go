package translator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/types"
)

// fakeModel replays canned responses and records the prompts it saw.
type fakeModel struct {
	responses []func(protected string) (string, error)
	calls     int
	prompts   []string
}

func (f *fakeModel) Generate(ctx context.Context, input []*schema.Message) (*schema.Message, error) {
	protected := input[len(input)-1].Content
	f.prompts = append(f.prompts, protected)
	fn := f.responses[f.calls]
	if f.calls < len(f.responses)-1 {
		f.calls++
	}
	out, err := fn(protected)
	if err != nil {
		return nil, err
	}
	return schema.AssistantMessage(out, nil), nil
}

func echo(protected string) (string, error) { return protected, nil }

func TestTranslatePreservesMathSpans(t *testing.T) {
	model := &fakeModel{responses: []func(string) (string, error){
		func(protected string) (string, error) {
			// Simulate a translation that rewrites every word but keeps markers.
			out := protected
			out = strings.ReplaceAll(out, "面積", "area")
			return out, nil
		},
	}}
	engine := NewEngineWithModel(model, 1, time.Millisecond)

	in := `<p>面積 $\frac{a\sqrt{3}}{4}$ と $$x^2+y^2=r^2$$</p>`
	got, err := engine.Translate(context.Background(), in, "task", "en")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	for _, span := range []string{`$\frac{a\sqrt{3}}{4}$`, `$$x^2+y^2=r^2$$`} {
		if !strings.Contains(got, span) {
			t.Errorf("math span %q not preserved in %q", span, got)
		}
	}
	if strings.Contains(got, "KATEX_MATH") {
		t.Errorf("placeholder leaked into output: %q", got)
	}
	if strings.Contains(got, "面積") {
		t.Errorf("content was not translated: %q", got)
	}
}

func TestTranslateModelNeverSeesTeX(t *testing.T) {
	model := &fakeModel{responses: []func(string) (string, error){echo}}
	engine := NewEngineWithModel(model, 1, time.Millisecond)

	in := `try $\sum_{i=1}^n i$ now`
	if _, err := engine.Translate(context.Background(), in, "task", "en"); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(model.prompts) != 1 {
		t.Fatalf("expected one call, got %d", len(model.prompts))
	}
	if strings.Contains(model.prompts[0], `\sum`) {
		t.Errorf("model saw raw TeX: %q", model.prompts[0])
	}
	if !strings.Contains(model.prompts[0], "<<<KATEX_MATH_0>>>") {
		t.Errorf("model did not see the placeholder: %q", model.prompts[0])
	}
}

func TestTranslateRetriesOnLostPlaceholder(t *testing.T) {
	model := &fakeModel{responses: []func(string) (string, error){
		func(string) (string, error) { return "the marker is gone", nil },
		echo,
	}}
	engine := NewEngineWithModel(model, 3, time.Millisecond)

	got, err := engine.Translate(context.Background(), "see $x$", "task", "en")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !strings.Contains(got, "$x$") {
		t.Errorf("math span missing after retry: %q", got)
	}
	if len(model.prompts) != 2 {
		t.Errorf("expected 2 attempts, got %d", len(model.prompts))
	}
}

func TestTranslateFailsAfterRetries(t *testing.T) {
	model := &fakeModel{responses: []func(string) (string, error){
		func(string) (string, error) { return "", errors.New("rate limited") },
	}}
	engine := NewEngineWithModel(model, 2, time.Millisecond)

	_, err := engine.Translate(context.Background(), "see $x$", "task", "en")
	if err == nil {
		t.Fatal("expected an error")
	}
	if types.CodeOf(err) != types.ErrTranslation {
		t.Errorf("code = %q, want %q", types.CodeOf(err), types.ErrTranslation)
	}
	if len(model.prompts) != 2 {
		t.Errorf("expected 2 attempts, got %d", len(model.prompts))
	}
}

func TestTranslateRejectsDuplicatedPlaceholder(t *testing.T) {
	model := &fakeModel{responses: []func(string) (string, error){
		func(protected string) (string, error) { return protected + " " + protected, nil },
	}}
	engine := NewEngineWithModel(model, 1, time.Millisecond)

	_, err := engine.Translate(context.Background(), "see $x$", "task", "en")
	if err == nil {
		t.Fatal("expected duplicated placeholders to be rejected")
	}
}

func TestTranslateRejectsUnbalancedTags(t *testing.T) {
	model := &fakeModel{responses: []func(string) (string, error){
		func(string) (string, error) { return "<p>half open", nil },
	}}
	engine := NewEngineWithModel(model, 1, time.Millisecond)

	_, err := engine.Translate(context.Background(), "<p>text</p>", "task", "en")
	if err == nil {
		t.Fatal("expected unbalanced output to be rejected")
	}
}

func TestVerifyIgnoresMarkersInTagCheck(t *testing.T) {
	// The raw marker would read as an unclosed <KATEX...> tag; the check
	// must run on the output with markers blanked out.
	placeholders := map[string]string{"<<<KATEX_MATH_0>>>": "$x^2$"}

	got, err := verifyAndRestore("<p>see <<<KATEX_MATH_0>>></p>", placeholders)
	if err != nil {
		t.Fatalf("verifyAndRestore: %v", err)
	}
	if got != "<p>see $x^2$</p>" {
		t.Errorf("restored = %q", got)
	}

	if _, err := verifyAndRestore("<p>see <<<KATEX_MATH_0>>>", placeholders); err == nil {
		t.Error("genuinely unbalanced output must still be rejected")
	}
}

func TestTranslateEmptyInput(t *testing.T) {
	model := &fakeModel{responses: []func(string) (string, error){echo}}
	engine := NewEngineWithModel(model, 1, time.Millisecond)

	got, err := engine.Translate(context.Background(), "   ", "task", "en")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
	if len(model.prompts) != 0 {
		t.Error("empty input must not reach the model")
	}
}

func TestCleanModelOutput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "<p>done</p>", "<p>done</p>"},
		{"fenced", "```html\n<p>done</p>\n```", "<p>done</p>"},
		{"fenced no language", "```\n<p>done</p>\n```", "<p>done</p>"},
		{"whitespace", "  <p>done</p>\n", "<p>done</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelOutput(tt.in); got != tt.want {
				t.Errorf("cleanModelOutput(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
