// Package translator turns normalized Japanese HTML into a target
// language with an OpenAI-compatible chat model, keeping every math span
// byte-for-byte intact.
package translator

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/cloudwego/eino-ext/components/model/openai"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/config"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/logger"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/types"
)

// ChatModel is the surface of the eino chat model the engine needs.
// Accepting the minimal interface keeps the engine testable with a fake.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message) (*schema.Message, error)
}

// chatModelFunc adapts a closure to ChatModel.
type chatModelFunc func(ctx context.Context, input []*schema.Message) (*schema.Message, error)

func (f chatModelFunc) Generate(ctx context.Context, input []*schema.Message) (*schema.Message, error) {
	return f(ctx, input)
}

// Engine translates normalized HTML one (item, language) pair at a time.
type Engine struct {
	model      ChatModel
	modelName  string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
}

// NewEngine builds an Engine backed by the configured OpenAI-compatible
// endpoint.
func NewEngine(ctx context.Context, cfg *config.Config) (*Engine, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, types.NewAppError(types.ErrConfig, "translation API key is not configured", nil)
	}
	temperature := float32(0)
	mc := &openai.ChatModelConfig{
		Model:       cfg.Model,
		APIKey:      cfg.OpenAIAPIKey,
		Temperature: &temperature,
	}
	if cfg.OpenAIBaseURL != "" {
		mc.BaseURL = cfg.OpenAIBaseURL
	}
	cm, err := openai.NewChatModel(ctx, mc)
	if err != nil {
		return nil, types.NewAppError(types.ErrConfig, "failed to create chat model", err)
	}
	return &Engine{
		model: chatModelFunc(func(ctx context.Context, input []*schema.Message) (*schema.Message, error) {
			return cm.Generate(ctx, input)
		}),
		modelName:  cfg.Model,
		timeout:    cfg.TranslateTimeout,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// NewEngineWithModel builds an Engine around an existing model. Tests use
// this to substitute a fake.
func NewEngineWithModel(m ChatModel, maxRetries int, retryDelay time.Duration) *Engine {
	return &Engine{
		model:      m,
		modelName:  "custom",
		timeout:    config.DefaultTranslateTimeout,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Translate translates normalized HTML into the target language. Math
// spans are protected as placeholders for the call and restored in the
// output; an output that loses a placeholder or unbalances the tag
// structure counts as a failed attempt. Attempts are bounded; the error
// returned after exhaustion carries the TRANSLATION_ERROR code so the
// caller can skip the pair and continue.
func (e *Engine) Translate(ctx context.Context, html string, term string, lang string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	protected, placeholders := ProtectMathSpans(html)
	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt(term, lang, len(placeholders))),
		schema.UserMessage(protected),
	}

	var lastErr error
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		logger.Debug("translation attempt",
			logger.Int("attempt", attempt),
			logger.String("lang", lang),
			logger.String("model", e.modelName))

		out, err := e.generateOnce(ctx, messages)
		if err == nil {
			restored, verr := verifyAndRestore(out, placeholders)
			if verr == nil {
				return restored, nil
			}
			err = verr
		}
		lastErr = err
		logger.Warn("translation attempt failed",
			logger.Int("attempt", attempt),
			logger.String("lang", lang),
			logger.Err(err))

		if ctx.Err() != nil {
			break
		}
		if attempt < e.maxRetries {
			select {
			case <-time.After(e.retryDelay * time.Duration(attempt)):
			case <-ctx.Done():
			}
		}
	}
	return "", types.NewAppErrorWithDetails(types.ErrTranslation,
		"translation failed after retries", lang, lastErr)
}

func (e *Engine) generateOnce(ctx context.Context, messages []*schema.Message) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	msg, err := e.model.Generate(callCtx, messages)
	if err != nil {
		return "", types.NewAppError(types.ErrTranslation, "chat completion failed", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", types.NewAppError(types.ErrTranslation, "model returned empty content", nil)
	}
	return cleanModelOutput(msg.Content), nil
}

// verifyAndRestore checks the model output: every placeholder must
// survive exactly once and the tag structure must stay balanced. The
// balance check runs with the placeholder markers blanked out: the
// markers are not HTML, and restored math may carry bare < and > in TeX
// source. On success the math spans are restored.
func verifyAndRestore(out string, placeholders map[string]string) (string, error) {
	if missing := missingPlaceholders(out, placeholders); len(missing) > 0 {
		return "", types.NewAppErrorWithDetails(types.ErrTranslation,
			"model output lost math spans", strings.Join(missing, ", "), nil)
	}
	if stray := strayPlaceholders(out, placeholders); len(stray) > 0 {
		return "", types.NewAppErrorWithDetails(types.ErrTranslation,
			"model output duplicated or invented math spans", strings.Join(stray, ", "), nil)
	}
	if !tagStructureBalanced(mathPlaceholderPattern.ReplaceAllString(out, "")) {
		return "", types.NewAppError(types.ErrTranslation, "model output has unbalanced HTML tags", nil)
	}
	return RestoreMathSpans(out, placeholders), nil
}

// cleanModelOutput strips the code fences some models wrap HTML in.
func cleanModelOutput(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	return s
}

func systemPrompt(term, lang string, placeholderCount int) string {
	target := config.DisplayName(lang)
	var sb strings.Builder
	sb.WriteString("The text you are about to receive is an HTML-formatted math ")
	sb.WriteString(term)
	sb.WriteString(" written in Japanese.\n")
	sb.WriteString("Translate all sentences into ")
	sb.WriteString(target)
	sb.WriteString(", preserving the HTML structure exactly: tags, attributes, ")
	sb.WriteString("class names, and line breaks stay as they are.\n")
	if placeholderCount > 0 {
		sb.WriteString("Formulas have been replaced by <<<KATEX_MATH_n>>> markers. ")
		sb.WriteString("Keep every marker exactly where it belongs in the translated text; ")
		sb.WriteString("never translate, drop, duplicate, or renumber a marker.\n")
	}
	sb.WriteString("Return ONLY the translated HTML; do not wrap it in extra tags or code fences.\n")
	sb.WriteString("If the input is empty, return empty output. The content may be long: translate it fully.")
	return sb.String()
}
