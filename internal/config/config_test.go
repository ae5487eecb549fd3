package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/types"
)

func TestOrderLanguages(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []string
		wantErr bool
	}{
		{"en promoted to front", []string{"fr", "en", "de"}, []string{"en", "fr", "de"}, false},
		{"en only", []string{"en"}, []string{"en"}, false},
		{"duplicates removed", []string{"en", "fr", "fr"}, []string{"en", "fr"}, false},
		{"source language dropped", []string{"en", "ja", "ko"}, []string{"en", "ko"}, false},
		{"missing en", []string{"fr", "de"}, nil, true},
		{"invalid code", []string{"en", "not-a-language-code"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OrderLanguages(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				if types.CodeOf(err) != types.ErrConfig {
					t.Errorf("code = %q, want CONFIG_ERROR", types.CodeOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("OrderLanguages: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("index %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoadLanguages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"languages":["zh","en","fr"]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	langs, err := LoadLanguages(path)
	if err != nil {
		t.Fatalf("LoadLanguages: %v", err)
	}
	if langs[0] != "en" {
		t.Errorf("first language = %q, want en", langs[0])
	}
	rest := langs.Rest()
	if len(rest) != 2 || rest[0] != "zh" || rest[1] != "fr" {
		t.Errorf("Rest() = %v", rest)
	}
}

func TestLoadLanguagesMissingFile(t *testing.T) {
	_, err := LoadLanguages(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected an error")
	}
	if types.CodeOf(err) != types.ErrConfig {
		t.Errorf("code = %q, want CONFIG_ERROR", types.CodeOf(err))
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"en", "English"},
		{"fr", "French"},
		{"ja", "Japanese"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.code); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
	if got := DisplayName("!!"); got != "!!" {
		t.Errorf("invalid code should echo back, got %q", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "languages"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "languages", "config.json"),
		[]byte(`{"languages":["en","de"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvOpenAIAPIKey, "test-key")
	t.Setenv(EnvUsername, "alice")
	t.Setenv(EnvPassword, "secret")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SiteBaseURL != DefaultSiteBaseURL {
		t.Errorf("SiteBaseURL = %q", cfg.SiteBaseURL)
	}
	if err := cfg.RequireTranslation(); err != nil {
		t.Errorf("RequireTranslation: %v", err)
	}
	if err := cfg.RequireCredentials(); err != nil {
		t.Errorf("RequireCredentials: %v", err)
	}
	if cfg.LanguagesRoot() != filepath.Join(dir, "languages") {
		t.Errorf("LanguagesRoot = %q", cfg.LanguagesRoot())
	}
}

func TestRequireTranslationMissingKey(t *testing.T) {
	cfg := &Config{}
	if err := cfg.RequireTranslation(); err == nil {
		t.Error("expected an error without an API key")
	}
	if err := cfg.RequireCredentials(); err == nil {
		t.Error("expected an error without credentials")
	}
}
