// Package config provides run configuration for the OMC translation
// pipeline. Configuration is loaded once per run and passed explicitly to
// every component that needs it; there is no ambient global state.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/types"
)

const (
	// EnvOpenAIAPIKey names the translation-service API key variable.
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	// EnvOpenAIBaseURL optionally points at an OpenAI-compatible endpoint.
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	// EnvUsername and EnvPassword carry the site login credentials.
	EnvUsername = "OMC_USERNAME"
	EnvPassword = "OMC_PASSWORD"
	// EnvGitHubToken authenticates pushes.
	EnvGitHubToken = "GITHUB_TOKEN"

	// DefaultSiteBaseURL is the contest site root.
	DefaultSiteBaseURL = "https://onlinemathcontest.com"
	// DefaultModel is the translation model.
	DefaultModel = "gpt-4o-mini"
	// DefaultFetchTimeout bounds one static page fetch.
	DefaultFetchTimeout = 30 * time.Second
	// DefaultBrowserTimeout bounds one headless-browser operation
	// (dynamic content extraction or a KaTeX render).
	DefaultBrowserTimeout = 20 * time.Second
	// DefaultTranslateTimeout bounds one translation call.
	DefaultTranslateTimeout = 120 * time.Second
	// DefaultMaxRetries bounds fetch and translation retry attempts.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the base backoff delay, multiplied by the
	// attempt number.
	DefaultRetryDelay = 2 * time.Second
	// DefaultMaxWait caps the wait for a contest to end, matching the
	// external CI job ceiling.
	DefaultMaxWait = 5 * time.Hour
)

// Config carries everything a run needs. RepoRoot is the checkout that
// holds the languages/ tree.
type Config struct {
	SiteBaseURL string
	RepoRoot    string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	Model         string

	Username    string
	Password    string
	GitHubToken string

	FetchTimeout     time.Duration
	BrowserTimeout   time.Duration
	TranslateTimeout time.Duration
	MaxRetries       int
	RetryDelay       time.Duration
	MaxWait          time.Duration

	Languages Languages
}

// Load builds a Config for the repository rooted at repoRoot, reading
// languages/config.json and the environment. Components that do not
// translate or push tolerate missing credentials; Require* helpers gate
// the commands that need them.
func Load(repoRoot string) (*Config, error) {
	if repoRoot == "" {
		repoRoot = "."
	}
	langs, err := LoadLanguages(filepath.Join(repoRoot, "languages", "config.json"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		SiteBaseURL:      DefaultSiteBaseURL,
		RepoRoot:         repoRoot,
		OpenAIAPIKey:     os.Getenv(EnvOpenAIAPIKey),
		OpenAIBaseURL:    os.Getenv(EnvOpenAIBaseURL),
		Model:            DefaultModel,
		Username:         os.Getenv(EnvUsername),
		Password:         os.Getenv(EnvPassword),
		GitHubToken:      os.Getenv(EnvGitHubToken),
		FetchTimeout:     DefaultFetchTimeout,
		BrowserTimeout:   DefaultBrowserTimeout,
		TranslateTimeout: DefaultTranslateTimeout,
		MaxRetries:       DefaultMaxRetries,
		RetryDelay:       DefaultRetryDelay,
		MaxWait:          DefaultMaxWait,
		Languages:        langs,
	}
	return cfg, nil
}

// RequireTranslation fails when the translation-service key is missing.
func (c *Config) RequireTranslation() error {
	if c.OpenAIAPIKey == "" {
		return types.NewAppError(types.ErrConfig, EnvOpenAIAPIKey+" is not set", nil)
	}
	return nil
}

// RequireCredentials fails when the site login credentials are missing.
func (c *Config) RequireCredentials() error {
	if c.Username == "" || c.Password == "" {
		return types.NewAppError(types.ErrConfig, EnvUsername+" / "+EnvPassword+" are not set", nil)
	}
	return nil
}

// LanguagesRoot returns the root of the published artifact tree.
func (c *Config) LanguagesRoot() string {
	return filepath.Join(c.RepoRoot, "languages")
}
