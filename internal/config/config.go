package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the forgereview configuration.
type Config struct {
	Reviewer  string          `mapstructure:"reviewer" yaml:"reviewer"`
	Model     string          `mapstructure:"model" yaml:"model"`
	Format    string          `mapstructure:"format" yaml:"format"`
	MaxTokens int             `mapstructure:"max_tokens" yaml:"max_tokens"`
	Forge     ForgeConfig     `mapstructure:"forge" yaml:"forge"`
	GitHub    GitHubConfig    `mapstructure:"github" yaml:"github"`
	GitLab    GitLabConfig    `mapstructure:"gitlab" yaml:"gitlab"`
	Bitbucket BitbucketConfig `mapstructure:"bitbucket" yaml:"bitbucket"`
	LLM       LLMConfig       `mapstructure:"llm" yaml:"llm"`
	History   HistoryConfig   `mapstructure:"history" yaml:"history"`
	Cache     CacheConfig     `mapstructure:"cache" yaml:"cache"`
	Privacy   PrivacyConfig   `mapstructure:"privacy" yaml:"privacy"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Manual    ManualConfig    `mapstructure:"manual" yaml:"manual"`
}

// ForgeConfig holds settings shared by every forge client.
type ForgeConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// GitHubConfig holds GitHub REST v3 settings. An empty token means
// unauthenticated, rate-limited access.
type GitHubConfig struct {
	Token  string `mapstructure:"token" yaml:"token,omitempty"`
	APIURL string `mapstructure:"api_url" yaml:"api_url"`
}

// GitLabConfig holds GitLab REST v4 settings.
type GitLabConfig struct {
	Token  string `mapstructure:"token" yaml:"token,omitempty"`
	APIURL string `mapstructure:"api_url" yaml:"api_url"`
}

// BitbucketConfig holds Bitbucket REST 2.0 settings. Basic auth is only used
// when both User and Token are set.
type BitbucketConfig struct {
	User   string `mapstructure:"user" yaml:"user,omitempty"`
	Token  string `mapstructure:"token" yaml:"token,omitempty"`
	APIURL string `mapstructure:"api_url" yaml:"api_url"`
}

// LLMConfig holds credentials and endpoints for automated reviewers.
type LLMConfig struct {
	AnthropicAPIKey string `mapstructure:"anthropic_api_key" yaml:"anthropic_api_key,omitempty"`
	OpenAIAPIKey    string `mapstructure:"openai_api_key" yaml:"openai_api_key,omitempty"`
	OpenAIBaseURL   string `mapstructure:"openai_base_url" yaml:"openai_base_url,omitempty"`
	GeminiAPIKey    string `mapstructure:"gemini_api_key" yaml:"gemini_api_key,omitempty"`
	OllamaHost      string `mapstructure:"ollama_host" yaml:"ollama_host"`
	OllamaAPIKey    string `mapstructure:"ollama_api_key" yaml:"ollama_api_key,omitempty"`
}

// HistoryConfig selects and configures the review history backend.
type HistoryConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	Path    string `mapstructure:"path" yaml:"path"`
	DSN     string `mapstructure:"dsn" yaml:"dsn,omitempty"`
}

// CacheConfig controls caching of acquired review text.
type CacheConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Dir        string `mapstructure:"dir" yaml:"dir,omitempty"`
	TTLSeconds int    `mapstructure:"ttl_seconds" yaml:"ttl_seconds"`
}

// PrivacyConfig controls redaction of diff content before it leaves the machine.
type PrivacyConfig struct {
	RedactSecrets bool `mapstructure:"redact_secrets" yaml:"redact_secrets"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr" yaml:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// LogConfig controls the zerolog logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ManualConfig controls the copy/paste hand-off reviewers.
type ManualConfig struct {
	ResponseFile string `mapstructure:"response_file" yaml:"response_file"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Reviewer:  "manual",
		Model:     "claude-sonnet-4-20250514",
		Format:    "text",
		MaxTokens: 4096,
		Forge:     ForgeConfig{Timeout: 30 * time.Second},
		GitHub:    GitHubConfig{APIURL: "https://api.github.com"},
		GitLab:    GitLabConfig{APIURL: "https://gitlab.com/api/v4"},
		Bitbucket: BitbucketConfig{APIURL: "https://api.bitbucket.org/2.0"},
		LLM:       LLMConfig{OllamaHost: "http://localhost:11434"},
		History: HistoryConfig{
			Backend: "file",
			Path:    "review_history.json",
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{RedactSecrets: true},
		Server: ServerConfig{
			Addr:           ":5000",
			RequestTimeout: 180 * time.Second,
		},
		Log:    LogConfig{Level: "info", Format: "console"},
		Manual: ManualConfig{ResponseFile: "ai_response.txt"},
	}
}

// envAliases binds keys to the bare variable names the tool has always
// honoured, in addition to the FORGEREVIEW_ prefixed form.
var envAliases = map[string][]string{
	"github.token":          {"GITHUB_TOKEN"},
	"github.api_url":        {"GITHUB_API_URL"},
	"gitlab.token":          {"GITLAB_TOKEN"},
	"bitbucket.user":        {"BITBUCKET_USER"},
	"bitbucket.token":       {"BITBUCKET_TOKEN"},
	"llm.anthropic_api_key": {"ANTHROPIC_API_KEY"},
	"llm.openai_api_key":    {"OPENAI_API_KEY"},
	"llm.gemini_api_key":    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"llm.ollama_host":       {"OLLAMA_HOST"},
}

// ConfigDir returns the platform-appropriate config directory for forgereview.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "forgereview"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "forgereview"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "forgereview"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "forgereview"), nil
	default:
		return filepath.Join(home, ".config", "forgereview"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load builds the effective config by merging:
// defaults <- config file <- .env / environment <- overrides.
// The overrides map comes from CLI flags and is keyed by dotted config keys.
func Load(overrides map[string]string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	// godotenv never overwrites variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	v.SetEnvPrefix("FORGEREVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		args := append([]string{key, "FORGEREVIEW_" + envName(key)}, names...)
		if err := v.BindEnv(args...); err != nil {
			return Config{}, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	for key, value := range overrides {
		if value != "" {
			v.Set(key, value)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("reviewer", d.Reviewer)
	v.SetDefault("model", d.Model)
	v.SetDefault("format", d.Format)
	v.SetDefault("max_tokens", d.MaxTokens)
	v.SetDefault("forge.timeout", d.Forge.Timeout)
	v.SetDefault("github.token", d.GitHub.Token)
	v.SetDefault("github.api_url", d.GitHub.APIURL)
	v.SetDefault("gitlab.token", d.GitLab.Token)
	v.SetDefault("gitlab.api_url", d.GitLab.APIURL)
	v.SetDefault("bitbucket.user", d.Bitbucket.User)
	v.SetDefault("bitbucket.token", d.Bitbucket.Token)
	v.SetDefault("bitbucket.api_url", d.Bitbucket.APIURL)
	v.SetDefault("llm.anthropic_api_key", d.LLM.AnthropicAPIKey)
	v.SetDefault("llm.openai_api_key", d.LLM.OpenAIAPIKey)
	v.SetDefault("llm.openai_base_url", d.LLM.OpenAIBaseURL)
	v.SetDefault("llm.gemini_api_key", d.LLM.GeminiAPIKey)
	v.SetDefault("llm.ollama_host", d.LLM.OllamaHost)
	v.SetDefault("llm.ollama_api_key", d.LLM.OllamaAPIKey)
	v.SetDefault("history.backend", d.History.Backend)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("history.dsn", d.History.DSN)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.ttl_seconds", d.Cache.TTLSeconds)
	v.SetDefault("privacy.redact_secrets", d.Privacy.RedactSecrets)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("manual.response_file", d.Manual.ResponseFile)
}

// LoadFile reads the config file on top of the defaults. A missing file yields
// the defaults and a nil error.
func LoadFile() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Redacted returns a copy of cfg with every credential masked, for display.
func Redacted(cfg Config) Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	cfg.GitHub.Token = mask(cfg.GitHub.Token)
	cfg.GitLab.Token = mask(cfg.GitLab.Token)
	cfg.Bitbucket.Token = mask(cfg.Bitbucket.Token)
	cfg.LLM.AnthropicAPIKey = mask(cfg.LLM.AnthropicAPIKey)
	cfg.LLM.OpenAIAPIKey = mask(cfg.LLM.OpenAIAPIKey)
	cfg.LLM.GeminiAPIKey = mask(cfg.LLM.GeminiAPIKey)
	cfg.LLM.OllamaAPIKey = mask(cfg.LLM.OllamaAPIKey)
	cfg.History.DSN = mask(cfg.History.DSN)
	return cfg
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "reviewer":
		cfg.Reviewer = value
	case "model":
		cfg.Model = value
	case "format":
		cfg.Format = value
	case "max_tokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("max_tokens must be an integer: %w", err)
		}
		cfg.MaxTokens = n
	case "forge.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("forge.timeout must be a duration: %w", err)
		}
		cfg.Forge.Timeout = d
	case "github.api_url":
		cfg.GitHub.APIURL = value
	case "gitlab.api_url":
		cfg.GitLab.APIURL = value
	case "bitbucket.api_url":
		cfg.Bitbucket.APIURL = value
	case "bitbucket.user":
		cfg.Bitbucket.User = value
	case "history.backend":
		if value != "file" && value != "postgres" {
			return fmt.Errorf("history.backend must be file or postgres, got %q", value)
		}
		cfg.History.Backend = value
	case "history.path":
		cfg.History.Path = value
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache.enabled must be a boolean: %w", err)
		}
		cfg.Cache.Enabled = b
	case "cache.ttl_seconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("cache.ttl_seconds must be an integer: %w", err)
		}
		cfg.Cache.TTLSeconds = n
	case "privacy.redact_secrets":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("privacy.redact_secrets must be a boolean: %w", err)
		}
		cfg.Privacy.RedactSecrets = b
	case "server.addr":
		cfg.Server.Addr = value
	case "log.level":
		cfg.Log.Level = value
	case "log.format":
		cfg.Log.Format = value
	case "manual.response_file":
		cfg.Manual.ResponseFile = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
