// Package config holds the service configuration: model credentials, search
// credentials and pipeline tuning. Values come from a YAML file and
// BLOG_PIPELINE_* environment variables through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// BLOG_PIPELINE_LLM_API_KEY for llm.api_key.
const EnvPrefix = "BLOG_PIPELINE"

// Config is the root configuration.
type Config struct {
	LLM        LLMConfig      `mapstructure:"llm"`
	Image      ImageConfig    `mapstructure:"image"`
	Search     SearchConfig   `mapstructure:"search"`
	Pipeline   PipelineConfig `mapstructure:"pipeline"`
	ServerAddr string         `mapstructure:"server_addr"`
	Verbose    bool           `mapstructure:"verbose"`
}

// LLMConfig selects the chat-completion backend. Any OpenAI compatible
// endpoint (Groq, DeepSeek, a local gateway) works through BaseURL.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// ImageConfig selects the image-generation backend.
type ImageConfig struct {
	// Provider is "huggingface" or "gemini".
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
}

// SearchConfig holds the SERP API credentials.
type SearchConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	BaseURL  string `mapstructure:"base_url"`
	Domain   string `mapstructure:"domain"`
	Locale   string `mapstructure:"locale"`
	// Site is the domain searched for internal link suggestions.
	Site string `mapstructure:"site"`
}

// PipelineConfig tunes a single generation run.
type PipelineConfig struct {
	MaxImages   int    `mapstructure:"max_images"`
	Subheadings int    `mapstructure:"subheadings"`
	Format      string `mapstructure:"format"`
	WorkDir     string `mapstructure:"work_dir"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	// Empty defaults let AutomaticEnv fill these during Unmarshal. Image model
	// and base URL are resolved per provider after decoding.
	for _, key := range []string{"llm.api_key", "image.api_key", "image.model", "image.base_url", "search.username", "search.password"} {
		v.SetDefault(key, "")
	}
	v.SetDefault("verbose", false)

	v.SetDefault("llm.provider", "groq")
	v.SetDefault("llm.model", "llama-3.3-70b-versatile")
	v.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 1024)

	v.SetDefault("image.provider", "huggingface")

	v.SetDefault("search.base_url", "https://realtime.oxylabs.io/v1/queries")
	v.SetDefault("search.domain", "com")
	v.SetDefault("search.locale", "en-us")
	v.SetDefault("search.site", "marcusmcdonnell.com")

	v.SetDefault("pipeline.max_images", 3)
	v.SetDefault("pipeline.subheadings", 1)
	v.SetDefault("pipeline.format", "docx")
	v.SetDefault("pipeline.work_dir", os.TempDir())

	v.SetDefault("server_addr", ":8000")
}

// Load decodes v into a Config. Environment overrides are bound here so a
// bare viper instance behaves the same as the CLI one.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.validateShape(); err != nil {
		return Config{}, err
	}
	cfg.Image = cfg.Image.withProviderDefaults()
	return cfg, nil
}

// imageDefaults are the model and endpoint used when a provider's config
// leaves them empty. An empty BaseURL means the SDK's own endpoint.
var imageDefaults = map[string]ImageConfig{
	"huggingface": {Model: "black-forest-labs/FLUX.1-dev", BaseURL: "https://api-inference.huggingface.co/models"},
	"gemini":      {Model: "gemini-2.5-flash-image"},
}

func (c ImageConfig) withProviderDefaults() ImageConfig {
	d := imageDefaults[c.Provider]
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	return c
}

// LoadConfig reads a YAML (or JSON) config file from disk.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Load(v)
}

func (c Config) validateShape() error {
	if c.Pipeline.MaxImages < 0 {
		return errors.New("pipeline.max_images must not be negative")
	}
	if c.Pipeline.Subheadings < 1 {
		return errors.New("pipeline.subheadings must be at least 1")
	}
	if _, ok := imageDefaults[c.Image.Provider]; !ok {
		return fmt.Errorf("image.provider %q not supported (huggingface, gemini)", c.Image.Provider)
	}
	switch c.Pipeline.Format {
	case "docx", "pdf", "html":
	default:
		return fmt.Errorf("pipeline.format %q not supported (docx, pdf, html)", c.Pipeline.Format)
	}
	return nil
}

// ValidateCredentials reports missing secrets needed to talk to the real
// collaborators. Mock runs skip it.
func (c Config) ValidateCredentials() error {
	var missing []string
	if c.LLM.APIKey == "" {
		missing = append(missing, "llm.api_key")
	}
	if c.LLM.Model == "" {
		missing = append(missing, "llm.model")
	}
	if c.Image.APIKey == "" {
		missing = append(missing, "image.api_key")
	}
	if c.Search.Username == "" || c.Search.Password == "" {
		missing = append(missing, "search.username/search.password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config missing %s (set in file or %s_* env)", strings.Join(missing, ", "), EnvPrefix)
	}
	return nil
}
