package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ProjectConfig holds run settings loaded from fireline.yml.
type ProjectConfig struct {
	// Model and BaseURL select the completion endpoint.
	Model   string `yaml:"model,omitempty"`
	BaseURL string `yaml:"baseUrl,omitempty"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"apiKeyEnv,omitempty"`

	// Strategy is auto, cascade, batch, or waves.
	Strategy string `yaml:"strategy,omitempty"`

	// Budget bounds the whole run; StepTimeout bounds each completion call.
	Budget      Duration `yaml:"budget,omitempty"`
	StepTimeout Duration `yaml:"stepTimeout,omitempty"`

	MaxAttempts     int     `yaml:"maxAttempts,omitempty"`
	Temperature     float64 `yaml:"temperature,omitempty"`
	MaxOutputTokens int     `yaml:"maxOutputTokens,omitempty"`

	// TemplatePath points at a template YAML file; Template names a built-in.
	TemplatePath string `yaml:"templatePath,omitempty"`
	Template     string `yaml:"template,omitempty"`

	Verbose bool `yaml:"verbose,omitempty"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "90s"
// or "2m".
type Duration time.Duration

// UnmarshalYAML decodes a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("config: duration must be a string like \"90s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// DefaultAPIKeyEnv is consulted when the config names no variable.
const DefaultAPIKeyEnv = "OPENAI_API_KEY"

// Load attempts to read fireline.yml or fireline.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"fireline.yml", "fireline.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}

// APIKey resolves the completion API key from the configured environment
// variable, falling back to DefaultAPIKeyEnv.
func (c *ProjectConfig) APIKey() string {
	env := c.APIKeyEnv
	if env == "" {
		env = DefaultAPIKeyEnv
	}
	return os.Getenv(env)
}
