// Package config loads odc settings: defaults, then an optional YAML file,
// then ODC_* environment variables. Command-line flags are applied on top by
// the commands themselves.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/DiogoHD/LLM-and-ODC/internal/confusion"
	"github.com/DiogoHD/LLM-and-ODC/internal/llm"
	"github.com/DiogoHD/LLM-and-ODC/internal/logging"
)

// Config holds all odc configuration.
type Config struct {
	ResponsesDir string `envconfig:"ODC_RESPONSES_DIR" yaml:"responses_dir"`
	DataDir      string `envconfig:"ODC_DATA_DIR" yaml:"data_dir"`
	GroundTruth  string `envconfig:"ODC_GROUND_TRUTH" yaml:"ground_truth"`
	DBPath       string `envconfig:"ODC_DB_PATH" yaml:"db_path"`

	Log      LogConfig      `yaml:"log"`
	Eval     EvalConfig     `yaml:"eval"`
	Classify ClassifyConfig `yaml:"classify"`
	GitHub   GitHubConfig   `yaml:"github"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"ODC_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"ODC_LOG_FORMAT" yaml:"format"`
}

// EvalConfig holds scoring settings.
type EvalConfig struct {
	OnlyOneClassification bool `envconfig:"ODC_ONLY_ONE_CLASSIFICATION" yaml:"only_one_classification"`
	Canonicalize          bool `envconfig:"ODC_CANONICALIZE" yaml:"canonicalize"`
	Workers               int  `envconfig:"ODC_EVAL_WORKERS" yaml:"workers"`
	// Categories lists the confusion-matrix categories; each entry is one
	// field or several fields joined into a composite label.
	Categories [][]string `yaml:"categories" ignored:"true"`
}

// ClassifyConfig holds model invocation settings.
type ClassifyConfig struct {
	Provider      string   `envconfig:"ODC_PROVIDER" yaml:"provider"`
	BaseURL       string   `envconfig:"ODC_BASE_URL" yaml:"base_url"`
	APIKey        string   `envconfig:"ODC_API_KEY" yaml:"api_key"`
	Models        []string `envconfig:"ODC_MODELS" yaml:"models"`
	Workers       int      `envconfig:"ODC_CLASSIFY_WORKERS" yaml:"workers"`
	MaxTokens     int      `envconfig:"ODC_MAX_TOKENS" yaml:"max_tokens"`
	MaxPatchBytes int      `envconfig:"ODC_MAX_PATCH_BYTES" yaml:"max_patch_bytes"`
	Instruction   string   `envconfig:"ODC_INSTRUCTION" yaml:"instruction"`
}

// GitHubConfig holds commit fetching settings.
type GitHubConfig struct {
	BaseURL           string            `envconfig:"ODC_GITHUB_URL" yaml:"base_url"`
	Token             string            `envconfig:"ODC_GITHUB_TOKEN" yaml:"token"`
	RequestsPerSecond float64           `envconfig:"ODC_GITHUB_RPS" yaml:"requests_per_second"`
	Projects          map[string]string `envconfig:"ODC_GITHUB_PROJECTS" yaml:"projects"`
}

// Providers accepted in classify.provider.
const (
	ProviderOpenAI    = llm.ProviderOpenAI
	ProviderAnthropic = llm.ProviderAnthropic
)

// DefaultInstruction is the classification prompt placed before every file.
const DefaultInstruction = "A defect type can be one of the following categories: " +
	"1) Assignment/Initialization: a problem related to an assignment of a variable or no assignment at all; " +
	"2) Checking: a problem with conditional logic (e.g., condition in a if-clause or in a loop); " +
	"3) Timing: a problem with serialization of shared resources; " +
	"4) Algorithm/Method: a problem with implementation that does not require a design change to be fixed; " +
	"5) Function: a problem that needs a reasonable amount of code to be fixed due to incorrect implementation or no implementation at all; " +
	"6) Interface: a problem in the interaction between components (e.g., parameter list). " +
	"On the other hand, a defect qualifier can be one of the following categories: " +
	"1) Missing: new code needs to be added to fix the defect; " +
	"2) Incorrect: the code is incorrectly implemented and needs adjustment to fix the defect; " +
	"3) Extraneous: unnecessary. " +
	"With this in mind, what's the defect type and defect qualifier of the orthogonal defect classification (ODC) in the following commit?"

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Load builds the configuration. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func setDefaults(cfg *Config) {
	cfg.ResponsesDir = "output"
	cfg.DataDir = "data"
	cfg.GroundTruth = "data/vulnerabilities.xlsx"
	cfg.DBPath = "data/odc.db"

	cfg.Log.Level = "info"
	cfg.Log.Format = "text"

	cfg.Eval.Canonicalize = true
	cfg.Eval.Workers = 8
	cfg.Eval.Categories = [][]string{
		{"Defect Type"},
		{"Defect Qualifier"},
		{"Defect Type", "Defect Qualifier"},
	}

	cfg.Classify.Provider = ProviderOpenAI
	cfg.Classify.BaseURL = "http://localhost:11434/v1"
	cfg.Classify.APIKey = "ollama"
	cfg.Classify.Workers = 4
	cfg.Classify.MaxTokens = 4096
	cfg.Classify.MaxPatchBytes = 64 << 10
	cfg.Classify.Instruction = DefaultInstruction

	cfg.GitHub.BaseURL = "https://api.github.com"
	cfg.GitHub.RequestsPerSecond = 1
	cfg.GitHub.Projects = map[string]string{
		"Linux":   "torvalds/linux",
		"Mozilla": "mozilla/gecko-dev",
		"Xen":     "xen-project/xen",
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []string

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be text or json)", c.Log.Format))
	}

	if c.Eval.Workers < 1 {
		errs = append(errs, "eval.workers must be positive")
	}
	if len(c.Eval.Categories) == 0 {
		errs = append(errs, "eval.categories must not be empty")
	}
	for _, fields := range c.Eval.Categories {
		if _, err := confusion.CategoryFromFields(fields); err != nil {
			errs = append(errs, fmt.Sprintf("invalid eval category %v: %v", fields, err))
		}
	}

	switch c.Classify.Provider {
	case ProviderOpenAI:
	case ProviderAnthropic:
		if len(c.Classify.Models) == 0 {
			errs = append(errs, "classify.models is required for the anthropic provider")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid provider: %s (must be openai or anthropic)", c.Classify.Provider))
	}
	if c.Classify.Workers < 1 {
		errs = append(errs, "classify.workers must be positive")
	}
	if c.Classify.MaxTokens < 1 {
		errs = append(errs, "classify.max_tokens must be positive")
	}
	if c.Classify.MaxPatchBytes < 0 {
		errs = append(errs, "classify.max_patch_bytes must not be negative")
	}

	if c.GitHub.RequestsPerSecond <= 0 {
		errs = append(errs, "github.requests_per_second must be positive")
	}
	for name, repo := range c.GitHub.Projects {
		if owner, r, ok := strings.Cut(repo, "/"); !ok || owner == "" || r == "" {
			errs = append(errs, fmt.Sprintf("invalid repository for project %s: %q (want owner/repo)", name, repo))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Categories parses Eval.Categories.
func (c *Config) Categories() ([]confusion.Category, error) {
	out := make([]confusion.Category, 0, len(c.Eval.Categories))
	for _, fields := range c.Eval.Categories {
		cat, err := confusion.CategoryFromFields(fields)
		if err != nil {
			return nil, err
		}
		out = append(out, cat)
	}
	return out, nil
}
