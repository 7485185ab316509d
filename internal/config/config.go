package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/boxscore/internal/ai"
)

// Config is the root configuration shared by the serve and aggregate commands.
type Config struct {
	Server    ServerConfig
	LLM       LLMConfig
	Scoring   ScoringConfig
	Aggregate AggregateConfig
}

// ServerConfig controls where the score service listens.
type ServerConfig struct {
	Host string `validate:"required"`
	Port int    `validate:"min=1,max=65535"`
}

// Addr returns host:port for the listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LLMConfig selects and configures the external text-generation API.
type LLMConfig struct {
	Provider          string        `validate:"oneof=openai anthropic"`
	BaseURL           string        `validate:"omitempty,url"`
	Model             string        `validate:"required"`
	APIKey            string        // expanded from env var by Load
	MaxTokens         int           `validate:"min=1,max=4096"`
	Timeout           time.Duration `validate:"gt=0"`
	RequestsPerSecond float64       `validate:"min=0"` // 0 disables outbound pacing
}

// ScoringConfig picks between the single-call and the averaging predictor.
type ScoringConfig struct {
	Strategy string `validate:"oneof=single averaged"`
	Runs     int    `validate:"min=1,max=20"` // only used by the averaged strategy
}

// AggregateConfig drives the offline aggregation command.
type AggregateConfig struct {
	ServiceURL       string        `validate:"required,url"`
	Timeout          time.Duration `validate:"gt=0"`
	DataDir          string
	Files            DatasetFiles
	Output           string  `validate:"required"`
	BrandFallback    float64 `validate:"gte=1,lte=5"`
	PremiumThreshold float64 `validate:"gte=0"`
}

// DatasetFiles names the CSV exports read by the aggregate command.
type DatasetFiles struct {
	BoxRatings       string `yaml:"box_ratings" validate:"required"`
	BoxContents      string `yaml:"box_contents" validate:"required"`
	ProductInfo      string `yaml:"product_info" validate:"required"`
	ProductInfoAlt   string `yaml:"product_info_alt" validate:"required"`
	BrandAverages    string `yaml:"brand_averages" validate:"required"`
	CategoryAverages string `yaml:"category_averages" validate:"required"`
	FutureBox        string `yaml:"future_box" validate:"required"`
}

// Path resolves a dataset file name against DataDir. Absolute names are kept.
func (a AggregateConfig) Path(name string) string {
	if filepath.IsAbs(name) || a.DataDir == "" {
		return name
	}
	return filepath.Join(a.DataDir, name)
}

const (
	defaultOpenAIBaseURL  = "https://api.openai.com/v1"
	defaultOpenAIModel    = "o1-mini"
	defaultAnthropicModel = "claude-3-5-haiku-latest"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Server    rawServerConfig    `yaml:"server"`
	LLM       rawLLMConfig       `yaml:"llm"`
	Scoring   rawScoringConfig   `yaml:"scoring"`
	Aggregate rawAggregateConfig `yaml:"aggregate"`
}

type rawServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type rawLLMConfig struct {
	Provider          string  `yaml:"provider"`
	BaseURL           string  `yaml:"base_url"`
	Model             string  `yaml:"model"`
	APIKey            string  `yaml:"api_key"`
	MaxTokens         int     `yaml:"max_tokens"`
	Timeout           string  `yaml:"timeout"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

type rawScoringConfig struct {
	Strategy string `yaml:"strategy"`
	Runs     int    `yaml:"runs"`
}

type rawAggregateConfig struct {
	ServiceURL       string       `yaml:"service_url"`
	Timeout          string       `yaml:"timeout"`
	DataDir          string       `yaml:"data_dir"`
	Files            DatasetFiles `yaml:"files"`
	Output           string       `yaml:"output"`
	BrandFallback    *float64     `yaml:"brand_fallback"`
	PremiumThreshold *float64     `yaml:"premium_threshold"`
}

var validate = validator.New()

// Load reads and parses the YAML config file at path, applies defaults and
// environment overrides, validates it, and returns Config.
// An empty path yields the defaults plus environment overrides.
func Load(path string) (*Config, error) {
	var raw rawConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		// Expand environment variables
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg, err := fromRaw(raw)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks field constraints. Commands call it again after applying flag overrides.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	// The averaged strategy pins temperature to 0, which these models refuse.
	if c.Scoring.Strategy == "averaged" && c.LLM.Provider == "openai" && ai.IsFixedTemperatureModel(c.LLM.Model) {
		return fmt.Errorf("validate config: scoring.strategy averaged sends temperature 0, but llm.model %q fixes temperature at 1; set llm.model to a model that accepts temperature (e.g. gpt-4o-mini)", c.LLM.Model)
	}
	return nil
}

func fromRaw(raw rawConfig) (*Config, error) {
	var err error

	host := raw.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := raw.Server.Port
	if port == 0 {
		port = 5000
	}
	if env := os.Getenv("PORT"); env != "" {
		port, err = strconv.Atoi(env)
		if err != nil {
			return nil, fmt.Errorf("parse PORT %q: %w", env, err)
		}
	}

	provider := raw.LLM.Provider
	if provider == "" {
		provider = "openai"
	}

	model := raw.LLM.Model
	baseURL := raw.LLM.BaseURL
	apiKey := raw.LLM.APIKey
	switch provider {
	case "openai":
		if model == "" {
			model = defaultOpenAIModel
		}
		if baseURL == "" {
			baseURL = defaultOpenAIBaseURL
		}
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
	case "anthropic":
		if model == "" {
			model = defaultAnthropicModel
		}
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}

	maxTokens := raw.LLM.MaxTokens
	if maxTokens == 0 {
		maxTokens = 100
	}

	llmTimeout := 60 * time.Second // default
	if raw.LLM.Timeout != "" {
		llmTimeout, err = time.ParseDuration(raw.LLM.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse llm.timeout %q: %w", raw.LLM.Timeout, err)
		}
	}

	strategy := raw.Scoring.Strategy
	if strategy == "" {
		strategy = "single"
	}
	runs := raw.Scoring.Runs
	if runs == 0 {
		runs = 5
	}

	aggTimeout := 2 * time.Minute // default
	if raw.Aggregate.Timeout != "" {
		aggTimeout, err = time.ParseDuration(raw.Aggregate.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse aggregate.timeout %q: %w", raw.Aggregate.Timeout, err)
		}
	}

	serviceURL := raw.Aggregate.ServiceURL
	if serviceURL == "" {
		serviceURL = "http://localhost:5000"
	}
	output := raw.Aggregate.Output
	if output == "" {
		output = "predicted_box_score.csv"
	}
	brandFallback := 3.5
	if raw.Aggregate.BrandFallback != nil {
		brandFallback = *raw.Aggregate.BrandFallback
	}
	premiumThreshold := 20.0
	if raw.Aggregate.PremiumThreshold != nil {
		premiumThreshold = *raw.Aggregate.PremiumThreshold
	}

	return &Config{
		Server: ServerConfig{Host: host, Port: port},
		LLM: LLMConfig{
			Provider:          provider,
			BaseURL:           baseURL,
			Model:             model,
			APIKey:            apiKey,
			MaxTokens:         maxTokens,
			Timeout:           llmTimeout,
			RequestsPerSecond: raw.LLM.RequestsPerSecond,
		},
		Scoring: ScoringConfig{Strategy: strategy, Runs: runs},
		Aggregate: AggregateConfig{
			ServiceURL:       serviceURL,
			Timeout:          aggTimeout,
			DataDir:          raw.Aggregate.DataDir,
			Files:            withDefaultFiles(raw.Aggregate.Files),
			Output:           output,
			BrandFallback:    brandFallback,
			PremiumThreshold: premiumThreshold,
		},
	}, nil
}

func withDefaultFiles(f DatasetFiles) DatasetFiles {
	def := func(v, d string) string {
		if v == "" {
			return d
		}
		return v
	}
	return DatasetFiles{
		BoxRatings:       def(f.BoxRatings, "box_ratings.csv"),
		BoxContents:      def(f.BoxContents, "box_contents.csv"),
		ProductInfo:      def(f.ProductInfo, "product_info.csv"),
		ProductInfoAlt:   def(f.ProductInfoAlt, "product_info_alt.csv"),
		BrandAverages:    def(f.BrandAverages, "brand_averages.csv"),
		CategoryAverages: def(f.CategoryAverages, "category_averages.csv"),
		FutureBox:        def(f.FutureBox, "future_box.csv"),
	}
}

// RequireAPIKey reports the missing provider key. The score service refuses
// to start without one.
func (c *Config) RequireAPIKey() error {
	if c.LLM.APIKey != "" {
		return nil
	}
	switch c.LLM.Provider {
	case "anthropic":
		return fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
	default:
		return fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}
}
