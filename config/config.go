package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port            string   `yaml:"port"`
	DataDir         string   `yaml:"data_dir"`
	IndexExtensions []string `yaml:"index_extensions"`
	StorePath       string   `yaml:"store_path"`

	SplitLength  int `yaml:"split_length"`
	SplitOverlap int `yaml:"split_overlap"`
	TopK         int `yaml:"top_k"`

	EmbEndpoint  string  `yaml:"emb_endpoint"`
	EmbAPIKey    string  `yaml:"emb_api_key"`
	EmbModel     string  `yaml:"emb_model"`
	EmbBatchSize int     `yaml:"emb_batch_size"`
	EmbRateLimit float64 `yaml:"emb_rate_limit"`

	LLMModelPath   string `yaml:"llm_model_path"`
	LLMEndpoint    string `yaml:"llm_endpoint"`
	LLMContextSize int    `yaml:"llm_context_size"`
	LLMMaxTokens   int    `yaml:"llm_max_tokens"`

	APIURL    string `yaml:"api_url"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the configuration used when nothing else is set.
func Default() AppConfig {
	return AppConfig{
		Port:            "8000",
		DataDir:         "data",
		IndexExtensions: []string{".txt"},
		StorePath:       "policy_store",
		SplitLength:     10,
		SplitOverlap:    2,
		TopK:            5,
		EmbModel:        "all-MiniLM-L6-v2",
		EmbBatchSize:    32,
		LLMEndpoint:     "http://127.0.0.1:8080/v1",
		LLMContextSize:  2048,
		LLMMaxTokens:    512,
		APIURL:          "http://localhost:8000",
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load never fails: problems are logged and defaults kept.
func Load() AppConfig {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("[cfg] No .env file found or error loading: %v", err)
	}
	cfg, err := LoadFrom(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Printf("[cfg] %v; using defaults where invalid", err)
	}
	return cfg
}

// LoadFrom layers defaults, the YAML file at path (or ./config.yaml when path
// is empty and that file exists) and the environment, in that order.
func LoadFrom(path string) (AppConfig, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = "config.yaml"
	}
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Default(), fmt.Errorf("parse %s: %w", path, err)
		}
	} else if explicit {
		return Default(), fmt.Errorf("read %s: %w", path, err)
	}

	var errs []error
	get := func(k string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			*dst = v
		}
	}
	getInt := func(k string, dst *int) {
		v := strings.TrimSpace(os.Getenv(k))
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", k, err))
			return
		}
		*dst = n
	}

	get("PORT", &cfg.Port)
	get("DATA_DIR", &cfg.DataDir)
	if v := os.Getenv("INDEX_EXTENSIONS"); v != "" {
		cfg.IndexExtensions = splitList(v)
	}
	get("STORE_PATH", &cfg.StorePath)
	getInt("SPLIT_LENGTH", &cfg.SplitLength)
	getInt("SPLIT_OVERLAP", &cfg.SplitOverlap)
	getInt("TOP_K", &cfg.TopK)
	get("EMB_ENDPOINT", &cfg.EmbEndpoint)
	get("EMB_API_KEY", &cfg.EmbAPIKey)
	get("EMB_MODEL", &cfg.EmbModel)
	getInt("EMB_BATCH_SIZE", &cfg.EmbBatchSize)
	if v := strings.TrimSpace(os.Getenv("EMB_RATE_LIMIT")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("EMB_RATE_LIMIT: %w", err))
		} else {
			cfg.EmbRateLimit = f
		}
	}
	get("LLM_MODEL_PATH", &cfg.LLMModelPath)
	get("LLM_ENDPOINT", &cfg.LLMEndpoint)
	getInt("LLM_CONTEXT_SIZE", &cfg.LLMContextSize)
	getInt("LLM_MAX_TOKENS", &cfg.LLMMaxTokens)
	get("API_URL", &cfg.APIURL)
	get("LOG_LEVEL", &cfg.LogLevel)
	get("LOG_FORMAT", &cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	return cfg, errors.Join(errs...)
}

func (c AppConfig) Validate() error {
	switch {
	case c.SplitLength <= 0:
		return fmt.Errorf("split_length must be positive, got %d", c.SplitLength)
	case c.SplitOverlap < 0 || c.SplitOverlap >= c.SplitLength:
		return fmt.Errorf("split_overlap must be in [0, %d), got %d", c.SplitLength, c.SplitOverlap)
	case c.TopK <= 0:
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, ".") {
			p = "." + p
		}
		out = append(out, p)
	}
	return out
}
