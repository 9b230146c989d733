package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// BackendOpenAI embeds through the OpenAI embeddings API (1536 dims).
	BackendOpenAI = "openai"
	// BackendMiniLM embeds through a local text-embeddings-inference
	// service running all-MiniLM-L6-v2 (384 dims).
	BackendMiniLM = "minilm"
)

const configPathEnv = "HOTISSUE_CONFIG"

// Duration decodes YAML strings like "2s" or "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	dur, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("config: bad duration %q: %w", value.Value, err)
	}
	*d = Duration(dur)
	return nil
}

// Std converts to the standard library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds every setting the pipeline and chat surfaces need. Secrets
// come from the environment only; tunables may be overridden by an optional
// YAML file pointed at by HOTISSUE_CONFIG.
type Config struct {
	PerplexityAPIKey string `yaml:"-"`
	OpenAIAPIKey     string `yaml:"-"`

	QdrantHost   string `yaml:"qdrantHost"`
	QdrantPort   int    `yaml:"qdrantPort"`
	QdrantAPIKey string `yaml:"-"`

	EmbeddingBackend string `yaml:"embeddingBackend"`
	MiniLMURL        string `yaml:"minilmUrl"`
	CollectionName   string `yaml:"collectionName"`

	NaverClientID     string `yaml:"-"`
	NaverClientSecret string `yaml:"-"`

	APIPort    int    `yaml:"apiPort"`
	OutputDir  string `yaml:"outputDir"`
	SeenDBPath string `yaml:"seenDbPath"`
	ScheduleAt string `yaml:"scheduleAt"`

	Board BoardConfig `yaml:"board"`
	Chat  ChatConfig  `yaml:"chat"`
}

// BoardConfig describes the listing pages to walk and the pacing between
// fetches. The delays are not correctness invariants but keep the source and
// the LLM endpoint from being hammered.
type BoardConfig struct {
	ListURLTemplate string   `yaml:"listUrlTemplate"`
	PageStart       int      `yaml:"pageStart"`
	PageEnd         int      `yaml:"pageEnd"`
	StartIdx        int      `yaml:"startIdx"`
	EndIdx          int      `yaml:"endIdx"`
	MaxComments     int      `yaml:"maxComments"`
	ItemDelay       Duration `yaml:"itemDelay"`
	PageDelay       Duration `yaml:"pageDelay"`
}

// ChatConfig tunes the retrieval chat read path.
type ChatConfig struct {
	TopK  int    `yaml:"topK"`
	Model string `yaml:"model"`
}

// Dimension returns the vector size the configured embedding backend
// produces. A collection is bound to exactly one dimension for its lifetime.
func (c *Config) Dimension() int {
	if c.EmbeddingBackend == BackendMiniLM {
		return 384
	}
	return 1536
}

// Load reads the environment, applies the optional YAML override file and
// fails fast with a descriptive error naming every missing required key.
// No network call happens before Load succeeds.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.PerplexityAPIKey = os.Getenv("PERPLEXITY_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.QdrantAPIKey = os.Getenv("QDRANT_KEY")
	cfg.NaverClientID = os.Getenv("NAVER_CLIENT_ID")
	cfg.NaverClientSecret = os.Getenv("NAVER_CLIENT_SECRET")

	if v := os.Getenv("QDRANT_HOST"); v != "" {
		cfg.QdrantHost = v
	}
	if v := os.Getenv("QDRANT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: QDRANT_PORT %q is not a number", v)
		}
		cfg.QdrantPort = port
	}
	if v := os.Getenv("EMBEDDING_BACKEND"); v != "" {
		cfg.EmbeddingBackend = v
	}
	if v := os.Getenv("MINILM_URL"); v != "" {
		cfg.MiniLMURL = v
	}
	if v := os.Getenv("COLLECTION_NAME"); v != "" {
		cfg.CollectionName = v
	}
	if v := os.Getenv("API_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: API_PORT %q is not a number", v)
		}
		cfg.APIPort = port
	}

	if cfg.CollectionName == "" {
		if cfg.EmbeddingBackend == BackendMiniLM {
			cfg.CollectionName = "theqoo_documents"
		} else {
			cfg.CollectionName = "theqoo_documents_openai"
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.PerplexityAPIKey == "" {
		missing = append(missing, "PERPLEXITY_API_KEY")
	}
	if c.QdrantHost == "" {
		missing = append(missing, "QDRANT_HOST")
	}
	switch c.EmbeddingBackend {
	case BackendOpenAI:
		if c.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case BackendMiniLM:
		if c.MiniLMURL == "" {
			missing = append(missing, "MINILM_URL")
		}
	default:
		return fmt.Errorf("config: unknown embedding backend %q (want %q or %q)",
			c.EmbeddingBackend, BackendOpenAI, BackendMiniLM)
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: required environment variables not set: %s",
			strings.Join(missing, ", "))
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		QdrantPort:       6334,
		EmbeddingBackend: BackendOpenAI,
		APIPort:          8080,
		OutputDir:        ".",
		SeenDBPath:       "data/seen.db",
		ScheduleAt:       "09:00",
		Board: BoardConfig{
			ListURLTemplate: "https://theqoo.net/hot?filter_mode=normal&page=%d",
			PageStart:       2,
			PageEnd:         2,
			StartIdx:        5,
			EndIdx:          15,
			MaxComments:     30,
			ItemDelay:       Duration(2 * time.Second),
			PageDelay:       Duration(3 * time.Second),
		},
		Chat: ChatConfig{
			TopK:  5,
			Model: "sonar",
		},
	}
}
