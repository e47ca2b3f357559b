package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CatalogConfig selects and configures the relational source of menu items.
type CatalogConfig struct {
	Type      string           `yaml:"type"`
	Table     string           `yaml:"table"`
	Column    string           `yaml:"column"`
	SQLServer *SQLServerConfig `yaml:"sqlserver,omitempty"`
	MySQL     *MySQLConfig     `yaml:"mysql,omitempty"`
	SQLite    *SQLiteConfig    `yaml:"sqlite,omitempty"`
}

// SQLServerConfig holds connection details for a SQL Server catalog.
// With TrustedConnection set, user and password are omitted from the DSN and
// the driver falls back to ambient credentials.
type SQLServerConfig struct {
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	Database          string `yaml:"database"`
	User              string `yaml:"user"`
	PasswordEnv       string `yaml:"password_env"`
	TrustedConnection bool   `yaml:"trusted_connection"`
}

// MySQLConfig holds connection details for a MySQL catalog.
type MySQLConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Database    string `yaml:"database"`
	User        string `yaml:"user"`
	PasswordEnv string `yaml:"password_env"`
}

// SQLiteConfig holds the database file path for a SQLite catalog.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// OpenAIEmbedderConfig configures the OpenAI-compatible embedding provider.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// AzureEmbedderConfig configures an Azure OpenAI embedding deployment.
type AzureEmbedderConfig struct {
	Endpoint    string `yaml:"endpoint"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Deployment  string `yaml:"deployment"`
	APIVersion  string `yaml:"api_version"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the embedding provider implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
	Azure  *AzureEmbedderConfig  `yaml:"azure,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector index.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VectorStoreConfig selects and configures the vector index implementation.
type VectorStoreConfig struct {
	Type       string        `yaml:"type"`
	Collection string        `yaml:"collection"`
	Qdrant     *QdrantConfig `yaml:"qdrant,omitempty"`
}

// SearchConfig holds the admission policy for query results. ScoreThreshold
// is a pointer so an explicit zero (accept any non-negative cosine score)
// survives defaulting.
type SearchConfig struct {
	ScoreThreshold *float32 `yaml:"score_threshold"`
	TopK           int      `yaml:"top_k"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Catalog     CatalogConfig     `yaml:"catalog"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Search      SearchConfig      `yaml:"search"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/menusearch/config.yaml.
// If neither exists, it writes defaults to ~/.config/menusearch/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "menusearch", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Catalog:     CatalogConfig{Type: "sqlite", SQLite: &SQLiteConfig{Path: "menu.db"}},
		Embedder:    EmbedderConfig{Type: "openai"},
		VectorStore: VectorStoreConfig{Type: "memory"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Catalog.Table == "" {
		cfg.Catalog.Table = "menu_items"
	}
	if cfg.Catalog.Column == "" {
		cfg.Catalog.Column = "item_name"
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI == nil {
		cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
	}
	if cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.Embedder.Azure != nil {
		if cfg.Embedder.Azure.APIKeyEnv == "" {
			cfg.Embedder.Azure.APIKeyEnv = "AZURE_OPENAI_API_KEY"
		}
		if cfg.Embedder.Azure.APIVersion == "" {
			cfg.Embedder.Azure.APIVersion = "2023-05-15"
		}
		if cfg.Embedder.Azure.TimeoutSecs == 0 {
			cfg.Embedder.Azure.TimeoutSecs = 30
		}
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "taiwan_food_menu"
	}
	if cfg.VectorStore.Qdrant != nil {
		if cfg.VectorStore.Qdrant.APIKeyEnv == "" {
			cfg.VectorStore.Qdrant.APIKeyEnv = "QDRANT_API_KEY"
		}
		if cfg.VectorStore.Qdrant.TimeoutSecs == 0 {
			cfg.VectorStore.Qdrant.TimeoutSecs = 15
		}
	}
	if cfg.Search.ScoreThreshold == nil {
		threshold := float32(0.65)
		cfg.Search.ScoreThreshold = &threshold
	}
	if cfg.Search.TopK == 0 {
		cfg.Search.TopK = 1
	}
}
