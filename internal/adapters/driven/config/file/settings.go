package file

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/raildocs-labs/raildocs-cli/internal/core/ports/driven"
)

// Settings is the resolved runtime configuration: TOML values with
// environment overrides applied on top. The GITHUB_* variables follow the
// GitHub Models deployment convention.
type Settings struct {
	// Provider selects the LLM backend: "openai" (any OpenAI-compatible
	// endpoint, GitHub Models by default), "ollama", or "none".
	Provider string

	// Endpoint is the provider base URL. Empty means the provider default.
	Endpoint string

	// Model is the model identifier. Empty means the provider default.
	Model string

	// Token is the API credential. Empty routes analysis to fallback mode.
	Token string

	// MaxChunkTokens is the per-chunk token budget.
	MaxChunkTokens int

	// ChunkDelay is the minimum spacing between model calls.
	ChunkDelay time.Duration

	// RetryDelay is the backoff applied after a rate-limit response.
	RetryDelay time.Duration

	// MaxAttempts bounds rate-limit retries, first attempt included.
	MaxAttempts int

	// DBPath is the sqlite database location used by the server.
	DBPath string

	// OCRLanguage is the default language hint recorded in results.
	OCRLanguage string
}

// Resolution defaults.
const (
	DefaultMaxChunkTokens = 5000
	DefaultChunkDelay     = 3 * time.Second
	DefaultRetryDelay     = 30 * time.Second
	DefaultMaxAttempts    = 3
	DefaultOCRLanguage    = "eng+mal"
)

// ResolveSettings merges configuration sources in precedence order:
// environment variables over TOML values over built-in defaults.
// The store may be nil, leaving only environment and defaults.
func ResolveSettings(store driven.ConfigStore) Settings {
	s := Settings{
		Provider:       "openai",
		MaxChunkTokens: DefaultMaxChunkTokens,
		ChunkDelay:     DefaultChunkDelay,
		RetryDelay:     DefaultRetryDelay,
		MaxAttempts:    DefaultMaxAttempts,
		OCRLanguage:    DefaultOCRLanguage,
	}
	if home, err := os.UserHomeDir(); err == nil {
		s.DBPath = filepath.Join(home, ".raildocs", "raildocs.db")
	}

	if store != nil {
		if v := store.GetString("llm.provider"); v != "" {
			s.Provider = v
		}
		if v := store.GetString("llm.endpoint"); v != "" {
			s.Endpoint = v
		}
		if v := store.GetString("llm.model"); v != "" {
			s.Model = v
		}
		if v := store.GetString("llm.token"); v != "" {
			s.Token = v
		}
		if v := store.GetInt("chunker.max_tokens"); v > 0 {
			s.MaxChunkTokens = v
		}
		if v := store.GetInt("pacing.chunk_delay_seconds"); v > 0 {
			s.ChunkDelay = time.Duration(v) * time.Second
		}
		if v := store.GetInt("pacing.retry_delay_seconds"); v > 0 {
			s.RetryDelay = time.Duration(v) * time.Second
		}
		if v := store.GetInt("pacing.max_attempts"); v > 0 {
			s.MaxAttempts = v
		}
		if v := store.GetString("storage.db_path"); v != "" {
			s.DBPath = v
		}
		if v := store.GetString("ocr.language"); v != "" {
			s.OCRLanguage = v
		}
	}

	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		s.Token = v
	}
	if v := os.Getenv("GITHUB_MODELS_ENDPOINT"); v != "" {
		s.Endpoint = v
	}
	if v := os.Getenv("GITHUB_MODELS_MODEL"); v != "" {
		s.Model = v
	}
	if v := envInt("MAX_CHUNK_TOKENS"); v > 0 {
		s.MaxChunkTokens = v
	}
	if v := envInt("CHUNK_DELAY_SECONDS"); v > 0 {
		s.ChunkDelay = time.Duration(v) * time.Second
	}
	if v := envInt("RATE_LIMIT_RETRY_DELAY"); v > 0 {
		s.RetryDelay = time.Duration(v) * time.Second
	}

	return s
}

// envInt parses an integer environment variable, 0 when absent or invalid.
func envInt(name string) int {
	v := os.Getenv(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
