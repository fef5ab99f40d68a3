package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the chatbot API service.
type Config struct {
	AppName string
	AppEnv  string
	AppPort string

	DatabaseURL string
	RedisURL    string
	JWTSecret   string

	ChromaURL        string
	ChromaCollection string
	RetrievalK       int

	AIProvider      string
	AIModel         string
	AIBaseURL       string
	OpenAIAPIKey    string
	GroqAPIKey      string
	AnthropicAPIKey string
	AITimeout       time.Duration
	AIMaxTokens     int

	AnswerCacheTTL time.Duration

	NATSURL     string
	NATSSubject string

	ChatRateLimit  int
	ChatRateWindow time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CHATBOT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Samriddhi Chatbot API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("chroma.url", "http://localhost:8000")
	v.SetDefault("chroma.collection", "college_docs")
	v.SetDefault("retrieval.k", 10)
	v.SetDefault("ai.provider", "groq")
	v.SetDefault("ai.model", "llama-3.1-8b-instant")
	v.SetDefault("ai.timeout", "30s")
	v.SetDefault("ai.max_tokens", 512)
	v.SetDefault("answer.cache_ttl", "10m")
	v.SetDefault("nats.subject", "chatbot.queries")
	v.SetDefault("chat.rate_limit", 20)
	v.SetDefault("chat.rate_window", "1m")

	aiTimeout, err := time.ParseDuration(v.GetString("ai.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid ai timeout: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("answer.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid answer cache ttl: %w", err)
	}

	rateWindow, err := time.ParseDuration(v.GetString("chat.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid chat rate window: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		JWTSecret:        v.GetString("jwt.secret"),
		ChromaURL:        v.GetString("chroma.url"),
		ChromaCollection: v.GetString("chroma.collection"),
		RetrievalK:       v.GetInt("retrieval.k"),
		AIProvider:       strings.ToLower(v.GetString("ai.provider")),
		AIModel:          v.GetString("ai.model"),
		AIBaseURL:        v.GetString("ai.base_url"),
		OpenAIAPIKey:     v.GetString("openai_api_key"),
		GroqAPIKey:       v.GetString("groq_api_key"),
		AnthropicAPIKey:  v.GetString("anthropic_api_key"),
		AITimeout:        aiTimeout,
		AIMaxTokens:      v.GetInt("ai.max_tokens"),
		AnswerCacheTTL:   cacheTTL,
		NATSURL:          v.GetString("nats.url"),
		NATSSubject:      v.GetString("nats.subject"),
		ChatRateLimit:    v.GetInt("chat.rate_limit"),
		ChatRateWindow:   rateWindow,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.RetrievalK <= 0 {
		cfg.RetrievalK = 10
	}

	return cfg, nil
}
