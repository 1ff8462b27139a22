package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every setting the agent process needs. Loading fails
// fast: an invalid value at startup terminates the process.
type Config struct {
	Server  ServerConfig
	Agent   AgentConfig
	AI      AIConfig
	Backend BackendConfig
	Session SessionConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	agent, err := loadAgentConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	backend, err := loadBackendConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Agent: agent, AI: ai, Backend: backend, Session: session}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "5001"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":5001" or "127.0.0.1:5001" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// Agent run modes.
const (
	ModeHTTP  = "http"
	ModeStdio = "stdio"
)

// AgentConfig describes the assistant itself: identity, run mode, system
// instructions and generation defaults.
type AgentConfig struct {
	AgentID            string
	Mode               string
	SystemInstructions string
	Language           string
	AspectRatio        string
	OutputDir          string
}

func loadAgentConfig() (AgentConfig, error) {
	mode := getEnvOrDefault("AGENT_MODE", ModeHTTP)
	if mode != ModeHTTP && mode != ModeStdio {
		return AgentConfig{}, fmt.Errorf("invalid AGENT_MODE value: %q", mode)
	}

	promptPath := getEnvOrDefault("AGENT_PROMPT_PATH", "prompt.md")
	instructions, err := os.ReadFile(promptPath)
	if err != nil {
		return AgentConfig{}, fmt.Errorf("read system instructions from %s: %w", promptPath, err)
	}
	if len(strings.TrimSpace(string(instructions))) == 0 {
		return AgentConfig{}, fmt.Errorf("system instructions file %s is empty", promptPath)
	}

	outputDir := getEnvOrDefault("AGENT_OUTPUT_DIR", ".")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return AgentConfig{}, fmt.Errorf("create output dir %s: %w", outputDir, err)
	}

	return AgentConfig{
		AgentID:            getEnvOrDefault("AGENT_ID", "product-showcase"),
		Mode:               mode,
		SystemInstructions: string(instructions),
		Language:           getEnvOrDefault("AGENT_LANGUAGE", "es"),
		AspectRatio:        getEnvOrDefault("AGENT_ASPECT_RATIO", "4:5"),
		OutputDir:          outputDir,
	}, nil
}

// AIConfig describes the text and image generation models.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	TextModel   string
	ImageModel  string
	BaseURL     string
	Region      string
	Temperature *float64
	MaxTokens   *int
}

// Enabled reports whether the required credentials are present.
func (c AIConfig) Enabled() bool {
	return c.TextModel != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds a model instance for the given model name.
func (c AIConfig) NewChatModel(ctx context.Context, modelName string) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("model credentials missing: provide ARK_API_KEY or ARK_ACCESS_KEY/ARK_SECRET_KEY plus AGENT_TEXT_MODEL")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       modelName,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	textModel := strings.TrimSpace(os.Getenv("AGENT_TEXT_MODEL"))

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		TextModel:   textModel,
		ImageModel:  getEnvOrDefault("AGENT_IMAGE_MODEL", textModel),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}, nil
}

// BackendConfig locates the composition backend.
type BackendConfig struct {
	BaseURL string
	UserID  string
}

func loadBackendConfig() (BackendConfig, error) {
	baseURL := strings.TrimSpace(os.Getenv("BACKEND_BASE_URL"))
	if baseURL == "" {
		return BackendConfig{}, fmt.Errorf("BACKEND_BASE_URL is required")
	}
	return BackendConfig{
		BaseURL: baseURL,
		UserID:  getEnvOrDefault("BACKEND_USER_ID", "showcase-agent"),
	}, nil
}

// SessionConfig tunes the session registry.
type SessionConfig struct {
	IdleTTL         time.Duration
	MaxSessions     int
	JanitorInterval time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
}

func loadSessionConfig() (SessionConfig, error) {
	idleTTL := time.Hour
	if ttl, err := parseOptionalIntEnv("SESSION_IDLE_TTL_MINUTES"); err != nil {
		return SessionConfig{}, err
	} else if ttl != nil {
		if *ttl < 1 {
			return SessionConfig{}, fmt.Errorf("SESSION_IDLE_TTL_MINUTES must be positive")
		}
		idleTTL = time.Duration(*ttl) * time.Minute
	}

	maxSessions := 100
	if override, err := parseOptionalIntEnv("SESSION_MAX"); err != nil {
		return SessionConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return SessionConfig{}, fmt.Errorf("SESSION_MAX must be positive")
		}
		maxSessions = *override
	}

	redisDB := 0
	if db, err := parseOptionalIntEnv("REDIS_DB"); err != nil {
		return SessionConfig{}, err
	} else if db != nil {
		redisDB = *db
	}

	return SessionConfig{
		IdleTTL:         idleTTL,
		MaxSessions:     maxSessions,
		JanitorInterval: 5 * time.Minute,
		RedisAddr:       strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         redisDB,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
