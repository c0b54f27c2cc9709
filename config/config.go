package config

import (
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

var (
	once   sync.Once
	config *Config
)

// Config 管道配置
type Config struct {
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	EmbeddingModel  string
	ChatModel       string // scope-less conversation
	RAGModel        string // document-grounded answers
	VectorStorePath string
	CacheFilePath   string
	MaxFileSize     int64
	ChunkSize       int
	ChunkOverlap    int
	SimilarityK     int
	ServerAddr      string
}

// Get 加载配置（.env 优先，缺省回落到环境变量和默认值）
func Get() *Config {
	once.Do(func() {
		// 获取当前文件的目录
		_, filename, _, _ := runtime.Caller(0)
		configDir := filepath.Dir(filename)

		// 构建到项目根目录的路径
		rootDir := filepath.Dir(configDir)
		envPath := filepath.Join(rootDir, ".env")

		// 加载 .env 文件
		if err := godotenv.Load(envPath); err != nil {
			log.Printf("Warning: .env file not found at %s, falling back to environment variables", envPath)
		}

		config = &Config{
			OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
			OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			EmbeddingModel:  getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			ChatModel:       getEnv("CHAT_MODEL", "gpt-3.5-turbo"),
			RAGModel:        getEnv("RAG_MODEL", "gpt-4o-mini"),
			VectorStorePath: getEnv("VECTOR_STORE_PATH", "vector_stores"),
			CacheFilePath:   getEnv("CACHE_FILE_PATH", "cache_data.json"),
			MaxFileSize:     20 * 1024 * 1024, // 20MB
			ChunkSize:       getEnvInt("CHUNK_SIZE", 4000),
			ChunkOverlap:    getEnvInt("CHUNK_OVERLAP", 100),
			SimilarityK:     getEnvInt("SIMILARITY_SEARCH_K", 2),
			ServerAddr:      getEnv("SERVER_ADDR", ":8001"),
		}
	})
	return config
}

// Configured reports whether the embedding/generation credential is usable.
// Placeholder values left over from .env templates count as missing.
func (c *Config) Configured() bool {
	return c.OpenAIAPIKey != "" && c.OpenAIAPIKey != "your_openai_api_key_here"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
