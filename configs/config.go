package config

import "os"

type R2 struct {
	AccountID     string
	AccessKey     string
	SecretKey     string
	BucketName    string
	PublicBaseURL string
}

type Config struct {
	PostgresURI     string
	RedisURI        string
	FrontendURL     string
	JWTSecret       string
	SecretKey       string
	AnthropicAPIKey string
	AnthropicModel  string
	OpenAIAPIKey    string
	MetaAppID       string
	MetaAppSecret   string
	MetaRedirectURI string
	UploadDir       string
	R2              R2
}

func LoadConfig() *Config {
	return &Config{
		PostgresURI:     getEnv("POSTGRES_URI", ""),
		RedisURI:        getEnv("REDIS_URI", "localhost:6379"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		SecretKey:       getEnv("SECRET_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		MetaAppID:       getEnv("META_APP_ID", ""),
		MetaAppSecret:   getEnv("META_APP_SECRET", ""),
		MetaRedirectURI: getEnv("META_REDIRECT_URI", "http://localhost:3000/callback/meta"),
		UploadDir:       getEnv("UPLOAD_DIR", "./uploads"),
		R2: R2{
			AccountID:     getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:     getEnv("R2_ACCESS_KEY", ""),
			SecretKey:     getEnv("R2_SECRET_KEY", ""),
			BucketName:    getEnv("R2_BUCKET_NAME", ""),
			PublicBaseURL: getEnv("R2_PUBLIC_BASE_URL", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
