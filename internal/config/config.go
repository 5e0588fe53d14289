package config

import "os"

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	JWT      JWTConfig
	Wechat   WechatConfig
	CORS     CORSConfig
}

type ServerConfig struct {
	Port string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type JWTConfig struct {
	Secret      string
	Expiration  string
	Header      string
	TokenPrefix string
}

type WechatConfig struct {
	AppID            string
	AppSecret        string
	GrantType        string
	CodeToSessionURL string
	Timeout          string
}

type CORSConfig struct {
	AllowedOrigins string
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Port: getenv("PORT", "8080"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:      os.Getenv("JWT_SECRET"),
			Expiration:  getenv("JWT_EXPIRATION", "24h"),
			Header:      getenv("JWT_HEADER", "Authorization"),
			TokenPrefix: getenv("JWT_TOKEN_PREFIX", "Bearer "),
		},
		Wechat: WechatConfig{
			AppID:            os.Getenv("WECHAT_APP_ID"),
			AppSecret:        os.Getenv("WECHAT_APP_SECRET"),
			GrantType:        getenv("WECHAT_GRANT_TYPE", "authorization_code"),
			CodeToSessionURL: getenv("WECHAT_CODE_TO_SESSION_URL", "https://api.weixin.qq.com/sns/jscode2session"),
			Timeout:          getenv("WECHAT_TIMEOUT", "10s"),
		},
		CORS: CORSConfig{
			AllowedOrigins: os.Getenv("CORS_ALLOWED_ORIGINS"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
