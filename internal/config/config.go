package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	App   AppConfig
	DB    DBConfig
	Redis RedisConfig
	Auth  AuthConfig
	OAuth OAuthConfig
}

type AppConfig struct {
	Port    string
	BaseURL string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	GithubClientID     string
	GithubClientSecret string
	GithubRedirectURL  string
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	cfg.App.Port = viper.GetString("APP_PORT")
	cfg.App.BaseURL = viper.GetString("BASE_URL")
	if cfg.App.BaseURL == "" {
		cfg.App.BaseURL = "http://localhost:" + cfg.App.Port
	}
	cfg.DB.Host = viper.GetString("DB_HOST")
	cfg.DB.Port = viper.GetString("DB_PORT")
	cfg.DB.User = viper.GetString("DB_USER")
	cfg.DB.Password = viper.GetString("DB_PASSWORD")
	cfg.DB.Name = viper.GetString("DB_NAME")
	cfg.Redis.Host = viper.GetString("REDIS_HOST")
	cfg.Redis.Port = viper.GetString("REDIS_PORT")
	cfg.Redis.Password = viper.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = viper.GetInt("REDIS_DB")

	cfg.Auth.JWTSecret = viper.GetString("JWT_SECRET")

	// OAuth config - redirect URLs default to the public base URL
	cfg.OAuth.GoogleClientID = viper.GetString("GOOGLE_CLIENT_ID")
	cfg.OAuth.GoogleClientSecret = viper.GetString("GOOGLE_CLIENT_SECRET")
	cfg.OAuth.GoogleRedirectURL = viper.GetString("GOOGLE_REDIRECT_URL")
	if cfg.OAuth.GoogleRedirectURL == "" {
		cfg.OAuth.GoogleRedirectURL = cfg.App.BaseURL + "/api/v1/auth/google/callback"
	}
	cfg.OAuth.GithubClientID = viper.GetString("GITHUB_CLIENT_ID")
	cfg.OAuth.GithubClientSecret = viper.GetString("GITHUB_CLIENT_SECRET")
	cfg.OAuth.GithubRedirectURL = viper.GetString("GITHUB_REDIRECT_URL")
	if cfg.OAuth.GithubRedirectURL == "" {
		cfg.OAuth.GithubRedirectURL = cfg.App.BaseURL + "/api/v1/auth/github/callback"
	}

	return &cfg, nil
}
