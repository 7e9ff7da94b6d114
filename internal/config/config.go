package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort    string `mapstructure:"http_port"`
	PostgresDSN string `mapstructure:"database_url"`
	RedisAddr   string `mapstructure:"redis_addr"`
	JWTSecret   string `mapstructure:"jwt_secret"`

	// PublicBaseURL is where emailed links (password reset) point.
	PublicBaseURL string `mapstructure:"public_base_url"`

	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	ResetTokenTTL   time.Duration `mapstructure:"reset_token_ttl"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`

	DBMaxOpenConns int           `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns int           `mapstructure:"db_max_idle_conns"`
	DBConnMaxIdle  time.Duration `mapstructure:"db_conn_max_idle"`
	DBConnMaxLife  time.Duration `mapstructure:"db_conn_max_life"`

	Mail struct {
		BaseURL    string `mapstructure:"base_url"`
		APIKey     string `mapstructure:"api_key"`
		From       string `mapstructure:"from"`
		AdminInbox string `mapstructure:"admin_inbox"`
	} `mapstructure:"mail"`

	Blob struct {
		BaseURL string `mapstructure:"base_url"`
		Preset  string `mapstructure:"preset"`
	} `mapstructure:"blob"`

	Federated struct {
		TokenInfoURL string `mapstructure:"tokeninfo_url"`
		ClientID     string `mapstructure:"client_id"`
	} `mapstructure:"federated"`

	CORSOrigins []string `mapstructure:"cors_origins"`
}

func Load() *Config {
	viper.SetDefault("http_port", "8080")
	viper.SetDefault("access_token_ttl", 15*time.Minute)
	viper.SetDefault("refresh_token_ttl", 30*24*time.Hour)
	viper.SetDefault("reset_token_ttl", time.Hour)
	viper.SetDefault("request_timeout", 10*time.Second)
	viper.SetDefault("db_max_open_conns", 25)
	viper.SetDefault("db_max_idle_conns", 10)
	viper.SetDefault("db_conn_max_idle", 5*time.Minute)
	viper.SetDefault("db_conn_max_life", 30*time.Minute)
	viper.SetDefault("federated.tokeninfo_url", "https://oauth2.googleapis.com/tokeninfo")
	viper.SetDefault("cors_origins", []string{"http://localhost:3000"})
	viper.SetDefault("public_base_url", "http://localhost:3000")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	_ = viper.ReadInConfig()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.BindEnv("http_port", "HTTP_PORT")
	_ = viper.BindEnv("database_url", "DATABASE_URL")
	_ = viper.BindEnv("redis_addr", "REDIS_ADDR")
	_ = viper.BindEnv("jwt_secret", "JWT_SECRET")
	_ = viper.BindEnv("public_base_url", "PUBLIC_BASE_URL")
	_ = viper.BindEnv("mail.base_url", "MAIL_BASE_URL")
	_ = viper.BindEnv("mail.api_key", "MAIL_API_KEY")
	_ = viper.BindEnv("mail.from", "MAIL_FROM")
	_ = viper.BindEnv("mail.admin_inbox", "MAIL_ADMIN_INBOX")
	_ = viper.BindEnv("blob.base_url", "BLOB_BASE_URL")
	_ = viper.BindEnv("blob.preset", "BLOB_PRESET")
	_ = viper.BindEnv("federated.tokeninfo_url", "FEDERATED_TOKENINFO_URL")
	_ = viper.BindEnv("federated.client_id", "FEDERATED_CLIENT_ID")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("config error: %v", err)
	}

	if cfg.PostgresDSN == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	return &cfg
}
