package config

import (
	"time"

	"github.com/spf13/viper"
)

type AppConf struct {
	Env            string `mapstructure:"env"`
	Port           int    `mapstructure:"port"`
	ShutdownSecond int    `mapstructure:"shutdown_seconds"`
	OpTimeoutSecs  int    `mapstructure:"op_timeout_seconds"`
}

type MongoConf struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type VerificationConf struct {
	BaseURL     string `mapstructure:"base_url"`
	RedirectURL string `mapstructure:"redirect_url"`
	TTLMillis   int64  `mapstructure:"ttl_ms"`
}

type EmailConf struct {
	BrevoAPIKey string `mapstructure:"brevo_api_key"`
	SenderEmail string `mapstructure:"sender_email"`
	SenderName  string `mapstructure:"sender_name"`
}

type JWTConf struct {
	Secret        string `mapstructure:"secret"`
	PublicKeyPath string `mapstructure:"public_key_path"`
}

type RedisConf struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
	Limit    int    `mapstructure:"limit"`
	WindowS  int    `mapstructure:"window_seconds"`
}

type MetricsConf struct {
	Addr string `mapstructure:"addr"`
}

type Config struct {
	App          AppConf          `mapstructure:"app"`
	Mongo        MongoConf        `mapstructure:"mongodb"`
	Verification VerificationConf `mapstructure:"verification"`
	Email        EmailConf        `mapstructure:"email"`
	JWT          JWTConf          `mapstructure:"jwt"`
	Redis        RedisConf        `mapstructure:"redis"`
	Metrics      MetricsConf      `mapstructure:"metrics"`
	Log          struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	// derived
	ShutdownTimeout time.Duration
	OpTimeout       time.Duration
	VerificationTTL time.Duration
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()

	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// bindEnv maps the deployment environment surface onto config keys so the
// yaml file can stay free of secrets.
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("mongodb.uri", "MONGODB_URI")
	_ = v.BindEnv("verification.base_url", "BASE_URL")
	_ = v.BindEnv("verification.redirect_url", "FRONTEND_URL")
	_ = v.BindEnv("verification.ttl_ms", "VERIFICATION_EXPIRES")
	_ = v.BindEnv("email.brevo_api_key", "BREVO_API_KEY")
	_ = v.BindEnv("email.sender_email", "SENDER_EMAIL")
	_ = v.BindEnv("jwt.secret", "JWT_SECRET")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("app.port", "PORT")
}

func applyDefaults(cfg *Config) {
	if cfg.App.Port == 0 {
		cfg.App.Port = 3000
	}
	if cfg.App.ShutdownSecond == 0 {
		cfg.App.ShutdownSecond = 15
	}
	if cfg.App.OpTimeoutSecs == 0 {
		cfg.App.OpTimeoutSecs = 10
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "fintrackeasy"
	}
	if cfg.Mongo.Collection == "" {
		cfg.Mongo.Collection = "users"
	}
	if cfg.Verification.TTLMillis == 0 {
		cfg.Verification.TTLMillis = 15 * 60 * 1000
	}
	if cfg.Verification.BaseURL == "" {
		cfg.Verification.BaseURL = "http://localhost:3000"
	}
	if cfg.Email.SenderName == "" {
		cfg.Email.SenderName = "FinTrackEasy"
	}
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "usersvc:rl"
	}
	if cfg.Redis.Limit == 0 {
		cfg.Redis.Limit = 20
	}
	if cfg.Redis.WindowS == 0 {
		cfg.Redis.WindowS = 60
	}
	cfg.ShutdownTimeout = time.Duration(cfg.App.ShutdownSecond) * time.Second
	cfg.OpTimeout = time.Duration(cfg.App.OpTimeoutSecs) * time.Second
	cfg.VerificationTTL = time.Duration(cfg.Verification.TTLMillis) * time.Millisecond
}
