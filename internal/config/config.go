package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

type StorageConfig struct {
	Driver    string // "s3" or "local"
	Bucket    string
	Region    string
	PublicURL string
	Dir       string
}

type Config struct {
	Port          string
	DatabaseURL   string
	JWTSecret     string
	JWTTTL        time.Duration
	Location      *time.Location
	CheckInBefore time.Duration
	CheckInAfter  time.Duration
	CORSOrigins   []string
	LogLevel      string
	LogFormat     string

	LoginRatePerSecond float64
	LoginBurst         int

	SendGrid SendGridConfig
	Twilio   TwilioConfig
	Storage  StorageConfig
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("port", "8080")
	v.SetDefault("jwt_ttl", 12*time.Hour)
	v.SetDefault("timezone", "America/Sao_Paulo")
	v.SetDefault("checkin_before", 15*time.Minute)
	v.SetDefault("checkin_after", 15*time.Minute)
	v.SetDefault("cors_origins", "*")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("login_rate_per_second", 1.0)
	v.SetDefault("login_burst", 5)
	v.SetDefault("sendgrid_from_name", "Agendamento de Salas")
	v.SetDefault("storage_driver", "local")
	v.SetDefault("storage_dir", "uploads")
	v.SetDefault("storage_public_url", "/uploads")
	v.SetDefault("s3_region", "us-east-1")
	v.AutomaticEnv()
	return v
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()
	v := newViper()

	cfg := &Config{
		Port:               v.GetString("port"),
		DatabaseURL:        v.GetString("database_url"),
		JWTSecret:          v.GetString("jwt_secret"),
		JWTTTL:             v.GetDuration("jwt_ttl"),
		CheckInBefore:      v.GetDuration("checkin_before"),
		CheckInAfter:       v.GetDuration("checkin_after"),
		CORSOrigins:        splitList(v.GetString("cors_origins")),
		LogLevel:           v.GetString("log_level"),
		LogFormat:          v.GetString("log_format"),
		LoginRatePerSecond: v.GetFloat64("login_rate_per_second"),
		LoginBurst:         v.GetInt("login_burst"),
		SendGrid: SendGridConfig{
			APIKey:    v.GetString("sendgrid_api_key"),
			FromEmail: v.GetString("sendgrid_from_email"),
			FromName:  v.GetString("sendgrid_from_name"),
		},
		Twilio: TwilioConfig{
			AccountSID: v.GetString("twilio_account_sid"),
			AuthToken:  v.GetString("twilio_auth_token"),
			FromNumber: v.GetString("twilio_from_number"),
		},
		Storage: StorageConfig{
			Driver:    strings.ToLower(v.GetString("storage_driver")),
			Bucket:    v.GetString("s3_bucket"),
			Region:    v.GetString("s3_region"),
			PublicURL: v.GetString("storage_public_url"),
			Dir:       v.GetString("storage_dir"),
		},
	}
	if cfg.Storage.Driver == "s3" && v.IsSet("s3_public_url") {
		cfg.Storage.PublicURL = v.GetString("s3_public_url")
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}
	if cfg.Storage.Driver != "s3" && cfg.Storage.Driver != "local" {
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}
	if cfg.Storage.Driver == "s3" && cfg.Storage.Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET not set")
	}

	cfg.Location = LoadLocation(v.GetString("timezone"))
	return cfg, nil
}

// LoadLocation falls back to a fixed UTC-3 zone when tzdata is unavailable.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
