package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config holds application configuration.
type Config struct {
	Port          string `validate:"required"`
	IsProduction  bool
	StoreDriver   string `validate:"oneof=memory postgres"`
	DatabaseURL   string `validate:"required_if=StoreDriver postgres"`
	EnableDBCheck bool
	JWTSecret     string `validate:"required,min=16"`

	RateLimit          string `validate:"required"`
	CORSAllowedOrigins []string
	MaxUploadBytes     int64 `validate:"gt=0"`

	PosthogAPIKey   string
	PosthogEndpoint string

	// MembersFile is an optional member register CSV loaded at startup.
	MembersFile string

	Import  ImportConfig
	Account AccountConfig
}

// ImportConfig tunes the batch processor and validation.
type ImportConfig struct {
	ChunkSize          int           `validate:"gt=0"`
	Concurrency        int           `validate:"gt=0"`
	MaxAttempts        int           `validate:"gt=0"`
	RetryDelay         time.Duration `validate:"gte=0"`
	ChunkDelay         time.Duration `validate:"gte=0"`
	HighValueThreshold int64         `validate:"gt=0"`
	AllowOverpayment   bool
	PostBatchCheck     bool
	MaxRows            int           `validate:"gte=0"` // 0 means unlimited
	SessionTTL         time.Duration `validate:"gt=0"`
}

// AccountConfig holds the chart-of-accounts codes used when posting payments.
// Both payment types debit cash; the credit side is the member receivable being settled.
type AccountConfig struct {
	Kas            string `validate:"required"`
	HutangAnggota  string `validate:"required"` // receivable from member loans (hutang)
	PiutangAnggota string `validate:"required"` // receivable from member trade credit (piutang)
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("STORE_DRIVER", StoreMemory)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("RATE_LIMIT", "120-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "https://eu.i.posthog.com")
	viper.SetDefault("MEMBERS_FILE", "")
	viper.SetDefault("IMPORT_CHUNK_SIZE", 50)
	viper.SetDefault("IMPORT_CONCURRENCY", 2)
	viper.SetDefault("IMPORT_MAX_ATTEMPTS", 3)
	viper.SetDefault("IMPORT_RETRY_DELAY", "200ms")
	viper.SetDefault("IMPORT_CHUNK_DELAY", "10ms")
	viper.SetDefault("IMPORT_POST_BATCH_CHECK", true)
	viper.SetDefault("IMPORT_MAX_ROWS", 10000)
	viper.SetDefault("IMPORT_SESSION_TTL", "2h")
	viper.SetDefault("HIGH_VALUE_THRESHOLD", 10000000)
	viper.SetDefault("ALLOW_OVERPAYMENT", false)
	viper.SetDefault("ACCOUNT_KAS", "1-1000")
	viper.SetDefault("ACCOUNT_HUTANG_ANGGOTA", "1-1200")
	viper.SetDefault("ACCOUNT_PIUTANG_ANGGOTA", "1-1300")

	viper.AutomaticEnv()

	cfg := &Config{
		Port:            viper.GetString("PORT"),
		IsProduction:    viper.GetBool("IS_PRODUCTION"),
		StoreDriver:     strings.ToLower(viper.GetString("STORE_DRIVER")),
		DatabaseURL:     viper.GetString("PGSQL_URL"),
		EnableDBCheck:   viper.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:       viper.GetString("JWT_SECRET"),
		RateLimit:       viper.GetString("RATE_LIMIT"),
		MaxUploadBytes:  viper.GetInt64("MAX_UPLOAD_BYTES"),
		PosthogAPIKey:   viper.GetString("POSTHOG_API_KEY"),
		PosthogEndpoint: viper.GetString("POSTHOG_ENDPOINT"),
		MembersFile:     viper.GetString("MEMBERS_FILE"),
		Import: ImportConfig{
			ChunkSize:          viper.GetInt("IMPORT_CHUNK_SIZE"),
			Concurrency:        viper.GetInt("IMPORT_CONCURRENCY"),
			MaxAttempts:        viper.GetInt("IMPORT_MAX_ATTEMPTS"),
			RetryDelay:         durationOrDefault("IMPORT_RETRY_DELAY", 200*time.Millisecond),
			ChunkDelay:         durationOrDefault("IMPORT_CHUNK_DELAY", 10*time.Millisecond),
			HighValueThreshold: viper.GetInt64("HIGH_VALUE_THRESHOLD"),
			AllowOverpayment:   viper.GetBool("ALLOW_OVERPAYMENT"),
			PostBatchCheck:     viper.GetBool("IMPORT_POST_BATCH_CHECK"),
			MaxRows:            viper.GetInt("IMPORT_MAX_ROWS"),
			SessionTTL:         durationOrDefault("IMPORT_SESSION_TTL", 2*time.Hour),
		},
		Account: AccountConfig{
			Kas:            viper.GetString("ACCOUNT_KAS"),
			HutangAnggota:  viper.GetString("ACCOUNT_HUTANG_ANGGOTA"),
			PiutangAnggota: viper.GetString("ACCOUNT_PIUTANG_ANGGOTA"),
		},
	}

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	if cfg.StoreDriver == StorePostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}
