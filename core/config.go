package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env      string // DEV (default), TEST, QA, PROD
		Debug    bool
		TestMode bool
		Build    string

		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail string
		SendgridAPIKey   string
		RollbarToken     string

		Server   ServerConfig
		Snapshot SnapshotConfig
		Billing  BillingConfig

		// BootstrapDir holds one JSON document per entity type, used to seed
		// the store when no snapshot has been persisted yet.
		BootstrapDir string
	}

	ServerConfig struct {
		Host               string
		Addr               string
		DebugAddr          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	SnapshotConfig struct {
		Backend     string // file | postgres | dummy
		Path        string
		DatabaseURL string
	}

	BillingConfig struct {
		Currency          string
		DefaultHourlyRate float64
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Darasa")
	v.SetDefault("secretKey", "e8@y#5v1^sb)o0m$+2g&woxh9(h!x)#*c7(#yg3h^$cegm5emy")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddr", ":8000")
	v.SetDefault("serverDebugAddr", ":4000")
	v.SetDefault("shutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("snapshotBackend", "file")
	v.SetDefault("snapshotPath", filepath.Join("data", "snapshot.json"))
	v.SetDefault("databaseURL", "")
	v.SetDefault("bootstrapDir", filepath.Join("data", "bootstrap"))
	v.SetDefault("billingCurrency", "EUR")
	v.SetDefault("billingDefaultHourlyRate", 50.0)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetDefault("env", env)
	v.SetDefault("testMode", env == "TEST")
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:              v.GetString("env"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		Build:            v.GetString("build"),
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: v.GetString("defaultFromEmail"),
		SendgridAPIKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               v.GetString("serverHost"),
			Addr:               v.GetString("serverAddr"),
			DebugAddr:          v.GetString("serverDebugAddr"),
			ShutdownTimeout:    v.GetDuration("shutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
		},
		Snapshot: SnapshotConfig{
			Backend:     v.GetString("snapshotBackend"),
			Path:        v.GetString("snapshotPath"),
			DatabaseURL: v.GetString("databaseURL"),
		},
		Billing: BillingConfig{
			Currency:          v.GetString("billingCurrency"),
			DefaultHourlyRate: v.GetFloat64("billingDefaultHourlyRate"),
		},
		BootstrapDir: v.GetString("bootstrapDir"),
	}
}
