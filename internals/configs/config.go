package configs

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

/* =======================
   ENV LOADER
======================= */

func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ No .env file found, using system ENV")
		} else {
			log.Println("✅ .env file loaded")
		}
	} else {
		log.Println("🚀 Running on Railway, using system ENV")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func GetEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

/* =======================
   APP CONFIG

   Explicitly loaded and injected into services; call Reload()
   after env/settings changes instead of re-reading os.Getenv
   at every call site.
======================= */

type AppConfig struct {
	JWTSecret string

	SquadSecretKey string
	SquadPublicKey string
	SquadBaseURL   string

	PaystackSecretKey     string
	PaystackWebhookSecret string

	// Fallback rate when both the FX API and the cache are unavailable.
	USDToNGNRate float64

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromEmail    string
	SupportEmail string
	StaffEmails  []string

	SiteURL string

	RedisAddr     string
	RedisPassword string
}

var (
	appCfg *AppConfig
	cfgMu  sync.RWMutex
)

func buildConfig() *AppConfig {
	staff := []string{}
	for _, e := range strings.Split(GetEnv("STAFF_NOTIFICATION_EMAILS"), ",") {
		if e = strings.TrimSpace(e); e != "" {
			staff = append(staff, e)
		}
	}
	return &AppConfig{
		JWTSecret: GetEnv("JWT_SECRET"),

		SquadSecretKey: GetEnv("SQUAD_SECRET_KEY"),
		SquadPublicKey: GetEnv("SQUAD_PUBLIC_KEY"),
		SquadBaseURL:   strings.TrimRight(GetEnv("SQUAD_BASE_URL", "https://sandbox-api-d.squadco.com"), "/"),

		PaystackSecretKey:     GetEnv("PAYSTACK_SECRET_KEY"),
		PaystackWebhookSecret: GetEnv("PAYSTACK_WEBHOOK_SECRET"),

		USDToNGNRate: GetEnvFloat("USD_TO_NGN_RATE", 1500.0),

		SMTPHost:     GetEnv("EMAIL_HOST", "smtp.gmail.com"),
		SMTPPort:     GetEnvInt("EMAIL_PORT", 587),
		SMTPUser:     GetEnv("EMAIL_HOST_USER"),
		SMTPPassword: GetEnv("EMAIL_HOST_PASSWORD"),
		FromEmail:    GetEnv("DEFAULT_FROM_EMAIL", "ASPIR Program <noreply@aspirprogram.com>"),
		SupportEmail: GetEnv("SUPPORT_EMAIL", "info@elevatetribeanalytics.com"),
		StaffEmails:  staff,

		SiteURL: strings.TrimRight(GetEnv("SITE_URL", "https://elevatetribeanalytics.com"), "/"),

		RedisAddr:     GetEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: GetEnv("REDIS_PASSWORD"),
	}
}

// App returns the current config snapshot, loading it on first use.
func App() *AppConfig {
	cfgMu.RLock()
	cfg := appCfg
	cfgMu.RUnlock()
	if cfg != nil {
		return cfg
	}
	return Reload()
}

// Reload rebuilds the config from the environment.
func Reload() *AppConfig {
	cfg := buildConfig()
	cfgMu.Lock()
	appCfg = cfg
	cfgMu.Unlock()
	if cfg.JWTSecret == "" {
		log.Println("❌ JWT_SECRET is not set!")
	}
	if cfg.SquadSecretKey == "" {
		log.Println("⚠️ SQUAD_SECRET_KEY is not set, payment initiation will fail")
	}
	return cfg
}
