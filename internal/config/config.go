package config

import (
	"log"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DBDriver       string // sqlite | mysql | postgres
	DBDSN          string
	MediaDir       string
	TemplatesDir   string
	LogFile        string
	RedisAddr      string
	KafkaBrokers   string
	OrderTopic     string
	OutboxInterval time.Duration
}

func Load() Config {
	// A missing .env is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[warn] could not read .env: %v", err)
	}

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:          getEnv("DB_DSN", "storefront.db"), // sqlite file in project root
		MediaDir:       getEnv("MEDIA_DIR", "./web/media"),
		TemplatesDir:   getEnv("TEMPLATES_DIR", "./web/templates"),
		LogFile:        getEnv("LOG_FILE", "./storefront.log"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		KafkaBrokers:   os.Getenv("KAFKA_BROKERS"),
		OrderTopic:     getEnv("ORDER_TOPIC", "orders.placed"),
		OutboxInterval: getEnvDuration("OUTBOX_INTERVAL", 2*time.Second),
	}
	log.Printf("[config] PORT=%s DB_DRIVER=%s DB_DSN=%s MEDIA_DIR=%s LOG_FILE=%s REDIS_ADDR=%q KAFKA_BROKERS=%q",
		cfg.Port, cfg.DBDriver, RedactDSN(cfg.DBDSN), cfg.MediaDir, cfg.LogFile, cfg.RedisAddr, cfg.KafkaBrokers)
	return cfg
}

var (
	reKVPassword = regexp.MustCompile(`(?i)(password=)(\S+)`)
	reUserPass   = regexp.MustCompile(`^([^:@/]+):[^@]*@`)
)

// RedactDSN hides the password in a DSN. It handles URL forms
// (postgres://u:p@h/db), key=value forms (password=p) and the MySQL
// u:p@tcp(h)/db form; anything else comes back unchanged.
func RedactDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.User != nil {
		return u.Redacted()
	}
	if reKVPassword.MatchString(dsn) {
		return reKVPassword.ReplaceAllString(dsn, "${1}xxxxx")
	}
	return reUserPass.ReplaceAllString(dsn, "${1}:xxxxx@")
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[warn] bad %s=%q, using %s", key, v, def)
		return def
	}
	return d
}
