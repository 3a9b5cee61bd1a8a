package config

import (
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	HTTPAddr        string
	PostgresURL     string
	KafkaBrokers    []string
	OrderTopic      string
	DataDir         string
	StorageURL      string
	StorageKey      string
	StorageBucket   string
	EmailServiceURL string
	ResyncInterval  time.Duration
	ServiceName     string
	ServiceVersion  string
}

func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":5001"),
		PostgresURL:     os.Getenv("POSTGRES_URL"),
		KafkaBrokers:    splitCSV(os.Getenv("KAFKA_BROKERS")),
		OrderTopic:      getenv("ORDER_TOPIC", "order.placed"),
		DataDir:         getenv("DATA_DIR", "data"),
		StorageURL:      os.Getenv("STORAGE_URL"),
		StorageKey:      os.Getenv("STORAGE_SERVICE_ROLE_KEY"),
		StorageBucket:   getenv("STORAGE_PRODUCT_IMAGES_BUCKET", "product-images"),
		EmailServiceURL: os.Getenv("EMAIL_SERVICE_URL"),
		ResyncInterval:  getduration("RESYNC_INTERVAL", 30*time.Second),
		ServiceName:     getenv("SERVICE_NAME", "saree-backend"),
		ServiceVersion:  getenv("SERVICE_VERSION", "0.1.0"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getduration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
