package internal

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken  string
	AdminIDs       map[int64]struct{}
	DatabaseURL    string
	Port           string
	PublicBaseURL  string
	APIInternalURL string
	UseWebhook     bool
	WebhookPath    string
	SeedFile       string
	SiteDir        string
	WebappDir      string
}

func LoadConfig() *Config {
	_ = godotenv.Load() // ignore error if .env is absent

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		AdminIDs:      parseAdminIDs(os.Getenv("ADMIN_TELEGRAM_IDS")),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Port:          getenvDefault("PORT", "8080"),
		PublicBaseURL: getenvDefault("PUBLIC_BASE_URL", "http://localhost:8080"),
		WebhookPath:   getenvDefault("WEBHOOK_PATH", "/webhook/telegram"),
		SeedFile:      getenvDefault("SEED_FILE", "seed_content.json"),
		SiteDir:       getenvDefault("SITE_DIR", "static/site"),
		WebappDir:     getenvDefault("WEBAPP_DIR", "static/webapp"),
	}
	cfg.APIInternalURL = getenvDefault("API_INTERNAL_URL", "http://localhost:"+cfg.Port)

	if cfg.TelegramToken == "" || cfg.DatabaseURL == "" {
		log.Fatal("TELEGRAM_TOKEN, DATABASE_URL must be set")
	}

	if v := os.Getenv("USE_WEBHOOK"); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			cfg.UseWebhook = b
		}
	}

	return cfg
}

// parseAdminIDs разбирает список телеграм-идентификаторов администраторов,
// перечисленных через запятую. Нечисловые куски молча пропускаются.
func parseAdminIDs(raw string) map[int64]struct{} {
	ids := map[int64]struct{}{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			ids[id] = struct{}{}
		}
	}
	return ids
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
