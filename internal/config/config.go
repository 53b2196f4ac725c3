package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr        string
	DBPath            string
	UploadDir         string
	MaxUploadSize     int64
	AllowedExtensions []string
	SessionKey        string
	SessionTTL        time.Duration
	CookieSecure      bool
	AdminUsername     string
	AdminPassword     string
	LogLevel          string
	LogFile           string
	LogMaxSizeMB      int
	LogMaxBackups     int
	LogMaxAgeDays     int
}

// Load reads configuration from the environment, with an optional .env file
// for local development.
func Load() *Config {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("LISTEN_ADDR", ":8080")
	viper.SetDefault("DB_PATH", "propdesk.db")
	viper.SetDefault("UPLOAD_DIR", "uploads")
	viper.SetDefault("MAX_UPLOAD_SIZE", 16<<20)
	viper.SetDefault("ALLOWED_EXTENSIONS", "txt,pdf,png,jpg,jpeg,gif,doc,docx")
	viper.SetDefault("SESSION_TTL_HOURS", 168)
	viper.SetDefault("COOKIE_SECURE", false)
	viper.SetDefault("ADMIN_USERNAME", "admin")
	viper.SetDefault("ADMIN_PASSWORD", "admin123")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_MAX_SIZE_MB", 50)
	viper.SetDefault("LOG_MAX_BACKUPS", 3)
	viper.SetDefault("LOG_MAX_AGE_DAYS", 28)

	cfg := &Config{
		ListenAddr:        viper.GetString("LISTEN_ADDR"),
		DBPath:            viper.GetString("DB_PATH"),
		UploadDir:         viper.GetString("UPLOAD_DIR"),
		MaxUploadSize:     viper.GetInt64("MAX_UPLOAD_SIZE"),
		AllowedExtensions: splitExtensions(viper.GetString("ALLOWED_EXTENSIONS")),
		SessionKey:        viper.GetString("SESSION_KEY"),
		SessionTTL:        time.Duration(viper.GetInt("SESSION_TTL_HOURS")) * time.Hour,
		CookieSecure:      viper.GetBool("COOKIE_SECURE"),
		AdminUsername:     viper.GetString("ADMIN_USERNAME"),
		AdminPassword:     viper.GetString("ADMIN_PASSWORD"),
		LogLevel:          viper.GetString("LOG_LEVEL"),
		LogFile:           viper.GetString("LOG_FILE"),
		LogMaxSizeMB:      viper.GetInt("LOG_MAX_SIZE_MB"),
		LogMaxBackups:     viper.GetInt("LOG_MAX_BACKUPS"),
		LogMaxAgeDays:     viper.GetInt("LOG_MAX_AGE_DAYS"),
	}

	if cfg.SessionKey == "" {
		log.Println("WARNING: SESSION_KEY is not set; set a secure value in production")
	}

	return cfg
}

func splitExtensions(s string) []string {
	var exts []string
	for _, ext := range strings.Split(s, ",") {
		ext = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(ext, ".")))
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	return exts
}
