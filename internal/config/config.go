package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"sathi-support/backend/internal/ai"
)

// Config is the process configuration assembled from the environment.
type Config struct {
	Port           string
	Environment    string
	AllowedOrigins []string
	FAQPath        string
	DBPath         string
	StoreDisabled  bool
	SilentDB       bool
	RateWindow     time.Duration
	RateMax        int
	BodyLimit      int64
	LogLevel       string
	LogFormat      string
	AI             ai.Config
}

// Load reads an optional .env file and then the process environment. Unparseable
// values keep their defaults.
func Load(envFiles ...string) Config {
	if err := godotenv.Load(envFiles...); err != nil {
		logrus.Debug("no .env file loaded")
	}

	cfg := Config{
		Port:        firstNonEmpty(os.Getenv("PORT"), "5000"),
		Environment: firstNonEmpty(os.Getenv("APP_ENV"), os.Getenv("NODE_ENV"), "development"),
		FAQPath:     strings.TrimSpace(os.Getenv("FAQ_PATH")),
		DBPath:      firstNonEmpty(os.Getenv("DB_PATH"), "data/sathi-chat.db"),
		RateWindow:  15 * time.Minute,
		RateMax:     1000,
		BodyLimit:   10 << 20,
		LogLevel:    firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),
		LogFormat:   firstNonEmpty(os.Getenv("LOG_FORMAT"), "text"),
		AI: ai.Config{
			APIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
			URL:    strings.TrimSpace(os.Getenv("GEMINI_API_URL")),
		},
	}

	cfg.StoreDisabled = parseBool(os.Getenv("STORE_DISABLED"))
	cfg.SilentDB = parseBool(firstNonEmpty(os.Getenv("SILENT_DB"), "true"))

	if origins := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}
	if window := os.Getenv("RATE_LIMIT_WINDOW"); window != "" {
		if d, err := time.ParseDuration(window); err == nil && d > 0 {
			cfg.RateWindow = d
		}
	}
	if max := os.Getenv("RATE_LIMIT_MAX_REQUESTS"); max != "" {
		if v, err := strconv.Atoi(max); err == nil && v > 0 {
			cfg.RateMax = v
		}
	}
	if temp := os.Getenv("GEMINI_TEMPERATURE"); temp != "" {
		if v, err := strconv.ParseFloat(temp, 64); err == nil && v >= 0 {
			cfg.AI.Temperature = &v
		}
	}
	if maxTokens := os.Getenv("GEMINI_MAX_TOKENS"); maxTokens != "" {
		if v, err := strconv.Atoi(maxTokens); err == nil {
			cfg.AI.MaxOutputTokens = v
		}
	}
	if timeout := os.Getenv("GEMINI_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.AI.Timeout = d
		}
	}
	return cfg
}

// IsDevelopment reports whether the service runs in development mode.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// ConfigureLogging applies the log level and format to the global logrus logger.
func (c Config) ConfigureLogging() {
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		logrus.SetLevel(level)
	} else {
		logrus.WithField("level", c.LogLevel).Warn("unknown log level, keeping info")
		logrus.SetLevel(logrus.InfoLevel)
	}
	if strings.EqualFold(c.LogFormat, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func parseBool(value string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
