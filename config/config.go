package config

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	BaseURL         string
	Timeout         time.Duration
	MaxConnsPerHost int
	RateLimitRPS    float64
	RateLimitBurst  int
	RealmUser       string
	RealmPassword   string

	Rounds          int
	Concurrency     int
	Weather         bool
	LegacySchedule  bool
	ShutdownTimeout time.Duration

	ResultTopic     string
	Subscription    string
	GoogleProjectID string
	CredentialsFile string

	MetricsPort int
	LogLevel    string
}

func Load() *Config {
	cfg := &Config{
		BaseURL:         strings.TrimSpace(getEnv("DUEL_BASE_URL", "http://www.dragonsofmugloar.com")),
		Timeout:         getEnvDuration("DUEL_TIMEOUT", 30*time.Second),
		MaxConnsPerHost: getEnvInt("DUEL_MAX_CONNS", 16),
		RateLimitRPS:    getEnvFloat("DUEL_RATE_RPS", 0),
		RateLimitBurst:  getEnvInt("DUEL_RATE_BURST", 1),
		RealmUser:       strings.TrimSpace(os.Getenv("DUEL_REALM_USER")),
		RealmPassword:   os.Getenv("DUEL_REALM_PASSWORD"),
		Rounds:          getEnvInt("DUEL_ROUNDS", 10),
		Concurrency:     getEnvInt("DUEL_CONCURRENCY", 4),
		Weather:         getEnvBool("DUEL_WEATHER", true),
		LegacySchedule:  getEnvBool("DUEL_LEGACY_SCHEDULE", false),
		ShutdownTimeout: getEnvDuration("DUEL_SHUTDOWN_TIMEOUT", 10*time.Second),
		Subscription:    strings.TrimSpace(getEnv("BATTLE_REQUEST_SUBSCRIPTION", os.Getenv("DUEL_PUBSUB_SUBSCRIPTION"))),
		ResultTopic:     strings.TrimSpace(getEnv("BATTLE_RESULT_TOPIC", os.Getenv("DUEL_PUBSUB_TOPIC"))),
		MetricsPort:     getEnvInt("DUEL_METRICS_PORT", 8080),
		LogLevel:        strings.TrimSpace(getEnv("DUEL_LOG_LEVEL", "info")),
		CredentialsFile: strings.TrimSpace(firstNonEmpty(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"), os.Getenv("DUEL_GSA_CREDENTIALS"))),
	}

	if cfg.UsesPubSub() {
		cfg.GoogleProjectID = getGoogleProjectID(cfg.CredentialsFile, strings.TrimSpace(getEnv("DUEL_PUBSUB_PROJECT_ID", "")))
		if cfg.GoogleProjectID == "" {
			log.Warn().Msg("Google project ID not resolved; set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_PROJECT_ID or DUEL_PUBSUB_PROJECT_ID")
		}
	}
	if cfg.ResultTopic != "" && cfg.Subscription == "" {
		log.Warn().Msg("result topic set without a subscription; battles are played locally and published to the topic")
	}
	if cfg.Rounds <= 0 {
		log.Warn().Int("rounds", cfg.Rounds).Msg("DUEL_ROUNDS must be positive; using 1")
		cfg.Rounds = 1
	}
	return cfg
}

// UsesPubSub reports whether a Pub/Sub subscription or topic is configured.
func (c *Config) UsesPubSub() bool {
	return c.Subscription != "" || c.ResultTopic != ""
}

func (c *Config) HTTPAddr() string {
	return net.JoinHostPort("0.0.0.0", strconv.Itoa(c.MetricsPort))
}

// Redacted returns a view safe for logging
func (c *Config) Redacted() map[string]any {
	return map[string]any{
		"baseURL":             c.BaseURL,
		"timeout":             c.Timeout.String(),
		"maxConnsPerHost":     c.MaxConnsPerHost,
		"rateLimitRPS":        c.RateLimitRPS,
		"rateLimitBurst":      c.RateLimitBurst,
		"realmProvided":       c.RealmUser != "",
		"rounds":              c.Rounds,
		"concurrency":         c.Concurrency,
		"weather":             c.Weather,
		"legacySchedule":      c.LegacySchedule,
		"projectID":           c.GoogleProjectID,
		"requestSubscription": c.Subscription,
		"resultTopic":         c.ResultTopic,
		"metricsPort":         c.MetricsPort,
		"logLevel":            c.LogLevel,
		"credentialsProvided": c.CredentialsFile != "",
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		iv, err := strconv.Atoi(v)
		if err == nil {
			return iv
		}
		fmt.Printf("invalid int for %s: %s\n", key, v)
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		fv, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			return fv
		}
		fmt.Printf("invalid float for %s: %s\n", key, v)
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		bv, err := strconv.ParseBool(strings.TrimSpace(v))
		if err == nil {
			return bv
		}
		fmt.Printf("invalid bool for %s: %s\n", key, v)
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		dv, err := time.ParseDuration(strings.TrimSpace(v))
		if err == nil {
			return dv
		}
		fmt.Printf("invalid duration for %s: %s\n", key, v)
	}
	return def
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func projectIDFromCredentials(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	var x struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal(b, &x); err != nil {
		log.Debug().Err(err).Str("credsFile", path).Msg("credentials file is not JSON")
	}
	return x.ProjectID, nil
}

func getGoogleProjectID(credsFile string, explicit string) string {
	// 1) Prefer GOOGLE_APPLICATION_CREDENTIALS if set
	if p := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); p != "" {
		log.Info().Str("credsFile", p).Msg("GOOGLE_APPLICATION_CREDENTIALS is set; extracting project_id from credentials file")
		if pid, err := projectIDFromCredentials(p); err == nil && pid != "" {
			return strings.TrimSpace(pid)
		}
		log.Warn().Str("credsFile", p).Msg("project_id not found in credentials file or unreadable")
	}

	// 2) Explicit override
	if explicit := strings.TrimSpace(explicit); explicit != "" {
		log.Info().Str("projectID", explicit).Msg("using DUEL_PUBSUB_PROJECT_ID for Google project")
		return explicit
	}

	// 3) External override
	if v := strings.TrimSpace(os.Getenv("GOOGLE_PROJECT_ID")); v != "" {
		log.Info().Str("projectID", v).Msg("using GOOGLE_PROJECT_ID from environment")
		return v
	}

	// 4) Common Google envs
	if v := firstNonEmpty(os.Getenv("GOOGLE_CLOUD_PROJECT"), os.Getenv("GCLOUD_PROJECT"), os.Getenv("GCP_PROJECT")); strings.TrimSpace(v) != "" {
		v = strings.TrimSpace(v)
		log.Info().Str("projectID", v).Msg("using Google project from common environment variables")
		return v
	}

	// 5) Fallback to provided credentials file path (DUEL_GSA_CREDENTIALS)
	if p := strings.TrimSpace(credsFile); p != "" {
		if pid, err := projectIDFromCredentials(p); err == nil && pid != "" {
			log.Info().Str("credsFile", p).Msg("using project_id from provided credentials file")
			return strings.TrimSpace(pid)
		}
	}
	return ""
}
