package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read before the environment when it exists.
const DefaultEnvFile = ".env"

type Config struct {
	ListenAddr      string        // ex: "127.0.0.1:7878"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Persistence
	KeyPrefix   string        // Redis key prefix (ex: "linemark" => linemark:bookmarks)
	SaveTimeout time.Duration // timeout for one save round-trip

	// Maintenance
	RenumberInterval time.Duration // 0 disables periodic renumbering
	RenumberMinGap   float64       // renumber once adjacent orders are closer than this

	// Line snapshots
	MaxSourceSize int64 // largest source file read for line text (bytes)

	// Messages
	Language string // "auto" follows Accept-Language, otherwise a BCP 47 tag

	// Redis
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	AllowedHosts []string // Host headers accepted by the API, port ignored
	AllowedCIDRS []string // client IPs accepted by the API (e.g. "127.0.0.1/32, ::1/128")
	TrustProxy   bool     // true => trust X-Forwarded-For headers
}

// LoadEnvFile loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration from the environment.
func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenAddr:      getenv("LINEMARK_LISTEN_ADDR", "127.0.0.1:7878"),
		ShutdownTimeout: mustDuration("LINEMARK_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("LINEMARK_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LINEMARK_PRETTY_LOG", true),

		// Persistence
		KeyPrefix:   getenv("LINEMARK_KEY_PREFIX", "linemark"),
		SaveTimeout: mustDuration("LINEMARK_SAVE_TIMEOUT", 5*time.Second),

		// Maintenance
		RenumberInterval: mustDuration("LINEMARK_RENUMBER_INTERVAL", time.Hour),
		RenumberMinGap:   getenvFloat("LINEMARK_RENUMBER_MIN_GAP", 1e-9),

		MaxSourceSize: int64(getenvInt("LINEMARK_MAX_SOURCE_SIZE", 10<<20)),
		Language:      getenv("LINEMARK_LANGUAGE", "auto"),

		// Redis settings
		RedisAddr:           getenv("LINEMARK_REDIS_ADDR", "localhost:6379"),
		RedisUser:           getenv("LINEMARK_REDIS_USERNAME", ""),
		RedisPassword:       getenv("LINEMARK_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("LINEMARK_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("LINEMARK_ALLOWED_HOSTS", "localhost,127.0.0.1,[::1]")),
		AllowedCIDRS: parseAllowedIPs(getenv("LINEMARK_ALLOWED_CIDRS", "127.0.0.0/8,::1/128")),
		TrustProxy:   mustBool("LINEMARK_TRUST_PROXY", false),
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return fmt.Errorf("LINEMARK_LISTEN_ADDR %q: %w", c.ListenAddr, err)
	}
	if c.KeyPrefix == "" {
		return errors.New("LINEMARK_KEY_PREFIX must not be empty")
	}
	if c.RenumberInterval < 0 {
		return fmt.Errorf("LINEMARK_RENUMBER_INTERVAL must be >= 0, got %v", c.RenumberInterval)
	}
	if c.RenumberMinGap <= 0 {
		return fmt.Errorf("LINEMARK_RENUMBER_MIN_GAP must be > 0, got %v", c.RenumberMinGap)
	}
	if c.SaveTimeout <= 0 {
		return fmt.Errorf("LINEMARK_SAVE_TIMEOUT must be > 0, got %v", c.SaveTimeout)
	}
	return nil
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
