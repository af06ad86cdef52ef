// config/config.go
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix is prepended to every key when reading environment variables,
// e.g. FHURL_HTTP_PORT.
const EnvPrefix = "FHURL"

// HTTPConfig groups listener and timeout settings. Duration fields are
// decoded by Load from their flexible string form, not by mapstructure.
type HTTPConfig struct {
	HTTPPort     int           `mapstructure:"http_port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `mapstructure:"-" validate:"gt=0"` // read_timeout
	WriteTimeout time.Duration `mapstructure:"-" validate:"gt=0"` // write_timeout
	IdleTimeout  time.Duration `mapstructure:"-" validate:"gt=0"` // idle_timeout
	// MaxRequestBodyBytes caps submitted form bodies (0 = unlimited).
	MaxRequestBodyBytes int64 `mapstructure:"max_request_body_bytes" validate:"gte=0"`
	EnableCompression   bool  `mapstructure:"enable_compression"`
}

// CORSConfig groups all CORS behavior and lists.
type CORSConfig struct {
	EnableCORS           bool     `mapstructure:"enable_cors"`
	CORSAllowedOrigins   []string `mapstructure:"cors_allowed_origins"`
	CORSAllowedMethods   []string `mapstructure:"cors_allowed_methods"`
	CORSAllowedHeaders   []string `mapstructure:"cors_allowed_headers"`
	CORSExposedHeaders   []string `mapstructure:"cors_exposed_headers"`
	CORSAllowCredentials bool     `mapstructure:"cors_allow_credentials"`
	CORSMaxAge           int      `mapstructure:"cors_max_age" validate:"gte=0"`
}

// SessionConfig selects and tunes the session backend used for login state.
type SessionConfig struct {
	Backend       string        `mapstructure:"session_backend" validate:"oneof=memory redis"`
	CookieName    string        `mapstructure:"session_cookie" validate:"required"`
	MaxAge        time.Duration `mapstructure:"-" validate:"gt=0"` // session_max_age
	SecureCookie  bool          `mapstructure:"session_secure_cookie"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db" validate:"gte=0"`
}

// Config is the full configuration of an fhurl service.
type Config struct {
	// runtime
	Env      string `mapstructure:"env" validate:"oneof=dev prod"`
	LogLevel string `mapstructure:"log_level" validate:"required"`

	HTTP    HTTPConfig    `mapstructure:",squash"`
	CORS    CORSConfig    `mapstructure:",squash"`
	Session SessionConfig `mapstructure:",squash"`

	// LoginURL is where unauthenticated users are sent for login-required forms.
	LoginURL string `mapstructure:"login_url" validate:"required,startswith=/"`
	// JWTSecret enables bearer-token authentication when non-empty.
	JWTSecret string `mapstructure:"jwt_secret"`
	// MetricsAPIKey, when set, is required to read /metrics.
	MetricsAPIKey string `mapstructure:"metrics_api_key"`
	DefaultLocale string `mapstructure:"default_locale" validate:"required"`
	// TemplateDir overrides the embedded templates with files on disk.
	TemplateDir string `mapstructure:"template_dir"`
}

// Dump returns a pretty, redacted JSON string of the config for debugging.
// Never logs secrets; use at debug level only.
func (c Config) Dump() string {
	s := c.redactedCopy()
	b, _ := json.MarshalIndent(s, "", "  ")
	return string(b)
}

func (c Config) redactedCopy() Config {
	cp := c
	if cp.JWTSecret != "" {
		cp.JWTSecret = "[redacted]"
	}
	if cp.MetricsAPIKey != "" {
		cp.MetricsAPIKey = "[redacted]"
	}
	if cp.Session.RedisPassword != "" {
		cp.Session.RedisPassword = "[redacted]"
	}
	return cp
}

// Load merges defaults → config.* file(s) → env vars → explicit flags into one Config,
// reading flags from the process command line.
// Final precedence (highest wins): flags(explicit) > env > config > defaults.
func Load(logger *zap.Logger) (*Config, error) {
	return LoadArgs(logger, os.Args[1:])
}

// LoadArgs is Load with an explicit argument list. Each call uses its own
// flag set so it can be invoked more than once (tests, tools).
func LoadArgs(logger *zap.Logger, args []string) (*Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// 0) Optionally load .env (safe: real env still wins over .env)
	if err := godotenv.Load(); err == nil {
		logger.Info("Loaded .env file")
	}

	// 1) Define flags (only *explicitly set* flags will override)
	fs := pflag.NewFlagSet("fhurl", pflag.ContinueOnError)
	fs.String("env", "dev", `Runtime environment "dev"|"prod"`)
	fs.String("log_level", "debug", "Log level")

	fs.Int("http_port", 8080, "HTTP port")
	fs.String("read_timeout", "15s", "HTTP read timeout (e.g., \"15s\")")
	fs.String("write_timeout", "30s", "HTTP write timeout")
	fs.String("idle_timeout", "60s", "HTTP idle timeout")
	fs.Int64("max_request_body_bytes", 2<<20, "Max HTTP request body size in bytes (0 = unlimited)")
	fs.Bool("enable_compression", true, "Enable HTTP compression")

	fs.Bool("enable_cors", false, "Enable CORS")
	fs.String("cors_allowed_origins", "", `JSON array of origins, e.g. '["https://a.example","https://b.example"]'`)
	fs.String("cors_allowed_methods", "", `JSON array of methods, e.g. '["GET","POST"]'`)
	fs.String("cors_allowed_headers", "", `JSON array of headers, e.g. '["Accept","X-Requested-With"]'`)
	fs.String("cors_exposed_headers", "", `JSON array of headers, e.g. '["Location"]'`)
	fs.Bool("cors_allow_credentials", false, "CORS: allow credentials")
	fs.Int("cors_max_age", 0, "CORS: max age seconds (0 disables cache)")

	fs.String("login_url", "/accounts/login/", "Login page for login-required forms")
	fs.String("session_backend", "memory", `Session store "memory"|"redis"`)
	fs.String("session_cookie", "fhurl_session", "Session cookie name")
	fs.String("session_max_age", "24h", "Session lifetime")
	fs.Bool("session_secure_cookie", false, "Mark the session cookie Secure")
	fs.String("redis_addr", "localhost:6379", "Redis address (session_backend=redis)")
	fs.String("redis_password", "", "Redis password")
	fs.Int("redis_db", 0, "Redis database number")
	fs.String("jwt_secret", "", "HMAC secret for bearer tokens (empty disables JWT auth)")
	fs.String("metrics_api_key", "", "API key required for /metrics (empty leaves it open)")
	fs.String("default_locale", "en", "Fallback locale for messages")
	fs.String("template_dir", "", "Load templates from this directory instead of the embedded set")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// 2) Viper + env
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Bind env for all keys so Unmarshal sees them.
	for _, k := range allKeys() {
		_ = v.BindEnv(k)
	}

	// 3) Optional config.* files (yaml|yml|json|toml)
	for _, ext := range [...]string{"yaml", "yml", "json", "toml"} {
		file := "config." + ext
		if _, err := os.Stat(file); err != nil {
			continue
		}
		b, err := os.ReadFile(file)
		if err != nil {
			logger.Warn("cannot read config file", zap.String("file", file), zap.Error(err))
			continue
		}
		v.SetConfigType(ext)
		if err := v.MergeConfig(bytes.NewReader(b)); err != nil {
			logger.Warn("cannot decode config file", zap.String("file", file), zap.Error(err))
			continue
		}
		logger.Info("Loaded config file", zap.String("file", file))
	}

	// 4) Defaults (lowest precedence)
	setDefaults(v)

	// 5) Apply *explicit* flags (highest precedence)
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = v.BindPFlag(f.Name, f)
		}
	})

	// 6) Normalize list keys (accept JSON strings → []string)
	if err := normalizeListKeys(logger, v,
		"cors_allowed_origins",
		"cors_allowed_methods",
		"cors_allowed_headers",
		"cors_exposed_headers",
	); err != nil {
		return nil, err
	}

	// 7) Build struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"read_timeout", 15 * time.Second, &cfg.HTTP.ReadTimeout},
		{"write_timeout", 30 * time.Second, &cfg.HTTP.WriteTimeout},
		{"idle_timeout", 60 * time.Second, &cfg.HTTP.IdleTimeout},
		{"session_max_age", 24 * time.Hour, &cfg.Session.MaxAge},
	}
	for _, d := range durations {
		val, err := durationSetting(v.Get(d.key), d.def)
		if err != nil {
			logger.Warn("invalid duration; using default",
				zap.String("key", d.key), zap.Any("value", v.Get(d.key)),
				zap.Duration("default", d.def), zap.Error(err))
		}
		*d.dst = val
	}

	// 8) Validate
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func allKeys() []string {
	return []string{
		"env", "log_level",
		"http_port", "read_timeout", "write_timeout", "idle_timeout",
		"max_request_body_bytes", "enable_compression",
		"enable_cors",
		"cors_allowed_origins", "cors_allowed_methods", "cors_allowed_headers",
		"cors_exposed_headers", "cors_allow_credentials", "cors_max_age",
		"login_url",
		"session_backend", "session_cookie", "session_max_age", "session_secure_cookie",
		"redis_addr", "redis_password", "redis_db",
		"jwt_secret", "metrics_api_key", "default_locale", "template_dir",
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "debug")

	v.SetDefault("http_port", 8080)
	v.SetDefault("read_timeout", "15s")
	v.SetDefault("write_timeout", "30s")
	v.SetDefault("idle_timeout", "60s")
	v.SetDefault("max_request_body_bytes", int64(2<<20))
	v.SetDefault("enable_compression", true)

	// Neutral CORS defaults
	v.SetDefault("enable_cors", false)
	v.SetDefault("cors_allowed_origins", []string{})
	v.SetDefault("cors_allowed_methods", []string{})
	v.SetDefault("cors_allowed_headers", []string{})
	v.SetDefault("cors_exposed_headers", []string{})
	v.SetDefault("cors_allow_credentials", false)
	v.SetDefault("cors_max_age", 0)

	v.SetDefault("login_url", "/accounts/login/")
	v.SetDefault("session_backend", "memory")
	v.SetDefault("session_cookie", "fhurl_session")
	v.SetDefault("session_max_age", "24h")
	v.SetDefault("session_secure_cookie", false)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("metrics_api_key", "")
	v.SetDefault("default_locale", "en")
	v.SetDefault("template_dir", "")
}

// normalizeListKeys coerces JSON-string values into []string for the given keys.
func normalizeListKeys(logger *zap.Logger, v *viper.Viper, keys ...string) error {
	for _, key := range keys {
		val := v.Get(key)
		switch t := val.(type) {
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				continue
			}
			var arr []string
			if err := json.Unmarshal([]byte(s), &arr); err != nil {
				return fmt.Errorf("config key %q expects a JSON array string, got %q: %w", key, s, err)
			}
			v.Set(key, arr)
		case []interface{}:
			arr := make([]string, 0, len(t))
			for _, e := range t {
				arr = append(arr, fmt.Sprint(e))
			}
			v.Set(key, arr)
		case []string, nil:
			// already correct or unset
		default:
			logger.Warn("unexpected type for list key; expected JSON array/string",
				zap.String("key", key), zap.Any("value", t))
		}
	}
	return nil
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags first, then the cross-field rules tags cannot express.
// All problems are reported together.
func Validate(cfg Config) error {
	var missing []string
	var invalid []string

	if err := structValidator.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("configuration errors: %w", err)
		}
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				missing = append(missing, fe.Namespace())
				continue
			}
			invalid = append(invalid, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag()+paramSuffix(fe.Param()), fe.Value()))
		}
	}

	// Session backend requirements
	if cfg.Session.Backend == "redis" && strings.TrimSpace(cfg.Session.RedisAddr) == "" {
		missing = append(missing, "FHURL_REDIS_ADDR (or --redis_addr) for session_backend=redis")
	}
	if cfg.Env == "prod" && !cfg.Session.SecureCookie {
		invalid = append(invalid, "session_secure_cookie must be true when env=prod")
	}

	// CORS sanity
	if cfg.CORS.EnableCORS {
		if len(cfg.CORS.CORSAllowedOrigins) == 0 {
			missing = append(missing, "CORS: cors_allowed_origins (JSON array) required when enable_cors=true")
		}
		if len(cfg.CORS.CORSAllowedMethods) == 0 {
			missing = append(missing, "CORS: cors_allowed_methods (JSON array) required when enable_cors=true")
		}
		for _, o := range cfg.CORS.CORSAllowedOrigins {
			if o == "*" && cfg.CORS.CORSAllowCredentials {
				invalid = append(invalid, `CORS: cannot use "*" in cors_allowed_origins when cors_allow_credentials=true`)
				break
			}
		}
	}

	if len(missing) == 0 && len(invalid) == 0 {
		return nil
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "invalid: "+strings.Join(invalid, ", "))
	}
	return fmt.Errorf("configuration errors: %s", strings.Join(parts, " | "))
}

func paramSuffix(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}
