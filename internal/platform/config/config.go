package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile         = ".env"
	defaultPort            = "8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultEnvironment     = "local"
	defaultLogLevel        = "info"
	defaultCurrency        = "USD"
	defaultCartBackend     = "memory"
	defaultCartKeyPrefix   = "cart:"
	defaultCartAutoHide    = 3 * time.Second
	defaultRedisPoolSize   = 10
	defaultRedisDial       = 5 * time.Second
	defaultFirestoreColl   = "carts"
	defaultSubmitTimeout   = 10 * time.Second
	defaultDatabasePath    = "site.db"
	defaultVisitorCookie   = "ignito_visitor"
	defaultPaymentProvider = "static"
	defaultMapLatitude     = 40.7128
	defaultMapLongitude    = -74.0060
)

// Cart backends understood by the storage layer.
const (
	CartBackendMemory    = "memory"
	CartBackendRedis     = "redis"
	CartBackendFirestore = "firestore"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Site      SiteConfig
	Cart      CartConfig
	Redis     RedisConfig
	Firestore FirestoreConfig
	Orders    OrdersConfig
	Payments  PaymentsConfig
	PubSub    PubSubConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// SiteConfig holds presentation-level settings.
type SiteConfig struct {
	Environment   string
	LogLevel      string
	BaseURL       string
	Currency      string
	CatalogFile   string
	VisitorCookie string
	SecureCookies bool
	MapLatitude   float64
	MapLongitude  float64
}

// CartConfig selects and tunes the persistent cart store.
type CartConfig struct {
	Backend   string
	KeyPrefix string
	AutoHide  time.Duration
}

// RedisConfig configures the Redis cart backend.
type RedisConfig struct {
	URL         string
	PoolSize    int
	DialTimeout time.Duration
}

// FirestoreConfig configures the Firestore cart backend.
type FirestoreConfig struct {
	ProjectID    string
	EmulatorHost string
	Collection   string
}

// OrdersConfig configures order/contact submission and persistence.
type OrdersConfig struct {
	Endpoint        string
	ContactEndpoint string
	SubmitTimeout   time.Duration
	DatabasePath    string
}

// PaymentsConfig selects the payment widget.
type PaymentsConfig struct {
	Provider             string
	StripeSecretKey      string
	StripePublishableKey string
}

// PubSubConfig configures order-placed event publishing. Empty topic disables it.
type PubSubConfig struct {
	ProjectID string
	Topic     string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects explicit values that take precedence over everything else.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles configuration from defaults, the .env file, the process
// environment and an optional explicit map, in increasing precedence.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnv, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if value, ok := dotEnv[key]; ok {
			return value, true
		}
		return "", false
	}

	var invalid []string
	cfg := Config{
		Server: ServerConfig{
			Port:            stringWithDefault(lookup, "SITE_SERVER_PORT", stringWithDefault(lookup, "PORT", defaultPort)),
			ReadTimeout:     durationWithDefault(lookup, "SITE_SERVER_READ_TIMEOUT", defaultReadTimeout, &invalid),
			WriteTimeout:    durationWithDefault(lookup, "SITE_SERVER_WRITE_TIMEOUT", defaultWriteTimeout, &invalid),
			IdleTimeout:     durationWithDefault(lookup, "SITE_SERVER_IDLE_TIMEOUT", defaultIdleTimeout, &invalid),
			ShutdownTimeout: durationWithDefault(lookup, "SITE_SERVER_SHUTDOWN_TIMEOUT", defaultShutdownTimeout, &invalid),
		},
		Site: SiteConfig{
			Environment:   strings.ToLower(stringWithDefault(lookup, "SITE_ENV", defaultEnvironment)),
			LogLevel:      stringWithDefault(lookup, "LOG_LEVEL", defaultLogLevel),
			BaseURL:       strings.TrimRight(stringWithDefault(lookup, "SITE_BASE_URL", ""), "/"),
			Currency:      strings.ToUpper(stringWithDefault(lookup, "SITE_CURRENCY", defaultCurrency)),
			CatalogFile:   stringWithDefault(lookup, "SITE_CATALOG_FILE", ""),
			VisitorCookie: stringWithDefault(lookup, "SITE_VISITOR_COOKIE", defaultVisitorCookie),
			SecureCookies: boolWithDefault(lookup, "SITE_SECURE_COOKIES", false, &invalid),
			MapLatitude:   floatWithDefault(lookup, "SITE_MAP_LATITUDE", defaultMapLatitude, &invalid),
			MapLongitude:  floatWithDefault(lookup, "SITE_MAP_LONGITUDE", defaultMapLongitude, &invalid),
		},
		Cart: CartConfig{
			Backend:   strings.ToLower(stringWithDefault(lookup, "SITE_CART_BACKEND", defaultCartBackend)),
			KeyPrefix: stringWithDefault(lookup, "SITE_CART_KEY_PREFIX", defaultCartKeyPrefix),
			AutoHide:  durationWithDefault(lookup, "SITE_CART_AUTOHIDE", defaultCartAutoHide, &invalid),
		},
		Redis: RedisConfig{
			URL:         stringWithDefault(lookup, "SITE_REDIS_URL", ""),
			PoolSize:    intWithDefault(lookup, "SITE_REDIS_POOL_SIZE", defaultRedisPoolSize, &invalid),
			DialTimeout: durationWithDefault(lookup, "SITE_REDIS_DIAL_TIMEOUT", defaultRedisDial, &invalid),
		},
		Firestore: FirestoreConfig{
			ProjectID:    stringWithDefault(lookup, "SITE_FIRESTORE_PROJECT_ID", ""),
			EmulatorHost: stringWithDefault(lookup, "SITE_FIRESTORE_EMULATOR_HOST", ""),
			Collection:   stringWithDefault(lookup, "SITE_FIRESTORE_COLLECTION", defaultFirestoreColl),
		},
		Orders: OrdersConfig{
			Endpoint:        stringWithDefault(lookup, "SITE_ORDER_ENDPOINT", ""),
			ContactEndpoint: stringWithDefault(lookup, "SITE_CONTACT_ENDPOINT", ""),
			SubmitTimeout:   durationWithDefault(lookup, "SITE_SUBMIT_TIMEOUT", defaultSubmitTimeout, &invalid),
			DatabasePath:    stringWithDefault(lookup, "SITE_DATABASE_PATH", defaultDatabasePath),
		},
		Payments: PaymentsConfig{
			Provider:             strings.ToLower(stringWithDefault(lookup, "SITE_PAYMENT_PROVIDER", defaultPaymentProvider)),
			StripeSecretKey:      stringWithDefault(lookup, "SITE_STRIPE_SECRET_KEY", ""),
			StripePublishableKey: stringWithDefault(lookup, "SITE_STRIPE_PUBLISHABLE_KEY", ""),
		},
		PubSub: PubSubConfig{
			ProjectID: stringWithDefault(lookup, "SITE_PUBSUB_PROJECT_ID", ""),
			Topic:     stringWithDefault(lookup, "SITE_PUBSUB_ORDER_TOPIC", ""),
		},
	}

	// Submission endpoints default to this server's own backend routes.
	self := cfg.Site.BaseURL
	if self == "" {
		self = "http://127.0.0.1:" + cfg.Server.Port
	}
	if cfg.Orders.Endpoint == "" {
		cfg.Orders.Endpoint = self + "/order"
	}
	if cfg.Orders.ContactEndpoint == "" {
		cfg.Orders.ContactEndpoint = self + "/contact"
	}
	if cfg.PubSub.ProjectID == "" {
		cfg.PubSub.ProjectID = cfg.Firestore.ProjectID
	}

	if err := validate(cfg, invalid); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config, invalid []string) error {
	missing := append([]string(nil), invalid...)

	if strings.TrimSpace(cfg.Server.Port) == "" {
		missing = append(missing, "Server.Port")
	}
	if cfg.Server.ReadTimeout <= 0 {
		missing = append(missing, "Server.ReadTimeout")
	}
	if cfg.Server.WriteTimeout <= 0 {
		missing = append(missing, "Server.WriteTimeout")
	}
	if strings.TrimSpace(cfg.Site.VisitorCookie) == "" {
		missing = append(missing, "Site.VisitorCookie")
	}
	switch cfg.Cart.Backend {
	case CartBackendMemory:
	case CartBackendRedis:
		if cfg.Redis.URL == "" {
			missing = append(missing, "Redis.URL")
		}
		if cfg.Redis.PoolSize <= 0 {
			missing = append(missing, "Redis.PoolSize")
		}
	case CartBackendFirestore:
		if cfg.Firestore.ProjectID == "" {
			missing = append(missing, "Firestore.ProjectID")
		}
		if cfg.Firestore.Collection == "" {
			missing = append(missing, "Firestore.Collection")
		}
	default:
		missing = append(missing, "Cart.Backend")
	}
	if cfg.Orders.SubmitTimeout <= 0 {
		missing = append(missing, "Orders.SubmitTimeout")
	}
	if strings.TrimSpace(cfg.Orders.DatabasePath) == "" {
		missing = append(missing, "Orders.DatabasePath")
	}
	switch cfg.Payments.Provider {
	case "static":
	case "stripe":
		if cfg.Payments.StripeSecretKey == "" {
			missing = append(missing, "Payments.StripeSecretKey")
		}
	default:
		missing = append(missing, "Payments.Provider")
	}
	if cfg.PubSub.Topic != "" && cfg.PubSub.ProjectID == "" {
		missing = append(missing, "PubSub.ProjectID")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration, invalid *[]string) time.Duration {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		*invalid = append(*invalid, key)
		return fallback
	}
	return d
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int, invalid *[]string) int {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		*invalid = append(*invalid, key)
		return fallback
	}
	return n
}

func floatWithDefault(lookup func(string) (string, bool), key string, fallback float64, invalid *[]string) float64 {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		*invalid = append(*invalid, key)
		return fallback
	}
	return f
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool, invalid *[]string) bool {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		*invalid = append(*invalid, key)
		return fallback
	}
	return b
}
