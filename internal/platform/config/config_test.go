package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Cart.Backend != CartBackendMemory {
		t.Errorf("expected memory cart backend, got %s", cfg.Cart.Backend)
	}
	if cfg.Cart.KeyPrefix != "cart:" {
		t.Errorf("unexpected cart key prefix %q", cfg.Cart.KeyPrefix)
	}
	if cfg.Site.VisitorCookie != "ignito_visitor" {
		t.Errorf("unexpected visitor cookie %q", cfg.Site.VisitorCookie)
	}
	if cfg.Orders.Endpoint != "http://127.0.0.1:8080/order" {
		t.Errorf("expected order endpoint to default to local backend, got %s", cfg.Orders.Endpoint)
	}
	if cfg.Orders.ContactEndpoint != "http://127.0.0.1:8080/contact" {
		t.Errorf("expected contact endpoint to default to local backend, got %s", cfg.Orders.ContactEndpoint)
	}
	if cfg.Payments.Provider != "static" {
		t.Errorf("expected static payment provider, got %s", cfg.Payments.Provider)
	}
	if cfg.PubSub.Topic != "" {
		t.Errorf("expected events disabled by default, got topic %q", cfg.PubSub.Topic)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"SITE_SERVER_PORT":          "9090",
		"SITE_SERVER_READ_TIMEOUT":  "20s",
		"SITE_BASE_URL":             "https://ignito.example.com/",
		"SITE_CART_BACKEND":         "Redis",
		"SITE_REDIS_URL":            "redis://localhost:6379/0",
		"SITE_REDIS_POOL_SIZE":      "4",
		"SITE_FIRESTORE_PROJECT_ID": "ignito-prod",
		"SITE_PUBSUB_ORDER_TOPIC":   "orders",
		"SITE_PAYMENT_PROVIDER":     "stripe",
		"SITE_STRIPE_SECRET_KEY":    "sk_test_123",
		"SITE_MAP_LATITUDE":         "51.5",
		"SITE_SECURE_COOKIES":       "true",
		"LOG_LEVEL":                 "debug",
	}

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 20*time.Second {
		t.Errorf("unexpected read timeout %s", cfg.Server.ReadTimeout)
	}
	if cfg.Cart.Backend != CartBackendRedis {
		t.Errorf("expected redis backend, got %s", cfg.Cart.Backend)
	}
	if cfg.Redis.PoolSize != 4 {
		t.Errorf("unexpected pool size %d", cfg.Redis.PoolSize)
	}
	if cfg.Orders.Endpoint != "https://ignito.example.com/order" {
		t.Errorf("unexpected order endpoint %s", cfg.Orders.Endpoint)
	}
	if cfg.PubSub.ProjectID != "ignito-prod" {
		t.Errorf("expected pubsub project to default to firestore project, got %s", cfg.PubSub.ProjectID)
	}
	if cfg.Site.MapLatitude != 51.5 {
		t.Errorf("unexpected latitude %f", cfg.Site.MapLatitude)
	}
	if !cfg.Site.SecureCookies {
		t.Errorf("expected secure cookies")
	}
	if cfg.Site.LogLevel != "debug" {
		t.Errorf("unexpected log level %s", cfg.Site.LogLevel)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	env := map[string]string{
		"SITE_CART_BACKEND":        "firestore",
		"SITE_SERVER_READ_TIMEOUT": "soon",
		"SITE_PAYMENT_PROVIDER":    "stripe",
	}

	_, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected validation error")
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	want := map[string]bool{
		"SITE_SERVER_READ_TIMEOUT": false,
		"Firestore.ProjectID":      false,
		"Payments.StripeSecretKey": false,
	}
	for _, field := range vErr.Fields() {
		if _, ok := want[field]; ok {
			want[field] = true
		}
	}
	for field, seen := range want {
		if !seen {
			t.Errorf("expected %s in validation fields %v", field, vErr.Fields())
		}
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	_, err := Load(WithEnvMap(map[string]string{"SITE_CART_BACKEND": "cookies"}), WithoutSystemEnv(), WithEnvFile(""))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if fields := vErr.Fields(); len(fields) != 1 || fields[0] != "Cart.Backend" {
		t.Errorf("unexpected fields %v", fields)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "# local overrides\nexport SITE_SERVER_PORT=7000\nSITE_CURRENCY=\"eur\"\nLOG_LEVEL=warn\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("SITE_CURRENCY", "gbp")

	cfg, err := Load(WithEnvFile(envPath), WithEnvMap(map[string]string{"LOG_LEVEL": "error"}))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "7000" {
		t.Errorf("expected .env port 7000, got %s", cfg.Server.Port)
	}
	if cfg.Site.Currency != "GBP" {
		t.Errorf("expected process env to override .env, got %s", cfg.Site.Currency)
	}
	if cfg.Site.LogLevel != "error" {
		t.Errorf("expected explicit map to win, got %s", cfg.Site.LogLevel)
	}
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	_, err := Load(WithEnvFile(filepath.Join(t.TempDir(), "missing.env")), WithoutSystemEnv())
	if err != nil {
		t.Fatalf("expected missing .env to be ignored, got %v", err)
	}
}
