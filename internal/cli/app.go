package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/ignitoosolutions/ignito1/internal/blog"
	"github.com/ignitoosolutions/ignito1/internal/cart"
	"github.com/ignitoosolutions/ignito1/internal/catalog"
	"github.com/ignitoosolutions/ignito1/internal/checkout"
	"github.com/ignitoosolutions/ignito1/internal/contact"
	"github.com/ignitoosolutions/ignito1/internal/events"
	"github.com/ignitoosolutions/ignito1/internal/handlers"
	"github.com/ignitoosolutions/ignito1/internal/middleware"
	"github.com/ignitoosolutions/ignito1/internal/payments"
	"github.com/ignitoosolutions/ignito1/internal/platform/config"
	pfirestore "github.com/ignitoosolutions/ignito1/internal/platform/firestore"
	"github.com/ignitoosolutions/ignito1/internal/platform/httpx"
	"github.com/ignitoosolutions/ignito1/internal/platform/metrics"
	"github.com/ignitoosolutions/ignito1/internal/platform/observability"
	"github.com/ignitoosolutions/ignito1/internal/repositories"
	"github.com/ignitoosolutions/ignito1/internal/repositories/sqlite"
	"github.com/ignitoosolutions/ignito1/internal/services"
	"github.com/ignitoosolutions/ignito1/internal/storage"
	"github.com/ignitoosolutions/ignito1/internal/views"
)

const probeKey = "healthz:probe"

// app is the assembled server plus everything that must be closed with it.
type app struct {
	handler http.Handler
	closers []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// buildApp wires storage, services and handlers from cfg. On error anything
// already opened is closed.
func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	var checks []repositories.DependencyCheck

	kv, kvClose, err := openCartStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, kvClose)
	checks = append(checks, repositories.DependencyCheck{
		Name:    "cart_" + cfg.Cart.Backend,
		Timeout: 2 * time.Second,
		Check: func(ctx context.Context) error {
			if _, err := kv.Get(ctx, probeKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
				return err
			}
			return nil
		},
	})

	db, err := sqlite.Open(cfg.Orders.DatabasePath)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)
	checks = append(checks, repositories.DependencyCheck{Name: "sqlite", Timeout: time.Second, Check: db.Ping})

	publisher, pubClose, err := openPublisher(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, pubClose)

	orderSvc, err := services.NewOrderService(services.OrderServiceDeps{
		Repository: db.Orders(),
		Events:     publisher,
		Metrics:    m,
		Logger:     observability.Events(logger.Named("orders"), "order service"),
	})
	if err != nil {
		return nil, err
	}
	contactSvc, err := services.NewContactService(services.ContactServiceDeps{
		Repository: db.Contacts(),
		Metrics:    m,
		Logger:     observability.Events(logger.Named("contacts"), "contact service"),
	})
	if err != nil {
		return nil, err
	}

	seed, err := catalog.Load(cfg.Site.CatalogFile)
	if err != nil {
		return nil, err
	}
	seeded, err := db.Services().Seed(ctx, seed.All())
	if err != nil {
		return nil, err
	}
	if seeded > 0 {
		logger.Info("catalog seeded", zap.Int("services", seeded))
	}
	cat := catalog.NewLive(db.Services(), seed,
		catalog.WithLiveLogger(observability.Events(logger.Named("catalog"), "catalog")),
	)

	sessions := cart.NewSessions(kv,
		cart.WithKeyPrefix(cfg.Cart.KeyPrefix),
		cart.WithLogger(observability.Events(logger.Named("cart"), "cart")),
		cart.WithMetrics(m),
	)
	client := httpx.NewClient(cfg.Orders.SubmitTimeout)
	submitter, err := checkout.NewSubmitter(checkout.SubmitterConfig{
		Endpoint: cfg.Orders.Endpoint,
		Client:   client,
		Sessions: sessions,
		Logger:   observability.Events(logger.Named("checkout"), "checkout"),
		Metrics:  m,
	})
	if err != nil {
		return nil, err
	}
	contactClient, err := contact.NewClient(contact.Config{
		Endpoint: cfg.Orders.ContactEndpoint,
		Client:   client,
		Logger:   observability.Events(logger.Named("contact"), "contact"),
		Metrics:  m,
	})
	if err != nil {
		return nil, err
	}

	widget, err := newWidget(cfg.Payments, logger)
	if err != nil {
		return nil, err
	}

	renderer, err := views.NewRenderer()
	if err != nil {
		return nil, err
	}
	site, err := handlers.NewSiteHandlers(handlers.SiteDeps{
		Renderer:      renderer,
		Catalog:       cat,
		Sessions:      sessions,
		Submitter:     submitter,
		Contact:       contactClient,
		Payments:      widget,
		Blog:          blog.NewComposer(),
		Currency:      cfg.Site.Currency,
		AutoHide:      cfg.Cart.AutoHide,
		SecureCookies: cfg.Site.SecureCookies,
		MapLatitude:   cfg.Site.MapLatitude,
		MapLongitude:  cfg.Site.MapLongitude,
	})
	if err != nil {
		return nil, err
	}

	health, err := repositories.NewDependencyHealthRepository(checks)
	if err != nil {
		return nil, err
	}

	httpLogger := logger.Named("http")
	a.handler = handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.TraceMiddleware(),
			observability.InjectLoggerMiddleware(httpLogger),
			middleware.Visitor(middleware.VisitorConfig{CookieName: cfg.Site.VisitorCookie, Secure: cfg.Site.SecureCookies}),
			middleware.HTMX,
			observability.RequestLoggerMiddleware(),
			observability.RecoveryMiddleware(httpLogger),
		),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(health)),
		handlers.WithMetricsHandler(m.Handler()),
		handlers.WithNotFound(site.NotFound),
		handlers.WithSiteRoutes(site.Routes),
		handlers.WithBackendRoutes(handlers.NewBackendHandlers(orderSvc, contactSvc).Routes),
	)
	return a, nil
}

func openCartStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.KV, func() error, error) {
	switch cfg.Cart.Backend {
	case config.CartBackendRedis:
		client, err := storage.DialRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("cart store: redis")
		return storage.NewRedis(client), client.Close, nil
	case config.CartBackendFirestore:
		provider := pfirestore.NewProvider(cfg.Firestore)
		logger.Info("cart store: firestore", zap.String("project", cfg.Firestore.ProjectID), zap.String("collection", cfg.Firestore.Collection))
		return storage.NewFirestore(provider, cfg.Firestore.Collection), provider.Close, nil
	default:
		logger.Info("cart store: memory")
		return storage.NewMemory(), func() error { return nil }, nil
	}
}

func openPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) (events.Publisher, func() error, error) {
	if strings.TrimSpace(cfg.PubSub.Topic) == "" {
		return events.NopPublisher{}, func() error { return nil }, nil
	}
	client, topic, err := events.Dial(ctx, cfg.PubSub.ProjectID, cfg.PubSub.Topic)
	if err != nil {
		return nil, nil, err
	}
	publisher, err := events.NewPubSubPublisher(topic)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	logger.Info("order events: pubsub", zap.String("topic", cfg.PubSub.Topic))
	return publisher, closePubSub(client, topic), nil
}

func closePubSub(client *pubsub.Client, topic *pubsub.Topic) func() error {
	return func() error {
		topic.Stop()
		return client.Close()
	}
}

func newWidget(cfg config.PaymentsConfig, logger *zap.Logger) (payments.Widget, error) {
	if cfg.Provider != "stripe" {
		return payments.NewStaticWidget(), nil
	}
	paymentLogger := observability.Events(logger.Named("payments"), "payments")
	widget, err := payments.NewStripeWidget(payments.StripeConfig{
		SecretKey:      cfg.StripeSecretKey,
		PublishableKey: cfg.StripePublishableKey,
		Logger:         payments.Logger(paymentLogger),
	})
	if err != nil {
		return nil, fmt.Errorf("stripe widget: %w", err)
	}
	return widget, nil
}
