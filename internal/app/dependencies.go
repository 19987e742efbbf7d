package app

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopbot/internal/domain"
	"github.com/vladislavdragonenkov/shopbot/internal/gateway"
	"github.com/vladislavdragonenkov/shopbot/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/shopbot/internal/metrics"
	"github.com/vladislavdragonenkov/shopbot/internal/notify"
	"github.com/vladislavdragonenkov/shopbot/internal/service/admin"
	"github.com/vladislavdragonenkov/shopbot/internal/service/cart"
	"github.com/vladislavdragonenkov/shopbot/internal/service/catalog"
	"github.com/vladislavdragonenkov/shopbot/internal/service/checkout"
	"github.com/vladislavdragonenkov/shopbot/internal/service/order"
	"github.com/vladislavdragonenkov/shopbot/internal/service/payment"
	"github.com/vladislavdragonenkov/shopbot/internal/service/settings"
	"github.com/vladislavdragonenkov/shopbot/internal/service/wizard"
	"github.com/vladislavdragonenkov/shopbot/internal/storage/file"
	"github.com/vladislavdragonenkov/shopbot/internal/storage/postgres"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Store    domain.DocumentStore
	Metrics  *metrics.ShopMetrics
	Gateway  *gateway.Gateway
	Notifier domain.AdminNotifier
	Logger   *log.Entry

	// Producer и Postgres не nil только при соответствующей конфигурации;
	// закрываются при остановке приложения.
	Producer *kafka.Producer
	Postgres *postgres.Store
}

// NewDependencies создаёт и связывает все зависимости приложения: хранилище
// (Postgres при заданном DSN, иначе файл), метрики, опциональный Kafka
// producer, сервисы магазина и шлюз.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	shopMetrics := metrics.NewShopMetrics()

	deps := &Dependencies{
		Metrics: shopMetrics,
		Logger:  logger,
	}

	if cfg.DatabaseDSN != "" {
		pg, err := postgres.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, err
		}
		deps.Postgres = pg
		deps.Store = pg
		logger.Info("документное хранилище: postgres")
	} else {
		fileStore, err := file.NewWithMetrics(cfg.DatabasePath, logger.WithField("component", "file-store"), shopMetrics)
		if err != nil {
			return nil, err
		}
		deps.Store = fileStore
		logger.WithField("path", cfg.DatabasePath).Info("документное хранилище: файл")
	}

	// Kafka producer опционален: магазин полностью работоспособен без шины.
	var publisher domain.EventPublisher
	if cfg.KafkaBrokers != "" {
		brokers := strings.Split(cfg.KafkaBrokers, ",")
		producer, err := kafka.NewProducer(brokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		} else {
			deps.Producer = producer
			publisher = producer
			logger.WithField("brokers", brokers).Info("kafka producer initialized")
		}
	}

	deps.Notifier = notify.NewLogNotifier(logger.WithField("component", "admin-notify"))

	catalogSvc := catalog.NewService(deps.Store, logger.WithField("component", "catalog")).WithMetrics(shopMetrics)
	orderSvc := order.NewService(deps.Store, logger.WithField("component", "orders")).WithMetrics(shopMetrics)
	if publisher != nil {
		catalogSvc = catalogSvc.WithPublisher(publisher)
		orderSvc = orderSvc.WithPublisher(publisher)
	}
	settingsSvc := settings.NewService(deps.Store, logger.WithField("component", "settings"))
	cartEngine := cart.NewEngine(catalogSvc, logger.WithField("component", "cart"))
	checkoutFlow := checkout.NewFlow(cartEngine, orderSvc, logger.WithField("component", "checkout")).
		WithNotifier(deps.Notifier).
		WithMetrics(shopMetrics)
	productWizard := wizard.New(catalogSvc, logger.WithField("component", "wizard")).WithMetrics(shopMetrics)
	sessionManager := admin.NewSessionManager(cfg.AdminPassword, cfg.AdminID, logger.WithField("component", "admin-sessions"))
	linkProvider := payment.NewLinkProvider(cfg.WebhookHost, cfg.USDTWallet)

	deps.Gateway = gateway.New(gateway.Deps{
		Catalog:  catalogSvc,
		Orders:   orderSvc,
		Settings: settingsSvc,
		Carts:    cartEngine,
		Checkout: checkoutFlow,
		Wizard:   productWizard,
		Sessions: sessionManager,
		Payments: linkProvider,
		Notifier: deps.Notifier,
	}, logger.WithField("component", "gateway"))

	return deps, nil
}

// Close освобождает внешние ресурсы зависимостей.
func (d *Dependencies) Close() {
	if d.Producer != nil {
		if err := d.Producer.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close kafka producer")
		} else {
			d.Logger.Info("kafka producer closed")
		}
	}
	if d.Postgres != nil {
		if err := d.Postgres.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}
