package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/shopbot/internal/health"
	"github.com/vladislavdragonenkov/shopbot/internal/version"
	"github.com/vladislavdragonenkov/shopbot/internal/webhook"
)

// Config описывает настройки запуска приложения.
type Config struct {
	// HTTPAddr — адрес сервера метрик, health-проверок и платёжного вебхука.
	HTTPAddr string
	// DatabasePath — путь к JSON-файлу документного хранилища.
	DatabasePath string
	// DatabaseDSN — строка подключения Postgres; пустая означает файловое
	// хранилище.
	DatabaseDSN string

	AdminPassword string
	// AdminID — актор, считающийся администратором без входа по паролю.
	AdminID int64

	// KafkaBrokers — список брокеров через запятую; пустой отключает шину.
	KafkaBrokers string

	// WebhookHost — внешний базовый URL для платёжных ссылок.
	WebhookHost string
	USDTWallet  string
}

// DefaultConfig возвращает базовые настройки магазина.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:      ":9090",
		DatabasePath:  "shop.json",
		AdminPassword: "admin123",
		WebhookHost:   "http://localhost:9090",
	}
}

// Run собирает зависимости и держит HTTP-сервер магазина до отмены контекста.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("document-store", healthcheck.NewStoreChecker(deps.Store))

	webhookHandler := webhook.NewHandler(deps.Gateway, logger.WithField("component", "payment-webhook"))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.Handle("/payment/callback", webhookHandler)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP сервер магазина слушает %s", cfg.HTTPAddr)
		logger.Infof("метрики: %s/metrics, health: %s/healthz", cfg.HTTPAddr, cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(srv, logger)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("HTTP shutdown with error")
	}
}
