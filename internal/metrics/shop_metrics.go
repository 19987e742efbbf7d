package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ShopMetrics содержит метрики документного хранилища и покупательских потоков.
type ShopMetrics struct {
	// Счётчики операций хранилища
	storeMutations      prometheus.Counter
	storeMutationErrors prometheus.Counter

	// Гистограммы времени выполнения
	storeMutationDuration prometheus.Histogram
	storeLoadDuration     prometheus.Histogram

	// Счётчики доменных событий
	ordersCreated   prometheus.Counter
	productsCreated prometheus.Counter
	eventsPublished prometheus.Counter

	// Gauge для незавершённых потоков
	activeCheckouts prometheus.Gauge
	activeWizards   prometheus.Gauge
}

// NewShopMetrics создаёт метрики магазина в default-реестре.
func NewShopMetrics() *ShopMetrics {
	return newShopMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newShopMetricsWithRegisterer(registerer prometheus.Registerer) *ShopMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ShopMetrics{
		storeMutations: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_store_mutations_total",
			Help: "Total number of document store mutate transactions committed",
		}),
		storeMutationErrors: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_store_mutation_errors_total",
			Help: "Total number of document store mutate transactions failed",
		}),
		storeMutationDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "shop_store_mutation_duration_seconds",
			Help:    "Duration of document store mutate transactions in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		storeLoadDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "shop_store_load_duration_seconds",
			Help:    "Duration of document store loads in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_orders_created_total",
			Help: "Total number of orders created via checkout",
		}),
		productsCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_products_created_total",
			Help: "Total number of products created by administrators",
		}),
		eventsPublished: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_events_published_total",
			Help: "Total number of shop events published to the message bus",
		}),
		activeCheckouts: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "shop_active_checkouts",
			Help: "Number of actors currently awaiting contact info",
		}),
		activeWizards: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "shop_active_wizards",
			Help: "Number of administrators with a product wizard in progress",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordStoreMutation фиксирует успешную транзакцию mutate и её длительность.
func (m *ShopMetrics) RecordStoreMutation(duration time.Duration) {
	m.storeMutations.Inc()
	m.storeMutationDuration.Observe(duration.Seconds())
}

// RecordStoreMutationError увеличивает счётчик неудачных mutate.
func (m *ShopMetrics) RecordStoreMutationError() {
	m.storeMutationErrors.Inc()
}

// RecordStoreLoad фиксирует длительность чтения документа.
func (m *ShopMetrics) RecordStoreLoad(duration time.Duration) {
	m.storeLoadDuration.Observe(duration.Seconds())
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *ShopMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}

// RecordProductCreated увеличивает счётчик созданных товаров.
func (m *ShopMetrics) RecordProductCreated() {
	m.productsCreated.Inc()
}

// RecordEventPublished увеличивает счётчик опубликованных событий.
func (m *ShopMetrics) RecordEventPublished() {
	m.eventsPublished.Inc()
}

// RecordCheckoutStarted увеличивает количество активных оформлений.
func (m *ShopMetrics) RecordCheckoutStarted() {
	m.activeCheckouts.Inc()
}

// RecordCheckoutFinished уменьшает количество активных оформлений.
func (m *ShopMetrics) RecordCheckoutFinished() {
	m.activeCheckouts.Dec()
}

// RecordWizardStarted увеличивает количество активных мастеров.
func (m *ShopMetrics) RecordWizardStarted() {
	m.activeWizards.Inc()
}

// RecordWizardFinished уменьшает количество активных мастеров.
func (m *ShopMetrics) RecordWizardFinished() {
	m.activeWizards.Dec()
}
