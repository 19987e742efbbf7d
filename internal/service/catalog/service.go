package catalog

import (
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopbot/internal/domain"
	"github.com/vladislavdragonenkov/shopbot/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/shopbot/internal/metrics"
)

// Service реализует CRUD каталога поверх документного хранилища.
// Каждая операция — ровно один Load (чтение) или один Mutate (запись).
type Service struct {
	store     domain.DocumentStore
	logger    *log.Entry
	metrics   *metrics.ShopMetrics
	publisher domain.EventPublisher // опциональная шина событий каталога
}

// NewService конструирует сервис каталога.
func NewService(store domain.DocumentStore, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "catalog")
	}
	return &Service{store: store, logger: logger}
}

// WithMetrics подключает метрики магазина.
func (s *Service) WithMetrics(m *metrics.ShopMetrics) *Service {
	s.metrics = m
	return s
}

// WithPublisher подключает публикацию событий каталога.
func (s *Service) WithPublisher(p domain.EventPublisher) *Service {
	s.publisher = p
	return s
}

// Create добавляет товар и возвращает выделенный идентификатор.
// Чтение счётчика, инкремент и вставка записи происходят внутри одного
// Mutate, поэтому конкурентные создания не могут получить одинаковый id.
func (s *Service) Create(name, category string, priceMinor int64, description, photoRef string) (int64, error) {
	if priceMinor <= 0 {
		return 0, domain.ErrPriceInvalid
	}
	if strings.TrimSpace(name) == "" {
		return 0, domain.ErrFieldRequired
	}

	var pid int64
	_, err := s.store.Mutate(func(doc *domain.Document) error {
		pid = doc.Meta.NextProductID
		doc.Meta.NextProductID++
		doc.Products = append(doc.Products, domain.Product{
			ID:          pid,
			Name:        name,
			Category:    category,
			PriceMinor:  priceMinor,
			Description: description,
			PhotoRef:    photoRef,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}

	if s.metrics != nil {
		s.metrics.RecordProductCreated()
	}
	s.publishProductEvent(kafka.EventTypeProductCreated, pid, map[string]interface{}{
		"name":     name,
		"category": category,
	})
	s.logger.WithFields(log.Fields{
		"product_id": pid,
		"category":   category,
	}).Info("товар добавлен в каталог")
	return pid, nil
}

// ListByCategory возвращает товары категории по точному совпадению строки.
// Пустая выборка — не ошибка.
func (s *Service) ListByCategory(category string) ([]domain.Product, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	result := make([]domain.Product, 0)
	for _, p := range doc.Products {
		if p.Category == category {
			result = append(result, p)
		}
	}
	return result, nil
}

// ListAll возвращает товары по возрастанию id; limit > 0 усекает выборку.
func (s *Service) ListAll(limit int) ([]domain.Product, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	result := append([]domain.Product(nil), doc.Products...)
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Get возвращает товар или ErrProductNotFound.
func (s *Service) Get(id int64) (domain.Product, error) {
	doc, err := s.store.Load()
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range doc.Products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrProductNotFound
}

// Update применяет частичное обновление: nil-поля сохраняют прежние значения.
func (s *Service) Update(id int64, upd domain.ProductUpdate) error {
	if upd.Empty() {
		return nil
	}
	if upd.PriceMinor != nil && *upd.PriceMinor <= 0 {
		return domain.ErrPriceInvalid
	}

	_, err := s.store.Mutate(func(doc *domain.Document) error {
		for i := range doc.Products {
			if doc.Products[i].ID == id {
				upd.Apply(&doc.Products[i])
				return nil
			}
		}
		return domain.ErrProductNotFound
	})
	if err != nil {
		return err
	}

	s.publishProductEvent(kafka.EventTypeProductUpdated, id, nil)
	s.logger.WithField("product_id", id).Info("товар обновлён")
	return nil
}

// Delete удаляет товар. Исторические позиции заказов, ссылающиеся на него,
// не трогаются: заказы должны сохранять свои строки.
func (s *Service) Delete(id int64) error {
	_, err := s.store.Mutate(func(doc *domain.Document) error {
		for i := range doc.Products {
			if doc.Products[i].ID == id {
				doc.Products = append(doc.Products[:i], doc.Products[i+1:]...)
				return nil
			}
		}
		return domain.ErrProductNotFound
	})
	if err != nil {
		return err
	}

	s.publishProductEvent(kafka.EventTypeProductDeleted, id, nil)
	s.logger.WithField("product_id", id).Info("товар удалён из каталога")
	return nil
}

// publishProductEvent отправляет событие каталога, если шина подключена.
// Сбой публикации не откатывает уже зафиксированную мутацию.
func (s *Service) publishProductEvent(eventType kafka.EventType, productID int64, metadata map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	event := kafka.NewProductEvent(eventType, productID, metadata)
	if err := s.publisher.PublishEvent(kafka.TopicCatalogEvents, kafka.ProductKey(productID), event); err != nil {
		s.logger.WithError(err).WithField("product_id", productID).Warn("не удалось опубликовать событие каталога")
		return
	}
	if s.metrics != nil {
		s.metrics.RecordEventPublished()
	}
}
