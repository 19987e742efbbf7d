package order

import (
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopbot/internal/domain"
	"github.com/vladislavdragonenkov/shopbot/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/shopbot/internal/metrics"
)

// NewItem описывает позицию для создания заказа вместе с его строками.
type NewItem struct {
	ProductID int64
	Qty       int32
	// PriceMinor — цена за единицу, снятая в момент оформления, а не
	// перечитанная из каталога.
	PriceMinor int64
}

// Service реализует операции над заказами поверх документного хранилища.
type Service struct {
	store     domain.DocumentStore
	logger    *log.Entry
	metrics   *metrics.ShopMetrics
	publisher domain.EventPublisher
}

// NewService конструирует сервис заказов.
func NewService(store domain.DocumentStore, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "orders")
	}
	return &Service{store: store, logger: logger}
}

// WithMetrics подключает метрики магазина.
func (s *Service) WithMetrics(m *metrics.ShopMetrics) *Service {
	s.metrics = m
	return s
}

// WithPublisher подключает публикацию событий заказов.
func (s *Service) WithPublisher(p domain.EventPublisher) *Service {
	s.publisher = p
	return s
}

// Create создаёт заказ со статусом pending и меткой времени UTC.
func (s *Service) Create(actorID int64, fullName, address, phone string, totalMinor int64) (int64, error) {
	var oid int64
	_, err := s.store.Mutate(func(doc *domain.Document) error {
		oid = doc.Meta.NextOrderID
		doc.Meta.NextOrderID++
		doc.Orders = append(doc.Orders, domain.Order{
			ID:         oid,
			ActorID:    actorID,
			FullName:   fullName,
			Address:    address,
			Phone:      phone,
			TotalMinor: totalMinor,
			Status:     domain.OrderStatusPending,
			CreatedAt:  time.Now().UTC(),
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.afterOrderCreated(oid, actorID)
	return oid, nil
}

// AddItem добавляет позицию к заказу. Существование orderID вызывающая
// сторона проверяет сама: внешних ключей в документе нет.
func (s *Service) AddItem(orderID, productID int64, qty int32, priceMinor int64) error {
	if qty <= 0 {
		return domain.ErrQtyInvalid
	}
	_, err := s.store.Mutate(func(doc *domain.Document) error {
		appendItem(doc, orderID, productID, qty, priceMinor)
		return nil
	})
	return err
}

// CreateWithItems создаёт заказ и все его позиции одной транзакцией
// хранилища: читатель ListItems никогда не увидит заказ без строк.
// Сумма заказа обязана сходиться с суммой позиций qty*price.
func (s *Service) CreateWithItems(actorID int64, fullName, address, phone string, totalMinor int64, items []NewItem) (int64, error) {
	probe := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		probe = append(probe, domain.OrderItem{Qty: item.Qty, PriceMinor: item.PriceMinor})
	}
	if err := domain.ValidateTotal(domain.Order{TotalMinor: totalMinor}, probe); err != nil {
		return 0, err
	}

	var oid int64
	_, err := s.store.Mutate(func(doc *domain.Document) error {
		oid = doc.Meta.NextOrderID
		doc.Meta.NextOrderID++
		doc.Orders = append(doc.Orders, domain.Order{
			ID:         oid,
			ActorID:    actorID,
			FullName:   fullName,
			Address:    address,
			Phone:      phone,
			TotalMinor: totalMinor,
			Status:     domain.OrderStatusPending,
			CreatedAt:  time.Now().UTC(),
		})
		for _, item := range items {
			appendItem(doc, oid, item.ProductID, item.Qty, item.PriceMinor)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.afterOrderCreated(oid, actorID)
	return oid, nil
}

// Get возвращает заказ или ErrOrderNotFound.
func (s *Service) Get(id int64) (domain.Order, error) {
	doc, err := s.store.Load()
	if err != nil {
		return domain.Order{}, err
	}
	for _, o := range doc.Orders {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, domain.ErrOrderNotFound
}

// GetTotal возвращает зафиксированную сумму заказа.
func (s *Service) GetTotal(id int64) (int64, error) {
	o, err := s.Get(id)
	if err != nil {
		return 0, err
	}
	return o.TotalMinor, nil
}

// ListRecent возвращает последние заказы по убыванию id, не более limit.
func (s *Service) ListRecent(limit int) ([]domain.Order, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	result := append([]domain.Order(nil), doc.Orders...)
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ListItems возвращает позиции заказа в порядке их вставки.
func (s *Service) ListItems(orderID int64) ([]domain.OrderItem, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	items := make([]domain.OrderItem, 0)
	for _, item := range doc.OrderItems {
		if item.OrderID == orderID {
			items = append(items, item)
		}
	}
	return items, nil
}

// SetStatus меняет статус заказа. Членство статуса в закрытом перечне
// проверяет вызывающая сторона до вызова.
func (s *Service) SetStatus(id int64, status domain.OrderStatus) error {
	var actorID int64
	_, err := s.store.Mutate(func(doc *domain.Document) error {
		for i := range doc.Orders {
			if doc.Orders[i].ID == id {
				doc.Orders[i].Status = status
				actorID = doc.Orders[i].ActorID
				return nil
			}
		}
		return domain.ErrOrderNotFound
	})
	if err != nil {
		return err
	}

	eventType := kafka.EventTypeOrderStatusChanged
	if status == domain.OrderStatusPaid {
		eventType = kafka.EventTypeOrderPaid
	}
	s.publishOrderEvent(eventType, id, actorID, status, nil)
	s.logger.WithFields(log.Fields{
		"order_id": id,
		"status":   status,
	}).Info("статус заказа изменён")
	return nil
}

func appendItem(doc *domain.Document, orderID, productID int64, qty int32, priceMinor int64) {
	itemID := doc.Meta.NextOrderItemID
	doc.Meta.NextOrderItemID++
	doc.OrderItems = append(doc.OrderItems, domain.OrderItem{
		ID:         itemID,
		OrderID:    orderID,
		ProductID:  productID,
		Qty:        qty,
		PriceMinor: priceMinor,
	})
}

func (s *Service) afterOrderCreated(orderID, actorID int64) {
	if s.metrics != nil {
		s.metrics.RecordOrderCreated()
	}
	s.publishOrderEvent(kafka.EventTypeOrderCreated, orderID, actorID, domain.OrderStatusPending, nil)
	s.logger.WithFields(log.Fields{
		"order_id": orderID,
		"actor_id": actorID,
	}).Info("создан новый заказ")
}

func (s *Service) publishOrderEvent(eventType kafka.EventType, orderID, actorID int64, status domain.OrderStatus, metadata map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	event := kafka.NewOrderEvent(eventType, orderID, actorID, string(status), metadata)
	if err := s.publisher.PublishEvent(kafka.TopicOrderEvents, kafka.OrderKey(orderID), event); err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Warn("не удалось опубликовать событие заказа")
		return
	}
	if s.metrics != nil {
		s.metrics.RecordEventPublished()
	}
}
