package checkout

import (
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopbot/internal/domain"
	"github.com/vladislavdragonenkov/shopbot/internal/metrics"
	"github.com/vladislavdragonenkov/shopbot/internal/service/cart"
	"github.com/vladislavdragonenkov/shopbot/internal/service/order"
)

// ContactSeparator — фиксированный разделитель полей контактной строки
// «Имя — Адрес — Телефон».
const ContactSeparator = "—"

// CartService — зависимость оформления от движка корзин.
type CartService interface {
	Resolve(actorID int64) (cart.View, error)
	Clear(actorID int64)
}

// OrderCreator — зависимость оформления от сервиса заказов.
type OrderCreator interface {
	CreateWithItems(actorID int64, fullName, address, phone string, totalMinor int64, items []order.NewItem) (int64, error)
}

// Draft — снимок корзины, сделанный в момент начала оформления. Цены в
// строках зафиксированы: параллельная правка цены товара не изменит заказ.
type Draft struct {
	Lines      []cart.Line
	TotalMinor int64
	CreatedAt  time.Time
}

// Summary — результат успешного оформления для подтверждающего сообщения.
type Summary struct {
	OrderID    int64
	TotalMinor int64
}

// Flow — двухфазный конечный автомат оформления на каждого актора:
// Idle -> AwaitingContactInfo -> Idle. Состояние живёт в памяти процесса
// и не переживает рестарт (как и корзина).
type Flow struct {
	mu     sync.Mutex
	drafts map[int64]Draft

	carts    CartService
	orders   OrderCreator
	notifier domain.AdminNotifier
	logger   *log.Entry
	metrics  *metrics.ShopMetrics
}

// NewFlow конструирует поток оформления.
func NewFlow(carts CartService, orders OrderCreator, logger *log.Entry) *Flow {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &Flow{
		drafts: make(map[int64]Draft),
		carts:  carts,
		orders: orders,
		logger: logger,
	}
}

// WithNotifier подключает уведомления администратора о новых заказах.
func (f *Flow) WithNotifier(n domain.AdminNotifier) *Flow {
	f.notifier = n
	return f
}

// WithMetrics подключает метрики магазина.
func (f *Flow) WithMetrics(m *metrics.ShopMetrics) *Flow {
	f.metrics = m
	return f
}

// Begin снимает корзину актора, считает сумму и переводит актора в фазу
// ожидания контактных данных. Возвращает ErrEmptyCart, если в корзине нет
// ни одной разрешимой строки.
func (f *Flow) Begin(actorID int64) (Draft, error) {
	view, err := f.carts.Resolve(actorID)
	if err != nil {
		return Draft{}, err
	}
	if len(view.Lines) == 0 {
		return Draft{}, domain.ErrEmptyCart
	}

	draft := Draft{
		Lines:      view.Lines,
		TotalMinor: view.TotalMinor,
		CreatedAt:  time.Now().UTC(),
	}

	f.mu.Lock()
	_, existed := f.drafts[actorID]
	f.drafts[actorID] = draft
	f.mu.Unlock()

	if !existed && f.metrics != nil {
		f.metrics.RecordCheckoutStarted()
	}
	f.logger.WithFields(log.Fields{
		"actor_id": actorID,
		"total":    draft.TotalMinor,
		"lines":    len(draft.Lines),
	}).Info("оформление начато")
	return draft, nil
}

// Active сообщает, ждёт ли актор ввода контактных данных.
func (f *Flow) Active(actorID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.drafts[actorID]
	return ok
}

// SubmitContactInfo разбирает контактную строку и финализирует заказ.
// При ошибке разбора черновик сохраняется: актор может повторить ввод.
// Заказ и все его позиции записываются одной транзакцией хранилища.
func (f *Flow) SubmitContactInfo(actorID int64, rawText string) (Summary, error) {
	f.mu.Lock()
	draft, ok := f.drafts[actorID]
	f.mu.Unlock()
	if !ok {
		return Summary{}, domain.ErrNoActiveCheckout
	}

	fullName, address, phone, err := ParseContactInfo(rawText)
	if err != nil {
		return Summary{}, err
	}

	items := make([]order.NewItem, 0, len(draft.Lines))
	for _, line := range draft.Lines {
		items = append(items, order.NewItem{
			ProductID:  line.Product.ID,
			Qty:        line.Qty,
			PriceMinor: line.Product.PriceMinor,
		})
	}

	orderID, err := f.orders.CreateWithItems(actorID, fullName, address, phone, draft.TotalMinor, items)
	if err != nil {
		// Состояние потока не трогаем: актор может повторить ту же строку
		// после устранения сбоя хранилища.
		return Summary{}, err
	}

	f.carts.Clear(actorID)
	f.mu.Lock()
	delete(f.drafts, actorID)
	f.mu.Unlock()
	if f.metrics != nil {
		f.metrics.RecordCheckoutFinished()
	}

	f.notifyAdmin(orderID, fullName, address, phone, draft.TotalMinor)
	f.logger.WithFields(log.Fields{
		"actor_id": actorID,
		"order_id": orderID,
		"total":    draft.TotalMinor,
	}).Info("заказ оформлен")
	return Summary{OrderID: orderID, TotalMinor: draft.TotalMinor}, nil
}

// Cancel сбрасывает черновик оформления. Возвращает false, если его не было.
func (f *Flow) Cancel(actorID int64) bool {
	f.mu.Lock()
	_, ok := f.drafts[actorID]
	delete(f.drafts, actorID)
	f.mu.Unlock()

	if ok && f.metrics != nil {
		f.metrics.RecordCheckoutFinished()
	}
	return ok
}

// ParseContactInfo разбирает строку «Имя — Адрес — Телефон». Возвращает
// ErrMalformedContactInfo, если полей меньше трёх.
func ParseContactInfo(rawText string) (fullName, address, phone string, err error) {
	parts := strings.Split(rawText, ContactSeparator)
	if len(parts) < 3 {
		return "", "", "", domain.ErrMalformedContactInfo
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2]), nil
}

func (f *Flow) notifyAdmin(orderID int64, fullName, address, phone string, totalMinor int64) {
	if f.notifier == nil {
		return
	}
	text := fmt.Sprintf(
		"Yangi buyurtma #%d\nFIO: %s\nManzil: %s\nTel: %s\nJami: %d so'm",
		orderID, fullName, address, phone, totalMinor,
	)
	if err := f.notifier.NotifyAdmin(text); err != nil {
		f.logger.WithError(err).WithField("order_id", orderID).Warn("не удалось уведомить администратора")
	}
}
