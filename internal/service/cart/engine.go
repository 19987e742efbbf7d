package cart

import (
	"errors"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopbot/internal/domain"
)

// ProductGetter — минимальная зависимость корзины от каталога.
type ProductGetter interface {
	Get(id int64) (domain.Product, error)
}

// Line — строка корзины, разрешённая против каталога.
type Line struct {
	Product   domain.Product
	Qty       int32
	LineTotal int64
}

// View — снимок корзины с итоговой суммой по выжившим строкам.
type View struct {
	Lines      []Line
	TotalMinor int64
}

// Engine хранит корзины всех акторов в памяти процесса. Состояние не
// переживает рестарт: корзина — эфемерное покупательское состояние.
type Engine struct {
	mu      sync.Mutex
	carts   map[int64]map[int64]int32
	catalog ProductGetter
	logger  *log.Entry
}

// NewEngine конструирует движок корзин.
func NewEngine(catalog ProductGetter, logger *log.Entry) *Engine {
	if logger == nil {
		logger = log.New().WithField("component", "cart")
	}
	return &Engine{
		carts:   make(map[int64]map[int64]int32),
		catalog: catalog,
		logger:  logger,
	}
}

// Add увеличивает количество товара в корзине актора; первая вставка
// создаёт запись с количеством 1.
func (e *Engine) Add(actorID, productID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cart, ok := e.carts[actorID]
	if !ok {
		cart = make(map[int64]int32)
		e.carts[actorID] = cart
	}
	cart[productID]++
}

// Remove удаляет запись товара целиком. Возвращает false, если товара в
// корзине не было; это не ошибка, а ответ «не найдено».
func (e *Engine) Remove(actorID, productID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	cart, ok := e.carts[actorID]
	if !ok {
		return false
	}
	if _, present := cart[productID]; !present {
		return false
	}
	delete(cart, productID)
	if len(cart) == 0 {
		delete(e.carts, actorID)
	}
	return true
}

// Snapshot возвращает копию сырого содержимого корзины (product id -> qty).
func (e *Engine) Snapshot(actorID int64) map[int64]int32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	cart := e.carts[actorID]
	out := make(map[int64]int32, len(cart))
	for pid, qty := range cart {
		out[pid] = qty
	}
	return out
}

// Resolve разрешает содержимое корзины против каталога. Записи, чей товар
// уже удалён администратором, молча пропускаются.
func (e *Engine) Resolve(actorID int64) (View, error) {
	snapshot := e.Snapshot(actorID)

	view := View{Lines: make([]Line, 0, len(snapshot))}
	for pid, qty := range snapshot {
		product, err := e.catalog.Get(pid)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				continue
			}
			return View{}, err
		}
		lineTotal := product.PriceMinor * int64(qty)
		view.Lines = append(view.Lines, Line{Product: product, Qty: qty, LineTotal: lineTotal})
		view.TotalMinor += lineTotal
	}
	// Стабильный порядок строк для консистентного рендеринга.
	sort.Slice(view.Lines, func(i, j int) bool {
		return view.Lines[i].Product.ID < view.Lines[j].Product.ID
	})
	return view, nil
}

// Clear сбрасывает корзину актора целиком.
func (e *Engine) Clear(actorID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.carts, actorID)
}
