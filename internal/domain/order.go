package domain

import (
	"strings"
	"time"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, оплата ещё не выполнена.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusProcessing — заказ взят администратором в работу.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusPaid — оплата подтверждена платёжным провайдером.
	OrderStatusPaid OrderStatus = "paid"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered — заказ доставлен покупателю.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ отменён.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// AllowedStatuses перечисляет допустимые статусы заказа. Перечень закрыт
// на границе системы: сервис хранения ему доверяет и повторно не проверяет.
var AllowedStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// IsValidOrderStatus проверяет членство статуса в закрытом перечне.
func IsValidOrderStatus(s OrderStatus) bool {
	for _, allowed := range AllowedStatuses {
		if s == allowed {
			return true
		}
	}
	return false
}

// ParseOrderStatus нормализует сырую строку (обрезка, нижний регистр) и
// проверяет членство в закрытом перечне. Возвращает ErrStatusInvalid для
// строки вне перечня.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !IsValidOrderStatus(s) {
		return "", ErrStatusInvalid
	}
	return s, nil
}

// Order агрегирует данные оформленного заказа. Поле Status — единственное,
// которое меняется после создания; TotalMinor неизменен и равен сумме позиций
// на момент оформления.
type Order struct {
	ID int64 `json:"id"`
	// ActorID — идентификатор покупателя в транспортном слое.
	ActorID int64 `json:"user_id"`
	// FullName, Address, Phone — контактные данные из шага оформления.
	FullName string `json:"fullname"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	// TotalMinor — сумма заказа в минимальных единицах на момент создания.
	TotalMinor int64       `json:"total"`
	Status     OrderStatus `json:"status"`
	// CreatedAt фиксируется в UTC и не меняется.
	CreatedAt time.Time `json:"created_ts"`
}

// OrderItem — одна позиция заказа. Цена за единицу снимается в момент
// оформления: последующие правки цены товара не меняют исторические заказы.
type OrderItem struct {
	ID        int64 `json:"id"`
	OrderID   int64 `json:"order_id"`
	ProductID int64 `json:"product_id"`
	Qty       int32 `json:"qty"`
	// PriceMinor — цена за единицу, зафиксированная при оформлении.
	PriceMinor int64 `json:"price"`
}

// ValidateTotal сверяет сумму заказа с суммой его позиций qty*price.
func ValidateTotal(order Order, items []OrderItem) error {
	var calc int64
	for _, item := range items {
		if item.Qty <= 0 {
			return ErrQtyInvalid
		}
		if item.PriceMinor < 0 {
			return ErrPriceInvalid
		}
		calc += int64(item.Qty) * item.PriceMinor
	}
	if calc != order.TotalMinor {
		return ErrTotalMismatch
	}
	return nil
}
