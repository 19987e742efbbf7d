package domain

import "errors"

var (
	// ErrProductNotFound возвращается, если товар не найден в документе.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound возвращается, если заказ не найден в документе.
	ErrOrderNotFound = errors.New("order not found")
	// ErrPriceInvalid — цена должна быть положительным целым числом.
	ErrPriceInvalid = errors.New("price must be a positive integer")
	// ErrQtyInvalid — количество должно быть больше нуля.
	ErrQtyInvalid = errors.New("qty must be greater than zero")
	// ErrTotalMismatch — сумма заказа не совпадает с суммой позиций.
	ErrTotalMismatch = errors.New("order total does not match items sum")
	// ErrStatusInvalid — статус вне закрытого перечня.
	ErrStatusInvalid = errors.New("unknown order status")
	// ErrFieldRequired — обязательное текстовое поле пустое.
	ErrFieldRequired = errors.New("field must not be empty")
	// ErrEmptyCart — оформление начато с пустой корзиной (или все позиции
	// корзины указывают на удалённые товары).
	ErrEmptyCart = errors.New("cart is empty")
	// ErrMalformedContactInfo — контактная строка не распарсилась на три поля.
	ErrMalformedContactInfo = errors.New("contact info must contain name, address and phone")
	// ErrNoActiveCheckout — для актора нет незавершённого оформления.
	ErrNoActiveCheckout = errors.New("no active checkout")
	// ErrNoActiveWizard — для администратора нет незавершённого мастера.
	ErrNoActiveWizard = errors.New("no active wizard")
	// ErrNotAuthorized — операция доступна только администратору.
	ErrNotAuthorized = errors.New("actor is not an administrator")
)

// IsNotFound проверяет, является ли ошибка отсутствием записи.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrOrderNotFound)
}
