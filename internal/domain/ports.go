package domain

// MutateFunc — трансформация документа, выполняемая под эксклюзивной
// блокировкой хранилища. Возврат ошибки отменяет запись: документ остаётся
// в прежнем состоянии.
type MutateFunc func(doc *Document) error

// DocumentStore описывает требования к документному хранилищу магазина.
// Каждая публичная операция сервисов — ровно один Load (чтение) или один
// Mutate (запись); последовательность из отдельных load/save снаружи
// запрещена, иначе возможны потерянные обновления.
type DocumentStore interface {
	// Load возвращает свежую копию документа. Чтение не держит блокировку
	// записи и согласовано только с уже зафиксированными мутациями.
	Load() (Document, error)
	// Mutate выполняет цикл load-modify-save как одну транзакцию: на всё
	// хранилище одновременно идёт не более одной мутации. Возвращает
	// записанный документ.
	Mutate(fn MutateFunc) (Document, error)
}

// EventPublisher публикует доменные события магазина во внешнюю шину.
type EventPublisher interface {
	// PublishEvent отправляет событие; key задаёт ключ партиционирования.
	PublishEvent(topic string, key string, event interface{}) error
}

// AdminNotifier доставляет администратору уведомления о заказах.
// Реализация с реальным транспортом живёт в слое-коллабораторе.
type AdminNotifier interface {
	NotifyAdmin(text string) error
}
