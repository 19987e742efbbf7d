package notify

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopbot/internal/domain"
)

// LogNotifier пишет уведомления администратора в журнал. Используется,
// когда транспортный слой не предоставил собственную реализацию.
type LogNotifier struct {
	logger *log.Entry
}

// NewLogNotifier конструирует журнальный нотификатор.
func NewLogNotifier(logger *log.Entry) *LogNotifier {
	if logger == nil {
		logger = log.New().WithField("component", "admin-notify")
	}
	return &LogNotifier{logger: logger}
}

// NotifyAdmin пишет текст уведомления в журнал.
func (n *LogNotifier) NotifyAdmin(text string) error {
	n.logger.WithField("notification", text).Info("уведомление администратору")
	return nil
}

var _ domain.AdminNotifier = (*LogNotifier)(nil)

// MockNotifier — конфигурируемая заглушка AdminNotifier для тестов.
type MockNotifier struct {
	mu       sync.Mutex
	Err      error
	Messages []string
}

// NotifyAdmin копит сообщения и возвращает настроенную ошибку.
func (m *MockNotifier) NotifyAdmin(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, text)
	return m.Err
}

// Sent возвращает копию накопленных сообщений.
func (m *MockNotifier) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Messages...)
}

var _ domain.AdminNotifier = (*MockNotifier)(nil)
