package admin

import (
	"crypto/subtle"
	"sync"

	log "github.com/sirupsen/logrus"
)

// SessionManager отслеживает, какие акторы аутентифицированы как
// администраторы и кто находится в середине входа (ожидает пароль).
// Состояние живёт в памяти процесса и не переживает рестарт.
type SessionManager struct {
	mu           sync.Mutex
	loggedIn     map[int64]struct{}
	pendingLogin map[int64]struct{}

	password string
	// fixedAdminID — администратор, назначенный конфигурацией; считается
	// вошедшим всегда, без пароля. 0 — не назначен.
	fixedAdminID int64
	logger       *log.Entry
}

// NewSessionManager конструирует менеджер админских сессий.
func NewSessionManager(password string, fixedAdminID int64, logger *log.Entry) *SessionManager {
	if logger == nil {
		logger = log.New().WithField("component", "admin-sessions")
	}
	return &SessionManager{
		loggedIn:     make(map[int64]struct{}),
		pendingLogin: make(map[int64]struct{}),
		password:     password,
		fixedAdminID: fixedAdminID,
		logger:       logger,
	}
}

// IsAdmin сообщает, аутентифицирован ли актор как администратор.
func (m *SessionManager) IsAdmin(actorID int64) bool {
	if m.fixedAdminID != 0 && actorID == m.fixedAdminID {
		return true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.loggedIn[actorID]
	return ok
}

// BeginLogin переводит актора в состояние ожидания пароля.
func (m *SessionManager) BeginLogin(actorID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingLogin[actorID] = struct{}{}
}

// IsPendingLogin сообщает, ждёт ли актор ввода пароля.
func (m *SessionManager) IsPendingLogin(actorID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.pendingLogin[actorID]
	return ok
}

// CompleteLogin сверяет пароль и завершает вход. Состояние ожидания
// снимается в любом случае: неверный пароль требует нового BeginLogin.
func (m *SessionManager) CompleteLogin(actorID int64, password string) bool {
	m.mu.Lock()
	delete(m.pendingLogin, actorID)
	m.mu.Unlock()

	if subtle.ConstantTimeCompare([]byte(password), []byte(m.password)) != 1 {
		m.logger.WithField("actor_id", actorID).Warn("неудачная попытка входа администратора")
		return false
	}

	m.mu.Lock()
	m.loggedIn[actorID] = struct{}{}
	m.mu.Unlock()
	m.logger.WithField("actor_id", actorID).Info("администратор вошёл в панель")
	return true
}

// Logout снимает админскую сессию и состояние ожидания пароля.
func (m *SessionManager) Logout(actorID int64) {
	m.mu.Lock()
	delete(m.loggedIn, actorID)
	delete(m.pendingLogin, actorID)
	m.mu.Unlock()
	m.logger.WithField("actor_id", actorID).Info("администратор вышел из панели")
}
