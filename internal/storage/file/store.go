package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopbot/internal/domain"
	"github.com/vladislavdragonenkov/shopbot/internal/metrics"
)

// Store — документное хранилище поверх одного JSON-файла. Вся запись
// сериализуется одной эксклюзивной блокировкой: цикл load-modify-save
// в Mutate неделим, поэтому два конкурентных создания записей никогда
// не получат одинаковый идентификатор.
type Store struct {
	path    string
	mu      sync.RWMutex
	logger  *log.Entry
	metrics *metrics.ShopMetrics
}

// New открывает хранилище по указанному пути. Если файла нет, он создаётся
// с пустыми коллекциями и настройками по умолчанию; у существующего файла
// без секции settings недостающие части добиваются дефолтами и документ
// сразу пересохраняется (идемпотентная миграция схемы).
func New(path string, logger *log.Entry) (*Store, error) {
	return NewWithMetrics(path, logger, nil)
}

// NewWithMetrics — как New, но с метриками операций хранилища.
func NewWithMetrics(path string, logger *log.Entry, m *metrics.ShopMetrics) (*Store, error) {
	if logger == nil {
		logger = log.New().WithField("component", "file-store")
	}
	s := &Store{path: path, logger: logger, metrics: m}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		doc := domain.NewDocument()
		if err := s.writeLocked(doc); err != nil {
			return nil, err
		}
		logger.WithField("path", path).Info("создан новый документ магазина")
		return s, nil
	} else if err != nil {
		return nil, fmt.Errorf("stat shop document: %w", err)
	}

	doc, err := s.readLocked()
	if err != nil {
		return nil, err
	}
	if domain.BackfillSettings(&doc) {
		if err := s.writeLocked(doc); err != nil {
			return nil, err
		}
		logger.WithField("path", path).Info("настройки добиты дефолтами, документ пересохранён")
	}
	return s, nil
}

// Load возвращает свежую копию документа без блокировки записи.
func (s *Store) Load() (domain.Document, error) {
	start := time.Now()
	s.mu.RLock()
	doc, err := s.readLocked()
	s.mu.RUnlock()
	if err != nil {
		return domain.Document{}, err
	}
	// Конструктор уже добил настройки; сюда попадаем, только если файл
	// подменили извне между запусками мутаций.
	if domain.BackfillSettings(&doc) {
		return s.Mutate(func(*domain.Document) error { return nil })
	}
	if s.metrics != nil {
		s.metrics.RecordStoreLoad(time.Since(start))
	}
	return doc, nil
}

// Mutate выполняет транзакцию load-modify-save под эксклюзивной блокировкой.
// Ошибка fn отменяет запись: файл остаётся нетронутым.
func (s *Store) Mutate(fn domain.MutateFunc) (domain.Document, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readLocked()
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordStoreMutationError()
		}
		return domain.Document{}, err
	}
	migrated := domain.BackfillSettings(&doc)

	if err := fn(&doc); err != nil {
		// Миграцию всё равно фиксируем: она идемпотентна и не зависит от fn.
		if migrated {
			if werr := s.writeLocked(doc); werr != nil {
				s.logger.WithError(werr).Warn("не удалось сохранить мигрированный документ")
			}
		}
		return domain.Document{}, err
	}

	if err := s.writeLocked(doc); err != nil {
		if s.metrics != nil {
			s.metrics.RecordStoreMutationError()
		}
		return domain.Document{}, err
	}
	if s.metrics != nil {
		s.metrics.RecordStoreMutation(time.Since(start))
	}
	return doc, nil
}

// Path возвращает путь к файлу документа (для health-проверок).
func (s *Store) Path() string {
	return s.path
}

func (s *Store) readLocked() (domain.Document, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read shop document: %w", err)
	}
	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("decode shop document: %w", err)
	}
	return doc, nil
}

// writeLocked пишет документ атомарно: во временный файл рядом с целевым
// и затем rename, чтобы читатели никогда не видели усечённый JSON.
func (s *Store) writeLocked(doc domain.Document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode shop document: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".shop-*.json")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write shop document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp document: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace shop document: %w", err)
	}
	return nil
}

var _ domain.DocumentStore = (*Store)(nil)
