package settings

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopbot/internal/domain"
)

// Service управляет настройками магазина: списком категорий и раскладкой
// главного меню. Замена всегда целиком, без merge-семантики.
type Service struct {
	store  domain.DocumentStore
	logger *log.Entry
}

// NewService конструирует сервис настроек.
func NewService(store domain.DocumentStore, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "settings")
	}
	return &Service{store: store, logger: logger}
}

// Get возвращает текущие настройки.
func (s *Service) Get() (domain.Settings, error) {
	doc, err := s.store.Load()
	if err != nil {
		return domain.Settings{}, err
	}
	return doc.Settings, nil
}

// SetCategories заменяет список категорий целиком. Пустой список допустим:
// меню просто остаётся без категорийных кнопок.
func (s *Service) SetCategories(categories []string) error {
	_, err := s.store.Mutate(func(doc *domain.Document) error {
		doc.Settings.Categories = append([]string(nil), categories...)
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.WithField("count", len(categories)).Info("список категорий обновлён")
	return nil
}

// SetMenuRows заменяет раскладку меню. Ряды нормализуются: пустые кнопки и
// ряды отбрасываются. Пустая раскладка никогда не сохраняется — актор без
// меню не сможет навигировать, поэтому вместо неё восстанавливается дефолт.
func (s *Service) SetMenuRows(rows [][]string) error {
	normalized := NormalizeMenuRows(rows)
	_, err := s.store.Mutate(func(doc *domain.Document) error {
		doc.Settings.MenuRows = normalized
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.WithField("rows", len(normalized)).Info("раскладка меню обновлена")
	return nil
}

// NormalizeMenuRows отбрасывает пустые кнопки и ряды; если после очистки
// не осталось ни одного ряда, возвращается встроенная раскладка.
func NormalizeMenuRows(rows [][]string) [][]string {
	normalized := make([][]string, 0, len(rows))
	for _, row := range rows {
		buttons := make([]string, 0, len(row))
		for _, btn := range row {
			if btn != "" {
				buttons = append(buttons, btn)
			}
		}
		if len(buttons) > 0 {
			normalized = append(normalized, buttons)
		}
	}
	if len(normalized) == 0 {
		return domain.CopyMenuRows(domain.DefaultMenuRows)
	}
	return normalized
}
