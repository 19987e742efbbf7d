package domain

// Meta хранит счётчики автоинкрементных идентификаторов.
// Счётчики только растут; идентификаторы никогда не переиспользуются,
// даже после удаления записей.
type Meta struct {
	NextProductID   int64 `json:"next_product_id"`
	NextOrderID     int64 `json:"next_order_id"`
	NextOrderItemID int64 `json:"next_order_item_id"`
}

// Settings описывает настройки магазина: список категорий и раскладку
// главного меню (ряды кнопок).
type Settings struct {
	Categories []string   `json:"categories"`
	MenuRows   [][]string `json:"menu_rows"`
}

// Document — корень документного хранилища. Весь магазин живёт в одном
// документе: коллекции и счётчики меняются строго вместе, одной транзакцией.
type Document struct {
	Meta       Meta        `json:"meta"`
	Products   []Product   `json:"products"`
	Orders     []Order     `json:"orders"`
	OrderItems []OrderItem `json:"order_items"`
	Settings   Settings    `json:"settings"`
}

// DefaultCategories — встроенный список категорий детского магазина.
var DefaultCategories = []string{
	"👗 Qizlar kiyimlari",
	"🧥 O‘g‘il bolalar kiyimlari",
	"🍼 Yangi tug‘ilganlar",
	"👟 Poyabzallar",
	"🧸 O‘yinchoqlar",
	"🎒 Aksessuarlar",
}

// DefaultMenuRows — встроенная раскладка главного меню.
var DefaultMenuRows = [][]string{
	{"👗 Qizlar kiyimlari", "🧥 O‘g‘il bolalar kiyimlari"},
	{"🍼 Yangi tug‘ilganlar", "👟 Poyabzallar"},
	{"🧸 O‘yinchoqlar", "🎒 Aksessuarlar"},
	{"/cart", "📞 Aloqa", "ℹ️ Ma'lumot"},
}

// DefaultSettings возвращает копию встроенных настроек.
func DefaultSettings() Settings {
	return Settings{
		Categories: append([]string(nil), DefaultCategories...),
		MenuRows:   CopyMenuRows(DefaultMenuRows),
	}
}

// NewDocument возвращает пустой документ со счётчиками, начинающимися с 1,
// и настройками по умолчанию.
func NewDocument() Document {
	return Document{
		Meta: Meta{
			NextProductID:   1,
			NextOrderID:     1,
			NextOrderItemID: 1,
		},
		Products:   []Product{},
		Orders:     []Order{},
		OrderItems: []OrderItem{},
		Settings:   DefaultSettings(),
	}
}

// BackfillSettings добивает отсутствующие части настроек дефолтами и
// возвращает true, если документ изменился. Повторный вызов на уже
// мигрированном документе ничего не меняет, поэтому миграция идемпотентна.
func BackfillSettings(doc *Document) bool {
	changed := false
	if doc.Settings.Categories == nil {
		doc.Settings.Categories = append([]string(nil), DefaultCategories...)
		changed = true
	}
	if doc.Settings.MenuRows == nil {
		doc.Settings.MenuRows = CopyMenuRows(DefaultMenuRows)
		changed = true
	}
	return changed
}

// CopyMenuRows возвращает глубокую копию раскладки меню.
func CopyMenuRows(rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, append([]string(nil), row...))
	}
	return out
}
