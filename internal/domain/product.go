package domain

// Product описывает товар каталога. Категория — свободный текст, который
// сопоставляется со списком категорий настроек по точному равенству строк,
// без внешнего ключа.
type Product struct {
	ID int64 `json:"id"`
	// Name — отображаемое название товара.
	Name string `json:"name"`
	// Category — категория по точному совпадению со списком настроек.
	Category string `json:"category"`
	// PriceMinor — цена в минимальных денежных единицах (сум).
	PriceMinor int64 `json:"price"`
	// Description — произвольный текст описания.
	Description string `json:"desc"`
	// PhotoRef — непрозрачная ссылка на изображение: file_id транспорта или URL.
	PhotoRef string `json:"photo"`
}

// ProductUpdate задаёт частичное обновление товара: nil-поля не меняются.
type ProductUpdate struct {
	Name        *string
	Category    *string
	PriceMinor  *int64
	Description *string
	PhotoRef    *string
}

// Apply накладывает заполненные поля обновления на товар.
func (u ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.PriceMinor != nil {
		p.PriceMinor = *u.PriceMinor
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.PhotoRef != nil {
		p.PhotoRef = *u.PhotoRef
	}
}

// Empty сообщает, что обновление не содержит ни одного поля.
func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.Category == nil && u.PriceMinor == nil &&
		u.Description == nil && u.PhotoRef == nil
}
