package gateway

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopbot/internal/domain"
	"github.com/vladislavdragonenkov/shopbot/internal/service/admin"
	"github.com/vladislavdragonenkov/shopbot/internal/service/cart"
	"github.com/vladislavdragonenkov/shopbot/internal/service/catalog"
	"github.com/vladislavdragonenkov/shopbot/internal/service/checkout"
	"github.com/vladislavdragonenkov/shopbot/internal/service/order"
	"github.com/vladislavdragonenkov/shopbot/internal/service/payment"
	"github.com/vladislavdragonenkov/shopbot/internal/service/settings"
	"github.com/vladislavdragonenkov/shopbot/internal/service/wizard"
)

// Provider — платёжный провайдер, выбранный покупателем.
type Provider string

const (
	ProviderPayme Provider = "payme"
	ProviderClick Provider = "click"
	ProviderUSDT  Provider = "usdt"
)

// Gateway — единая внешняя поверхность ядра магазина. Транспортный слой
// (Telegram-бот, CLI, HTTP) вызывает методы On* и отправляет возвращённый
// текст как есть; весь рендеринг и админская авторизация живут здесь.
type Gateway struct {
	catalog  *catalog.Service
	orders   *order.Service
	settings *settings.Service
	carts    *cart.Engine
	checkout *checkout.Flow
	wizard   *wizard.Wizard
	sessions *admin.SessionManager
	payments *payment.LinkProvider
	notifier domain.AdminNotifier
	logger   *log.Entry
}

// Deps — зависимости шлюза.
type Deps struct {
	Catalog  *catalog.Service
	Orders   *order.Service
	Settings *settings.Service
	Carts    *cart.Engine
	Checkout *checkout.Flow
	Wizard   *wizard.Wizard
	Sessions *admin.SessionManager
	Payments *payment.LinkProvider
	Notifier domain.AdminNotifier
}

// New конструирует шлюз магазина.
func New(deps Deps, logger *log.Entry) *Gateway {
	if logger == nil {
		logger = log.New().WithField("component", "gateway")
	}
	return &Gateway{
		catalog:  deps.Catalog,
		orders:   deps.Orders,
		settings: deps.Settings,
		carts:    deps.Carts,
		checkout: deps.Checkout,
		wizard:   deps.Wizard,
		sessions: deps.Sessions,
		payments: deps.Payments,
		notifier: deps.Notifier,
		logger:   logger,
	}
}

// MenuRows возвращает раскладку главного меню покупателя из настроек.
func (g *Gateway) MenuRows() ([][]string, error) {
	cfg, err := g.settings.Get()
	if err != nil {
		return nil, err
	}
	return cfg.MenuRows, nil
}

// AdminMenuRows возвращает фиксированную раскладку админского меню.
func (g *Gateway) AdminMenuRows() [][]string {
	return AdminMenuLayout
}

// Categories возвращает текущий список категорий каталога.
func (g *Gateway) Categories() ([]string, error) {
	cfg, err := g.settings.Get()
	if err != nil {
		return nil, err
	}
	return cfg.Categories, nil
}

// --- Покупательская поверхность ---

// OnCatalogBrowse возвращает карточки товаров категории. Пустая категория
// рендерится одним текстовым сообщением.
func (g *Gateway) OnCatalogBrowse(category string) ([]ProductCard, error) {
	products, err := g.catalog.ListByCategory(category)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return []ProductCard{{Caption: "Bu bo‘limda hozircha mahsulotlar yo‘q."}}, nil
	}
	cards := make([]ProductCard, 0, len(products))
	for _, p := range products {
		cards = append(cards, renderProductCard(p))
	}
	return cards, nil
}

// OnCartAdd кладёт товар в корзину актора и подтверждает это текстом.
func (g *Gateway) OnCartAdd(actorID, productID int64) (string, error) {
	product, err := g.catalog.Get(productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return "Mahsulot topilmadi.", nil
		}
		return "", err
	}
	g.carts.Add(actorID, productID)
	return fmt.Sprintf("%s savatchaga qo‘shildi.\n/cart — Savatchani ko‘rish", product.Name), nil
}

// OnCartRemove убирает товар из корзины целиком.
func (g *Gateway) OnCartRemove(actorID, productID int64) string {
	if !g.carts.Remove(actorID, productID) {
		return "Bu mahsulot savatchada yo‘q."
	}
	return "Mahsulot savatchadan o‘chirildi."
}

// OnCartView рендерит содержимое корзины с суммой и командами удаления.
func (g *Gateway) OnCartView(actorID int64) (string, error) {
	view, err := g.carts.Resolve(actorID)
	if err != nil {
		return "", err
	}
	if len(view.Lines) == 0 {
		return "Savatchangiz bo‘sh.", nil
	}
	return renderCartView(view), nil
}

// OnCartClear сбрасывает корзину актора.
func (g *Gateway) OnCartClear(actorID int64) string {
	g.carts.Clear(actorID)
	return "Savatcha tozalandi."
}

// InCheckout сообщает транспорту, что следующий текст актора — контактные
// данные оформления.
func (g *Gateway) InCheckout(actorID int64) bool {
	return g.checkout.Active(actorID)
}

// OnCheckoutBegin начинает оформление и просит контактные данные.
func (g *Gateway) OnCheckoutBegin(actorID int64) (string, error) {
	draft, err := g.checkout.Begin(actorID)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCart) {
			return "Savatchangiz bo‘sh. Avval mahsulot tanlang.", nil
		}
		return "", err
	}
	return renderCheckoutPrompt(draft.TotalMinor), nil
}

// OnCheckoutContactInfo принимает строку «Имя — Адрес — Телефон» и
// финализирует заказ. Ошибка формата возвращает подсказку, не сбрасывая
// черновик.
func (g *Gateway) OnCheckoutContactInfo(actorID int64, rawText string) (string, error) {
	summary, err := g.checkout.SubmitContactInfo(actorID, rawText)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMalformedContactInfo):
			return "Format noto‘g‘ri. Namuna:\nAli — Toshkent, Shayxontohur — +998901234567", nil
		case errors.Is(err, domain.ErrNoActiveCheckout):
			return "Faol buyurtma topilmadi. /checkout bilan qayta boshlang.", nil
		}
		return "", err
	}
	return renderOrderConfirmation(summary.OrderID, summary.TotalMinor), nil
}

// OnCheckoutCancel сбрасывает незавершённое оформление.
func (g *Gateway) OnCheckoutCancel(actorID int64) string {
	if !g.checkout.Cancel(actorID) {
		return "Faol buyurtma topilmadi."
	}
	return "Buyurtma bekor qilindi."
}

// OnPaymentLink рендерит платёжные инструкции выбранного провайдера.
func (g *Gateway) OnPaymentLink(provider Provider, orderID int64) (string, error) {
	total, err := g.orders.GetTotal(orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return "Buyurtma topilmadi.", nil
		}
		return "", err
	}

	switch provider {
	case ProviderPayme:
		return fmt.Sprintf("Payme orqali to‘lash:\n%s", g.payments.PaymeLink(orderID, total)), nil
	case ProviderClick:
		return fmt.Sprintf("Click orqali to‘lash:\n%s", g.payments.ClickLink(orderID, total)), nil
	case ProviderUSDT:
		wallet, usdt := g.payments.USDTDetails(total)
		return fmt.Sprintf(
			"USDT (TRC20) orqali to‘lash:\nKoshelek: %s\nSumma: ~%d USDT\nTo‘lovdan so‘ng chek rasmini yuboring.",
			wallet, usdt,
		), nil
	}
	return "Noma'lum to‘lov usuli.", nil
}

// --- Админская аутентификация ---

// IsAdmin сообщает, аутентифицирован ли актор как администратор.
func (g *Gateway) IsAdmin(actorID int64) bool {
	return g.sessions.IsAdmin(actorID)
}

// IsPendingLogin сообщает транспорту, что следующий текст актора — пароль.
func (g *Gateway) IsPendingLogin(actorID int64) bool {
	return g.sessions.IsPendingLogin(actorID)
}

// OnAdminLoginStart переводит актора в режим ожидания пароля.
func (g *Gateway) OnAdminLoginStart(actorID int64) string {
	if g.sessions.IsAdmin(actorID) {
		return "Siz allaqachon admin panelidasiz."
	}
	g.sessions.BeginLogin(actorID)
	return "Admin parolini kiriting:"
}

// OnAdminPassword сверяет пароль. Второй результат — успех входа.
func (g *Gateway) OnAdminPassword(actorID int64, password string) (string, bool) {
	if g.sessions.CompleteLogin(actorID, password) {
		return "Xush kelibsiz, admin!", true
	}
	return "Parol noto‘g‘ri. /admin bilan qayta urinib ko‘ring.", false
}

// OnAdminLogout снимает админскую сессию.
func (g *Gateway) OnAdminLogout(actorID int64) string {
	g.sessions.Logout(actorID)
	return "Admin paneldan chiqdingiz."
}

// --- Админская поверхность ---

func (g *Gateway) requireAdmin(actorID int64) error {
	if !g.sessions.IsAdmin(actorID) {
		return domain.ErrNotAuthorized
	}
	return nil
}

// OnAdminRecentOrders возвращает сводку последних заказов.
func (g *Gateway) OnAdminRecentOrders(actorID int64) (string, error) {
	if err := g.requireAdmin(actorID); err != nil {
		return "", err
	}
	orders, err := g.orders.ListRecent(10)
	if err != nil {
		return "", err
	}
	if len(orders) == 0 {
		return "Buyurtmalar hali yo‘q.", nil
	}
	lines := make([]string, 0, len(orders))
	for _, o := range orders {
		lines = append(lines, renderOrderSummary(o))
	}
	return "Oxirgi buyurtmalar:\n" + strings.Join(lines, "\n"), nil
}

// OnAdminOrderQuery возвращает карточку заказа с его позициями.
func (g *Gateway) OnAdminOrderQuery(actorID, orderID int64) (string, error) {
	if err := g.requireAdmin(actorID); err != nil {
		return "", err
	}
	o, err := g.orders.Get(orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return "Buyurtma topilmadi.", nil
		}
		return "", err
	}
	items, err := g.orders.ListItems(orderID)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		name := fmt.Sprintf("#%d", item.ProductID)
		if p, perr := g.catalog.Get(item.ProductID); perr == nil {
			name = p.Name
		}
		lines = append(lines, fmt.Sprintf("- %s x%d — %d so'm", name, item.Qty, item.PriceMinor*int64(item.Qty)))
	}
	return renderOrderDetail(o, lines), nil
}

// OnAdminStatusChange валидирует статус против закрытого перечня и меняет его.
func (g *Gateway) OnAdminStatusChange(actorID, orderID int64, status string) (string, error) {
	if err := g.requireAdmin(actorID); err != nil {
		return "", err
	}
	normalized, err := domain.ParseOrderStatus(status)
	if err != nil {
		return fmt.Sprintf(
			"Status noto‘g‘ri. Ruxsat etilganlar: %s.",
			strings.Join(statusNames(), ", "),
		), nil
	}
	if err := g.orders.SetStatus(orderID, normalized); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return "Buyurtma topilmadi.", nil
		}
		return "", err
	}
	return fmt.Sprintf("Buyurtma #%d statusi yangilandi: %s", orderID, normalized), nil
}

func statusNames() []string {
	names := make([]string, 0, len(domain.AllowedStatuses))
	for _, s := range domain.AllowedStatuses {
		names = append(names, string(s))
	}
	return names
}

// OnAdminProductList возвращает сводку каталога.
func (g *Gateway) OnAdminProductList(actorID int64) (string, error) {
	if err := g.requireAdmin(actorID); err != nil {
		return "", err
	}
	products, err := g.catalog.ListAll(20)
	if err != nil {
		return "", err
	}
	if len(products) == 0 {
		return "Katalog bo‘sh.", nil
	}
	lines := make([]string, 0, len(products))
	for _, p := range products {
		lines = append(lines, renderProductSummary(p))
	}
	return "Mahsulotlar:\n" + strings.Join(lines, "\n"), nil
}

// OnAdminProductQuery возвращает полную карточку товара.
func (g *Gateway) OnAdminProductQuery(actorID, productID int64) (ProductCard, error) {
	if err := g.requireAdmin(actorID); err != nil {
		return ProductCard{}, err
	}
	p, err := g.catalog.Get(productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return ProductCard{Caption: "Mahsulot topilmadi."}, nil
		}
		return ProductCard{}, err
	}
	return renderProductDetail(p), nil
}

// OnAdminProductDelete удаляет товар из каталога.
func (g *Gateway) OnAdminProductDelete(actorID, productID int64) (string, error) {
	if err := g.requireAdmin(actorID); err != nil {
		return "", err
	}
	if err := g.catalog.Delete(productID); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return "Mahsulot topilmadi.", nil
		}
		return "", err
	}
	return fmt.Sprintf("Mahsulot #%d o‘chirildi.", productID), nil
}

// OnAdminProductCreate запускает мастер создания товара.
func (g *Gateway) OnAdminProductCreate(actorID int64) (string, error) {
	if err := g.requireAdmin(actorID); err != nil {
		return "", err
	}
	if err := g.wizard.Start(actorID, wizard.ActionCreate, 0); err != nil {
		return "", err
	}
	return g.wizardPrompt(actorID, wizard.ActionCreate, wizard.StepName), nil
}

// OnAdminProductEdit запускает мастер правки существующего товара.
func (g *Gateway) OnAdminProductEdit(actorID, productID int64) (string, error) {
	if err := g.requireAdmin(actorID); err != nil {
		return "", err
	}
	if err := g.wizard.Start(actorID, wizard.ActionEdit, productID); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return "Mahsulot topilmadi.", nil
		}
		return "", err
	}
	return g.wizardPrompt(actorID, wizard.ActionEdit, wizard.StepName), nil
}

// InWizard сообщает транспорту, что следующий текст актора — ввод мастера.
func (g *Gateway) InWizard(actorID int64) bool {
	_, _, ok := g.wizard.Active(actorID)
	return ok
}

// OnAdminWizardInput передаёт текст актора мастеру. /cancel сбрасывает
// мастер; после последнего шага товар финализируется автоматически.
func (g *Gateway) OnAdminWizardInput(actorID int64, input string) (string, error) {
	if err := g.requireAdmin(actorID); err != nil {
		return "", err
	}

	if strings.EqualFold(strings.TrimSpace(input), "/cancel") {
		if g.wizard.Cancel(actorID) {
			return "Mahsulot ustasi bekor qilindi.", nil
		}
		return "Faol usta topilmadi.", nil
	}

	action, _, ok := g.wizard.Active(actorID)
	if !ok {
		return "Faol usta topilmadi.", nil
	}

	result, err := g.wizard.Advance(actorID, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPriceInvalid):
			return "Narx musbat butun son bo‘lishi kerak. Qayta kiriting:", nil
		case errors.Is(err, domain.ErrFieldRequired):
			return "Bo‘sh qiymat qabul qilinmaydi. Qayta kiriting:", nil
		case errors.Is(err, domain.ErrNoActiveWizard):
			return "Faol usta topilmadi.", nil
		}
		return "", err
	}

	if !result.Done {
		return g.wizardPrompt(actorID, action, result.NextStep), nil
	}
	return g.finalizeWizard(actorID, action)
}

func (g *Gateway) finalizeWizard(actorID int64, action wizard.Action) (string, error) {
	outcome, err := g.wizard.Finalize(actorID)
	if err != nil {
		var missing *wizard.MissingFieldsError
		if errors.As(err, &missing) {
			prompt := g.wizardPrompt(actorID, action, missing.Steps[0])
			return renderMissingFields(missing.Steps) + "\n" + prompt, nil
		}
		if errors.Is(err, domain.ErrProductNotFound) {
			return "Mahsulot topilmadi: u usta ishlayotganda o‘chirilgan.", nil
		}
		return "", err
	}

	if outcome.Created {
		return fmt.Sprintf("Mahsulot qo‘shildi — #%d.", outcome.ProductID), nil
	}
	return fmt.Sprintf("Mahsulot #%d yangilandi.", outcome.ProductID), nil
}

// wizardPrompt собирает подсказку шага: категории из настроек и текущее
// значение поля при правке. Сбой чтения настроек не критичен для подсказки.
func (g *Gateway) wizardPrompt(actorID int64, action wizard.Action, step wizard.Step) string {
	var categories []string
	if step == wizard.StepCategory {
		if cfg, err := g.settings.Get(); err == nil {
			categories = cfg.Categories
		} else {
			g.logger.WithError(err).Warn("не удалось прочитать категории для подсказки мастера")
		}
	}
	current, hasCurrent := g.wizard.CurrentValue(actorID, step)
	return renderStepPrompt(action, step, categories, current, hasCurrent)
}

// OnAdminSetCategories заменяет список категорий целиком.
func (g *Gateway) OnAdminSetCategories(actorID int64, categories []string) (string, error) {
	if err := g.requireAdmin(actorID); err != nil {
		return "", err
	}
	if err := g.settings.SetCategories(categories); err != nil {
		return "", err
	}
	return fmt.Sprintf("Kategoriyalar yangilandi (%d ta).", len(categories)), nil
}

// OnAdminSetMenuRows заменяет раскладку главного меню.
func (g *Gateway) OnAdminSetMenuRows(actorID int64, rows [][]string) (string, error) {
	if err := g.requireAdmin(actorID); err != nil {
		return "", err
	}
	if err := g.settings.SetMenuRows(rows); err != nil {
		return "", err
	}
	return "Menyu raskladkasi yangilandi.", nil
}

// --- Платёжный коллбек ---

// OnPaymentCallback обрабатывает подтверждение оплаты от платёжного
// коллаборатора: переводит заказ в paid и уведомляет администратора.
// Неуспешный платёж только журналируется.
func (g *Gateway) OnPaymentCallback(orderID int64, paid bool) error {
	if !paid {
		g.logger.WithField("order_id", orderID).Info("платёжный коллбек: оплата не подтверждена")
		return nil
	}
	if err := g.orders.SetStatus(orderID, domain.OrderStatusPaid); err != nil {
		return err
	}
	if g.notifier != nil {
		text := fmt.Sprintf("Buyurtma #%d to'landi.", orderID)
		if err := g.notifier.NotifyAdmin(text); err != nil {
			g.logger.WithError(err).WithField("order_id", orderID).Warn("не удалось уведомить администратора об оплате")
		}
	}
	return nil
}
