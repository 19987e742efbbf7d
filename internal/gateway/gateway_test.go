package gateway_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shopbot/internal/domain"
	"github.com/vladislavdragonenkov/shopbot/internal/gateway"
	"github.com/vladislavdragonenkov/shopbot/internal/notify"
	"github.com/vladislavdragonenkov/shopbot/internal/service/admin"
	"github.com/vladislavdragonenkov/shopbot/internal/service/cart"
	"github.com/vladislavdragonenkov/shopbot/internal/service/catalog"
	"github.com/vladislavdragonenkov/shopbot/internal/service/checkout"
	"github.com/vladislavdragonenkov/shopbot/internal/service/order"
	"github.com/vladislavdragonenkov/shopbot/internal/service/payment"
	"github.com/vladislavdragonenkov/shopbot/internal/service/settings"
	"github.com/vladislavdragonenkov/shopbot/internal/service/wizard"
	"github.com/vladislavdragonenkov/shopbot/internal/storage/file"
)

const (
	adminID  = int64(1000)
	buyerID  = int64(1)
	password = "secret"
)

type fixture struct {
	gw       *gateway.Gateway
	catalog  *catalog.Service
	orders   *order.Service
	notifier *notify.MockNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := file.New(filepath.Join(t.TempDir(), "shop.json"), nil)
	require.NoError(t, err)

	catalogSvc := catalog.NewService(store, nil)
	orderSvc := order.NewService(store, nil)
	settingsSvc := settings.NewService(store, nil)
	cartEngine := cart.NewEngine(catalogSvc, nil)
	notifier := &notify.MockNotifier{}
	checkoutFlow := checkout.NewFlow(cartEngine, orderSvc, nil).WithNotifier(notifier)
	productWizard := wizard.New(catalogSvc, nil)
	sessions := admin.NewSessionManager(password, adminID, nil)
	links := payment.NewLinkProvider("https://shop.example.com", "TWallet123")

	gw := gateway.New(gateway.Deps{
		Catalog:  catalogSvc,
		Orders:   orderSvc,
		Settings: settingsSvc,
		Carts:    cartEngine,
		Checkout: checkoutFlow,
		Wizard:   productWizard,
		Sessions: sessions,
		Payments: links,
		Notifier: notifier,
	}, nil)

	return &fixture{gw: gw, catalog: catalogSvc, orders: orderSvc, notifier: notifier}
}

func (f *fixture) addProduct(t *testing.T, name, category string, price int64) int64 {
	t.Helper()
	pid, err := f.catalog.Create(name, category, price, "desc", "photo")
	require.NoError(t, err)
	return pid
}

func TestGateway_AdminGate(t *testing.T) {
	f := newFixture(t)

	_, err := f.gw.OnAdminRecentOrders(buyerID)
	require.ErrorIs(t, err, domain.ErrNotAuthorized)
	_, err = f.gw.OnAdminProductCreate(buyerID)
	require.ErrorIs(t, err, domain.ErrNotAuthorized)
	_, err = f.gw.OnAdminStatusChange(buyerID, 1, "paid")
	require.ErrorIs(t, err, domain.ErrNotAuthorized)

	// Фиксированный администратор проходит без входа по паролю.
	_, err = f.gw.OnAdminRecentOrders(adminID)
	require.NoError(t, err)
}

func TestGateway_PasswordLogin(t *testing.T) {
	f := newFixture(t)

	require.False(t, f.gw.IsAdmin(buyerID))
	f.gw.OnAdminLoginStart(buyerID)
	require.True(t, f.gw.IsPendingLogin(buyerID))

	_, ok := f.gw.OnAdminPassword(buyerID, "wrong")
	require.False(t, ok)
	require.False(t, f.gw.IsAdmin(buyerID))

	f.gw.OnAdminLoginStart(buyerID)
	_, ok = f.gw.OnAdminPassword(buyerID, password)
	require.True(t, ok)
	require.True(t, f.gw.IsAdmin(buyerID))

	f.gw.OnAdminLogout(buyerID)
	require.False(t, f.gw.IsAdmin(buyerID))
}

func TestGateway_CatalogBrowse(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "Koylak", "👗 Qizlar kiyimlari", 150000)

	cards, err := f.gw.OnCatalogBrowse("👗 Qizlar kiyimlari")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	require.Contains(t, cards[0].Caption, "Koylak")
	require.Contains(t, cards[0].Caption, "150000 so'm")
	require.Contains(t, cards[0].Caption, "/t1")
	require.Equal(t, "photo", cards[0].PhotoRef)

	empty, err := f.gw.OnCatalogBrowse("🧸 O‘yinchoqlar")
	require.NoError(t, err)
	require.Len(t, empty, 1)
	require.Empty(t, empty[0].PhotoRef)
}

func TestGateway_CartRoundTrip(t *testing.T) {
	f := newFixture(t)
	pid := f.addProduct(t, "Koylak", "cat", 1000)

	text, err := f.gw.OnCartAdd(buyerID, pid)
	require.NoError(t, err)
	require.Contains(t, text, "Koylak")

	_, err = f.gw.OnCartAdd(buyerID, pid)
	require.NoError(t, err)

	view, err := f.gw.OnCartView(buyerID)
	require.NoError(t, err)
	require.Contains(t, view, "x2")
	require.Contains(t, view, "Jami: 2000 so'm")

	require.Contains(t, f.gw.OnCartRemove(buyerID, pid), "o‘chirildi")
	view, err = f.gw.OnCartView(buyerID)
	require.NoError(t, err)
	require.Contains(t, view, "bo‘sh")
}

func TestGateway_CheckoutFlow(t *testing.T) {
	f := newFixture(t)
	pid := f.addProduct(t, "Koylak", "cat", 1000)

	// Пустая корзина не начинает оформление.
	text, err := f.gw.OnCheckoutBegin(buyerID)
	require.NoError(t, err)
	require.Contains(t, text, "bo‘sh")
	require.False(t, f.gw.InCheckout(buyerID))

	_, err = f.gw.OnCartAdd(buyerID, pid)
	require.NoError(t, err)
	_, err = f.gw.OnCartAdd(buyerID, pid)
	require.NoError(t, err)

	text, err = f.gw.OnCheckoutBegin(buyerID)
	require.NoError(t, err)
	require.Contains(t, text, "2000 so'm")
	require.True(t, f.gw.InCheckout(buyerID))

	// Неверный формат оставляет оформление активным.
	text, err = f.gw.OnCheckoutContactInfo(buyerID, "faqat ism")
	require.NoError(t, err)
	require.Contains(t, text, "Format noto‘g‘ri")
	require.True(t, f.gw.InCheckout(buyerID))

	text, err = f.gw.OnCheckoutContactInfo(buyerID, "Ali — Toshkent — +998901234567")
	require.NoError(t, err)
	require.Contains(t, text, "Buyurtma qabul qilindi — #1")
	require.Contains(t, text, "/pay_payme_1")
	require.False(t, f.gw.InCheckout(buyerID))

	// Корзина очищена, заказ записан, администратор уведомлён.
	view, err := f.gw.OnCartView(buyerID)
	require.NoError(t, err)
	require.Contains(t, view, "bo‘sh")

	o, err := f.orders.Get(1)
	require.NoError(t, err)
	require.Equal(t, "Ali", o.FullName)
	require.Len(t, f.notifier.Sent(), 1)
}

func TestGateway_PaymentLinks(t *testing.T) {
	f := newFixture(t)
	pid := f.addProduct(t, "Koylak", "cat", 240000)
	_, err := f.gw.OnCartAdd(buyerID, pid)
	require.NoError(t, err)
	_, err = f.gw.OnCheckoutBegin(buyerID)
	require.NoError(t, err)
	_, err = f.gw.OnCheckoutContactInfo(buyerID, "Ali — Toshkent — +998901234567")
	require.NoError(t, err)

	text, err := f.gw.OnPaymentLink(gateway.ProviderPayme, 1)
	require.NoError(t, err)
	require.Contains(t, text, "fake_payme_pay?order=1&amount=240000")

	text, err = f.gw.OnPaymentLink(gateway.ProviderUSDT, 1)
	require.NoError(t, err)
	require.Contains(t, text, "TWallet123")
	require.Contains(t, text, "~2 USDT")

	text, err = f.gw.OnPaymentLink(gateway.ProviderClick, 99)
	require.NoError(t, err)
	require.Contains(t, text, "topilmadi")
}

func TestGateway_PaymentCallbackMarksPaid(t *testing.T) {
	f := newFixture(t)
	oid, err := f.orders.Create(buyerID, "Ali", "Toshkent", "+998", 1000)
	require.NoError(t, err)

	require.NoError(t, f.gw.OnPaymentCallback(oid, true))

	o, err := f.orders.Get(oid)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPaid, o.Status)
	require.Contains(t, f.notifier.Sent(), "Buyurtma #1 to'landi.")

	require.ErrorIs(t, f.gw.OnPaymentCallback(99, true), domain.ErrOrderNotFound)

	// Неподтверждённая оплата не меняет статус.
	oid2, err := f.orders.Create(buyerID, "Vali", "Buxoro", "+998", 500)
	require.NoError(t, err)
	require.NoError(t, f.gw.OnPaymentCallback(oid2, false))
	o2, err := f.orders.Get(oid2)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPending, o2.Status)
}

func TestGateway_AdminStatusChange(t *testing.T) {
	f := newFixture(t)
	oid, err := f.orders.Create(buyerID, "Ali", "Toshkent", "+998", 1000)
	require.NoError(t, err)

	text, err := f.gw.OnAdminStatusChange(adminID, oid, "bad-status")
	require.NoError(t, err)
	require.Contains(t, text, "Status noto‘g‘ri")

	text, err = f.gw.OnAdminStatusChange(adminID, oid, " Shipped ")
	require.NoError(t, err)
	require.Contains(t, text, "shipped")

	o, err := f.orders.Get(oid)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusShipped, o.Status)
}

func TestGateway_AdminOrderQuery(t *testing.T) {
	f := newFixture(t)
	pid := f.addProduct(t, "Koylak", "cat", 1000)
	oid, err := f.orders.CreateWithItems(buyerID, "Ali", "Toshkent", "+998", 2000,
		[]order.NewItem{{ProductID: pid, Qty: 2, PriceMinor: 1000}})
	require.NoError(t, err)

	text, err := f.gw.OnAdminOrderQuery(adminID, oid)
	require.NoError(t, err)
	require.Contains(t, text, "Buyurtma #1")
	require.Contains(t, text, "Koylak x2")

	text, err = f.gw.OnAdminOrderQuery(adminID, 99)
	require.NoError(t, err)
	require.Contains(t, text, "topilmadi")
}

func TestGateway_AdminWizardCreate(t *testing.T) {
	f := newFixture(t)

	prompt, err := f.gw.OnAdminProductCreate(adminID)
	require.NoError(t, err)
	require.Contains(t, prompt, "nomini kiriting")
	require.True(t, f.gw.InWizard(adminID))

	for _, input := range []string{"Koylak", "👗 Qizlar kiyimlari", "150000", "Yozgi koylak"} {
		prompt, err = f.gw.OnAdminWizardInput(adminID, input)
		require.NoError(t, err)
	}
	require.Contains(t, prompt, "rasmini yuboring")

	// Последний шаг финализирует автоматически.
	text, err := f.gw.OnAdminWizardInput(adminID, "photo-1")
	require.NoError(t, err)
	require.Contains(t, text, "Mahsulot qo‘shildi — #1")
	require.False(t, f.gw.InWizard(adminID))

	p, err := f.catalog.Get(1)
	require.NoError(t, err)
	require.Equal(t, "Koylak", p.Name)
}

func TestGateway_AdminWizardValidationAndCancel(t *testing.T) {
	f := newFixture(t)

	_, err := f.gw.OnAdminProductCreate(adminID)
	require.NoError(t, err)

	_, err = f.gw.OnAdminWizardInput(adminID, "Koylak")
	require.NoError(t, err)
	_, err = f.gw.OnAdminWizardInput(adminID, "cat")
	require.NoError(t, err)

	text, err := f.gw.OnAdminWizardInput(adminID, "not-a-number")
	require.NoError(t, err)
	require.Contains(t, text, "Narx")
	require.True(t, f.gw.InWizard(adminID))

	text, err = f.gw.OnAdminWizardInput(adminID, "/cancel")
	require.NoError(t, err)
	require.Contains(t, text, "bekor qilindi")
	require.False(t, f.gw.InWizard(adminID))
}

func TestGateway_AdminWizardEditSkips(t *testing.T) {
	f := newFixture(t)
	pid := f.addProduct(t, "Koylak", "cat", 1000)

	prompt, err := f.gw.OnAdminProductEdit(adminID, pid)
	require.NoError(t, err)
	require.Contains(t, prompt, "Joriy qiymat: Koylak")
	require.Contains(t, prompt, "/skip")

	for _, input := range []string{"/skip", "/skip", "250000", "/skip"} {
		_, err = f.gw.OnAdminWizardInput(adminID, input)
		require.NoError(t, err)
	}
	text, err := f.gw.OnAdminWizardInput(adminID, "/skip")
	require.NoError(t, err)
	require.Contains(t, text, "yangilandi")

	p, err := f.catalog.Get(pid)
	require.NoError(t, err)
	require.Equal(t, int64(250000), p.PriceMinor)
	require.Equal(t, "Koylak", p.Name)
}

func TestGateway_AdminMenuSettings(t *testing.T) {
	f := newFixture(t)

	_, err := f.gw.OnAdminSetCategories(adminID, []string{"Yangi"})
	require.NoError(t, err)
	categories, err := f.gw.Categories()
	require.NoError(t, err)
	require.Equal(t, []string{"Yangi"}, categories)

	_, err = f.gw.OnAdminSetMenuRows(adminID, [][]string{{"A", "B"}})
	require.NoError(t, err)
	rows, err := f.gw.MenuRows()
	require.NoError(t, err)
	require.Equal(t, [][]string{{"A", "B"}}, rows)

	require.NotEmpty(t, f.gw.AdminMenuRows())
}

func TestGateway_AdminProductList(t *testing.T) {
	f := newFixture(t)

	text, err := f.gw.OnAdminProductList(adminID)
	require.NoError(t, err)
	require.Contains(t, text, "bo‘sh")

	f.addProduct(t, "Koylak", "cat", 1000)
	text, err = f.gw.OnAdminProductList(adminID)
	require.NoError(t, err)
	require.Contains(t, text, "#1 | Koylak")

	card, err := f.gw.OnAdminProductQuery(adminID, 1)
	require.NoError(t, err)
	require.Contains(t, card.Caption, "Kategoriya: cat")

	text, err = f.gw.OnAdminProductDelete(adminID, 1)
	require.NoError(t, err)
	require.Contains(t, text, "o‘chirildi")
}
