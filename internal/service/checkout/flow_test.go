package checkout_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shopbot/internal/domain"
	"github.com/vladislavdragonenkov/shopbot/internal/notify"
	"github.com/vladislavdragonenkov/shopbot/internal/service/cart"
	"github.com/vladislavdragonenkov/shopbot/internal/service/checkout"
	"github.com/vladislavdragonenkov/shopbot/internal/service/order"
)

type stubCarts struct {
	view    cart.View
	cleared map[int64]bool
}

func (s *stubCarts) Resolve(actorID int64) (cart.View, error) { return s.view, nil }

func (s *stubCarts) Clear(actorID int64) {
	if s.cleared == nil {
		s.cleared = make(map[int64]bool)
	}
	s.cleared[actorID] = true
}

type stubOrders struct {
	mu     sync.Mutex
	err    error
	nextID int64
	calls  []stubOrderCall
}

type stubOrderCall struct {
	actorID    int64
	fullName   string
	address    string
	phone      string
	totalMinor int64
	items      []order.NewItem
}

func (s *stubOrders) CreateWithItems(actorID int64, fullName, address, phone string, totalMinor int64, items []order.NewItem) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.nextID++
	s.calls = append(s.calls, stubOrderCall{actorID, fullName, address, phone, totalMinor, items})
	return s.nextID, nil
}

func twoLineView() cart.View {
	return cart.View{
		Lines: []cart.Line{
			{Product: domain.Product{ID: 5, Name: "Koylak", PriceMinor: 1000}, Qty: 2, LineTotal: 2000},
		},
		TotalMinor: 2000,
	}
}

func TestCheckout_BeginSnapshotsTotal(t *testing.T) {
	carts := &stubCarts{view: twoLineView()}
	flow := checkout.NewFlow(carts, &stubOrders{}, nil)

	draft, err := flow.Begin(1)
	require.NoError(t, err)
	require.Equal(t, int64(2000), draft.TotalMinor)
	require.True(t, flow.Active(1))
}

func TestCheckout_BeginEmptyCart(t *testing.T) {
	flow := checkout.NewFlow(&stubCarts{}, &stubOrders{}, nil)

	_, err := flow.Begin(1)
	require.ErrorIs(t, err, domain.ErrEmptyCart)
	require.False(t, flow.Active(1))
}

func TestParseContactInfo(t *testing.T) {
	fullName, address, phone, err := checkout.ParseContactInfo("Ali — Toshkent, Shayxontohur — +998901234567")
	require.NoError(t, err)
	require.Equal(t, "Ali", fullName)
	require.Equal(t, "Toshkent, Shayxontohur", address)
	require.Equal(t, "+998901234567", phone)

	_, _, _, err = checkout.ParseContactInfo("Ali — Toshkent")
	require.ErrorIs(t, err, domain.ErrMalformedContactInfo)

	// Дефис — не разделитель полей.
	_, _, _, err = checkout.ParseContactInfo("Ali - Toshkent - +998901234567")
	require.ErrorIs(t, err, domain.ErrMalformedContactInfo)
}

func TestCheckout_SubmitCreatesOrderAndClearsCart(t *testing.T) {
	carts := &stubCarts{view: twoLineView()}
	orders := &stubOrders{}
	notifier := &notify.MockNotifier{}
	flow := checkout.NewFlow(carts, orders, nil).WithNotifier(notifier)

	_, err := flow.Begin(1)
	require.NoError(t, err)

	summary, err := flow.SubmitContactInfo(1, "Ali — Toshkent — +998901234567")
	require.NoError(t, err)
	require.Equal(t, int64(1), summary.OrderID)
	require.Equal(t, int64(2000), summary.TotalMinor)

	require.Len(t, orders.calls, 1)
	call := orders.calls[0]
	require.Equal(t, "Ali", call.fullName)
	require.Equal(t, int64(2000), call.totalMinor)
	require.Len(t, call.items, 1)
	require.Equal(t, int64(1000), call.items[0].PriceMinor)

	require.True(t, carts.cleared[1])
	require.False(t, flow.Active(1))
	require.Len(t, notifier.Sent(), 1)
	require.Contains(t, notifier.Sent()[0], "Yangi buyurtma #1")
}

func TestCheckout_MalformedInputKeepsDraft(t *testing.T) {
	carts := &stubCarts{view: twoLineView()}
	orders := &stubOrders{}
	flow := checkout.NewFlow(carts, orders, nil)

	_, err := flow.Begin(1)
	require.NoError(t, err)

	_, err = flow.SubmitContactInfo(1, "faqat ism")
	require.ErrorIs(t, err, domain.ErrMalformedContactInfo)
	require.True(t, flow.Active(1))
	require.Empty(t, orders.calls)

	// Повторный корректный ввод завершает оформление.
	_, err = flow.SubmitContactInfo(1, "Ali — Toshkent — +998901234567")
	require.NoError(t, err)
}

func TestCheckout_StorageErrorKeepsDraftAndCart(t *testing.T) {
	carts := &stubCarts{view: twoLineView()}
	orders := &stubOrders{err: errors.New("disk full")}
	flow := checkout.NewFlow(carts, orders, nil)

	_, err := flow.Begin(1)
	require.NoError(t, err)

	_, err = flow.SubmitContactInfo(1, "Ali — Toshkent — +998901234567")
	require.Error(t, err)
	require.True(t, flow.Active(1))
	require.False(t, carts.cleared[1])
}

func TestCheckout_SubmitWithoutDraft(t *testing.T) {
	flow := checkout.NewFlow(&stubCarts{}, &stubOrders{}, nil)

	_, err := flow.SubmitContactInfo(1, "Ali — Toshkent — +998901234567")
	require.ErrorIs(t, err, domain.ErrNoActiveCheckout)
}

func TestCheckout_Cancel(t *testing.T) {
	carts := &stubCarts{view: twoLineView()}
	flow := checkout.NewFlow(carts, &stubOrders{}, nil)

	_, err := flow.Begin(1)
	require.NoError(t, err)
	require.True(t, flow.Cancel(1))
	require.False(t, flow.Active(1))
	require.False(t, flow.Cancel(1))
}

func TestCheckout_PriceSnapshotIgnoresLaterEdits(t *testing.T) {
	carts := &stubCarts{view: twoLineView()}
	orders := &stubOrders{}
	flow := checkout.NewFlow(carts, orders, nil)

	_, err := flow.Begin(1)
	require.NoError(t, err)

	// Цена выросла после начала оформления; заказ идёт по старой цене.
	carts.view = cart.View{
		Lines: []cart.Line{
			{Product: domain.Product{ID: 5, Name: "Koylak", PriceMinor: 9999}, Qty: 2, LineTotal: 19998},
		},
		TotalMinor: 19998,
	}

	_, err = flow.SubmitContactInfo(1, "Ali — Toshkent — +998901234567")
	require.NoError(t, err)
	require.Equal(t, int64(2000), orders.calls[0].totalMinor)
	require.Equal(t, int64(1000), orders.calls[0].items[0].PriceMinor)
}
